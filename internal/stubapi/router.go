package stubapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/orderhai/storefront-client/internal/remote"
	pkgerrors "github.com/orderhai/storefront-client/pkg/errors"
	"github.com/orderhai/storefront-client/pkg/logger"
)

type contextKey string

const tokenContextKey contextKey = "stubapi.token"

type addItemBody struct {
	ProductID   string `json:"productId"`
	Qty         int    `json:"qty"`
	VariantName string `json:"variantName"`
}

type updateItemBody struct {
	Qty         int    `json:"qty"`
	VariantName string `json:"variantName"`
}

type removeItemBody struct {
	VariantName string `json:"variantName"`
}

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// NewRouter builds the stub backend router.
func NewRouter(mem *Memory, logg *logger.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(requireBearer(logg))

	r.Route("/api/users", func(r chi.Router) {
		r.Get("/cart", getCart(mem))
		r.Post("/cart", addCartItem(mem, logg))
		r.Delete("/cart", clearCart(mem))
		r.Patch("/cart/{productID}", updateCartItem(mem, logg))
		r.Delete("/cart/{productID}", removeCartItem(mem, logg))

		r.Post("/orders", placeOrder(mem, logg))
		r.Get("/orders", listOrders(mem))
		r.Post("/orders/{orderID}/cancel", cancelOrder(mem, logg))

		r.Get("/favorites", listFavorites(mem))
		r.Post("/favorites/{productID}", addFavorite(mem, logg))
		r.Delete("/favorites/{productID}", removeFavorite(mem, logg))
	})

	return r
}

func requireBearer(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
			if header == "" || token == "" || !strings.HasPrefix(header, "Bearer ") {
				writeError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing bearer token"))
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), tokenContextKey, token)))
		})
	}
}

func tokenFrom(ctx context.Context) string {
	if v, ok := ctx.Value(tokenContextKey).(string); ok {
		return v
	}
	return ""
}

func getCart(mem *Memory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items := mem.Cart(tokenFrom(r.Context()))
		writeJSON(w, http.StatusOK, remote.CartPayload{Items: items})
	}
}

func addCartItem(mem *Memory, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body addItemBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid request body"))
			return
		}
		err := mem.AddCartItem(tokenFrom(r.Context()), remote.CartItem{
			ProductID:   body.ProductID,
			VariantName: body.VariantName,
			Qty:         body.Qty,
		})
		if err != nil {
			writeError(r.Context(), logg, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func updateCartItem(mem *Memory, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body updateItemBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid request body"))
			return
		}
		productID := chi.URLParam(r, "productID")
		if err := mem.UpdateCartItem(tokenFrom(r.Context()), productID, body.VariantName, body.Qty); err != nil {
			writeError(r.Context(), logg, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func removeCartItem(mem *Memory, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body removeItemBody
		if r.Body != nil {
			// Body is optional on delete.
			_ = json.NewDecoder(r.Body).Decode(&body)
		}
		productID := chi.URLParam(r, "productID")
		if err := mem.RemoveCartItem(tokenFrom(r.Context()), productID, body.VariantName); err != nil {
			writeError(r.Context(), logg, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func clearCart(mem *Memory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mem.ClearCart(tokenFrom(r.Context()))
		w.WriteHeader(http.StatusNoContent)
	}
}

func placeOrder(mem *Memory, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req remote.PlaceOrderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid request body"))
			return
		}
		key := r.Header.Get("Idempotency-Key")
		order, err := mem.PlaceOrder(tokenFrom(r.Context()), key, req)
		if err != nil {
			writeError(r.Context(), logg, w, err)
			return
		}
		writeJSON(w, http.StatusCreated, order)
	}
}

func listOrders(mem *Memory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orders := mem.Orders(tokenFrom(r.Context()))
		writeJSON(w, http.StatusOK, map[string]any{"orders": orders})
	}
}

func cancelOrder(mem *Memory, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID := chi.URLParam(r, "orderID")
		order, err := mem.CancelOrder(tokenFrom(r.Context()), orderID)
		if err != nil {
			writeError(r.Context(), logg, w, err)
			return
		}
		writeJSON(w, http.StatusOK, order)
	}
}

func listFavorites(mem *Memory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ids := mem.Favorites(tokenFrom(r.Context()))
		writeJSON(w, http.StatusOK, remote.FavoritesPayload{ProductIDs: ids})
	}
}

func addFavorite(mem *Memory, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID := chi.URLParam(r, "productID")
		if err := mem.AddFavorite(tokenFrom(r.Context()), productID); err != nil {
			writeError(r.Context(), logg, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func removeFavorite(mem *Memory, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID := chi.URLParam(r, "productID")
		if err := mem.RemoveFavorite(tokenFrom(r.Context()), productID); err != nil {
			writeError(r.Context(), logg, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, err error) {
	typed := pkgerrors.As(err)
	if typed == nil {
		typed = pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unexpected error")
	}
	meta := pkgerrors.MetadataFor(typed.Code())

	if logg != nil && meta.HTTPStatus >= http.StatusInternalServerError {
		logg.Error(ctx, "stub backend failure", typed)
	}

	var body errorBody
	body.Error.Code = string(typed.Code())
	body.Error.Message = typed.Message()
	writeJSON(w, meta.HTTPStatus, body)
}
