package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/orderhai/storefront-client/internal/session"
	"github.com/orderhai/storefront-client/pkg/config"
	pkgerrors "github.com/orderhai/storefront-client/pkg/errors"
	"github.com/orderhai/storefront-client/pkg/logger"
)

func newTestClient(t *testing.T, rt roundTripFunc) *Client {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	client, err := NewClient(
		config.APIConfig{BaseURL: "http://storefront.test"},
		session.Static("tok-1"),
		logg,
		WithHTTPClient(&http.Client{Transport: rt}),
	)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func TestClientAddItemRequest(t *testing.T) {
	const expectedURL = "http://storefront.test/api/users/cart"

	var capturedURL string
	var capturedMethod string
	var capturedAuth string
	var capturedBody map[string]any

	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		capturedURL = req.URL.String()
		capturedMethod = req.Method
		capturedAuth = req.Header.Get("Authorization")

		bodyBytes, err := io.ReadAll(req.Body)
		if err != nil {
			t.Fatalf("read request body: %v", err)
		}
		if err := json.Unmarshal(bodyBytes, &capturedBody); err != nil {
			t.Fatalf("unmarshal request body: %v", err)
		}

		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(`{}`)),
			Header:     http.Header{},
		}, nil
	})

	client := newTestClient(t, rt)
	if err := client.AddItem(context.Background(), "prod-1", 2, "Large"); err != nil {
		t.Fatalf("add item: %v", err)
	}
	if capturedURL != expectedURL {
		t.Fatalf("unexpected URL %q", capturedURL)
	}
	if capturedMethod != http.MethodPost {
		t.Fatalf("unexpected method %q", capturedMethod)
	}
	if capturedAuth != "Bearer tok-1" {
		t.Fatalf("unexpected auth header %q", capturedAuth)
	}
	if capturedBody["productId"] != "prod-1" {
		t.Fatalf("unexpected productId %v", capturedBody["productId"])
	}
	if capturedBody["qty"] != float64(2) {
		t.Fatalf("unexpected qty %v", capturedBody["qty"])
	}
	if capturedBody["variantName"] != "Large" {
		t.Fatalf("unexpected variantName %v", capturedBody["variantName"])
	}
}

func TestClientUpdateAndRemovePaths(t *testing.T) {
	var urls []string
	var methods []string

	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		urls = append(urls, req.URL.String())
		methods = append(methods, req.Method)
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(`{}`)),
			Header:     http.Header{},
		}, nil
	})

	client := newTestClient(t, rt)
	if err := client.UpdateItem(context.Background(), "prod-1", 3, "Large"); err != nil {
		t.Fatalf("update item: %v", err)
	}
	if err := client.RemoveItem(context.Background(), "prod-1", "Large"); err != nil {
		t.Fatalf("remove item: %v", err)
	}
	if err := client.ClearCart(context.Background()); err != nil {
		t.Fatalf("clear cart: %v", err)
	}

	wantURLs := []string{
		"http://storefront.test/api/users/cart/prod-1",
		"http://storefront.test/api/users/cart/prod-1",
		"http://storefront.test/api/users/cart",
	}
	wantMethods := []string{http.MethodPatch, http.MethodDelete, http.MethodDelete}
	for i := range wantURLs {
		if urls[i] != wantURLs[i] {
			t.Fatalf("call %d: unexpected URL %q", i, urls[i])
		}
		if methods[i] != wantMethods[i] {
			t.Fatalf("call %d: unexpected method %q", i, methods[i])
		}
	}
}

func TestClientPlaceOrderDecodesResponse(t *testing.T) {
	respBody := `{"id":"ord-9","status":"pending","total":105}`

	var capturedIdemKey string
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		capturedIdemKey = req.Header.Get("Idempotency-Key")
		return &http.Response{
			StatusCode: http.StatusCreated,
			Body:       io.NopCloser(strings.NewReader(respBody)),
			Header:     http.Header{},
		}, nil
	})

	client := newTestClient(t, rt)
	order, err := client.PlaceOrder(context.Background(), PlaceOrderRequest{
		Items:         []OrderItem{{ProductID: "prod-1", Qty: 2, UnitPriceCents: 50}},
		PaymentMethod: "cash",
		Address:       "12 MG Road",
		Phone:         "9999999999",
		TotalCents:    105,
	})
	if err != nil {
		t.Fatalf("place order: %v", err)
	}
	if order.ID != "ord-9" {
		t.Fatalf("unexpected order id %q", order.ID)
	}
	if order.Status != "pending" {
		t.Fatalf("unexpected status %q", order.Status)
	}
	if capturedIdemKey == "" || !strings.HasPrefix(capturedIdemKey, "order-") {
		t.Fatalf("expected idempotency key, got %q", capturedIdemKey)
	}
}

func TestClientMapsErrorStatuses(t *testing.T) {
	tests := []struct {
		status int
		code   pkgerrors.Code
	}{
		{status: http.StatusUnauthorized, code: pkgerrors.CodeUnauthorized},
		{status: http.StatusNotFound, code: pkgerrors.CodeNotFound},
		{status: http.StatusConflict, code: pkgerrors.CodeConflict},
		{status: http.StatusBadRequest, code: pkgerrors.CodeValidation},
		{status: http.StatusBadGateway, code: pkgerrors.CodeDependency},
	}

	for _, tt := range tests {
		rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
			return &http.Response{
				StatusCode: tt.status,
				Body:       io.NopCloser(bytes.NewReader(nil)),
				Header:     http.Header{},
			}, nil
		})
		client := newTestClient(t, rt)
		err := client.ClearCart(context.Background())
		if err == nil {
			t.Fatalf("status %d: expected error", tt.status)
		}
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != tt.code {
			t.Fatalf("status %d: expected code %s, got %v", tt.status, tt.code, err)
		}
	}
}

func TestClientRejectsMissingCredentialWithoutNetworkCall(t *testing.T) {
	called := false
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		called = true
		return nil, nil
	})

	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	client, err := NewClient(
		config.APIConfig{BaseURL: "http://storefront.test"},
		session.Static(""),
		logg,
		WithHTTPClient(&http.Client{Transport: rt}),
	)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	_, fetchErr := client.FetchCart(context.Background())
	if fetchErr == nil {
		t.Fatal("expected unauthorized error")
	}
	if code := pkgerrors.As(fetchErr).Code(); code != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized code, got %s", code)
	}
	if called {
		t.Fatal("missing credential must not hit the network")
	}
}

func TestClientFetchFavoritesPreservesOrder(t *testing.T) {
	respBody := `{"productIds":["p3","p1","p2"]}`
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(respBody)),
			Header:     http.Header{},
		}, nil
	})

	client := newTestClient(t, rt)
	favs, err := client.FetchFavorites(context.Background())
	if err != nil {
		t.Fatalf("fetch favorites: %v", err)
	}
	want := []string{"p3", "p1", "p2"}
	if len(favs.ProductIDs) != len(want) {
		t.Fatalf("unexpected favorites %v", favs.ProductIDs)
	}
	for i := range want {
		if favs.ProductIDs[i] != want[i] {
			t.Fatalf("favorites order not preserved: %v", favs.ProductIDs)
		}
	}
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}
