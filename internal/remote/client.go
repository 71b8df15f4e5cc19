// Package remote wraps the storefront HTTP API behind a typed client. Every
// call is fallible and latency-bearing; callers decide whether a failure is
// load-bearing (order placement) or advisory (mirror calls).
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/orderhai/storefront-client/internal/session"
	"github.com/orderhai/storefront-client/pkg/config"
	pkgerrors "github.com/orderhai/storefront-client/pkg/errors"
	"github.com/orderhai/storefront-client/pkg/logger"
)

const responseBodyReadLimit int64 = 1024

var (
	errBaseURLRequired     = errors.New("storefront base URL is required")
	errCredentialsRequired = errors.New("credential provider is required")
	errLoggerRequired      = errors.New("storefront logger is required")
)

// Client performs authenticated calls against the storefront API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	creds      session.CredentialProvider
	logger     *logger.Logger
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the configured base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// NewClient builds the storefront client and validates its dependencies.
func NewClient(cfg config.APIConfig, creds session.CredentialProvider, logg *logger.Logger, opts ...Option) (*Client, error) {
	if creds == nil {
		return nil, errCredentialsRequired
	}
	if logg == nil {
		return nil, errLoggerRequired
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimSpace(cfg.BaseURL),
		creds:      creds,
		logger:     logg,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	if client.baseURL == "" {
		return nil, errBaseURLRequired
	}

	return client, nil
}

// FetchCart loads the authoritative cart for the current session.
func (c *Client) FetchCart(ctx context.Context) (*CartPayload, error) {
	var payload CartPayload
	if err := c.do(ctx, http.MethodGet, "api/users/cart", nil, &payload, nil); err != nil {
		return nil, err
	}
	return &payload, nil
}

// AddItem mirrors an add-to-cart mutation.
func (c *Client) AddItem(ctx context.Context, productID string, qty int, variantName string) error {
	body := addItemRequest{ProductID: productID, Qty: qty, VariantName: variantName}
	return c.do(ctx, http.MethodPost, "api/users/cart", body, nil, map[string]any{
		"product_id": productID,
		"qty":        qty,
	})
}

// UpdateItem mirrors a quantity change for a cart line.
func (c *Client) UpdateItem(ctx context.Context, productID string, qty int, variantName string) error {
	body := updateItemRequest{Qty: qty, VariantName: variantName}
	path := "api/users/cart/" + url.PathEscape(productID)
	return c.do(ctx, http.MethodPatch, path, body, nil, map[string]any{
		"product_id": productID,
		"qty":        qty,
	})
}

// RemoveItem mirrors a cart line removal.
func (c *Client) RemoveItem(ctx context.Context, productID, variantName string) error {
	body := removeItemRequest{VariantName: variantName}
	path := "api/users/cart/" + url.PathEscape(productID)
	return c.do(ctx, http.MethodDelete, path, body, nil, map[string]any{
		"product_id": productID,
	})
}

// ClearCart mirrors a full cart clear.
func (c *Client) ClearCart(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "api/users/cart", nil, nil, nil)
}

// PlaceOrder submits the order snapshot. Unlike the mirror calls, its result
// is load-bearing: callers must not commit local effects until it succeeds.
// An idempotency key guards against double submission on retry.
func (c *Client) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*OrderPayload, error) {
	var payload OrderPayload
	headers := map[string]string{"Idempotency-Key": "order-" + uuid.NewString()}
	err := c.doWithHeaders(ctx, http.MethodPost, "api/users/orders", req, &payload, headers, map[string]any{
		"item_count":     len(req.Items),
		"payment_method": req.PaymentMethod,
		"total":          req.TotalCents,
	})
	if err != nil {
		return nil, err
	}
	return &payload, nil
}

// FetchOrders loads the order history for the current session.
func (c *Client) FetchOrders(ctx context.Context) ([]OrderPayload, error) {
	var payload struct {
		Orders []OrderPayload `json:"orders"`
	}
	if err := c.do(ctx, http.MethodGet, "api/users/orders", nil, &payload, nil); err != nil {
		return nil, err
	}
	return payload.Orders, nil
}

// CancelOrder requests cancellation of a placed order. Load-bearing, like
// PlaceOrder.
func (c *Client) CancelOrder(ctx context.Context, orderID string) (*OrderPayload, error) {
	var payload OrderPayload
	path := fmt.Sprintf("api/users/orders/%s/cancel", url.PathEscape(orderID))
	err := c.do(ctx, http.MethodPost, path, nil, &payload, map[string]any{
		"order_id": orderID,
	})
	if err != nil {
		return nil, err
	}
	return &payload, nil
}

// FetchFavorites loads the remote favorite list in presentation order.
func (c *Client) FetchFavorites(ctx context.Context) (*FavoritesPayload, error) {
	var payload FavoritesPayload
	if err := c.do(ctx, http.MethodGet, "api/users/favorites", nil, &payload, nil); err != nil {
		return nil, err
	}
	return &payload, nil
}

// AddFavorite mirrors a favorite toggle-on.
func (c *Client) AddFavorite(ctx context.Context, productID string) error {
	path := "api/users/favorites/" + url.PathEscape(productID)
	return c.do(ctx, http.MethodPost, path, nil, nil, map[string]any{
		"product_id": productID,
	})
}

// RemoveFavorite mirrors a favorite toggle-off.
func (c *Client) RemoveFavorite(ctx context.Context, productID string) error {
	path := "api/users/favorites/" + url.PathEscape(productID)
	return c.do(ctx, http.MethodDelete, path, nil, nil, map[string]any{
		"product_id": productID,
	})
}

func (c *Client) do(ctx context.Context, method, path string, body, out any, fields map[string]any) error {
	return c.doWithHeaders(ctx, method, path, body, out, nil, fields)
}

func (c *Client) doWithHeaders(ctx context.Context, method, path string, body, out any, headers map[string]string, fields map[string]any) error {
	if c == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "storefront client not configured")
	}

	token := strings.TrimSpace(c.creds.Token())
	if token == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "session token missing")
	}

	op := operationName(method, path)
	c.log(ctx, "request", op, fields)

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, fmt.Sprintf("marshal %s request", op))
		}
		reader = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.buildURL(path), reader)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("build %s request", op))
	}
	httpReq.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		wrapped := pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("execute %s request", op))
		c.log(ctx, "error", op, map[string]any{"error": err.Error()})
		return wrapped
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		code := domainCodeForStatus(resp.StatusCode)
		cause := fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
		c.log(ctx, "error", op, map[string]any{"error": cause.Error(), "status": resp.StatusCode})
		return pkgerrors.Wrap(code, cause, fmt.Sprintf("%s request failed", op))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			c.log(ctx, "error", op, map[string]any{"error": err.Error()})
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("decode %s response", op))
		}
	}

	c.log(ctx, "response", op, fields)
	return nil
}

func (c *Client) buildURL(path string) string {
	trimmed := strings.TrimRight(c.baseURL, "/")
	path = strings.TrimLeft(path, "/")
	return fmt.Sprintf("%s/%s", trimmed, path)
}

func (c *Client) log(ctx context.Context, phase, op string, fields map[string]any) {
	if c == nil || c.logger == nil {
		return
	}
	logFields := map[string]any{
		"operation": op,
		"phase":     phase,
	}
	for k, v := range fields {
		logFields[k] = redact(k, v)
	}
	ctx = c.logger.WithFields(ctx, logFields)
	switch phase {
	case "error":
		c.logger.Error(ctx, fmt.Sprintf("storefront %s", op), errors.New(fmt.Sprint(fields["error"])))
	default:
		c.logger.Info(ctx, fmt.Sprintf("storefront %s", phase))
	}
}

func redact(key string, value any) any {
	lower := strings.ToLower(key)
	for _, sensitive := range []string{"token", "secret", "phone", "address", "authorization"} {
		if strings.Contains(lower, sensitive) {
			return "[REDACTED]"
		}
	}
	return value
}

func operationName(method, path string) string {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	resource := "unknown"
	// paths look like api/users/<resource>[/...]
	if len(segments) >= 3 {
		resource = segments[2]
	}
	return fmt.Sprintf("%s_%s", strings.ToLower(method), resource)
}

func domainCodeForStatus(status int) pkgerrors.Code {
	switch status {
	case http.StatusUnauthorized:
		return pkgerrors.CodeUnauthorized
	case http.StatusNotFound:
		return pkgerrors.CodeNotFound
	case http.StatusConflict:
		return pkgerrors.CodeConflict
	case http.StatusTooManyRequests:
		return pkgerrors.CodeRateLimit
	default:
		if status >= 400 && status < 500 {
			return pkgerrors.CodeValidation
		}
		return pkgerrors.CodeDependency
	}
}
