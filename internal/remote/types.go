package remote

import "github.com/orderhai/storefront-client/pkg/enums"

// Wire shapes for the storefront API. Field names mirror the backend's JSON
// (camelCase) rather than Go conventions.

// CartItem is one cart line as the backend stores it.
type CartItem struct {
	ProductID      string `json:"productId"`
	Name           string `json:"name,omitempty"`
	VariantID      string `json:"variantId,omitempty"`
	VariantName    string `json:"variantName,omitempty"`
	UnitPriceCents int64  `json:"unitPrice,omitempty"`
	Qty            int    `json:"qty"`
	ImageRef       string `json:"imageRef,omitempty"`
}

// CartPayload is the GET /api/users/cart response body.
type CartPayload struct {
	Items []CartItem `json:"items"`
}

type addItemRequest struct {
	ProductID   string `json:"productId"`
	Qty         int    `json:"qty"`
	VariantName string `json:"variantName,omitempty"`
}

type updateItemRequest struct {
	Qty         int    `json:"qty"`
	VariantName string `json:"variantName,omitempty"`
}

type removeItemRequest struct {
	VariantName string `json:"variantName,omitempty"`
}

// Location is an optional delivery geolocation.
type Location struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
}

// OrderItem is one line of a submitted or returned order.
type OrderItem struct {
	ProductID      string `json:"productId"`
	Name           string `json:"name,omitempty"`
	VariantName    string `json:"variantName,omitempty"`
	UnitPriceCents int64  `json:"unitPrice"`
	Qty            int    `json:"qty"`
}

// PlaceOrderRequest is the POST /api/users/orders body.
type PlaceOrderRequest struct {
	Items         []OrderItem `json:"items"`
	PaymentMethod string      `json:"paymentMethod"`
	Address       string      `json:"address"`
	Phone         string      `json:"phone"`
	Name          string      `json:"name,omitempty"`
	Notes         string      `json:"notes,omitempty"`
	Location      *Location   `json:"location,omitempty"`
	TotalCents    int64       `json:"total"`
	CouponCode    string      `json:"couponCode,omitempty"`
}

// OrderPayload is the backend's order representation.
type OrderPayload struct {
	ID         string            `json:"id"`
	Status     enums.OrderStatus `json:"status,omitempty"`
	Items      []OrderItem       `json:"items,omitempty"`
	TotalCents int64             `json:"total,omitempty"`
	CreatedAt  string            `json:"createdAt,omitempty"`
}

// FavoritesPayload is the GET /api/users/favorites response body. Order is
// meaningful: the UI presents favorites as the backend returns them.
type FavoritesPayload struct {
	ProductIDs []string `json:"productIds"`
}
