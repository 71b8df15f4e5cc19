package cart

import (
	"time"

	"github.com/orderhai/storefront-client/internal/remote"
	"github.com/orderhai/storefront-client/pkg/enums"
)

// Line is one cart entry. At most one Line exists per product+variant pair;
// repeated adds increment Quantity instead.
type Line struct {
	ID             string `json:"id"`
	ProductID      string `json:"product_id"`
	Name           string `json:"name"`
	VariantID      string `json:"variant_id"`
	VariantName    string `json:"variant_name,omitempty"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	Quantity       int    `json:"quantity"`
	ImageRef       string `json:"image_ref,omitempty"`
}

// LineID derives the stable cart key for a product+variant pair.
func LineID(productID, variantID string) string {
	return productID + ":" + variantID
}

// Totals is the derived pricing view, recomputed on demand rather than
// cached across mutations.
type Totals struct {
	SubtotalCents    int64  `json:"subtotal_cents"`
	DeliveryFeeCents int64  `json:"delivery_fee_cents"`
	DiscountCents    int64  `json:"discount_cents"`
	TotalCents       int64  `json:"total_cents"`
	CouponCode       string `json:"coupon_code,omitempty"`
}

// CheckoutInfo carries the metadata submitted with an order.
type CheckoutInfo struct {
	PaymentMethod enums.PaymentMethod `json:"payment_method" validate:"required"`
	Address       string              `json:"address" validate:"required,min=5"`
	Phone         string              `json:"phone" validate:"required,min=7"`
	Name          string              `json:"name,omitempty"`
	Notes         string              `json:"notes,omitempty"`
	Location      *remote.Location    `json:"location,omitempty"`
}

// Order is an immutable snapshot taken at placement time. The only mutation
// the client applies afterwards is a status transition learned from the
// backend (order refresh, cancellation).
type Order struct {
	ID            string              `json:"id"`
	Status        enums.OrderStatus   `json:"status"`
	Items         []Line              `json:"items"`
	TotalCents    int64               `json:"total_cents"`
	PaymentMethod enums.PaymentMethod `json:"payment_method"`
	Address       string              `json:"address"`
	Phone         string              `json:"phone"`
	Name          string              `json:"name,omitempty"`
	Notes         string              `json:"notes,omitempty"`
	Location      *remote.Location    `json:"location,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
}

// Snapshot is a deep copy of the store's observable state, safe to hand to
// the UI while mutations continue.
type Snapshot struct {
	State  enums.StoreState `json:"state"`
	Lines  []Line           `json:"lines"`
	Totals Totals           `json:"totals"`
	Orders []Order          `json:"orders"`
}
