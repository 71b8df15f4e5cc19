package cart

import (
	"context"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/orderhai/storefront-client/internal/remote"
	"github.com/orderhai/storefront-client/pkg/enums"
	pkgerrors "github.com/orderhai/storefront-client/pkg/errors"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" {
			return f.Name
		}
		return tag
	})
	return v
}

// PlaceOrder submits the current cart as an order. Unlike the mirror
// operations, this call is load-bearing: the cart is cleared and the order
// recorded only after the backend accepts it. A rejected or failed
// submission leaves the cart and history untouched.
func (s *Store) PlaceOrder(ctx context.Context, info CheckoutInfo) (*Order, error) {
	if err := validateCheckout(info); err != nil {
		return nil, err
	}

	s.mu.Lock()
	if len(s.lines) == 0 {
		s.mu.Unlock()
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}
	snapshot := s.copyLinesLocked()
	totals := s.totalsLocked()
	s.mu.Unlock()

	req := remote.PlaceOrderRequest{
		Items:         toOrderItems(snapshot),
		PaymentMethod: info.PaymentMethod.String(),
		Address:       info.Address,
		Phone:         info.Phone,
		Name:          info.Name,
		Notes:         info.Notes,
		Location:      info.Location,
		TotalCents:    totals.TotalCents,
		CouponCode:    totals.CouponCode,
	}

	payload, err := s.remote.PlaceOrder(ctx, req)
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "order submission failed")
	}

	order := buildOrder(payload, snapshot, totals.TotalCents, info)

	s.mu.Lock()
	s.orders = append([]Order{order}, s.orders...)
	s.lines = nil
	s.coupon = nil
	s.state = enums.StoreStateReady
	s.mu.Unlock()

	s.notify()
	return &order, nil
}

// RefreshOrders replaces the in-session order history with the backend's
// view. Status transitions applied elsewhere (confirmation, delivery,
// cancellation) arrive through this read.
func (s *Store) RefreshOrders(ctx context.Context) error {
	if s.creds.Token() == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "session token missing")
	}
	payloads, err := s.remote.FetchOrders(ctx)
	if err != nil {
		return err
	}

	orders := make([]Order, 0, len(payloads))
	for _, p := range payloads {
		orders = append(orders, orderFromPayload(p))
	}

	s.mu.Lock()
	s.orders = orders
	s.mu.Unlock()

	s.notify()
	return nil
}

// CancelOrder requests cancellation from the backend. Load-bearing: the
// local copy transitions to cancelled only after the backend confirms.
func (s *Store) CancelOrder(ctx context.Context, orderID string) error {
	if orderID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	payload, err := s.remote.CancelOrder(ctx, orderID)
	if err != nil {
		return err
	}

	status := enums.OrderStatusCancelled
	if payload != nil && payload.Status.IsValid() {
		status = payload.Status
	}

	s.mu.Lock()
	for i := range s.orders {
		if s.orders[i].ID == orderID {
			s.orders[i].Status = status
			break
		}
	}
	s.mu.Unlock()

	s.notify()
	return nil
}

func validateCheckout(info CheckoutInfo) error {
	if !info.PaymentMethod.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method").
			WithDetails(map[string]string{"payment_method": string(info.PaymentMethod)})
	}
	if err := validate.Struct(info); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok {
			details := map[string]string{}
			for _, fieldErr := range errs {
				details[fieldErr.Field()] = "is invalid"
			}
			return pkgerrors.New(pkgerrors.CodeValidation, "checkout info invalid").WithDetails(details)
		}
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "checkout info invalid")
	}
	return nil
}

func toOrderItems(lines []Line) []remote.OrderItem {
	items := make([]remote.OrderItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, remote.OrderItem{
			ProductID:      line.ProductID,
			Name:           line.Name,
			VariantName:    line.VariantName,
			UnitPriceCents: line.UnitPriceCents,
			Qty:            line.Quantity,
		})
	}
	return items
}

// buildOrder assembles the immutable order record, preferring the backend's
// response and falling back to locally-known data where the response is
// silent.
func buildOrder(payload *remote.OrderPayload, snapshot []Line, totalCents int64, info CheckoutInfo) Order {
	order := Order{
		ID:            uuid.NewString(),
		Status:        enums.OrderStatusPending,
		Items:         snapshot,
		TotalCents:    totalCents,
		PaymentMethod: info.PaymentMethod,
		Address:       info.Address,
		Phone:         info.Phone,
		Name:          info.Name,
		Notes:         info.Notes,
		Location:      info.Location,
		CreatedAt:     time.Now().UTC(),
	}
	if payload == nil {
		return order
	}
	if payload.ID != "" {
		order.ID = payload.ID
	}
	if payload.Status.IsValid() {
		order.Status = payload.Status
	}
	if len(payload.Items) > 0 {
		order.Items = linesFromOrderItems(payload.Items)
	}
	if payload.TotalCents > 0 {
		order.TotalCents = payload.TotalCents
	}
	if payload.CreatedAt != "" {
		if ts, err := time.Parse(time.RFC3339, payload.CreatedAt); err == nil {
			order.CreatedAt = ts
		}
	}
	return order
}

func orderFromPayload(p remote.OrderPayload) Order {
	order := Order{
		ID:         p.ID,
		Status:     enums.OrderStatusPending,
		Items:      linesFromOrderItems(p.Items),
		TotalCents: p.TotalCents,
	}
	if p.Status.IsValid() {
		order.Status = p.Status
	}
	if p.CreatedAt != "" {
		if ts, err := time.Parse(time.RFC3339, p.CreatedAt); err == nil {
			order.CreatedAt = ts
		}
	}
	return order
}

func linesFromOrderItems(items []remote.OrderItem) []Line {
	lines := make([]Line, 0, len(items))
	for _, item := range items {
		lines = append(lines, Line{
			ID:             LineID(item.ProductID, item.VariantName),
			ProductID:      item.ProductID,
			Name:           item.Name,
			VariantName:    item.VariantName,
			UnitPriceCents: item.UnitPriceCents,
			Quantity:       item.Qty,
		})
	}
	return lines
}
