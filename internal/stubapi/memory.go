// Package stubapi is an in-memory rendition of the storefront backend, used
// by the demo binary and by integration tests. Accounts are keyed by bearer
// token and live for the lifetime of the process.
package stubapi

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/orderhai/storefront-client/internal/remote"
	"github.com/orderhai/storefront-client/pkg/enums"
	pkgerrors "github.com/orderhai/storefront-client/pkg/errors"
)

type account struct {
	items     []remote.CartItem
	orders    []remote.OrderPayload
	favorites []string
	favSet    map[string]bool
	orderKeys map[string]string // idempotency key -> order ID
}

// Memory holds per-token state behind one mutex. Contention is irrelevant at
// stub scale.
type Memory struct {
	mu       sync.Mutex
	accounts map[string]*account
	prices   map[string]int64
	now      func() time.Time
}

// NewMemory builds an empty backend state.
func NewMemory() *Memory {
	return &Memory{
		accounts: map[string]*account{},
		prices:   map[string]int64{},
		now:      time.Now,
	}
}

// SeedPrice registers the unit price the backend quotes for a
// product+variant pair. The add-to-cart body carries no price, so the
// backend is the pricing authority; hydrated carts echo these values.
func (m *Memory) SeedPrice(productID, variantName string, cents int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prices[priceKey(productID, variantName)] = cents
}

func priceKey(productID, variantName string) string {
	return productID + "|" + variantName
}

func (m *Memory) accountFor(token string) *account {
	acct, ok := m.accounts[token]
	if !ok {
		acct = &account{favSet: map[string]bool{}, orderKeys: map[string]string{}}
		m.accounts[token] = acct
	}
	return acct
}

// Cart returns a copy of the account's cart lines.
func (m *Memory) Cart(token string) []remote.CartItem {
	m.mu.Lock()
	defer m.mu.Unlock()
	acct := m.accountFor(token)
	out := make([]remote.CartItem, len(acct.items))
	copy(out, acct.items)
	return out
}

// AddCartItem merges a line into the cart, incrementing quantity when the
// product+variant pair already exists.
func (m *Memory) AddCartItem(token string, item remote.CartItem) error {
	if item.ProductID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "productId is required")
	}
	if item.Qty <= 0 {
		item.Qty = 1
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if item.UnitPriceCents == 0 {
		item.UnitPriceCents = m.prices[priceKey(item.ProductID, item.VariantName)]
	}
	acct := m.accountFor(token)
	for i := range acct.items {
		if acct.items[i].ProductID == item.ProductID && acct.items[i].VariantName == item.VariantName {
			acct.items[i].Qty += item.Qty
			return nil
		}
	}
	acct.items = append(acct.items, item)
	return nil
}

// UpdateCartItem replaces a line's quantity. Zero or negative removes it.
func (m *Memory) UpdateCartItem(token, productID, variantName string, qty int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	acct := m.accountFor(token)
	for i := range acct.items {
		if acct.items[i].ProductID == productID && acct.items[i].VariantName == variantName {
			if qty <= 0 {
				acct.items = append(acct.items[:i], acct.items[i+1:]...)
			} else {
				acct.items[i].Qty = qty
			}
			return nil
		}
	}
	return pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
}

// RemoveCartItem drops a line.
func (m *Memory) RemoveCartItem(token, productID, variantName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	acct := m.accountFor(token)
	for i := range acct.items {
		if acct.items[i].ProductID == productID && acct.items[i].VariantName == variantName {
			acct.items = append(acct.items[:i], acct.items[i+1:]...)
			return nil
		}
	}
	return pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
}

// ClearCart empties the cart.
func (m *Memory) ClearCart(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accountFor(token).items = nil
}

// PlaceOrder records an order and clears the cart. A repeated idempotency
// key returns the previously created order instead of a duplicate.
func (m *Memory) PlaceOrder(token, idempotencyKey string, req remote.PlaceOrderRequest) (remote.OrderPayload, error) {
	if len(req.Items) == 0 {
		return remote.OrderPayload{}, pkgerrors.New(pkgerrors.CodeValidation, "order has no items")
	}
	if req.Address == "" || req.Phone == "" {
		return remote.OrderPayload{}, pkgerrors.New(pkgerrors.CodeValidation, "address and phone are required")
	}
	if _, err := enums.ParsePaymentMethod(req.PaymentMethod); err != nil {
		return remote.OrderPayload{}, pkgerrors.New(pkgerrors.CodeValidation, "unknown payment method")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	acct := m.accountFor(token)

	if idempotencyKey != "" {
		if id, ok := acct.orderKeys[idempotencyKey]; ok {
			for _, o := range acct.orders {
				if o.ID == id {
					return o, nil
				}
			}
		}
	}

	order := remote.OrderPayload{
		ID:         uuid.NewString(),
		Status:     enums.OrderStatusPending,
		Items:      req.Items,
		TotalCents: req.TotalCents,
		CreatedAt:  m.now().UTC().Format(time.RFC3339),
	}
	acct.orders = append([]remote.OrderPayload{order}, acct.orders...)
	acct.items = nil
	if idempotencyKey != "" {
		acct.orderKeys[idempotencyKey] = order.ID
	}
	return order, nil
}

// Orders returns the account's order history, newest first.
func (m *Memory) Orders(token string) []remote.OrderPayload {
	m.mu.Lock()
	defer m.mu.Unlock()
	acct := m.accountFor(token)
	out := make([]remote.OrderPayload, len(acct.orders))
	copy(out, acct.orders)
	return out
}

// CancelOrder transitions an order to cancelled. Delivered orders conflict.
func (m *Memory) CancelOrder(token, orderID string) (remote.OrderPayload, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	acct := m.accountFor(token)
	for i := range acct.orders {
		if acct.orders[i].ID != orderID {
			continue
		}
		switch acct.orders[i].Status {
		case enums.OrderStatusDelivered:
			return remote.OrderPayload{}, pkgerrors.New(pkgerrors.CodeConflict, "order already delivered")
		case enums.OrderStatusCancelled:
			return acct.orders[i], nil
		}
		acct.orders[i].Status = enums.OrderStatusCancelled
		return acct.orders[i], nil
	}
	return remote.OrderPayload{}, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
}

// Favorites returns the account's favorite product IDs in insertion order.
func (m *Memory) Favorites(token string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	acct := m.accountFor(token)
	out := make([]string, len(acct.favorites))
	copy(out, acct.favorites)
	return out
}

// AddFavorite marks a product as favorite. Idempotent.
func (m *Memory) AddFavorite(token, productID string) error {
	if productID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "productId is required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	acct := m.accountFor(token)
	if acct.favSet[productID] {
		return nil
	}
	acct.favSet[productID] = true
	acct.favorites = append(acct.favorites, productID)
	return nil
}

// RemoveFavorite unmarks a product. Idempotent.
func (m *Memory) RemoveFavorite(token, productID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	acct := m.accountFor(token)
	if !acct.favSet[productID] {
		return nil
	}
	delete(acct.favSet, productID)
	for i, id := range acct.favorites {
		if id == productID {
			acct.favorites = append(acct.favorites[:i], acct.favorites[i+1:]...)
			break
		}
	}
	return nil
}
