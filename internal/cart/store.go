// Package cart owns the optimistic shopping cart: lines, pricing, coupon,
// and order submission. Local state mutates synchronously so the UI never
// waits; a per-store outbox mirrors each mutation to the storefront API in
// the background. Order placement is the one operation whose remote outcome
// is load-bearing.
package cart

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/orderhai/storefront-client/internal/catalog"
	"github.com/orderhai/storefront-client/internal/coupon"
	"github.com/orderhai/storefront-client/internal/outbox"
	"github.com/orderhai/storefront-client/internal/remote"
	"github.com/orderhai/storefront-client/internal/session"
	"github.com/orderhai/storefront-client/pkg/enums"
	"github.com/orderhai/storefront-client/pkg/logger"
	"github.com/orderhai/storefront-client/pkg/metrics"
)

const storeName = "cart"

// RemoteAPI is the slice of the storefront client the cart depends on.
type RemoteAPI interface {
	FetchCart(ctx context.Context) (*remote.CartPayload, error)
	AddItem(ctx context.Context, productID string, qty int, variantName string) error
	UpdateItem(ctx context.Context, productID string, qty int, variantName string) error
	RemoveItem(ctx context.Context, productID, variantName string) error
	ClearCart(ctx context.Context) error
	PlaceOrder(ctx context.Context, req remote.PlaceOrderRequest) (*remote.OrderPayload, error)
	FetchOrders(ctx context.Context) ([]remote.OrderPayload, error)
	CancelOrder(ctx context.Context, orderID string) (*remote.OrderPayload, error)
}

// StoreParams groups dependencies for the cart store.
type StoreParams struct {
	Remote           RemoteAPI
	Credentials      session.CredentialProvider
	Logger           *logger.Logger
	Metrics          *metrics.SyncMetrics
	DeliveryFeeCents int64
	OutboxAttempts   int
	OutboxBackoff    time.Duration
}

// Store is the optimistic cart. All exported methods are safe for concurrent
// use; mutations commit locally before their mirror op is enqueued.
type Store struct {
	remote      RemoteAPI
	creds       session.CredentialProvider
	logg        *logger.Logger
	deliveryFee int64

	mu          sync.Mutex
	state       enums.StoreState
	hydratedFor string
	hydrated    bool
	lines       []*Line
	coupon      *coupon.Coupon
	orders      []Order
	listeners   map[int]func()
	nextListen  int

	queue *outbox.Queue
}

// NewStore builds a cart store and starts its outbox drainer.
func NewStore(params StoreParams) (*Store, error) {
	if params.Remote == nil {
		return nil, errors.New("remote client is required")
	}
	if params.Credentials == nil {
		return nil, errors.New("credential provider is required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger is required")
	}

	s := &Store{
		remote:      params.Remote,
		creds:       params.Credentials,
		logg:        params.Logger,
		deliveryFee: params.DeliveryFeeCents,
		state:       enums.StoreStateUninitialized,
		listeners:   map[int]func(){},
	}
	s.queue = outbox.NewQueue(outbox.Options{
		StoreName:   storeName,
		Logger:      params.Logger,
		Metrics:     params.Metrics,
		MaxAttempts: params.OutboxAttempts,
		BaseBackoff: params.OutboxBackoff,
	})
	return s, nil
}

// Close stops the background drainer. Pending mirror ops are discarded.
func (s *Store) Close() {
	s.queue.Close()
}

// State reports the hydration state.
func (s *Store) State() enums.StoreState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// AddItem resolves the product's variant, prices it, and adds one unit to
// the cart. An existing product+variant line is incremented instead of
// duplicated. The remote mirror is best-effort.
func (s *Store) AddItem(product catalog.Product, variantID string) Line {
	variant := product.ResolveVariant(variantID)
	unitPrice := product.UnitPriceCents(variant)

	s.mu.Lock()
	s.ensureReadyLocked()

	id := LineID(product.ID, variant.ID)
	line := s.findLocked(id)
	if line == nil {
		// Hydrated lines may be keyed by name only; fold into them rather
		// than opening a second line for the same product+variant pair.
		line = s.findByVariantNameLocked(product.ID, variant.Name)
	}
	if line != nil {
		line.Quantity++
		if line.UnitPriceCents == 0 {
			line.UnitPriceCents = unitPrice
		}
	} else {
		line = &Line{
			ID:             id,
			ProductID:      product.ID,
			Name:           product.Name,
			VariantID:      variant.ID,
			VariantName:    variant.Name,
			UnitPriceCents: unitPrice,
			Quantity:       1,
			ImageRef:       product.ImageRef,
		}
		s.lines = append(s.lines, line)
	}
	result := *line
	s.mirrorLocked(enums.SyncOpCartAdd, result.ProductID, func(ctx context.Context) error {
		return s.remote.AddItem(ctx, result.ProductID, 1, result.VariantName)
	})
	s.mu.Unlock()

	s.notify()
	return result
}

// UpdateQuantity replaces a line's quantity. A quantity of zero or less
// removes the line entirely; non-positive quantities are never stored.
func (s *Store) UpdateQuantity(lineID string, quantity int) {
	if quantity <= 0 {
		s.RemoveItem(lineID)
		return
	}

	s.mu.Lock()
	s.ensureReadyLocked()
	line := s.findLocked(lineID)
	if line == nil {
		s.mu.Unlock()
		return
	}
	line.Quantity = quantity
	productID, variantName := line.ProductID, line.VariantName
	s.mirrorLocked(enums.SyncOpCartUpdate, productID, func(ctx context.Context) error {
		return s.remote.UpdateItem(ctx, productID, quantity, variantName)
	})
	s.mu.Unlock()

	s.notify()
}

// RemoveItem drops a line from the cart.
func (s *Store) RemoveItem(lineID string) {
	s.mu.Lock()
	s.ensureReadyLocked()
	line := s.findLocked(lineID)
	if line == nil {
		s.mu.Unlock()
		return
	}
	s.removeLocked(lineID)
	productID, variantName := line.ProductID, line.VariantName
	s.mirrorLocked(enums.SyncOpCartRemove, productID, func(ctx context.Context) error {
		return s.remote.RemoveItem(ctx, productID, variantName)
	})
	s.mu.Unlock()

	s.notify()
}

// Clear empties the cart. The applied coupon survives; it simply discounts
// nothing until lines return.
func (s *Store) Clear() {
	s.mu.Lock()
	s.ensureReadyLocked()
	if len(s.lines) == 0 {
		s.mu.Unlock()
		return
	}
	s.lines = nil
	s.mirrorLocked(enums.SyncOpCartClear, "", func(ctx context.Context) error {
		return s.remote.ClearCart(ctx)
	})
	s.mu.Unlock()

	s.notify()
}

// ApplyCoupon validates a code against the local rule table. Valid codes
// replace the applied coupon and return true; invalid codes leave state
// untouched and return false. Applying the same code twice is idempotent.
func (s *Store) ApplyCoupon(code string) bool {
	c, ok := coupon.Lookup(code)
	if !ok {
		return false
	}

	s.mu.Lock()
	s.ensureReadyLocked()
	s.coupon = &c
	s.mu.Unlock()

	s.notify()
	return true
}

// Totals recomputes the derived pricing for the current cart.
func (s *Store) Totals() Totals {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalsLocked()
}

// Lines returns a copy of the current cart lines in insertion order.
func (s *Store) Lines() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyLinesLocked()
}

// Orders returns the in-session order history, newest first.
func (s *Store) Orders() []Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyOrdersLocked()
}

// Snapshot captures the full observable state in one consistent view.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		State:  s.state,
		Lines:  s.copyLinesLocked(),
		Totals: s.totalsLocked(),
		Orders: s.copyOrdersLocked(),
	}
}

// Subscribe registers a callback invoked after every committed mutation.
// The returned function removes the subscription.
func (s *Store) Subscribe(fn func()) func() {
	if fn == nil {
		return func() {}
	}
	s.mu.Lock()
	id := s.nextListen
	s.nextListen++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// PendingMirrorOps reports the outbox depth, exposed so callers can reason
// about the eventual-consistency window.
func (s *Store) PendingMirrorOps() int {
	return s.queue.Depth()
}

// FlushMirror blocks until the outbox is empty or the context ends.
func (s *Store) FlushMirror(ctx context.Context) error {
	return s.queue.Drain(ctx)
}

func (s *Store) ensureReadyLocked() {
	s.state = enums.StoreStateReady
}

// mirrorLocked enqueues a mirror op for an already-committed mutation. A
// logged-out session skips the wire entirely; local state still stands.
func (s *Store) mirrorLocked(kind enums.SyncOpKind, ref string, submit func(ctx context.Context) error) {
	if s.creds.Token() == "" {
		return
	}
	s.queue.Enqueue(kind, ref, submit)
}

func (s *Store) findLocked(id string) *Line {
	for _, line := range s.lines {
		if line.ID == id {
			return line
		}
	}
	return nil
}

// findByVariantNameLocked matches on the key the wire actually carries:
// product ID plus variant name.
func (s *Store) findByVariantNameLocked(productID, variantName string) *Line {
	for _, line := range s.lines {
		if line.ProductID == productID && line.VariantName == variantName {
			return line
		}
	}
	return nil
}

func (s *Store) removeLocked(id string) {
	for i, line := range s.lines {
		if line.ID == id {
			s.lines = append(s.lines[:i], s.lines[i+1:]...)
			return
		}
	}
}

func (s *Store) totalsLocked() Totals {
	var subtotal int64
	for _, line := range s.lines {
		subtotal += line.UnitPriceCents * int64(line.Quantity)
	}
	var fee int64
	if len(s.lines) > 0 {
		fee = s.deliveryFee
	}
	totals := Totals{
		SubtotalCents:    subtotal,
		DeliveryFeeCents: fee,
	}
	payable := subtotal + fee
	if s.coupon != nil {
		totals.CouponCode = s.coupon.Code
		totals.DiscountCents = s.coupon.DiscountCents(payable)
	}
	totals.TotalCents = payable - totals.DiscountCents
	return totals
}

func (s *Store) copyLinesLocked() []Line {
	out := make([]Line, 0, len(s.lines))
	for _, line := range s.lines {
		out = append(out, *line)
	}
	return out
}

func (s *Store) copyOrdersLocked() []Order {
	out := make([]Order, len(s.orders))
	copy(out, s.orders)
	for i := range out {
		items := make([]Line, len(out[i].Items))
		copy(items, out[i].Items)
		out[i].Items = items
	}
	return out
}

func (s *Store) notify() {
	s.mu.Lock()
	fns := make([]func(), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

func (s *Store) warnContext(ctx context.Context, msg string, err error) {
	if s.logg == nil {
		return
	}
	logCtx := s.logg.WithStore(ctx, storeName)
	if err != nil {
		logCtx = s.logg.WithField(logCtx, "error", err.Error())
	}
	s.logg.Warn(logCtx, msg)
}
