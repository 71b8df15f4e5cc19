package cart

import (
	"context"

	"github.com/orderhai/storefront-client/internal/catalog"
	"github.com/orderhai/storefront-client/internal/remote"
	"github.com/orderhai/storefront-client/pkg/enums"
)

// Hydrate performs the one-time initial load for the current credential.
// Subsequent calls are no-ops until the credential changes, which re-arms
// the gate. A logged-out session hydrates to the current local state
// immediately without touching the network. A failed load still lands the
// store in Ready with best-available (local) data; there is no error state
// and no automatic retry.
func (s *Store) Hydrate(ctx context.Context) {
	token := s.creds.Token()

	s.mu.Lock()
	if s.hydrated && s.hydratedFor == token {
		s.mu.Unlock()
		return
	}
	if token == "" {
		s.hydrated = true
		s.hydratedFor = ""
		s.state = enums.StoreStateReady
		s.mu.Unlock()
		s.notify()
		return
	}
	s.state = enums.StoreStateHydrating
	s.mu.Unlock()

	payload, err := s.remote.FetchCart(ctx)

	s.mu.Lock()
	if err != nil {
		s.warnContext(ctx, "cart hydration failed; keeping local state", err)
	} else {
		s.reconcileLocked(payload.Items)
	}
	s.hydrated = true
	s.hydratedFor = token
	s.state = enums.StoreStateReady
	s.mu.Unlock()

	s.notify()
}

// reconcileLocked merges the authoritative remote cart into local state.
// Local writes win: a line present on both sides keeps its local quantity
// and pricing, and purely local lines survive (their mirror ops may still
// be in flight). Remote lines with no local counterpart are adopted.
//
// The wire carries variant names but usually no variant IDs, so remote
// items without one are matched to local lines by product+variant name,
// the same key the mirror calls put on the wire.
func (s *Store) reconcileLocked(items []remote.CartItem) {
	for _, item := range items {
		if item.Qty <= 0 {
			continue
		}
		variantID := item.VariantID
		if variantID == "" {
			if s.findByVariantNameLocked(item.ProductID, item.VariantName) != nil {
				continue
			}
			variantID = catalog.DefaultVariantID
		}
		id := LineID(item.ProductID, variantID)
		if s.findLocked(id) != nil {
			continue
		}
		s.lines = append(s.lines, &Line{
			ID:             id,
			ProductID:      item.ProductID,
			Name:           item.Name,
			VariantID:      variantID,
			VariantName:    item.VariantName,
			UnitPriceCents: item.UnitPriceCents,
			Quantity:       item.Qty,
			ImageRef:       item.ImageRef,
		})
	}
}
