// Package favorites owns the user's favorite products. Toggles flip local
// state immediately and mirror to the backend through an outbox; a failed
// mirror never rolls the flip back. Unlike the cart, favorites require a
// logged-in session: there is no anonymous favorites list to build up.
package favorites

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/orderhai/storefront-client/internal/outbox"
	"github.com/orderhai/storefront-client/internal/remote"
	"github.com/orderhai/storefront-client/internal/session"
	"github.com/orderhai/storefront-client/pkg/enums"
	pkgerrors "github.com/orderhai/storefront-client/pkg/errors"
	"github.com/orderhai/storefront-client/pkg/logger"
	"github.com/orderhai/storefront-client/pkg/metrics"
)

const storeName = "favorites"

// RemoteAPI is the slice of the storefront client the favorites store
// depends on.
type RemoteAPI interface {
	FetchFavorites(ctx context.Context) (*remote.FavoritesPayload, error)
	AddFavorite(ctx context.Context, productID string) error
	RemoveFavorite(ctx context.Context, productID string) error
}

// SyncWarnFunc observes mirror ops the outbox gave up on, so a UI can tell
// the user a favorite may not have stuck on the backend.
type SyncWarnFunc func(productID string, kind enums.SyncOpKind, err error)

// StoreParams groups dependencies for the favorites store.
type StoreParams struct {
	Remote         RemoteAPI
	Credentials    session.CredentialProvider
	Logger         *logger.Logger
	Metrics        *metrics.SyncMetrics
	OutboxAttempts int
	OutboxBackoff  time.Duration
	OnSyncDrop     SyncWarnFunc
}

// Store is the optimistic favorites set. Exported methods are safe for
// concurrent use.
type Store struct {
	remote RemoteAPI
	creds  session.CredentialProvider
	logg   *logger.Logger

	mu          sync.Mutex
	state       enums.StoreState
	hydratedFor string
	hydrated    bool
	order       []string
	members     map[string]bool
	listeners   map[int]func()
	nextListen  int

	queue *outbox.Queue
}

// NewStore builds a favorites store and starts its outbox drainer.
func NewStore(params StoreParams) (*Store, error) {
	if params.Remote == nil {
		return nil, errors.New("favorites: remote client is required")
	}
	if params.Credentials == nil {
		return nil, errors.New("favorites: credential provider is required")
	}
	if params.Logger == nil {
		return nil, errors.New("favorites: logger is required")
	}

	s := &Store{
		remote:    params.Remote,
		creds:     params.Credentials,
		logg:      params.Logger,
		state:     enums.StoreStateUninitialized,
		members:   map[string]bool{},
		listeners: map[int]func(){},
	}
	onDrop := params.OnSyncDrop
	s.queue = outbox.NewQueue(outbox.Options{
		StoreName:   storeName,
		Logger:      params.Logger,
		Metrics:     params.Metrics,
		MaxAttempts: params.OutboxAttempts,
		BaseBackoff: params.OutboxBackoff,
		OnDrop: func(op outbox.Op, err error) {
			if onDrop != nil {
				onDrop(op.Ref, op.Kind, err)
			}
		},
	})
	return s, nil
}

// Close stops the outbox drainer. Pending mirror ops are discarded.
func (s *Store) Close() {
	s.queue.Close()
}

// State reports the hydration phase.
func (s *Store) State() enums.StoreState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Hydrate loads the favorites list from the backend, once per credential.
// A logged-out session hydrates to an empty set without touching the wire.
// Remote items merge into whatever was toggled locally before the fetch
// returned; local membership wins on conflict because the set is a union.
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
	s.notify()

	payload, err := s.remote.FetchFavorites(ctx)

	s.mu.Lock()
	if err != nil {
		logCtx := s.logg.WithStore(ctx, storeName)
		logCtx = s.logg.WithField(logCtx, "error", err.Error())
		s.logg.Warn(logCtx, "favorites hydration failed, keeping local set")
	} else if payload != nil {
		for _, id := range payload.ProductIDs {
			if id == "" || s.members[id] {
				continue
			}
			s.members[id] = true
			s.order = append(s.order, id)
		}
	}
	s.hydrated = true
	s.hydratedFor = token
	s.state = enums.StoreStateReady
	s.mu.Unlock()

	s.notify()
}

// IsFavorite reports membership for a product.
func (s *Store) IsFavorite(productID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.members[productID]
}

// ToggleFavorite flips a product's membership and mirrors the change. The
// flip commits before the mirror op is enqueued and is never rolled back.
// A logged-out session gets an error and no state change.
func (s *Store) ToggleFavorite(productID string) (bool, error) {
	if productID == "" {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if s.creds.Token() == "" {
		return false, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in to save favorites")
	}

	s.mu.Lock()
	s.state = enums.StoreStateReady
	nowFavorite := !s.members[productID]
	if nowFavorite {
		s.members[productID] = true
		s.order = append(s.order, productID)
		s.queue.Enqueue(enums.SyncOpFavoriteAdd, productID, func(ctx context.Context) error {
			return s.remote.AddFavorite(ctx, productID)
		})
	} else {
		delete(s.members, productID)
		s.removeOrderedLocked(productID)
		s.queue.Enqueue(enums.SyncOpFavoriteRemove, productID, func(ctx context.Context) error {
			return s.remote.RemoveFavorite(ctx, productID)
		})
	}
	s.mu.Unlock()

	s.notify()
	return nowFavorite, nil
}

// Snapshot returns the favorite product IDs in insertion order.
func (s *Store) Snapshot() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Subscribe registers a change listener and returns its removal func.
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

// PendingMirrorOps reports outbox depth, for shutdown decisions.
func (s *Store) PendingMirrorOps() int {
	return s.queue.Depth()
}

// FlushMirror blocks until the outbox is empty or the context ends.
func (s *Store) FlushMirror(ctx context.Context) error {
	return s.queue.Drain(ctx)
}

func (s *Store) removeOrderedLocked(productID string) {
	for i, id := range s.order {
		if id == productID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			return
		}
	}
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
