package enums

import "fmt"

// StoreState tracks hydration progress for an optimistic local store.
// Failures never park a store in a terminal error state; a failed hydration
// still lands in Ready with best-available data.
type StoreState string

const (
	StoreStateUninitialized StoreState = "uninitialized"
	StoreStateHydrating     StoreState = "hydrating"
	StoreStateReady         StoreState = "ready"
)

var validStoreStates = []StoreState{
	StoreStateUninitialized,
	StoreStateHydrating,
	StoreStateReady,
}

// String implements fmt.Stringer.
func (s StoreState) String() string {
	return string(s)
}

// IsValid reports whether the value is a known StoreState.
func (s StoreState) IsValid() bool {
	for _, candidate := range validStoreStates {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseStoreState converts raw input into a StoreState.
func ParseStoreState(value string) (StoreState, error) {
	for _, candidate := range validStoreStates {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid store state %q", value)
}
