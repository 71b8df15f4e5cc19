package enums

import "fmt"

// SyncOpKind names the mirror operations queued on a store outbox.
type SyncOpKind string

const (
	SyncOpCartAdd        SyncOpKind = "cart.add"
	SyncOpCartUpdate     SyncOpKind = "cart.update"
	SyncOpCartRemove     SyncOpKind = "cart.remove"
	SyncOpCartClear      SyncOpKind = "cart.clear"
	SyncOpFavoriteAdd    SyncOpKind = "favorite.add"
	SyncOpFavoriteRemove SyncOpKind = "favorite.remove"
)

var validSyncOpKinds = []SyncOpKind{
	SyncOpCartAdd,
	SyncOpCartUpdate,
	SyncOpCartRemove,
	SyncOpCartClear,
	SyncOpFavoriteAdd,
	SyncOpFavoriteRemove,
}

// String implements fmt.Stringer.
func (k SyncOpKind) String() string {
	return string(k)
}

// IsValid reports whether the value is a known SyncOpKind.
func (k SyncOpKind) IsValid() bool {
	for _, candidate := range validSyncOpKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// ParseSyncOpKind converts raw input into a SyncOpKind.
func ParseSyncOpKind(value string) (SyncOpKind, error) {
	for _, candidate := range validSyncOpKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid sync op kind %q", value)
}
