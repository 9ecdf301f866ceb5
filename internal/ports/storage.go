// Package ports defines interfaces (hexagonal ports) for the session layer.
// Implementations live in internal/adapters and internal/api; orchestration in internal/service.
package ports

import "context"

// Persisted storage keys. These mirror the browser storage keys of the web client
// so that state written by either surface stays interchangeable.
const (
	KeyAuthToken          = "auth_token"
	KeyAuthUser           = "auth_user"
	KeyLocale             = "locale"
	KeySelectedChurchID   = "selected_church_id"
	KeySelectedChurchSlug = "selected_church_slug"
)

// KVStore is the persisted key-value backing store (get/set/remove).
type KVStore interface {
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, key string) (string, bool, error)
	// Set stores value under key, overwriting any previous value.
	Set(ctx context.Context, key, value string) error
	// Remove deletes key. Removing a missing key is not an error.
	Remove(ctx context.Context, key string) error
}
