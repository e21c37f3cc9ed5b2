package domain

import "context"

// KeyValueStore is durable, string-keyed storage for cache envelopes and favorites.
// Values are whole blobs: Set always overwrites, there are no partial updates.
type KeyValueStore interface {
	// Get returns the stored value and true, or false when the key is absent.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	Set(ctx context.Context, key string, value []byte) error

	// Delete removes the key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	Close() error
}
