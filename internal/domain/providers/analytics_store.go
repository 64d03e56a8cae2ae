package providers

import (
	"context"
	"errors"
	"time"
)

// ErrKeyNotFound is returned by Get when a key is absent or expired.
var ErrKeyNotFound = errors.New("key not found")

// AnalyticsStore is the keyed expiring store the analytics engine runs on.
// The Redis adapter provides the shared persistent implementation; the
// memory adapter provides the process-local fallback with equivalent
// semantics (expiry emulated by deadline-checked lazy deletion). Callers
// never branch on which implementation is active.
type AnalyticsStore interface {
	// Get retrieves the value for a key, or ErrKeyNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// SetWithExpiry stores a value that expires after ttl.
	SetWithExpiry(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Increment atomically increments the integer value at key, creating
	// it at 1 when absent, and returns the new value.
	Increment(ctx context.Context, key string) (int64, error)

	// SetExpiry resets the ttl of an existing key.
	SetExpiry(ctx context.Context, key string, ttl time.Duration) error

	// ListPushFront prepends a value to the list at key.
	ListPushFront(ctx context.Context, key string, value string) error

	// ListTrim keeps only the elements of the list within [start, stop].
	// Negative indexes count from the end, -1 being the last element.
	ListTrim(ctx context.Context, key string, start, stop int64) error

	// ListRange returns the elements of the list within [start, stop].
	ListRange(ctx context.Context, key string, start, stop int64) ([]string, error)

	// KeysByPrefix enumerates all live keys starting with prefix.
	KeysByPrefix(ctx context.Context, prefix string) ([]string, error)
}
