package lockstore

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get when the key does not exist (or has
// already expired).
var ErrNotFound = errors.New("lockstore: key not found")

// Store is the capability set the lock manager needs from a shared,
// low-latency key-value store with per-key expiry. Any conforming backend
// works; the production implementation is Redis, tests use MemoryStore.
//
// Every operation may fail transiently (network, store outage). Callers
// must treat any returned error as "the operation did not happen" — never
// as success.
type Store interface {
	// Get returns the value stored at key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// SetWithTTL stores value at key, replacing any existing value, and
	// arms the key to expire after ttl.
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// SetNX stores value at key with ttl only if the key does not already
	// exist. Returns true if the key was created.
	SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)

	// Delete removes the given keys. Deleting a missing key is not an error.
	Delete(ctx context.Context, keys ...string) error

	// Exists reports whether key currently exists.
	Exists(ctx context.Context, key string) (bool, error)

	// SetAdd adds member to the set stored at key, creating it if needed.
	SetAdd(ctx context.Context, key, member string) error

	// SetRemove removes member from the set stored at key.
	SetRemove(ctx context.Context, key, member string) error

	// SetMembers returns all members of the set stored at key. A missing
	// key yields an empty slice, not an error.
	SetMembers(ctx context.Context, key string) ([]string, error)

	// Expire arms or re-arms key to expire after ttl.
	Expire(ctx context.Context, key string, ttl time.Duration) error

	// TimeToLive returns the remaining lifetime of key. Missing keys and
	// keys without an expiry report zero; the result is never negative.
	TimeToLive(ctx context.Context, key string) (time.Duration, error)
}
