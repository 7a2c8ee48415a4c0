package driven

import (
	"context"
	"time"
)

// Cache memoises generated answers per query.
//
// Entries carry an absolute expiry enforced lazily on read: an expired
// entry is reported as absent, never actively evicted. Backing-store
// errors wrap domain.ErrCacheUnavailable; callers treat them as a miss
// on read and log-and-continue on write, so a broken cache can degrade
// performance but never correctness.
type Cache interface {
	// Get returns the value for key. ok is false when the key is absent
	// or the stored entry has expired.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set stores value under key with an absolute expiry of now+ttl.
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}
