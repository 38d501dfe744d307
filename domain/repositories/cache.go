package repositories

import (
	"context"
	"time"

	"github.com/gospelstack/sermon-audio/domain/entities"
)

// SynthesisCache is the content-addressed store of synthesized audio,
// keyed by fingerprint. Lookup treats entries older than the configured
// TTL as misses; physical deletion only happens through Sweep.
type SynthesisCache interface {
	// Lookup returns the decoded audio payload for key, or (nil, false)
	// on a miss. Stale entries and backing-store failures both resolve
	// to a miss.
	Lookup(ctx context.Context, key string) ([]byte, bool)
	// Store upserts the entry for key. First write sets CreatedAt;
	// overwrites keep it. Concurrent stores for the same key are safe,
	// last writer wins.
	Store(ctx context.Context, entry *entities.CacheEntry) error
	// RecordAccess bumps the access counter and last-access time for a
	// hit. Fire-and-forget: failures are logged, never surfaced.
	RecordAccess(ctx context.Context, key string)
	// Sweep deletes every entry older than ttl and returns the count
	// removed.
	Sweep(ctx context.Context, ttl time.Duration) (int64, error)
}
