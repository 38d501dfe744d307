package usecase

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/gospelstack/sermon-audio/domain/repositories"
)

// DefaultSweepInterval is how often the sweeper removes stale cache entries.
const DefaultSweepInterval = 24 * time.Hour

// CacheSweeper deletes cache entries older than the TTL on a schedule.
// Sweeping is out-of-band: request-path code never triggers it, and lookups
// already treat stale entries as misses, so timing is not critical.
type CacheSweeper struct {
	cache    repositories.SynthesisCache
	interval time.Duration
	ttl      time.Duration
	logger   *zap.Logger
}

// NewCacheSweeper creates a new sweeper. Non-positive interval falls back
// to DefaultSweepInterval; ttl of zero lets the cache use its own TTL.
func NewCacheSweeper(cache repositories.SynthesisCache, interval, ttl time.Duration, logger *zap.Logger) *CacheSweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &CacheSweeper{
		cache:    cache,
		interval: interval,
		ttl:      ttl,
		logger:   logger,
	}
}

// Run sweeps on every tick until ctx is cancelled.
func (s *CacheSweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweepOnce(ctx)
		}
	}
}

func (s *CacheSweeper) sweepOnce(ctx context.Context) {
	sweepCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	deleted, err := s.cache.Sweep(sweepCtx, s.ttl)
	if err != nil {
		s.logger.Error("Cache sweep failed", zap.Error(err))
		return
	}
	s.logger.Info("Cache sweep completed", zap.Int64("deleted", deleted))
}
