package services

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// IssueRefresher checks the online issue cache on a fixed interval and refreshes it once stale.
type IssueRefresher struct {
	cache    *ExternalIssueCache
	interval time.Duration
	log      zerolog.Logger
}

func NewIssueRefresher(cache *ExternalIssueCache, interval time.Duration, log zerolog.Logger) *IssueRefresher {
	return &IssueRefresher{
		cache:    cache,
		interval: interval,
		log:      log.With().Str("component", "issue_refresher").Logger(),
	}
}

// Start runs until ctx is done. A slow fetch does not hold up the ticker; the cache's in-flight
// guard makes overlapping ticks no-ops.
func (r *IssueRefresher) Start(ctx context.Context, wg *sync.WaitGroup) {
	ticker := time.NewTicker(r.interval)
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				wg.Add(1)
				go func() {
					defer wg.Done()
					r.refresh(ctx)
				}()
			case <-ctx.Done():
				r.log.Debug().Msg("stopping issue refresher")
				return
			}
		}
	}()
}

func (r *IssueRefresher) refresh(ctx context.Context) {
	refreshed, err := r.cache.RefreshIfStale(ctx)
	if err != nil {
		r.log.Warn().Err(err).Msg("scheduled refresh failed, keeping cached issues")
		return
	}
	if refreshed {
		r.log.Info().Time("last_update", r.cache.LastUpdated()).Msg("online issues refreshed")
	}
}
