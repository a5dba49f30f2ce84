package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"citizens-connect/internal/models"
	"citizens-connect/internal/repository"
	"citizens-connect/internal/source"

	"github.com/rs/zerolog"
)

const DefaultFreshnessWindow = 24 * time.Hour

var ErrRefreshInFlight = errors.New("online issue refresh already in progress")

// ExternalIssueCache keeps one session's view of online issues. Upstream content is replaced on
// every refresh but votes cast in this session carry over to the fresh copy of the same issue.
type ExternalIssueCache struct {
	source source.Source
	repo   repository.IssueCacheRepository
	window time.Duration
	now    func() time.Time
	log    zerolog.Logger

	mu         sync.RWMutex
	issues     []models.ExternalIssue
	lastUpdate time.Time

	refreshing atomic.Bool
}

// NewExternalIssueCache accepts a nil repo, in which case nothing is persisted.
func NewExternalIssueCache(src source.Source, repo repository.IssueCacheRepository, window time.Duration, log zerolog.Logger) *ExternalIssueCache {
	if window <= 0 {
		window = DefaultFreshnessWindow
	}
	return &ExternalIssueCache{
		source: src,
		repo:   repo,
		window: window,
		now:    time.Now,
		log:    log.With().Str("component", "issue_cache").Logger(),
	}
}

func (c *ExternalIssueCache) fresh(at time.Time) bool {
	return !at.IsZero() && c.now().Sub(at) <= c.window
}

// NeedsUpdate is true when nothing was fetched yet or the last fetch is older than the window.
func (c *ExternalIssueCache) NeedsUpdate() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return !c.fresh(c.lastUpdate)
}

func (c *ExternalIssueCache) LastUpdated() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastUpdate
}

func (c *ExternalIssueCache) Issues() []models.ExternalIssue {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.ExternalIssue, 0, len(c.issues))
	for _, issue := range c.issues {
		out = append(out, issue.Clone())
	}
	return out
}

// Get serves the cached set while it is fresh and non-empty, falls back to a fresh persisted
// snapshot, and only then fetches. A failed fetch returns whatever is held, possibly nothing.
func (c *ExternalIssueCache) Get(ctx context.Context, forceRefresh bool) []models.ExternalIssue {
	if !forceRefresh {
		if !c.NeedsUpdate() {
			if issues := c.Issues(); len(issues) > 0 {
				return issues
			}
		}
		if c.adoptSnapshot(ctx) {
			return c.Issues()
		}
	}

	if err := c.fetch(ctx, forceRefresh, false); err != nil {
		c.log.Warn().Err(err).Msg("online issue fetch failed, serving cached copy")
	}
	return c.Issues()
}

// Refresh always fetches and persists. On failure the cache is left as it was.
func (c *ExternalIssueCache) Refresh(ctx context.Context) ([]models.ExternalIssue, error) {
	if err := c.fetch(ctx, true, true); err != nil {
		return nil, err
	}
	return c.Issues(), nil
}

// RefreshIfStale is the timer path: it refreshes only when NeedsUpdate and never overlaps a fetch.
func (c *ExternalIssueCache) RefreshIfStale(ctx context.Context) (bool, error) {
	if !c.NeedsUpdate() {
		return false, nil
	}
	if err := c.fetch(ctx, true, true); err != nil {
		if errors.Is(err, ErrRefreshInFlight) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (c *ExternalIssueCache) adoptSnapshot(ctx context.Context) bool {
	if c.repo == nil {
		return false
	}
	snap, err := c.repo.Load(ctx)
	if err != nil {
		c.log.Warn().Err(err).Msg("reading persisted online issues failed")
		return false
	}
	if !c.fresh(snap.UpdatedAt) || len(snap.Issues) == 0 {
		return false
	}
	c.replace(snap.Issues, snap.UpdatedAt)
	c.log.Debug().Int("count", len(snap.Issues)).Msg("using persisted online issues")
	return true
}

func (c *ExternalIssueCache) fetch(ctx context.Context, force, persistEmpty bool) error {
	if !c.refreshing.CompareAndSwap(false, true) {
		return ErrRefreshInFlight
	}
	defer c.refreshing.Store(false)

	issues, err := c.source.FetchIssues(ctx, force)
	if err != nil {
		return err
	}

	at := c.now()
	if len(issues) > 0 || persistEmpty {
		if c.repo != nil {
			if err := c.repo.Save(ctx, issues, at); err != nil {
				c.log.Warn().Err(err).Msg("persisting online issues failed")
			}
		}
	} else {
		// Nothing was stored, so the set stays stale and the next check retries.
		at = time.Time{}
	}

	c.replace(issues, at)
	return nil
}

// replace installs a fresh set, carrying vote state over from issues with the same id.
func (c *ExternalIssueCache) replace(fresh []models.ExternalIssue, at time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	previous := make(map[string]models.ExternalIssue, len(c.issues))
	for _, issue := range c.issues {
		previous[issue.ID] = issue
	}

	merged := make([]models.ExternalIssue, 0, len(fresh))
	for _, issue := range fresh {
		issue = issue.Clone()
		issue.IsOnlineIssue = true
		if existing, ok := previous[issue.ID]; ok {
			issue.SetVoters(existing.Voters)
		} else {
			issue.SetVoters(issue.Voters)
		}
		merged = append(merged, issue)
	}

	c.issues = merged
	if !at.IsZero() {
		c.lastUpdate = at
	}
}

func (c *ExternalIssueCache) Has(id string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.indexOf(id) >= 0
}

func (c *ExternalIssueCache) indexOf(id string) int {
	for i := range c.issues {
		if c.issues[i].ID == id {
			return i
		}
	}
	return -1
}

func (c *ExternalIssueCache) update(id string, fn func(issue *models.ExternalIssue)) (models.ExternalIssue, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexOf(id)
	if i < 0 {
		return models.ExternalIssue{}, false
	}
	fn(&c.issues[i])
	return c.issues[i].Clone(), true
}

func (c *ExternalIssueCache) ToggleVote(id, userID string) (models.ExternalIssue, bool) {
	return c.update(id, func(issue *models.ExternalIssue) { issue.ToggleVote(userID) })
}

func (c *ExternalIssueCache) ApplyVotes(id string, voters []string) bool {
	_, ok := c.update(id, func(issue *models.ExternalIssue) { issue.SetVoters(voters) })
	return ok
}

func (c *ExternalIssueCache) MarkDone(id string) (models.ExternalIssue, bool) {
	return c.update(id, func(issue *models.ExternalIssue) { issue.MarkDone() })
}

func (c *ExternalIssueCache) Assign(id, politicianID string) (models.ExternalIssue, bool) {
	return c.update(id, func(issue *models.ExternalIssue) { issue.AssignedTo = politicianID })
}

func (c *ExternalIssueCache) Delete(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexOf(id)
	if i < 0 {
		return false
	}
	c.issues = append(c.issues[:i], c.issues[i+1:]...)
	return true
}
