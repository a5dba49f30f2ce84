package source

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"citizens-connect/internal/models"

	"github.com/rs/zerolog"
)

var ErrAllFeedsFailed = errors.New("all issue feeds failed")

// Source supplies externally observed civic issues with stable ids.
type Source interface {
	FetchIssues(ctx context.Context, forceRefresh bool) ([]models.ExternalIssue, error)
}

// Article is the common shape every feed produces before conversion.
type Article struct {
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Content     string             `json:"content"`
	URL         string             `json:"url"`
	URLToImage  string             `json:"urlToImage"`
	PublishedAt time.Time          `json:"publishedAt"`
	Source      models.IssueSource `json:"source"`
}

type Feed interface {
	Name() string
	// Origin is the attribution given to converted issues; the zero value means "use the article's own source".
	Origin() models.IssueSource
	Articles(ctx context.Context) ([]Article, error)
}

// Aggregator fans out to every feed, converts, deduplicates and trims the result.
type Aggregator struct {
	feeds []Feed
	limit int
	now   func() time.Time
	log   zerolog.Logger
}

func NewAggregator(feeds []Feed, limit int, log zerolog.Logger) *Aggregator {
	return &Aggregator{
		feeds: feeds,
		limit: limit,
		now:   time.Now,
		log:   log.With().Str("component", "issue_source").Logger(),
	}
}

// FetchIssues has no cache of its own, so forceRefresh does not change its behaviour.
func (a *Aggregator) FetchIssues(ctx context.Context, _ bool) ([]models.ExternalIssue, error) {
	results := make([][]Article, len(a.feeds))
	errs := make([]error, len(a.feeds))

	var wg sync.WaitGroup
	for i, feed := range a.feeds {
		wg.Add(1)
		go func(i int, feed Feed) {
			defer wg.Done()
			results[i], errs[i] = feed.Articles(ctx)
		}(i, feed)
	}
	wg.Wait()

	now := a.now()
	var all []models.ExternalIssue
	failed := 0
	for i, feed := range a.feeds {
		if errs[i] != nil {
			failed++
			a.log.Warn().Err(errs[i]).Str("feed", feed.Name()).Msg("feed fetch failed")
			continue
		}
		origin := feed.Origin()
		for _, article := range results[i] {
			src := origin
			if src.ID == "" {
				src = article.Source
			}
			all = append(all, ToIssue(article, src, now))
		}
	}
	if len(a.feeds) > 0 && failed == len(a.feeds) {
		return nil, ErrAllFeedsFailed
	}

	unique := RemoveDuplicates(all)
	sort.SliceStable(unique, func(i, j int) bool {
		return unique[i].CreatedAt.After(unique[j].CreatedAt)
	})
	if a.limit > 0 && len(unique) > a.limit {
		unique = unique[:a.limit]
	}

	a.log.Info().Int("fetched", len(unique)).Int("dropped", len(all)-len(unique)).Msg("online issues fetched")
	return unique, nil
}
