package repository

import (
	"context"
	"time"

	"citizens-connect/internal/models"
)

// CacheSnapshot is the persisted form of the online issue cache. UpdatedAt is zero when nothing was stored.
type CacheSnapshot struct {
	Issues    []models.ExternalIssue
	UpdatedAt time.Time
}

type IssueCacheRepository interface {
	Load(ctx context.Context) (CacheSnapshot, error)
	Save(ctx context.Context, issues []models.ExternalIssue, at time.Time) error
}
