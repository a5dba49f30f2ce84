package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"citizens-connect/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	issuesKey     = "onlineIssuesCache"
	lastUpdateKey = "onlineIssuesLastUpdate"
)

type redisIssueCache struct {
	client *redis.Client
	prefix string
	log    zerolog.Logger
}

// NewRedisIssueCache stores the snapshot under two keys: the serialized issues and the fetch time.
func NewRedisIssueCache(client *redis.Client, prefix string, log zerolog.Logger) IssueCacheRepository {
	return &redisIssueCache{
		client: client,
		prefix: prefix,
		log:    log.With().Str("component", "redis_issue_cache").Logger(),
	}
}

func (r *redisIssueCache) key(name string) string {
	return r.prefix + name
}

func (r *redisIssueCache) Load(ctx context.Context) (CacheSnapshot, error) {
	var snap CacheSnapshot

	stamp, err := r.client.Get(ctx, r.key(lastUpdateKey)).Result()
	if errors.Is(err, redis.Nil) {
		return snap, nil
	}
	if err != nil {
		return snap, fmt.Errorf("read cache timestamp: %w", err)
	}
	snap.UpdatedAt, err = time.Parse(time.RFC3339Nano, stamp)
	if err != nil {
		return CacheSnapshot{}, fmt.Errorf("parse cache timestamp: %w", err)
	}

	raw, err := r.client.Get(ctx, r.key(issuesKey)).Result()
	if errors.Is(err, redis.Nil) {
		return snap, nil
	}
	if err != nil {
		return snap, fmt.Errorf("read cached issues: %w", err)
	}
	if err := json.Unmarshal([]byte(raw), &snap.Issues); err != nil {
		r.log.Warn().Err(err).Str("key", r.key(issuesKey)).Msg("corrupt cached issues, treating cache as empty")
		snap.Issues = nil
	}
	return snap, nil
}

func (r *redisIssueCache) Save(ctx context.Context, issues []models.ExternalIssue, at time.Time) error {
	data, err := json.Marshal(issues)
	if err != nil {
		return fmt.Errorf("marshal issues: %w", err)
	}
	// Both keys change together so a payload is never paired with another fetch's timestamp.
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, r.key(issuesKey), string(data), 0)
		pipe.Set(ctx, r.key(lastUpdateKey), at.UTC().Format(time.RFC3339Nano), 0)
		return nil
	})
	if err != nil {
		return fmt.Errorf("write cached issues: %w", err)
	}
	return nil
}
