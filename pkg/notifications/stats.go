package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/shelterconnect/platform/pkg/directory"
	"github.com/shelterconnect/platform/pkg/logger"
)

const systemStatsCacheKey = "notifications:stats:system"

// Aggregator answers read-side stats queries over delivery records.
// System-wide totals may be served from a short-lived cache; every other
// scope reflects the latest committed state.
type Aggregator struct {
	storage  Storage
	users    directory.Directory
	cache    *goredis.Client
	cacheTTL time.Duration
	logger   *slog.Logger
}

// AggregatorOption configures an Aggregator.
type AggregatorOption func(*Aggregator)

// WithStatsCache caches system-wide totals in Redis for the given TTL.
func WithStatsCache(client *goredis.Client, ttl time.Duration) AggregatorOption {
	return func(a *Aggregator) {
		a.cache = client
		a.cacheTTL = ttl
	}
}

// WithAggregatorLogger sets the logger.
func WithAggregatorLogger(l *slog.Logger) AggregatorOption {
	return func(a *Aggregator) {
		a.logger = l
	}
}

// NewAggregator creates an aggregator.
func NewAggregator(storage Storage, users directory.Directory, opts ...AggregatorOption) (*Aggregator, error) {
	if storage == nil {
		return nil, ErrStorageNil
	}
	if users == nil {
		return nil, ErrDirectoryNil
	}

	a := &Aggregator{
		storage:  storage,
		users:    users,
		cacheTTL: 5 * time.Minute,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// SystemStats returns platform-wide totals, cached for the configured TTL
// when a cache is attached. Cache failures degrade to a direct query.
func (a *Aggregator) SystemStats(ctx context.Context) (*Stats, error) {
	if a.cache != nil {
		if cached, err := a.cache.Get(ctx, systemStatsCacheKey).Bytes(); err == nil {
			var stats Stats
			if err := json.Unmarshal(cached, &stats); err == nil {
				return &stats, nil
			}
		} else if !errors.Is(err, goredis.Nil) {
			a.logger.LogAttrs(ctx, slog.LevelWarn, "stats cache read failed", logger.Error(err))
		}
	}

	stats, err := a.storage.Stats(ctx, nil)
	if err != nil {
		return nil, err
	}

	if a.cache != nil {
		if data, err := json.Marshal(stats); err == nil {
			if err := a.cache.Set(ctx, systemStatsCacheKey, data, a.cacheTTL).Err(); err != nil {
				a.logger.LogAttrs(ctx, slog.LevelWarn, "stats cache write failed", logger.Error(err))
			}
		}
	}
	return stats, nil
}

// OrganizationStats returns totals over one organization's active members.
// Never cached.
func (a *Aggregator) OrganizationStats(ctx context.Context, orgID int64) (*Stats, error) {
	ids, err := a.users.OrganizationMemberIDs(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("notifications: organization stats: %w", err)
	}
	if len(ids) == 0 {
		return &Stats{ByType: make(map[string]int)}, nil
	}
	return a.storage.Stats(ctx, ids)
}

// UserStats returns one recipient's totals.
func (a *Aggregator) UserStats(ctx context.Context, userID int64) (*Stats, error) {
	return a.storage.Stats(ctx, []int64{userID})
}

// Recent returns the recipient's newest records, capped at n.
func (a *Aggregator) Recent(ctx context.Context, userID int64, n int) ([]Record, error) {
	return a.storage.ListRecords(ctx, userID, ListOptions{Limit: n})
}
