// Package cache holds short-lived schedule snapshots for the read projections. A cache failure
// is never surfaced to callers; it only costs a store round trip.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/propdesk/backoffice/services/cleaning-service/internal/calendar"
	"github.com/propdesk/backoffice/services/cleaning-service/internal/model"
	"github.com/redis/go-redis/v9"
)

type Cache interface {
	Get(ctx context.Context, key string) (*model.Schedule, bool)
	Set(ctx context.Context, key string, s *model.Schedule)
	Delete(ctx context.Context, keys ...string)
}

func ByID(scheduleID string) string { return "id:" + scheduleID }

func ByBuildingMonth(buildingID string, month calendar.Month) string {
	return "bm:" + buildingID + ":" + month.String()
}

// KeysFor lists every key a schedule may be cached under.
func KeysFor(s *model.Schedule) []string {
	return []string{ByID(s.ID), ByBuildingMonth(s.BuildingID, s.Month)}
}

type Noop struct{}

func (Noop) Get(context.Context, string) (*model.Schedule, bool) { return nil, false }
func (Noop) Set(context.Context, string, *model.Schedule)        {}
func (Noop) Delete(context.Context, ...string)                   {}

type RedisCache struct {
	rdb    redis.Cmdable
	ttl    time.Duration
	prefix string
	logger *slog.Logger
}

func NewRedisCache(rdb redis.Cmdable, ttl time.Duration, logger *slog.Logger) *RedisCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &RedisCache{rdb: rdb, ttl: ttl, prefix: "cleaning:schedule:", logger: logger}
}

func (c *RedisCache) Get(ctx context.Context, key string) (*model.Schedule, bool) {
	b, err := c.rdb.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("schedule cache read failed", "key", key, "err", err)
		}
		return nil, false
	}
	var s model.Schedule
	if err := json.Unmarshal(b, &s); err != nil {
		c.logger.Warn("schedule cache entry corrupt", "key", key, "err", err)
		return nil, false
	}
	return &s, true
}

func (c *RedisCache) Set(ctx context.Context, key string, s *model.Schedule) {
	b, err := json.Marshal(s)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, c.prefix+key, b, c.ttl).Err(); err != nil {
		c.logger.Warn("schedule cache write failed", "key", key, "err", err)
	}
}

func (c *RedisCache) Delete(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = c.prefix + k
	}
	if err := c.rdb.Del(ctx, full...).Err(); err != nil {
		c.logger.Warn("schedule cache invalidation failed", "keys", keys, "err", err)
	}
}

// ReadyCheck pings Redis for /readyz.
func ReadyCheck(rdb *redis.Client) func(context.Context) error {
	return func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	}
}
