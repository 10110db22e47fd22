package cache

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/propdesk/backoffice/services/cleaning-service/internal/calendar"
	"github.com/propdesk/backoffice/services/cleaning-service/internal/model"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestKeysFor(t *testing.T) {
	s := &model.Schedule{ID: "s1", BuildingID: "b1", Month: calendar.Month{Year: 2024, Month: time.March}}
	assert.Equal(t, []string{"id:s1", "bm:b1:2024-03"}, KeysFor(s))
}

func TestNoopNeverHits(t *testing.T) {
	var c Cache = Noop{}
	c.Set(context.Background(), "id:s1", &model.Schedule{ID: "s1"})
	_, ok := c.Get(context.Background(), "id:s1")
	assert.False(t, ok)
}

func TestRedisCacheDegradesToMiss(t *testing.T) {
	// Nothing listens on this port; every command fails fast and reads become misses.
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond, MaxRetries: -1})
	defer rdb.Close()

	c := NewRedisCache(rdb, time.Minute, slog.New(slog.NewTextHandler(io.Discard, nil)))
	c.Set(context.Background(), "id:s1", &model.Schedule{ID: "s1"})
	_, ok := c.Get(context.Background(), "id:s1")
	assert.False(t, ok)
	c.Delete(context.Background(), "id:s1")
}
