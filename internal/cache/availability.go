package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"beautybook/internal/calendar"
	"beautybook/internal/metrics"

	"github.com/redis/go-redis/v9"
)

const versionKey = "availability:version"

type Config struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// AvailabilityCache stores rendered availability ranges in Valkey/Redis.
// Entries are keyed under a version counter; Invalidate bumps the counter so
// every older entry becomes unreachable and expires on its own TTL.
// A nil *AvailabilityCache is valid and always misses.
type AvailabilityCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewValkeyClient(cfg Config) (*AvailabilityCache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		DialTimeout:  5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Valkey: %w", err)
	}

	return NewAvailabilityCache(rdb, cfg.TTL), nil
}

func NewAvailabilityCache(client *redis.Client, ttl time.Duration) *AvailabilityCache {
	return &AvailabilityCache{client: client, ttl: ttl}
}

// GetRange returns the cached JSON for a range as seen on today, plus the
// versioned key it looked under. A miss should be filled with SetRange on
// that same key so a payload computed before an Invalidate never lands under
// the newer version. The key is empty when the cache is unusable.
func (c *AvailabilityCache) GetRange(ctx context.Context, today, start, end time.Time) ([]byte, string, bool) {
	if c == nil {
		return nil, "", false
	}

	key, err := c.rangeKey(ctx, today, start, end)
	if err != nil {
		slog.Warn("Availability cache version lookup failed", "error", err)
		metrics.AvailabilityCache.WithLabelValues("error").Inc()
		return nil, "", false
	}

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Warn("Availability cache read failed", "key", key, "error", err)
			metrics.AvailabilityCache.WithLabelValues("error").Inc()
			return nil, "", false
		}
		metrics.AvailabilityCache.WithLabelValues("miss").Inc()
		return nil, key, false
	}

	metrics.AvailabilityCache.WithLabelValues("hit").Inc()
	return data, key, true
}

// SetRange stores payload under a key returned by GetRange. Failures are
// logged and dropped.
func (c *AvailabilityCache) SetRange(ctx context.Context, key string, payload []byte) {
	if c == nil || key == "" {
		return
	}

	if err := c.client.Set(ctx, key, string(payload), c.ttl).Err(); err != nil {
		slog.Warn("Availability cache write failed", "key", key, "error", err)
	}
}

// Invalidate drops every cached range.
func (c *AvailabilityCache) Invalidate(ctx context.Context) {
	if c == nil {
		return
	}
	if err := c.client.Incr(ctx, versionKey).Err(); err != nil {
		slog.Warn("Availability cache invalidation failed", "error", err)
	}
}

func (c *AvailabilityCache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}

func (c *AvailabilityCache) rangeKey(ctx context.Context, today, start, end time.Time) (string, error) {
	version, err := c.client.Get(ctx, versionKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", err
	}
	return fmt.Sprintf("availability:v%d:%s:%s:%s", version,
		today.Format(calendar.DateLayout), start.Format(calendar.DateLayout), end.Format(calendar.DateLayout)), nil
}
