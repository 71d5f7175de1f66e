package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/sebuszqo/FinanceTracker/internal/finance/domain"
)

// RedisMonthCache is a best-effort read cache. Failures are logged and
// treated as misses; the database stays the source of truth.
type RedisMonthCache struct {
	client *redis.Client
	ttl    time.Duration
	log    zerolog.Logger
	now    func() time.Time
}

func NewRedisMonthCache(ctx context.Context, redisURL string, ttl time.Duration, log zerolog.Logger) (*RedisMonthCache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return NewRedisMonthCacheWithClient(client, ttl, log), nil
}

func NewRedisMonthCacheWithClient(client *redis.Client, ttl time.Duration, log zerolog.Logger) *RedisMonthCache {
	return &RedisMonthCache{client: client, ttl: ttl, log: log, now: time.Now}
}

// User ids are query-escaped so a ':' inside one cannot reach another
// user's keys.
func generationKey(userID string) string {
	return fmt.Sprintf("finance:gen:%s", url.QueryEscape(userID))
}

func monthsKey(userID string, generation int64) string {
	return fmt.Sprintf("finance:months:%s:%d", url.QueryEscape(userID), generation)
}

func monthKey(userID, month string, generation int64) string {
	return fmt.Sprintf("finance:month:%s:%d:%s", url.QueryEscape(userID), generation, month)
}

// Generation returns the user's current generation. A missing counter is
// seeded from the clock, so a counter lost to eviction never comes back at
// a value older entries were written under.
func (c *RedisMonthCache) Generation(ctx context.Context, userID string) (int64, bool) {
	key := generationKey(userID)
	if err := c.client.SetNX(ctx, key, c.now().UnixNano(), 0).Err(); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("Cache generation seed failed")
		return 0, false
	}
	generation, err := c.client.Get(ctx, key).Int64()
	if err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("Cache generation read failed")
		return 0, false
	}
	return generation, true
}

func (c *RedisMonthCache) GetMonths(ctx context.Context, userID string, generation int64) ([]domain.MonthlyStats, bool) {
	var months []domain.MonthlyStats
	if !c.get(ctx, monthsKey(userID, generation), &months) {
		return nil, false
	}
	return months, true
}

func (c *RedisMonthCache) SetMonths(ctx context.Context, userID string, generation int64, months []domain.MonthlyStats) {
	c.set(ctx, monthsKey(userID, generation), months)
}

func (c *RedisMonthCache) GetMonth(ctx context.Context, userID, month string, generation int64) (*domain.MonthDetail, bool) {
	var detail domain.MonthDetail
	if !c.get(ctx, monthKey(userID, month, generation), &detail) {
		return nil, false
	}
	return &detail, true
}

func (c *RedisMonthCache) SetMonth(ctx context.Context, userID, month string, generation int64, detail *domain.MonthDetail) {
	c.set(ctx, monthKey(userID, month, generation), detail)
}

// Invalidate moves the user to a new generation. Entries of older
// generations are never read again and expire with their TTL.
func (c *RedisMonthCache) Invalidate(ctx context.Context, userID, month string) {
	if err := c.client.Incr(ctx, generationKey(userID)).Err(); err != nil {
		c.log.Warn().Err(err).Str("user_id", userID).Str("month_key", month).Msg("Cache invalidation failed")
	}
}

func (c *RedisMonthCache) Close() error {
	return c.client.Close()
}

func (c *RedisMonthCache) get(ctx context.Context, key string, dest any) bool {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn().Err(err).Str("key", key).Msg("Cache read failed")
		}
		return false
	}

	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	if err := decoder.Decode(dest); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("Dropping undecodable cache entry")
		c.client.Del(ctx, key)
		return false
	}
	return true
}

func (c *RedisMonthCache) set(ctx context.Context, key string, value any) {
	raw, err := json.Marshal(value)
	if err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("Cache encode failed")
		return
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("Cache write failed")
	}
}
