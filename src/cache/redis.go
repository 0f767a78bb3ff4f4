package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"fx-dashboard/src/models"

	"github.com/redis/go-redis/v9"
)

// -----------------------------------------------------------------------------
// RedisCache shares quotes between API replicas. Every Redis failure falls
// back to the in-memory cache.
// -----------------------------------------------------------------------------

type RedisCache struct {
	rdb *redis.Client
	mem *MemoryCache
}

type redisQuote struct {
	Rate float64 `json:"rate"`
	Ts   int64   `json:"ts"` // unix nano timestamp
}

// -----------------------------------------------------------------------------

// NewRedisCache creates a new RedisCache instance and pings Redis server.
func NewRedisCache(ctx context.Context, addr, password string, db int) (*RedisCache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &RedisCache{rdb: rdb, mem: NewMemoryCache()}, nil
}

func quoteKey(pair string) string { return "quote:" + pair }

// -----------------------------------------------------------------------------

func (r *RedisCache) Get(ctx context.Context, pair string) (models.MRateQuote, bool) {
	b, err := r.rdb.Get(ctx, quoteKey(pair)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return models.MRateQuote{}, false
		}
		return r.mem.Get(ctx, pair)
	}

	var q redisQuote
	if err := json.Unmarshal(b, &q); err != nil {
		return models.MRateQuote{}, false
	}
	return models.MRateQuote{Pair: pair, Rate: q.Rate, FetchedAt: time.Unix(0, q.Ts).UTC()}, true
}

// -----------------------------------------------------------------------------

func (r *RedisCache) Set(ctx context.Context, quote models.MRateQuote, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	b, _ := json.Marshal(redisQuote{Rate: quote.Rate, Ts: quote.FetchedAt.UnixNano()})
	if err := r.rdb.Set(ctx, quoteKey(quote.Pair), b, ttl).Err(); err != nil {
		_ = r.mem.Set(ctx, quote, ttl)
		return fmt.Errorf("failed to cache %s in redis, using memory cache: %w", quote.Pair, err)
	}
	return nil
}

// -----------------------------------------------------------------------------

// Close shuts down both Redis and memory cleaner.
func (r *RedisCache) Close() error {
	r.mem.Close()
	return r.rdb.Close()
}
