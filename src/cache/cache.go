package cache

import (
	"context"

	"fx-dashboard/src/interfaces"
	"fx-dashboard/src/logger"
	"fx-dashboard/src/models"
)

// NewQuoteCache returns a Redis cache when configured and reachable, the
// in-memory cache otherwise.
func NewQuoteCache(ctx context.Context, cfg models.MCacheConfig, log *logger.Logger) interfaces.IQuoteCache {
	if cfg.Type == "redis" {
		rc, err := NewRedisCache(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err == nil {
			log.Info("Quote cache: redis at %s", cfg.RedisAddr)
			return rc
		}
		log.Warning("Redis unavailable (%v), quote cache falls back to memory", err)
	}
	return NewMemoryCache()
}
