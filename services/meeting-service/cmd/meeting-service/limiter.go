package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/md-rashed-zaman/meetsync/libs/config"
	"github.com/md-rashed-zaman/meetsync/libs/httpx"
	"github.com/md-rashed-zaman/meetsync/libs/runtime"
)

// newLimiter shares counters through Redis when REDIS_ADDR is set and keeps
// them in process otherwise.
func newLimiter(logger *slog.Logger) (httpx.Limiter, *runtime.ReadyCheck) {
	limit := config.Int("RATE_LIMIT_PER_MINUTE", 120)
	addr := config.String("REDIS_ADDR", "")
	if addr == "" {
		logger.Info("rate limiter using process memory")
		return httpx.NewMemoryRateLimiter(limit, time.Minute), nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: config.String("REDIS_PASSWORD", ""),
		DB:       config.Int("REDIS_DB", 0),
	})
	logger.Info("rate limiter using redis", "addr", addr)
	check := runtime.ReadyCheck{Name: "redis", Check: func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	}}
	return httpx.NewRedisRateLimiter(rdb, limit, time.Minute, "meetsync:ratelimit:"), &check
}
