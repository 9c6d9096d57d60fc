package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/projektl/projekt-l-backend/internal/logger"
	"github.com/projektl/projekt-l-backend/internal/utils"
)

// RateLimiter is a fixed-window counter backed by Redis so the limit holds
// across server instances and process restarts.
type RateLimiter struct {
	log    *logger.Logger
	rdb    *goredis.Client
	prefix string
}

func NewRateLimiter(log *logger.Logger) (*RateLimiter, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := utils.GetEnv("REDIS_ADDR", "", nil)
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	prefix := utils.GetEnv("REDIS_RATELIMIT_PREFIX", "ratelimit", log)

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &RateLimiter{
		log:    log.With("service", "RedisRateLimiter"),
		rdb:    rdb,
		prefix: prefix,
	}, nil
}

// Allow increments the counter for key and reports whether the call is
// within limit for the current window. The TTL is set when the window opens.
func (rl *RateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if rl == nil || rl.rdb == nil {
		return false, fmt.Errorf("rate limiter not initialized")
	}
	fullKey := fmt.Sprintf("%s:%s", rl.prefix, key)

	count, err := rl.rdb.Incr(ctx, fullKey).Result()
	if err != nil {
		return false, fmt.Errorf("redis incr: %w", err)
	}
	if count == 1 {
		if err := rl.rdb.Expire(ctx, fullKey, window).Err(); err != nil {
			rl.log.Warn("Failed to set rate limit TTL", "key", fullKey, "error", err)
		}
	}
	return count <= int64(limit), nil
}

func (rl *RateLimiter) Close() error {
	if rl == nil || rl.rdb == nil {
		return nil
	}
	return rl.rdb.Close()
}
