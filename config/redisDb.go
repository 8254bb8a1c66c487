package config

import (
	"context"
	"log"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

// ConnectRedisWithRetry connects to Redis and builds the lock client on top of it.
// Returns nil clients when no address is configured; Redis is optional for this service.
func ConnectRedisWithRetry(ctx context.Context, cfg RedisConfig) (*redis.Client, *redislock.Client, error) {
	if cfg.Address == "" {
		log.Printf("REDIS_ADDRESS not set; running without redis")
		return nil, nil, nil
	}

	var attempt int
	for {
		attempt++
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Address,
			Password: cfg.Password,
			DB:       cfg.DB,
			PoolSize: 20,
		})
		err := rdb.Ping(ctx).Err()
		if err == nil {
			log.Printf("connected to redis (attempt=%d addr=%s)", attempt, cfg.Address)
			return rdb, redislock.New(rdb), nil
		}
		_ = rdb.Close()

		sleep := retryDelay(attempt)
		log.Printf("failed to connect redis (attempt=%d addr=%s): %v; retrying in %s", attempt, cfg.Address, err, sleep)
		select {
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		case <-time.After(sleep):
		}
	}
}
