package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/frahspaces/storefront-backend/config"
	"github.com/frahspaces/storefront-backend/pkg/logger"
	"github.com/redis/go-redis/v9"
)

// Connect opens and pings a Redis client.
func Connect(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	logger.Info("Initializing Redis connection", map[string]interface{}{
		"addr": cfg.Addr,
		"db":   cfg.DB,
	})

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		logger.Error("Failed to connect to Redis", err, map[string]interface{}{
			"addr": cfg.Addr,
		})
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Redis connection established")
	return client, nil
}
