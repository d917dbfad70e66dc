// File: internal/platform/redis/client.go
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ShIIIrochka/SecondStagePROD/internal/config"
)

// NewClient creates a Redis client and verifies the connection. Callers are
// expected to gate on cfg.UsesRedis(); an unset REDIS_HOST is an error here.
func NewClient(cfg *config.Config, logger *zap.Logger) (*redis.Client, error) {
	if !cfg.UsesRedis() {
		return nil, fmt.Errorf("redis is not configured (REDIS_HOST is empty)")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Username: cfg.RedisUser,
		Password: cfg.RedisPassword,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis at %s: %w", cfg.RedisAddr(), err)
	}

	logger.Info("Connected to Redis", zap.String("addr", cfg.RedisAddr()))
	return client, nil
}
