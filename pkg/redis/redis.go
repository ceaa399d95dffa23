package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/back-pedagogico/stories-backend/config"
	"github.com/back-pedagogico/stories-backend/pkg/logger"
	"github.com/redis/go-redis/v9"
)

const blocklistPrefix = "blocklist:"

// Connect opens a client and pings it.
func Connect(ctx context.Context, cfg *config.RedisConfig) (*redis.Client, error) {
	logger.Info("Initializing Redis connection", map[string]interface{}{
		"addr": cfg.Addr(),
		"db":   cfg.DB,
	})

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		logger.Error("Failed to connect to Redis", err, map[string]interface{}{
			"addr": cfg.Addr(),
		})
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Redis connection established successfully")
	return client, nil
}

// TokenBlocklist records revoked token ids until the token would have expired anyway.
type TokenBlocklist struct {
	client redis.Cmdable
}

func NewTokenBlocklist(client redis.Cmdable) *TokenBlocklist {
	return &TokenBlocklist{client: client}
}

// Revoke blocks jti for ttl. A non-positive ttl is a no-op since the token is already expired.
func (b *TokenBlocklist) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := b.client.Set(ctx, blocklistPrefix+jti, "revoked", ttl).Err(); err != nil {
		logger.Error("Failed to revoke token", err, map[string]interface{}{
			"jti": jti,
		})
		return err
	}
	logger.Debug("Token revoked", map[string]interface{}{
		"jti":    jti,
		"expiry": ttl.String(),
	})
	return nil
}

func (b *TokenBlocklist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := b.client.Exists(ctx, blocklistPrefix+jti).Result()
	if err != nil {
		logger.Error("Failed to check token blocklist", err, map[string]interface{}{
			"jti": jti,
		})
		return false, err
	}
	return n > 0, nil
}
