package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

type keyValue interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Close() error
}

type RedisBlob struct {
	client keyValue
	key    string
	logger zerolog.Logger
}

func NewRedisBlob(addr, password string, db int, key string, logger zerolog.Logger) *RedisBlob {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return newRedisBlob(rdb, key, logger)
}

func newRedisBlob(client keyValue, key string, logger zerolog.Logger) *RedisBlob {
	return &RedisBlob{
		client: client,
		key:    key,
		logger: logger.With().Str("component", "redis_store").Str("key", key).Logger(),
	}
}

func (b *RedisBlob) Read(ctx context.Context) ([]byte, error) {
	data, err := b.client.Get(ctx, b.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", b.key, err)
	}
	return data, nil
}

// Write has no TTL; eviction is driven by record timestamps, not key expiry.
func (b *RedisBlob) Write(ctx context.Context, data []byte) error {
	if err := b.client.Set(ctx, b.key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to set %s: %w", b.key, err)
	}
	b.logger.Debug().Int("bytes", len(data)).Msg("snapshot written")
	return nil
}

func (b *RedisBlob) Close() error {
	return b.client.Close()
}
