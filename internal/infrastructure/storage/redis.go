package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/johnquangdev/meeting-portal/pkg/config"
)

// NewRedisClient connects to Redis and verifies the connection
func NewRedisClient(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.GetRedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.GetRedisAddr(), err)
	}
	return rdb, nil
}

// RedisStore keeps all values in a single Redis hash
type RedisStore struct {
	rdb *redis.Client
	key string
}

// NewRedisStore stores values in the hash named prefix
func NewRedisStore(rdb *redis.Client, prefix string) *RedisStore {
	return &RedisStore{rdb: rdb, key: prefix}
}

// Get retrieves a value by key
func (rs *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := rs.rdb.HGet(ctx, rs.key, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read %s from redis: %w", key, err)
	}
	return value, true, nil
}

// Set stores a key-value pair
func (rs *RedisStore) Set(ctx context.Context, key, value string) error {
	if err := rs.rdb.HSet(ctx, rs.key, key, value).Err(); err != nil {
		return fmt.Errorf("failed to write %s to redis: %w", key, err)
	}
	return nil
}

// Delete removes keys
func (rs *RedisStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := rs.rdb.HDel(ctx, rs.key, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete session keys from redis: %w", err)
	}
	return nil
}
