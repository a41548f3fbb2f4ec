package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/storefront/internal/config"
	"github.com/redis/go-redis/v9"
)

const keyNamespace = "storefront"

type cmdable interface {
	Ping(context.Context) *redis.StatusCmd
	Set(context.Context, string, any, time.Duration) *redis.StatusCmd
	Get(context.Context, string) *redis.StringCmd
	Del(context.Context, ...string) *redis.IntCmd
}

// RedisBackend stores each value under "storefront:{namespace}:{key}".
type RedisBackend struct {
	store cmdable
	raw   *redis.Client
	ttl   time.Duration
}

// NewRedisBackend connects with pooling and timeouts from cfg and verifies the
// connection. A positive ttl expires keys that have not been written for that long.
func NewRedisBackend(ctx context.Context, cfg config.RedisConfig, ttl time.Duration) (*RedisBackend, error) {
	opts, err := redisOptions(cfg)
	if err != nil {
		return nil, err
	}
	raw := redis.NewClient(opts)
	if err := raw.Ping(ctx).Err(); err != nil {
		_ = raw.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisBackend{store: raw, raw: raw, ttl: ttl}, nil
}

func redisOptions(cfg config.RedisConfig) (*redis.Options, error) {
	if cfg.URL == "" && cfg.Address == "" {
		return nil, errors.New("redis url or address is required")
	}
	var opts *redis.Options
	if cfg.URL != "" {
		parsed, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("parsing redis url: %w", err)
		}
		opts = parsed
	} else {
		opts = &redis.Options{
			Addr:     cfg.Address,
			Password: cfg.Password,
			DB:       cfg.DB,
		}
	}
	if opts.DB == 0 {
		opts.DB = cfg.DB
	}
	if opts.PoolSize == 0 {
		opts.PoolSize = cfg.PoolSize
	}
	if opts.DialTimeout == 0 {
		opts.DialTimeout = cfg.DialTimeout
	}
	if opts.ReadTimeout == 0 {
		opts.ReadTimeout = cfg.ReadTimeout
	}
	if opts.WriteTimeout == 0 {
		opts.WriteTimeout = cfg.WriteTimeout
	}
	return opts, nil
}

func (r *RedisBackend) Get(ctx context.Context, namespace, key string) (string, bool, error) {
	if r.store == nil {
		return "", false, ErrNotInitialized
	}
	value, err := r.store.Get(ctx, buildKey(namespace, key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get %s/%s: %w", namespace, key, err)
	}
	return value, true, nil
}

func (r *RedisBackend) Set(ctx context.Context, namespace, key, value string) error {
	if r.store == nil {
		return ErrNotInitialized
	}
	if err := r.store.Set(ctx, buildKey(namespace, key), value, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s/%s: %w", namespace, key, err)
	}
	return nil
}

func (r *RedisBackend) Delete(ctx context.Context, namespace, key string) error {
	if r.store == nil {
		return ErrNotInitialized
	}
	if err := r.store.Del(ctx, buildKey(namespace, key)).Err(); err != nil {
		return fmt.Errorf("redis del %s/%s: %w", namespace, key, err)
	}
	return nil
}

func (r *RedisBackend) Ping(ctx context.Context) error {
	if r.store == nil {
		return ErrNotInitialized
	}
	return r.store.Ping(ctx).Err()
}

func (r *RedisBackend) Close() error {
	if r.raw == nil {
		return nil
	}
	return r.raw.Close()
}

func buildKey(parts ...string) string {
	clean := []string{keyNamespace}
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		clean = append(clean, part)
	}
	return strings.Join(clean, ":")
}
