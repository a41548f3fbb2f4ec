package storage

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/example/storefront/internal/config"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockCmdable struct {
	data     map[string]string
	setCalls []setCall
	err      error
}

type setCall struct {
	key string
	ttl time.Duration
}

func newMockCmdable() *mockCmdable {
	return &mockCmdable{data: make(map[string]string)}
}

func (m *mockCmdable) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", m.err)
}

func (m *mockCmdable) Set(_ context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	if m.err != nil {
		return redis.NewStatusResult("", m.err)
	}
	m.setCalls = append(m.setCalls, setCall{key: key, ttl: expiration})
	m.data[key] = fmt.Sprint(value)
	return redis.NewStatusResult("OK", nil)
}

func (m *mockCmdable) Get(_ context.Context, key string) *redis.StringCmd {
	if m.err != nil {
		return redis.NewStringResult("", m.err)
	}
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *mockCmdable) Del(_ context.Context, keys ...string) *redis.IntCmd {
	for _, key := range keys {
		delete(m.data, key)
	}
	return redis.NewIntResult(int64(len(keys)), m.err)
}

// ============================================
// RedisBackend Tests
// ============================================

func TestRedisBackend_Lifecycle(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	b := &RedisBackend{store: mock, ttl: time.Hour}

	_, ok, err := b.Get(ctx, "profile-1", "cart")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, b.Set(ctx, "profile-1", "cart", "[]"))
	require.Len(t, mock.setCalls, 1)
	assert.Equal(t, "storefront:profile-1:cart", mock.setCalls[0].key)
	assert.Equal(t, time.Hour, mock.setCalls[0].ttl)

	value, ok, err := b.Get(ctx, "profile-1", "cart")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "[]", value)

	require.NoError(t, b.Delete(ctx, "profile-1", "cart"))
	_, ok, err = b.Get(ctx, "profile-1", "cart")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, b.Ping(ctx))
}

func TestRedisBackend_Errors(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("connection reset")
	mock := newMockCmdable()
	mock.err = boom
	b := &RedisBackend{store: mock}

	_, _, err := b.Get(ctx, "profile-1", "cart")
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, b.Set(ctx, "profile-1", "cart", "[]"), boom)
	assert.ErrorIs(t, b.Delete(ctx, "profile-1", "cart"), boom)
	assert.ErrorIs(t, b.Ping(ctx), boom)
}

func TestRedisBackend_NotInitialized(t *testing.T) {
	b := &RedisBackend{}
	ctx := context.Background()

	_, _, err := b.Get(ctx, "p", "cart")
	assert.ErrorIs(t, err, ErrNotInitialized)
	assert.ErrorIs(t, b.Set(ctx, "p", "cart", "[]"), ErrNotInitialized)
	assert.NoError(t, b.Close())
}

func TestBuildKey(t *testing.T) {
	assert.Equal(t, "storefront:abc:wishlist", buildKey("abc", "wishlist"))
	assert.Equal(t, "storefront:wishlist", buildKey("", " wishlist "))
	assert.Equal(t, "storefront", buildKey())
}

func TestRedisOptions(t *testing.T) {
	opts, err := redisOptions(config.RedisConfig{
		Address:     "localhost:6379",
		DB:          2,
		PoolSize:    20,
		DialTimeout: time.Second,
	})
	require.NoError(t, err)
	assert.Equal(t, "localhost:6379", opts.Addr)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, 20, opts.PoolSize)
	assert.Equal(t, time.Second, opts.DialTimeout)

	opts, err = redisOptions(config.RedisConfig{URL: "redis://:secret@cache:6380/3", PoolSize: 5})
	require.NoError(t, err)
	assert.Equal(t, "cache:6380", opts.Addr)
	assert.Equal(t, "secret", opts.Password)
	assert.Equal(t, 3, opts.DB)

	_, err = redisOptions(config.RedisConfig{URL: "http://nope"})
	assert.Error(t, err)
}
