package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("REDIS_PASSWORD", "pw")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("POST_CACHE_TTL", "30s")

	cfg := LoadConfigFromEnv()

	assert.True(t, cfg.Enabled())
	assert.Equal(t, "cache:6380", cfg.Addr())
	assert.Equal(t, "pw", cfg.Password)
	assert.Equal(t, 2, cfg.DB)
	assert.Equal(t, 30*time.Second, cfg.CacheTTL)
}

func TestLoadConfigFromEnv_Defaults(t *testing.T) {
	t.Setenv("REDIS_HOST", "")
	t.Setenv("REDIS_PORT", "")
	t.Setenv("REDIS_DB", "x")
	t.Setenv("POST_CACHE_TTL", "-1m")

	cfg := LoadConfigFromEnv()

	assert.False(t, cfg.Enabled())
	assert.Equal(t, 0, cfg.DB)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.Equal(t, ":6379", cfg.Addr())
}

func TestNewRedisClient(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	mr.RequireAuth("secret")
	cfg := Config{Host: mr.Host(), Port: mr.Port(), Password: "secret"}

	rdb, err := NewRedisClient(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })

	require.NoError(t, rdb.Set(context.Background(), "k", "v", 0).Err())
	got, err := mr.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)
}

func TestNewRedisClient_Unavailable(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	cfg := Config{Host: mr.Host(), Port: mr.Port()}
	mr.Close()

	rdb, err := NewRedisClient(context.Background(), cfg)

	assert.Error(t, err)
	assert.Nil(t, rdb)
}
