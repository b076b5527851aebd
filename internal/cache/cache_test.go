package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exercise(t *testing.T, c Client) {
	t.Helper()
	ctx := context.Background()

	_, err := c.Get(ctx, "missing")
	assert.True(t, IsNotFound(err))

	require.NoError(t, c.Set(ctx, "k", "v", time.Minute))
	v, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", v)

	require.NoError(t, c.Delete(ctx, "k"))
	_, err = c.Get(ctx, "k")
	assert.True(t, IsNotFound(err))

	require.NoError(t, c.Set(ctx, "short", "v", 20*time.Millisecond))
	time.Sleep(60 * time.Millisecond)
	_, err = c.Get(ctx, "short")
	assert.True(t, IsNotFound(err))

	assert.NoError(t, c.Ping(ctx))
}

func TestMemoryClient(t *testing.T) {
	c := NewMemory("test:", time.Minute)
	exercise(t, c)

	st, err := c.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "memory", st.Driver)
	assert.Equal(t, int64(3), st.Misses)
	assert.Equal(t, int64(1), st.Hits)
}

func TestNewUnknownKind(t *testing.T) {
	_, err := New(context.Background(), Config{Kind: "memcached"})
	assert.Error(t, err)
}

func TestRedisClient(t *testing.T) {
	addr := os.Getenv("TASKHUB_REDIS_ADDR")
	if addr == "" {
		t.Skip("TASKHUB_REDIS_ADDR not set")
	}
	c, err := New(context.Background(), Config{Kind: "redis", Addr: addr, Prefix: "taskhub-test:"})
	require.NoError(t, err)
	defer c.Close()
	exercise(t, c)
}

func TestInfoParsing(t *testing.T) {
	info := "# Memory\r\nused_memory:1024\r\nused_memory_human:1.00K\r\n"
	assert.Equal(t, "1.00K", infoField(info, "used_memory_human"))
	assert.Equal(t, int64(1024), infoInt(info, "used_memory"))
	assert.Zero(t, infoInt(info, "missing"))
}
