package rate

import (
	"context"
	"os"
	"strconv"
	"testing"
	"time"

	rdb "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLimiter(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		res, err := l.Allow(ctx, "ip:1.2.3.4")
		require.NoError(t, err)
		assert.True(t, res.Allowed, "request %d", i)
	}

	res, err := l.Allow(ctx, "ip:1.2.3.4")
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, int64(3), res.Limit)
	assert.Greater(t, res.RetryAfter, time.Duration(0))

	other, err := l.Allow(ctx, "ip:5.6.7.8")
	require.NoError(t, err)
	assert.True(t, other.Allowed)
}

func TestRedisLimiter(t *testing.T) {
	addr := os.Getenv("TASKHUB_REDIS_ADDR")
	if addr == "" {
		t.Skip("TASKHUB_REDIS_ADDR not set")
	}
	client := rdb.NewClient(&rdb.Options{Addr: addr})
	defer client.Close()

	ctx := context.Background()
	l := NewRedisLimiter(client, "rl-test:", 2, time.Minute)
	key := "k-" + time.Now().Format(time.RFC3339Nano)

	for i := 0; i < 2; i++ {
		res, err := l.Allow(ctx, key)
		require.NoError(t, err)
		assert.True(t, res.Allowed)
	}
	res, err := l.Allow(ctx, key)
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, int64(2), res.Limit)
	assert.Greater(t, res.RetryAfter, time.Duration(0))
	assert.LessOrEqual(t, res.RetryAfter, time.Minute)
}

func TestWindowKey(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 30, 0, time.UTC)
	k := windowKey("rl:", "auth|10.0.0.1 x", at, time.Minute)
	assert.Equal(t, "rl:auth|10.0.0.1_x:"+strconv.FormatInt(at.Unix()/60, 10), k)

	// mismo minuto, misma ventana; el siguiente abre otra.
	assert.Equal(t, k, windowKey("rl:", "auth|10.0.0.1 x", at.Add(29*time.Second), time.Minute))
	assert.NotEqual(t, k, windowKey("rl:", "auth|10.0.0.1 x", at.Add(30*time.Second), time.Minute))
}

func TestDecide(t *testing.T) {
	res := decide(2, 3, 40*time.Second, time.Minute)
	assert.True(t, res.Allowed)
	assert.Equal(t, int64(1), res.Remaining)
	assert.Zero(t, res.RetryAfter)

	res = decide(4, 3, 1500*time.Millisecond, time.Minute)
	assert.False(t, res.Allowed)
	assert.Zero(t, res.Remaining)
	assert.Equal(t, 2*time.Second, res.RetryAfter)

	res = decide(4, 3, 0, time.Minute)
	assert.Equal(t, time.Minute, res.RetryAfter)
}
