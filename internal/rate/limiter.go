// Package rate limita requests por clave (scope|IP). Hay dos
// implementaciones: ventana fija en Redis, compartida entre instancias, y
// token bucket en memoria para una sola instancia.
package rate

import (
	"context"
	"math"
	"strconv"
	"strings"
	"time"

	rdb "github.com/redis/go-redis/v9"
)

// Result es la decisión para un request.
type Result struct {
	Allowed bool
	// Limit es el máximo de la ventana (o la ráfaga del bucket).
	Limit      int64
	Remaining  int64
	RetryAfter time.Duration
}

type Limiter interface {
	Allow(ctx context.Context, key string) (Result, error)
}

// hitScript incrementa el contador de la ventana y le fija el TTL en el
// primer hit, en una sola ida a Redis. Retorna {hits, pttl_ms}.
var hitScript = rdb.NewScript(`
local hits = redis.call("INCR", KEYS[1])
if hits == 1 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return {hits, redis.call("PTTL", KEYS[1])}
`)

// RedisLimiter cuenta hits por ventana fija. El contador vive bajo
// Prefix + key + ":" + índice de ventana y expira con la ventana.
type RedisLimiter struct {
	client *rdb.Client
	prefix string
	limit  int64
	window time.Duration
	now    func() time.Time
}

func NewRedisLimiter(client *rdb.Client, prefix string, limit int, window time.Duration) *RedisLimiter {
	if prefix == "" {
		prefix = "rl:"
	}
	if window <= 0 {
		window = time.Minute
	}
	return &RedisLimiter{client: client, prefix: prefix, limit: int64(limit), window: window, now: time.Now}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (Result, error) {
	k := windowKey(l.prefix, key, l.now(), l.window)
	vals, err := hitScript.Run(ctx, l.client, []string{k}, l.window.Milliseconds()).Int64Slice()
	if err != nil {
		return Result{}, err
	}
	var pttl time.Duration
	if len(vals) > 1 && vals[1] > 0 {
		pttl = time.Duration(vals[1]) * time.Millisecond
	}
	return decide(vals[0], l.limit, pttl, l.window), nil
}

// windowKey arma la clave del contador; los espacios se normalizan para no
// partir la clave en redis-cli.
func windowKey(prefix, key string, now time.Time, window time.Duration) string {
	idx := now.UnixMilli() / window.Milliseconds()
	return prefix + strings.ReplaceAll(key, " ", "_") + ":" + strconv.FormatInt(idx, 10)
}

// decide traduce el contador de la ventana a un Result. Sin TTL conocido el
// cliente espera una ventana completa.
func decide(hits, limit int64, pttl, window time.Duration) Result {
	res := Result{
		Allowed:   hits <= limit,
		Limit:     limit,
		Remaining: max(limit-hits, 0),
	}
	if !res.Allowed {
		if pttl <= 0 {
			pttl = window
		}
		res.RetryAfter = wholeSeconds(pttl)
	}
	return res
}

// wholeSeconds redondea hacia arriba: Retry-After se expresa en segundos.
func wholeSeconds(d time.Duration) time.Duration {
	return time.Duration(math.Ceil(d.Seconds())) * time.Second
}
