// Package redis implementa ratelimit.Limiter sobre Redis para compartir la ventana entre instancias.
package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	goredis "github.com/go-redis/redis/v8"
	"github.com/zeebo/errs"

	"pet-care-tracker/internal/platform/ratelimit"
)

// Error es la clase de errores del limiter redis.
var Error = errs.Class("redis ratelimit")

// INCR + PEXPIRE en el primer hit, atómico. Devuelve {count, pttl_ms}.
var fixedWindowScript = goredis.NewScript(`
local n = redis.call('INCR', KEYS[1])
if n == 1 then
  redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
local ttl = redis.call('PTTL', KEYS[1])
if ttl < 0 then
  redis.call('PEXPIRE', KEYS[1], ARGV[1])
  ttl = tonumber(ARGV[1])
end
return {n, ttl}
`)

type Limiter struct {
	client *goredis.Client
	prefix string
	limit  int
	window time.Duration
	now    func() time.Time
}

type Options struct {
	Prefix string
	Limit  int
	Window time.Duration
}

func New(client *goredis.Client, opts Options) *Limiter {
	prefix := strings.TrimSpace(opts.Prefix)
	if prefix == "" {
		prefix = "ratelimit:careplans:"
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = ratelimit.DefaultLimit
	}
	win := opts.Window
	if win <= 0 {
		win = ratelimit.DefaultWindow
	}
	return &Limiter{
		client: client,
		prefix: prefix,
		limit:  limit,
		window: win,
		now:    time.Now,
	}
}

// Open parsea REDIS_URL y hace ping.
func Open(ctx context.Context, url string) (*goredis.Client, error) {
	opt, err := goredis.ParseURL(url)
	if err != nil {
		return nil, Error.Wrap(err)
	}
	c := goredis.NewClient(opt)

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return nil, Error.Wrap(err)
	}
	return c, nil
}

func (l *Limiter) Allow(ctx context.Context, key string) (ratelimit.Decision, error) {
	res, err := fixedWindowScript.Run(ctx, l.client, []string{l.prefix + key}, l.window.Milliseconds()).Result()
	if err != nil {
		return ratelimit.Decision{}, Error.Wrap(err)
	}

	vals, ok := res.([]interface{})
	if !ok || len(vals) != 2 {
		return ratelimit.Decision{}, Error.New("unexpected script reply %T", res)
	}
	count, ok1 := vals[0].(int64)
	ttl, ok2 := vals[1].(int64)
	if !ok1 || !ok2 {
		return ratelimit.Decision{}, Error.New("unexpected script reply %s", fmt.Sprint(vals...))
	}

	remaining := l.limit - int(count)
	if remaining < 0 {
		remaining = 0
	}
	return ratelimit.Decision{
		Allowed:   int(count) <= l.limit,
		Count:     int(count),
		Remaining: remaining,
		ResetAt:   l.now().Add(time.Duration(ttl) * time.Millisecond),
	}, nil
}
