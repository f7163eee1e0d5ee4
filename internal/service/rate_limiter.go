package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RateDecision es la respuesta del limitador para un request.
type RateDecision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

// RateLimiter limita la frecuencia de operaciones costosas (ranking) por clave.
type RateLimiter interface {
	Allow(ctx context.Context, key string) RateDecision
}

func normalizeRateKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

type memoryRateLimiter struct {
	mu        sync.Mutex
	window    time.Duration
	max       int
	hits      map[string][]time.Time
	lastSweep time.Time
	now       func() time.Time
}

// NewMemoryRateLimiter crea un rate limiter de ventana deslizante en memoria.
func NewMemoryRateLimiter(window time.Duration, max int) RateLimiter {
	if max <= 0 {
		max = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &memoryRateLimiter{
		window: window,
		max:    max,
		hits:   make(map[string][]time.Time),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (l *memoryRateLimiter) Allow(_ context.Context, key string) RateDecision {
	key = normalizeRateKey(key)
	if key == "" {
		return RateDecision{Limit: l.max, RetryAfter: l.window}
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	cutoff := now.Add(-l.window)
	l.sweep(now, cutoff)

	kept := l.hits[key][:0]
	for _, ts := range l.hits[key] {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	if len(kept) >= l.max {
		l.hits[key] = kept
		return RateDecision{Limit: l.max, RetryAfter: kept[0].Add(l.window).Sub(now)}
	}
	l.hits[key] = append(kept, now)
	return RateDecision{Allowed: true, Limit: l.max, Remaining: l.max - len(kept) - 1}
}

// sweep borra, como mucho una vez por ventana, las claves sin hits vigentes.
func (l *memoryRateLimiter) sweep(now, cutoff time.Time) {
	if now.Sub(l.lastSweep) < l.window {
		return
	}
	l.lastSweep = now
	for key, hits := range l.hits {
		if len(hits) == 0 || !hits[len(hits)-1].After(cutoff) {
			delete(l.hits, key)
		}
	}
}

// Ventana deslizante sobre un ZSET con timestamps en ms.
// Devuelve {permitido, restantes, ms hasta liberar un lugar}.
const redisRateLimitScript = `
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
redis.call("ZREMRANGEBYSCORE", key, "-inf", now - window)
local count = redis.call("ZCARD", key)
if count >= limit then
  local oldest = redis.call("ZRANGE", key, 0, 0, "WITHSCORES")
  local retry = window
  if oldest[2] then
    retry = tonumber(oldest[2]) + window - now
  end
  return {0, 0, retry}
end
redis.call("ZADD", key, now, ARGV[4])
redis.call("PEXPIRE", key, window)
return {1, limit - count - 1, 0}
`

type redisEvaler interface {
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

type redisRateLimiter struct {
	client redisEvaler
	window time.Duration
	max    int
	prefix string
	now    func() time.Time
}

func NewRedisRateLimiter(client *redis.Client, window time.Duration, max int) RateLimiter {
	if client == nil {
		return nil
	}
	if window <= 0 {
		window = time.Minute
	}
	if max <= 0 {
		max = 1
	}
	return &redisRateLimiter{
		client: client,
		window: window,
		max:    max,
		prefix: "compat:ranking:rl:",
		now:    time.Now,
	}
}

// Allow deja pasar si redis falla: el limite protege la base, no es un control de acceso.
func (l *redisRateLimiter) Allow(ctx context.Context, key string) RateDecision {
	if l == nil || l.client == nil {
		return RateDecision{Allowed: true}
	}
	normalizedKey := normalizeRateKey(key)
	if normalizedKey == "" {
		return RateDecision{Limit: l.max, RetryAfter: l.window}
	}
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()

	windowMs := l.window.Milliseconds()
	reply, err := l.client.Eval(ctx, redisRateLimitScript, []string{l.prefix + normalizedKey},
		l.now().UnixMilli(), windowMs, l.max, uuid.NewString()).Int64Slice()
	if err != nil || len(reply) != 3 {
		return RateDecision{Allowed: true, Limit: l.max, Remaining: l.max}
	}
	return RateDecision{
		Allowed:    reply[0] == 1,
		Limit:      l.max,
		Remaining:  int(reply[1]),
		RetryAfter: time.Duration(reply[2]) * time.Millisecond,
	}
}
