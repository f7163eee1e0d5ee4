package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

type mockRedisEvaler struct {
	lastScript string
	lastKeys   []string
	lastArgs   []interface{}
	reply      []interface{}
	err        error
}

func (m *mockRedisEvaler) Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd {
	m.lastScript = script
	m.lastKeys = keys
	m.lastArgs = args
	cmd := redis.NewCmd(ctx)
	if m.err != nil {
		cmd.SetErr(m.err)
		return cmd
	}
	cmd.SetVal(m.reply)
	return cmd
}

func newTestRedisLimiter(mock *mockRedisEvaler, window time.Duration, max int) *redisRateLimiter {
	fixed := time.UnixMilli(1_700_000_000_000)
	return &redisRateLimiter{
		client: mock,
		window: window,
		max:    max,
		prefix: "compat:ranking:rl:",
		now:    func() time.Time { return fixed },
	}
}

func TestRedisRateLimiterAllow(t *testing.T) {
	ctx := context.Background()

	t.Run("nil receiver fail-open", func(t *testing.T) {
		var l *redisRateLimiter
		if !l.Allow(ctx, "user:admin-1").Allowed {
			t.Fatalf("expected fail-open for nil limiter")
		}
	})

	t.Run("empty key rejected", func(t *testing.T) {
		l := newTestRedisLimiter(&mockRedisEvaler{reply: []interface{}{int64(1), int64(2), int64(0)}}, time.Minute, 3)
		if l.Allow(ctx, "   ").Allowed {
			t.Fatalf("expected empty key to be rejected")
		}
	})

	t.Run("allowed reports remaining quota", func(t *testing.T) {
		mock := &mockRedisEvaler{reply: []interface{}{int64(1), int64(1), int64(0)}}
		l := newTestRedisLimiter(mock, 2*time.Minute, 3)
		decision := l.Allow(ctx, " User:Admin-1 ")
		if !decision.Allowed || decision.Remaining != 1 || decision.Limit != 3 {
			t.Fatalf("unexpected decision: %+v", decision)
		}
		if len(mock.lastKeys) != 1 || mock.lastKeys[0] != "compat:ranking:rl:user:admin-1" {
			t.Fatalf("unexpected key normalization, got %+v", mock.lastKeys)
		}
		if len(mock.lastArgs) != 4 || mock.lastArgs[0] != int64(1_700_000_000_000) || mock.lastArgs[1] != int64(120_000) || mock.lastArgs[2] != 3 {
			t.Fatalf("unexpected script args: %+v", mock.lastArgs)
		}
		if mock.lastScript != redisRateLimitScript {
			t.Fatalf("expected script to match")
		}
	})

	t.Run("denied reports retry after", func(t *testing.T) {
		mock := &mockRedisEvaler{reply: []interface{}{int64(0), int64(0), int64(1500)}}
		decision := newTestRedisLimiter(mock, time.Minute, 3).Allow(ctx, "user:admin-1")
		if decision.Allowed || decision.RetryAfter != 1500*time.Millisecond {
			t.Fatalf("unexpected decision: %+v", decision)
		}
	})

	t.Run("redis error fail-open", func(t *testing.T) {
		l := newTestRedisLimiter(&mockRedisEvaler{err: errors.New("redis down")}, time.Minute, 3)
		if !l.Allow(ctx, "user:admin-1").Allowed {
			t.Fatalf("expected fail-open on redis errors")
		}
	})

	t.Run("unexpected reply fail-open", func(t *testing.T) {
		l := newTestRedisLimiter(&mockRedisEvaler{reply: []interface{}{int64(0)}}, time.Minute, 3)
		if !l.Allow(ctx, "user:admin-1").Allowed {
			t.Fatalf("expected fail-open on malformed reply")
		}
	})
}

func TestMemoryRateLimiter(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	l := NewMemoryRateLimiter(time.Minute, 2).(*memoryRateLimiter)
	l.now = func() time.Time { return now }

	first := l.Allow(ctx, "a")
	if !first.Allowed || first.Remaining != 1 {
		t.Fatalf("unexpected first decision: %+v", first)
	}
	now = now.Add(10 * time.Second)
	if second := l.Allow(ctx, " A "); !second.Allowed || second.Remaining != 0 {
		t.Fatalf("unexpected second decision: %+v", second)
	}
	now = now.Add(10 * time.Second)
	denied := l.Allow(ctx, "a")
	if denied.Allowed || denied.RetryAfter != 40*time.Second {
		t.Fatalf("expected denial with 40s retry, got %+v", denied)
	}
	if !l.Allow(ctx, "b").Allowed {
		t.Fatalf("expected other keys unaffected")
	}
	if l.Allow(ctx, "").Allowed {
		t.Fatalf("expected empty key rejected")
	}
}

func TestMemoryRateLimiterDropsIdleKeys(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	l := NewMemoryRateLimiter(time.Minute, 5).(*memoryRateLimiter)
	l.now = func() time.Time { return now }

	for _, key := range []string{"ip:1", "ip:2", "ip:3"} {
		l.Allow(ctx, key)
	}
	if len(l.hits) != 3 {
		t.Fatalf("expected 3 tracked keys, got %d", len(l.hits))
	}

	now = now.Add(2 * time.Minute)
	l.Allow(ctx, "ip:4")
	if len(l.hits) != 1 {
		t.Fatalf("expected idle keys dropped, got %d keys", len(l.hits))
	}
	if _, ok := l.hits["ip:4"]; !ok {
		t.Fatalf("expected active key kept")
	}
}
