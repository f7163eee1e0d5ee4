package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"recruit-eval/internal/domain"
)

type mockRedisKV struct {
	store   map[string]string
	lastTTL time.Duration
	getErr  error
}

func (m *mockRedisKV) Get(ctx context.Context, key string) *redis.StringCmd {
	cmd := redis.NewStringCmd(ctx, "get", key)
	if m.getErr != nil {
		cmd.SetErr(m.getErr)
		return cmd
	}
	val, ok := m.store[key]
	if !ok {
		cmd.SetErr(redis.Nil)
		return cmd
	}
	cmd.SetVal(val)
	return cmd
}

func (m *mockRedisKV) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	cmd := redis.NewStatusCmd(ctx, "set", key)
	switch v := value.(type) {
	case []byte:
		m.store[key] = string(v)
	case string:
		m.store[key] = v
	}
	m.lastTTL = expiration
	cmd.SetVal("OK")
	return cmd
}

func TestRedisResultCacheRoundTrip(t *testing.T) {
	kv := &mockRedisKV{store: map[string]string{}}
	cache := &redisResultCache{client: kv, ttl: 2 * time.Minute, prefix: "compat:result:"}
	ctx := context.Background()

	if _, ok, err := cache.Get(ctx, "c1", "p1"); ok || err != nil {
		t.Fatalf("expected miss without error, got ok=%v err=%v", ok, err)
	}

	want := domain.CompatibilityResult{Status: domain.ResultStatusOK, OverallScore: 72.5, DominantProfile: "Analítico"}
	if err := cache.Set(ctx, "c1", "p1", want); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, ok := kv.store["compat:result:p1:c1"]; !ok {
		t.Fatalf("expected prefixed key, got %+v", kv.store)
	}
	if kv.lastTTL != 2*time.Minute {
		t.Fatalf("expected ttl 2m, got %v", kv.lastTTL)
	}

	got, ok, err := cache.Get(ctx, "c1", "p1")
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if got.OverallScore != 72.5 || got.DominantProfile != "Analítico" {
		t.Fatalf("unexpected cached result: %+v", got)
	}
}

func TestRedisResultCacheErrors(t *testing.T) {
	kv := &mockRedisKV{store: map[string]string{}, getErr: errors.New("redis down")}
	cache := &redisResultCache{client: kv, ttl: time.Minute, prefix: "compat:result:"}
	if _, ok, err := cache.Get(context.Background(), "c1", "p1"); ok || err == nil {
		t.Fatalf("expected error on redis failure, got ok=%v err=%v", ok, err)
	}

	kv = &mockRedisKV{store: map[string]string{"compat:result:p1:c1": "{not json"}}
	cache = &redisResultCache{client: kv, ttl: time.Minute, prefix: "compat:result:"}
	var syntaxErr *json.SyntaxError
	if _, _, err := cache.Get(context.Background(), "c1", "p1"); !errors.As(err, &syntaxErr) {
		t.Fatalf("expected json syntax error, got %v", err)
	}
}

func TestMemoryResultCacheExpires(t *testing.T) {
	cache := NewMemoryResultCache(8, 5*time.Millisecond)
	ctx := context.Background()
	if err := cache.Set(ctx, "c1", "p1", domain.CompatibilityResult{OverallScore: 10}); err != nil {
		t.Fatalf("set: %v", err)
	}
	if got, ok, _ := cache.Get(ctx, "c1", "p1"); !ok || got.OverallScore != 10 {
		t.Fatalf("expected fresh hit, got %+v ok=%v", got, ok)
	}
	time.Sleep(20 * time.Millisecond)
	if _, ok, _ := cache.Get(ctx, "c1", "p1"); ok {
		t.Fatalf("expected expired entry to miss")
	}
}

func TestMemoryResultCacheEvictsOldest(t *testing.T) {
	cache := NewMemoryResultCache(1, time.Minute)
	ctx := context.Background()
	_ = cache.Set(ctx, "c1", "p1", domain.CompatibilityResult{OverallScore: 10})
	_ = cache.Set(ctx, "c2", "p1", domain.CompatibilityResult{OverallScore: 20})

	if _, ok, _ := cache.Get(ctx, "c1", "p1"); ok {
		t.Fatalf("expected oldest entry evicted")
	}
	if got, ok, _ := cache.Get(ctx, "c2", "p1"); !ok || got.OverallScore != 20 {
		t.Fatalf("expected newest entry kept, got %+v ok=%v", got, ok)
	}
}

func TestNewRedisResultCacheNilClient(t *testing.T) {
	if NewRedisResultCache(nil, time.Minute) != nil {
		t.Fatalf("expected nil cache for nil client")
	}
}
