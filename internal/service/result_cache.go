package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/redis/go-redis/v9"

	"recruit-eval/internal/domain"
)

// ResultCache guarda resultados ya calculados por candidato y proceso.
// Los resultados son derivables, asi que un fallo del cache nunca es fatal.
type ResultCache interface {
	Get(ctx context.Context, candidateID, processID string) (domain.CompatibilityResult, bool, error)
	Set(ctx context.Context, candidateID, processID string, result domain.CompatibilityResult) error
}

func resultCacheKey(candidateID, processID string) string {
	return strings.TrimSpace(processID) + ":" + strings.TrimSpace(candidateID)
}

type memoryResultCache struct {
	lru *expirable.LRU[string, domain.CompatibilityResult]
}

// NewMemoryResultCache crea un cache LRU acotado con expiracion por entrada.
func NewMemoryResultCache(size int, ttl time.Duration) ResultCache {
	if size <= 0 {
		size = 1024
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &memoryResultCache{
		lru: expirable.NewLRU[string, domain.CompatibilityResult](size, nil, ttl),
	}
}

func (c *memoryResultCache) Get(_ context.Context, candidateID, processID string) (domain.CompatibilityResult, bool, error) {
	result, ok := c.lru.Get(resultCacheKey(candidateID, processID))
	return result, ok, nil
}

func (c *memoryResultCache) Set(_ context.Context, candidateID, processID string, result domain.CompatibilityResult) error {
	c.lru.Add(resultCacheKey(candidateID, processID), result)
	return nil
}

type redisKV interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

type redisResultCache struct {
	client redisKV
	ttl    time.Duration
	prefix string
}

func NewRedisResultCache(client *redis.Client, ttl time.Duration) ResultCache {
	if client == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &redisResultCache{
		client: client,
		ttl:    ttl,
		prefix: "compat:result:",
	}
}

func (c *redisResultCache) Get(ctx context.Context, candidateID, processID string) (domain.CompatibilityResult, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	raw, err := c.client.Get(ctx, c.prefix+resultCacheKey(candidateID, processID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.CompatibilityResult{}, false, nil
	}
	if err != nil {
		return domain.CompatibilityResult{}, false, err
	}
	var result domain.CompatibilityResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return domain.CompatibilityResult{}, false, err
	}
	return result, true, nil
}

func (c *redisResultCache) Set(ctx context.Context, candidateID, processID string, result domain.CompatibilityResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	return c.client.Set(ctx, c.prefix+resultCacheKey(candidateID, processID), payload, c.ttl).Err()
}
