package service

import (
	"context"
	"time"

	"usuarios-api/internal/core/cache"
	"usuarios-api/internal/domain"
)

const listCacheKey = "usuarios:all"

type redisListCache struct {
	c   *cache.Cache
	ttl time.Duration
}

// NewRedisListCache 用 Redis 缓存整表查询结果
func NewRedisListCache(c *cache.Cache, ttl time.Duration) ListCache {
	return &redisListCache{c: c, ttl: ttl}
}

func (r *redisListCache) Load(ctx context.Context, load func(context.Context) ([]domain.User, error)) ([]domain.User, error) {
	return cache.GetOrLoadJSON(r.c, ctx, listCacheKey, r.ttl, load)
}

func (r *redisListCache) Invalidate(ctx context.Context) error {
	return r.c.Invalidate(ctx, listCacheKey)
}
