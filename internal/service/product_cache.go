package service

import (
	"context"
	"encoding/json"
	"time"

	"stockroom/internal/dto"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// ProductCache is a read-through cache for single-product lookups. Entries
// carry a short TTL and every stock-affecting write path invalidates them, so
// a cached read is at worst one eviction behind a concurrent writer.
// A nil *ProductCache is a valid no-op cache; unit tests pass nil.
type ProductCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewProductCache(rdb *redis.Client) *ProductCache {
	return &ProductCache{rdb: rdb, ttl: 30 * time.Second}
}

func productCacheKey(id uuid.UUID) string { return "cache:product:" + id.String() }

func (c *ProductCache) Get(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, bool) {
	if c == nil || c.rdb == nil {
		return nil, false
	}
	raw, err := c.rdb.Get(ctx, productCacheKey(id)).Result()
	if err != nil {
		if err != redis.Nil {
			log.Warn().Err(err).Msg("product cache read failed")
		}
		return nil, false
	}
	var resp dto.ProductResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return nil, false
	}
	return &resp, true
}

func (c *ProductCache) Set(ctx context.Context, id uuid.UUID, resp *dto.ProductResponse) {
	if c == nil || c.rdb == nil {
		return
	}
	raw, err := json.Marshal(resp)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, productCacheKey(id), raw, c.ttl).Err(); err != nil {
		log.Warn().Err(err).Msg("product cache write failed")
	}
}

// Invalidate is best-effort: on failure the entry expires by TTL anyway.
func (c *ProductCache) Invalidate(ctx context.Context, ids ...uuid.UUID) {
	if c == nil || c.rdb == nil || len(ids) == 0 {
		return
	}
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, productCacheKey(id))
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		log.Warn().Err(err).Msg("product cache invalidation failed")
	}
}
