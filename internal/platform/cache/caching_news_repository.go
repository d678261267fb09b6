// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"finmonitor_backend/internal/feature/news/domain/entity"
	"finmonitor_backend/internal/feature/news/usecase"
)

// CachingNewsRepository decorates a NewsRepository with Redis caching.
// It implements the decorator pattern, transparently adding caching without
// modifying the underlying repository.
type CachingNewsRepository struct {
	inner     usecase.NewsRepository
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

// NewCachingNewsRepository decorates a NewsRepository with Redis caching.
// If ttl is 0, it defaults to 2 minutes. If namespace is empty, it uses "news".
func NewCachingNewsRepository(rdb *redis.Client, ttl time.Duration, inner usecase.NewsRepository, namespace string) *CachingNewsRepository {
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	if namespace == "" {
		namespace = "news"
	}
	return &CachingNewsRepository{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

// Insert persists the item and invalidates the affected list entries.
// 冪等性はinner側の責務で、ここでは変えません。
func (c *CachingNewsRepository) Insert(ctx context.Context, n entity.NewsItem) (bool, error) {
	inserted, err := c.inner.Insert(ctx, n)
	if err != nil || !inserted {
		return inserted, err
	}
	if c.rdb == nil {
		return inserted, nil
	}

	// 新着は絞り込みなしの一覧と、関連銘柄ごとの一覧に影響する
	patterns := []string{c.cacheKeyPrefix("") + "*"}
	for _, sym := range n.RelatedSymbols {
		patterns = append(patterns, c.cacheKeyPrefix(sym)+"*")
	}
	for _, p := range patterns {
		_ = c.deleteByPattern(ctx, p) // Best effort: don't fail if cache deletion fails
	}
	return inserted, nil
}

// Exists is a passthrough; the ingest path must see the store's truth.
func (c *CachingNewsRepository) Exists(ctx context.Context, fingerprint string) (bool, error) {
	return c.inner.Exists(ctx, fingerprint)
}

// List retrieves items, checking cache first then falling back to the store.
func (c *CachingNewsRepository) List(ctx context.Context, symbol string, limit int) ([]entity.NewsItem, error) {
	// Bypass cache if Redis is not configured
	if c.rdb == nil {
		return c.inner.List(ctx, symbol, limit)
	}

	key := c.cacheKey(symbol, limit)

	// 1) Check cache
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var out []entity.NewsItem
		if err := json.Unmarshal(b, &out); err == nil {
			return out, nil
		}
		// Delete corrupted cache entry
		_ = c.rdb.Del(ctx, key).Err()
	}

	// 2) Fallback to the store
	out, err := c.inner.List(ctx, symbol, limit)
	if err != nil {
		return nil, err
	}

	// 3) Store in cache (best effort)
	if b, err := json.Marshal(out); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.ttl).Err()
	}

	return out, nil
}

// cacheKey generates a cache key for a specific query.
func (c *CachingNewsRepository) cacheKey(symbol string, limit int) string {
	return fmt.Sprintf("%s:%d", c.cacheKeyPrefix(symbol), limit)
}

// cacheKeyPrefix generates a prefix for invalidating related cache entries.
func (c *CachingNewsRepository) cacheKeyPrefix(symbol string) string {
	if symbol == "" {
		symbol = "_all"
	}
	return fmt.Sprintf("%s:%s", c.namespace, safe(symbol))
}

// deleteByPattern deletes all cache keys matching a given pattern using SCAN.
func (c *CachingNewsRepository) deleteByPattern(ctx context.Context, pattern string) error {
	var cursor uint64
	for {
		keys, cur, err := c.rdb.Scan(ctx, cursor, pattern, 200).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = cur
		if cursor == 0 {
			break
		}
	}
	return nil
}

// safe escapes characters that are problematic for Redis keys.
func safe(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, ":", "_")
	return s
}
