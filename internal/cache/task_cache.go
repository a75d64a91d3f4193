package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"taskapi/internal/domain"
)

const keyPage = "task:page:"

// TaskPage is one cached listing page.
type TaskPage struct {
	Items []domain.Task
	Count int64
}

// TaskCache caches task listing pages in Redis.
type TaskCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewTaskCache returns a new TaskCache.
func NewTaskCache(rdb *redis.Client, ttl time.Duration) *TaskCache {
	return &TaskCache{rdb: rdb, ttl: ttl}
}

// GetPage returns the cached page or nil on miss.
func (c *TaskCache) GetPage(ctx context.Context, page, limit int) (*TaskPage, error) {
	b, err := c.rdb.Get(ctx, pageKey(page, limit)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var p TaskPage
	if err := json.Unmarshal(b, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// SetPage stores a listing page.
func (c *TaskCache) SetPage(ctx context.Context, page, limit int, p TaskPage) error {
	b, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, pageKey(page, limit), b, c.ttl).Err()
}

// Invalidate removes all cached pages (cache invalidation on write).
func (c *TaskCache) Invalidate(ctx context.Context) error {
	iter := c.rdb.Scan(ctx, 0, keyPage+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := c.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

func pageKey(page, limit int) string {
	return fmt.Sprintf("%s%d:%d", keyPage, page, limit)
}
