package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"lms_backend/internal/model"
	"lms_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// CatalogCache 以 (testID, revision) 为键缓存完整的测试聚合。
// 同一 revision 的内容不会再变化，因此无需主动失效，只靠 TTL 回收。
type CatalogCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewCatalogCache(rdb *redis.Client, ttl time.Duration) *CatalogCache {
	if rdb == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &CatalogCache{rdb: rdb, ttl: ttl}
}

func testCacheKey(testID uint, revision int) string {
	return fmt.Sprintf("catalog:test:%d:rev:%d", testID, revision)
}

// Get 缓存不可用按未命中处理
func (c *CatalogCache) Get(ctx context.Context, testID uint, revision int) (*model.Test, bool) {
	if c == nil {
		return nil, false
	}
	raw, err := c.rdb.Get(ctx, testCacheKey(testID, revision)).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.Log.Warn("catalog cache get failed", zap.Uint("testId", testID), zap.Error(err))
		}
		return nil, false
	}
	var test model.Test
	if err := json.Unmarshal(raw, &test); err != nil {
		logger.Log.Warn("catalog cache decode failed", zap.Uint("testId", testID), zap.Error(err))
		return nil, false
	}
	return &test, true
}

func (c *CatalogCache) Put(ctx context.Context, test *model.Test) {
	if c == nil || test == nil {
		return
	}
	raw, err := json.Marshal(test)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, testCacheKey(test.ID, test.Revision), raw, c.ttl).Err(); err != nil {
		logger.Log.Warn("catalog cache put failed", zap.Uint("testId", test.ID), zap.Error(err))
	}
}

func (c *CatalogCache) Ping(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.rdb.Ping(ctx).Err()
}
