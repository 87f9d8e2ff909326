package cache

import (
	"context"
	"time"

	"eth-gateway/pkg/logger"

	"go.uber.org/zap"
)

// L1 回写的最长有效期
const maxLocalTTL = time.Minute

// MultiLevelCache 实现多级缓存 (L1: Memory, L2: Redis)
type MultiLevelCache struct {
	local  Cache
	remote Cache
}

func NewMultiLevelCache(local, remote Cache) *MultiLevelCache {
	return &MultiLevelCache{
		local:  local,
		remote: remote,
	}
}

func (m *MultiLevelCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	// L1 的 TTL 取 L2 的一半，减少多实例之间的不一致窗口
	if err := m.local.Set(ctx, key, value, ttl/2); err != nil {
		logger.Debug("写入本地缓存失败", zap.String("key", key), zap.Error(err))
	}
	return m.remote.Set(ctx, key, value, ttl)
}

func (m *MultiLevelCache) Get(ctx context.Context, key string, target interface{}) error {
	// 1. 查 L1
	if err := m.local.Get(ctx, key, target); err == nil {
		return nil
	}

	// 2. 查 L2
	if err := m.remote.Get(ctx, key, target); err != nil {
		return err
	}

	// 3. 回写 L1, 有效期不超过 L2 的剩余时间
	if ttl, ok := m.backfillTTL(ctx, key); ok {
		if err := m.local.Set(ctx, key, target, ttl); err != nil {
			logger.Debug("回写本地缓存失败", zap.String("key", key), zap.Error(err))
		}
	}
	return nil
}

// backfillTTL L2 无法给出剩余时间时不回写
func (m *MultiLevelCache) backfillTTL(ctx context.Context, key string) (time.Duration, bool) {
	r, ok := m.remote.(TTLReader)
	if !ok {
		return 0, false
	}
	remaining, err := r.TTL(ctx, key)
	if err != nil {
		logger.Debug("查询远端缓存 TTL 失败", zap.String("key", key), zap.Error(err))
		return 0, false
	}
	if remaining == 0 || remaining > maxLocalTTL {
		return maxLocalTTL, true
	}
	return remaining, true
}

func (m *MultiLevelCache) Delete(ctx context.Context, key string) error {
	if err := m.local.Delete(ctx, key); err != nil {
		logger.Debug("删除本地缓存失败", zap.String("key", key), zap.Error(err))
	}
	return m.remote.Delete(ctx, key)
}
