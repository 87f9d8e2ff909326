package gasoracle

import (
	"context"
	"time"

	"eth-gateway/pkg/cache"
	"eth-gateway/pkg/logger"

	"go.uber.org/zap"
)

const cacheKey = "gas_oracle:quote"

// CachedOracle 在 ttl 内复用上一次的报价
type CachedOracle struct {
	next  Oracle
	cache cache.Cache
	ttl   time.Duration
}

// WithCache ttl <= 0 时直接返回 next，不做缓存
func WithCache(next Oracle, c cache.Cache, ttl time.Duration) Oracle {
	if ttl <= 0 || c == nil {
		return next
	}
	return &CachedOracle{next: next, cache: c, ttl: ttl}
}

func (o *CachedOracle) Quote(ctx context.Context) (*Quote, error) {
	var q Quote
	if err := o.cache.Get(ctx, cacheKey, &q); err == nil {
		return &q, nil
	}

	fresh, err := o.next.Quote(ctx)
	if err != nil {
		return nil, err
	}
	if err := o.cache.Set(ctx, cacheKey, fresh, o.ttl); err != nil {
		logger.Warn("缓存 gas 报价失败", zap.Error(err))
	}
	return fresh, nil
}
