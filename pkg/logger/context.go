package logger

import (
	"context"

	"go.uber.org/zap"
)

type ctxKey struct{}

// WithCorrelationID 把请求的 correlation id 放进 ctx, 供下游日志关联
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// CorrelationID 取出 ctx 中的 correlation id, 没有返回空串
func CorrelationID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// Ctx 返回带 correlation_id 字段的 Logger; ctx 中没有 id 时等同 With()
func Ctx(ctx context.Context) *zap.Logger {
	if id := CorrelationID(ctx); id != "" {
		return With(zap.String("correlation_id", id))
	}
	return With()
}
