// Package redistest 为需要真实 Redis 的测试提供连接, 连不上时跳过测试
package redistest

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client 读取 TEST_REDIS_ADDR (默认 localhost:6379), 使用 DB 15
// 运行命令: docker run --rm -p 6379:6379 redis && go test ./...
func Client(t *testing.T) *redis.Client {
	t.Helper()

	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr, DB: 15})

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		t.Skip("Skipping Redis test: server not running? " + err.Error())
	}
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}
