package lock

import (
	"context"
	"testing"
	"time"

	"eth-gateway/pkg/redistest"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisLock(t *testing.T) {
	ctx := context.Background()
	rdb := redistest.Client(t)
	l := NewRedisLock(rdb)

	tests := []struct {
		name string
		run  func(t *testing.T, key string)
	}{
		{"second acquire fails while held", func(t *testing.T, key string) {
			release, ok, err := l.Acquire(ctx, key, time.Minute)
			require.NoError(t, err)
			require.True(t, ok)

			_, ok, err = l.Acquire(ctx, key, time.Minute)
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, release(ctx))
			release, ok, err = l.Acquire(ctx, key, time.Minute)
			require.NoError(t, err)
			assert.True(t, ok)
			require.NoError(t, release(ctx))
		}},
		{"expired holder cannot release new owner", func(t *testing.T, key string) {
			staleRelease, ok, err := l.Acquire(ctx, key, 50*time.Millisecond)
			require.NoError(t, err)
			require.True(t, ok)
			time.Sleep(100 * time.Millisecond)

			release, ok, err := l.Acquire(ctx, key, time.Minute)
			require.NoError(t, err)
			require.True(t, ok)

			// 旧 token 不匹配, 不能删掉新持有者的锁
			require.NoError(t, staleRelease(ctx))
			_, ok, err = l.Acquire(ctx, key, time.Minute)
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, release(ctx))
		}},
		{"lock expires on its own", func(t *testing.T, key string) {
			_, ok, err := l.Acquire(ctx, key, 50*time.Millisecond)
			require.NoError(t, err)
			require.True(t, ok)
			time.Sleep(100 * time.Millisecond)

			release, ok, err := l.Acquire(ctx, key, time.Minute)
			require.NoError(t, err)
			assert.True(t, ok)
			require.NoError(t, release(ctx))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.run(t, "send:test-"+uuid.NewString())
		})
	}
}
