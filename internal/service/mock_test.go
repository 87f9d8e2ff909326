package service

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"sync/atomic"
	"time"

	"eth-gateway/internal/gasoracle"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

const (
	fromAddr = "0x8ba1f109551bD432803012645Ac136ddd64DBA72"
	toAddr   = "0xAb5801a7D398351b8bE11C439e05C5B3259aeC9B"
)

type mockBackend struct {
	mock.Mock
}

func (m *mockBackend) SyncProgress(ctx context.Context) (*ethereum.SyncProgress, error) {
	args := m.Called(ctx)
	p, _ := args.Get(0).(*ethereum.SyncProgress)
	return p, args.Error(1)
}

func (m *mockBackend) BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error) {
	args := m.Called(ctx, account, blockNumber)
	b, _ := args.Get(0).(*big.Int)
	return b, args.Error(1)
}

func (m *mockBackend) BlockNumber(ctx context.Context) (uint64, error) {
	args := m.Called(ctx)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *mockBackend) EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error) {
	args := m.Called(ctx, msg)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *mockBackend) TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	args := m.Called(ctx, txHash)
	r, _ := args.Get(0).(*types.Receipt)
	return r, args.Error(1)
}

// CallContext 的结果通过 Run 回调写入 result
func (m *mockBackend) CallContext(ctx context.Context, result interface{}, method string, args ...interface{}) error {
	callArgs := append([]interface{}{ctx, result, method}, args...)
	return m.Called(callArgs...).Error(0)
}

func (m *mockBackend) Close() {}

type stubOracle struct {
	quote *gasoracle.Quote
	err   error
	calls int32
}

func (o *stubOracle) Quote(ctx context.Context) (*gasoracle.Quote, error) {
	atomic.AddInt32(&o.calls, 1)
	if o.err != nil {
		return nil, o.err
	}
	q := *o.quote
	return &q, nil
}

// 预言机原始值 {safeLow:20, average:40, fast:60} 除以 10 之后的报价
func defaultQuote() *stubOracle {
	return &stubOracle{quote: &gasoracle.Quote{
		Low:    decimal.NewFromInt(2),
		Medium: decimal.NewFromInt(4),
		High:   decimal.NewFromInt(6),
	}}
}

type memLock struct {
	mu   sync.Mutex
	held map[string]bool
	err  error
}

func newMemLock() *memLock {
	return &memLock{held: map[string]bool{}}
}

func (l *memLock) Acquire(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, bool, error) {
	if l.err != nil {
		return nil, false, l.err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] {
		return nil, false, nil
	}
	l.held[key] = true
	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.held, key)
		return nil
	}, true, nil
}

func (l *memLock) isHeld(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.held[key]
}

type published struct {
	topic   string
	key     string
	payload []byte
}

type recordingProducer struct {
	mu   sync.Mutex
	msgs []published
	err  error
}

func (p *recordingProducer) Publish(ctx context.Context, topic, key string, payload []byte) error {
	if p.err != nil {
		return p.err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs = append(p.msgs, published{topic: topic, key: key, payload: payload})
	return nil
}

func (p *recordingProducer) Close() error { return nil }

var errBoom = errors.New("boom")
