// Package gasoracle fetches gas price tiers from an external oracle endpoint.
package gasoracle

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	TierLow    = "low"
	TierMedium = "medium"
	TierHigh   = "high"
)

// Quote 三档 gas 价格，单位 gwei (预言机原始值 / 10)
type Quote struct {
	Low    decimal.Decimal `json:"low"`
	Medium decimal.Decimal `json:"medium"`
	High   decimal.Decimal `json:"high"`
}

// Tier 按档位名取价格，名称大小写不敏感
func (q Quote) Tier(name string) (decimal.Decimal, bool) {
	switch strings.ToLower(name) {
	case TierLow:
		return q.Low, true
	case TierMedium:
		return q.Medium, true
	case TierHigh:
		return q.High, true
	}
	return decimal.Zero, false
}

// Oracle 是 gas 价格来源
type Oracle interface {
	Quote(ctx context.Context) (*Quote, error)
}
