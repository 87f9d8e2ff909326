// Package units converts between ether, gwei and wei without floating point.
package units

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	EtherDecimals = 18
	GweiDecimals  = 9
)

// ParseEther 解析以 ether 为单位的十进制字符串并换算为 wei
// 负数、空串、科学计数法以外的非法格式、超过 18 位小数 (无法精确表示为 wei) 都视为非法
func ParseEther(value string) (decimal.Decimal, *big.Int, error) {
	s := strings.TrimSpace(value)
	if s == "" {
		return decimal.Zero, nil, fmt.Errorf("empty amount")
	}
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, nil, fmt.Errorf("parse amount %q: %w", value, err)
	}
	if amount.IsNegative() {
		return decimal.Zero, nil, fmt.Errorf("negative amount %q", value)
	}
	wei := amount.Shift(EtherDecimals)
	if !wei.IsInteger() {
		return decimal.Zero, nil, fmt.Errorf("amount %q has more than %d decimal places", value, EtherDecimals)
	}
	return amount, wei.BigInt(), nil
}

// EtherToWei 精确换算 ether -> wei (调用方需保证小数位不超过 18 位，多余部分被截断)
func EtherToWei(ether decimal.Decimal) *big.Int {
	return ether.Shift(EtherDecimals).BigInt()
}

// WeiToEther wei -> ether, 精确十进制
func WeiToEther(wei *big.Int) decimal.Decimal {
	if wei == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(wei, -EtherDecimals)
}

// GweiToWei gwei -> wei, 小于 1 wei 的部分截断
func GweiToWei(gwei decimal.Decimal) *big.Int {
	return gwei.Shift(GweiDecimals).BigInt()
}

// WeiToGwei wei -> gwei
func WeiToGwei(wei *big.Int) decimal.Decimal {
	if wei == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(wei, -GweiDecimals)
}
