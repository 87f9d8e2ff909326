package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"eth-gateway/internal/gasoracle"
	"eth-gateway/pkg/errno"
	"eth-gateway/pkg/logger"
	"eth-gateway/pkg/monitor"
	"eth-gateway/pkg/units"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const defaultRPCTimeout = 15 * time.Second

// GasEstimator 节点侧 gas 预估
type GasEstimator interface {
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
}

// Preparer 把交易草稿加工成可直接提交的参数:
// 校验金额 -> 查询 gas 报价 -> 选择档位 -> 预估 gas -> 校验 gas -> 组装
// 无共享状态, 可并发调用
type Preparer struct {
	estimator GasEstimator
	oracle    gasoracle.Oracle
	timeout   time.Duration
}

func NewPreparer(estimator GasEstimator, oracle gasoracle.Oracle, timeout time.Duration) *Preparer {
	if timeout <= 0 {
		timeout = defaultRPCTimeout
	}
	return &Preparer{
		estimator: estimator,
		oracle:    oracle,
		timeout:   timeout,
	}
}

// Prepare 只做两次只读的外部调用, 不提交交易; 任一步失败立即返回, 不重试
func (p *Preparer) Prepare(ctx context.Context, draft TransactionDraft) (*PreparedTransaction, error) {
	tier := gasoracle.TierLow
	if draft.GasPrice != "" {
		tier = strings.ToLower(strings.TrimSpace(draft.GasPrice))
	}

	prepared, err := p.prepare(ctx, draft, tier)
	monitor.Business.TxPreparedTotal.WithLabelValues(tierLabel(tier), resultLabel(err)).Inc()
	if err != nil {
		logger.Debug("prepare transaction failed",
			zap.String("from", draft.From),
			zap.String("to", draft.To),
			zap.String("value", draft.Value),
			zap.Error(err))
		return nil, err
	}
	return prepared, nil
}

func (p *Preparer) prepare(ctx context.Context, draft TransactionDraft, tier string) (*PreparedTransaction, error) {
	// 1. 校验金额并换算为 wei
	amount, wei, err := units.ParseEther(draft.Value)
	if err != nil {
		return nil, errno.ErrInvalidValue.Wrap(err)
	}
	from, err := parseAddress("from", draft.From)
	if err != nil {
		return nil, err
	}
	to, err := parseAddress("to", draft.To)
	if err != nil {
		return nil, err
	}

	// 2. gas 报价 (gwei)
	quote, err := p.oracle.Quote(ctx)
	if err != nil {
		if errno.IsUpstream(err) {
			return nil, err
		}
		return nil, errno.ErrGasOracle.Wrap(err)
	}

	// 3. 选择档位; 未知档位直接终止, 不计算默认价格
	tierGwei, ok := quote.Tier(tier)
	if !ok {
		return nil, errno.ErrInvalidGasPriceTier.Wrap(fmt.Errorf("unknown tier %q, expected low, medium or high", draft.GasPrice))
	}
	gasPrice := units.GweiToWei(tierGwei)

	// 4. 预估 gas
	params := TxParams{
		From:     from,
		To:       to,
		GasPrice: (*hexutil.Big)(gasPrice),
		Value:    (*hexutil.Big)(wei),
	}
	estimated, err := p.estimate(ctx, params)
	if err != nil {
		return nil, errno.ErrEstimateGas.Wrap(err)
	}

	// 5. 调用方指定的 gas 不能低于预估值
	gas := estimated
	if draft.Gas != "" {
		custom, err := parseGas(draft.Gas)
		if err != nil {
			return nil, errno.ErrGasNotNumber.Wrap(err)
		}
		if custom < estimated {
			return nil, errno.ErrGasBelowEstimate.Wrap(fmt.Errorf("gas %d is less than estimated gas for this transaction: %d", custom, estimated))
		}
		gas = custom
	}

	final := params
	final.Gas = (*hexutil.Uint64)(&gas)

	return &PreparedTransaction{
		AmountToSendEther: amount,
		AmountToSendWei:   decimal.NewFromBigInt(wei, 0),
		GasPrices:         *quote,
		GasPriceType:      tier,
		GasPrice:          decimal.NewFromBigInt(gasPrice, 0),
		EstimatedGas:      estimated,
		Gas:               gas,
		Params:            params,
		ParamsUpdated:     final,
	}, nil
}

func (p *Preparer) estimate(ctx context.Context, params TxParams) (uint64, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	to := params.To
	start := time.Now()
	gas, err := p.estimator.EstimateGas(ctx, ethereum.CallMsg{
		From:     params.From,
		To:       &to,
		GasPrice: params.GasPrice.ToInt(),
		Value:    params.Value.ToInt(),
	})
	monitor.Business.ObserveUpstream(monitor.SourceNode, "eth_estimateGas", start, err)
	if err != nil {
		logger.Ctx(ctx).Error("estimate gas failed",
			zap.String("from", params.From.Hex()),
			zap.String("to", params.To.Hex()),
			zap.Error(err))
		return 0, err
	}
	return gas, nil
}

func parseAddress(field, s string) (common.Address, error) {
	s = strings.TrimSpace(s)
	if !common.IsHexAddress(s) {
		return common.Address{}, errno.ErrInvalidAddress.Wrap(fmt.Errorf("%s %q is not a hex address", field, s))
	}
	return common.HexToAddress(s), nil
}

// parseGas 接受十进制整数或 0x 前缀的十六进制
func parseGas(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return hexutil.DecodeUint64(strings.ToLower(s))
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, err
	}
	if d.IsNegative() || !d.IsInteger() {
		return 0, fmt.Errorf("gas %q must be a non-negative integer", s)
	}
	n := d.BigInt()
	if !n.IsUint64() {
		return 0, fmt.Errorf("gas %q overflows uint64", s)
	}
	return n.Uint64(), nil
}

func tierLabel(tier string) string {
	switch tier {
	case gasoracle.TierLow, gasoracle.TierMedium, gasoracle.TierHigh:
		return tier
	}
	return "unknown"
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errno.IsValidation(err):
		return "invalid"
	default:
		return "upstream_error"
	}
}
