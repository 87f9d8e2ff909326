package service

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"eth-gateway/internal/gasoracle"
	"eth-gateway/internal/service/mq"
	"eth-gateway/pkg/cache"
	"eth-gateway/pkg/errno"
	"eth-gateway/pkg/logger"
	"eth-gateway/pkg/monitor"
	"eth-gateway/pkg/units"
	"eth-gateway/pkg/utils/lock"
	"eth-gateway/pkg/validator"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// 允许替换区块号的标签
var blockTags = map[string]bool{
	"latest":    true,
	"earliest":  true,
	"pending":   true,
	"safe":      true,
	"finalized": true,
}

type Options struct {
	RPCTimeout     time.Duration
	BlockTTL       time.Duration // 0 = 不缓存
	WaitReceipt    bool
	ReceiptTimeout time.Duration
	PollInterval   time.Duration
	LockTTL        time.Duration
	EventTopic     string
}

type Option func(*NodeService)

// WithCache 区块缓存
func WithCache(c cache.Cache) Option {
	return func(s *NodeService) { s.cache = c }
}

// WithLock 同一发送方的并发提交互斥
func WithLock(l lock.DistributedLock) Option {
	return func(s *NodeService) { s.locker = l }
}

// WithProducer 交易提交成功后投递事件
func WithProducer(p mq.Producer) Option {
	return func(s *NodeService) { s.producer = p }
}

// NodeService 一对一转发节点调用, 统一超时 / 指标 / 错误包装
type NodeService struct {
	backend  Backend
	preparer *Preparer
	opts     Options

	cache    cache.Cache
	locker   lock.DistributedLock
	producer mq.Producer
}

func NewNodeService(backend Backend, oracle gasoracle.Oracle, opts Options, options ...Option) *NodeService {
	if opts.RPCTimeout <= 0 {
		opts.RPCTimeout = defaultRPCTimeout
	}
	if opts.ReceiptTimeout <= 0 {
		opts.ReceiptTimeout = 2 * time.Minute
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 2 * time.Second
	}
	if opts.LockTTL <= 0 {
		opts.LockTTL = time.Minute
	}
	if opts.EventTopic == "" {
		opts.EventTopic = "eth_gateway_tx_sent"
	}

	s := &NodeService{
		backend:  backend,
		preparer: NewPreparer(backend, oracle, opts.RPCTimeout),
		opts:     opts,
	}
	for _, o := range options {
		o(s)
	}
	return s
}

// call 统一处理单次调用超时、耗时指标与错误包装
func (s *NodeService) call(ctx context.Context, method string, wrap errno.Errno, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, s.opts.RPCTimeout)
	defer cancel()

	start := time.Now()
	err := fn(ctx)
	monitor.Business.ObserveUpstream(monitor.SourceNode, method, start, err)
	if err != nil {
		logger.Ctx(ctx).Error("node request failed", zap.String("method", method), zap.Error(err))
		return wrap.Wrap(err)
	}
	return nil
}

func (s *NodeService) IsSyncing(ctx context.Context) (*SyncStatus, error) {
	var progress *ethereum.SyncProgress
	err := s.call(ctx, "eth_syncing", errno.ErrNode, func(ctx context.Context) (err error) {
		progress, err = s.backend.SyncProgress(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	if progress == nil {
		return &SyncStatus{NodeSynced: true}, nil
	}
	return &SyncStatus{
		NodeSynced: false,
		Progress: &SyncProgress{
			StartingBlock: progress.StartingBlock,
			CurrentBlock:  progress.CurrentBlock,
			HighestBlock:  progress.HighestBlock,
		},
	}, nil
}

func (s *NodeService) GetBalance(ctx context.Context, address string) (*Balance, error) {
	account, err := parseAddress("address", address)
	if err != nil {
		return nil, err
	}

	var b *Balance
	err = s.call(ctx, "eth_getBalance", errno.ErrNode, func(ctx context.Context) error {
		wei, err := s.backend.BalanceAt(ctx, account, nil)
		if err != nil {
			return err
		}
		b = &Balance{
			WeiBalance:   decimal.NewFromBigInt(wei, 0),
			EtherBalance: units.WeiToEther(wei),
		}
		return nil
	})
	return b, err
}

func (s *NodeService) GetBlockNumber(ctx context.Context) (*BlockNumber, error) {
	var n uint64
	err := s.call(ctx, "eth_blockNumber", errno.ErrNode, func(ctx context.Context) (err error) {
		n, err = s.backend.BlockNumber(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &BlockNumber{BlockNumber: n}, nil
}

func (s *NodeService) GetTransaction(ctx context.Context, hash string) (*TransactionLookup, error) {
	hash = strings.TrimSpace(hash)
	if !validator.IsHexHash(hash) {
		return nil, errno.ErrInvalidTxHash.Wrap(fmt.Errorf("%q is not a 32-byte hex hash", hash))
	}

	var raw json.RawMessage
	err := s.call(ctx, "eth_getTransactionByHash", errno.ErrNode, func(ctx context.Context) error {
		return s.backend.CallContext(ctx, &raw, "eth_getTransactionByHash", common.HexToHash(hash))
	})
	if err != nil {
		return nil, err
	}
	return &TransactionLookup{Transaction: raw}, nil
}

// GetTransactionFromBlock block 可以是区块哈希、区块号 (十进制或 0x) 或标签
func (s *NodeService) GetTransactionFromBlock(ctx context.Context, block string, index uint64) (*TransactionLookup, error) {
	block = strings.TrimSpace(block)

	method := "eth_getTransactionByBlockNumberAndIndex"
	var ref interface{}
	if validator.IsHexHash(block) {
		method = "eth_getTransactionByBlockHashAndIndex"
		ref = common.HexToHash(block)
	} else if blockTags[strings.ToLower(block)] {
		ref = strings.ToLower(block)
	} else {
		n, err := parseBlockNumber(block)
		if err != nil {
			return nil, err
		}
		ref = hexutil.Uint64(n)
	}

	var raw json.RawMessage
	err := s.call(ctx, method, errno.ErrNode, func(ctx context.Context) error {
		return s.backend.CallContext(ctx, &raw, method, ref, hexutil.Uint64(index))
	})
	if err != nil {
		return nil, err
	}
	return &TransactionLookup{Transaction: raw}, nil
}

// GetBlock blockNumber 必须是数字; overrideString 非空时替换区块号 (latest / earliest / pending / safe / finalized)
// 返回节点原始区块对象, 不存在时为 null
func (s *NodeService) GetBlock(ctx context.Context, blockNumber string, showTxObject bool, overrideString string) (json.RawMessage, error) {
	n, err := parseBlockNumber(blockNumber)
	if err != nil {
		return nil, err
	}

	var ref interface{} = hexutil.Uint64(n)
	cacheable := s.cache != nil && s.opts.BlockTTL > 0
	if tag := strings.ToLower(strings.TrimSpace(overrideString)); tag != "" {
		if !blockTags[tag] {
			return nil, errno.ErrInvalidBlockTag.Wrap(fmt.Errorf("%q is not one of latest, earliest, pending, safe, finalized", overrideString))
		}
		ref = tag
		cacheable = false
	}

	key := fmt.Sprintf("block:%d:%t", n, showTxObject)
	if cacheable {
		var cached json.RawMessage
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return cached, nil
		}
	}

	var raw json.RawMessage
	err = s.call(ctx, "eth_getBlockByNumber", errno.ErrNode, func(ctx context.Context) error {
		return s.backend.CallContext(ctx, &raw, "eth_getBlockByNumber", ref, showTxObject)
	})
	if err != nil {
		return nil, err
	}

	if cacheable && !isNull(raw) {
		if err := s.cache.Set(ctx, key, raw, s.opts.BlockTTL); err != nil {
			logger.Warn("缓存区块失败", zap.Uint64("block", n), zap.Error(err))
		}
	}
	return raw, nil
}

// CreateAccount 本地生成密钥; passphrase 非空时同时导入节点, 之后节点可为该地址签名 eth_sendTransaction
func (s *NodeService) CreateAccount(ctx context.Context, passphrase string) (*Account, error) {
	key, err := crypto.GenerateKey()
	if err != nil {
		return nil, errno.InternalServerError.Wrap(err)
	}
	keyBytes := crypto.FromECDSA(key)
	acct := &Account{
		Address:    crypto.PubkeyToAddress(key.PublicKey).Hex(),
		PrivateKey: hexutil.Encode(keyBytes),
	}

	if passphrase == "" {
		return acct, nil
	}

	var imported common.Address
	err = s.call(ctx, "personal_importRawKey", errno.ErrImportAccount, func(ctx context.Context) error {
		return s.backend.CallContext(ctx, &imported, "personal_importRawKey", hex.EncodeToString(keyBytes), passphrase)
	})
	if err != nil {
		return nil, err
	}
	acct.Imported = true
	logger.Info("账户已导入节点", zap.String("address", imported.Hex()))
	return acct, nil
}

func (s *NodeService) GetAccounts(ctx context.Context) (*Accounts, error) {
	accounts := []common.Address{}
	err := s.call(ctx, "eth_accounts", errno.ErrNode, func(ctx context.Context) error {
		return s.backend.CallContext(ctx, &accounts, "eth_accounts")
	})
	if err != nil {
		return nil, err
	}
	return &Accounts{Accounts: accounts}, nil
}

// GetGasPrices 当前三档 gas 报价 (gwei)
func (s *NodeService) GetGasPrices(ctx context.Context) (*gasoracle.Quote, error) {
	q, err := s.preparer.oracle.Quote(ctx)
	if err != nil {
		if errno.IsUpstream(err) {
			return nil, err
		}
		return nil, errno.ErrGasOracle.Wrap(err)
	}
	return q, nil
}

// SendTransactionInfo 预览将要发送的交易, 不提交
func (s *NodeService) SendTransactionInfo(ctx context.Context, draft TransactionDraft) (*PreparedTransaction, error) {
	return s.preparer.Prepare(ctx, draft)
}

// SendTransaction 预处理后通过节点账户 (eth_sendTransaction) 提交, 私钥由节点管理
func (s *NodeService) SendTransaction(ctx context.Context, draft TransactionDraft) (*SendResult, error) {
	prepared, hash, err := s.submit(ctx, draft)
	if err != nil {
		monitor.Business.TxSentTotal.WithLabelValues("failed").Inc()
		return nil, err
	}
	logger.Ctx(ctx).Info("交易已提交",
		zap.String("hash", hash.Hex()),
		zap.String("from", prepared.ParamsUpdated.From.Hex()),
		zap.String("to", prepared.ParamsUpdated.To.Hex()),
		zap.Uint64("gas", prepared.Gas))

	s.publish(ctx, hash, prepared)

	result := &SendResult{
		TransactionHash: hash,
		Status:          StatusPending,
		Prepared:        prepared,
	}
	if s.opts.WaitReceipt {
		if receipt := s.waitReceipt(ctx, hash); receipt != nil {
			result.Receipt = receipt
			result.Status = StatusMined
			if receipt.Status == types.ReceiptStatusFailed {
				result.Status = StatusReverted
			}
		}
	}
	monitor.Business.TxSentTotal.WithLabelValues(result.Status).Inc()
	return result, nil
}

// submit 持锁范围只覆盖预处理和提交, 等待回执时不持锁
func (s *NodeService) submit(ctx context.Context, draft TransactionDraft) (*PreparedTransaction, common.Hash, error) {
	if s.locker != nil && common.IsHexAddress(strings.TrimSpace(draft.From)) {
		key := "send:" + strings.ToLower(common.HexToAddress(strings.TrimSpace(draft.From)).Hex())
		release, ok, err := s.locker.Acquire(ctx, key, s.opts.LockTTL)
		if err != nil {
			return nil, common.Hash{}, errno.ErrLock.Wrap(err)
		}
		if !ok {
			return nil, common.Hash{}, errno.ErrSenderBusy
		}
		defer func() {
			if err := release(context.Background()); err != nil {
				logger.Ctx(ctx).Warn("释放发送锁失败", zap.String("key", key), zap.Error(err))
			}
		}()
	}

	prepared, err := s.preparer.Prepare(ctx, draft)
	if err != nil {
		return nil, common.Hash{}, err
	}

	var hash common.Hash
	err = s.call(ctx, "eth_sendTransaction", errno.ErrSendTransaction, func(ctx context.Context) error {
		return s.backend.CallContext(ctx, &hash, "eth_sendTransaction", prepared.ParamsUpdated)
	})
	if err != nil {
		return nil, common.Hash{}, err
	}
	return prepared, hash, nil
}

// waitReceipt 轮询回执直到上链或超时; 超时返回 nil (交易仍为 pending)
func (s *NodeService) waitReceipt(ctx context.Context, hash common.Hash) *types.Receipt {
	ctx, cancel := context.WithTimeout(ctx, s.opts.ReceiptTimeout)
	defer cancel()

	ticker := time.NewTicker(s.opts.PollInterval)
	defer ticker.Stop()

	for {
		receipt, err := s.backend.TransactionReceipt(ctx, hash)
		if err == nil {
			return receipt
		}
		if !errors.Is(err, ethereum.NotFound) {
			logger.Debug("查询交易回执失败", zap.String("hash", hash.Hex()), zap.Error(err))
		}

		select {
		case <-ctx.Done():
			logger.Warn("等待交易回执超时", zap.String("hash", hash.Hex()), zap.Duration("timeout", s.opts.ReceiptTimeout))
			return nil
		case <-ticker.C:
		}
	}
}

// publish 事件投递失败只记录日志, 不影响发送结果
func (s *NodeService) publish(ctx context.Context, hash common.Hash, prepared *PreparedTransaction) {
	if s.producer == nil {
		return
	}

	event := TransactionSentEvent{
		TxHash:   hash.Hex(),
		From:     prepared.ParamsUpdated.From.Hex(),
		To:       prepared.ParamsUpdated.To.Hex(),
		ValueWei: prepared.AmountToSendWei.String(),
		Gas:      prepared.Gas,
		GasPrice: prepared.GasPrice.String(),
		Tier:     prepared.GasPriceType,
		SentAt:   time.Now().UTC(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		logger.Error("序列化交易事件失败", zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := s.producer.Publish(ctx, s.opts.EventTopic, event.From, payload); err != nil {
		logger.Ctx(ctx).Warn("投递交易事件失败", zap.String("hash", event.TxHash), zap.Error(err))
	}
}

// parseBlockNumber 接受十进制或 0x 十六进制
func parseBlockNumber(s string) (uint64, error) {
	trimmed := strings.TrimSpace(s)
	invalid := errno.ErrInvalidBlockNumber.WithMessage(fmt.Sprintf("'%s' is an invalid block number", s))
	if trimmed == "" {
		return 0, invalid
	}
	if strings.HasPrefix(trimmed, "0x") || strings.HasPrefix(trimmed, "0X") {
		n, err := hexutil.DecodeUint64(strings.ToLower(trimmed))
		if err != nil {
			return 0, invalid.Wrap(err)
		}
		return n, nil
	}
	d, err := decimal.NewFromString(trimmed)
	if err != nil || d.IsNegative() || !d.IsInteger() || !d.BigInt().IsUint64() {
		return 0, invalid
	}
	return d.BigInt().Uint64(), nil
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}
