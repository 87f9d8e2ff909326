package service

import (
	"encoding/json"
	"time"

	"eth-gateway/internal/gasoracle"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/shopspring/decimal"
)

// TransactionDraft 调用方提交的交易草稿
type TransactionDraft struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Value    string `json:"value"`              // ether, 十进制字符串
	Gas      string `json:"gas,omitempty"`      // 可选, 空串表示使用预估值
	GasPrice string `json:"gasPrice,omitempty"` // 可选档位: low / medium / high
}

// TxParams 提交给节点的交易参数, 数值字段按 JSON-RPC 规范编码为 hex
type TxParams struct {
	From     common.Address  `json:"from"`
	To       common.Address  `json:"to"`
	Gas      *hexutil.Uint64 `json:"gas,omitempty"`
	GasPrice *hexutil.Big    `json:"gasPrice"`
	Value    *hexutil.Big    `json:"value"`
}

// PreparedTransaction 交易预处理结果, 每次请求新建, 不落库
type PreparedTransaction struct {
	AmountToSendEther decimal.Decimal `json:"amountToSendEther"`
	AmountToSendWei   decimal.Decimal `json:"amountToSendWei"`
	GasPrices         gasoracle.Quote `json:"gasPrices"`    // gwei
	GasPriceType      string          `json:"gasPriceType"` // 实际使用的档位
	GasPrice          decimal.Decimal `json:"gasPrice"`     // wei
	EstimatedGas      uint64          `json:"estimatedGas"`
	Gas               uint64          `json:"gas"`
	Params            TxParams        `json:"params"`        // 预估 gas 时使用, 不含 gas
	ParamsUpdated     TxParams        `json:"paramsUpdated"` // 最终提交参数
}

type SyncProgress struct {
	StartingBlock uint64 `json:"startingBlock"`
	CurrentBlock  uint64 `json:"currentBlock"`
	HighestBlock  uint64 `json:"highestBlock"`
}

type SyncStatus struct {
	NodeSynced bool          `json:"nodeSynced"`
	Progress   *SyncProgress `json:"progress,omitempty"`
}

type Balance struct {
	WeiBalance   decimal.Decimal `json:"weiBalance"`
	EtherBalance decimal.Decimal `json:"etherBalance"`
}

type BlockNumber struct {
	BlockNumber uint64 `json:"blockNumber"`
}

// TransactionLookup 节点原始返回, 未找到时为 null
type TransactionLookup struct {
	Transaction json.RawMessage `json:"transaction"`
}

type Account struct {
	Address    string `json:"address"`
	PrivateKey string `json:"privateKey"`
	Imported   bool   `json:"imported"` // 是否已导入节点 (personal_importRawKey)
}

type Accounts struct {
	Accounts []common.Address `json:"accounts"`
}

const (
	StatusPending  = "pending"
	StatusMined    = "mined"
	StatusReverted = "reverted"
)

type SendResult struct {
	TransactionHash common.Hash          `json:"transactionHash"`
	Status          string               `json:"status"`
	Receipt         *types.Receipt       `json:"receipt,omitempty"`
	Prepared        *PreparedTransaction `json:"prepared"`
}

// TransactionSentEvent 交易提交成功后投递到 MQ 的消息
type TransactionSentEvent struct {
	TxHash   string    `json:"tx_hash"`
	From     string    `json:"from"`
	To       string    `json:"to"`
	ValueWei string    `json:"value_wei"`
	Gas      uint64    `json:"gas"`
	GasPrice string    `json:"gas_price"`
	Tier     string    `json:"tier"`
	SentAt   time.Time `json:"sent_at"`
}
