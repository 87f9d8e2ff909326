package handler

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"eth-gateway/internal/gasoracle"
	"eth-gateway/internal/handler/request"
	"eth-gateway/internal/handler/response"
	"eth-gateway/internal/service"
	"eth-gateway/pkg/errno"
	"eth-gateway/pkg/validator"

	"github.com/gin-gonic/gin"
)

// NodeAPI 是 handler 依赖的服务能力, 由 *service.NodeService 实现
type NodeAPI interface {
	IsSyncing(ctx context.Context) (*service.SyncStatus, error)
	GetBalance(ctx context.Context, address string) (*service.Balance, error)
	GetBlockNumber(ctx context.Context) (*service.BlockNumber, error)
	GetTransaction(ctx context.Context, hash string) (*service.TransactionLookup, error)
	GetTransactionFromBlock(ctx context.Context, block string, index uint64) (*service.TransactionLookup, error)
	GetBlock(ctx context.Context, blockNumber string, showTxObject bool, overrideString string) (json.RawMessage, error)
	CreateAccount(ctx context.Context, passphrase string) (*service.Account, error)
	GetAccounts(ctx context.Context) (*service.Accounts, error)
	GetGasPrices(ctx context.Context) (*gasoracle.Quote, error)
	SendTransactionInfo(ctx context.Context, draft service.TransactionDraft) (*service.PreparedTransaction, error)
	SendTransaction(ctx context.Context, draft service.TransactionDraft) (*service.SendResult, error)
}

type NodeHandler struct {
	svc NodeAPI
}

func NewNodeHandler(svc NodeAPI) *NodeHandler {
	return &NodeHandler{svc: svc}
}

func bindError(err error) error {
	return errno.ErrBind.Wrap(errors.New(validator.GetErrorMsg(err)))
}

// IsSyncing 节点同步状态
// @Summary 节点同步状态
// @Tags Node
// @Produce json
// @Success 200 {object} response.Response{data=service.SyncStatus}
// @Failure 502 {object} response.Response
// @Router /node/syncing [get]
func (h *NodeHandler) IsSyncing(c *gin.Context) {
	res, err := h.svc.IsSyncing(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// GetBlockNumber 最新区块高度
// @Summary 最新区块高度
// @Tags Node
// @Produce json
// @Success 200 {object} response.Response{data=service.BlockNumber}
// @Failure 502 {object} response.Response
// @Router /node/block-number [get]
func (h *NodeHandler) GetBlockNumber(c *gin.Context) {
	res, err := h.svc.GetBlockNumber(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// GetAccounts 节点管理的账户
// @Summary 节点账户列表
// @Tags Node
// @Produce json
// @Success 200 {object} response.Response{data=service.Accounts}
// @Failure 502 {object} response.Response
// @Router /node/accounts [get]
func (h *NodeHandler) GetAccounts(c *gin.Context) {
	res, err := h.svc.GetAccounts(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// CreateAccount 生成新账户
// @Summary 生成新账户
// @Description 本地生成密钥; 提供 passphrase 时同时导入节点
// @Tags Account
// @Accept json
// @Produce json
// @Param request body request.CreateAccountRequest false "Create Account Request"
// @Success 200 {object} response.Response{data=service.Account}
// @Failure 502 {object} response.Response
// @Router /accounts [post]
func (h *NodeHandler) CreateAccount(c *gin.Context) {
	var req request.CreateAccountRequest
	// body 可以为空
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, bindError(err))
			return
		}
	}

	res, err := h.svc.CreateAccount(c.Request.Context(), req.Passphrase)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// GetBalance 查询余额
// @Summary 查询余额
// @Tags Account
// @Produce json
// @Param address path string true "Account address"
// @Success 200 {object} response.Response{data=service.Balance}
// @Failure 400 {object} response.Response
// @Failure 502 {object} response.Response
// @Router /accounts/{address}/balance [get]
func (h *NodeHandler) GetBalance(c *gin.Context) {
	res, err := h.svc.GetBalance(c.Request.Context(), c.Param("address"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// GetBlock 查询区块
// @Summary 查询区块
// @Description tag 非空时替换区块号; full=true 返回完整交易对象
// @Tags Block
// @Produce json
// @Param number path string true "Block number (decimal or 0x)"
// @Param full query bool false "Return full transaction objects"
// @Param tag query string false "latest | earliest | pending | safe | finalized"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 502 {object} response.Response
// @Router /blocks/{number} [get]
func (h *NodeHandler) GetBlock(c *gin.Context) {
	var q request.GetBlockQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, bindError(err))
		return
	}

	res, err := h.svc.GetBlock(c.Request.Context(), c.Param("number"), q.Full, q.Tag)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// GetTransactionFromBlock 按区块与序号查询交易
// @Summary 按区块与序号查询交易
// @Tags Transaction
// @Produce json
// @Param number path string true "Block hash, number or tag"
// @Param index path int true "Transaction index"
// @Success 200 {object} response.Response{data=service.TransactionLookup}
// @Failure 400 {object} response.Response
// @Failure 502 {object} response.Response
// @Router /blocks/{number}/transactions/{index} [get]
func (h *NodeHandler) GetTransactionFromBlock(c *gin.Context) {
	index, err := strconv.ParseUint(c.Param("index"), 0, 64)
	if err != nil {
		response.Error(c, errno.ErrInvalidTxIndex.Wrap(err))
		return
	}

	res, err := h.svc.GetTransactionFromBlock(c.Request.Context(), c.Param("number"), index)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// GetTransaction 按哈希查询交易
// @Summary 按哈希查询交易
// @Tags Transaction
// @Produce json
// @Param hash path string true "Transaction hash"
// @Success 200 {object} response.Response{data=service.TransactionLookup}
// @Failure 400 {object} response.Response
// @Failure 502 {object} response.Response
// @Router /transactions/{hash} [get]
func (h *NodeHandler) GetTransaction(c *gin.Context) {
	res, err := h.svc.GetTransaction(c.Request.Context(), c.Param("hash"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// GetGasPrices 当前 gas 报价
// @Summary 当前 gas 报价 (gwei)
// @Tags Transaction
// @Produce json
// @Success 200 {object} response.Response{data=gasoracle.Quote}
// @Failure 502 {object} response.Response
// @Router /gas-prices [get]
func (h *NodeHandler) GetGasPrices(c *gin.Context) {
	res, err := h.svc.GetGasPrices(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// SendTransactionInfo 交易预览
// @Summary 交易预览
// @Description 计算 wei 金额、gas 价格与 gas 上限, 不提交
// @Tags Transaction
// @Accept json
// @Produce json
// @Param request body request.TransactionRequest true "Transaction Request"
// @Success 200 {object} response.Response{data=service.PreparedTransaction}
// @Failure 400 {object} response.Response
// @Failure 502 {object} response.Response
// @Router /transactions/info [post]
func (h *NodeHandler) SendTransactionInfo(c *gin.Context) {
	var req request.TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}

	res, err := h.svc.SendTransactionInfo(c.Request.Context(), req.Draft())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// SendTransaction 发送交易
// @Summary 发送交易
// @Description 由节点账户签名提交 (eth_sendTransaction)
// @Tags Transaction
// @Accept json
// @Produce json
// @Param request body request.TransactionRequest true "Transaction Request"
// @Success 200 {object} response.Response{data=service.SendResult}
// @Failure 400 {object} response.Response
// @Failure 502 {object} response.Response
// @Router /transactions [post]
func (h *NodeHandler) SendTransaction(c *gin.Context) {
	var req request.TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}

	res, err := h.svc.SendTransaction(c.Request.Context(), req.Draft())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}
