package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"eth-gateway/internal/gasoracle"
	"eth-gateway/internal/service"
	"eth-gateway/pkg/errno"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	fromAddr = "0x8ba1f109551bD432803012645Ac136ddd64DBA72"
	toAddr   = "0xAb5801a7D398351b8bE11C439e05C5B3259aeC9B"
	txHash   = "0x88df016429689c079f3b2f6ad39fa052532c56795b733da78a91ebe6a713944b"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type mockNode struct {
	mock.Mock
}

func (m *mockNode) IsSyncing(ctx context.Context) (*service.SyncStatus, error) {
	args := m.Called()
	res, _ := args.Get(0).(*service.SyncStatus)
	return res, args.Error(1)
}

func (m *mockNode) GetBalance(ctx context.Context, address string) (*service.Balance, error) {
	args := m.Called(address)
	res, _ := args.Get(0).(*service.Balance)
	return res, args.Error(1)
}

func (m *mockNode) GetBlockNumber(ctx context.Context) (*service.BlockNumber, error) {
	args := m.Called()
	res, _ := args.Get(0).(*service.BlockNumber)
	return res, args.Error(1)
}

func (m *mockNode) GetTransaction(ctx context.Context, hash string) (*service.TransactionLookup, error) {
	args := m.Called(hash)
	res, _ := args.Get(0).(*service.TransactionLookup)
	return res, args.Error(1)
}

func (m *mockNode) GetTransactionFromBlock(ctx context.Context, block string, index uint64) (*service.TransactionLookup, error) {
	args := m.Called(block, index)
	res, _ := args.Get(0).(*service.TransactionLookup)
	return res, args.Error(1)
}

func (m *mockNode) GetBlock(ctx context.Context, blockNumber string, showTxObject bool, overrideString string) (json.RawMessage, error) {
	args := m.Called(blockNumber, showTxObject, overrideString)
	res, _ := args.Get(0).(json.RawMessage)
	return res, args.Error(1)
}

func (m *mockNode) CreateAccount(ctx context.Context, passphrase string) (*service.Account, error) {
	args := m.Called(passphrase)
	res, _ := args.Get(0).(*service.Account)
	return res, args.Error(1)
}

func (m *mockNode) GetAccounts(ctx context.Context) (*service.Accounts, error) {
	args := m.Called()
	res, _ := args.Get(0).(*service.Accounts)
	return res, args.Error(1)
}

func (m *mockNode) GetGasPrices(ctx context.Context) (*gasoracle.Quote, error) {
	args := m.Called()
	res, _ := args.Get(0).(*gasoracle.Quote)
	return res, args.Error(1)
}

func (m *mockNode) SendTransactionInfo(ctx context.Context, draft service.TransactionDraft) (*service.PreparedTransaction, error) {
	args := m.Called(draft)
	res, _ := args.Get(0).(*service.PreparedTransaction)
	return res, args.Error(1)
}

func (m *mockNode) SendTransaction(ctx context.Context, draft service.TransactionDraft) (*service.SendResult, error) {
	args := m.Called(draft)
	res, _ := args.Get(0).(*service.SendResult)
	return res, args.Error(1)
}

type envelope struct {
	Code  int             `json:"code"`
	Msg   string          `json:"msg"`
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error"`
}

func do(t *testing.T, r http.Handler, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func newRouter(node *mockNode) *gin.Engine {
	return NewHTTPRouter(context.Background(), RouterConfig{}, node)
}

func TestHealthAndPing(t *testing.T) {
	r := newRouter(new(mockNode))

	w, env := do(t, r, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"UP"`)

	w, env = do(t, r, http.MethodGet, "/api/v1/ping", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"pong":true}`, string(env.Data))
	assert.NotEmpty(t, w.Header().Get("X-Correlation-ID"))
}

func TestSyncingAndBlockNumber(t *testing.T) {
	node := new(mockNode)
	node.On("IsSyncing").Return(&service.SyncStatus{NodeSynced: true}, nil)
	node.On("GetBlockNumber").Return(&service.BlockNumber{BlockNumber: 123}, nil)
	r := newRouter(node)

	_, env := do(t, r, http.MethodGet, "/api/v1/node/syncing", "")
	assert.JSONEq(t, `{"nodeSynced":true}`, string(env.Data))

	_, env = do(t, r, http.MethodGet, "/api/v1/node/block-number", "")
	assert.JSONEq(t, `{"blockNumber":123}`, string(env.Data))
}

func TestGetBalanceRoute(t *testing.T) {
	node := new(mockNode)
	node.On("GetBalance", fromAddr).Return(&service.Balance{
		WeiBalance:   decimal.RequireFromString("1500000000000000000"),
		EtherBalance: decimal.RequireFromString("1.5"),
	}, nil)
	node.On("GetBalance", "0xbad").Return(nil, errno.ErrInvalidAddress)
	r := newRouter(node)

	w, env := do(t, r, http.MethodGet, "/api/v1/accounts/"+fromAddr+"/balance", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"weiBalance":"1500000000000000000","etherBalance":"1.5"}`, string(env.Data))

	w, env = do(t, r, http.MethodGet, "/api/v1/accounts/0xbad/balance", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, errno.ErrInvalidAddress.Code, env.Code)
	assert.Equal(t, "invalid address", env.Error)
}

func TestGetBlockRoute(t *testing.T) {
	node := new(mockNode)
	node.On("GetBlock", "100", true, "latest").Return(json.RawMessage(`{"number":"0x70"}`), nil)
	node.On("GetBlock", "abc", false, "").
		Return(nil, errno.ErrInvalidBlockNumber.WithMessage("'abc' is an invalid block number"))
	r := newRouter(node)

	_, env := do(t, r, http.MethodGet, "/api/v1/blocks/100?full=true&tag=latest", "")
	assert.JSONEq(t, `{"number":"0x70"}`, string(env.Data))

	w, env := do(t, r, http.MethodGet, "/api/v1/blocks/abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "'abc' is an invalid block number", env.Error)

	// 标签原样交给 service, 大小写与合法性由 service 处理
	node.On("GetBlock", "100", false, "LATEST").Return(json.RawMessage(`{"number":"0x71"}`), nil)
	w, env = do(t, r, http.MethodGet, "/api/v1/blocks/100?tag=LATEST", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"number":"0x71"}`, string(env.Data))

	node.On("GetBlock", "100", false, "tomorrow").Return(nil, errno.ErrInvalidBlockTag)
	w, env = do(t, r, http.MethodGet, "/api/v1/blocks/100?tag=tomorrow", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, errno.ErrInvalidBlockTag.Code, env.Code)
}

func TestGetTransactionFromBlockRoute(t *testing.T) {
	node := new(mockNode)
	node.On("GetTransactionFromBlock", "100", uint64(3)).
		Return(&service.TransactionLookup{Transaction: json.RawMessage(`{"transactionIndex":"0x3"}`)}, nil)
	r := newRouter(node)

	_, env := do(t, r, http.MethodGet, "/api/v1/blocks/100/transactions/3", "")
	assert.JSONEq(t, `{"transaction":{"transactionIndex":"0x3"}}`, string(env.Data))

	w, env := do(t, r, http.MethodGet, "/api/v1/blocks/100/transactions/x", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, errno.ErrInvalidTxIndex.Code, env.Code)
}

func TestGetTransactionRouteNotFound(t *testing.T) {
	node := new(mockNode)
	node.On("GetTransaction", txHash).Return(&service.TransactionLookup{Transaction: json.RawMessage(`null`)}, nil)

	_, env := do(t, newRouter(node), http.MethodGet, "/api/v1/transactions/"+txHash, "")
	assert.JSONEq(t, `{"transaction":null}`, string(env.Data))
}

func TestCreateAccountRoute(t *testing.T) {
	node := new(mockNode)
	node.On("CreateAccount", "").Return(&service.Account{Address: fromAddr, PrivateKey: "0x01"}, nil)
	node.On("CreateAccount", "pw").Return(&service.Account{Address: fromAddr, PrivateKey: "0x01", Imported: true}, nil)
	r := newRouter(node)

	_, env := do(t, r, http.MethodPost, "/api/v1/accounts", "")
	assert.Contains(t, string(env.Data), `"imported":false`)

	_, env = do(t, r, http.MethodPost, "/api/v1/accounts", `{"passphrase":"pw"}`)
	assert.Contains(t, string(env.Data), `"imported":true`)
}

func TestSendTransactionInfoRoute(t *testing.T) {
	node := new(mockNode)
	draft := service.TransactionDraft{From: fromAddr, To: toAddr, Value: "1.5", Gas: "21000", GasPrice: "high"}
	node.On("SendTransactionInfo", draft).Return(&service.PreparedTransaction{
		AmountToSendWei: decimal.RequireFromString("1500000000000000000"),
		GasPriceType:    "high",
		Gas:             21000,
	}, nil)
	r := newRouter(node)

	// gas 用数字, value 用字符串
	body := `{"from":"` + fromAddr + `","to":"` + toAddr + `","value":"1.5","gas":21000,"gasPrice":"high"}`
	w, env := do(t, r, http.MethodPost, "/api/v1/transactions/info", body)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"amountToSendWei":"1500000000000000000"`)
	node.AssertExpectations(t)
}

func TestSendTransactionRouteErrors(t *testing.T) {
	node := new(mockNode)
	node.On("SendTransaction", mock.Anything).Return(nil, errno.ErrEstimateGas.Wrap(assert.AnError)).Once()
	r := newRouter(node)

	w, env := do(t, r, http.MethodPost, "/api/v1/transactions", `{"from":"`+fromAddr+`","to":"`+toAddr+`","value":"1"}`)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, errno.ErrEstimateGas.Code, env.Code)
	assert.Contains(t, env.Error, "failed to estimate gas")

	w, env = do(t, r, http.MethodPost, "/api/v1/transactions", `{"from":"nope","to":"`+toAddr+`","value":"1"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, errno.ErrBind.Code, env.Code)
	assert.Contains(t, env.Error, "From must be a hex address")

	w, _ = do(t, r, http.MethodPost, "/api/v1/transactions", `{"from":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	node.AssertNumberOfCalls(t, "SendTransaction", 1)
}

func TestSendTransactionRoute(t *testing.T) {
	node := new(mockNode)
	node.On("SendTransaction", mock.Anything).Return(&service.SendResult{
		TransactionHash: common.HexToHash(txHash),
		Status:          service.StatusMined,
	}, nil)

	_, env := do(t, newRouter(node), http.MethodPost, "/api/v1/transactions", `{"from":"`+fromAddr+`","to":"`+toAddr+`","value":1}`)
	assert.Contains(t, string(env.Data), txHash)
	assert.Contains(t, string(env.Data), `"status":"mined"`)
}

func TestGasPricesRoute(t *testing.T) {
	node := new(mockNode)
	node.On("GetGasPrices").Return(nil, errno.ErrGasOracle)

	w, env := do(t, newRouter(node), http.MethodGet, "/api/v1/gas-prices", "")
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "failed to fetch gas prices", env.Error)
}

func TestNonNumericGasReachesService(t *testing.T) {
	node := new(mockNode)
	node.On("SendTransactionInfo", mock.MatchedBy(func(d service.TransactionDraft) bool {
		return d.Gas == "true"
	})).Return(nil, errno.ErrGasNotNumber)

	body := `{"from":"` + fromAddr + `","to":"` + toAddr + `","value":"1","gas":true}`
	w, env := do(t, newRouter(node), http.MethodPost, "/api/v1/transactions/info", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, errno.ErrGasNotNumber.Code, env.Code)
	assert.Equal(t, "gas not a number", env.Error)
	node.AssertExpectations(t)
}
