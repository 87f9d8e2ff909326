package service

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
)

// Backend 是节点客户端的最小子集
// 类型化调用走 ethclient，其余 JSON-RPC 方法通过 CallContext 原样转发
type Backend interface {
	SyncProgress(ctx context.Context) (*ethereum.SyncProgress, error)
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
	BlockNumber(ctx context.Context) (uint64, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	CallContext(ctx context.Context, result interface{}, method string, args ...interface{}) error
	Close()
}

// NodeClient 组合 ethclient 与底层 rpc.Client
type NodeClient struct {
	*ethclient.Client
	rpc *rpc.Client
}

// DialNode 连接节点 (http/ws/ipc)
func DialNode(ctx context.Context, rawURL string) (*NodeClient, error) {
	rc, err := rpc.DialContext(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", rawURL, err)
	}
	return &NodeClient{
		Client: ethclient.NewClient(rc),
		rpc:    rc,
	}, nil
}

func (c *NodeClient) CallContext(ctx context.Context, result interface{}, method string, args ...interface{}) error {
	return c.rpc.CallContext(ctx, result, method, args...)
}

func (c *NodeClient) Close() {
	c.Client.Close()
}
