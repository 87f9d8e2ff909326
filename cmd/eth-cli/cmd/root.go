package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"eth-gateway/internal/gasoracle"
	"eth-gateway/internal/service"
	"eth-gateway/pkg/config"
	"eth-gateway/pkg/errno"

	"github.com/spf13/cobra"
)

var (
	cfgFile   string
	rpcURL    string
	oracleURL string
	timeout   time.Duration
)

// rootCmd 代表基础命令，没有子命令时直接调用
var rootCmd = &cobra.Command{
	Use:   "eth-cli",
	Short: "以太坊节点命令行工具",
	Long: `直接调用以太坊 JSON-RPC 节点的命令行工具。
支持查询同步状态、余额、区块与交易, 生成账户, 以及按 gas 档位预览和发送交易。`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute 将所有子命令添加到根命令并设置标志
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		printError(os.Stdout, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "配置文件路径 (默认 ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&rpcURL, "rpc", "", "节点 RPC 地址, 覆盖配置中的 eth.rpc_url")
	rootCmd.PersistentFlags().StringVar(&oracleURL, "oracle", "", "gas 预言机地址, 覆盖配置中的 gas_oracle.url")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "单次调用超时, 覆盖配置中的 eth.rpc_timeout")
}

// loadConfig 配置文件 < 环境变量 < 命令行参数
func loadConfig() (config.Config, error) {
	if err := config.Load(cfgFile); err != nil {
		return config.Config{}, err
	}
	cfg := config.Global
	if rpcURL != "" {
		cfg.Eth.RpcUrl = rpcURL
	}
	if oracleURL != "" {
		cfg.GasOracle.Url = oracleURL
	}
	if timeout > 0 {
		cfg.Eth.RpcTimeout = timeout
		cfg.GasOracle.Timeout = timeout
	}
	return cfg, nil
}

// withService 建立节点连接并执行 fn; CLI 不使用 Redis / MQ
func withService(cmd *cobra.Command, fn func(ctx context.Context, s *service.NodeService) (interface{}, error)) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	dialCtx, cancel := context.WithTimeout(ctx, cfg.Eth.RpcTimeout)
	node, err := service.DialNode(dialCtx, cfg.Eth.RpcUrl)
	cancel()
	if err != nil {
		return errno.ErrNode.Wrap(err)
	}
	defer node.Close()

	s := service.NewNodeService(node, gasoracle.NewHTTPOracle(cfg.GasOracle.Url, cfg.GasOracle.Timeout), service.Options{
		RPCTimeout:     cfg.Eth.RpcTimeout,
		WaitReceipt:    cfg.Send.WaitReceipt,
		ReceiptTimeout: cfg.Send.ReceiptTimeout,
		PollInterval:   cfg.Send.PollInterval,
	})

	res, err := fn(ctx, s)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), res)
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printError(w io.Writer, err error) {
	_, msg := errno.Decode(err)
	if e := printJSON(w, map[string]string{"error": msg}); e != nil {
		fmt.Fprintln(os.Stderr, err)
	}
}
