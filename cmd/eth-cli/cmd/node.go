package cmd

import (
	"context"

	"eth-gateway/internal/service"

	"github.com/spf13/cobra"
)

var syncingCmd = &cobra.Command{
	Use:   "syncing",
	Short: "查询节点同步状态",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(cmd, func(ctx context.Context, s *service.NodeService) (interface{}, error) {
			return s.IsSyncing(ctx)
		})
	},
}

var blockNumberCmd = &cobra.Command{
	Use:   "block-number",
	Short: "查询最新区块高度",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(cmd, func(ctx context.Context, s *service.NodeService) (interface{}, error) {
			return s.GetBlockNumber(ctx)
		})
	},
}

var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "列出节点管理的账户",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(cmd, func(ctx context.Context, s *service.NodeService) (interface{}, error) {
			return s.GetAccounts(ctx)
		})
	},
}

var balanceCmd = &cobra.Command{
	Use:   "balance <address>",
	Short: "查询地址余额 (wei 与 ether)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(cmd, func(ctx context.Context, s *service.NodeService) (interface{}, error) {
			return s.GetBalance(ctx, args[0])
		})
	},
}

var gasPricesCmd = &cobra.Command{
	Use:   "gas-prices",
	Short: "查询三档 gas 报价 (gwei)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(cmd, func(ctx context.Context, s *service.NodeService) (interface{}, error) {
			return s.GetGasPrices(ctx)
		})
	},
}

var passphrase string

var newAccountCmd = &cobra.Command{
	Use:   "new-account",
	Short: "生成新账户",
	Long:  `本地生成 secp256k1 密钥。指定 --passphrase 时同时导入节点 (personal_importRawKey)。`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(cmd, func(ctx context.Context, s *service.NodeService) (interface{}, error) {
			return s.CreateAccount(ctx, passphrase)
		})
	},
}

func init() {
	newAccountCmd.Flags().StringVar(&passphrase, "passphrase", "", "导入节点时使用的密码")

	rootCmd.AddCommand(syncingCmd, blockNumberCmd, accountsCmd, balanceCmd, gasPricesCmd, newAccountCmd)
}
