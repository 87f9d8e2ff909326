package cmd

import (
	"context"
	"strconv"

	"eth-gateway/internal/service"
	"eth-gateway/pkg/errno"

	"github.com/spf13/cobra"
)

var (
	blockFull bool
	blockTag  string
)

var blockCmd = &cobra.Command{
	Use:   "block <number>",
	Short: "查询区块",
	Long:  `按区块号查询区块。--tag 指定 latest / earliest / pending / safe / finalized 时替换区块号。`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(cmd, func(ctx context.Context, s *service.NodeService) (interface{}, error) {
			return s.GetBlock(ctx, args[0], blockFull, blockTag)
		})
	},
}

var txCmd = &cobra.Command{
	Use:   "tx <hash>",
	Short: "按哈希查询交易",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(cmd, func(ctx context.Context, s *service.NodeService) (interface{}, error) {
			return s.GetTransaction(ctx, args[0])
		})
	},
}

var txFromBlockCmd = &cobra.Command{
	Use:   "tx-from-block <block> [index]",
	Short: "按区块 (哈希 / 区块号 / 标签) 与序号查询交易",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var index uint64
		if len(args) == 2 {
			n, err := strconv.ParseUint(args[1], 0, 64)
			if err != nil {
				return errno.ErrInvalidTxIndex.Wrap(err)
			}
			index = n
		}
		return withService(cmd, func(ctx context.Context, s *service.NodeService) (interface{}, error) {
			return s.GetTransactionFromBlock(ctx, args[0], index)
		})
	},
}

func init() {
	blockCmd.Flags().BoolVar(&blockFull, "full", false, "返回完整交易对象")
	blockCmd.Flags().StringVar(&blockTag, "tag", "", "latest | earliest | pending | safe | finalized")

	rootCmd.AddCommand(blockCmd, txCmd, txFromBlockCmd)
}
