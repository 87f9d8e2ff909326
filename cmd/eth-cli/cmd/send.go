package cmd

import (
	"context"

	"eth-gateway/internal/service"

	"github.com/spf13/cobra"
)

// 两个命令共用同一组交易参数
var draft service.TransactionDraft

var txInfoCmd = &cobra.Command{
	Use:   "tx-info",
	Short: "预览交易 (不提交)",
	Long:  `计算 wei 金额、所选档位的 gas 价格与 gas 上限, 不提交到节点。`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(cmd, func(ctx context.Context, s *service.NodeService) (interface{}, error) {
			return s.SendTransactionInfo(ctx, draft)
		})
	},
}

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "通过节点账户发送交易",
	Long:  `由节点签名 (eth_sendTransaction), from 必须是节点已解锁的账户。`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(cmd, func(ctx context.Context, s *service.NodeService) (interface{}, error) {
			return s.SendTransaction(ctx, draft)
		})
	},
}

func init() {
	for _, c := range []*cobra.Command{txInfoCmd, sendCmd} {
		c.Flags().StringVar(&draft.From, "from", "", "发送方地址")
		c.Flags().StringVar(&draft.To, "to", "", "接收方地址")
		c.Flags().StringVar(&draft.Value, "value", "", "金额 (ether)")
		c.Flags().StringVar(&draft.Gas, "gas", "", "gas 上限, 不能低于预估值")
		c.Flags().StringVar(&draft.GasPrice, "gas-price", "", "gas 档位: low | medium | high (默认 low)")
		_ = c.MarkFlagRequired("from")
		_ = c.MarkFlagRequired("to")
		_ = c.MarkFlagRequired("value")
		rootCmd.AddCommand(c)
	}
}
