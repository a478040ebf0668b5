package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"provault/logx"
)

type SendWithdrawConfig struct {
	PrivateKey     string
	PrivateKeyFile string
	NodeURL        string
	Amount         string
	Receiver       string
	Asset          string
}

var sendWithdrawConfig SendWithdrawConfig

var sendWithdrawCmd = &cobra.Command{
	Use:   "send-withdraw",
	Short: "Dispatch a payout from the vault to a receiver",
	Long: `Send funds from the vault to an arbitrary receiver. The signer must be
the current operator. The attempt timestamp is recorded on the master record
even when the payout is rejected.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runSendWithdraw(sendWithdrawConfig); err != nil {
			logx.Error("SEND-WITHDRAW CLI", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(sendWithdrawCmd)

	sendWithdrawCmd.Flags().StringVarP(&sendWithdrawConfig.PrivateKeyFile, "private-key-file", "f", "", "operator private key file")
	sendWithdrawCmd.Flags().StringVarP(&sendWithdrawConfig.PrivateKey, "private-key", "p", "", "operator private key in hex")
	sendWithdrawCmd.Flags().StringVarP(&sendWithdrawConfig.NodeURL, "node-url", "u", "http://localhost:9090", "custody node URL")
	sendWithdrawCmd.Flags().StringVarP(&sendWithdrawConfig.Amount, "amount", "a", "", "amount to send")
	sendWithdrawCmd.Flags().StringVarP(&sendWithdrawConfig.Receiver, "to", "t", "", "receiver address")
	sendWithdrawCmd.Flags().StringVar(&sendWithdrawConfig.Asset, "asset", "native", "asset to send (native or token)")
}

func runSendWithdraw(cfg SendWithdrawConfig) error {
	if cfg.Receiver == "" {
		return fmt.Errorf("--to is required")
	}

	seed, operator, err := loadCallerSeed(cfg.PrivateKey, cfg.PrivateKeyFile)
	if err != nil {
		return err
	}

	c, err := createClient(cfg.NodeURL)
	if err != nil {
		return err
	}
	defer c.Close()

	ctx := context.Background()
	switch cfg.Asset {
	case "native":
		r, err := c.SendWithdrawNative(ctx, seed, cfg.Amount, cfg.Receiver)
		if err != nil {
			return fmt.Errorf("send-withdraw native: %w", err)
		}
		logx.Info("SEND-WITHDRAW CLI", fmt.Sprintf("Sent | operator=%s | receiver=%s | amount=%s | seq=%d",
			operator, cfg.Receiver, r.Event.Amount, r.Event.Seq))
	case "token":
		r, err := c.SendWithdrawToken(ctx, seed, cfg.Amount, cfg.Receiver)
		if err != nil {
			return fmt.Errorf("send-withdraw token: %w", err)
		}
		logx.Info("SEND-WITHDRAW CLI", fmt.Sprintf("Sent | operator=%s | receiver=%s | amount=%s | seq=%d",
			operator, cfg.Receiver, r.Event.Amount, r.Event.Seq))
	default:
		return fmt.Errorf("unknown asset %q (want native or token)", cfg.Asset)
	}
	return nil
}
