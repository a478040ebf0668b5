package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"provault/logx"
)

type WithdrawConfig struct {
	PrivateKey     string
	PrivateKeyFile string
	NodeURL        string
	Amount         string
	Asset          string
}

var withdrawConfig WithdrawConfig

var withdrawCmd = &cobra.Command{
	Use:   "withdraw",
	Short: "Withdraw vault funds to the admin account",
	Long: `Withdraw funds from the vault into the admin's own account. The signer
must be the current admin. Native withdrawals keep the rent reserve intact.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runWithdraw(withdrawConfig); err != nil {
			logx.Error("WITHDRAW CLI", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(withdrawCmd)

	withdrawCmd.Flags().StringVarP(&withdrawConfig.PrivateKeyFile, "private-key-file", "f", "", "admin private key file")
	withdrawCmd.Flags().StringVarP(&withdrawConfig.PrivateKey, "private-key", "p", "", "admin private key in hex")
	withdrawCmd.Flags().StringVarP(&withdrawConfig.NodeURL, "node-url", "u", "http://localhost:9090", "custody node URL")
	withdrawCmd.Flags().StringVarP(&withdrawConfig.Amount, "amount", "a", "", "amount to withdraw")
	withdrawCmd.Flags().StringVar(&withdrawConfig.Asset, "asset", "native", "asset to withdraw (native or token)")
}

func runWithdraw(cfg WithdrawConfig) error {
	seed, admin, err := loadCallerSeed(cfg.PrivateKey, cfg.PrivateKeyFile)
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
		r, err := c.WithdrawNative(ctx, seed, cfg.Amount)
		if err != nil {
			return fmt.Errorf("withdraw native: %w", err)
		}
		logx.Info("WITHDRAW CLI", fmt.Sprintf("Withdrawn | admin=%s | amount=%s | seq=%d", admin, r.Event.Amount, r.Event.Seq))
	case "token":
		r, err := c.WithdrawToken(ctx, seed, cfg.Amount)
		if err != nil {
			return fmt.Errorf("withdraw token: %w", err)
		}
		logx.Info("WITHDRAW CLI", fmt.Sprintf("Withdrawn | admin=%s | amount=%s | seq=%d", admin, r.Event.Amount, r.Event.Seq))
	default:
		return fmt.Errorf("unknown asset %q (want native or token)", cfg.Asset)
	}
	return nil
}
