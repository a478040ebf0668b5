package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"provault/logx"
)

type DepositConfig struct {
	PrivateKey     string
	PrivateKeyFile string
	NodeURL        string
	Amount         string
	Asset          string
}

var depositConfig DepositConfig

var depositCmd = &cobra.Command{
	Use:   "deposit",
	Short: "Deposit funds into the vault",
	Long: `Move funds from the signer's account into the vault.

Examples:
  # Deposit 1_000 native units
  provault deposit -a 1_000 --asset native -f key.txt

  # Deposit 500 token units
  provault deposit -a 500 --asset token -f key.txt`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runDeposit(depositConfig); err != nil {
			logx.Error("DEPOSIT CLI", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(depositCmd)

	depositCmd.Flags().StringVarP(&depositConfig.PrivateKeyFile, "private-key-file", "f", "", "depositor private key file")
	depositCmd.Flags().StringVarP(&depositConfig.PrivateKey, "private-key", "p", "", "depositor private key in hex")
	depositCmd.Flags().StringVarP(&depositConfig.NodeURL, "node-url", "u", "http://localhost:9090", "custody node URL")
	depositCmd.Flags().StringVarP(&depositConfig.Amount, "amount", "a", "", "amount to deposit")
	depositCmd.Flags().StringVar(&depositConfig.Asset, "asset", "native", "asset to deposit (native or token)")
}

func runDeposit(cfg DepositConfig) error {
	seed, depositor, err := loadCallerSeed(cfg.PrivateKey, cfg.PrivateKeyFile)
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
		r, err := c.DepositNative(ctx, seed, cfg.Amount)
		if err != nil {
			return fmt.Errorf("deposit native: %w", err)
		}
		logx.Info("DEPOSIT CLI", fmt.Sprintf("Deposited | user=%s | amount=%s | seq=%d", depositor, r.Event.Amount, r.Event.Seq))
	case "token":
		r, err := c.DepositToken(ctx, seed, cfg.Amount)
		if err != nil {
			return fmt.Errorf("deposit token: %w", err)
		}
		logx.Info("DEPOSIT CLI", fmt.Sprintf("Deposited | user=%s | amount=%s | seq=%d", depositor, r.Event.Amount, r.Event.Seq))
	default:
		return fmt.Errorf("unknown asset %q (want native or token)", cfg.Asset)
	}
	return nil
}
