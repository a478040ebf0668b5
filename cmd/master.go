package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"provault/logx"
)

type MasterConfig struct {
	PrivateKey     string
	PrivateKeyFile string
	NodeURL        string
	Admin          string
	Operator       string
	Mint           string
}

var masterConfig MasterConfig

var masterCmd = &cobra.Command{
	Use:   "master",
	Short: "Manage the vault master record",
}

var masterInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the master record",
	Long: `Initialize the singleton master record. The signer pays the rent reserve
into the vault account and the given admin and operator identities are bound.

Example:
  provault master init --admin <addr> --operator <addr> -f payer_key.txt -u http://localhost:9090`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := masterInit(masterConfig); err != nil {
			logx.Error("MASTER CLI", err)
			os.Exit(1)
		}
	},
}

var masterInitTokenCmd = &cobra.Command{
	Use:   "init-token",
	Short: "Initialize the vault token account",
	Long: `Create the vault's token account for a mint and bind it to the master
record. Admin only, and only once.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := masterInitToken(masterConfig); err != nil {
			logx.Error("MASTER CLI", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(masterCmd)
	masterCmd.AddCommand(masterInitCmd)
	masterCmd.AddCommand(masterInitTokenCmd)

	masterCmd.PersistentFlags().StringVarP(&masterConfig.PrivateKeyFile, "private-key-file", "f", "", "signer private key file")
	masterCmd.PersistentFlags().StringVarP(&masterConfig.PrivateKey, "private-key", "p", "", "signer private key in hex")
	masterCmd.PersistentFlags().StringVarP(&masterConfig.NodeURL, "node-url", "u", "http://localhost:9090", "custody node URL")

	masterInitCmd.Flags().StringVar(&masterConfig.Admin, "admin", "", "admin address")
	masterInitCmd.Flags().StringVar(&masterConfig.Operator, "operator", "", "operator address")
	masterInitTokenCmd.Flags().StringVar(&masterConfig.Mint, "mint", "", "token mint address")
}

func masterInit(cfg MasterConfig) error {
	if cfg.Admin == "" || cfg.Operator == "" {
		return fmt.Errorf("--admin and --operator are required")
	}

	seed, payer, err := loadCallerSeed(cfg.PrivateKey, cfg.PrivateKeyFile)
	if err != nil {
		return err
	}

	c, err := createClient(cfg.NodeURL)
	if err != nil {
		return err
	}
	defer c.Close()

	ctx := context.Background()
	if _, err := c.InitMaster(ctx, seed, cfg.Admin, cfg.Operator); err != nil {
		return fmt.Errorf("init master: %w", err)
	}

	master, err := c.GetMaster(ctx)
	if err != nil {
		return fmt.Errorf("get master: %w", err)
	}
	logx.Info("MASTER CLI", fmt.Sprintf("Master initialized by %s | address=%s | reserve=%s | admin=%s | operator=%s",
		payer, master.MasterAddress, master.Reserve, master.Admin, master.Operator))
	return nil
}

func masterInitToken(cfg MasterConfig) error {
	if cfg.Mint == "" {
		return fmt.Errorf("--mint is required")
	}

	seed, _, err := loadCallerSeed(cfg.PrivateKey, cfg.PrivateKeyFile)
	if err != nil {
		return err
	}

	c, err := createClient(cfg.NodeURL)
	if err != nil {
		return err
	}
	defer c.Close()

	res, err := c.InitTokenAccount(context.Background(), seed, cfg.Mint)
	if err != nil {
		return fmt.Errorf("init token account: %w", err)
	}
	logx.Info("MASTER CLI", "Vault token account initialized | address=", res.TokenAccount)
	return nil
}
