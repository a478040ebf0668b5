package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"provault/logx"
)

type SetRoleConfig struct {
	PrivateKey     string
	PrivateKeyFile string
	NodeURL        string
	Identity       string
}

var (
	setAdminConfig    SetRoleConfig
	setOperatorConfig SetRoleConfig
)

var setAdminCmd = &cobra.Command{
	Use:   "set-admin",
	Short: "Rotate the vault admin identity",
	Long:  `Replace the admin bound to the master record. The signer must be the current admin.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runSetRole(setAdminConfig, "admin"); err != nil {
			logx.Error("SET-ROLE CLI", err)
			os.Exit(1)
		}
	},
}

var setOperatorCmd = &cobra.Command{
	Use:   "set-operator",
	Short: "Rotate the vault operator identity",
	Long:  `Replace the operator bound to the master record. The signer must be the current admin.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runSetRole(setOperatorConfig, "operator"); err != nil {
			logx.Error("SET-ROLE CLI", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(setAdminCmd)
	rootCmd.AddCommand(setOperatorCmd)

	for cmd, cfg := range map[*cobra.Command]*SetRoleConfig{
		setAdminCmd:    &setAdminConfig,
		setOperatorCmd: &setOperatorConfig,
	} {
		cmd.Flags().StringVarP(&cfg.PrivateKeyFile, "private-key-file", "f", "", "admin private key file")
		cmd.Flags().StringVarP(&cfg.PrivateKey, "private-key", "p", "", "admin private key in hex")
		cmd.Flags().StringVarP(&cfg.NodeURL, "node-url", "u", "http://localhost:9090", "custody node URL")
		cmd.Flags().StringVarP(&cfg.Identity, "to", "t", "", "new identity address")
	}
}

func runSetRole(cfg SetRoleConfig, role string) error {
	if cfg.Identity == "" {
		return fmt.Errorf("--to is required")
	}

	seed, caller, err := loadCallerSeed(cfg.PrivateKey, cfg.PrivateKeyFile)
	if err != nil {
		return err
	}

	c, err := createClient(cfg.NodeURL)
	if err != nil {
		return err
	}
	defer c.Close()

	ctx := context.Background()
	switch role {
	case "admin":
		if _, err := c.SetAdmin(ctx, seed, cfg.Identity); err != nil {
			return fmt.Errorf("set admin: %w", err)
		}
	case "operator":
		if _, err := c.SetOperator(ctx, seed, cfg.Identity); err != nil {
			return fmt.Errorf("set operator: %w", err)
		}
	}

	logx.Info("SET-ROLE CLI", fmt.Sprintf("Rotated %s | by=%s | new=%s", role, caller, cfg.Identity))
	return nil
}
