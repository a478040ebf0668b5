package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"provault/config"
	"provault/logx"
	"provault/store"
	"provault/types"
)

var (
	initGenesisPath string
	initConfigPath  string
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the node database from genesis configuration",
	Long: `Initialize a new custody node by:
- Seeding native accounts from the genesis allocations
- Registering the custody token mint
- Minting the genesis token allocations

This command is idempotent; re-running it against an initialized database is a no-op.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := initializeNode(); err != nil {
			logx.Error("INIT", "Initialization failed: ", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().StringVar(&initGenesisPath, "genesis", config.DefaultGenesisPath, "Path to genesis configuration file")
	initCmd.Flags().StringVarP(&initConfigPath, "config", "c", config.DefaultConfigPath, "Path to config.ini")
}

func initializeNode() error {
	logx.InitWithStdout()

	genesis, err := config.LoadGenesisConfig(initGenesisPath)
	if err != nil {
		return fmt.Errorf("load genesis config: %w", err)
	}

	stores, err := openNodeStores(initConfigPath)
	if err != nil {
		return err
	}
	defer stores.Close()

	initialized, err := stores.provider.Has([]byte(store.GenesisKeyInitialized))
	if err != nil {
		return fmt.Errorf("check genesis marker: %w", err)
	}
	if initialized {
		logx.Info("INIT", "Database already initialized, nothing to do")
		return nil
	}

	// Native allocations
	for _, alloc := range genesis.Native.Allocations {
		account := &types.Account{
			Address: alloc.Address,
			Balance: alloc.Amount,
			Nonce:   0,
		}
		if err := stores.accounts.Store(account); err != nil {
			return fmt.Errorf("seed account %s: %w", alloc.Address, err)
		}
		logx.Info("INIT", fmt.Sprintf("Seeded account | address=%s | balance=%d", alloc.Address, alloc.Amount))
	}

	// Token mint and allocations
	if genesis.Mint.Symbol != "" {
		mint, err := stores.tokenLedger.RegisterMint(genesis.Mint.Symbol, genesis.Mint.Decimals)
		if err != nil {
			return fmt.Errorf("register mint %s: %w", genesis.Mint.Symbol, err)
		}
		for _, alloc := range genesis.Mint.Allocations {
			if err := stores.tokenLedger.MintTo(mint.Address, alloc.Address, alloc.Amount); err != nil {
				return fmt.Errorf("mint to %s: %w", alloc.Address, err)
			}
		}
		logx.Info("INIT", fmt.Sprintf("Mint ready | symbol=%s | address=%s", mint.Symbol, mint.Address))
	}

	if err := stores.provider.Put([]byte(store.GenesisKeyInitialized), []byte("1")); err != nil {
		return fmt.Errorf("write genesis marker: %w", err)
	}

	logx.Info("INIT", "Node initialized")
	return nil
}
