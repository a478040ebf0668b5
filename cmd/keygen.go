package cmd

import (
	"crypto/ed25519"
	"crypto/rand"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"provault/common"
	"provault/config"
	"provault/logx"
)

var keygenOutDir string

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate a new Ed25519 keypair",
	Long: `Generate a new Ed25519 keypair and write it to the output directory:
- privkey.txt: hex-encoded private key (owner-only permissions)
- pubkey.txt:  base58 address derived from the public key`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := generateKeypair(keygenOutDir); err != nil {
			logx.Error("KEYGEN", "Key generation failed: ", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(keygenCmd)
	keygenCmd.Flags().StringVarP(&keygenOutDir, "out", "o", ".", "Directory to write the keypair to")
}

func generateKeypair(outDir string) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	pubKey, privKey, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return fmt.Errorf("generate keypair: %w", err)
	}
	address := common.AddressFromPubKey(pubKey)

	privKeyFile := filepath.Join(outDir, "privkey.txt")
	pubKeyFile := filepath.Join(outDir, "pubkey.txt")

	if _, err := os.Stat(privKeyFile); err == nil {
		return fmt.Errorf("refusing to overwrite existing key at %s", privKeyFile)
	}

	if err := config.SaveEd25519PrivKey(privKeyFile, privKey); err != nil {
		return fmt.Errorf("write private key: %w", err)
	}
	if err := os.WriteFile(pubKeyFile, []byte(address), 0o644); err != nil {
		return fmt.Errorf("write public key: %w", err)
	}

	logx.Info("KEYGEN", "Generated keypair | address=", address, " | privkey=", privKeyFile)
	fmt.Println(address)
	return nil
}
