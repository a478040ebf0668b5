package cmd

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"provault/client"
	"provault/common"
	"provault/config"
	"provault/db"
	"provault/events"
	"provault/store"
	"provault/token"
	"provault/vault"
)

// loadCallerSeed resolves the signing seed from either an inline hex key or a
// key file, and returns the derived base58 address alongside it.
func loadCallerSeed(privateKey, privateKeyFile string) (seed []byte, address string, err error) {
	var keyStr string
	switch {
	case privateKey != "":
		keyStr = privateKey
	case privateKeyFile != "":
		data, readErr := os.ReadFile(privateKeyFile)
		if readErr != nil {
			return nil, "", fmt.Errorf("read private key file: %w", readErr)
		}
		keyStr = string(data)
	default:
		return nil, "", fmt.Errorf("either --private-key or --private-key-file is required")
	}

	keyBytes, err := hex.DecodeString(strings.TrimSpace(keyStr))
	if err != nil {
		return nil, "", fmt.Errorf("decode private key hex: %w", err)
	}
	if len(keyBytes) < ed25519.SeedSize {
		return nil, "", fmt.Errorf("private key too short")
	}

	seed = keyBytes[len(keyBytes)-ed25519.SeedSize:]
	privKey := ed25519.NewKeyFromSeed(seed)
	address = common.AddressFromPubKey(privKey.Public().(ed25519.PublicKey))
	return seed, address, nil
}

// createClient opens a JSON-RPC connection to a custody node
func createClient(nodeURL string) (*client.VaultClient, error) {
	return client.NewClient(client.Config{Endpoint: nodeURL})
}

// nodeStores bundles everything a command needs to operate on local node state
type nodeStores struct {
	provider    db.DatabaseProvider
	masters     *store.MasterStore
	accounts    *store.GenericAccountStore
	eventStore  *store.EventStore
	tokenLedger *token.Ledger
}

// openNodeStores opens the node database from config.ini storage settings
func openNodeStores(configPath string) (*nodeStores, error) {
	storageCfg, err := config.LoadStorageConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("load storage config: %w", err)
	}

	providerCfg := &db.ProviderConfig{
		Backend:   db.Backend(storageCfg.Backend),
		Directory: storageCfg.Directory,
		RedisAddr: storageCfg.RedisAddr,
	}
	provider, err := db.NewProvider(providerCfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	masters, err := store.NewMasterStore(provider)
	if err != nil {
		provider.Close()
		return nil, err
	}
	accounts, err := store.NewGenericAccountStore(provider)
	if err != nil {
		provider.Close()
		return nil, err
	}
	eventStore, err := store.NewEventStore(provider)
	if err != nil {
		provider.Close()
		return nil, err
	}
	mints, err := store.NewMintStore(provider)
	if err != nil {
		provider.Close()
		return nil, err
	}
	tokenAccounts, err := store.NewTokenAccountStore(provider)
	if err != nil {
		provider.Close()
		return nil, err
	}

	return &nodeStores{
		provider:    provider,
		masters:     masters,
		accounts:    accounts,
		eventStore:  eventStore,
		tokenLedger: token.NewLedger(mints, tokenAccounts),
	}, nil
}

func (ns *nodeStores) Close() {
	ns.provider.Close()
}

// newVaultService wires a vault service over the opened stores
func (ns *nodeStores) newVaultService(subscriberBuffer int) (*vault.Service, *events.EventRouter, error) {
	eventBus := events.NewEventBus(subscriberBuffer)
	eventRouter := events.NewEventRouter(eventBus, ns.eventStore)
	txMgr := db.NewDBTxManager(ns.provider)

	svc, err := vault.NewService(ns.masters, ns.accounts, ns.eventStore, ns.tokenLedger, eventRouter, txMgr, 0)
	if err != nil {
		return nil, nil, err
	}
	return svc, eventRouter, nil
}
