package config

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
	"os"

	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"
)

// NodeConfig is the [node] section of config.ini
type NodeConfig struct {
	ListenAddr  string `ini:"listen_addr"`
	MetricsAddr string `ini:"metrics_addr"`
	DataDir     string `ini:"data_dir"`
}

// StorageConfig is the [storage] section of config.ini
type StorageConfig struct {
	Backend   string `ini:"backend"`
	Directory string `ini:"directory"`
	RedisAddr string `ini:"redis_addr"`
}

// EventsConfig is the [events] section of config.ini
type EventsConfig struct {
	SubscriberBuffer int `ini:"subscriber_buffer"`
}

// LoadGenesisConfig reads and parses the genesis.yml file
func LoadGenesisConfig(path string) (*GenesisConfig, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var cfgFile ConfigFile
	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(&cfgFile); err != nil {
		return nil, err
	}
	return &cfgFile.Config, nil
}

// LoadNodeConfig reads node settings from an .ini file, filling defaults for
// anything missing
func LoadNodeConfig(path string) (*NodeConfig, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, err
	}
	nodeCfg := &NodeConfig{
		ListenAddr:  DefaultListenAddr,
		MetricsAddr: DefaultMetricsAddr,
		DataDir:     DefaultDataDir,
	}
	if err := cfg.Section("node").MapTo(nodeCfg); err != nil {
		return nil, err
	}
	return nodeCfg, nil
}

func LoadStorageConfig(path string) (*StorageConfig, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, err
	}
	storageCfg := &StorageConfig{
		Backend:   "leveldb",
		Directory: DefaultDataDir,
	}
	if err := cfg.Section("storage").MapTo(storageCfg); err != nil {
		return nil, err
	}
	return storageCfg, nil
}

func LoadEventsConfig(path string) (*EventsConfig, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, err
	}
	eventsCfg := &EventsConfig{
		SubscriberBuffer: DefaultSubscriberBuffer,
	}
	if err := cfg.Section("events").MapTo(eventsCfg); err != nil {
		return nil, err
	}
	return eventsCfg, nil
}

// LoadEd25519PrivKey loads an Ed25519 private key from a file (expects hex encoding)
func LoadEd25519PrivKey(path string) (ed25519.PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	key, err := hex.DecodeString(string(data))
	if err != nil {
		return nil, err
	}
	switch len(key) {
	case ed25519.PrivateKeySize:
		return ed25519.PrivateKey(key), nil
	case ed25519.SeedSize:
		return ed25519.NewKeyFromSeed(key), nil
	default:
		return nil, fmt.Errorf("config: private key in %s has unexpected length %d", path, len(key))
	}
}

// SaveEd25519PrivKey writes a hex-encoded private key with owner-only permissions
func SaveEd25519PrivKey(path string, key ed25519.PrivateKey) error {
	return os.WriteFile(path, []byte(hex.EncodeToString(key)), 0o600)
}
