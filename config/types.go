package config

// Allocation seeds an account with a balance at genesis
type Allocation struct {
	Address string `yaml:"address"`
	Amount  uint64 `yaml:"amount"`
}

// NativeConfig describes the native asset and its genesis allocations
type NativeConfig struct {
	Decimals    uint32       `yaml:"decimals"`
	Allocations []Allocation `yaml:"allocations"`
}

// MintConfig describes the custody token mint and its genesis allocations
type MintConfig struct {
	Symbol      string       `yaml:"symbol"`
	Decimals    uint32       `yaml:"decimals"`
	Allocations []Allocation `yaml:"allocations"`
}

// GenesisConfig holds the configuration from genesis.yml
type GenesisConfig struct {
	Native NativeConfig `yaml:"native"`
	Mint   MintConfig   `yaml:"mint"`
}

// ConfigFile is the top-level structure for genesis.yml
type ConfigFile struct {
	Config GenesisConfig `yaml:"config"`
}
