package config

const (
	DefaultListenAddr  = ":9090"
	DefaultMetricsAddr = ":9091"
	DefaultDataDir     = "./data"

	DefaultConfigPath  = "config/config.ini"
	DefaultGenesisPath = "config/genesis.yml"

	DefaultSubscriberBuffer = 64
)
