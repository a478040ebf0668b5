package db

import (
	"fmt"
)

// Backend identifies a DatabaseProvider implementation
type Backend string

const (
	BackendLevelDB Backend = "leveldb"
	BackendBolt    Backend = "bolt"
	BackendRedis   Backend = "redis"
	BackendMemory  Backend = "memory"
)

// ProviderConfig holds configuration for creating a provider
type ProviderConfig struct {
	// Backend selects the implementation
	Backend Backend

	// Directory is the database path for file-based backends
	Directory string

	// RedisAddr is the host:port of the Redis server for the redis backend
	RedisAddr string
}

// Validate validates the provider configuration
func (pc *ProviderConfig) Validate() error {
	switch pc.Backend {
	case BackendLevelDB, BackendBolt:
		if pc.Directory == "" {
			return fmt.Errorf("directory cannot be empty for backend %s", pc.Backend)
		}
		return nil
	case BackendRedis:
		if pc.RedisAddr == "" {
			return fmt.Errorf("redis address cannot be empty")
		}
		return nil
	case BackendMemory:
		return nil
	case "":
		return fmt.Errorf("backend cannot be empty")
	default:
		return fmt.Errorf("unsupported backend: %s", pc.Backend)
	}
}

// NewProvider creates a DatabaseProvider from the config
func NewProvider(cfg *ProviderConfig) (DatabaseProvider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid provider config: %w", err)
	}

	switch cfg.Backend {
	case BackendLevelDB:
		return NewLevelDBProvider(cfg.Directory)
	case BackendBolt:
		return NewBoltProvider(cfg.Directory)
	case BackendRedis:
		return NewRedisProvider(cfg.RedisAddr)
	case BackendMemory:
		return NewMemoryProvider(), nil
	default:
		return nil, fmt.Errorf("unsupported backend: %s", cfg.Backend)
	}
}
