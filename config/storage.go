package config

import (
	"os"
	"path/filepath"
	"strings"
)

// StorageBackend selects where session, tenant and locale state is persisted.
type StorageBackend string

const (
	StorageBackendFile   StorageBackend = "file"
	StorageBackendRedis  StorageBackend = "redis"
	StorageBackendMemory StorageBackend = "memory"
)

// StorageConfig contains persisted key-value storage configuration.
type StorageConfig struct {
	Backend StorageBackend `env:"AGENDA_STORAGE_BACKEND" envDefault:"file"`

	// Path is the JSON state file for the file backend.
	// Empty means <user config dir>/church-agenda/state.json.
	Path string `env:"AGENDA_STORAGE_PATH"`

	// KeyPrefix namespaces keys in Redis so several profiles can share a server.
	KeyPrefix string `env:"AGENDA_STORAGE_KEY_PREFIX" envDefault:"agenda:"`

	Redis RedisConfig `envPrefix:"REDIS_"`
}

// RedisConfig contains Redis configuration.
type RedisConfig struct {
	URI                string   `env:"URI"                  envDefault:"localhost:6379"`
	Password           string   `env:"PASSWORD"             envDefault:""`
	DB                 int      `env:"DB"                   envDefault:"0"`
	SentinelNodes      []string `env:"SENTINEL_NODES"       envDefault:"localhost:26379"`
	SentinelMasterName string   `env:"SENTINEL_MASTER_NAME" envDefault:"mymaster"`
	SentinelPassword   string   `env:"SENTINEL_PASSWORD"    envDefault:""`
	UseSentinel        bool     `env:"USE_SENTINEL"         envDefault:"false"`
	ClusterNodes       []string `env:"CLUSTER_NODES"        envDefault:""`
	UseCluster         bool     `env:"USE_CLUSTER"          envDefault:"false"`
}

// Sanitize normalises the backend name and resolves the default state path.
// Unknown backends fall back to file.
func (c *StorageConfig) Sanitize() {
	switch b := StorageBackend(strings.ToLower(strings.TrimSpace(string(c.Backend)))); b {
	case StorageBackendFile, StorageBackendRedis, StorageBackendMemory:
		c.Backend = b
	default:
		c.Backend = StorageBackendFile
	}

	c.Path = strings.TrimSpace(c.Path)
	if c.Path == "" {
		c.Path = DefaultStatePath()
	}

	c.KeyPrefix = strings.TrimSpace(c.KeyPrefix)
	if c.Redis.DB < 0 {
		c.Redis.DB = 0
	}
}

// DefaultStatePath returns the per-user state file location, or a file in the
// working directory when no config dir can be determined.
func DefaultStatePath() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return filepath.Join(".church-agenda", "state.json")
	}
	return filepath.Join(dir, "church-agenda", "state.json")
}
