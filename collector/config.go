package collector

import (
	"github.com/hazyhaar/mapsieve/collector/internal/config"
)

// Config is the top-level mapsieve configuration. Re-exported from internal.
type Config = config.Config

// ServerConfig controls the HTTP listener.
type ServerConfig = config.ServerConfig

// DBConfig locates the SQLite database.
type DBConfig = config.DBConfig

// CollectConfig tunes the collection loop.
type CollectConfig = config.CollectConfig

// LoadConfigFile reads a YAML configuration file.
func LoadConfigFile(path string) (*Config, error) {
	return config.LoadFile(path)
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return config.Default()
}
