// Package config parses mapsieve YAML configuration files with defaults.
package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hazyhaar/mapsieve/cards"
	"github.com/hazyhaar/mapsieve/classify"
	"github.com/hazyhaar/mapsieve/detail"
	"github.com/hazyhaar/mapsieve/device"
)

// Config is the top-level mapsieve configuration. The device, classify,
// cards and detail sections feed their packages directly; zero values
// there fall back to each package's built-in defaults.
type Config struct {
	Server   ServerConfig    `yaml:"server"`
	DB       DBConfig        `yaml:"db"`
	Device   device.Config   `yaml:"device"`
	Collect  CollectConfig   `yaml:"collect"`
	Classify classify.Config `yaml:"classify"`
	Cards    cards.Config    `yaml:"cards"`
	Detail   detail.Config   `yaml:"detail"`
	LogLevel string          `yaml:"log_level"` // debug | info | warn | error
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// DBConfig locates the SQLite database.
type DBConfig struct {
	Path string `yaml:"path"`
}

// CollectConfig tunes the collection loop.
type CollectConfig struct {
	// MaxMerchants stops the run once this many records are saved.
	MaxMerchants int `yaml:"max_merchants"`

	// Settle is the wait after a tap or back before the next dump.
	Settle time.Duration `yaml:"settle"`

	// MinConfidence skips card candidates scored below it.
	MinConfidence float64 `yaml:"min_confidence"`
}

// LoadFile reads a YAML configuration file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

// applyDefaults fills the zero fields of the harness sections. The
// extraction sections keep their zero values; the extraction packages
// default those on use.
func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.DB.Path == "" {
		c.DB.Path = "db/mapsieve.db"
	}
	if c.Collect.MaxMerchants <= 0 {
		c.Collect.MaxMerchants = 50
	}
	if c.Collect.Settle <= 0 {
		c.Collect.Settle = 1200 * time.Millisecond
	}
	if c.Collect.MinConfidence <= 0 {
		c.Collect.MinConfidence = 0.5
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}
