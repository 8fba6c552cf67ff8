package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
)

// ============================================================
// Configuration
// ============================================================

const DefaultPath = "config/planner.toml"

type Config struct {
	Port           string `toml:"port" env:"PORT"`
	Environment    string `toml:"environment" env:"ENV"`
	ReadTimeout    int    `toml:"read_timeout" env:"READ_TIMEOUT"`
	WriteTimeout   int    `toml:"write_timeout" env:"WRITE_TIMEOUT"`
	DBPath         string `toml:"db_path" env:"PLANNER_DB_PATH"`
	ExportDir      string `toml:"export_dir" env:"PLANNER_EXPORT_DIR"`
	MaxHistorySize int    `toml:"max_history_size" env:"PLANNER_MAX_HISTORY_SIZE"`
}

func Default() *Config {
	return &Config{
		Port:           "3000",
		Environment:    "development",
		ReadTimeout:    10,
		WriteTimeout:   10,
		DBPath:         "data/db/planner.db",
		ExportDir:      "data/exports",
		MaxHistorySize: 100,
	}
}

// Load reads the defaults, then the TOML file named by PLANNER_CONFIG
// (config/planner.toml when unset), then the environment.
func Load() (*Config, error) {
	path := os.Getenv("PLANNER_CONFIG")
	if path == "" {
		path = DefaultPath
	}
	return LoadFile(path)
}

// LoadFile is Load with an explicit file path. A missing file is not an error.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}
	if c.MaxHistorySize < 0 {
		return fmt.Errorf("max_history_size must not be negative, got %d", c.MaxHistorySize)
	}
	if c.ReadTimeout < 0 || c.WriteTimeout < 0 {
		return errors.New("timeouts must not be negative")
	}
	return nil
}

func (c *Config) ReadTimeoutDuration() time.Duration {
	return time.Duration(c.ReadTimeout) * time.Second
}

func (c *Config) WriteTimeoutDuration() time.Duration {
	return time.Duration(c.WriteTimeout) * time.Second
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
