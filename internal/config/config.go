package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the file-loaded application configuration. Unknown keys in the
// file are ignored.
type Config struct {
	Server   ServerConfig    `yaml:"server"`
	Logging  LogConfig       `yaml:"logging"`
	Features map[string]bool `yaml:"features"`
	Engine   EngineConfig    `yaml:"engine"`
	Storage  StorageConfig   `yaml:"storage"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

type EngineConfig struct {
	MachineID uint16 `yaml:"machine_id"`
}

type StorageConfig struct {
	// Driver selects the snapshot store backend: "memory" or "sqlite".
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// DevMode reports whether the dev_mode feature flag is set; when true the
// server runs the built-in demo scenarios at startup.
func (c *Config) DevMode() bool {
	return c.Features["dev_mode"]
}

// ApplyDefaults fills in every unset field except logging.file, whose empty
// value means no log file.
func (c *Config) ApplyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Features == nil {
		c.Features = make(map[string]bool)
	}
	if c.Engine.MachineID == 0 {
		c.Engine.MachineID = 101
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "memory"
	}
	if c.Storage.DSN == "" {
		c.Storage.DSN = "trades.db"
	}
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	if c.Storage.Driver != "memory" && c.Storage.Driver != "sqlite" {
		return fmt.Errorf("storage driver must be 'memory' or 'sqlite', got %q", c.Storage.Driver)
	}
	return nil
}

// Load reads the config file at path, applies defaults and environment
// overrides, and validates the result. A missing file is not an error; the
// defaults apply.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// fall through to defaults
		case err != nil:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	cfg.ApplyDefaults()
	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if port := os.Getenv("PORT"); port != "" {
		cfg.Server.Port = port
	}
	if os.Getenv("DEBUG") == "true" {
		cfg.Logging.Level = "debug"
	}
}
