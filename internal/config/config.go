// Package config loads and validates the context-engine configuration.
//
// DESIGN: One YAML file drives the whole process. Fields left unset
// fall back to DefaultConfig() values; Validate() rejects anything
// internally inconsistent. ${VAR} and ${VAR:-default} expansion is
// applied to the raw file before parsing so deployments can inject
// paths and levels from the environment.
package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/convoflow/context-engine/internal/engine"
	"github.com/convoflow/context-engine/internal/monitoring"
)

// Config is the root configuration.
type Config struct {
	Engine  engine.Config           `yaml:"engine"`  // selection/classification tunables
	Store   StoreConfig             `yaml:"store"`   // history store settings
	Tokens  TokensConfig            `yaml:"tokens"`  // token estimation
	Logging monitoring.LoggerConfig `yaml:"logging"` // process logging
}

// StoreConfig configures the history store.
type StoreConfig struct {
	Type string        `yaml:"type"` // "memory" or "sqlite"
	Path string        `yaml:"path"` // database path (sqlite only)
	TTL  time.Duration `yaml:"ttl"`  // idle conversation TTL (memory only)
}

// TokensConfig configures token estimation.
type TokensConfig struct {
	Encoding string `yaml:"encoding"` // tiktoken encoding name
	Ratio    int    `yaml:"ratio"`    // bytes per token fallback ratio
}

// DefaultConfig returns the full default configuration.
func DefaultConfig() Config {
	return Config{
		Engine:  engine.DefaultConfig(),
		Store:   StoreConfig{Type: "memory", TTL: 24 * time.Hour},
		Tokens:  TokensConfig{Encoding: "cl100k_base", Ratio: 4},
		Logging: monitoring.DefaultLoggerConfig(),
	}
}

// envVar matches ${VAR} or ${VAR:-default}.
var envVar = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandEnvWithDefaults expands environment variables, honoring
// ${VAR:-default} syntax.
func expandEnvWithDefaults(s string) string {
	return envVar.ReplaceAllStringFunc(s, func(match string) string {
		parts := envVar.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}
		if value := os.Getenv(parts[1]); value != "" {
			return value
		}
		if len(parts) > 2 {
			return parts[2]
		}
		return ""
	})
}

// Load reads configuration from a YAML file. An empty path yields the
// defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		cfg := DefaultConfig()
		return &cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
	}

	return LoadFromBytes(data)
}

// LoadFromBytes parses configuration from raw YAML bytes on top of the
// defaults.
func LoadFromBytes(data []byte) (*Config, error) {
	expanded := expandEnvWithDefaults(string(data))

	cfg := DefaultConfig()
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if err := c.Engine.Validate(); err != nil {
		return err
	}

	switch c.Store.Type {
	case "memory":
		if c.Store.TTL <= 0 {
			return fmt.Errorf("store.ttl must be positive for the memory store")
		}
	case "sqlite":
		if c.Store.Path == "" {
			return fmt.Errorf("store.path is required for the sqlite store")
		}
	default:
		return fmt.Errorf("unknown store.type: %q", c.Store.Type)
	}

	if c.Tokens.Ratio <= 0 {
		return fmt.Errorf("tokens.ratio must be positive")
	}

	return nil
}
