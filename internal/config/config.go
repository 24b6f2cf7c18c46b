// Package config assembles the run configuration from defaults, an optional
// TOML file and the environment. Command-line flags are applied last by the
// caller.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/ethanolivertroy/dojo-gate/internal/models"
	"github.com/joho/godotenv"
)

const (
	// DefaultConfigFile is read from the working directory when present
	DefaultConfigFile = ".dojo-gate.toml"
	// DefaultEnvFile is loaded into the environment when present
	DefaultEnvFile = ".env"
)

// Environment variables, applied over the config file
const (
	EnvHost    = "DOJO_HOST"
	EnvAPIKey  = "DOJO_API_KEY"
	EnvUser    = "DOJO_USER"
	EnvProduct = "DOJO_PRODUCT"
	EnvProxy   = "DOJO_PROXY"
)

// fileConfig is the on-disk layout. Durations are whole seconds.
type fileConfig struct {
	models.Config
	SettleSeconds  *int `toml:"settle_seconds"`
	TimeoutSeconds *int `toml:"timeout_seconds"`
}

// Load builds a Config from defaults, the TOML file at path and the
// environment. An empty path reads DefaultConfigFile if it exists; an
// explicit path must exist.
func Load(path string) (*models.Config, error) {
	cfg := models.DefaultConfig()

	explicit := path != ""
	if !explicit {
		path = DefaultConfigFile
	}
	if err := loadFile(cfg, path); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	// godotenv never overrides variables already set in the environment
	if err := godotenv.Load(DefaultEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", DefaultEnvFile, err)
	}
	applyEnv(cfg)

	return cfg, nil
}

func loadFile(cfg *models.Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	fc := fileConfig{Config: *cfg}
	if _, err := toml.Decode(string(data), &fc); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	*cfg = fc.Config
	if fc.SettleSeconds != nil {
		cfg.SettleWait = time.Duration(*fc.SettleSeconds) * time.Second
	}
	if fc.TimeoutSeconds != nil {
		cfg.Timeout = time.Duration(*fc.TimeoutSeconds) * time.Second
	}
	return nil
}

func applyEnv(cfg *models.Config) {
	set := func(dst *string, key string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}
	set(&cfg.Host, EnvHost)
	set(&cfg.APIKey, EnvAPIKey)
	set(&cfg.User, EnvUser)
	set(&cfg.ProductID, EnvProduct)
	set(&cfg.Proxy, EnvProxy)
}

// Validate checks that a run has everything it needs
func Validate(cfg *models.Config) error {
	var missing []string
	for _, f := range []struct{ name, value string }{
		{"host", cfg.Host},
		{"api-key", cfg.APIKey},
		{"user", cfg.User},
		{"product", cfg.ProductID},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, "--"+f.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required settings: %s", strings.Join(missing, ", "))
	}

	if cfg.File == "" && cfg.Dir == "" {
		return errors.New("no file or directory to scan specified (--file or --dir)")
	}
	if cfg.File != "" && cfg.Scanner == "" {
		return &models.MissingScannerTypeError{File: cfg.File}
	}

	for _, th := range []struct {
		name string
		max  *int
	}{
		{"critical", cfg.Thresholds.Critical},
		{"high", cfg.Thresholds.High},
		{"medium", cfg.Thresholds.Medium},
	} {
		if th.max != nil && *th.max < 0 {
			return fmt.Errorf("--%s must not be negative", th.name)
		}
	}
	if cfg.SettleWait < 0 {
		return errors.New("--settle must not be negative")
	}
	return nil
}
