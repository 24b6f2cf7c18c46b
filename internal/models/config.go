package models

import "time"

// Config holds configuration for a gate run
type Config struct {
	// Findings service connection
	Host     string        `toml:"host"`
	APIKey   string        `toml:"api_key"`
	User     string        `toml:"user"`
	Proxy    string        `toml:"proxy"`
	Insecure bool          `toml:"insecure"` // Skip TLS verification
	Timeout  time.Duration `toml:"-"`

	// Engagement settings
	ProductID string `toml:"product"`
	BuildID   string `toml:"build_id"`

	// Scan input: one file with an explicit scanner, or a directory tree
	File          string `toml:"file"`
	Scanner       string `toml:"scanner"`
	Dir           string `toml:"dir"`
	CollectErrors bool   `toml:"collect_errors"` // Keep walking after a failed upload

	// Gate settings
	Thresholds Thresholds    `toml:"thresholds"`
	SettleWait time.Duration `toml:"-"`

	// Output settings
	OutputFormat string `toml:"format"` // "terminal", "json", "junit", "sarif"
	OutputFile   string `toml:"output"` // Optional output file path

	Debug bool `toml:"debug"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		OutputFormat: "terminal",
		Timeout:      360 * time.Second,
		SettleWait:   10 * time.Second,
	}
}
