// Package config loads the process-wide verifier configuration from a YAML
// file.
//
// Configuration is read once at startup into an explicit Config value that is
// passed by reference into the components that need it. There is no ambient
// global state; tests construct alternate configs directly.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Policy holds the policy parameters consumed by the policy engine.
type Policy struct {
	RequireHardwareBacked bool   `yaml:"require_hardware_backed"`
	ExpectedAppID         string `yaml:"expected_app_id"`
	MinPatchLevel         int    `yaml:"min_patch_level"`
}

// Config is the verifier process configuration.
type Config struct {
	ListenAddr     string `yaml:"listen_addr"`
	TrustStorePath string `yaml:"trust_store_path"`
	MaxMediaBytes  int64  `yaml:"max_media_bytes"`
	Policy         Policy `yaml:"policy"`
}

// Defaults applied when fields are omitted from the file.
const (
	DefaultListenAddr    = ":8080"
	DefaultMaxMediaBytes = 32 << 20
)

// Load reads and validates the configuration at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %q: %w", path, err)
	}

	cfg := &Config{
		ListenAddr:    DefaultListenAddr,
		MaxMediaBytes: DefaultMaxMediaBytes,
		Policy: Policy{
			RequireHardwareBacked: true,
		},
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %q: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %q: %w", path, err)
	}
	return cfg, nil
}

// Validate checks that the configuration is coherent.
func (c *Config) Validate() error {
	if c.TrustStorePath == "" {
		return fmt.Errorf("trust_store_path must not be empty")
	}
	if c.Policy.ExpectedAppID == "" {
		return fmt.Errorf("policy.expected_app_id must not be empty")
	}
	if c.MaxMediaBytes <= 0 {
		return fmt.Errorf("max_media_bytes must be > 0")
	}
	if c.Policy.MinPatchLevel < 0 {
		return fmt.Errorf("policy.min_patch_level must be >= 0")
	}
	return nil
}
