package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/agentwire/runcheck/pkg/validation"
)

// Config controls entry lifetime and sweep cadence for a Registry.
type Config struct {
	// TTL is how long an entry survives without being accessed.
	TTL validation.Duration `yaml:"ttl"`

	// SweepInterval is the cadence of the background sweeper.
	SweepInterval validation.Duration `yaml:"sweep_interval"`

	// Validation configures the instances the registry constructs.
	Validation *validation.Config `yaml:"validation"`
}

// DefaultConfig returns the canonical registry configuration: 30 minute
// TTL, 5 minute sweeps, strict validation.
func DefaultConfig() *Config {
	return &Config{
		TTL:           validation.Duration(30 * time.Minute),
		SweepInterval: validation.Duration(5 * time.Minute),
		Validation:    validation.DefaultConfig(),
	}
}

// ConfigFromFile loads a Config from a YAML file.
func ConfigFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("unsupported config file extension: %s", ext)
	}
	return ConfigFromYAML(data)
}

// ConfigFromYAML parses YAML data into a Config. Absent keys keep their
// default values.
func ConfigFromYAML(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	if cfg.TTL <= 0 {
		return nil, fmt.Errorf("ttl must be positive")
	}
	if cfg.SweepInterval <= 0 {
		return nil, fmt.Errorf("sweep_interval must be positive")
	}
	if cfg.Validation == nil {
		cfg.Validation = validation.DefaultConfig()
	}
	return cfg, nil
}
