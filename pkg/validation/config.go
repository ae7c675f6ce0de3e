package validation

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so config files can use human-readable
// values such as "30s" or "15m".
type Duration time.Duration

// UnmarshalYAML accepts either a duration string or an integer nanosecond
// count.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err == nil {
		parsed, perr := time.ParseDuration(s)
		if perr != nil {
			return fmt.Errorf("parse duration %q: %w", s, perr)
		}
		*d = Duration(parsed)
		return nil
	}
	var n int64
	if err := value.Decode(&n); err != nil {
		return fmt.Errorf("duration must be a string or integer nanoseconds: %w", err)
	}
	*d = Duration(n)
	return nil
}

// MarshalYAML renders the duration in its string form.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config controls validation behavior for a single validator instance.
type Config struct {
	// Strict rejects reuse of an instance across runs and enforces
	// timestamps on milestone events. Non-strict mode tolerates both.
	Strict bool `yaml:"strict"`

	// RunTimeout is the maximum elapsed time since a run's first recorded
	// event before ValidateTiming declares the run overdue.
	RunTimeout Duration `yaml:"run_timeout"`

	// MilestoneGap is the largest tolerated gap between consecutive
	// milestones before a warning is surfaced.
	MilestoneGap Duration `yaml:"milestone_gap"`

	// MaxHistorySize bounds the per-run event history; oldest entries are
	// dropped first. Milestone bookkeeping is unaffected by trimming.
	MaxHistorySize int `yaml:"max_history_size"`
}

// DefaultConfig returns the canonical strict configuration.
func DefaultConfig() *Config {
	return &Config{
		Strict:         true,
		RunTimeout:     Duration(30 * time.Second),
		MilestoneGap:   Duration(15 * time.Second),
		MaxHistorySize: 10000,
	}
}

// PermissiveConfig returns a configuration that tolerates instance reuse
// across runs for the same user.
func PermissiveConfig() *Config {
	cfg := DefaultConfig()
	cfg.Strict = false
	return cfg
}

// ConfigFromFile loads a Config from a file, auto-detecting the format by
// extension. Supported extensions: .yaml, .yml
func ConfigFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		return ConfigFromYAML(data)
	default:
		return nil, fmt.Errorf("unsupported config file extension: %s", ext)
	}
}

// ConfigFromYAML parses YAML data into a Config. Absent keys keep their
// default values.
func ConfigFromYAML(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.RunTimeout <= 0 {
		return fmt.Errorf("run_timeout must be positive")
	}
	if c.MilestoneGap <= 0 {
		return fmt.Errorf("milestone_gap must be positive")
	}
	if c.MaxHistorySize <= 0 {
		return fmt.Errorf("max_history_size must be positive")
	}
	return nil
}
