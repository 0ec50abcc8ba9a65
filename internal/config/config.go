package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// StoreConfig holds the memory geometry and construction options
type StoreConfig struct {
	WordBits         uint       `yaml:"word_bits"`
	Depth            uint       `yaml:"depth"`
	RegisteredOutput bool       `yaml:"registered_output"`
	Init             InitConfig `yaml:"init"`
}

// InitConfig holds the replica initialization policy, applied identically
// to all three replicas
type InitConfig struct {
	Policy  string `yaml:"policy"` // none, zero, random, pattern
	Seed    int64  `yaml:"seed"`
	Pattern uint64 `yaml:"pattern"`
}

// SoakConfig holds soak harness configuration
type SoakConfig struct {
	Workers     int           `yaml:"workers"`
	QueueSize   int           `yaml:"queue_size"`
	Operations  uint64        `yaml:"operations"`
	FaultRate   float64       `yaml:"fault_rate"`
	Seed        int64         `yaml:"seed"`
	ScrubEvery  time.Duration `yaml:"scrub_every"`
	StopTimeout time.Duration `yaml:"stop_timeout"`
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Port    int    `yaml:"port"`
	Path    string `yaml:"path"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Config represents the complete configuration for the memory soak harness
type Config struct {
	Store   StoreConfig   `yaml:"store"`
	Soak    SoakConfig    `yaml:"soak"`
	Metrics MetricsConfig `yaml:"metrics"`
	Logging LoggingConfig `yaml:"logging"`
}

// LoadConfig loads configuration from a file
func LoadConfig(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Set defaults if not specified
	setDefaults(&cfg)

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default values for unspecified configuration
func setDefaults(cfg *Config) {
	if cfg.Store.WordBits == 0 {
		cfg.Store.WordBits = 64
	}
	if cfg.Store.Depth == 0 {
		cfg.Store.Depth = 1024
	}
	if cfg.Store.Init.Policy == "" {
		cfg.Store.Init.Policy = "zero"
	}

	if cfg.Soak.Workers == 0 {
		cfg.Soak.Workers = 4
	}
	if cfg.Soak.QueueSize == 0 {
		cfg.Soak.QueueSize = 128
	}
	if cfg.Soak.Operations == 0 {
		cfg.Soak.Operations = 100000
	}
	if cfg.Soak.ScrubEvery == 0 {
		cfg.Soak.ScrubEvery = 10 * time.Second
	}
	if cfg.Soak.StopTimeout == 0 {
		cfg.Soak.StopTimeout = 30 * time.Second
	}

	if cfg.Metrics.Port == 0 {
		cfg.Metrics.Port = 9090
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Store.WordBits < 1 {
		return fmt.Errorf("store.word_bits must be at least 1")
	}
	if c.Store.Depth < 1 {
		return fmt.Errorf("store.depth must be at least 1")
	}
	switch c.Store.Init.Policy {
	case "none", "zero", "random", "pattern":
	default:
		return fmt.Errorf("store.init.policy must be one of none, zero, random, pattern")
	}
	if c.Soak.FaultRate < 0 || c.Soak.FaultRate > 1 {
		return fmt.Errorf("soak.fault_rate must be between 0 and 1")
	}
	if c.Metrics.Port < 1 || c.Metrics.Port > 65535 {
		return fmt.Errorf("metrics.port must be between 1 and 65535")
	}
	return nil
}
