// Package config loads application configuration from YAML files with
// environment variable overrides, and parses portfolio definitions.
package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"riskcli/internal/errors"
)

// envPrefix namespaces the override variables, e.g. RISK_LOGGING_LEVEL.
const envPrefix = "RISK"

// Config is the complete application configuration.
type Config struct {
	Logging    LoggingConfig    `yaml:"logging" envconfig:"LOGGING"`
	Output     OutputConfig     `yaml:"output" envconfig:"OUTPUT"`
	Simulation SimulationConfig `yaml:"simulation" envconfig:"SIMULATION"`
	Analysis   AnalysisConfig   `yaml:"analysis" envconfig:"ANALYSIS"`
}

// LoggingConfig controls the slog handler.
type LoggingConfig struct {
	Level  string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json text"`
}

// OutputConfig controls where artifacts are written.
type OutputConfig struct {
	Dir       string `yaml:"dir" envconfig:"DIR" validate:"required"`
	ChartsDir string `yaml:"charts_dir" envconfig:"CHARTS_DIR" validate:"required"`
}

// SimulationConfig parameterizes the Monte Carlo engine.
type SimulationConfig struct {
	NumPaths   int     `yaml:"num_paths" envconfig:"NUM_PATHS" validate:"gte=1"`
	Horizon    int     `yaml:"horizon" envconfig:"HORIZON" validate:"gte=1"`
	Confidence float64 `yaml:"confidence" envconfig:"CONFIDENCE" validate:"gt=0,lt=1"`
	Seed       uint64  `yaml:"seed" envconfig:"SEED"`
	Workers    int     `yaml:"workers" envconfig:"WORKERS" validate:"gte=1"`
}

// AnalysisConfig parameterizes the statistics layer.
type AnalysisConfig struct {
	RiskFreeRate   float64 `yaml:"risk_free_rate" envconfig:"RISK_FREE_RATE" validate:"gte=0"`
	PeriodsPerYear int     `yaml:"periods_per_year" envconfig:"PERIODS_PER_YEAR" validate:"gte=1"`
	RollingWindow  int     `yaml:"rolling_window" envconfig:"ROLLING_WINDOW" validate:"gte=2"`
}

// Default returns the configuration used when no file or environment
// overrides are present.
func Default() Config {
	return Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Output: OutputConfig{
			Dir:       "reports",
			ChartsDir: "plots",
		},
		Simulation: SimulationConfig{
			NumPaths:   1000,
			Horizon:    252,
			Confidence: 0.95,
			Seed:       1,
			Workers:    4,
		},
		Analysis: AnalysisConfig{
			RiskFreeRate:   0.02,
			PeriodsPerYear: 252,
			RollingWindow:  20,
		},
	}
}

// Load builds the configuration by layering the YAML file at path (when
// non-empty) and environment variables over the defaults. Environment
// variables win.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.NewConfigError(fmt.Sprintf("read config file %s", path), err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, errors.NewConfigError(fmt.Sprintf("parse config file %s", path), err)
		}
	}

	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, errors.NewConfigError("apply environment overrides", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration's structural constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.NewConfigError("invalid configuration", err)
	}
	return nil
}
