// Package config holds the run configuration for the evaluation CLI.
// Defaults reproduce the historical grading constants; a YAML file can
// override them per run.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"chronos_evaluation/pkg/core/compare"
)

// BandsConfig mirrors compare.Bands in YAML.
type BandsConfig struct {
	CloseMultiplier float64 `yaml:"close_multiplier"`
	RoughMultiplier float64 `yaml:"rough_multiplier"`
	CloseScore      float64 `yaml:"close_score"`
	RoughScore      float64 `yaml:"rough_score"`
}

// Config is the full run configuration.
type Config struct {
	Tolerance float64     `yaml:"tolerance"`
	Bands     BandsConfig `yaml:"bands"`
	OutputDir string      `yaml:"output_dir"`
	Service   string      `yaml:"service"`

	// Aliases adds producer-specific field spellings on top of the
	// built-in table, keyed by canonical field name.
	Aliases map[string][]string `yaml:"aliases"`
}

// Default returns the historical grading configuration.
func Default() Config {
	return Config{
		Tolerance: compare.DefaultTolerance,
		Bands: BandsConfig{
			CloseMultiplier: compare.DefaultBands.CloseMultiplier,
			RoughMultiplier: compare.DefaultBands.RoughMultiplier,
			CloseScore:      compare.DefaultBands.CloseScore,
			RoughScore:      compare.DefaultBands.RoughScore,
		},
		OutputDir: "results",
		Service:   "business_logic",
	}
}

// Load reads a YAML config file over the defaults, so a file only needs
// the keys it changes.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Tolerance <= 0 {
		return cfg, fmt.Errorf("tolerance must be positive, got %v", cfg.Tolerance)
	}
	return cfg, nil
}

// CompareBands converts the YAML band settings to the comparator's type.
func (c Config) CompareBands() compare.Bands {
	return compare.Bands{
		CloseMultiplier: c.Bands.CloseMultiplier,
		RoughMultiplier: c.Bands.RoughMultiplier,
		CloseScore:      c.Bands.CloseScore,
		RoughScore:      c.Bands.RoughScore,
	}
}
