// Package config provides configuration loading and management for ffinterp.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// Dataset describes where the sample points come from
	Dataset struct {
		// Function names the reference function: sine, weierstrass, noise or csv
		Function string `yaml:"function"`

		// Input is the CSV file read when Function is csv
		Input string `yaml:"input"`

		// Points is the number of samples generated from the function
		Points int `yaml:"points"`

		// Lo and Hi bound the sampled x range
		Lo float64 `yaml:"lo"`
		Hi float64 `yaml:"hi"`

		// Irregular jitters interior sample positions
		Irregular bool `yaml:"irregular"`

		// Seed drives the noise function and irregular sampling
		Seed int64 `yaml:"seed"`

		// Octaves is the number of noise layers
		Octaves int `yaml:"octaves"`
	} `yaml:"dataset"`

	// Interpolation parameters
	Interpolation struct {
		// FreeVariable is the contraction factor shared by every segment
		FreeVariable float64 `yaml:"freeVariable"`

		// FreeVariables, when set, gives one contraction factor per segment
		// and overrides FreeVariable
		FreeVariables []float64 `yaml:"freeVariables,omitempty"`

		// Iterations is the refinement budget per evaluation
		Iterations int `yaml:"iterations"`

		// NumCores specifies how many CPU cores to use for parallel processing
		NumCores int `yaml:"numCores"`
	} `yaml:"interpolation"`

	// Evaluation parameters
	Evaluation struct {
		// Queries is the number of evenly spaced evaluation points
		Queries int `yaml:"queries"`

		// Baseline also evaluates piecewise linear interpolation for comparison
		Baseline bool `yaml:"baseline"`

		// Kriging also evaluates ordinary kriging for comparison
		Kriging bool `yaml:"kriging"`

		// AttractorLevels is the forward refinement depth of the attractor
		// written to Output.Attractor
		AttractorLevels int `yaml:"attractorLevels"`
	} `yaml:"evaluation"`

	// Output parameters
	Output struct {
		// Results is the CSV file evaluation results are written to; empty
		// disables it
		Results string `yaml:"results"`

		// Attractor is the CSV file attractor points are written to; empty
		// disables it
		Attractor string `yaml:"attractor"`

		// Database is the SQLite file runs are recorded in; empty disables it
		Database string `yaml:"database"`

		// Verbose enables debug logging
		Verbose bool `yaml:"verbose"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Dataset.Function = "sine"
	cfg.Dataset.Points = 1000
	cfg.Dataset.Lo = 0
	cfg.Dataset.Hi = 1
	cfg.Dataset.Seed = 1
	cfg.Dataset.Octaves = 6

	cfg.Interpolation.FreeVariable = 0.01
	cfg.Interpolation.Iterations = 10
	cfg.Interpolation.NumCores = runtime.NumCPU() // Use all available cores by default

	cfg.Evaluation.Queries = 10000
	cfg.Evaluation.Baseline = true
	cfg.Evaluation.AttractorLevels = 3

	cfg.Output.Verbose = false

	return cfg
}

// Validate reports the first setting that cannot produce a run
func (c *Config) Validate() error {
	switch c.Dataset.Function {
	case "sine", "weierstrass", "noise":
		if c.Dataset.Points < 2 {
			return fmt.Errorf("dataset.points must be at least 2, got %d", c.Dataset.Points)
		}
		if !(c.Dataset.Hi > c.Dataset.Lo) {
			return fmt.Errorf("dataset range [%g, %g] is empty", c.Dataset.Lo, c.Dataset.Hi)
		}
	case "csv":
		if c.Dataset.Input == "" {
			return errors.New("dataset.input is required for the csv function")
		}
	default:
		return fmt.Errorf("unknown dataset.function %q", c.Dataset.Function)
	}

	if c.Interpolation.Iterations < 1 {
		return fmt.Errorf("interpolation.iterations must be at least 1, got %d", c.Interpolation.Iterations)
	}
	if c.Evaluation.Queries < 0 {
		return fmt.Errorf("evaluation.queries must not be negative, got %d", c.Evaluation.Queries)
	}
	if c.Evaluation.AttractorLevels < 0 {
		return fmt.Errorf("evaluation.attractorLevels must not be negative, got %d", c.Evaluation.AttractorLevels)
	}
	return nil
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}
