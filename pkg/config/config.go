// Package config provides configuration loading and management for cubeview.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// Viewer parameters
	Viewer struct {
		// DefaultBand is the band shown when a cube is first loaded
		DefaultBand int `yaml:"defaultBand"`

		// NoDataValue overrides the no-data sentinel declared by the data
		// file; nil keeps the file's own declaration
		NoDataValue *float64 `yaml:"noDataValue"`

		// Verbose controls the level of logging output
		Verbose bool `yaml:"verbose"`
	} `yaml:"viewer"`

	// Export parameters
	Export struct {
		// JPEGQuality is the quality used when saving band slices as JPEG
		JPEGQuality int `yaml:"jpegQuality"`

		// SlicesDir is the directory band-slice images are written to
		SlicesDir string `yaml:"slicesDir"`
	} `yaml:"export"`

	// Chart parameters
	Chart struct {
		// Title is the page and plot title of exported spectra charts
		Title string `yaml:"title"`

		// Width and Height size the chart canvas (CSS units)
		Width  string `yaml:"width"`
		Height string `yaml:"height"`
	} `yaml:"chart"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	// Set default viewer parameters
	cfg.Viewer.DefaultBand = 0
	cfg.Viewer.Verbose = true

	// Set default export parameters
	cfg.Export.JPEGQuality = 90
	cfg.Export.SlicesDir = "band_slices"

	// Set default chart parameters
	cfg.Chart.Title = "Picked Spectra"
	cfg.Chart.Width = "1000px"
	cfg.Chart.Height = "600px"

	return cfg
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	// Read config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Parse YAML
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	// Marshal config to YAML
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	// Write to file
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}
