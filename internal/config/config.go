package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config holds the application configuration
type Config struct {
	Sidecar   SidecarConfig   `json:"sidecar"`
	Blacklist BlacklistConfig `json:"blacklist"`
	Tags      TagsConfig      `json:"tags"`
	Exiftool  ExiftoolConfig  `json:"exiftool"`
}

// SidecarConfig holds configuration for sidecar generation
type SidecarConfig struct {
	Format       string `json:"format"`
	Overwrite    bool   `json:"overwrite"`
	SkipExisting bool   `json:"skip_existing"`
	Workers      int    `json:"workers"`
	FlushEvery   int    `json:"flush_every"`
}

// BlacklistConfig holds configuration for tag filtering
type BlacklistConfig struct {
	Enabled bool     `json:"enabled"`
	File    string   `json:"file"`
	Tags    []string `json:"tags"`
}

// TagsConfig holds configuration for tag sources
type TagsConfig struct {
	CaptionExt  string `json:"caption_ext"`
	UseEmbedded bool   `json:"use_embedded"`
}

// ExiftoolConfig holds configuration for the external tool
type ExiftoolConfig struct {
	Path string `json:"path"`
}

// Default returns a configuration with default values
func Default() *Config {
	return &Config{
		Sidecar: SidecarConfig{
			Format:       "xmp",
			Overwrite:    false,
			SkipExisting: false,
			Workers:      0,
			FlushEvery:   50,
		},
		Blacklist: BlacklistConfig{
			Enabled: true,
			File:    "",
			Tags:    []string{},
		},
		Tags: TagsConfig{
			CaptionExt:  ".txt",
			UseEmbedded: false,
		},
		Exiftool: ExiftoolConfig{
			Path: "exiftool",
		},
	}
}

// LoadFromFile loads configuration from a JSON file
func LoadFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &config, nil
}

// SaveToFile saves configuration to a JSON file
func (c *Config) SaveToFile(filename string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Sidecar.Format != "xmp" {
		return fmt.Errorf("sidecar.format must be \"xmp\"")
	}

	if c.Sidecar.Workers < 0 {
		return fmt.Errorf("sidecar.workers cannot be negative")
	}

	if c.Sidecar.FlushEvery < 1 {
		return fmt.Errorf("sidecar.flush_every must be positive")
	}

	if c.Tags.CaptionExt == "" {
		return fmt.Errorf("tags.caption_ext cannot be empty")
	}

	if c.Exiftool.Path == "" {
		return fmt.Errorf("exiftool.path cannot be empty")
	}

	return nil
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./config.json"
	}
	return filepath.Join(home, ".config", "xmp-sidecar", "config.json")
}
