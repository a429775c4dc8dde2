package config

import (
	"path/filepath"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("Default config should validate, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"bad format", func(c *Config) { c.Sidecar.Format = "yaml" }, true},
		{"negative workers", func(c *Config) { c.Sidecar.Workers = -1 }, true},
		{"zero flush", func(c *Config) { c.Sidecar.FlushEvery = 0 }, true},
		{"empty caption ext", func(c *Config) { c.Tags.CaptionExt = "" }, true},
		{"empty exiftool path", func(c *Config) { c.Exiftool.Path = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Expected error=%v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Sidecar.Overwrite = true
	cfg.Blacklist.Tags = []string{"blurry"}

	path := filepath.Join(t.TempDir(), "nested", "config.json")
	if err := cfg.SaveToFile(path); err != nil {
		t.Fatalf("SaveToFile failed: %v", err)
	}

	loaded, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}
	if !loaded.Sidecar.Overwrite {
		t.Error("Expected overwrite to survive round trip")
	}
	if len(loaded.Blacklist.Tags) != 1 || loaded.Blacklist.Tags[0] != "blurry" {
		t.Errorf("Expected blacklist tags to survive round trip, got %v", loaded.Blacklist.Tags)
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Error("Expected error for missing config file")
	}
}
