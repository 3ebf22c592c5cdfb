package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// useConfigPath points ConfigPath at path for the duration of the test
func useConfigPath(t *testing.T, path string) {
	t.Helper()
	originalConfigPath := ConfigPath
	ConfigPath = func() string {
		return path
	}
	t.Cleanup(func() {
		ConfigPath = originalConfigPath
	})
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.LogFile == "" {
		t.Error("Expected LogFile to be set")
	}
	if cfg.LogLevel != "info" {
		t.Errorf("Expected LogLevel to be info, got %q", cfg.LogLevel)
	}
	if cfg.OutputFormat != "json" {
		t.Errorf("Expected OutputFormat to be json, got %q", cfg.OutputFormat)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config should be valid: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	valid := func(modify func(*Config)) *Config {
		cfg := DefaultConfig()
		modify(cfg)
		return cfg
	}

	tests := []struct {
		name    string
		config  *Config
		wantErr string
	}{
		{
			name:   "valid config",
			config: valid(func(c *Config) { c.BaseURL = "https://wiki.example.com" }),
		},
		{
			name:    "relative base_url",
			config:  valid(func(c *Config) { c.BaseURL = "wiki.example.com/xwiki" }),
			wantErr: "base_url",
		},
		{
			name:    "ftp base_url",
			config:  valid(func(c *Config) { c.BaseURL = "ftp://wiki.example.com" }),
			wantErr: "base_url",
		},
		{
			name:    "empty log_file",
			config:  valid(func(c *Config) { c.LogFile = "" }),
			wantErr: "log_file",
		},
		{
			name:    "unknown log_level",
			config:  valid(func(c *Config) { c.LogLevel = "trace" }),
			wantErr: "log_level",
		},
		{
			name:    "unknown output_format",
			config:  valid(func(c *Config) { c.OutputFormat = "toml" }),
			wantErr: "output_format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	testConfigPath := filepath.Join(t.TempDir(), "uniast", "config.json")
	useConfigPath(t, testConfigPath)

	testCfg := &Config{
		BaseURL:      "https://wiki.example.com",
		DefaultSpace: "Docs",
		LogFile:      "/tmp/uniast-test.log",
		LogLevel:     "debug",
		OutputFormat: "yaml",
	}

	if err := testCfg.Save(); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	if _, err := os.Stat(testConfigPath); os.IsNotExist(err) {
		t.Fatal("Config file was not created")
	}

	loadedCfg, err := Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if loadedCfg.BaseURL != testCfg.BaseURL {
		t.Errorf("BaseURL mismatch: got %q, want %q", loadedCfg.BaseURL, testCfg.BaseURL)
	}
	if loadedCfg.DefaultSpace != "Docs" {
		t.Errorf("DefaultSpace mismatch: got %q", loadedCfg.DefaultSpace)
	}
	if loadedCfg.LogLevel != "debug" || loadedCfg.OutputFormat != "yaml" {
		t.Errorf("Unexpected level/format: %q/%q", loadedCfg.LogLevel, loadedCfg.OutputFormat)
	}
	if loadedCfg.ReferencesFile != "" {
		t.Errorf("ReferencesFile should stay empty, got %q", loadedCfg.ReferencesFile)
	}
}

func TestLoadKeepsDefaultsForMissingFields(t *testing.T) {
	testConfigPath := filepath.Join(t.TempDir(), "config.json")
	useConfigPath(t, testConfigPath)

	if err := os.WriteFile(testConfigPath, []byte(`{"base_url": "https://wiki.example.com"}`), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if cfg.DefaultSpace != "Main" || cfg.LogLevel != "info" || cfg.OutputFormat != "json" {
		t.Errorf("Defaults were not kept: %+v", cfg)
	}
}

func TestLoadInvalidConfig(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"malformed json", `{"log_level": `},
		{"invalid level", `{"log_level": "loud"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testConfigPath := filepath.Join(t.TempDir(), "config.json")
			useConfigPath(t, testConfigPath)

			if err := os.WriteFile(testConfigPath, []byte(tt.content), 0644); err != nil {
				t.Fatalf("Failed to write config: %v", err)
			}
			if _, err := Load(); err == nil {
				t.Error("Load() should fail")
			}
		})
	}
}

func TestLoadNonExistentConfig(t *testing.T) {
	useConfigPath(t, filepath.Join(t.TempDir(), "nonexistent.json"))

	// Load should return default config when file doesn't exist
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() should not error on missing file: %v", err)
	}

	if cfg.OutputFormat != "json" {
		t.Errorf("Expected default output format json, got %q", cfg.OutputFormat)
	}
}

func TestExpandPath(t *testing.T) {
	homeDir, _ := os.UserHomeDir()

	tests := []struct {
		name     string
		input    string
		contains string // The output should contain this
	}{
		{
			name:     "tilde expansion",
			input:    "~/test",
			contains: homeDir,
		},
		{
			name:     "tilde only",
			input:    "~",
			contains: homeDir,
		},
		{
			name:     "absolute path",
			input:    "/tmp/test",
			contains: "/tmp/test",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := expandPath(tt.input)
			if err != nil {
				t.Fatalf("expandPath() error = %v", err)
			}
			if !strings.Contains(result, tt.contains) {
				t.Errorf("expandPath(%q) = %q, want it to contain %q", tt.input, result, tt.contains)
			}
		})
	}
}

func TestConfigPathsExpanded(t *testing.T) {
	useConfigPath(t, filepath.Join(t.TempDir(), "config.json"))

	testCfg := DefaultConfig()
	testCfg.LogFile = "~/uniast.log"
	testCfg.ReferencesFile = "~/.config/uniast/references.yaml"

	if err := testCfg.Save(); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	loadedCfg, err := Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if loadedCfg.LogFile[0] == '~' {
		t.Error("LogFile was not expanded")
	}
	if loadedCfg.ReferencesFile[0] == '~' {
		t.Error("ReferencesFile was not expanded")
	}
}
