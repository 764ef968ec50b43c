package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up in the working and config directories.
const FileName = "rosetool.yaml"

// fileNames are tried in order in each search directory.
var fileNames = []string{FileName, "rosetool.yml"}

// Load builds the config from defaults, then the first config file found
// (or the one named by -config), then flags, and validates the result.
func Load() (*Config, error) {
	cfg := Default()

	source := ConfigPath()
	if source == "" {
		source = findConfigFile()
	}
	if source != "" {
		if err := loadFromFile(cfg, source); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", source, err)
		}
	}

	applyFlags(cfg)

	if err := cfg.Validate(); err != nil {
		if source == "" {
			return nil, fmt.Errorf("invalid flags: %w", err)
		}
		return nil, fmt.Errorf("invalid config (%s + flags): %w", source, err)
	}
	return cfg, nil
}

// findConfigFile returns the first rosetool.yaml or rosetool.yml in the
// working directory, then in ConfigDir.
func findConfigFile() string {
	for _, dir := range []string{".", ConfigDir()} {
		for _, name := range fileNames {
			path := filepath.Join(dir, name)
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				return path
			}
		}
	}
	return ""
}

// ConfigDir returns the OS-appropriate config directory.
func ConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "RoseIO")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "RoseIO")
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "rose-io")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "rose-io")
	}
}

// loadFromFile merges a YAML file over the values already in cfg. Unknown
// keys are rejected so a misspelt setting does not silently fall back to
// its default. An empty file changes nothing.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
