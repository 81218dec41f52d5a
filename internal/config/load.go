package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// appDir is the directory name under the user config directory.
const appDir = "midgard-pbr"

// Load builds the configuration from defaults, then the config file, then
// the command line, and validates the result.
func Load() (*Config, error) {
	cfg := Default()

	// --config wins over the search path
	path := ConfigPath()
	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		if err := loadFromFile(cfg, path); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", path, err)
		}
	}

	applyFlags(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// searchPaths lists where a config file is looked for, first match wins.
func searchPaths() []string {
	return []string{
		filepath.Join(".", FileName),
		filepath.Join(ConfigDir(), FileName),
	}
}

func findConfigFile() string {
	for _, path := range searchPaths() {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// ConfigDir returns the per-user config directory of the viewer. It falls
// back to the working directory when the OS reports none.
func ConfigDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		base = "."
	}
	dir, err := filepath.Abs(filepath.Join(base, appDir))
	if err != nil {
		return filepath.Join(base, appDir)
	}
	return dir
}

// loadFromFile merges the YAML file at path over cfg. Keys the viewer does
// not know are rejected so a typo does not silently fall back to a default.
// An empty file changes nothing.
func loadFromFile(cfg *Config, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
