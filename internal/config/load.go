package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// EnvConfig names a config file when --config is not given.
const EnvConfig = "RAILVIEW_CONFIG"

// Load loads configuration with priority: defaults < file < flags.
// The file is --config, then $RAILVIEW_CONFIG, then the first of
// ./railview.yaml, ./config.yaml and the user config dir that exists.
func Load() (*Config, error) {
	cfg := Default()

	if path := configPath(); path != "" {
		if err := loadFromFile(cfg, path); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", path, err)
		}
	}

	// Flags win over the file. Their paths stay relative to the working dir.
	applyFlags(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func configPath() string {
	if p := ConfigPath(); p != "" {
		return p
	}
	if p := os.Getenv(EnvConfig); p != "" {
		return p
	}
	return findConfigFile()
}

// findConfigFile looks for config in standard locations.
func findConfigFile() string {
	candidates := []string{
		"./railview.yaml",
		"./config.yaml",
		filepath.Join(ConfigDir(), "config.yaml"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ConfigDir returns the OS-appropriate config directory.
func ConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "Railview")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "Railview")
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "railview")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "railview")
	}
}

// loadFromFile merges a YAML file into cfg. Unknown keys are errors. Data
// paths the file sets are resolved against the file's directory, so a
// config next to its scene works from any working directory.
func loadFromFile(cfg *Config, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	before := cfg.Data
	before.TextureDirs = slices.Clone(before.TextureDirs)

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}

	base := filepath.Dir(path)
	if cfg.Data.SceneFile != before.SceneFile {
		cfg.Data.SceneFile = resolvePath(cfg.Data.SceneFile, base)
	}
	if !slices.Equal(cfg.Data.TextureDirs, before.TextureDirs) {
		for i, dir := range cfg.Data.TextureDirs {
			cfg.Data.TextureDirs[i] = resolvePath(dir, base)
		}
	}
	cfg.Source = path
	return nil
}

// resolvePath expands a leading ~ and joins relative paths onto base.
func resolvePath(p, base string) string {
	if p == "" {
		return ""
	}
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, p[1:])
		}
	}
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}
