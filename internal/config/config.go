// Package config provides layered configuration for modkit using koanf.
// Values are loaded with priority: environment variables (MODKIT_*) >
// project config (.modkit/config.yml) > user config
// (~/.config/modkit/config.yml) > defaults. Both YAML and JSON config files
// are accepted; YAML wins when both exist at the same level.
//
// The package also owns the configuration record (config.sh) the installer
// writes for the shell dispatchers; see record.go.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Configuration holds the modkit CLI settings.
type Configuration struct {
	// BaseDir is the suite repository root. Empty means auto-detect
	// (enclosing git repository, falling back to the current directory).
	BaseDir string `koanf:"base_dir"`

	// ModulesDir is the directory of modules relative to BaseDir.
	ModulesDir string `koanf:"modules_dir" validate:"required"`

	// InstallEntry is the per-module install step filename.
	InstallEntry string `koanf:"install_entry" validate:"required"`

	// RunEntry is the per-module runtime entry point filename.
	RunEntry string `koanf:"run_entry" validate:"required"`

	// BinDir is the shared user-local binary directory for dispatchers and
	// module launchers. Supports ~ expansion.
	BinDir string `koanf:"bin_dir" validate:"required"`

	// Timeout bounds a single install step, in seconds. 0 = no timeout.
	Timeout int `koanf:"timeout" validate:"min=0"`

	// Jobs is the number of module installs run concurrently. 1 keeps the
	// strict sequential fail-fast ordering.
	Jobs int `koanf:"jobs" validate:"min=1,max=32"`

	// ShowProgress enables the spinner while an install step runs.
	ShowProgress bool `koanf:"show_progress"`
}

// LoadOptions configures how configuration is loaded.
type LoadOptions struct {
	// ProjectConfigPath overrides the project config path (for tests).
	ProjectConfigPath string
}

// Load loads configuration from all sources with default options.
func Load() (*Configuration, error) {
	return LoadWithOptions(LoadOptions{})
}

// LoadWithOptions loads configuration from defaults, user config, project
// config, and MODKIT_* environment variables, in increasing priority.
func LoadWithOptions(opts LoadOptions) (*Configuration, error) {
	k := koanf.New(".")

	for key, value := range GetDefaults() {
		_ = k.Set(key, value)
	}

	if err := loadUserConfig(k); err != nil {
		return nil, err
	}
	if err := loadProjectConfig(k, opts.ProjectConfigPath); err != nil {
		return nil, err
	}
	if err := k.Load(env.Provider("MODKIT_", ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("loading environment config: %w", err)
	}

	return finalize(k)
}

// loadUserConfig loads the user-level config file, preferring YAML over JSON.
func loadUserConfig(k *koanf.Koanf) error {
	yamlPath, err := UserConfigPath()
	if err != nil {
		return fmt.Errorf("resolving user config path: %w", err)
	}
	jsonPath, _ := UserJSONConfigPath()
	return loadLevel(k, "user", yamlPath, jsonPath)
}

// loadProjectConfig loads the project-level config file, preferring YAML
// over JSON. customPath, when set, replaces the YAML path.
func loadProjectConfig(k *koanf.Koanf, customPath string) error {
	yamlPath := ProjectConfigPath()
	if customPath != "" {
		yamlPath = customPath
	}
	return loadLevel(k, "project", yamlPath, ProjectJSONConfigPath())
}

// loadLevel loads one configuration level from its YAML or JSON file.
func loadLevel(k *koanf.Koanf, level, yamlPath, jsonPath string) error {
	if fileExists(yamlPath) {
		if err := ValidateYAMLSyntax(yamlPath); err != nil {
			return fmt.Errorf("validating %s config: %w", level, err)
		}
		if err := k.Load(file.Provider(yamlPath), yaml.Parser()); err != nil {
			return fmt.Errorf("loading %s config %s: %w", level, yamlPath, err)
		}
		return nil
	}
	if fileExists(jsonPath) {
		if err := k.Load(file.Provider(jsonPath), json.Parser()); err != nil {
			return fmt.Errorf("loading %s config %s: %w", level, jsonPath, err)
		}
	}
	return nil
}

// finalize unmarshals, validates, and expands paths.
func finalize(k *koanf.Koanf) (*Configuration, error) {
	var cfg Configuration
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := ValidateConfigValues(&cfg); err != nil {
		return nil, err
	}

	cfg.BaseDir = ExpandHomePath(cfg.BaseDir)
	cfg.BinDir = ExpandHomePath(cfg.BinDir)

	return &cfg, nil
}

// fileExists returns true if path exists and can be stat'd.
func fileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

// envTransform converts environment variable names to config keys.
// Example: MODKIT_INSTALL_ENTRY -> install_entry.
func envTransform(s string) string {
	return strings.ToLower(strings.TrimPrefix(s, "MODKIT_"))
}

// ExpandHomePath expands a leading ~/ to the user's home directory.
func ExpandHomePath(path string) string {
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(homeDir, path[2:])
		}
	}
	return path
}
