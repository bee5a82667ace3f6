package config

import (
	"os"
	"path/filepath"
)

// EnvConfigDir overrides the configuration directory location when set.
const EnvConfigDir = "MODKIT_CONFIG_DIR"

// Dir returns the modkit configuration directory. The MODKIT_CONFIG_DIR
// environment variable takes precedence; otherwise the platform user config
// directory is used (XDG on Linux, Application Support on macOS).
func Dir() (string, error) {
	if dir := os.Getenv(EnvConfigDir); dir != "" {
		return dir, nil
	}
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "modkit"), nil
}

// UserConfigPath returns the path to the user-level config file
// (e.g. ~/.config/modkit/config.yml on Linux).
func UserConfigPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yml"), nil
}

// UserJSONConfigPath returns the JSON variant of the user-level config file.
// YAML takes precedence when both exist.
func UserJSONConfigPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// ProjectConfigPath returns the project-level config file path, always
// .modkit/config.yml relative to the current directory.
func ProjectConfigPath() string {
	return filepath.Join(".modkit", "config.yml")
}

// ProjectJSONConfigPath returns the JSON variant of the project config file.
func ProjectJSONConfigPath() string {
	return filepath.Join(".modkit", "config.json")
}

// RecordPath returns the path of the configuration record written by the
// installer and consumed by the installed dispatcher scripts.
func RecordPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.sh"), nil
}

// DefaultBinDir returns the user-local binary directory dispatchers are
// installed into.
func DefaultBinDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".local", "bin")
	}
	return filepath.Join(home, ".local", "bin")
}
