package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// RecordKey is the key the dispatchers read from the configuration record.
const RecordKey = "PKG_BASE_DIR"

// WriteRecord persists the suite base directory to the configuration record,
// overwriting the file wholesale. The record is a single shell-sourceable
// line (PKG_BASE_DIR=<abs path>) so the installed dispatchers can consume it
// without parsing machinery. Writing is idempotent: repeated calls with the
// same base directory produce byte-identical files.
func WriteRecord(baseDir string) (string, error) {
	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return "", fmt.Errorf("resolving base directory: %w", err)
	}

	path, err := RecordPath()
	if err != nil {
		return "", fmt.Errorf("resolving record path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("creating config directory: %w", err)
	}

	content := fmt.Sprintf("%s=%s\n", RecordKey, abs)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("writing record %s: %w", path, err)
	}
	return path, nil
}

// ReadRecord returns the base directory stored in the configuration record.
// Blank lines and comment lines are tolerated for forward compatibility.
func ReadRecord() (string, error) {
	path, err := RecordPath()
	if err != nil {
		return "", fmt.Errorf("resolving record path: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if value, ok := strings.CutPrefix(line, RecordKey+"="); ok {
			return strings.TrimSpace(value), nil
		}
	}
	return "", fmt.Errorf("record %s has no %s entry", path, RecordKey)
}
