// Package module discovers suite modules by scanning the modules directory.
// A module is nothing more than a subdirectory; its only attributes are the
// presence of an install step and of a runtime entry point.
package module

import (
	"fmt"
	"os"
	"path/filepath"
)

// Module is one discovered module.
type Module struct {
	// Name is the module's directory name.
	Name string
	// Path is the absolute path to the module directory.
	Path string
	// HasInstallStep reports whether the install entry file exists.
	HasInstallStep bool
	// HasRunEntry reports whether the runtime entry point file exists.
	HasRunEntry bool
}

// InstallStepPath returns the path of the module's install step file.
// The file is only guaranteed to exist when HasInstallStep is true.
func (m Module) InstallStepPath(installEntry string) string {
	return filepath.Join(m.Path, installEntry)
}

// RunEntryPath returns the path of the module's runtime entry point.
func (m Module) RunEntryPath(runEntry string) string {
	return filepath.Join(m.Path, runEntry)
}

// NotFoundError is returned by Scan when the modules directory is missing.
type NotFoundError struct {
	Dir string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no modules found: directory %s does not exist", e.Dir)
}

// ScanOptions names the per-module entry point files to probe for.
type ScanOptions struct {
	InstallEntry string
	RunEntry     string
}

// Scan lists the immediate subdirectories of modulesDir as modules.
// Non-directory entries are ignored. Modules are returned sorted by name,
// which fixes the install order. A missing modulesDir yields a
// *NotFoundError.
func Scan(modulesDir string, opts ScanOptions) ([]Module, error) {
	info, err := os.Stat(modulesDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &NotFoundError{Dir: modulesDir}
		}
		return nil, fmt.Errorf("reading modules directory %s: %w", modulesDir, err)
	}
	if !info.IsDir() {
		return nil, &NotFoundError{Dir: modulesDir}
	}

	entries, err := os.ReadDir(modulesDir)
	if err != nil {
		return nil, fmt.Errorf("reading modules directory %s: %w", modulesDir, err)
	}

	abs, err := filepath.Abs(modulesDir)
	if err != nil {
		return nil, fmt.Errorf("resolving modules directory %s: %w", modulesDir, err)
	}

	var mods []Module
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		path := filepath.Join(abs, entry.Name())
		mods = append(mods, Module{
			Name:           entry.Name(),
			Path:           path,
			HasInstallStep: fileExists(filepath.Join(path, opts.InstallEntry)),
			HasRunEntry:    fileExists(filepath.Join(path, opts.RunEntry)),
		})
	}
	return mods, nil
}

// Find returns the module with the given name, or false if absent.
func Find(mods []Module, name string) (Module, bool) {
	for _, m := range mods {
		if m.Name == name {
			return m, true
		}
	}
	return Module{}, false
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
