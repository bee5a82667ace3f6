package installer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"modkit/internal/errors"
	"modkit/internal/module"
	"modkit/internal/scripts"
)

// CollisionError is returned when a destination in the shared bin directory
// cannot be claimed: the file exists but was not written by modkit, or a
// module claims a name reserved for the dispatchers. The bin directory is a
// shared mutable resource across modules; refusing to write turns the silent
// last-writer-wins hazard into a named failure.
type CollisionError struct {
	Path   string
	Owner  string // what modkit wanted to install there
	Reason string
}

func (e *CollisionError) Error() string {
	return fmt.Sprintf("refusing to install %s at %s: %s", e.Owner, e.Path, e.Reason)
}

// installEntrypoints copies the embedded dispatcher scripts into the bin
// directory and writes a launcher for every module with a runtime entry
// point. All writes are idempotent: modkit-owned destinations are
// overwritten wholesale, foreign files raise a CollisionError.
func (i *Installer) installEntrypoints(mods []module.Module) error {
	if err := os.MkdirAll(i.BinDir, 0o755); err != nil {
		return errors.WrapWithMessage(err, errors.Runtime, "creating bin directory")
	}

	for _, name := range scripts.Names() {
		content, err := scripts.Get(name)
		if err != nil {
			return errors.WrapWithMessage(err, errors.Runtime, "reading embedded dispatcher "+name)
		}
		if err := i.writeEntrypoint(filepath.Join(i.BinDir, name), content, "dispatcher "+name); err != nil {
			return err
		}
		fmt.Fprintf(i.Out, "Installed dispatcher %s\n", filepath.Join(i.BinDir, name))
	}

	for _, m := range mods {
		if !m.HasRunEntry {
			continue
		}
		dest := filepath.Join(i.BinDir, m.Name)
		// A launcher named after a dispatcher would replace it with a
		// script that execs itself.
		if reservedName(m.Name) {
			return errors.Wrap(&CollisionError{
				Path:   dest,
				Owner:  "launcher for module " + m.Name,
				Reason: fmt.Sprintf("%q is a reserved dispatcher name", m.Name),
			}, errors.Runtime,
				fmt.Sprintf("Rename the module directory %s", m.Path))
		}
		if err := i.writeEntrypoint(dest, LauncherScript(m.Name), "launcher for module "+m.Name); err != nil {
			return err
		}
		fmt.Fprintf(i.Out, "Installed launcher %s\n", dest)
	}
	return nil
}

// reservedName reports whether name is one of the dispatcher script names.
func reservedName(name string) bool {
	for _, s := range scripts.Names() {
		if name == s {
			return true
		}
	}
	return false
}

// writeEntrypoint writes content to dest with the executable bit set,
// first verifying any existing file is modkit-owned.
func (i *Installer) writeEntrypoint(dest string, content []byte, owner string) error {
	existing, err := os.ReadFile(dest)
	switch {
	case err == nil:
		if !strings.Contains(string(existing), scripts.Marker) {
			return errors.Wrap(&CollisionError{
				Path:   dest,
				Owner:  owner,
				Reason: "file exists and was not installed by modkit",
			}, errors.Runtime,
				fmt.Sprintf("Move or delete %s if it is no longer needed", dest),
				"Or set bin_dir to a different directory in the modkit config")
		}
	case !os.IsNotExist(err):
		return errors.WrapWithMessage(err, errors.Runtime, "checking "+dest)
	}

	if err := os.WriteFile(dest, content, 0o755); err != nil {
		return errors.WrapWithMessage(err, errors.Runtime, "installing "+owner)
	}
	// WriteFile only applies the mode on creation; pre-existing files keep
	// their old mode, so set it explicitly.
	if err := os.Chmod(dest, 0o755); err != nil {
		return errors.WrapWithMessage(err, errors.Runtime, "marking "+dest+" executable")
	}
	return nil
}

// LauncherScript returns the generated launcher for a module. The launcher
// resolves the dispatcher from its own directory so it works regardless of
// PATH ordering.
func LauncherScript(name string) []byte {
	return []byte(fmt.Sprintf(`#!/bin/sh
%s
# Launcher for module '%s'.
exec "$(dirname "$0")/pkg" '%s' "$@"
`, scripts.Marker, name, name))
}
