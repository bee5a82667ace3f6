// Package dispatch executes a module's runtime entry point, mirroring what
// the installed shell dispatcher does: resolve the module under the suite
// base directory, change into it, and exec its entry point with the
// caller's arguments.
package dispatch

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"

	"modkit/internal/errors"
	"modkit/internal/module"
)

// ExitError carries a module's non-zero exit code up to main so it can be
// propagated verbatim as the process exit status.
type ExitError struct {
	ModuleName string
	Code       int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("module %s exited with status %d", e.ModuleName, e.Code)
}

// Dispatcher runs module entry points.
type Dispatcher struct {
	// ModulesDir is the directory containing modules.
	ModulesDir string
	// InstallEntry and RunEntry are the entry point filenames to probe.
	InstallEntry string
	RunEntry     string
	// BaseDir is exported to the child as PKG_BASE_DIR.
	BaseDir string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Run executes the named module's runtime entry point with the module
// directory as working directory, passing args through. The child's exit
// code is returned as an *ExitError so callers can propagate it.
func (d *Dispatcher) Run(ctx context.Context, name string, args []string) error {
	mods, err := module.Scan(d.ModulesDir, module.ScanOptions{
		InstallEntry: d.InstallEntry,
		RunEntry:     d.RunEntry,
	})
	if err != nil {
		if nf, ok := err.(*module.NotFoundError); ok {
			return errors.New(errors.Prerequisite,
				fmt.Sprintf("modules directory %s does not exist", nf.Dir),
				"Run 'modkit install' from your suite checkout first")
		}
		return errors.Wrap(err, errors.Prerequisite)
	}

	m, ok := module.Find(mods, name)
	if !ok {
		return errors.New(errors.Argument,
			fmt.Sprintf("unknown module %q", name),
			"Available modules: "+availableNames(mods),
			"Run 'modkit list' for details")
	}
	if !m.HasRunEntry {
		return errors.New(errors.Prerequisite,
			fmt.Sprintf("module %s has no runtime entry point (%s)", name, d.RunEntry),
			fmt.Sprintf("Create %s to make the module runnable", m.RunEntryPath(d.RunEntry)))
	}

	entry := m.RunEntryPath(d.RunEntry)
	cmd := exec.CommandContext(ctx, "sh", append([]string{entry}, args...)...)
	cmd.Dir = m.Path
	cmd.Stdin = d.Stdin
	cmd.Stdout = d.Stdout
	cmd.Stderr = d.Stderr
	cmd.Env = append(os.Environ(),
		"PKG_BASE_DIR="+d.BaseDir,
		"MODKIT_MODULE="+m.Name,
	)

	err = cmd.Run()
	if exitErr, ok := err.(*exec.ExitError); ok {
		return &ExitError{ModuleName: name, Code: exitErr.ExitCode()}
	}
	if err != nil {
		return errors.WrapWithMessage(err, errors.Runtime, "running module "+name)
	}
	return nil
}

func availableNames(mods []module.Module) string {
	names := make([]string, 0, len(mods))
	for _, m := range mods {
		names = append(names, m.Name)
	}
	sort.Strings(names)
	if len(names) == 0 {
		return "(none)"
	}
	return strings.Join(names, ", ")
}
