package dispatch

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"modkit/internal/errors"
)

func newDispatcher(t *testing.T) (*Dispatcher, string) {
	t.Helper()
	baseDir := t.TempDir()
	modulesDir := filepath.Join(baseDir, "modules")
	require.NoError(t, os.MkdirAll(modulesDir, 0o755))
	return &Dispatcher{
		ModulesDir:   modulesDir,
		InstallEntry: "install.sh",
		RunEntry:     "main.sh",
		BaseDir:      baseDir,
		Stdout:       os.Stdout,
		Stderr:       os.Stderr,
	}, modulesDir
}

func addModule(t *testing.T, modulesDir, name, mainScript string) {
	t.Helper()
	dir := filepath.Join(modulesDir, name)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	if mainScript != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "main.sh"), []byte(mainScript), 0o644))
	}
}

func TestRun(t *testing.T) {
	t.Run("executes the entry from the module directory", func(t *testing.T) {
		d, modulesDir := newDispatcher(t)
		addModule(t, modulesDir, "tasks",
			"#!/bin/sh\nprintf '%s|%s|%s|%s' \"$(pwd)\" \"$PKG_BASE_DIR\" \"$MODKIT_MODULE\" \"$*\" > probe.txt\n")

		var out strings.Builder
		d.Stdout = &out
		d.Stderr = &out

		require.NoError(t, d.Run(context.Background(), "tasks", []string{"add", "buy milk"}))

		probe, err := os.ReadFile(filepath.Join(modulesDir, "tasks", "probe.txt"))
		require.NoError(t, err)
		parts := strings.Split(string(probe), "|")
		require.Len(t, parts, 4)
		assert.Equal(t, filepath.Join(modulesDir, "tasks"), parts[0])
		assert.Equal(t, d.BaseDir, parts[1])
		assert.Equal(t, "tasks", parts[2])
		assert.Equal(t, "add buy milk", parts[3])
	})

	t.Run("propagates the child exit code", func(t *testing.T) {
		d, modulesDir := newDispatcher(t)
		addModule(t, modulesDir, "tasks", "#!/bin/sh\nexit 42\n")

		err := d.Run(context.Background(), "tasks", nil)
		require.Error(t, err)

		var exitErr *ExitError
		require.ErrorAs(t, err, &exitErr)
		assert.Equal(t, 42, exitErr.Code)
		assert.Equal(t, "tasks", exitErr.ModuleName)
	})

	t.Run("unknown module lists the available ones", func(t *testing.T) {
		d, modulesDir := newDispatcher(t)
		addModule(t, modulesDir, "notes", "#!/bin/sh\n")
		addModule(t, modulesDir, "tasks", "#!/bin/sh\n")

		err := d.Run(context.Background(), "missing", nil)
		require.Error(t, err)

		var cliErr *errors.CLIError
		require.True(t, stderrors.As(err, &cliErr))
		assert.Equal(t, errors.Argument, cliErr.Category)
		assert.Contains(t, strings.Join(cliErr.Remediation, "\n"), "notes, tasks")
	})

	t.Run("module without a runtime entry", func(t *testing.T) {
		d, modulesDir := newDispatcher(t)
		addModule(t, modulesDir, "bare", "")

		err := d.Run(context.Background(), "bare", nil)
		require.Error(t, err)

		var cliErr *errors.CLIError
		require.True(t, stderrors.As(err, &cliErr))
		assert.Equal(t, errors.Prerequisite, cliErr.Category)
		assert.Contains(t, cliErr.Message, "main.sh")
	})

	t.Run("missing modules directory", func(t *testing.T) {
		d, modulesDir := newDispatcher(t)
		require.NoError(t, os.Remove(modulesDir))

		err := d.Run(context.Background(), "tasks", nil)
		require.Error(t, err)

		var cliErr *errors.CLIError
		require.True(t, stderrors.As(err, &cliErr))
		assert.Equal(t, errors.Prerequisite, cliErr.Category)
	})
}
