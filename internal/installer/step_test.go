package installer

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"modkit/internal/module"
)

func writeStepModule(t *testing.T, script string) module.Module {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "mod")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	// Written without the exec bit on purpose; RunStep must set it.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "install.sh"), []byte(script), 0o644))
	return module.Module{Name: "mod", Path: dir, HasInstallStep: true}
}

func TestExecStepRunner(t *testing.T) {
	t.Run("runs from the module directory with module env", func(t *testing.T) {
		m := writeStepModule(t, "#!/bin/sh\npwd > probe.txt\necho \"$MODKIT_MODULE\" >> probe.txt\n")
		r := &execStepRunner{InstallEntry: "install.sh"}

		var out, errOut strings.Builder
		require.NoError(t, r.RunStep(context.Background(), m, &out, &errOut))

		probe, err := os.ReadFile(filepath.Join(m.Path, "probe.txt"))
		require.NoError(t, err)
		lines := strings.Split(strings.TrimSpace(string(probe)), "\n")
		require.Len(t, lines, 2)
		assert.Equal(t, m.Path, lines[0], "step must run with cwd inside the module")
		assert.Equal(t, "mod", lines[1])
	})

	t.Run("marks the install step executable", func(t *testing.T) {
		m := writeStepModule(t, "#!/bin/sh\nexit 0\n")
		r := &execStepRunner{InstallEntry: "install.sh"}

		var out strings.Builder
		require.NoError(t, r.RunStep(context.Background(), m, &out, &out))

		info, err := os.Stat(m.InstallStepPath("install.sh"))
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())
	})

	t.Run("runs shebang-less scripts via sh", func(t *testing.T) {
		m := writeStepModule(t, "echo plain > probe.txt\n")
		r := &execStepRunner{InstallEntry: "install.sh"}

		var out strings.Builder
		require.NoError(t, r.RunStep(context.Background(), m, &out, &out))

		probe, err := os.ReadFile(filepath.Join(m.Path, "probe.txt"))
		require.NoError(t, err)
		assert.Equal(t, "plain\n", string(probe))
	})

	t.Run("propagates the exit status", func(t *testing.T) {
		m := writeStepModule(t, "#!/bin/sh\nexit 7\n")
		r := &execStepRunner{InstallEntry: "install.sh"}

		var out strings.Builder
		err := r.RunStep(context.Background(), m, &out, &out)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "status 7")
	})

	t.Run("streams step output", func(t *testing.T) {
		m := writeStepModule(t, "#!/bin/sh\necho hello\necho oops >&2\n")
		r := &execStepRunner{InstallEntry: "install.sh"}

		var out, errOut strings.Builder
		require.NoError(t, r.RunStep(context.Background(), m, &out, &errOut))
		assert.Equal(t, "hello\n", out.String())
		assert.Equal(t, "oops\n", errOut.String())
	})

	t.Run("enforces the timeout", func(t *testing.T) {
		m := writeStepModule(t, "#!/bin/sh\nsleep 10\n")
		r := &execStepRunner{InstallEntry: "install.sh", Timeout: 100 * time.Millisecond}

		var out strings.Builder
		err := r.RunStep(context.Background(), m, &out, &out)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "timed out")
	})
}

func TestLockedBuffer(t *testing.T) {
	var buf lockedBuffer
	_, err := buf.Write([]byte("a"))
	require.NoError(t, err)
	_, err = buf.Write([]byte("b"))
	require.NoError(t, err)

	got := buf.Bytes()
	assert.Equal(t, []byte("ab"), got)

	// Bytes returns a copy; later writes do not alias it.
	_, err = buf.Write([]byte("c"))
	require.NoError(t, err)
	assert.Equal(t, []byte("ab"), got)
}
