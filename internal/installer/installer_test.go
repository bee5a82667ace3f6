package installer

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"modkit/internal/config"
	"modkit/internal/errors"
	"modkit/internal/module"
	"modkit/internal/scripts"
)

// fakeRunner records install step invocations instead of spawning processes.
type fakeRunner struct {
	mu     sync.Mutex
	calls  []string
	dirs   []string
	failOn string
}

func (f *fakeRunner) RunStep(_ context.Context, m module.Module, _, _ io.Writer) error {
	f.mu.Lock()
	f.calls = append(f.calls, m.Name)
	f.dirs = append(f.dirs, m.Path)
	f.mu.Unlock()
	if m.Name == f.failOn {
		return fmt.Errorf("install.sh exited with status 1")
	}
	return nil
}

func (f *fakeRunner) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// fixture builds a suite layout in temp directories and an Installer whose
// every side effect lands inside them.
type fixture struct {
	baseDir    string
	modulesDir string
	binDir     string
	runner     *fakeRunner
	inst       *Installer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	t.Setenv(config.EnvConfigDir, t.TempDir())

	baseDir := t.TempDir()
	modulesDir := filepath.Join(baseDir, "modules")
	require.NoError(t, os.MkdirAll(modulesDir, 0o755))

	runner := &fakeRunner{}
	f := &fixture{
		baseDir:    baseDir,
		modulesDir: modulesDir,
		binDir:     filepath.Join(t.TempDir(), "bin"),
		runner:     runner,
	}
	f.inst = &Installer{
		BaseDir:      baseDir,
		ModulesDir:   modulesDir,
		BinDir:       f.binDir,
		InstallEntry: "install.sh",
		RunEntry:     "main.sh",
		Jobs:         1,
		Out:          io.Discard,
		ErrOut:       io.Discard,
		Steps:        runner,
	}
	return f
}

func (f *fixture) addModule(t *testing.T, name string, withInstall, withRun bool) {
	t.Helper()
	dir := filepath.Join(f.modulesDir, name)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	if withInstall {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "install.sh"), []byte("#!/bin/sh\n"), 0o644))
	}
	if withRun {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "main.sh"), []byte("#!/bin/sh\n"), 0o644))
	}
}

func TestRunInstallsEachModuleOnce(t *testing.T) {
	f := newFixture(t)
	f.addModule(t, "alpha", true, false)
	f.addModule(t, "beta", true, true)
	f.addModule(t, "gamma", false, true) // no install step, skipped

	results, err := f.inst.Run(context.Background())
	require.NoError(t, err)

	// One invocation per module with an install step, in listing order,
	// each pointed at the module's own directory.
	assert.Equal(t, []string{"alpha", "beta"}, f.runner.calls)
	assert.Equal(t, []string{
		filepath.Join(f.modulesDir, "alpha"),
		filepath.Join(f.modulesDir, "beta"),
	}, f.runner.dirs)

	require.Len(t, results, 3)
	assert.Equal(t, StatusInstalled, results[0].Status)
	assert.Equal(t, StatusInstalled, results[1].Status)
	assert.Equal(t, StatusSkipped, results[2].Status)
}

func TestRunFailFast(t *testing.T) {
	f := newFixture(t)
	f.addModule(t, "alpha", true, false)
	f.addModule(t, "beta", true, false)
	f.addModule(t, "gamma", true, false)
	f.runner.failOn = "beta"

	results, err := f.inst.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "beta")

	// gamma is never invoked once beta fails.
	assert.Equal(t, []string{"alpha", "beta"}, f.runner.calls)
	require.Len(t, results, 2)
	assert.Equal(t, StatusFailed, results[1].Status)

	// Neither the record nor the bin dir is touched after a failure.
	_, recErr := config.ReadRecord()
	assert.True(t, os.IsNotExist(recErr))
	_, statErr := os.Stat(f.binDir)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRunWritesRecord(t *testing.T) {
	f := newFixture(t)
	f.addModule(t, "alpha", true, false)

	_, err := f.inst.Run(context.Background())
	require.NoError(t, err)

	got, err := config.ReadRecord()
	require.NoError(t, err)
	assert.Equal(t, f.baseDir, got)
	assert.True(t, filepath.IsAbs(got))
}

func TestRunInstallsEntrypoints(t *testing.T) {
	f := newFixture(t)
	f.addModule(t, "tasks", true, true)
	f.addModule(t, "notes", false, true)
	f.addModule(t, "deps", true, false) // no run entry, no launcher

	_, err := f.inst.Run(context.Background())
	require.NoError(t, err)

	for _, name := range scripts.Names() {
		path := filepath.Join(f.binDir, name)
		info, err := os.Stat(path)
		require.NoError(t, err, "dispatcher %s", name)
		assert.NotZero(t, info.Mode()&0o111, "dispatcher %s must be executable", name)

		want, err := scripts.Get(name)
		require.NoError(t, err)
		got, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	for _, name := range []string{"tasks", "notes"} {
		path := filepath.Join(f.binDir, name)
		info, err := os.Stat(path)
		require.NoError(t, err, "launcher %s", name)
		assert.NotZero(t, info.Mode()&0o111)
		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(content), scripts.Marker)
		assert.Contains(t, string(content), "'"+name+"'")
	}

	_, err = os.Stat(filepath.Join(f.binDir, "deps"))
	assert.True(t, os.IsNotExist(err), "module without a runtime entry gets no launcher")
}

func TestRunIsIdempotent(t *testing.T) {
	f := newFixture(t)
	f.addModule(t, "alpha", true, true)

	_, err := f.inst.Run(context.Background())
	require.NoError(t, err)
	first := snapshotDir(t, f.binDir)
	firstRecord := snapshotFile(t, recordPath(t))

	_, err = f.inst.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, snapshotDir(t, f.binDir))
	assert.Equal(t, firstRecord, snapshotFile(t, recordPath(t)))
	assert.Equal(t, []string{"alpha", "alpha"}, f.runner.calls, "steps re-run on every invocation")
}

func TestRunCollision(t *testing.T) {
	t.Run("foreign file in bin dir aborts", func(t *testing.T) {
		f := newFixture(t)
		f.addModule(t, "alpha", true, true)
		require.NoError(t, os.MkdirAll(f.binDir, 0o755))
		foreign := filepath.Join(f.binDir, "pkg")
		require.NoError(t, os.WriteFile(foreign, []byte("#!/bin/sh\necho mine\n"), 0o755))

		_, err := f.inst.Run(context.Background())
		require.Error(t, err)

		var collision *CollisionError
		require.ErrorAs(t, err, &collision)
		assert.Equal(t, foreign, collision.Path)

		// The foreign file is left untouched.
		content, readErr := os.ReadFile(foreign)
		require.NoError(t, readErr)
		assert.Contains(t, string(content), "echo mine")
	})

	t.Run("module claiming a dispatcher name aborts", func(t *testing.T) {
		f := newFixture(t)
		f.addModule(t, "pkg", false, true)

		_, err := f.inst.Run(context.Background())
		require.Error(t, err)

		var collision *CollisionError
		require.ErrorAs(t, err, &collision)
		assert.Equal(t, filepath.Join(f.binDir, "pkg"), collision.Path)
		assert.Contains(t, collision.Reason, "reserved")

		// The dispatcher, installed first, is intact rather than replaced
		// by a launcher that would exec itself.
		want, err := scripts.Get("pkg")
		require.NoError(t, err)
		got, err := os.ReadFile(filepath.Join(f.binDir, "pkg"))
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("marker-owned file is overwritten", func(t *testing.T) {
		f := newFixture(t)
		f.addModule(t, "alpha", true, true)
		require.NoError(t, os.MkdirAll(f.binDir, 0o755))
		stale := filepath.Join(f.binDir, "alpha")
		require.NoError(t, os.WriteFile(stale,
			[]byte("#!/bin/sh\n"+scripts.Marker+"\nexec old-dispatcher alpha\n"), 0o755))

		_, err := f.inst.Run(context.Background())
		require.NoError(t, err)

		content, readErr := os.ReadFile(stale)
		require.NoError(t, readErr)
		assert.Equal(t, string(LauncherScript("alpha")), string(content))
	})
}

func TestRunMissingModulesDir(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, os.Remove(f.modulesDir))

	_, err := f.inst.Run(context.Background())
	require.Error(t, err)

	var cliErr *errors.CLIError
	require.True(t, stderrors.As(err, &cliErr))
	assert.Equal(t, errors.Prerequisite, cliErr.Category)
	assert.Contains(t, cliErr.Message, f.modulesDir)

	// Nothing was written.
	_, recErr := config.ReadRecord()
	assert.True(t, os.IsNotExist(recErr))
	_, statErr := os.Stat(f.binDir)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRunParallel(t *testing.T) {
	f := newFixture(t)
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		f.addModule(t, name, true, false)
	}
	f.addModule(t, "skipme", false, false)
	f.inst.Jobs = 3

	results, err := f.inst.Run(context.Background())
	require.NoError(t, err)

	// Every module with an install step runs exactly once, in any order.
	assert.ElementsMatch(t, []string{"a", "b", "c", "d", "e"}, f.runner.calls)

	// Results keep listing order regardless of completion order.
	require.Len(t, results, 6)
	var names []string
	for _, r := range results {
		names = append(names, r.Module.Name)
	}
	assert.Equal(t, []string{"a", "b", "c", "d", "e", "skipme"}, names)
	assert.Equal(t, StatusSkipped, results[5].Status)
}

func TestLauncherScript(t *testing.T) {
	script := string(LauncherScript("tasks"))
	assert.Contains(t, script, "#!/bin/sh")
	assert.Contains(t, script, scripts.Marker)
	assert.Contains(t, script, `'tasks' "$@"`)
}

// snapshotDir maps file name to content for every regular file in dir.
func snapshotDir(t *testing.T, dir string) map[string]string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	snap := make(map[string]string, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		snap[e.Name()] = snapshotFile(t, filepath.Join(dir, e.Name()))
	}
	return snap
}

func recordPath(t *testing.T) string {
	t.Helper()
	path, err := config.RecordPath()
	require.NoError(t, err)
	return path
}

func snapshotFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}
