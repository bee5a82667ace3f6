package installer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"

	"modkit/internal/module"
)

// StepRunner executes a single module's install step.
type StepRunner interface {
	// RunStep runs the module's install step with the module directory as
	// working directory, writing step output to stdout/stderr.
	RunStep(ctx context.Context, m module.Module, stdout, stderr io.Writer) error
}

// execStepRunner runs install steps as real subprocesses.
type execStepRunner struct {
	InstallEntry string
	// Timeout bounds one step. Zero waits unboundedly.
	Timeout time.Duration
}

// RunStep marks the install step executable and runs it through sh from the
// module's own directory, inheriting the environment plus MODKIT_MODULE.
// Running via sh matches the runtime dispatchers, so shebang-less scripts
// behave the same under install and run. A non-zero exit status is returned
// as an error for the caller to propagate (fail-fast).
func (r *execStepRunner) RunStep(ctx context.Context, m module.Module, stdout, stderr io.Writer) error {
	entry := m.InstallStepPath(r.InstallEntry)

	if err := os.Chmod(entry, 0o755); err != nil {
		return fmt.Errorf("marking %s executable: %w", entry, err)
	}

	cancel := context.CancelFunc(func() {})
	if r.Timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
	}
	defer cancel()

	cmd := exec.CommandContext(ctx, "sh", entry)
	cmd.Dir = m.Path
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	cmd.Env = append(os.Environ(), "MODKIT_MODULE="+m.Name)

	err := cmd.Run()
	if ctx.Err() == context.DeadlineExceeded {
		return fmt.Errorf("install step for %s timed out after %s", m.Name, r.Timeout)
	}
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return fmt.Errorf("%s exited with status %d", r.InstallEntry, exitErr.ExitCode())
		}
		return fmt.Errorf("running %s: %w", entry, err)
	}
	return nil
}

// lockedBuffer is a mutex-guarded bytes.Buffer used to capture step output
// when the spinner display is active or steps run concurrently.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return bytes.Clone(b.buf.Bytes())
}
