// Package installer implements the module install pipeline: scan the
// modules directory, run each module's install step in its own directory
// with fail-fast semantics, write the configuration record, and place the
// dispatcher scripts and module launchers into the shared bin directory.
package installer

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"modkit/internal/config"
	"modkit/internal/errors"
	"modkit/internal/module"
	"modkit/internal/output"
	"modkit/internal/progress"
)

// Status is the outcome of processing one module.
type Status string

const (
	StatusInstalled Status = "installed"
	StatusSkipped   Status = "skipped"
	StatusFailed    Status = "failed"
)

// Result records the outcome for one module.
type Result struct {
	Module module.Module
	Status Status
	Err    error
}

// Installer orchestrates one install run. Destination paths are explicit
// fields rather than globals so tests can point every side effect at a
// temp directory.
type Installer struct {
	// BaseDir is the suite repository root recorded in the config record.
	BaseDir string
	// ModulesDir is the directory scanned for modules.
	ModulesDir string
	// BinDir is the shared user-local binary directory.
	BinDir string
	// InstallEntry and RunEntry are the per-module entry point filenames.
	InstallEntry string
	RunEntry     string
	// Jobs is the number of install steps run concurrently (1 = sequential).
	Jobs int
	// Out receives status lines; ErrOut receives step error output.
	Out    io.Writer
	ErrOut io.Writer
	// Display is the optional spinner display. When set, step output is
	// buffered and only dumped on failure; when nil, output streams live.
	Display *progress.Display

	// Steps runs a single module's install step. Replaceable in tests.
	Steps StepRunner
}

// New builds an Installer from configuration. baseDir must already be
// resolved (see cli.ResolveBaseDir).
func New(cfg *config.Configuration, baseDir, modulesDir string) *Installer {
	return &Installer{
		BaseDir:      baseDir,
		ModulesDir:   modulesDir,
		BinDir:       cfg.BinDir,
		InstallEntry: cfg.InstallEntry,
		RunEntry:     cfg.RunEntry,
		Jobs:         cfg.Jobs,
		Out:          os.Stdout,
		ErrOut:       os.Stderr,
		Steps: &execStepRunner{
			InstallEntry: cfg.InstallEntry,
			Timeout:      time.Duration(cfg.Timeout) * time.Second,
		},
	}
}

// Run executes the full install pipeline. Any failing install step aborts
// the run before the record or entrypoints are touched; side effects of
// modules that already completed are not rolled back.
func (i *Installer) Run(ctx context.Context) ([]Result, error) {
	mods, err := module.Scan(i.ModulesDir, module.ScanOptions{
		InstallEntry: i.InstallEntry,
		RunEntry:     i.RunEntry,
	})
	if err != nil {
		return nil, i.scanError(err)
	}

	var results []Result
	if i.Jobs > 1 {
		results, err = i.runParallel(ctx, mods)
	} else {
		results, err = i.runSequential(ctx, mods)
	}
	if err != nil {
		return results, err
	}

	recordPath, err := config.WriteRecord(i.BaseDir)
	if err != nil {
		return results, errors.WrapWithMessage(err, errors.Runtime, "writing configuration record")
	}
	fmt.Fprintf(i.Out, "\nRecorded %s in %s\n", config.RecordKey, recordPath)

	if err := i.installEntrypoints(mods); err != nil {
		return results, err
	}

	installed, skipped := tally(results)
	output.PrintSummary(i.Out, installed, skipped)
	return results, nil
}

// runSequential processes modules one at a time in listing order.
// No module after a failing one is invoked.
func (i *Installer) runSequential(ctx context.Context, mods []module.Module) ([]Result, error) {
	results := make([]Result, 0, len(mods))
	for n, m := range mods {
		output.PrintModuleHeader(i.Out, n+1, len(mods), m.Name)

		if !m.HasInstallStep {
			output.PrintSkipped(i.Out, m.Name, "no "+i.InstallEntry)
			results = append(results, Result{Module: m, Status: StatusSkipped})
			continue
		}

		if err := i.runStep(ctx, m, n+1, len(mods)); err != nil {
			output.PrintFailed(i.Out, m.Name, err)
			results = append(results, Result{Module: m, Status: StatusFailed, Err: err})
			return results, errors.WrapWithMessage(err, errors.Runtime,
				fmt.Sprintf("module %s install step failed", m.Name))
		}

		output.PrintInstalled(i.Out, m.Name)
		results = append(results, Result{Module: m, Status: StatusInstalled})
	}
	return results, nil
}

// runStep executes one module's install step, with the spinner display and
// output buffering when a Display is configured.
func (i *Installer) runStep(ctx context.Context, m module.Module, num, total int) error {
	if i.Display == nil {
		return i.Steps.RunStep(ctx, m, i.Out, i.ErrOut)
	}

	var buf lockedBuffer
	i.Display.Start(m.Name, num, total)
	err := i.Steps.RunStep(ctx, m, &buf, &buf)
	if err != nil {
		i.Display.Fail(m.Name)
		// Dump the buffered step output so the failure is diagnosable.
		if out := buf.Bytes(); len(out) > 0 {
			i.ErrOut.Write(out)
			output.PrintStepOutputEnd(i.ErrOut)
		}
		return err
	}
	i.Display.Complete(m.Name)
	return nil
}

// scanError converts a scan failure into a categorized CLI error.
func (i *Installer) scanError(err error) error {
	if nf, ok := err.(*module.NotFoundError); ok {
		return errors.New(errors.Prerequisite,
			fmt.Sprintf("no modules found: %s does not exist", nf.Dir),
			fmt.Sprintf("Create it with: mkdir -p %s", nf.Dir),
			"Add a module by creating a subdirectory with an "+i.InstallEntry+" script",
			"Or point modkit at your suite checkout with --base or base_dir in the config")
	}
	return errors.Wrap(err, errors.Prerequisite)
}

func tally(results []Result) (installed, skipped int) {
	for _, r := range results {
		switch r.Status {
		case StatusInstalled:
			installed++
		case StatusSkipped:
			skipped++
		}
	}
	return installed, skipped
}
