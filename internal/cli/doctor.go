package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"modkit/internal/config"
	"modkit/internal/errors"
	"modkit/internal/module"
	"modkit/internal/scripts"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check that the suite is installed and consistent",
	Long: `Check the installed state of the suite: the configuration record, the
dispatcher scripts, per-module launchers, and whether the bin directory is
on PATH. Exits non-zero when any check fails.`,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

// check is one doctor probe result.
type check struct {
	name string
	ok   bool
	note string
}

func runDoctor(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	base, err := resolveBaseDir(cmd, cfg, true)
	if err != nil {
		return err
	}

	checks := []check{
		checkModulesDir(cfg, base),
		checkRecord(base),
		checkPath(cfg.BinDir),
	}
	checks = append(checks, checkDispatchers(cfg.BinDir)...)
	checks = append(checks, checkLaunchers(cfg, base)...)

	failed := printChecks(cmd.OutOrStdout(), checks)
	if failed > 0 {
		return errors.Newf(errors.Prerequisite, "%d of %d checks failed", failed, len(checks))
	}
	fmt.Fprintln(cmd.OutOrStdout(), "\nAll checks passed")
	return nil
}

func printChecks(out io.Writer, checks []check) int {
	green := color.New(color.FgGreen, color.Bold).SprintFunc()
	red := color.New(color.FgRed, color.Bold).SprintFunc()

	failed := 0
	for _, c := range checks {
		symbol := green("✓")
		if !c.ok {
			symbol = red("✗")
			failed++
		}
		line := fmt.Sprintf("%s %s", symbol, c.name)
		if c.note != "" {
			line += " (" + c.note + ")"
		}
		fmt.Fprintln(out, line)
	}
	return failed
}

func checkModulesDir(cfg *config.Configuration, base string) check {
	dir := modulesDir(cfg, base)
	mods, err := module.Scan(dir, module.ScanOptions{
		InstallEntry: cfg.InstallEntry,
		RunEntry:     cfg.RunEntry,
	})
	if err != nil {
		return check{name: "modules directory " + dir, note: err.Error()}
	}
	return check{name: "modules directory " + dir, ok: true, note: fmt.Sprintf("%d modules", len(mods))}
}

func checkRecord(base string) check {
	recorded, err := config.ReadRecord()
	if err != nil {
		return check{name: "configuration record", note: "missing; run 'modkit install'"}
	}
	if recorded != base {
		return check{name: "configuration record", note: fmt.Sprintf("records %s, expected %s", recorded, base)}
	}
	return check{name: "configuration record", ok: true}
}

func checkPath(binDir string) check {
	for _, dir := range filepath.SplitList(os.Getenv("PATH")) {
		if dir == binDir {
			return check{name: "bin directory on PATH", ok: true, note: binDir}
		}
	}
	return check{name: "bin directory on PATH", note: binDir + " not in PATH"}
}

// checkDispatchers verifies each installed dispatcher is byte-identical to
// its embedded copy, so doctor flags stale installs after a modkit upgrade.
func checkDispatchers(binDir string) []check {
	var checks []check
	for _, name := range scripts.Names() {
		want, err := scripts.Get(name)
		if err != nil {
			checks = append(checks, check{name: "dispatcher " + name, note: err.Error()})
			continue
		}
		dest := filepath.Join(binDir, name)
		got, err := os.ReadFile(dest)
		switch {
		case os.IsNotExist(err):
			checks = append(checks, check{name: "dispatcher " + name, note: "not installed; run 'modkit install'"})
		case err != nil:
			checks = append(checks, check{name: "dispatcher " + name, note: err.Error()})
		case !bytes.Equal(got, want):
			checks = append(checks, check{name: "dispatcher " + name, note: "outdated; run 'modkit install'"})
		default:
			checks = append(checks, check{name: "dispatcher " + name, ok: true})
		}
	}
	return checks
}

func checkLaunchers(cfg *config.Configuration, base string) []check {
	mods, err := module.Scan(modulesDir(cfg, base), module.ScanOptions{
		InstallEntry: cfg.InstallEntry,
		RunEntry:     cfg.RunEntry,
	})
	if err != nil {
		return nil // already reported by checkModulesDir
	}

	var checks []check
	for _, m := range mods {
		if !m.HasRunEntry {
			continue
		}
		dest := filepath.Join(cfg.BinDir, m.Name)
		data, err := os.ReadFile(dest)
		switch {
		case os.IsNotExist(err):
			checks = append(checks, check{name: "launcher " + m.Name, note: "not installed; run 'modkit install'"})
		case err != nil:
			checks = append(checks, check{name: "launcher " + m.Name, note: err.Error()})
		case !strings.Contains(string(data), scripts.Marker):
			checks = append(checks, check{name: "launcher " + m.Name, note: "foreign file at " + dest})
		default:
			checks = append(checks, check{name: "launcher " + m.Name, ok: true})
		}
	}
	return checks
}
