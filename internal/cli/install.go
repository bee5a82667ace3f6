package cli

import (
	"modkit/internal/installer"
	"modkit/internal/progress"

	"github.com/spf13/cobra"
)

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Run every module's install step and install the dispatchers",
	Long: `Run the module installer.

Scans <base>/modules/ and, for each subdirectory containing an install step
(install.sh by default), marks it executable and runs it from the module's
own directory. Modules without an install step are skipped. The first
failing step aborts the run; modules after it are not processed and prior
modules are not rolled back.

On success the suite location is recorded for the shell dispatchers and the
dispatcher scripts plus per-module launchers are copied into the user-local
bin directory.

Examples:
  # Install from the enclosing suite checkout
  modkit install

  # Install a specific checkout with four concurrent module installs
  modkit install --base ~/src/scripts --jobs 4

  # Keep watching the modules directory and re-install on changes
  modkit install --watch`,
	RunE: runInstall,
}

func init() {
	rootCmd.AddCommand(installCmd)

	installCmd.Flags().IntP("jobs", "j", 0, "Concurrent module installs (0 = use config, 1 = sequential)")
	installCmd.Flags().Bool("watch", false, "Re-run the installer when module contents change")
	installCmd.Flags().Bool("no-progress", false, "Disable the spinner and stream install step output")
}

func runInstall(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if jobs, _ := cmd.Flags().GetInt("jobs"); jobs > 0 {
		cfg.Jobs = jobs
	}
	if noProgress, _ := cmd.Flags().GetBool("no-progress"); noProgress {
		cfg.ShowProgress = false
	}

	base, err := resolveBaseDir(cmd, cfg, false)
	if err != nil {
		return err
	}

	inst := installer.New(cfg, base, modulesDir(cfg, base))
	inst.Out = cmd.OutOrStdout()
	inst.ErrOut = cmd.ErrOrStderr()

	caps := progress.DetectTerminalCapabilities()
	if cfg.ShowProgress && caps.IsTTY {
		inst.Display = progress.NewDisplay(inst.Out, caps)
	}

	if watch, _ := cmd.Flags().GetBool("watch"); watch {
		watcher, err := installer.NewWatcher(inst)
		if err != nil {
			return err
		}
		defer watcher.Close()
		return watcher.Watch(cmd.Context())
	}

	if _, err := inst.Run(cmd.Context()); err != nil {
		return err
	}
	return nil
}
