package cli

import (
	"modkit/internal/dispatch"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run <module> [args...]",
	Short: "Run a module's entry point",
	Long: `Run a module's runtime entry point (main.sh by default) with the
module's directory as working directory. Arguments after the module name are
passed through, and the module's exit code becomes modkit's exit code.

This is the Go twin of the installed 'pkg' dispatcher; it resolves the suite
location the same way (record, config, or enclosing git repository).

Examples:
  modkit run theme wallpaper-changed ~/Pictures/wall.png
  modkit run niri -- --help`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	base, err := resolveBaseDir(cmd, cfg, true)
	if err != nil {
		return err
	}

	d := &dispatch.Dispatcher{
		ModulesDir:   modulesDir(cfg, base),
		InstallEntry: cfg.InstallEntry,
		RunEntry:     cfg.RunEntry,
		BaseDir:      base,
		Stdin:        cmd.InOrStdin(),
		Stdout:       cmd.OutOrStdout(),
		Stderr:       cmd.ErrOrStderr(),
	}
	return d.Run(cmd.Context(), args[0], args[1:])
}
