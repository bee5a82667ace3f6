// Package cli defines the modkit command tree.
package cli

import (
	"modkit/internal/errors"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "modkit",
	Short: "Install and run a personal suite of command-line modules",
	Long: `modkit manages a repository of self-contained command-line modules.

Each module is a subdirectory of <base>/modules/ that may carry an install
step (install.sh) and a runtime entry point (main.sh). 'modkit install' runs
every module's install step, records the suite location, and places the
dispatcher scripts into your user-local bin directory.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	rootCmd.PersistentFlags().String("base", "", "Suite base directory (default: config, record, or enclosing git repo)")
	rootCmd.PersistentFlags().String("config", "", "Project config file path (default: .modkit/config.yml)")
}

// Execute runs the CLI. Errors are formatted to stderr here so main only
// has to translate them into an exit code.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		errors.Print(err)
	}
	return err
}
