package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"modkit/internal/config"
	"modkit/internal/errors"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and initialize modkit configuration",
	Long: `Inspect and initialize modkit configuration.

Configuration is loaded with the following priority (highest to lowest):
  1. Environment variables (MODKIT_*)
  2. Project config (.modkit/config.yml)
  3. User config (` + "`<config-dir>/config.yml`" + `)
  4. Built-in defaults

The config directory defaults to the platform user configuration directory
and can be overridden with MODKIT_CONFIG_DIR.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "base_dir: %s\n", cfg.BaseDir)
		fmt.Fprintf(out, "modules_dir: %s\n", cfg.ModulesDir)
		fmt.Fprintf(out, "install_entry: %s\n", cfg.InstallEntry)
		fmt.Fprintf(out, "run_entry: %s\n", cfg.RunEntry)
		fmt.Fprintf(out, "bin_dir: %s\n", cfg.BinDir)
		fmt.Fprintf(out, "timeout: %d\n", cfg.Timeout)
		fmt.Fprintf(out, "jobs: %d\n", cfg.Jobs)
		fmt.Fprintf(out, "show_progress: %t\n", cfg.ShowProgress)
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file locations",
	RunE: func(cmd *cobra.Command, args []string) error {
		userPath, err := config.UserConfigPath()
		if err != nil {
			return errors.Wrap(err, errors.Configuration)
		}
		recordPath, err := config.RecordPath()
		if err != nil {
			return errors.Wrap(err, errors.Configuration)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "user config:    %s\n", userPath)
		fmt.Fprintf(out, "project config: %s\n", config.ProjectConfigPath())
		fmt.Fprintf(out, "record:         %s\n", recordPath)
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a commented default config file",
	Long: `Write the commented default configuration template to the user config
file. Refuses to overwrite an existing file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.UserConfigPath()
		if err != nil {
			return errors.Wrap(err, errors.Configuration)
		}
		if _, err := os.Stat(path); err == nil {
			return errors.New(errors.Configuration,
				fmt.Sprintf("config file already exists at %s", path),
				"Edit the existing file instead, or delete it and re-run 'modkit config init'")
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return errors.WrapWithMessage(err, errors.Configuration, "creating config directory")
		}
		if err := os.WriteFile(path, []byte(config.GetDefaultConfigTemplate()), 0o644); err != nil {
			return errors.WrapWithMessage(err, errors.Configuration, "writing config file")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}
