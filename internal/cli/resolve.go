package cli

import (
	"os"
	"path/filepath"

	"modkit/internal/config"
	"modkit/internal/errors"
	"modkit/internal/gitutil"

	"github.com/spf13/cobra"
)

// loadConfig loads configuration honoring the --config flag.
func loadConfig(cmd *cobra.Command) (*config.Configuration, error) {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadWithOptions(config.LoadOptions{ProjectConfigPath: configPath})
	if err != nil {
		return nil, errors.Wrap(err, errors.Configuration,
			"Check the syntax of your config file",
			"Run 'modkit config path' to see which files are consulted")
	}
	return cfg, nil
}

// resolveBaseDir determines the suite base directory. Priority:
// --base flag > base_dir config > configuration record (when useRecord) >
// enclosing git repository root > current directory.
//
// The installer does not consult the record: installing is what defines it,
// and a stale record must not shadow the checkout the user is standing in.
func resolveBaseDir(cmd *cobra.Command, cfg *config.Configuration, useRecord bool) (string, error) {
	if base, _ := cmd.Flags().GetString("base"); base != "" {
		return filepath.Abs(config.ExpandHomePath(base))
	}
	if cfg.BaseDir != "" {
		return filepath.Abs(cfg.BaseDir)
	}
	if useRecord {
		if base, err := config.ReadRecord(); err == nil {
			return base, nil
		}
	}
	if root, err := gitutil.RepoRoot(""); err == nil {
		return root, nil
	}
	return os.Getwd()
}

// modulesDir returns the modules directory under base.
func modulesDir(cfg *config.Configuration, base string) string {
	return filepath.Join(base, cfg.ModulesDir)
}
