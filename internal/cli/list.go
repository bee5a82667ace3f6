package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"modkit/internal/errors"
	"modkit/internal/module"
	"modkit/internal/scripts"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List discovered modules and their install status",
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	base, err := resolveBaseDir(cmd, cfg, true)
	if err != nil {
		return err
	}

	mods, err := module.Scan(modulesDir(cfg, base), module.ScanOptions{
		InstallEntry: cfg.InstallEntry,
		RunEntry:     cfg.RunEntry,
	})
	if err != nil {
		if nf, ok := err.(*module.NotFoundError); ok {
			return errors.New(errors.Prerequisite,
				fmt.Sprintf("no modules found: %s does not exist", nf.Dir),
				fmt.Sprintf("Create it with: mkdir -p %s", nf.Dir))
		}
		return err
	}

	out := cmd.OutOrStdout()
	if len(mods) == 0 {
		fmt.Fprintf(out, "No modules in %s\n", modulesDir(cfg, base))
		return nil
	}

	w := tabwriter.NewWriter(out, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "MODULE\tINSTALL STEP\tRUN ENTRY\tLAUNCHER")
	for _, m := range mods {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			m.Name,
			yesNo(m.HasInstallStep),
			yesNo(m.HasRunEntry),
			launcherState(cfg.BinDir, m),
		)
	}
	return w.Flush()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "-"
}

// launcherState reports whether a modkit-owned launcher for the module is
// present in the bin directory.
func launcherState(binDir string, m module.Module) string {
	if !m.HasRunEntry {
		return "-"
	}
	data, err := os.ReadFile(filepath.Join(binDir, m.Name))
	switch {
	case os.IsNotExist(err):
		return "missing"
	case err != nil:
		return "unreadable"
	case !strings.Contains(string(data), scripts.Marker):
		return "foreign file"
	default:
		return "installed"
	}
}
