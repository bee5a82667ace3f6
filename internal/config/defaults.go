package config

// GetDefaultConfigTemplate returns a fully commented config template that
// documents every available option.
func GetDefaultConfigTemplate() string {
	return `# modkit configuration
# Values can also be set via MODKIT_* environment variables
# (e.g. MODKIT_JOBS=4, MODKIT_BIN_DIR=~/bin).

base_dir: ""                  # Suite repository root (empty = detect from git / cwd)
modules_dir: modules          # Directory of modules, relative to base_dir
install_entry: install.sh     # Per-module install step filename
run_entry: main.sh            # Per-module runtime entry point filename
bin_dir: ~/.local/bin         # Where dispatchers and launchers are installed
timeout: 0                    # Per-step timeout in seconds (0 = no timeout)
jobs: 1                       # Concurrent module installs (1 = sequential)
show_progress: true           # Spinner while an install step runs (TTY only)
`
}

// GetDefaults returns the default configuration values keyed by koanf path.
func GetDefaults() map[string]interface{} {
	return map[string]interface{}{
		// base_dir: Root of the suite repository. Empty means detect it:
		// enclosing git repository root first, current directory otherwise.
		"base_dir": "",
		// modules_dir: Name of the directory under base_dir holding modules.
		"modules_dir": "modules",
		// install_entry: Filename of a module's install step. A module
		// without this file is skipped by the installer.
		"install_entry": "install.sh",
		// run_entry: Filename of a module's runtime entry point. Modules
		// with this file get a launcher in bin_dir.
		"run_entry": "main.sh",
		// bin_dir: User-local binary directory shared across modules.
		"bin_dir": "~/.local/bin",
		// timeout: Per install step, in seconds. 0 waits unboundedly.
		"timeout": 0,
		// jobs: Module installs to run concurrently. The default of 1 keeps
		// strict sequential fail-fast ordering.
		"jobs": 1,
		"show_progress": true,
	}
}
