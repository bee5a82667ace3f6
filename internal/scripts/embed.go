// Package scripts embeds the dispatcher shell scripts the installer copies
// into the user-local bin directory.
package scripts

import (
	"embed"
)

// Marker is the comment line identifying files written by modkit. The
// installer refuses to overwrite files in the shared bin directory that do
// not carry it; doctor uses it to tell modkit-owned files from foreign ones.
const Marker = "# managed by modkit"

//go:embed pkg pkg-sync
var scriptFS embed.FS

// Names returns the embedded dispatcher script names, in install order.
func Names() []string {
	return []string{"pkg", "pkg-sync"}
}

// Get returns the contents of an embedded dispatcher script.
func Get(name string) ([]byte, error) {
	return scriptFS.ReadFile(name)
}
