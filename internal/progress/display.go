package progress

import (
	"fmt"
	"io"
	"time"

	"github.com/briandowns/spinner"
)

// Display shows a spinner while a module's install step runs.
// All methods are no-ops when the terminal is not a TTY, so callers never
// need to branch on capabilities themselves.
type Display struct {
	caps    TerminalCapabilities
	symbols Symbols
	out     io.Writer
	spin    *spinner.Spinner
}

// NewDisplay creates a Display writing to out using the detected terminal
// capabilities.
func NewDisplay(out io.Writer, caps TerminalCapabilities) *Display {
	return &Display{
		caps:    caps,
		symbols: SelectSymbols(caps),
		out:     out,
	}
}

// Start begins spinning with a "name (i/n)" suffix. Restarts any previous
// spinner first so a Display can be reused across modules.
func (d *Display) Start(name string, num, total int) {
	if !d.caps.IsTTY {
		return
	}
	d.Stop()

	d.spin = spinner.New(
		spinner.CharSets[d.symbols.SpinnerSet],
		100*time.Millisecond,
		spinner.WithWriter(d.out),
	)
	d.spin.Suffix = fmt.Sprintf(" %s (%d/%d)", name, num, total)
	if d.caps.SupportsColor {
		// Best effort; an unknown color name just leaves the default.
		_ = d.spin.Color("cyan")
	}
	d.spin.Start()
}

// Stop halts the spinner without printing a status symbol. Used before
// streaming subprocess output so spinner frames don't interleave with it.
func (d *Display) Stop() {
	if d.spin != nil {
		d.spin.Stop()
		d.spin = nil
	}
}

// Complete stops the spinner and prints the success symbol for name.
func (d *Display) Complete(name string) {
	d.Stop()
	if d.caps.IsTTY {
		fmt.Fprintf(d.out, "%s %s\n", d.symbols.Checkmark, name)
	}
}

// Fail stops the spinner and prints the failure symbol for name.
func (d *Display) Fail(name string) {
	d.Stop()
	if d.caps.IsTTY {
		fmt.Fprintf(d.out, "%s %s\n", d.symbols.Failure, name)
	}
}
