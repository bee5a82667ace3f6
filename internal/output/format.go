// Package output provides terminal output formatting for the modkit CLI.
// It is kept dependency-light so any package can print status lines
// without creating import cycles.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// GetTerminalWidth returns the terminal width, defaulting to 80 if unavailable.
func GetTerminalWidth() int {
	if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 0 {
		return width
	}
	return 80
}

// PrintModuleHeader prints the per-module progress header, e.g.
// "[Module 2/5] theme...".
func PrintModuleHeader(out io.Writer, num, total int, name string) {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	white := color.New(color.FgWhite, color.Bold).SprintFunc()
	fmt.Fprintf(out, "%s %s\n", cyan(fmt.Sprintf("[Module %d/%d]", num, total)), white(name+"..."))
}

// PrintInstalled prints a green success line for an installed module.
func PrintInstalled(out io.Writer, name string) {
	green := color.New(color.FgGreen, color.Bold).SprintFunc()
	fmt.Fprintf(out, "%s %s installed\n", green("✓"), name)
}

// PrintSkipped prints a dim line for a module without an install step.
func PrintSkipped(out io.Writer, name, reason string) {
	dim := color.New(color.Faint).SprintFunc()
	fmt.Fprintf(out, "%s %s\n", dim("-"), dim(fmt.Sprintf("%s skipped (%s)", name, reason)))
}

// PrintFailed prints a red failure line for a module whose install step
// returned a non-zero exit status.
func PrintFailed(out io.Writer, name string, err error) {
	red := color.New(color.FgRed, color.Bold).SprintFunc()
	fmt.Fprintf(out, "%s %s failed: %v\n", red("✗"), name, err)
}

// PrintSummary prints the end-of-run summary line.
func PrintSummary(out io.Writer, installed, skipped int) {
	green := color.New(color.FgGreen, color.Bold).SprintFunc()
	fmt.Fprintf(out, "\n%s %d installed, %d skipped\n", green("Done:"), installed, skipped)
}

// PrintStepOutputEnd prints a separator after an install step's streamed
// output so module output stays visually distinct from modkit's own lines.
func PrintStepOutputEnd(out io.Writer) {
	termWidth := GetTerminalWidth()
	magenta := color.New(color.FgMagenta, color.Faint).SprintFunc()

	label := " modkit "
	lineLen := (termWidth - len(label)) / 2
	if lineLen < 3 {
		lineLen = 3
	}

	line := strings.Repeat("─", lineLen)
	fmt.Fprintf(out, "%s%s%s\n", magenta(line), magenta(label), magenta(line))
}
