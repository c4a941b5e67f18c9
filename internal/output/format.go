// Package output provides terminal output formatting utilities for the changegen CLI.
// This package is designed to have minimal dependencies to avoid import cycles.
package output

import (
	"fmt"
	"io"
	"os"

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

// PrintRegenerated prints the success line of a generate run:
// "✓ Regenerated <path> (<n> versions)". The checkmark is green when color is enabled.
func PrintRegenerated(out io.Writer, path string, versions int) {
	green := color.New(color.FgGreen, color.Bold).SprintFunc()
	fmt.Fprintf(out, "%s %s\n", green("✓"), RegeneratedMessage(path, versions))
}

// RegeneratedMessage is the success text without the leading checkmark.
func RegeneratedMessage(path string, versions int) string {
	return fmt.Sprintf("Regenerated %s (%d versions)", path, versions)
}

// PrintInSync prints the result of a check run that found no drift.
func PrintInSync(out io.Writer, path string) {
	green := color.New(color.FgGreen, color.Bold).SprintFunc()
	fmt.Fprintf(out, "%s %s is up to date\n", green("✓"), path)
}

// PrintWatching prints the banner shown when watch mode starts.
// Uses magenta arrow and dim text for the watched directory.
func PrintWatching(out io.Writer, gitDir string) {
	magenta := color.New(color.FgMagenta).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()
	fmt.Fprintf(out, "%s %s\n", magenta("→ Watching refs in"), dim(gitDir))
}
