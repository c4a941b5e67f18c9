package changelog

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// CategoryStyle defines the color and icon for a changelog category.
type CategoryStyle struct {
	Color *color.Color
	Icon  string
}

// categoryStyles maps categories to their terminal styling.
var categoryStyles = map[Category]CategoryStyle{
	Added:   {Color: color.New(color.FgGreen), Icon: "✓"},
	Changed: {Color: color.New(color.FgBlue), Icon: "~"},
	Fixed:   {Color: color.New(color.FgYellow), Icon: "⚡"},
}

// FormatOptions controls the terminal output formatting.
type FormatOptions struct {
	Plain    bool // Disable colors and icons
	MaxWidth int  // Maximum line width (0 = auto-detect)
	// SkipEmpty hides sections without any entries.
	SkipEmpty bool
}

// FormatTerminal writes a document to w with terminal styling: bold
// version headers and color-coded categories.
func FormatTerminal(d *Document, w io.Writer, opts FormatOptions) error {
	width := resolveWidth(opts.MaxWidth)

	first := true
	for i := range d.Sections {
		s := &d.Sections[i]
		if opts.SkipEmpty && s.Groups.IsEmpty() {
			continue
		}
		if !first {
			fmt.Fprintln(w)
		}
		first = false
		if err := FormatSectionTerminal(s, w, opts, width); err != nil {
			return fmt.Errorf("formatting version %s: %w", s.Label, err)
		}
	}

	return nil
}

// FormatSectionTerminal writes a single section to w.
func FormatSectionTerminal(s *Section, w io.Writer, opts FormatOptions, width int) error {
	if err := writeVersionHeader(s, w, opts); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	if s.Groups.IsEmpty() {
		_, err := fmt.Fprintln(w, "  (no changes)")
		return err
	}

	for _, c := range Categories() {
		entries := s.Groups.Get(c)
		if len(entries) == 0 {
			continue
		}
		if err := writeCategorySection(c, entries, w, opts, width); err != nil {
			return err
		}
	}
	return nil
}

// writeVersionHeader writes the version header line.
func writeVersionHeader(s *Section, w io.Writer, opts FormatOptions) error {
	header := s.Label
	if s.Date != "" {
		header = fmt.Sprintf("%s (%s)", s.Label, s.Date)
	}

	if opts.Plain {
		_, err := fmt.Fprintf(w, "## %s\n", header)
		return err
	}

	bold := color.New(color.Bold).SprintFunc()
	_, err := fmt.Fprintf(w, "## %s\n", bold(header))
	return err
}

// writeCategorySection writes a single category with its entries.
func writeCategorySection(c Category, entries []string, w io.Writer, opts FormatOptions, width int) error {
	style := categoryStyles[c]

	if opts.Plain {
		if _, err := fmt.Fprintf(w, "\n### %s\n", c); err != nil {
			return err
		}
	} else {
		colored := style.Color.SprintFunc()
		if _, err := fmt.Fprintf(w, "\n%s %s\n", colored(style.Icon), colored(string(c))); err != nil {
			return err
		}
	}

	for _, entry := range entries {
		if err := writeEntry(entry, style, w, opts, width); err != nil {
			return err
		}
	}
	return nil
}

// writeEntry writes one bullet, wrapping long lines when colored.
func writeEntry(entry string, style CategoryStyle, w io.Writer, opts FormatOptions, width int) error {
	prefix := "  - "
	text := strings.TrimPrefix(entry, "- ")

	if opts.Plain {
		_, err := fmt.Fprintf(w, "%s%s\n", prefix, text)
		return err
	}

	wrapped := wrapText(text, width-len(prefix), "    ")

	colored := style.Color.SprintFunc()
	_, err := fmt.Fprintf(w, "%s%s\n", prefix, colored(wrapped))
	return err
}

// resolveWidth determines the terminal width to use.
func resolveWidth(maxWidth int) int {
	if maxWidth > 0 {
		return maxWidth
	}
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return 80
}

// wrapText wraps text to fit within maxWidth, using indent for continuation lines.
func wrapText(text string, maxWidth int, indent string) string {
	if maxWidth <= 0 || len(text) <= maxWidth {
		return text
	}

	var lines []string
	remaining := text

	for len(remaining) > maxWidth {
		// Find the last space within maxWidth
		breakPoint := maxWidth
		for i := maxWidth - 1; i > 0; i-- {
			if remaining[i] == ' ' {
				breakPoint = i
				break
			}
		}

		lines = append(lines, remaining[:breakPoint])
		remaining = strings.TrimLeft(remaining[breakPoint:], " ")
	}

	if len(remaining) > 0 {
		lines = append(lines, remaining)
	}

	return strings.Join(lines, "\n"+indent)
}
