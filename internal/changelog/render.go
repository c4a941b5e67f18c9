package changelog

import "strings"

// Intro is the fixed header written above the first section.
const Intro = `# Changelog

All notable changes to this project will be documented in this file.

The format is based on [Keep a Changelog](https://keepachangelog.com/en/1.0.0/),
and this project adheres to [Semantic Versioning](https://semver.org/spec/v2.0.0.html).

`

// FormatSection renders one version as markdown. The date suffix is omitted
// when date is empty and empty categories are left out entirely.
// The result always ends with exactly one newline.
func FormatSection(label string, groups Groups, date string) string {
	var b strings.Builder
	b.WriteString(formatSectionHeader(label, date))
	b.WriteString("\n")

	for _, c := range Categories() {
		entries := groups.Get(c)
		if len(entries) == 0 {
			continue
		}
		b.WriteString("\n### " + string(c) + "\n")
		b.WriteString(strings.Join(entries, "\n"))
		b.WriteString("\n")
	}

	return strings.TrimSpace(b.String()) + "\n"
}

// formatSectionHeader formats the "## [label] - date" heading line.
func formatSectionHeader(label, date string) string {
	if date == "" {
		return "## [" + label + "]"
	}
	return "## [" + label + "] - " + date
}

// RenderMarkdownString renders the intro and every section, separated by
// blank lines, with surrounding whitespace trimmed. The same document always
// renders to the same string.
func RenderMarkdownString(d *Document) string {
	sections := make([]string, 0, len(d.Sections))
	for _, s := range d.Sections {
		sections = append(sections, FormatSection(s.Label, s.Groups, s.Date))
	}
	return strings.TrimSpace(Intro + strings.Join(sections, "\n\n"))
}
