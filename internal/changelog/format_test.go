package changelog

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatTerminal_Plain(t *testing.T) {
	t.Parallel()

	doc := &Document{Sections: []Section{
		{Label: UnreleasedLabel},
		{Label: "v1.0.0", Date: "2024-01-15", Groups: Groups{
			Added: []string{"- login"},
			Fixed: []string{"- crash"},
		}},
	}}

	var buf bytes.Buffer
	require.NoError(t, FormatTerminal(doc, &buf, FormatOptions{Plain: true}))

	want := "## Unreleased\n  (no changes)\n" +
		"\n## v1.0.0 (2024-01-15)\n" +
		"\n### Added\n  - login\n" +
		"\n### Fixed\n  - crash\n"
	assert.Equal(t, want, buf.String())
}

func TestFormatTerminal_SkipEmpty(t *testing.T) {
	t.Parallel()

	doc := &Document{Sections: []Section{
		{Label: UnreleasedLabel},
		{Label: "v1.0.0", Groups: Groups{Changed: []string{"- init"}}},
	}}

	var buf bytes.Buffer
	require.NoError(t, FormatTerminal(doc, &buf, FormatOptions{Plain: true, SkipEmpty: true}))

	assert.NotContains(t, buf.String(), "Unreleased")
	assert.True(t, strings.HasPrefix(buf.String(), "## v1.0.0\n"))
}

func TestWrapText(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		text     string
		maxWidth int
		want     string
	}{
		"short text unchanged": {
			text:     "short",
			maxWidth: 20,
			want:     "short",
		},
		"wraps at last space": {
			text:     "one two three four",
			maxWidth: 9,
			want:     "one two\n  three\n  four",
		},
		"zero width disables wrapping": {
			text:     "anything goes here",
			maxWidth: 0,
			want:     "anything goes here",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, wrapText(tt.text, tt.maxWidth, "  "))
		})
	}
}
