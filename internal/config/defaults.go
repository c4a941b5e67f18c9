package config

import (
	"time"

	"github.com/ariel-frischer/changegen/internal/changelog"
)

// GetDefaultConfigTemplate returns a fully commented config template
// that helps users understand all available options
func GetDefaultConfigTemplate() string {
	return `# changegen configuration
# Values can also be set with CHANGEGEN_<KEY> environment variables.

output: CHANGELOG.md                  # File regenerated on every run
repo_path: .                          # Any path inside the repository
backend: gogit                        # History access: gogit (built in) | cli (git binary)

# Commits whose subject contains one of these (case-insensitive) are left out
skip_markers:
  - update unreleased section
  - "[skip ci]"

log_level: info                       # debug | info | warn | error
log_format: text                      # text | json
watch_debounce: 500ms                 # Quiet period before 'changegen watch' regenerates
`
}

// GetDefaults returns the default configuration values
func GetDefaults() map[string]any {
	return map[string]any{
		"output":         "CHANGELOG.md",
		"repo_path":      ".",
		"backend":        "gogit",
		"skip_markers":   changelog.DefaultSkipMarkers(),
		"log_level":      "info",
		"log_format":     "text",
		"watch_debounce": 500 * time.Millisecond,
	}
}
