package changelog

import (
	"regexp"
	"strings"
)

// commitPattern matches "type(scope): description". build and ci are part of
// the grammar but have no category, so they parse and are then dropped.
var commitPattern = regexp.MustCompile(`^(feat|fix|docs|chore|refactor|perf|test|build|ci|style|breaking)(\(.+\))?:\s*(.*)$`)

// typeCategories maps a commit type to the category it is listed under.
var typeCategories = map[string]Category{
	"feat":     Added,
	"fix":      Fixed,
	"chore":    Changed,
	"refactor": Changed,
	"perf":     Changed,
	"docs":     Changed,
	"style":    Changed,
	"test":     Changed,
	"breaking": Changed,
}

// DefaultSkipMarkers returns the lowercase substrings that mark automation
// commits which must never reach the changelog.
func DefaultSkipMarkers() []string {
	return []string{"update unreleased section", "[skip ci]"}
}

// ParseCommit splits a subject line into its conventional-commit parts.
// Returns false if the line does not follow the grammar.
func ParseCommit(subject string) (Commit, bool) {
	m := commitPattern.FindStringSubmatch(subject)
	if m == nil {
		return Commit{}, false
	}
	return Commit{
		Type:        m[1],
		Scope:       strings.TrimSuffix(strings.TrimPrefix(m[2], "("), ")"),
		Description: strings.TrimSpace(m[3]),
	}, true
}

// CategoryFor returns the category a commit type is listed under.
func CategoryFor(commitType string) (Category, bool) {
	c, ok := typeCategories[commitType]
	return c, ok
}

// Classifier buckets commit subjects into changelog categories.
type Classifier struct {
	skipMarkers []string
}

// NewClassifier creates a Classifier that drops subjects containing any of
// the given markers (case-insensitive). An empty list selects DefaultSkipMarkers.
func NewClassifier(skipMarkers []string) *Classifier {
	if len(skipMarkers) == 0 {
		skipMarkers = DefaultSkipMarkers()
	}
	markers := make([]string, 0, len(skipMarkers))
	for _, m := range skipMarkers {
		if m = strings.ToLower(strings.TrimSpace(m)); m != "" {
			markers = append(markers, m)
		}
	}
	return &Classifier{skipMarkers: markers}
}

// Classify groups subjects by category, keeping their input order.
// Skipped, malformed and unmapped subjects are silently left out.
func (c *Classifier) Classify(subjects []string) Groups {
	var groups Groups
	for _, subject := range subjects {
		if c.skipped(subject) {
			continue
		}
		commit, ok := ParseCommit(subject)
		if !ok {
			continue
		}
		category, ok := CategoryFor(commit.Type)
		if !ok {
			continue
		}
		groups.add(category, "- "+commit.Description)
	}
	return groups
}

func (c *Classifier) skipped(subject string) bool {
	lower := strings.ToLower(subject)
	for _, m := range c.skipMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}
