package changelog

// UnreleasedLabel is the heading label for commits not yet covered by a tag.
const UnreleasedLabel = "Unreleased"

// Category is one of the Keep a Changelog groupings a commit can land in.
type Category string

const (
	Added   Category = "Added"
	Changed Category = "Changed"
	Fixed   Category = "Fixed"
)

// Categories returns the categories in rendering order.
func Categories() []Category {
	return []Category{Added, Changed, Fixed}
}

// Commit is a conventional-commit subject split into its parts.
type Commit struct {
	Type        string
	Scope       string
	Description string
}

// Groups holds the bullet lines of one version, bucketed by category.
// Within a bucket, lines keep the order of the input history (newest first).
type Groups struct {
	Added   []string
	Changed []string
	Fixed   []string
}

// Get returns the bullets recorded for the given category.
func (g Groups) Get(c Category) []string {
	switch c {
	case Added:
		return g.Added
	case Changed:
		return g.Changed
	case Fixed:
		return g.Fixed
	default:
		return nil
	}
}

func (g *Groups) add(c Category, bullet string) {
	switch c {
	case Added:
		g.Added = append(g.Added, bullet)
	case Changed:
		g.Changed = append(g.Changed, bullet)
	case Fixed:
		g.Fixed = append(g.Fixed, bullet)
	}
}

// IsEmpty returns true if no category holds any entry.
func (g Groups) IsEmpty() bool {
	return g.Count() == 0
}

// Count returns the total number of entries across all categories.
func (g Groups) Count() int {
	return len(g.Added) + len(g.Changed) + len(g.Fixed)
}

// Section is one version of the changelog: a tag or the unreleased range.
// Date is empty for the unreleased section and for tags whose date could
// not be resolved.
type Section struct {
	Label  string
	Date   string
	Groups Groups
}

// IsUnreleased returns true if this section covers commits after the last tag.
func (s Section) IsUnreleased() bool {
	return s.Label == UnreleasedLabel
}

// Document is a full changelog: the unreleased section first, then every
// tagged section from the newest tag to the oldest.
type Document struct {
	Sections []Section
}

// Tagged returns the sections that belong to a tag.
func (d *Document) Tagged() []Section {
	var tagged []Section
	for _, s := range d.Sections {
		if !s.IsUnreleased() {
			tagged = append(tagged, s)
		}
	}
	return tagged
}
