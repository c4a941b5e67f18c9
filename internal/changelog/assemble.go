package changelog

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"
)

// HeadRef names the current checkout as the upper bound of the unreleased range.
const HeadRef = "HEAD"

// History is the view of a repository the assembler needs.
type History interface {
	// Tags returns every tag, oldest creation first.
	Tags(ctx context.Context) ([]string, error)
	// TagDate returns the YYYY-MM-DD author date of the commit a tag points to.
	TagDate(ctx context.Context, tag string) (string, error)
	// Subjects returns commit subjects reachable from to but not from from,
	// newest first. An empty from means the whole history of to.
	Subjects(ctx context.Context, from, to string) ([]string, error)
}

// Assembler builds a Document from a History.
type Assembler struct {
	history    History
	classifier *Classifier
}

// NewAssembler creates an Assembler. A nil classifier uses the default skip markers.
func NewAssembler(history History, classifier *Classifier) *Assembler {
	if classifier == nil {
		classifier = NewClassifier(nil)
	}
	return &Assembler{history: history, classifier: classifier}
}

// Build walks the unreleased range and every tag-to-tag range.
// Tag listing and tag dating failures degrade to "no tags" and "no date";
// any range failure aborts the build.
func (a *Assembler) Build(ctx context.Context) (*Document, error) {
	log := logr.FromContextOrDiscard(ctx)

	tags, err := a.history.Tags(ctx)
	if err != nil {
		log.V(1).Info("listing tags failed, treating history as untagged", "error", err.Error())
		tags = nil
	}
	log.V(1).Info("listed tags", "count", len(tags))

	doc := &Document{Sections: make([]Section, 0, len(tags)+1)}

	latest := ""
	if len(tags) > 0 {
		latest = tags[len(tags)-1]
	}
	unreleased, err := a.section(ctx, UnreleasedLabel, latest, HeadRef)
	if err != nil {
		return nil, err
	}
	doc.Sections = append(doc.Sections, unreleased)

	for i := len(tags) - 1; i >= 0; i-- {
		tag := tags[i]
		prev := ""
		if i > 0 {
			prev = tags[i-1]
		}
		s, err := a.section(ctx, tag, prev, tag)
		if err != nil {
			return nil, err
		}
		s.Date = a.tagDate(ctx, tag)
		doc.Sections = append(doc.Sections, s)
	}

	return doc, nil
}

// Render builds the document and returns its markdown.
func (a *Assembler) Render(ctx context.Context) (*Document, string, error) {
	doc, err := a.Build(ctx)
	if err != nil {
		return nil, "", err
	}
	return doc, RenderMarkdownString(doc), nil
}

func (a *Assembler) section(ctx context.Context, label, from, to string) (Section, error) {
	subjects, err := a.history.Subjects(ctx, from, to)
	if err != nil {
		return Section{}, fmt.Errorf("reading commits for %s: %w", label, err)
	}
	groups := a.classifier.Classify(subjects)
	logr.FromContextOrDiscard(ctx).V(1).Info("classified range",
		"section", label, "from", from, "to", to,
		"commits", len(subjects), "entries", groups.Count())
	return Section{Label: label, Groups: groups}, nil
}

func (a *Assembler) tagDate(ctx context.Context, tag string) string {
	date, err := a.history.TagDate(ctx, tag)
	if err != nil {
		logr.FromContextOrDiscard(ctx).V(1).Info("tag date unavailable", "tag", tag, "error", err.Error())
		return ""
	}
	return date
}
