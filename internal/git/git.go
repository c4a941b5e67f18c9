// Package git provides read access to repository history for changegen:
// tag listing in creation order, tag dating, and commit subjects for a
// revision range. Repository uses the go-git library so no git binary is
// required; CLIRepository drives the git binary for parity with `git log`.
package git

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
	"github.com/go-git/go-git/v5/storage/filesystem"
	"github.com/go-logr/logr"
)

// dateLayout is the calendar-date part of an ISO-8601 timestamp.
const dateLayout = "2006-01-02"

// ErrNotRepository is returned when no repository is found at or above the path.
var ErrNotRepository = errors.New("not a git repository")

// ErrGitNotFound is returned by the cli backend when the git binary cannot be run.
var ErrGitNotFound = errors.New("git binary not available")

// ErrUnknownBackend is returned by OpenBackend for an unsupported backend name.
var ErrUnknownBackend = errors.New("unknown backend")

// Repository reads history through go-git.
type Repository struct {
	repo *git.Repository
	path string
}

// Open opens the repository containing path. If path is empty, the current
// working directory is used. Parent directories are searched for .git.
func Open(path string) (*Repository, error) {
	if path == "" {
		var err error
		path, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting current directory: %w", err)
		}
	}

	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, fmt.Errorf("%w: %s", ErrNotRepository, path)
		}
		return nil, fmt.Errorf("opening repository at %s: %w", path, err)
	}

	return &Repository{repo: repo, path: path}, nil
}

// GitDir returns the path of the repository's .git directory.
func (r *Repository) GitDir(ctx context.Context) (string, error) {
	fs, ok := r.repo.Storer.(*filesystem.Storage)
	if !ok {
		return "", fmt.Errorf("repository at %s is not stored on disk", r.path)
	}
	return fs.Filesystem().Root(), nil
}

// taggedRef is a tag with the timestamp git sorts it by for --sort=creatordate.
type taggedRef struct {
	name    string
	created time.Time
}

// Tags returns all tag names ordered by creation date, oldest first.
// Annotated tags are dated by their tagger, lightweight tags by the
// committer of the commit they point to. Ties are broken by name.
func (r *Repository) Tags(ctx context.Context) ([]string, error) {
	log := logr.FromContextOrDiscard(ctx)

	iter, err := r.repo.Tags()
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}
	defer iter.Close()

	var refs []taggedRef
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		refs = append(refs, taggedRef{
			name:    ref.Name().Short(),
			created: r.creatorDate(ref),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("iterating tags: %w", err)
	}

	sort.SliceStable(refs, func(i, j int) bool {
		if !refs[i].created.Equal(refs[j].created) {
			return refs[i].created.Before(refs[j].created)
		}
		return refs[i].name < refs[j].name
	})

	tags := make([]string, len(refs))
	for i, ref := range refs {
		tags[i] = ref.name
	}

	log.V(1).Info("[git] listed tags", "backend", "gogit", "count", len(tags))
	return tags, nil
}

// creatorDate returns the tagger date of an annotated tag or the committer
// date of a lightweight tag's commit. Unreadable targets sort first.
func (r *Repository) creatorDate(ref *plumbing.Reference) time.Time {
	if tag, err := r.repo.TagObject(ref.Hash()); err == nil {
		return tag.Tagger.When
	}
	if commit, err := r.repo.CommitObject(ref.Hash()); err == nil {
		return commit.Committer.When
	}
	return time.Time{}
}

// TagDate returns the author date (YYYY-MM-DD) of the commit the tag points to,
// expressed in the author's own UTC offset.
func (r *Repository) TagDate(ctx context.Context, tag string) (string, error) {
	commit, err := r.tagCommit(tag)
	if err != nil {
		return "", err
	}
	date := commit.Author.When.Format(dateLayout)
	logr.FromContextOrDiscard(ctx).V(1).Info("[git] dated tag", "tag", tag, "date", date)
	return date, nil
}

// tagCommit resolves a tag name to its commit, peeling annotated tags.
func (r *Repository) tagCommit(tag string) (*object.Commit, error) {
	ref, err := r.repo.Tag(tag)
	if err != nil {
		return nil, fmt.Errorf("resolving tag %s: %w", tag, err)
	}

	if annotated, err := r.repo.TagObject(ref.Hash()); err == nil {
		commit, err := r.peel(annotated)
		if err != nil {
			return nil, fmt.Errorf("peeling tag %s: %w", tag, err)
		}
		return commit, nil
	}

	commit, err := r.repo.CommitObject(ref.Hash())
	if err != nil {
		return nil, fmt.Errorf("reading commit for tag %s: %w", tag, err)
	}
	return commit, nil
}

// peel follows a chain of tag objects down to the commit at its end, as
// with a release tag re-tagged by `git tag -a new old`.
func (r *Repository) peel(tag *object.Tag) (*object.Commit, error) {
	for tag.TargetType == plumbing.TagObject {
		next, err := r.repo.TagObject(tag.Target)
		if err != nil {
			return nil, fmt.Errorf("reading tag object %s: %w", tag.Target, err)
		}
		tag = next
	}
	return tag.Commit()
}

// resolve turns HEAD or a tag name into a commit hash. Anything else is
// handed to go-git's revision parser.
func (r *Repository) resolve(rev string) (plumbing.Hash, error) {
	if rev == "HEAD" {
		head, err := r.repo.Head()
		if err != nil {
			return plumbing.ZeroHash, fmt.Errorf("resolving HEAD: %w", err)
		}
		return head.Hash(), nil
	}

	if commit, err := r.tagCommit(rev); err == nil {
		return commit.Hash, nil
	}

	hash, err := r.repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("resolving revision %s: %w", rev, err)
	}
	return *hash, nil
}

// Subjects returns the subject lines of commits reachable from to but not
// from from, newest first. An empty from selects the whole history of to.
func (r *Repository) Subjects(ctx context.Context, from, to string) ([]string, error) {
	toHash, err := r.resolve(to)
	if err != nil {
		return nil, err
	}

	exclude := make(map[plumbing.Hash]bool)
	if from != "" {
		fromHash, err := r.resolve(from)
		if err != nil {
			return nil, err
		}
		if err := r.walk(ctx, fromHash, nil, func(c *object.Commit) error {
			exclude[c.Hash] = true
			return nil
		}); err != nil {
			return nil, fmt.Errorf("walking history of %s: %w", from, err)
		}
	}

	// the walk never descends past an excluded commit: everything behind
	// one is reachable from from as well
	var subjects []string
	err = r.walk(ctx, toHash, exclude, func(c *object.Commit) error {
		subjects = append(subjects, Subject(c.Message))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking history of %s: %w", to, err)
	}

	logr.FromContextOrDiscard(ctx).V(1).Info("[git] read commit range",
		"backend", "gogit", "from", from, "to", to, "count", len(subjects))
	return subjects, nil
}

// walk visits every commit reachable from start in committer-time order,
// newest first, the same order `git log` prints. Commits in stop are
// neither visited nor walked through.
func (r *Repository) walk(ctx context.Context, start plumbing.Hash, stop map[plumbing.Hash]bool, fn func(*object.Commit) error) error {
	if stop[start] {
		return nil
	}
	commit, err := r.repo.CommitObject(start)
	if err != nil {
		return err
	}
	iter := object.NewCommitIterCTime(commit, stop, nil)
	defer iter.Close()

	err = iter.ForEach(func(c *object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		return fn(c)
	})
	if errors.Is(err, storer.ErrStop) {
		return nil
	}
	return err
}

// Subject returns the subject of a commit message the way git's %s does:
// the first paragraph with its line breaks folded into spaces.
func Subject(message string) string {
	message = strings.TrimLeft(strings.ReplaceAll(message, "\r\n", "\n"), "\n")
	if i := strings.Index(message, "\n\n"); i >= 0 {
		message = message[:i]
	}
	lines := strings.Split(strings.TrimSpace(message), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(l)
	}
	return strings.Join(lines, " ")
}
