package git

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-logr/logr"
	"github.com/tsuyoshiwada/go-gitcmd"
	"github.com/tsuyoshiwada/go-gitlog"
)

// CLIRepository reads history by running the git binary. Tags and dates
// come from go-gitcmd; commit ranges are parsed by go-gitlog.
type CLIRepository struct {
	path string
	cmd  gitcmd.Client
	log  gitlog.GitLog
}

// OpenCLI prepares a git-binary backed repository at path. It fails when
// git is not installed or path is not inside a work tree.
func OpenCLI(path string) (*CLIRepository, error) {
	if path == "" {
		path = "."
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}

	if err := CLIAvailable(); err != nil {
		return nil, err
	}

	r := &CLIRepository{
		path: abs,
		cmd:  gitcmd.New(&gitcmd.Config{Bin: "git"}),
		log: gitlog.New(&gitlog.Config{
			Bin:  "git",
			Path: abs,
		}),
	}

	out, err := r.exec("rev-parse", "--is-inside-work-tree")
	if err != nil || strings.TrimSpace(out) != "true" {
		return nil, fmt.Errorf("%w: %s", ErrNotRepository, abs)
	}
	return r, nil
}

// CLIAvailable reports whether the git binary used by the cli backend can run.
func CLIAvailable() error {
	if err := gitcmd.New(&gitcmd.Config{Bin: "git"}).CanExec(); err != nil {
		return fmt.Errorf("%w: %w", ErrGitNotFound, err)
	}
	return nil
}

// exec runs a git subcommand against the repository directory.
func (r *CLIRepository) exec(args ...string) (string, error) {
	out, err := r.cmd.Exec("-C", append([]string{r.path}, args...)...)
	if err != nil {
		return "", fmt.Errorf("git %s: %w", strings.Join(args, " "), err)
	}
	return out, nil
}

// GitDir returns the absolute path of the repository's .git directory.
func (r *CLIRepository) GitDir(ctx context.Context) (string, error) {
	out, err := r.exec("rev-parse", "--absolute-git-dir")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// Tags returns all tag names sorted by git's creatordate, oldest first.
func (r *CLIRepository) Tags(ctx context.Context) ([]string, error) {
	out, err := r.exec("tag", "--sort=creatordate")
	if err != nil {
		return nil, err
	}
	tags := splitLines(out)
	logr.FromContextOrDiscard(ctx).V(1).Info("[git] listed tags", "backend", "cli", "count", len(tags))
	return tags, nil
}

// TagDate returns the date part of the tagged commit's ISO-8601 author date.
func (r *CLIRepository) TagDate(ctx context.Context, tag string) (string, error) {
	out, err := r.exec("log", "-1", "--format=%aI", tag, "--")
	if err != nil {
		return "", err
	}
	stamp := strings.TrimSpace(out)
	if len(stamp) < len(dateLayout) {
		return "", fmt.Errorf("unexpected date %q for tag %s", stamp, tag)
	}
	return stamp[:len(dateLayout)], nil
}

// Subjects returns commit subjects for from..to (or all of to), newest first.
func (r *CLIRepository) Subjects(ctx context.Context, from, to string) ([]string, error) {
	var rev gitlog.RevArgs = &gitlog.Rev{Ref: to}
	if from != "" {
		rev = &gitlog.RevRange{Old: from, New: to}
	}

	commits, err := r.log.Log(rev, nil)
	if err != nil {
		return nil, fmt.Errorf("git log %s: %w", strings.Join(rev.Args(), " "), err)
	}

	subjects := make([]string, len(commits))
	for i, c := range commits {
		subjects[i] = c.Subject
	}

	logr.FromContextOrDiscard(ctx).V(1).Info("[git] read commit range",
		"backend", "cli", "from", from, "to", to, "count", len(subjects))
	return subjects, nil
}

// splitLines splits command output into non-empty trimmed lines.
func splitLines(out string) []string {
	out = strings.TrimSpace(strings.ReplaceAll(out, "\r\n", "\n"))
	if out == "" {
		return []string{}
	}
	var lines []string
	for _, l := range strings.Split(out, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}
