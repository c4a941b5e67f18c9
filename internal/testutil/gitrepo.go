// Package testutil provides test utilities and helpers for changegen tests.
package testutil

import (
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"
)

// BaseTime is the timestamp of the first fixture commit.
var BaseTime = time.Date(2024, time.January, 10, 12, 0, 0, 0, time.UTC)

// GitRepo is a throwaway on-disk repository built with go-git.
// Every commit is empty and one hour newer than the previous one, so
// history order is deterministic.
type GitRepo struct {
	t    *testing.T
	Dir  string
	Repo *git.Repository
	next time.Time
}

// NewGitRepo initializes an empty repository in a temp directory.
func NewGitRepo(t *testing.T) *GitRepo {
	t.Helper()

	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	return &GitRepo{t: t, Dir: dir, Repo: repo, next: BaseTime}
}

// signature returns a fixture signature at when.
func signature(when time.Time) *object.Signature {
	return &object.Signature{Name: "Test", Email: "test@test.com", When: when}
}

// Commit records an empty commit with the given message and returns its hash.
func (r *GitRepo) Commit(message string) plumbing.Hash {
	r.t.Helper()
	return r.CommitAt(message, r.next)
}

// CommitAt records an empty commit authored and committed at when.
func (r *GitRepo) CommitAt(message string, when time.Time) plumbing.Hash {
	r.t.Helper()

	wt, err := r.Repo.Worktree()
	require.NoError(r.t, err)

	hash, err := wt.Commit(message, &git.CommitOptions{
		Author:            signature(when),
		Committer:         signature(when),
		AllowEmptyCommits: true,
	})
	require.NoError(r.t, err)

	if !when.Before(r.next) {
		r.next = when.Add(time.Hour)
	}
	return hash
}

// CommitWithParents records an empty commit on top of the given parents,
// moving HEAD to it. Two parents make a merge commit.
func (r *GitRepo) CommitWithParents(message string, parents ...plumbing.Hash) plumbing.Hash {
	r.t.Helper()

	wt, err := r.Repo.Worktree()
	require.NoError(r.t, err)

	hash, err := wt.Commit(message, &git.CommitOptions{
		Author:            signature(r.next),
		Committer:         signature(r.next),
		Parents:           parents,
		AllowEmptyCommits: true,
	})
	require.NoError(r.t, err)

	r.next = r.next.Add(time.Hour)
	return hash
}

// Tag creates a lightweight tag on HEAD.
func (r *GitRepo) Tag(name string) {
	r.t.Helper()

	head, err := r.Repo.Head()
	require.NoError(r.t, err)
	_, err = r.Repo.CreateTag(name, head.Hash(), nil)
	require.NoError(r.t, err)
}

// AnnotatedTag creates an annotated tag on HEAD, tagged at when.
func (r *GitRepo) AnnotatedTag(name string, when time.Time) {
	r.t.Helper()

	head, err := r.Repo.Head()
	require.NoError(r.t, err)
	_, err = r.Repo.CreateTag(name, head.Hash(), &git.CreateTagOptions{
		Tagger:  signature(when),
		Message: "Release " + name,
	})
	require.NoError(r.t, err)
}

// NestedTag creates an annotated tag whose target is the existing annotated
// tag target, the object `git tag -a name target` writes.
func (r *GitRepo) NestedTag(name, target string, when time.Time) {
	r.t.Helper()

	ref, err := r.Repo.Tag(target)
	require.NoError(r.t, err)
	_, err = r.Repo.TagObject(ref.Hash())
	require.NoError(r.t, err, "%s must be an annotated tag", target)

	_, err = r.Repo.CreateTag(name, ref.Hash(), &git.CreateTagOptions{
		Tagger:  signature(when),
		Message: "Release " + name,
	})
	require.NoError(r.t, err)
}
