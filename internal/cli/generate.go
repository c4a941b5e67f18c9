package cli

import (
	"context"
	"errors"
	"os"

	"github.com/ariel-frischer/changegen/internal/changelog"
	"github.com/ariel-frischer/changegen/internal/config"
	cgerrors "github.com/ariel-frischer/changegen/internal/errors"
	"github.com/ariel-frischer/changegen/internal/git"
	"github.com/ariel-frischer/changegen/internal/output"
	"github.com/ariel-frischer/changegen/internal/progress"
	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Regenerate the changelog file from git history",
	Long: `Regenerate the changelog file from git history.

The file is rebuilt from scratch and replaced in one step; if reading any
part of the history fails, the existing file is left untouched.`,
	Example: `  changegen generate
  changegen generate --output docs/CHANGELOG.md`,
	Args: noArgs,
	RunE: runGenerate,
}

func init() {
	generateCmd.GroupID = GroupChangelog
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg := configFrom(ctx)

	display := progress.NewDisplay(cmd.ErrOrStderr(), progress.DetectCapabilities(os.Stderr))
	display.Start("Reading git history")
	versions, err := generateChangelog(ctx, cfg)
	if err != nil {
		display.Fail("Reading git history")
		return cgerrors.RegenerationFailed(err)
	}
	display.Complete("Read git history")

	output.PrintRegenerated(cmd.OutOrStdout(), cfg.Output, versions)
	return nil
}

// generateChangelog rebuilds the changelog and writes it to the configured
// output. It returns the number of tagged versions written.
func generateChangelog(ctx context.Context, cfg *config.Configuration) (int, error) {
	doc, content, err := buildChangelog(ctx, cfg)
	if err != nil {
		return 0, err
	}

	path, err := cfg.OutputPath()
	if err != nil {
		return 0, err
	}
	if err := changelog.WriteFile(path, content); err != nil {
		return 0, cgerrors.FileNotWritable(path, err)
	}

	logr.FromContextOrDiscard(ctx).V(1).Info("changelog written", "path", path, "bytes", len(content))
	return len(doc.Tagged()), nil
}

// buildChangelog assembles the document in memory without touching the output file.
func buildChangelog(ctx context.Context, cfg *config.Configuration) (*changelog.Document, string, error) {
	history, err := openHistory(cfg)
	if err != nil {
		return nil, "", err
	}
	assembler := changelog.NewAssembler(history, changelog.NewClassifier(cfg.SkipMarkers))
	return assembler.Render(ctx)
}

// openHistory opens the configured backend, translating well-known failures
// into errors with remediation hints.
func openHistory(cfg *config.Configuration) (git.History, error) {
	history, err := git.OpenBackend(cfg.Backend, cfg.RepoPath)
	switch {
	case err == nil:
		return history, nil
	case errors.Is(err, git.ErrNotRepository):
		return nil, cgerrors.NotARepository(cfg.RepoPath, err)
	case errors.Is(err, git.ErrGitNotFound):
		return nil, cgerrors.GitNotFound(err)
	case errors.Is(err, git.ErrUnknownBackend):
		return nil, cgerrors.UnknownBackend(cfg.Backend, git.Backends())
	default:
		return nil, cgerrors.WrapWithMessage(err, cgerrors.Repository, "opening repository")
	}
}
