package cli

import (
	"fmt"

	"github.com/ariel-frischer/changegen/internal/changelog"
	cgerrors "github.com/ariel-frischer/changegen/internal/errors"
	"github.com/ariel-frischer/changegen/internal/output"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify the changelog file matches git history",
	Long: `Verify that the changelog file is up to date.

This command builds the changelog in memory and compares it with the file
on disk without writing anything. Returns exit code 0 if in sync, or exit
code 2 with a hint if the file is missing or stale.`,
	Example: `  changegen check
  changegen check --output docs/CHANGELOG.md`,
	Args: noArgs,
	RunE: runCheck,
}

func init() {
	checkCmd.GroupID = GroupChangelog
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg := configFrom(ctx)

	_, expected, err := buildChangelog(ctx, cfg)
	if err != nil {
		return cgerrors.RegenerationFailed(err)
	}

	path, err := cfg.OutputPath()
	if err != nil {
		return fmt.Errorf("resolving output path: %w", err)
	}
	inSync, err := changelog.InSync(path, expected)
	if err != nil {
		return cgerrors.WrapWithMessage(err, cgerrors.Runtime, "reading changelog")
	}
	if !inSync {
		return &ExitError{Code: ExitOutOfSync, Err: cgerrors.ChangelogOutOfSync(cfg.Output)}
	}

	output.PrintInSync(cmd.OutOrStdout(), cfg.Output)
	return nil
}
