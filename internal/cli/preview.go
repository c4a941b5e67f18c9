package cli

import (
	"fmt"

	"github.com/ariel-frischer/changegen/internal/changelog"
	cgerrors "github.com/ariel-frischer/changegen/internal/errors"
	"github.com/ariel-frischer/changegen/internal/output"
	"github.com/ariel-frischer/changegen/internal/progress"
	"github.com/spf13/cobra"
)

var (
	previewPlainFlag     bool
	previewMarkdownFlag  bool
	previewSkipEmptyFlag bool
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Print the changelog without writing it",
	Long: `Print the changelog that 'changegen generate' would write.

By default the document is formatted for the terminal with colored
categories. Use --markdown to print the exact file contents instead.`,
	Example: `  changegen preview              # Colored terminal output
  changegen preview --plain      # No colors or icons
  changegen preview --markdown   # Raw markdown, as written to disk
  changegen preview --skip-empty # Hide versions without entries`,
	Args: noArgs,
	RunE: runPreview,
}

func init() {
	previewCmd.GroupID = GroupChangelog
	rootCmd.AddCommand(previewCmd)

	previewCmd.Flags().BoolVar(&previewPlainFlag, "plain", false, "Plain text output (no colors/icons)")
	previewCmd.Flags().BoolVar(&previewMarkdownFlag, "markdown", false, "Print raw markdown")
	previewCmd.Flags().BoolVar(&previewSkipEmptyFlag, "skip-empty", false, "Hide versions without entries")
}

func runPreview(cmd *cobra.Command, _ []string) error {
	if previewMarkdownFlag && (previewPlainFlag || previewSkipEmptyFlag) {
		return cgerrors.InvalidFlagCombination("--markdown with --plain or --skip-empty",
			"--markdown prints the file exactly as written and takes no formatting options")
	}

	ctx := cmd.Context()
	doc, content, err := buildChangelog(ctx, configFrom(ctx))
	if err != nil {
		return cgerrors.RegenerationFailed(err)
	}

	if previewMarkdownFlag {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), content)
		return err
	}

	caps := progress.DetectTerminalCapabilities()
	opts := changelog.FormatOptions{
		Plain:     previewPlainFlag || !caps.SupportsColor,
		MaxWidth:  output.GetTerminalWidth(),
		SkipEmpty: previewSkipEmptyFlag,
	}
	if err := changelog.FormatTerminal(doc, cmd.OutOrStdout(), opts); err != nil {
		return fmt.Errorf("formatting changelog: %w", err)
	}
	return nil
}
