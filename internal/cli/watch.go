package cli

import (
	"context"
	"io"
	"time"

	"github.com/ariel-frischer/changegen/internal/config"
	cgerrors "github.com/ariel-frischer/changegen/internal/errors"
	"github.com/ariel-frischer/changegen/internal/output"
	"github.com/ariel-frischer/changegen/internal/watch"
	"github.com/spf13/cobra"
)

var watchDebounceFlag time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Regenerate the changelog whenever commits or tags change",
	Long: `Regenerate the changelog once, then again each time the repository's refs
change: a new commit, a created or deleted tag, a checkout. Bursts of
changes are collapsed into a single regeneration after a quiet period.

Failed regenerations are reported and watching continues. Stop with Ctrl-C.`,
	Example: `  changegen watch
  changegen watch --debounce 2s`,
	Args: noArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.GroupID = GroupChangelog
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().DurationVar(&watchDebounceFlag, "debounce", 0, "Quiet period before regenerating (default: watch_debounce from config)")
}

func runWatch(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg := configFrom(ctx)

	debounce := cfg.WatchDebounce
	if cmd.Flags().Changed("debounce") {
		if watchDebounceFlag < 0 {
			return cgerrors.NewArgumentError("--debounce must not be negative")
		}
		debounce = watchDebounceFlag
	}

	history, err := openHistory(cfg)
	if err != nil {
		return err
	}
	gitDir, err := history.GitDir(ctx)
	if err != nil {
		return cgerrors.WrapWithMessage(err, cgerrors.Repository, "locating git directory")
	}

	watcher, err := watch.NewRefWatcher(gitDir, debounce)
	if err != nil {
		return cgerrors.WrapWithMessage(err, cgerrors.Runtime, "starting watcher")
	}
	defer watcher.Close()

	output.PrintWatching(cmd.OutOrStdout(), gitDir)
	return watcher.Run(ctx, regenerateAndReport(cfg, cmd.OutOrStdout(), cmd.ErrOrStderr()))
}

// regenerateAndReport returns a watch callback that prints the outcome of
// each run the same way 'changegen generate' does.
func regenerateAndReport(cfg *config.Configuration, out, errOut io.Writer) watch.RegenerateFunc {
	return func(ctx context.Context) error {
		versions, err := generateChangelog(ctx, cfg)
		if err != nil {
			cgerrors.FprintError(errOut, cgerrors.RegenerationFailed(err))
			return nil
		}
		output.PrintRegenerated(out, cfg.Output, versions)
		return nil
	}
}
