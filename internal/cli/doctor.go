package cli

import (
	"fmt"

	"github.com/ariel-frischer/changegen/internal/health"
	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:     "doctor",
	Aliases: []string{"doc"},
	Short:   "Check that changegen can run here (doc)",
	Long: `Run health checks for the current setup:
- Git CLI: available when --backend cli is used
- Repository: opens with the configured backend
- Tags: lists tags, newest reported
- Output: the changelog location is writable`,
	Example: `  changegen doctor
  changegen doctor --backend cli`,
	Args: noArgs,
	RunE: runDoctor,
}

func init() {
	doctorCmd.GroupID = GroupInfo
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	report := health.RunHealthChecks(ctx, configFrom(ctx))

	fmt.Fprint(cmd.OutOrStdout(), health.FormatReport(report))
	if !report.Passed {
		return NewExitError(ExitFailure)
	}
	return nil
}
