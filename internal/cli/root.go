// Package cli implements the changegen command tree.
package cli

import (
	"context"
	"os"
	"os/signal"
	"slices"
	"syscall"

	"github.com/ariel-frischer/changegen/internal/config"
	cgerrors "github.com/ariel-frischer/changegen/internal/errors"
	"github.com/ariel-frischer/changegen/internal/git"
	"github.com/ariel-frischer/changegen/internal/logging"
	"github.com/spf13/cobra"
)

// Command groups shown in help output.
const (
	GroupChangelog     = "changelog"
	GroupConfiguration = "configuration"
	GroupInfo          = "info"
)

var rootCmd = &cobra.Command{
	Use:   "changegen",
	Short: "Regenerate CHANGELOG.md from conventional commits and git tags",
	Long: `changegen rebuilds CHANGELOG.md from the repository's git history.

Every tag becomes a version section dated by its commit, and commits since
the latest tag land under [Unreleased]. Conventional commit subjects are
sorted into Added (feat), Fixed (fix) and Changed (docs, chore, refactor,
perf, test, style, breaking); anything else is left out.

The whole file is rewritten on every run. Running changegen with no command
is the same as 'changegen generate'.`,
	Example: `  # Regenerate CHANGELOG.md in the current repository
  changegen

  # Fail CI when the committed changelog is stale
  changegen check

  # Write somewhere else, reading history with the git binary
  changegen --output docs/CHANGES.md --backend cli`,
	Args:              noArgs,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	RunE:              runGenerate,
}

func init() {
	rootCmd.AddGroup(
		&cobra.Group{ID: GroupChangelog, Title: "Changelog Commands:"},
		&cobra.Group{ID: GroupConfiguration, Title: "Configuration:"},
		&cobra.Group{ID: GroupInfo, Title: "Information:"},
	)

	addPersistentFlags(rootCmd)

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return cgerrors.NewArgumentErrorWithUsage(err.Error(), cmd.UseLine())
	})
}

// addPersistentFlags registers the flags every command accepts.
func addPersistentFlags(cmd *cobra.Command) {
	pf := cmd.PersistentFlags()
	pf.String("config", "", "Project config file (default: .changegen.yml)")
	pf.String("repo", "", "Any path inside the git repository (default: .)")
	pf.StringP("output", "o", "", "Changelog file to write (default: CHANGELOG.md)")
	pf.String("backend", "", "History backend: gogit or cli (default: gogit)")
	pf.Bool("debug", false, "Enable debug logging")
	pf.String("log-format", "", "Log format: text or json (default: text)")
}

// Execute runs the command tree. Failures are printed to stderr before
// being returned; use ExitCode to turn the result into a process status.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		reportError(rootCmd, err)
	}
	return err
}

// reportError prints err unless it is an ExitError that carries no message.
func reportError(cmd *cobra.Command, err error) {
	if exitErr, ok := asExitError(err); ok && exitErr.Err == nil {
		return
	}
	cgerrors.FprintError(cmd.ErrOrStderr(), err)
}

// noArgs rejects positional arguments with an argument error.
func noArgs(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return cgerrors.NewArgumentErrorWithUsage(
			"unexpected argument: "+args[0],
			cmd.UseLine(),
			"Run '"+cmd.CommandPath()+" --help' to see available commands",
		)
	}
	return nil
}

// setup loads configuration and attaches it, with a logger, to the command context.
func setup(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	log := logging.New(cmd.ErrOrStderr(), logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})
	log.V(1).Info("configuration loaded",
		"output", cfg.Output, "repo", cfg.RepoPath, "backend", cfg.Backend)

	ctx := logging.WithLogger(cmd.Context(), log)
	cmd.SetContext(withConfig(ctx, cfg))
	return nil
}

// flagKeys maps persistent flags to the configuration keys they override.
var flagKeys = map[string]string{
	"repo":       "repo_path",
	"output":     "output",
	"backend":    "backend",
	"log-format": "log_format",
}

// loadConfig layers explicitly set flags over files and environment.
func loadConfig(cmd *cobra.Command) (*config.Configuration, error) {
	flags := cmd.Flags()
	overrides := make(map[string]any)
	for flag, key := range flagKeys {
		if !flags.Changed(flag) {
			continue
		}
		value, err := flags.GetString(flag)
		if err != nil {
			return nil, err
		}
		overrides[key] = value
	}
	if debug, _ := flags.GetBool("debug"); debug {
		overrides["log_level"] = "debug"
	}

	if backend, ok := overrides["backend"].(string); ok && !slices.Contains(git.Backends(), backend) {
		return nil, cgerrors.UnknownBackend(backend, git.Backends())
	}

	configPath, _ := flags.GetString("config")
	cfg, err := config.LoadWithOptions(config.LoadOptions{
		ProjectConfigPath: configPath,
		Overrides:         overrides,
		WarningWriter:     cmd.ErrOrStderr(),
	})
	if err != nil {
		return nil, cgerrors.InvalidConfig(err)
	}
	return cfg, nil
}

type configKey struct{}

func withConfig(ctx context.Context, cfg *config.Configuration) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// configFrom returns the configuration attached by setup, or the built-in
// defaults when none is attached.
func configFrom(ctx context.Context) *config.Configuration {
	if cfg, ok := ctx.Value(configKey{}).(*config.Configuration); ok {
		return cfg
	}
	return config.Default()
}
