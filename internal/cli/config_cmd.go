package cli

import (
	"fmt"
	"os"

	"github.com/ariel-frischer/changegen/internal/config"
	cgerrors "github.com/ariel-frischer/changegen/internal/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configInitForceFlag bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and initialize changegen configuration",
	Long: `Inspect and initialize changegen configuration.

Configuration is loaded with the following priority (highest to lowest):
  1. Command-line flags
  2. Environment variables (CHANGEGEN_*)
  3. Project config (.changegen.yml, or legacy .changegen.json)
  4. User config (~/.config/changegen/config.yml)
  5. Built-in defaults`,
	Example: `  # Show the effective configuration
  changegen config show

  # Write a commented .changegen.yml
  changegen config init`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration as YAML",
	Args:  noArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		if err := enc.Encode(configFrom(cmd.Context())); err != nil {
			return fmt.Errorf("encoding configuration: %w", err)
		}
		return enc.Close()
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a commented project config file",
	Args:  noArgs,
	// the file being created may not load yet
	PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.ProjectConfigPath()
		if custom, _ := cmd.Flags().GetString("config"); custom != "" {
			path = custom
		}
		return writeConfigTemplate(cmd, path, configInitForceFlag)
	},
}

func init() {
	configCmd.GroupID = GroupConfiguration
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd, configInitCmd)

	configInitCmd.Flags().BoolVarP(&configInitForceFlag, "force", "f", false, "Overwrite an existing file")
}

func writeConfigTemplate(cmd *cobra.Command, path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return cgerrors.NewConfigError(
			fmt.Sprintf("%s already exists", path),
			"Use --force to overwrite it",
		)
	}
	if err := os.WriteFile(path, []byte(config.GetDefaultConfigTemplate()), 0o644); err != nil {
		return cgerrors.FileNotWritable(path, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Created %s\n", path)
	return nil
}
