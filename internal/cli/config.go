package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ariel-frischer/versiontracker/internal/config"
	"github.com/ariel-frischer/versiontracker/internal/output"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage vtrack configuration",
	Long: `Manage vtrack configuration.

Configuration precedence (highest to lowest):
  1. Environment variables (VTRACK_*, nested keys use "__", e.g. VTRACK_WATCH__MAX_BACKLOG)
  2. Project config (.versiontracker/config.yml, or config.json), or --config
  3. User config (~/.config/versiontracker/config.yml)
  4. Built-in defaults`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a commented config template",
	Long: `Write a commented config template to .versiontracker/config.yml in the
repository, or to the user config with --user. An existing file is left
unchanged unless --force is given.`,
	Example: `  vtrack config init
  vtrack config init --user
  vtrack config init --force`,
	Args: noArgs,
	RunE: runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration and where each value comes from",
	Args:  noArgs,
	RunE:  runConfigShow,
}

func init() {
	configCmd.GroupID = GroupConfiguration
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd, configShowCmd)

	configInitCmd.Flags().BoolP("user", "u", false, "Write the user-level config instead")
	configInitCmd.Flags().BoolP("force", "f", false, "Overwrite an existing config file")
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	user, _ := cmd.Flags().GetBool("user")
	force, _ := cmd.Flags().GetBool("force")

	var path string
	if user {
		p, err := config.UserConfigPath()
		if err != nil {
			return fmt.Errorf("locating user config directory: %w", err)
		}
		path = p
	} else {
		root, err := resolveRoot(cmd)
		if err != nil {
			return err
		}
		path = config.ProjectConfigPath(root)
	}

	out := cmd.OutOrStdout()
	if _, err := os.Stat(path); err == nil && !force {
		fmt.Fprintf(out, "Config already exists at %s (use --force to overwrite)\n", path)
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(config.GetDefaultConfigTemplate()), 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	output.PrintSuccess(out, "Wrote %s", path)
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	dim := color.New(color.Faint).SprintFunc()

	fmt.Fprintf(out, "Project root: %s\n", a.root)
	for _, f := range a.cfg.Files {
		fmt.Fprintf(out, "Config file:  %s\n", f)
	}
	fmt.Fprintln(out)

	keys := a.cfg.Keys()
	for _, key := range keys {
		fmt.Fprintf(out, "%-26s %-24v %s\n", key, a.cfg.Values[key], dim("("+string(a.cfg.Sources[key])+")"))
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Resolved changelog: %s\n", a.cfg.ChangelogPath)
	fmt.Fprintf(out, "Resolved backup:    %s\n", a.cfg.BackupPath)
	fmt.Fprintf(out, "Resolved state dir: %s\n", a.cfg.StateDir)

	for _, key := range config.UnknownKeys(keys) {
		output.PrintWarning(cmd.ErrOrStderr(), "unknown config key %q (from %s)", key, a.cfg.Sources[key])
	}
	return nil
}
