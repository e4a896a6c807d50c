// Package cli implements the vtrack command line: the host that loads
// configuration, opens the repository and wires the changelog engine, the
// commit watcher and the history journal together.
package cli

import (
	"context"
	"fmt"
	"strings"

	clierrors "github.com/ariel-frischer/versiontracker/internal/errors"
	"github.com/spf13/cobra"
)

// Command groups shown in help output.
const (
	GroupChangelog     = "changelog"
	GroupAutomation    = "automation"
	GroupConfiguration = "configuration"
)

var rootCmd = &cobra.Command{
	Use:   "vtrack",
	Short: "Keep a changelog in step with your git commits",
	Long: `vtrack maintains a Keep-a-Changelog style CHANGELOG.md for a git repository.

Entries can be added by hand or recorded automatically from commits whose
subject starts with "feat:" or "fix:". Releases move the Unreleased entries
under a dated version header.

Source: https://github.com/ariel-frischer/versiontracker`,
	Example: `  vtrack init                          # Create CHANGELOG.md
  vtrack add feature "Add dark mode"   # Record an entry by hand
  vtrack sync                          # Record new feat:/fix: commits once
  vtrack watch                         # Record them as they are committed
  vtrack release 1.2.0                 # Cut a release
  vtrack show                          # View unreleased entries and releases`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddGroup(
		&cobra.Group{ID: GroupChangelog, Title: "Changelog Commands:"},
		&cobra.Group{ID: GroupAutomation, Title: "Automation Commands:"},
		&cobra.Group{ID: GroupConfiguration, Title: "Configuration Commands:"},
	)
	rootCmd.SetHelpCommandGroupID(GroupConfiguration)
	rootCmd.SetCompletionCommandGroupID(GroupConfiguration)

	rootCmd.PersistentFlags().StringP("config", "c", "", "Config file (replaces .versiontracker/config.yml)")
	rootCmd.PersistentFlags().StringP("repo", "C", "", "Repository path (default: current directory)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error (default from config)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Output logs in JSON format")

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return clierrors.NewArgumentErrorWithUsage(err.Error(), cmd.UseLine(),
			fmt.Sprintf("Run '%s --help' for usage", cmd.CommandPath()))
	})
}

// Execute runs the root command. Failures are printed to stderr with
// remediation hints; the returned error maps to an exit code via ExitCode.
func Execute() error {
	return ExecuteContext(context.Background())
}

// ExecuteContext is Execute with a caller-supplied context.
func ExecuteContext(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if err != nil && !clierrors.IsCLIError(err) && strings.HasPrefix(err.Error(), "unknown command") {
		err = clierrors.Wrap(err, clierrors.Argument, "Run 'vtrack --help' for a list of commands")
	}
	if err != nil && !isSilent(err) {
		clierrors.FprintError(rootCmd.ErrOrStderr(), err)
	}
	return err
}
