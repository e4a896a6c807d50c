package cli

import (
	"github.com/ariel-frischer/versiontracker/internal/output"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the changelog if it does not exist",
	Long: `Create the changelog with an empty Unreleased section.

An existing changelog is left unchanged; it is only checked for the
Unreleased header, Features and Bugfixes subsections.`,
	Example: `  vtrack init
  vtrack init --repo ~/src/project`,
	Args: noArgs,
	RunE: runInit,
}

func init() {
	initCmd.GroupID = GroupChangelog
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	engine := a.engine()
	created, err := engine.EnsureInitialized(cmd.Context())
	if err != nil {
		return err
	}

	if created {
		output.PrintSuccess(cmd.OutOrStdout(), "Created %s", engine.Path())
	} else {
		output.PrintSuccess(cmd.OutOrStdout(), "%s is already initialized", engine.Path())
	}
	return nil
}
