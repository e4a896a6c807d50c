package cli

import (
	"github.com/ariel-frischer/versiontracker/internal/output"
	"github.com/spf13/cobra"
)

var restoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Restore the changelog from its backup",
	Long: `Overwrite the changelog with the backup snapshot written before the
most recent change. Restoring twice in a row yields the same file.`,
	Args: noArgs,
	RunE: runRestore,
}

func init() {
	restoreCmd.GroupID = GroupChangelog
	rootCmd.AddCommand(restoreCmd)
}

func runRestore(cmd *cobra.Command, args []string) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	engine := a.engine()
	if err := engine.Restore(cmd.Context()); err != nil {
		return err
	}

	output.PrintSuccess(cmd.OutOrStdout(), "Restored %s from %s", engine.Path(), engine.BackupPath())
	return nil
}
