package cli

import (
	"fmt"

	clierrors "github.com/ariel-frischer/versiontracker/internal/errors"
	"github.com/ariel-frischer/versiontracker/internal/health"
	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:     "doctor",
	Aliases: []string{"doc"},
	Short:   "Check that entries can be recorded in this project",
	Long: `Check the environment vtrack depends on:
- Git repository with at least one commit (needed by sync and watch)
- Changelog present with the Unreleased structure
- State directory writable and commit journal readable
- Summarizer command installed, when summarize.enabled is set
- No unrecognized configuration keys

Checks marked ○ only disable a feature and do not fail the command.`,
	Example: `  vtrack doctor
  vtrack doctor --repo ~/src/project`,
	Args: noArgs,
	RunE: runDoctor,
}

func init() {
	doctorCmd.GroupID = GroupConfiguration
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	report := health.RunHealthChecks(cmd.Context(), health.Options{
		Root:      a.root,
		Repo:      a.repo,
		Config:    a.cfg,
		Changelog: a.engine(),
	})

	fmt.Fprint(cmd.OutOrStdout(), health.FormatReport(report))
	if !report.Passed {
		return clierrors.NewPrerequisiteError("health checks failed", "Fix the ✗ items above and run 'vtrack doctor' again")
	}
	return nil
}
