package cli

import (
	"github.com/ariel-frischer/versiontracker/internal/changelog"
	"github.com/ariel-frischer/versiontracker/internal/output"
	"github.com/spf13/cobra"
)

var releaseCmd = &cobra.Command{
	Use:   "release <version>",
	Short: "Move the Unreleased entries under a new version",
	Long: `Move every Unreleased entry under a "## [vX.Y.Z] - YYYY-MM-DD" section
placed directly after a fresh, empty Unreleased section.

The version must be MAJOR.MINOR.PATCH; a leading "v" is accepted. A
release with no entries is refused.`,
	Example: `  vtrack release 1.2.0
  vtrack release v2.0.0`,
	Args: exactArgs(1),
	RunE: runRelease,
}

func init() {
	releaseCmd.GroupID = GroupChangelog
	rootCmd.AddCommand(releaseCmd)
}

func runRelease(cmd *cobra.Command, args []string) error {
	version := changelog.NormalizeVersion(args[0])

	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	rel, err := a.engine().ReleaseVersion(cmd.Context(), version)
	if err != nil {
		return err
	}

	output.PrintSuccess(cmd.OutOrStdout(), "Released v%s on %s (%d %s)",
		rel.Version, rel.Date, rel.Entries, plural(rel.Entries, "entry", "entries"))
	return nil
}

func plural(n int, singular, pluralForm string) string {
	if n == 1 {
		return singular
	}
	return pluralForm
}
