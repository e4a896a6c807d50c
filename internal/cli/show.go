package cli

import (
	"fmt"

	"github.com/ariel-frischer/versiontracker/internal/changelog"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Display the changelog",
	Long: `Display the Unreleased entries grouped by category, followed by a
summary of every released version.`,
	Example: `  vtrack show                  # Unreleased entries and releases
  vtrack show --unreleased     # Only the Unreleased section
  vtrack show --version 1.2.0  # One released version
  vtrack show --last 3         # The first 3 pending entries, Features then Bugfixes
  vtrack show --plain          # No colors or icons`,
	Args: noArgs,
	RunE: runShow,
}

func init() {
	showCmd.GroupID = GroupChangelog
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().Bool("plain", false, "Plain text output (no colors/icons)")
	showCmd.Flags().Bool("unreleased", false, "Only show the Unreleased section")
	showCmd.Flags().String("version", "", "Show a single released version")
	showCmd.Flags().Int("last", 0, "Show the first N pending entries, Features before Bugfixes, one per line")
	showCmd.MarkFlagsMutuallyExclusive("unreleased", "version", "last")
}

func runShow(cmd *cobra.Command, args []string) error {
	plain, _ := cmd.Flags().GetBool("plain")
	unreleasedOnly, _ := cmd.Flags().GetBool("unreleased")
	version, _ := cmd.Flags().GetString("version")
	last, _ := cmd.Flags().GetInt("last")

	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	doc, err := a.engine().Load(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	opts := changelog.FormatOptions{Plain: plain}

	switch {
	case version != "":
		rel, err := doc.FindRelease(version)
		if err != nil {
			return err
		}
		return changelog.FormatReleases([]changelog.Release{rel}, out, opts)

	case last > 0:
		if latest, ok := doc.LatestRelease(); ok {
			fmt.Fprintf(out, "Since v%s:\n", latest.Version)
		}
		entries := doc.LastN(last)
		if len(entries) == 0 {
			fmt.Fprintln(out, "  (no entries)")
			return nil
		}
		for _, e := range entries {
			fmt.Fprintf(out, "  %s\n", changelog.FormatEntrySummary(e, opts))
		}
		return nil
	}

	if err := changelog.FormatUnreleased(doc, out, opts); err != nil {
		return fmt.Errorf("formatting changelog: %w", err)
	}
	if unreleasedOnly {
		return nil
	}
	return changelog.FormatReleases(doc.Releases(), out, opts)
}
