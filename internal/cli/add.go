package cli

import (
	"strings"

	"github.com/ariel-frischer/versiontracker/internal/changelog"
	clierrors "github.com/ariel-frischer/versiontracker/internal/errors"
	"github.com/ariel-frischer/versiontracker/internal/output"
	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:   "add <feature|bugfix> <description>",
	Short: "Add an entry to the Unreleased section",
	Long: `Add an entry as the first line of the Features or Bugfixes subsection.

The author defaults to git's user.name. If it cannot be read within
author_timeout, "unknown" is recorded. Remaining arguments are joined
with spaces, so quoting the description is optional.`,
	Example: `  vtrack add feature "Add dark mode"
  vtrack add fix Crash when the config file is empty
  vtrack add bugfix "Handle empty input" --author alice`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return clierrors.NewArgumentErrorWithUsage("category is required", cmd.UseLine(),
				"Use 'feature' or 'bugfix'")
		}
		if _, err := changelog.ParseCategory(args[0]); err != nil {
			return clierrors.UnknownCategory(args[0])
		}
		if len(args) < 2 {
			return clierrors.MissingEntryDescription(args[0])
		}
		return nil
	},
	RunE: runAdd,
}

func init() {
	addCmd.GroupID = GroupChangelog
	rootCmd.AddCommand(addCmd)
	addCmd.Flags().StringP("author", "a", "", "Author to credit (default: git user.name)")
}

func runAdd(cmd *cobra.Command, args []string) error {
	category, err := changelog.ParseCategory(args[0])
	if err != nil {
		return clierrors.UnknownCategory(args[0])
	}
	description := strings.Join(args[1:], " ")
	author, _ := cmd.Flags().GetString("author")

	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.engine().AddEntry(cmd.Context(), category, description, author); err != nil {
		return err
	}
	a.journal().LogManual(category.String(), strings.TrimSpace(description), author)

	output.PrintSuccess(cmd.OutOrStdout(), "Added %s: %s", category, strings.TrimSpace(description))
	return nil
}
