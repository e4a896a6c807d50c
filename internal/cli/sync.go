package cli

import (
	"fmt"

	"github.com/ariel-frischer/versiontracker/internal/output"
	"github.com/ariel-frischer/versiontracker/internal/progress"
	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Record new feat:/fix: commits once and exit",
	Long: `Run a single classification pass: every commit after the last-processed
marker is read oldest first, and subjects starting with "feat:" or "fix:"
are recorded as Features or Bugfixes entries. On the first run only the
latest commit is considered.

A commit that fails to record stops the pass and is retried next time.`,
	Args: noArgs,
	RunE: runSync,
}

func init() {
	syncCmd.GroupID = GroupAutomation
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	repo, err := a.requireRepo()
	if err != nil {
		return err
	}

	engine := a.engine()
	if _, err := engine.EnsureInitialized(cmd.Context()); err != nil {
		return err
	}

	w, err := a.watcher(repo, engine, a.journal())
	if err != nil {
		return err
	}

	display := progress.NewDisplay(cmd.OutOrStdout(), progress.DetectTerminalCapabilities(cmd.OutOrStdout()))
	display.Start("Scanning new commits")

	res, err := w.Pass(cmd.Context())
	if err != nil {
		display.Fail("Sync failed")
		return err
	}

	for _, r := range res.Recorded {
		display.Success(fmt.Sprintf("%s %s: %s", r.Commit.ShortID(), r.Category, r.Description))
	}
	if res.Skipped > 0 {
		display.Skip(fmt.Sprintf("%d %s skipped", res.Skipped, plural(res.Skipped, "commit", "commits")))
	}
	if res.JournalErr != nil {
		output.PrintWarning(cmd.ErrOrStderr(), "%v; these commits may be recorded again by the next sync", res.JournalErr)
	}
	if res.Failed != nil {
		display.Fail(res.Failed.Error())
		return res.Failed
	}
	if len(res.Recorded) == 0 && res.Skipped == 0 {
		display.Success("Already up to date")
	}
	return nil
}
