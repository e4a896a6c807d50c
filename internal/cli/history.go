package cli

import (
	"fmt"
	"io"

	"github.com/ariel-frischer/versiontracker/internal/history"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View the processed-commit journal",
	Long: `View the journal of handled commits and manual entries with timestamp,
commit, status and description. The last-processed marker is shown first;
it survives --clear so cleared history never causes commits to be
recorded twice.`,
	Example: `  vtrack history
  vtrack history --limit 20
  vtrack history --status failed
  vtrack history --clear`,
	Args: noArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.GroupID = GroupAutomation
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntP("limit", "n", 0, "Limit to last N entries (most recent)")
	historyCmd.Flags().StringP("status", "s", "", "Filter by status: recorded, skipped, failed, manual")
	historyCmd.Flags().Bool("clear", false, "Clear all history entries (keeps the marker)")
}

func runHistory(cmd *cobra.Command, args []string) error {
	clearFlag, _ := cmd.Flags().GetBool("clear")
	statusFilter, _ := cmd.Flags().GetString("status")
	limit, _ := cmd.Flags().GetInt("limit")

	if limit < 0 {
		return argumentErrorf("limit must be positive, got %d", limit)
	}
	switch history.Status(statusFilter) {
	case "", history.StatusRecorded, history.StatusSkipped, history.StatusFailed, history.StatusManual:
	default:
		return argumentErrorf("unknown status %q (expected recorded, skipped, failed or manual)", statusFilter)
	}

	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	journal := a.journal()
	out := cmd.OutOrStdout()

	if clearFlag {
		if err := journal.Clear(); err != nil {
			return fmt.Errorf("clearing history: %w", err)
		}
		fmt.Fprintln(out, "History cleared.")
		return nil
	}

	histFile, err := journal.Load()
	if err != nil {
		return fmt.Errorf("loading history: %w", err)
	}

	if histFile.LastCommit != "" {
		fmt.Fprintf(out, "Last processed commit: %s\n\n", shortID(histFile.LastCommit))
	}

	entries := filterEntries(histFile.Entries, history.Status(statusFilter), limit)
	if len(entries) == 0 {
		if statusFilter != "" {
			fmt.Fprintf(out, "No %s entries.\n", statusFilter)
		} else {
			fmt.Fprintln(out, "No history available.")
		}
		return nil
	}

	displayEntries(out, entries)
	return nil
}

// filterEntries filters and limits history entries.
func filterEntries(entries []history.HistoryEntry, status history.Status, limit int) []history.HistoryEntry {
	var result []history.HistoryEntry

	for _, entry := range entries {
		if status == "" || entry.Status == status {
			result = append(result, entry)
		}
	}

	// Apply limit (most recent entries)
	if limit > 0 && len(result) > limit {
		result = result[len(result)-limit:]
	}

	return result
}

// displayEntries formats and displays history entries.
func displayEntries(out io.Writer, entries []history.HistoryEntry) {
	cyan := color.New(color.FgCyan).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	for _, entry := range entries {
		commit := shortID(entry.Commit)
		if commit == "" {
			commit = "-------"
		}

		text := entry.Description
		if entry.Category != "" {
			text = fmt.Sprintf("[%s] %s", entry.Category, text)
		}
		if entry.Error != "" {
			text = fmt.Sprintf("%s (%s)", text, entry.Error)
		}

		fmt.Fprintf(out, "%s  %s  %s  %s\n",
			cyan(entry.Timestamp.Format("2006-01-02 15:04:05")),
			dim(commit),
			statusLabel(entry.Status),
			text,
		)
	}
}

func statusLabel(s history.Status) string {
	label := fmt.Sprintf("%-8s", s)
	switch s {
	case history.StatusRecorded:
		return color.New(color.FgGreen).Sprint(label)
	case history.StatusFailed:
		return color.New(color.FgRed).Sprint(label)
	case history.StatusManual:
		return color.New(color.FgYellow).Sprint(label)
	default:
		return label
	}
}

func shortID(id string) string {
	if len(id) > 7 {
		return id[:7]
	}
	return id
}
