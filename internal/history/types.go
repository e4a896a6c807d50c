// Package history keeps the processed-commit journal: which commits the
// watcher has handled and the marker of the last one, so a restarted
// watcher never records the same commit twice.
package history

import "time"

// Status is the outcome of handling one commit or manual entry.
type Status string

const (
	// StatusRecorded means an entry was written to the changelog.
	StatusRecorded Status = "recorded"
	// StatusSkipped means the commit did not classify as a feature or bugfix.
	StatusSkipped Status = "skipped"
	// StatusFailed means recording was attempted and failed; the commit is retried.
	StatusFailed Status = "failed"
	// StatusManual means the entry was added by hand, not from a commit.
	StatusManual Status = "manual"
)

// AdvancesMarker reports whether a commit with this status needs no further handling.
func (s Status) AdvancesMarker() bool {
	return s == StatusRecorded || s == StatusSkipped
}

// HistoryFile is the on-disk journal.
type HistoryFile struct {
	// LastCommit is the ID of the newest commit that needs no further handling.
	LastCommit string         `yaml:"last_commit,omitempty"`
	Entries    []HistoryEntry `yaml:"entries"`
}

// HistoryEntry records one handled commit or manual entry.
type HistoryEntry struct {
	Timestamp   time.Time `yaml:"timestamp"`
	Commit      string    `yaml:"commit,omitempty"`
	Status      Status    `yaml:"status"`
	Category    string    `yaml:"category,omitempty"`
	Description string    `yaml:"description,omitempty"`
	Author      string    `yaml:"author,omitempty"`
	Error       string    `yaml:"error,omitempty"`
}
