package history

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ariel-frischer/versiontracker/internal/filelock"
)

// LockFileName is the journal's cross-process lock file inside the state directory.
const LockFileName = "history.lock"

// Writer appends to the journal with automatic pruning. Every
// read-modify-write holds an OS lock so separate vtrack processes cannot
// lose each other's updates or move the marker backwards.
type Writer struct {
	// StateDir is the directory containing the history file.
	StateDir string
	// MaxEntries is the maximum number of entries to retain.
	MaxEntries int

	mu     sync.Mutex
	lock   *filelock.Lock
	warnTo io.Writer
	now    func() time.Time
}

// NewWriter creates a new history writer.
func NewWriter(stateDir string, maxEntries int) *Writer {
	return &Writer{
		StateDir:   stateDir,
		MaxEntries: maxEntries,
		lock:       filelock.New(filepath.Join(stateDir, LockFileName)),
		warnTo:     os.Stderr,
		now:        time.Now,
	}
}

// Close releases the lock file handle.
func (w *Writer) Close() error {
	return w.lock.Close()
}

// Record appends entry and, for a recorded or skipped commit, advances the
// last-commit marker to it. A zero Timestamp is set to now.
func (w *Writer) Record(entry HistoryEntry) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = w.now()
	}

	return w.update(func(h *HistoryFile) {
		h.Entries = append(h.Entries, entry)
		if entry.Commit != "" && entry.Status.AdvancesMarker() {
			h.LastCommit = entry.Commit
		}

		// Prune oldest entries if over limit
		if w.MaxEntries > 0 && len(h.Entries) > w.MaxEntries {
			excess := len(h.Entries) - w.MaxEntries
			h.Entries = h.Entries[excess:]
		}
	})
}

// LogEntry is Record for callers that must not fail on journal errors.
// Errors are written as a warning and otherwise ignored.
func (w *Writer) LogEntry(entry HistoryEntry) {
	if err := w.Record(entry); err != nil {
		fmt.Fprintf(w.warnTo, "Warning: failed to log history: %v\n", err)
	}
}

// LogManual logs an entry added by hand.
func (w *Writer) LogManual(category, description, author string) {
	w.LogEntry(HistoryEntry{
		Status:      StatusManual,
		Category:    category,
		Description: description,
		Author:      author,
	})
}

// LastCommit returns the last-commit marker, empty when nothing was handled yet.
func (w *Writer) LastCommit() (string, error) {
	var last string
	err := w.locked(func() error {
		h, err := LoadHistory(w.StateDir)
		if err != nil {
			return fmt.Errorf("loading history: %w", err)
		}
		last = h.LastCommit
		return nil
	})
	return last, err
}

// Load returns the whole journal.
func (w *Writer) Load() (*HistoryFile, error) {
	var h *HistoryFile
	err := w.locked(func() error {
		var err error
		h, err = LoadHistory(w.StateDir)
		return err
	})
	return h, err
}

// Clear removes all entries, keeping the marker.
func (w *Writer) Clear() error {
	return w.locked(func() error {
		return ClearHistory(w.StateDir)
	})
}

func (w *Writer) update(fn func(h *HistoryFile)) error {
	return w.locked(func() error {
		h, err := LoadHistory(w.StateDir)
		if err != nil {
			return fmt.Errorf("loading history: %w", err)
		}
		fn(h)
		if err := SaveHistory(w.StateDir, h); err != nil {
			return fmt.Errorf("saving history: %w", err)
		}
		return nil
	})
}

func (w *Writer) locked(fn func() error) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.lock.Lock(); err != nil {
		return err
	}
	defer w.lock.Unlock()

	return fn()
}
