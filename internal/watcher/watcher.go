// Package watcher observes a repository's commit history and records
// conventional "feat:" and "fix:" commits as changelog entries.
//
// Change notification comes from the HEAD reflog, which git appends to on
// every commit. An fsnotify watch on the reflog directory is backed by a
// periodic stat poll so missed events only delay a pass. Passes never
// overlap, and a journal of processed commits makes every commit recorded
// at most once, in commit order.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/ariel-frischer/versiontracker/internal/changelog"
	"github.com/ariel-frischer/versiontracker/internal/git"
	"github.com/ariel-frischer/versiontracker/internal/history"
	"github.com/ariel-frischer/versiontracker/internal/summarize"
	"github.com/fsnotify/fsnotify"
)

const (
	// DefaultInterval is how often the reflog is polled as a fallback.
	DefaultInterval = 2 * time.Second
	// DefaultMaxBacklog bounds the commits handled in one pass.
	DefaultMaxBacklog = 100
)

// Recorder stores classified entries. *changelog.Engine implements it.
type Recorder interface {
	AddEntry(ctx context.Context, c changelog.Category, description, author string) error
}

// LogSource reads commit history. *git.Repository implements it.
type LogSource interface {
	CommitsSince(ctx context.Context, sinceID string, limit int) ([]git.Commit, bool, error)
	Diff(ctx context.Context, id string) (string, error)
	HeadLogPath() string
}

// Journal persists the last-processed marker. *history.Writer implements it.
type Journal interface {
	LastCommit() (string, error)
	Record(entry history.HistoryEntry) error
}

// Locker serializes passes across processes.
type Locker interface {
	Lock() error
	Unlock() error
}

// HostConfig is decided once by the host and injected at construction.
type HostConfig struct {
	Locale                 string
	SummarizationAvailable bool
}

// RecordedEntry describes one entry a pass wrote to the changelog.
type RecordedEntry struct {
	Commit      git.Commit
	Category    changelog.Category
	Description string
	Summary     string
}

// PassResult summarizes one classification pass.
type PassResult struct {
	Recorded []RecordedEntry
	Skipped  int
	// Failed holds the recording error that stopped the pass, if any.
	Failed error
	// JournalErr is set when a handled commit could not be journaled. The
	// marker still advances in memory, so this process does not record the
	// commit again.
	JournalErr error
}

// Watcher turns new commits into changelog entries.
type Watcher struct {
	source      LogSource
	recorder    Recorder
	host        HostConfig
	summarizer  summarize.Func
	maxDiff     int
	summaryLine bool
	logger      *slog.Logger
	interval    time.Duration
	maxBacklog  int
	journal     Journal
	passLock    Locker
	onError     func(error)

	passMu  sync.Mutex
	unsaved string // marker handled but not yet journaled; guarded by passMu
	trigger chan struct{}

	mu      sync.Mutex
	cancel  context.CancelFunc
	fsw     *fsnotify.Watcher
	wg      sync.WaitGroup
	started bool
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithSummarizer sets the optional summarizer and the diff size it accepts.
func WithSummarizer(fn summarize.Func, maxDiffBytes int) Option {
	return func(w *Watcher) {
		w.summarizer = fn
		w.maxDiff = maxDiffBytes
	}
}

// WithSummaryLine turns the second summary line of each entry on or off.
func WithSummaryLine(enabled bool) Option {
	return func(w *Watcher) {
		w.summaryLine = enabled
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithInterval sets the reflog poll interval.
func WithInterval(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.interval = d
		}
	}
}

// WithMaxBacklog bounds the number of commits handled per pass.
func WithMaxBacklog(n int) Option {
	return func(w *Watcher) {
		if n > 0 {
			w.maxBacklog = n
		}
	}
}

// WithJournal persists the last-processed marker. Without one the marker
// lives in memory and a restarted watcher handles only the latest commit.
func WithJournal(j Journal) Option {
	return func(w *Watcher) {
		w.journal = j
	}
}

// WithPassLock holds l for the duration of every pass.
func WithPassLock(l Locker) Option {
	return func(w *Watcher) {
		w.passLock = l
	}
}

// WithErrorHandler receives every error reported by background passes.
func WithErrorHandler(fn func(error)) Option {
	return func(w *Watcher) {
		w.onError = fn
	}
}

// New creates a Watcher reading from source and writing to recorder.
func New(source LogSource, recorder Recorder, host HostConfig, opts ...Option) *Watcher {
	w := &Watcher{
		source:      source,
		recorder:    recorder,
		host:        host,
		summaryLine: true,
		maxDiff:     summarize.DefaultMaxDiffBytes,
		logger:      slog.New(slog.DiscardHandler),
		interval:    DefaultInterval,
		maxBacklog:  DefaultMaxBacklog,
		trigger:     make(chan struct{}, 1),
	}

	for _, opt := range opts {
		opt(w)
	}

	if w.journal == nil {
		w.journal = &memoryJournal{}
	}
	return w
}

// Start begins observing the HEAD reflog and schedules an immediate pass.
// Setup failures are returned as *WatchStartError and leave the watcher
// inert. Background work stops when ctx is canceled or Close is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.started {
		return ErrAlreadyStarted
	}

	headLog := filepath.Clean(w.source.HeadLogPath())
	logsDir := filepath.Dir(headLog)

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return &WatchStartError{Path: logsDir, Err: err}
	}
	if err := os.MkdirAll(logsDir, 0o755); err != nil {
		fsw.Close()
		return &WatchStartError{Path: logsDir, Err: err}
	}
	if err := fsw.Add(logsDir); err != nil {
		fsw.Close()
		return &WatchStartError{Path: logsDir, Err: err}
	}

	ctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.fsw = fsw
	w.started = true

	w.wg.Add(2)
	go w.observe(ctx, fsw, headLog)
	go w.work(ctx)

	w.signal()
	w.logger.Info("watching for commits", "reflog", headLog, "poll_interval", w.interval)
	return nil
}

// Wait blocks until the background goroutines have exited.
func (w *Watcher) Wait() {
	w.wg.Wait()
}

// Close stops observation and waits for an in-flight pass to finish.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if !w.started {
		w.mu.Unlock()
		return nil
	}
	w.cancel()
	fsw := w.fsw
	w.started = false
	w.mu.Unlock()

	w.wg.Wait()
	return fsw.Close()
}

// signal schedules a pass. Signals arriving while one is pending coalesce.
func (w *Watcher) signal() {
	select {
	case w.trigger <- struct{}{}:
	default:
	}
}

// observe turns reflog writes and poll ticks into pass signals.
func (w *Watcher) observe(ctx context.Context, fsw *fsnotify.Watcher, headLog string) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	last := statFingerprint(headLog)
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) == headLog && (event.Has(fsnotify.Write) || event.Has(fsnotify.Create)) {
				last = statFingerprint(headLog)
				w.signal()
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			// Polling covers missed events.
			w.logger.Warn("reflog watch error", "error", err)
		case <-ticker.C:
			if fp := statFingerprint(headLog); fp != last {
				last = fp
				w.signal()
			}
		}
	}
}

// work runs one pass per signal until ctx ends.
func (w *Watcher) work(ctx context.Context) {
	defer w.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.trigger:
			w.runPass(ctx)
		}
	}
}

// runPass runs Pass and reports its failures. A panic is recovered so the
// watcher keeps serving later signals.
func (w *Watcher) runPass(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("panic in watcher pass", "recover", r, "stack", string(debug.Stack()))
			w.report(fmt.Errorf("panic in watcher pass: %v", r))
		}
	}()

	res, err := w.Pass(ctx)
	if err != nil {
		if ctx.Err() == nil {
			w.report(err)
		}
		return
	}
	if res.JournalErr != nil {
		w.report(res.JournalErr)
	}
	if res.Failed != nil {
		w.report(res.Failed)
	}
}

func (w *Watcher) report(err error) {
	w.logger.Error("watcher pass failed", "error", err)
	if w.onError != nil {
		w.onError(err)
	}
}

// Pass classifies and records every commit after the last-processed marker,
// oldest first. With no marker only the latest commit is handled. A commit
// whose recording fails stops the pass without moving the marker, so it and
// everything after it are retried on the next pass. A commit that was
// handled but could not be journaled still advances an in-memory marker and
// is reported in PassResult.JournalErr. The returned error covers reading
// history and the journal; recording failures are reported in
// PassResult.Failed.
func (w *Watcher) Pass(ctx context.Context) (PassResult, error) {
	w.passMu.Lock()
	defer w.passMu.Unlock()

	if w.passLock != nil {
		if err := w.passLock.Lock(); err != nil {
			return PassResult{}, fmt.Errorf("acquiring pass lock: %w", err)
		}
		defer w.passLock.Unlock()
	}

	var res PassResult

	since, err := w.journal.LastCommit()
	if err != nil {
		return res, fmt.Errorf("reading last processed commit: %w", err)
	}
	if w.unsaved != "" {
		since = w.unsaved
	}

	commits, found, err := w.source.CommitsSince(ctx, since, w.maxBacklog)
	if err != nil {
		if errors.Is(err, git.ErrNoCommits) {
			return res, nil
		}
		return res, fmt.Errorf("reading commit log: %w", err)
	}

	if since != "" && !found && len(commits) > 1 {
		w.logger.Warn("last processed commit not in recent history, handling latest commit only",
			"marker", since, "inspected", len(commits))
		commits = commits[len(commits)-1:]
	}

	for _, c := range commits {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		entry, recorded, err := w.process(ctx, c)
		if err != nil {
			res.Failed = fmt.Errorf("recording commit %s: %w", c.ShortID(), err)
			if jerr := w.journal.Record(history.HistoryEntry{
				Commit:      c.ID,
				Status:      history.StatusFailed,
				Description: c.Subject,
				Author:      c.Author,
				Error:       err.Error(),
			}); jerr != nil {
				w.logger.Warn("failed to journal failed commit", "commit", c.ShortID(), "error", jerr)
			}
			return res, nil
		}

		if err := w.journal.Record(entry); err != nil {
			w.unsaved = c.ID
			res.JournalErr = fmt.Errorf("journaling commit %s: %w", c.ShortID(), err)
			w.logger.Warn("failed to journal commit, keeping marker in memory", "commit", c.ShortID(), "error", err)
		} else {
			w.unsaved = ""
		}

		if recorded != nil {
			res.Recorded = append(res.Recorded, *recorded)
			w.logger.Info("recorded commit", "commit", c.ShortID(), "category", recorded.Category.String(),
				"description", recorded.Description)
		} else {
			res.Skipped++
			w.logger.Debug("skipped commit", "commit", c.ShortID(), "subject", c.Subject)
		}
	}

	return res, nil
}

// process classifies c and records it. recorded is nil for a skipped commit.
func (w *Watcher) process(ctx context.Context, c git.Commit) (history.HistoryEntry, *RecordedEntry, error) {
	entry := history.HistoryEntry{
		Commit:      c.ID,
		Status:      history.StatusSkipped,
		Description: c.Subject,
		Author:      c.Author,
	}

	category, description, ok := Classify(c.Subject)
	if !ok {
		return entry, nil, nil
	}

	text := description
	var summary string
	if w.summaryLine {
		summary = w.summary(ctx, c)
		text = description + "\n" + summary
	}

	// A commit without an author must not fall back to the local identity.
	author := strings.TrimSpace(c.Author)
	if author == "" {
		author = changelog.DefaultAuthor
	}

	if err := w.recorder.AddEntry(ctx, category, text, author); err != nil {
		return entry, nil, err
	}

	entry.Status = history.StatusRecorded
	entry.Category = category.String()
	entry.Description = description
	return entry, &RecordedEntry{
		Commit:      c,
		Category:    category,
		Description: description,
		Summary:     summary,
	}, nil
}

// summary returns the summarizer's text for c or the localized placeholder.
func (w *Watcher) summary(ctx context.Context, c git.Commit) string {
	if w.summarizer == nil || !w.host.SummarizationAvailable {
		return summarize.Placeholder(w.host.Locale)
	}

	diff, err := w.source.Diff(ctx, c.ID)
	if err != nil {
		w.logger.Warn("reading commit diff failed, using placeholder", "commit", c.ShortID(), "error", err)
		return summarize.Placeholder(w.host.Locale)
	}

	text, err := summarize.Resolve(ctx, w.summarizer, true, summarize.Truncate(diff, w.maxDiff), w.host.Locale)
	if err != nil {
		w.logger.Warn("summarizer failed, using placeholder", "commit", c.ShortID(), "error", err)
	}
	return text
}

// fingerprint identifies the reflog's current size and mtime.
type fingerprint struct {
	size    int64
	modTime time.Time
}

func statFingerprint(path string) fingerprint {
	info, err := os.Stat(path)
	if err != nil {
		return fingerprint{}
	}
	return fingerprint{size: info.Size(), modTime: info.ModTime()}
}

// memoryJournal keeps the marker for the life of the process.
type memoryJournal struct {
	mu   sync.Mutex
	last string
}

func (j *memoryJournal) LastCommit() (string, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.last, nil
}

func (j *memoryJournal) Record(entry history.HistoryEntry) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if entry.Commit != "" && entry.Status.AdvancesMarker() {
		j.last = entry.Commit
	}
	return nil
}
