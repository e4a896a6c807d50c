package changelog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ariel-frischer/versiontracker/internal/filelock"
	"github.com/zeebo/xxh3"
)

// DefaultAuthorTimeout bounds identity resolution before falling back to DefaultAuthor.
const DefaultAuthorTimeout = 2 * time.Second

// IdentityResolver supplies the author recorded when none is given.
type IdentityResolver interface {
	DefaultAuthor(ctx context.Context) (string, error)
}

// Engine owns one changelog file. Every operation is a whole-file
// read-modify-write performed under the engine's single-writer lock.
type Engine struct {
	path          string
	backupPath    string
	labels        Labels
	fs            FileSystem
	identity      IdentityResolver
	authorTimeout time.Duration
	now           func() time.Time
	lock          *filelock.Lock

	mu    sync.Mutex
	cache *cachedDocument
}

// cachedDocument is the last parsed document and the fingerprint of the
// text it was parsed from. A mutation re-parses only when the file changed
// underneath the engine.
type cachedDocument struct {
	sum uint64
	doc *Document
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLabels sets the header labels.
func WithLabels(l Labels) EngineOption {
	return func(e *Engine) {
		e.labels = l
	}
}

// WithFileSystem replaces the local disk (for tests).
func WithFileSystem(fs FileSystem) EngineOption {
	return func(e *Engine) {
		e.fs = fs
	}
}

// WithBackupPath sets where the backup snapshot is written.
func WithBackupPath(path string) EngineOption {
	return func(e *Engine) {
		if path != "" {
			e.backupPath = path
		}
	}
}

// WithIdentityResolver sets the fallback author source.
func WithIdentityResolver(r IdentityResolver) EngineOption {
	return func(e *Engine) {
		e.identity = r
	}
}

// WithAuthorTimeout bounds identity resolution.
func WithAuthorTimeout(d time.Duration) EngineOption {
	return func(e *Engine) {
		if d > 0 {
			e.authorTimeout = d
		}
	}
}

// WithClock sets the clock used for release dates.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		e.now = now
	}
}

// WithLockPath enables cross-process locking on the given lock file.
func WithLockPath(path string) EngineOption {
	return func(e *Engine) {
		if path != "" {
			e.lock = filelock.New(path)
		}
	}
}

// NewEngine creates an Engine for the changelog at path.
func NewEngine(path string, opts ...EngineOption) *Engine {
	e := &Engine{
		path:          path,
		backupPath:    path + ".bak",
		labels:        LabelsFor("en"),
		fs:            OSFileSystem{},
		authorTimeout: DefaultAuthorTimeout,
		now:           time.Now,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Path returns the changelog path.
func (e *Engine) Path() string {
	return e.path
}

// BackupPath returns the backup snapshot path.
func (e *Engine) BackupPath() string {
	return e.backupPath
}

// Labels returns the configured header labels.
func (e *Engine) Labels() Labels {
	return e.labels
}

// Close releases the cross-process lock handle, if any.
func (e *Engine) Close() error {
	if e.lock == nil {
		return nil
	}
	return e.lock.Close()
}

// EnsureInitialized creates the changelog if it does not exist, otherwise
// checks that it carries the Unreleased header. Returns true if the file was created.
func (e *Engine) EnsureInitialized(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, fmt.Errorf("initialize changelog: %w", err)
	}

	created := false
	err := e.withLock(func() error {
		exists, err := e.fs.Exists(e.path)
		if err != nil {
			return fmt.Errorf("checking %s: %w", e.path, err)
		}

		if !exists {
			text := InitialContent(e.labels)
			if err := e.fs.WriteFile(e.path, []byte(text)); err != nil {
				return fmt.Errorf("writing %s: %w", e.path, err)
			}
			e.remember(text, NewDocument(e.labels))
			created = true
			return nil
		}

		_, _, err = e.load()
		return err
	})
	if err != nil {
		return false, fmt.Errorf("initialize changelog: %w", err)
	}

	return created, nil
}

// AddEntry inserts a new entry as the first line under the subsection for c.
// An empty author is resolved through the identity resolver, then DefaultAuthor.
func (e *Engine) AddEntry(ctx context.Context, c Category, description, author string) error {
	op := "add " + c.String()

	lines, err := FormatEntry(description, e.resolveAuthor(ctx, author))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	err = e.mutate(ctx, func(doc *Document) error {
		return doc.Insert(c, lines)
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// AddFeature records a Feature entry.
func (e *Engine) AddFeature(ctx context.Context, description, author string) error {
	return e.AddEntry(ctx, Feature, description, author)
}

// AddBugfix records a Bugfix entry.
func (e *Engine) AddBugfix(ctx context.Context, description, author string) error {
	return e.AddEntry(ctx, Bugfix, description, author)
}

// ReleaseVersion moves the Unreleased entries under a new "## [vX.Y.Z] - date"
// section placed directly after a reset Unreleased block.
func (e *Engine) ReleaseVersion(ctx context.Context, version string) (Release, error) {
	if err := ValidateVersion(version); err != nil {
		return Release{}, fmt.Errorf("release version: %w", err)
	}

	release := Release{
		Version: version,
		Date:    e.now().Format("2006-01-02"),
	}

	err := e.mutate(ctx, func(doc *Document) error {
		release.Entries = doc.UnreleasedCount()
		return doc.Release(version, release.Date)
	})
	if err != nil {
		return Release{}, fmt.Errorf("release version: %w", err)
	}

	return release, nil
}

// Restore writes the backup snapshot back over the changelog.
func (e *Engine) Restore(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("restore backup: %w", err)
	}

	err := e.withLock(func() error {
		exists, err := e.fs.Exists(e.backupPath)
		if err != nil {
			return fmt.Errorf("checking %s: %w", e.backupPath, err)
		}
		if !exists {
			return ErrNoBackup
		}

		data, err := e.fs.ReadFile(e.backupPath)
		if err != nil {
			return fmt.Errorf("reading %s: %w", e.backupPath, err)
		}
		if err := e.fs.WriteFile(e.path, data); err != nil {
			return fmt.Errorf("writing %s: %w", e.path, err)
		}
		e.cache = nil
		return nil
	})
	if err != nil {
		return fmt.Errorf("restore backup: %w", err)
	}

	return nil
}

// Load returns a copy of the current document for read-only use.
func (e *Engine) Load(ctx context.Context) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("load changelog: %w", err)
	}

	var doc *Document
	err := e.withLock(func() error {
		var err error
		_, doc, err = e.load()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("load changelog: %w", err)
	}

	return doc, nil
}

// mutate runs fn against a private copy of the document. The backup
// snapshot is written first; the changelog is only replaced if fn succeeds.
func (e *Engine) mutate(ctx context.Context, fn func(doc *Document) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return e.withLock(func() error {
		text, doc, err := e.load()
		if err != nil {
			return err
		}

		if err := e.fs.WriteFile(e.backupPath, []byte(text)); err != nil {
			return fmt.Errorf("writing backup %s: %w", e.backupPath, err)
		}

		if err := fn(doc); err != nil {
			return err
		}

		out := doc.String()
		if err := e.fs.WriteFile(e.path, []byte(out)); err != nil {
			return fmt.Errorf("writing %s: %w", e.path, err)
		}
		e.remember(out, doc)

		return nil
	})
}

// load reads the file and returns its text with a private copy of the parsed document.
// Must be called with the lock held.
func (e *Engine) load() (string, *Document, error) {
	data, err := e.fs.ReadFile(e.path)
	if err != nil {
		return "", nil, fmt.Errorf("reading %s: %w", e.path, err)
	}
	text := string(data)
	sum := xxh3.HashString(text)

	if e.cache != nil && e.cache.sum == sum {
		return text, e.cache.doc.Clone(), nil
	}

	doc, err := Parse(text, e.labels)
	if err != nil {
		var fe *FormatError
		if errors.As(err, &fe) && fe.Path == "" {
			fe.Path = e.path
		}
		e.cache = nil
		return "", nil, err
	}

	e.cache = &cachedDocument{sum: sum, doc: doc}
	return text, doc.Clone(), nil
}

// remember caches doc as the parsed form of text. Must be called with the lock held.
func (e *Engine) remember(text string, doc *Document) {
	e.cache = &cachedDocument{sum: xxh3.HashString(text), doc: doc.Clone()}
}

func (e *Engine) withLock(fn func() error) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.lock != nil {
		if err := e.lock.Lock(); err != nil {
			return err
		}
		defer e.lock.Unlock()
	}

	return fn()
}

// resolveAuthor returns author if set, otherwise asks the identity resolver
// with a bounded wait, otherwise DefaultAuthor.
func (e *Engine) resolveAuthor(ctx context.Context, author string) string {
	if a := strings.TrimSpace(author); a != "" {
		return a
	}
	if e.identity == nil {
		return DefaultAuthor
	}

	ctx, cancel := context.WithTimeout(ctx, e.authorTimeout)
	defer cancel()

	type result struct {
		name string
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		name, err := e.identity.DefaultAuthor(ctx)
		ch <- result{name: name, err: err}
	}()

	select {
	case <-ctx.Done():
		return DefaultAuthor
	case r := <-ch:
		if r.err != nil || strings.TrimSpace(r.name) == "" {
			return DefaultAuthor
		}
		return strings.TrimSpace(r.name)
	}
}
