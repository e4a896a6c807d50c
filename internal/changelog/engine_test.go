package changelog

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticIdentity struct {
	name string
	err  error
}

func (s staticIdentity) DefaultAuthor(context.Context) (string, error) {
	return s.name, s.err
}

// blockingIdentity never answers until its context ends.
type blockingIdentity struct{}

func (blockingIdentity) DefaultAuthor(ctx context.Context) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

// memFS is an in-memory FileSystem that can be told to fail writes to one path.
type memFS struct {
	mu       sync.Mutex
	files    map[string][]byte
	failPath string
}

func newMemFS() *memFS {
	return &memFS{files: make(map[string][]byte)}
}

func (m *memFS) ReadFile(path string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.files[path]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return append([]byte(nil), data...), nil
}

func (m *memFS) WriteFile(path string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if path == m.failPath {
		return errors.New("disk full")
	}
	m.files[path] = append([]byte(nil), data...)
	return nil
}

func (m *memFS) Exists(path string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.files[path]
	return ok, nil
}

func fixedClock() time.Time {
	return time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
}

func newTestEngine(t *testing.T, opts ...EngineOption) (*Engine, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "CHANGELOG.md")
	opts = append([]EngineOption{WithClock(fixedClock)}, opts...)
	e := NewEngine(path, opts...)
	t.Cleanup(func() { e.Close() })
	return e, path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestEngine_EnsureInitialized(t *testing.T) {
	tests := map[string]struct {
		existing    *string
		wantCreated bool
		wantContent string
		wantErr     bool
	}{
		"creates missing file": {
			wantCreated: true,
			wantContent: initialEN,
		},
		"leaves valid file untouched": {
			existing:    ptr("# Notes\n## [Unreleased]\n### Features\n- A (@x)\n"),
			wantContent: "# Notes\n## [Unreleased]\n### Features\n- A (@x)\n",
		},
		"rejects file without unreleased header": {
			existing: ptr("# Notes\n"),
			wantErr:  true,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			e, path := newTestEngine(t)
			if tt.existing != nil {
				require.NoError(t, os.WriteFile(path, []byte(*tt.existing), 0o644))
			}

			created, err := e.EnsureInitialized(context.Background())
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, IsFormatError(err))
				assert.Contains(t, err.Error(), "initialize changelog:")
				assert.Contains(t, err.Error(), path)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCreated, created)
			assert.Equal(t, tt.wantContent, readFile(t, path))
		})
	}
}

func TestEngine_AddEntryAuthor(t *testing.T) {
	tests := map[string]struct {
		author   string
		identity IdentityResolver
		want     string
	}{
		"explicit author": {
			author:   "alice",
			identity: staticIdentity{name: "ignored"},
			want:     "- Add login (@alice)",
		},
		"resolver supplies author": {
			identity: staticIdentity{name: "Bob Smith"},
			want:     "- Add login (@Bob Smith)",
		},
		"no resolver": {
			want: "- Add login (@unknown)",
		},
		"resolver fails": {
			identity: staticIdentity{err: errors.New("no git config")},
			want:     "- Add login (@unknown)",
		},
		"resolver returns blank": {
			identity: staticIdentity{name: "  "},
			want:     "- Add login (@unknown)",
		},
		"resolver times out": {
			identity: blockingIdentity{},
			want:     "- Add login (@unknown)",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			opts := []EngineOption{WithAuthorTimeout(20 * time.Millisecond)}
			if tt.identity != nil {
				opts = append(opts, WithIdentityResolver(tt.identity))
			}
			e, _ := newTestEngine(t, opts...)
			ctx := context.Background()
			_, err := e.EnsureInitialized(ctx)
			require.NoError(t, err)

			require.NoError(t, e.AddFeature(ctx, "Add login", tt.author))

			doc, err := e.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{tt.want, ""}, doc.SubsectionLines(Feature))
		})
	}
}

func TestEngine_AddWritesBackupFirst(t *testing.T) {
	e, path := newTestEngine(t)
	ctx := context.Background()
	_, err := e.EnsureInitialized(ctx)
	require.NoError(t, err)

	require.NoError(t, e.AddFeature(ctx, "First", "a"))
	assert.Equal(t, initialEN, readFile(t, e.BackupPath()))

	before := readFile(t, path)
	require.NoError(t, e.AddBugfix(ctx, "Second", "b"))
	assert.Equal(t, before, readFile(t, e.BackupPath()))
	assert.Equal(t, path+".bak", e.BackupPath())
}

func TestEngine_AddErrors(t *testing.T) {
	tests := map[string]struct {
		content     string
		category    Category
		description string
		wantPrefix  string
		check       func(t *testing.T, err error)
	}{
		"empty description": {
			content:     initialEN,
			category:    Feature,
			description: "   ",
			wantPrefix:  "add feature:",
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrEmptyDescription)
			},
		},
		"missing bugfix subsection": {
			content:     "## [Unreleased]\n### Features\n",
			category:    Bugfix,
			description: "Fix crash",
			wantPrefix:  "add bugfix:",
			check: func(t *testing.T, err error) {
				assert.True(t, IsSectionNotFound(err))
			},
		},
		"missing unreleased header": {
			content:     "# Changelog\n",
			category:    Feature,
			description: "Add login",
			wantPrefix:  "add feature:",
			check: func(t *testing.T, err error) {
				assert.True(t, IsFormatError(err))
			},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			e, path := newTestEngine(t)
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			err := e.AddEntry(context.Background(), tt.category, tt.description, "alice")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantPrefix)
			tt.check(t, err)
			assert.Equal(t, tt.content, readFile(t, path))
		})
	}
}

func TestEngine_AddMissingFile(t *testing.T) {
	e, _ := newTestEngine(t)

	err := e.AddFeature(context.Background(), "Add login", "alice")
	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestEngine_ReleaseVersion(t *testing.T) {
	e, path := newTestEngine(t)
	ctx := context.Background()
	_, err := e.EnsureInitialized(ctx)
	require.NoError(t, err)
	require.NoError(t, e.AddFeature(ctx, "Add login", "alice"))
	require.NoError(t, e.AddBugfix(ctx, "Fix crash", "bob"))

	release, err := e.ReleaseVersion(ctx, "1.2.0")
	require.NoError(t, err)
	assert.Equal(t, Release{Version: "1.2.0", Date: "2024-01-15", Entries: 2}, release)

	want := "# Changelog\n\n## [Unreleased]\n### Features\n\n### Bugfixes\n\n" +
		"## [v1.2.0] - 2024-01-15\n### Features\n- Add login (@alice)\n\n### Bugfixes\n- Fix crash (@bob)\n"
	assert.Equal(t, want, readFile(t, path))
}

func TestEngine_ReleaseErrors(t *testing.T) {
	tests := map[string]struct {
		addEntry   bool
		version    string
		wantBackup bool
		check      func(t *testing.T, err error)
	}{
		"invalid version writes nothing": {
			addEntry: true,
			version:  "1.2",
			check: func(t *testing.T, err error) {
				assert.True(t, IsInvalidVersion(err))
			},
		},
		"empty release keeps document": {
			version:    "1.0.0",
			wantBackup: true,
			check: func(t *testing.T, err error) {
				assert.True(t, IsEmptyRelease(err))
			},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			e, path := newTestEngine(t)
			ctx := context.Background()
			_, err := e.EnsureInitialized(ctx)
			require.NoError(t, err)
			if tt.addEntry {
				require.NoError(t, e.AddFeature(ctx, "Add login", "alice"))
				require.NoError(t, os.Remove(e.BackupPath()))
			}
			before := readFile(t, path)

			_, err = e.ReleaseVersion(ctx, tt.version)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "release version:")
			tt.check(t, err)
			assert.Equal(t, before, readFile(t, path))

			_, statErr := os.Stat(e.BackupPath())
			assert.Equal(t, tt.wantBackup, statErr == nil)
		})
	}
}

func TestEngine_Restore(t *testing.T) {
	e, path := newTestEngine(t)
	ctx := context.Background()
	_, err := e.EnsureInitialized(ctx)
	require.NoError(t, err)

	err = e.Restore(ctx)
	require.ErrorIs(t, err, ErrNoBackup)
	assert.Contains(t, err.Error(), "restore backup:")

	require.NoError(t, e.AddFeature(ctx, "Add login", "alice"))
	require.NoError(t, e.Restore(ctx))
	assert.Equal(t, initialEN, readFile(t, path))

	// The cache must not serve the pre-restore document.
	doc, err := e.Load(ctx)
	require.NoError(t, err)
	assert.Zero(t, doc.UnreleasedCount())
}

func TestEngine_WriteFailureLeavesDocument(t *testing.T) {
	mem := newMemFS()
	path := "/repo/CHANGELOG.md"
	mem.files[path] = []byte(initialEN)
	e := NewEngine(path, WithFileSystem(mem))
	ctx := context.Background()

	mem.failPath = path
	err := e.AddFeature(ctx, "Add login", "alice")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, initialEN, string(mem.files[path]))

	mem.failPath = path + ".bak"
	err = e.AddFeature(ctx, "Add login", "alice")
	require.Error(t, err)
	assert.Equal(t, initialEN, string(mem.files[path]))

	mem.failPath = ""
	require.NoError(t, e.AddFeature(ctx, "Add login", "alice"))
	doc, err := e.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, doc.UnreleasedCount())
}

func TestEngine_SeesExternalEdits(t *testing.T) {
	e, path := newTestEngine(t)
	ctx := context.Background()
	_, err := e.EnsureInitialized(ctx)
	require.NoError(t, err)
	require.NoError(t, e.AddFeature(ctx, "First", "a"))

	edited := "# Changelog\n\n## [Unreleased]\n### Features\n- Edited by hand (@me)\n\n### Bugfixes\n"
	require.NoError(t, os.WriteFile(path, []byte(edited), 0o644))

	require.NoError(t, e.AddBugfix(ctx, "Fix", "b"))
	assert.Equal(t, "# Changelog\n\n## [Unreleased]\n### Features\n- Edited by hand (@me)\n\n### Bugfixes\n- Fix (@b)\n", readFile(t, path))
}

func TestEngine_ConcurrentAdds(t *testing.T) {
	const n = 25

	tests := map[string]struct {
		engines int
	}{
		"single engine":             {engines: 1},
		"engines sharing lock file": {engines: 3},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, "CHANGELOG.md")
			lockPath := filepath.Join(dir, ".versiontracker", "changelog.lock")

			engines := make([]*Engine, tt.engines)
			for i := range engines {
				engines[i] = NewEngine(path, WithLockPath(lockPath))
				t.Cleanup(func() { engines[i].Close() })
			}
			ctx := context.Background()
			_, err := engines[0].EnsureInitialized(ctx)
			require.NoError(t, err)

			var wg sync.WaitGroup
			errs := make(chan error, n)
			for i := 0; i < n; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					e := engines[i%len(engines)]
					if i%2 == 0 {
						errs <- e.AddFeature(ctx, fmt.Sprintf("feature %d", i), "a")
					} else {
						errs <- e.AddBugfix(ctx, fmt.Sprintf("bugfix %d", i), "b")
					}
				}(i)
			}
			wg.Wait()
			close(errs)
			for err := range errs {
				require.NoError(t, err)
			}

			doc, err := engines[0].Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, 13, doc.EntryCount(Feature))
			assert.Equal(t, 12, doc.EntryCount(Bugfix))
		})
	}
}

func TestEngine_CanceledContext(t *testing.T) {
	e, path := newTestEngine(t)
	_, err := e.EnsureInitialized(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = e.AddFeature(ctx, "Add login", "alice")
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, initialEN, readFile(t, path))
}

func ptr(s string) *string {
	return &s
}
