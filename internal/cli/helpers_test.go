package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

type result struct {
	stdout string
	stderr string
	err    error
}

// run executes vtrack with args against the fresh flag state.
func run(t *testing.T, args ...string) result {
	t.Helper()

	resetFlags(rootCmd)
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := ExecuteContext(context.Background())
	return result{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func resetFlags(cmd *cobra.Command) {
	for _, fs := range []*pflag.FlagSet{cmd.Flags(), cmd.PersistentFlags()} {
		fs.VisitAll(func(f *pflag.Flag) {
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		})
	}
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// isolate keeps user config and VTRACK_ variables out of the test.
func isolate(t *testing.T) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("GIT_CONFIG_NOSYSTEM", "1")
	for _, kv := range os.Environ() {
		if name, _, ok := strings.Cut(kv, "="); ok && strings.HasPrefix(name, "VTRACK_") {
			t.Setenv(name, "")
			require.NoError(t, os.Unsetenv(name))
		}
	}
}

type testRepo struct {
	t    *testing.T
	dir  string
	repo *gogit.Repository
	n    int
}

// newTestRepo creates a repository whose local user.name is Alice.
func newTestRepo(t *testing.T) *testRepo {
	t.Helper()
	isolate(t)

	dir := t.TempDir()
	repo, err := gogit.PlainInit(dir, false)
	require.NoError(t, err)

	cfg, err := repo.Config()
	require.NoError(t, err)
	cfg.User.Name = "Alice"
	cfg.User.Email = "alice@example.com"
	require.NoError(t, repo.SetConfig(cfg))

	return &testRepo{t: t, dir: dir, repo: repo}
}

func (r *testRepo) commit(message string) string {
	r.t.Helper()
	r.n++

	name := fmt.Sprintf("file%d.txt", r.n)
	require.NoError(r.t, os.WriteFile(filepath.Join(r.dir, name), []byte(message+"\n"), 0o644))

	wt, err := r.repo.Worktree()
	require.NoError(r.t, err)
	_, err = wt.Add(name)
	require.NoError(r.t, err)

	hash, err := wt.Commit(message, &gogit.CommitOptions{
		Author: &object.Signature{
			Name:  "Alice",
			Email: "alice@example.com",
			When:  time.Date(2024, 1, 1, 12, 0, r.n, 0, time.UTC),
		},
	})
	require.NoError(r.t, err)
	return hash.String()
}

func (r *testRepo) changelog() string {
	r.t.Helper()
	data, err := os.ReadFile(filepath.Join(r.dir, "CHANGELOG.md"))
	require.NoError(r.t, err)
	return string(data)
}
