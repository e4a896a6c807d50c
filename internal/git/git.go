// Package git reads commit history, commit diffs and the configured author
// identity from a local repository. It uses the go-git library throughout so
// no git executable is required.
package git

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
)

var (
	// ErrNotRepository is returned when no repository contains the given path.
	ErrNotRepository = errors.New("not a git repository")
	// ErrNoCommits is returned when HEAD does not point at a commit yet.
	ErrNoCommits = errors.New("repository has no commits")
	// ErrNoIdentity is returned when neither local nor global config sets user.name.
	ErrNoIdentity = errors.New("git user.name is not configured")
)

// debugLogger is a function that logs debug messages when debug mode is enabled.
// By default, it's a no-op. Set it via SetDebugLogger to enable debug output.
var debugLogger func(format string, args ...any)

// SetDebugLogger configures the debug logger for git operations.
// Pass nil to disable debug logging. The logger function should format
// and output the message (similar to log.Printf signature).
func SetDebugLogger(logger func(format string, args ...any)) {
	debugLogger = logger
}

// logDebug logs a debug message if the debug logger is set.
func logDebug(format string, args ...any) {
	if debugLogger != nil {
		debugLogger(format, args...)
	}
}

// Commit is the subset of commit metadata the tracker needs.
type Commit struct {
	ID      string
	Subject string
	Message string
	Author  string
	When    time.Time
}

// ShortID returns the abbreviated commit hash.
func (c Commit) ShortID() string {
	if len(c.ID) > 7 {
		return c.ID[:7]
	}
	return c.ID
}

// Repository is an opened git repository.
type Repository struct {
	repo   *git.Repository
	root   string
	gitDir string
}

// Open opens the repository containing path, walking up the directory tree
// to find it. If path is empty, the current working directory is used.
func Open(path string) (*Repository, error) {
	if path == "" {
		var err error
		path, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting current directory: %w", err)
		}
	}

	logDebug("[git] opening repository at %s", path)

	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{
		DetectDotGit:          true,
		EnableDotGitCommonDir: true,
	})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, fmt.Errorf("%s: %w", path, ErrNotRepository)
		}
		return nil, fmt.Errorf("opening repository at %s: %w", path, err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("getting worktree: %w", err)
	}
	root := worktree.Filesystem.Root()

	gitDir, err := resolveGitDir(root)
	if err != nil {
		return nil, err
	}

	logDebug("[git] repository opened at %s (git dir %s)", root, gitDir)
	return &Repository{repo: repo, root: root, gitDir: gitDir}, nil
}

// IsRepository reports whether path is inside a git repository.
func IsRepository(path string) bool {
	_, err := Open(path)
	result := err == nil
	logDebug("[git] IsRepository(%s): %v", path, result)
	return result
}

// resolveGitDir returns the git directory for a worktree root, following a
// "gitdir: <path>" file as written for linked worktrees and submodules.
func resolveGitDir(root string) (string, error) {
	dotGit := filepath.Join(root, ".git")
	info, err := os.Stat(dotGit)
	if err != nil {
		return "", fmt.Errorf("locating git directory: %w", err)
	}
	if info.IsDir() {
		return dotGit, nil
	}

	data, err := os.ReadFile(dotGit)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", dotGit, err)
	}
	line := strings.TrimSpace(string(data))
	dir, ok := strings.CutPrefix(line, "gitdir:")
	if !ok {
		return "", fmt.Errorf("unexpected content in %s", dotGit)
	}
	dir = strings.TrimSpace(dir)
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(root, dir)
	}
	return filepath.Clean(dir), nil
}

// Root returns the absolute path of the worktree root.
func (r *Repository) Root() string {
	return r.root
}

// GitDir returns the repository's git directory.
func (r *Repository) GitDir() string {
	return r.gitDir
}

// LogsDir returns the directory holding the reflogs.
func (r *Repository) LogsDir() string {
	return filepath.Join(r.gitDir, "logs")
}

// HeadLogPath returns the path of the HEAD reflog, which git appends to on
// every commit, checkout and reset.
func (r *Repository) HeadLogPath() string {
	return filepath.Join(r.LogsDir(), "HEAD")
}

// LatestCommit returns the commit HEAD points at.
func (r *Repository) LatestCommit(ctx context.Context) (Commit, error) {
	if err := ctx.Err(); err != nil {
		return Commit{}, err
	}

	c, err := r.headCommit()
	if err != nil {
		return Commit{}, err
	}
	return toCommit(c), nil
}

// CommitsSince returns the commits reachable from HEAD but not from sinceID,
// the set "git log sinceID..HEAD" lists, oldest first by committer time.
// Commits merged in from another branch are included even when they are
// older than sinceID. found is false when sinceID is not an ancestor of
// HEAD or more than limit commits are pending; commits then holds the
// newest limit commits of HEAD's history. An empty sinceID yields just the
// latest commit.
func (r *Repository) CommitsSince(ctx context.Context, sinceID string, limit int) (commits []Commit, found bool, err error) {
	if limit <= 0 {
		limit = 1
	}

	head, err := r.headCommit()
	if err != nil {
		return nil, false, err
	}
	if sinceID == "" {
		return []Commit{toCommit(head)}, false, nil
	}

	marker, err := r.repo.CommitObject(plumbing.NewHash(sinceID))
	if err == nil {
		found, err = marker.IsAncestor(head)
		if err != nil {
			return nil, false, fmt.Errorf("checking ancestry of %s: %w", shortHash(sinceID), err)
		}
	} else if !errors.Is(err, plumbing.ErrObjectNotFound) {
		return nil, false, fmt.Errorf("loading commit %s: %w", shortHash(sinceID), err)
	}

	var pending []*object.Commit
	if found {
		pending, err = r.commitsNotIn(ctx, head, marker)
	} else {
		pending, err = r.newestCommits(ctx, head, limit)
	}
	if err != nil {
		return nil, false, fmt.Errorf("walking history: %w", err)
	}

	sort.SliceStable(pending, func(i, j int) bool {
		return pending[i].Committer.When.Before(pending[j].Committer.When)
	})
	if len(pending) > limit {
		pending = pending[len(pending)-limit:]
		found = false
	}

	commits = make([]Commit, 0, len(pending))
	for _, c := range pending {
		commits = append(commits, toCommit(c))
	}

	logDebug("[git] CommitsSince(%s): %d commits, marker found: %v", shortHash(sinceID), len(commits), found)
	return commits, found, nil
}

// commitsNotIn returns the commits reachable from head that are not
// reachable from base.
func (r *Repository) commitsNotIn(ctx context.Context, head, base *object.Commit) ([]*object.Commit, error) {
	seen := make(map[plumbing.Hash]bool)
	err := object.NewCommitPreorderIter(base, nil, nil).ForEach(func(c *object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		seen[c.Hash] = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	var out []*object.Commit
	err = object.NewCommitPreorderIter(head, seen, nil).ForEach(func(c *object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		out = append(out, c)
		return nil
	})
	return out, err
}

// newestCommits returns up to limit commits from head's history, newest
// committer time first.
func (r *Repository) newestCommits(ctx context.Context, head *object.Commit, limit int) ([]*object.Commit, error) {
	iter, err := r.repo.Log(&git.LogOptions{From: head.Hash, Order: git.LogOrderCommitterTime})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var out []*object.Commit
	err = iter.ForEach(func(c *object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if len(out) == limit {
			return storer.ErrStop
		}
		out = append(out, c)
		return nil
	})
	return out, err
}

// Diff returns the unified diff introduced by commit id against its first
// parent. A root commit is diffed against the empty tree.
func (r *Repository) Diff(ctx context.Context, id string) (string, error) {
	c, err := r.repo.CommitObject(plumbing.NewHash(id))
	if err != nil {
		return "", fmt.Errorf("loading commit %s: %w", shortHash(id), err)
	}

	var patch *object.Patch
	if c.NumParents() == 0 {
		tree, err := c.Tree()
		if err != nil {
			return "", fmt.Errorf("loading tree of %s: %w", shortHash(id), err)
		}
		changes, err := object.DiffTreeContext(ctx, nil, tree)
		if err != nil {
			return "", fmt.Errorf("diffing %s: %w", shortHash(id), err)
		}
		patch, err = changes.PatchContext(ctx)
		if err != nil {
			return "", fmt.Errorf("diffing %s: %w", shortHash(id), err)
		}
	} else {
		parent, err := c.Parent(0)
		if err != nil {
			return "", fmt.Errorf("loading parent of %s: %w", shortHash(id), err)
		}
		patch, err = parent.PatchContext(ctx, c)
		if err != nil {
			return "", fmt.Errorf("diffing %s: %w", shortHash(id), err)
		}
	}

	return patch.String(), nil
}

// DefaultAuthor returns user.name from the repository config merged over the
// global config.
func (r *Repository) DefaultAuthor(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	cfg, err := r.repo.ConfigScoped(config.GlobalScope)
	if err != nil {
		return "", fmt.Errorf("reading git config: %w", err)
	}

	for _, name := range []string{cfg.User.Name, cfg.Author.Name} {
		if name = strings.TrimSpace(name); name != "" {
			logDebug("[git] DefaultAuthor: %s", name)
			return name, nil
		}
	}
	return "", ErrNoIdentity
}

func (r *Repository) headCommit() (*object.Commit, error) {
	head, err := r.repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return nil, ErrNoCommits
		}
		return nil, fmt.Errorf("getting HEAD reference: %w", err)
	}

	c, err := r.repo.CommitObject(head.Hash())
	if err != nil {
		return nil, fmt.Errorf("loading HEAD commit: %w", err)
	}
	return c, nil
}

func toCommit(c *object.Commit) Commit {
	subject, _, _ := strings.Cut(strings.TrimSpace(c.Message), "\n")
	return Commit{
		ID:      c.Hash.String(),
		Subject: strings.TrimSpace(subject),
		Message: strings.TrimSpace(c.Message),
		Author:  c.Author.Name,
		When:    c.Author.When,
	}
}

func shortHash(id string) string {
	if len(id) > 7 {
		return id[:7]
	}
	return id
}
