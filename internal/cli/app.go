package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ariel-frischer/versiontracker/internal/changelog"
	"github.com/ariel-frischer/versiontracker/internal/config"
	clierrors "github.com/ariel-frischer/versiontracker/internal/errors"
	"github.com/ariel-frischer/versiontracker/internal/filelock"
	"github.com/ariel-frischer/versiontracker/internal/git"
	"github.com/ariel-frischer/versiontracker/internal/history"
	"github.com/ariel-frischer/versiontracker/internal/summarize"
	"github.com/ariel-frischer/versiontracker/internal/watcher"
	"github.com/spf13/cobra"
)

// Lock files kept in the state directory.
const (
	changelogLockFile = "changelog.lock"
	watchLockFile     = "watch.lock"
)

// app is the per-invocation environment shared by the commands.
type app struct {
	root    string
	repo    *git.Repository
	cfg     *config.Loaded
	logger  *slog.Logger
	closers []io.Closer
}

// loadApp resolves the project root from --repo, loads the configuration
// and sets up logging. Outside a git repository the directory itself is
// the project root and repo is nil.
func loadApp(cmd *cobra.Command) (*app, error) {
	root, err := resolveRoot(cmd)
	if err != nil {
		return nil, err
	}

	repo, err := git.Open(root)
	switch {
	case err == nil:
		root = repo.Root()
	case errors.Is(err, git.ErrNotRepository):
		repo = nil
	default:
		return nil, clierrors.WrapWithMessage(err, clierrors.Prerequisite, "opening repository")
	}

	configFile, _ := cmd.Flags().GetString("config")
	loaded, err := config.LoadWithOptions(config.LoadOptions{ProjectRoot: root, ConfigFile: configFile})
	if err != nil {
		return nil, clierrors.WrapWithMessage(err, clierrors.Configuration, "loading configuration",
			"Check .versiontracker/config.yml and VTRACK_ environment variables",
			"Run 'vtrack config init' to write a commented template")
	}

	logger := resolveLoggerConfig(cmd, loaded.Configuration).configure(cmd.ErrOrStderr())
	installGitDebugLogger(logger)
	logger.Debug("configuration loaded", "root", root, "files", loaded.Files, "in_repository", repo != nil)

	return &app{root: root, repo: repo, cfg: loaded, logger: logger}, nil
}

func resolveRoot(cmd *cobra.Command) (string, error) {
	root, _ := cmd.Flags().GetString("repo")
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getting current directory: %w", err)
		}
		return wd, nil
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return "", clierrors.WrapWithMessage(err, clierrors.Argument, "resolving --repo")
	}
	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		return "", clierrors.NewArgumentError(fmt.Sprintf("--repo %s is not a directory", root))
	}
	return abs, nil
}

// Close releases every lock and handle opened through the app.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i].Close())
	}
	a.closers = nil
	return errors.Join(errs...)
}

// requireRepo returns the repository or a prerequisite error when the
// command runs outside one.
func (a *app) requireRepo() (*git.Repository, error) {
	if a.repo == nil {
		return nil, clierrors.NotARepository(a.root)
	}
	return a.repo, nil
}

// engine returns a changelog engine for the configured file. The git
// identity, when available, supplies the default author.
func (a *app) engine() *changelog.Engine {
	opts := []changelog.EngineOption{
		changelog.WithLabels(a.cfg.Labels()),
		changelog.WithBackupPath(a.cfg.BackupPath),
		changelog.WithAuthorTimeout(a.cfg.AuthorTimeout),
		changelog.WithLockPath(filepath.Join(a.cfg.StateDir, changelogLockFile)),
	}
	if a.repo != nil {
		opts = append(opts, changelog.WithIdentityResolver(a.repo))
	}

	e := changelog.NewEngine(a.cfg.ChangelogPath, opts...)
	a.closers = append(a.closers, e)
	return e
}

// journal returns the processed-commit journal writer.
func (a *app) journal() *history.Writer {
	w := history.NewWriter(a.cfg.StateDir, a.cfg.MaxHistoryEntries)
	a.closers = append(a.closers, w)
	return w
}

// watcher builds a commit watcher over repo that records into engine and
// journals into journal. Summaries use the configured command when it is
// enabled and installed; otherwise the placeholder text is written.
func (a *app) watcher(repo *git.Repository, engine *changelog.Engine, journal *history.Writer, opts ...watcher.Option) (*watcher.Watcher, error) {
	passLock := filelock.New(filepath.Join(a.cfg.StateDir, watchLockFile))
	a.closers = append(a.closers, passLock)

	host := watcher.HostConfig{Locale: a.cfg.Locale}
	wopts := []watcher.Option{
		watcher.WithLogger(a.logger),
		watcher.WithInterval(a.cfg.Watch.PollInterval),
		watcher.WithMaxBacklog(a.cfg.Watch.MaxBacklog),
		watcher.WithSummaryLine(a.cfg.Watch.SummaryLine),
		watcher.WithJournal(journal),
		watcher.WithPassLock(passLock),
	}

	if a.cfg.Summarize.Enabled {
		fn, err := summarize.Command(a.cfg.Summarize.Command, a.cfg.Summarize.Timeout)
		if err != nil {
			return nil, clierrors.WrapWithMessage(err, clierrors.Configuration, "summarize.command",
				"Set summarize.command to a command that reads a diff on stdin")
		}
		host.SummarizationAvailable = summarize.Available(a.cfg.Summarize.Command)
		if !host.SummarizationAvailable {
			a.logger.Warn("summarizer command not found, using placeholder summaries", "command", a.cfg.Summarize.Command)
		}
		wopts = append(wopts, watcher.WithSummarizer(fn, a.cfg.Summarize.MaxDiffBytes))
	}

	return watcher.New(repo, engine, host, append(wopts, opts...)...), nil
}
