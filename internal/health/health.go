// Package health provides the environment checks behind 'vtrack doctor'.
// Each check inspects one prerequisite of recording changelog entries (the
// repository, the changelog file, the state directory, the journal and the
// summarizer command) and returns a structured result.
package health

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/ariel-frischer/versiontracker/internal/changelog"
	"github.com/ariel-frischer/versiontracker/internal/config"
	"github.com/ariel-frischer/versiontracker/internal/git"
	"github.com/ariel-frischer/versiontracker/internal/history"
	"github.com/ariel-frischer/versiontracker/internal/summarize"
)

// CheckResult represents the result of a single health check.
type CheckResult struct {
	Name    string
	Passed  bool
	Message string
	// Optional marks a check whose failure only disables a feature.
	Optional bool
}

// HealthReport contains all health check results.
type HealthReport struct {
	Checks []CheckResult
	Passed bool
}

// DocumentLoader loads the changelog for inspection.
type DocumentLoader interface {
	Path() string
	Load(ctx context.Context) (*changelog.Document, error)
}

// Options carries what the checks inspect.
type Options struct {
	Root      string
	Repo      *git.Repository
	Config    *config.Loaded
	Changelog DocumentLoader
}

// RunHealthChecks runs all health checks and returns a report. The report
// passes when every non-optional check passes.
func RunHealthChecks(ctx context.Context, opts Options) *HealthReport {
	checks := []CheckResult{
		CheckRepository(ctx, opts.Root, opts.Repo),
		CheckChangelog(ctx, opts.Changelog),
		CheckStateDir(opts.Config.StateDir),
		CheckJournal(opts.Config.StateDir),
		CheckSummarizer(opts.Config.Summarize),
		CheckConfigKeys(opts.Config),
	}

	report := &HealthReport{Checks: checks, Passed: true}
	for _, c := range checks {
		if !c.Passed && !c.Optional {
			report.Passed = false
		}
	}
	return report
}

// CheckRepository checks that root is a git repository with at least one commit.
// Only sync and watch need it, so the check is optional.
func CheckRepository(ctx context.Context, root string, repo *git.Repository) CheckResult {
	result := CheckResult{Name: "Git repository", Optional: true}
	if repo == nil {
		result.Message = fmt.Sprintf("%s is not a git repository (sync and watch unavailable)", root)
		return result
	}

	head, err := repo.LatestCommit(ctx)
	if err != nil {
		if errors.Is(err, git.ErrNoCommits) {
			result.Message = "repository has no commits yet"
			return result
		}
		result.Message = err.Error()
		return result
	}

	result.Passed = true
	result.Message = fmt.Sprintf("%s (HEAD %s)", repo.Root(), head.ShortID())
	return result
}

// CheckChangelog checks that the changelog exists and has the Unreleased
// structure entries are recorded into.
func CheckChangelog(ctx context.Context, loader DocumentLoader) CheckResult {
	result := CheckResult{Name: "Changelog"}
	doc, err := loader.Load(ctx)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			result.Message = fmt.Sprintf("%s not found - run 'vtrack init'", loader.Path())
			return result
		}
		result.Message = err.Error()
		return result
	}

	releases := len(doc.Releases())
	result.Passed = true
	result.Message = fmt.Sprintf("%s (%d unreleased %s, %d %s)", loader.Path(),
		doc.UnreleasedCount(), plural(doc.UnreleasedCount(), "entry", "entries"),
		releases, plural(releases, "release", "releases"))
	return result
}

// CheckStateDir checks that the state directory can be created and written.
func CheckStateDir(dir string) CheckResult {
	result := CheckResult{Name: "State directory"}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		result.Message = fmt.Sprintf("cannot create %s: %v", dir, err)
		return result
	}

	f, err := os.CreateTemp(dir, ".doctor-*")
	if err != nil {
		result.Message = fmt.Sprintf("%s is not writable: %v", dir, err)
		return result
	}
	name := f.Name()
	f.Close()
	os.Remove(name)

	result.Passed = true
	result.Message = dir
	return result
}

// CheckJournal checks that the processed-commit journal parses.
func CheckJournal(stateDir string) CheckResult {
	result := CheckResult{Name: "Commit journal"}
	h, err := history.LoadHistory(stateDir)
	if err != nil {
		result.Message = err.Error()
		return result
	}

	result.Passed = true
	if h.LastCommit == "" {
		result.Message = "no commits processed yet"
		return result
	}
	result.Message = fmt.Sprintf("%d %s, last commit %s", len(h.Entries),
		plural(len(h.Entries), "entry", "entries"), shortID(h.LastCommit))
	return result
}

// CheckSummarizer checks that the configured summarizer command is installed.
// Without it entries get placeholder summaries, so the check is optional.
func CheckSummarizer(cfg config.SummarizeConfig) CheckResult {
	result := CheckResult{Name: "Summarizer", Optional: true}
	if !cfg.Enabled {
		result.Passed = true
		result.Message = "disabled"
		return result
	}

	if !summarize.Available(cfg.Command) {
		result.Message = fmt.Sprintf("command %q not found in PATH (placeholder summaries will be used)", cfg.Command)
		return result
	}

	result.Passed = true
	result.Message = fmt.Sprintf("%q found", cfg.Command)
	return result
}

// CheckConfigKeys reports keys set in config files or the environment that
// vtrack does not recognize, usually typos.
func CheckConfigKeys(loaded *config.Loaded) CheckResult {
	result := CheckResult{Name: "Configuration", Optional: true}
	unknown := config.UnknownKeys(loaded.Keys())
	if len(unknown) > 0 {
		result.Message = "unknown keys: " + strings.Join(unknown, ", ")
		return result
	}

	result.Passed = true
	if len(loaded.Files) == 0 {
		result.Message = "defaults only"
	} else {
		result.Message = strings.Join(loaded.Files, ", ")
	}
	return result
}

// FormatReport formats the health report for console output.
func FormatReport(report *HealthReport) string {
	var b strings.Builder
	for _, check := range report.Checks {
		switch {
		case check.Passed:
			fmt.Fprintf(&b, "✓ %s: %s\n", check.Name, check.Message)
		case check.Optional:
			fmt.Fprintf(&b, "○ %s: %s\n", check.Name, check.Message)
		default:
			fmt.Fprintf(&b, "✗ %s: %s\n", check.Name, check.Message)
		}
	}
	return b.String()
}

func plural(n int, singular, pluralForm string) string {
	if n == 1 {
		return singular
	}
	return pluralForm
}

func shortID(id string) string {
	if len(id) > 7 {
		return id[:7]
	}
	return id
}
