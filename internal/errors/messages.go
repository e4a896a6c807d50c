package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"io/fs"

	"github.com/ariel-frischer/versiontracker/internal/changelog"
	"github.com/ariel-frischer/versiontracker/internal/config"
	"github.com/ariel-frischer/versiontracker/internal/git"
	"github.com/ariel-frischer/versiontracker/internal/watcher"
)

// Common error messages for the vtrack CLI.
// These templates ensure consistent, actionable error messages.

// MissingEntryDescription creates an error for a missing add argument.
func MissingEntryDescription(category string) *CLIError {
	return NewArgumentErrorWithUsage(
		fmt.Sprintf("%s description is required", category),
		fmt.Sprintf("vtrack add %s \"<description>\"", category),
		"Provide the entry text in quotes",
		"Example: vtrack add feature \"Add dark mode\"",
	)
}

// UnknownCategory creates an error for an add category that is neither
// feature nor bugfix.
func UnknownCategory(category string) *CLIError {
	return NewArgumentErrorWithUsage(
		fmt.Sprintf("unknown category %q", category),
		"vtrack add feature|bugfix \"<description>\"",
		"Use 'feature' (or 'feat') for new functionality",
		"Use 'bugfix' (or 'fix') for corrections",
	)
}

// NotARepository creates an error for a directory outside any git repository.
func NotARepository(path string) *CLIError {
	return NewPrerequisiteError(
		fmt.Sprintf("%s is not inside a git repository", path),
		"Run vtrack from within a git checkout",
		"Or pass the checkout with --repo <path>",
	)
}

// ChangelogNotFound creates an error for a missing changelog file.
func ChangelogNotFound(path string) *CLIError {
	return NewPrerequisiteError(
		fmt.Sprintf("changelog not found: %s", path),
		"Run 'vtrack init' to create it",
		"Or set changelog_path in .versiontracker/config.yml",
	)
}

// FromError classifies err into a CLIError with remediation hints. A
// CLIError anywhere in the chain is returned unchanged.
func FromError(err error) *CLIError {
	if err == nil {
		return nil
	}
	if cliErr := AsCLIError(err); cliErr != nil {
		return cliErr
	}

	var (
		validationErr *config.ValidationError
		formatErr     *changelog.FormatError
		sectionErr    *changelog.SectionNotFoundError
		versionErr    *changelog.InvalidVersionError
		emptyErr      *changelog.EmptyReleaseError
		notFoundErr   *changelog.VersionNotFoundError
		startErr      *watcher.WatchStartError
	)

	switch {
	case stderrors.As(err, &validationErr):
		return Wrap(err, Configuration,
			"Check the value in your config file or VTRACK_ environment variables",
			"Run 'vtrack config show' to see where each value comes from")
	case stderrors.As(err, &formatErr), stderrors.As(err, &sectionErr):
		return Wrap(err, Prerequisite,
			"The changelog needs a '## [Unreleased]' section with Features and Bugfixes subsections",
			"Run 'vtrack restore' if a recent change damaged it")
	case stderrors.As(err, &versionErr):
		return Wrap(err, Argument,
			"Use a plain MAJOR.MINOR.PATCH version, e.g. vtrack release 1.2.3")
	case stderrors.As(err, &emptyErr):
		return Wrap(err, Prerequisite,
			"Add entries first with 'vtrack add' or 'vtrack sync'")
	case stderrors.As(err, &notFoundErr):
		return Wrap(err, Argument,
			"Run 'vtrack show' to list released versions")
	case stderrors.Is(err, changelog.ErrEmptyDescription):
		return Wrap(err, Argument,
			"Provide non-empty entry text")
	case stderrors.Is(err, changelog.ErrNoBackup):
		return Wrap(err, Prerequisite,
			"A backup is written before every change; make a change first")
	case stderrors.Is(err, git.ErrNotRepository):
		return Wrap(err, Prerequisite,
			"Run vtrack from within a git checkout, or pass --repo <path>")
	case stderrors.Is(err, git.ErrNoCommits):
		return Wrap(err, Prerequisite,
			"Create a first commit, then run the command again")
	case stderrors.As(err, &startErr):
		return Wrap(err, Runtime,
			"Check that the repository's .git/logs directory is readable",
			"On Linux, raise fs.inotify.max_user_watches if the limit is reached")
	case stderrors.Is(err, watcher.ErrAlreadyStarted):
		return Wrap(err, Runtime)
	case stderrors.Is(err, context.Canceled), stderrors.Is(err, context.DeadlineExceeded):
		return Wrap(err, Runtime,
			"The operation was interrupted; run it again")
	case stderrors.Is(err, fs.ErrNotExist):
		return Wrap(err, Prerequisite,
			"Run 'vtrack init' to create the changelog")
	default:
		return Wrap(err, Runtime)
	}
}
