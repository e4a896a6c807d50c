package cli

import (
	"errors"
	"fmt"

	clierrors "github.com/ariel-frischer/versiontracker/internal/errors"
)

// Exit codes for the vtrack CLI
// These codes support programmatic composition and CI/CD integration
const (
	// ExitSuccess indicates successful command execution
	ExitSuccess = 0

	// ExitFailure indicates the command failed
	ExitFailure = 1

	// ExitInvalidArguments indicates invalid command arguments
	ExitInvalidArguments = 3

	// ExitMissingPrerequisites indicates the repository, changelog or
	// backup the command needs is missing or malformed
	ExitMissingPrerequisites = 4
)

// ExitError carries an exit code for a failure that has already been
// reported to the user.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// NewExitError returns an ExitError with the given code.
func NewExitError(code int) *ExitError {
	return &ExitError{Code: code}
}

// ExitCode maps an error returned by Execute to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	switch clierrors.FromError(err).Category {
	case clierrors.Argument:
		return ExitInvalidArguments
	case clierrors.Prerequisite:
		return ExitMissingPrerequisites
	default:
		return ExitFailure
	}
}

func isSilent(err error) bool {
	var exitErr *ExitError
	return errors.As(err, &exitErr)
}
