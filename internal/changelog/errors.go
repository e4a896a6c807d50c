package changelog

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyDescription is returned when an entry has no text after trimming.
	ErrEmptyDescription = errors.New("entry description is empty")
	// ErrNoBackup is returned by Restore when no snapshot has been written yet.
	ErrNoBackup = errors.New("no backup snapshot exists")
)

// FormatError reports a document missing its required structure.
type FormatError struct {
	Path    string
	Message string
}

func (e *FormatError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Message)
	}
	return e.Message
}

// SectionNotFoundError reports a subsection header that could not be located
// inside the Unreleased section.
type SectionNotFoundError struct {
	Section string
}

func (e *SectionNotFoundError) Error() string {
	return fmt.Sprintf("section %q not found in unreleased block", e.Section)
}

// InvalidVersionError reports a version string that is not MAJOR.MINOR.PATCH.
type InvalidVersionError struct {
	Version string
}

func (e *InvalidVersionError) Error() string {
	return fmt.Sprintf("invalid version %q (expected MAJOR.MINOR.PATCH, e.g. 1.2.3)", e.Version)
}

// EmptyReleaseError is returned when a release is requested while the
// Unreleased section holds no entries.
type EmptyReleaseError struct {
	Version string
}

func (e *EmptyReleaseError) Error() string {
	return fmt.Sprintf("nothing to release for v%s: unreleased section has no entries", e.Version)
}

// IsFormatError returns true if the error is a FormatError.
func IsFormatError(err error) bool {
	var fe *FormatError
	return errors.As(err, &fe)
}

// IsSectionNotFound returns true if the error is a SectionNotFoundError.
func IsSectionNotFound(err error) bool {
	var se *SectionNotFoundError
	return errors.As(err, &se)
}

// IsInvalidVersion returns true if the error is an InvalidVersionError.
func IsInvalidVersion(err error) bool {
	var ve *InvalidVersionError
	return errors.As(err, &ve)
}

// IsEmptyRelease returns true if the error is an EmptyReleaseError.
func IsEmptyRelease(err error) bool {
	var ee *EmptyReleaseError
	return errors.As(err, &ee)
}
