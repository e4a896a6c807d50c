package watcher

import (
	"errors"
	"fmt"
)

// ErrAlreadyStarted is returned by Start on a running watcher.
var ErrAlreadyStarted = errors.New("watcher already started")

// WatchStartError reports that change notification could not be set up.
// It is not fatal: the watcher stays inert and Pass still works.
type WatchStartError struct {
	Path string
	Err  error
}

func (e *WatchStartError) Error() string {
	return fmt.Sprintf("watching %s: %v", e.Path, e.Err)
}

func (e *WatchStartError) Unwrap() error {
	return e.Err
}

// IsWatchStartError returns true if the error is a WatchStartError.
func IsWatchStartError(err error) bool {
	var we *WatchStartError
	return errors.As(err, &we)
}
