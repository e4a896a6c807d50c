// Package filelock provides an exclusive OS-level lock on a dedicated file
// for coordinating separate processes.
//
// A long-running "vtrack watch" and a manual "vtrack add" or "vtrack sync"
// are separate processes touching the same changelog and journal. Holding
// the lock for the whole read-modify-write keeps them from interleaving.
package filelock

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Lock wraps flock(2) / LockFileEx on a lock file.
// The mutex guards the handle so Close cannot race with an in-flight lock.
type Lock struct {
	mu   sync.Mutex
	path string
	f    *os.File
}

// New returns a Lock on path. The file is created on first use.
func New(path string) *Lock {
	return &Lock{path: path}
}

// Path returns the lock file path.
func (l *Lock) Path() string {
	return l.path
}

// Lock opens the lock file if needed and blocks until the exclusive lock is held.
func (l *Lock) Lock() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.f == nil {
		if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
			return fmt.Errorf("creating lock directory: %w", err)
		}
		f, err := os.OpenFile(l.path, os.O_CREATE|os.O_RDWR, 0o644)
		if err != nil {
			return fmt.Errorf("opening lock file: %w", err)
		}
		l.f = f
	}

	if err := lockFile(l.f); err != nil {
		return fmt.Errorf("acquiring lock %s: %w", l.path, err)
	}
	return nil
}

// Unlock releases the lock. No-op if the handle was never opened.
func (l *Lock) Unlock() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.f == nil {
		return nil
	}
	return unlockFile(l.f)
}

// Close releases the handle. Further Lock calls reopen it.
func (l *Lock) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.f == nil {
		return nil
	}
	err := l.f.Close()
	l.f = nil
	return err
}
