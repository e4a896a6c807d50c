//go:build windows

package filelock

import (
	"os"

	"golang.org/x/sys/windows"
)

// Lock bytes 0 to max so the whole file region is covered.
const lockRange = 0xFFFFFFFF

func lockFile(f *os.File) error {
	var overlapped windows.Overlapped
	return windows.LockFileEx(windows.Handle(f.Fd()), windows.LOCKFILE_EXCLUSIVE_LOCK, 0, lockRange, lockRange, &overlapped)
}

func unlockFile(f *os.File) error {
	var overlapped windows.Overlapped
	return windows.UnlockFileEx(windows.Handle(f.Fd()), 0, lockRange, lockRange, &overlapped)
}
