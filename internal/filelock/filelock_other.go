//go:build !unix && !windows

package filelock

import "os"

// Platforms without advisory locks rely on in-process serialization only.
func lockFile(*os.File) error   { return nil }
func unlockFile(*os.File) error { return nil }
