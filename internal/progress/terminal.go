package progress

import (
	"io"
	"os"

	"golang.org/x/term"
)

// fdWriter is an output backed by a file descriptor, such as *os.File.
type fdWriter interface {
	io.Writer
	Fd() uintptr
}

// DetectTerminalCapabilities inspects out: only a terminal gets the
// spinner, colors (unless NO_COLOR is set) and Unicode symbols (unless
// VTRACK_ASCII=1).
func DetectTerminalCapabilities(out io.Writer) TerminalCapabilities {
	var caps TerminalCapabilities
	f, ok := out.(fdWriter)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return caps
	}

	caps.IsTTY = true
	caps.SupportsColor = os.Getenv("NO_COLOR") == ""
	caps.SupportsUnicode = os.Getenv("VTRACK_ASCII") != "1"
	if w, _, err := term.GetSize(int(f.Fd())); err == nil {
		caps.Width = w
	}
	return caps
}

var (
	unicodeSymbols = ProgressSymbols{Checkmark: "✓", Failure: "✗", Skipped: "·", SpinnerSet: 14}
	asciiSymbols   = ProgressSymbols{Checkmark: "[OK]", Failure: "[FAIL]", Skipped: "[SKIP]", SpinnerSet: 9}
)

// SelectSymbols returns the symbol set for the terminal. Spinner set 14 is
// braille dots, set 9 is | / - \.
func SelectSymbols(caps TerminalCapabilities) ProgressSymbols {
	if caps.SupportsUnicode {
		return unicodeSymbols
	}
	return asciiSymbols
}
