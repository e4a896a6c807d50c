// Package progress renders progress feedback for long-running commands:
// a spinner while work is in flight and a status symbol when it ends.
package progress

// TerminalCapabilities describes what the output terminal supports.
type TerminalCapabilities struct {
	IsTTY           bool
	SupportsColor   bool
	SupportsUnicode bool
	Width           int
}

// ProgressSymbols is the symbol set used for status lines.
type ProgressSymbols struct {
	Checkmark  string
	Failure    string
	Skipped    string
	SpinnerSet int
}
