package progress

import (
	"fmt"
	"io"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
)

// Display shows a spinner on a terminal and plain status lines elsewhere.
type Display struct {
	out     io.Writer
	caps    TerminalCapabilities
	symbols ProgressSymbols
	spin    *spinner.Spinner
}

// NewDisplay creates a Display writing to out.
func NewDisplay(out io.Writer, caps TerminalCapabilities) *Display {
	return &Display{
		out:     out,
		caps:    caps,
		symbols: SelectSymbols(caps),
	}
}

// Start shows msg with a spinner. Without a TTY nothing is printed until
// the operation finishes.
func (d *Display) Start(msg string) {
	if !d.caps.IsTTY {
		return
	}
	d.spin = spinner.New(spinner.CharSets[d.symbols.SpinnerSet], 100*time.Millisecond, spinner.WithWriter(d.out))
	d.spin.Suffix = " " + msg
	d.spin.Start()
}

// Success stops the spinner and prints msg with a checkmark.
func (d *Display) Success(msg string) {
	d.finish(d.symbols.Checkmark, color.FgGreen, msg)
}

// Fail stops the spinner and prints msg with a failure mark.
func (d *Display) Fail(msg string) {
	d.finish(d.symbols.Failure, color.FgRed, msg)
}

// Skip prints msg with the skipped mark.
func (d *Display) Skip(msg string) {
	d.finish(d.symbols.Skipped, color.Faint, msg)
}

func (d *Display) finish(symbol string, attr color.Attribute, msg string) {
	if d.spin != nil {
		d.spin.Stop()
		d.spin = nil
	}
	if d.caps.SupportsColor {
		symbol = color.New(attr).Sprint(symbol)
	}
	fmt.Fprintf(d.out, "%s %s\n", symbol, msg)
}
