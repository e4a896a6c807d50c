// Package output provides terminal output formatting for the vtrack CLI.
// It has minimal dependencies so any command can use it.
package output

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// PrintSuccess prints a green checkmark followed by the message.
func PrintSuccess(out io.Writer, format string, args ...any) {
	green := color.New(color.FgGreen).SprintFunc()
	fmt.Fprintf(out, "%s %s\n", green("✓"), fmt.Sprintf(format, args...))
}

// PrintWarning prints a yellow "Warning:" line, normally to stderr.
func PrintWarning(out io.Writer, format string, args ...any) {
	yellow := color.New(color.FgYellow).SprintFunc()
	fmt.Fprintf(out, "%s %s\n", yellow("Warning:"), fmt.Sprintf(format, args...))
}
