package cli

import (
	"fmt"

	clierrors "github.com/ariel-frischer/versiontracker/internal/errors"
	"github.com/spf13/cobra"
)

// noArgs rejects positional arguments with an argument error.
func noArgs(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return clierrors.NewArgumentErrorWithUsage(
			fmt.Sprintf("unexpected argument %q", args[0]), cmd.UseLine())
	}
	return nil
}

// exactArgs requires exactly n positional arguments.
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return clierrors.NewArgumentErrorWithUsage(
				fmt.Sprintf("accepts %d arg(s), received %d", n, len(args)), cmd.UseLine())
		}
		return nil
	}
}

// argumentErrorf returns an argument error with a formatted message.
func argumentErrorf(format string, args ...any) error {
	return clierrors.NewArgumentError(fmt.Sprintf(format, args...))
}
