package cli

import (
	"fmt"
	"io"

	"github.com/ariel-frischer/versiontracker/internal/build"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// SourceURL is the project source URL
const SourceURL = "https://github.com/ariel-frischer/versiontracker"

var versionCmd = &cobra.Command{
	Use:     "version",
	Aliases: []string{"v"},
	Short:   "Display version information (v)",
	Long:    "Display version, commit, build date, and Go version information for vtrack",
	Example: `  # Show version info
  vtrack version

  # Plain output (for scripts)
  vtrack version --plain`,
	Args: noArgs,
	Run: func(cmd *cobra.Command, args []string) {
		plain, _ := cmd.Flags().GetBool("plain")
		info := build.Get()
		if plain {
			printPlainVersion(cmd.OutOrStdout(), info)
		} else {
			printPrettyVersion(cmd.OutOrStdout(), info)
		}
	},
}

func init() {
	versionCmd.GroupID = GroupConfiguration
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().Bool("plain", false, "Plain output without formatting")
}

// printPlainVersion prints a simple version output for scripting
func printPlainVersion(out io.Writer, info build.Info) {
	fmt.Fprintf(out, "vtrack %s\n", info.Version)
	fmt.Fprintf(out, "commit: %s\n", info.Commit)
	fmt.Fprintf(out, "built: %s\n", info.BuildDate)
	fmt.Fprintf(out, "go: %s\n", info.GoVersion)
	fmt.Fprintf(out, "platform: %s\n", info.Platform)
}

func printPrettyVersion(out io.Writer, info build.Info) {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	commit := info.ShortCommit()
	if info.Modified {
		commit += " (modified)"
	}

	fmt.Fprintf(out, "%s %s\n", cyan("vtrack"), info.Version)
	rows := []struct {
		label string
		value string
	}{
		{"Commit", commit},
		{"Built", info.BuildDate},
		{"Go", info.GoVersion},
		{"Platform", info.Platform},
		{"Source", SourceURL},
	}
	for _, r := range rows {
		fmt.Fprintf(out, "  %s %s\n", dim(fmt.Sprintf("%-9s", r.label+":")), r.value)
	}
}
