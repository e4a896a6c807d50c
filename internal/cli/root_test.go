package cli

import (
	"errors"
	"fmt"
	"testing"

	"github.com/ariel-frischer/versiontracker/internal/changelog"
	clierrors "github.com/ariel-frischer/versiontracker/internal/errors"
	"github.com/ariel-frischer/versiontracker/internal/git"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmd_Structure(t *testing.T) {
	assert.Equal(t, "vtrack", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.Contains(t, rootCmd.Long, "github.com")
	assert.Contains(t, rootCmd.Example, "vtrack watch")
}

func TestRootCmd_PersistentFlags(t *testing.T) {
	for _, name := range []string{"config", "repo", "log-level", "log-json"} {
		t.Run(name, func(t *testing.T) {
			assert.NotNil(t, rootCmd.PersistentFlags().Lookup(name))
		})
	}
}

func TestRootCmd_Subcommands(t *testing.T) {
	tests := map[string]string{
		"init":    GroupChangelog,
		"add":     GroupChangelog,
		"release": GroupChangelog,
		"show":    GroupChangelog,
		"restore": GroupChangelog,
		"watch":   GroupAutomation,
		"sync":    GroupAutomation,
		"history": GroupAutomation,
		"config":  GroupConfiguration,
		"version": GroupConfiguration,
		"doctor":  GroupConfiguration,
	}

	for name, group := range tests {
		t.Run(name, func(t *testing.T) {
			cmd, _, err := rootCmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, cmd.Name())
			assert.Equal(t, group, cmd.GroupID)
		})
	}
}

func TestRootCmd_Help(t *testing.T) {
	res := run(t, "--help")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "Changelog Commands:")
	assert.Contains(t, res.stdout, "Automation Commands:")
}

func TestExitCode(t *testing.T) {
	tests := map[string]struct {
		err  error
		want int
	}{
		"nil":              {err: nil, want: ExitSuccess},
		"exit error":       {err: NewExitError(7), want: 7},
		"argument":         {err: clierrors.NewArgumentError("bad"), want: ExitInvalidArguments},
		"prerequisite":     {err: clierrors.NewPrerequisiteError("missing"), want: ExitMissingPrerequisites},
		"configuration":    {err: clierrors.NewConfigError("bad key"), want: ExitFailure},
		"invalid version":  {err: fmt.Errorf("release version: %w", &changelog.InvalidVersionError{Version: "x"}), want: ExitInvalidArguments},
		"not a repository": {err: git.ErrNotRepository, want: ExitMissingPrerequisites},
		"plain error":      {err: errors.New("boom"), want: ExitFailure},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}

func TestExecute_UnknownCommand(t *testing.T) {
	res := run(t, "frobnicate")
	require.Error(t, res.err)
	assert.Contains(t, res.stderr, "unknown command")
	assert.Equal(t, ExitInvalidArguments, ExitCode(res.err))
}
