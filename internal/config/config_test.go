package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points the user config directory at an empty temp dir and clears
// any VTRACK_ variables inherited from the environment.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("HOME", home)
	t.Setenv("AppData", filepath.Join(home, "AppData"))
	for _, kv := range os.Environ() {
		if name, _, ok := strings.Cut(kv, "="); ok && strings.HasPrefix(name, EnvPrefix) {
			t.Setenv(name, "")
			require.NoError(t, os.Unsetenv(name))
		}
	}
	return home
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)
	root := t.TempDir()

	cfg, err := Load(root)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(root, "CHANGELOG.md"), cfg.ChangelogPath)
	assert.Equal(t, filepath.Join(root, "CHANGELOG.md.bak"), cfg.BackupPath)
	assert.Equal(t, filepath.Join(root, ".versiontracker"), cfg.StateDir)
	assert.Equal(t, "en", cfg.Locale)
	assert.Equal(t, 2*time.Second, cfg.AuthorTimeout)
	assert.Equal(t, 500, cfg.MaxHistoryEntries)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.LogJSON)
	assert.False(t, cfg.Summarize.Enabled)
	assert.Equal(t, 30*time.Second, cfg.Summarize.Timeout)
	assert.Equal(t, 64*1024, cfg.Summarize.MaxDiffBytes)
	assert.Equal(t, 2*time.Second, cfg.Watch.PollInterval)
	assert.Equal(t, 100, cfg.Watch.MaxBacklog)
	assert.True(t, cfg.Watch.SummaryLine)
}

func TestLoad_Layering(t *testing.T) {
	home := isolate(t)
	root := t.TempDir()

	writeFile(t, filepath.Join(home, ".config", AppName, "config.yml"), "locale: zh\nlog_level: debug\nmax_history_entries: 10\n")
	writeFile(t, ProjectConfigPath(root), "log_level: warn\nwatch:\n  max_backlog: 5\n")
	t.Setenv("VTRACK_MAX_HISTORY_ENTRIES", "20")
	t.Setenv("VTRACK_WATCH__SUMMARY_LINE", "false")

	loaded, err := LoadWithOptions(LoadOptions{ProjectRoot: root})
	require.NoError(t, err)

	assert.Equal(t, "zh", loaded.Locale)
	assert.Equal(t, "warn", loaded.LogLevel)
	assert.Equal(t, 20, loaded.MaxHistoryEntries)
	assert.Equal(t, 5, loaded.Watch.MaxBacklog)
	assert.False(t, loaded.Watch.SummaryLine)

	assert.Equal(t, SourceUser, loaded.Sources["locale"])
	assert.Equal(t, SourceProject, loaded.Sources["log_level"])
	assert.Equal(t, SourceEnv, loaded.Sources["max_history_entries"])
	assert.Equal(t, SourceEnv, loaded.Sources["watch.summary_line"])
	assert.Equal(t, SourceProject, loaded.Sources["watch.max_backlog"])
	assert.Equal(t, SourceDefault, loaded.Sources["changelog_path"])
	assert.Len(t, loaded.Files, 2)
}

func TestLoad_ProjectJSON(t *testing.T) {
	isolate(t)
	root := t.TempDir()
	writeFile(t, ProjectJSONConfigPath(root), `{"changelog_path": "docs/CHANGES.md", "summarize": {"timeout": "5s"}}`)

	cfg, err := Load(root)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "docs", "CHANGES.md"), cfg.ChangelogPath)
	assert.Equal(t, filepath.Join(root, "docs", "CHANGES.md.bak"), cfg.BackupPath)
	assert.Equal(t, 5*time.Second, cfg.Summarize.Timeout)
}

func TestLoad_YAMLPreferredOverJSON(t *testing.T) {
	isolate(t)
	root := t.TempDir()
	writeFile(t, ProjectConfigPath(root), "locale: zh\n")
	writeFile(t, ProjectJSONConfigPath(root), `{"locale": "en", "title": "ignored"}`)

	cfg, err := Load(root)
	require.NoError(t, err)
	assert.Equal(t, "zh", cfg.Locale)
	assert.Empty(t, cfg.Title)
}

func TestLoad_ExplicitConfigFile(t *testing.T) {
	isolate(t)
	root := t.TempDir()
	writeFile(t, ProjectConfigPath(root), "locale: zh\n")
	explicit := filepath.Join(t.TempDir(), "custom.yml")
	writeFile(t, explicit, "title: Release Notes\nbackup_path: /tmp/notes.bak\n")

	loaded, err := LoadWithOptions(LoadOptions{ProjectRoot: root, ConfigFile: explicit})
	require.NoError(t, err)
	assert.Equal(t, "en", loaded.Locale, "project config is replaced by the explicit file")
	assert.Equal(t, "Release Notes", loaded.Labels().Title)
	assert.Equal(t, "/tmp/notes.bak", loaded.BackupPath)
	assert.Equal(t, SourceFile, loaded.Sources["title"])

	_, err = LoadWithOptions(LoadOptions{ProjectRoot: root, ConfigFile: filepath.Join(root, "missing.yml")})
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]struct {
		content string
		wantErr string
	}{
		"bad locale": {
			content: "locale: fr\n",
			wantErr: "locale",
		},
		"bad log level": {
			content: "log_level: loud\n",
			wantErr: "log_level",
		},
		"zero backlog": {
			content: "watch:\n  max_backlog: 0\n",
			wantErr: "watch.max_backlog",
		},
		"summarizer without command": {
			content: "summarize:\n  enabled: true\n",
			wantErr: "summarize.command",
		},
		"yaml syntax": {
			content: "locale: [en\n",
			wantErr: "validating YAML syntax",
		},
		"bad duration": {
			content: "author_timeout: soon\n",
			wantErr: "unmarshal",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			isolate(t)
			root := t.TempDir()
			writeFile(t, ProjectConfigPath(root), tt.content)

			_, err := Load(root)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_SkipUserConfig(t *testing.T) {
	home := isolate(t)
	writeFile(t, filepath.Join(home, ".config", AppName, "config.yml"), "locale: zh\n")

	loaded, err := LoadWithOptions(LoadOptions{ProjectRoot: t.TempDir(), SkipUserConfig: true})
	require.NoError(t, err)
	assert.Equal(t, "en", loaded.Locale)
	assert.Empty(t, loaded.Files)
}

func TestEnvTransform(t *testing.T) {
	tests := map[string]string{
		"VTRACK_LOCALE":              "locale",
		"VTRACK_MAX_HISTORY_ENTRIES": "max_history_entries",
		"VTRACK_WATCH__MAX_BACKLOG":  "watch.max_backlog",
		"VTRACK_SUMMARIZE__COMMAND":  "summarize.command",
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, want, envTransform(in))
		})
	}
}

func TestToSnakeCase(t *testing.T) {
	tests := map[string]string{
		"LogJSON":           "log_json",
		"MaxDiffBytes":      "max_diff_bytes",
		"ChangelogPath":     "changelog_path",
		"MaxHistoryEntries": "max_history_entries",
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, want, toSnakeCase(in))
		})
	}
}

func TestValidateYAMLSyntax(t *testing.T) {
	dir := t.TempDir()

	assert.NoError(t, ValidateYAMLSyntax(filepath.Join(dir, "missing.yml")))

	empty := filepath.Join(dir, "empty.yml")
	writeFile(t, empty, "   \n")
	assert.NoError(t, ValidateYAMLSyntax(empty))

	bad := filepath.Join(dir, "bad.yml")
	writeFile(t, bad, "a: 1\nb: [\n")
	err := ValidateYAMLSyntax(bad)
	require.Error(t, err)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, bad, verr.FilePath)
}

func TestYAMLError(t *testing.T) {
	tests := map[string]struct {
		err  error
		want ValidationError
	}{
		"line only": {
			err:  errors.New("yaml: line 3: did not find expected key"),
			want: ValidationError{FilePath: "c.yml", Line: 3, Column: 1, Message: "did not find expected key"},
		},
		"line and column": {
			err:  errors.New("yaml: line 2: column 7: mapping values are not allowed in this context"),
			want: ValidationError{FilePath: "c.yml", Line: 2, Column: 7, Message: "mapping values are not allowed in this context"},
		},
		"no position": {
			err:  errors.New("yaml: control characters are not allowed"),
			want: ValidationError{FilePath: "c.yml", Message: "control characters are not allowed"},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.want, *yamlError("c.yml", tt.err))
		})
	}
}

func TestDefaultTemplateLoads(t *testing.T) {
	isolate(t)
	root := t.TempDir()
	writeFile(t, ProjectConfigPath(root), GetDefaultConfigTemplate())

	loaded, err := LoadWithOptions(LoadOptions{ProjectRoot: root})
	require.NoError(t, err)
	assert.Empty(t, UnknownKeys(loaded.Keys()))
	assert.Equal(t, filepath.Join(root, "CHANGELOG.md.bak"), loaded.BackupPath)
}

func TestUnknownKeys(t *testing.T) {
	assert.Equal(t, []string{"locael", "watch.interval"}, UnknownKeys([]string{"locale", "watch.interval", "locael", "log_json"}))
	assert.Empty(t, UnknownKeys([]string{"summarize.timeout"}))
}
