package config

import "time"

// GetDefaultConfigTemplate returns a fully commented config template
// that helps users understand all available options
func GetDefaultConfigTemplate() string {
	return `# versiontracker configuration
# See 'vtrack config -h' for commands, 'vtrack config show' for effective values

# Changelog settings
changelog_path: CHANGELOG.md          # Changelog file, relative to the repository root
backup_path: ""                       # Backup file (empty = <changelog_path>.bak)
title: ""                             # Document title (empty = locale default)
locale: en                            # Heading language: en | zh
author_timeout: 2s                    # Max wait for the git identity before using "unknown"

# State settings
state_dir: .versiontracker            # Journal and lock files, relative to the repository root
max_history_entries: 500              # Max processed-commit journal entries to retain

# Logging
log_level: info                       # debug | info | warn | error
log_json: false                       # Emit JSON log lines on stderr

# Commit summaries
summarize:
  enabled: false                      # Summarize each commit diff with an external command
  command: ""                         # Command reading the diff on stdin, e.g. "llm -m mini 'summarize'"
  timeout: 30s                        # Max runtime per summary
  max_diff_bytes: 65536               # Diffs are truncated to this size before summarizing

# Commit watcher
watch:
  poll_interval: 2s                   # Fallback reflog poll interval
  max_backlog: 100                    # Max new commits processed in one pass
  summary_line: true                  # Put the commit summary under each bullet
`
}

// GetDefaults returns the default configuration values
func GetDefaults() map[string]interface{} {
	return map[string]interface{}{
		"changelog_path": "CHANGELOG.md",
		// backup_path: empty means <changelog_path>.bak
		"backup_path":         "",
		"title":               "",
		"locale":              "en",
		"state_dir":           ProjectDirName,
		"author_timeout":      (2 * time.Second).String(),
		"max_history_entries": 500,
		"log_level":           "info",
		"log_json":            false,
		// summarize: disabled until a command is configured.
		"summarize": map[string]interface{}{
			"enabled":        false,
			"command":        "",
			"timeout":        (30 * time.Second).String(),
			"max_diff_bytes": 64 * 1024,
		},
		"watch": map[string]interface{}{
			"poll_interval": (2 * time.Second).String(),
			"max_backlog":   100,
			"summary_line":  true,
		},
	}
}
