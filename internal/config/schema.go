package config

import "sort"

// ConfigValueType defines the expected type for a configuration value.
type ConfigValueType int

const (
	TypeBool ConfigValueType = iota
	TypeInt
	TypeDuration
	TypeString
	TypeEnum
)

// String returns the string representation of ConfigValueType.
func (t ConfigValueType) String() string {
	switch t {
	case TypeBool:
		return "bool"
	case TypeInt:
		return "int"
	case TypeDuration:
		return "duration"
	case TypeString:
		return "string"
	case TypeEnum:
		return "enum"
	default:
		return "unknown"
	}
}

// ConfigKeySchema describes a known configuration key.
type ConfigKeySchema struct {
	Path          string          // Dotted key path (e.g., "watch.max_backlog")
	Type          ConfigValueType // Expected value type
	AllowedValues []string        // Valid values for enum types
	Description   string          // Human-readable description for help text
}

// KnownKeys is the registry of all known configuration keys.
var KnownKeys = map[string]ConfigKeySchema{
	"changelog_path":      {Path: "changelog_path", Type: TypeString, Description: "Changelog file, relative to the repository root"},
	"backup_path":         {Path: "backup_path", Type: TypeString, Description: "Backup file written before every mutation"},
	"title":               {Path: "title", Type: TypeString, Description: "Document title for new changelogs"},
	"locale":              {Path: "locale", Type: TypeEnum, AllowedValues: []string{"en", "zh"}, Description: "Heading language"},
	"state_dir":           {Path: "state_dir", Type: TypeString, Description: "Directory for the journal and lock files"},
	"author_timeout":      {Path: "author_timeout", Type: TypeDuration, Description: "Max wait for the git identity"},
	"max_history_entries": {Path: "max_history_entries", Type: TypeInt, Description: "Max processed-commit journal entries"},
	"log_level":           {Path: "log_level", Type: TypeEnum, AllowedValues: []string{"debug", "info", "warn", "error"}, Description: "Minimum log level"},
	"log_json":            {Path: "log_json", Type: TypeBool, Description: "Emit JSON log lines"},
	"summarize.enabled":   {Path: "summarize.enabled", Type: TypeBool, Description: "Summarize commit diffs with an external command"},
	"summarize.command":   {Path: "summarize.command", Type: TypeString, Description: "Summarizer command reading the diff on stdin"},
	"summarize.timeout":   {Path: "summarize.timeout", Type: TypeDuration, Description: "Max runtime per summary"},
	"summarize.max_diff_bytes": {
		Path: "summarize.max_diff_bytes", Type: TypeInt, Description: "Diff size limit before summarizing",
	},
	"watch.poll_interval": {Path: "watch.poll_interval", Type: TypeDuration, Description: "Fallback reflog poll interval"},
	"watch.max_backlog":   {Path: "watch.max_backlog", Type: TypeInt, Description: "Max new commits processed in one pass"},
	"watch.summary_line":  {Path: "watch.summary_line", Type: TypeBool, Description: "Put the commit summary under each bullet"},
}

// ErrUnknownKey is returned when trying to access an unknown configuration key.
type ErrUnknownKey struct {
	Key string
}

func (e ErrUnknownKey) Error() string {
	return "unknown configuration key: " + e.Key
}

// GetKeySchema returns the schema for a known configuration key.
// Returns ErrUnknownKey if the key is not in the registry.
func GetKeySchema(path string) (ConfigKeySchema, error) {
	schema, ok := KnownKeys[path]
	if !ok {
		return ConfigKeySchema{}, ErrUnknownKey{Key: path}
	}
	return schema, nil
}

// UnknownKeys returns the keys that are not in the registry, sorted.
func UnknownKeys(keys []string) []string {
	var unknown []string
	for _, key := range keys {
		if _, err := GetKeySchema(key); err != nil {
			unknown = append(unknown, key)
		}
	}
	sort.Strings(unknown)
	return unknown
}
