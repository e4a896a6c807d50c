// Package config provides layered configuration for versiontracker using
// koanf. Values are loaded with priority: environment variables > project
// config (.versiontracker/config.yml) > user config
// (~/.config/versiontracker/config.yml) > defaults. An explicit config file
// given on the command line replaces the project config.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ariel-frischer/versiontracker/internal/changelog"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every environment override. Nested keys use a double
// underscore, e.g. VTRACK_WATCH__MAX_BACKLOG.
const EnvPrefix = "VTRACK_"

// ConfigSource tracks where a configuration value came from
type ConfigSource string

const (
	SourceDefault ConfigSource = "default"
	SourceUser    ConfigSource = "user"
	SourceProject ConfigSource = "project"
	SourceFile    ConfigSource = "file"
	SourceEnv     ConfigSource = "env"
)

// Configuration represents the vtrack configuration
type Configuration struct {
	// ChangelogPath is the changelog file. Relative paths are resolved
	// against the repository root.
	ChangelogPath string `koanf:"changelog_path" validate:"required"`
	// BackupPath defaults to ChangelogPath + ".bak".
	BackupPath string `koanf:"backup_path"`
	// Title overrides the locale's document title for new changelogs.
	Title  string `koanf:"title"`
	Locale string `koanf:"locale" validate:"oneof=en zh"`

	StateDir          string        `koanf:"state_dir" validate:"required"`
	AuthorTimeout     time.Duration `koanf:"author_timeout" validate:"min=0"`
	MaxHistoryEntries int           `koanf:"max_history_entries" validate:"min=0"`

	LogLevel string `koanf:"log_level" validate:"oneof=debug info warn error"`
	LogJSON  bool   `koanf:"log_json"`

	Summarize SummarizeConfig `koanf:"summarize"`
	Watch     WatchConfig     `koanf:"watch"`
}

// SummarizeConfig configures the external diff summarizer.
type SummarizeConfig struct {
	Enabled      bool          `koanf:"enabled"`
	Command      string        `koanf:"command" validate:"required_if=Enabled true"`
	Timeout      time.Duration `koanf:"timeout" validate:"min=0"`
	MaxDiffBytes int           `koanf:"max_diff_bytes" validate:"min=0"`
}

// WatchConfig configures the commit watcher.
type WatchConfig struct {
	PollInterval time.Duration `koanf:"poll_interval" validate:"min=0"`
	MaxBacklog   int           `koanf:"max_backlog" validate:"min=1"`
	SummaryLine  bool          `koanf:"summary_line"`
}

// LoadOptions configures how configuration is loaded
type LoadOptions struct {
	// ProjectRoot is the repository root; project config and relative paths
	// are resolved against it (default: current directory).
	ProjectRoot string
	// ConfigFile replaces the project config when set. It must exist.
	ConfigFile string
	// SkipUserConfig ignores the user-level config file.
	SkipUserConfig bool
}

// Loaded is a configuration together with the source of every key.
type Loaded struct {
	*Configuration
	Sources map[string]ConfigSource
	// Values holds the merged raw values keyed by dotted path.
	Values map[string]interface{}
	// Files lists the config files that were read, lowest priority first.
	Files []string
}

// Load loads configuration for the project rooted at projectRoot.
func Load(projectRoot string) (*Configuration, error) {
	loaded, err := LoadWithOptions(LoadOptions{ProjectRoot: projectRoot})
	if err != nil {
		return nil, err
	}
	return loaded.Configuration, nil
}

// LoadWithOptions loads configuration with custom options
func LoadWithOptions(opts LoadOptions) (*Loaded, error) {
	k := koanf.New(".")
	loaded := &Loaded{Sources: make(map[string]ConfigSource)}

	loadDefaults(k, loaded)

	if !opts.SkipUserConfig {
		if err := loadUserConfig(k, loaded); err != nil {
			return nil, err
		}
	}

	if err := loadProjectConfig(k, opts, loaded); err != nil {
		return nil, err
	}

	if err := loadEnvironmentConfig(k, loaded); err != nil {
		return nil, err
	}

	cfg, err := finalizeConfig(k, opts.ProjectRoot)
	if err != nil {
		return nil, err
	}
	loaded.Configuration = cfg
	loaded.Values = k.All()
	return loaded, nil
}

// loadDefaults applies default configuration values
func loadDefaults(k *koanf.Koanf, loaded *Loaded) {
	for key, value := range GetDefaults() {
		k.Set(key, value)
	}
	for _, key := range k.Keys() {
		loaded.Sources[key] = SourceDefault
	}
}

// loadUserConfig loads the user-level YAML config if it exists
func loadUserConfig(k *koanf.Koanf, loaded *Loaded) error {
	path, err := UserConfigPath()
	if err != nil || !fileExists(path) {
		return nil
	}
	if err := loadFileLayer(k, loaded, path, SourceUser); err != nil {
		return fmt.Errorf("loading user config: %w", err)
	}
	return nil
}

// loadProjectConfig loads the explicit config file, or the project YAML
// config, or the project JSON config, whichever comes first.
func loadProjectConfig(k *koanf.Koanf, opts LoadOptions, loaded *Loaded) error {
	if opts.ConfigFile != "" {
		if !fileExists(opts.ConfigFile) {
			return fmt.Errorf("config file %s: %w", opts.ConfigFile, os.ErrNotExist)
		}
		if err := loadFileLayer(k, loaded, opts.ConfigFile, SourceFile); err != nil {
			return fmt.Errorf("loading config file: %w", err)
		}
		return nil
	}

	root := opts.ProjectRoot
	for _, path := range []string{ProjectConfigPath(root), ProjectJSONConfigPath(root)} {
		if !fileExists(path) {
			continue
		}
		if err := loadFileLayer(k, loaded, path, SourceProject); err != nil {
			return fmt.Errorf("loading project config: %w", err)
		}
		return nil
	}
	return nil
}

// loadFileLayer parses one config file into its own koanf instance so the
// keys it sets can be attributed, then merges it over k.
func loadFileLayer(k *koanf.Koanf, loaded *Loaded, path string, source ConfigSource) error {
	layer := koanf.New(".")

	if strings.EqualFold(filepath.Ext(path), ".json") {
		if err := layer.Load(file.Provider(path), json.Parser()); err != nil {
			return fmt.Errorf("failed to load %s config %s: %w", source, path, err)
		}
	} else {
		if err := ValidateYAMLSyntax(path); err != nil {
			return fmt.Errorf("validating YAML syntax for %s config: %w", source, err)
		}
		if err := layer.Load(file.Provider(path), yaml.Parser()); err != nil {
			return fmt.Errorf("failed to load %s config %s: %w", source, path, err)
		}
	}

	return mergeLayer(k, loaded, layer, source, path)
}

// loadEnvironmentConfig loads environment variable overrides
func loadEnvironmentConfig(k *koanf.Koanf, loaded *Loaded) error {
	layer := koanf.New(".")
	if err := layer.Load(env.Provider(EnvPrefix, ".", envTransform), nil); err != nil {
		return fmt.Errorf("failed to load environment config: %w", err)
	}
	return mergeLayer(k, loaded, layer, SourceEnv, "")
}

func mergeLayer(k *koanf.Koanf, loaded *Loaded, layer *koanf.Koanf, source ConfigSource, path string) error {
	if err := k.Merge(layer); err != nil {
		return fmt.Errorf("merging %s config: %w", source, err)
	}
	for _, key := range layer.Keys() {
		loaded.Sources[key] = source
	}
	if path != "" {
		loaded.Files = append(loaded.Files, path)
	}
	return nil
}

// finalizeConfig unmarshals, validates, and resolves paths against root
func finalizeConfig(k *koanf.Koanf, root string) (*Configuration, error) {
	var cfg Configuration
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := ValidateConfigValues(&cfg, "config"); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	cfg.ChangelogPath = resolvePath(root, cfg.ChangelogPath)
	cfg.StateDir = resolvePath(root, cfg.StateDir)
	if cfg.BackupPath == "" {
		cfg.BackupPath = cfg.ChangelogPath + ".bak"
	} else {
		cfg.BackupPath = resolvePath(root, cfg.BackupPath)
	}

	return &cfg, nil
}

// Labels returns the heading labels for the configured locale, with the
// title override applied.
func (c *Configuration) Labels() changelog.Labels {
	labels := changelog.LabelsFor(c.Locale)
	if c.Title != "" {
		labels.Title = c.Title
	}
	return labels
}

// Keys returns the attributed keys in sorted order.
func (l *Loaded) Keys() []string {
	keys := make([]string, 0, len(l.Sources))
	for key := range l.Sources {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// fileExists returns true if the file exists and is readable
func fileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

// envTransform converts environment variable names to config keys
// Example: VTRACK_WATCH__MAX_BACKLOG -> watch.max_backlog
func envTransform(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(key, "__", ".")
}

// expandHomePath expands ~ to the user's home directory
func expandHomePath(path string) string {
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(homeDir, path[2:])
		}
	}
	return path
}
