package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/ariel-frischer/versiontracker/internal/config"
	"github.com/ariel-frischer/versiontracker/internal/git"
	"github.com/spf13/cobra"
)

// loggerConfig holds logger configuration
type loggerConfig struct {
	Level string
	JSON  bool
}

// resolveLoggerConfig takes the config file values and applies the
// --log-level and --log-json flags over them.
func resolveLoggerConfig(cmd *cobra.Command, cfg *config.Configuration) loggerConfig {
	lc := loggerConfig{Level: cfg.LogLevel, JSON: cfg.LogJSON}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		lc.Level = level
	}
	if cmd.Flags().Changed("log-json") {
		lc.JSON, _ = cmd.Flags().GetBool("log-json")
	}
	return lc
}

// configure returns a logger writing to w
func (c loggerConfig) configure(w io.Writer) *slog.Logger {
	var level slog.Level
	switch c.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if c.JSON {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}

// installGitDebugLogger routes the git package's debug output through
// logger when debug logging is on.
func installGitDebugLogger(logger *slog.Logger) {
	if !logger.Enabled(context.Background(), slog.LevelDebug) {
		git.SetDebugLogger(nil)
		return
	}
	git.SetDebugLogger(func(format string, args ...any) {
		logger.Debug(fmt.Sprintf(format, args...))
	})
}
