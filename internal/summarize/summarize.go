// Package summarize turns a commit diff into a one-line summary through an
// optional external command. Every failure path yields a localized
// placeholder so summarization never blocks recording an entry.
package summarize

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/google/shlex"
)

// DefaultTimeout bounds a single summarizer invocation.
const DefaultTimeout = 30 * time.Second

// DefaultMaxDiffBytes caps the diff handed to the summarizer.
const DefaultMaxDiffBytes = 64 * 1024

// ErrEmptySummary is returned when the command succeeds but prints nothing.
var ErrEmptySummary = errors.New("summarizer returned no text")

// Func produces a summary for a diff. A nil Func means no summarizer is configured.
type Func func(ctx context.Context, diff string) (string, error)

var placeholders = map[string]string{
	"en": "(summary unavailable)",
	"zh": "（暂无摘要）",
}

// Placeholder returns the fixed text used when no summary can be produced.
func Placeholder(locale string) string {
	if p, ok := placeholders[locale]; ok {
		return p
	}
	return placeholders["en"]
}

// Command returns a Func that runs the command line in template, writes the
// diff to its stdin and uses its trimmed stdout as the summary. The template
// is split with shell quoting rules but never run through a shell.
func Command(template string, timeout time.Duration) (Func, error) {
	args, err := shlex.Split(template)
	if err != nil {
		return nil, fmt.Errorf("parsing summarizer command: %w", err)
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("summarizer command is empty")
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return func(ctx context.Context, diff string) (string, error) {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		var stdout, stderr bytes.Buffer
		cmd := exec.CommandContext(ctx, args[0], args[1:]...)
		cmd.Stdin = strings.NewReader(diff)
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr

		if err := cmd.Run(); err != nil {
			if ctx.Err() != nil {
				return "", fmt.Errorf("running %s: %w", args[0], ctx.Err())
			}
			if msg := strings.TrimSpace(stderr.String()); msg != "" {
				return "", fmt.Errorf("running %s: %w: %s", args[0], err, msg)
			}
			return "", fmt.Errorf("running %s: %w", args[0], err)
		}

		out := strings.TrimSpace(stdout.String())
		if out == "" {
			return "", ErrEmptySummary
		}
		return out, nil
	}, nil
}

// Available reports whether the program named by template can be found.
func Available(template string) bool {
	args, err := shlex.Split(template)
	if err != nil || len(args) == 0 {
		return false
	}
	_, err = exec.LookPath(args[0])
	return err == nil
}

// Truncate cuts diff to at most maxBytes, on a line boundary when possible.
// A non-positive maxBytes disables truncation.
func Truncate(diff string, maxBytes int) string {
	if maxBytes <= 0 || len(diff) <= maxBytes {
		return diff
	}
	cut := diff[:maxBytes]
	if i := strings.LastIndexByte(cut, '\n'); i > 0 {
		cut = cut[:i+1]
	}
	return cut + "[diff truncated]\n"
}

// Resolve returns fn's summary of diff, or the locale's placeholder when fn
// is nil, not available, fails or returns nothing. The second result is the
// summarizer error, for logging only.
func Resolve(ctx context.Context, fn Func, available bool, diff, locale string) (string, error) {
	if fn == nil || !available {
		return Placeholder(locale), nil
	}

	summary, err := fn(ctx, diff)
	if err != nil {
		return Placeholder(locale), err
	}
	summary = strings.Join(strings.Fields(summary), " ")
	if summary == "" {
		return Placeholder(locale), ErrEmptySummary
	}
	return summary, nil
}
