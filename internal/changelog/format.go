package changelog

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

// CategoryStyle defines the color and icon for a changelog category.
type CategoryStyle struct {
	Color *color.Color
	Icon  string
}

var categoryStyles = map[Category]CategoryStyle{
	Feature: {Color: color.New(color.FgGreen), Icon: "✓"},
	Bugfix:  {Color: color.New(color.FgYellow), Icon: "⚡"},
}

// FormatOptions controls the terminal output formatting.
type FormatOptions struct {
	Plain    bool // Disable colors and icons
	MaxWidth int  // Maximum line width (0 = auto-detect)
}

// FormatUnreleased writes the pending entries of doc grouped by category.
func FormatUnreleased(doc *Document, w io.Writer, opts FormatOptions) error {
	width := resolveWidth(opts.MaxWidth)
	labels := doc.Labels()

	if err := writeHeader(labels.Unreleased, w, opts); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	total := 0
	for _, c := range ValidCategories() {
		entries := doc.Entries(c)
		if len(entries) == 0 {
			continue
		}
		total += len(entries)
		if err := writeCategorySection(labels, c, entries, w, opts, width); err != nil {
			return fmt.Errorf("formatting %s: %w", c, err)
		}
	}

	if total == 0 {
		_, err := fmt.Fprintln(w, "\n  (no entries)")
		return err
	}
	return nil
}

// FormatReleases writes one line per released version, newest first.
func FormatReleases(releases []Release, w io.Writer, opts FormatOptions) error {
	if len(releases) == 0 {
		return nil
	}

	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	if err := writeHeader("Releases", w, opts); err != nil {
		return err
	}

	for _, r := range releases {
		line := fmt.Sprintf("  v%s (%s) - %d %s", r.Version, r.Date, r.Entries, pluralize(r.Entries, "entry", "entries"))
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func writeHeader(title string, w io.Writer, opts FormatOptions) error {
	if opts.Plain {
		_, err := fmt.Fprintf(w, "## %s\n", title)
		return err
	}

	bold := color.New(color.Bold).SprintFunc()
	_, err := fmt.Fprintf(w, "## %s\n", bold(title))
	return err
}

func writeCategorySection(labels Labels, c Category, entries []Entry, w io.Writer, opts FormatOptions, width int) error {
	style := categoryStyles[c]
	name := labels.subsection(c)

	if opts.Plain {
		if _, err := fmt.Fprintf(w, "\n### %s\n", name); err != nil {
			return err
		}
	} else {
		colored := style.Color.SprintFunc()
		if _, err := fmt.Fprintf(w, "\n%s %s\n", colored(style.Icon), colored(name)); err != nil {
			return err
		}
	}

	for _, entry := range entries {
		if err := writeEntry(entry, style, w, opts, width); err != nil {
			return err
		}
	}
	return nil
}

// writeEntry writes a single entry with optional wrapping.
func writeEntry(entry Entry, style CategoryStyle, w io.Writer, opts FormatOptions, width int) error {
	prefix := "  - "
	text := entry.Description
	if entry.Author != "" {
		text += " (@" + entry.Author + ")"
	}

	if opts.Plain {
		if _, err := fmt.Fprintf(w, "%s%s\n", prefix, text); err != nil {
			return err
		}
		if entry.Summary != "" {
			_, err := fmt.Fprintf(w, "    %s\n", entry.Summary)
			return err
		}
		return nil
	}

	wrapped := wrapText(text, width-len(prefix), "    ")
	colored := style.Color.SprintFunc()
	if _, err := fmt.Fprintf(w, "%s%s\n", prefix, colored(wrapped)); err != nil {
		return err
	}

	if entry.Summary != "" {
		faint := color.New(color.Faint).SprintFunc()
		_, err := fmt.Fprintf(w, "    %s\n", faint(wrapText(entry.Summary, width-4, "    ")))
		return err
	}
	return nil
}

// resolveWidth determines the terminal width to use.
func resolveWidth(maxWidth int) int {
	if maxWidth > 0 {
		return maxWidth
	}
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return 80
}

// wrapText wraps text to fit within maxWidth display cells, using indent for
// continuation lines. Wide runes count as two cells.
func wrapText(text string, maxWidth int, indent string) string {
	if maxWidth <= 0 || runewidth.StringWidth(text) <= maxWidth {
		return text
	}

	var lines []string
	var line strings.Builder
	lineWidth := 0

	for _, word := range strings.Fields(text) {
		ww := runewidth.StringWidth(word)
		if lineWidth > 0 && lineWidth+1+ww > maxWidth {
			lines = append(lines, line.String())
			line.Reset()
			lineWidth = 0
		}
		if lineWidth > 0 {
			line.WriteByte(' ')
			lineWidth++
		}
		line.WriteString(word)
		lineWidth += ww
	}
	if line.Len() > 0 {
		lines = append(lines, line.String())
	}

	return strings.Join(lines, "\n"+indent)
}

// FormatEntrySummary returns a brief one-line summary of an entry.
func FormatEntrySummary(entry Entry, opts FormatOptions) string {
	text := runewidth.Truncate(entry.Description, 60, "...")

	if opts.Plain {
		return fmt.Sprintf("[%s] %s", entry.Category, text)
	}

	style := categoryStyles[entry.Category]
	colored := style.Color.SprintFunc()
	return fmt.Sprintf("%s %s", colored(style.Icon), text)
}

func pluralize(n int, singular, plural string) string {
	if n == 1 {
		return singular
	}
	return plural
}
