package changelog

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
)

var (
	versionPattern       = regexp.MustCompile(`^\d+\.\d+\.\d+$`)
	releaseHeaderPattern = regexp.MustCompile(`^## \[v?([^\]]+)\] - (\S+)`)
)

// Document is the parsed form of a changelog file.
//
// The text is held as lines so that anything outside the Unreleased
// subsections round-trips byte for byte. The indexes are the typed section
// boundaries; they are computed once by Parse and kept current by every
// mutation, so no mutation needs to search the text again.
type Document struct {
	lines  []string
	labels Labels
	eol    string // "\r\n" when the source used CRLF, else "\n"

	unreleased int // "## [Unreleased]" line
	features   int // "### Features" line, -1 when missing
	bugfixes   int // "### Bugfixes" line, -1 when missing
	end        int // first line after the Unreleased section
}

// InitialContent returns the text of a freshly initialized changelog.
func InitialContent(l Labels) string {
	return "# " + l.Title + "\n\n" +
		l.UnreleasedHeader() + "\n" +
		l.SubsectionHeader(Feature) + "\n\n" +
		l.SubsectionHeader(Bugfix) + "\n"
}

// NewDocument returns an initialized, empty document.
func NewDocument(l Labels) *Document {
	d, err := Parse(InitialContent(l), l)
	if err != nil {
		// InitialContent always carries the Unreleased header.
		panic(err)
	}
	return d
}

// Parse splits text into lines and locates the section boundaries.
// Returns a FormatError if the text has no Unreleased header or more than one.
// Missing subsection headers are not an error here; mutations that need them
// fail with SectionNotFoundError. Text containing CRLF is serialized with
// CRLF throughout, including inserted lines.
func Parse(text string, labels Labels) (*Document, error) {
	d := &Document{
		lines:  strings.Split(text, "\n"),
		labels: labels,
		eol:    "\n",
	}
	if strings.Contains(text, "\r\n") {
		d.eol = "\r\n"
		for i, line := range d.lines {
			d.lines[i] = strings.TrimSuffix(line, "\r")
		}
	}
	if err := d.index(); err != nil {
		return nil, err
	}
	return d, nil
}

// index computes the section boundaries from d.lines.
func (d *Document) index() error {
	header := d.labels.UnreleasedHeader()
	d.unreleased, d.features, d.bugfixes = -1, -1, -1

	for i, line := range d.lines {
		if !strings.HasPrefix(line, header) {
			continue
		}
		if d.unreleased >= 0 {
			return &FormatError{Message: fmt.Sprintf("duplicate %q header on line %d", header, i+1)}
		}
		d.unreleased = i
	}
	if d.unreleased < 0 {
		return &FormatError{Message: fmt.Sprintf("missing %q header", header)}
	}

	d.end = len(d.lines)
	for i := d.unreleased + 1; i < len(d.lines); i++ {
		if isTopLevelHeader(d.lines[i]) {
			d.end = i
			break
		}
	}

	for i := d.unreleased + 1; i < d.end; i++ {
		line := d.lines[i]
		if !strings.HasPrefix(line, "### ") {
			continue
		}
		switch {
		case d.features < 0 && strings.Contains(line, d.labels.Features):
			d.features = i
		case d.bugfixes < 0 && strings.Contains(line, d.labels.Bugfixes):
			d.bugfixes = i
		}
	}

	return nil
}

func isTopLevelHeader(line string) bool {
	return strings.HasPrefix(line, "## ")
}

func isEntryLine(line string) bool {
	return strings.HasPrefix(line, "- ")
}

func isContinuationLine(line string) bool {
	return strings.HasPrefix(line, "  ") || strings.HasPrefix(line, "\t")
}

// String serializes the document back to text.
func (d *Document) String() string {
	return strings.Join(d.lines, d.eol)
}

// Labels returns the labels the document was parsed with.
func (d *Document) Labels() Labels {
	return d.labels
}

// Clone returns an independent copy of the document.
func (d *Document) Clone() *Document {
	c := *d
	c.lines = slices.Clone(d.lines)
	return &c
}

// headerIndex returns the line of the subsection header for c, or -1.
func (d *Document) headerIndex(c Category) int {
	if c == Bugfix {
		return d.bugfixes
	}
	return d.features
}

// subsectionEnd returns the first line after the body starting below header.
func (d *Document) subsectionEnd(header int) int {
	for i := header + 1; i < d.end; i++ {
		if strings.HasPrefix(d.lines[i], "### ") {
			return i
		}
	}
	return d.end
}

// Insert places entry lines directly below the subsection header of c.
func (d *Document) Insert(c Category, entryLines []string) error {
	idx := d.headerIndex(c)
	if idx < 0 {
		return &SectionNotFoundError{Section: d.labels.SubsectionHeader(c)}
	}

	n := len(entryLines)
	d.lines = slices.Insert(d.lines, idx+1, entryLines...)

	if d.features > idx {
		d.features += n
	}
	if d.bugfixes > idx {
		d.bugfixes += n
	}
	d.end += n

	return nil
}

// Release moves the Unreleased content under a new version header.
// The Unreleased block is reset to empty subsections and the captured
// lines follow the new header unchanged.
func (d *Document) Release(version, date string) error {
	if err := ValidateVersion(version); err != nil {
		return err
	}
	if d.UnreleasedCount() == 0 {
		return &EmptyReleaseError{Version: version}
	}

	captured := d.lines[d.unreleased+1 : d.end]
	reset := []string{
		d.labels.SubsectionHeader(Feature),
		"",
		d.labels.SubsectionHeader(Bugfix),
		"",
		VersionHeader(version, date),
	}

	out := make([]string, 0, len(d.lines)+len(reset))
	out = append(out, d.lines[:d.unreleased+1]...)
	out = append(out, reset...)
	out = append(out, captured...)
	out = append(out, d.lines[d.end:]...)

	d.lines = out
	d.features = d.unreleased + 1
	d.bugfixes = d.unreleased + 3
	d.end = d.unreleased + 5

	return nil
}

// UnreleasedCount returns the number of entries anywhere in the Unreleased section.
func (d *Document) UnreleasedCount() int {
	count := 0
	for _, line := range d.lines[d.unreleased+1 : d.end] {
		if isEntryLine(line) {
			count++
		}
	}
	return count
}

// EntryCount returns the number of entries in the subsection for c.
// Returns 0 when the subsection header is missing.
func (d *Document) EntryCount(c Category) int {
	return len(d.Entries(c))
}

// Entries returns the entries of the subsection for c, newest first.
func (d *Document) Entries(c Category) []Entry {
	idx := d.headerIndex(c)
	if idx < 0 {
		return nil
	}
	return parseEntries(c, d.lines[idx+1:d.subsectionEnd(idx)])
}

// SubsectionLines returns the raw body lines below the header for c.
func (d *Document) SubsectionLines(c Category) []string {
	idx := d.headerIndex(c)
	if idx < 0 {
		return nil
	}
	return slices.Clone(d.lines[idx+1 : d.subsectionEnd(idx)])
}

// ReleasedText returns the text from the first released version header to EOF.
func (d *Document) ReleasedText() string {
	return strings.Join(d.lines[d.end:], d.eol)
}

// Releases lists the released version sections, newest first.
func (d *Document) Releases() []Release {
	var releases []Release
	for _, line := range d.lines[d.end:] {
		if m := releaseHeaderPattern.FindStringSubmatch(line); m != nil {
			releases = append(releases, Release{Version: m[1], Date: m[2]})
			continue
		}
		if len(releases) > 0 && isEntryLine(line) {
			releases[len(releases)-1].Entries++
		}
	}
	return releases
}

func parseEntries(c Category, body []string) []Entry {
	var entries []Entry
	for _, line := range body {
		switch {
		case isEntryLine(line):
			entries = append(entries, parseEntryLine(c, line))
		case isContinuationLine(line) && len(entries) > 0:
			last := &entries[len(entries)-1]
			if last.Summary == "" {
				last.Summary = strings.TrimSpace(line)
			}
		}
	}
	return entries
}

// parseEntryLine splits "- text (@author)" into its parts.
func parseEntryLine(c Category, line string) Entry {
	text := strings.TrimPrefix(line, "- ")
	e := Entry{Category: c, Description: text}

	if !strings.HasSuffix(text, ")") {
		return e
	}
	if i := strings.LastIndex(text, " (@"); i >= 0 {
		e.Description = text[:i]
		e.Author = text[i+3 : len(text)-1]
	}
	return e
}

// FormatEntry renders a description and author as entry lines.
// A description with a second line keeps it as an indented summary line,
// collapsed to a single physical line.
func FormatEntry(description, author string) ([]string, error) {
	desc := strings.TrimSpace(description)
	if desc == "" {
		return nil, ErrEmptyDescription
	}
	if author == "" {
		author = DefaultAuthor
	}

	first, rest, _ := strings.Cut(desc, "\n")
	lines := []string{fmt.Sprintf("- %s (@%s)", strings.TrimSpace(first), author)}

	if summary := strings.Join(strings.Fields(rest), " "); summary != "" {
		lines = append(lines, "  "+summary)
	}
	return lines, nil
}

// VersionHeader returns the header line of a released version section.
func VersionHeader(version, date string) string {
	return fmt.Sprintf("## [v%s] - %s", version, date)
}

// ValidateVersion checks that version is MAJOR.MINOR.PATCH with
// non-negative integer components and nothing else.
func ValidateVersion(version string) error {
	if !versionPattern.MatchString(version) {
		return &InvalidVersionError{Version: version}
	}
	return nil
}
