package changelog

import "fmt"

// Category identifies the Unreleased subsection an entry belongs to.
type Category int

const (
	// Feature entries go under the Features subsection.
	Feature Category = iota
	// Bugfix entries go under the Bugfixes subsection.
	Bugfix
)

// String returns the lowercase category name used in logs and history.
func (c Category) String() string {
	switch c {
	case Feature:
		return "feature"
	case Bugfix:
		return "bugfix"
	default:
		return fmt.Sprintf("category(%d)", int(c))
	}
}

// ParseCategory maps a user-supplied name to a Category.
// Accepts the conventional commit spellings as well ("feat", "fix").
func ParseCategory(s string) (Category, error) {
	switch s {
	case "feature", "feat", "features":
		return Feature, nil
	case "bugfix", "fix", "bugfixes":
		return Bugfix, nil
	default:
		return 0, fmt.Errorf("unknown category %q (expected feature or bugfix)", s)
	}
}

// ValidCategories returns the categories in document order.
func ValidCategories() []Category {
	return []Category{Feature, Bugfix}
}

// DefaultAuthor is recorded when no author can be resolved.
const DefaultAuthor = "unknown"

// Labels holds the header texts of a changelog document.
// Headers are matched by literal substring, so the labels of an existing
// file must match the labels the engine was configured with.
type Labels struct {
	Title      string
	Unreleased string
	Features   string
	Bugfixes   string
}

var localeLabels = map[string]Labels{
	"en": {
		Title:      "Changelog",
		Unreleased: "Unreleased",
		Features:   "Features",
		Bugfixes:   "Bugfixes",
	},
	"zh": {
		Title:      "更新日志",
		Unreleased: "未发布",
		Features:   "新功能 🎉",
		Bugfixes:   "Bug 修复 🐛",
	},
}

// LabelsFor returns the header labels for a locale, defaulting to English.
func LabelsFor(locale string) Labels {
	if l, ok := localeLabels[locale]; ok {
		return l
	}
	return localeLabels["en"]
}

// SupportedLocales lists the locales with built-in labels.
func SupportedLocales() []string {
	return []string{"en", "zh"}
}

// UnreleasedHeader returns the "## [Unreleased]" header line.
func (l Labels) UnreleasedHeader() string {
	return "## [" + l.Unreleased + "]"
}

// SubsectionHeader returns the "### ..." header line for a category.
func (l Labels) SubsectionHeader(c Category) string {
	return "### " + l.subsection(c)
}

func (l Labels) subsection(c Category) string {
	if c == Bugfix {
		return l.Bugfixes
	}
	return l.Features
}

// Entry is a parsed view of one bullet under a subsection.
type Entry struct {
	Category    Category
	Description string
	Author      string
	Summary     string
}

// Release describes one released version section.
type Release struct {
	Version string
	Date    string
	Entries int
}
