package changelog

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatUnreleased_Plain(t *testing.T) {
	tests := map[string]struct {
		text string
		want string
	}{
		"entries in both subsections": {
			text: "## [Unreleased]\n### Features\n- Add login (@alice)\n  adds OAuth\n\n### Bugfixes\n- Fix crash (@bob)\n",
			want: "## Unreleased\n\n### Features\n  - Add login (@alice)\n    adds OAuth\n\n### Bugfixes\n  - Fix crash (@bob)\n",
		},
		"only bugfixes": {
			text: "## [Unreleased]\n### Features\n\n### Bugfixes\n- Fix crash (@bob)\n",
			want: "## Unreleased\n\n### Bugfixes\n  - Fix crash (@bob)\n",
		},
		"no entries": {
			text: initialEN,
			want: "## Unreleased\n\n  (no entries)\n",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			doc, err := Parse(tt.text, LabelsFor("en"))
			require.NoError(t, err)

			var buf bytes.Buffer
			require.NoError(t, FormatUnreleased(doc, &buf, FormatOptions{Plain: true, MaxWidth: 80}))
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestFormatReleases_Plain(t *testing.T) {
	var buf bytes.Buffer
	releases := []Release{
		{Version: "1.1.0", Date: "2024-02-01", Entries: 1},
		{Version: "1.0.0", Date: "2024-01-01", Entries: 3},
	}

	require.NoError(t, FormatReleases(releases, &buf, FormatOptions{Plain: true}))
	assert.Equal(t, "\n## Releases\n  v1.1.0 (2024-02-01) - 1 entry\n  v1.0.0 (2024-01-01) - 3 entries\n", buf.String())

	buf.Reset()
	require.NoError(t, FormatReleases(nil, &buf, FormatOptions{Plain: true}))
	assert.Empty(t, buf.String())
}

func TestWrapText(t *testing.T) {
	tests := map[string]struct {
		text     string
		maxWidth int
		want     string
	}{
		"fits": {
			text:     "short text",
			maxWidth: 20,
			want:     "short text",
		},
		"wraps at word boundary": {
			text:     "one two three four",
			maxWidth: 9,
			want:     "one two\n  three\n  four",
		},
		"wide runes count double": {
			text:     "新功能 新功能",
			maxWidth: 8,
			want:     "新功能\n  新功能",
		},
		"zero width disables wrapping": {
			text:     "one two three",
			maxWidth: 0,
			want:     "one two three",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.want, wrapText(tt.text, tt.maxWidth, "  "))
		})
	}
}

func TestFormatEntrySummary(t *testing.T) {
	entry := Entry{Category: Bugfix, Description: "Fix crash"}
	assert.Equal(t, "[bugfix] Fix crash", FormatEntrySummary(entry, FormatOptions{Plain: true}))
}
