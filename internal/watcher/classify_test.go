package watcher

import (
	"testing"

	"github.com/ariel-frischer/versiontracker/internal/changelog"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := map[string]struct {
		subject  string
		wantOK   bool
		wantCat  changelog.Category
		wantDesc string
	}{
		"feature": {
			subject:  "feat: add login",
			wantOK:   true,
			wantCat:  changelog.Feature,
			wantDesc: "add login",
		},
		"bugfix": {
			subject:  "fix:   crash on empty input  ",
			wantOK:   true,
			wantCat:  changelog.Bugfix,
			wantDesc: "crash on empty input",
		},
		"no space after prefix": {
			subject:  "feat:dark mode",
			wantOK:   true,
			wantCat:  changelog.Feature,
			wantDesc: "dark mode",
		},
		"chore is ignored": {
			subject: "chore: bump deps",
		},
		"scoped prefix is ignored": {
			subject: "feat(ui): add button",
		},
		"uppercase prefix is ignored": {
			subject: "Feat: add login",
		},
		"prefix not at start": {
			subject: "revert feat: add login",
		},
		"empty description": {
			subject: "fix:   ",
		},
		"empty subject": {
			subject: "",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			cat, desc, ok := Classify(tt.subject)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantCat, cat)
				assert.Equal(t, tt.wantDesc, desc)
			}
		})
	}
}
