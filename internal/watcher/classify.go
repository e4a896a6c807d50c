package watcher

import (
	"strings"

	"github.com/ariel-frischer/versiontracker/internal/changelog"
)

const (
	featurePrefix = "feat:"
	bugfixPrefix  = "fix:"
)

// Classify routes a commit subject by its conventional prefix. "feat:" maps
// to Feature and "fix:" to Bugfix with the prefix stripped and the rest
// trimmed. Any other subject, or a prefix with nothing after it, is not
// recorded and ok is false.
func Classify(subject string) (c changelog.Category, description string, ok bool) {
	switch {
	case strings.HasPrefix(subject, featurePrefix):
		c, description = changelog.Feature, subject[len(featurePrefix):]
	case strings.HasPrefix(subject, bugfixPrefix):
		c, description = changelog.Bugfix, subject[len(bugfixPrefix):]
	default:
		return 0, "", false
	}

	description = strings.TrimSpace(description)
	if description == "" {
		return 0, "", false
	}
	return c, description, true
}
