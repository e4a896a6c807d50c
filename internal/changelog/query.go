package changelog

import (
	"fmt"
	"strings"
)

// VersionNotFoundError is returned when a requested version doesn't exist.
type VersionNotFoundError struct {
	Version           string
	AvailableVersions []string
}

func (e *VersionNotFoundError) Error() string {
	if len(e.AvailableVersions) == 0 {
		return fmt.Sprintf("version %q not found (no released versions)", e.Version)
	}
	return fmt.Sprintf("version %q not found (available: %s)",
		e.Version, strings.Join(e.AvailableVersions, ", "))
}

// NormalizeVersion strips a leading "v" or "V" and surrounding whitespace.
func NormalizeVersion(version string) string {
	v := strings.TrimSpace(version)
	if len(v) > 0 && (v[0] == 'v' || v[0] == 'V') {
		return v[1:]
	}
	return v
}

// FindRelease returns the released version section matching version.
// Accepts both "v1.2.3" and "1.2.3".
func (d *Document) FindRelease(version string) (Release, error) {
	normalized := NormalizeVersion(version)
	releases := d.Releases()

	for _, r := range releases {
		if NormalizeVersion(r.Version) == normalized {
			return r, nil
		}
	}

	available := make([]string, len(releases))
	for i, r := range releases {
		available[i] = r.Version
	}
	return Release{}, &VersionNotFoundError{Version: version, AvailableVersions: available}
}

// LatestRelease returns the most recent released version.
// Returns false if nothing has been released yet.
func (d *Document) LatestRelease() (Release, bool) {
	releases := d.Releases()
	if len(releases) == 0 {
		return Release{}, false
	}
	return releases[0], true
}

// UnreleasedEntries returns all pending entries, Features first, each newest first.
func (d *Document) UnreleasedEntries() []Entry {
	var entries []Entry
	for _, c := range ValidCategories() {
		entries = append(entries, d.Entries(c)...)
	}
	return entries
}

// LastN returns at most n pending entries in UnreleasedEntries order.
func (d *Document) LastN(n int) []Entry {
	if n <= 0 {
		return []Entry{}
	}
	entries := d.UnreleasedEntries()
	if len(entries) <= n {
		return entries
	}
	return entries[:n]
}
