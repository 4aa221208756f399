// Package pkgid holds the package-identity and diagnosis-result types
// shared across the orchestrator, storage, and aggregator: a package name
// plus version, and the outcome recorded against it.
package pkgid

import (
	"github.com/Masterminds/semver/v3"
)

// Version is either a parsed semantic version or an opaque string that
// failed to parse as one. The zero value is the empty opaque string.
type Version struct {
	raw    string
	parsed *semver.Version
}

// ParseVersion parses s as a semantic version, falling back to an opaque
// string on any error. It never returns an error itself: an unparseable
// version is a valid Version, just one that sorts last.
func ParseVersion(s string) Version {
	v, err := semver.NewVersion(s)
	if err != nil {
		return Version{raw: s}
	}
	return Version{raw: s, parsed: v}
}

// String returns the original version string.
func (v Version) String() string {
	return v.raw
}

// Parsed reports whether v parsed as a semantic version.
func (v Version) Parsed() bool {
	return v.parsed != nil
}

// Less orders two versions: parsed semantic versions sort by semver
// precedence; unparsed versions sort after every parsed one, and
// lexicographically among themselves.
func (v Version) Less(o Version) bool {
	switch {
	case v.parsed != nil && o.parsed != nil:
		return v.parsed.LessThan(o.parsed)
	case v.parsed != nil && o.parsed == nil:
		return true
	case v.parsed == nil && o.parsed != nil:
		return false
	default:
		return v.raw < o.raw
	}
}

// Equal reports whether two versions are the same, by original string.
func (v Version) Equal(o Version) bool {
	return v.raw == o.raw
}
