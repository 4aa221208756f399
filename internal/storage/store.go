// Package storage is the transport-neutral object-store boundary every
// other component uploads transcripts and rendered pages through. Keys are
// hierarchical strings; see the *Key helpers (RawKey, LogKey, ...) for the
// layout each caller uses.
package storage

import (
	"context"
	"time"
)

// Object is one entry returned by List/ListFinished.
type Object struct {
	Key          string
	LastModified time.Time
}

// Store is the operations the core needs from an object store, independent
// of which backend implements them.
type Store interface {
	// Upload writes body under key with the given content type. Backends
	// MAY transparently split objects at or above MultipartThreshold into
	// multi-part uploads; callers never need to know which happened.
	Upload(ctx context.Context, key string, body []byte, contentType string) error

	// Download returns the full contents of key.
	Download(ctx context.Context, key string) ([]byte, error)

	// List returns every object under prefix.
	List(ctx context.Context, prefix string) ([]Object, error)

	// ListFinished returns the subset of List(prefix) whose LastModified
	// is within maxAge of now.
	ListFinished(ctx context.Context, prefix string, maxAge time.Duration) ([]Object, error)
}

// MultipartThreshold is the size at or above which an Upload MAY be split
// into a multi-part request.
const MultipartThreshold = 5 << 20

// RawKey is the key an orchestrator worker's transcript is stored under.
func RawKey(tool, name, version string) string {
	return tool + "/raw/" + name + "/" + version
}

// LogKey is the key a rendered HTML log is stored under.
func LogKey(tool, name, version string) string {
	return tool + "/logs/" + name + "/" + version
}

// UBListingKey is the aggregator's UB-listing page key.
func UBListingKey(tool string) string {
	return tool + "/ub"
}

// LandingKey is the top-level landing page key.
func LandingKey(tool string) string {
	return tool + "/index.html"
}

// ErrorPageKey is the static error page the front-end serves for missing
// logs.
func ErrorPageKey(tool string) string {
	return tool + "/403"
}

// ParseRawKey recovers the (name, version) pair from a key of the form
// RawKey(tool, name, version), the inverse of RawKey.
func ParseRawKey(tool, key string) (name, version string, ok bool) {
	prefix := tool + "/raw/"
	if len(key) <= len(prefix) || key[:len(prefix)] != prefix {
		return "", "", false
	}
	rest := key[len(prefix):]
	for i := 0; i < len(rest); i++ {
		if rest[i] == '/' {
			return rest[:i], rest[i+1:], true
		}
	}
	return "", "", false
}
