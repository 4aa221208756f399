package diagnose

import (
	"regexp"
	"strings"

	"github.com/ubfleet/ubfleet/internal/pkgid"
)

// registryPrefix matches a cargo-style registry checkout path, e.g.
// "/root/.cargo/registry/src/github.com-1ecc6299db9ec823/serde-1.0.0/src/lib.rs".
// The package name is the first path component after the prefix, with its
// trailing "-<version>" suffix left in place; callers split on "-" to the
// last hyphen-delimited numeric component when they need a bare name, but
// this diagnoser records the raw directory component as seen, matching the
// original implementation.
var registryPrefix = regexp.MustCompile(`/registry/src/[^/]+/`)

// diagnoseUB identifies one Cause per line containing "Undefined Behavior: "
// in text, by a fixed waterfall of substring matches. Causes are returned in
// transcript order; pkgid.StatusUB deduplicates and sorts them.
func diagnoseUB(text string) []pkgid.Cause {
	lines := strings.Split(text, "\n")

	var causes []pkgid.Cause
	for i, line := range lines {
		if !strings.Contains(line, "Undefined Behavior: ") {
			continue
		}

		end := blockEnd(lines, i)
		kind := ubKind(line, lines[i:end])
		causes = append(causes, pkgid.Cause{
			Kind:        kind,
			SourceCrate: attribute(lines[i:]),
		})
	}
	return causes
}

// blockEnd finds the first blank line at or after start, the boundary of
// the UB diagnostic's own block of output. If none is found, the block
// runs to the end of the transcript.
func blockEnd(lines []string, start int) int {
	for i := start; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "" {
			return i
		}
	}
	return len(lines)
}

// ubKind runs the fixed waterfall of substring checks against a UB line
// (and, for the borrow-stack refinement, the rest of its block) to produce
// a normalized cause kind.
func ubKind(line string, block []string) string {
	switch {
	case strings.Contains(line, "data race"):
		return "data race"

	case strings.Contains(line, "encountered uninitialized") || strings.Contains(line, "requires initialized memory"):
		return "uninitialized memory"

	case strings.Contains(line, "out-of-bounds"):
		return "invalid pointer offset"

	case strings.Contains(line, "null pointer") && strings.Contains(line, "not a valid"):
		return "null pointer dereference"

	case strings.Contains(line, "encountered 0") && strings.Contains(line, "expected") &&
		(strings.Contains(line, "greater or equal to 1") || strings.Contains(line, "non-zero")):
		return "zero-initialized nonzero type"

	case strings.Contains(line, "null reference"):
		return "null reference"

	case strings.Contains(line, "memory alignment"):
		return "misaligned pointer dereference"

	case strings.Contains(line, "dangling reference"):
		return "dangling reference"

	case strings.Contains(line, "unaligned reference"):
		return "unaligned reference"

	case strings.Contains(line, "incorrect layout on deallocation"):
		return "incorrect layout on deallocation"

	case strings.Contains(line, "deallocating") && strings.Contains(line, "protected"):
		return "deallocation conflict with dereferenceable"

	case strings.Contains(line, "attempting a write access") && strings.Contains(line, "only grants SharedReadOnly"):
		return "SB-write-via-&"

	case strings.Contains(line, "borrow stack") || strings.Contains(line, "reborrow") || strings.Contains(line, "retag"):
		if strings.Contains(line, "<untagged>") {
			return "int-to-ptr cast"
		}
		return diagnoseSB(block)

	case strings.Contains(line, "type validation failed") &&
		strings.Contains(line, "encountered pointer") &&
		strings.Contains(line, "expected initialized plain (non-pointer) bytes"):
		return "ptr-int transmute"

	case strings.Contains(line, "type validation failed"):
		rest := line
		if idx := strings.Index(line, "encountered"); idx >= 0 {
			rest = line[idx:]
		}
		return "type validation failed: encountered " + strings.TrimPrefix(rest, "encountered ")

	default:
		_, rest, _ := strings.Cut(line, "Undefined Behavior: ")
		return strings.TrimSpace(rest)
	}
}

// diagnoseSB refines a Stacked-Borrows violation into one of a fixed set
// of kinds by inspecting the rest of the diagnostic block.
func diagnoseSB(block []string) string {
	if len(block) == 0 {
		return "SB-uncategorized"
	}

	first := block[0]
	if strings.Contains(first, "only grants SharedReadOnly") && strings.Contains(first, "for Unique") {
		return "&->&mut"
	}

	for _, line := range block {
		if strings.Contains(line, "attempting a write access") && strings.Contains(line, "only grants SharedReadOnly") {
			return "write through pointer based on &"
		}
	}
	for _, line := range block {
		if strings.Contains(line, "invalidated") {
			return "SB-invalidation"
		}
	}
	for _, line := range block {
		if strings.Contains(line, "created due to a retag at offsets [0x0..0x0]") {
			return "SB-null-provenance"
		}
	}

	switch {
	case strings.Contains(first, "does not exist in the borrow stack"):
		return "SB-use-outside-provenance"
	case strings.Contains(first, "no item granting write access for deallocation"):
		return "SB-invalid-dealloc"
	default:
		return "SB-uncategorized"
	}
}

// attribute scans the lines following a UB diagnostic for the first
// backtrace frame ("inside `...` at <path>") pointing into a known
// registry checkout, returning the package-name path component. It stops
// at the first frame pointing into the local build directory or a
// non-absolute path, matching the original attribution rule: a build's
// own code is never mistaken for a dependency.
func attribute(lines []string) string {
	for _, line := range lines {
		if !strings.Contains(line, "inside `") || !strings.Contains(line, " at ") {
			continue
		}

		_, path, _ := strings.Cut(line, " at ")
		path = strings.TrimSpace(path)

		if strings.Contains(path, "workdir") || !strings.HasPrefix(path, "/") {
			return ""
		}

		if loc := registryPrefix.FindStringIndex(path); loc != nil {
			rest := path[loc[1]:]
			name, _, _ := strings.Cut(rest, "/")
			return name
		}
	}
	return ""
}
