package pkgid

import "sort"

// Cause is one normalized reason a package was flagged as undefined
// behavior, plus the library it was attributed to, if attribution
// succeeded.
type Cause struct {
	Kind        string
	SourceCrate string // empty if attribution failed
}

// Less orders causes for deterministic dedup/sort: by kind, then by
// source crate.
func (c Cause) Less(o Cause) bool {
	if c.Kind != o.Kind {
		return c.Kind < o.Kind
	}
	return c.SourceCrate < o.SourceCrate
}

// Kind tags a package's diagnosis outcome.
type Kind int

const (
	// Unknown means the package has never been analyzed.
	Unknown Kind = iota
	Passing
	Err
	UB
)

// Status is a diagnosis result: exactly one of Unknown, Passing, an Err
// with a kind string, or UB with an ordered, deduplicated set of causes.
type Status struct {
	Kind Kind

	// ErrKind is set only when Kind == Err. It is one of "Timeout", "OOM",
	// "ASan false positive?", a free-form error string, or empty for a
	// generic non-zero exit.
	ErrKind string

	// Causes is set only when Kind == UB.
	Causes []Cause
}

// StatusUnknown, StatusPassing, StatusErr, and StatusUB construct a Status
// of the corresponding kind.
func StatusUnknown() Status { return Status{Kind: Unknown} }
func StatusPassing() Status { return Status{Kind: Passing} }

func StatusErr(kind string) Status {
	return Status{Kind: Err, ErrKind: kind}
}

func StatusUB(causes []Cause) Status {
	return Status{Kind: UB, Causes: dedupSortCauses(causes)}
}

// dedupSortCauses sorts causes and removes exact duplicates, matching the
// diagnosis component's "causes within a status are sorted and
// deduplicated" rule.
func dedupSortCauses(causes []Cause) []Cause {
	sorted := append([]Cause(nil), causes...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Less(sorted[j]) })

	out := sorted[:0]
	for i, c := range sorted {
		if i > 0 && c == sorted[i-1] {
			continue
		}
		out = append(out, c)
	}
	return out
}

// String renders a short human-readable label, mainly for logging.
func (s Status) String() string {
	switch s.Kind {
	case Passing:
		return "passing"
	case Err:
		if s.ErrKind == "" {
			return "error"
		}
		return "error: " + s.ErrKind
	case UB:
		return "UB"
	default:
		return "unknown"
	}
}
