package diagnose

import (
	"strings"

	"github.com/ubfleet/ubfleet/internal/pkgid"
)

const asanAllocSizeExceeded = "requested allocation size exceeds maximum supported size"

// diagnoseASan produces one Cause per "ERROR: AddressSanitizer: " line:
// the kind is the canonical allocation-size message when present, else the
// third whitespace-delimited token on the line.
func diagnoseASan(text string) []pkgid.Cause {
	var causes []pkgid.Cause
	for _, line := range strings.Split(text, "\n") {
		if !strings.Contains(line, markerASan) {
			continue
		}
		causes = append(causes, pkgid.Cause{Kind: asanKind(line)})
	}
	return causes
}

func asanKind(line string) string {
	if strings.Contains(line, asanAllocSizeExceeded) {
		return asanAllocSizeExceeded
	}
	fields := strings.Fields(line)
	if len(fields) >= 3 {
		return fields[2]
	}
	return ""
}
