// Package diagnose turns a raw worker transcript into a pkgid.Status by a
// purely synchronous, CPU-bound classification pass: strip control
// sequences, then match a fixed waterfall of substrings.
package diagnose

import (
	"regexp"
	"strings"

	"github.com/ubfleet/ubfleet/internal/pkgid"
)

// controlSequence matches the control sequences the diagnoser strips
// before classification: CSI sequences (`ESC [ params final`) and the
// G0-charset-designation escape (`ESC ( B`).
var controlSequence = regexp.MustCompile(`\x1b(\[[0-9;?]*[A-HJKSTfhilmnsu]|\(B)`)

const (
	markerUB              = "Undefined Behavior: "
	markerASan            = "ERROR: AddressSanitizer: "
	markerASanFalsePos    = "WARNING: ASan is ignoring requested __asan_handle_no_return: stack type"
	markerSIGILL          = "SIGILL: illegal instruction"
	markerUninitType      = "attempted to leave type"
	markerTimeout         = "Command exited with non-zero status 124"
	markerOOM             = "Command exited with non-zero status 255"
	markerNonZeroExit     = "Command exited with non-zero status"
)

// Diagnose classifies a raw transcript into a pkgid.Status, per the fixed
// substring waterfall: the first matching rule wins.
func Diagnose(raw []byte) pkgid.Status {
	text := stripControlSequences(string(raw))

	switch {
	case strings.Contains(text, markerUB):
		return pkgid.StatusUB(diagnoseUB(text))

	case strings.Contains(text, markerASan):
		if strings.Contains(text, markerASanFalsePos) {
			return pkgid.StatusErr("ASan false positive?")
		}
		return pkgid.StatusUB(diagnoseASan(text))

	case strings.Contains(text, markerSIGILL):
		return pkgid.StatusUB([]pkgid.Cause{{Kind: "SIGILL debug assertion"}})

	case strings.Contains(text, markerUninitType):
		return pkgid.StatusUB([]pkgid.Cause{{Kind: "uninit type which does not permit uninit"}})

	case strings.Contains(text, markerTimeout):
		return pkgid.StatusErr("Timeout")

	case strings.Contains(text, markerOOM):
		return pkgid.StatusErr("OOM")

	case strings.Contains(text, markerNonZeroExit):
		return pkgid.StatusErr("")

	default:
		return pkgid.StatusPassing()
	}
}

// stripControlSequences removes every control sequence, leaving only the
// plain text a human (or this classifier) would read.
func stripControlSequences(text string) string {
	return controlSequence.ReplaceAllString(text, "")
}
