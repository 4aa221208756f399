package term

import (
	"fmt"
	"strings"
)

// styleKey is the style dictionary's key: every cell sharing a foreground
// color and bold flag renders under the same CSS class.
type styleKey struct {
	fg   string
	bold bool
}

// StyleDict assigns a short, deterministic CSS class name to each distinct
// (foreground, bold) pair it observes, in first-seen order, and renders
// the accumulated CSS rules on demand.
type StyleDict struct {
	order []styleKey
	names map[styleKey]string
}

// NewStyleDict returns an empty style dictionary.
func NewStyleDict() *StyleDict {
	return &StyleDict{names: make(map[styleKey]string)}
}

// ClassFor returns the CSS class name for (fg, bold), assigning a new one
// on first use.
func (d *StyleDict) ClassFor(fg Color, bold bool) string {
	key := styleKey{fg: fg.Hex(), bold: bold}
	if name, ok := d.names[key]; ok {
		return name
	}
	name := className(len(d.order))
	d.names[key] = name
	d.order = append(d.order, key)
	return name
}

// className renders index as a base-26 little-endian alphabetic name:
// 0 -> "a", 25 -> "z", 26 -> "ab", 27 -> "bb", matching the renderer's
// deterministic class-assignment rule. Each base-26 digit (least
// significant first) maps directly to a letter a-z; there is no
// spreadsheet-style bijective offset on the higher digits.
func className(index int) string {
	digits := []byte{byte('a' + index%26)}
	index /= 26
	for index > 0 {
		digits = append(digits, byte('a'+index%26))
		index /= 26
	}
	return string(digits)
}

// CSS renders one rule per assigned class, in assignment order.
func (d *StyleDict) CSS() string {
	var b strings.Builder
	for _, key := range d.order {
		weight := "normal"
		if key.bold {
			weight = "bold"
		}
		fmt.Fprintf(&b, ".%s{color:%s;font-weight:%s}\n", d.names[key], key.fg, weight)
	}
	return b.String()
}
