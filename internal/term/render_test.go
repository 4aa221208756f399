package term

import (
	"fmt"
	"strings"
	"testing"
)

func renderPlainText(text string) string {
	return RenderBuffered("test 0.0.0", []byte(text))
}

func TestRenderEscapesAngleBrackets(t *testing.T) {
	out := renderPlainText("a<b>c\n")
	if !strings.Contains(out, "a&ltb&gtc") {
		t.Errorf("expected bare &lt/&gt escaping, got %q", out)
	}
	if strings.Contains(out, "&lt;") || strings.Contains(out, "&gt;") {
		t.Errorf("expected no trailing semicolon on entities, got %q", out)
	}
}

func TestRenderSplicesUBMarker(t *testing.T) {
	out := renderPlainText("before\nUndefined Behavior: null pointer\nafter\n")
	if !strings.Contains(out, `<span id="ub"></span>Undefined Behavior:`) {
		t.Errorf("expected UB anchor immediately before the marker, got %q", out)
	}
	if strings.Count(out, `id="ub"`) != 1 {
		t.Errorf("expected exactly one UB anchor, got %d in %q", strings.Count(out, `id="ub"`), out)
	}
}

func TestRenderUBMarkerPriorityIsListOrder(t *testing.T) {
	// The ASan marker appears first in the text, but "Undefined Behavior:"
	// outranks it in the marker list, so the anchor lands on the latter.
	out := renderPlainText("ERROR: AddressSanitizer: heap-use-after-free\nUndefined Behavior: oops\n")
	if !strings.Contains(out, `<span id="ub"></span>Undefined Behavior:`) {
		t.Errorf("expected anchor on the higher-priority marker, got %q", out)
	}
}

func TestRenderTrimsTrailingBlankRows(t *testing.T) {
	out := renderPlainText("hello\n\n\n")
	prelude := strings.Index(out, "<pre>") + len("<pre>")
	trailer := strings.Index(out, "</pre>")
	pre := out[prelude:trailer]
	if strings.Count(pre, "\n") != 1 {
		t.Errorf("expected trailing blank rows trimmed, pre content was %q", pre)
	}
}

func TestRenderSetsTitle(t *testing.T) {
	out := RenderBuffered("serde 1.0.0", []byte("hi\n"))
	if !strings.Contains(out, "<title>serde 1.0.0</title>") {
		t.Errorf("expected document title, got %q", out)
	}
}

func TestRenderRedSGRMatchesSpecScenario(t *testing.T) {
	out := renderPlainText("\x1b[31mred\x1b[0m\n")
	if !strings.Contains(out, `<span class='a'>red`) {
		t.Errorf("expected a styled span for \"red\", got %q", out)
	}
	if !strings.Contains(out, ".a{color:#a00;font-weight:normal}") {
		t.Errorf("expected CSS rule .a{color:#a00;font-weight:normal}, got %q", out)
	}
}

func TestRenderExtendedColorsSetForeground(t *testing.T) {
	out := renderPlainText("\x1b[38;5;196mX\x1b[0m \x1b[38;2;1;2;3mY\x1b[0m\n")
	if !strings.Contains(out, ".a{color:#f00;font-weight:normal}") {
		t.Errorf("expected 8-bit extended color on the foreground, got %q", out)
	}
	if !strings.Contains(out, ".b{color:#010203;font-weight:normal}") {
		t.Errorf("expected 24-bit extended color on the foreground, got %q", out)
	}
}

func TestRenderSpaceDoesNotBreakSpan(t *testing.T) {
	// Style is reset over the space, then restored: the span opened for
	// the first red run must absorb the space and the second red run.
	out := renderPlainText("\x1b[31mab\x1b[0m \x1b[31mcd\x1b[0m\n")
	if got := strings.Count(out, "<span class='a'>"); got != 1 {
		t.Errorf("expected one red span covering both runs, got %d in %q", got, out)
	}
}

func TestLineStreamPreludeThenChunks(t *testing.T) {
	ls := NewLineStream("demo 0.1.0")
	first, ok := ls.Next()
	if !ok || !strings.Contains(first, "<!DOCTYPE html>") {
		t.Fatalf("expected prelude chunk first, got %q, %v", first, ok)
	}
	if !strings.Contains(first, "<title>demo 0.1.0</title>") {
		t.Errorf("expected title in prelude, got %q", first)
	}

	ls.Feed([]byte(strings.Repeat("x\n", MaxRows+2)))

	var chunks []string
	for {
		chunk, ok := ls.Next()
		if !ok {
			break
		}
		chunks = append(chunks, chunk)
	}
	if len(chunks) == 0 {
		t.Fatal("expected at least one evicted-row chunk after overflowing the ring")
	}

	final := ls.Finish()
	if !strings.Contains(final, "</style></body></html>") {
		t.Errorf("expected closing tags in final chunk, got %q", final)
	}
	if _, ok := ls.Next(); ok {
		t.Error("expected Next to be exhausted after Finish")
	}
}

func TestLineStreamScrollOutOrdering(t *testing.T) {
	// MaxRows+5 rows of output followed by a tail row: every prefix row
	// arrives exactly once, in order, and the tail lands in the final
	// chunk. The ring itself never exceeds MaxRows (see screen tests).
	ls := NewLineStream("demo 0.1.0")
	ls.Next()

	var input strings.Builder
	for i := 0; i < MaxRows+5; i++ {
		fmt.Fprintf(&input, "row%03d\n", i)
	}
	input.WriteString("tail\n")
	ls.Feed([]byte(input.String()))

	var streamed strings.Builder
	for {
		chunk, ok := ls.Next()
		if !ok {
			break
		}
		streamed.WriteString(chunk)
	}
	final := ls.Finish()

	all := streamed.String() + final
	last := -1
	for i := 0; i < MaxRows+5; i++ {
		idx := strings.Index(all, fmt.Sprintf("row%03d", i))
		if idx < 0 {
			t.Fatalf("row %d missing from output", i)
		}
		if idx < last {
			t.Fatalf("row %d out of order", i)
		}
		last = idx
	}
	if tailIdx := strings.Index(all, "tail"); tailIdx < last {
		t.Errorf("tail row out of order")
	}
}
