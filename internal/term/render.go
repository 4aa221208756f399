package term

import (
	"fmt"
	"strings"
)

// ubMarkers is the ordered list of result markers. The first marker in this
// order that appears anywhere in the rendered document gets a
// `<span id="ub"></span>` anchor spliced in immediately before its first
// occurrence, so the page can scroll straight to the interesting part of a
// long transcript.
var ubMarkers = []string{
	"Undefined Behavior:",
	"ERROR: AddressSanitizer:",
	"SIGILL: illegal instruction",
	"attempted to leave type",
	"misaligned pointer dereference",
}

// logFormat is the self-contained per-package document. The CSS rules for
// the style classes land inside the head's style block, the title is
// "NAME VERSION", and the body scrolls to the #ub anchor on load.
const logFormat = `<!DOCTYPE html><html><head><style>
body {
    background: #111;
    color: #eee;
}
pre {
    word-wrap: break-word;
    white-space: pre-wrap;
    font-size: 14px;
}
%s</style><title>%s</title></head>
<script>
function scroll_to_ub() {
    var ub = document.getElementById("ub");
    if (ub !== null) {
        ub.scrollIntoView();
    }
}
</script>
<body onload="scroll_to_ub()"><pre>%s</pre></body></html>
`

// Renderer owns a Sink+Screen pair and a StyleDict, and turns evicted (or,
// at finalize, still-in-ring) rows into HTML fragments. A Renderer is used
// once, for a single transcript.
//
// Style spans are not closed at row boundaries: prev carries the style of
// the last non-space cell across rows, and a new span opens only when a
// non-space cell's (bold, foreground) differs from it. Terminal programs
// reset the style after formatted text, print whitespace, then set it
// again; ignoring spaces here halves the emitted HTML.
type Renderer struct {
	sink   *Sink
	styles *StyleDict
	prev   Cell
	rows   []string
}

// NewRenderer builds a renderer with its own Sink and Screen, evicted rows
// collected for emission.
func NewRenderer() *Renderer {
	r := &Renderer{styles: NewStyleDict(), prev: NewCell()}
	r.sink = NewSink(DefaultRowWidth, r.onEvict)
	return r
}

func (r *Renderer) onEvict(row Row) {
	r.rows = append(r.rows, r.renderRow(&row))
}

// renderRow turns one row's cells into an HTML fragment ending in a
// literal newline.
func (r *Renderer) renderRow(row *Row) string {
	var b strings.Builder
	for _, c := range row.Cells() {
		if c.Char != ' ' {
			if !c.SameStyle(r.prev) {
				b.WriteString("</span><span class='")
				b.WriteString(r.styles.ClassFor(c.Fg, c.Bold))
				b.WriteString("'>")
			}
			r.prev = c
		}
		writeEscaped(&b, c.Char)
	}
	b.WriteByte('\n')
	return b.String()
}

// spliceUBMarker inserts the #ub anchor before the first occurrence of the
// highest-priority marker present, if any.
func spliceUBMarker(html string) string {
	for _, m := range ubMarkers {
		if idx := strings.Index(html, m); idx >= 0 {
			return html[:idx] + `<span id="ub"></span>` + html[idx:]
		}
	}
	return html
}

// writeEscaped writes a single rune, escaping `<` and `>` as the bare
// entities `&lt`/`&gt` (no trailing semicolon): the canonical existing
// behavior this renderer preserves rather than "fixes".
func writeEscaped(b *strings.Builder, r rune) {
	switch r {
	case '<':
		b.WriteString("&lt")
	case '>':
		b.WriteString("&gt")
	default:
		b.WriteRune(r)
	}
}

// Write feeds raw transcript bytes through the sink's decoder. It never
// returns an error: malformed control sequences are logged and ignored by
// the sink, never fatal to the render.
func (r *Renderer) Write(p []byte) {
	_, _ = r.sink.Write(p)
}

// remainingRows renders whatever rows are still in the screen ring, oldest
// first, without evicting them.
func (r *Renderer) remainingRows() []string {
	rows := r.sink.Screen().Rows()
	out := make([]string, 0, len(rows))
	for i := range rows {
		out = append(out, r.renderRow(&rows[i]))
	}
	return out
}

// body joins the given rendered rows into the document body, wrapped in
// the opening unstyled span and its closer.
func body(rows []string) string {
	var b strings.Builder
	b.WriteString("<span>")
	for _, row := range rows {
		b.WriteString(row)
	}
	b.WriteString("</span>")
	return b.String()
}

// RenderBuffered consumes a complete transcript and returns the full HTML
// document for it, titled "name version".
func RenderBuffered(title string, transcript []byte) string {
	r := NewRenderer()
	r.Write(transcript)

	all := append(append([]string{}, r.rows...), r.remainingRows()...)
	all = trimTrailingBlankRows(all)
	content := spliceUBMarker(body(all))

	return fmt.Sprintf(logFormat, r.styles.CSS(), title, content)
}

// trimTrailingBlankRows drops trailing rows that contain nothing but
// whitespace, a cosmetic trim applied only in buffered mode.
func trimTrailingBlankRows(rows []string) []string {
	end := len(rows)
	for end > 0 && strings.TrimSpace(rows[end-1]) == "" {
		end--
	}
	return rows[:end]
}

// streamPrelude opens the streaming document. The style classes are not
// known until the whole transcript has been fed, so unlike the buffered
// document the CSS block trails the content.
const streamPrelude = `<!DOCTYPE html><html><head><title>%s</title></head>
<body style="background:#111;color:#eee">
<pre style="word-wrap:break-word;white-space:pre-wrap;font-size:14px"><span>`

const streamTrailer = "</span></pre><style>\n%s</style></body></html>\n"

// LineStream is a stateful iterator that yields one HTML chunk per
// externally visible event: the page prelude first, then one chunk per
// evicted row, then a final chunk with any still-in-ring rows plus the
// trailing CSS and closing tags. The whole rendered document is never held
// in memory; only the ring and the not-yet-consumed evicted rows are.
type LineStream struct {
	r        *Renderer
	title    string
	started  bool
	finished bool
}

// NewLineStream creates a line-streaming renderer for a document titled
// "name version".
func NewLineStream(title string) *LineStream {
	return &LineStream{r: NewRenderer(), title: title}
}

// Feed writes more transcript bytes into the underlying renderer. Any rows
// evicted as a side effect become available to the next Next call.
func (ls *LineStream) Feed(p []byte) {
	ls.r.Write(p)
}

// Next returns the next HTML chunk and true, or ("", false) once every
// available chunk has been consumed. The very first call returns the page
// prelude.
func (ls *LineStream) Next() (string, bool) {
	if ls.finished {
		return "", false
	}
	if !ls.started {
		ls.started = true
		return fmt.Sprintf(streamPrelude, ls.title), true
	}
	if len(ls.r.rows) > 0 {
		chunk := ls.r.rows[0]
		ls.r.rows = ls.r.rows[1:]
		return chunk, true
	}
	return "", false
}

// Finish signals that no more bytes will be fed, and returns the terminal
// chunk: any rows still in the ring, followed by the CSS block and closing
// tags. After Finish, Next always returns ("", false).
func (ls *LineStream) Finish() string {
	var b strings.Builder
	for _, row := range ls.r.remainingRows() {
		b.WriteString(row)
	}
	fmt.Fprintf(&b, streamTrailer, ls.r.styles.CSS())
	ls.finished = true
	return b.String()
}
