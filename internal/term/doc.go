// Package term is a headless, write-only terminal model.
//
// It consumes a byte stream containing control sequences (the output of a
// captured test run) and turns it into styled rows, one line at a time,
// suitable for rendering to HTML without holding the whole document in
// memory.
//
// The package is organized around these types:
//
//   - [Sink]: implements github.com/danielgatis/go-ansicode's Handler
//     interface, dispatching printables, C0 controls, and CSI/SGR actions
//     against a Screen.
//   - [Screen]: a bounded ring of Row, evicting the oldest row (and handing
//     it to a callback) whenever a linefeed would overflow the ring.
//   - [Renderer]: owns a Sink+Screen pair and a StyleDict, and turns rows
//     into HTML fragments; [RenderBuffered] emits a whole document at once,
//     [LineStream] one chunk at a time.
//
// Unlike a full terminal emulator, there is no scrollback, no alternate
// screen, no cursor save/restore, and no character-set switching: this
// model exists to replay a finished test run's transcript exactly once,
// top to bottom.
package term
