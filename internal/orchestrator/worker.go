package orchestrator

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ubfleet/ubfleet/internal/pkgid"
)

// Sentinel returns the end-of-run marker line a worker writes once it has
// finished one package, and the orchestrator reads for until it sees it.
func Sentinel(runUUID string) string {
	return fmt.Sprintf("-%s-", runUUID)
}

// runOnce writes the request line for pkg to child's stdin and reads its
// stdout until the sentinel line, returning the transcript bytes with the
// sentinel trimmed off. It reads from child.Stdout()'s own *bufio.Reader,
// the same one returned on every call for this child's whole lifetime:
// the worker is long-lived and handles many packages over the same pipe,
// so any bytes the reader already buffered past this run's sentinel
// belong to the next run and must not be discarded by wrapping a fresh
// reader around the pipe on the next runOnce call.
func runOnce(child Child, pkg pkgid.Package, sentinel string) ([]byte, error) {
	req := pkg.Name + "@" + pkg.Version.String() + "\n"
	if _, err := fmt.Fprint(child.Stdin(), req); err != nil {
		return nil, fmt.Errorf("orchestrator: write request: %w", err)
	}

	reader := child.Stdout()
	var transcript []byte
	for {
		line, err := reader.ReadString('\n')
		text := strings.TrimSuffix(line, "\n")
		if text == sentinel {
			return transcript, nil
		}
		if len(line) > 0 {
			transcript = append(transcript, text...)
			transcript = append(transcript, '\n')
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				// The pipe closed before the sentinel: the worker is gone
				// and this run's output is partial. Callers must discard
				// it, not upload it.
				return transcript, fmt.Errorf("orchestrator: stream ended before sentinel: %w", io.ErrUnexpectedEOF)
			}
			return transcript, fmt.Errorf("orchestrator: read transcript: %w", err)
		}
	}
}
