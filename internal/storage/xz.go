package storage

import (
	"bytes"
	"fmt"
	"io"

	"github.com/ulikunitz/xz"
)

// CompressXZ returns data compressed with xz, the format raw transcripts are
// stored under before upload (see RawKey).
func CompressXZ(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := xz.NewWriter(&buf)
	if err != nil {
		return nil, fmt.Errorf("storage: new xz writer: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("storage: xz compress: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("storage: close xz writer: %w", err)
	}
	return buf.Bytes(), nil
}

// DecompressXZ reverses CompressXZ.
func DecompressXZ(data []byte) ([]byte, error) {
	r, err := xz.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("storage: new xz reader: %w", err)
	}
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("storage: xz decompress: %w", err)
	}
	return out, nil
}
