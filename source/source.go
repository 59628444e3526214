// Package source abstracts over a single input to the compiler: a
// named byte stream used to tag every AST and IR node with a precise
// location. A Source is opened on demand and read to completion;
// nothing keeps a long-lived file handle open.
package source

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// A Source is a read-once, named input. Its Name is used verbatim in
// diagnostics; its Hash is stable for identical content regardless of
// where it came from.
type Source struct {
	name string
	open func() (io.ReadCloser, error)

	hash string
	data []byte
}

// Name returns the display name used to tag spans and diagnostics,
// e.g. a filesystem path or a synthetic name for in-memory input.
func (s *Source) Name() string {
	return s.name
}

// Open returns a fresh reader over the source's content.
func (s *Source) Open() (io.ReadCloser, error) {
	return s.open()
}

// Bytes reads the source to completion and caches the result so
// repeated calls (e.g. diagnostic rendering after parsing) do not
// re-open the underlying stream.
func (s *Source) Bytes() ([]byte, error) {
	if s.data != nil {
		return s.data, nil
	}

	r, err := s.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", s.name, err)
	}
	defer r.Close()

	buf, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.name, err)
	}

	s.data = buf

	return buf, nil
}

// Hash returns a stable content hash, computing it on first use.
func (s *Source) Hash() (string, error) {
	if s.hash != "" {
		return s.hash, nil
	}

	buf, err := s.Bytes()
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(buf)
	s.hash = hex.EncodeToString(sum[:])

	return s.hash, nil
}

func (s *Source) String() string {
	return s.name
}

// FromFile creates a Source backed by a file on disk. The file is not
// opened until Open, Bytes or Hash is called.
func FromFile(path string) *Source {
	return &Source{
		name: path,
		open: func() (io.ReadCloser, error) {
			return os.Open(path)
		},
	}
}

// FromBytes creates a Source over an in-memory byte slice, used by
// tests and by callers that already hold the content (e.g. an
// indexed package repository response).
func FromBytes(name string, data []byte) *Source {
	return &Source{
		name: name,
		data: data,
		open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}
