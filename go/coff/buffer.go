package coff

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"github.com/pkg/errors"
	"golang.org/x/crypto/cryptobyte"
)

// Buffer is a read-only view of an object file. Every read is bounds checked.
type Buffer []byte

func (b Buffer) oob(off, size uint64) error {
	return errors.WithStack(&OutOfBoundsError{Offset: off, Size: size, Len: len(b)})
}

// Slice returns n bytes at off. The result aliases the buffer.
func (b Buffer) Slice(off, n int) ([]byte, error) {
	if off < 0 || n < 0 || off > len(b) {
		return nil, b.oob(uint64(off), uint64(n))
	}
	s := cryptobyte.String(b[off:])
	var out []byte
	if !s.ReadBytes(&out, n) {
		return nil, b.oob(uint64(off), uint64(n))
	}
	return out, nil
}

// CString reads a NUL-terminated string starting at off.
func (b Buffer) CString(off uint64) (string, error) {
	if off >= uint64(len(b)) {
		return "", b.oob(off, 1)
	}
	s := cryptobyte.String(b[off:])
	end := bytes.IndexByte(s, 0)
	if end < 0 {
		return "", errors.WithStack(&MalformedError{
			Msg: fmt.Sprintf("unterminated string at offset %#x", off),
		})
	}
	var out []byte
	s.ReadBytes(&out, end)
	if !utf8.Valid(out) {
		return "", errors.WithStack(&MalformedError{
			Msg: fmt.Sprintf("string %q at offset %#x is not valid UTF-8", out, off),
		})
	}
	return string(out), nil
}
