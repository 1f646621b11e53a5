package coff

import (
	"fmt"
)

// OutOfBoundsError is returned when a read would run past the end of the buffer.
type OutOfBoundsError struct {
	Offset uint64
	Size   uint64
	Len    int
}

func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf("read of %d bytes at offset %#x is out of bounds (buffer is %#x bytes)", e.Size, e.Offset, e.Len)
}

// MalformedError is returned when a name field or string table entry can't be decoded.
type MalformedError struct {
	Msg string
}

func (e *MalformedError) Error() string {
	return e.Msg
}

// EncodingError is returned when an inline section name is not valid text.
type EncodingError struct {
	Raw []byte
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("section name %q is not valid UTF-8", e.Raw)
}
