package models

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/lunixbochs/struc"
	"github.com/pkg/errors"
)

type StrucStream struct {
	Stream io.ReadWriter
	Order  binary.ByteOrder
}

// NewStrucReader returns a stream that unpacks from p, little endian unless order is set.
func NewStrucReader(p []byte, order binary.ByteOrder) *StrucStream {
	if order == nil {
		order = binary.LittleEndian
	}
	return &StrucStream{Stream: bytes.NewBuffer(p), Order: order}
}

func (s *StrucStream) Pack(i interface{}) error {
	return errors.Wrap(struc.PackWithOrder(s.Stream, i, s.Order), "struc.Pack() failed")
}

func (s *StrucStream) Unpack(i interface{}) error {
	return errors.Wrap(struc.UnpackWithOrder(s.Stream, i, s.Order), "struc.Unpack() failed")
}

func (s *StrucStream) Sizeof(i interface{}) (int, error) {
	n, err := struc.Sizeof(i)
	return n, errors.Wrap(err, "struc.Sizeof() failed")
}
