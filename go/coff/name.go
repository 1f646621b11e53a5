package coff

import (
	"bytes"
	"fmt"
	"strconv"
	"unicode/utf8"

	"github.com/pkg/errors"
)

const (
	// largest index that fits in "/nnnnnnn"
	maxDecimalIndex = 9999999
	// largest index that fits in "//xxxxxx"
	maxBase64Index = 1<<36 - 1
	base64Digits   = 6
)

const base64Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

// SectionName is the effective name of a section, resolved when the entry is parsed.
// It is either a DirectName or an IndirectName.
type SectionName interface {
	isSectionName()
}

// DirectName is a name stored inline in the 8-byte name field.
type DirectName [8]byte

// IndirectName is a name stored in the COFF string table.
type IndirectName struct {
	Index uint64
	Name  string
}

func (DirectName) isSectionName()   {}
func (IndirectName) isSectionName() {}

// Text returns the name trimmed at the first NUL.
func (n DirectName) Text() (string, error) {
	raw := cString(n[:])
	if !utf8.Valid(raw) {
		return "", errors.WithStack(&EncodingError{Raw: raw})
	}
	return string(raw), nil
}

func cString(b []byte) []byte {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		return b[:i]
	}
	return b
}

func base64Digit(c byte) (uint64, bool) {
	switch {
	case c >= 'A' && c <= 'Z':
		return uint64(c - 'A'), true
	case c >= 'a' && c <= 'z':
		return uint64(c-'a') + 26, true
	case c >= '0' && c <= '9':
		return uint64(c-'0') + 52, true
	case c == '+':
		return 62, true
	case c == '/':
		return 63, true
	}
	return 0, false
}

// decodeBase64Index decodes a string table index in the "//AAAAAA" form.
// s excludes the leading slashes. Digits are most significant first.
func decodeBase64Index(s []byte) (uint64, error) {
	if len(s) > base64Digits {
		return 0, errors.WithStack(&MalformedError{
			Msg: fmt.Sprintf("Invalid indirect section name //%s: index is longer than %d characters", s, base64Digits),
		})
	}
	var val uint64
	for _, c := range s {
		v, ok := base64Digit(c)
		if !ok {
			return 0, errors.WithStack(&MalformedError{
				Msg: fmt.Sprintf("Invalid indirect section name //%s: base64 decoding failed", s),
			})
		}
		val = val*64 + v
	}
	return val, nil
}

// decodeDecimalIndex decodes a string table index in the "/1234" form.
// s excludes the leading slash.
func decodeDecimalIndex(s []byte) (uint64, error) {
	val, err := strconv.ParseUint(string(s), 10, 32)
	if err != nil {
		if nerr, ok := err.(*strconv.NumError); ok {
			err = nerr.Err
		}
		return 0, errors.WithStack(&MalformedError{
			Msg: fmt.Sprintf("Invalid indirect section name /%s: %v", s, err),
		})
	}
	return val, nil
}

// decodeIndex returns the string table index encoded in an indirect name field.
// The caller has checked raw[0] == '/'.
func decodeIndex(raw [8]byte) (uint64, error) {
	if raw[1] == '/' {
		return decodeBase64Index(cString(raw[2:]))
	}
	return decodeDecimalIndex(cString(raw[1:]))
}

// EncodeNameOffset builds an indirect name field for a string table index,
// using the decimal form when it fits and the base64 form otherwise.
func EncodeNameOffset(idx uint64) ([8]byte, error) {
	var raw [8]byte
	switch {
	case idx <= maxDecimalIndex:
		copy(raw[:], "/"+strconv.FormatUint(idx, 10))
	case idx <= maxBase64Index:
		raw[0], raw[1] = '/', '/'
		for i := 7; i >= 2; i-- {
			raw[i] = base64Alphabet[idx%64]
			idx /= 64
		}
	default:
		return raw, errors.Errorf("string table index %#x is too large for a section name", idx)
	}
	return raw, nil
}
