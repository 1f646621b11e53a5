package coff

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/lunixbochs/struc"
	"github.com/pkg/errors"
)

var textHeader = SectionHeader{
	RawName:              [8]byte{'.', 't', 'e', 'x', 't'},
	VirtualSize:          0x1234,
	VirtualAddress:       0x1000,
	SizeOfRawData:        0x1400,
	PointerToRawData:     0x400,
	PointerToRelocations: 0x2000,
	PointerToLinenumbers: 0x3000,
	NumberOfRelocations:  7,
	NumberOfLinenumbers:  9,
	Characteristics:      IMAGE_SCN_CNT_CODE | IMAGE_SCN_MEM_EXECUTE | IMAGE_SCN_MEM_READ,
}

func packHeader(t *testing.T, hdr SectionHeader) []byte {
	var buf bytes.Buffer
	if err := struc.PackWithOrder(&buf, &hdr, binary.LittleEndian); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != SectionTableSize {
		t.Fatalf("packed header is %d bytes, want %d", buf.Len(), SectionTableSize)
	}
	return buf.Bytes()
}

func withName(hdr SectionHeader, name string) SectionHeader {
	hdr.RawName = [8]byte{}
	copy(hdr.RawName[:], name)
	return hdr
}

// image is a section table entry followed by a string table
func image(t *testing.T, hdr SectionHeader, strtab []byte) ([]byte, int) {
	p := packHeader(t, hdr)
	return append(p, strtab...), len(p)
}

func TestParseFields(t *testing.T) {
	// leading garbage so the cursor doesn't start at 0
	p := append([]byte{0xde, 0xad, 0xbe}, packHeader(t, textHeader)...)
	off := 3
	s, err := ParseSectionTable(p, &off, 0)
	if err != nil {
		t.Fatal(err)
	}
	if off != 3+SectionTableSize {
		t.Fatalf("cursor at %d, want %d", off, 3+SectionTableSize)
	}
	if s.SectionHeader != textHeader {
		t.Fatalf("decoded %+v, want %+v", s.SectionHeader, textHeader)
	}
	if s.Indirect() {
		t.Fatal("inline name reported as indirect")
	}
	name, err := s.Name()
	if err != nil {
		t.Fatal(err)
	}
	if name != ".text" {
		t.Fatalf("name = %q, want .text", name)
	}
}

func TestParseLittleEndian(t *testing.T) {
	p := make([]byte, SectionTableSize)
	copy(p, ".data")
	binary.LittleEndian.PutUint32(p[8:], 0x11223344)
	binary.LittleEndian.PutUint16(p[32:], 0xaabb)
	binary.LittleEndian.PutUint32(p[36:], IMAGE_SCN_MEM_WRITE)
	off := 0
	s, err := ParseSectionTable(p, &off, 0)
	if err != nil {
		t.Fatal(err)
	}
	if s.VirtualSize != 0x11223344 || s.NumberOfRelocations != 0xaabb || s.Characteristics != IMAGE_SCN_MEM_WRITE {
		t.Fatalf("bad field decode: %+v", s.SectionHeader)
	}
}

func TestFullWidthName(t *testing.T) {
	p, _ := image(t, withName(textHeader, ".textbss"), nil)
	off := 0
	s, err := ParseSectionTable(p, &off, 0)
	if err != nil {
		t.Fatal(err)
	}
	if name, err := s.Name(); err != nil || name != ".textbss" {
		t.Fatalf("name = %q, %v", name, err)
	}
}

func TestDecimalName(t *testing.T) {
	strtab := append([]byte{0x11, 0, 0, 0}, "section_name\x00"...)
	p, base := image(t, withName(textHeader, "/4"), strtab)
	off := 0
	s, err := ParseSectionTable(p, &off, base)
	if err != nil {
		t.Fatal(err)
	}
	if off != SectionTableSize {
		t.Fatalf("cursor at %d", off)
	}
	n, ok := s.ResolvedName().(IndirectName)
	if !ok {
		t.Fatalf("name is %T, want IndirectName", s.ResolvedName())
	}
	if n.Index != 4 || n.Name != "section_name" {
		t.Fatalf("resolved %+v", n)
	}
	if name, _ := s.Name(); name != "section_name" {
		t.Fatalf("name = %q", name)
	}
}

func TestBase64Name(t *testing.T) {
	strtab := make([]byte, 72)
	copy(strtab[65:], ".long\x00")
	// B = 1, so AAAABB = 64 + 1
	p, base := image(t, withName(textHeader, "//AAAABB"), strtab)
	off := 0
	s, err := ParseSectionTable(p, &off, base)
	if err != nil {
		t.Fatal(err)
	}
	if name, err := s.Name(); err != nil || name != ".long" {
		t.Fatalf("name = %q, %v", name, err)
	}
}

func TestBase64Decode(t *testing.T) {
	tests := []struct {
		in  string
		out uint64
	}{
		{"", 0},
		{"A", 0},
		{"B", 1},
		{"/", 63},
		{"AAAAAB", 1},
		{"BAAAAA", 1073741824},
		{"//////", maxBase64Index},
	}
	for _, test := range tests {
		v, err := decodeBase64Index([]byte(test.in))
		if err != nil {
			t.Errorf("%q: %v", test.in, err)
			continue
		}
		if v != test.out {
			t.Errorf("%q = %d, want %d", test.in, v, test.out)
		}
	}
}

func causeIs(err error, kind interface{}) bool {
	switch errors.Cause(err).(type) {
	case *OutOfBoundsError:
		_, ok := kind.(*OutOfBoundsError)
		return ok
	case *MalformedError:
		_, ok := kind.(*MalformedError)
		return ok
	case *EncodingError:
		_, ok := kind.(*EncodingError)
		return ok
	}
	return false
}

func TestMalformedNames(t *testing.T) {
	strtab := make([]byte, 16)
	names := []string{
		"/",
		"/abc",
		"/-1",
		"/+1",
		"/1 2",
		"/\xff\xfe",
		"//AAA*AA",
		"//AA AA",
		"//\xff",
	}
	for _, name := range names {
		p, base := image(t, withName(textHeader, name), strtab)
		off := 0
		_, err := ParseSectionTable(p, &off, base)
		if err == nil {
			t.Errorf("%q: expected error", name)
			continue
		}
		if !causeIs(err, &MalformedError{}) {
			t.Errorf("%q: got %T (%v), want *MalformedError", name, errors.Cause(err), err)
		}
	}
}

func TestBase64TooLong(t *testing.T) {
	_, err := decodeBase64Index([]byte("AAAAAAA"))
	if !causeIs(err, &MalformedError{}) {
		t.Fatalf("got %v, want *MalformedError", err)
	}
}

func TestMalformedMessage(t *testing.T) {
	p, base := image(t, withName(textHeader, "/12x"), nil)
	off := 0
	_, err := ParseSectionTable(p, &off, base)
	if err == nil || !bytes.Contains([]byte(err.Error()), []byte("/12x")) {
		t.Fatalf("error %q does not name the index text", err)
	}
}

func TestTruncatedEntry(t *testing.T) {
	p := packHeader(t, textHeader)
	for _, n := range []int{0, 1, 8, 39} {
		off := 0
		if _, err := ParseSectionTable(p[:n], &off, 0); !causeIs(err, &OutOfBoundsError{}) {
			t.Errorf("len %d: got %v, want *OutOfBoundsError", n, err)
		}
	}
	off := 1
	if _, err := ParseSectionTable(p, &off, 0); !causeIs(err, &OutOfBoundsError{}) {
		t.Errorf("offset 1: got %v, want *OutOfBoundsError", err)
	}
	off = -1
	if _, err := ParseSectionTable(p, &off, 0); !causeIs(err, &OutOfBoundsError{}) {
		t.Errorf("offset -1: got %v, want *OutOfBoundsError", err)
	}
	off = len(p) + 100
	if _, err := ParseSectionTable(p, &off, 0); !causeIs(err, &OutOfBoundsError{}) {
		t.Errorf("offset past end: got %v, want *OutOfBoundsError", err)
	}
}

func TestStringTableOutOfBounds(t *testing.T) {
	strtab := []byte("abc\x00")
	p, base := image(t, withName(textHeader, "/4"), strtab)
	off := 0
	if _, err := ParseSectionTable(p, &off, base); !causeIs(err, &OutOfBoundsError{}) {
		t.Fatalf("got %v, want *OutOfBoundsError", err)
	}
	// largest base64 index must not wrap around
	p, base = image(t, withName(textHeader, "/////////"), strtab)
	off = 0
	if _, err := ParseSectionTable(p, &off, base); !causeIs(err, &OutOfBoundsError{}) {
		t.Fatalf("got %v, want *OutOfBoundsError", err)
	}
	off = 0
	if _, err := ParseSectionTable(p, &off, -1); !causeIs(err, &OutOfBoundsError{}) {
		t.Fatalf("negative string table: got %v, want *OutOfBoundsError", err)
	}
}

func TestUnterminatedString(t *testing.T) {
	p, base := image(t, withName(textHeader, "/0"), []byte("no terminator"))
	off := 0
	if _, err := ParseSectionTable(p, &off, base); !causeIs(err, &MalformedError{}) {
		t.Fatalf("got %v, want *MalformedError", err)
	}
}

func TestInvalidIndirectText(t *testing.T) {
	p, base := image(t, withName(textHeader, "/0"), []byte("\xff\xfe\x00"))
	off := 0
	if _, err := ParseSectionTable(p, &off, base); !causeIs(err, &MalformedError{}) {
		t.Fatalf("got %v, want *MalformedError", err)
	}
}

func TestInvalidDirectText(t *testing.T) {
	p, _ := image(t, withName(textHeader, ".t\xffxt"), nil)
	off := 0
	s, err := ParseSectionTable(p, &off, 0)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Name(); !causeIs(err, &EncodingError{}) {
		t.Fatalf("got %v, want *EncodingError", err)
	}
}

func TestParseSectionTables(t *testing.T) {
	var p []byte
	p = append(p, packHeader(t, textHeader)...)
	p = append(p, packHeader(t, withName(textHeader, ".data"))...)
	p = append(p, packHeader(t, withName(textHeader, "/4"))...)
	base := len(p)
	p = append(p, "\x00\x00\x00\x00.debug_info\x00"...)
	off := 0
	secs, err := ParseSectionTables(p, &off, 3, base)
	if err != nil {
		t.Fatal(err)
	}
	if off != 3*SectionTableSize {
		t.Fatalf("cursor at %d", off)
	}
	want := []string{".text", ".data", ".debug_info"}
	for i, s := range secs {
		if name, _ := s.Name(); name != want[i] {
			t.Errorf("section %d name = %q, want %q", i, name, want[i])
		}
	}
	off = 0
	if _, err := ParseSectionTables(p, &off, 5, base); err == nil {
		t.Fatal("expected error reading past the table")
	}
}

func TestPack(t *testing.T) {
	p := packHeader(t, textHeader)
	off := 0
	s, err := ParseSectionTable(p, &off, 0)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := s.Pack(&buf); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(buf.Bytes(), p) {
		t.Fatalf("Pack() = %x, want %x", buf.Bytes(), p)
	}
}

func TestEncodeNameOffset(t *testing.T) {
	tests := []struct {
		idx  uint64
		name string
	}{
		{4, "/4"},
		{maxDecimalIndex, "/9999999"},
		{maxDecimalIndex + 1, "//AAmJaA"},
		{maxBase64Index, "////////"},
	}
	for _, test := range tests {
		raw, err := EncodeNameOffset(test.idx)
		if err != nil {
			t.Errorf("%d: %v", test.idx, err)
			continue
		}
		if got := string(cString(raw[:])); got != test.name {
			t.Errorf("%d encoded as %q, want %q", test.idx, got, test.name)
		}
		idx, err := decodeIndex(raw)
		if err != nil || idx != test.idx {
			t.Errorf("%q decoded as %d, %v", test.name, idx, err)
		}
	}
	if _, err := EncodeNameOffset(maxBase64Index + 1); err == nil {
		t.Error("expected error for index beyond base64 range")
	}
}

func TestStringTableBase(t *testing.T) {
	if base := StringTableBase(0x1000, 10); base != 0x1000+180 {
		t.Fatalf("StringTableBase = %#x", base)
	}
}
