package coff

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/lunixbochs/struc"
	"github.com/pkg/errors"
)

const SectionTableSize = 40

// size of a COFF symbol table record; the string table follows the symbols
const symbolSize = 18

// SectionHeader is the on-disk section table entry.
type SectionHeader struct {
	RawName              [8]byte `struc:"[8]byte"`
	VirtualSize          uint32
	VirtualAddress       uint32
	SizeOfRawData        uint32
	PointerToRawData     uint32
	PointerToRelocations uint32
	PointerToLinenumbers uint32
	NumberOfRelocations  uint16
	NumberOfLinenumbers  uint16
	Characteristics      uint32
}

// SectionTable is a parsed section table entry with its name resolved.
type SectionTable struct {
	SectionHeader
	name SectionName
}

// StringTableBase returns the file offset of the COFF string table, which
// immediately follows the symbol table.
func StringTableBase(pointerToSymbolTable, numberOfSymbols uint32) int {
	return int(uint64(pointerToSymbolTable) + uint64(numberOfSymbols)*symbolSize)
}

// ParseSectionTable decodes the section table entry at *off and advances *off
// past it. Names of the form "/n" or "//xxxxxx" are looked up in the string
// table at strtab. *off is unspecified if an error is returned.
func ParseSectionTable(p []byte, off *int, strtab int) (*SectionTable, error) {
	buf := Buffer(p)
	raw, err := buf.Slice(*off, SectionTableSize)
	if err != nil {
		return nil, err
	}
	s := &SectionTable{}
	if err := struc.UnpackWithOrder(bytes.NewReader(raw), &s.SectionHeader, binary.LittleEndian); err != nil {
		return nil, errors.Wrap(err, "struc.Unpack() failed")
	}
	s.name = DirectName(s.RawName)
	if s.RawName[0] == '/' {
		idx, err := decodeIndex(s.RawName)
		if err != nil {
			return nil, err
		}
		if strtab < 0 {
			return nil, buf.oob(idx, 1)
		}
		name, err := buf.CString(uint64(strtab) + idx)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read section name at string table index %d", idx)
		}
		s.name = IndirectName{Index: idx, Name: name}
	}
	*off += SectionTableSize
	return s, nil
}

// ParseSectionTables decodes n consecutive section table entries starting at *off.
func ParseSectionTables(p []byte, off *int, n int, strtab int) ([]*SectionTable, error) {
	ret := make([]*SectionTable, 0, n)
	for i := 0; i < n; i++ {
		s, err := ParseSectionTable(p, off, strtab)
		if err != nil {
			return nil, errors.Wrapf(err, "section %d", i)
		}
		ret = append(ret, s)
	}
	return ret, nil
}

// ResolvedName returns the name variant chosen at parse time.
func (s *SectionTable) ResolvedName() SectionName {
	if s.name == nil {
		return DirectName(s.RawName)
	}
	return s.name
}

// Indirect reports whether the name was read from the string table.
func (s *SectionTable) Indirect() bool {
	_, ok := s.ResolvedName().(IndirectName)
	return ok
}

// Name returns the section's effective name.
func (s *SectionTable) Name() (string, error) {
	switch n := s.ResolvedName().(type) {
	case IndirectName:
		return n.Name, nil
	case DirectName:
		return n.Text()
	}
	return "", errors.New("unknown section name type")
}

// Pack writes the 40-byte on-disk entry to w.
func (s *SectionTable) Pack(w io.Writer) error {
	return errors.Wrap(struc.PackWithOrder(w, &s.SectionHeader, binary.LittleEndian), "struc.Pack() failed")
}
