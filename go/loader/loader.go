package loader

import (
	"encoding/binary"

	"github.com/lunixbochs/pecorn/go/coff"
)

const (
	UNKNOWN = iota
	OBJ
	EXEC
	DYN
)

type LoaderHeader struct {
	arch      string
	bits      int
	byteOrder binary.ByteOrder
	machine   uint16
	strtab    int
	sections  []*coff.SectionTable
}

func (l *LoaderHeader) Arch() string {
	return l.arch
}

func (l *LoaderHeader) Bits() int {
	return l.bits
}

func (l *LoaderHeader) ByteOrder() binary.ByteOrder {
	if l.byteOrder == nil {
		return binary.LittleEndian
	}
	return l.byteOrder
}

func (l *LoaderHeader) Machine() uint16 {
	return l.machine
}

// StringTable returns the file offset of the COFF string table, or -1 if the
// file has no symbol table.
func (l *LoaderHeader) StringTable() int {
	return l.strtab
}

func (l *LoaderHeader) Sections() []*coff.SectionTable {
	return l.sections
}

// Section returns the first section with the given effective name.
func (l *LoaderHeader) Section(name string) *coff.SectionTable {
	for _, s := range l.sections {
		if n, err := s.Name(); err == nil && n == name {
			return s
		}
	}
	return nil
}
