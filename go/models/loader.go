package models

import (
	"encoding/binary"

	"github.com/lunixbochs/pecorn/go/coff"
)

type Loader interface {
	Arch() string
	Bits() int
	ByteOrder() binary.ByteOrder
	Machine() uint16
	Type() int
	StringTable() int
	Sections() []*coff.SectionTable
	Section(name string) *coff.SectionTable
}
