package loader

import (
	"bytes"

	"github.com/pkg/errors"

	"github.com/lunixbochs/pecorn/go/coff"
	"github.com/lunixbochs/pecorn/go/models"
)

const (
	IMAGE_FILE_MACHINE_UNKNOWN = 0x0
	IMAGE_FILE_MACHINE_I386    = 0x14c
	IMAGE_FILE_MACHINE_ARM     = 0x1c0
	IMAGE_FILE_MACHINE_ARMNT   = 0x1c4
	IMAGE_FILE_MACHINE_IA64    = 0x200
	IMAGE_FILE_MACHINE_RISCV32 = 0x5032
	IMAGE_FILE_MACHINE_RISCV64 = 0x5064
	IMAGE_FILE_MACHINE_AMD64   = 0x8664
	IMAGE_FILE_MACHINE_ARM64   = 0xaa64

	IMAGE_FILE_EXECUTABLE_IMAGE = 0x0002
	IMAGE_FILE_DLL              = 0x2000

	IMAGE_NT_OPTIONAL_HDR32_MAGIC = 0x10b
	IMAGE_NT_OPTIONAL_HDR64_MAGIC = 0x20b
)

type machine struct {
	arch string
	bits int
}

var peMachineMap = map[uint16]machine{
	IMAGE_FILE_MACHINE_UNKNOWN: {"any", 32},
	IMAGE_FILE_MACHINE_I386:    {"x86", 32},
	IMAGE_FILE_MACHINE_ARM:     {"arm", 32},
	IMAGE_FILE_MACHINE_ARMNT:   {"arm", 32},
	IMAGE_FILE_MACHINE_IA64:    {"ia64", 64},
	IMAGE_FILE_MACHINE_RISCV32: {"riscv32", 32},
	IMAGE_FILE_MACHINE_RISCV64: {"riscv64", 64},
	IMAGE_FILE_MACHINE_AMD64:   {"x86_64", 64},
	IMAGE_FILE_MACHINE_ARM64:   {"arm64", 64},
}

var (
	mzMagic = []byte("MZ")
	peMagic = []byte("PE\x00\x00")
)

const (
	dosHeaderSize  = 64
	fileHeaderSize = 20
)

type dosHeader struct {
	Magic  uint16
	Pad    [58]byte `struc:"[58]byte"`
	Lfanew uint32
}

type optionalMagic struct {
	Magic uint16
}

// FileHeader is the COFF file header shared by object files and PE images.
type FileHeader struct {
	Machine              uint16
	NumberOfSections     uint16
	TimeDateStamp        uint32
	PointerToSymbolTable uint32
	NumberOfSymbols      uint32
	SizeOfOptionalHeader uint16
	Characteristics      uint16
}

type PELoader struct {
	LoaderHeader
	Header FileHeader
	// offset of the COFF file header
	headerOff int
}

func MatchPE(p []byte) bool {
	return bytes.Equal(getMagic(p, 2), mzMagic)
}

// MatchCOFF matches a bare COFF object by its machine field.
func MatchCOFF(p []byte) bool {
	magic := getMagic(p, 2)
	if magic == nil {
		return false
	}
	m := uint16(magic[0]) | uint16(magic[1])<<8
	if m == IMAGE_FILE_MACHINE_UNKNOWN {
		return false
	}
	_, ok := peMachineMap[m]
	return ok
}

func unpack(p []byte, off, size int, i interface{}) error {
	raw, err := coff.Buffer(p).Slice(off, size)
	if err != nil {
		return err
	}
	return models.NewStrucReader(raw, nil).Unpack(i)
}

// findFileHeader returns the offset of the COFF file header.
func findFileHeader(p []byte) (int, error) {
	if !MatchPE(p) {
		return 0, nil
	}
	var dos dosHeader
	if err := unpack(p, 0, dosHeaderSize, &dos); err != nil {
		return 0, errors.Wrap(err, "failed to read DOS header")
	}
	sig, err := coff.Buffer(p).Slice(int(dos.Lfanew), len(peMagic))
	if err != nil {
		return 0, errors.Wrap(err, "e_lfanew points outside the file")
	}
	if !bytes.Equal(sig, peMagic) {
		return 0, errors.Errorf("bad PE signature %q at %#x", sig, dos.Lfanew)
	}
	return int(dos.Lfanew) + len(peMagic), nil
}

func NewPELoader(p []byte) (*PELoader, error) {
	hdrOff, err := findFileHeader(p)
	if err != nil {
		return nil, err
	}
	var fh FileHeader
	if err := unpack(p, hdrOff, fileHeaderSize, &fh); err != nil {
		return nil, errors.Wrap(err, "failed to read COFF file header")
	}
	mach, ok := peMachineMap[fh.Machine]
	if !ok {
		return nil, errors.Errorf("Unsupported machine: %#x", fh.Machine)
	}
	bits := mach.bits
	optOff := hdrOff + fileHeaderSize
	if fh.SizeOfOptionalHeader >= 2 {
		var opt optionalMagic
		if err := unpack(p, optOff, 2, &opt); err != nil {
			return nil, errors.Wrap(err, "failed to read optional header")
		}
		switch opt.Magic {
		case IMAGE_NT_OPTIONAL_HDR32_MAGIC:
			bits = 32
		case IMAGE_NT_OPTIONAL_HDR64_MAGIC:
			bits = 64
		default:
			return nil, errors.Errorf("Unknown optional header magic: %#x", opt.Magic)
		}
	}
	strtab := -1
	if fh.PointerToSymbolTable != 0 {
		strtab = coff.StringTableBase(fh.PointerToSymbolTable, fh.NumberOfSymbols)
	}
	off := optOff + int(fh.SizeOfOptionalHeader)
	sections, err := coff.ParseSectionTables(p, &off, int(fh.NumberOfSections), strtab)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read section table")
	}
	return &PELoader{
		LoaderHeader: LoaderHeader{
			arch:     mach.arch,
			bits:     bits,
			machine:  fh.Machine,
			strtab:   strtab,
			sections: sections,
		},
		Header:    fh,
		headerOff: hdrOff,
	}, nil
}

// SectionTableOffset returns the file offset of the first section table entry.
func (l *PELoader) SectionTableOffset() int {
	return l.headerOff + fileHeaderSize + int(l.Header.SizeOfOptionalHeader)
}

func (l *PELoader) Type() int {
	switch {
	case l.Header.Characteristics&IMAGE_FILE_DLL != 0:
		return DYN
	case l.Header.Characteristics&IMAGE_FILE_EXECUTABLE_IMAGE != 0:
		return EXEC
	case l.headerOff == 0:
		return OBJ
	}
	return UNKNOWN
}
