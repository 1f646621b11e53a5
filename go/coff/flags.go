package coff

import (
	"fmt"
)

// Section characteristics.
const (
	// Obsolete, replaced by IMAGE_SCN_ALIGN_1BYTES. Object files only.
	IMAGE_SCN_TYPE_NO_PAD            = 0x00000008
	IMAGE_SCN_CNT_CODE               = 0x00000020
	IMAGE_SCN_CNT_INITIALIZED_DATA   = 0x00000040
	IMAGE_SCN_CNT_UNINITIALIZED_DATA = 0x00000080
	IMAGE_SCN_LNK_OTHER              = 0x00000100
	// Comments or linker directives (.drectve). Object files only.
	IMAGE_SCN_LNK_INFO = 0x00000200
	// Not part of the image. Object files only.
	IMAGE_SCN_LNK_REMOVE = 0x00000800
	// COMDAT data. Object files only.
	IMAGE_SCN_LNK_COMDAT = 0x00001000
	// Data referenced through the global pointer.
	IMAGE_SCN_GPREL = 0x00008000

	IMAGE_SCN_MEM_PURGEABLE = 0x00020000
	IMAGE_SCN_MEM_16BIT     = 0x00020000
	IMAGE_SCN_MEM_LOCKED    = 0x00040000
	IMAGE_SCN_MEM_PRELOAD   = 0x00080000

	IMAGE_SCN_ALIGN_1BYTES    = 0x00100000
	IMAGE_SCN_ALIGN_2BYTES    = 0x00200000
	IMAGE_SCN_ALIGN_4BYTES    = 0x00300000
	IMAGE_SCN_ALIGN_8BYTES    = 0x00400000
	IMAGE_SCN_ALIGN_16BYTES   = 0x00500000
	IMAGE_SCN_ALIGN_32BYTES   = 0x00600000
	IMAGE_SCN_ALIGN_64BYTES   = 0x00700000
	IMAGE_SCN_ALIGN_128BYTES  = 0x00800000
	IMAGE_SCN_ALIGN_256BYTES  = 0x00900000
	IMAGE_SCN_ALIGN_512BYTES  = 0x00A00000
	IMAGE_SCN_ALIGN_1024BYTES = 0x00B00000
	IMAGE_SCN_ALIGN_2048BYTES = 0x00C00000
	IMAGE_SCN_ALIGN_4096BYTES = 0x00D00000
	IMAGE_SCN_ALIGN_8192BYTES = 0x00E00000
	IMAGE_SCN_ALIGN_MASK      = 0x00F00000

	// Extended relocations: the real count is in the first relocation.
	IMAGE_SCN_LNK_NRELOC_OVFL = 0x01000000
	IMAGE_SCN_MEM_DISCARDABLE = 0x02000000
	IMAGE_SCN_MEM_NOT_CACHED  = 0x04000000
	IMAGE_SCN_MEM_NOT_PAGED   = 0x08000000
	IMAGE_SCN_MEM_SHARED      = 0x10000000
	IMAGE_SCN_MEM_EXECUTE     = 0x20000000
	IMAGE_SCN_MEM_READ        = 0x40000000
	IMAGE_SCN_MEM_WRITE       = 0x80000000
)

var alignMap = map[uint32]uint32{
	IMAGE_SCN_ALIGN_1BYTES:    1,
	IMAGE_SCN_ALIGN_2BYTES:    2,
	IMAGE_SCN_ALIGN_4BYTES:    4,
	IMAGE_SCN_ALIGN_8BYTES:    8,
	IMAGE_SCN_ALIGN_16BYTES:   16,
	IMAGE_SCN_ALIGN_32BYTES:   32,
	IMAGE_SCN_ALIGN_64BYTES:   64,
	IMAGE_SCN_ALIGN_128BYTES:  128,
	IMAGE_SCN_ALIGN_256BYTES:  256,
	IMAGE_SCN_ALIGN_512BYTES:  512,
	IMAGE_SCN_ALIGN_1024BYTES: 1024,
	IMAGE_SCN_ALIGN_2048BYTES: 2048,
	IMAGE_SCN_ALIGN_4096BYTES: 4096,
	IMAGE_SCN_ALIGN_8192BYTES: 8192,
}

// Alignment returns the byte alignment encoded in characteristics.
// ok is false if no alignment is set or the field holds a reserved value.
func Alignment(characteristics uint32) (align uint32, ok bool) {
	align, ok = alignMap[characteristics&IMAGE_SCN_ALIGN_MASK]
	return
}

type flagName struct {
	flag uint32
	name string
}

// alignment is reported separately; MEM_16BIT aliases MEM_PURGEABLE
var flagNames = []flagName{
	{IMAGE_SCN_TYPE_NO_PAD, "TYPE_NO_PAD"},
	{IMAGE_SCN_CNT_CODE, "CNT_CODE"},
	{IMAGE_SCN_CNT_INITIALIZED_DATA, "CNT_INITIALIZED_DATA"},
	{IMAGE_SCN_CNT_UNINITIALIZED_DATA, "CNT_UNINITIALIZED_DATA"},
	{IMAGE_SCN_LNK_OTHER, "LNK_OTHER"},
	{IMAGE_SCN_LNK_INFO, "LNK_INFO"},
	{IMAGE_SCN_LNK_REMOVE, "LNK_REMOVE"},
	{IMAGE_SCN_LNK_COMDAT, "LNK_COMDAT"},
	{IMAGE_SCN_GPREL, "GPREL"},
	{IMAGE_SCN_MEM_PURGEABLE, "MEM_PURGEABLE"},
	{IMAGE_SCN_MEM_LOCKED, "MEM_LOCKED"},
	{IMAGE_SCN_MEM_PRELOAD, "MEM_PRELOAD"},
	{IMAGE_SCN_LNK_NRELOC_OVFL, "LNK_NRELOC_OVFL"},
	{IMAGE_SCN_MEM_DISCARDABLE, "MEM_DISCARDABLE"},
	{IMAGE_SCN_MEM_NOT_CACHED, "MEM_NOT_CACHED"},
	{IMAGE_SCN_MEM_NOT_PAGED, "MEM_NOT_PAGED"},
	{IMAGE_SCN_MEM_SHARED, "MEM_SHARED"},
	{IMAGE_SCN_MEM_EXECUTE, "MEM_EXECUTE"},
	{IMAGE_SCN_MEM_READ, "MEM_READ"},
	{IMAGE_SCN_MEM_WRITE, "MEM_WRITE"},
}

// FlagNames lists the flags set in characteristics, in bit order.
func FlagNames(characteristics uint32) []string {
	var names []string
	for _, f := range flagNames {
		if characteristics&f.flag != 0 {
			names = append(names, f.name)
		}
		if f.flag == IMAGE_SCN_MEM_PRELOAD {
			if align, ok := Alignment(characteristics); ok {
				names = append(names, fmt.Sprintf("ALIGN_%dBYTES", align))
			}
		}
	}
	return names
}
