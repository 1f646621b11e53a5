package models

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/mgutz/ansi"

	"github.com/lunixbochs/pecorn/go/coff"
)

var (
	colHeader   = ansi.ColorCode("default+b")
	colIndirect = ansi.ColorCode("cyan")
	colError    = ansi.ColorCode("red+b")
	colFlags    = ansi.ColorCode("black+h")
)

func colorPad(s, color string, pad int, enable bool) string {
	width := runewidth.StringWidth(s)
	if width < pad {
		s += strings.Repeat(" ", pad-width)
	}
	if enable && color != "" {
		s = color + s + ansi.Reset
	}
	return s
}

// SectionPrinter renders a section table as aligned text.
type SectionPrinter struct {
	Color bool
	// list characteristics flags by name
	Flags bool
	// show the on-disk name field next to resolved names
	Raw bool
}

type sectionRow struct {
	name  string
	color string
	sec   *coff.SectionTable
}

func (p *SectionPrinter) rows(secs []*coff.SectionTable) ([]sectionRow, int) {
	rows := make([]sectionRow, len(secs))
	width := len("Name")
	for i, s := range secs {
		row := sectionRow{sec: s}
		name, err := s.Name()
		switch {
		case err != nil:
			row.name, row.color = fmt.Sprintf("<%q>", s.RawName[:]), colError
		case s.Indirect() && p.Raw:
			row.name, row.color = fmt.Sprintf("%s (%s)", name, strings.TrimRight(string(s.RawName[:]), "\x00")), colIndirect
		case s.Indirect():
			row.name, row.color = name, colIndirect
		default:
			row.name = name
		}
		if w := runewidth.StringWidth(row.name); w > width {
			width = w
		}
		rows[i] = row
	}
	return rows, width
}

// Fprint writes one line per section to w.
func (p *SectionPrinter) Fprint(w io.Writer, secs []*coff.SectionTable) {
	rows, width := p.rows(secs)
	header := fmt.Sprintf("%3s  %s  %8s %8s %8s %8s %6s %8s", "Idx", colorPad("Name", "", width, false),
		"VirtSize", "VirtAddr", "RawSize", "RawPtr", "Relocs", "Chars")
	if p.Color {
		header = colHeader + header + ansi.Reset
	}
	fmt.Fprintln(w, header)
	for i, row := range rows {
		s := row.sec
		fmt.Fprintf(w, "%3d  %s  %08x %08x %08x %08x %6d %08x", i+1, colorPad(row.name, row.color, width, p.Color),
			s.VirtualSize, s.VirtualAddress, s.SizeOfRawData, s.PointerToRawData, s.NumberOfRelocations, s.Characteristics)
		if p.Flags {
			flags := strings.Join(coff.FlagNames(s.Characteristics), " ")
			if p.Color {
				flags = colFlags + flags + ansi.Reset
			}
			fmt.Fprintf(w, "  %s", flags)
		}
		fmt.Fprintln(w)
	}
}

type field struct {
	label, value string
}

// Detail writes every field of a single section to w.
func (p *SectionPrinter) Detail(w io.Writer, s *coff.SectionTable) {
	name, err := s.Name()
	if err != nil {
		name = err.Error()
	}
	fields := []field{
		{"Name", name},
		{"RawName", fmt.Sprintf("%q", s.RawName[:])},
		{"VirtualSize", fmt.Sprintf("%#x", s.VirtualSize)},
		{"VirtualAddress", fmt.Sprintf("%#x", s.VirtualAddress)},
		{"SizeOfRawData", fmt.Sprintf("%#x", s.SizeOfRawData)},
		{"PointerToRawData", fmt.Sprintf("%#x", s.PointerToRawData)},
		{"PointerToRelocations", fmt.Sprintf("%#x", s.PointerToRelocations)},
		{"PointerToLinenumbers", fmt.Sprintf("%#x", s.PointerToLinenumbers)},
		{"NumberOfRelocations", fmt.Sprintf("%d", s.NumberOfRelocations)},
		{"NumberOfLinenumbers", fmt.Sprintf("%d", s.NumberOfLinenumbers)},
		{"Characteristics", fmt.Sprintf("%#08x %s", s.Characteristics, strings.Join(coff.FlagNames(s.Characteristics), " "))},
	}
	if n, ok := s.ResolvedName().(coff.IndirectName); ok {
		fields = append(fields, field{"StringTableIndex", fmt.Sprintf("%d", n.Index)})
	}
	for _, f := range fields {
		fmt.Fprintf(w, "%s %s\n", colorPad(f.label+":", colHeader, 22, p.Color), f.value)
	}
}
