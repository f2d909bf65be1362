// Package elftest builds minimal ELF images for tests.
package elftest

import (
	"debug/elf"
	"encoding/binary"

	bin "github.com/wippyai/elf-notes/internal/binary"
)

// Section is a note section to place in the image.
type Section struct {
	Name  string
	Data  []byte
	Align uint64
}

// Options controls the image layout.
type Options struct {
	Order binary.ByteOrder
	Class elf.Class
	// Segments adds one PT_NOTE program header per section.
	Segments bool
	// NoSections omits the section header table, as strip tools can.
	NoSections bool
}

type layout struct {
	Section
	offset uint64
}

// Build returns an ELF executable containing the given note sections.
func Build(opts Options, sections ...Section) []byte {
	if opts.Order == nil {
		opts.Order = binary.LittleEndian
	}
	if opts.Class == elf.ELFCLASSNONE {
		opts.Class = elf.ELFCLASS64
	}
	is64 := opts.Class == elf.ELFCLASS64

	ehsize, phentsize, shentsize := uint64(52), uint64(32), uint64(40)
	if is64 {
		ehsize, phentsize, shentsize = 64, 56, 64
	}

	// Body: note data, then the section name table.
	off := ehsize
	placed := make([]layout, len(sections))
	for i, s := range sections {
		align := max(s.Align, 4)
		off = (off + align - 1) &^ (align - 1)
		placed[i] = layout{Section: s, offset: off}
		off += uint64(len(s.Data))
	}

	shstrtab := []byte{0}
	nameIdx := make([]uint32, len(sections))
	for i, s := range sections {
		nameIdx[i] = uint32(len(shstrtab))
		shstrtab = append(append(shstrtab, s.Name...), 0)
	}
	shstrtabName := uint32(len(shstrtab))
	shstrtab = append(append(shstrtab, ".shstrtab"...), 0)
	shstrtabOff := off
	off += uint64(len(shstrtab))
	off = (off + 7) &^ 7

	var phoff, phnum uint64
	if opts.Segments {
		phoff, phnum = off, uint64(len(sections))
		off += phnum * phentsize
	}

	var shoff, shnum, shstrndx uint64
	if !opts.NoSections {
		shoff, shnum = off, uint64(len(sections))+2
		shstrndx = shnum - 1
	}

	w := bin.NewWriter(opts.Order)
	word := func(v uint64) {
		if is64 {
			w.WriteU64(v)
		} else {
			w.WriteU32(uint32(v))
		}
	}
	half := func(v uint64) {
		var b [2]byte
		opts.Order.PutUint16(b[:], uint16(v))
		w.WriteBytes(b[:])
	}

	// ELF header.
	data := byte(elf.ELFDATA2LSB)
	if opts.Order == binary.BigEndian {
		data = byte(elf.ELFDATA2MSB)
	}
	ident := [elf.EI_NIDENT]byte{0x7f, 'E', 'L', 'F', byte(opts.Class), data, byte(elf.EV_CURRENT)}
	w.WriteBytes(ident[:])
	half(uint64(elf.ET_EXEC))
	half(uint64(elf.EM_X86_64))
	w.WriteU32(uint32(elf.EV_CURRENT))
	word(0) // entry
	word(phoff)
	word(shoff)
	w.WriteU32(0) // flags
	half(ehsize)
	half(phentsize)
	half(phnum)
	half(shentsize)
	half(shnum)
	half(shstrndx)

	for _, p := range placed {
		w.Zero(int(p.offset) - w.Len())
		w.WriteBytes(p.Data)
	}
	w.WriteBytes(shstrtab)
	w.Zero(int((uint64(w.Len())+7)&^7) - w.Len())

	if opts.Segments {
		for _, p := range placed {
			align := max(p.Align, 4)
			w.WriteU32(uint32(elf.PT_NOTE))
			if is64 {
				w.WriteU32(uint32(elf.PF_R))
				word(p.offset)
				word(0)
				word(0)
				word(uint64(len(p.Data)))
				word(uint64(len(p.Data)))
				word(align)
			} else {
				word(p.offset)
				word(0)
				word(0)
				word(uint64(len(p.Data)))
				word(uint64(len(p.Data)))
				w.WriteU32(uint32(elf.PF_R))
				word(align)
			}
		}
	}

	if !opts.NoSections {
		sh := func(name uint32, typ elf.SectionType, flags, offset, size, align uint64) {
			w.WriteU32(name)
			w.WriteU32(uint32(typ))
			word(flags)
			word(0) // addr
			word(offset)
			word(size)
			w.WriteU32(0) // link
			w.WriteU32(0) // info
			word(align)
			word(0) // entsize
		}
		sh(0, elf.SHT_NULL, 0, 0, 0, 0)
		for i, p := range placed {
			sh(nameIdx[i], elf.SHT_NOTE, uint64(elf.SHF_ALLOC), p.offset, uint64(len(p.Data)), max(p.Align, 4))
		}
		sh(shstrtabName, elf.SHT_STRTAB, 0, shstrtabOff, uint64(len(shstrtab)), 1)
	}

	return w.Bytes()
}
