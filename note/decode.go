package note

import (
	"fmt"

	"go.uber.org/zap"

	elfnotes "github.com/wippyai/elf-notes"
	"github.com/wippyai/elf-notes/errors"
)

// Decoder reads note records through a Cursor and attaches structured
// descriptor views from its Registry.
type Decoder struct {
	reg *Registry
}

// NewDecoder creates a Decoder using reg, or DefaultRegistry when reg is nil.
func NewDecoder(reg *Registry) *Decoder {
	if reg == nil {
		reg = DefaultRegistry
	}
	return &Decoder{reg: reg}
}


// Registry returns the registry the decoder consults.
func (d *Decoder) Registry() *Registry {
	return d.reg
}

// Decode reads one note record at offset using DefaultRegistry.
func Decode(c elfnotes.Cursor, offset uint64) (*Entry, error) {
	return NewDecoder(nil).Decode(c, offset)
}

// DecodeSection reads every note record of sec using DefaultRegistry.
func DecodeSection(c elfnotes.Cursor, sec elfnotes.Section) ([]*Entry, error) {
	return NewDecoder(nil).DecodeSection(c, sec)
}

// Decode reads one note record starting at offset. The name and descriptor
// are each read exactly once, for exactly their declared lengths, and copied
// into the returned Entry. A declared length that exceeds the available bytes
// fails with *errors.TruncatedRecordError.
func (d *Decoder) Decode(c elfnotes.Cursor, offset uint64) (*Entry, error) {
	if err := c.Seek(offset); err != nil {
		return nil, errors.IO(errors.PhaseDecode, fmt.Sprintf("seek to note at 0x%x", offset), err)
	}

	nameSize, descSize, typ, err := readHeader(c, offset)
	if err != nil {
		return nil, err
	}
	return d.decodeBody(c, offset, nameSize, descSize, typ, NamePadding(nameSize))
}

// DecodeSection reads the note records packed in sec. With A the section's
// descriptor alignment, each descriptor starts at the record offset plus
// alignUp(HeaderSize+namesz, A) and the next record at the end of the
// descriptor rounded up to A, as binutils lays out notes.
// Fewer than HeaderSize trailing bytes are treated as padding. A record whose
// declared lengths overrun the section fails with *errors.TruncatedRecordError;
// the entries decoded before it are returned with the error.
func (d *Decoder) DecodeSection(c elfnotes.Cursor, sec elfnotes.Section) ([]*Entry, error) {
	descAlign := DescriptorAlign(sec.Align)
	end := sec.End()

	var entries []*Entry
	for off := sec.Offset; off <= end && end-off >= HeaderSize; {
		if err := c.Seek(off); err != nil {
			return entries, errors.IO(errors.PhaseDecode, fmt.Sprintf("seek to note at 0x%x", off), err)
		}

		nameSize, descSize, typ, err := readHeader(c, off)
		if err != nil {
			return entries, err
		}

		left := end - off - HeaderSize
		if uint64(nameSize) > left {
			return entries, errors.Truncated("name", off, uint64(nameSize), left, nil)
		}
		descOff := descriptorOffset(nameSize, descAlign)
		left -= min(descOff-HeaderSize, left)
		if uint64(descSize) > left {
			return entries, errors.Truncated("descriptor", off, uint64(descSize), left, nil)
		}

		pad := uint32(descOff - HeaderSize - uint64(nameSize))
		e, err := d.decodeBody(c, off, nameSize, descSize, typ, pad)
		if err != nil {
			return entries, err
		}
		entries = append(entries, e)

		off += alignUp(descOff+uint64(descSize), descAlign)
	}
	return entries, nil
}

func (d *Decoder) decodeBody(c elfnotes.Cursor, offset uint64, nameSize, descSize uint32, typ Type, namePad uint32) (*Entry, error) {
	rawName, err := c.ReadBytes(nameSize)
	if err != nil {
		return nil, errors.Truncated("name", offset, uint64(nameSize), uint64(len(rawName)), err)
	}

	if namePad != 0 {
		if err := c.Skip(namePad); err != nil {
			return nil, errors.IO(errors.PhaseDecode, "skip name padding", err)
		}
	}

	desc, err := c.ReadBytes(descSize)
	if err != nil {
		return nil, errors.Truncated("descriptor", offset, uint64(descSize), uint64(len(desc)), err)
	}

	var name string
	if nameSize > 0 {
		name = string(rawName[:nameSize-1])
	}

	e := &Entry{
		rawName:  rawName,
		desc:     desc,
		name:     name,
		offset:   offset,
		nameSize: nameSize,
		descSize: descSize,
		typ:      typ,
	}
	if descSize > 0 {
		e.descriptor = d.reg.decode(typ, c.ByteOrder(), desc)
	}

	Logger().Debug("decoded note",
		zap.String("name", name),
		zap.Stringer("type", typ),
		zap.Uint32("descsz", descSize),
		zap.Uint64("offset", offset),
		zap.Bool("structured", e.descriptor != nil))

	return e, nil
}

// readHeader reads the namesz, descsz and type words at the cursor position.
func readHeader(c elfnotes.Cursor, offset uint64) (nameSize, descSize uint32, typ Type, err error) {
	buf, err := c.ReadBytes(HeaderSize)
	if err != nil {
		return 0, 0, 0, errors.Truncated("header", offset, HeaderSize, uint64(len(buf)), err)
	}
	order := c.ByteOrder()
	return order.Uint32(buf[0:4]), order.Uint32(buf[4:8]), Type(order.Uint32(buf[8:12])), nil
}

// NamePadding returns the number of zero bytes that follow a name field of
// n bytes so the descriptor starts on a 4-byte boundary.
func NamePadding(n uint32) uint32 {
	return (WordAlign - n%WordAlign) % WordAlign
}

// DescriptorAlign returns the descriptor alignment for a section or segment
// aligned to align: 8 for 8-byte aligned notes, 4 otherwise.
func DescriptorAlign(align uint64) uint64 {
	if align == 8 {
		return 8
	}
	return WordAlign
}

// descriptorOffset returns the offset of the descriptor from the start of a
// record whose name is nameSize bytes long.
func descriptorOffset(nameSize uint32, descAlign uint64) uint64 {
	return alignUp(HeaderSize+uint64(nameSize), descAlign)
}

func alignUp(n, align uint64) uint64 {
	return (n + align - 1) &^ (align - 1)
}
