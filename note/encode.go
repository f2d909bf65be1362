package note

import (
	"encoding/binary"

	bin "github.com/wippyai/elf-notes/internal/binary"
)

// Encode returns one note record. A non-empty name is written with its NUL
// terminator; an empty name is written with namesz 0. Name and descriptor are
// each padded to 4 bytes.
func Encode(order binary.ByteOrder, name string, t Type, desc []byte) []byte {
	w := bin.NewWriter(order)
	writeRecord(w, encodeName(name), t, desc, WordAlign)
	return w.Bytes()
}

// Encode re-serializes the entry from the bytes it was decoded from.
func (e *Entry) Encode(order binary.ByteOrder) []byte {
	w := bin.NewWriter(order)
	writeRecord(w, e.rawName, e.typ, e.desc, WordAlign)
	return w.Bytes()
}

// EncodeSection packs entries into a note section laid out for align, in the
// layout DecodeSection reads.
func EncodeSection(order binary.ByteOrder, align uint64, entries []*Entry) []byte {
	w := bin.NewWriter(order)
	descAlign := DescriptorAlign(align)
	for _, e := range entries {
		writeRecord(w, e.rawName, e.typ, e.desc, descAlign)
	}
	return w.Bytes()
}

func encodeName(name string) []byte {
	if name == "" {
		return nil
	}
	raw := make([]byte, len(name)+1)
	copy(raw, name)
	return raw
}

func writeRecord(w *bin.Writer, rawName []byte, t Type, desc []byte, descAlign uint64) {
	w.WriteU32(uint32(len(rawName)))
	w.WriteU32(uint32(len(desc)))
	w.WriteU32(uint32(t))
	w.WriteBytes(rawName)
	w.Zero(int(descriptorOffset(uint32(len(rawName)), descAlign)) - HeaderSize - len(rawName))
	w.WriteBytes(desc)
	w.Zero(int(alignUp(uint64(len(desc)), descAlign)) - len(desc))
}
