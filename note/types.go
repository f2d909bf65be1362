package note

import (
	"bytes"
	"encoding/hex"
	"fmt"
)

// Type is the vendor-defined tag of a note record. The set of types is open:
// any value is valid and is preserved as read.
type Type uint32

// Known reports whether t is one of the well-known GNU note types.
func (t Type) Known() bool {
	_, ok := typeNames[t]
	return ok
}

// String returns the symbolic name of well-known GNU types and the hex value
// otherwise.
func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("0x%x", uint32(t))
}

// OS identifies the operating system of an ABI tag. Values outside the known
// set are kept as-is for forward compatibility.
type OS uint32

// Known reports whether o is one of the operating systems defined by the
// GNU ABI tag format.
func (o OS) Known() bool {
	_, ok := osNames[o]
	return ok
}

func (o OS) String() string {
	if name, ok := osNames[o]; ok {
		return name
	}
	return fmt.Sprintf("Unknown(%d)", uint32(o))
}

// Descriptor is a structured view of a note descriptor produced by a
// registered DecodeFunc.
type Descriptor interface {
	// NoteType returns the note type the view was decoded for.
	NoteType() Type
}

// AbiTag is the descriptor of an NT_GNU_ABI_TAG note: the minimum operating
// system ABI an image requires.
type AbiTag struct {
	OS       OS
	Major    uint32
	Minor    uint32
	Subminor uint32
}

// NoteType implements Descriptor.
func (AbiTag) NoteType() Type {
	return TypeGNUABITag
}

func (a AbiTag) String() string {
	return fmt.Sprintf("%s %d.%d.%d", a.OS, a.Major, a.Minor, a.Subminor)
}

// Entry is one decoded note record. It owns copies of every byte it was
// decoded from and is safe to share between goroutines.
type Entry struct {
	descriptor Descriptor
	rawName    []byte
	desc       []byte
	name       string
	offset     uint64
	nameSize   uint32
	descSize   uint32
	typ        Type
}

// NameSize returns the declared length of the name field, terminator included.
func (e *Entry) NameSize() uint32 {
	return e.nameSize
}

// DescriptorSize returns the declared length of the descriptor field.
func (e *Entry) DescriptorSize() uint32 {
	return e.descSize
}

// Type returns the note type.
func (e *Entry) Type() Type {
	return e.typ
}

// Offset returns the absolute offset of the record header.
func (e *Entry) Offset() uint64 {
	return e.offset
}

// Name returns the note owner without its NUL terminator.
func (e *Entry) Name() string {
	return e.name
}

// RawDescriptor returns a copy of the descriptor bytes.
func (e *Entry) RawDescriptor() []byte {
	return bytes.Clone(e.desc)
}

// Descriptor returns the structured descriptor view, or nil when the type has
// no registered decoder or the descriptor was too short for it.
func (e *Entry) Descriptor() Descriptor {
	return e.descriptor
}

// DescriptorAsText returns the descriptor bytes as a string with trailing NUL
// bytes removed. It is meaningful for text-bearing notes such as
// NT_GNU_GOLD_VERSION; binary descriptors produce unspecified text.
func (e *Entry) DescriptorAsText() string {
	return string(bytes.TrimRight(e.desc, "\x00"))
}

// DescriptorAsAbiTag returns the ABI tag view when the entry is an ABI tag
// note whose descriptor decoded successfully.
func (e *Entry) DescriptorAsAbiTag() (AbiTag, bool) {
	tag, ok := e.descriptor.(AbiTag)
	return tag, ok
}

// BuildID returns the lowercase hex build ID of a GNU build-id note.
func (e *Entry) BuildID() (string, bool) {
	if e.typ != TypeGNUBuildID || e.name != OwnerGNU || len(e.desc) == 0 {
		return "", false
	}
	return hex.EncodeToString(e.desc), true
}

func (e *Entry) String() string {
	return fmt.Sprintf("%s %s (%d bytes)", e.name, e.typ, e.descSize)
}
