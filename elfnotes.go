package elfnotes

import "encoding/binary"

// Cursor is a seekable reader over an ELF image that decodes fixed-size
// integers in the image's byte order.
type Cursor interface {
	// Seek moves to an absolute offset in the image.
	Seek(offset uint64) error
	// ReadU32 reads one 32-bit word.
	ReadU32() (uint32, error)
	// ReadBytes reads exactly n bytes into a new slice. On a short read it
	// returns the bytes that were available together with a non-nil error.
	ReadBytes(n uint32) ([]byte, error)
	// Skip advances the position by n bytes without reading them.
	Skip(n uint32) error
	// ByteOrder reports the image's declared byte order.
	ByteOrder() binary.ByteOrder
}

// Section locates a region of note records inside an image.
type Section struct {
	Offset uint64
	Size   uint64
	// Align is the section or segment alignment. Descriptors are padded to
	// 8 bytes when it is 8 and to 4 bytes otherwise.
	Align uint64
}

// End returns the offset one past the last byte of the section.
func (s Section) End() uint64 {
	return s.Offset + s.Size
}
