package binary

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// Seek errors.
var (
	ErrOffsetOverflow = errors.New("offset overflows int64")
	ErrBeforeBase     = errors.New("offset before cursor base")
)

// Cursor wraps an io.ReadSeeker with position tracking and byte-order aware
// reads. It satisfies elfnotes.Cursor.
type Cursor struct {
	r     io.ReadSeeker
	order binary.ByteOrder
	base  uint64
	pos   uint64
	size  uint64
}

// NewCursor creates a Cursor over r. The total size is taken from r by
// seeking to its end; the cursor then starts at offset 0.
func NewCursor(r io.ReadSeeker, order binary.ByteOrder) (*Cursor, error) {
	end, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, err
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	return &Cursor{r: r, order: order, size: uint64(end)}, nil
}

// NewBytesCursor creates a Cursor over an in-memory image.
func NewBytesCursor(data []byte, order binary.ByteOrder) *Cursor {
	return &Cursor{
		r:     bytes.NewReader(data),
		order: order,
		size:  uint64(len(data)),
	}
}

// NewBytesCursorAt creates a Cursor over data that was taken from offset base
// of a larger image. Positions stay absolute: the first byte of data is at
// base, and offsets below base cannot be reached.
func NewBytesCursorAt(data []byte, base uint64, order binary.ByteOrder) *Cursor {
	return &Cursor{
		r:     bytes.NewReader(data),
		order: order,
		base:  base,
		pos:   base,
		size:  base + uint64(len(data)),
	}
}

// Position returns the current byte position.
func (c *Cursor) Position() uint64 {
	return c.pos
}

// Size returns the offset one past the last readable byte.
func (c *Cursor) Size() uint64 {
	return c.size
}

// Remaining returns the number of bytes between the position and the end.
func (c *Cursor) Remaining() uint64 {
	if c.pos >= c.size {
		return 0
	}
	return c.size - c.pos
}

// ByteOrder returns the byte order used for integer reads.
func (c *Cursor) ByteOrder() binary.ByteOrder {
	return c.order
}

// Seek moves to an absolute offset. Seeking past the end is allowed; later
// reads report a short read.
func (c *Cursor) Seek(offset uint64) error {
	if offset < c.base {
		return c.wrapError(ErrBeforeBase)
	}
	rel := offset - c.base
	if rel > math.MaxInt64 {
		return c.wrapError(ErrOffsetOverflow)
	}
	if _, err := c.r.Seek(int64(rel), io.SeekStart); err != nil {
		return c.wrapError(err)
	}
	c.pos = offset
	return nil
}

// Skip advances the position by n bytes.
func (c *Cursor) Skip(n uint32) error {
	if n == 0 {
		return nil
	}
	return c.Seek(c.pos + uint64(n))
}

// ReadBytes reads exactly n bytes. At most Remaining bytes are allocated, so
// a corrupt length cannot force a large allocation. On a short read the
// available bytes are returned with an error wrapping io.ErrUnexpectedEOF.
func (c *Cursor) ReadBytes(n uint32) ([]byte, error) {
	want := uint64(n)
	avail := want
	if rem := c.Remaining(); avail > rem {
		avail = rem
	}

	buf := make([]byte, avail)
	got, err := io.ReadFull(c.r, buf)
	c.pos += uint64(got)
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return buf[:got], c.wrapError(err)
	}
	if avail < want {
		return buf, c.wrapError(io.ErrUnexpectedEOF)
	}
	return buf, nil
}

// ReadU32 reads a 32-bit word in the cursor's byte order.
func (c *Cursor) ReadU32() (uint32, error) {
	buf, err := c.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return c.order.Uint32(buf), nil
}

// ReadU64 reads a 64-bit word in the cursor's byte order.
func (c *Cursor) ReadU64() (uint64, error) {
	buf, err := c.ReadBytes(8)
	if err != nil {
		return 0, err
	}
	return c.order.Uint64(buf), nil
}

func (c *Cursor) wrapError(err error) error {
	return fmt.Errorf("at position %d: %w", c.pos, err)
}
