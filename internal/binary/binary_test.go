package binary

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"
)

func TestCursorReadBytes(t *testing.T) {
	data := []byte{0x01, 0x02, 0x03, 0x04, 0x05}
	c := NewBytesCursor(data, binary.LittleEndian)

	got, err := c.ReadBytes(3)
	if err != nil {
		t.Fatalf("ReadBytes: %v", err)
	}
	if !bytes.Equal(got, []byte{0x01, 0x02, 0x03}) {
		t.Errorf("ReadBytes: got %v, want [1 2 3]", got)
	}
	if c.Position() != 3 {
		t.Errorf("position: got %d, want 3", c.Position())
	}
	if c.Remaining() != 2 {
		t.Errorf("remaining: got %d, want 2", c.Remaining())
	}
}

func TestCursorShortRead(t *testing.T) {
	c := NewBytesCursor([]byte{0xaa, 0xbb}, binary.LittleEndian)

	got, err := c.ReadBytes(10)
	if err == nil {
		t.Fatal("expected error for reading past EOF")
	}
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("expected io.ErrUnexpectedEOF, got %v", err)
	}
	if !bytes.Equal(got, []byte{0xaa, 0xbb}) {
		t.Errorf("short read should return available bytes, got %v", got)
	}
	if c.Position() != 2 {
		t.Errorf("position: got %d, want 2", c.Position())
	}
}

func TestCursorReadBytesZero(t *testing.T) {
	c := NewBytesCursor(nil, binary.LittleEndian)
	got, err := c.ReadBytes(0)
	if err != nil {
		t.Fatalf("ReadBytes(0): %v", err)
	}
	if len(got) != 0 {
		t.Errorf("ReadBytes(0): got %v", got)
	}
}

func TestCursorHugeLengthDoesNotAllocate(t *testing.T) {
	c := NewBytesCursor([]byte{1, 2, 3}, binary.LittleEndian)
	got, err := c.ReadBytes(0xFFFFFFFF)
	if err == nil {
		t.Fatal("expected short read")
	}
	if len(got) != 3 || cap(got) != 3 {
		t.Errorf("expected 3 byte buffer, got len=%d cap=%d", len(got), cap(got))
	}
}

func TestCursorReadU32(t *testing.T) {
	data := []byte{0x01, 0x02, 0x03, 0x04}

	tests := []struct {
		order binary.ByteOrder
		want  uint32
	}{
		{binary.LittleEndian, 0x04030201},
		{binary.BigEndian, 0x01020304},
	}

	for _, tt := range tests {
		c := NewBytesCursor(data, tt.order)
		got, err := c.ReadU32()
		if err != nil {
			t.Fatalf("ReadU32 (%v): %v", tt.order, err)
		}
		if got != tt.want {
			t.Errorf("ReadU32 (%v): got 0x%x, want 0x%x", tt.order, got, tt.want)
		}
	}
}

func TestCursorReadU32Truncated(t *testing.T) {
	c := NewBytesCursor([]byte{0x01, 0x02}, binary.LittleEndian)
	if _, err := c.ReadU32(); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("expected io.ErrUnexpectedEOF, got %v", err)
	}
}

func TestCursorSeekAndSkip(t *testing.T) {
	data := []byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	c := NewBytesCursor(data, binary.LittleEndian)

	if err := c.Seek(4); err != nil {
		t.Fatalf("Seek: %v", err)
	}
	if err := c.Skip(2); err != nil {
		t.Fatalf("Skip: %v", err)
	}
	b, err := c.ReadBytes(1)
	if err != nil {
		t.Fatalf("ReadBytes: %v", err)
	}
	if b[0] != 6 {
		t.Errorf("after seek+skip: got %d, want 6", b[0])
	}

	if err := c.Seek(100); err != nil {
		t.Fatalf("Seek past end: %v", err)
	}
	if c.Remaining() != 0 {
		t.Errorf("remaining past end: got %d", c.Remaining())
	}
	if _, err := c.ReadBytes(1); err == nil {
		t.Error("expected error reading past end")
	}
}

func TestCursorSeekOverflow(t *testing.T) {
	c := NewBytesCursor(nil, binary.LittleEndian)
	if err := c.Seek(1 << 63); !errors.Is(err, ErrOffsetOverflow) {
		t.Errorf("expected ErrOffsetOverflow, got %v", err)
	}
}

func TestBytesCursorAt(t *testing.T) {
	c := NewBytesCursorAt([]byte{0x10, 0x20, 0x30, 0x40, 0x50}, 100, binary.LittleEndian)

	if c.Position() != 100 || c.Size() != 105 {
		t.Fatalf("position/size: got %d/%d, want 100/105", c.Position(), c.Size())
	}
	if err := c.Seek(103); err != nil {
		t.Fatalf("Seek: %v", err)
	}
	b, err := c.ReadBytes(2)
	if err != nil {
		t.Fatalf("ReadBytes: %v", err)
	}
	if !bytes.Equal(b, []byte{0x40, 0x50}) {
		t.Errorf("ReadBytes: got %v", b)
	}
	if err := c.Seek(99); !errors.Is(err, ErrBeforeBase) {
		t.Errorf("expected ErrBeforeBase, got %v", err)
	}
}

func TestNewCursorFromReadSeeker(t *testing.T) {
	r := bytes.NewReader([]byte{0xde, 0xad, 0xbe, 0xef, 0x00})
	if _, err := r.Seek(3, io.SeekStart); err != nil {
		t.Fatal(err)
	}

	c, err := NewCursor(r, binary.BigEndian)
	if err != nil {
		t.Fatalf("NewCursor: %v", err)
	}
	if c.Size() != 5 {
		t.Errorf("size: got %d, want 5", c.Size())
	}
	v, err := c.ReadU32()
	if err != nil {
		t.Fatalf("ReadU32: %v", err)
	}
	if v != 0xdeadbeef {
		t.Errorf("ReadU32: got 0x%x", v)
	}
}

func TestWriter(t *testing.T) {
	w := NewWriter(binary.BigEndian)
	w.WriteU32(0x01020304)
	w.WriteBytes([]byte("GNU"))
	w.Zero(1)
	w.WriteU64(1)

	want := []byte{
		0x01, 0x02, 0x03, 0x04,
		'G', 'N', 'U', 0x00,
		0, 0, 0, 0, 0, 0, 0, 1,
	}
	if !bytes.Equal(w.Bytes(), want) {
		t.Errorf("Bytes: got %v, want %v", w.Bytes(), want)
	}
	if w.Len() != len(want) {
		t.Errorf("Len: got %d, want %d", w.Len(), len(want))
	}
}

func TestWriterZero(t *testing.T) {
	for _, n := range []int{0, 1, 3, 7} {
		w := NewWriter(binary.LittleEndian)
		w.WriteBytes([]byte{0xff})
		w.Zero(n)
		if w.Len() != 1+n {
			t.Errorf("Zero(%d): got len %d, want %d", n, w.Len(), 1+n)
		}
		for i, b := range w.Bytes()[1:] {
			if b != 0 {
				t.Errorf("Zero(%d): byte %d = 0x%02x", n, i, b)
			}
		}
	}
}

func TestWriterCursorRoundTrip(t *testing.T) {
	for _, order := range []binary.ByteOrder{binary.LittleEndian, binary.BigEndian} {
		w := NewWriter(order)
		w.WriteU32(7)
		w.WriteU64(0x1122334455667788)

		c := NewBytesCursor(w.Bytes(), order)
		a, err := c.ReadU32()
		if err != nil || a != 7 {
			t.Fatalf("%v: ReadU32 = %d, %v", order, a, err)
		}
		b, err := c.ReadU64()
		if err != nil || b != 0x1122334455667788 {
			t.Fatalf("%v: ReadU64 = 0x%x, %v", order, b, err)
		}
	}
}
