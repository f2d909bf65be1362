package binary

import (
	"bytes"
	"encoding/binary"
)

// Writer provides buffered writing utilities for note encoding.
type Writer struct {
	buf   *bytes.Buffer
	order binary.ByteOrder
}

// NewWriter creates a new Writer that encodes integers in the given byte order.
func NewWriter(order binary.ByteOrder) *Writer {
	return &Writer{buf: &bytes.Buffer{}, order: order}
}

// Bytes returns the written bytes.
func (w *Writer) Bytes() []byte {
	return w.buf.Bytes()
}

// Len returns the number of bytes written.
func (w *Writer) Len() int {
	return w.buf.Len()
}

// WriteBytes writes a byte slice.
func (w *Writer) WriteBytes(data []byte) {
	w.buf.Write(data)
}

// WriteU32 writes a 32-bit word.
func (w *Writer) WriteU32(v uint32) {
	var buf [4]byte
	w.order.PutUint32(buf[:], v)
	w.buf.Write(buf[:])
}

// WriteU64 writes a 64-bit word.
func (w *Writer) WriteU64(v uint64) {
	var buf [8]byte
	w.order.PutUint64(buf[:], v)
	w.buf.Write(buf[:])
}

// Zero writes n zero bytes.
func (w *Writer) Zero(n int) {
	for i := 0; i < n; i++ {
		w.buf.WriteByte(0)
	}
}
