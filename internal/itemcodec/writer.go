package itemcodec

import (
	"bytes"
	"sync"
	"unicode/utf16"
)

// Writer accumulates little-endian values of an encoded item tree.
type Writer struct {
	buf *bytes.Buffer
}

var writerPool = sync.Pool{
	New: func() any {
		return &Writer{buf: bytes.NewBuffer(make([]byte, 0, 256))}
	},
}

// getWriter returns a reset Writer from the pool.
func getWriter() *Writer {
	w := writerPool.Get().(*Writer)
	w.Reset()
	return w
}

// put returns the Writer to the pool. The Writer must not be used afterwards.
func (w *Writer) put() {
	writerPool.Put(w)
}

// NewWriter creates a writer with the given initial capacity.
func NewWriter(capacity int) *Writer {
	return &Writer{buf: bytes.NewBuffer(make([]byte, 0, capacity))}
}

// WriteByte writes a single byte.
func (w *Writer) WriteByte(b byte) error {
	return w.buf.WriteByte(b)
}

// WriteUint16 writes a uint16 (2 bytes, LE).
func (w *Writer) WriteUint16(val uint16) {
	w.buf.WriteByte(byte(val))
	w.buf.WriteByte(byte(val >> 8))
}

// WriteInt writes an int32 (4 bytes, LE).
func (w *Writer) WriteInt(val int32) {
	w.buf.WriteByte(byte(val))
	w.buf.WriteByte(byte(val >> 8))
	w.buf.WriteByte(byte(val >> 16))
	w.buf.WriteByte(byte(val >> 24))
}

// WriteLong writes an int64 (8 bytes, LE).
func (w *Writer) WriteLong(val int64) {
	for shift := 0; shift < 64; shift += 8 {
		w.buf.WriteByte(byte(val >> shift))
	}
}

// WriteString writes a UTF-16LE null-terminated string.
// A NUL rune inside s would terminate the string early, so it is dropped.
func (w *Writer) WriteString(s string) {
	w.buf.Grow(len(s)*2 + 2)
	for _, u := range utf16.Encode([]rune(s)) {
		if u == 0 {
			continue
		}
		w.buf.WriteByte(byte(u))
		w.buf.WriteByte(byte(u >> 8))
	}
	w.buf.WriteByte(0x00)
	w.buf.WriteByte(0x00)
}

// Bytes returns the accumulated data. The slice is valid until the next write.
func (w *Writer) Bytes() []byte {
	return w.buf.Bytes()
}

// Len returns the number of accumulated bytes.
func (w *Writer) Len() int {
	return w.buf.Len()
}

// Reset clears the buffer for reuse.
func (w *Writer) Reset() {
	w.buf.Reset()
}
