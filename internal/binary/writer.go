package binary

import (
	"bytes"
	"encoding/binary"
	"io"
)

// SafeWriter wraps io.Writer with position tracking.
type SafeWriter struct {
	w      io.Writer
	offset int64
}

// NewSafeWriter creates a new SafeWriter.
func NewSafeWriter(w io.Writer) *SafeWriter {
	return &SafeWriter{
		w:      w,
		offset: 0,
	}
}

// Offset returns the current position (number of bytes written).
func (sw *SafeWriter) Offset() int64 {
	return sw.offset
}

// WriteBytes writes raw bytes to the underlying writer.
func (sw *SafeWriter) WriteBytes(b []byte) error {
	n, err := sw.w.Write(b)
	sw.offset += int64(n)
	return err
}

// WriteString writes a string as bytes to the underlying writer.
func (sw *SafeWriter) WriteString(s string) error {
	return sw.WriteBytes([]byte(s))
}

// WriteUint24 writes the low 24 bits of v in big-endian byte order.
func (sw *SafeWriter) WriteUint24(v uint32) error {
	return sw.WriteBytes([]byte{byte(v >> 16), byte(v >> 8), byte(v)})
}

// WriteSynchsafe writes v as a 4-byte synchsafe integer.
func (sw *SafeWriter) WriteSynchsafe(v uint32) error {
	b, err := EncodeSynchsafe(v)
	if err != nil {
		return err
	}
	return sw.WriteBytes(b[:])
}

// WriteZeros writes n zero bytes.
func (sw *SafeWriter) WriteZeros(n int) error {
	if n <= 0 {
		return nil
	}
	return sw.WriteBytes(make([]byte, n))
}

// Write writes a value of type T in big-endian byte order.
// T must be uint8, uint16, uint32, or uint64.
func Write[T uint8 | uint16 | uint32 | uint64](sw *SafeWriter, val T) error {
	var buf []byte

	var zero T
	switch any(zero).(type) {
	case uint8:
		buf = []byte{byte(val)}
	case uint16:
		buf = make([]byte, 2)
		binary.BigEndian.PutUint16(buf, uint16(val))
	case uint32:
		buf = make([]byte, 4)
		binary.BigEndian.PutUint32(buf, uint32(val))
	case uint64:
		buf = make([]byte, 8)
		binary.BigEndian.PutUint64(buf, uint64(val))
	}

	return sw.WriteBytes(buf)
}

// ChainWriter builds a frame body with deferred error checking,
// the write-side counterpart of ChainReader.
type ChainWriter struct {
	*SafeWriter
	buf *bytes.Buffer
	err error
}

// NewChainWriter creates a ChainWriter over an in-memory buffer.
func NewChainWriter() *ChainWriter {
	buf := &bytes.Buffer{}
	return &ChainWriter{SafeWriter: NewSafeWriter(buf), buf: buf}
}

// WriteChained writes a big-endian value, accumulating any error.
func WriteChained[T uint8 | uint16 | uint32 | uint64](cw *ChainWriter, val T) {
	if cw.err != nil {
		return
	}
	cw.err = Write[T](cw.SafeWriter, val)
}

// Raw writes b verbatim.
func (cw *ChainWriter) Raw(b []byte) {
	if cw.err != nil {
		return
	}
	cw.err = cw.SafeWriter.WriteBytes(b)
}

// Latin1 writes s as ISO-8859-1, truncated or zero-padded to exactly n bytes.
func (cw *ChainWriter) Latin1(s string, n int) {
	if cw.err != nil {
		return
	}
	b, err := EncodeText(s, ISO88591)
	if err != nil {
		cw.err = err
		return
	}
	fixed := make([]byte, n)
	copy(fixed, b)
	cw.Raw(fixed)
}

// Text writes s in the given encoding without a terminator.
func (cw *ChainWriter) Text(s string, enc Encoding) {
	if cw.err != nil {
		return
	}
	b, err := EncodeText(s, enc)
	if err != nil {
		cw.err = err
		return
	}
	cw.Raw(b)
}

// Terminated writes s in the given encoding followed by its terminator.
func (cw *ChainWriter) Terminated(s string, enc Encoding) {
	if cw.err != nil {
		return
	}
	b, err := EncodeTerminated(s, enc)
	if err != nil {
		cw.err = err
		return
	}
	cw.Raw(b)
}

// Bytes returns the accumulated body or the first error.
func (cw *ChainWriter) Bytes() ([]byte, error) {
	if cw.err != nil {
		return nil, cw.err
	}
	return cw.buf.Bytes(), nil
}
