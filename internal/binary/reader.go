// Package binary provides bounds-checked binary primitives for ID3v2.3 tags.
package binary

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrShortBuffer is wrapped by every read that would run past the end of the buffer.
var ErrShortBuffer = errors.New("short buffer")

// Reader provides sequential reading over an in-memory buffer with
// automatic offset tracking and helpful error messages.
type Reader struct {
	buf []byte
	off int
}

// NewReader creates a new Reader positioned at the start of b.
func NewReader(b []byte) *Reader {
	return &Reader{buf: b}
}

// Offset returns the current offset.
func (r *Reader) Offset() int {
	return r.off
}

// Len returns the number of unread bytes.
func (r *Reader) Len() int {
	return len(r.buf) - r.off
}

// ReadBytes returns the next n bytes and advances the offset.
// The returned slice aliases the underlying buffer.
func (r *Reader) ReadBytes(n int, what string) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("negative length %d while reading %s", n, what)
	}
	if n > r.Len() {
		return nil, fmt.Errorf("read of %d bytes at offset %d would exceed buffer size %d while reading %s: %w",
			n, r.off, len(r.buf), what, ErrShortBuffer)
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b, nil
}

// Skip advances the offset by n bytes.
func (r *Reader) Skip(n int, what string) error {
	_, err := r.ReadBytes(n, what)
	return err
}

// Rest returns all unread bytes and moves the offset to the end.
func (r *Reader) Rest() []byte {
	b := r.buf[r.off:]
	r.off = len(r.buf)
	return b
}

// ReadValue reads a big-endian value of type T and advances the offset.
func ReadValue[T uint8 | uint16 | uint32 | uint64](r *Reader, what string) (T, error) {
	var zero T
	var size int
	switch any(zero).(type) {
	case uint8:
		size = 1
	case uint16:
		size = 2
	case uint32:
		size = 4
	case uint64:
		size = 8
	}

	buf, err := r.ReadBytes(size, what)
	if err != nil {
		return zero, err
	}

	var val T
	switch any(zero).(type) {
	case uint8:
		val = T(buf[0])
	case uint16:
		val = T(binary.BigEndian.Uint16(buf))
	case uint32:
		val = T(binary.BigEndian.Uint32(buf))
	case uint64:
		val = T(binary.BigEndian.Uint64(buf))
	}
	return val, nil
}

// ReadUint24 reads a big-endian 24-bit value.
func (r *Reader) ReadUint24(what string) (uint32, error) {
	buf, err := r.ReadBytes(3, what)
	if err != nil {
		return 0, err
	}
	return uint32(buf[0])<<16 | uint32(buf[1])<<8 | uint32(buf[2]), nil
}

// ReadSynchsafe reads a 4-byte synchsafe integer.
// Any byte with its high bit set is reported as an error.
func (r *Reader) ReadSynchsafe(what string) (uint32, error) {
	buf, err := r.ReadBytes(4, what)
	if err != nil {
		return 0, err
	}
	if !ValidSynchsafe(buf) {
		return 0, fmt.Errorf("invalid synchsafe integer % x at offset %d while reading %s", buf, r.off-4, what)
	}
	return DecodeSynchsafe(buf), nil
}

// ReadTerminated reads a null-terminated field in the given encoding and
// consumes the terminator. The terminator is not part of the returned bytes.
func (r *Reader) ReadTerminated(enc Encoding, what string) ([]byte, error) {
	field, rest, ok := SplitTerminated(r.buf[r.off:], enc)
	if !ok {
		return nil, fmt.Errorf("missing terminator at offset %d while reading %s: %w", r.off, what, ErrShortBuffer)
	}
	r.off = len(r.buf) - len(rest)
	return field, nil
}

// ChainReader allows chaining multiple reads with deferred error checking.
// This avoids repetitive "if err != nil" checks in frame decoders.
type ChainReader struct {
	*Reader
	err error
}

// NewChainReader creates a new ChainReader over b.
func NewChainReader(b []byte) *ChainReader {
	return &ChainReader{Reader: NewReader(b)}
}

// ReadChained reads a value with deferred error checking.
// If a previous read failed, returns zero value without attempting read.
func ReadChained[T uint8 | uint16 | uint32 | uint64](cr *ChainReader, what string) T {
	if cr.err != nil {
		var zero T
		return zero
	}

	val, err := ReadValue[T](cr.Reader, what)
	if err != nil {
		cr.err = err
		var zero T
		return zero
	}
	return val
}

// Bytes reads n raw bytes, accumulating any error.
func (cr *ChainReader) Bytes(n int, what string) []byte {
	if cr.err != nil {
		return nil
	}
	b, err := cr.Reader.ReadBytes(n, what)
	if err != nil {
		cr.err = err
		return nil
	}
	return b
}

// Latin1 reads a fixed-width ISO-8859-1 string.
func (cr *ChainReader) Latin1(n int, what string) string {
	b := cr.Bytes(n, what)
	if cr.err != nil {
		return ""
	}
	return cr.decode(b, ISO88591, what)
}

// Terminated reads a null-terminated string in the given encoding.
func (cr *ChainReader) Terminated(enc Encoding, what string) string {
	if cr.err != nil {
		return ""
	}
	b, err := cr.Reader.ReadTerminated(enc, what)
	if err != nil {
		cr.err = err
		return ""
	}
	return cr.decode(b, enc, what)
}

// Text decodes all remaining bytes as a string in the given encoding.
func (cr *ChainReader) Text(enc Encoding, what string) string {
	if cr.err != nil {
		return ""
	}
	return cr.decode(cr.Reader.Rest(), enc, what)
}

// Rest returns all remaining bytes as a copy.
func (cr *ChainReader) Rest() []byte {
	if cr.err != nil {
		return nil
	}
	return append([]byte(nil), cr.Reader.Rest()...)
}

// Encoding reads a text encoding byte and validates it.
func (cr *ChainReader) Encoding(what string) Encoding {
	enc := Encoding(ReadChained[uint8](cr, what))
	if cr.err == nil && !enc.Valid() {
		cr.err = fmt.Errorf("invalid text encoding %d while reading %s", enc, what)
	}
	return enc
}

func (cr *ChainReader) decode(b []byte, enc Encoding, what string) string {
	s, err := DecodeText(b, enc)
	if err != nil {
		cr.err = fmt.Errorf("decode %s: %w", what, err)
		return ""
	}
	return s
}

// Error returns the accumulated error, if any.
func (cr *ChainReader) Error() error {
	return cr.err
}
