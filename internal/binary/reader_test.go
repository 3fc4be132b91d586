package binary

import (
	"encoding/binary"
	"errors"
	"strings"
	"testing"
)

func TestReader_ReadBytes_Success(t *testing.T) {
	r := NewReader([]byte{0x01, 0x02, 0x03, 0x04})

	buf, err := r.ReadBytes(2, "test read")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if buf[0] != 0x01 || buf[1] != 0x02 {
		t.Errorf("expected [0x01, 0x02], got [0x%02x, 0x%02x]", buf[0], buf[1])
	}
	if r.Len() != 2 {
		t.Errorf("expected 2 bytes remaining, got %d", r.Len())
	}
}

func TestReader_ReadBytes_OutOfBounds(t *testing.T) {
	r := NewReader([]byte{0x01, 0x02, 0x03, 0x04})

	_, err := r.ReadBytes(10, "frame body")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !errors.Is(err, ErrShortBuffer) {
		t.Errorf("error should wrap ErrShortBuffer: %v", err)
	}
	if !strings.Contains(err.Error(), "frame body") {
		t.Errorf("error should contain context: %v", err)
	}
	if r.Offset() != 0 {
		t.Errorf("failed read must not advance offset, got %d", r.Offset())
	}
}

func TestReadValue_Uint8(t *testing.T) {
	r := NewReader([]byte{0x42})

	val, err := ReadValue[uint8](r, "test uint8")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if val != 0x42 {
		t.Errorf("expected 0x42, got 0x%02x", val)
	}
}

func TestReadValue_Uint32(t *testing.T) {
	data := make([]byte, 4)
	binary.BigEndian.PutUint32(data, 0x12345678)
	r := NewReader(data)

	val, err := ReadValue[uint32](r, "test uint32")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if val != 0x12345678 {
		t.Errorf("expected 0x12345678, got 0x%08x", val)
	}
}

func TestReader_Sequential(t *testing.T) {
	r := NewReader([]byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08})

	val1, err := ReadValue[uint8](r, "first byte")
	if err != nil {
		t.Fatalf("read 1 failed: %v", err)
	}
	if val1 != 0x01 {
		t.Errorf("expected 0x01, got 0x%02x", val1)
	}

	val2, err := ReadValue[uint16](r, "second word")
	if err != nil {
		t.Fatalf("read 2 failed: %v", err)
	}
	if val2 != 0x0203 {
		t.Errorf("expected 0x0203, got 0x%04x", val2)
	}

	val3, err := r.ReadUint24("third triple")
	if err != nil {
		t.Fatalf("read 3 failed: %v", err)
	}
	if val3 != 0x040506 {
		t.Errorf("expected 0x040506, got 0x%06x", val3)
	}

	if r.Offset() != 6 {
		t.Errorf("expected offset 6, got %d", r.Offset())
	}
	if rest := r.Rest(); len(rest) != 2 || rest[0] != 0x07 {
		t.Errorf("unexpected rest %v", rest)
	}
}

func TestReader_Skip(t *testing.T) {
	r := NewReader(make([]byte, 100))

	if err := r.Skip(20, "padding"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Offset() != 20 {
		t.Errorf("expected offset 20 after skip, got %d", r.Offset())
	}
	if err := r.Skip(81, "padding"); err == nil {
		t.Error("expected error when skipping past the end")
	}
}

func TestReader_ReadSynchsafe(t *testing.T) {
	r := NewReader([]byte{0x00, 0x00, 0x02, 0x01, 0x00, 0x80, 0x00, 0x00})

	val, err := r.ReadSynchsafe("tag size")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if val != 257 {
		t.Errorf("expected 257, got %d", val)
	}

	if _, err := r.ReadSynchsafe("tag size"); err == nil {
		t.Error("expected error for byte with high bit set")
	}
}

func TestReader_ReadTerminated(t *testing.T) {
	r := NewReader([]byte{'a', 'b', 0x00, 'c'})

	field, err := r.ReadTerminated(ISO88591, "owner")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(field) != "ab" {
		t.Errorf("expected 'ab', got %q", field)
	}
	if r.Offset() != 3 {
		t.Errorf("expected offset 3, got %d", r.Offset())
	}

	if _, err := r.ReadTerminated(ISO88591, "owner"); !errors.Is(err, ErrShortBuffer) {
		t.Errorf("expected ErrShortBuffer for missing terminator, got %v", err)
	}
}

func TestChainReader_Success(t *testing.T) {
	cr := NewChainReader([]byte{0x01, 'e', 'n', 'g', 'x', 0x00, 0x07, 0x08})

	v1 := ReadChained[uint8](cr, "first")
	lang := cr.Latin1(3, "language")
	desc := cr.Terminated(ISO88591, "description")
	rest := cr.Rest()

	if err := cr.Error(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v1 != 0x01 || lang != "eng" || desc != "x" {
		t.Errorf("unexpected values: %02x %q %q", v1, lang, desc)
	}
	if len(rest) != 2 || rest[0] != 0x07 || rest[1] != 0x08 {
		t.Errorf("unexpected rest %v", rest)
	}
}

func TestChainReader_ErrorAccumulation(t *testing.T) {
	cr := NewChainReader([]byte{0x01, 0x02})

	_ = ReadChained[uint8](cr, "first")  // OK
	_ = ReadChained[uint8](cr, "second") // OK
	_ = ReadChained[uint8](cr, "third")  // Error - out of bounds

	if cr.Error() == nil {
		t.Fatal("expected error, got nil")
	}

	// Once error occurs, subsequent reads should not execute
	first := cr.Error()
	_ = ReadChained[uint8](cr, "fourth")
	_ = cr.Bytes(1, "fifth")
	if cr.Error() != first {
		t.Fatal("first error should persist")
	}
}

func TestChainReader_InvalidEncoding(t *testing.T) {
	cr := NewChainReader([]byte{0x03, 'a'})

	_ = cr.Encoding("text encoding")
	if cr.Error() == nil {
		t.Fatal("expected error for encoding 3 in ID3v2.3")
	}
}

func BenchmarkReader_Sequential(b *testing.B) {
	data := make([]byte, 4000)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r := NewReader(data)
		for j := 0; j < 1000; j++ {
			_, _ = ReadValue[uint32](r, "test")
		}
	}
}
