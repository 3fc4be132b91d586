package id3v23

import (
	"encoding/binary"
	"fmt"

	binutil "github.com/simonhull/id3v23/internal/binary"
)

const (
	tagHeaderSize = 10
	tagMagic      = "ID3"

	// Tag header flag bits, ID3v2.3 §3.1.
	flagUnsynchronization byte = 0x80
	flagExtendedHeader    byte = 0x40
	flagExperimental      byte = 0x20
	knownTagFlags         byte = 0xE0

	// Extended header flag bits, ID3v2.3 §3.2.
	flagCRCPresent  uint16 = 0x8000
	extSizeNoCRC           = 6
	extSizeWithCRC         = 10
)

// TagHeader is the 10-byte ID3v2 tag header.
type TagHeader struct {
	Version  byte // Major version (always 3)
	Revision byte

	Unsynchronization bool
	Extended          bool
	Experimental      bool

	// Size covers the extended header, frames and padding, as stored.
	Size uint32
}

// ExtendedHeader is the optional ID3v2.3 extended header.
type ExtendedHeader struct {
	// CRCPresent reports whether a CRC32 of the frame data follows.
	CRCPresent bool

	// PaddingSize is the declared padding length.
	PaddingSize uint32

	// CRC is the CRC32 of the frame data (valid if CRCPresent).
	CRC uint32
}

// Len returns the encoded length of the extended header in bytes.
func (e ExtendedHeader) Len() int {
	if e.CRCPresent {
		return 4 + extSizeWithCRC
	}
	return 4 + extSizeNoCRC
}

// readTagHeader parses the base tag header and checks that the tag fits in
// the remaining buffer.
func readTagHeader(r *binutil.Reader) (TagHeader, error) {
	buf, err := r.ReadBytes(tagHeaderSize, "tag header")
	if err != nil {
		return TagHeader{}, &StructuralError{Field: "header", Reason: "truncated tag header", Err: err}
	}

	if string(buf[0:3]) != tagMagic {
		return TagHeader{}, &StructuralError{Field: "header", Reason: "missing ID3 identifier"}
	}

	h := TagHeader{
		Version:  buf[3],
		Revision: buf[4],
	}
	if h.Version != 3 {
		return TagHeader{}, &StructuralError{
			Field:  "version",
			Offset: 3,
			Reason: fmt.Sprintf("ID3v2.%d.%d", h.Version, h.Revision),
			Err:    ErrUnsupportedVersion,
		}
	}

	flags := buf[5]
	if flags&^knownTagFlags != 0 {
		return TagHeader{}, &StructuralError{
			Field:  "header flags",
			Offset: 5,
			Reason: fmt.Sprintf("undefined flag bits %#02x", flags&^knownTagFlags),
		}
	}
	h.Unsynchronization = flags&flagUnsynchronization != 0
	h.Extended = flags&flagExtendedHeader != 0
	h.Experimental = flags&flagExperimental != 0

	if !binutil.ValidSynchsafe(buf[6:10]) {
		return TagHeader{}, &StructuralError{Field: "tag size", Offset: 6, Reason: "not a synchsafe integer"}
	}
	h.Size = binutil.DecodeSynchsafe(buf[6:10])
	if int(h.Size) > r.Len() {
		return TagHeader{}, &StructuralError{
			Field:  "tag size",
			Offset: 6,
			Reason: fmt.Sprintf("declared %d bytes, %d available", h.Size, r.Len()),
		}
	}
	return h, nil
}

func (h TagHeader) flags() byte {
	var f byte
	if h.Unsynchronization {
		f |= flagUnsynchronization
	}
	if h.Extended {
		f |= flagExtendedHeader
	}
	if h.Experimental {
		f |= flagExperimental
	}
	return f
}

// readExtendedHeader parses the extended header at the start of the
// de-unsynchronized tag body. base is the offset of r within the tag.
func readExtendedHeader(r *binutil.Reader, base int) (ExtendedHeader, error) {
	fail := func(reason string, err error) error {
		return &StructuralError{Field: "extended header", Offset: base + r.Offset(), Reason: reason, Err: err}
	}

	size, err := binutil.ReadValue[uint32](r, "extended header size")
	if err != nil {
		return ExtendedHeader{}, fail("truncated", err)
	}
	flags, err := binutil.ReadValue[uint16](r, "extended header flags")
	if err != nil {
		return ExtendedHeader{}, fail("truncated", err)
	}
	if flags&^flagCRCPresent != 0 {
		return ExtendedHeader{}, fail(fmt.Sprintf("undefined flag bits %#04x", flags&^flagCRCPresent), nil)
	}

	e := ExtendedHeader{CRCPresent: flags&flagCRCPresent != 0}
	want := uint32(extSizeNoCRC)
	if e.CRCPresent {
		want = extSizeWithCRC
	}
	if size != want {
		return ExtendedHeader{}, fail(fmt.Sprintf("size is %d, expected %d", size, want), nil)
	}

	if e.PaddingSize, err = binutil.ReadValue[uint32](r, "padding size"); err != nil {
		return ExtendedHeader{}, fail("truncated", err)
	}
	if e.CRCPresent {
		if e.CRC, err = binutil.ReadValue[uint32](r, "frame CRC"); err != nil {
			return ExtendedHeader{}, fail("truncated", err)
		}
	}
	return e, nil
}

func (e ExtendedHeader) bytes() []byte {
	size, flags := uint32(extSizeNoCRC), uint16(0)
	if e.CRCPresent {
		size, flags = extSizeWithCRC, flagCRCPresent
	}
	b := make([]byte, 0, e.Len())
	b = binary.BigEndian.AppendUint32(b, size)
	b = binary.BigEndian.AppendUint16(b, flags)
	b = binary.BigEndian.AppendUint32(b, e.PaddingSize)
	if e.CRCPresent {
		b = binary.BigEndian.AppendUint32(b, e.CRC)
	}
	return b
}
