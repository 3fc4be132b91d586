package id3v23

// UnknownFrame holds a frame whose id has no registered decoder.
// Data is the plain body (after decryption and decompression).
type UnknownFrame struct {
	FrameHeader
	Data []byte
}

// NewUnknownFrame creates an opaque frame for id.
func NewUnknownFrame(id string, data []byte) *UnknownFrame {
	return &UnknownFrame{FrameHeader: newHeader(id), Data: data}
}

// EncryptedFrame holds a frame that could not be decrypted, either because
// no ENCR frame registers its method symbol or because no crypto agent is
// available for the ENCR owner. It is written back byte for byte.
type EncryptedFrame struct {
	FrameHeader

	// DecompressedSize is the plain body size when the frame is also compressed.
	DecompressedSize uint32

	// Payload is the encrypted (and possibly compressed) body.
	Payload []byte
}

// Symbol returns the encryption method symbol.
func (f *EncryptedFrame) Symbol() byte { return f.method }

// Bytes returns the frame exactly as it appeared in the tag.
func (f *EncryptedFrame) Bytes() []byte {
	return appendFrame(nil, &f.FrameHeader, f.DecompressedSize, f.Payload)
}
