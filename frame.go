package id3v23

import "fmt"

// Frame flag bits, ID3v2.3 §3.3.1.
const (
	flagTagAlterPreservation  byte = 0x80
	flagFileAlterPreservation byte = 0x40
	flagReadOnly              byte = 0x20
	knownStatusBits           byte = 0xE0

	flagCompression      byte = 0x80
	flagEncryption       byte = 0x40
	flagGroupingIdentity byte = 0x20
	knownFormatBits      byte = 0xE0
)

// Frame is one addressable unit of metadata inside a tag.
//
// The concrete type is one of the payload types in this package
// (*TextFrame, *CommentFrame, ...), *UnknownFrame for ids without a
// registered decoder, or *EncryptedFrame for frames that could not be
// decrypted.
type Frame interface {
	// ID returns the 4-character frame id.
	ID() string

	// Flags returns the frame header flags.
	Flags() FrameFlags

	base() *FrameHeader
}

// FrameFlags holds the two frame header flag bytes.
type FrameFlags struct {
	TagAlterPreservation  bool
	FileAlterPreservation bool
	ReadOnly              bool
	Compression           bool
	Encryption            bool
	GroupingIdentity      bool

	// UnknownStatus and UnknownFormat hold the low bits of each flag byte
	// that ID3v2.3 leaves undefined. They are preserved on write.
	UnknownStatus byte
	UnknownFormat byte
}

func parseFrameFlags(status, format byte) FrameFlags {
	return FrameFlags{
		TagAlterPreservation:  status&flagTagAlterPreservation != 0,
		FileAlterPreservation: status&flagFileAlterPreservation != 0,
		ReadOnly:              status&flagReadOnly != 0,
		Compression:           format&flagCompression != 0,
		Encryption:            format&flagEncryption != 0,
		GroupingIdentity:      format&flagGroupingIdentity != 0,
		UnknownStatus:         status &^ knownStatusBits,
		UnknownFormat:         format &^ knownFormatBits,
	}
}

func (f FrameFlags) bytes() (status, format byte) {
	status = f.UnknownStatus &^ knownStatusBits
	format = f.UnknownFormat &^ knownFormatBits
	if f.TagAlterPreservation {
		status |= flagTagAlterPreservation
	}
	if f.FileAlterPreservation {
		status |= flagFileAlterPreservation
	}
	if f.ReadOnly {
		status |= flagReadOnly
	}
	if f.Compression {
		format |= flagCompression
	}
	if f.Encryption {
		format |= flagEncryption
	}
	if f.GroupingIdentity {
		format |= flagGroupingIdentity
	}
	return status, format
}

// HasUnknown reports whether any undefined flag bit is set.
func (f FrameFlags) HasUnknown() bool {
	return f.UnknownStatus != 0 || f.UnknownFormat != 0
}

// FrameHeader carries the fields common to every frame: id, flags,
// encryption method symbol, group symbol and the owning tag.
// It is embedded in every frame type.
type FrameHeader struct {
	id     string
	flags  FrameFlags
	method byte
	group  byte
	tag    *Tag
}

func newHeader(id string) FrameHeader {
	return FrameHeader{id: id}
}

func (h *FrameHeader) base() *FrameHeader { return h }

// ID returns the 4-character frame id.
func (h *FrameHeader) ID() string { return h.id }

// Flags returns the frame header flags.
func (h *FrameHeader) Flags() FrameFlags { return h.flags }

// Tag returns the tag the frame is stored in, or nil.
func (h *FrameHeader) Tag() *Tag { return h.tag }

// EncryptionMethod returns the encryption method symbol and whether
// the encryption flag is set.
func (h *FrameHeader) EncryptionMethod() (byte, bool) {
	return h.method, h.flags.Encryption
}

// Group returns the group symbol and whether the grouping flag is set.
func (h *FrameHeader) Group() (byte, bool) {
	return h.group, h.flags.GroupingIdentity
}

// SetPreservation sets the tag and file alter preservation flags.
func (h *FrameHeader) SetPreservation(discardOnTagAlter, discardOnFileAlter bool) {
	h.flags.TagAlterPreservation = discardOnTagAlter
	h.flags.FileAlterPreservation = discardOnFileAlter
}

// SetReadOnly sets the read-only flag.
func (h *FrameHeader) SetReadOnly(readOnly bool) {
	h.flags.ReadOnly = readOnly
}

// SetCompression enables or disables zlib compression of the frame body.
func (h *FrameHeader) SetCompression(compress bool) {
	h.flags.Compression = compress
}

// SetEncryption marks the frame as encrypted with the method symbol of an
// ENCR frame. When the frame is stored in a strict tag the symbol must
// already be registered by an ENCR frame.
func (h *FrameHeader) SetEncryption(symbol byte) error {
	if h.tag != nil && h.tag.cfg.Strict && h.tag.encryptionMethod(symbol) == nil {
		return &ConstraintError{
			FrameID: h.id,
			Key:     fmt.Sprintf("0x%02x", symbol),
			Reason:  "no ENCR frame registers this method symbol",
		}
	}
	h.flags.Encryption = true
	h.method = symbol
	return nil
}

// ClearEncryption removes the encryption flag.
func (h *FrameHeader) ClearEncryption() {
	h.flags.Encryption = false
	h.method = 0
}

// SetGroup sets the grouping identity flag and group symbol.
func (h *FrameHeader) SetGroup(symbol byte) {
	h.flags.GroupingIdentity = true
	h.group = symbol
}

// ClearGroup removes the grouping identity flag.
func (h *FrameHeader) ClearGroup() {
	h.flags.GroupingIdentity = false
	h.group = 0
}

// validFrameID reports whether id matches [A-Z0-9]{4}.
func validFrameID(id string) bool {
	if len(id) != 4 {
		return false
	}
	for i := 0; i < len(id); i++ {
		c := id[i]
		if (c < 'A' || c > 'Z') && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}

// commit applies a mutation that may change f's uniqueness key.
// If f is stored, the tag validates newKey before apply runs.
func commit(f Frame, newKey string, apply func()) error {
	t := f.base().tag
	if t == nil {
		apply()
		return nil
	}
	return t.rekey(f, newKey, apply)
}
