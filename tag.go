package id3v23

import (
	"bytes"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
	binutil "github.com/simonhull/id3v23/internal/binary"
	"github.com/simonhull/id3v23/internal/registry"
)

// Tag is an ID3v2.3 tag: header, optional extended header, frames and
// padding.
//
// A Tag owns the frames stored in it. Keyed frame types are indexed by
// their uniqueness key, and key-changing setters on a stored frame are
// validated against that index before they take effect.
//
// A Tag is not safe for concurrent use.
//
// Example:
//
//	tag := id3v23.New()
//	tag.Add(id3v23.NewTextFrame("TIT2", "Song"))
//	tag.Add(id3v23.NewCommentFrame("eng", "", "great track"))
//	b, err := tag.Bytes()
type Tag struct {
	// Warnings encountered during parsing (non-fatal issues)
	Warnings []Warning

	header   TagHeader
	extended *ExtendedHeader
	cfg      Config
	padding  int

	// Internal state (unexported)
	slots     map[string]*slot
	unknown   []Frame
	encrypted []*EncryptedFrame
}

// slot holds the frames stored under one frame id.
type slot struct {
	kind   registry.Slot
	frames []Frame          // insertion order
	keys   map[string]Frame // MultiByKey only
}

// New creates an empty tag.
func New(opts ...Option) *Tag {
	cfg := newConfig(opts)
	t := &Tag{
		header:  TagHeader{Version: 3},
		cfg:     cfg,
		padding: cfg.Padding,
		slots:   make(map[string]*slot),
	}
	if cfg.ExtendedHeader {
		t.extended = &ExtendedHeader{CRCPresent: cfg.CRC}
	}
	return t
}

// Read parses a tag from b, which must start with the tag header.
// Bytes after the end of the tag are ignored.
//
// In lenient mode (the default) frames with invalid ids are skipped and
// duplicate keyed frames replace earlier ones; both add a Warning.
// Encrypted frames that cannot be decrypted are kept verbatim and listed
// by Encrypted.
//
// Example:
//
//	tag, err := id3v23.Read(data, id3v23.WithAgents(dir))
//	if err != nil {
//		return err
//	}
//	fmt.Println(tag.Text("TIT2"))
func Read(b []byte, opts ...Option) (*Tag, error) {
	t := New(opts...)
	t.extended = nil
	if err := t.parse(b); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Tag) parse(b []byte) error {
	r := binutil.NewReader(b)
	h, err := readTagHeader(r)
	if err != nil {
		return err
	}
	t.header = h

	region := b[tagHeaderSize : tagHeaderSize+int(h.Size)]
	if h.Unsynchronization {
		region = binutil.Deunsynchronize(region)
		t.cfg.Unsynchronization = true
	} else {
		region = bytes.Clone(region)
	}

	body := binutil.NewReader(region)
	if h.Extended {
		eh, err := readExtendedHeader(body, tagHeaderSize)
		if err != nil {
			return err
		}
		t.extended = &eh
		t.cfg.ExtendedHeader = true
		t.cfg.CRC = eh.CRCPresent
	}

	framesStart := body.Offset()
	frameData := region[framesStart:]
	if t.extended != nil {
		if int(t.extended.PaddingSize) > len(frameData) {
			return &StructuralError{
				Field:  "extended header",
				Offset: tagHeaderSize,
				Reason: fmt.Sprintf("padding size %d exceeds %d bytes of frame data", t.extended.PaddingSize, len(frameData)),
			}
		}
		if t.extended.CRCPresent {
			sum := crc32.ChecksumIEEE(frameData[:len(frameData)-int(t.extended.PaddingSize)])
			if sum != t.extended.CRC {
				return &StructuralError{
					Field:  "frame CRC",
					Offset: tagHeaderSize,
					Reason: fmt.Sprintf("stored %08x, computed %08x", t.extended.CRC, sum),
					Err:    ErrCRCMismatch,
				}
			}
		}
	}

	deferred, err := t.readFrames(frameData, tagHeaderSize+framesStart)
	if err != nil {
		return err
	}
	_, err = t.resolve(deferred, true)
	return err
}

// readFrames runs the frame stream loop over data and returns the frames
// that could not be decrypted yet.
func (t *Tag) readFrames(data []byte, base int) ([]*EncryptedFrame, error) {
	fr := t.frameReader(base)
	r := binutil.NewReader(data)
	var deferred []*EncryptedFrame

	for {
		start := r.Offset()
		f, err := fr.read(r)
		if errors.Is(err, errPaddingReached) {
			t.padding = len(data) - start
			t.cfg.Logger.WithFields(logrus.Fields{
				"offset":  base + start,
				"padding": t.padding,
			}).Debug("padding reached")
			return deferred, nil
		}
		if err != nil {
			if !t.cfg.Strict && errors.Is(err, ErrInvalidFrameID) {
				t.warn("frames", base+start, err.Error())
				continue
			}
			return nil, err
		}

		if ef, ok := f.(*EncryptedFrame); ok {
			t.cfg.Logger.WithFields(logrus.Fields{
				"frame_id": ef.ID(),
				"symbol":   ef.Symbol(),
				"offset":   base + start,
			}).Debug("frame deferred for decryption")
			deferred = append(deferred, ef)
			continue
		}

		if err := t.insert(f); err != nil {
			return nil, err
		}
		if _, ok := f.(*EncryptionMethodFrame); ok {
			fr.methods = t.encryptionMethods()
		}
		t.cfg.Logger.WithFields(logrus.Fields{
			"frame_id": f.ID(),
			"offset":   base + start,
		}).Debug("frame decoded")
	}
}

func (t *Tag) frameReader(base int) *frameReader {
	return &frameReader{cfg: &t.cfg, methods: t.encryptionMethods(), base: base}
}

// resolve retries decryption of pending frames with the ENCR frames now
// stored. Frames that still cannot be decrypted join the unresolved list,
// with a Warning if warn is set.
// On error the unprocessed frames are returned to the unresolved list.
func (t *Tag) resolve(pending []*EncryptedFrame, warn bool) (int, error) {
	fr := t.frameReader(0)
	resolved := 0
	for i, ef := range pending {
		f, err := fr.read(binutil.NewReader(ef.Bytes()))
		if err == nil {
			if again, ok := f.(*EncryptedFrame); ok {
				t.keepEncrypted(again, warn)
				continue
			}
			err = t.insert(f)
		}
		if err != nil {
			for _, rest := range pending[i:] {
				t.keepEncrypted(rest, false)
			}
			return resolved, err
		}
		resolved++
		if _, ok := f.(*EncryptionMethodFrame); ok {
			fr.methods = t.encryptionMethods()
		}
		t.cfg.Logger.WithFields(logrus.Fields{
			"frame_id": f.ID(),
			"symbol":   ef.Symbol(),
		}).Debug("deferred frame decrypted")
	}
	return resolved, nil
}

func (t *Tag) keepEncrypted(ef *EncryptedFrame, warn bool) {
	ef.tag = t
	t.encrypted = append(t.encrypted, ef)
	if !warn {
		return
	}
	t.warn("encryption", 0, fmt.Sprintf("frame %s left encrypted (method symbol 0x%02x)", ef.ID(), ef.Symbol()))
}

// ResolveEncrypted retries decryption of every unresolved encrypted frame,
// typically after SetAgents. It returns the number of frames decrypted.
// Frames that stay encrypted were already reported in Warnings when the
// tag was read and are not reported again.
func (t *Tag) ResolveEncrypted() (int, error) {
	pending := t.encrypted
	t.encrypted = nil
	for _, ef := range pending {
		ef.tag = nil
	}
	return t.resolve(pending, false)
}

// SetAgents replaces the crypto agent directory.
func (t *Tag) SetAgents(dir AgentDirectory) {
	t.cfg.Agents = dir
}

func (t *Tag) warn(stage string, offset int, msg string) {
	t.Warnings = append(t.Warnings, Warning{Stage: stage, Message: msg, Offset: offset})
	t.cfg.Logger.WithFields(logrus.Fields{
		"stage":  stage,
		"offset": offset,
	}).Warn(msg)
}

// Bytes serializes the tag.
//
// Frames are written in canonical order, followed by unknown frames and
// then unresolved encrypted frames. Unsynchronization is applied only when
// enabled and required by the frame bytes, and the header flag reflects
// whether it was applied.
func (t *Tag) Bytes() ([]byte, error) {
	var frameData []byte
	n := 0
	for f := range t.All() {
		b, err := writeFrame(f, t)
		if err != nil {
			return nil, fmt.Errorf("write frame %s: %w", f.ID(), err)
		}
		frameData = append(frameData, b...)
		n++
	}
	if n == 0 {
		return nil, ErrNoFrames
	}

	h := TagHeader{Version: 3, Experimental: t.header.Experimental}
	body := frameData
	if t.cfg.ExtendedHeader {
		eh := ExtendedHeader{CRCPresent: t.cfg.CRC, PaddingSize: uint32(t.padding)}
		if eh.CRCPresent {
			eh.CRC = crc32.ChecksumIEEE(frameData)
		}
		body = append(eh.bytes(), frameData...)
		h.Extended = true
	}
	if t.cfg.Unsynchronization && binutil.RequiresUnsync(body) {
		body = binutil.Unsynchronize(body)
		h.Unsynchronization = true
	}

	size := len(body) + t.padding
	if size > binutil.MaxSynchsafe {
		return nil, &StructuralError{
			Field:  "tag size",
			Reason: fmt.Sprintf("%d bytes exceeds the synchsafe maximum", size),
		}
	}

	var buf bytes.Buffer
	buf.Grow(tagHeaderSize + size)
	sw := binutil.NewSafeWriter(&buf)
	sw.WriteString(tagMagic)
	binutil.Write(sw, h.Version)
	binutil.Write(sw, h.Revision)
	binutil.Write(sw, h.flags())
	if err := sw.WriteSynchsafe(uint32(size)); err != nil {
		return nil, err
	}
	sw.WriteBytes(body)
	sw.WriteZeros(t.padding)
	return buf.Bytes(), nil
}

// WriteTo writes the serialized tag to w.
func (t *Tag) WriteTo(w io.Writer) (int64, error) {
	b, err := t.Bytes()
	if err != nil {
		return 0, err
	}
	sw := binutil.NewSafeWriter(w)
	err = sw.WriteBytes(b)
	return sw.Offset(), err
}

// Header returns the tag header as read, or the default header of a new tag.
func (t *Tag) Header() TagHeader {
	return t.header
}

// ExtendedHeader returns the extended header as read or as enabled with
// SetExtendedHeader. CRC and PaddingSize hold the values read; Bytes
// computes them afresh.
func (t *Tag) ExtendedHeader() (ExtendedHeader, bool) {
	if t.extended == nil {
		return ExtendedHeader{}, false
	}
	return *t.extended, true
}

// Padding returns the padding length written after the frames.
func (t *Tag) Padding() int {
	return t.padding
}

// SetPadding sets the padding length written after the frames.
// Negative values are treated as zero.
func (t *Tag) SetPadding(n int) {
	t.padding = max(n, 0)
}

// SetUnsynchronization enables or disables unsynchronization on write.
func (t *Tag) SetUnsynchronization(enabled bool) {
	t.cfg.Unsynchronization = enabled
}

// SetExtendedHeader enables or disables the extended header on write,
// optionally with a CRC32 of the frame data.
func (t *Tag) SetExtendedHeader(enabled, crc bool) {
	t.cfg.ExtendedHeader = enabled
	t.cfg.CRC = enabled && crc
	if !enabled {
		t.extended = nil
		return
	}
	if t.extended == nil {
		t.extended = &ExtendedHeader{}
	}
	t.extended.CRCPresent = t.cfg.CRC
}

// SetExperimental sets the experimental indicator of the tag header.
func (t *Tag) SetExperimental(experimental bool) {
	t.header.Experimental = experimental
}

// Strict reports whether the tag enforces strict mode.
func (t *Tag) Strict() bool {
	return t.cfg.Strict
}

// Text returns the text of the text information frame id, or "".
func (t *Tag) Text(id string) string {
	if f, ok := t.Frame(id).(*TextFrame); ok {
		return f.Text
	}
	return ""
}

// SetText sets the text of the text information frame id, adding the
// frame if needed. The encoding is chosen from the text.
func (t *Tag) SetText(id, text string) error {
	if !strings.HasPrefix(id, "T") || id == "TXXX" {
		return &ConstraintError{FrameID: id, Reason: "not a text information frame id"}
	}
	if f, ok := t.Frame(id).(*TextFrame); ok {
		f.Text = text
		f.Encoding = encodingFor(text)
		return nil
	}
	return t.Add(NewTextFrame(id, text))
}
