package id3v23

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	binutil "github.com/simonhull/id3v23/internal/binary"
)

const (
	frameHeaderSize = 10

	// mp3extArtifact is written into the padding by the MP3ext shell
	// extension. It marks the start of padding, not a frame.
	mp3extArtifact = "MP3e"
)

var (
	// errPaddingReached signals that the frame stream has ended.
	errPaddingReached = errors.New("padding reached")

	errUnknownFrameFlags = errors.New("undefined frame flag bits set")
)

// frameReader decodes frames from a tag's frame region.
type frameReader struct {
	cfg     *Config
	methods []*EncryptionMethodFrame
	base    int
}

// read decodes the next frame from r.
//
// It returns errPaddingReached at the start of padding and an
// *EncryptedFrame when the frame cannot be decrypted yet. A frame with an
// invalid id is consumed, up to the end of r, before the error is
// returned, so the caller may skip it.
func (fr *frameReader) read(r *binutil.Reader) (Frame, error) {
	start := r.Offset()
	idb, err := r.ReadBytes(4, "frame id")
	if err != nil {
		return nil, errPaddingReached
	}
	if idb[0] == 0 || string(idb) == mp3extArtifact {
		return nil, errPaddingReached
	}
	id := string(idb)

	fail := func(err error) error {
		return &FrameDecodeError{FrameID: id, Offset: fr.base + start, Err: err}
	}

	if !validFrameID(id) {
		// Consume the declared frame, bounded by what is left, so a lenient
		// caller can continue after it.
		if hdr, err := r.ReadBytes(min(6, r.Len()), "frame header"); err == nil && len(hdr) == 6 {
			_ = r.Skip(min(int(binary.BigEndian.Uint32(hdr)), r.Len()), "frame "+id)
		}
		return nil, fail(ErrInvalidFrameID)
	}

	size, err := binutil.ReadValue[uint32](r, "frame size")
	if err != nil {
		return nil, fail(err)
	}
	flagBytes, err := r.ReadBytes(2, "frame flags")
	if err != nil {
		return nil, fail(err)
	}
	flags := parseFrameFlags(flagBytes[0], flagBytes[1])

	body, err := r.ReadBytes(int(size), "frame "+id)
	if err != nil {
		return nil, fail(err)
	}
	if fr.cfg.Strict && fr.cfg.RejectUnknownFrameFlags && flags.HasUnknown() {
		return nil, fail(fmt.Errorf("%w: %02x %02x", errUnknownFrameFlags, flags.UnknownStatus, flags.UnknownFormat))
	}

	h := FrameHeader{id: id, flags: flags}
	br := binutil.NewReader(body)
	var plainSize uint32
	if flags.Compression {
		if plainSize, err = binutil.ReadValue[uint32](br, "decompressed size"); err != nil {
			return nil, fail(err)
		}
	}
	if flags.Encryption {
		if h.method, err = binutil.ReadValue[uint8](br, "encryption method"); err != nil {
			return nil, fail(err)
		}
	}
	if flags.GroupingIdentity {
		if h.group, err = binutil.ReadValue[uint8](br, "group symbol"); err != nil {
			return nil, fail(err)
		}
	}
	raw := br.Rest()
	payload := raw

	if flags.Encryption {
		binding, err := resolveBinding(id, h.method, fr.methods, fr.cfg.Agents)
		if err == nil {
			payload, err = binding.Agent.Decrypt(payload, binding.Data)
		}
		if err != nil {
			fr.cfg.Logger.WithFields(logrus.Fields{
				"frame_id": id,
				"symbol":   h.method,
				"offset":   fr.base + start,
			}).WithError(err).Debug("frame left encrypted")
			return &EncryptedFrame{
				FrameHeader:      h,
				DecompressedSize: plainSize,
				Payload:          append([]byte(nil), raw...),
			}, nil
		}
	}

	if flags.Compression {
		if payload, err = inflate(payload, plainSize); err != nil {
			return nil, fail(err)
		}
	}

	f, err := decodeBody(id, payload)
	if err != nil {
		return nil, fail(err)
	}
	fh := f.base()
	fh.flags = h.flags
	fh.method = h.method
	fh.group = h.group
	return f, nil
}

// writeFrame serializes f, compressing and encrypting its body as the
// header flags require. Encrypted frames need a resolvable binding in t.
func writeFrame(f Frame, t *Tag) ([]byte, error) {
	if ef, ok := f.(*EncryptedFrame); ok {
		return ef.Bytes(), nil
	}

	body, err := encodeBody(f)
	if err != nil {
		return nil, err
	}

	h := f.base()
	plainSize := uint32(len(body))
	payload := body
	if h.flags.Compression {
		if payload, err = deflate(body); err != nil {
			return nil, fmt.Errorf("compress frame %s: %w", h.id, err)
		}
	}
	if h.flags.Encryption {
		binding, err := t.Binding(f)
		if err != nil {
			return nil, err
		}
		if payload, err = binding.Agent.Encrypt(payload, binding.Data); err != nil {
			return nil, fmt.Errorf("encrypt frame %s: %w", h.id, err)
		}
	}
	return appendFrame(nil, h, plainSize, payload), nil
}

// appendFrame appends a frame header, the optional fields selected by the
// flags, and payload to dst.
func appendFrame(dst []byte, h *FrameHeader, plainSize uint32, payload []byte) []byte {
	size := len(payload)
	if h.flags.Compression {
		size += 4
	}
	if h.flags.Encryption {
		size++
	}
	if h.flags.GroupingIdentity {
		size++
	}

	status, format := h.flags.bytes()
	dst = append(dst, h.id...)
	dst = binary.BigEndian.AppendUint32(dst, uint32(size))
	dst = append(dst, status, format)
	if h.flags.Compression {
		dst = binary.BigEndian.AppendUint32(dst, plainSize)
	}
	if h.flags.Encryption {
		dst = append(dst, h.method)
	}
	if h.flags.GroupingIdentity {
		dst = append(dst, h.group)
	}
	return append(dst, payload...)
}

func deflate(b []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(b); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func inflate(b []byte, sizeHint uint32) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("decompress: %w", err)
	}
	defer zr.Close()

	out := bytes.NewBuffer(make([]byte, 0, min(int(sizeHint), 16<<20)))
	if _, err := io.Copy(out, zr); err != nil {
		return nil, fmt.Errorf("decompress: %w", err)
	}
	return out.Bytes(), nil
}
