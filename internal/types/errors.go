package types

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidFrameID is wrapped by a FrameDecodeError whose id is not [A-Z0-9]{4}.
	ErrInvalidFrameID = errors.New("invalid frame id")

	// ErrCRCMismatch is wrapped by a StructuralError when the extended header CRC does not match.
	ErrCRCMismatch = errors.New("crc mismatch")

	// ErrUnsupportedVersion is wrapped by a StructuralError for tags other than ID3v2.3.
	ErrUnsupportedVersion = errors.New("unsupported ID3v2 version")

	// ErrNoFrames is returned when writing a tag without frames.
	ErrNoFrames = errors.New("tag has no frames")
)

// StructuralError is returned when the tag header, extended header or
// overall layout is invalid. It always aborts the parse.
type StructuralError struct {
	Field  string
	Reason string
	Offset int
	Err    error
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("id3v2: invalid %s at offset %d: %s", e.Field, e.Offset, e.Reason)
}

func (e *StructuralError) Unwrap() error {
	return e.Err
}

// FrameDecodeError is returned when a single frame cannot be decoded.
type FrameDecodeError struct {
	FrameID string
	Offset  int
	Err     error
}

func (e *FrameDecodeError) Error() string {
	return fmt.Sprintf("id3v2: frame %q at offset %d: %v", e.FrameID, e.Offset, e.Err)
}

func (e *FrameDecodeError) Unwrap() error {
	return e.Err
}

// ConstraintError is returned when storing or mutating a frame would give
// two frames with the same id the same uniqueness key.
type ConstraintError struct {
	FrameID string
	Key     string
	Reason  string
}

func (e *ConstraintError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("id3v2: frame %s key %q: %s", e.FrameID, e.Key, e.Reason)
	}
	return fmt.Sprintf("id3v2: frame %s: %s", e.FrameID, e.Reason)
}

// UnresolvableEncryptionError is returned when an encrypted frame has no
// ENCR descriptor for its method symbol or no agent for the descriptor's owner.
type UnresolvableEncryptionError struct {
	FrameID string
	Symbol  byte
	Owner   string
}

func (e *UnresolvableEncryptionError) Error() string {
	if e.Owner == "" {
		return fmt.Sprintf("id3v2: frame %s: no ENCR frame for method symbol 0x%02x", e.FrameID, e.Symbol)
	}
	return fmt.Sprintf("id3v2: frame %s: no crypto agent for owner %q (method symbol 0x%02x)", e.FrameID, e.Owner, e.Symbol)
}

// Warning represents a non-fatal issue encountered during parsing.
//
// Warnings indicate problems that don't prevent the tag from being read
// but may indicate corrupted or unusual data. Examples include:
//   - A frame with an invalid id skipped in lenient mode
//   - A duplicate keyed frame replaced in lenient mode
//   - A frame left encrypted because no agent was available
type Warning struct {
	// Stage where the warning occurred
	Stage string // "header", "frames", "encryption"

	// Warning message
	Message string

	// Offset into the tag where the issue occurred (0 if not applicable)
	Offset int
}

// String returns a human-readable warning message.
func (w Warning) String() string {
	if w.Offset > 0 {
		return fmt.Sprintf("%s (at offset %d): %s", w.Stage, w.Offset, w.Message)
	}
	return fmt.Sprintf("%s: %s", w.Stage, w.Message)
}
