package id3v23

import (
	"github.com/simonhull/id3v23/internal/types"
)

// StructuralError is an alias to types.StructuralError.
// Re-exporting from internal/types to maintain public API.
type StructuralError = types.StructuralError

// FrameDecodeError is an alias to types.FrameDecodeError.
// Re-exporting from internal/types to maintain public API.
type FrameDecodeError = types.FrameDecodeError

// ConstraintError is an alias to types.ConstraintError.
// Re-exporting from internal/types to maintain public API.
type ConstraintError = types.ConstraintError

// UnresolvableEncryptionError is an alias to types.UnresolvableEncryptionError.
// Re-exporting from internal/types to maintain public API.
type UnresolvableEncryptionError = types.UnresolvableEncryptionError

// Warning is an alias to types.Warning.
// Re-exporting from internal/types to maintain public API.
type Warning = types.Warning

var (
	ErrInvalidFrameID     = types.ErrInvalidFrameID
	ErrCRCMismatch        = types.ErrCRCMismatch
	ErrUnsupportedVersion = types.ErrUnsupportedVersion
	ErrNoFrames           = types.ErrNoFrames
)
