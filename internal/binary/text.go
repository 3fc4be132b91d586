package binary

import (
	"bytes"
	"fmt"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// Encoding is an ID3v2.3 text encoding byte.
type Encoding byte

const (
	// ISO88591 is ISO-8859-1, terminated by a single zero byte.
	ISO88591 Encoding = 0

	// UTF16 is UTF-16 with a byte order mark, terminated by two zero bytes.
	UTF16 Encoding = 1
)

// Valid reports whether e is defined for ID3v2.3.
func (e Encoding) Valid() bool {
	return e == ISO88591 || e == UTF16
}

// TerminatorSize returns the size of the null terminator for the encoding.
func (e Encoding) TerminatorSize() int {
	if e == UTF16 {
		return 2
	}
	return 1
}

func (e Encoding) String() string {
	switch e {
	case ISO88591:
		return "ISO-8859-1"
	case UTF16:
		return "UTF-16"
	default:
		return fmt.Sprintf("Encoding(%d)", byte(e))
	}
}

func (e Encoding) codec() encoding.Encoding {
	if e == UTF16 {
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)
	}
	return charmap.ISO8859_1
}

// DecodeText decodes b, dropping any trailing terminators.
func DecodeText(b []byte, enc Encoding) (string, error) {
	if !enc.Valid() {
		return "", fmt.Errorf("invalid text encoding %d", enc)
	}
	b = trimTerminators(b, enc)
	if len(b) == 0 {
		return "", nil
	}
	out, err := enc.codec().NewDecoder().Bytes(b)
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", enc, err)
	}
	return string(out), nil
}

// EncodeText encodes s without a terminator.
func EncodeText(s string, enc Encoding) ([]byte, error) {
	if !enc.Valid() {
		return nil, fmt.Errorf("invalid text encoding %d", enc)
	}
	out, err := enc.codec().NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, fmt.Errorf("encode %q as %s: %w", s, enc, err)
	}
	return out, nil
}

// EncodeTerminated encodes s followed by the encoding's terminator.
func EncodeTerminated(s string, enc Encoding) ([]byte, error) {
	out, err := EncodeText(s, enc)
	if err != nil {
		return nil, err
	}
	return append(out, make([]byte, enc.TerminatorSize())...), nil
}

// SplitTerminated splits b at the first terminator for enc.
// For UTF-16 only terminators on an even offset count.
func SplitTerminated(b []byte, enc Encoding) (field, rest []byte, ok bool) {
	if enc != UTF16 {
		i := bytes.IndexByte(b, 0)
		if i < 0 {
			return nil, nil, false
		}
		return b[:i], b[i+1:], true
	}

	for i := 0; i+1 < len(b); i += 2 {
		if b[i] == 0 && b[i+1] == 0 {
			return b[:i], b[i+2:], true
		}
	}
	return nil, nil, false
}

func trimTerminators(b []byte, enc Encoding) []byte {
	if enc != UTF16 {
		return bytes.TrimRight(b, "\x00")
	}
	if len(b)%2 != 0 {
		b = b[:len(b)-1]
	}
	for len(b) >= 2 && b[len(b)-2] == 0 && b[len(b)-1] == 0 {
		b = b[:len(b)-2]
	}
	return b
}
