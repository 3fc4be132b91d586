package binary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestText_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		text string
		enc  Encoding
	}{
		{"latin1 ascii", "Hello", ISO88591},
		{"latin1 accents", "Café Olé", ISO88591},
		{"utf16 ascii", "Hello", UTF16},
		{"utf16 cjk", "東京", UTF16},
		{"utf16 emoji", "🎵 track", UTF16},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := EncodeText(tt.text, tt.enc)
			require.NoError(t, err)

			got, err := DecodeText(b, tt.enc)
			require.NoError(t, err)
			assert.Equal(t, tt.text, got)

			terminated, err := EncodeTerminated(tt.text, tt.enc)
			require.NoError(t, err)
			assert.Len(t, terminated, len(b)+tt.enc.TerminatorSize())

			field, rest, ok := SplitTerminated(append(terminated, 'z'), tt.enc)
			require.True(t, ok)
			assert.Equal(t, b, field)
			assert.Equal(t, []byte{'z'}, rest)
		})
	}
}

func TestText_Latin1Bytes(t *testing.T) {
	b, err := EncodeText("é", ISO88591)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xE9}, b)

	_, err = EncodeText("東", ISO88591)
	assert.Error(t, err)
}

func TestText_UTF16BOM(t *testing.T) {
	b, err := EncodeText("A", UTF16)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xFF, 0xFE, 'A', 0x00}, b)

	got, err := DecodeText([]byte{0xFE, 0xFF, 0x00, 'A'}, UTF16)
	require.NoError(t, err)
	assert.Equal(t, "A", got)
}

func TestText_TrailingTerminators(t *testing.T) {
	got, err := DecodeText([]byte{'a', 'b', 0x00, 0x00}, ISO88591)
	require.NoError(t, err)
	assert.Equal(t, "ab", got)

	got, err = DecodeText([]byte{0xFF, 0xFE, 'a', 0x00, 0x00, 0x00}, UTF16)
	require.NoError(t, err)
	assert.Equal(t, "a", got)
}

func TestSplitTerminated_UTF16Alignment(t *testing.T) {
	// 'A' 0x00 0x00 'B' holds a zero pair on an odd offset, which is not a terminator.
	data := []byte{0x41, 0x00, 0x00, 0x42, 0x00, 0x00, 0x01}
	field, rest, ok := SplitTerminated(data, UTF16)
	require.True(t, ok)
	assert.Equal(t, []byte{0x41, 0x00, 0x00, 0x42}, field)
	assert.Equal(t, []byte{0x01}, rest)

	_, _, ok = SplitTerminated([]byte{0x41, 0x00}, ISO88591)
	assert.True(t, ok)
	_, _, ok = SplitTerminated([]byte{0x41, 0x42}, UTF16)
	assert.False(t, ok)
}

func TestEncoding_Valid(t *testing.T) {
	assert.True(t, ISO88591.Valid())
	assert.True(t, UTF16.Valid())
	assert.False(t, Encoding(3).Valid())
	assert.Equal(t, "Encoding(3)", Encoding(3).String())
}
