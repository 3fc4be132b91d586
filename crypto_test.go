package id3v23

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// encryptedBeforeENCR builds a tag whose encrypted TIT2 frame precedes
// the ENCR frame describing it.
func encryptedBeforeENCR(t *testing.T) (data, encrypted []byte) {
	t.Helper()
	aux := []byte{0x11}
	payload, err := xorAgent{key: 0x5A}.Encrypt(textBody("Secret"), aux)
	require.NoError(t, err)

	encrypted = rawFrame("TIT2", 0, flagEncryption, append([]byte{0x80}, payload...))
	data = rawTag(0,
		encrypted,
		rawFrame("TPE1", 0, 0, textBody("Artist")),
		rawFrame("ENCR", 0, 0, encrBody("mailto:keys@example.com", 0x80, aux)),
		zeros(16),
	)
	return data, encrypted
}

func TestDeferredDecryption(t *testing.T) {
	agents := agentMap{"mailto:keys@example.com": xorAgent{key: 0x5A}}

	t.Run("with agent", func(t *testing.T) {
		data, _ := encryptedBeforeENCR(t)
		tag := mustRead(t, data, WithAgents(agents), WithStrict())

		assert.Equal(t, "Secret", tag.Text("TIT2"))
		assert.Equal(t, "Artist", tag.Text("TPE1"))
		assert.Empty(t, tag.Encrypted())
		assert.Empty(t, tag.Warnings)

		binding, err := tag.Binding(tag.Frame("TIT2"))
		require.NoError(t, err)
		assert.Equal(t, "mailto:keys@example.com", binding.Owner)
		assert.Equal(t, []byte{0x11}, binding.Data)

		// Written back encrypted and readable again.
		b := mustBytes(t, tag)
		assert.False(t, bytes.Contains(b, []byte("Secret")))
		assert.Equal(t, "Secret", mustRead(t, b, WithAgents(agents)).Text("TIT2"))
	})

	t.Run("without agent", func(t *testing.T) {
		data, encrypted := encryptedBeforeENCR(t)
		tag := mustRead(t, data)

		assert.Nil(t, tag.Frame("TIT2"))
		assert.Equal(t, "Artist", tag.Text("TPE1"))
		require.Len(t, tag.Encrypted(), 1)
		ef := tag.Encrypted()[0]
		assert.Equal(t, "TIT2", ef.ID())
		assert.Equal(t, byte(0x80), ef.Symbol())
		assert.Equal(t, encrypted, ef.Bytes())
		require.Len(t, tag.Warnings, 1)
		assert.Equal(t, "encryption", tag.Warnings[0].Stage)

		// Kept byte for byte and written after every other frame.
		b := mustBytes(t, tag)
		frames := b[tagHeaderSize : len(b)-tag.Padding()]
		assert.True(t, bytes.HasSuffix(frames, encrypted))

		// Registering an agent later resolves it.
		tag.SetAgents(agents)
		n, err := tag.ResolveEncrypted()
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		assert.Empty(t, tag.Encrypted())
		assert.Equal(t, "Secret", tag.Text("TIT2"))
	})

	t.Run("retry without agent does not warn again", func(t *testing.T) {
		data, _ := encryptedBeforeENCR(t)
		tag := mustRead(t, data)
		require.Len(t, tag.Warnings, 1)

		for range 3 {
			n, err := tag.ResolveEncrypted()
			require.NoError(t, err)
			assert.Zero(t, n)
		}
		assert.Len(t, tag.Encrypted(), 1)
		assert.Len(t, tag.Warnings, 1)
	})

	t.Run("agent refuses", func(t *testing.T) {
		data, _ := encryptedBeforeENCR(t)
		tag := mustRead(t, data, WithAgents(agentMap{"mailto:keys@example.com": failingAgent{}}))
		assert.Len(t, tag.Encrypted(), 1)
	})

	t.Run("ENCR never appears", func(t *testing.T) {
		_, encrypted := encryptedBeforeENCR(t)
		tag := mustRead(t, rawTag(0, encrypted), WithAgents(agents))
		assert.Len(t, tag.Encrypted(), 1)
		assert.Zero(t, tag.Padding())
		assert.Equal(t, rawTag(0, encrypted), mustBytes(t, tag))
	})
}

func TestEncryptedFrame_Remove(t *testing.T) {
	data, _ := encryptedBeforeENCR(t)
	tag := mustRead(t, data)
	ef := tag.Encrypted()[0]

	ok, err := tag.Remove(ef)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, tag.Encrypted())
	assert.Nil(t, ef.Tag())
}

func TestEncryption_WriteRequiresAgent(t *testing.T) {
	tag := New()
	require.NoError(t, tag.Add(NewEncryptionMethodFrame("owner", 0x80, nil)))
	f := NewTextFrame("TIT2", "x")
	require.NoError(t, tag.Add(f))
	require.NoError(t, f.SetEncryption(0x80))

	_, err := tag.Bytes()
	var ue *UnresolvableEncryptionError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, "owner", ue.Owner)

	tag.SetAgents(agentMap{"owner": xorAgent{key: 1}})
	b := mustBytes(t, tag)

	got := mustRead(t, b, WithAgents(agentMap{"owner": xorAgent{key: 1}}))
	assert.Equal(t, "x", got.Text("TIT2"))
	symbol, ok := got.Frame("TIT2").base().EncryptionMethod()
	assert.True(t, ok)
	assert.Equal(t, byte(0x80), symbol)
}

func TestEncryption_WithCompression(t *testing.T) {
	agents := agentMap{"owner": xorAgent{key: 0x77}}
	tag := New(WithAgents(agents))
	require.NoError(t, tag.Add(NewEncryptionMethodFrame("owner", 0x80, []byte{3})))

	text := string(bytes.Repeat([]byte("compress me "), 20))
	f := NewTextFrame("TIT2", text)
	require.NoError(t, tag.Add(f))
	f.SetCompression(true)
	require.NoError(t, f.SetEncryption(0x80))
	b := mustBytes(t, tag)

	// Encrypted frames keep their decompressed size when left unresolved.
	opaque := mustRead(t, b)
	require.Len(t, opaque.Encrypted(), 1)
	ef := opaque.Encrypted()[0]
	plain, err := encodeBody(f)
	require.NoError(t, err)
	assert.Equal(t, uint32(len(plain)), ef.DecompressedSize)
	assert.Len(t, mustBytes(t, opaque), len(b))

	got := mustRead(t, b, WithAgents(agents))
	assert.Equal(t, text, got.Text("TIT2"))
	assert.True(t, got.Frame("TIT2").Flags().Compression)
}

func TestBinding_NotEncrypted(t *testing.T) {
	var ce *ConstraintError
	_, err := New().Binding(NewTextFrame("TIT2", "x"))
	assert.ErrorAs(t, err, &ce)
}
