package id3v23

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdd_DuplicateKey(t *testing.T) {
	t.Run("strict rejects", func(t *testing.T) {
		tag := New(WithStrict())
		first := NewCommentFrame("eng", "", "first")
		require.NoError(t, tag.Add(first))

		err := tag.Add(NewCommentFrame("eng", "", "second"))
		var ce *ConstraintError
		require.ErrorAs(t, err, &ce)
		assert.Equal(t, "COMM", ce.FrameID)

		require.Len(t, tag.Frames("COMM"), 1)
		assert.Same(t, first, tag.Frame("COMM"))
		assert.Same(t, tag, first.Tag())
	})

	t.Run("lenient replaces", func(t *testing.T) {
		tag := New()
		first := NewCommentFrame("eng", "", "first")
		second := NewCommentFrame("eng", "", "second")
		require.NoError(t, tag.Add(first))
		require.NoError(t, tag.Add(second))

		require.Len(t, tag.Frames("COMM"), 1)
		assert.Same(t, second, tag.Frame("COMM"))
		assert.Nil(t, first.Tag())
		assert.Len(t, tag.Warnings, 1)
	})

	t.Run("different keys coexist", func(t *testing.T) {
		tag := New(WithStrict())
		require.NoError(t, tag.Add(NewCommentFrame("eng", "", "a")))
		require.NoError(t, tag.Add(NewCommentFrame("deu", "", "b")))
		require.NoError(t, tag.Add(NewCommentFrame("eng", "x", "c")))
		assert.Len(t, tag.Frames("COMM"), 3)
	})
}

func TestAdd_SingleReplaces(t *testing.T) {
	tag := New(WithStrict())
	first := NewTextFrame("TIT2", "one")
	second := NewTextFrame("TIT2", "two")
	require.NoError(t, tag.Add(first))
	require.NoError(t, tag.Add(second))

	assert.Equal(t, []Frame{second}, tag.Frames("TIT2"))
	assert.Nil(t, first.Tag())
	assert.Empty(t, tag.Warnings)
}

func TestAdd_Rejects(t *testing.T) {
	tag := New()
	other := New()
	stored := NewTextFrame("TIT2", "x")
	require.NoError(t, other.Add(stored))

	tests := []struct {
		name  string
		frame Frame
	}{
		{"nil", nil},
		{"stored elsewhere", stored},
		{"invalid id", NewTextFrame("tit2", "x")},
		{"type does not match id", NewTextFrame("COMM", "x")},
		{"unregistered id for typed frame", NewTextFrame("XYZ1", "x")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ce *ConstraintError
			assert.ErrorAs(t, tag.Add(tt.frame), &ce)
		})
	}

	t.Run("already stored", func(t *testing.T) {
		var ce *ConstraintError
		assert.ErrorAs(t, other.Add(stored), &ce)
		assert.Len(t, other.Frames("TIT2"), 1)
	})
}

func TestRekey(t *testing.T) {
	tag := New()
	a := NewCommentFrame("eng", "a", "first")
	b := NewCommentFrame("eng", "b", "second")
	require.NoError(t, tag.Add(a))
	require.NoError(t, tag.Add(b))

	keyOf := func(desc string) string {
		k, _ := FrameKey(NewCommentFrame("eng", desc, ""))
		return k
	}

	// Collision leaves both frame and index unchanged.
	err := b.SetDescription("a")
	var ce *ConstraintError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "b", b.Description())
	assert.Same(t, a, tag.Lookup("COMM", keyOf("a")))
	assert.Same(t, b, tag.Lookup("COMM", keyOf("b")))

	require.NoError(t, b.SetDescription("c"))
	assert.Equal(t, "c", b.Description())
	assert.Nil(t, tag.Lookup("COMM", keyOf("b")))
	assert.Same(t, b, tag.Lookup("COMM", keyOf("c")))

	// Changing the language changes the key too.
	require.NoError(t, a.SetLanguage("deu"))
	k, _ := FrameKey(a)
	assert.Same(t, a, tag.Lookup("COMM", k))

	// Setting the same key again is a no-op.
	require.NoError(t, b.SetDescription("c"))
}

func TestRekey_KeyedTypes(t *testing.T) {
	tag := New(WithStrict())
	require.NoError(t, tag.Add(NewUserTextFrame("one", "1")))
	txxx := NewUserTextFrame("two", "2")
	require.NoError(t, tag.Add(txxx))
	assert.Error(t, txxx.SetDescription("one"))

	require.NoError(t, tag.Add(NewURLFrame("WCOM", "http://a")))
	wcom := NewURLFrame("WCOM", "http://b")
	require.NoError(t, tag.Add(wcom))
	assert.Error(t, wcom.SetURL("http://a"))
	assert.Equal(t, "http://b", wcom.URL())

	// Single-slot URL frames have no key.
	woaf := NewURLFrame("WOAF", "http://x")
	require.NoError(t, tag.Add(woaf))
	require.NoError(t, woaf.SetURL("http://y"))

	require.NoError(t, tag.Add(NewPopularimeterFrame("a@x", 1, 0)))
	popm := NewPopularimeterFrame("b@x", 1, 0)
	require.NoError(t, tag.Add(popm))
	assert.Error(t, popm.SetEmail("a@x"))

	require.NoError(t, tag.Add(NewGroupIDFrame("o", 1, nil)))
	grid := NewGroupIDFrame("o", 2, nil)
	require.NoError(t, tag.Add(grid))
	assert.Error(t, grid.SetSymbol(1))
	assert.Equal(t, byte(2), grid.Symbol())

	require.NoError(t, tag.Add(NewPrivateFrame("o", []byte{1})))
	priv := NewPrivateFrame("o", []byte{2})
	require.NoError(t, tag.Add(priv))
	assert.Error(t, priv.SetData([]byte{1}))
	assert.Equal(t, []byte{2}, priv.Data())
	require.NoError(t, priv.SetOwner("p"))

	require.NoError(t, tag.Add(NewUniqueFileIDFrame("o", []byte{1})))
	ufid := NewUniqueFileIDFrame("p", []byte{1})
	require.NoError(t, tag.Add(ufid))
	assert.Error(t, ufid.SetOwner("o"))

	require.NoError(t, tag.Add(NewPictureFrame("image/png", 3, "front", nil)))
	apic := NewPictureFrame("image/png", 4, "back", nil)
	require.NoError(t, tag.Add(apic))
	assert.Error(t, apic.SetDescription("front"))

	require.NoError(t, tag.Add(NewObjectFrame("a/b", "f", "one", nil)))
	geob := NewObjectFrame("a/b", "f", "two", nil)
	require.NoError(t, tag.Add(geob))
	assert.Error(t, geob.SetDescription("one"))

	require.NoError(t, tag.Add(NewUserURLFrame("one", "http://1")))
	wxxx := NewUserURLFrame("two", "http://2")
	require.NoError(t, tag.Add(wxxx))
	assert.Error(t, wxxx.SetDescription("one"))
}

func TestRemove(t *testing.T) {
	tag := New()
	c := NewCommentFrame("eng", "", "x")
	u := NewUnknownFrame("XYZ1", nil)
	require.NoError(t, tag.Add(c))
	require.NoError(t, tag.Add(u))

	ok, err := tag.Remove(c)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Nil(t, c.Tag())
	assert.Nil(t, tag.Frame("COMM"))

	ok, err = tag.Remove(c)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = tag.Remove(u)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, tag.Unknown())
	assert.Zero(t, tag.Len())

	// A detached frame can be changed freely and stored again.
	require.NoError(t, c.SetDescription("other"))
	require.NoError(t, tag.Add(c))
	assert.Same(t, tag, c.Tag())
}

func TestEncryptionMethod_SymbolUnique(t *testing.T) {
	for _, strict := range []bool{true, false} {
		var opts []Option
		if strict {
			opts = append(opts, WithStrict())
		}
		tag := New(opts...)
		a := NewEncryptionMethodFrame("a", 0x80, nil)
		b := NewEncryptionMethodFrame("b", 0x81, nil)
		require.NoError(t, tag.Add(a))
		require.NoError(t, tag.Add(b))

		var ce *ConstraintError
		assert.ErrorAs(t, tag.Add(NewEncryptionMethodFrame("c", 0x80, nil)), &ce)
		assert.ErrorAs(t, b.SetSymbol(0x80), &ce)
		assert.Equal(t, byte(0x81), b.Symbol())
		assert.ErrorAs(t, b.SetOwner("a"), &ce)

		require.NoError(t, b.SetSymbol(0x82))
		assert.Same(t, b, tag.encryptionMethod(0x82))
	}
}

func TestEncryptionMethod_LenientReplaceKeepsSymbol(t *testing.T) {
	tag := New()
	require.NoError(t, tag.Add(NewEncryptionMethodFrame("a", 0x80, nil)))
	// Same owner replaces the old frame, so its symbol is free.
	replacement := NewEncryptionMethodFrame("a", 0x80, []byte{1})
	require.NoError(t, tag.Add(replacement))
	assert.Same(t, replacement, tag.encryptionMethod(0x80))
}

func TestEncryptionMethod_Orphans(t *testing.T) {
	build := func(opts ...Option) (*Tag, *EncryptionMethodFrame, *TextFrame) {
		tag := New(opts...)
		m := NewEncryptionMethodFrame("a", 0x80, nil)
		require.NoError(t, tag.Add(m))
		f := NewTextFrame("TIT2", "x")
		require.NoError(t, tag.Add(f))
		require.NoError(t, f.SetEncryption(0x80))
		return tag, m, f
	}

	t.Run("strict", func(t *testing.T) {
		tag, m, f := build(WithStrict())
		var ce *ConstraintError

		ok, err := tag.Remove(m)
		assert.False(t, ok)
		assert.ErrorAs(t, err, &ce)
		assert.ErrorAs(t, m.SetSymbol(0x90), &ce)
		assert.Equal(t, byte(0x80), m.Symbol())

		assert.ErrorAs(t, f.SetEncryption(0x91), &ce)
		symbol, _ := f.EncryptionMethod()
		assert.Equal(t, byte(0x80), symbol)

		f.ClearEncryption()
		require.NoError(t, m.SetSymbol(0x90))
		ok, err = tag.Remove(m)
		assert.True(t, ok)
		assert.NoError(t, err)
	})

	t.Run("lenient", func(t *testing.T) {
		tag, m, _ := build()
		require.NoError(t, m.SetSymbol(0x90))
		ok, err := tag.Remove(m)
		assert.True(t, ok)
		assert.NoError(t, err)
	})
}

func TestAdd_StrictEncryptedNeedsMethod(t *testing.T) {
	f := NewTextFrame("TIT2", "x")
	require.NoError(t, f.SetEncryption(0x80))

	var ce *ConstraintError
	assert.ErrorAs(t, New(WithStrict()).Add(f), &ce)
	assert.NoError(t, New().Add(f))
}

func TestFrameKey(t *testing.T) {
	_, ok := FrameKey(NewTextFrame("TIT2", "x"))
	assert.False(t, ok)

	k, ok := FrameKey(NewUserTextFrame("desc", "v"))
	assert.True(t, ok)
	assert.Equal(t, "desc", k)

	a, _ := FrameKey(NewPrivateFrame("o", []byte{1}))
	b, _ := FrameKey(NewPrivateFrame("o", []byte{2}))
	c, _ := FrameKey(NewPrivateFrame("o", []byte{1}))
	assert.NotEqual(t, a, b)
	assert.Equal(t, a, c)
}

func TestAll_StopsEarly(t *testing.T) {
	tag := fullTag(t)
	n := 0
	for range tag.All() {
		n++
		if n == 3 {
			break
		}
	}
	assert.Equal(t, 3, n)
}

func TestCommentFrame_LanguageLength(t *testing.T) {
	tag := New(WithStrict())

	for _, lang := range []string{"engx", "en", "", "日本語"} {
		var ce *ConstraintError
		assert.ErrorAs(t, tag.Add(NewCommentFrame(lang, "", "x")), &ce, "language %q", lang)
	}
	assert.Zero(t, tag.Len())

	c := NewCommentFrame("eng", "", "a")
	require.NoError(t, tag.Add(c))
	var ce *ConstraintError
	assert.ErrorAs(t, c.SetLanguage("engx"), &ce)
	assert.Equal(t, "eng", c.Language())

	// Languages that differ only past the third byte cannot both be stored,
	// so the written tag reads back strictly with every frame.
	require.NoError(t, tag.Add(NewCommentFrame("deu", "", "b")))
	got := mustRead(t, mustBytes(t, tag), WithStrict())
	assert.Len(t, got.Frames("COMM"), 2)
}

func TestPrivateFrame_DataIsCopied(t *testing.T) {
	tag := New(WithStrict())
	src := []byte{1}
	require.NoError(t, tag.Add(NewPrivateFrame("o", src)))
	p := NewPrivateFrame("o", []byte{2})
	require.NoError(t, tag.Add(p))

	// Neither the caller's slice nor the returned one aliases the frame.
	src[0] = 2
	p.Data()[0] = 1
	assert.Equal(t, []byte{2}, p.Data())

	data := []byte{3}
	require.NoError(t, p.SetData(data))
	data[0] = 1
	assert.Equal(t, []byte{3}, p.Data())

	got := mustRead(t, mustBytes(t, tag), WithStrict())
	assert.Len(t, got.Frames("PRIV"), 2)
}
