package id3v23

import (
	"github.com/simonhull/id3v23/internal/registry"
)

// frames maps frame ids to codecs, slots and write ranks.
var frames = newFrameTable()

func newFrameTable() *registry.Table[Frame] {
	t := registry.New[Frame]()

	t.Register("UFID", entry(registry.MultiByKey, 0, decodeUniqueFileIDFrame, (*UniqueFileIDFrame).encode, (*UniqueFileIDFrame).key))

	t.RegisterFamily("T", entry(registry.Single, 10, decodeTextFrame, (*TextFrame).encode, nil))
	t.Register("TXXX", entry(registry.MultiByKey, 11, decodeUserTextFrame, (*UserTextFrame).encode, (*UserTextFrame).key))

	t.RegisterFamily("W", entry(registry.Single, 20, decodeURLFrame, (*URLFrame).encode, nil))
	t.Register("WCOM", entry(registry.MultiByKey, 20, decodeURLFrame, (*URLFrame).encode, (*URLFrame).key))
	t.Register("WOAR", entry(registry.MultiByKey, 20, decodeURLFrame, (*URLFrame).encode, (*URLFrame).key))
	t.Register("WXXX", entry(registry.MultiByKey, 21, decodeUserURLFrame, (*UserURLFrame).encode, (*UserURLFrame).key))

	t.Register("COMM", entry(registry.MultiByKey, 30, decodeCommentFrame, (*CommentFrame).encode, (*CommentFrame).key))
	t.Register("USLT", entry(registry.MultiByKey, 31, decodeCommentFrame, (*CommentFrame).encode, (*CommentFrame).key))
	t.Register("APIC", entry(registry.MultiByKey, 40, decodePictureFrame, (*PictureFrame).encode, (*PictureFrame).key))
	t.Register("GEOB", entry(registry.MultiByKey, 41, decodeObjectFrame, (*ObjectFrame).encode, (*ObjectFrame).key))
	t.Register("PCNT", entry(registry.Single, 50, decodePlayCounterFrame, (*PlayCounterFrame).encode, nil))
	t.Register("POPM", entry(registry.MultiByKey, 51, decodePopularimeterFrame, (*PopularimeterFrame).encode, (*PopularimeterFrame).key))
	t.Register("MCDI", entry(registry.Single, 60, decodeCDIDFrame, (*CDIDFrame).encode, nil))
	t.Register("ENCR", entry(registry.MultiByKey, 70, decodeEncryptionMethodFrame, (*EncryptionMethodFrame).encode, (*EncryptionMethodFrame).key))
	t.Register("GRID", entry(registry.MultiByKey, 71, decodeGroupIDFrame, (*GroupIDFrame).encode, (*GroupIDFrame).key))
	t.Register("PRIV", entry(registry.MultiByKey, 80, decodePrivateFrame, (*PrivateFrame).encode, (*PrivateFrame).key))

	return t
}

// entry adapts typed codec functions to a registry entry over Frame.
func entry[T Frame](slot registry.Slot, rank int, decode func(string, []byte) (T, error), encode func(T) ([]byte, error), key func(T) string) registry.Entry[Frame] {
	e := registry.Entry[Frame]{
		Decode: func(id string, body []byte) (Frame, error) {
			f, err := decode(id, body)
			if err != nil {
				return nil, err
			}
			return f, nil
		},
		Encode: func(f Frame) ([]byte, error) {
			return encode(f.(T))
		},
		Accepts: func(f Frame) bool {
			_, ok := f.(T)
			return ok
		},
		Slot: slot,
		Rank: rank,
	}
	if key != nil {
		e.Key = func(f Frame) string { return key(f.(T)) }
	}
	return e
}

// decodeBody dispatches a plain frame body to its registered decoder.
// Ids without a decoder produce an UnknownFrame.
func decodeBody(id string, body []byte) (Frame, error) {
	e, ok := frames.Lookup(id)
	if !ok {
		return &UnknownFrame{FrameHeader: newHeader(id), Data: append([]byte(nil), body...)}, nil
	}
	return e.Decode(id, body)
}

// encodeBody serializes a frame's plain body.
func encodeBody(f Frame) ([]byte, error) {
	switch fr := f.(type) {
	case *UnknownFrame:
		return fr.Data, nil
	case *EncryptedFrame:
		return fr.Payload, nil
	}
	e, ok := frames.Lookup(f.ID())
	if !ok || !e.Accepts(f) {
		return nil, &ConstraintError{FrameID: f.ID(), Reason: "no encoder registered for frame type"}
	}
	return e.Encode(f)
}
