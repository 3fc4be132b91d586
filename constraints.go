package id3v23

import (
	"cmp"
	"fmt"
	"iter"
	"slices"

	"github.com/sirupsen/logrus"
	"github.com/simonhull/id3v23/internal/registry"
)

// unregisteredRank orders ids without a registry entry after all known ids.
const unregisteredRank = 1 << 16

// Add stores f in the tag.
//
// Frames of a single-valued id replace the frame already stored under that
// id. Keyed frames must have a key that is unique among frames with the
// same id: in strict mode a duplicate returns a ConstraintError, otherwise
// the new frame replaces the old one and a Warning is recorded.
//
// A frame can be stored in only one tag at a time.
func (t *Tag) Add(f Frame) error {
	if f == nil {
		return &ConstraintError{Reason: "nil frame"}
	}
	switch owner := f.base().tag; {
	case owner == t:
		return &ConstraintError{FrameID: f.ID(), Reason: "frame is already stored in this tag"}
	case owner != nil:
		return &ConstraintError{FrameID: f.ID(), Reason: "frame is stored in another tag"}
	}
	if !validFrameID(f.ID()) {
		return &ConstraintError{FrameID: f.ID(), Reason: ErrInvalidFrameID.Error()}
	}
	if c, ok := f.(*CommentFrame); ok && !validLanguage(c.language) {
		return &ConstraintError{FrameID: f.ID(), Key: c.language, Reason: "language must be 3 ISO-8859-1 characters"}
	}
	return t.insert(f)
}

// insert performs the slot insertion shared by Add and parsing.
func (t *Tag) insert(f Frame) error {
	switch fr := f.(type) {
	case *EncryptedFrame:
		fr.tag = t
		t.encrypted = append(t.encrypted, fr)
		return nil
	case *UnknownFrame:
		fr.tag = t
		t.unknown = append(t.unknown, fr)
		return nil
	}

	id := f.ID()
	e, ok := frames.Lookup(id)
	if !ok || !e.Accepts(f) {
		return &ConstraintError{FrameID: id, Reason: fmt.Sprintf("%T cannot be stored under this id", f)}
	}

	h := f.base()
	if h.flags.Encryption && t.cfg.Strict && t.encryptionMethod(h.method) == nil {
		return &ConstraintError{
			FrameID: id,
			Key:     fmt.Sprintf("0x%02x", h.method),
			Reason:  "no ENCR frame registers this method symbol",
		}
	}

	s := t.slots[id]
	if s == nil {
		s = &slot{kind: e.Slot}
		if e.Slot == registry.MultiByKey {
			s.keys = make(map[string]Frame)
		}
	}

	switch s.kind {
	case registry.Single:
		if len(s.frames) > 0 {
			detach(s.frames[0])
			s.frames[0] = f
		} else {
			s.frames = append(s.frames, f)
		}

	case registry.MultiByKey:
		key := e.Key(f)
		old, dup := s.keys[key]
		if dup && t.cfg.Strict {
			return &ConstraintError{FrameID: id, Key: key, Reason: "another frame with this key is stored"}
		}
		if m, ok := f.(*EncryptionMethodFrame); ok {
			if err := t.checkSymbolFree(m, m.symbol, old); err != nil {
				return err
			}
		}
		if dup {
			i := slices.Index(s.frames, old)
			s.frames[i] = f
			detach(old)
			t.warn("frames", 0, fmt.Sprintf("duplicate %s frame with key %q replaced", id, key))
		} else {
			s.frames = append(s.frames, f)
		}
		s.keys[key] = f
	}

	t.slots[id] = s
	h.tag = t
	return nil
}

func detach(f Frame) {
	f.base().tag = nil
}

// Remove detaches f from the tag. It reports whether f was stored.
//
// In strict mode an ENCR frame cannot be removed while stored frames are
// encrypted with its method symbol.
func (t *Tag) Remove(f Frame) (bool, error) {
	if f == nil || f.base().tag != t {
		return false, nil
	}

	switch fr := f.(type) {
	case *EncryptedFrame:
		t.encrypted = slices.DeleteFunc(t.encrypted, func(x *EncryptedFrame) bool { return x == fr })
		detach(f)
		return true, nil
	case *UnknownFrame:
		t.unknown = slices.DeleteFunc(t.unknown, func(x Frame) bool { return x == f })
		detach(f)
		return true, nil
	case *EncryptionMethodFrame:
		if err := t.checkOrphans(fr, "removing"); err != nil {
			return false, err
		}
	}

	s := t.slots[f.ID()]
	if s == nil {
		return false, nil
	}
	if s.keys != nil {
		for k, v := range s.keys {
			if v == f {
				delete(s.keys, k)
			}
		}
	}
	s.frames = slices.DeleteFunc(s.frames, func(x Frame) bool { return x == f })
	if len(s.frames) == 0 {
		delete(t.slots, f.ID())
	}
	detach(f)
	return true, nil
}

// rekey validates that f can take newKey and, if so, applies the mutation
// and updates the key index. On error the frame is left unchanged.
func (t *Tag) rekey(f Frame, newKey string, apply func()) error {
	s := t.slots[f.ID()]
	if s == nil || s.kind != registry.MultiByKey {
		apply()
		return nil
	}

	var oldKey string
	found := false
	for k, v := range s.keys {
		if v == f {
			oldKey, found = k, true
			break
		}
	}
	if found && oldKey == newKey {
		apply()
		return nil
	}
	if other, ok := s.keys[newKey]; ok && other != f {
		return &ConstraintError{FrameID: f.ID(), Key: newKey, Reason: "another frame with this key is stored"}
	}

	apply()
	if found {
		delete(s.keys, oldKey)
	}
	s.keys[newKey] = f
	t.cfg.Logger.WithFields(logrus.Fields{
		"frame_id": f.ID(),
	}).Debug("frame key changed")
	return nil
}

// encryptionMethods returns the stored ENCR frames in insertion order.
func (t *Tag) encryptionMethods() []*EncryptionMethodFrame {
	s := t.slots["ENCR"]
	if s == nil {
		return nil
	}
	out := make([]*EncryptionMethodFrame, 0, len(s.frames))
	for _, f := range s.frames {
		out = append(out, f.(*EncryptionMethodFrame))
	}
	return out
}

func (t *Tag) encryptionMethod(symbol byte) *EncryptionMethodFrame {
	for _, m := range t.encryptionMethods() {
		if m.symbol == symbol {
			return m
		}
	}
	return nil
}

// checkMethodSymbol validates a symbol change of a stored ENCR frame.
func (t *Tag) checkMethodSymbol(m *EncryptionMethodFrame, symbol byte) error {
	if symbol == m.symbol {
		return nil
	}
	if err := t.checkSymbolFree(m, symbol, nil); err != nil {
		return err
	}
	return t.checkOrphans(m, "changing the symbol of")
}

// checkSymbolFree reports a ConstraintError if another ENCR frame than m
// (or the frame m is replacing) already registers symbol.
func (t *Tag) checkSymbolFree(m *EncryptionMethodFrame, symbol byte, replacing Frame) error {
	for _, other := range t.encryptionMethods() {
		if other == m || Frame(other) == replacing {
			continue
		}
		if other.symbol == symbol {
			return &ConstraintError{
				FrameID: "ENCR",
				Key:     fmt.Sprintf("0x%02x", symbol),
				Reason:  fmt.Sprintf("method symbol is already registered by owner %q", other.owner),
			}
		}
	}
	return nil
}

// checkOrphans reports a ConstraintError in strict mode if stored frames are
// encrypted with m's symbol.
func (t *Tag) checkOrphans(m *EncryptionMethodFrame, action string) error {
	if !t.cfg.Strict {
		return nil
	}
	for f := range t.known() {
		if symbol, ok := f.base().EncryptionMethod(); ok && symbol == m.symbol {
			return &ConstraintError{
				FrameID: "ENCR",
				Key:     m.owner,
				Reason:  fmt.Sprintf("%s it would orphan frame %s encrypted with method symbol 0x%02x", action, f.ID(), m.symbol),
			}
		}
	}
	return nil
}

// Binding resolves the crypto binding of an encrypted frame from the
// tag's ENCR frames and agent directory.
func (t *Tag) Binding(f Frame) (CryptoBinding, error) {
	symbol, ok := f.base().EncryptionMethod()
	if !ok {
		return CryptoBinding{}, &ConstraintError{FrameID: f.ID(), Reason: "encryption flag is not set"}
	}
	return resolveBinding(f.ID(), symbol, t.encryptionMethods(), t.cfg.Agents)
}

// Frame returns the first frame stored under id, or nil.
func (t *Tag) Frame(id string) Frame {
	if s := t.slots[id]; s != nil && len(s.frames) > 0 {
		return s.frames[0]
	}
	for _, f := range t.unknown {
		if f.ID() == id {
			return f
		}
	}
	return nil
}

// Frames returns the frames stored under id in insertion order.
// Unresolved encrypted frames are not included.
func (t *Tag) Frames(id string) []Frame {
	var out []Frame
	if s := t.slots[id]; s != nil {
		out = append(out, s.frames...)
	}
	for _, f := range t.unknown {
		if f.ID() == id {
			out = append(out, f)
		}
	}
	return out
}

// Lookup returns the frame stored under id with the given uniqueness key,
// or nil. Use FrameKey to compute the key of a frame.
func (t *Tag) Lookup(id, key string) Frame {
	if s := t.slots[id]; s != nil && s.keys != nil {
		return s.keys[key]
	}
	return nil
}

// FrameKey returns the uniqueness key of f and whether its id is keyed.
func FrameKey(f Frame) (string, bool) {
	e, ok := frames.Lookup(f.ID())
	if !ok || e.Slot != registry.MultiByKey || !e.Accepts(f) {
		return "", false
	}
	return e.Key(f), true
}

// Unknown returns the frames whose ids have no registered decoder.
func (t *Tag) Unknown() []Frame {
	return slices.Clone(t.unknown)
}

// Encrypted returns the frames that could not be decrypted.
func (t *Tag) Encrypted() []*EncryptedFrame {
	return slices.Clone(t.encrypted)
}

// Len returns the number of stored frames, including unknown and
// unresolved encrypted frames.
func (t *Tag) Len() int {
	n := len(t.unknown) + len(t.encrypted)
	for _, s := range t.slots {
		n += len(s.frames)
	}
	return n
}

// All iterates over every stored frame in write order: known frames in
// canonical order, then unknown frames, then unresolved encrypted frames.
func (t *Tag) All() iter.Seq[Frame] {
	return func(yield func(Frame) bool) {
		for f := range t.known() {
			if !yield(f) {
				return
			}
		}
		for _, f := range t.unknown {
			if !yield(f) {
				return
			}
		}
		for _, f := range t.encrypted {
			if !yield(f) {
				return
			}
		}
	}
}

// known iterates over the decoded frames in canonical order.
func (t *Tag) known() iter.Seq[Frame] {
	ids := make([]string, 0, len(t.slots))
	for id := range t.slots {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, func(a, b string) int {
		return cmp.Or(
			cmp.Compare(frames.Rank(a, unregisteredRank), frames.Rank(b, unregisteredRank)),
			cmp.Compare(a, b),
		)
	})
	return func(yield func(Frame) bool) {
		for _, id := range ids {
			s := t.slots[id]
			if s == nil {
				continue
			}
			for _, f := range s.frames {
				if !yield(f) {
					return
				}
			}
		}
	}
}
