// Package registry maps ID3v2 frame ids to their codecs and container slot kinds.
package registry

import "strings"

// Slot is the kind of container slot a frame id is stored in.
type Slot int

const (
	// Single holds exactly one frame per id; storing another replaces it.
	Single Slot = iota

	// MultiByKey holds many frames per id, indexed by a uniqueness key.
	MultiByKey

	// Opaque holds unknown or undecryptable frames in an unkeyed list.
	Opaque
)

func (s Slot) String() string {
	switch s {
	case Single:
		return "single"
	case MultiByKey:
		return "multi"
	case Opaque:
		return "opaque"
	default:
		return "slot(?)"
	}
}

// Entry describes how one frame id is decoded, encoded and stored.
type Entry[F any] struct {
	// Decode builds a frame from its plain (decrypted, inflated) body.
	Decode func(id string, body []byte) (F, error)

	// Encode serializes a frame's body.
	Encode func(f F) ([]byte, error)

	// Key extracts the uniqueness key. Required for MultiByKey.
	Key func(f F) string

	// Accepts reports whether f is the frame type registered for the id.
	Accepts func(f F) bool

	Slot Slot

	// Rank orders ids when writing; lower ranks are written first.
	Rank int
}

// Table is a frame id registry.
//
// Exact ids take precedence over family prefixes, so "TXXX" can be
// registered alongside the "T" family.
type Table[F any] struct {
	exact    map[string]Entry[F]
	families map[string]Entry[F]
}

// New creates an empty Table.
func New[F any]() *Table[F] {
	return &Table[F]{
		exact:    make(map[string]Entry[F]),
		families: make(map[string]Entry[F]),
	}
}

// Register registers an entry for an exact frame id.
// Registering the same id twice overwrites the previous entry.
func (t *Table[F]) Register(id string, e Entry[F]) {
	t.exact[id] = e
}

// RegisterFamily registers an entry for every id starting with prefix
// that has no exact registration.
func (t *Table[F]) RegisterFamily(prefix string, e Entry[F]) {
	t.families[prefix] = e
}

// Lookup returns the entry for id.
// Returns false if neither an exact id nor a family matches.
func (t *Table[F]) Lookup(id string) (Entry[F], bool) {
	if e, ok := t.exact[id]; ok {
		return e, true
	}
	for prefix, e := range t.families {
		if strings.HasPrefix(id, prefix) {
			return e, true
		}
	}
	var zero Entry[F]
	return zero, false
}

// Rank returns the write rank for id, or fallback if it is unregistered.
func (t *Table[F]) Rank(id string, fallback int) int {
	if e, ok := t.Lookup(id); ok {
		return e.Rank
	}
	return fallback
}
