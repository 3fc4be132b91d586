package id3v23

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"math"

	binutil "github.com/simonhull/id3v23/internal/binary"
	"golang.org/x/crypto/blake2b"
)

// keySep joins the parts of composite uniqueness keys.
const keySep = "\x00"

// CommentFrame is a comment (COMM) or unsynchronised lyrics (USLT) frame,
// keyed by language and content description.
type CommentFrame struct {
	FrameHeader
	Encoding    Encoding
	language    string
	description string
	Text        string
}

// NewCommentFrame creates a COMM frame. language is a 3-letter ISO-639-2
// code; Tag.Add rejects any other length.
func NewCommentFrame(language, description, text string) *CommentFrame {
	return newCommentFrame("COMM", language, description, text)
}

// NewLyricsFrame creates a USLT frame. language is an ISO-639-2 code.
func NewLyricsFrame(language, description, text string) *CommentFrame {
	return newCommentFrame("USLT", language, description, text)
}

func newCommentFrame(id, language, description, text string) *CommentFrame {
	return &CommentFrame{
		FrameHeader: newHeader(id),
		Encoding:    encodingFor(description, text),
		language:    language,
		description: description,
		Text:        text,
	}
}

// Language returns the 3-character language code.
func (f *CommentFrame) Language() string { return f.language }

// Description returns the short content description.
func (f *CommentFrame) Description() string { return f.description }

// SetLanguage changes the language, part of the uniqueness key.
// language must encode to exactly 3 ISO-8859-1 bytes.
func (f *CommentFrame) SetLanguage(language string) error {
	if !validLanguage(language) {
		return &ConstraintError{FrameID: f.ID(), Key: language, Reason: "language must be 3 ISO-8859-1 characters"}
	}
	return commit(f, commentKey(language, f.description), func() { f.language = language })
}

// SetDescription changes the content description, part of the uniqueness key.
func (f *CommentFrame) SetDescription(description string) error {
	return commit(f, commentKey(f.language, description), func() { f.description = description })
}

func (f *CommentFrame) key() string { return commentKey(f.language, f.description) }

func commentKey(language, description string) string {
	return language + keySep + description
}

// validLanguage reports whether language fills the 3-byte field exactly.
// Shorter or longer values would be padded or cut on write and could
// collide with another key.
func validLanguage(language string) bool {
	b, err := binutil.EncodeText(language, binutil.ISO88591)
	return err == nil && len(b) == 3
}

// Format: [encoding][language(3)][description\0][text]
func decodeCommentFrame(id string, body []byte) (*CommentFrame, error) {
	cr := binutil.NewChainReader(body)
	enc := cr.Encoding("text encoding")
	lang := cr.Latin1(3, "language")
	desc := cr.Terminated(enc, "content description")
	text := cr.Text(enc, "text")
	if err := cr.Error(); err != nil {
		return nil, err
	}
	return &CommentFrame{FrameHeader: newHeader(id), Encoding: enc, language: lang, description: desc, Text: text}, nil
}

func (f *CommentFrame) encode() ([]byte, error) {
	cw := binutil.NewChainWriter()
	binutil.WriteChained(cw, uint8(f.Encoding))
	cw.Latin1(f.language, 3)
	cw.Terminated(f.description, f.Encoding)
	cw.Text(f.Text, f.Encoding)
	return cw.Bytes()
}

// UniqueFileIDFrame is a unique file identifier frame (UFID), keyed by owner.
type UniqueFileIDFrame struct {
	FrameHeader
	owner      string
	Identifier []byte
}

// NewUniqueFileIDFrame creates a UFID frame.
func NewUniqueFileIDFrame(owner string, identifier []byte) *UniqueFileIDFrame {
	return &UniqueFileIDFrame{FrameHeader: newHeader("UFID"), owner: owner, Identifier: identifier}
}

// Owner returns the owner identifier.
func (f *UniqueFileIDFrame) Owner() string { return f.owner }

// SetOwner changes the owner identifier, which is the uniqueness key.
func (f *UniqueFileIDFrame) SetOwner(owner string) error {
	return commit(f, owner, func() { f.owner = owner })
}

func (f *UniqueFileIDFrame) key() string { return f.owner }

// Format: [owner\0][identifier, up to 64 bytes]
func decodeUniqueFileIDFrame(id string, body []byte) (*UniqueFileIDFrame, error) {
	cr := binutil.NewChainReader(body)
	owner := cr.Terminated(binutil.ISO88591, "owner identifier")
	ident := cr.Rest()
	if err := cr.Error(); err != nil {
		return nil, err
	}
	if len(ident) > 64 {
		return nil, fmt.Errorf("identifier is %d bytes, maximum is 64", len(ident))
	}
	return &UniqueFileIDFrame{FrameHeader: newHeader(id), owner: owner, Identifier: ident}, nil
}

func (f *UniqueFileIDFrame) encode() ([]byte, error) {
	cw := binutil.NewChainWriter()
	cw.Terminated(f.owner, binutil.ISO88591)
	cw.Raw(f.Identifier)
	return cw.Bytes()
}

// PrivateFrame is a private frame (PRIV). Several frames may share an owner,
// so the key is the owner plus a BLAKE2b-256 digest of the data.
type PrivateFrame struct {
	FrameHeader
	owner string
	data  []byte
}

// NewPrivateFrame creates a PRIV frame.
func NewPrivateFrame(owner string, data []byte) *PrivateFrame {
	return &PrivateFrame{FrameHeader: newHeader("PRIV"), owner: owner, data: bytes.Clone(data)}
}

// Owner returns the owner identifier.
func (f *PrivateFrame) Owner() string { return f.owner }

// Data returns a copy of the private data. The data is part of the
// uniqueness key, so it can only be changed through SetData.
func (f *PrivateFrame) Data() []byte { return bytes.Clone(f.data) }

// SetOwner changes the owner identifier.
func (f *PrivateFrame) SetOwner(owner string) error {
	return commit(f, privateKey(owner, f.data), func() { f.owner = owner })
}

// SetData replaces the private data.
func (f *PrivateFrame) SetData(data []byte) error {
	data = bytes.Clone(data)
	return commit(f, privateKey(f.owner, data), func() { f.data = data })
}

func (f *PrivateFrame) key() string { return privateKey(f.owner, f.data) }

// privateKey identifies a payload by digest. Two payloads with equal
// digests are treated as duplicates.
func privateKey(owner string, data []byte) string {
	sum := blake2b.Sum256(data)
	return owner + keySep + hex.EncodeToString(sum[:])
}

// Format: [owner\0][data]
func decodePrivateFrame(id string, body []byte) (*PrivateFrame, error) {
	cr := binutil.NewChainReader(body)
	owner := cr.Terminated(binutil.ISO88591, "owner identifier")
	data := cr.Rest()
	if err := cr.Error(); err != nil {
		return nil, err
	}
	return &PrivateFrame{FrameHeader: newHeader(id), owner: owner, data: data}, nil
}

func (f *PrivateFrame) encode() ([]byte, error) {
	cw := binutil.NewChainWriter()
	cw.Terminated(f.owner, binutil.ISO88591)
	cw.Raw(f.data)
	return cw.Bytes()
}

// EncryptionMethodFrame is an encryption method registration frame (ENCR).
// It is keyed by owner; its method symbol must also be unique in a tag.
type EncryptionMethodFrame struct {
	FrameHeader
	owner  string
	symbol byte
	Data   []byte
}

// NewEncryptionMethodFrame creates an ENCR frame registering symbol for owner.
// data is passed to the owner's crypto agent as auxiliary data.
func NewEncryptionMethodFrame(owner string, symbol byte, data []byte) *EncryptionMethodFrame {
	return &EncryptionMethodFrame{FrameHeader: newHeader("ENCR"), owner: owner, symbol: symbol, Data: data}
}

// Owner returns the owner identifier used to look up the crypto agent.
func (f *EncryptionMethodFrame) Owner() string { return f.owner }

// Symbol returns the method symbol referenced by encrypted frames.
func (f *EncryptionMethodFrame) Symbol() byte { return f.symbol }

// SetOwner changes the owner identifier, which is the uniqueness key.
func (f *EncryptionMethodFrame) SetOwner(owner string) error {
	return commit(f, owner, func() { f.owner = owner })
}

// SetSymbol changes the method symbol. In a tag the symbol must not be
// registered by another ENCR frame and, in strict mode, must not orphan
// frames encrypted with the old symbol.
func (f *EncryptionMethodFrame) SetSymbol(symbol byte) error {
	if t := f.tag; t != nil {
		if err := t.checkMethodSymbol(f, symbol); err != nil {
			return err
		}
	}
	f.symbol = symbol
	return nil
}

func (f *EncryptionMethodFrame) key() string { return f.owner }

// Format: [owner\0][method symbol][encryption data]
func decodeEncryptionMethodFrame(id string, body []byte) (*EncryptionMethodFrame, error) {
	cr := binutil.NewChainReader(body)
	owner := cr.Terminated(binutil.ISO88591, "owner identifier")
	symbol := binutil.ReadChained[uint8](cr, "method symbol")
	data := cr.Rest()
	if err := cr.Error(); err != nil {
		return nil, err
	}
	return &EncryptionMethodFrame{FrameHeader: newHeader(id), owner: owner, symbol: symbol, Data: data}, nil
}

func (f *EncryptionMethodFrame) encode() ([]byte, error) {
	cw := binutil.NewChainWriter()
	cw.Terminated(f.owner, binutil.ISO88591)
	binutil.WriteChained(cw, f.symbol)
	cw.Raw(f.Data)
	return cw.Bytes()
}

// GroupIDFrame is a group identification registration frame (GRID),
// keyed by group symbol.
type GroupIDFrame struct {
	FrameHeader
	Owner  string
	symbol byte
	Data   []byte
}

// NewGroupIDFrame creates a GRID frame.
func NewGroupIDFrame(owner string, symbol byte, data []byte) *GroupIDFrame {
	return &GroupIDFrame{FrameHeader: newHeader("GRID"), Owner: owner, symbol: symbol, Data: data}
}

// Symbol returns the group symbol.
func (f *GroupIDFrame) Symbol() byte { return f.symbol }

// SetSymbol changes the group symbol, which is the uniqueness key.
func (f *GroupIDFrame) SetSymbol(symbol byte) error {
	return commit(f, groupKey(symbol), func() { f.symbol = symbol })
}

func (f *GroupIDFrame) key() string { return groupKey(f.symbol) }

func groupKey(symbol byte) string { return fmt.Sprintf("%02x", symbol) }

// Format: [owner\0][group symbol][group dependent data]
func decodeGroupIDFrame(id string, body []byte) (*GroupIDFrame, error) {
	cr := binutil.NewChainReader(body)
	owner := cr.Terminated(binutil.ISO88591, "owner identifier")
	symbol := binutil.ReadChained[uint8](cr, "group symbol")
	data := cr.Rest()
	if err := cr.Error(); err != nil {
		return nil, err
	}
	return &GroupIDFrame{FrameHeader: newHeader(id), Owner: owner, symbol: symbol, Data: data}, nil
}

func (f *GroupIDFrame) encode() ([]byte, error) {
	cw := binutil.NewChainWriter()
	cw.Terminated(f.Owner, binutil.ISO88591)
	binutil.WriteChained(cw, f.symbol)
	cw.Raw(f.Data)
	return cw.Bytes()
}

// PopularimeterFrame is a popularimeter frame (POPM), keyed by email.
type PopularimeterFrame struct {
	FrameHeader
	email   string
	Rating  byte
	Counter uint64
}

// NewPopularimeterFrame creates a POPM frame.
func NewPopularimeterFrame(email string, rating byte, counter uint64) *PopularimeterFrame {
	return &PopularimeterFrame{FrameHeader: newHeader("POPM"), email: email, Rating: rating, Counter: counter}
}

// Email returns the user's email address.
func (f *PopularimeterFrame) Email() string { return f.email }

// SetEmail changes the email address, which is the uniqueness key.
func (f *PopularimeterFrame) SetEmail(email string) error {
	return commit(f, email, func() { f.email = email })
}

func (f *PopularimeterFrame) key() string { return f.email }

// Format: [email\0][rating][counter, optional, >= 4 bytes]
func decodePopularimeterFrame(id string, body []byte) (*PopularimeterFrame, error) {
	cr := binutil.NewChainReader(body)
	email := cr.Terminated(binutil.ISO88591, "email")
	rating := binutil.ReadChained[uint8](cr, "rating")
	rest := cr.Rest()
	if err := cr.Error(); err != nil {
		return nil, err
	}
	counter, err := decodeCounter(rest, true)
	if err != nil {
		return nil, err
	}
	return &PopularimeterFrame{FrameHeader: newHeader(id), email: email, Rating: rating, Counter: counter}, nil
}

func (f *PopularimeterFrame) encode() ([]byte, error) {
	cw := binutil.NewChainWriter()
	cw.Terminated(f.email, binutil.ISO88591)
	binutil.WriteChained(cw, f.Rating)
	cw.Raw(encodeCounter(f.Counter))
	return cw.Bytes()
}

// PlayCounterFrame is a play counter frame (PCNT).
type PlayCounterFrame struct {
	FrameHeader
	Counter uint64
}

// NewPlayCounterFrame creates a PCNT frame.
func NewPlayCounterFrame(counter uint64) *PlayCounterFrame {
	return &PlayCounterFrame{FrameHeader: newHeader("PCNT"), Counter: counter}
}

// Format: [counter, >= 4 bytes]
func decodePlayCounterFrame(id string, body []byte) (*PlayCounterFrame, error) {
	counter, err := decodeCounter(body, false)
	if err != nil {
		return nil, err
	}
	return &PlayCounterFrame{FrameHeader: newHeader(id), Counter: counter}, nil
}

func (f *PlayCounterFrame) encode() ([]byte, error) {
	return encodeCounter(f.Counter), nil
}

// decodeCounter decodes a big-endian counter of at least 4 bytes.
// Counters wider than 64 bits are rejected.
func decodeCounter(b []byte, optional bool) (uint64, error) {
	if len(b) == 0 && optional {
		return 0, nil
	}
	if len(b) < 4 {
		return 0, fmt.Errorf("counter is %d bytes, minimum is 4", len(b))
	}
	var v uint64
	for i, c := range b {
		if len(b)-i > 8 {
			if c != 0 {
				return 0, fmt.Errorf("counter of %d bytes overflows 64 bits", len(b))
			}
			continue
		}
		v = v<<8 | uint64(c)
	}
	return v, nil
}

func encodeCounter(v uint64) []byte {
	cw := binutil.NewChainWriter()
	if v > math.MaxUint32 {
		binutil.WriteChained(cw, v)
	} else {
		binutil.WriteChained(cw, uint32(v))
	}
	b, _ := cw.Bytes()
	return b
}

// ObjectFrame is a general encapsulated object frame (GEOB),
// keyed by content description.
type ObjectFrame struct {
	FrameHeader
	Encoding    Encoding
	MIMEType    string
	Filename    string
	description string
	Object      []byte
}

// NewObjectFrame creates a GEOB frame.
func NewObjectFrame(mimeType, filename, description string, object []byte) *ObjectFrame {
	return &ObjectFrame{
		FrameHeader: newHeader("GEOB"),
		Encoding:    encodingFor(filename, description),
		MIMEType:    mimeType,
		Filename:    filename,
		description: description,
		Object:      object,
	}
}

// Description returns the content description.
func (f *ObjectFrame) Description() string { return f.description }

// SetDescription changes the content description, which is the uniqueness key.
func (f *ObjectFrame) SetDescription(description string) error {
	return commit(f, description, func() { f.description = description })
}

func (f *ObjectFrame) key() string { return f.description }

// Format: [encoding][MIME type\0][filename\0][description\0][object]
func decodeObjectFrame(id string, body []byte) (*ObjectFrame, error) {
	cr := binutil.NewChainReader(body)
	enc := cr.Encoding("text encoding")
	mime := cr.Terminated(binutil.ISO88591, "MIME type")
	filename := cr.Terminated(enc, "filename")
	desc := cr.Terminated(enc, "content description")
	object := cr.Rest()
	if err := cr.Error(); err != nil {
		return nil, err
	}
	return &ObjectFrame{
		FrameHeader: newHeader(id),
		Encoding:    enc,
		MIMEType:    mime,
		Filename:    filename,
		description: desc,
		Object:      object,
	}, nil
}

func (f *ObjectFrame) encode() ([]byte, error) {
	cw := binutil.NewChainWriter()
	binutil.WriteChained(cw, uint8(f.Encoding))
	cw.Terminated(f.MIMEType, binutil.ISO88591)
	cw.Terminated(f.Filename, f.Encoding)
	cw.Terminated(f.description, f.Encoding)
	cw.Raw(f.Object)
	return cw.Bytes()
}

// PictureFrame is an attached picture frame (APIC), keyed by description.
type PictureFrame struct {
	FrameHeader
	Encoding    Encoding
	MIMEType    string
	PictureType byte
	description string
	Data        []byte
}

// NewPictureFrame creates an APIC frame.
func NewPictureFrame(mimeType string, pictureType byte, description string, data []byte) *PictureFrame {
	return &PictureFrame{
		FrameHeader: newHeader("APIC"),
		Encoding:    encodingFor(description),
		MIMEType:    mimeType,
		PictureType: pictureType,
		description: description,
		Data:        data,
	}
}

// Description returns the picture description.
func (f *PictureFrame) Description() string { return f.description }

// SetDescription changes the description, which is the uniqueness key.
func (f *PictureFrame) SetDescription(description string) error {
	return commit(f, description, func() { f.description = description })
}

func (f *PictureFrame) key() string { return f.description }

// Format: [encoding][MIME type\0][picture type][description\0][data]
func decodePictureFrame(id string, body []byte) (*PictureFrame, error) {
	cr := binutil.NewChainReader(body)
	enc := cr.Encoding("text encoding")
	mime := cr.Terminated(binutil.ISO88591, "MIME type")
	ptype := binutil.ReadChained[uint8](cr, "picture type")
	desc := cr.Terminated(enc, "description")
	data := cr.Rest()
	if err := cr.Error(); err != nil {
		return nil, err
	}
	return &PictureFrame{
		FrameHeader: newHeader(id),
		Encoding:    enc,
		MIMEType:    mime,
		PictureType: ptype,
		description: desc,
		Data:        data,
	}, nil
}

func (f *PictureFrame) encode() ([]byte, error) {
	cw := binutil.NewChainWriter()
	binutil.WriteChained(cw, uint8(f.Encoding))
	cw.Terminated(f.MIMEType, binutil.ISO88591)
	binutil.WriteChained(cw, f.PictureType)
	cw.Terminated(f.description, f.Encoding)
	cw.Raw(f.Data)
	return cw.Bytes()
}

// CDIDFrame is a music CD identifier frame (MCDI) holding a binary CD TOC.
type CDIDFrame struct {
	FrameHeader
	TOC []byte
}

// NewCDIDFrame creates an MCDI frame.
func NewCDIDFrame(toc []byte) *CDIDFrame {
	return &CDIDFrame{FrameHeader: newHeader("MCDI"), TOC: toc}
}

func decodeCDIDFrame(id string, body []byte) (*CDIDFrame, error) {
	return &CDIDFrame{FrameHeader: newHeader(id), TOC: append([]byte(nil), body...)}, nil
}

func (f *CDIDFrame) encode() ([]byte, error) {
	return f.TOC, nil
}
