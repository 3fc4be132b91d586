package id3v23

import (
	binutil "github.com/simonhull/id3v23/internal/binary"
)

// Encoding is an ID3v2.3 text encoding.
type Encoding = binutil.Encoding

const (
	EncodingISO88591 = binutil.ISO88591
	EncodingUTF16    = binutil.UTF16
)

// encodingFor returns ISO-8859-1 if every string is representable in it,
// UTF-16 otherwise.
func encodingFor(values ...string) Encoding {
	for _, v := range values {
		if _, err := binutil.EncodeText(v, binutil.ISO88591); err != nil {
			return EncodingUTF16
		}
	}
	return EncodingISO88591
}

// TextFrame is a text information frame (T000-TZZZ except TXXX).
type TextFrame struct {
	FrameHeader
	Encoding Encoding
	Text     string
}

// NewTextFrame creates a text information frame.
func NewTextFrame(id, text string) *TextFrame {
	return &TextFrame{FrameHeader: newHeader(id), Encoding: encodingFor(text), Text: text}
}

// Format: [encoding][text]
func decodeTextFrame(id string, body []byte) (*TextFrame, error) {
	cr := binutil.NewChainReader(body)
	enc := cr.Encoding("text encoding")
	text := cr.Text(enc, "text")
	if err := cr.Error(); err != nil {
		return nil, err
	}
	return &TextFrame{FrameHeader: newHeader(id), Encoding: enc, Text: text}, nil
}

func (f *TextFrame) encode() ([]byte, error) {
	cw := binutil.NewChainWriter()
	binutil.WriteChained(cw, uint8(f.Encoding))
	cw.Text(f.Text, f.Encoding)
	return cw.Bytes()
}

// UserTextFrame is a user defined text frame (TXXX), keyed by description.
type UserTextFrame struct {
	FrameHeader
	Encoding    Encoding
	description string
	Value       string
}

// NewUserTextFrame creates a TXXX frame.
func NewUserTextFrame(description, value string) *UserTextFrame {
	return &UserTextFrame{
		FrameHeader: newHeader("TXXX"),
		Encoding:    encodingFor(description, value),
		description: description,
		Value:       value,
	}
}

// Description returns the frame's description.
func (f *UserTextFrame) Description() string { return f.description }

// SetDescription changes the description, which is the frame's uniqueness key.
func (f *UserTextFrame) SetDescription(description string) error {
	return commit(f, description, func() { f.description = description })
}

func (f *UserTextFrame) key() string { return f.description }

// Format: [encoding][description\0][value]
func decodeUserTextFrame(id string, body []byte) (*UserTextFrame, error) {
	cr := binutil.NewChainReader(body)
	enc := cr.Encoding("text encoding")
	desc := cr.Terminated(enc, "description")
	value := cr.Text(enc, "value")
	if err := cr.Error(); err != nil {
		return nil, err
	}
	return &UserTextFrame{FrameHeader: newHeader(id), Encoding: enc, description: desc, Value: value}, nil
}

func (f *UserTextFrame) encode() ([]byte, error) {
	cw := binutil.NewChainWriter()
	binutil.WriteChained(cw, uint8(f.Encoding))
	cw.Terminated(f.description, f.Encoding)
	cw.Text(f.Value, f.Encoding)
	return cw.Bytes()
}

// URLFrame is a URL link frame (W000-WZZZ except WXXX).
// WCOM and WOAR may occur several times and are keyed by URL.
type URLFrame struct {
	FrameHeader
	url string
}

// NewURLFrame creates a URL link frame.
func NewURLFrame(id, url string) *URLFrame {
	return &URLFrame{FrameHeader: newHeader(id), url: url}
}

// URL returns the link.
func (f *URLFrame) URL() string { return f.url }

// SetURL changes the link. For WCOM and WOAR this is the uniqueness key.
func (f *URLFrame) SetURL(url string) error {
	return commit(f, url, func() { f.url = url })
}

func (f *URLFrame) key() string { return f.url }

// Format: [url]
func decodeURLFrame(id string, body []byte) (*URLFrame, error) {
	url, err := binutil.DecodeText(body, binutil.ISO88591)
	if err != nil {
		return nil, err
	}
	return &URLFrame{FrameHeader: newHeader(id), url: url}, nil
}

func (f *URLFrame) encode() ([]byte, error) {
	return binutil.EncodeText(f.url, binutil.ISO88591)
}

// UserURLFrame is a user defined URL link frame (WXXX), keyed by description.
type UserURLFrame struct {
	FrameHeader
	Encoding    Encoding
	description string
	URL         string
}

// NewUserURLFrame creates a WXXX frame.
func NewUserURLFrame(description, url string) *UserURLFrame {
	return &UserURLFrame{
		FrameHeader: newHeader("WXXX"),
		Encoding:    encodingFor(description),
		description: description,
		URL:         url,
	}
}

// Description returns the frame's description.
func (f *UserURLFrame) Description() string { return f.description }

// SetDescription changes the description, which is the frame's uniqueness key.
func (f *UserURLFrame) SetDescription(description string) error {
	return commit(f, description, func() { f.description = description })
}

func (f *UserURLFrame) key() string { return f.description }

// Format: [encoding][description\0][url as ISO-8859-1]
func decodeUserURLFrame(id string, body []byte) (*UserURLFrame, error) {
	cr := binutil.NewChainReader(body)
	enc := cr.Encoding("text encoding")
	desc := cr.Terminated(enc, "description")
	url := cr.Text(binutil.ISO88591, "url")
	if err := cr.Error(); err != nil {
		return nil, err
	}
	return &UserURLFrame{FrameHeader: newHeader(id), Encoding: enc, description: desc, URL: url}, nil
}

func (f *UserURLFrame) encode() ([]byte, error) {
	cw := binutil.NewChainWriter()
	binutil.WriteChained(cw, uint8(f.Encoding))
	cw.Terminated(f.description, f.Encoding)
	cw.Text(f.URL, binutil.ISO88591)
	return cw.Bytes()
}
