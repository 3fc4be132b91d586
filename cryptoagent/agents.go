package cryptoagent

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/simonhull/id3v23"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/nacl/secretbox"
)

// KeySize is the key length of both agents.
const KeySize = 32

var (
	// ErrShortCiphertext is returned when a payload is shorter than the
	// nonce and authenticator.
	ErrShortCiphertext = errors.New("ciphertext too short")

	// ErrAuthentication is returned when a payload fails authentication,
	// usually because of a wrong key or different auxiliary data.
	ErrAuthentication = errors.New("message authentication failed")
)

var (
	_ id3v23.CryptoAgent = (*Secretbox)(nil)
	_ id3v23.CryptoAgent = (*ChaCha20Poly1305)(nil)
)

// Secretbox encrypts with NaCl secretbox (XSalsa20-Poly1305).
//
// Each ENCR method data value selects its own subkey, derived as a keyed
// BLAKE2b-256 hash of the auxiliary data.
//
// Payload: [nonce(24)][secretbox output]
type Secretbox struct {
	key [KeySize]byte
}

// NewSecretbox creates a secretbox agent.
func NewSecretbox(key [KeySize]byte) *Secretbox {
	return &Secretbox{key: key}
}

func (s *Secretbox) subkey(aux []byte) (*[KeySize]byte, error) {
	h, err := blake2b.New256(s.key[:])
	if err != nil {
		return nil, err
	}
	h.Write(aux)
	var k [KeySize]byte
	copy(k[:], h.Sum(nil))
	return &k, nil
}

// Encrypt seals data under a fresh random nonce.
func (s *Secretbox) Encrypt(data, aux []byte) ([]byte, error) {
	key, err := s.subkey(aux)
	if err != nil {
		return nil, err
	}
	var nonce [24]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}
	return secretbox.Seal(nonce[:], data, &nonce, key), nil
}

// Decrypt opens a payload produced by Encrypt with the same aux.
func (s *Secretbox) Decrypt(data, aux []byte) ([]byte, error) {
	if len(data) < 24+secretbox.Overhead {
		return nil, ErrShortCiphertext
	}
	key, err := s.subkey(aux)
	if err != nil {
		return nil, err
	}
	var nonce [24]byte
	copy(nonce[:], data[:24])
	out, ok := secretbox.Open(nil, data[24:], &nonce, key)
	if !ok {
		return nil, ErrAuthentication
	}
	return out, nil
}

// ChaCha20Poly1305 encrypts with the ChaCha20-Poly1305 AEAD and uses the
// auxiliary data as additional authenticated data.
//
// Payload: [nonce(12)][ciphertext][tag(16)]
type ChaCha20Poly1305 struct {
	key [KeySize]byte
}

// NewChaCha20Poly1305 creates a ChaCha20-Poly1305 agent.
func NewChaCha20Poly1305(key [KeySize]byte) *ChaCha20Poly1305 {
	return &ChaCha20Poly1305{key: key}
}

// Encrypt seals data under a fresh random nonce.
func (c *ChaCha20Poly1305) Encrypt(data, aux []byte) ([]byte, error) {
	aead, err := chacha20poly1305.New(c.key[:])
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(data)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}
	return aead.Seal(nonce, nonce, data, aux), nil
}

// Decrypt opens a payload produced by Encrypt with the same aux.
func (c *ChaCha20Poly1305) Decrypt(data, aux []byte) ([]byte, error) {
	aead, err := chacha20poly1305.New(c.key[:])
	if err != nil {
		return nil, err
	}
	if len(data) < aead.NonceSize()+aead.Overhead() {
		return nil, ErrShortCiphertext
	}
	n := aead.NonceSize()
	out, err := aead.Open(nil, data[:n], data[n:], aux)
	if err != nil {
		return nil, ErrAuthentication
	}
	return out, nil
}

// ParseKey decodes a hex-encoded 32-byte key.
func ParseKey(s string) ([KeySize]byte, error) {
	var k [KeySize]byte
	b, err := hex.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return k, fmt.Errorf("decode key: %w", err)
	}
	if len(b) != KeySize {
		return k, fmt.Errorf("key is %d bytes, expected %d", len(b), KeySize)
	}
	copy(k[:], b)
	return k, nil
}

// New creates an agent by kind name: "secretbox" or "chacha20poly1305".
func New(kind string, key [KeySize]byte) (id3v23.CryptoAgent, error) {
	switch kind {
	case "secretbox":
		return NewSecretbox(key), nil
	case "chacha20poly1305":
		return NewChaCha20Poly1305(key), nil
	default:
		return nil, fmt.Errorf("unknown agent kind %q", kind)
	}
}
