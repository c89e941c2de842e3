// Package secretstream implements the authenticated-encryption envelope
// used for every object the gateway persists: a fixed-size random header
// followed by a single XChaCha20-Poly1305 chunk covering the whole
// payload. The header doubles as the AEAD nonce, so the envelope is the
// exact byte layout stored — no extra framing.
package secretstream

import (
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

const (
	// KeyLen is the symmetric key size
	KeyLen = chacha20poly1305.KeySize
	// HeaderLen is the fixed envelope header size
	HeaderLen = chacha20poly1305.NonceSizeX
	// TagLen is the authentication tag size appended to the chunk
	TagLen = chacha20poly1305.Overhead
)

var (
	// ErrMalformedEnvelope indicates the envelope is too short to even
	// contain a header and tag. Rejected before any AEAD work.
	ErrMalformedEnvelope = errors.New("secretstream: malformed envelope")

	// ErrDecryptionFailed indicates authentication failed: corrupted
	// ciphertext, truncated data, or the wrong key.
	ErrDecryptionFailed = errors.New("secretstream: decryption failed")
)

// Encryptor holds the push side of the stream state
type Encryptor struct {
	aead   cipher.AEAD
	header []byte
	done   bool
}

// NewEncryptor initializes push state with a fresh random header
func NewEncryptor(key []byte) (*Encryptor, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("secretstream: invalid key: %w", err)
	}

	header := make([]byte, HeaderLen)
	if _, err := rand.Read(header); err != nil {
		return nil, fmt.Errorf("secretstream: header generation failed: %w", err)
	}

	return &Encryptor{aead: aead, header: header}, nil
}

// Header returns the envelope header produced at init
func (e *Encryptor) Header() []byte {
	return e.header
}

// Push seals the final (and only) chunk of the stream
func (e *Encryptor) Push(plaintext []byte) ([]byte, error) {
	if e.done {
		return nil, errors.New("secretstream: stream already finalized")
	}
	e.done = true
	return e.aead.Seal(nil, e.header, plaintext, nil), nil
}

// Decryptor holds the pull side of the stream state
type Decryptor struct {
	aead   cipher.AEAD
	header []byte
}

// NewDecryptor initializes pull state from a received header
func NewDecryptor(key, header []byte) (*Decryptor, error) {
	if len(header) != HeaderLen {
		return nil, ErrMalformedEnvelope
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("secretstream: invalid key: %w", err)
	}
	return &Decryptor{aead: aead, header: header}, nil
}

// Pull opens the final chunk. A tag mismatch is a hard failure; altered
// plaintext is never returned.
func (d *Decryptor) Pull(ciphertext []byte) ([]byte, error) {
	if len(ciphertext) < TagLen {
		return nil, ErrMalformedEnvelope
	}
	plaintext, err := d.aead.Open(nil, d.header, ciphertext, nil)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	return plaintext, nil
}

// Seal encrypts plaintext into a self-contained envelope: header || chunk
func Seal(key, plaintext []byte) ([]byte, error) {
	enc, err := NewEncryptor(key)
	if err != nil {
		return nil, err
	}
	chunk, err := enc.Push(plaintext)
	if err != nil {
		return nil, err
	}

	envelope := make([]byte, 0, HeaderLen+len(chunk))
	envelope = append(envelope, enc.Header()...)
	envelope = append(envelope, chunk...)
	return envelope, nil
}

// Open decrypts an envelope produced by Seal
func Open(key, envelope []byte) ([]byte, error) {
	if len(envelope) < HeaderLen+TagLen {
		return nil, ErrMalformedEnvelope
	}
	dec, err := NewDecryptor(key, envelope[:HeaderLen])
	if err != nil {
		return nil, err
	}
	return dec.Pull(envelope[HeaderLen:])
}
