// Package vault seals redaction mappings with AES-256-GCM so the
// token-to-value table can live on disk next to redacted text without
// exposing the originals.
package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/privata-io/privata/internal/cryptoutil"
)

var (
	// ErrInvalidKey is returned when the key is not exactly 32 bytes
	// (required for AES-256).
	ErrInvalidKey = errors.New("invalid vault key")
	// ErrCorruptEnvelope is returned when a sealed mapping cannot be
	// parsed or fails authentication.
	ErrCorruptEnvelope = errors.New("corrupt sealed mapping")
)

const envelopeVersion = 1

// envelope is the serialized form of a sealed mapping.
type envelope struct {
	Version    int    `json:"version"`
	Nonce      string `json:"nonce"`
	Ciphertext string `json:"ciphertext"`
}

// Vault encrypts and decrypts redaction mappings with a single symmetric
// key.
type Vault struct {
	gcm cipher.AEAD
}

// New creates a vault. The key must be exactly 32 raw bytes or 64 hex
// characters (decoded to 32 bytes for AES-256).
func New(key string) (*Vault, error) {
	keyBytes, err := resolveKey(key)
	if err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(keyBytes)
	if err != nil {
		return nil, fmt.Errorf("creating cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("creating GCM: %w", err)
	}
	return &Vault{gcm: gcm}, nil
}

func resolveKey(key string) ([]byte, error) {
	if len(key) == 64 && cryptoutil.IsHexString(key) {
		decoded, err := hex.DecodeString(key)
		if err != nil || len(decoded) != 32 {
			return nil, fmt.Errorf("vault key hex must decode to 32 bytes: %w", ErrInvalidKey)
		}
		return decoded, nil
	}
	if len(key) == 32 {
		return []byte(key), nil
	}
	return nil, fmt.Errorf("vault key must be 32 bytes or 64 hex characters (got %d): %w", len(key), ErrInvalidKey)
}

// SealMapping encrypts a token-to-value mapping into a JSON envelope.
func (v *Vault) SealMapping(mapping map[string]string) ([]byte, error) {
	plaintext, err := json.Marshal(mapping)
	if err != nil {
		return nil, fmt.Errorf("marshaling mapping: %w", err)
	}

	nonce := make([]byte, v.gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("generating nonce: %w", err)
	}

	ciphertext := v.gcm.Seal(nil, nonce, plaintext, nil)
	env := envelope{
		Version:    envelopeVersion,
		Nonce:      base64.StdEncoding.EncodeToString(nonce),
		Ciphertext: base64.StdEncoding.EncodeToString(ciphertext),
	}
	sealed, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("marshaling envelope: %w", err)
	}
	return sealed, nil
}

// OpenMapping decrypts a sealed envelope back into the mapping. A wrong
// key or tampered envelope yields ErrCorruptEnvelope.
func (v *Vault) OpenMapping(sealed []byte) (map[string]string, error) {
	var env envelope
	if err := json.Unmarshal(sealed, &env); err != nil {
		return nil, fmt.Errorf("parsing envelope: %w", ErrCorruptEnvelope)
	}
	if env.Version != envelopeVersion {
		return nil, fmt.Errorf("unsupported envelope version %d: %w", env.Version, ErrCorruptEnvelope)
	}

	nonce, err := base64.StdEncoding.DecodeString(env.Nonce)
	if err != nil || len(nonce) != v.gcm.NonceSize() {
		return nil, fmt.Errorf("decoding nonce: %w", ErrCorruptEnvelope)
	}
	ciphertext, err := base64.StdEncoding.DecodeString(env.Ciphertext)
	if err != nil {
		return nil, fmt.Errorf("decoding ciphertext: %w", ErrCorruptEnvelope)
	}

	plaintext, err := v.gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("decrypting mapping: %w", ErrCorruptEnvelope)
	}

	var mapping map[string]string
	if err := json.Unmarshal(plaintext, &mapping); err != nil {
		return nil, fmt.Errorf("parsing mapping: %w", ErrCorruptEnvelope)
	}
	return mapping, nil
}
