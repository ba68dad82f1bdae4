package walletkey

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

const sealSalt = "hubsai/claim-wallet/v1"

var ErrSealedTooShort = errors.New("sealed value too short")

// Sealer encrypts wallet secrets with a per-user key derived from a master secret.
type Sealer struct {
	secret []byte
}

// NewSealer builds a Sealer for the given master secret.
func NewSealer(secret string) *Sealer {
	return &Sealer{secret: []byte(secret)}
}

func (s *Sealer) key(userID string) ([]byte, error) {
	r := hkdf.New(sha256.New, s.secret, []byte(sealSalt), []byte(userID))
	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, err
	}
	return key, nil
}

// Seal encrypts plaintext bound to userID and returns base64 of nonce||ciphertext.
func (s *Sealer) Seal(userID, plaintext string) (string, error) {
	key, err := s.key(userID)
	if err != nil {
		return "", fmt.Errorf("derive key: %w", err)
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return "", err
	}
	nonce := make([]byte, chacha20poly1305.NonceSizeX)
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	out := make([]byte, 0, len(nonce)+len(plaintext)+aead.Overhead())
	out = append(out, nonce...)
	out = append(out, aead.Seal(nil, nonce, []byte(plaintext), []byte(userID))...)
	return base64.StdEncoding.EncodeToString(out), nil
}

// Open reverses Seal. It fails when the value was sealed for another user.
func (s *Sealer) Open(userID, sealed string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil {
		return "", fmt.Errorf("decode sealed value: %w", err)
	}
	if len(raw) < chacha20poly1305.NonceSizeX {
		return "", ErrSealedTooShort
	}
	key, err := s.key(userID)
	if err != nil {
		return "", fmt.Errorf("derive key: %w", err)
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return "", err
	}
	nonce, ct := raw[:chacha20poly1305.NonceSizeX], raw[chacha20poly1305.NonceSizeX:]
	plain, err := aead.Open(nil, nonce, ct, []byte(userID))
	if err != nil {
		return "", fmt.Errorf("open sealed value: %w", err)
	}
	return string(plain), nil
}
