// Package cryptox holds the reversible article body transforms and the
// password hashers.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/helpkeeper/internal/common"
)

// Transform turns an article body into its stored form and back.
type Transform interface {
	Encode(plain string) (string, error)
	Decode(stored string) (string, error)
}

// Base64Transform is a plain reversible encoding. It hides nothing.
type Base64Transform struct{}

func (Base64Transform) Encode(plain string) (string, error) {
	return base64.StdEncoding.EncodeToString([]byte(plain)), nil
}

func (Base64Transform) Decode(stored string) (string, error) {
	b, err := base64.StdEncoding.DecodeString(stored)
	if err != nil {
		return "", fmt.Errorf("failed to decode body: %w", err)
	}
	return string(b), nil
}

// AESGCMTransform encrypts bodies with AES-GCM. The stored form is
// base64(nonce || ciphertext).
type AESGCMTransform struct {
	aead cipher.AEAD
}

// NewAESGCMTransform accepts a 16, 24 or 32 byte key.
func NewAESGCMTransform(key []byte) (*AESGCMTransform, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &AESGCMTransform{aead: aead}, nil
}

func (t *AESGCMTransform) Encode(plain string) (string, error) {
	nonce := common.GenerateRandByteArray(t.aead.NonceSize())
	sealed := t.aead.Seal(nonce, nonce, []byte(plain), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

func (t *AESGCMTransform) Decode(stored string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(stored)
	if err != nil {
		return "", fmt.Errorf("failed to decode body: %w", err)
	}
	n := t.aead.NonceSize()
	if len(raw) < n {
		return "", errors.New("failed to decode body: ciphertext too short")
	}
	plain, err := t.aead.Open(nil, raw[:n], raw[n:], nil)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt body: %w", err)
	}
	return string(plain), nil
}

// Transform names accepted by NewTransform.
const (
	TransformBase64 = "base64"
	TransformAESGCM = "aes-gcm"
)

// NewTransform builds the transform called name. hexKey is only used by aes-gcm.
func NewTransform(name, hexKey string) (Transform, error) {
	switch name {
	case TransformBase64, "":
		return Base64Transform{}, nil
	case TransformAESGCM:
		key, err := hex.DecodeString(hexKey)
		if err != nil {
			return nil, fmt.Errorf("invalid body key: %w", err)
		}
		return NewAESGCMTransform(key)
	default:
		return nil, fmt.Errorf("unknown body transform %q", name)
	}
}
