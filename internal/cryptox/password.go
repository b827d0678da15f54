package cryptox

import (
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/helpkeeper/internal/common"
	"golang.org/x/crypto/argon2"
)

// PasswordHasher turns passwords into their stored form and checks them.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(stored, password string) bool
}

// Argon2Hasher stores "argon2id$<salt>$<key>" with a random 16 byte salt.
type Argon2Hasher struct{}

const argon2Prefix = "argon2id"

func deriveKey(password, salt []byte) []byte {
	return argon2.IDKey(password, salt, 1, 64*1024, 4, 32)
}

func (Argon2Hasher) Hash(password string) (string, error) {
	salt := common.GenerateRandByteArray(16)
	key := deriveKey([]byte(password), salt)
	return strings.Join([]string{
		argon2Prefix,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	}, "$"), nil
}

func (Argon2Hasher) Verify(stored, password string) bool {
	parts := strings.Split(stored, "$")
	if len(parts) != 3 || parts[0] != argon2Prefix {
		return false
	}
	salt, err := base64.RawStdEncoding.DecodeString(parts[1])
	if err != nil {
		return false
	}
	want, err := base64.RawStdEncoding.DecodeString(parts[2])
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare(deriveKey([]byte(password), salt), want) == 1
}

// PlainHasher stores passwords as they are. Kept for installations that
// need to compare against existing plaintext data.
type PlainHasher struct{}

func (PlainHasher) Hash(password string) (string, error) {
	return password, nil
}

func (PlainHasher) Verify(stored, password string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(password)) == 1
}

// Hasher names accepted by NewPasswordHasher.
const (
	HasherArgon2 = "argon2id"
	HasherPlain  = "plain"
)

func NewPasswordHasher(name string) (PasswordHasher, error) {
	switch name {
	case HasherArgon2, "":
		return Argon2Hasher{}, nil
	case HasherPlain:
		return PlainHasher{}, nil
	default:
		return nil, fmt.Errorf("unknown password hashing %q", name)
	}
}
