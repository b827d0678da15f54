package common

import (
	"encoding/hex"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_KindAndCause(t *testing.T) {
	cause := errors.New("disk full")
	err := Persistence("error adding article", cause)

	assert.ErrorIs(t, err, ErrorPersistence)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "error adding article: disk full", err.Error())

	wrapped := fmt.Errorf("outer: %w", Invariant("There must be at least one admin in the group."))
	assert.ErrorIs(t, wrapped, ErrorInvariant)
	assert.Equal(t, "There must be at least one admin in the group.", Message(wrapped))
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "", Message(nil))
	assert.Equal(t, "invalid id", Message(NotFound("invalid id")))
	assert.Equal(t, "Error: boom", Message(errors.New("boom")))
}

func TestConstructors_Kinds(t *testing.T) {
	tests := []struct {
		err  error
		kind error
	}{
		{Validation("v"), ErrorValidation},
		{NotFound("n"), ErrorNotFound},
		{AlreadyExists("a"), ErrorAlreadyExists},
		{Invariant("i"), ErrorInvariant},
	}
	for _, tt := range tests {
		assert.ErrorIs(t, tt.err, tt.kind)
	}
}

func TestShortCode(t *testing.T) {
	c := ShortCode(4)
	require.Len(t, c, 4)
	_, err := hex.DecodeString(c)
	assert.NoError(t, err)

	assert.Len(t, ShortCode(100), 32)
}

func TestGenerateRandByteArray(t *testing.T) {
	assert.Len(t, GenerateRandByteArray(16), 16)
	assert.Len(t, GenerateRandByteArray(0), 0)
}

func TestWipeByteArray(t *testing.T) {
	b := []byte("secret")
	WipeByteArray(b)
	assert.Equal(t, make([]byte, 6), b)

	WipeByteArray(nil)
}
