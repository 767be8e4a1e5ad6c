package crypt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	key, err := CreateKey()
	require.NoError(t, err)
	require.Len(t, key, 32)

	enc, err := New(key)
	require.NoError(t, err)

	plaintext := []byte("queue payload with secrets in it")
	ciphertext, err := enc.Encrypt(plaintext)
	require.NoError(t, err)
	assert.NotEqual(t, plaintext, ciphertext)

	back, err := enc.Decrypt(ciphertext)
	require.NoError(t, err)
	assert.Equal(t, plaintext, back)
}

func TestNonceVariesPerEncryption(t *testing.T) {
	enc, err := NewFromPassword("hunter2")
	require.NoError(t, err)

	a, err := enc.Encrypt([]byte("same input"))
	require.NoError(t, err)
	b, err := enc.Encrypt([]byte("same input"))
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestWrongKeyFails(t *testing.T) {
	enc1, err := NewFromPassword("password-one")
	require.NoError(t, err)
	enc2, err := NewFromPassword("password-two")
	require.NoError(t, err)

	ciphertext, err := enc1.Encrypt([]byte("data"))
	require.NoError(t, err)

	_, err = enc2.Decrypt(ciphertext)
	assert.Error(t, err)
}

func TestBadKeyLength(t *testing.T) {
	_, err := New([]byte("short"))
	assert.Error(t, err)
}

func TestEmptyInputs(t *testing.T) {
	enc, err := NewFromPassword("pw")
	require.NoError(t, err)

	_, err = enc.Encrypt(nil)
	assert.Error(t, err)
	_, err = enc.Decrypt(nil)
	assert.Error(t, err)
	_, err = enc.Decrypt([]byte{1, 2, 3})
	assert.Error(t, err, "shorter than a nonce")
}

func TestEmptyPassword(t *testing.T) {
	_, err := NewFromPassword("")
	assert.Error(t, err)
}
