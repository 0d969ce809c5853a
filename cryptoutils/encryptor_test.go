package cryptoutils

import (
	"bytes"
	"crypto/rand"
	"testing"

	"github.com/consentvault/vault-service-backend/interfaces"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	docID := interfaces.NewDocumentID()

	cases := [][]byte{
		[]byte("hello-world"),
		{},
		{0x00},
		bytes.Repeat([]byte{0xff}, 1<<16),
	}

	for _, plaintext := range cases {
		key, payload, err := Encrypt(plaintext, docID)
		require.NoError(t, err, "Encrypt should succeed")
		require.Len(t, key, interfaces.KeySize, "Key should be 32 bytes")
		require.GreaterOrEqual(t, len(payload), NonceSize+TagSize, "Payload should carry nonce and tag")

		decrypted, err := Decrypt(payload, key, docID)
		require.NoError(t, err, "Decrypt should succeed")
		assert.Equal(t, plaintext, decrypted, "Round trip should return the exact plaintext")
	}
}

func TestEncrypt_FreshKeyAndNonce(t *testing.T) {
	docID := interfaces.NewDocumentID()
	plaintext := []byte("same plaintext")

	key1, payload1, err := Encrypt(plaintext, docID)
	require.NoError(t, err)
	key2, payload2, err := Encrypt(plaintext, docID)
	require.NoError(t, err)

	assert.NotEqual(t, key1, key2, "Every call must use a fresh random key")
	assert.NotEqual(t, payload1[:NonceSize], payload2[:NonceSize], "Every call must use a fresh random nonce")
}

func TestDecrypt_TamperDetection(t *testing.T) {
	docID := interfaces.NewDocumentID()
	key, payload, err := Encrypt([]byte("sensitive document"), docID)
	require.NoError(t, err)

	// Flip a single bit at every position in turn: nonce, tag and ciphertext
	// regions must all be covered by authentication.
	for i := range payload {
		tampered := make([]byte, len(payload))
		copy(tampered, payload)
		tampered[i] ^= 0x01

		data, err := Decrypt(tampered, key, docID)
		assert.ErrorIs(t, err, interfaces.ErrIntegrity, "Bit flip at offset %d should fail integrity check", i)
		assert.Nil(t, data, "No data may be returned on tag failure")
	}
}

func TestDecrypt_WrongDocumentID(t *testing.T) {
	docID := interfaces.NewDocumentID()
	key, payload, err := Encrypt([]byte("bound to one document"), docID)
	require.NoError(t, err)

	_, err = Decrypt(payload, key, interfaces.NewDocumentID())
	assert.ErrorIs(t, err, interfaces.ErrIntegrity, "Payload swapped between documents should not decrypt")
}

func TestDecrypt_WrongKey(t *testing.T) {
	docID := interfaces.NewDocumentID()
	_, payload, err := Encrypt([]byte("secret"), docID)
	require.NoError(t, err)

	wrongKey := make([]byte, interfaces.KeySize)
	_, err = rand.Read(wrongKey)
	require.NoError(t, err)

	_, err = Decrypt(payload, wrongKey, docID)
	assert.ErrorIs(t, err, interfaces.ErrIntegrity)
}

func TestDecrypt_TruncatedPayload(t *testing.T) {
	key := make([]byte, interfaces.KeySize)
	_, err := Decrypt([]byte("short"), key, interfaces.NewDocumentID())
	assert.ErrorIs(t, err, interfaces.ErrIntegrity)
}
