package cryptoutils

import (
	"crypto/rand"
	"fmt"
	"io"

	"github.com/consentvault/vault-service-backend/interfaces"
)

// Seal encrypts data under key with a fresh random nonce, binding aad.
// Output layout is nonce || ciphertext+tag. Used for sealing key shares at
// rest; the document payload format lives in Encrypt/Decrypt.
func Seal(key, data, aad []byte) ([]byte, error) {
	aesGCM, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, NonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	return aesGCM.Seal(nonce, nonce, data, aad), nil
}

// Open decrypts a blob produced by Seal. Fails with ErrIntegrity on any
// tag mismatch.
func Open(key, sealed, aad []byte) ([]byte, error) {
	if len(sealed) < NonceSize+TagSize {
		return nil, fmt.Errorf("%w: sealed blob too short", interfaces.ErrIntegrity)
	}

	aesGCM, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	data, err := aesGCM.Open(nil, sealed[:NonceSize], sealed[NonceSize:], aad)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", interfaces.ErrIntegrity, err)
	}
	return data, nil
}
