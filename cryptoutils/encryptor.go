package cryptoutils

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"github.com/consentvault/vault-service-backend/interfaces"
)

const (
	// NonceSize is the GCM nonce length. 12 bytes is standard for GCM.
	NonceSize = 12
	// TagSize is the GCM authentication tag length.
	TagSize = 16
)

// Encrypt seals plaintext under a freshly generated random 256-bit key with
// a freshly generated random nonce. The document identifier is bound as
// associated data so a payload cannot be replayed for a different document.
//
// The returned payload is self-describing with the fixed layout
//
//	nonce (12 bytes) || tag (16 bytes) || ciphertext
//
// so decryption needs only the payload and the key.
func Encrypt(plaintext []byte, docID interfaces.DocumentID) (key, payload []byte, err error) {
	key = make([]byte, interfaces.KeySize)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, nil, fmt.Errorf("failed to generate key: %w", err)
	}

	nonce := make([]byte, NonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	aesGCM, err := newGCM(key)
	if err != nil {
		return nil, nil, err
	}

	// Seal appends ciphertext||tag; reorder into nonce||tag||ciphertext.
	sealed := aesGCM.Seal(nil, nonce, plaintext, []byte(docID))
	ciphertext := sealed[:len(sealed)-TagSize]
	tag := sealed[len(sealed)-TagSize:]

	payload = make([]byte, 0, NonceSize+TagSize+len(ciphertext))
	payload = append(payload, nonce...)
	payload = append(payload, tag...)
	payload = append(payload, ciphertext...)

	return key, payload, nil
}

// Decrypt opens a payload produced by Encrypt. Any tag failure, including a
// single flipped bit anywhere in the payload, returns ErrIntegrity and no
// data.
func Decrypt(payload, key []byte, docID interfaces.DocumentID) ([]byte, error) {
	if len(payload) < NonceSize+TagSize {
		return nil, fmt.Errorf("%w: payload too short", interfaces.ErrIntegrity)
	}

	aesGCM, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce := payload[:NonceSize]
	tag := payload[NonceSize : NonceSize+TagSize]
	ciphertext := payload[NonceSize+TagSize:]

	sealed := make([]byte, 0, len(ciphertext)+TagSize)
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, tag...)

	plaintext, err := aesGCM.Open(nil, nonce, sealed, []byte(docID))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", interfaces.ErrIntegrity, err)
	}
	return plaintext, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	if len(key) != interfaces.KeySize {
		return nil, errors.New("key must be 32 bytes")
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	aesGCM, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return aesGCM, nil
}

// WipeBytes zeroes key material in place once it is no longer needed.
func WipeBytes(data []byte) {
	for i := range data {
		data[i] = 0
	}
}
