package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"

	"github.com/consentvault/vault-service-backend/interfaces"
)

// MemoryStore is an in-process content store used in tests and in
// development mode. Safe for concurrent use.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemoryStore creates an empty in-memory content store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string][]byte)}
}

// Put stores data under its SHA-256 hex address.
func (s *MemoryStore) Put(ctx context.Context, data []byte) (string, error) {
	hash := sha256.Sum256(data)
	address := hex.EncodeToString(hash[:])

	stored := make([]byte, len(data))
	copy(stored, data)

	s.mu.Lock()
	s.blobs[address] = stored
	s.mu.Unlock()

	return address, nil
}

// Get retrieves data by address. Returns ErrContentNotFound for unknown
// addresses.
func (s *MemoryStore) Get(ctx context.Context, address string) ([]byte, error) {
	s.mu.RLock()
	data, ok := s.blobs[address]
	s.mu.RUnlock()

	if !ok {
		return nil, interfaces.ErrContentNotFound
	}

	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// Delete removes a blob. Used by tests to simulate blob loss.
func (s *MemoryStore) Delete(address string) {
	s.mu.Lock()
	delete(s.blobs, address)
	s.mu.Unlock()
}

// Len reports the number of stored blobs.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}

// Available always reports true for the in-memory store.
func (s *MemoryStore) Available(ctx context.Context) bool { return true }

// Name returns a unique identifier for this storage backend.
func (s *MemoryStore) Name() string { return "memory" }

// LocationURI returns the URI that identifies this storage backend.
func (s *MemoryStore) LocationURI() string { return "memory://" }
