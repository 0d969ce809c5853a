package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/consentvault/vault-service-backend/interfaces"
)

// FileStore implements a content store on the local file system. Blobs are
// stored under their SHA-256 hex address inside the base directory.
type FileStore struct {
	baseDir     string
	log         *slog.Logger
	locationURI string
}

// NewFileStore creates a file-backed content store rooted at baseDir,
// creating the directory if needed.
func NewFileStore(baseDir string, log *slog.Logger) (*FileStore, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	return &FileStore{
		baseDir:     baseDir,
		log:         log,
		locationURI: fmt.Sprintf("file://%s", baseDir),
	}, nil
}

// Put writes data to a file named by its SHA-256 hex digest and returns
// that digest as the content address.
func (s *FileStore) Put(ctx context.Context, data []byte) (string, error) {
	hash := sha256.Sum256(data)
	address := hex.EncodeToString(hash[:])
	path := filepath.Join(s.baseDir, address)

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("%w: failed to write blob: %v", interfaces.ErrStoreUnavailable, err)
	}

	s.log.Debug("Stored blob in file store",
		slog.String("path", path),
		slog.Int("size", len(data)))

	return address, nil
}

// Get reads the blob at the given address. Returns ErrContentNotFound if no
// file exists for the address.
func (s *FileStore) Get(ctx context.Context, address string) ([]byte, error) {
	if !validHexAddress(address) {
		return nil, interfaces.ErrContentNotFound
	}
	path := filepath.Join(s.baseDir, address)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, interfaces.ErrContentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read blob: %v", interfaces.ErrStoreUnavailable, err)
	}

	s.log.Debug("Fetched blob from file store",
		slog.String("path", path),
		slog.Int("size", len(data)))

	return data, nil
}

// Available checks the base directory still exists.
func (s *FileStore) Available(ctx context.Context) bool {
	_, err := os.Stat(s.baseDir)
	return err == nil
}

// Name returns a unique identifier for this storage backend.
func (s *FileStore) Name() string {
	return fmt.Sprintf("file-%s", filepath.Base(s.baseDir))
}

// LocationURI returns the URI that identifies this storage backend.
func (s *FileStore) LocationURI() string {
	return s.locationURI
}

// validHexAddress rejects addresses that could escape the base directory.
func validHexAddress(address string) bool {
	if len(address) != sha256.Size*2 {
		return false
	}
	_, err := hex.DecodeString(address)
	return err == nil
}
