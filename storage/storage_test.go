package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"log/slog"
	"testing"

	"github.com/consentvault/vault-service-backend/interfaces"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestMemoryStore_PutGet(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	data := []byte("ciphertext blob")
	address, err := store.Put(ctx, data)
	require.NoError(t, err, "Put should succeed")

	expected := sha256.Sum256(data)
	assert.Equal(t, hex.EncodeToString(expected[:]), address, "Address must be the SHA-256 of the content")

	fetched, err := store.Get(ctx, address)
	require.NoError(t, err, "Get should succeed")
	assert.Equal(t, data, fetched)
}

func TestMemoryStore_ContentAddressingDeterministic(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	a1, err := store.Put(ctx, []byte("same bytes"))
	require.NoError(t, err)
	a2, err := store.Put(ctx, []byte("same bytes"))
	require.NoError(t, err)

	assert.Equal(t, a1, a2, "Identical content must yield identical addresses")
	assert.Equal(t, 1, store.Len(), "Identical content stores a single blob")
}

func TestMemoryStore_GetUnknown(t *testing.T) {
	store := NewMemoryStore()

	_, err := store.Get(context.Background(), "deadbeef")
	assert.ErrorIs(t, err, interfaces.ErrContentNotFound)
}

func TestFileStore_PutGet(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), testLogger())
	require.NoError(t, err, "NewFileStore should succeed")
	ctx := context.Background()

	data := []byte("file-backed blob")
	address, err := store.Put(ctx, data)
	require.NoError(t, err)

	fetched, err := store.Get(ctx, address)
	require.NoError(t, err)
	assert.Equal(t, data, fetched)

	assert.True(t, store.Available(ctx), "File store should be available")
}

func TestFileStore_GetUnknown(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), testLogger())
	require.NoError(t, err)

	missing := sha256.Sum256([]byte("never stored"))
	_, err = store.Get(context.Background(), hex.EncodeToString(missing[:]))
	assert.ErrorIs(t, err, interfaces.ErrContentNotFound)
}

func TestFileStore_RejectsTraversalAddress(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), testLogger())
	require.NoError(t, err)

	_, err = store.Get(context.Background(), "../../etc/passwd")
	assert.ErrorIs(t, err, interfaces.ErrContentNotFound, "Non-hex addresses must not touch the filesystem")
}

func TestFactory_SchemeSelection(t *testing.T) {
	factory := NewFactory(testLogger())

	store, err := factory.ContentStoreFor("memory://")
	require.NoError(t, err)
	assert.Equal(t, "memory", store.Name())

	store, err = factory.ContentStoreFor("file://" + t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, store.Name(), "file-")

	store, err = factory.ContentStoreFor("ipfs://127.0.0.1:5001")
	require.NoError(t, err)
	assert.Equal(t, "ipfs-127.0.0.1-5001", store.Name())

	store, err = factory.ContentStoreFor("s3://my-bucket/blobs?region=eu-west-1")
	require.NoError(t, err)
	assert.Equal(t, "s3-my-bucket", store.Name())

	_, err = factory.ContentStoreFor("gopher://unsupported")
	assert.Error(t, err, "Unsupported schemes should be rejected")
}
