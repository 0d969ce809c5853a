package db

import (
	"context"
	"testing"
	"time"

	"github.com/consentvault/vault-service-backend/interfaces"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryDocumentRepo(t *testing.T) {
	repos := NewMemoryRepositories()
	ctx := context.Background()

	doc := interfaces.Document{
		ID:        interfaces.NewDocumentID(),
		Owner:     "alice",
		Address:   "addr-1",
		Digest:    []byte{1, 2, 3},
		CreatedAt: time.Now().UTC(),
	}

	require.NoError(t, repos.Documents.CreateDocument(ctx, doc))

	got, err := repos.Documents.GetDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, doc, got)

	_, err = repos.Documents.GetDocument(ctx, interfaces.NewDocumentID())
	assert.ErrorIs(t, err, interfaces.ErrNotFound)

	err = repos.Documents.CreateDocument(ctx, doc)
	assert.Error(t, err, "Duplicate document IDs must be rejected")
}

func TestMemoryShareRepo(t *testing.T) {
	repos := NewMemoryRepositories()
	ctx := context.Background()
	docID := interfaces.NewDocumentID()

	require.NoError(t, repos.Shares.CreateShare(ctx, docID, interfaces.RoleVerifier, []byte("s3")))
	require.NoError(t, repos.Shares.CreateShare(ctx, docID, interfaces.RoleUser, []byte("s1")))
	require.NoError(t, repos.Shares.CreateShare(ctx, docID, interfaces.RoleAuthority, []byte("s2")))

	err := repos.Shares.CreateShare(ctx, docID, interfaces.RoleUser, []byte("again"))
	assert.Error(t, err, "One share per document+role")

	shares, err := repos.Shares.ListShares(ctx, docID)
	require.NoError(t, err)
	require.Len(t, shares, 3)
	assert.Equal(t, interfaces.RoleAuthority, shares[0].Role, "Shares must be ordered by role")

	require.NoError(t, repos.Shares.DeleteShare(ctx, docID, interfaces.RoleAuthority))
	shares, err = repos.Shares.ListShares(ctx, docID)
	require.NoError(t, err)
	assert.Len(t, shares, 2)

	// Unknown document yields an empty slice, not an error.
	shares, err = repos.Shares.ListShares(ctx, interfaces.NewDocumentID())
	require.NoError(t, err)
	assert.Empty(t, shares)
}

func TestMemoryConsentRepo(t *testing.T) {
	repos := NewMemoryRepositories()
	ctx := context.Background()
	docID := interfaces.NewDocumentID()

	_, err := repos.Consents.GetConsent(ctx, "alice", docID)
	assert.ErrorIs(t, err, interfaces.ErrNotFound, "No record before the first upsert")

	require.NoError(t, repos.Consents.UpsertConsent(ctx, "alice", docID, true))
	record, err := repos.Consents.GetConsent(ctx, "alice", docID)
	require.NoError(t, err)
	assert.True(t, record.Granted)

	require.NoError(t, repos.Consents.UpsertConsent(ctx, "alice", docID, false))
	record, err = repos.Consents.GetConsent(ctx, "alice", docID)
	require.NoError(t, err)
	assert.False(t, record.Granted, "Upsert is last-writer-wins")
}
