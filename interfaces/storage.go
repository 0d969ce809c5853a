package interfaces

import "context"

// ContentStore provides content-addressed persistence for ciphertext blobs.
// The address is a deterministic function of the stored bytes: identical
// payloads yield identical addresses. Callers treat addresses as opaque
// stable strings and never parse them.
type ContentStore interface {
	// Put persists data and returns its content address.
	Put(ctx context.Context, data []byte) (string, error)

	// Get retrieves data by content address.
	// Returns ErrContentNotFound if no blob exists at the address and
	// ErrStoreUnavailable if the backend is not accessible.
	Get(ctx context.Context, address string) ([]byte, error)

	// Available checks if the backend is accessible.
	Available(ctx context.Context) bool

	// Name returns an identifier for logging.
	Name() string

	// LocationURI returns the URI identifying this backend.
	LocationURI() string
}

// DocumentRepository persists Document records. Documents are written once
// and never updated.
type DocumentRepository interface {
	CreateDocument(ctx context.Context, doc Document) error
	// GetDocument returns ErrNotFound for an unknown identifier.
	GetDocument(ctx context.Context, id DocumentID) (Document, error)
}

// ShareRepository persists encrypted key shares, one row per document+role.
type ShareRepository interface {
	CreateShare(ctx context.Context, id DocumentID, role TrusteeRole, encrypted []byte) error
	// ListShares returns shares ordered by role name. An unknown document
	// yields an empty slice, not an error.
	ListShares(ctx context.Context, id DocumentID) ([]RoleShare, error)
	// DeleteShare removes a single share row. Used by maintenance tooling.
	DeleteShare(ctx context.Context, id DocumentID, role TrusteeRole) error
}

// ConsentRepository persists consent records, at most one per
// (user, document) pair. Upsert is last-writer-wins.
type ConsentRepository interface {
	UpsertConsent(ctx context.Context, user UserID, id DocumentID, granted bool) error
	// GetConsent returns ErrNotFound when no record exists.
	GetConsent(ctx context.Context, user UserID, id DocumentID) (ConsentRecord, error)
}
