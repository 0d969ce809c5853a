package interfaces

import "context"

// ShareVault persists one key share per trustee role per document, sealed
// at rest under a master key independent of every document key. A vault
// compromise alone does not leak raw shares.
type ShareVault interface {
	// Store seals and persists a share for a document and role.
	Store(ctx context.Context, id DocumentID, role TrusteeRole, share []byte) error

	// Load returns the unsealed shares for a document, ordered by role.
	// An unknown document yields an empty slice, not an error.
	Load(ctx context.Context, id DocumentID) ([]RoleShare, error)
}

// ConsentGate records and answers per (user, document) authorization.
// Reads are fail-closed: any error consulting the record is reported as
// not granted.
type ConsentGate interface {
	// Grant sets granted=true. Granting twice is a no-op.
	Grant(ctx context.Context, user UserID, id DocumentID) error

	// Revoke sets granted=false. Revoking a never-granted pair creates the
	// record with granted=false.
	Revoke(ctx context.Context, user UserID, id DocumentID) error

	// IsGranted reports whether consent is currently granted, defaulting to
	// false when no record exists.
	IsGranted(ctx context.Context, user UserID, id DocumentID) bool
}

// VaultService orchestrates encryption, key splitting, content storage and
// the consent gate.
type VaultService interface {
	// Upload encrypts plaintext under a fresh key, persists the ciphertext,
	// splits the key across the configured trustee roles and records the
	// document. No partial success is exposed: on failure the document is
	// not visible to callers.
	Upload(ctx context.Context, user UserID, plaintext []byte) (UploadResult, error)

	// Retrieve reconstructs the key from at least threshold shares and
	// decrypts the stored ciphertext, but only if consent is granted for
	// (user, id). Fails with ErrConsentDenied before touching shares or
	// ciphertext otherwise.
	Retrieve(ctx context.Context, user UserID, id DocumentID) ([]byte, error)
}
