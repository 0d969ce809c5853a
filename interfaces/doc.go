// Package interfaces defines the core types and interfaces of the document
// vault, separating interface definitions from implementations.
//
// # Vault Interfaces
//
// ContentStore: content-addressed persistence for ciphertext blobs. The
// address is a deterministic function of the stored bytes and is treated as
// an opaque string by everything except the backend itself.
//
// ShareVault: per trustee role persistence of key shares, sealed at rest
// under a master key independent of every document key.
//
// ConsentGate: grant/revoke/check of per (user, document) authorization,
// consulted before any key reconstruction. Reads fail closed.
//
// VaultService: the orchestration of upload and consent-gated retrieval.
//
// # Repositories
//
// DocumentRepository, ShareRepository and ConsentRepository are the three
// logical tables of the persistence collaborator. The vault core assumes
// row-level atomicity per statement and read-your-writes consistency for a
// single document's own records, nothing more.
//
// # Error Kinds
//
// Failure classification is by sentinel error: ErrIntegrity,
// ErrInsufficientShares, ErrConsentDenied, ErrNotFound, ErrContentNotFound
// and ErrStoreUnavailable. Orchestration retries only transient storage
// failures; semantic failures are never retried.
package interfaces
