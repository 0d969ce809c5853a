// Package vault implements the consent-gated document vault core: the
// share vault holding per-trustee key shares encrypted at rest, the
// consent gate, and the service orchestrating upload and retrieval.
//
// # Upload
//
// Plaintext is sealed under a fresh random key, the ciphertext is persisted
// in the content store, the key is split across the configured trustee
// roles and the document record is written last. No partial success is
// exposed: if any step fails the document never becomes visible, though an
// orphaned (inert, content-addressed) blob may remain in the content store.
//
// # Retrieve
//
// The consent gate is consulted first; without a granted record the
// operation fails before any share or ciphertext is touched. Shares are
// then loaded and recombined, the ciphertext is fetched and its digest
// verified against the document record, and the payload is decrypted. Key
// material lives only for the duration of the operation.
package vault
