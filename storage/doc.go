// Package storage provides content-addressed stores for ciphertext blobs.
//
// Backends are selected by URI:
//
//   - memory:// - in-process store for tests and development
//   - file:///var/lib/vault/blobs - local filesystem
//   - s3://bucket/prefix?region=eu-west-1 - Amazon S3 or compatible
//   - ipfs://127.0.0.1:5001 - IPFS node
//
// The file, memory and S3 backends address content by the SHA-256 hex of
// the stored bytes; the IPFS backend returns the CID minted by the node.
// Either way the address is a deterministic function of content: storing
// identical bytes twice yields the same address. Callers treat the address
// as an opaque stable string.
package storage
