package interfaces

import "errors"

var (
	// ErrIntegrity is returned when an authentication tag or a stored
	// ciphertext digest does not verify. It signals possible tampering or
	// corruption and is never retried.
	ErrIntegrity = errors.New("integrity check failed")

	// ErrInsufficientShares is returned when fewer than threshold distinct
	// key shares are available for reconstruction.
	ErrInsufficientShares = errors.New("not enough key shares to reconstruct")

	// ErrReconstruction is returned when shares are malformed or mutually
	// inconsistent and the key cannot be recombined.
	ErrReconstruction = errors.New("key share reconstruction failed")

	// ErrConsentDenied is returned when no granted consent record exists for
	// the (user, document) pair. Surfaced distinctly from
	// ErrInsufficientShares so callers can tell "not authorized" from
	// "data unavailable".
	ErrConsentDenied = errors.New("consent not granted")

	// ErrNotFound is returned for an unknown document identifier.
	ErrNotFound = errors.New("document not found")

	// ErrContentNotFound is returned when no blob exists at the requested
	// content address.
	ErrContentNotFound = errors.New("content not found")

	// ErrStoreUnavailable is returned when a storage collaborator is not
	// accessible, including after bounded retries are exhausted.
	ErrStoreUnavailable = errors.New("storage unavailable")
)
