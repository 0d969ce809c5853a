// Package keysplit wraps Shamir secret sharing for document keys.
//
// A key split into total shares can be reconstructed from any threshold of
// them, supplied in any order; threshold-1 shares carry zero information
// about the key. Shares are opaque tokens owned by this package.
package keysplit

import (
	"fmt"

	"github.com/consentvault/vault-service-backend/interfaces"
	"github.com/hashicorp/vault/shamir"
)

// Splitter performs (threshold, total) secret sharing with fixed
// deployment-wide parameters.
type Splitter struct {
	total     int
	threshold int
}

// New creates a Splitter. Parameters are validated once here; every Split
// call uses the same (total, threshold) pair.
func New(total, threshold int) (*Splitter, error) {
	if err := interfaces.ValidateSplitParams(total, threshold); err != nil {
		return nil, err
	}
	return &Splitter{total: total, threshold: threshold}, nil
}

// Total returns the number of shares produced by Split.
func (s *Splitter) Total() int { return s.total }

// Threshold returns the minimum number of distinct shares Combine accepts.
func (s *Splitter) Threshold() int { return s.threshold }

// Split divides key material into total shares. Any threshold-sized subset
// reconstructs the exact original bytes.
func (s *Splitter) Split(key []byte) ([][]byte, error) {
	if len(key) != interfaces.KeySize {
		return nil, fmt.Errorf("key must be %d bytes, got %d", interfaces.KeySize, len(key))
	}

	shares, err := shamir.Split(key, s.total, s.threshold)
	if err != nil {
		return nil, fmt.Errorf("failed to split key: %w", err)
	}
	return shares, nil
}

// Combine reconstructs the key from shares. Shares may arrive in any order
// and from any threshold-sized subset of the originals. Fewer than
// threshold distinct shares fail with ErrInsufficientShares; malformed or
// inconsistent shares fail with ErrReconstruction.
//
// The underlying scheme cannot itself detect an undersized share set (it
// would silently interpolate a wrong value), so the distinct-share count is
// enforced here before combining.
func (s *Splitter) Combine(shares [][]byte) ([]byte, error) {
	distinct := make(map[byte]struct{}, len(shares))
	for _, share := range shares {
		if len(share) != interfaces.KeySize+1 {
			return nil, fmt.Errorf("%w: malformed share of length %d", interfaces.ErrReconstruction, len(share))
		}
		// The final byte is the share's x-coordinate.
		distinct[share[len(share)-1]] = struct{}{}
	}

	if len(distinct) < s.threshold {
		return nil, fmt.Errorf("%w: have %d distinct shares, need %d",
			interfaces.ErrInsufficientShares, len(distinct), s.threshold)
	}

	key, err := shamir.Combine(shares)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", interfaces.ErrReconstruction, err)
	}
	return key, nil
}
