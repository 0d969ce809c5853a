package vault

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/consentvault/vault-service-backend/cryptoutils"
	"github.com/consentvault/vault-service-backend/interfaces"
)

// ShareVault persists key shares through the share repository, sealed with
// AES-256-GCM under a master key that is generated independently of every
// document key. A repository compromise alone does not expose raw shares.
type ShareVault struct {
	shares    interfaces.ShareRepository
	masterKey []byte
	log       *slog.Logger
}

// NewShareVault creates a share vault. The master key must be 32 bytes and
// must not be derived from any document key.
func NewShareVault(shares interfaces.ShareRepository, masterKey []byte, log *slog.Logger) (*ShareVault, error) {
	if len(masterKey) != interfaces.KeySize {
		return nil, errors.New("share vault master key must be 32 bytes")
	}

	key := make([]byte, len(masterKey))
	copy(key, masterKey)

	return &ShareVault{shares: shares, masterKey: key, log: log}, nil
}

// Store seals a share and persists it for the given document and role.
// The seal binds document ID and role so a sealed share cannot be moved
// between rows.
func (v *ShareVault) Store(ctx context.Context, id interfaces.DocumentID, role interfaces.TrusteeRole, share []byte) error {
	sealed, err := cryptoutils.Seal(v.masterKey, share, shareAAD(id, role))
	if err != nil {
		return fmt.Errorf("failed to seal share: %w", err)
	}

	if err := v.shares.CreateShare(ctx, id, role, sealed); err != nil {
		return err
	}

	v.log.Debug("Stored key share",
		slog.String("document", id.String()),
		slog.String("role", string(role)))
	return nil
}

// Load returns the unsealed shares for a document, ordered by role. An
// unknown document yields an empty slice. A share that fails to unseal is
// reported as an integrity failure rather than skipped.
func (v *ShareVault) Load(ctx context.Context, id interfaces.DocumentID) ([]interfaces.RoleShare, error) {
	rows, err := v.shares.ListShares(ctx, id)
	if err != nil {
		return nil, err
	}

	shares := make([]interfaces.RoleShare, 0, len(rows))
	for _, row := range rows {
		share, err := cryptoutils.Open(v.masterKey, row.Share, shareAAD(id, row.Role))
		if err != nil {
			return nil, fmt.Errorf("share for role %s: %w", row.Role, err)
		}
		shares = append(shares, interfaces.RoleShare{Role: row.Role, Share: share})
	}
	return shares, nil
}

func shareAAD(id interfaces.DocumentID, role interfaces.TrusteeRole) []byte {
	return []byte(id.String() + "/" + string(role))
}
