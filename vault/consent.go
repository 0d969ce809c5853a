package vault

import (
	"context"
	"errors"
	"log/slog"

	"github.com/consentvault/vault-service-backend/interfaces"
)

// ConsentGate answers and records per (user, document) authorization on
// top of the consent repository. Reads are fail-closed: any error while
// consulting the record is treated as not granted.
type ConsentGate struct {
	consents interfaces.ConsentRepository
	log      *slog.Logger
}

// NewConsentGate creates a consent gate over the given repository.
func NewConsentGate(consents interfaces.ConsentRepository, log *slog.Logger) *ConsentGate {
	return &ConsentGate{consents: consents, log: log}
}

// Grant sets granted=true for the pair. Granting twice is a no-op.
func (g *ConsentGate) Grant(ctx context.Context, user interfaces.UserID, id interfaces.DocumentID) error {
	if err := g.consents.UpsertConsent(ctx, user, id, true); err != nil {
		return err
	}
	g.log.Info("Consent granted",
		slog.String("user", user.String()),
		slog.String("document", id.String()))
	return nil
}

// Revoke sets granted=false. Revoking a never-granted pair creates the
// record with granted=false.
func (g *ConsentGate) Revoke(ctx context.Context, user interfaces.UserID, id interfaces.DocumentID) error {
	if err := g.consents.UpsertConsent(ctx, user, id, false); err != nil {
		return err
	}
	g.log.Info("Consent revoked",
		slog.String("user", user.String()),
		slog.String("document", id.String()))
	return nil
}

// IsGranted reports whether consent is currently granted. A missing record
// and any read error both report false.
func (g *ConsentGate) IsGranted(ctx context.Context, user interfaces.UserID, id interfaces.DocumentID) bool {
	record, err := g.consents.GetConsent(ctx, user, id)
	if errors.Is(err, interfaces.ErrNotFound) {
		return false
	}
	if err != nil {
		g.log.Warn("Consent read failed, treating as not granted",
			slog.String("user", user.String()),
			slog.String("document", id.String()),
			"err", err)
		return false
	}
	return record.Granted
}
