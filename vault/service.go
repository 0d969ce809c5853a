package vault

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/consentvault/vault-service-backend/cryptoutils"
	"github.com/consentvault/vault-service-backend/interfaces"
	"github.com/consentvault/vault-service-backend/keysplit"
)

const (
	defaultRetryAttempts = 3
	defaultRetryBackoff  = 100 * time.Millisecond
)

// ServiceConfig carries the deployment-fixed vault parameters.
type ServiceConfig struct {
	// Roles is the trustee role set. One share is produced per role, so the
	// total share count equals len(Roles).
	Roles []interfaces.TrusteeRole

	// Threshold is the minimum number of shares needed to reconstruct a
	// document key.
	Threshold int

	// RetryAttempts and RetryBackoff bound retries of transient content
	// store failures. Zero values select defaults.
	RetryAttempts int
	RetryBackoff  time.Duration
}

// Service orchestrates encryption, content storage, key splitting and the
// consent gate. Every Upload and Retrieve is self-contained; the service
// holds no mutable state shared between concurrent calls.
type Service struct {
	store     interfaces.ContentStore
	shares    interfaces.ShareVault
	consent   interfaces.ConsentGate
	documents interfaces.DocumentRepository
	splitter  *keysplit.Splitter
	roles     []interfaces.TrusteeRole

	retryAttempts int
	retryBackoff  time.Duration
	log           *slog.Logger
}

// NewService wires the vault service. The role set and threshold are
// validated once here.
func NewService(
	cfg ServiceConfig,
	store interfaces.ContentStore,
	shares interfaces.ShareVault,
	consent interfaces.ConsentGate,
	documents interfaces.DocumentRepository,
	log *slog.Logger,
) (*Service, error) {
	if len(cfg.Roles) == 0 {
		return nil, errors.New("at least one trustee role is required")
	}
	seen := make(map[interfaces.TrusteeRole]struct{}, len(cfg.Roles))
	for _, role := range cfg.Roles {
		if _, dup := seen[role]; dup {
			return nil, fmt.Errorf("duplicate trustee role %q", role)
		}
		seen[role] = struct{}{}
	}

	splitter, err := keysplit.New(len(cfg.Roles), cfg.Threshold)
	if err != nil {
		return nil, err
	}

	attempts := cfg.RetryAttempts
	if attempts <= 0 {
		attempts = defaultRetryAttempts
	}
	backoff := cfg.RetryBackoff
	if backoff <= 0 {
		backoff = defaultRetryBackoff
	}

	return &Service{
		store:         store,
		shares:        shares,
		consent:       consent,
		documents:     documents,
		splitter:      splitter,
		roles:         cfg.Roles,
		retryAttempts: attempts,
		retryBackoff:  backoff,
		log:           log,
	}, nil
}

// Threshold returns the configured reconstruction threshold.
func (s *Service) Threshold() int { return s.splitter.Threshold() }

// Roles returns the configured trustee role set.
func (s *Service) Roles() []interfaces.TrusteeRole { return s.roles }

// Upload encrypts plaintext under a fresh key, stores the ciphertext,
// splits the key across the trustee roles and records the document. The
// document record is written last, so a cancelled or failed upload never
// leaves a partially-persisted document visible to other callers. A failed
// upload may leave an orphaned blob in the content store; the blob is
// content-addressed and inert.
func (s *Service) Upload(ctx context.Context, user interfaces.UserID, plaintext []byte) (interfaces.UploadResult, error) {
	id := interfaces.NewDocumentID()

	key, payload, err := cryptoutils.Encrypt(plaintext, id)
	if err != nil {
		return interfaces.UploadResult{}, fmt.Errorf("encryption failed: %w", err)
	}
	defer cryptoutils.WipeBytes(key)

	var address string
	err = s.withRetry(ctx, "content store put", func() error {
		var putErr error
		address, putErr = s.store.Put(ctx, payload)
		return putErr
	})
	if err != nil {
		return interfaces.UploadResult{}, err
	}

	digest := sha256.Sum256(payload)

	shares, err := s.splitter.Split(key)
	if err != nil {
		return interfaces.UploadResult{}, err
	}
	defer func() {
		for _, share := range shares {
			cryptoutils.WipeBytes(share)
		}
	}()

	for i, role := range s.roles {
		if err := s.shares.Store(ctx, id, role, shares[i]); err != nil {
			return interfaces.UploadResult{}, fmt.Errorf("failed to persist share for role %s: %w", role, err)
		}
	}

	doc := interfaces.Document{
		ID:        id,
		Owner:     user,
		Address:   address,
		Digest:    digest[:],
		CreatedAt: time.Now().UTC(),
	}
	if err := s.documents.CreateDocument(ctx, doc); err != nil {
		return interfaces.UploadResult{}, err
	}

	s.log.Info("Document uploaded",
		slog.String("document", id.String()),
		slog.String("user", user.String()),
		slog.String("address", address),
		slog.Int("size", len(payload)))

	return interfaces.UploadResult{DocumentID: id, Address: address}, nil
}

// Retrieve returns the decrypted document, but only when consent is
// granted for (user, id). The consent check runs first and short-circuits:
// no shares are loaded and no ciphertext is fetched on an unauthorized
// call.
func (s *Service) Retrieve(ctx context.Context, user interfaces.UserID, id interfaces.DocumentID) ([]byte, error) {
	if !s.consent.IsGranted(ctx, user, id) {
		return nil, fmt.Errorf("%w: user %s, document %s", interfaces.ErrConsentDenied, user, id)
	}

	doc, err := s.documents.GetDocument(ctx, id)
	if err != nil {
		return nil, err
	}

	roleShares, err := s.shares.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(roleShares) < s.splitter.Threshold() {
		return nil, fmt.Errorf("%w: have %d shares, need %d",
			interfaces.ErrInsufficientShares, len(roleShares), s.splitter.Threshold())
	}

	shares := make([][]byte, 0, len(roleShares))
	for _, rs := range roleShares {
		shares = append(shares, rs.Share)
	}

	key, err := s.splitter.Combine(shares)
	// The unsealed shares are not needed once the key is reconstructed.
	for _, share := range shares {
		cryptoutils.WipeBytes(share)
	}
	if err != nil {
		return nil, err
	}
	defer cryptoutils.WipeBytes(key)

	var payload []byte
	err = s.withRetry(ctx, "content store get", func() error {
		var getErr error
		payload, getErr = s.store.Get(ctx, doc.Address)
		return getErr
	})
	if err != nil {
		return nil, err
	}

	digest := sha256.Sum256(payload)
	if subtle.ConstantTimeCompare(digest[:], doc.Digest) != 1 {
		return nil, fmt.Errorf("%w: stored ciphertext digest mismatch for document %s",
			interfaces.ErrIntegrity, id)
	}

	plaintext, err := cryptoutils.Decrypt(payload, key, id)
	if err != nil {
		return nil, err
	}

	s.log.Info("Document retrieved",
		slog.String("document", id.String()),
		slog.String("user", user.String()))

	return plaintext, nil
}

// withRetry retries fn with bounded exponential backoff, but only for
// transient storage failures. Semantic failures (integrity, consent,
// missing content) pass through on the first attempt.
func (s *Service) withRetry(ctx context.Context, op string, fn func() error) error {
	backoff := s.retryBackoff
	var err error
	for attempt := 1; ; attempt++ {
		err = fn()
		if err == nil || !errors.Is(err, interfaces.ErrStoreUnavailable) {
			return err
		}
		if attempt >= s.retryAttempts {
			break
		}

		s.log.Warn("Transient storage failure, retrying",
			slog.String("op", op),
			slog.Int("attempt", attempt),
			"err", err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return fmt.Errorf("%w: %s failed after %d attempts: %v",
		interfaces.ErrStoreUnavailable, op, s.retryAttempts, err)
}
