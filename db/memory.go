package db

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/consentvault/vault-service-backend/interfaces"
)

// NewMemoryRepositories creates in-process repositories with the same
// semantics as the GORM implementations. Used in tests and when the server
// runs without a database DSN.
func NewMemoryRepositories() *Repositories {
	return &Repositories{
		Documents: &memDocumentRepo{docs: make(map[interfaces.DocumentID]interfaces.Document)},
		Shares:    &memShareRepo{shares: make(map[interfaces.DocumentID]map[interfaces.TrusteeRole][]byte)},
		Consents:  &memConsentRepo{records: make(map[consentKey]interfaces.ConsentRecord)},
	}
}

type memDocumentRepo struct {
	mu   sync.RWMutex
	docs map[interfaces.DocumentID]interfaces.Document
}

func (r *memDocumentRepo) CreateDocument(ctx context.Context, doc interfaces.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.docs[doc.ID]; exists {
		return fmt.Errorf("%w: duplicate document id %s", interfaces.ErrStoreUnavailable, doc.ID)
	}
	r.docs[doc.ID] = doc
	return nil
}

func (r *memDocumentRepo) GetDocument(ctx context.Context, id interfaces.DocumentID) (interfaces.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	doc, ok := r.docs[id]
	if !ok {
		return interfaces.Document{}, interfaces.ErrNotFound
	}
	return doc, nil
}

type memShareRepo struct {
	mu     sync.RWMutex
	shares map[interfaces.DocumentID]map[interfaces.TrusteeRole][]byte
}

func (r *memShareRepo) CreateShare(ctx context.Context, id interfaces.DocumentID, role interfaces.TrusteeRole, encrypted []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	byRole, ok := r.shares[id]
	if !ok {
		byRole = make(map[interfaces.TrusteeRole][]byte)
		r.shares[id] = byRole
	}
	if _, exists := byRole[role]; exists {
		return fmt.Errorf("%w: duplicate share for document %s role %s", interfaces.ErrStoreUnavailable, id, role)
	}
	stored := make([]byte, len(encrypted))
	copy(stored, encrypted)
	byRole[role] = stored
	return nil
}

func (r *memShareRepo) ListShares(ctx context.Context, id interfaces.DocumentID) ([]interfaces.RoleShare, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	byRole := r.shares[id]
	shares := make([]interfaces.RoleShare, 0, len(byRole))
	for role, share := range byRole {
		shares = append(shares, interfaces.RoleShare{Role: role, Share: share})
	}
	sort.Slice(shares, func(i, j int) bool { return shares[i].Role < shares[j].Role })
	return shares, nil
}

func (r *memShareRepo) DeleteShare(ctx context.Context, id interfaces.DocumentID, role interfaces.TrusteeRole) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if byRole, ok := r.shares[id]; ok {
		delete(byRole, role)
	}
	return nil
}

type consentKey struct {
	user interfaces.UserID
	doc  interfaces.DocumentID
}

type memConsentRepo struct {
	mu      sync.RWMutex
	records map[consentKey]interfaces.ConsentRecord
}

func (r *memConsentRepo) UpsertConsent(ctx context.Context, user interfaces.UserID, id interfaces.DocumentID, granted bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[consentKey{user, id}] = interfaces.ConsentRecord{
		User:      user,
		Document:  id,
		Granted:   granted,
		UpdatedAt: time.Now().UTC(),
	}
	return nil
}

func (r *memConsentRepo) GetConsent(ctx context.Context, user interfaces.UserID, id interfaces.DocumentID) (interfaces.ConsentRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	record, ok := r.records[consentKey{user, id}]
	if !ok {
		return interfaces.ConsentRecord{}, interfaces.ErrNotFound
	}
	return record, nil
}
