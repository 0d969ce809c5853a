package db

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/consentvault/vault-service-backend/interfaces"
)

// Repositories bundles the three GORM-backed repositories over one
// connection.
type Repositories struct {
	Documents interfaces.DocumentRepository
	Shares    interfaces.ShareRepository
	Consents  interfaces.ConsentRepository
}

// NewRepositories creates GORM implementations of the vault repositories.
func NewRepositories(gormDB *gorm.DB) *Repositories {
	return &Repositories{
		Documents: &documentRepo{db: gormDB},
		Shares:    &shareRepo{db: gormDB},
		Consents:  &consentRepo{db: gormDB},
	}
}

type documentRepo struct {
	db *gorm.DB
}

func (r *documentRepo) CreateDocument(ctx context.Context, doc interfaces.Document) error {
	row := DocumentRow{
		ID:        doc.ID.String(),
		OwnerID:   doc.Owner.String(),
		Address:   doc.Address,
		Digest:    doc.Digest,
		CreatedAt: doc.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("%w: failed to create document: %v", interfaces.ErrStoreUnavailable, err)
	}
	return nil
}

func (r *documentRepo) GetDocument(ctx context.Context, id interfaces.DocumentID) (interfaces.Document, error) {
	var row DocumentRow
	err := r.db.WithContext(ctx).First(&row, "id = ?", id.String()).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return interfaces.Document{}, interfaces.ErrNotFound
	}
	if err != nil {
		return interfaces.Document{}, fmt.Errorf("%w: failed to load document: %v", interfaces.ErrStoreUnavailable, err)
	}

	return interfaces.Document{
		ID:        interfaces.DocumentID(row.ID),
		Owner:     interfaces.UserID(row.OwnerID),
		Address:   row.Address,
		Digest:    row.Digest,
		CreatedAt: row.CreatedAt,
	}, nil
}

type shareRepo struct {
	db *gorm.DB
}

func (r *shareRepo) CreateShare(ctx context.Context, id interfaces.DocumentID, role interfaces.TrusteeRole, encrypted []byte) error {
	row := KeyShareRow{
		DocumentID:     id.String(),
		Role:           string(role),
		EncryptedShare: encrypted,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("%w: failed to create key share: %v", interfaces.ErrStoreUnavailable, err)
	}
	return nil
}

func (r *shareRepo) ListShares(ctx context.Context, id interfaces.DocumentID) ([]interfaces.RoleShare, error) {
	var rows []KeyShareRow
	err := r.db.WithContext(ctx).
		Where("document_id = ?", id.String()).
		Order("role").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list key shares: %v", interfaces.ErrStoreUnavailable, err)
	}

	shares := make([]interfaces.RoleShare, 0, len(rows))
	for _, row := range rows {
		shares = append(shares, interfaces.RoleShare{
			Role:  interfaces.TrusteeRole(row.Role),
			Share: row.EncryptedShare,
		})
	}
	return shares, nil
}

func (r *shareRepo) DeleteShare(ctx context.Context, id interfaces.DocumentID, role interfaces.TrusteeRole) error {
	err := r.db.WithContext(ctx).
		Where("document_id = ? AND role = ?", id.String(), string(role)).
		Delete(&KeyShareRow{}).Error
	if err != nil {
		return fmt.Errorf("%w: failed to delete key share: %v", interfaces.ErrStoreUnavailable, err)
	}
	return nil
}

type consentRepo struct {
	db *gorm.DB
}

func (r *consentRepo) UpsertConsent(ctx context.Context, user interfaces.UserID, id interfaces.DocumentID, granted bool) error {
	row := ConsentRow{
		UserID:     user.String(),
		DocumentID: id.String(),
		Granted:    granted,
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "document_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"granted", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("%w: failed to upsert consent: %v", interfaces.ErrStoreUnavailable, err)
	}
	return nil
}

func (r *consentRepo) GetConsent(ctx context.Context, user interfaces.UserID, id interfaces.DocumentID) (interfaces.ConsentRecord, error) {
	var row ConsentRow
	err := r.db.WithContext(ctx).
		First(&row, "user_id = ? AND document_id = ?", user.String(), id.String()).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return interfaces.ConsentRecord{}, interfaces.ErrNotFound
	}
	if err != nil {
		return interfaces.ConsentRecord{}, fmt.Errorf("%w: failed to load consent: %v", interfaces.ErrStoreUnavailable, err)
	}

	return interfaces.ConsentRecord{
		User:      interfaces.UserID(row.UserID),
		Document:  interfaces.DocumentID(row.DocumentID),
		Granted:   row.Granted,
		UpdatedAt: row.UpdatedAt,
	}, nil
}
