package db

import "time"

// DocumentRow is the relational shape of a vault document. Rows are written
// once at upload and never updated.
type DocumentRow struct {
	ID        string    `gorm:"primaryKey;size:36"`
	OwnerID   string    `gorm:"index;not null"`
	Address   string    `gorm:"not null"`
	Digest    []byte    `gorm:"not null"`
	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP"`
}

func (DocumentRow) TableName() string { return "documents" }

// KeyShareRow holds one encrypted key share. The (document, role) pair is
// unique: a document has at most one share per trustee role.
type KeyShareRow struct {
	ID             uint      `gorm:"primaryKey"`
	DocumentID     string    `gorm:"size:36;not null;uniqueIndex:idx_share_doc_role"`
	Role           string    `gorm:"not null;uniqueIndex:idx_share_doc_role"`
	EncryptedShare []byte    `gorm:"not null"`
	CreatedAt      time.Time `gorm:"default:CURRENT_TIMESTAMP"`
}

func (KeyShareRow) TableName() string { return "key_shares" }

// ConsentRow is the single mutable table: at most one row per
// (user, document) pair, upserted last-writer-wins.
type ConsentRow struct {
	ID         uint      `gorm:"primaryKey"`
	UserID     string    `gorm:"not null;uniqueIndex:idx_consent_user_doc"`
	DocumentID string    `gorm:"size:36;not null;uniqueIndex:idx_consent_user_doc"`
	Granted    bool      `gorm:"not null;default:false"`
	UpdatedAt  time.Time
}

func (ConsentRow) TableName() string { return "consent_records" }
