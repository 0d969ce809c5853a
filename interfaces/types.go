package interfaces

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// KeySize is the length in bytes of every document encryption key.
// All keys in the system are AES-256 keys; the size never varies per call.
const KeySize = 32

// DocumentID uniquely identifies an uploaded document. A new ID is minted
// for every upload; documents are never updated in place.
type DocumentID string

// NewDocumentID mints a fresh random document identifier.
func NewDocumentID() DocumentID {
	return DocumentID(uuid.Must(uuid.NewRandom()).String())
}

// ParseDocumentID validates a document identifier received from a caller.
func ParseDocumentID(s string) (DocumentID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return "", fmt.Errorf("invalid document id %q: %w", s, err)
	}
	return DocumentID(id.String()), nil
}

func (id DocumentID) String() string {
	return string(id)
}

// UserID identifies the authenticated owner of a document or consent record.
// The value is supplied by the external identity provider and trusted as given.
type UserID string

func (id UserID) String() string {
	return string(id)
}

// TrusteeRole names one of the fixed parties eligible to hold a key share.
type TrusteeRole string

const (
	// RoleUser is the document owner's own share.
	RoleUser TrusteeRole = "user"
	// RoleAuthority is the share held by the government authority.
	RoleAuthority TrusteeRole = "authority"
	// RoleVerifier is the share held by the independent verifier.
	RoleVerifier TrusteeRole = "verifier"
)

// DefaultTrusteeRoles is the deployment default role set. The number of
// shares produced at upload always equals the number of configured roles.
var DefaultTrusteeRoles = []TrusteeRole{RoleUser, RoleAuthority, RoleVerifier}

// ParseTrusteeRole validates a role name from configuration.
func ParseTrusteeRole(s string) (TrusteeRole, error) {
	switch TrusteeRole(s) {
	case RoleUser, RoleAuthority, RoleVerifier:
		return TrusteeRole(s), nil
	default:
		return "", fmt.Errorf("unknown trustee role %q", s)
	}
}

// Document is the immutable record created at upload time. Address and
// Digest always refer to the exact ciphertext bytes held by the content
// store; neither changes after creation.
type Document struct {
	ID        DocumentID
	Owner     UserID
	Address   string
	Digest    []byte
	CreatedAt time.Time
}

// RoleShare pairs a trustee role with its (decrypted) key share.
type RoleShare struct {
	Role  TrusteeRole
	Share []byte
}

// ConsentRecord is the per (user, document) authorization flag. Absence of
// a record is equivalent to granted=false.
type ConsentRecord struct {
	User      UserID
	Document  DocumentID
	Granted   bool
	UpdatedAt time.Time
}

// UploadResult is returned to the caller after a successful upload.
type UploadResult struct {
	DocumentID DocumentID
	Address    string
}

// ValidateSplitParams checks a (total, threshold) deployment configuration.
// The underlying sharing scheme requires a threshold of at least two.
func ValidateSplitParams(total, threshold int) error {
	if threshold < 2 {
		return errors.New("threshold must be at least 2")
	}
	if total < threshold {
		return errors.New("total shares must be at least equal to threshold")
	}
	if total > 255 {
		return errors.New("total shares must not exceed 255")
	}
	return nil
}
