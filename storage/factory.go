package storage

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/consentvault/vault-service-backend/interfaces"
)

// Factory creates content stores from URI strings.
type Factory struct {
	log *slog.Logger
}

// NewFactory creates a factory producing content stores.
func NewFactory(log *slog.Logger) *Factory {
	return &Factory{log: log}
}

// ContentStoreFor creates a content store from a location URI.
//
// Supported schemes:
//   - memory:// - in-process store (tests, development)
//   - file://   - local filesystem storage
//   - s3://     - Amazon S3 or compatible object storage
//   - ipfs://   - IPFS node
//
// Returns an error if the URI is invalid or the scheme is unsupported.
func (f *Factory) ContentStoreFor(locationURI string) (interfaces.ContentStore, error) {
	u, err := url.Parse(locationURI)
	if err != nil {
		return nil, fmt.Errorf("invalid storage location URI %q: %w", locationURI, err)
	}

	switch strings.ToLower(u.Scheme) {
	case "memory":
		return NewMemoryStore(), nil
	case "file":
		return NewFileStore(u.Host+u.Path, f.log)
	case "ipfs":
		port := u.Port()
		if port == "" {
			port = "5001"
		}
		return NewIPFSStore(u.Hostname(), port, f.log)
	case "s3":
		q := u.Query()
		prefix := strings.TrimPrefix(u.Path, "/")
		var accessKey, secretKey string
		if u.User != nil {
			accessKey = u.User.Username()
			secretKey, _ = u.User.Password()
		}
		return NewS3Store(u.Host, prefix, q.Get("region"), q.Get("endpoint"), accessKey, secretKey, f.log)
	default:
		return nil, fmt.Errorf("unsupported storage scheme: %s", u.Scheme)
	}
}
