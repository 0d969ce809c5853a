package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/consentvault/vault-service-backend/interfaces"
	shell "github.com/ipfs/go-ipfs-api"
)

// IPFSStore implements a content store backed by an IPFS node. IPFS is
// natively content-addressed: the address returned by Put is the CID minted
// by the node, deterministic for identical bytes.
type IPFSStore struct {
	shell       *shell.Shell
	host        string
	port        string
	log         *slog.Logger
	locationURI string
}

// NewIPFSStore creates a content store connected to the IPFS API at
// host:port.
func NewIPFSStore(host, port string, log *slog.Logger) (*IPFSStore, error) {
	apiURL := fmt.Sprintf("%s:%s", host, port)

	return &IPFSStore{
		shell:       shell.NewShell(apiURL),
		host:        host,
		port:        port,
		log:         log,
		locationURI: fmt.Sprintf("ipfs://%s/", apiURL),
	}, nil
}

// Put adds data to IPFS (pinned) and returns the resulting CID.
// Returns ErrStoreUnavailable if the node is not accessible.
func (s *IPFSStore) Put(ctx context.Context, data []byte) (string, error) {
	start := time.Now()

	if !s.shell.IsUp() {
		s.log.Warn("IPFS node unavailable",
			slog.String("host", s.host),
			slog.String("port", s.port))
		return "", interfaces.ErrStoreUnavailable
	}

	cid, err := s.shell.Add(bytes.NewReader(data), shell.Pin(true))
	if err != nil {
		return "", fmt.Errorf("%w: failed to add data to IPFS: %v", interfaces.ErrStoreUnavailable, err)
	}

	s.log.Debug("Stored blob in IPFS",
		slog.String("cid", cid),
		slog.Int("size", len(data)),
		slog.Duration("duration", time.Since(start)))

	return cid, nil
}

// Get retrieves data from IPFS by CID. Returns ErrContentNotFound if the
// content doesn't exist and ErrStoreUnavailable if the node is not
// accessible.
func (s *IPFSStore) Get(ctx context.Context, address string) ([]byte, error) {
	start := time.Now()

	if !s.shell.IsUp() {
		s.log.Warn("IPFS node unavailable",
			slog.String("host", s.host),
			slog.String("port", s.port))
		return nil, interfaces.ErrStoreUnavailable
	}

	reader, err := s.shell.Cat(address)
	if err != nil {
		if strings.Contains(err.Error(), "invalid path") || strings.Contains(err.Error(), "no link named") {
			return nil, interfaces.ErrContentNotFound
		}
		return nil, fmt.Errorf("%w: failed to fetch from IPFS: %v", interfaces.ErrStoreUnavailable, err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read from IPFS: %v", interfaces.ErrStoreUnavailable, err)
	}

	s.log.Debug("Fetched blob from IPFS",
		slog.String("cid", address),
		slog.Int("size", len(data)),
		slog.Duration("duration", time.Since(start)))

	return data, nil
}

// Available checks if the IPFS node is accessible.
func (s *IPFSStore) Available(ctx context.Context) bool {
	return s.shell.IsUp()
}

// Name returns a unique identifier for this storage backend.
func (s *IPFSStore) Name() string {
	return fmt.Sprintf("ipfs-%s-%s", s.host, s.port)
}

// LocationURI returns the URI that identifies this storage backend.
func (s *IPFSStore) LocationURI() string {
	return s.locationURI
}
