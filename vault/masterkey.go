package vault

import (
	"context"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"

	vaultapi "github.com/hashicorp/vault/api"
	"golang.org/x/crypto/argon2"

	"github.com/consentvault/vault-service-backend/interfaces"
)

// MasterKeyConfig selects the source of the share vault master key.
// Exactly one of the source fields should be set.
type MasterKeyConfig struct {
	// HexSeed is a 64-character hex encoding of the key.
	HexSeed string

	// KeyFile is a path to a file holding the raw 32-byte key.
	KeyFile string

	// Passphrase derives the key with argon2id. Weaker than a random key;
	// intended for development deployments.
	Passphrase string

	// VaultAddr, VaultToken and VaultKeyPath read the key from a HashiCorp
	// Vault KV v2 secret (field "master_key", base64-encoded) at
	// mount/path, e.g. "secret/vault-service/master-key".
	VaultAddr    string
	VaultToken   string
	VaultKeyPath string
}

// LoadMasterKey resolves the share vault master key from the configured
// source.
func LoadMasterKey(ctx context.Context, cfg MasterKeyConfig) ([]byte, error) {
	switch {
	case cfg.HexSeed != "":
		key, err := hex.DecodeString(cfg.HexSeed)
		if err != nil || len(key) != interfaces.KeySize {
			return nil, errors.New("master key seed must be 64 hex chars (32 bytes)")
		}
		return key, nil

	case cfg.KeyFile != "":
		key, err := os.ReadFile(cfg.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read master key file: %w", err)
		}
		if len(key) != interfaces.KeySize {
			return nil, fmt.Errorf("master key file must hold exactly %d bytes", interfaces.KeySize)
		}
		return key, nil

	case cfg.Passphrase != "":
		// Parameters: time=1, memory=64*1024, threads=4, keyLen=32
		salt := []byte("vault-service-share-vault-v1")
		return argon2.IDKey([]byte(cfg.Passphrase), salt, 1, 64*1024, 4, interfaces.KeySize), nil

	case cfg.VaultKeyPath != "":
		return loadMasterKeyFromVault(ctx, cfg)

	default:
		return nil, errors.New("no master key source configured")
	}
}

func loadMasterKeyFromVault(ctx context.Context, cfg MasterKeyConfig) ([]byte, error) {
	apiCfg := vaultapi.DefaultConfig()
	if cfg.VaultAddr != "" {
		apiCfg.Address = cfg.VaultAddr
	}

	client, err := vaultapi.NewClient(apiCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Vault client: %w", err)
	}
	if cfg.VaultToken != "" {
		client.SetToken(cfg.VaultToken)
	}

	mount, secretPath, ok := strings.Cut(cfg.VaultKeyPath, "/")
	if !ok {
		return nil, fmt.Errorf("invalid Vault key path %q, want mount/path", cfg.VaultKeyPath)
	}

	secret, err := client.KVv2(mount).Get(ctx, secretPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read master key from Vault: %w", err)
	}

	encoded, ok := secret.Data["master_key"].(string)
	if !ok {
		return nil, errors.New("Vault secret is missing the master_key field")
	}

	key, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("master_key field is not valid base64: %w", err)
	}
	if len(key) != interfaces.KeySize {
		return nil, fmt.Errorf("master key from Vault must be %d bytes", interfaces.KeySize)
	}
	return key, nil
}
