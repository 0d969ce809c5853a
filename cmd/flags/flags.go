package flags

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"github.com/consentvault/vault-service-backend/common"
	"github.com/consentvault/vault-service-backend/httpserver"
)

func SetupLogger(cCtx *cli.Context) (log *slog.Logger) {
	logJSON := cCtx.Bool(LogJSONFlag.Name)
	logDebug := cCtx.Bool(LogDebugFlag.Name)
	logUID := cCtx.Bool(LogUIDFlag.Name)
	logService := cCtx.String(LogServiceFlag.Name)

	logger := common.SetupLogger(&common.LoggingOpts{
		Debug:   logDebug,
		JSON:    logJSON,
		Service: logService,
		Version: common.Version,
	})

	if logUID {
		id := uuid.Must(uuid.NewRandom())
		logger = logger.With("uid", id.String())
	}
	return logger
}

func ConfigureServer(cCtx *cli.Context, logger *slog.Logger) *httpserver.HTTPServerConfig {
	drainDuration := time.Duration(cCtx.Int64(DrainSecondsFlag.Name)) * time.Second

	return &httpserver.HTTPServerConfig{
		ListenAddr:               cCtx.String(ListenAddrFlag.Name),
		MetricsAddr:              cCtx.String(MetricsAddrFlag.Name),
		Log:                      logger,
		EnablePprof:              cCtx.Bool(PprofFlag.Name),
		DrainDuration:            drainDuration,
		GracefulShutdownDuration: 30 * time.Second,
		ReadTimeout:              60 * time.Second,
		WriteTimeout:             30 * time.Second,
	}
}

var ListenAddrFlag = &cli.StringFlag{
	Name:  "listen-addr",
	Value: "127.0.0.1:8080",
	Usage: "address to listen on for API",
}
var MetricsAddrFlag = &cli.StringFlag{
	Name:  "metrics-addr",
	Value: "127.0.0.1:8090",
	Usage: "address to listen on for Prometheus metrics",
}

var DatabaseDSNFlag = &cli.StringFlag{
	Name:  "db-dsn",
	Value: "",
	Usage: "PostgreSQL DSN for document, share and consent records; empty uses in-memory storage",
}
var StoreURIFlag = &cli.StringFlag{
	Name:  "store-uri",
	Value: "memory://",
	Usage: "content store location: memory://, file://<dir>, ipfs://<host>:<port> or s3://<bucket>/<prefix>?region=<region>",
}

var TrusteeRolesFlag = &cli.StringSliceFlag{
	Name:  "trustee-roles",
	Value: cli.NewStringSlice("user", "authority", "verifier"),
	Usage: "trustee roles, one key share per role",
}
var ThresholdFlag = &cli.IntFlag{
	Name:  "threshold",
	Value: 2,
	Usage: "minimum number of shares needed to reconstruct a document key",
}

var MasterKeySeedFlag = &cli.StringFlag{
	Name:  "master-key-seed",
	Value: "",
	Usage: "hex-encoded 32-byte share vault master key",
}
var MasterKeyFileFlag = &cli.StringFlag{
	Name:  "master-key-file",
	Value: "",
	Usage: "file holding the raw 32-byte share vault master key",
}
var MasterKeyPassphraseFlag = &cli.StringFlag{
	Name:  "master-key-passphrase",
	Value: "",
	Usage: "passphrase to derive the master key from (development only)",
}
var VaultAddrFlag = &cli.StringFlag{
	Name:  "vault-addr",
	Value: "",
	Usage: "HashiCorp Vault address for the master key",
}
var VaultTokenFlag = &cli.StringFlag{
	Name:    "vault-token",
	Value:   "",
	Usage:   "HashiCorp Vault token",
	EnvVars: []string{"VAULT_TOKEN"},
}
var VaultKeyPathFlag = &cli.StringFlag{
	Name:  "vault-key-path",
	Value: "",
	Usage: "KV v2 secret holding the master key, as mount/path",
}

var LogJSONFlag = &cli.BoolFlag{
	Name:  "log-json",
	Value: false,
	Usage: "log in JSON format",
}
var LogDebugFlag = &cli.BoolFlag{
	Name:  "log-debug",
	Value: false,
	Usage: "log debug messages",
}
var LogUIDFlag = &cli.BoolFlag{
	Name:  "log-uid",
	Value: false,
	Usage: "generate a uuid and add to all log messages",
}
var LogServiceFlag = &cli.StringFlag{
	Name:  "log-service",
	Value: common.PackageName,
	Usage: "add 'service' tag to logs",
}

var PprofFlag = &cli.BoolFlag{
	Name:  "pprof",
	Value: false,
	Usage: "enable pprof debug endpoint",
}
var DrainSecondsFlag = &cli.Int64Flag{
	Name:  "drain-seconds",
	Value: 45,
	Usage: "seconds to wait in drain HTTP request",
}

var CommonFlags = []cli.Flag{
	LogJSONFlag,
	LogDebugFlag,
	LogUIDFlag,
	LogServiceFlag,
	PprofFlag,
	DrainSecondsFlag,
	MetricsAddrFlag,
}
