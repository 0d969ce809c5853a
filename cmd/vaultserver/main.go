package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/consentvault/vault-service-backend/cmd/flags"
	"github.com/consentvault/vault-service-backend/db"
	"github.com/consentvault/vault-service-backend/httpserver"
	"github.com/consentvault/vault-service-backend/interfaces"
	"github.com/consentvault/vault-service-backend/storage"
	"github.com/consentvault/vault-service-backend/vault"
)

var cliFlags = append([]cli.Flag{
	flags.ListenAddrFlag,
	flags.DatabaseDSNFlag,
	flags.StoreURIFlag,
	flags.TrusteeRolesFlag,
	flags.ThresholdFlag,
	flags.MasterKeySeedFlag,
	flags.MasterKeyFileFlag,
	flags.MasterKeyPassphraseFlag,
	flags.VaultAddrFlag,
	flags.VaultTokenFlag,
	flags.VaultKeyPathFlag,
}, flags.CommonFlags...)

func main() {
	app := &cli.App{
		Name:  "vault-server",
		Usage: "Serve the consent-gated document vault API",
		Flags: cliFlags,
		Action: func(cCtx *cli.Context) error {
			logger := flags.SetupLogger(cCtx)

			// Resolve the share vault master key first; nothing else is
			// useful without it.
			masterKey, err := vault.LoadMasterKey(cCtx.Context, vault.MasterKeyConfig{
				HexSeed:      cCtx.String(flags.MasterKeySeedFlag.Name),
				KeyFile:      cCtx.String(flags.MasterKeyFileFlag.Name),
				Passphrase:   cCtx.String(flags.MasterKeyPassphraseFlag.Name),
				VaultAddr:    cCtx.String(flags.VaultAddrFlag.Name),
				VaultToken:   cCtx.String(flags.VaultTokenFlag.Name),
				VaultKeyPath: cCtx.String(flags.VaultKeyPathFlag.Name),
			})
			if err != nil {
				logger.Error("Failed to load master key", "err", err)
				return err
			}

			// Repositories: Postgres when a DSN is given, in-memory
			// otherwise.
			var repos *db.Repositories
			if dsn := cCtx.String(flags.DatabaseDSNFlag.Name); dsn != "" {
				gormDB, err := db.Open(dsn, logger)
				if err != nil {
					logger.Error("Failed to open database", "err", err)
					return err
				}
				repos = db.NewRepositories(gormDB)
			} else {
				logger.Warn("No db-dsn given, using in-memory repositories")
				repos = db.NewMemoryRepositories()
			}

			storeURI := cCtx.String(flags.StoreURIFlag.Name)
			store, err := storage.NewFactory(logger).ContentStoreFor(storeURI)
			if err != nil {
				logger.Error("Failed to create content store", "err", err, "uri", storeURI)
				return err
			}
			logger.Info("Content store ready", "backend", store.Name(), "uri", store.LocationURI())

			roles := make([]interfaces.TrusteeRole, 0, 3)
			for _, name := range cCtx.StringSlice(flags.TrusteeRolesFlag.Name) {
				role, err := interfaces.ParseTrusteeRole(name)
				if err != nil {
					logger.Error("Invalid trustee role", "err", err)
					return err
				}
				roles = append(roles, role)
			}

			shareVault, err := vault.NewShareVault(repos.Shares, masterKey, logger)
			if err != nil {
				logger.Error("Failed to create share vault", "err", err)
				return err
			}
			consentGate := vault.NewConsentGate(repos.Consents, logger)

			service, err := vault.NewService(vault.ServiceConfig{
				Roles:     roles,
				Threshold: cCtx.Int(flags.ThresholdFlag.Name),
			}, store, shareVault, consentGate, repos.Documents, logger)
			if err != nil {
				logger.Error("Failed to create vault service", "err", err)
				return err
			}
			logger.Info("Vault service initialized",
				"roles", len(roles), "threshold", service.Threshold())

			handler := httpserver.NewHandler(service, consentGate, logger)

			server, err := httpserver.New(flags.ConfigureServer(cCtx, logger), handler)
			if err != nil {
				logger.Error("Failed to create server", "err", err)
				return err
			}

			server.RunInBackground()

			exit := make(chan os.Signal, 1)
			signal.Notify(exit, os.Interrupt, syscall.SIGTERM)

			logger.Info("Server is running, press Ctrl+C to stop")
			<-exit
			logger.Info("Shutdown signal received")

			server.Shutdown()
			logger.Info("Server shutdown complete")

			return nil
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
