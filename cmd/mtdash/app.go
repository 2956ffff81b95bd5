package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/cognimosyne/mediatranslator/balance"
	"github.com/cognimosyne/mediatranslator/credentials"
	"github.com/cognimosyne/mediatranslator/internal/config"
	"github.com/cognimosyne/mediatranslator/session"
	"github.com/cognimosyne/mediatranslator/storage"
)

// app wires the dashboard services over three on-disk stores:
// prefs.json survives sign-out (language preference, provider SDK caches),
// scope.json is wiped on sign-out (credential cache, redirect marker), and
// keystore.json holds the encrypted token pair.
type app struct {
	cfg    config.Config
	logger zerolog.Logger

	durable  *storage.FileStore
	scoped   *storage.FileStore
	keystore storage.Store

	client  *session.OIDCClient
	broker  *credentials.Broker
	guard   *session.Guard
	balance *balance.Client
}

func newApp(ctx context.Context, logger zerolog.Logger) (*app, error) {
	cfg := config.New()
	folder := cfg.GetDataFolder()

	a := &app{
		cfg:     cfg,
		logger:  logger,
		durable: storage.NewFileStore(filepath.Join(folder, "prefs.json")),
		scoped:  storage.NewFileStore(filepath.Join(folder, "scope.json")),
	}
	a.keystore = storage.NewEncryptedStore(
		storage.NewFileStore(filepath.Join(folder, "keystore.json")),
		keystorePassphrase(folder),
	)

	client, err := session.NewOIDCClient(session.ProviderConfig{
		Issuer:         cfg.GetIssuer(),
		ClientID:       cfg.GetClientID(),
		RedirectURI:    cfg.GetRedirectURI(),
		HostedUIDomain: cfg.GetHostedUIDomain(),
		Scopes:         cfg.GetScopes(),
	}, a.keystore, session.WithClientLogger(logger))
	if err != nil {
		return nil, errors.Wrap(err, "[newApp] session client")
	}
	a.client = client

	cognitoAPI, err := credentials.NewCognitoIdentityClient(ctx, cfg.GetRegion())
	if err != nil {
		return nil, errors.Wrap(err, "[newApp] cognito identity client")
	}
	exchanger, err := credentials.NewIdentityPoolExchanger(cognitoAPI, cfg.GetIdentityPoolID(), cfg.GetLoginsKey())
	if err != nil {
		return nil, errors.Wrap(err, "[newApp] exchanger")
	}
	broker, err := credentials.NewBroker(a.scoped, exchanger, credentials.WithLogger(logger))
	if err != nil {
		return nil, errors.Wrap(err, "[newApp] broker")
	}
	a.broker = broker

	guard, err := session.NewGuard(client, broker, a.scoped, a.durable,
		session.WithIdentityCacheKeys(session.IdentityCacheKeys(cfg.GetIdentityPoolID())...),
		session.WithGuardLogger(logger),
	)
	if err != nil {
		return nil, errors.Wrap(err, "[newApp] guard")
	}
	a.guard = guard

	balanceClient, err := balance.NewClient(cfg.GetCreditUsageURL(), cfg.GetRegion(), balance.WithLogger(logger))
	if err != nil {
		return nil, errors.Wrap(err, "[newApp] balance client")
	}
	a.balance = balanceClient
	return a, nil
}

func (a *app) close() {
	a.guard.Close()
}

// keystorePassphrase derives a machine-local passphrase so the keystore is
// unreadable when the file is copied elsewhere. Not a substitute for OS
// keychain integration.
func keystorePassphrase(folder string) string {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "mtdash"
	}
	return hostname + "|" + folder
}
