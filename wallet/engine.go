/*
 * Copyright (C) 2025 Nuts community
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <https://www.gnu.org/licenses/>.
 *
 */

package wallet

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nuts-foundation/nuts-wallet/auth/client/iam"
	"github.com/nuts-foundation/nuts-wallet/auth/oauth"
	"github.com/nuts-foundation/nuts-wallet/core"
	"github.com/nuts-foundation/nuts-wallet/crypto"
	"github.com/nuts-foundation/nuts-wallet/storage"
	"github.com/nuts-foundation/nuts-wallet/storage/session"
	"github.com/nuts-foundation/nuts-wallet/vcr/holder"
	"github.com/nuts-foundation/nuts-wallet/vcr/oidc4vci"
	vcrStorage "github.com/nuts-foundation/nuts-wallet/vcr/storage"
	"github.com/nuts-foundation/nuts-wallet/vcr/trust"
	"github.com/nuts-foundation/nuts-wallet/vcr/types"
	"github.com/nuts-foundation/nuts-wallet/wallet/log"
	"github.com/prometheus/client_golang/prometheus"
)

// ModuleName is the name of the wallet engine. Its settings are read from the "wallet" config keys.
const ModuleName = "Wallet"

// presentationTTL is how long a prepared presentation waits for the user's selection.
const presentationTTL = 5 * time.Minute

// ErrNoSession is returned when a PIN is submitted by an identity without a session.
var ErrNoSession = errors.New("identity token has no session")

var _ core.Injectable = (*Wallet)(nil)
var _ core.Configurable = (*Wallet)(nil)
var _ core.Runnable = (*Wallet)(nil)
var _ Service = (*Wallet)(nil)

// New creates the wallet engine. Its stores are provided by the given storage engine.
func New(storageEngine storage.Engine) *Wallet {
	return &Wallet{
		config:        DefaultConfig(),
		storageEngine: storageEngine,
		registerer:    prometheus.DefaultRegisterer,
		metrics:       newMetrics(),
	}
}

// Wallet is the engine that wires the issuance and presentation workflows to storage, HTTP clients and the PIN channel.
type Wallet struct {
	config         Config
	storageEngine  storage.Engine
	registerer     prometheus.Registerer
	metrics        *metrics
	holderConfig   holder.Config
	strictmode     bool
	clientTimeout  time.Duration
	trustedIssuers trust.IssuerList
	keyStore       crypto.HolderKeyStore
	credentials    types.CredentialStore
	deferred       types.DeferredStore
	pins           session.PINChannel
	holder         holder.Wallet
}

func (w *Wallet) Name() string {
	return ModuleName
}

func (w *Wallet) Config() interface{} {
	return &w.config
}

// Configure checks the settings, sets up the trusted issuer list and opens the persistent stores.
func (w *Wallet) Configure(config core.ServerConfig) error {
	var err error
	if w.holderConfig, err = w.config.holderConfig(); err != nil {
		return fmt.Errorf("invalid wallet.profile: %w", err)
	}
	w.strictmode = config.Strictmode
	w.clientTimeout = config.HTTP.Client.Timeout
	if err = w.configureTrustedIssuers(); err != nil {
		return err
	}
	if len(w.holderConfig.SensitiveScopes) > 0 && w.trustedIssuers == nil {
		log.Logger().Warn("Sensitive scopes are configured without a trusted issuer list, presentations for them will be refused")
	}

	provider := w.storageEngine.GetProvider(ModuleName)
	credentialStore, err := provider.GetKVStore("credentials", storage.PersistentStorageClass)
	if err != nil {
		return fmt.Errorf("unable to open credential store: %w", err)
	}
	deferredStore, err := provider.GetKVStore("deferred", storage.PersistentStorageClass)
	if err != nil {
		return fmt.Errorf("unable to open deferred credential store: %w", err)
	}
	keyStore, err := provider.GetKVStore("keys", storage.PersistentStorageClass)
	if err != nil {
		return fmt.Errorf("unable to open key store: %w", err)
	}
	w.credentials = vcrStorage.NewKVCredentialStore(credentialStore)
	w.deferred = vcrStorage.NewKVDeferredStore(deferredStore)
	w.keyStore = crypto.NewKVHolderKeyStore(keyStore)
	return w.metrics.register(w.registerer)
}

func (w *Wallet) configureTrustedIssuers() error {
	switch {
	case w.config.TrustedIssuerList != "":
		if _, err := core.ParseAbsoluteURL(w.config.TrustedIssuerList); err != nil {
			return fmt.Errorf("invalid wallet.trustedissuerlist: %w", err)
		}
		httpClient := core.NewStrictHTTPClient(w.strictmode, w.clientTimeout, nil)
		w.trustedIssuers = trust.NewHTTPIssuerList(w.config.TrustedIssuerList, httpClient)
	case w.config.TrustedIssuerFile != "":
		list := trust.NewStaticList(w.config.TrustedIssuerFile)
		if err := list.Load(); err != nil {
			return fmt.Errorf("unable to load wallet.trustedissuerfile: %w", err)
		}
		w.trustedIssuers = list
	}
	return nil
}

// Start sets up the session-bound parts of the wallet, which need the session database of the started storage engine.
func (w *Wallet) Start() error {
	sessions := w.storageEngine.GetSessionDatabase()
	if sessions == nil {
		return errors.New("session database is not available")
	}
	pending := sessions.GetStore(w.holderConfig.PINTimeout, "wallet", "pinrequests")
	if redisClient := w.storageEngine.GetRedisClient(); redisClient != nil {
		w.pins = session.NewRedisPINChannel(redisClient, "wallet", pending)
	} else {
		w.pins = session.NewMemoryPINChannel(pending)
	}

	metadataCache := sessions.GetStore(iam.MaxCacheTime, "wallet", "httpcache")
	issuerHTTPClient := iam.NewCachingHTTPRequestDoer(core.NewStrictHTTPClient(w.strictmode, w.clientTimeout, nil), metadataCache)
	// 3xx responses of verifiers carry the redirect for the user, they must not be followed.
	verifierHTTPClient := core.NewStrictHTTPClient(w.strictmode, w.clientTimeout, nil, core.WithoutRedirects())

	opts := []holder.Option{holder.WithPINChannel(w.pins)}
	if w.trustedIssuers != nil {
		opts = append(opts, holder.WithTrustedIssuers(w.trustedIssuers))
	}
	w.holder = holder.New(w.holderConfig,
		oidc4vci.NewIssuerClient(issuerHTTPClient),
		iam.NewHTTPClient(verifierHTTPClient),
		w.keyStore, w.credentials, w.deferred,
		sessions.GetStore(presentationTTL, "wallet", "presentations"),
		opts...)
	log.Logger().
		WithField(core.LogFieldProfile, w.holderConfig.Profile).
		Info("Wallet started")
	return nil
}

func (w *Wallet) Shutdown() error {
	return nil
}

// Respond presents the selected credentials of a prepared presentation.
func (w *Wallet) Respond(ctx context.Context, identity oauth.Identity, presentationID string, credentialIDs []string) (*holder.PresentationResult, error) {
	result, err := w.holder.Respond(ctx, identity, presentationID, credentialIDs)
	w.metrics.presented(err)
	return result, err
}

func (w *Wallet) PINRequested(identity oauth.Identity) bool {
	if identity.SessionID == "" {
		return false
	}
	return w.pins.PINRequested(identity.SessionID)
}

func (w *Wallet) SubmitPIN(ctx context.Context, identity oauth.Identity, pin string) error {
	if identity.SessionID == "" {
		return ErrNoSession
	}
	return w.pins.SubmitPIN(ctx, identity.SessionID, identity.UserID, pin)
}

func (w *Wallet) Credentials(ctx context.Context, userID string) ([]types.StoredCredential, error) {
	return w.credentials.List(ctx, userID)
}

func (w *Wallet) PollDeferredCredential(ctx context.Context, userID string, credentialID string) (*types.StoredCredential, error) {
	result, err := w.holder.PollDeferredCredential(ctx, userID, credentialID)
	w.metrics.polled(err)
	return result, err
}
