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

package holder

import (
	"time"

	"github.com/nuts-foundation/nuts-wallet/auth/client/iam"
	"github.com/nuts-foundation/nuts-wallet/crypto"
	"github.com/nuts-foundation/nuts-wallet/storage"
	"github.com/nuts-foundation/nuts-wallet/storage/session"
	"github.com/nuts-foundation/nuts-wallet/vcr/oidc4vci"
	"github.com/nuts-foundation/nuts-wallet/vcr/trust"
	"github.com/nuts-foundation/nuts-wallet/vcr/types"
)

var nowFunc = time.Now

var _ Wallet = (*Holder)(nil)

// Config holds the settings of the workflows.
type Config struct {
	// Profile is the default profile.
	Profile Profile
	// PINTimeout is how long the issuance waits for the user to enter a PIN.
	PINTimeout time.Duration
	// DeferredDelay is how long the EBSI profile waits before polling a deferred credential.
	DeferredDelay time.Duration
	// DeferredAttempts is how often the EBSI profile polls a deferred credential.
	DeferredAttempts uint
	// SensitiveScopes are the scopes for which the verifier must be a trusted issuer.
	SensitiveScopes []string
	// ScopeTypes maps scopes to the credential types they request.
	ScopeTypes map[string][]string
}

// DefaultConfig returns the default workflow settings.
func DefaultConfig() Config {
	return Config{
		Profile:          ProfileStandard,
		PINTimeout:       120 * time.Second,
		DeferredDelay:    10 * time.Second,
		DeferredAttempts: 1,
	}
}

// Option configures optional collaborators of the Holder.
type Option func(h *Holder)

// WithPINChannel sets the channel PINs are requested over. Without it, offers that require a PIN fail.
func WithPINChannel(channel session.PINChannel) Option {
	return func(h *Holder) {
		h.pins = channel
	}
}

// WithTrustedIssuers sets the list verifiers are checked against for sensitive scopes.
func WithTrustedIssuers(list trust.IssuerList) Option {
	return func(h *Holder) {
		h.trustedIssuers = list
	}
}

// WithAuthorizationCodeProvider enables offers with an authorization_code grant.
func WithAuthorizationCodeProvider(provider AuthorizationCodeProvider) Option {
	return func(h *Holder) {
		h.authorizationCodes = provider
	}
}

// New creates a Holder. Prepared presentations are kept in the given session store.
func New(config Config, issuerClient oidc4vci.IssuerClient, verifierClient iam.VerifierClient, keyStore crypto.HolderKeyStore,
	credentialStore types.CredentialStore, deferredStore types.DeferredStore, presentations storage.SessionStore, opts ...Option) *Holder {
	result := &Holder{
		config:         config,
		issuerClient:   issuerClient,
		verifierClient: verifierClient,
		keyStore:       keyStore,
		credentials:    credentialStore,
		deferred:       deferredStore,
		presentations:  presentations,
	}
	if result.config.Profile == "" {
		result.config.Profile = ProfileStandard
	}
	for _, opt := range opts {
		opt(result)
	}
	return result
}

// Holder implements the issuance and presentation workflows of the wallet.
type Holder struct {
	config             Config
	issuerClient       oidc4vci.IssuerClient
	verifierClient     iam.VerifierClient
	keyStore           crypto.HolderKeyStore
	credentials        types.CredentialStore
	deferred           types.DeferredStore
	presentations      storage.SessionStore
	pins               session.PINChannel
	trustedIssuers     trust.IssuerList
	authorizationCodes AuthorizationCodeProvider
}

func (h *Holder) profile(override Profile) Profile {
	if override != "" {
		return override
	}
	return h.config.Profile
}
