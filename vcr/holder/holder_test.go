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
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/nuts-foundation/nuts-wallet/auth/client/iam"
	"github.com/nuts-foundation/nuts-wallet/core"
	"github.com/nuts-foundation/nuts-wallet/crypto"
	"github.com/nuts-foundation/nuts-wallet/storage"
	"github.com/nuts-foundation/nuts-wallet/storage/session"
	"github.com/nuts-foundation/nuts-wallet/test"
	http2 "github.com/nuts-foundation/nuts-wallet/test/http"
	"github.com/nuts-foundation/nuts-wallet/vcr/oidc4vci"
	vcrStorage "github.com/nuts-foundation/nuts-wallet/vcr/storage"
	"github.com/stretchr/testify/require"
)

type testContext struct {
	holder      *Holder
	keyStore    *crypto.KVHolderKeyStore
	credentials *vcrStorage.KVCredentialStore
	deferred    *vcrStorage.KVDeferredStore
	pins        *session.MemoryPINChannel
}

func testConfig() Config {
	config := DefaultConfig()
	config.PINTimeout = 5 * time.Second
	config.DeferredDelay = time.Millisecond
	return config
}

func newTestContext(t *testing.T, config Config, issuerClient oidc4vci.IssuerClient, verifierClient iam.VerifierClient, opts ...Option) testContext {
	engine := storage.NewTestStorageEngine(t)
	store := func(name string) *vcrStorage.KVCredentialStore {
		kvStore, err := engine.GetProvider("wallet").GetKVStore(name, storage.PersistentStorageClass)
		require.NoError(t, err)
		return vcrStorage.NewKVCredentialStore(kvStore)
	}
	keys, err := engine.GetProvider("wallet").GetKVStore("keys", storage.PersistentStorageClass)
	require.NoError(t, err)
	deferredKV, err := engine.GetProvider("wallet").GetKVStore("deferred", storage.PersistentStorageClass)
	require.NoError(t, err)
	sessions := storage.NewInMemorySessionDatabase(time.Minute)

	result := testContext{
		keyStore:    crypto.NewKVHolderKeyStore(keys),
		credentials: store("credentials"),
		deferred:    vcrStorage.NewKVDeferredStore(deferredKV),
		pins:        session.NewMemoryPINChannel(sessions.GetStore(time.Minute, "pin")),
	}
	opts = append([]Option{WithPINChannel(result.pins)}, opts...)
	result.holder = New(config, issuerClient, verifierClient, result.keyStore, result.credentials, result.deferred,
		sessions.GetStore(time.Minute, "presentation"), opts...)
	return result
}

// testIssuer is an OpenID4VCI issuer that also is its own authorization server.
type testIssuer struct {
	server           *httptest.Server
	metadata         *http2.Handler
	providerMetadata *http2.Handler
	token            *http2.Handler
	credential       *http2.Handler
	deferred         *http2.Handler
}

func newTestIssuer(t *testing.T) *testIssuer {
	result := &testIssuer{
		metadata:         &http2.Handler{StatusCode: http.StatusOK},
		providerMetadata: &http2.Handler{StatusCode: http.StatusOK},
		token:            &http2.Handler{StatusCode: http.StatusOK},
		credential:       &http2.Handler{StatusCode: http.StatusOK},
		deferred:         &http2.Handler{StatusCode: http.StatusOK},
	}
	mux := http.NewServeMux()
	mux.Handle(oidc4vci.CredentialIssuerMetadataWellKnownPath, result.metadata)
	mux.Handle(oidc4vci.ProviderMetadataWellKnownPath, result.providerMetadata)
	mux.Handle("/token", result.token)
	mux.Handle("/credential", result.credential)
	mux.Handle("/deferred", result.deferred)
	result.server = httptest.NewServer(mux)
	t.Cleanup(result.server.Close)

	result.metadata.ResponseData = oidc4vci.CredentialIssuerMetadata{
		CredentialIssuer:           result.server.URL,
		CredentialEndpoint:         result.server.URL + "/credential",
		DeferredCredentialEndpoint: result.server.URL + "/deferred",
	}
	result.providerMetadata.ResponseData = oidc4vci.ProviderMetadata{
		Issuer:        result.server.URL,
		TokenEndpoint: result.server.URL + "/token",
	}
	result.token.ResponseData = oidc4vci.TokenResponse{AccessToken: "tok", CNonce: "c-nonce"}
	return result
}

func (i testIssuer) client() oidc4vci.IssuerClient {
	return oidc4vci.NewIssuerClient(core.NewStrictHTTPClient(false, 5*time.Second, nil))
}

// offerURI returns a credential offer URI passing the offer by value.
func (i testIssuer) offerURI(t *testing.T, offer oidc4vci.CredentialOffer) string {
	offer.CredentialIssuer = i.server.URL
	data, err := json.Marshal(offer)
	require.NoError(t, err)
	return "openid-credential-offer://?credential_offer=" + url.QueryEscape(string(data))
}

func preAuthorizedOffer(code string) oidc4vci.CredentialOffer {
	return oidc4vci.CredentialOffer{
		Credentials: []oidc4vci.OfferedCredential{
			{Format: "jwt_vc", Types: []string{"VerifiableCredential", "LEARCredentialEmployee"}},
		},
		Grants: oidc4vci.OfferGrants{
			PreAuthorizedCode: &oidc4vci.PreAuthorizedCodeParams{PreAuthorizedCode: code},
		},
	}
}

// issuedJWT returns a JWT VC issued to the given subject.
func issuedJWT(t *testing.T, id string, subject string, credentialType string) string {
	issuer := test.GenerateKeyPair(t)
	return test.CreateJWT(t, issuer, map[string]interface{}{
		"iss": issuer.DID,
		"sub": subject,
		"jti": id,
		"vc": map[string]interface{}{
			"@context": []interface{}{"https://www.w3.org/2018/credentials/v1"},
			"id":       id,
			"type":     []interface{}{"VerifiableCredential", credentialType},
			"issuer":   issuer.DID,
			"credentialSubject": map[string]interface{}{
				"id": subject,
			},
		},
	}, nil)
}
