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
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/lestrrat-go/jwx/v2/jws"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/nuts-foundation/nuts-wallet/auth/oauth"
	"github.com/nuts-foundation/nuts-wallet/storage/session"
	"github.com/nuts-foundation/nuts-wallet/vcr/oidc4vci"
	"github.com/nuts-foundation/nuts-wallet/vcr/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/mock/gomock"
)

var alice = oauth.Identity{UserID: "alice", SessionID: "session-1"}

func TestHolder_Issue(t *testing.T) {
	ctx := context.Background()

	t.Run("ok - pre-authorized code without PIN", func(t *testing.T) {
		issuer := newTestIssuer(t)
		credentialJWT := issuedJWT(t, "urn:uuid:1", "did:key:holder", "LEARCredentialEmployee")
		issuer.credential.ResponseData = map[string]interface{}{
			"format":     "jwt_vc",
			"credential": credentialJWT,
		}
		tc := newTestContext(t, testConfig(), issuer.client(), nil)

		result, err := tc.holder.Issue(ctx, IssuanceRequest{Identity: alice, OfferURI: issuer.offerURI(t, preAuthorizedOffer("321"))})

		require.NoError(t, err)
		assert.Equal(t, StateIssued, result.State)
		require.Len(t, result.Credentials, 1)
		assert.Empty(t, result.Deferred)
		// token request
		assert.Equal(t, oidc4vci.PreAuthorizedCodeGrant, issuer.token.RequestForm.Get("grant_type"))
		assert.Equal(t, "321", issuer.token.RequestForm.Get(oidc4vci.PreAuthorizedCodeParam))
		assert.Empty(t, issuer.token.RequestForm.Get(oidc4vci.UserPINParam))
		// credential request
		assert.Equal(t, "Bearer tok", issuer.credential.RequestHeaders.Get("Authorization"))
		var credentialRequest oidc4vci.CredentialRequest
		require.NoError(t, json.Unmarshal(issuer.credential.RequestData, &credentialRequest))
		assert.Equal(t, "jwt_vc", credentialRequest.Format)
		assert.Equal(t, []string{"VerifiableCredential", "LEARCredentialEmployee"}, credentialRequest.CredentialDefinition.Type)
		require.NotNil(t, credentialRequest.Proof)
		assert.Equal(t, oidc4vci.ProofTypeJWT, credentialRequest.Proof.ProofType)
		holderKey, err := tc.keyStore.HolderKey(ctx, alice.UserID)
		require.NoError(t, err)
		proof, err := jwt.ParseString(credentialRequest.Proof.Jwt, jwt.WithVerify(false))
		require.NoError(t, err)
		assert.Equal(t, holderKey.DID, proof.Issuer())
		assert.Equal(t, []string{issuer.server.URL}, proof.Audience())
		assert.Equal(t, "c-nonce", proof.PrivateClaims()["nonce"])
		message, err := jws.ParseString(credentialRequest.Proof.Jwt)
		require.NoError(t, err)
		assert.Equal(t, oidc4vci.JWTTypeOpenID4VCIProof, message.Signatures()[0].ProtectedHeaders().Type())
		assert.Equal(t, holderKey.KID, message.Signatures()[0].ProtectedHeaders().KeyID())
		// stored credential
		stored, err := tc.credentials.Get(ctx, alice.UserID, "urn:uuid:1")
		require.NoError(t, err)
		assert.Equal(t, types.StatusValid, stored.Status)
		assert.Equal(t, credentialJWT, stored.JWT)
		assert.NotEmpty(t, stored.JSON)
		assert.True(t, stored.HasType("LEARCredentialEmployee"))
	})
	t.Run("ok - offer by reference, plain JSON credentials", func(t *testing.T) {
		issuer := newTestIssuer(t)
		issuer.credential.ResponseData = map[string]interface{}{
			"credentials": []interface{}{
				map[string]interface{}{
					"credential": map[string]interface{}{
						"type":              []interface{}{"VerifiableCredential", "VerifiableId"},
						"credentialSubject": map[string]interface{}{"id": "did:key:holder"},
					},
				},
			},
		}
		ctrl := gomock.NewController(t)
		issuerClient := oidc4vci.NewMockIssuerClient(ctrl)
		offer := preAuthorizedOffer("321")
		offer.CredentialIssuer = issuer.server.URL
		offer.Credentials[0].Format = "vc_json"
		issuerClient.EXPECT().CredentialOffer(gomock.Any(), "https://issuer.example.com/offer/1").Return(&offer, nil)
		httpClient := issuer.client()
		issuerClient.EXPECT().CredentialIssuerMetadata(gomock.Any(), gomock.Any()).DoAndReturn(httpClient.CredentialIssuerMetadata)
		issuerClient.EXPECT().AuthorizationServerMetadata(gomock.Any(), gomock.Any()).DoAndReturn(httpClient.AuthorizationServerMetadata)
		issuerClient.EXPECT().RequestAccessToken(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(httpClient.RequestAccessToken)
		issuerClient.EXPECT().RequestCredential(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(httpClient.RequestCredential)
		tc := newTestContext(t, testConfig(), issuerClient, nil)

		result, err := tc.holder.Issue(ctx, IssuanceRequest{
			Identity: alice,
			OfferURI: "openid-credential-offer://?credential_offer_uri=https%3A%2F%2Fissuer.example.com%2Foffer%2F1",
		})

		require.NoError(t, err)
		require.Len(t, result.Credentials, 1)
		stored := result.Credentials[0]
		assert.Equal(t, types.StatusValid, stored.Status)
		assert.Empty(t, stored.JWT)
		assert.Contains(t, stored.ID, "urn:uuid:")
		assert.Equal(t, []string{"VerifiableCredential", "VerifiableId"}, stored.Types)
	})
	t.Run("ok - credential configuration ID", func(t *testing.T) {
		issuer := newTestIssuer(t)
		metadata := issuer.metadata.ResponseData.(oidc4vci.CredentialIssuerMetadata)
		metadata.CredentialConfigurationsSupported = map[string]oidc4vci.CredentialConfiguration{
			"LEARCredentialEmployee": {Format: "jwt_vc_json"},
		}
		issuer.metadata.ResponseData = metadata
		issuer.credential.ResponseData = map[string]interface{}{
			"credential": issuedJWT(t, "urn:uuid:2", "did:key:holder", "LEARCredentialEmployee"),
		}
		offer := preAuthorizedOffer("321")
		offer.Credentials = nil
		offer.CredentialConfigurationIDs = []string{"LEARCredentialEmployee"}
		tc := newTestContext(t, testConfig(), issuer.client(), nil)

		result, err := tc.holder.Issue(ctx, IssuanceRequest{Identity: alice, OfferURI: issuer.offerURI(t, offer)})

		require.NoError(t, err)
		var credentialRequest oidc4vci.CredentialRequest
		require.NoError(t, json.Unmarshal(issuer.credential.RequestData, &credentialRequest))
		assert.Equal(t, "LEARCredentialEmployee", credentialRequest.CredentialConfigurationID)
		assert.Equal(t, "jwt_vc_json", credentialRequest.Format)
		require.Len(t, result.Credentials, 1)
		assert.NotEmpty(t, result.Credentials[0].JWT)
	})
	t.Run("ok - authorization code grant", func(t *testing.T) {
		issuer := newTestIssuer(t)
		issuer.credential.ResponseData = map[string]interface{}{
			"format":     "jwt_vc",
			"credential": issuedJWT(t, "urn:uuid:3", "did:key:holder", "LEARCredentialEmployee"),
		}
		ctrl := gomock.NewController(t)
		provider := NewMockAuthorizationCodeProvider(ctrl)
		provider.EXPECT().AuthorizationCode(gomock.Any(), alice, gomock.Any(), gomock.Any()).
			Return(&AuthorizationCode{Code: "code", CodeVerifier: "verifier", RedirectURI: "https://wallet.example.com/cb"}, nil)
		offer := preAuthorizedOffer("")
		offer.Grants = oidc4vci.OfferGrants{AuthorizationCode: &oidc4vci.AuthorizationCodeParams{IssuerState: "state"}}
		tc := newTestContext(t, testConfig(), issuer.client(), nil, WithAuthorizationCodeProvider(provider))

		_, err := tc.holder.Issue(ctx, IssuanceRequest{Identity: alice, OfferURI: issuer.offerURI(t, offer)})

		require.NoError(t, err)
		assert.Equal(t, oidc4vci.AuthorizationCodeGrant, issuer.token.RequestForm.Get("grant_type"))
		assert.Equal(t, "code", issuer.token.RequestForm.Get(oidc4vci.CodeParam))
		assert.Equal(t, "verifier", issuer.token.RequestForm.Get(oidc4vci.CodeVerifierParam))
		assert.Equal(t, "https://wallet.example.com/cb", issuer.token.RequestForm.Get(oidc4vci.RedirectURIParam))
	})
	t.Run("error - authorization code grant without provider", func(t *testing.T) {
		issuer := newTestIssuer(t)
		offer := preAuthorizedOffer("")
		offer.Grants = oidc4vci.OfferGrants{AuthorizationCode: &oidc4vci.AuthorizationCodeParams{}}
		tc := newTestContext(t, testConfig(), issuer.client(), nil)

		_, err := tc.holder.Issue(ctx, IssuanceRequest{Identity: alice, OfferURI: issuer.offerURI(t, offer)})

		assert.EqualError(t, err, "authorization_code grant is not supported")
		assert.Equal(t, 0, issuer.token.Calls())
	})
	t.Run("ok - deferred", func(t *testing.T) {
		issuer := newTestIssuer(t)
		issuer.credential.ResponseData = map[string]interface{}{"transaction_id": "A"}
		tc := newTestContext(t, testConfig(), issuer.client(), nil)

		result, err := tc.holder.Issue(ctx, IssuanceRequest{Identity: alice, OfferURI: issuer.offerURI(t, preAuthorizedOffer("321"))})

		require.NoError(t, err)
		assert.Equal(t, StateDeferred, result.State)
		assert.Empty(t, result.Credentials)
		require.Len(t, result.Deferred, 1)
		placeholder := result.Deferred[0]
		assert.Equal(t, types.StatusIssued, placeholder.Status)
		assert.Equal(t, []string{"VerifiableCredential", "LEARCredentialEmployee"}, placeholder.Types)
		metadata, err := tc.deferred.Get(ctx, alice.UserID, placeholder.ID)
		require.NoError(t, err)
		assert.Equal(t, "A", metadata.TransactionID)
		assert.Equal(t, "tok", metadata.AccessToken)
		assert.Equal(t, issuer.server.URL+"/deferred", metadata.DeferredEndpoint)
		assert.Equal(t, 0, issuer.deferred.Calls())
	})
	t.Run("ok - deferred with acceptance token", func(t *testing.T) {
		issuer := newTestIssuer(t)
		issuer.credential.ResponseData = map[string]interface{}{"acceptance_token": "acceptance"}
		tc := newTestContext(t, testConfig(), issuer.client(), nil)

		result, err := tc.holder.Issue(ctx, IssuanceRequest{Identity: alice, OfferURI: issuer.offerURI(t, preAuthorizedOffer("321"))})

		require.NoError(t, err)
		require.Len(t, result.Deferred, 1)
		metadata, err := tc.deferred.Get(ctx, alice.UserID, result.Deferred[0].ID)
		require.NoError(t, err)
		assert.Equal(t, "acceptance", metadata.AccessToken)
	})
	t.Run("ok - EBSI profile resolves deferred credential", func(t *testing.T) {
		issuer := newTestIssuer(t)
		issuer.credential.ResponseData = map[string]interface{}{"transaction_id": "A"}
		issuer.deferred.ResponseData = map[string]interface{}{
			"format":     "jwt_vc",
			"credential": issuedJWT(t, "urn:uuid:4", "did:key:holder", "LEARCredentialEmployee"),
		}
		tc := newTestContext(t, testConfig(), issuer.client(), nil)

		result, err := tc.holder.Issue(ctx, IssuanceRequest{Identity: alice, OfferURI: issuer.offerURI(t, preAuthorizedOffer("321")), Profile: ProfileEBSI})

		require.NoError(t, err)
		assert.Equal(t, StateIssued, result.State)
		require.Len(t, result.Credentials, 1)
		assert.Equal(t, types.StatusValid, result.Credentials[0].Status)
		assert.Equal(t, 1, issuer.deferred.Calls())
	})
	t.Run("error - EBSI profile, deferred credential not issued in time", func(t *testing.T) {
		issuer := newTestIssuer(t)
		issuer.credential.ResponseData = map[string]interface{}{"transaction_id": "A"}
		issuer.deferred.StatusCode = http.StatusBadRequest
		issuer.deferred.ResponseData = map[string]interface{}{"error": "issuance_pending"}
		config := testConfig()
		config.DeferredAttempts = 2
		tc := newTestContext(t, config, issuer.client(), nil)

		_, err := tc.holder.Issue(ctx, IssuanceRequest{Identity: alice, OfferURI: issuer.offerURI(t, preAuthorizedOffer("321")), Profile: ProfileEBSI})

		assert.ErrorIs(t, err, ErrCredentialNotAvailable)
		assert.Equal(t, 2, issuer.deferred.Calls())
	})
	t.Run("error - deferred, but issuer has no deferred endpoint", func(t *testing.T) {
		issuer := newTestIssuer(t)
		metadata := issuer.metadata.ResponseData.(oidc4vci.CredentialIssuerMetadata)
		metadata.DeferredCredentialEndpoint = ""
		issuer.metadata.ResponseData = metadata
		issuer.credential.ResponseData = map[string]interface{}{"transaction_id": "A"}
		tc := newTestContext(t, testConfig(), issuer.client(), nil)

		_, err := tc.holder.Issue(ctx, IssuanceRequest{Identity: alice, OfferURI: issuer.offerURI(t, preAuthorizedOffer("321"))})

		assert.EqualError(t, err, "issuer deferred issuance but has no deferred_credential_endpoint")
	})
	t.Run("error - invalid offer URI", func(t *testing.T) {
		tc := newTestContext(t, testConfig(), nil, nil)

		_, err := tc.holder.Issue(ctx, IssuanceRequest{Identity: alice, OfferURI: "openid-credential-offer://?foo=bar"})

		assert.ErrorContains(t, err, "missing credential_offer or credential_offer_uri")
	})
	t.Run("error - unsupported credential format", func(t *testing.T) {
		issuer := newTestIssuer(t)
		issuer.credential.ResponseData = map[string]interface{}{"format": "mso_mdoc", "credential": "abc"}
		tc := newTestContext(t, testConfig(), issuer.client(), nil)

		_, err := tc.holder.Issue(ctx, IssuanceRequest{Identity: alice, OfferURI: issuer.offerURI(t, preAuthorizedOffer("321"))})

		assert.ErrorContains(t, err, "unsupported format: mso_mdoc")
	})
}

func TestHolder_Issue_PIN(t *testing.T) {
	ctx := context.Background()
	metadata := &oidc4vci.CredentialIssuerMetadata{
		CredentialIssuer:   "https://issuer.example.com",
		CredentialEndpoint: "https://issuer.example.com/credential",
	}
	serverMetadata := &oidc4vci.ProviderMetadata{
		Issuer:        "https://issuer.example.com",
		TokenEndpoint: "https://issuer.example.com/token",
	}
	offerWithPIN := func(txCode bool) string {
		offer := preAuthorizedOffer("321")
		offer.CredentialIssuer = metadata.CredentialIssuer
		if txCode {
			offer.Grants.PreAuthorizedCode.TxCode = &oidc4vci.TxCode{Length: 4}
		} else {
			offer.Grants.PreAuthorizedCode.UserPINRequired = true
		}
		data, _ := json.Marshal(offer)
		return "openid-credential-offer://?credential_offer=" + url.QueryEscape(string(data))
	}
	resolvingIssuerClient := func(t *testing.T) *oidc4vci.MockIssuerClient {
		issuerClient := oidc4vci.NewMockIssuerClient(gomock.NewController(t))
		issuerClient.EXPECT().CredentialIssuerMetadata(gomock.Any(), metadata.CredentialIssuer).Return(metadata, nil)
		issuerClient.EXPECT().AuthorizationServerMetadata(gomock.Any(), metadata.CredentialIssuer).Return(serverMetadata, nil)
		return issuerClient
	}
	// submitPIN enters the PIN once the wallet asked for it
	submitPIN := func(tc testContext, pin string) {
		go func() {
			for !tc.pins.PINRequested(alice.SessionID) {
				time.Sleep(time.Millisecond)
			}
			_ = tc.pins.SubmitPIN(context.Background(), alice.SessionID, alice.UserID, pin)
		}()
	}

	t.Run("ok - user_pin", func(t *testing.T) {
		issuerClient := resolvingIssuerClient(t)
		issuerClient.EXPECT().RequestAccessToken(gomock.Any(), serverMetadata.TokenEndpoint, oidc4vci.PreAuthorizedCodeGrant, map[string]string{
			oidc4vci.PreAuthorizedCodeParam: "321",
			oidc4vci.UserPINParam:           "1234",
		}).Return(&oidc4vci.TokenResponse{AccessToken: "tok"}, nil)
		issuerClient.EXPECT().RequestCredential(gomock.Any(), metadata.CredentialEndpoint, gomock.Any(), "tok").
			Return(&oidc4vci.CredentialResponse{Format: "jwt_vc", Credential: issuedJWT(t, "urn:uuid:1", "did:key:holder", "X")}, nil)
		tc := newTestContext(t, testConfig(), issuerClient, nil)
		submitPIN(tc, "1234")

		result, err := tc.holder.Issue(ctx, IssuanceRequest{Identity: alice, OfferURI: offerWithPIN(false)})

		require.NoError(t, err)
		assert.Len(t, result.Credentials, 1)
	})
	t.Run("ok - tx_code", func(t *testing.T) {
		issuerClient := resolvingIssuerClient(t)
		issuerClient.EXPECT().RequestAccessToken(gomock.Any(), gomock.Any(), gomock.Any(), map[string]string{
			oidc4vci.PreAuthorizedCodeParam: "321",
			oidc4vci.TxCodeParam:            "9876",
		}).Return(&oidc4vci.TokenResponse{AccessToken: "tok"}, nil)
		issuerClient.EXPECT().RequestCredential(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(&oidc4vci.CredentialResponse{Format: "jwt_vc", Credential: issuedJWT(t, "urn:uuid:1", "did:key:holder", "X")}, nil)
		tc := newTestContext(t, testConfig(), issuerClient, nil)
		submitPIN(tc, "9876")

		_, err := tc.holder.Issue(ctx, IssuanceRequest{Identity: alice, OfferURI: offerWithPIN(true)})

		require.NoError(t, err)
	})
	t.Run("error - PIN timeout, no token request", func(t *testing.T) {
		// RequestAccessToken is not expected: the mock fails the test if it's called
		issuerClient := resolvingIssuerClient(t)
		config := testConfig()
		config.PINTimeout = 50 * time.Millisecond
		tc := newTestContext(t, config, issuerClient, nil)
		defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

		_, err := tc.holder.Issue(ctx, IssuanceRequest{Identity: alice, OfferURI: offerWithPIN(false)})

		assert.ErrorIs(t, err, ErrPinTimeout)
		assert.False(t, tc.pins.PINRequested(alice.SessionID))
		// the wait is over, a late PIN finds nobody listening
		assert.ErrorIs(t, tc.pins.SubmitPIN(ctx, alice.SessionID, alice.UserID, "1234"), session.ErrNoSubscriber)
	})
	t.Run("error - invalid PIN", func(t *testing.T) {
		issuerClient := resolvingIssuerClient(t)
		issuerClient.EXPECT().RequestAccessToken(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, fmt.Errorf("request access token error: %w", oidc4vci.Error{Code: oidc4vci.InvalidGrant, StatusCode: http.StatusBadRequest}))
		tc := newTestContext(t, testConfig(), issuerClient, nil)
		submitPIN(tc, "0000")

		_, err := tc.holder.Issue(ctx, IssuanceRequest{Identity: alice, OfferURI: offerWithPIN(false)})

		assert.ErrorIs(t, err, ErrInvalidPIN)
	})
	t.Run("error - token request fails for other reason", func(t *testing.T) {
		issuerClient := resolvingIssuerClient(t)
		issuerClient.EXPECT().RequestAccessToken(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, errors.New("connection refused"))
		tc := newTestContext(t, testConfig(), issuerClient, nil)
		submitPIN(tc, "0000")

		_, err := tc.holder.Issue(ctx, IssuanceRequest{Identity: alice, OfferURI: offerWithPIN(false)})

		assert.EqualError(t, err, "connection refused")
		assert.NotErrorIs(t, err, ErrInvalidPIN)
	})
	t.Run("error - no session to ask for PIN", func(t *testing.T) {
		issuerClient := resolvingIssuerClient(t)
		tc := newTestContext(t, testConfig(), issuerClient, nil)

		_, err := tc.holder.Issue(ctx, IssuanceRequest{Identity: oauth.Identity{UserID: "alice"}, OfferURI: offerWithPIN(false)})

		assert.ErrorIs(t, err, ErrPinChannelUnavailable)
	})
	t.Run("error - no PIN channel", func(t *testing.T) {
		issuerClient := resolvingIssuerClient(t)
		tc := newTestContext(t, testConfig(), issuerClient, nil, WithPINChannel(nil))

		_, err := tc.holder.Issue(ctx, IssuanceRequest{Identity: alice, OfferURI: offerWithPIN(false)})

		assert.ErrorIs(t, err, ErrPinChannelUnavailable)
	})
	t.Run("error - context cancelled while waiting", func(t *testing.T) {
		issuerClient := resolvingIssuerClient(t)
		tc := newTestContext(t, testConfig(), issuerClient, nil)
		cancelCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
		defer cancel()

		_, err := tc.holder.Issue(cancelCtx, IssuanceRequest{Identity: alice, OfferURI: offerWithPIN(false)})

		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.False(t, tc.pins.PINRequested(alice.SessionID))
	})
}

func TestHolder_PollDeferredCredential(t *testing.T) {
	ctx := context.Background()

	t.Run("ok - transaction rotated, then issued", func(t *testing.T) {
		issuer := newTestIssuer(t)
		issuer.credential.ResponseData = map[string]interface{}{"transaction_id": "A"}
		tc := newTestContext(t, testConfig(), issuer.client(), nil)
		result, err := tc.holder.Issue(ctx, IssuanceRequest{Identity: alice, OfferURI: issuer.offerURI(t, preAuthorizedOffer("321"))})
		require.NoError(t, err)
		credentialID := result.Deferred[0].ID

		// second response: new transaction ID, no credential
		issuer.deferred.ResponseData = map[string]interface{}{"transaction_id": "B"}
		_, err = tc.holder.PollDeferredCredential(ctx, alice.UserID, credentialID)

		assert.ErrorIs(t, err, ErrCredentialNotAvailable)
		assert.Equal(t, "Bearer tok", issuer.deferred.RequestHeaders.Get("Authorization"))
		assert.JSONEq(t, `{"transaction_id":"A"}`, string(issuer.deferred.RequestData))
		metadata, err := tc.deferred.Get(ctx, alice.UserID, credentialID)
		require.NoError(t, err)
		assert.Equal(t, "B", metadata.TransactionID)
		placeholder, err := tc.credentials.Get(ctx, alice.UserID, credentialID)
		require.NoError(t, err)
		assert.Equal(t, types.StatusIssued, placeholder.Status)
		assert.Empty(t, placeholder.JWT)

		// third response: the credential
		credentialJWT := issuedJWT(t, "urn:uuid:issued", "did:key:holder", "LEARCredentialEmployee")
		issuer.deferred.ResponseData = map[string]interface{}{"format": "jwt_vc", "credential": credentialJWT}
		issued, err := tc.holder.PollDeferredCredential(ctx, alice.UserID, credentialID)

		require.NoError(t, err)
		assert.JSONEq(t, `{"transaction_id":"B"}`, string(issuer.deferred.RequestData))
		assert.Equal(t, credentialID, issued.ID)
		assert.Equal(t, types.StatusValid, issued.Status)
		assert.Equal(t, credentialJWT, issued.JWT)
		assert.Equal(t, placeholder.CreatedAt.Unix(), issued.CreatedAt.Unix())
		_, err = tc.deferred.Get(ctx, alice.UserID, credentialID)
		assert.ErrorIs(t, err, types.ErrDeferredNotFound)
	})
	t.Run("error - issuance pending", func(t *testing.T) {
		issuer := newTestIssuer(t)
		issuer.deferred.StatusCode = http.StatusBadRequest
		issuer.deferred.ResponseData = map[string]interface{}{"error": "issuance_pending"}
		tc := newTestContext(t, testConfig(), issuer.client(), nil)
		metadata := types.DeferredCredentialMetadata{
			CredentialID:     "1",
			UserID:           alice.UserID,
			TransactionID:    "A",
			AccessToken:      "tok",
			DeferredEndpoint: issuer.server.URL + "/deferred",
		}
		require.NoError(t, tc.deferred.Put(ctx, metadata))

		_, err := tc.holder.PollDeferredCredential(ctx, alice.UserID, "1")

		assert.ErrorIs(t, err, ErrCredentialNotAvailable)
		stored, err := tc.deferred.Get(ctx, alice.UserID, "1")
		require.NoError(t, err)
		assert.Equal(t, metadata, *stored)
	})
	t.Run("error - invalid transaction ID", func(t *testing.T) {
		issuer := newTestIssuer(t)
		issuer.deferred.StatusCode = http.StatusBadRequest
		issuer.deferred.ResponseData = map[string]interface{}{"error": "invalid_transaction_id"}
		tc := newTestContext(t, testConfig(), issuer.client(), nil)
		require.NoError(t, tc.deferred.Put(ctx, types.DeferredCredentialMetadata{
			CredentialID:     "1",
			UserID:           alice.UserID,
			TransactionID:    "A",
			DeferredEndpoint: issuer.server.URL + "/deferred",
		}))

		_, err := tc.holder.PollDeferredCredential(ctx, alice.UserID, "1")

		var oauthError oidc4vci.Error
		require.ErrorAs(t, err, &oauthError)
		assert.Equal(t, oidc4vci.InvalidTransactionID, oauthError.Code)
		assert.NotErrorIs(t, err, ErrCredentialNotAvailable)
	})
	t.Run("error - unknown deferred credential", func(t *testing.T) {
		tc := newTestContext(t, testConfig(), nil, nil)

		_, err := tc.holder.PollDeferredCredential(ctx, alice.UserID, "unknown")

		assert.ErrorIs(t, err, types.ErrDeferredNotFound)
	})
}
