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

package oidc4vci

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/nuts-foundation/nuts-wallet/core"
	http2 "github.com/nuts-foundation/nuts-wallet/test/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHttpIssuerClient_CredentialIssuerMetadata(t *testing.T) {
	ctx := context.Background()
	t.Run("ok", func(t *testing.T) {
		handler := &http2.Handler{StatusCode: http.StatusOK}
		server := httptest.NewServer(handler)
		defer server.Close()
		handler.ResponseData = CredentialIssuerMetadata{
			CredentialIssuer:           server.URL,
			CredentialEndpoint:         server.URL + "/credential",
			DeferredCredentialEndpoint: server.URL + "/deferred",
		}

		metadata, err := NewIssuerClient(http.DefaultClient).CredentialIssuerMetadata(ctx, server.URL)

		require.NoError(t, err)
		assert.Equal(t, server.URL+"/credential", metadata.CredentialEndpoint)
		assert.Equal(t, server.URL, metadata.AuthorizationServerURL())
		assert.Equal(t, CredentialIssuerMetadataWellKnownPath, handler.Request.URL.Path)
		assert.Equal(t, core.UserAgent(), handler.RequestHeaders.Get("User-Agent"))
	})
	t.Run("error - identifier differs", func(t *testing.T) {
		handler := &http2.Handler{StatusCode: http.StatusOK, ResponseData: CredentialIssuerMetadata{
			CredentialIssuer:   "https://other.example.com",
			CredentialEndpoint: "https://other.example.com/credential",
		}}
		server := httptest.NewServer(handler)
		defer server.Close()

		_, err := NewIssuerClient(http.DefaultClient).CredentialIssuerMetadata(ctx, server.URL)

		assert.EqualError(t, err, "invalid credential issuer meta data: identifier in meta data differs from requested identifier")
	})
	t.Run("error - no credential endpoint", func(t *testing.T) {
		handler := &http2.Handler{StatusCode: http.StatusOK}
		server := httptest.NewServer(handler)
		defer server.Close()
		handler.ResponseData = CredentialIssuerMetadata{CredentialIssuer: server.URL}

		_, err := NewIssuerClient(http.DefaultClient).CredentialIssuerMetadata(ctx, server.URL)

		assert.EqualError(t, err, "invalid credential issuer meta data: does not contain credential endpoint")
	})
	t.Run("error - not found", func(t *testing.T) {
		server := httptest.NewServer(&http2.Handler{StatusCode: http.StatusNotFound, ResponseData: "not found"})
		defer server.Close()

		_, err := NewIssuerClient(http.DefaultClient).CredentialIssuerMetadata(ctx, server.URL)

		var httpErr core.HttpError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, http.StatusNotFound, httpErr.StatusCode)
	})
	t.Run("error - empty identifier", func(t *testing.T) {
		_, err := NewIssuerClient(http.DefaultClient).CredentialIssuerMetadata(ctx, "")

		assert.EqualError(t, err, "empty Credential Issuer Identifier")
	})
}

func TestHttpIssuerClient_AuthorizationServerMetadata(t *testing.T) {
	ctx := context.Background()
	t.Run("ok - openid-configuration", func(t *testing.T) {
		handler := &http2.Handler{StatusCode: http.StatusOK, ResponseData: ProviderMetadata{Issuer: "as", TokenEndpoint: "https://as/token"}}
		server := httptest.NewServer(handler)
		defer server.Close()

		metadata, err := NewIssuerClient(http.DefaultClient).AuthorizationServerMetadata(ctx, server.URL)

		require.NoError(t, err)
		assert.Equal(t, "https://as/token", metadata.TokenEndpoint)
		assert.Equal(t, ProviderMetadataWellKnownPath, handler.Request.URL.Path)
	})
	t.Run("ok - falls back to oauth-authorization-server", func(t *testing.T) {
		mux := http.NewServeMux()
		oauthHandler := &http2.Handler{StatusCode: http.StatusOK, ResponseData: ProviderMetadata{Issuer: "as", TokenEndpoint: "https://as/oauth-token"}}
		mux.Handle(ProviderMetadataWellKnownPath, &http2.Handler{StatusCode: http.StatusNotFound})
		mux.Handle(AuthzServerMetadataWellKnownPath, oauthHandler)
		server := httptest.NewServer(mux)
		defer server.Close()

		metadata, err := NewIssuerClient(http.DefaultClient).AuthorizationServerMetadata(ctx, server.URL)

		require.NoError(t, err)
		assert.Equal(t, "https://as/oauth-token", metadata.TokenEndpoint)
		assert.Equal(t, 1, oauthHandler.Calls())
	})
	t.Run("error - no token endpoint", func(t *testing.T) {
		server := httptest.NewServer(&http2.Handler{StatusCode: http.StatusOK, ResponseData: ProviderMetadata{Issuer: "as"}})
		defer server.Close()

		_, err := NewIssuerClient(http.DefaultClient).AuthorizationServerMetadata(ctx, server.URL)

		assert.EqualError(t, err, "invalid authorization server meta data: does not contain token endpoint")
	})
	t.Run("error - both endpoints fail", func(t *testing.T) {
		server := httptest.NewServer(&http2.Handler{StatusCode: http.StatusInternalServerError})
		defer server.Close()

		_, err := NewIssuerClient(http.DefaultClient).AuthorizationServerMetadata(ctx, server.URL)

		assert.ErrorContains(t, err, "unable to load authorization server metadata")
	})
}

func TestHttpIssuerClient_RequestAccessToken(t *testing.T) {
	ctx := context.Background()
	t.Run("ok", func(t *testing.T) {
		handler := &http2.Handler{StatusCode: http.StatusOK, ResponseData: TokenResponse{AccessToken: "tok", CNonce: "nonce"}}
		server := httptest.NewServer(handler)
		defer server.Close()

		response, err := NewIssuerClient(http.DefaultClient).RequestAccessToken(ctx, server.URL+"/token", PreAuthorizedCodeGrant, map[string]string{
			PreAuthorizedCodeParam: "321",
			UserPINParam:           "1234",
		})

		require.NoError(t, err)
		assert.Equal(t, "tok", response.AccessToken)
		assert.Equal(t, "nonce", response.CNonce)
		assert.Equal(t, "application/x-www-form-urlencoded", handler.RequestHeaders.Get("Content-Type"))
		assert.Equal(t, PreAuthorizedCodeGrant, handler.RequestForm.Get("grant_type"))
		assert.Equal(t, "321", handler.RequestForm.Get(PreAuthorizedCodeParam))
		assert.Equal(t, "1234", handler.RequestForm.Get(UserPINParam))
	})
	t.Run("error - invalid_grant", func(t *testing.T) {
		server := httptest.NewServer(&http2.Handler{StatusCode: http.StatusBadRequest, ResponseData: Error{Code: InvalidGrant, Description: "wrong PIN"}})
		defer server.Close()

		_, err := NewIssuerClient(http.DefaultClient).RequestAccessToken(ctx, server.URL, PreAuthorizedCodeGrant, nil)

		var oauthErr Error
		require.True(t, errors.As(err, &oauthErr))
		assert.Equal(t, InvalidGrant, oauthErr.Code)
		assert.Equal(t, http.StatusBadRequest, oauthErr.StatusCode)
		assert.EqualError(t, err, "request access token error: invalid_grant (wrong PIN)")
	})
	t.Run("error - no access token", func(t *testing.T) {
		server := httptest.NewServer(&http2.Handler{StatusCode: http.StatusOK, ResponseData: TokenResponse{}})
		defer server.Close()

		_, err := NewIssuerClient(http.DefaultClient).RequestAccessToken(ctx, server.URL, PreAuthorizedCodeGrant, nil)

		assert.ErrorContains(t, err, "does not contain an access_token")
	})
}

func TestHttpIssuerClient_RequestCredential(t *testing.T) {
	ctx := context.Background()
	request := CredentialRequest{
		Format: "jwt_vc",
		Types:  []string{"VerifiableCredential", "LEARCredentialEmployee"},
		Proof:  &CredentialRequestProof{ProofType: ProofTypeJWT, Jwt: "proof"},
	}
	t.Run("ok", func(t *testing.T) {
		handler := &http2.Handler{StatusCode: http.StatusOK, ResponseData: map[string]interface{}{"format": "jwt_vc", "credential": "ey..."}}
		server := httptest.NewServer(handler)
		defer server.Close()

		response, err := NewIssuerClient(http.DefaultClient).RequestCredential(ctx, server.URL, request, "tok")

		require.NoError(t, err)
		assert.Equal(t, "ey...", response.FinalCredential())
		assert.False(t, response.Deferred())
		assert.Equal(t, "Bearer tok", handler.RequestHeaders.Get("Authorization"))
		var sent CredentialRequest
		require.NoError(t, json.Unmarshal(handler.RequestData, &sent))
		assert.Equal(t, request, sent)
	})
	t.Run("ok - credentials array", func(t *testing.T) {
		server := httptest.NewServer(&http2.Handler{StatusCode: http.StatusOK, ResponseData: map[string]interface{}{
			"credentials": []interface{}{map[string]interface{}{"credential": "ey..."}},
		}})
		defer server.Close()

		response, err := NewIssuerClient(http.DefaultClient).RequestCredential(ctx, server.URL, request, "tok")

		require.NoError(t, err)
		assert.Equal(t, "ey...", response.FinalCredential())
	})
	t.Run("ok - deferred", func(t *testing.T) {
		server := httptest.NewServer(&http2.Handler{StatusCode: http.StatusAccepted, ResponseData: map[string]interface{}{"transaction_id": "A"}})
		defer server.Close()

		response, err := NewIssuerClient(http.DefaultClient).RequestCredential(ctx, server.URL, request, "tok")

		require.NoError(t, err)
		assert.True(t, response.Deferred())
		assert.Equal(t, "A", response.TransactionID)
	})
	t.Run("error - empty response", func(t *testing.T) {
		server := httptest.NewServer(&http2.Handler{StatusCode: http.StatusOK, ResponseData: map[string]interface{}{}})
		defer server.Close()

		_, err := NewIssuerClient(http.DefaultClient).RequestCredential(ctx, server.URL, request, "tok")

		assert.EqualError(t, err, "credential response does not contain a credential or transaction_id")
	})
	t.Run("error - invalid_proof", func(t *testing.T) {
		server := httptest.NewServer(&http2.Handler{StatusCode: http.StatusBadRequest, ResponseData: Error{Code: InvalidProof}})
		defer server.Close()

		_, err := NewIssuerClient(http.DefaultClient).RequestCredential(ctx, server.URL, request, "tok")

		var oauthErr Error
		require.ErrorAs(t, err, &oauthErr)
		assert.Equal(t, InvalidProof, oauthErr.Code)
	})
}

func TestHttpIssuerClient_RequestDeferredCredential(t *testing.T) {
	handler := &http2.Handler{StatusCode: http.StatusOK, ResponseData: map[string]interface{}{"transaction_id": "B"}}
	server := httptest.NewServer(handler)
	defer server.Close()

	response, err := NewIssuerClient(http.DefaultClient).RequestDeferredCredential(context.Background(), server.URL, "A", "acceptance")

	require.NoError(t, err)
	assert.Equal(t, "B", response.TransactionID)
	assert.Equal(t, "Bearer acceptance", handler.RequestHeaders.Get("Authorization"))
	assert.JSONEq(t, `{"transaction_id":"A"}`, string(handler.RequestData))
}

func TestHttpIssuerClient_CredentialOffer(t *testing.T) {
	ctx := context.Background()
	t.Run("ok", func(t *testing.T) {
		server := httptest.NewServer(&http2.Handler{StatusCode: http.StatusOK, ResponseData: `{
			"credential_issuer": "https://issuer.example.com",
			"credentials": ["LEARCredentialEmployee", {"format": "jwt_vc", "types": ["VerifiableCredential", "Other"]}],
			"grants": {"urn:ietf:params:oauth:grant-type:pre-authorized_code": {"pre-authorized_code": "321", "tx_code": {"length": 4}}}
		}`})
		defer server.Close()

		offer, err := NewIssuerClient(http.DefaultClient).CredentialOffer(ctx, server.URL+"/offer/1")

		require.NoError(t, err)
		require.Len(t, offer.Credentials, 2)
		assert.Equal(t, "LEARCredentialEmployee", offer.Credentials[0].ConfigurationID)
		assert.Equal(t, []string{"VerifiableCredential", "Other"}, offer.Credentials[1].Types)
		assert.True(t, offer.Grants.PreAuthorizedCode.PINRequired())
	})
	t.Run("error - relative URI", func(t *testing.T) {
		_, err := NewIssuerClient(http.DefaultClient).CredentialOffer(ctx, "/offer")

		assert.ErrorContains(t, err, "invalid credential_offer_uri")
	})
	t.Run("error - invalid offer", func(t *testing.T) {
		server := httptest.NewServer(&http2.Handler{StatusCode: http.StatusOK, ResponseData: `{"credential_issuer": "https://issuer.example.com"}`})
		defer server.Close()

		_, err := NewIssuerClient(http.DefaultClient).CredentialOffer(ctx, server.URL)

		assert.EqualError(t, err, "credential offer: no credentials offered")
	})
	t.Run("error - strict mode refuses http", func(t *testing.T) {
		client := NewIssuerClient(core.NewStrictHTTPClient(true, 0, nil))

		_, err := client.CredentialOffer(ctx, "http://issuer.example.com/offer")

		assert.ErrorContains(t, err, "strictmode is enabled")
	})
}

func TestParseCredentialOfferURI(t *testing.T) {
	t.Run("ok - by value", func(t *testing.T) {
		offerJSON := `{"credential_issuer":"https://issuer","credential_configuration_ids":["A"],"grants":{"urn:ietf:params:oauth:grant-type:pre-authorized_code":{"pre-authorized_code":"321"}}}`
		offer, offerURI, err := ParseCredentialOfferURI("openid-credential-offer://?credential_offer=" + url.QueryEscape(offerJSON))

		require.NoError(t, err)
		assert.Empty(t, offerURI)
		assert.Equal(t, "https://issuer", offer.CredentialIssuer)
		assert.Equal(t, []OfferedCredential{{ConfigurationID: "A"}}, offer.OfferedCredentials())
		assert.False(t, offer.Grants.PreAuthorizedCode.PINRequired())
	})
	t.Run("ok - by reference", func(t *testing.T) {
		offer, offerURI, err := ParseCredentialOfferURI("openid-credential-offer://?credential_offer_uri=" + url.QueryEscape("https://issuer/offer/1"))

		require.NoError(t, err)
		assert.Nil(t, offer)
		assert.Equal(t, "https://issuer/offer/1", offerURI)
	})
	t.Run("error - no offer", func(t *testing.T) {
		_, _, err := ParseCredentialOfferURI("openid-credential-offer://?foo=bar")

		assert.ErrorContains(t, err, "missing credential_offer")
	})
	t.Run("error - missing pre-authorized code", func(t *testing.T) {
		offerJSON := `{"credential_issuer":"https://issuer","credentials":["A"],"grants":{"urn:ietf:params:oauth:grant-type:pre-authorized_code":{}}}`
		_, _, err := ParseCredentialOfferURI("openid-credential-offer://?credential_offer=" + url.QueryEscape(offerJSON))

		assert.EqualError(t, err, "credential offer: missing pre-authorized_code")
	})
}

func TestOfferedCredential_JSON(t *testing.T) {
	t.Run("credential_definition types", func(t *testing.T) {
		var offered OfferedCredential
		require.NoError(t, json.Unmarshal([]byte(`{"format":"jwt_vc_json","credential_definition":{"type":["VerifiableCredential","X"]}}`), &offered))

		assert.Equal(t, "jwt_vc_json", offered.Format)
		assert.Equal(t, []string{"VerifiableCredential", "X"}, offered.Types)
	})
	t.Run("configuration id marshals as string", func(t *testing.T) {
		data, err := json.Marshal(OfferedCredential{ConfigurationID: "A"})

		require.NoError(t, err)
		assert.Equal(t, `"A"`, string(data))
	})
}

func TestError_Error(t *testing.T) {
	assert.Equal(t, "invalid_proof", Error{Code: InvalidProof}.Error())
	assert.Equal(t, "server_error - boom", Error{Code: ServerError, Err: errors.New("boom")}.Error())
	assert.True(t, errors.Is(Error{Code: ServerError, Err: context.Canceled}, context.Canceled))
}
