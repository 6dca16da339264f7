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
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/nuts-foundation/nuts-wallet/core"
	"github.com/nuts-foundation/nuts-wallet/vcr/log"
)

// IssuerClient defines the HTTP client used by the wallet to talk to credential issuers and their authorization servers.
type IssuerClient interface {
	// CredentialOffer resolves a credential offer by reference (credential_offer_uri).
	CredentialOffer(ctx context.Context, offerURI string) (*CredentialOffer, error)
	// CredentialIssuerMetadata loads the Credential Issuer Metadata from the well-known endpoint of the issuer.
	CredentialIssuerMetadata(ctx context.Context, issuer string) (*CredentialIssuerMetadata, error)
	// AuthorizationServerMetadata loads the OpenID Provider Metadata of the authorization server,
	// falling back to the OAuth2 Authorization Server Metadata endpoint.
	AuthorizationServerMetadata(ctx context.Context, authorizationServer string) (*ProviderMetadata, error)
	// RequestAccessToken requests an access token from the token endpoint using a form-encoded body.
	RequestAccessToken(ctx context.Context, tokenEndpoint string, grantType string, params map[string]string) (*TokenResponse, error)
	// RequestCredential requests a credential from the credential endpoint.
	RequestCredential(ctx context.Context, credentialEndpoint string, request CredentialRequest, accessToken string) (*CredentialResponse, error)
	// RequestDeferredCredential polls the deferred credential endpoint.
	RequestDeferredCredential(ctx context.Context, deferredEndpoint string, transactionID string, accessToken string) (*CredentialResponse, error)
}

// NewIssuerClient creates an IssuerClient that uses the given HTTP client.
func NewIssuerClient(httpClient core.HTTPRequestDoer) IssuerClient {
	return &httpIssuerClient{httpClient: httpClient}
}

var _ IssuerClient = (*httpIssuerClient)(nil)

type httpIssuerClient struct {
	httpClient core.HTTPRequestDoer
}

func (c httpIssuerClient) CredentialOffer(ctx context.Context, offerURI string) (*CredentialOffer, error) {
	if _, err := core.ParseAbsoluteURL(offerURI); err != nil {
		return nil, fmt.Errorf("invalid credential_offer_uri: %w", err)
	}
	var result CredentialOffer
	if err := c.httpGet(ctx, offerURI, &result); err != nil {
		return nil, fmt.Errorf("unable to resolve credential offer: %w", err)
	}
	if err := result.Validate(); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c httpIssuerClient) CredentialIssuerMetadata(ctx context.Context, issuer string) (*CredentialIssuerMetadata, error) {
	if issuer == "" {
		return nil, errors.New("empty Credential Issuer Identifier")
	}
	result := CredentialIssuerMetadata{}
	err := c.httpGet(ctx, core.JoinURLPaths(issuer, CredentialIssuerMetadataWellKnownPath), &result)
	if err != nil {
		return nil, fmt.Errorf("unable to load Credential Issuer Metadata (identifier=%s): %w", issuer, err)
	}
	if strings.TrimSuffix(result.CredentialIssuer, "/") != strings.TrimSuffix(issuer, "/") {
		return nil, errors.New("invalid credential issuer meta data: identifier in meta data differs from requested identifier")
	}
	if len(result.CredentialEndpoint) == 0 {
		return nil, errors.New("invalid credential issuer meta data: does not contain credential endpoint")
	}
	return &result, nil
}

func (c httpIssuerClient) AuthorizationServerMetadata(ctx context.Context, authorizationServer string) (*ProviderMetadata, error) {
	result := ProviderMetadata{}
	err := c.httpGet(ctx, core.JoinURLPaths(authorizationServer, ProviderMetadataWellKnownPath), &result)
	if err != nil {
		log.Logger().WithError(err).Debugf("OpenID Provider Metadata not available, trying OAuth2 Authorization Server Metadata (server=%s)", authorizationServer)
		result = ProviderMetadata{}
		err = c.httpGet(ctx, core.JoinURLPaths(authorizationServer, AuthzServerMetadataWellKnownPath), &result)
	}
	if err != nil {
		return nil, fmt.Errorf("unable to load authorization server metadata (server=%s): %w", authorizationServer, err)
	}
	if len(result.TokenEndpoint) == 0 {
		return nil, errors.New("invalid authorization server meta data: does not contain token endpoint")
	}
	return &result, nil
}

func (c httpIssuerClient) RequestAccessToken(ctx context.Context, tokenEndpoint string, grantType string, params map[string]string) (*TokenResponse, error) {
	values := url.Values{}
	values.Add("grant_type", grantType)
	for key, value := range params {
		values.Add(key, value)
	}
	httpRequest, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenEndpoint, strings.NewReader(values.Encode()))
	if err != nil {
		return nil, err
	}
	httpRequest.Header.Add("Content-Type", "application/x-www-form-urlencoded")
	var accessTokenResponse TokenResponse
	err = c.httpDo(httpRequest, &accessTokenResponse)
	if err != nil {
		return nil, fmt.Errorf("request access token error: %w", err)
	}
	if accessTokenResponse.AccessToken == "" {
		return nil, errors.New("request access token error: response does not contain an access_token")
	}
	return &accessTokenResponse, nil
}

func (c httpIssuerClient) RequestCredential(ctx context.Context, credentialEndpoint string, request CredentialRequest, accessToken string) (*CredentialResponse, error) {
	requestBody, _ := json.Marshal(request)
	httpRequest, err := http.NewRequestWithContext(ctx, http.MethodPost, credentialEndpoint, bytes.NewReader(requestBody))
	if err != nil {
		return nil, err
	}
	httpRequest.Header.Add("Authorization", "Bearer "+accessToken)
	httpRequest.Header.Add("Content-Type", "application/json")
	var credentialResponse CredentialResponse
	if err = c.httpDo(httpRequest, &credentialResponse); err != nil {
		return nil, fmt.Errorf("credential request failed: %w", err)
	}
	if credentialResponse.FinalCredential() == nil && !credentialResponse.Deferred() {
		return nil, errors.New("credential response does not contain a credential or transaction_id")
	}
	return &credentialResponse, nil
}

func (c httpIssuerClient) RequestDeferredCredential(ctx context.Context, deferredEndpoint string, transactionID string, accessToken string) (*CredentialResponse, error) {
	requestBody, _ := json.Marshal(DeferredCredentialRequest{TransactionID: transactionID})
	httpRequest, err := http.NewRequestWithContext(ctx, http.MethodPost, deferredEndpoint, bytes.NewReader(requestBody))
	if err != nil {
		return nil, err
	}
	httpRequest.Header.Add("Authorization", "Bearer "+accessToken)
	httpRequest.Header.Add("Content-Type", "application/json")
	var credentialResponse CredentialResponse
	if err = c.httpDo(httpRequest, &credentialResponse); err != nil {
		return nil, fmt.Errorf("deferred credential request failed: %w", err)
	}
	return &credentialResponse, nil
}

func (c httpIssuerClient) httpGet(ctx context.Context, targetURL string, result interface{}) error {
	httpRequest, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return err
	}
	httpRequest.Header.Add("Accept", "application/json")
	return c.httpDo(httpRequest, result)
}

// httpDo performs the request and unmarshals the JSON response into result.
// OAuth2 error responses are returned as Error, other unexpected statuses as core.HttpError.
func (c httpIssuerClient) httpDo(httpRequest *http.Request, result interface{}) error {
	_ = core.UserAgentRequestEditor(httpRequest.Context(), httpRequest)
	httpResponse, err := c.httpClient.Do(httpRequest)
	if err != nil {
		return fmt.Errorf("http request error: %w", err)
	}
	defer httpResponse.Body.Close()
	responseBody, err := io.ReadAll(httpResponse.Body)
	if err != nil {
		return fmt.Errorf("read error (%s): %w", httpRequest.URL, err)
	}
	if httpResponse.StatusCode < 200 || httpResponse.StatusCode > 299 {
		log.Logger().
			WithField(core.LogFieldRequestPath, httpRequest.URL.Path).
			Debugf("HTTP response body: %s", core.ClipResponseBody(responseBody))
		var oauthError Error
		if json.Unmarshal(responseBody, &oauthError) == nil && oauthError.Code != "" {
			oauthError.StatusCode = httpResponse.StatusCode
			return oauthError
		}
		return core.NewHttpError(fmt.Errorf("unexpected http response code (%s): %d", httpRequest.URL, httpResponse.StatusCode),
			httpResponse.StatusCode, responseBody)
	}
	if result != nil {
		if err := json.Unmarshal(responseBody, result); err != nil {
			return fmt.Errorf("%T JSON unmarshal error: %w", result, err)
		}
	}
	return nil
}

// ParseCredentialOfferURI parses a credential offer URI (e.g. openid-credential-offer://?credential_offer=...).
// It returns the offer when passed by value, or the offer URI when passed by reference.
func ParseCredentialOfferURI(rawURI string) (*CredentialOffer, string, error) {
	parsed, err := url.Parse(strings.TrimSpace(rawURI))
	if err != nil {
		return nil, "", fmt.Errorf("invalid credential offer URI: %w", err)
	}
	query := parsed.Query()
	if offerJSON := query.Get(CredentialOfferParam); offerJSON != "" {
		var offer CredentialOffer
		if err := json.Unmarshal([]byte(offerJSON), &offer); err != nil {
			return nil, "", fmt.Errorf("invalid credential offer: %w", err)
		}
		if err := offer.Validate(); err != nil {
			return nil, "", err
		}
		return &offer, "", nil
	}
	if offerURI := query.Get(CredentialOfferURIParam); offerURI != "" {
		return nil, offerURI, nil
	}
	return nil, "", fmt.Errorf("invalid credential offer URI: missing %s or %s", CredentialOfferParam, CredentialOfferURIParam)
}
