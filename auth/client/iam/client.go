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

package iam

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/nuts-foundation/nuts-wallet/auth/log"
	"github.com/nuts-foundation/nuts-wallet/auth/oauth"
	"github.com/nuts-foundation/nuts-wallet/core"
)

// requestObjectContentType is the media type of a signed request object. (RFC9101)
const requestObjectContentType = "application/oauth-authz-req+jwt"

var _ VerifierClient = (*HTTPClient)(nil)

// HTTPClient holds the server address and other basic settings for the http client
type HTTPClient struct {
	httpClient core.HTTPRequestDoer
}

// NewHTTPClient creates a new verifier client.
// The given client must not follow redirects, since the redirect of an authorization response is returned to the caller.
func NewHTTPClient(httpClient core.HTTPRequestDoer) *HTTPClient {
	return &HTTPClient{httpClient: httpClient}
}

func (hb HTTPClient) RequestObject(ctx context.Context, requestURI string) (string, error) {
	if _, err := core.ParseAbsoluteURL(requestURI); err != nil {
		return "", fmt.Errorf("invalid request_uri: %w", err)
	}
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURI, nil)
	if err != nil {
		return "", err
	}
	request.Header.Set("Accept", requestObjectContentType+", application/jwt")
	_ = core.UserAgentRequestEditor(ctx, request)
	response, err := hb.httpClient.Do(request)
	if err != nil {
		return "", fmt.Errorf("failed to retrieve request object: %w", err)
	}
	defer response.Body.Close()
	if err = core.TestResponseCodeWithLog(http.StatusOK, response, log.Logger()); err != nil {
		return "", fmt.Errorf("failed to retrieve request object: %w", err)
	}
	data, err := io.ReadAll(response.Body)
	if err != nil {
		return "", fmt.Errorf("unable to read response: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func (hb HTTPClient) PostAuthorizationResponse(ctx context.Context, endpoint string, response AuthorizationResponse) (string, error) {
	responseURL, err := core.ParseAbsoluteURL(endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid response endpoint: %w", err)
	}
	if response.State != "" {
		query := responseURL.Query()
		query.Set(oauth.StateParam, response.State)
		responseURL.RawQuery = query.Encode()
	}
	form := url.Values{}
	form.Set(oauth.VpTokenParam, response.VPToken)
	if response.State != "" {
		form.Set(oauth.StateParam, response.State)
	}
	if response.PresentationSubmission != nil {
		submission, _ := json.Marshal(response.PresentationSubmission)
		form.Set(oauth.PresentationSubmissionParam, string(submission))
	}
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, responseURL.String(), strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if response.BearerToken != "" {
		request.Header.Set("Authorization", "Bearer "+response.BearerToken)
	}
	_ = core.UserAgentRequestEditor(ctx, request)
	httpResponse, err := hb.httpClient.Do(request)
	if err != nil {
		return "", fmt.Errorf("failed to post authorization response: %w", err)
	}
	defer httpResponse.Body.Close()
	return handleAuthorizationResponse(httpResponse)
}

func handleAuthorizationResponse(response *http.Response) (string, error) {
	data, err := io.ReadAll(response.Body)
	if err != nil {
		return "", fmt.Errorf("unable to read response: %w", err)
	}
	switch {
	case response.StatusCode >= 300 && response.StatusCode < 400:
		location := response.Header.Get("Location")
		if location == "" {
			return "", fmt.Errorf("verifier returned HTTP %d without Location header", response.StatusCode)
		}
		return location, nil
	case response.StatusCode >= 400 && response.StatusCode < 500:
		log.Logger().Infof("Verifier rejected authorization response (status=%d): %s", response.StatusCode, core.ClipResponseBody(data))
		return "", core.WrapError(ErrAttestationClient, core.NewHttpError(fmt.Errorf("server returned HTTP %d", response.StatusCode), response.StatusCode, data))
	case response.StatusCode >= 500:
		log.Logger().Infof("Verifier failed to process authorization response (status=%d): %s", response.StatusCode, core.ClipResponseBody(data))
		return "", core.WrapError(ErrAttestationServer, core.NewHttpError(fmt.Errorf("server returned HTTP %d", response.StatusCode), response.StatusCode, data))
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "{}" {
		return "", nil
	}
	redirect := oauth.Redirect{}
	if err := json.Unmarshal(data, &redirect); err != nil {
		// a plain body without redirect is a successful response as well
		log.Logger().Debugf("Authorization response is not a redirect: %s", core.ClipResponseBody(data))
		return "", nil
	}
	return redirect.RedirectURI, nil
}
