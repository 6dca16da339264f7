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

package trust

import (
	"context"
	"encoding/base64"
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

// NewHTTPIssuerList creates an IssuerList backed by a trusted issuers registry, queried at {baseURI}{issuerID}.
func NewHTTPIssuerList(baseURI string, httpClient core.HTTPRequestDoer) *HTTPIssuerList {
	return &HTTPIssuerList{baseURI: baseURI, httpClient: httpClient}
}

var _ IssuerList = (*HTTPIssuerList)(nil)

// HTTPIssuerList queries a remote trusted issuers registry.
type HTTPIssuerList struct {
	baseURI    string
	httpClient core.HTTPRequestDoer
}

type issuerResponse struct {
	DID        string            `json:"did"`
	Attributes []issuerAttribute `json:"attributes"`
}

type issuerAttribute struct {
	Hash       string `json:"hash,omitempty"`
	Body       string `json:"body"`
	IssuerType string `json:"issuerType,omitempty"`
}

func (h HTTPIssuerList) Capabilities(ctx context.Context, issuerID string) ([]CredentialCapability, error) {
	targetURL := h.baseURI + url.PathEscape(issuerID)
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, err
	}
	_ = core.UserAgentRequestEditor(ctx, request)
	response, err := h.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("trusted issuers list request failed: %w", err)
	}
	defer response.Body.Close()
	if response.StatusCode == http.StatusNotFound {
		return nil, ErrIssuerNotAuthorized
	}
	if err = core.TestResponseCodeWithLog(http.StatusOK, response, log.Logger()); err != nil {
		return nil, fmt.Errorf("trusted issuers list request failed: %w", err)
	}
	data, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, err
	}
	var issuer issuerResponse
	if err = json.Unmarshal(data, &issuer); err != nil {
		return nil, fmt.Errorf("invalid trusted issuers list response: %w", err)
	}
	var result []CredentialCapability
	for i, attribute := range issuer.Attributes {
		capability, err := decodeAttribute(attribute.Body)
		if err != nil {
			return nil, fmt.Errorf("invalid trusted issuers list attribute %d: %w", i, err)
		}
		result = append(result, *capability)
	}
	log.Logger().
		WithField(core.LogFieldCredentialIssuer, issuerID).
		Debugf("Resolved %d capabilities from trusted issuers list", len(result))
	return result, nil
}

func decodeAttribute(body string) (*CredentialCapability, error) {
	body = strings.TrimSpace(body)
	data, err := base64.StdEncoding.DecodeString(body)
	if err != nil {
		// some registries use the URL-safe alphabet without padding
		data, err = base64.RawURLEncoding.DecodeString(strings.TrimRight(body, "="))
	}
	if err != nil {
		return nil, errors.New("body is not base64 encoded")
	}
	var capability CredentialCapability
	if err = json.Unmarshal(data, &capability); err != nil {
		return nil, err
	}
	if capability.CredentialsType == "" {
		return nil, errors.New("missing credentialsType")
	}
	return &capability, nil
}
