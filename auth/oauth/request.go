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

package oauth

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/lestrrat-go/jwx/v2/jws"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/nuts-foundation/nuts-wallet/vcr/pe"
)

// ErrInvalidRequest is returned when an authorization request can't be parsed.
var ErrInvalidRequest = errors.New("invalid authorization request")

// clockSkew is the leeway for exp/nbf/iat of signed requests.
const clockSkew = 5 * time.Second

// AuthorizationRequestReference is an authorization request as received by the wallet (scanned or followed),
// before the request object is resolved.
type AuthorizationRequestReference struct {
	// ClientID is the client_id query parameter, if present.
	ClientID string
	// Request is the request object passed by value.
	Request string
	// RequestURI is the location of the request object, passed by reference.
	RequestURI string
}

// ParseAuthorizationRequestURI parses an OpenID4VP/SIOPv2 authorization request URI (openid4vp://, openid:// or https://).
// The request object must be passed by value (request) or by reference (request_uri).
func ParseAuthorizationRequestURI(raw string) (*AuthorizationRequestReference, error) {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	query := parsed.Query()
	result := AuthorizationRequestReference{
		ClientID:   query.Get(ClientIDParam),
		Request:    query.Get(RequestParam),
		RequestURI: query.Get(RequestURIParam),
	}
	if result.Request == "" && result.RequestURI == "" {
		return nil, fmt.Errorf("%w: missing %s or %s", ErrInvalidRequest, RequestParam, RequestURIParam)
	}
	return &result, nil
}

// AuthorizationRequestClaims are the claims of a signed OpenID4VP/SIOPv2 authorization request.
type AuthorizationRequestClaims struct {
	Issuer                 string                     `json:"iss"`
	Audience               Audience                   `json:"aud,omitempty"`
	ClientID               string                     `json:"client_id"`
	ClientIDScheme         string                     `json:"client_id_scheme,omitempty"`
	ResponseType           string                     `json:"response_type,omitempty"`
	ResponseMode           string                     `json:"response_mode,omitempty"`
	ResponseURI            string                     `json:"response_uri,omitempty"`
	RedirectURI            string                     `json:"redirect_uri,omitempty"`
	Scope                  string                     `json:"scope,omitempty"`
	Nonce                  string                     `json:"nonce,omitempty"`
	State                  string                     `json:"state,omitempty"`
	PresentationDefinition *pe.PresentationDefinition `json:"presentation_definition,omitempty"`
	DCQLQuery              *DCQLQuery                 `json:"dcql_query,omitempty"`
	ClientMetadata         *ClientMetadata            `json:"client_metadata,omitempty"`
}

// ClientMetadata is the verifier metadata passed in the authorization request.
type ClientMetadata struct {
	// VPFormats lists the vp_formats supported by the verifier.
	VPFormats map[string]map[string][]string `json:"vp_formats,omitempty"`
}

// DCQLQuery is a Digital Credentials Query Language query.
type DCQLQuery struct {
	Credentials []CredentialQuery `json:"credentials"`
}

// CredentialQuery asks for one credential, identified by id and format.
type CredentialQuery struct {
	ID     string               `json:"id"`
	Format string               `json:"format"`
	Meta   *CredentialQueryMeta `json:"meta,omitempty"`
}

// CredentialQueryMeta constrains the types of the requested credential.
type CredentialQueryMeta struct {
	TypeValues [][]string `json:"type_values,omitempty"`
	VCTValues  []string   `json:"vct_values,omitempty"`
}

// AuthorizationRequest is a parsed, not yet verified, signed authorization request.
type AuthorizationRequest struct {
	AuthorizationRequestClaims
	// KeyID is the kid header of the request object.
	KeyID string
	// Raw is the request object.
	Raw string
}

// ParseAuthorizationRequest parses a signed request object without verifying its signature.
// The time-based claims (exp, nbf, iat) are validated.
func ParseAuthorizationRequest(token string) (*AuthorizationRequest, error) {
	token = strings.TrimSpace(token)
	message, err := jws.ParseString(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	if len(message.Signatures()) != 1 {
		return nil, fmt.Errorf("%w: expected exactly one signature", ErrInvalidRequest)
	}
	if _, err := jwt.ParseString(token, jwt.WithVerify(false), jwt.WithValidate(true), jwt.WithAcceptableSkew(clockSkew)); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	result := AuthorizationRequest{
		KeyID: message.Signatures()[0].ProtectedHeaders().KeyID(),
		Raw:   token,
	}
	if err := json.Unmarshal(message.Payload(), &result.AuthorizationRequestClaims); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	return &result, nil
}

// ResponseEndpoint returns where the authorization response must be sent:
// the response_uri for the direct_post response modes, the redirect_uri otherwise.
func (r AuthorizationRequestClaims) ResponseEndpoint() string {
	if r.ResponseURI != "" && (r.ResponseMode == DirectPostResponseMode || r.ResponseMode == DirectPostJWTResponseMode || r.RedirectURI == "") {
		return r.ResponseURI
	}
	return r.RedirectURI
}

// Scopes returns the requested scopes.
func (r AuthorizationRequestClaims) Scopes() []string {
	return strings.Fields(r.Scope)
}

// RequestedFormats returns the credential and presentation formats the verifier asks for.
func (r AuthorizationRequestClaims) RequestedFormats() []string {
	var result []string
	seen := map[string]bool{}
	add := func(format string) {
		if format != "" && !seen[format] {
			seen[format] = true
			result = append(result, format)
		}
	}
	if r.DCQLQuery != nil {
		for _, query := range r.DCQLQuery.Credentials {
			add(query.Format)
		}
	}
	if r.PresentationDefinition != nil {
		for _, format := range r.PresentationDefinition.Formats() {
			add(format)
		}
	}
	if len(result) == 0 && r.ClientMetadata != nil {
		for format := range r.ClientMetadata.VPFormats {
			add(format)
		}
	}
	return result
}

// RequestedTypes returns the credential types the verifier asks for.
// Scopes are translated to types using scopeTypes; a scope without mapping is taken as type itself.
// DCQL credential queries contribute their type_values, or their id if they don't constrain types.
func (r AuthorizationRequestClaims) RequestedTypes(scopeTypes map[string][]string) []string {
	var result []string
	seen := map[string]bool{}
	add := func(credentialType string) {
		if credentialType != "" && !seen[credentialType] {
			seen[credentialType] = true
			result = append(result, credentialType)
		}
	}
	for _, scope := range r.Scopes() {
		if scope == OpenIDScope {
			continue
		}
		mapped, ok := scopeTypes[scope]
		if !ok {
			add(scope)
			continue
		}
		for _, credentialType := range mapped {
			add(credentialType)
		}
	}
	if r.DCQLQuery != nil {
		for _, query := range r.DCQLQuery.Credentials {
			if query.Meta == nil || (len(query.Meta.TypeValues) == 0 && len(query.Meta.VCTValues) == 0) {
				add(query.ID)
				continue
			}
			for _, types := range query.Meta.TypeValues {
				for _, credentialType := range types {
					if credentialType != "VerifiableCredential" {
						add(credentialType)
					}
				}
			}
			for _, credentialType := range query.Meta.VCTValues {
				add(credentialType)
			}
		}
	}
	if r.PresentationDefinition != nil {
		for _, credentialType := range r.PresentationDefinition.CredentialTypes() {
			add(credentialType)
		}
	}
	return result
}
