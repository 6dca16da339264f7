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

// Package oauth contains generic OAuth related functionality, variables and constants
package oauth

import (
	"encoding/json"
	"errors"
)

// this file contains constants, variables and helper functions for OAuth related code

// oauth parameter keys
const (
	// ClientIDParam is the parameter name for the client_id parameter. (RFC6749)
	ClientIDParam = "client_id"
	// ClientIDSchemeParam is the parameter name for the client_id_scheme parameter. (OpenID4VP)
	ClientIDSchemeParam = "client_id_scheme"
	// ClientMetadataParam is the parameter name for the client_metadata parameter. (OpenID4VP)
	ClientMetadataParam = "client_metadata"
	// DCQLQueryParam is the parameter name for the dcql_query parameter. (OpenID4VP)
	DCQLQueryParam = "dcql_query"
	// NonceParam is the parameter name for the nonce parameter
	NonceParam = "nonce"
	// PresentationDefParam is the parameter name for the OpenID4VP presentation_definition parameter. (OpenID4VP)
	PresentationDefParam = "presentation_definition"
	// PresentationSubmissionParam is the parameter name for the presentation_submission parameter. (OpenID4VP)
	PresentationSubmissionParam = "presentation_submission"
	// RedirectURIParam is the parameter name for the redirect_uri parameter. (RFC6749)
	RedirectURIParam = "redirect_uri"
	// RequestParam is the parameter name for the request parameter. (RFC9101)
	RequestParam = "request"
	// RequestURIParam is the parameter name for the request parameter. (RFC9101)
	RequestURIParam = "request_uri"
	// ResponseModeParam is the parameter name for the OAuth2 response_mode parameter.
	ResponseModeParam = "response_mode"
	// ResponseTypeParam is the parameter name for the response_type parameter. (RFC6749)
	ResponseTypeParam = "response_type"
	// ResponseURIParam is the parameter name for the OpenID4VP response_uri parameter.
	ResponseURIParam = "response_uri"
	// ScopeParam is the parameter name for the scope parameter. (RFC6749)
	ScopeParam = "scope"
	// StateParam is the parameter name for the state parameter. (RFC6749)
	StateParam = "state"
	// VpTokenParam is the parameter name for the vp_token parameter. (OpenID4VP)
	VpTokenParam = "vp_token"
)

// OpenIDScope is the scope of OpenID Connect (and SIOPv2) requests. It doesn't request credentials.
const OpenIDScope = "openid"

// response types
const (
	// CodeResponseType is the parameter name for the code parameter. (RFC6749)
	CodeResponseType = "code"
	// VPTokenResponseType is paramter name for the vp_token repsponse type. (OpenID4VP)
	VPTokenResponseType = "vp_token"
	// IDTokenResponseType is the response type of a SIOPv2 request.
	IDTokenResponseType = "id_token"
)

// response modes
const (
	// DirectPostResponseMode is the response mode in which the wallet posts the response to response_uri. (OpenID4VP)
	DirectPostResponseMode = "direct_post"
	// DirectPostJWTResponseMode is direct_post with the response wrapped in a JWT. (OpenID4VP)
	DirectPostJWTResponseMode = "direct_post.jwt"
)

// authorization request URI schemes
const (
	// OpenID4VPScheme is the URI scheme of OpenID4VP authorization requests.
	OpenID4VPScheme = "openid4vp"
	// OpenIDScheme is the URI scheme of SIOPv2 authorization requests.
	OpenIDScheme = "openid"
)

const (
	// ErrorParam is the parameter name for the error parameter
	ErrorParam = "error"
	// ErrorDescriptionParam is the parameter name for the error_description parameter
	ErrorDescriptionParam = "error_description"
)

// Redirect is the response from the verifier on the direct_post authorization response.
type Redirect struct {
	// RedirectURI is the URI to redirect the user-agent to.
	RedirectURI string `json:"redirect_uri"`
}

// Audience is the aud claim of a JWT, which is either a string or an array of strings.
type Audience []string

var _ json.Unmarshaler = (*Audience)(nil)

func (a *Audience) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*a = Audience{single}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return errors.New("aud must be a string or an array of strings")
	}
	*a = list
	return nil
}

