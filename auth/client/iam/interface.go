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
	"context"
	"errors"

	"github.com/nuts-foundation/nuts-wallet/vcr/pe"
)

// ErrAttestationClient is returned when the verifier rejects the authorization response (4xx).
var ErrAttestationClient = errors.New("verifier rejected the authorization response")

// ErrAttestationServer is returned when the verifier fails to process the authorization response (5xx).
var ErrAttestationServer = errors.New("verifier failed to process the authorization response")

// VerifierClient is the client the wallet uses to talk to OpenID4VP verifiers.
type VerifierClient interface {
	// RequestObject retrieves the signed request object a request_uri points to.
	RequestObject(ctx context.Context, requestURI string) (string, error)
	// PostAuthorizationResponse posts the authorization response to the verifier's response endpoint.
	// It returns the URI the user should be redirected to, if the verifier returned one.
	PostAuthorizationResponse(ctx context.Context, endpoint string, response AuthorizationResponse) (string, error)
}

// AuthorizationResponse is the direct_post authorization response of the wallet.
type AuthorizationResponse struct {
	// VPToken is the presentation (a JWT, or a Base64url encoded JSON presentation).
	VPToken string
	// PresentationSubmission maps the requested credentials to the presentation. Optional.
	PresentationSubmission *pe.PresentationSubmission
	// State is the state of the authorization request.
	State string
	// BearerToken is sent as bearer Authorization header when set.
	BearerToken string
}
