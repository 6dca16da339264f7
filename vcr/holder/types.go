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
	"fmt"
	"strings"

	"github.com/nuts-foundation/nuts-wallet/auth/oauth"
	"github.com/nuts-foundation/nuts-wallet/vcr/types"
)

// Profile selects the ecosystem specific behavior of the workflows.
type Profile string

const (
	// ProfileStandard produces signed JWT presentations. Deferred credentials are polled by the caller.
	ProfileStandard Profile = "standard"
	// ProfileEBSI resolves deferred credentials while issuing, after a delay.
	ProfileEBSI Profile = "ebsi"
	// ProfileDOME produces unsigned, Base64url encoded JSON presentations.
	ProfileDOME Profile = "dome"
)

// ParseProfile parses a profile name. The empty string yields the empty profile, meaning "use the default".
func ParseProfile(name string) (Profile, error) {
	switch profile := Profile(strings.ToLower(strings.TrimSpace(name))); profile {
	case "", ProfileStandard, ProfileEBSI, ProfileDOME:
		return profile, nil
	default:
		return "", fmt.Errorf("unknown profile: %s", name)
	}
}

// IssuanceState is a state of the issuance workflow.
type IssuanceState string

const (
	StateOfferReceived       IssuanceState = "OfferReceived"
	StateMetadataResolved    IssuanceState = "MetadataResolved"
	StateTokenPending        IssuanceState = "TokenPending"
	StateTokenObtained       IssuanceState = "TokenObtained"
	StateCredentialRequested IssuanceState = "CredentialRequested"
	StateIssued              IssuanceState = "Issued"
	StateDeferred            IssuanceState = "Deferred"
)

// IssuanceRequest starts an issuance for a credential offer.
type IssuanceRequest struct {
	Identity oauth.Identity
	// OfferURI is the credential offer URI, carrying the offer by value or by reference.
	OfferURI string
	// Profile overrides the configured profile when set.
	Profile Profile
}

// IssuanceResult is the outcome of an issuance.
type IssuanceResult struct {
	// State is Issued when all offered credentials were received, Deferred when at least one is pending.
	State IssuanceState `json:"state"`
	// Credentials are the received credentials.
	Credentials []types.StoredCredential `json:"credentials"`
	// Deferred are the placeholders of credentials the issuer deferred.
	Deferred []types.StoredCredential `json:"deferred,omitempty"`
}

// AuthorizationCode is the result of the authorization round-trip of an authorization_code grant.
type AuthorizationCode struct {
	Code         string
	CodeVerifier string
	RedirectURI  string
}

// PresentationRequest starts a presentation for an OpenID4VP authorization request.
type PresentationRequest struct {
	Identity oauth.Identity
	// RequestURI is the authorization request URI, carrying the request object by value or by reference.
	RequestURI string
	// Profile overrides the configured profile when set.
	Profile Profile
	// BearerToken is sent to the verifier with the authorization response, if set.
	BearerToken string
}

// PreparedPresentation is a verified authorization request with the credentials that can satisfy it.
type PreparedPresentation struct {
	// ID identifies the prepared presentation when responding.
	ID string `json:"id"`
	// Verifier is the client_id of the relying party.
	Verifier string `json:"verifier"`
	// Scope is the requested scope, if any.
	Scope string `json:"scope,omitempty"`
	// Candidates are the credentials of the user matching the request.
	Candidates []types.StoredCredential `json:"candidates"`
}

// PresentationResult is the outcome of a presentation.
type PresentationResult struct {
	// RedirectURI is where the verifier wants the user to go next, if anywhere.
	RedirectURI string `json:"redirectUri,omitempty"`
	// CredentialIDs are the presented credentials.
	CredentialIDs []string `json:"credentialIds"`
}
