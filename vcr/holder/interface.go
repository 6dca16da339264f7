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

	"github.com/nuts-foundation/nuts-wallet/auth/oauth"
	"github.com/nuts-foundation/nuts-wallet/vcr/oidc4vci"
	"github.com/nuts-foundation/nuts-wallet/vcr/types"
)

// Wallet runs the issuance and presentation workflows on behalf of wallet users.
type Wallet interface {
	// Issue runs the issuance workflow for a credential offer: it resolves the offer and metadata,
	// obtains an access token (asking the user for a PIN if required) and requests the offered credentials.
	// Deferred credentials are stored as placeholder; the EBSI profile tries to resolve them before returning.
	Issue(ctx context.Context, request IssuanceRequest) (*IssuanceResult, error)
	// PollDeferredCredential polls the issuer for a deferred credential once.
	// It returns ErrCredentialNotAvailable if the credential is still pending.
	PollDeferredCredential(ctx context.Context, userID string, credentialID string) (*types.StoredCredential, error)
	// Prepare verifies an authorization request and selects the credentials of the user that satisfy it.
	Prepare(ctx context.Context, request PresentationRequest) (*PreparedPresentation, error)
	// Respond presents the selected credentials of a prepared presentation to the verifier.
	Respond(ctx context.Context, identity oauth.Identity, presentationID string, credentialIDs []string) (*PresentationResult, error)
	// Present prepares the presentation and responds with all candidates.
	Present(ctx context.Context, request PresentationRequest) (*PresentationResult, error)
}

// AuthorizationCodeProvider performs the authorization round-trip of an authorization_code grant,
// e.g. by answering an ID token or VP token request of the authorization server.
type AuthorizationCodeProvider interface {
	AuthorizationCode(ctx context.Context, identity oauth.Identity, offer oidc4vci.CredentialOffer, server oidc4vci.ProviderMetadata) (*AuthorizationCode, error)
}
