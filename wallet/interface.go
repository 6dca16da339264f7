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

package wallet

import (
	"context"

	"github.com/nuts-foundation/nuts-wallet/auth/oauth"
	"github.com/nuts-foundation/nuts-wallet/vcr/holder"
	"github.com/nuts-foundation/nuts-wallet/vcr/types"
)

// Service is what the wallet offers to its users.
type Service interface {
	// Dispatch classifies a scanned payload and runs the matching workflow.
	// It returns ErrUnsupportedPayload if the payload is neither a credential offer, an authorization request nor a compact credential.
	Dispatch(ctx context.Context, request DispatchRequest) (*DispatchResult, error)
	// Respond presents the selected credentials of a presentation prepared by Dispatch.
	Respond(ctx context.Context, identity oauth.Identity, presentationID string, credentialIDs []string) (*holder.PresentationResult, error)
	// PINRequested reports whether an issuance is waiting for the user to enter a PIN.
	PINRequested(identity oauth.Identity) bool
	// SubmitPIN delivers a PIN to the issuance waiting for it.
	SubmitPIN(ctx context.Context, identity oauth.Identity, pin string) error
	// Credentials lists the credentials of the user.
	Credentials(ctx context.Context, userID string) ([]types.StoredCredential, error)
	// PollDeferredCredential asks the issuer for a credential that was deferred.
	PollDeferredCredential(ctx context.Context, userID string, credentialID string) (*types.StoredCredential, error)
}

// PayloadKind is the kind of workflow a scanned payload starts.
type PayloadKind string

const (
	// IssuancePayload is an OpenID4VCI credential offer.
	IssuancePayload PayloadKind = "issuance"
	// PresentationPayload is an OpenID4VP authorization request.
	PresentationPayload PayloadKind = "presentation"
	// CredentialPayload is a compact (Base45 CBOR) credential.
	CredentialPayload PayloadKind = "credential"
)

// DispatchRequest is a payload scanned or followed by a wallet user.
type DispatchRequest struct {
	Identity oauth.Identity
	Payload  string
	// Profile overrides the configured profile, if set.
	Profile holder.Profile
	// BearerToken is sent to the verifier when fetching a request object, if set.
	BearerToken string
	// Select stops presentations after preparation, so the user can select the credentials to present.
	Select bool
}

// DispatchResult is the outcome of a dispatched payload. Only the field of the payload's kind is set.
type DispatchResult struct {
	Kind         PayloadKind                  `json:"kind"`
	Issuance     *holder.IssuanceResult       `json:"issuance,omitempty"`
	Prepared     *holder.PreparedPresentation `json:"prepared,omitempty"`
	Presentation *holder.PresentationResult   `json:"presentation,omitempty"`
	Credential   *types.StoredCredential      `json:"credential,omitempty"`
}
