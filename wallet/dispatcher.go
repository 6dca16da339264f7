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
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nuts-foundation/nuts-wallet/auth/oauth"
	"github.com/nuts-foundation/nuts-wallet/core"
	"github.com/nuts-foundation/nuts-wallet/vcr/codec"
	"github.com/nuts-foundation/nuts-wallet/vcr/holder"
	"github.com/nuts-foundation/nuts-wallet/vcr/oidc4vci"
	"github.com/nuts-foundation/nuts-wallet/vcr/types"
	"github.com/nuts-foundation/nuts-wallet/wallet/log"
)

// ErrUnsupportedPayload is returned when a payload doesn't start any workflow of the wallet.
var ErrUnsupportedPayload = errors.New("unsupported payload")

var nowFunc = time.Now

// ClassifyPayload tells which workflow a scanned payload starts.
// Credential offers and authorization requests are recognized by their URI scheme or query parameters,
// anything else written in the Base45 alphabet is taken to be a compact credential.
func ClassifyPayload(payload string) (PayloadKind, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return "", fmt.Errorf("%w: empty payload", ErrUnsupportedPayload)
	}
	if parsed, err := url.Parse(payload); err == nil && parsed.Scheme != "" {
		query := parsed.Query()
		scheme := strings.ToLower(parsed.Scheme)
		switch {
		case scheme == oidc4vci.CredentialOfferScheme,
			query.Has(oidc4vci.CredentialOfferParam),
			query.Has(oidc4vci.CredentialOfferURIParam):
			return IssuancePayload, nil
		case scheme == oauth.OpenID4VPScheme,
			scheme == oauth.OpenIDScheme,
			query.Has(oauth.RequestParam),
			query.Has(oauth.RequestURIParam):
			return PresentationPayload, nil
		}
	}
	if codec.IsBase45(payload) {
		return CredentialPayload, nil
	}
	return "", ErrUnsupportedPayload
}

// Dispatch runs the workflow the payload starts. Workflow errors are returned unchanged.
func (w *Wallet) Dispatch(ctx context.Context, request DispatchRequest) (*DispatchResult, error) {
	kind, err := ClassifyPayload(request.Payload)
	if err != nil {
		return nil, err
	}
	payload := strings.TrimSpace(request.Payload)
	log.Logger().
		WithField(core.LogFieldUserID, request.Identity.UserID).
		Debugf("Dispatching %s payload", kind)
	result := DispatchResult{Kind: kind}
	switch kind {
	case IssuancePayload:
		result.Issuance, err = w.holder.Issue(ctx, holder.IssuanceRequest{
			Identity: request.Identity,
			OfferURI: payload,
			Profile:  request.Profile,
		})
		w.metrics.issued(result.Issuance, err)
	case PresentationPayload:
		presentationRequest := holder.PresentationRequest{
			Identity:    request.Identity,
			RequestURI:  payload,
			Profile:     request.Profile,
			BearerToken: request.BearerToken,
		}
		if request.Select {
			result.Prepared, err = w.holder.Prepare(ctx, presentationRequest)
			if err != nil {
				w.metrics.presented(err)
			}
		} else {
			result.Presentation, err = w.holder.Present(ctx, presentationRequest)
			w.metrics.presented(err)
		}
	case CredentialPayload:
		result.Credential, err = w.importCredential(ctx, request.Identity.UserID, payload)
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// importCredential stores a compact credential as received: it's VALID, and keeps its compact form as CWT.
// When the user already holds another credential with the same ID, the import gets a fresh ID instead of merging into it.
func (w *Wallet) importCredential(ctx context.Context, userID string, payload string) (*types.StoredCredential, error) {
	decoded, err := codec.ExtractVCFromCompactCBOR(payload)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(decoded)
	if err != nil {
		return nil, err
	}
	credentialID, _ := decoded["id"].(string)
	if credentialID != "" {
		existing, err := w.credentials.Get(ctx, userID, credentialID)
		switch {
		case errors.Is(err, types.ErrNotFound):
		case err != nil:
			return nil, err
		case !sameCredential(existing, decoded):
			log.Logger().
				WithField(core.LogFieldUserID, userID).
				WithField(core.LogFieldCredentialID, credentialID).
				Warn("Imported credential collides with a stored credential, assigning a new ID")
			credentialID = ""
		}
	}
	if credentialID == "" {
		credentialID = "urn:uuid:" + uuid.NewString()
	}
	credential := types.StoredCredential{
		ID:        credentialID,
		UserID:    userID,
		Status:    types.StatusValid,
		Types:     codec.CredentialTypes(decoded),
		JSON:      data,
		CWT:       payload,
		CreatedAt: nowFunc(),
	}
	if err = w.credentials.Save(ctx, credential); err != nil {
		return nil, fmt.Errorf("unable to store credential: %w", err)
	}
	log.Logger().
		WithField(core.LogFieldUserID, userID).
		WithField(core.LogFieldCredentialID, credentialID).
		Info("Imported compact credential")
	return w.credentials.Get(ctx, userID, credentialID)
}

// sameCredential tells whether the stored credential holds the given decoded credential.
func sameCredential(stored *types.StoredCredential, decoded map[string]interface{}) bool {
	if len(stored.JSON) == 0 {
		return false
	}
	var storedJSON map[string]interface{}
	if err := json.Unmarshal(stored.JSON, &storedJSON); err != nil {
		return false
	}
	return reflect.DeepEqual(storedJSON, decoded)
}
