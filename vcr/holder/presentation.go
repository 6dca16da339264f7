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
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/nuts-foundation/nuts-wallet/auth/client/iam"
	"github.com/nuts-foundation/nuts-wallet/auth/oauth"
	"github.com/nuts-foundation/nuts-wallet/core"
	"github.com/nuts-foundation/nuts-wallet/storage"
	"github.com/nuts-foundation/nuts-wallet/vcr/codec"
	"github.com/nuts-foundation/nuts-wallet/vcr/log"
	"github.com/nuts-foundation/nuts-wallet/vcr/pe"
	"github.com/nuts-foundation/nuts-wallet/vcr/trust"
	"github.com/nuts-foundation/nuts-wallet/vcr/types"
	"github.com/nuts-foundation/nuts-wallet/vdr/didkey"
)

// presentationSession is what Respond needs of a prepared presentation.
type presentationSession struct {
	UserID           string   `json:"userId"`
	Profile          Profile  `json:"profile"`
	BearerToken      string   `json:"bearerToken,omitempty"`
	ClientID         string   `json:"clientId"`
	Nonce            string   `json:"nonce,omitempty"`
	State            string   `json:"state,omitempty"`
	ResponseEndpoint string   `json:"responseEndpoint"`
	DefinitionID     string   `json:"definitionId,omitempty"`
	DCQL             bool     `json:"dcql,omitempty"`
	CandidateIDs     []string `json:"candidateIds"`
}

func (h *Holder) Present(ctx context.Context, request PresentationRequest) (*PresentationResult, error) {
	prepared, err := h.Prepare(ctx, request)
	if err != nil {
		return nil, err
	}
	credentialIDs := make([]string, len(prepared.Candidates))
	for i, candidate := range prepared.Candidates {
		credentialIDs[i] = candidate.ID
	}
	return h.Respond(ctx, request.Identity, prepared.ID, credentialIDs)
}

func (h *Holder) Prepare(ctx context.Context, request PresentationRequest) (*PreparedPresentation, error) {
	profile := h.profile(request.Profile)
	authzRequest, err := h.resolveAuthorizationRequest(ctx, request.RequestURI)
	if err != nil {
		return nil, err
	}
	logger := log.Logger().
		WithField(core.LogFieldUserID, request.Identity.UserID).
		WithField(core.LogFieldVerifier, authzRequest.ClientID)

	for _, scope := range authzRequest.Scopes() {
		if slices.Contains(h.config.SensitiveScopes, scope) {
			if err := h.authorizeVerifier(ctx, authzRequest.ClientID, scope); err != nil {
				return nil, err
			}
		}
	}
	if !oauth.SupportsAnyFormat(authzRequest.RequestedFormats()) {
		return nil, fmt.Errorf("%w: requested %v", ErrVPFormatsNotSupported, authzRequest.RequestedFormats())
	}
	requestedTypes := authzRequest.RequestedTypes(h.config.ScopeTypes)
	if len(requestedTypes) == 0 {
		return nil, fmt.Errorf("%w: request does not specify credential types", oauth.ErrInvalidRequest)
	}
	candidates, err := h.matchCredentials(ctx, request.Identity.UserID, requestedTypes, profile)
	if err != nil {
		return nil, err
	}

	prepared := presentationSession{
		UserID:           request.Identity.UserID,
		Profile:          profile,
		BearerToken:      request.BearerToken,
		ClientID:         authzRequest.ClientID,
		Nonce:            authzRequest.Nonce,
		State:            authzRequest.State,
		ResponseEndpoint: authzRequest.ResponseEndpoint(),
		DCQL:             authzRequest.DCQLQuery != nil,
	}
	if authzRequest.PresentationDefinition != nil {
		prepared.DefinitionID = authzRequest.PresentationDefinition.Id
	} else {
		for _, scope := range authzRequest.Scopes() {
			if scope != oauth.OpenIDScope {
				prepared.DefinitionID = scope
				break
			}
		}
	}
	for _, candidate := range candidates {
		prepared.CandidateIDs = append(prepared.CandidateIDs, candidate.ID)
	}
	id := uuid.NewString()
	if err := h.presentations.Put(id, prepared); err != nil {
		return nil, fmt.Errorf("unable to store prepared presentation: %w", err)
	}
	logger.Debugf("Prepared presentation with %d candidate(s)", len(candidates))
	return &PreparedPresentation{
		ID:         id,
		Verifier:   authzRequest.ClientID,
		Scope:      authzRequest.Scope,
		Candidates: candidates,
	}, nil
}

// resolveAuthorizationRequest parses the authorization request URI, fetches the request object if passed by reference,
// and verifies it was signed by the did:key of its client_id.
func (h *Holder) resolveAuthorizationRequest(ctx context.Context, requestURI string) (*oauth.AuthorizationRequest, error) {
	reference, err := oauth.ParseAuthorizationRequestURI(requestURI)
	if err != nil {
		return nil, err
	}
	requestObject := reference.Request
	if requestObject == "" {
		requestObject, err = h.verifierClient.RequestObject(ctx, reference.RequestURI)
		if err != nil {
			return nil, err
		}
	}
	authzRequest, err := oauth.ParseAuthorizationRequest(requestObject)
	if err != nil {
		return nil, err
	}
	if authzRequest.ClientID == "" || authzRequest.Issuer != authzRequest.ClientID {
		return nil, fmt.Errorf("%w (iss=%s, client_id=%s)", ErrClientIDMismatch, authzRequest.Issuer, authzRequest.ClientID)
	}
	if reference.ClientID != "" && reference.ClientID != authzRequest.ClientID {
		return nil, fmt.Errorf("%w: client_id of request URI differs from request object", ErrClientIDMismatch)
	}
	if signer := didkey.ToDID(authzRequest.KeyID); signer != authzRequest.ClientID {
		return nil, fmt.Errorf("%w: request signed by %s", ErrClientIDMismatch, signer)
	}
	if err := didkey.VerifyRequestSignature(authzRequest.ClientID, authzRequest.Raw); err != nil {
		return nil, fmt.Errorf("authorization request verification failed: %w", err)
	}
	return authzRequest, nil
}

// authorizeVerifier checks the verifier is a trusted issuer of the credentials a sensitive scope requests.
func (h *Holder) authorizeVerifier(ctx context.Context, verifier string, scope string) error {
	if h.trustedIssuers == nil {
		return fmt.Errorf("%w: no trusted issuer list configured for scope %s", trust.ErrIssuerNotAuthorized, scope)
	}
	credentialTypes := h.config.ScopeTypes[scope]
	if len(credentialTypes) == 0 {
		credentialTypes = []string{scope}
	}
	for _, credentialType := range credentialTypes {
		if err := trust.Authorize(ctx, h.trustedIssuers, verifier, credentialType, nowFunc()); err != nil {
			return fmt.Errorf("verifier %s not trusted for %s: %w", verifier, credentialType, err)
		}
	}
	return nil
}

// matchCredentials returns the VALID credentials of the user having any of the requested types.
// Except for the DOME profile, which presents JSON, credentials must have a JWT form.
func (h *Holder) matchCredentials(ctx context.Context, userID string, requestedTypes []string, profile Profile) ([]types.StoredCredential, error) {
	credentials, err := h.credentials.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	var result []types.StoredCredential
	for _, credential := range credentials {
		if credential.Status != types.StatusValid || !credential.HasType(requestedTypes...) {
			continue
		}
		if profile != ProfileDOME && credential.JWT == "" {
			continue
		}
		result = append(result, credential)
	}
	if len(result) == 0 {
		return nil, fmt.Errorf("%w: requested %v", ErrNoMatchingCredentials, requestedTypes)
	}
	return result, nil
}

func (h *Holder) Respond(ctx context.Context, identity oauth.Identity, presentationID string, credentialIDs []string) (*PresentationResult, error) {
	var session presentationSession
	if err := h.presentations.Get(presentationID, &session); errors.Is(err, storage.ErrNotFound) {
		return nil, ErrPresentationNotFound
	} else if err != nil {
		return nil, err
	}
	if session.UserID != identity.UserID {
		return nil, ErrPresentationNotFound
	}
	credentials, err := h.selectedCredentials(ctx, session, credentialIDs)
	if err != nil {
		return nil, err
	}

	var vpToken, vpID string
	var vp map[string]interface{}
	if session.Profile == ProfileDOME {
		vpToken, err = buildDomePresentation(credentials)
	} else {
		vpToken, vp, vpID, err = h.buildJWTPresentation(ctx, identity.UserID, session, credentials)
	}
	if err != nil {
		return nil, err
	}
	response := iam.AuthorizationResponse{
		VPToken:     vpToken,
		State:       session.State,
		BearerToken: session.BearerToken,
	}
	if session.Profile != ProfileDOME && !session.DCQL {
		submission, err := buildSubmission(session.DefinitionID, credentialIDs, vpID, vp)
		if err != nil {
			return nil, err
		}
		response.PresentationSubmission = submission
	}

	redirectURI, err := h.verifierClient.PostAuthorizationResponse(ctx, session.ResponseEndpoint, response)
	if err != nil {
		return nil, err
	}
	if err := h.presentations.Delete(presentationID); err != nil {
		log.Logger().WithError(err).Warn("Unable to delete prepared presentation")
	}
	log.Logger().
		WithField(core.LogFieldUserID, identity.UserID).
		WithField(core.LogFieldVerifier, session.ClientID).
		WithField(core.LogFieldProfile, session.Profile).
		Infof("Presented %d credential(s)", len(credentials))
	return &PresentationResult{
		RedirectURI:   redirectURI,
		CredentialIDs: credentialIDs,
	}, nil
}

// selectedCredentials loads the selected credentials, which must be distinct candidates of the prepared presentation.
func (h *Holder) selectedCredentials(ctx context.Context, session presentationSession, credentialIDs []string) ([]types.StoredCredential, error) {
	if len(credentialIDs) == 0 {
		return nil, fmt.Errorf("%w: no credentials selected", ErrNoMatchingCredentials)
	}
	if len(credentialIDs) > pe.MaxSubmissionCredentials {
		return nil, pe.ErrTooManyCredentials
	}
	var result []types.StoredCredential
	for i, id := range credentialIDs {
		if !slices.Contains(session.CandidateIDs, id) || slices.Contains(credentialIDs[:i], id) {
			return nil, fmt.Errorf("%w: invalid selection of credential %s", ErrNoMatchingCredentials, id)
		}
		credential, err := h.credentials.Get(ctx, session.UserID, id)
		if err != nil {
			return nil, err
		}
		result = append(result, *credential)
	}
	return result, nil
}

// buildJWTPresentation builds and signs a JWT presentation of the JWT forms of the credentials.
// The holder is the subject of the first credential.
func (h *Holder) buildJWTPresentation(ctx context.Context, userID string, session presentationSession, credentials []types.StoredCredential) (string, map[string]interface{}, string, error) {
	holderKey, err := h.keyStore.HolderKey(ctx, userID)
	if err != nil {
		return "", nil, "", err
	}
	jwts := make([]string, len(credentials))
	for i, credential := range credentials {
		if credential.JWT == "" {
			return "", nil, "", fmt.Errorf("%w: credential %s has no JWT form", codec.ErrUnsupportedFormat, credential.ID)
		}
		jwts[i] = credential.JWT
	}
	holderDID, err := codec.JWTSubject(jwts[0])
	if err != nil || holderDID == "" {
		holderDID = holderKey.DID
	}
	claims := codec.BuildVPJWTPayload(jwts, holderDID, session.Nonce, session.ClientID)
	headers := map[string]interface{}{
		"typ": "JWT",
		"kid": holderKey.KID,
	}
	token, err := h.keyStore.SignJWT(ctx, claims, headers, holderKey.KID)
	if err != nil {
		return "", nil, "", fmt.Errorf("unable to sign presentation: %w", err)
	}
	vpID, _ := claims["jti"].(string)
	vp, _ := claims["vp"].(map[string]interface{})
	return token, vp, vpID, nil
}

func buildDomePresentation(credentials []types.StoredCredential) (string, error) {
	jsonCredentials := make([]map[string]interface{}, len(credentials))
	for i, credential := range credentials {
		if err := json.Unmarshal(credential.JSON, &jsonCredentials[i]); err != nil {
			return "", fmt.Errorf("%w: credential %s: %w", codec.ErrParse, credential.ID, err)
		}
	}
	return codec.BuildVPDomeEncoded(jsonCredentials)
}

// buildSubmission builds the presentation submission and checks every descriptor resolves in the presentation.
func buildSubmission(definitionID string, credentialIDs []string, vpID string, vp map[string]interface{}) (*pe.PresentationSubmission, error) {
	descriptor, err := pe.BuildSubmissionMap(credentialIDs, vpID)
	if err != nil {
		return nil, err
	}
	if _, err := pe.ResolvePaths(descriptor, vp); err != nil {
		return nil, fmt.Errorf("invalid presentation submission: %w", err)
	}
	submission := pe.NewPresentationSubmission(definitionID, descriptor)
	return &submission, nil
}
