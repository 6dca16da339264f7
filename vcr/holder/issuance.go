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

	"github.com/google/uuid"
	"github.com/nuts-foundation/nuts-wallet/auth/oauth"
	"github.com/nuts-foundation/nuts-wallet/core"
	"github.com/nuts-foundation/nuts-wallet/crypto"
	"github.com/nuts-foundation/nuts-wallet/vcr/codec"
	"github.com/nuts-foundation/nuts-wallet/vcr/log"
	"github.com/nuts-foundation/nuts-wallet/vcr/oidc4vci"
	"github.com/nuts-foundation/nuts-wallet/vcr/types"
	"github.com/sirupsen/logrus"
)

// defaultCredentialFormat is requested when the offer doesn't specify a format.
const defaultCredentialFormat = codec.FormatJWTVCJSON

func (h *Holder) Issue(ctx context.Context, request IssuanceRequest) (*IssuanceResult, error) {
	profile := h.profile(request.Profile)
	logger := log.Logger().
		WithField(core.LogFieldUserID, request.Identity.UserID).
		WithField(core.LogFieldProfile, profile)

	offer, err := h.resolveOffer(ctx, request.OfferURI)
	if err != nil {
		return nil, err
	}
	logger = logger.WithField(core.LogFieldCredentialIssuer, offer.CredentialIssuer)
	logger.WithField(core.LogFieldWorkflowState, StateOfferReceived).Debug("Credential offer received")

	issuerMetadata, err := h.issuerClient.CredentialIssuerMetadata(ctx, offer.CredentialIssuer)
	if err != nil {
		return nil, err
	}
	serverMetadata, err := h.issuerClient.AuthorizationServerMetadata(ctx, issuerMetadata.AuthorizationServerURL())
	if err != nil {
		return nil, err
	}
	logger.WithField(core.LogFieldWorkflowState, StateMetadataResolved).Debug("Issuer metadata resolved")

	tokenResponse, err := h.requestAccessToken(ctx, request.Identity, *offer, *serverMetadata)
	if err != nil {
		return nil, err
	}
	logger.WithField(core.LogFieldWorkflowState, StateTokenObtained).Debug("Access token obtained")

	holderKey, err := h.keyStore.HolderKey(ctx, request.Identity.UserID)
	if err != nil {
		return nil, err
	}
	result := IssuanceResult{State: StateIssued}
	nonce := tokenResponse.CNonce
	for _, offered := range offer.OfferedCredentials() {
		credentialRequest := buildCredentialRequest(offered, *issuerMetadata)
		proof, err := h.signProof(ctx, *holderKey, issuerMetadata.CredentialIssuer, nonce)
		if err != nil {
			return nil, err
		}
		credentialRequest.Proof = &oidc4vci.CredentialRequestProof{ProofType: oidc4vci.ProofTypeJWT, Jwt: proof}
		logger.WithField(core.LogFieldWorkflowState, StateCredentialRequested).
			WithField(core.LogFieldCredentialFormat, credentialRequest.Format).
			Debug("Requesting credential")
		credentialResponse, err := h.issuerClient.RequestCredential(ctx, issuerMetadata.CredentialEndpoint, credentialRequest, tokenResponse.AccessToken)
		if err != nil {
			return nil, err
		}
		if credentialResponse.CNonce != "" {
			nonce = credentialResponse.CNonce
		}
		if credentialResponse.Deferred() {
			placeholder, err := h.storeDeferred(ctx, request.Identity.UserID, *issuerMetadata, credentialRequest, tokenResponse.AccessToken, *credentialResponse, offered)
			if err != nil {
				return nil, err
			}
			logger.WithField(core.LogFieldCredentialID, placeholder.ID).Info("Credential issuance deferred")
			if profile == ProfileEBSI {
				issued, err := h.awaitDeferredCredential(ctx, request.Identity.UserID, placeholder.ID)
				if err != nil {
					return nil, err
				}
				result.Credentials = append(result.Credentials, *issued)
				continue
			}
			result.Deferred = append(result.Deferred, *placeholder)
			continue
		}
		issued, err := h.storeIssued(ctx, request.Identity.UserID, responseFormat(*credentialResponse, credentialRequest.Format), credentialResponse.FinalCredential())
		if err != nil {
			return nil, err
		}
		logger.WithField(core.LogFieldCredentialID, issued.ID).Info("Credential issued")
		result.Credentials = append(result.Credentials, *issued)
	}
	if len(result.Deferred) > 0 {
		result.State = StateDeferred
	}
	return &result, nil
}

func (h *Holder) resolveOffer(ctx context.Context, offerURI string) (*oidc4vci.CredentialOffer, error) {
	offer, reference, err := oidc4vci.ParseCredentialOfferURI(offerURI)
	if err != nil {
		return nil, err
	}
	if offer != nil {
		return offer, nil
	}
	return h.issuerClient.CredentialOffer(ctx, reference)
}

func (h *Holder) requestAccessToken(ctx context.Context, identity oauth.Identity, offer oidc4vci.CredentialOffer, server oidc4vci.ProviderMetadata) (*oidc4vci.TokenResponse, error) {
	if grant := offer.Grants.PreAuthorizedCode; grant != nil {
		params := map[string]string{
			oidc4vci.PreAuthorizedCodeParam: grant.PreAuthorizedCode,
		}
		if grant.PINRequired() {
			log.Logger().
				WithField(core.LogFieldUserID, identity.UserID).
				WithField(core.LogFieldWorkflowState, StateTokenPending).
				Debug("Waiting for PIN")
			pin, err := h.awaitPIN(ctx, identity)
			if err != nil {
				return nil, err
			}
			if grant.TxCode != nil {
				params[oidc4vci.TxCodeParam] = pin
			} else {
				params[oidc4vci.UserPINParam] = pin
			}
		}
		tokenResponse, err := h.issuerClient.RequestAccessToken(ctx, server.TokenEndpoint, oidc4vci.PreAuthorizedCodeGrant, params)
		if err != nil {
			var oauthError oidc4vci.Error
			if grant.PINRequired() && errors.As(err, &oauthError) && oauthError.Code == oidc4vci.InvalidGrant {
				return nil, core.WrapError(ErrInvalidPIN, err)
			}
			return nil, err
		}
		return tokenResponse, nil
	}
	if h.authorizationCodes == nil {
		return nil, errors.New("authorization_code grant is not supported")
	}
	authorizationCode, err := h.authorizationCodes.AuthorizationCode(ctx, identity, offer, server)
	if err != nil {
		return nil, fmt.Errorf("authorization failed: %w", err)
	}
	params := map[string]string{
		oidc4vci.CodeParam: authorizationCode.Code,
	}
	if authorizationCode.CodeVerifier != "" {
		params[oidc4vci.CodeVerifierParam] = authorizationCode.CodeVerifier
	}
	if authorizationCode.RedirectURI != "" {
		params[oidc4vci.RedirectURIParam] = authorizationCode.RedirectURI
	}
	return h.issuerClient.RequestAccessToken(ctx, server.TokenEndpoint, oidc4vci.AuthorizationCodeGrant, params)
}

// signProof signs the proof of possession of the holder key for a credential request.
func (h *Holder) signProof(ctx context.Context, holderKey crypto.HolderKey, audience string, nonce string) (string, error) {
	headers := map[string]interface{}{
		"typ": oidc4vci.JWTTypeOpenID4VCIProof,
		"kid": holderKey.KID,
	}
	claims := map[string]interface{}{
		"iss": holderKey.DID,
		"aud": audience,
		"iat": nowFunc().Unix(),
		"jti": uuid.NewString(),
	}
	if nonce != "" {
		claims["nonce"] = nonce
	}
	proof, err := h.keyStore.SignJWT(ctx, claims, headers, holderKey.KID)
	if err != nil {
		return "", fmt.Errorf("unable to sign request proof: %w", err)
	}
	return proof, nil
}

func buildCredentialRequest(offered oidc4vci.OfferedCredential, metadata oidc4vci.CredentialIssuerMetadata) oidc4vci.CredentialRequest {
	if offered.ConfigurationID != "" {
		result := oidc4vci.CredentialRequest{CredentialConfigurationID: offered.ConfigurationID}
		if configuration, ok := metadata.CredentialConfigurationsSupported[offered.ConfigurationID]; ok {
			result.Format = configuration.Format
		}
		return result
	}
	format := offered.Format
	if format == "" {
		format = defaultCredentialFormat
	}
	return oidc4vci.CredentialRequest{
		Format:               format,
		CredentialDefinition: &oidc4vci.CredentialDefinition{Type: offered.Types},
		Types:                offered.Types,
	}
}

// offeredTypes returns the credential types of an offered credential, as far as they are known before issuance.
func offeredTypes(offered oidc4vci.OfferedCredential, metadata oidc4vci.CredentialIssuerMetadata) []string {
	if len(offered.Types) > 0 {
		return offered.Types
	}
	if configuration, ok := metadata.CredentialConfigurationsSupported[offered.ConfigurationID]; ok && configuration.CredentialDefinition != nil {
		return configuration.CredentialDefinition.Type
	}
	if offered.ConfigurationID != "" {
		return []string{offered.ConfigurationID}
	}
	return nil
}

// responseFormat determines the format of an issued credential: the format of the response,
// the requested format, or a guess based on the credential itself.
func responseFormat(response oidc4vci.CredentialResponse, requested string) string {
	if response.Format != "" {
		return response.Format
	}
	if requested != "" {
		return requested
	}
	if token, ok := response.FinalCredential().(string); ok && codec.IsJWT(token) {
		return codec.FormatJWTVC
	}
	return codec.FormatJSON
}

// toStoredCredential normalizes an issued credential into a VALID record.
func toStoredCredential(userID string, format string, credential interface{}) (*types.StoredCredential, error) {
	normalized, err := codec.Normalize(format, credential)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(normalized.JSON)
	if err != nil {
		return nil, err
	}
	id, _ := normalized.JSON["id"].(string)
	if id == "" {
		id = "urn:uuid:" + uuid.NewString()
	}
	return &types.StoredCredential{
		ID:        id,
		UserID:    userID,
		Status:    types.StatusValid,
		Types:     codec.CredentialTypes(normalized.JSON),
		JSON:      data,
		JWT:       normalized.JWT,
		CWT:       normalized.CWT,
		CreatedAt: nowFunc(),
	}, nil
}

func (h *Holder) storeIssued(ctx context.Context, userID string, format string, credential interface{}) (*types.StoredCredential, error) {
	record, err := toStoredCredential(userID, format, credential)
	if err != nil {
		return nil, fmt.Errorf("unable to normalize issued credential: %w", err)
	}
	if err := h.credentials.Save(ctx, *record); err != nil {
		return nil, fmt.Errorf("unable to store credential: %w", err)
	}
	return h.credentials.Get(ctx, userID, record.ID)
}

// storeDeferred stores an ISSUED placeholder for a deferred credential and the metadata needed to poll for it.
func (h *Holder) storeDeferred(ctx context.Context, userID string, metadata oidc4vci.CredentialIssuerMetadata, request oidc4vci.CredentialRequest,
	accessToken string, response oidc4vci.CredentialResponse, offered oidc4vci.OfferedCredential) (*types.StoredCredential, error) {
	if metadata.DeferredCredentialEndpoint == "" {
		return nil, errors.New("issuer deferred issuance but has no deferred_credential_endpoint")
	}
	id := "urn:uuid:" + uuid.NewString()
	credentialTypes := offeredTypes(offered, metadata)
	placeholderJSON, _ := json.Marshal(map[string]interface{}{
		"id":   id,
		"type": credentialTypes,
	})
	placeholder := types.StoredCredential{
		ID:        id,
		UserID:    userID,
		Status:    types.StatusIssued,
		Types:     credentialTypes,
		JSON:      placeholderJSON,
		CreatedAt: nowFunc(),
	}
	if err := h.credentials.Save(ctx, placeholder); err != nil {
		return nil, fmt.Errorf("unable to store deferred credential: %w", err)
	}
	pollToken := accessToken
	if response.AcceptanceToken != "" {
		pollToken = response.AcceptanceToken
	}
	err := h.deferred.Put(ctx, types.DeferredCredentialMetadata{
		CredentialID:     id,
		UserID:           userID,
		TransactionID:    response.TransactionID,
		AccessToken:      pollToken,
		DeferredEndpoint: metadata.DeferredCredentialEndpoint,
		Format:           request.Format,
	})
	if err != nil {
		return nil, fmt.Errorf("unable to store deferred credential metadata: %w", err)
	}
	return &placeholder, nil
}

func logEntry(userID string, credentialID string) *logrus.Entry {
	return log.Logger().
		WithField(core.LogFieldUserID, userID).
		WithField(core.LogFieldCredentialID, credentialID)
}
