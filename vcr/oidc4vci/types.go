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

package oidc4vci

import (
	"encoding/json"
	"errors"
	"fmt"
)

const (
	// CredentialIssuerMetadataWellKnownPath defines the well-known path for OpenID4VCI Credential Issuer Metadata.
	CredentialIssuerMetadataWellKnownPath = "/.well-known/openid-credential-issuer"
	// ProviderMetadataWellKnownPath defines the well-known path for OpenID Provider Metadata.
	ProviderMetadataWellKnownPath = "/.well-known/openid-configuration"
	// AuthzServerMetadataWellKnownPath defines the well-known path for OAuth2 Authorization Server Metadata (RFC8414).
	AuthzServerMetadataWellKnownPath = "/.well-known/oauth-authorization-server"
)

const (
	// PreAuthorizedCodeGrant is the grant type for the pre-authorized code flow.
	PreAuthorizedCodeGrant = "urn:ietf:params:oauth:grant-type:pre-authorized_code"
	// AuthorizationCodeGrant is the grant type for the authorization code flow.
	AuthorizationCodeGrant = "authorization_code"
	// JWTTypeOpenID4VCIProof defines the OpenID4VCI JWT-subtype (used as typ claim in the JWT).
	JWTTypeOpenID4VCIProof = "openid4vci-proof+jwt"
	// ProofTypeJWT defines the Credential Request proof type for JWTs.
	ProofTypeJWT = "jwt"
)

// Parameter names of token requests and credential offers.
const (
	PreAuthorizedCodeParam  = "pre-authorized_code"
	UserPINParam            = "user_pin"
	TxCodeParam             = "tx_code"
	CodeParam               = "code"
	CodeVerifierParam       = "code_verifier"
	RedirectURIParam        = "redirect_uri"
	CredentialOfferParam    = "credential_offer"
	CredentialOfferURIParam = "credential_offer_uri"
)

// CredentialOfferScheme is the URI scheme of credential offers.
const CredentialOfferScheme = "openid-credential-offer"

// CredentialOffer defines credentials offered by the issuer to the wallet.
// Specified by https://openid.net/specs/openid-4-verifiable-credential-issuance-1_0.html#name-credential-offer
type CredentialOffer struct {
	// CredentialIssuer defines the identifier of the credential issuer.
	CredentialIssuer string `json:"credential_issuer"`
	// Credentials defines the credentials offered by the issuer to the wallet.
	// Entries are either configuration identifiers (strings) or objects with format and types.
	Credentials []OfferedCredential `json:"credentials,omitempty"`
	// CredentialConfigurationIDs is the newer form of Credentials, holding configuration identifiers only.
	CredentialConfigurationIDs []string `json:"credential_configuration_ids,omitempty"`
	// Grants defines the grants offered by the issuer to the wallet.
	Grants OfferGrants `json:"grants"`
}

// OfferGrants contains the grants a credential offer supports.
type OfferGrants struct {
	PreAuthorizedCode *PreAuthorizedCodeParams `json:"urn:ietf:params:oauth:grant-type:pre-authorized_code,omitempty"`
	AuthorizationCode *AuthorizationCodeParams `json:"authorization_code,omitempty"`
}

// PreAuthorizedCodeParams are the parameters of the pre-authorized code grant in a credential offer.
type PreAuthorizedCodeParams struct {
	PreAuthorizedCode string `json:"pre-authorized_code"`
	// UserPINRequired is the draft 11/12 way of requiring a PIN.
	UserPINRequired bool `json:"user_pin_required,omitempty"`
	// TxCode is the draft 13+ way of requiring a PIN (transaction code).
	TxCode *TxCode `json:"tx_code,omitempty"`
}

// PINRequired reports whether the user must supply a PIN with the token request.
func (p PreAuthorizedCodeParams) PINRequired() bool {
	return p.UserPINRequired || p.TxCode != nil
}

// TxCode describes the transaction code (PIN) the user will receive out of band.
type TxCode struct {
	InputMode   string `json:"input_mode,omitempty"`
	Length      int    `json:"length,omitempty"`
	Description string `json:"description,omitempty"`
}

// AuthorizationCodeParams are the parameters of the authorization code grant in a credential offer.
type AuthorizationCodeParams struct {
	IssuerState string `json:"issuer_state,omitempty"`
}

// OfferedCredential is an entry of a credential offer.
type OfferedCredential struct {
	// ConfigurationID is set when the entry refers to a credential configuration of the issuer.
	ConfigurationID string   `json:"-"`
	Format          string   `json:"format,omitempty"`
	Types           []string `json:"types,omitempty"`
}

func (o *OfferedCredential) UnmarshalJSON(data []byte) error {
	var id string
	if err := json.Unmarshal(data, &id); err == nil {
		*o = OfferedCredential{ConfigurationID: id}
		return nil
	}
	type alias OfferedCredential
	var result struct {
		alias
		Type                 []string `json:"type,omitempty"`
		CredentialDefinition *struct {
			Type []string `json:"type"`
		} `json:"credential_definition,omitempty"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return fmt.Errorf("invalid offered credential: %w", err)
	}
	*o = OfferedCredential(result.alias)
	if len(o.Types) == 0 {
		o.Types = result.Type
	}
	if len(o.Types) == 0 && result.CredentialDefinition != nil {
		o.Types = result.CredentialDefinition.Type
	}
	return nil
}

func (o OfferedCredential) MarshalJSON() ([]byte, error) {
	if o.ConfigurationID != "" {
		return json.Marshal(o.ConfigurationID)
	}
	type alias OfferedCredential
	return json.Marshal(alias(o))
}

// OfferedCredentials returns all credentials of the offer, including those from credential_configuration_ids.
func (o CredentialOffer) OfferedCredentials() []OfferedCredential {
	result := append([]OfferedCredential{}, o.Credentials...)
	for _, id := range o.CredentialConfigurationIDs {
		result = append(result, OfferedCredential{ConfigurationID: id})
	}
	return result
}

// Validate checks the offer has an issuer, at least one credential and a supported grant.
func (o CredentialOffer) Validate() error {
	if o.CredentialIssuer == "" {
		return errors.New("credential offer: missing credential_issuer")
	}
	if len(o.OfferedCredentials()) == 0 {
		return errors.New("credential offer: no credentials offered")
	}
	if o.Grants.PreAuthorizedCode == nil && o.Grants.AuthorizationCode == nil {
		return errors.New("credential offer: no supported grant")
	}
	if o.Grants.PreAuthorizedCode != nil && o.Grants.PreAuthorizedCode.PreAuthorizedCode == "" {
		return errors.New("credential offer: missing pre-authorized_code")
	}
	return nil
}

// CredentialIssuerMetadata defines the OpenID4VCI Credential Issuer Metadata.
// Specified by https://openid.net/specs/openid-4-verifiable-credential-issuance-1_0.html#name-credential-issuer-metadata
type CredentialIssuerMetadata struct {
	CredentialIssuer           string   `json:"credential_issuer"`
	AuthorizationServer        string   `json:"authorization_server,omitempty"`
	AuthorizationServers       []string `json:"authorization_servers,omitempty"`
	CredentialEndpoint         string   `json:"credential_endpoint"`
	DeferredCredentialEndpoint string   `json:"deferred_credential_endpoint,omitempty"`
	// CredentialConfigurationsSupported maps configuration identifiers to their description.
	CredentialConfigurationsSupported map[string]CredentialConfiguration `json:"credential_configurations_supported,omitempty"`
}

// AuthorizationServerURL returns the authorization server of the issuer, defaulting to the issuer itself.
func (m CredentialIssuerMetadata) AuthorizationServerURL() string {
	if m.AuthorizationServer != "" {
		return m.AuthorizationServer
	}
	if len(m.AuthorizationServers) > 0 {
		return m.AuthorizationServers[0]
	}
	return m.CredentialIssuer
}

// CredentialConfiguration describes a credential the issuer can issue.
type CredentialConfiguration struct {
	Format               string                `json:"format"`
	CredentialDefinition *CredentialDefinition `json:"credential_definition,omitempty"`
}

// CredentialDefinition holds the VC types of a credential.
type CredentialDefinition struct {
	Type []string `json:"type"`
}

// ProviderMetadata defines the OpenID Connect Provider / OAuth2 Authorization Server metadata.
// Specified by https://www.rfc-editor.org/rfc/rfc8414.txt
type ProviderMetadata struct {
	// Issuer defines the authorization server's identifier, which is a URL that uses the "https" scheme and has no query or fragment components.
	Issuer string `json:"issuer"`
	// AuthorizationEndpoint defines the URL of the authorization server's authorization endpoint.
	AuthorizationEndpoint string `json:"authorization_endpoint,omitempty"`
	// TokenEndpoint defines the URL of the authorization server's token endpoint [RFC6749].
	TokenEndpoint string `json:"token_endpoint"`
}

// TokenResponse defines the response for OAuth2 access token requests, extended with OpenID4VCI parameters.
type TokenResponse struct {
	AccessToken     string `json:"access_token"`
	TokenType       string `json:"token_type,omitempty"`
	ExpiresIn       *int   `json:"expires_in,omitempty"`
	CNonce          string `json:"c_nonce,omitempty"`
	CNonceExpiresIn *int   `json:"c_nonce_expires_in,omitempty"`
}

// CredentialRequest defines the credential request sent by the wallet to an issuer.
type CredentialRequest struct {
	Format                    string                `json:"format,omitempty"`
	CredentialConfigurationID string                `json:"credential_configuration_id,omitempty"`
	CredentialDefinition      *CredentialDefinition `json:"credential_definition,omitempty"`
	// Types is the legacy (draft 11) way of requesting credential types.
	Types []string                `json:"types,omitempty"`
	Proof *CredentialRequestProof `json:"proof,omitempty"`
}

// CredentialRequestProof defines the proof of possession of key material when requesting a Credential.
type CredentialRequestProof struct {
	ProofType string `json:"proof_type"`
	Jwt       string `json:"jwt"`
}

// CredentialResponse defines the response of credential and deferred credential requests.
// It either carries a credential, or a transaction_id (or acceptance_token) for deferred issuance.
type CredentialResponse struct {
	Format      string        `json:"format,omitempty"`
	Credential  interface{}   `json:"credential,omitempty"`
	Credentials []interface{} `json:"credentials,omitempty"`
	// TransactionID identifies a deferred issuance.
	TransactionID string `json:"transaction_id,omitempty"`
	// AcceptanceToken is the pre-final draft way of signaling deferred issuance; it replaces the access token for polling.
	AcceptanceToken string `json:"acceptance_token,omitempty"`
	CNonce          string `json:"c_nonce,omitempty"`
}

// Deferred reports whether the issuer deferred issuance instead of returning a credential.
func (r CredentialResponse) Deferred() bool {
	return r.FinalCredential() == nil && (r.TransactionID != "" || r.AcceptanceToken != "")
}

// FinalCredential returns the issued credential, from either `credential` or the first entry of `credentials`.
// Entries of `credentials` may be wrapped as {"credential": ...}.
func (r CredentialResponse) FinalCredential() interface{} {
	if r.Credential != nil {
		return r.Credential
	}
	if len(r.Credentials) == 0 {
		return nil
	}
	if wrapped, ok := r.Credentials[0].(map[string]interface{}); ok {
		if inner, ok := wrapped["credential"]; ok {
			return inner
		}
	}
	return r.Credentials[0]
}

// DeferredCredentialRequest is the body of a deferred credential request.
type DeferredCredentialRequest struct {
	TransactionID string `json:"transaction_id,omitempty"`
}
