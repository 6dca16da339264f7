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
	"errors"
	"testing"
	"time"

	"github.com/nuts-foundation/nuts-wallet/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAuthorizationRequestURI(t *testing.T) {
	t.Run("by reference", func(t *testing.T) {
		result, err := ParseAuthorizationRequestURI("openid4vp://?client_id=did:key:z123&request_uri=https%3A%2F%2Fverifier.example.com%2Frequest%2F1")

		require.NoError(t, err)
		assert.Equal(t, "did:key:z123", result.ClientID)
		assert.Equal(t, "https://verifier.example.com/request/1", result.RequestURI)
		assert.Empty(t, result.Request)
	})
	t.Run("by value", func(t *testing.T) {
		result, err := ParseAuthorizationRequestURI(" openid://?request=ey.a.b\n")

		require.NoError(t, err)
		assert.Equal(t, "ey.a.b", result.Request)
	})
	t.Run("error - no request", func(t *testing.T) {
		_, err := ParseAuthorizationRequestURI("openid4vp://?client_id=did:key:z123")

		assert.ErrorIs(t, err, ErrInvalidRequest)
		assert.ErrorContains(t, err, "missing request or request_uri")
	})
	t.Run("error - invalid URI", func(t *testing.T) {
		_, err := ParseAuthorizationRequestURI("openid4vp://%zz")

		assert.ErrorIs(t, err, ErrInvalidRequest)
	})
}

func TestParseAuthorizationRequest(t *testing.T) {
	keyPair := test.GenerateKeyPair(t)
	claims := map[string]interface{}{
		"iss":           keyPair.DID,
		"aud":           "https://self-issued.me/v2",
		"client_id":     keyPair.DID,
		"response_type": "vp_token",
		"response_mode": "direct_post",
		"response_uri":  "https://verifier.example.com/response",
		"scope":         "openid learcredential",
		"nonce":         "nonce-1",
		"state":         "state-1",
		"exp":           time.Now().Add(time.Minute).Unix(),
		"dcql_query": map[string]interface{}{
			"credentials": []interface{}{
				map[string]interface{}{"id": "LEARCredentialEmployee", "format": "jwt_vc_json"},
			},
		},
	}

	t.Run("ok", func(t *testing.T) {
		token := test.CreateJWT(t, keyPair, claims, nil)

		result, err := ParseAuthorizationRequest(token)

		require.NoError(t, err)
		assert.Equal(t, keyPair.KID, result.KeyID)
		assert.Equal(t, keyPair.DID, result.Issuer)
		assert.Equal(t, keyPair.DID, result.ClientID)
		assert.Equal(t, "nonce-1", result.Nonce)
		assert.Equal(t, "state-1", result.State)
		assert.Equal(t, "https://self-issued.me/v2", result.Audience[0])
		assert.Equal(t, "https://verifier.example.com/response", result.ResponseEndpoint())
		require.NotNil(t, result.DCQLQuery)
		assert.Equal(t, []string{"jwt_vc_json"}, result.RequestedFormats())
		assert.Equal(t, token, result.Raw)
	})
	t.Run("error - expired", func(t *testing.T) {
		expired := map[string]interface{}{}
		for k, v := range claims {
			expired[k] = v
		}
		expired["exp"] = time.Now().Add(-time.Hour).Unix()
		token := test.CreateJWT(t, keyPair, expired, nil)

		_, err := ParseAuthorizationRequest(token)

		assert.ErrorIs(t, err, ErrInvalidRequest)
	})
	t.Run("error - not a JWT", func(t *testing.T) {
		_, err := ParseAuthorizationRequest("not-a-jwt")

		assert.True(t, errors.Is(err, ErrInvalidRequest))
	})
}

func TestAuthorizationRequestClaims_ResponseEndpoint(t *testing.T) {
	t.Run("redirect_uri without response mode", func(t *testing.T) {
		claims := AuthorizationRequestClaims{RedirectURI: "https://verifier.example.com/cb"}
		assert.Equal(t, "https://verifier.example.com/cb", claims.ResponseEndpoint())
	})
	t.Run("response_uri when no redirect_uri", func(t *testing.T) {
		claims := AuthorizationRequestClaims{ResponseURI: "https://verifier.example.com/response"}
		assert.Equal(t, "https://verifier.example.com/response", claims.ResponseEndpoint())
	})
	t.Run("redirect_uri for non direct_post mode", func(t *testing.T) {
		claims := AuthorizationRequestClaims{ResponseMode: "fragment", ResponseURI: "https://a", RedirectURI: "https://b"}
		assert.Equal(t, "https://b", claims.ResponseEndpoint())
	})
}

func TestAuthorizationRequestClaims_RequestedTypes(t *testing.T) {
	scopeTypes := map[string][]string{"learcredential": {"LEARCredentialEmployee"}}

	t.Run("scope", func(t *testing.T) {
		claims := AuthorizationRequestClaims{Scope: "openid learcredential VerifiableId"}

		assert.Equal(t, []string{"LEARCredentialEmployee", "VerifiableId"}, claims.RequestedTypes(scopeTypes))
	})
	t.Run("DCQL", func(t *testing.T) {
		claims := AuthorizationRequestClaims{DCQLQuery: &DCQLQuery{Credentials: []CredentialQuery{
			{ID: "q1", Format: "jwt_vc_json", Meta: &CredentialQueryMeta{TypeValues: [][]string{{"VerifiableCredential", "LEARCredentialEmployee"}}}},
			{ID: "VerifiableId", Format: "jwt_vc_json"},
		}}}

		assert.Equal(t, []string{"LEARCredentialEmployee", "VerifiableId"}, claims.RequestedTypes(scopeTypes))
	})
	t.Run("no duplicates", func(t *testing.T) {
		claims := AuthorizationRequestClaims{
			Scope:     "learcredential",
			DCQLQuery: &DCQLQuery{Credentials: []CredentialQuery{{ID: "LEARCredentialEmployee"}}},
		}

		assert.Equal(t, []string{"LEARCredentialEmployee"}, claims.RequestedTypes(scopeTypes))
	})
	t.Run("only openid scope", func(t *testing.T) {
		assert.Empty(t, AuthorizationRequestClaims{Scope: "openid"}.RequestedTypes(scopeTypes))
	})
}

func TestAuthorizationRequestClaims_RequestedFormats(t *testing.T) {
	t.Run("client metadata when no query", func(t *testing.T) {
		claims := AuthorizationRequestClaims{ClientMetadata: &ClientMetadata{VPFormats: map[string]map[string][]string{"ldp_vp": {}}}}

		assert.Equal(t, []string{"ldp_vp"}, claims.RequestedFormats())
	})
	t.Run("none", func(t *testing.T) {
		assert.Empty(t, AuthorizationRequestClaims{}.RequestedFormats())
	})
}
