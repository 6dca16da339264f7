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

package codec

import (
	"encoding/base64"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// DomeHolderPlaceholder is the holder of unsigned presentations; the verifier doesn't check it.
const DomeHolderPlaceholder = "did:my:wallet"

// PresentationValidity is the validity window of a JWT presentation.
const PresentationValidity = 10 * 24 * time.Hour

const credentialsContextV1 = "https://www.w3.org/2018/credentials/v1"

var nowFunc = time.Now

// BuildVPJWTPayload returns the claims of a JWT Verifiable Presentation of the given JWT credentials.
// Issuer and subject are the holder. The presentation is valid for 10 days from now.
func BuildVPJWTPayload(credentials []string, holderDID string, nonce string, audience string) map[string]interface{} {
	id := "urn:uuid:" + uuid.NewString()
	now := nowFunc()
	vcs := make([]interface{}, len(credentials))
	for i, credential := range credentials {
		vcs[i] = credential
	}
	claims := map[string]interface{}{
		"jti": id,
		"iss": holderDID,
		"sub": holderDID,
		"nbf": now.Unix(),
		"iat": now.Unix(),
		"exp": now.Add(PresentationValidity).Unix(),
		vpClaim: map[string]interface{}{
			"@context":                 []interface{}{credentialsContextV1},
			"id":                       id,
			"type":                     []interface{}{"VerifiablePresentation"},
			"holder":                   holderDID,
			verifiableCredentialMember: vcs,
		},
	}
	if nonce != "" {
		claims[nonceMember] = nonce
	}
	if audience != "" {
		claims["aud"] = audience
	}
	return claims
}

// BuildVPDomeEncoded returns an unsigned JSON presentation of the given JSON credentials, Base64url encoded.
func BuildVPDomeEncoded(credentials []map[string]interface{}) (string, error) {
	vcs := make([]interface{}, len(credentials))
	for i, credential := range credentials {
		vcs[i] = credential
	}
	presentation := map[string]interface{}{
		"@context":                 []interface{}{credentialsContextV1},
		"id":                       "urn:uuid:" + uuid.NewString(),
		"type":                     []interface{}{"VerifiablePresentation"},
		"holder":                   DomeHolderPlaceholder,
		verifiableCredentialMember: vcs,
	}
	data, err := json.Marshal(presentation)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(data), nil
}
