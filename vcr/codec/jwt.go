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
	"encoding/json"
	"fmt"

	"github.com/lestrrat-go/jwx/v2/jws"
)

const vcClaim = "vc"

// ExtractVCFromJWT returns the `vc` claim of the given JWT. The signature is not verified.
func ExtractVCFromJWT(token string) (map[string]interface{}, error) {
	claims, err := jwtClaims(token)
	if err != nil {
		return nil, err
	}
	credential, ok := claims[vcClaim].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: JWT has no '%s' claim", ErrParse, vcClaim)
	}
	return credential, nil
}

// jwtClaims returns all claims of the given compact JWS without verifying the signature.
func jwtClaims(token string) (map[string]interface{}, error) {
	message, err := jws.ParseString(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	claims := make(map[string]interface{})
	if err := json.Unmarshal(message.Payload(), &claims); err != nil {
		return nil, fmt.Errorf("%w: JWT payload is not a JSON object: %w", ErrParse, err)
	}
	return claims, nil
}

// JWTSubject returns the `sub` claim of the given JWT. The signature is not verified.
func JWTSubject(token string) (string, error) {
	claims, err := jwtClaims(token)
	if err != nil {
		return "", err
	}
	subject, _ := claims["sub"].(string)
	return subject, nil
}
