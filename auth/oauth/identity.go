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
	"fmt"
	"strings"

	"github.com/lestrrat-go/jwx/v2/jwt"
)

// ErrInvalidIdentityToken is returned when the identity token of a wallet user can't be used.
var ErrInvalidIdentityToken = errors.New("invalid identity token")

// sessionIDClaim is the claim of the identity token that identifies the user's session.
const sessionIDClaim = "sid"

// Identity is the wallet user on whose behalf a workflow runs.
type Identity struct {
	// UserID is the sub claim of the identity token.
	UserID string
	// SessionID is the sid claim of the identity token. PIN requests are sent to this session.
	SessionID string
}

// ParseIdentityToken extracts the identity of a wallet user from the identity token issued by the identity provider.
// The signature is not verified: the token was verified by the gateway that forwarded the request.
// Expiry is checked.
func ParseIdentityToken(token string) (*Identity, error) {
	token = strings.TrimSpace(strings.TrimPrefix(token, "Bearer "))
	if token == "" {
		return nil, fmt.Errorf("%w: empty token", ErrInvalidIdentityToken)
	}
	parsed, err := jwt.ParseString(token, jwt.WithVerify(false), jwt.WithValidate(true), jwt.WithAcceptableSkew(clockSkew))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidIdentityToken, err)
	}
	if parsed.Subject() == "" {
		return nil, fmt.Errorf("%w: missing sub", ErrInvalidIdentityToken)
	}
	result := Identity{UserID: parsed.Subject()}
	if sid, ok := parsed.PrivateClaims()[sessionIDClaim].(string); ok {
		result.SessionID = sid
	}
	return &result, nil
}
