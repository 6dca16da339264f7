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

package didkey

import (
	"errors"
	"fmt"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jws"
)

// ErrSignatureInvalid is returned when the signature of a JWS doesn't verify against the key of the did:key.
var ErrSignatureInvalid = errors.New("signature invalid")

// ErrMalformedToken is returned when the JWS can't be parsed.
var ErrMalformedToken = errors.New("malformed JWT")

// VerifyRequestSignature verifies the ES256 signature of the given compact JWS using the public key encoded in didKey.
// It performs no network I/O.
func VerifyRequestSignature(didKey string, token string) error {
	publicKey, err := PublicKey(didKey)
	if err != nil {
		return err
	}
	message, err := jws.ParseString(token)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedToken, err)
	}
	if len(message.Signatures()) != 1 {
		return fmt.Errorf("%w: expected exactly 1 signature", ErrMalformedToken)
	}
	if alg := message.Signatures()[0].ProtectedHeaders().Algorithm(); alg != jwa.ES256 {
		return fmt.Errorf("%w: unsupported algorithm: %s", ErrSignatureInvalid, alg)
	}
	if _, err := jws.Verify([]byte(token), jws.WithKey(jwa.ES256, publicKey)); err != nil {
		return fmt.Errorf("%w: %w", ErrSignatureInvalid, err)
	}
	return nil
}
