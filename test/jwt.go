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

package test

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"testing"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jws"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/nuts-foundation/nuts-wallet/vdr/didkey"
	"github.com/stretchr/testify/require"
)

// KeyPair is a P-256 key and its did:key.
type KeyPair struct {
	PrivateKey *ecdsa.PrivateKey
	DID        string
	KID        string
}

// GenerateKeyPair creates a P-256 key pair and its did:key.
func GenerateKeyPair(t *testing.T) KeyPair {
	privateKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	did, err := didkey.CreateDID(&privateKey.PublicKey)
	require.NoError(t, err)
	return KeyPair{PrivateKey: privateKey, DID: did, KID: didkey.KeyID(did)}
}

// CreateJWT signs the claims with the key pair, with its key ID as kid header.
func CreateJWT(t *testing.T, keyPair KeyPair, claims map[string]interface{}, headers map[string]interface{}) string {
	token := jwt.New()
	for name, value := range claims {
		require.NoError(t, token.Set(name, value))
	}
	hdrs := jws.NewHeaders()
	require.NoError(t, hdrs.Set(jws.KeyIDKey, keyPair.KID))
	for name, value := range headers {
		require.NoError(t, hdrs.Set(name, value))
	}
	signed, err := jwt.Sign(token, jwt.WithKey(jwa.ES256, keyPair.PrivateKey, jws.WithProtectedHeaders(hdrs)))
	require.NoError(t, err)
	return string(signed)
}
