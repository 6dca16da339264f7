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
	"crypto/ecdsa"
	"crypto/elliptic"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"errors"
	"strings"

	"github.com/mr-tron/base58"
	"github.com/multiformats/go-multicodec"
)

var errNotP256 = errors.New("only P-256 keys can be encoded as did:key")

// CreateDID returns the did:key for the given P-256 public key, using the P-256 multicodec and the compressed point.
func CreateDID(publicKey *ecdsa.PublicKey) (string, error) {
	if publicKey == nil || publicKey.Curve != elliptic.P256() {
		return "", errNotP256
	}
	return encode(multicodec.P256Pub, elliptic.MarshalCompressed(publicKey.Curve, publicKey.X, publicKey.Y)), nil
}

// CreateJWKJCSDID returns the did:key for the given P-256 public key, using the jwk_jcs-pub multicodec.
// The JWK is serialized with its members in lexicographical order and without whitespace.
func CreateJWKJCSDID(publicKey *ecdsa.PublicKey) (string, error) {
	if publicKey == nil || publicKey.Curve != elliptic.P256() {
		return "", errNotP256
	}
	byteLen := (publicKey.Curve.Params().BitSize + 7) / 8
	// encoding/json sorts map keys, which gives the canonical member order for these string-only members
	data, err := json.Marshal(map[string]string{
		"crv": "P-256",
		"kty": "EC",
		"x":   base64.RawURLEncoding.EncodeToString(publicKey.X.FillBytes(make([]byte, byteLen))),
		"y":   base64.RawURLEncoding.EncodeToString(publicKey.Y.FillBytes(make([]byte, byteLen))),
	})
	if err != nil {
		return "", err
	}
	return encode(multicodec.Jwk_jcsPub, data), nil
}

// KeyID returns the key ID of the verification method of the given did:key.
func KeyID(didKey string) string {
	if !strings.HasPrefix(didKey, Prefix) {
		return didKey
	}
	return didKey + "#" + didKey[len(Prefix):]
}

func encode(code multicodec.Code, keyBytes []byte) string {
	buf := binary.AppendUvarint(nil, uint64(code))
	buf = append(buf, keyBytes...)
	return Prefix + "z" + base58.Encode(buf)
}
