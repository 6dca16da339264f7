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
	"bytes"
	"crypto/ecdsa"
	"crypto/elliptic"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/multiformats/go-multibase"
	"github.com/multiformats/go-multicodec"
	"github.com/nuts-foundation/go-did/did"
)

// MethodName is the name of this DID method.
const MethodName = "key"

// Prefix is the prefix every did:key identifier starts with.
const Prefix = "did:key:"

// ErrInvalidKeyFormat is returned when a did:key can't be decoded into a P-256 public key.
var ErrInvalidKeyFormat = errors.New("invalid did:key format")

var errInvalidPublicKeyLength = fmt.Errorf("%w: invalid public key length", ErrInvalidKeyFormat)

// PublicKey decodes the given did:key into its P-256 public key.
// Both the P-256 multicodec (compressed or uncompressed point) and the jwk_jcs-pub multicodec are supported.
// A DID URL (with fragment) is accepted; the fragment is ignored.
func PublicKey(didKey string) (*ecdsa.PublicKey, error) {
	if !strings.HasPrefix(didKey, Prefix) {
		return nil, fmt.Errorf("%w: missing '%s' prefix", ErrInvalidKeyFormat, Prefix)
	}
	id, err := did.ParseDID(ToDID(didKey))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidKeyFormat, err)
	}
	if id.Method != MethodName {
		return nil, fmt.Errorf("%w: unsupported DID method: %s", ErrInvalidKeyFormat, id.Method)
	}
	encoding, mcBytes, err := multibase.Decode(id.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid multibase: %w", ErrInvalidKeyFormat, err)
	}
	if encoding != multibase.Base58BTC {
		return nil, fmt.Errorf("%w: expected base58btc encoding", ErrInvalidKeyFormat)
	}
	reader := bytes.NewReader(mcBytes)
	keyType, err := binary.ReadUvarint(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid multicodec value: %w", ErrInvalidKeyFormat, err)
	}
	keyBytes, _ := io.ReadAll(reader)

	switch multicodec.Code(keyType) {
	case multicodec.P256Pub:
		return unmarshalP256(keyBytes)
	case multicodec.Jwk_jcsPub:
		return unmarshalJWK(keyBytes)
	default:
		return nil, fmt.Errorf("%w: unsupported public key type: 0x%x", ErrInvalidKeyFormat, keyType)
	}
}

// ToDID strips the fragment from a DID URL, e.g. the 'kid' of a JWS header.
func ToDID(didURL string) string {
	if idx := strings.IndexByte(didURL, '#'); idx >= 0 {
		return didURL[:idx]
	}
	return didURL
}

func unmarshalP256(pubKeyBytes []byte) (*ecdsa.PublicKey, error) {
	curve := elliptic.P256()
	switch len(pubKeyBytes) {
	case 33:
		px, py := elliptic.UnmarshalCompressed(curve, pubKeyBytes)
		if px == nil {
			return nil, fmt.Errorf("%w: invalid compressed point", ErrInvalidKeyFormat)
		}
		return &ecdsa.PublicKey{Curve: curve, X: px, Y: py}, nil
	case 65:
		//nolint:staticcheck
		px, py := elliptic.Unmarshal(curve, pubKeyBytes)
		if px == nil {
			return nil, fmt.Errorf("%w: invalid uncompressed point", ErrInvalidKeyFormat)
		}
		return &ecdsa.PublicKey{Curve: curve, X: px, Y: py}, nil
	default:
		return nil, errInvalidPublicKeyLength
	}
}

func unmarshalJWK(jwkBytes []byte) (*ecdsa.PublicKey, error) {
	key, err := jwk.ParseKey(jwkBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid JWK: %w", ErrInvalidKeyFormat, err)
	}
	var raw interface{}
	if err := key.Raw(&raw); err != nil {
		return nil, fmt.Errorf("%w: invalid JWK: %w", ErrInvalidKeyFormat, err)
	}
	result, ok := raw.(*ecdsa.PublicKey)
	if !ok || result.Curve != elliptic.P256() {
		return nil, fmt.Errorf("%w: JWK is not a P-256 key", ErrInvalidKeyFormat)
	}
	return result, nil
}
