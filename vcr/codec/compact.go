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
	"bytes"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/dasio/base45"
	"github.com/fxamacker/cbor/v2"
	"github.com/klauspost/compress/zlib"
	"github.com/veraison/go-cose"
)

// maxInflatedSize caps the inflated payload of a compact credential.
const maxInflatedSize = 1 << 20

// Base45Alphabet holds the characters of the Base45 encoding (RFC 9285).
const Base45Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ $%*+-./:"

// headerLabelEphemeralKey is the COSE header parameter carrying an ephemeral COSE_Key (RFC 9053, section 6.4.1).
const headerLabelEphemeralKey int64 = -1

// COSE_Key parameters of an EC2 key (RFC 9053, section 7.1).
const (
	coseKeyType      int64 = 1
	coseKeyTypeEC2   int64 = 2
	coseKeyCurve     int64 = -1
	coseKeyCurveP256 int64 = 1
	coseKeyX         int64 = -2
	coseKeyY         int64 = -3
)

const (
	verifiableCredentialMember = "verifiableCredential"
	vpClaim                    = "vp"
	nonceMember                = "nonce"
	idMember                   = "id"
)

var cborEncMode = mustEncMode()

func mustEncMode() cbor.EncMode {
	mode, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	return mode
}

// EncodeVCToCompactCBOR encodes a JWT (its full claim set) or JSON credential into
// Base45(zlib(COSE_Sign1(CBOR(JSON)))).
// A `verifiableCredential` list holding exactly one entry is flattened to that entry; when the entry is a JWT
// it is compact-encoded as well, so the result decodes with ExtractVCFromCompactCBOR.
// Every call signs with a fresh P-256 key, which travels in the unprotected header.
func EncodeVCToCompactCBOR(input string) (string, error) {
	payload, err := extractPayload(input)
	if err != nil {
		return "", err
	}
	if err := flattenCredentials(payload); err != nil {
		return "", err
	}
	return encodeCompact(payload)
}

func extractPayload(input string) (map[string]interface{}, error) {
	input = strings.TrimSpace(input)
	if IsJWT(input) {
		return jwtClaims(input)
	}
	payload := make(map[string]interface{})
	if err := json.Unmarshal([]byte(input), &payload); err != nil {
		return nil, fmt.Errorf("%w: input is neither a JWT nor a JSON object: %w", ErrParse, err)
	}
	return payload, nil
}

// flattenCredentials flattens a single-entry verifiableCredential list, at top-level or inside the `vp` claim.
func flattenCredentials(payload map[string]interface{}) error {
	holders := []map[string]interface{}{payload}
	if vp, ok := payload[vpClaim].(map[string]interface{}); ok {
		holders = append(holders, vp)
	}
	for _, holder := range holders {
		list, ok := holder[verifiableCredentialMember].([]interface{})
		if !ok || len(list) != 1 {
			continue
		}
		entry := list[0]
		if token, isString := entry.(string); isString && IsJWT(token) {
			claims, err := jwtClaims(token)
			if err != nil {
				return err
			}
			nested, err := encodeCompact(claims)
			if err != nil {
				return err
			}
			entry = nested
		}
		holder[verifiableCredentialMember] = entry
	}
	return nil
}

func encodeCompact(payload map[string]interface{}) (string, error) {
	cborPayload, err := cborEncMode.Marshal(integralNumbers(payload))
	if err != nil {
		return "", fmt.Errorf("CBOR encoding failed: %w", err)
	}
	signed, err := signCOSE(cborPayload)
	if err != nil {
		return "", err
	}
	deflated := new(bytes.Buffer)
	writer, err := zlib.NewWriterLevel(deflated, zlib.BestCompression)
	if err != nil {
		return "", err
	}
	if _, err := writer.Write(signed); err != nil {
		return "", err
	}
	if err := writer.Close(); err != nil {
		return "", err
	}
	return base45.EncodeToString(deflated.Bytes()), nil
}

func signCOSE(payload []byte) ([]byte, error) {
	// Transport integrity only: the key is generated per call and never stored.
	privateKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, err
	}
	signer, err := cose.NewSigner(cose.AlgorithmES256, privateKey)
	if err != nil {
		return nil, err
	}
	message := cose.NewSign1Message()
	message.Headers.Protected.SetAlgorithm(cose.AlgorithmES256)
	message.Headers.Unprotected[headerLabelEphemeralKey] = map[int64]interface{}{
		coseKeyType:  coseKeyTypeEC2,
		coseKeyCurve: coseKeyCurveP256,
		coseKeyX:     privateKey.X.FillBytes(make([]byte, 32)),
		coseKeyY:     privateKey.Y.FillBytes(make([]byte, 32)),
	}
	message.Payload = payload
	if err := message.Sign(rand.Reader, nil, signer); err != nil {
		return nil, fmt.Errorf("COSE signing failed: %w", err)
	}
	return message.MarshalCBOR()
}

// ExtractVCFromCompactCBOR decodes a compact credential: Base45, inflate, COSE_Sign1, CBOR to JSON.
// When the decoded object carries a compact-encoded credential in `vp.verifiableCredential` (or at top-level),
// that credential is decoded as well and returned, with the outer `nonce` as its `id`.
func ExtractVCFromCompactCBOR(payload string) (map[string]interface{}, error) {
	outer, err := decodeCompact(payload)
	if err != nil {
		return nil, err
	}
	nested, ok := nestedCompactCredential(outer)
	if !ok {
		return outer, nil
	}
	inner, err := decodeCompact(nested)
	if err != nil {
		return nil, fmt.Errorf("nested credential: %w", err)
	}
	if nonce, ok := outer[nonceMember]; ok {
		inner[idMember] = nonce
	}
	return inner, nil
}

func nestedCompactCredential(outer map[string]interface{}) (string, bool) {
	holder := outer
	if vp, ok := outer[vpClaim].(map[string]interface{}); ok {
		holder = vp
	}
	value := holder[verifiableCredentialMember]
	if list, ok := value.([]interface{}); ok && len(list) == 1 {
		value = list[0]
	}
	result, ok := value.(string)
	if !ok || result == "" || IsJWT(result) {
		return "", false
	}
	return result, true
}

// IsBase45 returns true when the payload only holds characters of the Base45 alphabet.
func IsBase45(payload string) bool {
	for _, c := range payload {
		if !strings.ContainsRune(Base45Alphabet, c) {
			return false
		}
	}
	return true
}

// decodeBase45 decodes Base45, returning an error instead of panicking on malformed input.
func decodeBase45(payload string) (result []byte, err error) {
	if !IsBase45(payload) {
		return nil, errors.New("illegal character")
	}
	if len(payload)%3 == 1 {
		return nil, errors.New("illegal length")
	}
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("malformed input: %v", r)
		}
	}()
	return base45.DecodeString(payload)
}

func decodeCompact(payload string) (map[string]interface{}, error) {
	deflated, err := decodeBase45(strings.TrimSpace(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid base45: %w", ErrParse, err)
	}
	reader, err := zlib.NewReader(bytes.NewReader(deflated))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid deflate stream: %w", ErrParse, err)
	}
	defer reader.Close()
	signed, err := io.ReadAll(io.LimitReader(reader, maxInflatedSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid deflate stream: %w", ErrParse, err)
	}
	if len(signed) > maxInflatedSize {
		return nil, fmt.Errorf("%w: inflated payload too large", ErrParse)
	}
	content, err := openCOSE(signed)
	if err != nil {
		return nil, err
	}
	var decoded interface{}
	if err := cbor.Unmarshal(content, &decoded); err != nil {
		return nil, fmt.Errorf("%w: invalid CBOR: %w", ErrParse, err)
	}
	result, ok := cborToJSON(decoded).(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: CBOR payload is not an object", ErrParse)
	}
	// normalize through JSON so numbers and nested values have the same types as json.Unmarshal gives
	data, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	normalized := make(map[string]interface{})
	_ = json.Unmarshal(data, &normalized)
	return normalized, nil
}

// openCOSE returns the payload of a (tagged or untagged) COSE_Sign1 message,
// verifying the signature when the unprotected header carries an ephemeral P-256 COSE_Key.
func openCOSE(data []byte) ([]byte, error) {
	message := cose.NewSign1Message()
	if err := message.UnmarshalCBOR(data); err != nil {
		var untagged cose.UntaggedSign1Message
		if untaggedErr := untagged.UnmarshalCBOR(data); untaggedErr != nil {
			return nil, fmt.Errorf("%w: invalid COSE_Sign1: %w", ErrParse, err)
		}
		message = (*cose.Sign1Message)(&untagged)
	}
	if coseKey, ok := headerValue(message.Headers.Unprotected, headerLabelEphemeralKey); ok {
		publicKey, err := ecPublicKey(coseKey)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrParse, err)
		}
		if err := verifyCOSE(message, publicKey); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrParse, err)
		}
	}
	return message.Payload, nil
}

// headerValue looks up an integer label, whatever integer type the CBOR decoder gave it.
func headerValue(header map[interface{}]interface{}, label int64) (interface{}, bool) {
	for key, value := range header {
		if n, ok := toInt64(key); ok && n == label {
			return value, true
		}
	}
	return nil, false
}

func toInt64(value interface{}) (int64, bool) {
	switch v := value.(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case uint64:
		if v > math.MaxInt64 {
			return 0, false
		}
		return int64(v), true
	}
	return 0, false
}

// ecPublicKey reads a P-256 public key from an EC2 COSE_Key.
func ecPublicKey(value interface{}) (*ecdsa.PublicKey, error) {
	coseKey, ok := value.(map[interface{}]interface{})
	if !ok {
		return nil, errors.New("invalid COSE_Key")
	}
	keyType, _ := headerValue(coseKey, coseKeyType)
	curve, _ := headerValue(coseKey, coseKeyCurve)
	if kty, _ := toInt64(keyType); kty != coseKeyTypeEC2 {
		return nil, errors.New("COSE_Key is not an EC2 key")
	}
	if crv, _ := toInt64(curve); crv != coseKeyCurveP256 {
		return nil, errors.New("COSE_Key is not a P-256 key")
	}
	xValue, _ := headerValue(coseKey, coseKeyX)
	yValue, _ := headerValue(coseKey, coseKeyY)
	x, xOK := xValue.([]byte)
	y, yOK := yValue.([]byte)
	if !xOK || !yOK || len(x) != 32 || len(y) != 32 {
		return nil, errors.New("invalid COSE_Key coordinates")
	}
	uncompressed := append([]byte{4}, append(x, y...)...)
	px, py := elliptic.Unmarshal(elliptic.P256(), uncompressed)
	if px == nil {
		return nil, errors.New("COSE_Key is not on the P-256 curve")
	}
	return &ecdsa.PublicKey{Curve: elliptic.P256(), X: px, Y: py}, nil
}

func verifyCOSE(message *cose.Sign1Message, publicKey *ecdsa.PublicKey) error {
	verifier, err := cose.NewVerifier(cose.AlgorithmES256, publicKey)
	if err != nil {
		return err
	}
	if err := message.Verify(nil, verifier); err != nil {
		return fmt.Errorf("COSE signature invalid: %w", err)
	}
	return nil
}

// cborToJSON converts decoded CBOR into values encoding/json can marshal:
// maps get string keys, byte strings become base64url and tags are replaced by their content.
func cborToJSON(value interface{}) interface{} {
	switch v := value.(type) {
	case map[interface{}]interface{}:
		result := make(map[string]interface{}, len(v))
		for key, curr := range v {
			result[fmt.Sprintf("%v", key)] = cborToJSON(curr)
		}
		return result
	case map[string]interface{}:
		result := make(map[string]interface{}, len(v))
		for key, curr := range v {
			result[key] = cborToJSON(curr)
		}
		return result
	case []interface{}:
		result := make([]interface{}, len(v))
		for i, curr := range v {
			result[i] = cborToJSON(curr)
		}
		return result
	case []byte:
		return base64.RawURLEncoding.EncodeToString(v)
	case cbor.Tag:
		return cborToJSON(v.Content)
	default:
		return v
	}
}

// integralNumbers replaces float64 values without fraction by int64, so they're encoded as CBOR integers.
func integralNumbers(value interface{}) interface{} {
	switch v := value.(type) {
	case map[string]interface{}:
		result := make(map[string]interface{}, len(v))
		for key, curr := range v {
			result[key] = integralNumbers(curr)
		}
		return result
	case []interface{}:
		result := make([]interface{}, len(v))
		for i, curr := range v {
			result[i] = integralNumbers(curr)
		}
		return result
	case float64:
		if v == math.Trunc(v) && math.Abs(v) < 1<<53 {
			return int64(v)
		}
		return v
	default:
		return v
	}
}
