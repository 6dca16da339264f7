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
	"encoding/base64"
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/dasio/base45"
	"github.com/klauspost/compress/zlib"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/nuts-foundation/nuts-wallet/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/veraison/go-cose"
)

const employeeCredentialJSON = `{
  "@context": ["https://www.w3.org/2018/credentials/v1"],
  "id": "urn:uuid:8f3e5a7c-0000-4000-8000-000000000001",
  "type": ["VerifiableCredential", "LEARCredentialEmployee"],
  "issuer": "did:key:zDnaeucDGfhXHoJVqot3p21RuupNJ2fZrs8Lb1GV83VnSo2jR",
  "issuanceDate": "2024-01-01T00:00:00Z",
  "credentialSubject": {
    "id": "did:key:holder",
    "mandate": {"mandatee": {"first_name": "Jane", "last_name": "Doe"}, "power": [{"tmf_action": ["Execute"], "tmf_domain": "DOME"}]},
    "level": 3
  }
}`

func credentialMap(t *testing.T) map[string]interface{} {
	result := make(map[string]interface{})
	require.NoError(t, json.Unmarshal([]byte(employeeCredentialJSON), &result))
	return result
}

// signedJWT signs the given claims with a fresh key, as an issuer or holder would.
func signedJWT(t *testing.T, claims map[string]interface{}) string {
	privateKey, err := crypto.GenerateKeyPair()
	require.NoError(t, err)
	key, err := jwk.FromRaw(privateKey)
	require.NoError(t, err)
	token := jwt.New()
	for k, v := range claims {
		require.NoError(t, token.Set(k, v))
	}
	signed, err := jwt.Sign(token, jwt.WithKey(jwa.ES256, key))
	require.NoError(t, err)
	return string(signed)
}

func TestExtractVCFromJWT(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		token := signedJWT(t, map[string]interface{}{"iss": "did:key:issuer", "vc": credentialMap(t)})

		result, err := ExtractVCFromJWT(token)

		require.NoError(t, err)
		assert.Equal(t, credentialMap(t), result)
	})
	t.Run("error - no vc claim", func(t *testing.T) {
		token := signedJWT(t, map[string]interface{}{"iss": "did:key:issuer"})

		_, err := ExtractVCFromJWT(token)

		assert.ErrorIs(t, err, ErrParse)
	})
	t.Run("error - malformed", func(t *testing.T) {
		_, err := ExtractVCFromJWT("ey.not.valid")

		assert.ErrorIs(t, err, ErrParse)
	})
}

func TestJWTSubject(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		token := signedJWT(t, map[string]interface{}{"sub": "did:key:holder", "vc": credentialMap(t)})

		subject, err := JWTSubject(token)

		require.NoError(t, err)
		assert.Equal(t, "did:key:holder", subject)
	})
	t.Run("no sub", func(t *testing.T) {
		subject, err := JWTSubject(signedJWT(t, map[string]interface{}{"iss": "did:key:issuer"}))

		require.NoError(t, err)
		assert.Empty(t, subject)
	})
}

func TestCompactCBOR(t *testing.T) {
	t.Run("round trip of a JSON credential", func(t *testing.T) {
		encoded, err := EncodeVCToCompactCBOR(employeeCredentialJSON)
		require.NoError(t, err)

		decoded, err := ExtractVCFromCompactCBOR(encoded)

		require.NoError(t, err)
		assert.Equal(t, credentialMap(t), decoded)
	})
	t.Run("round trip of a JWT credential", func(t *testing.T) {
		claims := map[string]interface{}{"iss": "did:key:issuer", "sub": "did:key:holder", "vc": credentialMap(t)}
		token := signedJWT(t, claims)
		encoded, err := EncodeVCToCompactCBOR(token)
		require.NoError(t, err)

		decoded, err := ExtractVCFromCompactCBOR(encoded)

		require.NoError(t, err)
		assert.Equal(t, "did:key:issuer", decoded["iss"])
		assert.Equal(t, credentialMap(t), decoded["vc"])
	})
	t.Run("nested presentation: nonce becomes credential id", func(t *testing.T) {
		const nonce = "fixed-nonce-4711"
		vcToken := signedJWT(t, map[string]interface{}{"iss": "did:key:issuer", "vc": credentialMap(t)})
		vpToken := signedJWT(t, map[string]interface{}{
			"iss":   "did:key:holder",
			"nonce": nonce,
			"vp": map[string]interface{}{
				"type":                 []interface{}{"VerifiablePresentation"},
				"verifiableCredential": []interface{}{vcToken},
			},
		})
		encoded, err := EncodeVCToCompactCBOR(vpToken)
		require.NoError(t, err)

		decoded, err := ExtractVCFromCompactCBOR(encoded)

		require.NoError(t, err)
		assert.Equal(t, nonce, decoded["id"])
		assert.Equal(t, "did:key:issuer", decoded["iss"])
		assert.Equal(t, credentialMap(t), decoded["vc"])
	})
	t.Run("single credential list is flattened, empty list untouched", func(t *testing.T) {
		input := `{"verifiableCredential": [{"id": "a"}], "vp": {"verifiableCredential": []}}`
		encoded, err := EncodeVCToCompactCBOR(input)
		require.NoError(t, err)

		decoded, err := ExtractVCFromCompactCBOR(encoded)

		require.NoError(t, err)
		assert.Equal(t, map[string]interface{}{"id": "a"}, decoded["verifiableCredential"])
		assert.Equal(t, []interface{}{}, decoded["vp"].(map[string]interface{})["verifiableCredential"])
	})
	t.Run("every encoding uses a fresh key", func(t *testing.T) {
		first, _ := EncodeVCToCompactCBOR(employeeCredentialJSON)
		second, _ := EncodeVCToCompactCBOR(employeeCredentialJSON)

		assert.NotEqual(t, first, second)
	})
	t.Run("error - encode input is neither JWT nor JSON", func(t *testing.T) {
		_, err := EncodeVCToCompactCBOR("hello")

		assert.ErrorIs(t, err, ErrParse)
	})
	t.Run("error - invalid base45", func(t *testing.T) {
		_, err := ExtractVCFromCompactCBOR("~~~")

		assert.ErrorIs(t, err, ErrParse)
	})
	t.Run("error - lowercase is not base45", func(t *testing.T) {
		_, err := ExtractVCFromCompactCBOR("abc")

		assert.ErrorIs(t, err, ErrParse)
	})
	t.Run("error - invalid base45 length", func(t *testing.T) {
		_, err := ExtractVCFromCompactCBOR("ABCD")

		assert.ErrorIs(t, err, ErrParse)
	})
	t.Run("error - base45 value out of range", func(t *testing.T) {
		_, err := ExtractVCFromCompactCBOR(":::")

		assert.ErrorIs(t, err, ErrParse)
	})
	t.Run("error - not deflated", func(t *testing.T) {
		_, err := ExtractVCFromCompactCBOR(base45.EncodeToString([]byte("plain")))

		assert.ErrorIs(t, err, ErrParse)
	})
	t.Run("error - not COSE", func(t *testing.T) {
		buf := new(bytes.Buffer)
		writer := zlib.NewWriter(buf)
		_, _ = writer.Write([]byte{0x01, 0x02, 0x03})
		_ = writer.Close()

		_, err := ExtractVCFromCompactCBOR(base45.EncodeToString(buf.Bytes()))

		assert.ErrorIs(t, err, ErrParse)
	})
}

func TestCompactCBOR_EphemeralKey(t *testing.T) {
	encoded, err := EncodeVCToCompactCBOR(employeeCredentialJSON)
	require.NoError(t, err)
	deflated, err := base45.DecodeString(encoded)
	require.NoError(t, err)
	reader, err := zlib.NewReader(bytes.NewReader(deflated))
	require.NoError(t, err)
	signed, err := io.ReadAll(reader)
	require.NoError(t, err)
	message := cose.NewSign1Message()
	require.NoError(t, message.UnmarshalCBOR(signed))

	t.Run("ok - COSE_Key under the ephemeral key label", func(t *testing.T) {
		coseKey, ok := headerValue(message.Headers.Unprotected, -1)
		require.True(t, ok)

		publicKey, err := ecPublicKey(coseKey)

		require.NoError(t, err)
		assert.NoError(t, verifyCOSE(message, publicKey))
	})
	t.Run("ok - no key ID header", func(t *testing.T) {
		_, ok := headerValue(message.Headers.Unprotected, 4)

		assert.False(t, ok)
	})
	t.Run("error - key is not EC2", func(t *testing.T) {
		_, err := ecPublicKey(map[interface{}]interface{}{int64(1): int64(1)})

		assert.EqualError(t, err, "COSE_Key is not an EC2 key")
	})
	t.Run("error - coordinates not on curve", func(t *testing.T) {
		_, err := ecPublicKey(map[interface{}]interface{}{
			int64(1):  int64(2),
			int64(-1): int64(1),
			int64(-2): make([]byte, 32),
			int64(-3): make([]byte, 32),
		})

		assert.EqualError(t, err, "COSE_Key is not on the P-256 curve")
	})
}

func TestBuildVPJWTPayload(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	nowFunc = func() time.Time { return now }
	t.Cleanup(func() { nowFunc = time.Now })

	claims := BuildVPJWTPayload([]string{"ey.a.b", "ey.c.d"}, "did:key:holder", "nonce-1", "did:key:verifier")

	assert.Equal(t, "did:key:holder", claims["iss"])
	assert.Equal(t, "did:key:holder", claims["sub"])
	assert.Equal(t, "nonce-1", claims["nonce"])
	assert.Equal(t, "did:key:verifier", claims["aud"])
	assert.Equal(t, now.Unix(), claims["nbf"])
	assert.Equal(t, now.Add(10*24*time.Hour).Unix(), claims["exp"])
	vp := claims["vp"].(map[string]interface{})
	assert.Equal(t, claims["jti"], vp["id"])
	assert.Equal(t, "did:key:holder", vp["holder"])
	assert.Equal(t, []interface{}{"VerifiablePresentation"}, vp["type"])
	assert.Equal(t, []interface{}{"ey.a.b", "ey.c.d"}, vp["verifiableCredential"])
}

func TestBuildVPDomeEncoded(t *testing.T) {
	encoded, err := BuildVPDomeEncoded([]map[string]interface{}{credentialMap(t)})
	require.NoError(t, err)

	data, err := base64.RawURLEncoding.DecodeString(encoded)
	require.NoError(t, err)
	presentation := make(map[string]interface{})
	require.NoError(t, json.Unmarshal(data, &presentation))
	assert.Equal(t, DomeHolderPlaceholder, presentation["holder"])
	assert.Equal(t, []interface{}{credentialMap(t)}, presentation["verifiableCredential"])
}

func TestNormalize(t *testing.T) {
	token := signedJWT(t, map[string]interface{}{"vc": credentialMap(t)})

	t.Run("jwt_vc", func(t *testing.T) {
		result, err := Normalize(FormatJWTVC, token)

		require.NoError(t, err)
		assert.Equal(t, token, result.JWT)
		assert.Equal(t, credentialMap(t), result.JSON)
	})
	t.Run("jwt_vc_json", func(t *testing.T) {
		result, err := Normalize(FormatJWTVCJSON, token)

		require.NoError(t, err)
		assert.NotEmpty(t, result.JWT)
	})
	t.Run("cwt_vc", func(t *testing.T) {
		encoded, _ := EncodeVCToCompactCBOR(employeeCredentialJSON)

		result, err := Normalize(FormatCWTVC, encoded)

		require.NoError(t, err)
		assert.Equal(t, encoded, result.CWT)
		assert.Equal(t, credentialMap(t), result.JSON)
	})
	t.Run("ldp_vc object", func(t *testing.T) {
		result, err := Normalize(FormatLDPVC, credentialMap(t))

		require.NoError(t, err)
		assert.Equal(t, credentialMap(t), result.JSON)
		assert.Empty(t, result.JWT)
	})
	t.Run("plain JSON string", func(t *testing.T) {
		result, err := Normalize("", employeeCredentialJSON)

		require.NoError(t, err)
		assert.Equal(t, credentialMap(t), result.JSON)
	})
	t.Run("error - unsupported format", func(t *testing.T) {
		_, err := Normalize("mso_mdoc", "abc")

		assert.ErrorIs(t, err, ErrUnsupportedFormat)
	})
	t.Run("error - jwt_vc not a string", func(t *testing.T) {
		_, err := Normalize(FormatJWTVC, credentialMap(t))

		assert.ErrorIs(t, err, ErrParse)
	})
}

func TestCredentialTypes(t *testing.T) {
	assert.Equal(t, []string{"VerifiableCredential", "LEARCredentialEmployee"}, CredentialTypes(credentialMap(t)))
	assert.Equal(t, []string{"VerifiableCredential", "Legacy"}, CredentialTypes(map[string]interface{}{"types": []interface{}{"VerifiableCredential", "Legacy"}}))
	assert.Equal(t, []string{"A", "B"}, CredentialTypes(map[string]interface{}{"type": "A", "types": []interface{}{"A", "B"}}))
	assert.Empty(t, CredentialTypes(map[string]interface{}{}))
}

func TestIsJWT(t *testing.T) {
	assert.True(t, IsJWT(signedJWT(t, map[string]interface{}{"a": "b"})))
	assert.False(t, IsJWT("a.b.c"))
	assert.False(t, IsJWT("NCFOXN%TS3DH"))
}
