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
	"errors"
	"strings"

	"github.com/nuts-foundation/go-did/vc"
)

// ErrParse is returned when a JWT, JSON, CBOR or Base45 input is malformed.
var ErrParse = errors.New("unable to parse credential")

// ErrUnsupportedFormat is returned for credential or presentation formats the wallet doesn't know.
var ErrUnsupportedFormat = errors.New("unsupported format")

// Credential and presentation formats as used in OpenID4VCI and OpenID4VP metadata.
const (
	FormatJWTVC     = vc.JWTCredentialProofFormat
	FormatJWTVCJSON = "jwt_vc_json"
	FormatJWTVP     = vc.JWTPresentationProofFormat
	FormatJWTVPJSON = "jwt_vp_json"
	FormatLDPVC     = vc.JSONLDCredentialProofFormat
	FormatCWTVC     = "cwt_vc"
	FormatJSON      = "vc_json"
)

// IsJWT reports whether the input looks like a compact JWS: three base64url segments, the first being a JSON object.
func IsJWT(input string) bool {
	parts := strings.Split(input, ".")
	if len(parts) != 3 || parts[0] == "" {
		return false
	}
	header, err := base64.RawURLEncoding.DecodeString(parts[0])
	return err == nil && len(header) > 0 && header[0] == '{'
}

// CredentialTypes returns the declared types of a JSON credential. Both `type` and the legacy `types` member are read.
func CredentialTypes(credential map[string]interface{}) []string {
	var result []string
	for _, member := range []string{"type", "types"} {
		switch value := credential[member].(type) {
		case string:
			result = appendUnique(result, value)
		case []interface{}:
			for _, curr := range value {
				if s, ok := curr.(string); ok {
					result = appendUnique(result, s)
				}
			}
		case []string:
			for _, s := range value {
				result = appendUnique(result, s)
			}
		}
	}
	return result
}

func appendUnique(list []string, value string) []string {
	for _, curr := range list {
		if curr == value {
			return list
		}
	}
	return append(list, value)
}
