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
	"strings"
)

// NormalizedCredential holds the JSON form of an issued credential and the signed form it was received in, if any.
type NormalizedCredential struct {
	JSON map[string]interface{}
	JWT  string
	CWT  string
}

// Normalize turns a credential as received from an issuer into its JSON form, keeping the signed form.
// The credential is either a string (JWT, compact CBOR or serialized JSON) or a JSON object.
func Normalize(format string, credential interface{}) (*NormalizedCredential, error) {
	switch format {
	case FormatJWTVC, FormatJWTVCJSON:
		token, ok := credential.(string)
		if !ok {
			return nil, fmt.Errorf("%w: %s credential must be a string", ErrParse, format)
		}
		token = strings.TrimSpace(token)
		vcJSON, err := ExtractVCFromJWT(token)
		if err != nil {
			return nil, err
		}
		return &NormalizedCredential{JSON: vcJSON, JWT: token}, nil
	case FormatCWTVC:
		payload, ok := credential.(string)
		if !ok {
			return nil, fmt.Errorf("%w: %s credential must be a string", ErrParse, format)
		}
		payload = strings.TrimSpace(payload)
		vcJSON, err := ExtractVCFromCompactCBOR(payload)
		if err != nil {
			return nil, err
		}
		return &NormalizedCredential{JSON: vcJSON, CWT: payload}, nil
	case FormatLDPVC, FormatJSON, "":
		vcJSON, err := asJSONObject(credential)
		if err != nil {
			return nil, err
		}
		return &NormalizedCredential{JSON: vcJSON}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

func asJSONObject(credential interface{}) (map[string]interface{}, error) {
	switch value := credential.(type) {
	case map[string]interface{}:
		return value, nil
	case string:
		result := make(map[string]interface{})
		if err := json.Unmarshal([]byte(value), &result); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrParse, err)
		}
		return result, nil
	case json.RawMessage:
		return asJSONObject(string(value))
	default:
		return nil, fmt.Errorf("%w: credential is not a JSON object", ErrParse)
	}
}
