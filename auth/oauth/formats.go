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
	"github.com/nuts-foundation/nuts-wallet/vcr/codec"
)

// algValuesSupported contains the JWS algorithms the wallet signs presentations with.
var algValuesSupported = []string{"ES256"}

// WalletVPFormats returns the presentation formats the wallet can produce.
// It is used for the wallet metadata and to check the formats a verifier requests.
func WalletVPFormats() map[string]map[string][]string {
	return map[string]map[string][]string{
		codec.FormatJWTVPJSON: {"alg_values_supported": algValuesSupported},
		codec.FormatJWTVP:     {"alg_values_supported": algValuesSupported},
		codec.FormatJWTVCJSON: {"alg_values_supported": algValuesSupported},
		codec.FormatJWTVC:     {"alg_values_supported": algValuesSupported},
	}
}

// SupportsAnyFormat returns true if the wallet can produce at least one of the given formats.
// No formats means the verifier has no preference.
func SupportsAnyFormat(formats []string) bool {
	if len(formats) == 0 {
		return true
	}
	supported := WalletVPFormats()
	for _, format := range formats {
		if _, ok := supported[format]; ok {
			return true
		}
	}
	return false
}
