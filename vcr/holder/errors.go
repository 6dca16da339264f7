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

package holder

import "errors"

// ErrInvalidPIN is returned when the authorization server rejects the PIN the user entered.
var ErrInvalidPIN = errors.New("invalid PIN")

// ErrPinTimeout is returned when the user didn't enter a PIN in time.
var ErrPinTimeout = errors.New("timeout waiting for PIN")

// ErrPinChannelUnavailable is returned when a PIN is required but can't be requested from the user.
var ErrPinChannelUnavailable = errors.New("PIN channel unavailable")

// ErrVPFormatsNotSupported is returned when the verifier requests none of the formats the wallet can produce.
var ErrVPFormatsNotSupported = errors.New("vp_formats_not_supported")

// ErrCredentialNotAvailable is returned when a deferred credential is still pending.
var ErrCredentialNotAvailable = errors.New("credential not available yet")

// ErrClientIDMismatch is returned when the issuer of an authorization request is not its client_id.
var ErrClientIDMismatch = errors.New("authorization request issuer does not match client_id")

// ErrNoMatchingCredentials is returned when the wallet holds no credentials satisfying a presentation request.
var ErrNoMatchingCredentials = errors.New("no matching credentials")

// ErrPresentationNotFound is returned when a prepared presentation doesn't exist (anymore).
var ErrPresentationNotFound = errors.New("prepared presentation not found")
