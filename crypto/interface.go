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

package crypto

import (
	"context"
	"errors"
)

// ErrPrivateKeyNotFound is returned when the private key doesn't exist
var ErrPrivateKeyNotFound = errors.New("private key not found")

// JWTSigner is the interface used to sign authorization tokens.
type JWTSigner interface {
	// SignJWT creates a signed JWT using the indicated key and map of claims and additional headers.
	// Returns ErrPrivateKeyNotFound when indicated private key is not present.
	SignJWT(ctx context.Context, claims map[string]interface{}, headers map[string]interface{}, kid string) (string, error)
}

// HolderKey identifies the key a wallet user signs proofs and presentations with.
type HolderKey struct {
	// DID is the did:key of the holder.
	DID string
	// KID is the key ID to use in JWS headers.
	KID string
}

// HolderKeyStore manages one P-256 holder key per wallet user.
type HolderKeyStore interface {
	JWTSigner
	// HolderKey returns the holder key of the given user, creating it on first use.
	HolderKey(ctx context.Context, userID string) (*HolderKey, error)
}
