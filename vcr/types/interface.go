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

package types

import (
	"context"
)

// CredentialStore persists the credentials of wallet users.
type CredentialStore interface {
	// Save stores the credential, merging it into an existing record with the same ID (see StoredCredential.Merge).
	// It returns ErrMissingJSON when the resulting record has a signed form but no JSON form.
	Save(ctx context.Context, credential StoredCredential) error
	// Get returns the credential of the given user. It returns ErrNotFound if it doesn't exist.
	Get(ctx context.Context, userID string, credentialID string) (*StoredCredential, error)
	// List returns all credentials of the given user, ordered by creation time.
	List(ctx context.Context, userID string) ([]StoredCredential, error)
	// Delete removes the credential. It does not fail when it doesn't exist.
	Delete(ctx context.Context, userID string, credentialID string) error
}

// DeferredStore persists the metadata of pending deferred issuances.
type DeferredStore interface {
	// Put creates or replaces the metadata for the credential.
	Put(ctx context.Context, metadata DeferredCredentialMetadata) error
	// Get returns the metadata. It returns ErrDeferredNotFound if it doesn't exist.
	Get(ctx context.Context, userID string, credentialID string) (*DeferredCredentialMetadata, error)
	// Delete removes the metadata. It does not fail when it doesn't exist.
	Delete(ctx context.Context, userID string, credentialID string) error
}
