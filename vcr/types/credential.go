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
	"encoding/json"
	"time"
)

// CredentialStatus is the lifecycle status of a stored credential.
type CredentialStatus string

const (
	// StatusGenerated is a credential created by the wallet itself, not yet issued.
	StatusGenerated CredentialStatus = "GENERATED"
	// StatusIssued is a credential whose issuance is pending (deferred); only a placeholder is stored.
	StatusIssued CredentialStatus = "ISSUED"
	// StatusValid is a credential received from its issuer.
	StatusValid CredentialStatus = "VALID"
)

// StoredCredential is the normalized record of a credential held by a wallet user.
// Once a signed form is present, the JSON form is present as well. Signed forms are never removed.
type StoredCredential struct {
	ID        string           `json:"id"`
	UserID    string           `json:"userId"`
	Status    CredentialStatus `json:"status"`
	Types     []string         `json:"types"`
	JSON      json.RawMessage  `json:"json"`
	JWT       string           `json:"jwt,omitempty"`
	CWT       string           `json:"cwt,omitempty"`
	CreatedAt time.Time        `json:"createdAt"`
}

// Merge applies an update to the stored credential: status, types and JSON are replaced when set,
// signed forms are added but never cleared.
func (s StoredCredential) Merge(update StoredCredential) StoredCredential {
	result := s
	if update.Status != "" {
		result.Status = update.Status
	}
	if len(update.Types) > 0 {
		result.Types = update.Types
	}
	if len(update.JSON) > 0 {
		result.JSON = update.JSON
	}
	if update.JWT != "" {
		result.JWT = update.JWT
	}
	if update.CWT != "" {
		result.CWT = update.CWT
	}
	if result.CreatedAt.IsZero() {
		result.CreatedAt = update.CreatedAt
	}
	return result
}

// HasType reports whether the credential declares any of the given types.
func (s StoredCredential) HasType(types ...string) bool {
	for _, declared := range s.Types {
		for _, requested := range types {
			if declared == requested {
				return true
			}
		}
	}
	return false
}

// DeferredCredentialMetadata correlates a credential that is not issued yet with the issuer's deferred endpoint.
type DeferredCredentialMetadata struct {
	CredentialID     string `json:"credentialId"`
	UserID           string `json:"userId"`
	TransactionID    string `json:"transactionId"`
	AccessToken      string `json:"accessToken"`
	DeferredEndpoint string `json:"deferredEndpoint"`
	Format           string `json:"format,omitempty"`
}
