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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStoredCredential_Merge(t *testing.T) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	existing := StoredCredential{
		ID:        "1",
		UserID:    "alice",
		Status:    StatusValid,
		Types:     []string{"VerifiableCredential"},
		JSON:      json.RawMessage(`{"id":"1"}`),
		JWT:       "ey.a.b",
		CreatedAt: created,
	}

	t.Run("signed forms are kept", func(t *testing.T) {
		result := existing.Merge(StoredCredential{CWT: "6BF..."})

		assert.Equal(t, "ey.a.b", result.JWT)
		assert.Equal(t, "6BF...", result.CWT)
		assert.Equal(t, StatusValid, result.Status)
		assert.Equal(t, created, result.CreatedAt)
	})
	t.Run("status and JSON are replaced", func(t *testing.T) {
		placeholder := StoredCredential{ID: "1", Status: StatusIssued, JSON: json.RawMessage(`{"id":"1","type":["X"]}`)}

		result := placeholder.Merge(existing)

		assert.Equal(t, StatusValid, result.Status)
		assert.JSONEq(t, `{"id":"1"}`, string(result.JSON))
		assert.Equal(t, "ey.a.b", result.JWT)
	})
}

func TestStoredCredential_HasType(t *testing.T) {
	credential := StoredCredential{Types: []string{"VerifiableCredential", "LEARCredentialEmployee"}}

	assert.True(t, credential.HasType("LEARCredentialEmployee"))
	assert.True(t, credential.HasType("Other", "VerifiableCredential"))
	assert.False(t, credential.HasType("Other"))
	assert.False(t, credential.HasType())
}
