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

package trust

import (
	"context"
	"errors"
	"time"
)

// ErrIssuerNotAuthorized is returned when the issuer is not on the trusted issuers list,
// or is listed without the capability to issue the requested credential type.
var ErrIssuerNotAuthorized = errors.New("issuer not authorized")

// IssuerList provides the credential capabilities of trusted issuers.
type IssuerList interface {
	// Capabilities returns the capabilities registered for the issuer.
	// It returns ErrIssuerNotAuthorized when the issuer is not listed.
	Capabilities(ctx context.Context, issuerID string) ([]CredentialCapability, error)
}

// CredentialCapability describes a credential type an issuer is allowed to issue.
type CredentialCapability struct {
	ValidFor        TimeRange `json:"validFor" yaml:"validFor"`
	CredentialsType string    `json:"credentialsType" yaml:"credentialsType"`
	Claims          []Claim   `json:"claims,omitempty" yaml:"claims,omitempty"`
}

// TimeRange is a validity period. A zero bound is open.
type TimeRange struct {
	From *time.Time `json:"from,omitempty" yaml:"from,omitempty"`
	To   *time.Time `json:"to,omitempty" yaml:"to,omitempty"`
}

// Contains reports whether the given moment lies within the range.
func (r TimeRange) Contains(moment time.Time) bool {
	if r.From != nil && moment.Before(*r.From) {
		return false
	}
	if r.To != nil && moment.After(*r.To) {
		return false
	}
	return true
}

// Claim restricts the values of a credential claim the issuer may set.
type Claim struct {
	Name          string        `json:"name" yaml:"name"`
	AllowedValues []interface{} `json:"allowedValues,omitempty" yaml:"allowedValues,omitempty"`
}

// Authorize checks the issuer is allowed to issue the given credential type at the given moment.
func Authorize(ctx context.Context, list IssuerList, issuerID string, credentialType string, moment time.Time) error {
	capabilities, err := list.Capabilities(ctx, issuerID)
	if err != nil {
		return err
	}
	for _, capability := range capabilities {
		if capability.CredentialsType == credentialType && capability.ValidFor.Contains(moment) {
			return nil
		}
	}
	return ErrIssuerNotAuthorized
}
