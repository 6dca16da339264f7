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

package v1

// ScanRequest is the body of a scanned QR code or followed link.
type ScanRequest struct {
	// Payload is the content of the QR code: a credential offer, an authorization request or a compact credential.
	Payload string `json:"payload"`
	// Profile overrides the configured profile (standard, ebsi or dome).
	Profile string `json:"profile,omitempty"`
	// Select makes the wallet return the candidate credentials of a presentation instead of presenting all of them.
	Select bool `json:"select,omitempty"`
	// BearerToken is sent to the verifier when fetching a request object by reference.
	BearerToken string `json:"bearerToken,omitempty"`
}

// RespondRequest selects the credentials to present for a prepared presentation.
type RespondRequest struct {
	CredentialIDs []string `json:"credentialIds"`
}

// PINRequest delivers the PIN the user entered.
type PINRequest struct {
	PIN string `json:"pin"`
}

// PINStatus tells whether an issuance is waiting for the user to enter a PIN.
type PINStatus struct {
	Requested bool `json:"requested"`
}
