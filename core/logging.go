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

package core

const (
	// LogFieldModule is the log field for the module name.
	LogFieldModule = "module"

	// LogFieldRequestPath is the log field key for the path of an outbound HTTP request.
	LogFieldRequestPath = "requestPath"

	// LogFieldUserID is the log field key for the wallet user a workflow runs for.
	LogFieldUserID = "userID"
	// LogFieldSessionID is the log field key for the session that receives PIN requests.
	LogFieldSessionID = "sessionID"

	// LogFieldCredentialID is the log field key for the ID of a Verifiable Credential.
	LogFieldCredentialID = "credentialID"
	// LogFieldCredentialType is the log field key for the type of a Verifiable Credential.
	LogFieldCredentialType = "credentialType"
	// LogFieldCredentialIssuer is the log field key for the issuer of a Verifiable Credential.
	LogFieldCredentialIssuer = "credentialIssuer"
	// LogFieldCredentialFormat is the log field key for the format a credential is requested or presented in.
	LogFieldCredentialFormat = "credentialFormat"

	// LogFieldWorkflowState is the log field key for the state of an issuance or presentation workflow.
	LogFieldWorkflowState = "workflowState"
	// LogFieldProfile is the log field key for the ecosystem profile (standard, ebsi, dome).
	LogFieldProfile = "profile"

	// LogFieldStore is the log field key for the name of a store managed by the storage module.
	LogFieldStore = "store"
	// LogFieldStoreShelf is the log field key for the name of a shelf, in a store managed by the storage module.
	LogFieldStoreShelf = "storeShelf"

	// LogFieldKeyID is the log field key for the unique ID of a key.
	LogFieldKeyID = "keyID"
	// LogFieldDID is the log field key for a DID.
	LogFieldDID = "did"

	// LogFieldVerifier is the log field key for the client_id of a relying party requesting a presentation.
	LogFieldVerifier = "verifier"
)
