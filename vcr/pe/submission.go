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

package pe

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/nuts-foundation/go-did/vc"
)

// MaxSubmissionCredentials is the maximum number of credentials in a single submission.
const MaxSubmissionCredentials = 64

// ErrTooManyCredentials is returned when more than MaxSubmissionCredentials credentials are selected.
var ErrTooManyCredentials = fmt.Errorf("a submission can hold at most %d credentials", MaxSubmissionCredentials)

// BuildSubmissionMap creates the descriptor map for a JWT VP holding the given credentials, in order.
// Credential i is addressed as $.verifiableCredential[i]; the credential descriptors are chained through path_nested
// (the first credential outermost) and wrapped in a descriptor for the VP at $.
// It returns nil when no credentials are given, meaning no presentation is needed.
func BuildSubmissionMap(credentialIDs []string, vpID string) (*DescriptorMap, error) {
	if len(credentialIDs) == 0 {
		return nil, nil
	}
	if len(credentialIDs) > MaxSubmissionCredentials {
		return nil, ErrTooManyCredentials
	}
	leaves := make([]*DescriptorMap, len(credentialIDs))
	for i, id := range credentialIDs {
		leaves[i] = &DescriptorMap{
			Id:     id,
			Format: vc.JWTCredentialProofFormat,
			Path:   fmt.Sprintf("$.verifiableCredential[%d]", i),
		}
	}
	folded := leaves[len(leaves)-1]
	for i := len(leaves) - 2; i >= 0; i-- {
		if err := attach(leaves[i], folded); err != nil {
			return nil, err
		}
		folded = leaves[i]
	}
	return &DescriptorMap{
		Id:         vpID,
		Format:     vc.JWTPresentationProofFormat,
		Path:       "$",
		PathNested: folded,
	}, nil
}

// attach adds the addition at the bottom of the descriptor's path_nested chain.
func attach(descriptor *DescriptorMap, addition *DescriptorMap) error {
	curr := descriptor
	for depth := 0; curr.PathNested != nil; depth++ {
		if depth > MaxSubmissionCredentials {
			return errors.New("descriptor map nesting too deep")
		}
		curr = curr.PathNested
	}
	curr.PathNested = addition
	return nil
}

// NewPresentationSubmission wraps the descriptor map in a PresentationSubmission with a random ID.
func NewPresentationSubmission(definitionID string, descriptor *DescriptorMap) PresentationSubmission {
	result := PresentationSubmission{
		Id:            uuid.NewString(),
		DefinitionId:  definitionID,
		DescriptorMap: []DescriptorMap{},
	}
	if descriptor != nil {
		result.DescriptorMap = append(result.DescriptorMap, *descriptor)
	}
	return result
}
