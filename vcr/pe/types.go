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

// PresentationSubmission describes how the credentials in a Verifiable Presentation satisfy a verifier's request.
// See https://identity.foundation/presentation-exchange/#presentation-submission
type PresentationSubmission struct {
	Id            string          `json:"id"`
	DefinitionId  string          `json:"definition_id"`
	DescriptorMap []DescriptorMap `json:"descriptor_map"`
}

// DescriptorMap locates a submitted credential: Path is evaluated against the submission root,
// PathNested (if present) continues from the value Path points to.
type DescriptorMap struct {
	Id         string         `json:"id"`
	Format     string         `json:"format"`
	Path       string         `json:"path"`
	PathNested *DescriptorMap `json:"path_nested,omitempty"`
}

// Leaves returns the descriptor and its nested descriptors, outermost first.
func (d *DescriptorMap) Leaves() []DescriptorMap {
	var result []DescriptorMap
	for curr := d; curr != nil; curr = curr.PathNested {
		flat := *curr
		flat.PathNested = nil
		result = append(result, flat)
	}
	return result
}
