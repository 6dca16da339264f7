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
	"regexp"
	"strings"
)

// PresentationDefinition is the subset of a DIF Presentation Definition the wallet uses to select credentials.
// See https://identity.foundation/presentation-exchange/#presentation-definition
type PresentationDefinition struct {
	Id               string                         `json:"id"`
	Name             string                         `json:"name,omitempty"`
	Format           map[string]map[string][]string `json:"format,omitempty"`
	InputDescriptors []InputDescriptor              `json:"input_descriptors"`
}

// InputDescriptor describes a credential the verifier asks for.
type InputDescriptor struct {
	Id          string                         `json:"id"`
	Name        string                         `json:"name,omitempty"`
	Format      map[string]map[string][]string `json:"format,omitempty"`
	Constraints *Constraints                   `json:"constraints,omitempty"`
}

// Constraints holds the fields an input descriptor constrains.
type Constraints struct {
	Fields []Field `json:"fields,omitempty"`
}

// Field constrains the value found at one of its paths.
type Field struct {
	Path   []string               `json:"path"`
	Filter map[string]interface{} `json:"filter,omitempty"`
}

var literalPattern = regexp.MustCompile(`^\^?([A-Za-z0-9_.:\-]+)\$?$`)

// Formats returns the formats the definition or any of its input descriptors accept.
func (p PresentationDefinition) Formats() []string {
	var result []string
	seen := map[string]bool{}
	add := func(formats map[string]map[string][]string) {
		for format := range formats {
			if !seen[format] {
				seen[format] = true
				result = append(result, format)
			}
		}
	}
	add(p.Format)
	for _, descriptor := range p.InputDescriptors {
		add(descriptor.Format)
	}
	return result
}

// CredentialTypes returns the credential types the input descriptors constrain on.
// Only fields on a type path with a constant (or literal pattern) filter are considered.
func (p PresentationDefinition) CredentialTypes() []string {
	var result []string
	for _, descriptor := range p.InputDescriptors {
		if descriptor.Constraints == nil {
			continue
		}
		for _, field := range descriptor.Constraints.Fields {
			if !isTypePath(field.Path) {
				continue
			}
			if value := filterValue(field.Filter); value != "" {
				result = append(result, value)
			}
		}
	}
	return result
}

func isTypePath(paths []string) bool {
	for _, path := range paths {
		if strings.HasSuffix(path, ".type") || strings.HasSuffix(path, ".types") {
			return true
		}
	}
	return false
}

func filterValue(filter map[string]interface{}) string {
	if filter == nil {
		return ""
	}
	if value, ok := filter["const"].(string); ok {
		return value
	}
	if pattern, ok := filter["pattern"].(string); ok {
		if match := literalPattern.FindStringSubmatch(pattern); match != nil {
			return match[1]
		}
	}
	if contains, ok := filter["contains"].(map[string]interface{}); ok {
		return filterValue(contains)
	}
	return ""
}
