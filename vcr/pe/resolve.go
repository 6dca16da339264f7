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
	"encoding/json"
	"errors"
	"fmt"

	"github.com/PaesslerAG/jsonpath"
)

// ResolvePaths evaluates the path of every credential descriptor in the chain against the given VP
// and returns the values they point to, in chain order. The outermost (VP) descriptor must have path $.
// It fails if any path doesn't resolve to a value.
func ResolvePaths(descriptor *DescriptorMap, vp map[string]interface{}) ([]interface{}, error) {
	if descriptor == nil {
		return nil, errors.New("no descriptor map")
	}
	// jsonpath needs plain JSON types, e.g. []interface{} instead of []string
	data, err := json.Marshal(vp)
	if err != nil {
		return nil, err
	}
	var root interface{}
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	leaves := descriptor.Leaves()
	if leaves[0].Path != "$" {
		return nil, fmt.Errorf("presentation descriptor must have path '$', not '%s'", leaves[0].Path)
	}
	var result []interface{}
	for _, leaf := range leaves[1:] {
		value, err := jsonpath.Get(leaf.Path, root)
		if err != nil {
			return nil, fmt.Errorf("unable to resolve path '%s' (id=%s): %w", leaf.Path, leaf.Id, err)
		}
		if value == nil {
			return nil, fmt.Errorf("path '%s' (id=%s) resolves to nothing", leaf.Path, leaf.Id)
		}
		result = append(result, value)
	}
	return result, nil
}
