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

package io

import (
	"fmt"
	"os"
	"path"
	"regexp"
	"testing"
)

var invalidPathCharRegex = regexp.MustCompile("([^a-zA-Z0-9])")

// TestDirectory returns a temporary directory for this test only. Calling TestDirectory multiple times for the same
// instance of t returns a new directory every time. The directory is removed when the test ends.
func TestDirectory(t *testing.T) string {
	dir, err := os.MkdirTemp("", "wallet-"+normalizeTestName(t))
	if err != nil {
		t.Fatal(err)
		return ""
	}
	t.Cleanup(func() {
		if err := os.RemoveAll(dir); err != nil {
			_, _ = os.Stderr.WriteString(fmt.Sprintf("Unable to remove temporary directory for test (%s): %v\n", dir, err))
		}
	})
	return dir
}

// TestFile returns the path of a file with the given name inside a fresh TestDirectory.
func TestFile(t *testing.T, name string) string {
	return path.Join(TestDirectory(t), name)
}

func normalizeTestName(t *testing.T) string {
	name := invalidPathCharRegex.ReplaceAllString(t.Name(), "_")
	// MkdirTemp fails on very long names on some platforms
	if len(name) > 64 {
		name = name[:64]
	}
	return name
}
