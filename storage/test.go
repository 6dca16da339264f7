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

package storage

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/nuts-foundation/nuts-wallet/core"
	"github.com/nuts-foundation/nuts-wallet/test/io"
)

// NewTestStorageEngine creates a storage engine backed by BBolt files in a test directory.
func NewTestStorageEngine(t *testing.T) Engine {
	result := New()
	err := result.Configure(core.ServerConfig{Datadir: io.TestDirectory(t)})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		_ = result.Shutdown()
	})
	return result
}

// NewTestStorageEngineRedis creates a storage engine backed by an in-process Redis server.
func NewTestStorageEngineRedis(t *testing.T) (Engine, *miniredis.Miniredis) {
	redis := miniredis.RunT(t)
	result := New().(*engine)
	result.config.Redis = RedisConfig{Address: redis.Addr()}
	err := result.Configure(core.ServerConfig{Datadir: io.TestDirectory(t)})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		_ = result.Shutdown()
	})
	return result, redis
}
