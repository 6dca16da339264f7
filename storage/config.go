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
	"time"
)

// DefaultConfig returns the default configuration for the storage engine.
func DefaultConfig() Config {
	return Config{
		BBolt: BBoltConfig{
			Backup: BBoltBackupConfig{},
		},
		Session: SessionConfig{
			TTL: 10 * time.Minute,
		},
	}
}

// Config specifies config for the storage engine.
type Config struct {
	BBolt   BBoltConfig   `koanf:"bbolt"`
	Redis   RedisConfig   `koanf:"redis"`
	Session SessionConfig `koanf:"session"`
}

// SessionConfig specifies config for the session database, which holds short-lived workflow state.
type SessionConfig struct {
	// TTL is the default time-to-live of session entries.
	TTL       time.Duration   `koanf:"ttl"`
	Memcached MemcachedConfig `koanf:"memcached"`
}

// MemcachedConfig specifies config for a Memcached session database.
type MemcachedConfig struct {
	Address []string `koanf:"address"`
}

// isConfigured returns true if config the indicates Memcached support should be enabled.
func (m MemcachedConfig) isConfigured() bool {
	return len(m.Address) > 0
}
