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
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	gocachestore "github.com/eko/gocache/store/go_cache/v4"
	memcachestore "github.com/eko/gocache/store/memcache/v4"
	redisstore "github.com/eko/gocache/store/redis/v4"
	"github.com/nuts-foundation/nuts-wallet/storage/log"
	gocacheclient "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

var sessionStorePruneInterval = 10 * time.Minute

type sessionDatabase[T string | []byte] struct {
	underlying *cache.Cache[T]
	keyPrefix  string
	defaultTTL time.Duration
	closer     func()
}

// NewInMemorySessionDatabase creates a new in memory session database.
// Stores requested without TTL use defaultTTL.
func NewInMemorySessionDatabase(defaultTTL time.Duration) SessionDatabase {
	gocacheClient := gocacheclient.New(defaultTTL, sessionStorePruneInterval)
	return &sessionDatabase[[]byte]{
		underlying: cache.New[[]byte](gocachestore.NewGoCache(gocacheClient)),
		defaultTTL: defaultTTL,
		closer:     gocacheClient.Flush,
	}
}

// NewMemcachedSessionDatabase creates a new session database using an initialized memcache.Client.
func NewMemcachedSessionDatabase(client *memcache.Client, defaultTTL time.Duration) SessionDatabase {
	memcachedStore := memcachestore.NewMemcache(client, store.WithExpiration(defaultTTL))
	return &sessionDatabase[[]byte]{
		underlying: cache.New[[]byte](memcachedStore),
		defaultTTL: defaultTTL,
		closer: func() {
			_ = client.Close()
		},
	}
}

// NewRedisSessionDatabase creates a new session database using the given Redis client.
// The prefix is prepended to all keys, so multiple wallets can share a Redis database.
func NewRedisSessionDatabase(client redis.UniversalClient, prefix string, defaultTTL time.Duration) SessionDatabase {
	redisStore := redisstore.NewRedis(client, store.WithExpiration(defaultTTL))
	return &sessionDatabase[string]{
		underlying: cache.New[string](redisStore),
		defaultTTL: defaultTTL,
		keyPrefix:  prefix,
	}
}

func newMemcachedClient(config MemcachedConfig) (*memcache.Client, error) {
	client := memcache.New(config.Address...)
	if err := client.Ping(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

func (s *sessionDatabase[T]) GetStore(ttl time.Duration, keys ...string) SessionStore {
	if ttl <= 0 {
		ttl = s.defaultTTL
	}
	return sessionStore[T]{
		underlying: s.underlying,
		ttl:        ttl,
		prefixes:   keys,
		db:         s,
	}
}

func (s *sessionDatabase[T]) close() {
	if s.closer != nil {
		s.closer()
	}
}

func (s *sessionDatabase[T]) getFullKey(prefixes []string, key string) string {
	parts := append([]string{}, prefixes...)
	if s.keyPrefix != "" {
		parts = append([]string{s.keyPrefix}, parts...)
	}
	return strings.Join(append(parts, key), "/")
}

type sessionStore[T string | []byte] struct {
	underlying *cache.Cache[T]
	ttl        time.Duration
	prefixes   []string
	db         SessionDatabase
}

func (s sessionStore[T]) Delete(key string) error {
	err := s.underlying.Delete(context.Background(), s.db.getFullKey(s.prefixes, key))
	if err != nil && !isNotFound(err) {
		return err
	}
	return nil
}

func (s sessionStore[T]) Exists(key string) bool {
	value, err := s.underlying.Get(context.Background(), s.db.getFullKey(s.prefixes, key))
	if err != nil {
		if !isNotFound(err) {
			log.Logger().WithError(err).Error("Failed to check session store entry existence")
		}
		return false
	}
	return len(value) > 0
}

func (s sessionStore[T]) Get(key string, target interface{}) error {
	value, err := s.underlying.Get(context.Background(), s.db.getFullKey(s.prefixes, key))
	if err != nil {
		if isNotFound(err) {
			return ErrNotFound
		}
		return err
	}
	return json.Unmarshal([]byte(value), target)
}

func (s sessionStore[T]) Put(key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.underlying.Set(context.Background(), s.db.getFullKey(s.prefixes, key), T(data), store.WithExpiration(s.ttl))
}

// isNotFound matches both the value and pointer forms of the gocache NotFound error.
// Memcached returns its cache miss error unwrapped on delete.
func isNotFound(err error) bool {
	var notFound *store.NotFound
	return errors.As(err, &notFound) || errors.As(err, new(store.NotFound)) || errors.Is(err, memcache.ErrCacheMiss)
}
