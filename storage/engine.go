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
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/nuts-foundation/go-stoabs"
	"github.com/nuts-foundation/nuts-wallet/core"
	"github.com/nuts-foundation/nuts-wallet/storage/log"
	"github.com/redis/go-redis/v9"
)

var alphanumericRegex = regexp.MustCompile("^[a-zA-Z0-9]+$")

// New creates a new instance of the storage engine.
func New() Engine {
	return &engine{
		config:    DefaultConfig(),
		stores:    map[string]stoabs.KVStore{},
		storesMux: &sync.Mutex{},
	}
}

type engine struct {
	datadir         string
	config          Config
	stores          map[string]stoabs.KVStore
	storesMux       *sync.Mutex
	databases       []database
	redis           *redisDatabase
	sessionDatabase SessionDatabase
}

// Name returns the name of the storage engine.
func (e *engine) Name() string {
	return "Storage"
}

// Config returns a pointer to the engine config.
func (e *engine) Config() interface{} {
	return &e.config
}

// Configure loads the given configurations in the engine. Any wrong combination will return an error
func (e *engine) Configure(config core.ServerConfig) error {
	e.datadir = config.Datadir
	e.databases = []database{createBBoltDatabase(config.Datadir, e.config.BBolt)}
	if e.config.Redis.IsConfigured() {
		redisDB, err := createRedisDatabase(e.config.Redis)
		if err != nil {
			return fmt.Errorf("unable to configure Redis database: %w", err)
		}
		log.Logger().Info("Redis database support enabled.")
		e.redis = redisDB
		e.databases = append(e.databases, redisDB)
	}
	return nil
}

// Start creates the session database.
func (e *engine) Start() error {
	switch {
	case e.config.Session.Memcached.isConfigured():
		client, err := newMemcachedClient(e.config.Session.Memcached)
		if err != nil {
			return fmt.Errorf("unable to connect to Memcached: %w", err)
		}
		log.Logger().Info("Memcached session database support enabled.")
		e.sessionDatabase = NewMemcachedSessionDatabase(client, e.config.Session.TTL)
	case e.redis != nil:
		e.sessionDatabase = NewRedisSessionDatabase(e.redis.getClient(), e.redis.keyPrefix("session"), e.config.Session.TTL)
	default:
		e.sessionDatabase = NewInMemorySessionDatabase(e.config.Session.TTL)
	}
	return nil
}

// Shutdown closes all stores and databases.
func (e *engine) Shutdown() error {
	e.storesMux.Lock()
	defer e.storesMux.Unlock()

	failures := false
	for storeName, store := range e.stores {
		if err := store.Close(context.Background()); err != nil {
			log.Logger().
				WithError(err).
				WithField(core.LogFieldStore, storeName).
				Error("Failed to close store")
			failures = true
		}
	}
	if e.sessionDatabase != nil {
		e.sessionDatabase.close()
	}
	for _, db := range e.databases {
		db.close()
	}
	if failures {
		return errors.New("one or more stores failed to close")
	}
	return nil
}

func (e *engine) GetProvider(moduleName string) Provider {
	return &provider{
		moduleName: strings.ToLower(moduleName),
		engine:     e,
	}
}

func (e *engine) GetSessionDatabase() SessionDatabase {
	return e.sessionDatabase
}

func (e *engine) GetRedisClient() redis.UniversalClient {
	if e.redis == nil {
		return nil
	}
	return e.redis.getClient()
}

type provider struct {
	moduleName string
	engine     *engine
}

// GetKVStore returns the store with the given name, using a database of the requested class when available.
func (p *provider) GetKVStore(name string, class Class) (stoabs.KVStore, error) {
	if len(p.engine.databases) == 0 {
		return nil, errors.New("storage engine is not configured")
	}
	db := p.engine.databases[0]
	for _, curr := range p.engine.databases {
		if curr.getClass() == class {
			db = curr
			break
		}
	}
	return p.getStore(p.moduleName, name, db)
}

func (p *provider) getStore(moduleName string, name string, adapter database) (stoabs.KVStore, error) {
	if len(moduleName) == 0 || !alphanumericRegex.MatchString(moduleName) {
		return nil, errors.New("invalid store moduleName")
	}
	if len(name) == 0 || !alphanumericRegex.MatchString(name) {
		return nil, errors.New("invalid store name")
	}
	p.engine.storesMux.Lock()
	defer p.engine.storesMux.Unlock()
	key := moduleName + "/" + name
	if store, ok := p.engine.stores[key]; ok {
		return store, nil
	}
	store, err := adapter.createStore(moduleName, name)
	if err != nil {
		return nil, err
	}
	p.engine.stores[key] = store
	return store, nil
}
