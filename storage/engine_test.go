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
	"errors"
	"strconv"
	"testing"

	"github.com/nuts-foundation/go-stoabs"
	"github.com/nuts-foundation/nuts-wallet/core"
	"github.com/nuts-foundation/nuts-wallet/test/io"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func Test_New(t *testing.T) {
	assert.NotNil(t, New())
}

func Test_engine_Name(t *testing.T) {
	assert.Equal(t, "Storage", (&engine{}).Name())
}

func Test_engine_lifecycle(t *testing.T) {
	sut := NewTestStorageEngine(t)
	err := sut.Start()
	require.NoError(t, err)
	// Get a KV store so there's something to shut down
	_, err = sut.GetProvider("test").GetKVStore("store", VolatileStorageClass)
	require.NoError(t, err)
	assert.NotNil(t, sut.GetSessionDatabase())
	assert.Nil(t, sut.GetRedisClient())
	err = sut.Shutdown()
	require.NoError(t, err)
}

func Test_engine_redis(t *testing.T) {
	sut, redis := NewTestStorageEngineRedis(t)
	require.NoError(t, sut.Start())

	t.Run("persistent stores use Redis", func(t *testing.T) {
		store, err := sut.GetProvider("wallet").GetKVStore("credentials", PersistentStorageClass)
		require.NoError(t, err)

		err = store.WriteShelf(t.Context(), "shelf", func(writer stoabs.Writer) error {
			return writer.Put(stoabs.BytesKey("k"), []byte("v"))
		})

		require.NoError(t, err)
		assert.NotEmpty(t, redis.Keys())
	})
	t.Run("session database uses Redis", func(t *testing.T) {
		require.NoError(t, sut.GetSessionDatabase().GetStore(0, "test").Put("k", "v"))

		assert.True(t, redis.Exists("session/test/k"))
		assert.NotNil(t, sut.GetRedisClient())
	})
}

func Test_engine_GetKVStore(t *testing.T) {
	sut := New()
	_ = sut.Configure(core.ServerConfig{Datadir: io.TestDirectory(t)})
	t.Cleanup(func() {
		_ = sut.Shutdown()
	})
	t.Run("same store is returned for same name", func(t *testing.T) {
		store1, err := sut.GetProvider("engine").GetKVStore("store", VolatileStorageClass)
		require.NoError(t, err)
		store2, err := sut.GetProvider("Engine").GetKVStore("store", PersistentStorageClass)
		require.NoError(t, err)

		assert.Same(t, store1, store2)
	})
	t.Run("moduleName is empty", func(t *testing.T) {
		store, err := sut.GetProvider("").GetKVStore("store", VolatileStorageClass)
		assert.Nil(t, store)
		assert.EqualError(t, err, "invalid store moduleName")
	})
	t.Run("store is empty", func(t *testing.T) {
		store, err := sut.GetProvider("engine").GetKVStore("", VolatileStorageClass)
		assert.Nil(t, store)
		assert.EqualError(t, err, "invalid store name")
	})
	t.Run("store name is not alphanumeric", func(t *testing.T) {
		_, err := sut.GetProvider("engine").GetKVStore("../x", VolatileStorageClass)
		assert.EqualError(t, err, "invalid store name")
	})
	t.Run("not configured", func(t *testing.T) {
		_, err := New().GetProvider("engine").GetKVStore("store", VolatileStorageClass)
		assert.EqualError(t, err, "storage engine is not configured")
	})
}

func Test_engine_Configure(t *testing.T) {
	t.Run("error - invalid Redis config", func(t *testing.T) {
		sut := New().(*engine)
		sut.config.Redis = RedisConfig{Address: "localhost", TLS: RedisTLSConfig{TrustStoreFile: "x.pem"}}

		err := sut.Configure(core.ServerConfig{Datadir: io.TestDirectory(t)})

		assert.ErrorContains(t, err, "unable to configure Redis database")
	})
}

func Test_engine_Start(t *testing.T) {
	t.Run("error - Memcached not reachable", func(t *testing.T) {
		sut := New().(*engine)
		port, _ := getRandomAvailablePort()
		sut.config.Session.Memcached.Address = []string{"localhost:" + strconv.Itoa(port)}
		require.NoError(t, sut.Configure(core.ServerConfig{Datadir: io.TestDirectory(t)}))

		err := sut.Start()

		assert.ErrorContains(t, err, "unable to connect to Memcached")
	})
}

func Test_engine_Shutdown(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		store := stoabs.NewMockKVStore(ctrl)
		store.EXPECT().Close(gomock.Any())

		sut := New().(*engine)
		sut.stores["1"] = store

		err := sut.Shutdown()

		assert.NoError(t, err)
	})
	t.Run("error while closing store results in error, but all stores are closed", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		store1 := stoabs.NewMockKVStore(ctrl)
		store1.EXPECT().Close(gomock.Any()).Return(errors.New("failed"))
		store2 := stoabs.NewMockKVStore(ctrl)
		store2.EXPECT().Close(gomock.Any()).Return(errors.New("failed"))

		sut := New().(*engine)
		sut.stores["1"] = store1
		sut.stores["2"] = store2

		err := sut.Shutdown()

		assert.EqualError(t, err, "one or more stores failed to close")
	})
}
