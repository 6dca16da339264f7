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

	"github.com/nuts-foundation/go-stoabs"
	"github.com/nuts-foundation/nuts-wallet/vcr/types"
)

const deferredShelf = "deferred"

var _ types.DeferredStore = (*KVDeferredStore)(nil)

// NewKVDeferredStore creates a DeferredStore on the given key-value store.
func NewKVDeferredStore(store stoabs.KVStore) *KVDeferredStore {
	return &KVDeferredStore{store: store}
}

// KVDeferredStore stores the metadata of credentials whose issuance was deferred by the issuer.
type KVDeferredStore struct {
	store stoabs.KVStore
}

func (k *KVDeferredStore) Put(ctx context.Context, metadata types.DeferredCredentialMetadata) error {
	if metadata.CredentialID == "" || metadata.UserID == "" {
		return errors.New("credential ID and user ID are required")
	}
	data, _ := json.Marshal(metadata)
	return k.store.WriteShelf(ctx, deferredShelf, func(writer stoabs.Writer) error {
		return writer.Put(deferredKey(metadata.UserID, metadata.CredentialID), data)
	})
}

func (k *KVDeferredStore) Get(ctx context.Context, userID string, credentialID string) (*types.DeferredCredentialMetadata, error) {
	var data []byte
	err := k.store.ReadShelf(ctx, deferredShelf, func(reader stoabs.Reader) error {
		var err error
		data, err = reader.Get(deferredKey(userID, credentialID))
		return err
	})
	if errors.Is(err, stoabs.ErrKeyNotFound) {
		return nil, types.ErrDeferredNotFound
	} else if err != nil {
		return nil, err
	}
	result := types.DeferredCredentialMetadata{}
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (k *KVDeferredStore) Delete(ctx context.Context, userID string, credentialID string) error {
	return k.store.WriteShelf(ctx, deferredShelf, func(writer stoabs.Writer) error {
		return writer.Delete(deferredKey(userID, credentialID))
	})
}

func deferredKey(userID string, credentialID string) stoabs.Key {
	return stoabs.BytesKey(userID + "/" + credentialID)
}
