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

// Package storage provides the credential and deferred-issuance stores of the wallet, on top of go-stoabs.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/nuts-foundation/go-stoabs"
	"github.com/nuts-foundation/nuts-wallet/vcr/types"
)

const credentialShelf = "credentials"

var _ types.CredentialStore = (*KVCredentialStore)(nil)

// NewKVCredentialStore creates a CredentialStore on the given key-value store.
func NewKVCredentialStore(store stoabs.KVStore) *KVCredentialStore {
	return &KVCredentialStore{store: store}
}

// KVCredentialStore stores credentials under {userID}/{credentialID}.
// Per user, an index lists the credential IDs so credentials can be listed without iterating the shelf.
type KVCredentialStore struct {
	store stoabs.KVStore
}

func (k *KVCredentialStore) Save(ctx context.Context, credential types.StoredCredential) error {
	if credential.ID == "" || credential.UserID == "" {
		return errors.New("credential ID and user ID are required")
	}
	return k.store.WriteShelf(ctx, credentialShelf, func(writer stoabs.Writer) error {
		record := credential
		existing, err := getCredential(writer, credential.UserID, credential.ID)
		if err == nil {
			record = existing.Merge(credential)
		} else if !errors.Is(err, types.ErrNotFound) {
			return err
		}
		if len(record.JSON) == 0 && (record.JWT != "" || record.CWT != "") {
			return types.ErrMissingJSON
		}
		data, _ := json.Marshal(record)
		if err := writer.Put(credentialKey(record.UserID, record.ID), data); err != nil {
			return err
		}
		if existing != nil {
			return nil
		}
		index, err := getIndex(writer, record.UserID)
		if err != nil {
			return err
		}
		return putIndex(writer, record.UserID, append(index, record.ID))
	})
}

func (k *KVCredentialStore) Get(ctx context.Context, userID string, credentialID string) (*types.StoredCredential, error) {
	var result *types.StoredCredential
	err := k.store.ReadShelf(ctx, credentialShelf, func(reader stoabs.Reader) error {
		var err error
		result, err = getCredential(reader, userID, credentialID)
		return err
	})
	return result, err
}

func (k *KVCredentialStore) List(ctx context.Context, userID string) ([]types.StoredCredential, error) {
	result := make([]types.StoredCredential, 0)
	err := k.store.ReadShelf(ctx, credentialShelf, func(reader stoabs.Reader) error {
		index, err := getIndex(reader, userID)
		if err != nil {
			return err
		}
		for _, credentialID := range index {
			credential, err := getCredential(reader, userID, credentialID)
			if errors.Is(err, types.ErrNotFound) {
				continue
			} else if err != nil {
				return err
			}
			result = append(result, *credential)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (k *KVCredentialStore) Delete(ctx context.Context, userID string, credentialID string) error {
	return k.store.WriteShelf(ctx, credentialShelf, func(writer stoabs.Writer) error {
		if err := writer.Delete(credentialKey(userID, credentialID)); err != nil {
			return err
		}
		index, err := getIndex(writer, userID)
		if err != nil {
			return err
		}
		updated := make([]string, 0, len(index))
		for _, curr := range index {
			if curr != credentialID {
				updated = append(updated, curr)
			}
		}
		if len(updated) == len(index) {
			return nil
		}
		return putIndex(writer, userID, updated)
	})
}

func getCredential(reader stoabs.Reader, userID string, credentialID string) (*types.StoredCredential, error) {
	data, err := reader.Get(credentialKey(userID, credentialID))
	if errors.Is(err, stoabs.ErrKeyNotFound) {
		return nil, types.ErrNotFound
	} else if err != nil {
		return nil, err
	}
	result := types.StoredCredential{}
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("invalid stored credential (id=%s): %w", credentialID, err)
	}
	return &result, nil
}

func getIndex(reader stoabs.Reader, userID string) ([]string, error) {
	data, err := reader.Get(indexKey(userID))
	if errors.Is(err, stoabs.ErrKeyNotFound) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	var result []string
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("invalid credential index (user=%s): %w", userID, err)
	}
	return result, nil
}

func putIndex(writer stoabs.Writer, userID string, index []string) error {
	data, _ := json.Marshal(index)
	return writer.Put(indexKey(userID), data)
}

func credentialKey(userID string, credentialID string) stoabs.Key {
	return stoabs.BytesKey("credential/" + userID + "/" + credentialID)
}

func indexKey(userID string) stoabs.Key {
	return stoabs.BytesKey("index/" + userID)
}
