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

package crypto

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/nuts-foundation/go-stoabs"
	"github.com/nuts-foundation/nuts-wallet/vdr/didkey"
)

const holderKeyShelf = "holderkeys"

var _ HolderKeyStore = (*KVHolderKeyStore)(nil)

// NewKVHolderKeyStore creates a HolderKeyStore that keeps the holder keys as JWK in the given key-value store.
func NewKVHolderKeyStore(store stoabs.KVStore) *KVHolderKeyStore {
	return &KVHolderKeyStore{store: store}
}

// KVHolderKeyStore is a HolderKeyStore backed by a go-stoabs KVStore.
// Every key is stored twice: by user ID (to find the holder key) and by key ID (to sign).
type KVHolderKeyStore struct {
	store stoabs.KVStore
}

type holderKeyRecord struct {
	DID string          `json:"did"`
	KID string          `json:"kid"`
	Key json.RawMessage `json:"jwk"`
}

func (k *KVHolderKeyStore) HolderKey(ctx context.Context, userID string) (*HolderKey, error) {
	if userID == "" {
		return nil, errors.New("user ID is empty")
	}
	var result *HolderKey
	err := k.store.WriteShelf(ctx, holderKeyShelf, func(writer stoabs.Writer) error {
		data, err := writer.Get(userKey(userID))
		if err == nil {
			record := holderKeyRecord{}
			if err := json.Unmarshal(data, &record); err != nil {
				return err
			}
			result = &HolderKey{DID: record.DID, KID: record.KID}
			return nil
		}
		if !errors.Is(err, stoabs.ErrKeyNotFound) {
			return err
		}
		record, err := newHolderKeyRecord()
		if err != nil {
			return err
		}
		data, _ = json.Marshal(record)
		if err := writer.Put(userKey(userID), data); err != nil {
			return err
		}
		if err := writer.Put(kidKey(record.KID), data); err != nil {
			return err
		}
		result = &HolderKey{DID: record.DID, KID: record.KID}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("unable to resolve holder key (user=%s): %w", userID, err)
	}
	return result, nil
}

func (k *KVHolderKeyStore) SignJWT(ctx context.Context, claims map[string]interface{}, headers map[string]interface{}, kid string) (string, error) {
	var data []byte
	err := k.store.ReadShelf(ctx, holderKeyShelf, func(reader stoabs.Reader) error {
		var err error
		data, err = reader.Get(kidKey(kid))
		return err
	})
	if errors.Is(err, stoabs.ErrKeyNotFound) {
		return "", ErrPrivateKeyNotFound
	} else if err != nil {
		return "", err
	}
	record := holderKeyRecord{}
	if err := json.Unmarshal(data, &record); err != nil {
		return "", err
	}
	key, err := jwk.ParseKey(record.Key)
	if err != nil {
		return "", fmt.Errorf("stored holder key is invalid: %w", err)
	}
	return SignJWT(key, claims, headers)
}

func newHolderKeyRecord() (*holderKeyRecord, error) {
	privateKey, err := GenerateKeyPair()
	if err != nil {
		return nil, err
	}
	key, err := jwkKey(privateKey)
	if err != nil {
		return nil, err
	}
	holderDID, err := didkey.CreateDID(&privateKey.PublicKey)
	if err != nil {
		return nil, err
	}
	kid := didkey.KeyID(holderDID)
	if err := key.Set(jwk.KeyIDKey, kid); err != nil {
		return nil, err
	}
	keyJSON, err := json.Marshal(key)
	if err != nil {
		return nil, err
	}
	return &holderKeyRecord{DID: holderDID, KID: kid, Key: keyJSON}, nil
}

func userKey(userID string) stoabs.Key {
	return stoabs.BytesKey("user/" + userID)
}

func kidKey(kid string) stoabs.Key {
	return stoabs.BytesKey("kid/" + kid)
}
