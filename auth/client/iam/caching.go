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

package iam

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/nuts-foundation/nuts-wallet/auth/log"
	"github.com/nuts-foundation/nuts-wallet/core"
	"github.com/nuts-foundation/nuts-wallet/storage"
	"github.com/pquerna/cachecontrol"
)

// MaxCacheTime is the maximum time a response is cached, regardless of its Cache-Control headers.
const MaxCacheTime = time.Hour

// maxCachedBodySize is the maximum size of a response body to be cached.
const maxCachedBodySize = 1024 * 1024

var nowFunc = time.Now

// CachingHTTPRequestDoer caches HTTP responses of issuer and verifier metadata in a session store,
// so they are shared between wallet instances when the store is backed by Redis or Memcached.
// It only caches GET requests, and only if the response is cacheable.
// It only works on expiration time and does not respect ETags headers.
type CachingHTTPRequestDoer struct {
	requestDoer core.HTTPRequestDoer
	store       storage.SessionStore
}

// NewCachingHTTPRequestDoer wraps the given HTTPRequestDoer. The store should have a TTL of MaxCacheTime.
func NewCachingHTTPRequestDoer(requestDoer core.HTTPRequestDoer, store storage.SessionStore) *CachingHTTPRequestDoer {
	return &CachingHTTPRequestDoer{
		requestDoer: requestDoer,
		store:       store,
	}
}

type cacheEntry struct {
	ResponseData    []byte      `json:"data"`
	ResponseStatus  int         `json:"status"`
	ResponseHeaders http.Header `json:"headers"`
	ExpirationTime  time.Time   `json:"expires"`
}

func (h *CachingHTTPRequestDoer) Do(httpRequest *http.Request) (*http.Response, error) {
	if httpRequest.Method != http.MethodGet {
		return h.requestDoer.Do(httpRequest)
	}
	key := httpRequest.URL.String()
	if response := h.getCachedEntry(key); response != nil {
		return response, nil
	}

	httpResponse, err := h.requestDoer.Do(httpRequest)
	if err != nil {
		return nil, err
	}
	reasons, expirationTime, err := cachecontrol.CachableResponse(httpRequest, httpResponse, cachecontrol.Options{PrivateCache: false})
	if err != nil {
		log.Logger().WithError(err).Infof("error while checking cacheability of response (url=%s), not caching", key)
		return httpResponse, nil
	}
	maxExpirationTime := nowFunc().Add(MaxCacheTime)
	if expirationTime.After(maxExpirationTime) {
		expirationTime = maxExpirationTime
	}
	if len(reasons) > 0 || expirationTime.IsZero() {
		log.Logger().Debugf("response (url=%s) is not cacheable: %v", key, reasons)
		return httpResponse, nil
	}
	responseBytes, err := io.ReadAll(httpResponse.Body)
	_ = httpResponse.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("error while reading response body for caching: %w", err)
	}
	if len(responseBytes) <= maxCachedBodySize {
		err = h.store.Put(key, cacheEntry{
			ResponseData:    responseBytes,
			ResponseStatus:  httpResponse.StatusCode,
			ResponseHeaders: httpResponse.Header,
			ExpirationTime:  expirationTime,
		})
		if err != nil {
			log.Logger().WithError(err).Warnf("unable to cache response (url=%s)", key)
		}
	}
	httpResponse.Body = io.NopCloser(bytes.NewReader(responseBytes))
	return httpResponse, nil
}

func (h *CachingHTTPRequestDoer) getCachedEntry(key string) *http.Response {
	entry := cacheEntry{}
	if err := h.store.Get(key, &entry); err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			log.Logger().WithError(err).Warnf("unable to read cached response (url=%s)", key)
		}
		return nil
	}
	if !entry.ExpirationTime.After(nowFunc()) {
		_ = h.store.Delete(key)
		return nil
	}
	return &http.Response{
		StatusCode: entry.ResponseStatus,
		Header:     entry.ResponseHeaders,
		Body:       io.NopCloser(bytes.NewReader(entry.ResponseData)),
	}
}
