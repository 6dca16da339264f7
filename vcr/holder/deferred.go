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

package holder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/nuts-foundation/nuts-wallet/core"
	"github.com/nuts-foundation/nuts-wallet/vcr/oidc4vci"
	"github.com/nuts-foundation/nuts-wallet/vcr/types"
)

func (h *Holder) PollDeferredCredential(ctx context.Context, userID string, credentialID string) (*types.StoredCredential, error) {
	metadata, err := h.deferred.Get(ctx, userID, credentialID)
	if err != nil {
		return nil, err
	}
	logger := logEntry(userID, credentialID)
	response, err := h.issuerClient.RequestDeferredCredential(ctx, metadata.DeferredEndpoint, metadata.TransactionID, metadata.AccessToken)
	if err != nil {
		var oauthError oidc4vci.Error
		if errors.As(err, &oauthError) && oauthError.Code == oidc4vci.IssuancePending {
			logger.Debug("Deferred credential is still pending")
			return nil, core.WrapError(ErrCredentialNotAvailable, err)
		}
		return nil, err
	}
	if credential := response.FinalCredential(); credential != nil {
		issued, err := toStoredCredential(userID, responseFormat(*response, metadata.Format), credential)
		if err != nil {
			return nil, fmt.Errorf("unable to normalize deferred credential: %w", err)
		}
		// the credential keeps the ID of its placeholder
		issued.ID = credentialID
		if err := h.credentials.Save(ctx, *issued); err != nil {
			return nil, fmt.Errorf("unable to store credential: %w", err)
		}
		if err := h.deferred.Delete(ctx, userID, credentialID); err != nil {
			return nil, fmt.Errorf("unable to delete deferred credential metadata: %w", err)
		}
		logger.Info("Deferred credential issued")
		return h.credentials.Get(ctx, userID, credentialID)
	}
	updated := *metadata
	if response.TransactionID != "" {
		updated.TransactionID = response.TransactionID
	}
	if response.AcceptanceToken != "" {
		updated.AccessToken = response.AcceptanceToken
	}
	if updated != *metadata {
		logger.Debug("Issuer rotated the deferred transaction")
		if err := h.deferred.Put(ctx, updated); err != nil {
			return nil, fmt.Errorf("unable to update deferred credential metadata: %w", err)
		}
	}
	return nil, ErrCredentialNotAvailable
}

// awaitDeferredCredential waits for the configured delay and then polls the deferred credential
// at most the configured number of times. The placeholder and its metadata stay when it isn't issued in time.
func (h *Holder) awaitDeferredCredential(ctx context.Context, userID string, credentialID string) (*types.StoredCredential, error) {
	timer := time.NewTimer(h.config.DeferredDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
	}
	attempts := h.config.DeferredAttempts
	if attempts == 0 {
		// retry-go treats 0 as unlimited
		attempts = 1
	}
	var result *types.StoredCredential
	err := retry.Do(func() error {
		var err error
		result, err = h.PollDeferredCredential(ctx, userID, credentialID)
		return err
	},
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(h.config.DeferredDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return errors.Is(err, ErrCredentialNotAvailable)
		}),
	)
	if err != nil {
		return nil, err
	}
	return result, nil
}
