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
	"time"

	"github.com/nuts-foundation/nuts-wallet/auth/oauth"
	"github.com/nuts-foundation/nuts-wallet/core"
	"github.com/nuts-foundation/nuts-wallet/vcr/log"
)

// awaitPIN asks the session of the user for a PIN and waits for it until the PIN timeout passes.
// The subscription is made before the request is sent, so a quick answer can't be missed.
func (h *Holder) awaitPIN(ctx context.Context, identity oauth.Identity) (string, error) {
	if h.pins == nil || identity.SessionID == "" {
		return "", ErrPinChannelUnavailable
	}
	subscription, err := h.pins.Subscribe(ctx, identity.UserID)
	if err != nil {
		return "", core.WrapError(ErrPinChannelUnavailable, err)
	}
	defer subscription.Close()
	if err := h.pins.RequestPIN(ctx, identity.SessionID); err != nil {
		return "", core.WrapError(ErrPinChannelUnavailable, err)
	}
	timer := time.NewTimer(h.config.PINTimeout)
	defer timer.Stop()
	select {
	case pin, ok := <-subscription.PIN():
		if !ok {
			return "", ErrPinChannelUnavailable
		}
		return pin, nil
	case <-timer.C:
		h.cancelPINRequest(identity.SessionID)
		return "", ErrPinTimeout
	case <-ctx.Done():
		h.cancelPINRequest(identity.SessionID)
		return "", ctx.Err()
	}
}

// cancelPINRequest clears the request, so the session no longer prompts for a PIN nobody waits for.
func (h *Holder) cancelPINRequest(sessionID string) {
	// the issuance context may be done already
	if err := h.pins.CancelPINRequest(context.Background(), sessionID); err != nil {
		log.Logger().WithError(err).WithField(core.LogFieldSessionID, sessionID).Warn("Unable to cancel PIN request")
	}
}
