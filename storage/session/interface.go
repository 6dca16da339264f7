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

// Package session provides the channel over which a wallet user delivers a PIN (transaction code)
// to a waiting credential issuance.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/nuts-foundation/nuts-wallet/storage"
)

// ErrNoSubscriber is returned when a PIN is submitted while no issuance is waiting for it.
var ErrNoSubscriber = errors.New("no issuance is waiting for a PIN")

// PINChannel delivers PINs from the user's session to a waiting issuance.
type PINChannel interface {
	// RequestPIN signals the session that a PIN must be entered.
	RequestPIN(ctx context.Context, sessionID string) error
	// PINRequested returns true if the session has an outstanding PIN request.
	PINRequested(sessionID string) bool
	// Subscribe starts listening for PINs submitted by the user.
	// The subscription must be closed by the caller.
	Subscribe(ctx context.Context, userID string) (Subscription, error)
	// SubmitPIN delivers a PIN to the issuance waiting for the user, and clears the session's PIN request.
	// It returns ErrNoSubscriber if nothing is waiting.
	SubmitPIN(ctx context.Context, sessionID string, userID string, pin string) error
	// CancelPINRequest clears the session's outstanding PIN request, when the issuance stops waiting for it.
	CancelPINRequest(ctx context.Context, sessionID string) error
}

// Subscription is a single-use subscription on PINs of one user.
type Subscription interface {
	// PIN yields the first PIN submitted after subscribing. Later PINs are discarded.
	PIN() <-chan string
	// Close ends the subscription.
	Close() error
}

// PINRequest is stored for a session while a PIN is outstanding.
type PINRequest struct {
	SessionID   string    `json:"sessionID"`
	RequestedAt time.Time `json:"requestedAt"`
}

// pendingRequests keeps track of outstanding PIN requests per session.
type pendingRequests struct {
	store storage.SessionStore
}

func (p pendingRequests) add(sessionID string) error {
	return p.store.Put(sessionID, PINRequest{SessionID: sessionID, RequestedAt: time.Now()})
}

func (p pendingRequests) exists(sessionID string) bool {
	return p.store.Exists(sessionID)
}

func (p pendingRequests) remove(sessionID string) error {
	return p.store.Delete(sessionID)
}
