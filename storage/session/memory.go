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

package session

import (
	"context"
	"sync"

	"github.com/nuts-foundation/nuts-wallet/core"
	"github.com/nuts-foundation/nuts-wallet/storage"
	"github.com/nuts-foundation/nuts-wallet/storage/log"
)

var _ PINChannel = (*MemoryPINChannel)(nil)

// NewMemoryPINChannel creates a PINChannel for a single wallet instance.
// Outstanding requests are kept in the given session store.
func NewMemoryPINChannel(pending storage.SessionStore) *MemoryPINChannel {
	return &MemoryPINChannel{
		pending:     pendingRequests{store: pending},
		subscribers: map[string]map[*memorySubscription]struct{}{},
	}
}

// MemoryPINChannel is a PINChannel that delivers PINs within the process.
type MemoryPINChannel struct {
	pending     pendingRequests
	mux         sync.Mutex
	subscribers map[string]map[*memorySubscription]struct{}
}

func (m *MemoryPINChannel) RequestPIN(_ context.Context, sessionID string) error {
	log.Logger().WithField(core.LogFieldSessionID, sessionID).Debug("PIN requested")
	return m.pending.add(sessionID)
}

func (m *MemoryPINChannel) PINRequested(sessionID string) bool {
	return m.pending.exists(sessionID)
}

func (m *MemoryPINChannel) Subscribe(_ context.Context, userID string) (Subscription, error) {
	m.mux.Lock()
	defer m.mux.Unlock()
	subscription := &memorySubscription{
		channel: m,
		userID:  userID,
		pins:    make(chan string, 1),
	}
	if m.subscribers[userID] == nil {
		m.subscribers[userID] = map[*memorySubscription]struct{}{}
	}
	m.subscribers[userID][subscription] = struct{}{}
	return subscription, nil
}

func (m *MemoryPINChannel) SubmitPIN(_ context.Context, sessionID string, userID string, pin string) error {
	m.mux.Lock()
	receivers := len(m.subscribers[userID])
	for subscription := range m.subscribers[userID] {
		select {
		case subscription.pins <- pin:
		default:
			// already received a PIN
		}
	}
	m.mux.Unlock()
	if receivers == 0 {
		return ErrNoSubscriber
	}
	return m.pending.remove(sessionID)
}

func (m *MemoryPINChannel) CancelPINRequest(_ context.Context, sessionID string) error {
	log.Logger().WithField(core.LogFieldSessionID, sessionID).Debug("PIN request cancelled")
	return m.pending.remove(sessionID)
}

func (m *MemoryPINChannel) unsubscribe(subscription *memorySubscription) {
	m.mux.Lock()
	defer m.mux.Unlock()
	delete(m.subscribers[subscription.userID], subscription)
	if len(m.subscribers[subscription.userID]) == 0 {
		delete(m.subscribers, subscription.userID)
	}
}

type memorySubscription struct {
	channel *MemoryPINChannel
	userID  string
	pins    chan string
	once    sync.Once
}

func (s *memorySubscription) PIN() <-chan string {
	return s.pins
}

func (s *memorySubscription) Close() error {
	s.once.Do(func() {
		s.channel.unsubscribe(s)
	})
	return nil
}
