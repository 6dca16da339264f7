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
	"fmt"

	"github.com/nuts-foundation/nuts-wallet/core"
	"github.com/nuts-foundation/nuts-wallet/storage"
	"github.com/nuts-foundation/nuts-wallet/storage/log"
	"github.com/redis/go-redis/v9"
)

var _ PINChannel = (*RedisPINChannel)(nil)

// NewRedisPINChannel creates a PINChannel over Redis pub/sub, so the PIN can be submitted to any wallet instance.
// PIN requests are also published, on {prefix}:pinrequest:{sessionID}, for gateways that push them to the user's session.
func NewRedisPINChannel(client redis.UniversalClient, prefix string, pending storage.SessionStore) *RedisPINChannel {
	return &RedisPINChannel{
		client:  client,
		prefix:  prefix,
		pending: pendingRequests{store: pending},
	}
}

// RedisPINChannel is a PINChannel backed by Redis pub/sub.
type RedisPINChannel struct {
	client  redis.UniversalClient
	prefix  string
	pending pendingRequests
}

func (r *RedisPINChannel) pinChannel(userID string) string {
	return r.prefix + ":pin:" + userID
}

func (r *RedisPINChannel) requestChannel(sessionID string) string {
	return r.prefix + ":pinrequest:" + sessionID
}

func (r *RedisPINChannel) RequestPIN(ctx context.Context, sessionID string) error {
	if err := r.pending.add(sessionID); err != nil {
		return err
	}
	if err := r.client.Publish(ctx, r.requestChannel(sessionID), sessionID).Err(); err != nil {
		return fmt.Errorf("unable to publish PIN request: %w", err)
	}
	log.Logger().WithField(core.LogFieldSessionID, sessionID).Debug("PIN requested")
	return nil
}

func (r *RedisPINChannel) PINRequested(sessionID string) bool {
	return r.pending.exists(sessionID)
}

func (r *RedisPINChannel) Subscribe(ctx context.Context, userID string) (Subscription, error) {
	pubsub := r.client.Subscribe(ctx, r.pinChannel(userID))
	// wait for the subscription to be confirmed, so a PIN submitted right after isn't missed
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("unable to subscribe to PIN channel: %w", err)
	}
	subscription := &redisSubscription{
		pubsub: pubsub,
		pins:   make(chan string, 1),
	}
	messages := pubsub.Channel()
	go func() {
		defer close(subscription.pins)
		for message := range messages {
			select {
			case subscription.pins <- message.Payload:
			default:
				// already received a PIN
			}
		}
	}()
	return subscription, nil
}

func (r *RedisPINChannel) SubmitPIN(ctx context.Context, sessionID string, userID string, pin string) error {
	receivers, err := r.client.Publish(ctx, r.pinChannel(userID), pin).Result()
	if err != nil {
		return fmt.Errorf("unable to publish PIN: %w", err)
	}
	if receivers == 0 {
		return ErrNoSubscriber
	}
	return r.pending.remove(sessionID)
}

func (r *RedisPINChannel) CancelPINRequest(_ context.Context, sessionID string) error {
	log.Logger().WithField(core.LogFieldSessionID, sessionID).Debug("PIN request cancelled")
	return r.pending.remove(sessionID)
}

type redisSubscription struct {
	pubsub *redis.PubSub
	pins   chan string
}

func (s *redisSubscription) PIN() <-chan string {
	return s.pins
}

func (s *redisSubscription) Close() error {
	return s.pubsub.Close()
}
