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

package wallet

import (
	"errors"

	"github.com/nuts-foundation/nuts-wallet/core"
	"github.com/nuts-foundation/nuts-wallet/vcr/holder"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	outcomeSuccess  = "success"
	outcomeDeferred = "deferred"
	outcomePending  = "pending"
	outcomeRejected = "rejected"
	outcomeFailure  = "failure"
)

type metrics struct {
	issuance     *prometheus.CounterVec
	presentation *prometheus.CounterVec
	deferredPoll *prometheus.CounterVec
}

func newMetrics() *metrics {
	return &metrics{
		issuance: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: core.WalletMetricsPrefix + "issuance_total",
			Help: "Number of credential issuances, by outcome.",
		}, []string{"outcome"}),
		presentation: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: core.WalletMetricsPrefix + "presentation_total",
			Help: "Number of credential presentations, by outcome.",
		}, []string{"outcome"}),
		deferredPoll: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: core.WalletMetricsPrefix + "deferred_poll_total",
			Help: "Number of deferred credential polls, by outcome.",
		}, []string{"outcome"}),
	}
}

func (m *metrics) register(registerer prometheus.Registerer) error {
	for _, collector := range []prometheus.Collector{m.issuance, m.presentation, m.deferredPoll} {
		if err := core.RegisterCollector(registerer, collector); err != nil {
			return err
		}
	}
	return nil
}

func (m *metrics) issued(result *holder.IssuanceResult, err error) {
	switch {
	case err != nil:
		m.issuance.WithLabelValues(outcomeOf(err)).Inc()
	case result.State == holder.StateDeferred:
		m.issuance.WithLabelValues(outcomeDeferred).Inc()
	default:
		m.issuance.WithLabelValues(outcomeSuccess).Inc()
	}
}

func (m *metrics) presented(err error) {
	if err != nil {
		m.presentation.WithLabelValues(outcomeOf(err)).Inc()
		return
	}
	m.presentation.WithLabelValues(outcomeSuccess).Inc()
}

func (m *metrics) polled(err error) {
	if err != nil {
		m.deferredPoll.WithLabelValues(outcomeOf(err)).Inc()
		return
	}
	m.deferredPoll.WithLabelValues(outcomeSuccess).Inc()
}

// outcomeOf tells errors caused by the user or the counterparty apart from failures of the wallet itself.
func outcomeOf(err error) string {
	switch {
	case errors.Is(err, holder.ErrCredentialNotAvailable):
		return outcomePending
	case errors.Is(err, holder.ErrInvalidPIN),
		errors.Is(err, holder.ErrPinTimeout),
		errors.Is(err, holder.ErrVPFormatsNotSupported),
		errors.Is(err, holder.ErrClientIDMismatch),
		errors.Is(err, holder.ErrNoMatchingCredentials):
		return outcomeRejected
	default:
		return outcomeFailure
	}
}
