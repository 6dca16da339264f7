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

package core

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// WalletMetricsPrefix is prepended to all metric names registered by the wallet.
const WalletMetricsPrefix = "wallet_"

// NewMetricsEngine creates a new Engine for exposing prometheus metrics via http.
// Metrics are exposed on /metrics, by default the GoCollector and ProcessCollector are enabled.
func NewMetricsEngine() *MetricsEngine {
	return &MetricsEngine{}
}

// MetricsEngine registers the default collectors and serves /metrics.
type MetricsEngine struct{}

func (m *MetricsEngine) Name() string {
	return "Metrics"
}

func (m *MetricsEngine) Configure(_ ServerConfig) error {
	collectors := []prometheus.Collector{
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	}
	for _, c := range collectors {
		if err := RegisterCollector(prometheus.DefaultRegisterer, c); err != nil {
			return err
		}
	}
	return nil
}

func (m *MetricsEngine) Routes(router EchoRouter) {
	router.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

// RegisterCollector registers the collector, ignoring collectors that were registered before.
func RegisterCollector(registerer prometheus.Registerer, collector prometheus.Collector) error {
	if err := registerer.Register(collector); err != nil {
		are := prometheus.AlreadyRegisteredError{}
		if err.Error() != are.Error() {
			return err
		}
	}
	return nil
}
