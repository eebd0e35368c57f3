// Copyright (C) 2024 Vectorbase, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

// Package metrics holds the Prometheus collectors shared by the
// doc-set cache and column cache. It is the one place allowed to
// import prometheus/client_golang so that cache packages stay free of
// a registry-wiring concern.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Registry is satisfied by *prometheus.Registry; callers that don't
// want process-wide registration (e.g. unit tests) can pass a fresh
// one per pindex.IndexHandle.
type Registry = prometheus.Registerer

// CacheLabel names which cache a counter/gauge instance belongs to.
const (
	DocSetCache = "docset"
	ColumnCache = "column"
)

// CacheMetrics bundles the counters a weighted cache reports.
type CacheMetrics struct {
	Hits      prometheus.Counter
	Misses    prometheus.Counter
	Evictions prometheus.Counter
	Weight    prometheus.Gauge
	Items     prometheus.Gauge
}

// NewCacheMetrics builds a CacheMetrics bundle under the given cache
// label and, when reg is non-nil, registers it with reg via
// MustRegister, which panics if that label is already registered there.
func NewCacheMetrics(reg Registry, label string) *CacheMetrics {
	m := &CacheMetrics{
		Hits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "partdex",
			Subsystem: label,
			Name:      "hits_total",
			Help:      "Number of cache lookups that found a live entry.",
		}),
		Misses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "partdex",
			Subsystem: label,
			Name:      "misses_total",
			Help:      "Number of cache lookups that found nothing.",
		}),
		Evictions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "partdex",
			Subsystem: label,
			Name:      "evictions_total",
			Help:      "Number of entries removed to make room for a new one.",
		}),
		Weight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "partdex",
			Subsystem: label,
			Name:      "weight_bytes",
			Help:      "Approximate byte weight currently held by the cache.",
		}),
		Items: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "partdex",
			Subsystem: label,
			Name:      "items",
			Help:      "Number of entries currently held by the cache.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Hits, m.Misses, m.Evictions, m.Weight, m.Items)
	}
	return m
}
