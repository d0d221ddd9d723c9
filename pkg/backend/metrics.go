// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package backend

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Search metrics
	searchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipemap_backend_searches_total",
			Help: "Total number of recipe searches",
		},
		[]string{"backend"},
	)
	cacheHitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipemap_backend_cache_hits_total",
			Help: "Total number of searches answered by the caller's cached recipe",
		},
		[]string{"backend"},
	)
	scannedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipemap_backend_scanned_recipes_total",
			Help: "Total number of candidate recipes examined by index scans",
		},
		[]string{"backend"},
	)

	// Registration metrics
	collisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipemap_backend_collisions_total",
			Help: "Total number of recipes rejected as duplicates",
		},
		[]string{"backend"},
	)
	acceptedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipemap_backend_recipes_accepted_total",
			Help: "Total number of recipes accepted into the index",
		},
		[]string{"backend"},
	)
	recipesGauge = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "recipemap_backend_recipes",
			Help: "Number of recipes currently held by the backend",
		},
		[]string{"backend"},
	)
)

// Stats is a point-in-time copy of a backend's counters.
type Stats struct {
	Searches   uint64 `json:"searches" yaml:"searches"`
	CacheHits  uint64 `json:"cacheHits" yaml:"cacheHits"`
	Scanned    uint64 `json:"scanned" yaml:"scanned"`
	Collisions uint64 `json:"collisions" yaml:"collisions"`
	Accepted   uint64 `json:"accepted" yaml:"accepted"`
}

type counters struct {
	searches   atomic.Uint64
	cacheHits  atomic.Uint64
	scanned    atomic.Uint64
	collisions atomic.Uint64
	accepted   atomic.Uint64

	promSearches   prometheus.Counter
	promCacheHits  prometheus.Counter
	promScanned    prometheus.Counter
	promCollisions prometheus.Counter
	promAccepted   prometheus.Counter
	promRecipes    prometheus.Gauge
}

func newCounters(name string) *counters {
	return &counters{
		promSearches:   searchesTotal.WithLabelValues(name),
		promCacheHits:  cacheHitsTotal.WithLabelValues(name),
		promScanned:    scannedTotal.WithLabelValues(name),
		promCollisions: collisionsTotal.WithLabelValues(name),
		promAccepted:   acceptedTotal.WithLabelValues(name),
		promRecipes:    recipesGauge.WithLabelValues(name),
	}
}

func (c *counters) search() {
	c.searches.Add(1)
	c.promSearches.Inc()
}

func (c *counters) cacheHit() {
	c.cacheHits.Add(1)
	c.promCacheHits.Inc()
}

func (c *counters) scan(n int) {
	if n == 0 {
		return
	}
	c.scanned.Add(uint64(n))
	c.promScanned.Add(float64(n))
}

func (c *counters) collision() {
	c.collisions.Add(1)
	c.promCollisions.Inc()
}

func (c *counters) accept(total int) {
	c.accepted.Add(1)
	c.promAccepted.Inc()
	c.promRecipes.Set(float64(total))
}

func (c *counters) snapshot() Stats {
	return Stats{
		Searches:   c.searches.Load(),
		CacheHits:  c.cacheHits.Load(),
		Scanned:    c.scanned.Load(),
		Collisions: c.collisions.Load(),
		Accepted:   c.accepted.Load(),
	}
}
