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

// Package docset holds the doc-set (bitset) cache and the query
// executor that resolves a CachableQuery into per-segment matches,
// caches the resulting bitsets, and drives a collect.Collector over
// them. Everything here runs on the calling goroutine: one query,
// start to finish, on one goroutine, with no suspension point a
// concurrent refresh could interleave with.
package docset

import (
	"github.com/vectorbase/partdex/bitset"
	"github.com/vectorbase/partdex/collect"
	"github.com/vectorbase/partdex/internal/metrics"
	"github.com/vectorbase/partdex/internal/wcache"
	"github.com/vectorbase/partdex/query"
)

// ByteBudgetDefault is the doc-set cache's default weight budget.
const ByteBudgetDefault = 50_000_000

// AvgItemSize is the assumed average entry weight, used only to derive
// an initial bucket-map capacity hint.
const AvgItemSize = 31_250

// InitialCapacityHint is ByteBudgetDefault / AvgItemSize, rounded down.
const InitialCapacityHint = ByteBudgetDefault / AvgItemSize

// Searcher is a segment reader capable of resolving a compiled query
// into the set of matching doc ids, in addition to the read-through
// column access collect.Reader requires.
type Searcher interface {
	collect.Reader
	// Search returns a fresh bitset sized to this segment's live doc
	// range with a bit set for every document matching q. Scoring is
	// never requested; a document either matches or it doesn't.
	Search(q query.Compiled) (*bitset.Set, error)
}

// Snapshot is the segment view a single Execute call runs against. It
// is taken once at the start of the call, so a concurrent
// IndexHandle.RefreshReaders can never change which segments a query
// in flight sees.
type Snapshot interface {
	Searchers() []Searcher
}

// Cache is the shared, budget-limited store of (segment, query) ->
// bitset results.
type Cache struct {
	inner *wcache.Cache[query.Entry, query.Key, *bitset.Set]
}

// NewCache returns an empty doc-set cache with the given byte budget.
// m may be nil.
func NewCache(byteBudget int64, m *metrics.CacheMetrics) *Cache {
	weigh := func(e query.Entry, bs *bitset.Set) int64 {
		return int64(e.Query.Weight(bs.MaxValue()))
	}
	return &Cache{inner: wcache.NewWithHint[query.Entry, query.Key](byteBudget, InitialCapacityHint, weigh, m)}
}

// Hits returns the cumulative number of cache hits.
func (c *Cache) Hits() int64 { return c.inner.Hits() }

// Misses returns the cumulative number of cache misses.
func (c *Cache) Misses() int64 { return c.inner.Misses() }

// Len returns the current number of cached doc sets.
func (c *Cache) Len() int { return c.inner.Len() }

// Weight returns the current total cache weight in bytes.
func (c *Cache) Weight() int64 { return c.inner.Weight() }

// Execute runs q against every segment in snap, merging per-segment
// collector fruit in segment visitation order. It compiles q to a
// query.Compiled at most once per call — only the first segment that
// misses the doc-set cache pays that cost, every later miss in the
// same call reuses the already-compiled query. A cache hit never
// triggers a compile at all. Any error from compiling, searching, or
// collecting aborts the whole call; partial results are never
// returned.
func Execute[F any](cache *Cache, snap Snapshot, q query.CachableQuery, fields query.FieldSet, parser query.Parser, collector collect.Collector[F]) (F, error) {
	var zero F
	readers := snap.Searchers()
	fruits := make([]F, 0, len(readers))

	var compiled query.Compiled
	var haveCompiled bool

	for _, r := range readers {
		key := query.Key{Segment: r.ID(), Query: &q}
		bs, hit := cache.inner.Get(key)
		if !hit {
			if !haveCompiled {
				c, err := q.ToQuery(fields, parser)
				if err != nil {
					return zero, err
				}
				compiled = c
				haveCompiled = true
			}
			built, err := r.Search(compiled)
			if err != nil {
				return zero, err
			}
			bs = built
			if q.ShouldCache() {
				cache.inner.Insert(key, bs)
			}
		}

		segCollector, err := collector.ForSegment(r)
		if err != nil {
			return zero, err
		}
		bs.Each(func(doc uint32) bool {
			segCollector.Collect(doc)
			return true
		})
		fruits = append(fruits, segCollector.Harvest())
	}

	return collector.MergeFruits(fruits)
}
