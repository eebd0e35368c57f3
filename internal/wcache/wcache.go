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

// Package wcache implements the weighted, siphash-bucketed LRU cache
// shared by the doc-set cache and the column cache. Go's built-in map
// requires comparable keys, which rules out probing with a borrowed
// key that aliases a caller's slice-bearing query or field name
// without allocating an owned copy first; this cache instead buckets
// by hash and resolves collisions with an explicit equality check, the
// same borrowed/owned split quick_cache's Equivalent trait gives the
// Rust original.
package wcache

import (
	"sync"
	"sync/atomic"

	"github.com/vectorbase/partdex/internal/lru"
	"github.com/vectorbase/partdex/internal/metrics"
)

// Hasher is implemented by a cache's owned key type.
type Hasher interface {
	Hash() uint64
}

// Borrower is a lightweight, allocation-free probe for a cache keyed
// by K: it can hash and compare itself against an owned K, and only
// pays the cost of materializing an owned K when an Insert actually
// happens.
type Borrower[K any] interface {
	Hasher
	EqualTo(K) bool
	Owned() K
}

// Cache is a weighted LRU cache. K is the owned key type stored per
// entry; B is the borrowed probe type used for lookups and inserts; V
// is the cached value type.
type Cache[K Hasher, B Borrower[K], V any] struct {
	mu      sync.Mutex
	buckets map[uint64][]*lru.Element[K, V]
	order   *lru.List[K, V]
	budget  int64
	weigh   func(K, V) int64
	metrics *metrics.CacheMetrics

	hits, misses atomic.Int64
}

// New returns an empty Cache that evicts least-recently-used entries
// once the sum of weigh(key, value) over all entries would exceed
// budget. weigh takes the owned key because some callers' weight
// formulas depend on which key variant is being stored, not just the
// value's own size. m may be nil, in which case no Prometheus
// collectors are touched.
func New[K Hasher, B Borrower[K], V any](budget int64, weigh func(K, V) int64, m *metrics.CacheMetrics) *Cache[K, B, V] {
	return NewWithHint[K, B, V](budget, 0, weigh, m)
}

// NewWithHint is New with an initial bucket-map capacity hint, useful
// when a caller can estimate the eventual entry count from its byte
// budget and average item size and wants to avoid early map growth.
func NewWithHint[K Hasher, B Borrower[K], V any](budget int64, capacityHint int, weigh func(K, V) int64, m *metrics.CacheMetrics) *Cache[K, B, V] {
	return &Cache[K, B, V]{
		buckets: make(map[uint64][]*lru.Element[K, V], capacityHint),
		order:   lru.New[K, V](),
		budget:  budget,
		weigh:   weigh,
		metrics: m,
	}
}

// Get probes the cache with a borrowed key, marking the entry
// most-recently-used on a hit.
func (c *Cache[K, B, V]) Get(b B) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	h := b.Hash()
	for _, e := range c.buckets[h] {
		if b.EqualTo(e.Key) {
			c.order.Touch(e)
			c.hits.Add(1)
			if c.metrics != nil {
				c.metrics.Hits.Inc()
			}
			return e.Value, true
		}
	}
	c.misses.Add(1)
	if c.metrics != nil {
		c.metrics.Misses.Inc()
	}
	var zero V
	return zero, false
}

// Insert adds value under the key b identifies, unless an equal key is
// already present, in which case it is a no-op and Insert returns
// false — insertion is always best-effort, never overwriting a
// concurrent winner. It evicts least-recently-used entries as needed
// to respect the byte budget, possibly including the entry it just
// inserted if a single entry's weight exceeds the whole budget.
func (c *Cache[K, B, V]) Insert(b B, value V) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	h := b.Hash()
	for _, e := range c.buckets[h] {
		if b.EqualTo(e.Key) {
			return false
		}
	}

	key := b.Owned()
	w := c.weigh(key, value)
	elem := c.order.PushFront(key, value, w)
	c.buckets[h] = append(c.buckets[h], elem)
	c.evictLocked()
	return true
}

func (c *Cache[K, B, V]) evictLocked() {
	for c.order.Weight() > c.budget {
		e := c.order.Back()
		if e == nil {
			break
		}
		h := e.Key.Hash()
		c.order.Remove(e)
		c.removeFromBucket(h, e)
		if c.metrics != nil {
			c.metrics.Evictions.Inc()
		}
	}
	if c.metrics != nil {
		c.metrics.Items.Set(float64(c.order.Len()))
		c.metrics.Weight.Set(float64(c.order.Weight()))
	}
}

func (c *Cache[K, B, V]) removeFromBucket(h uint64, e *lru.Element[K, V]) {
	bucket := c.buckets[h]
	for i, x := range bucket {
		if x == e {
			bucket[i] = bucket[len(bucket)-1]
			bucket = bucket[:len(bucket)-1]
			break
		}
	}
	if len(bucket) == 0 {
		delete(c.buckets, h)
	} else {
		c.buckets[h] = bucket
	}
}

// Hits returns the cumulative number of successful Get calls.
func (c *Cache[K, B, V]) Hits() int64 { return c.hits.Load() }

// Misses returns the cumulative number of unsuccessful Get calls.
func (c *Cache[K, B, V]) Misses() int64 { return c.misses.Load() }

// Len returns the current number of entries.
func (c *Cache[K, B, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Weight returns the current sum of entry weights.
func (c *Cache[K, B, V]) Weight() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Weight()
}
