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

// Package colcache caches decoded fast-field columns per (segment,
// field), so repeated queries against the same segment don't re-decode
// a column from its reader every time. Capacity is a fixed item count
// rather than a byte budget: columns are read-through and never
// partially built, so there's no meaningful weight to account beyond
// "one column."
package colcache

import (
	"encoding/binary"

	"github.com/dchest/siphash"

	"github.com/vectorbase/partdex/internal/metrics"
	"github.com/vectorbase/partdex/internal/wcache"
	"github.com/vectorbase/partdex/segment"
)

// ItemCount is the fixed capacity of a column cache, preserved from
// the tuning constants a caller must not silently change.
const ItemCount = 1000

var hashKey = make([]byte, 16)

// Key is a borrowed, allocation-free (segment, field) lookup key.
type Key struct {
	Segment segment.ID
	Field   string
}

// Entry is the owned form of Key.
type Entry struct {
	Segment segment.ID
	Field   string
}

func (k Key) Hash() uint64 { return hashParts(k.Segment, k.Field) }
func (e Entry) Hash() uint64 { return hashParts(e.Segment, e.Field) }

func hashParts(seg segment.ID, field string) uint64 {
	h := siphash.New(hashKey)
	h.Write(seg[:])
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(len(field)))
	h.Write(buf[:])
	h.Write([]byte(field))
	return h.Sum64()
}

func (k Key) EqualTo(e Entry) bool { return k.Segment == e.Segment && k.Field == e.Field }
func (k Key) Owned() Entry         { return Entry{Segment: k.Segment, Field: k.Field} }

// Kind discriminates a decoded Column's element type.
type Kind int

const (
	I64Column Kind = iota
	BytesColumn
	StrColumn
)

// Column is a decoded fast-field column. Exactly one of the typed
// slices is valid, selected by Kind.
type Column struct {
	Kind  Kind
	I64   []int64
	Bytes [][]byte
	Str   []string
}

func unitWeight(Entry, Column) int64 { return 1 }

// Reader is the segment-reader surface colcache needs: decode a named
// fast field into a Column, or report that it isn't present (which is
// not an error — a missing optional field is simply not cached).
type Reader interface {
	Column(field string) (Column, bool, error)
}

// Cache is a fixed-capacity, item-counted LRU over decoded columns.
// The underlying wcache.Cache already serializes its own access, so
// this is just a thin, typed wrapper around it.
type Cache struct {
	inner *wcache.Cache[Entry, Key, Column]
}

// New returns an empty Cache with the standard ItemCount capacity. m
// may be nil.
func New(m *metrics.CacheMetrics) *Cache {
	return &Cache{inner: wcache.New[Entry, Key](int64(ItemCount), unitWeight, m)}
}

// get probes the cache without going to the reader.
func (c *Cache) get(seg segment.ID, field string) (Column, bool) {
	return c.inner.Get(Key{Segment: seg, Field: field})
}

// GetColumn returns the i64 fast-field column named field in segment
// seg, reading through r and caching the result on a miss. It returns
// false, with no error, if the field has no i64 column in this
// segment — colcache never negatively caches, so every call for a
// genuinely absent field asks the reader again.
func (c *Cache) GetColumn(r Reader, seg segment.ID, field string) ([]int64, bool, error) {
	col, ok, err := c.lookup(r, seg, field)
	if err != nil || !ok || col.Kind != I64Column {
		return nil, false, err
	}
	return col.I64, true, nil
}

// GetBytesColumn is GetColumn for a raw-bytes fast field.
func (c *Cache) GetBytesColumn(r Reader, seg segment.ID, field string) ([][]byte, bool, error) {
	col, ok, err := c.lookup(r, seg, field)
	if err != nil || !ok || col.Kind != BytesColumn {
		return nil, false, err
	}
	return col.Bytes, true, nil
}

// GetStrColumn is GetColumn for a string fast field.
func (c *Cache) GetStrColumn(r Reader, seg segment.ID, field string) ([]string, bool, error) {
	col, ok, err := c.lookup(r, seg, field)
	if err != nil || !ok || col.Kind != StrColumn {
		return nil, false, err
	}
	return col.Str, true, nil
}

func (c *Cache) lookup(r Reader, seg segment.ID, field string) (Column, bool, error) {
	if col, ok := c.get(seg, field); ok {
		return col, true, nil
	}
	col, ok, err := r.Column(field)
	if err != nil {
		return Column{}, false, err
	}
	if !ok {
		return Column{}, false, nil
	}
	c.inner.Insert(Key{Segment: seg, Field: field}, col)
	return col, true, nil
}

// SegmentReader is a real segment reader's decode-side surface: enough
// identity to key the cache plus raw (uncached) column decoding.
type SegmentReader interface {
	segment.Reader
	Reader
}

// CachedReader adapts a SegmentReader so every Column call is
// transparently served from the cache on a hit and fills it on a
// miss. Collectors hold a CachedReader and never see the cache
// directly.
type CachedReader struct {
	raw   SegmentReader
	cache *Cache
}

// Wrap returns a CachedReader over raw backed by c.
func (c *Cache) Wrap(raw SegmentReader) CachedReader {
	return CachedReader{raw: raw, cache: c}
}

func (cr CachedReader) ID() segment.ID { return cr.raw.ID() }
func (cr CachedReader) MaxDoc() uint32 { return cr.raw.MaxDoc() }

func (cr CachedReader) Column(field string) (Column, bool, error) {
	return cr.cache.lookup(cr.raw, cr.raw.ID(), field)
}

// Hits returns the cumulative number of cache hits.
func (c *Cache) Hits() int64 { return c.inner.Hits() }

// Misses returns the cumulative number of cache misses (including
// reader lookups for fields that turn out absent).
func (c *Cache) Misses() int64 { return c.inner.Misses() }

// Len returns the current number of cached columns.
func (c *Cache) Len() int { return c.inner.Len() }
