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

// Package pindex owns IndexHandle, the per-index bundle of schema,
// reader snapshot, and the doc-set/column caches a query executes
// against. Everything that crosses the external interface boundary in
// package bridge goes through a *pindex.IndexHandle.
package pindex

import (
	"sync"
	"sync/atomic"

	"github.com/vectorbase/partdex/bitset"
	"github.com/vectorbase/partdex/colcache"
	"github.com/vectorbase/partdex/collect"
	"github.com/vectorbase/partdex/docset"
	"github.com/vectorbase/partdex/internal/clog"
	"github.com/vectorbase/partdex/internal/metrics"
	"github.com/vectorbase/partdex/query"
	"github.com/vectorbase/partdex/schema"
	"github.com/vectorbase/partdex/segment"
)

// RawSegment is the uncached segment surface a real reader
// implementation provides: identity, doc bound, raw column decoding,
// and query resolution. IndexHandle wraps every RawSegment behind the
// column cache before it ever reaches a collector.
type RawSegment interface {
	segment.Reader
	colcache.Reader
	Search(q query.Compiled) (*bitset.Set, error)
}

type cachedSearcher struct {
	colcache.CachedReader
	raw RawSegment
}

func (s cachedSearcher) Search(q query.Compiled) (*bitset.Set, error) { return s.raw.Search(q) }

type readerSnapshot struct {
	searchers []docset.Searcher
}

func (s readerSnapshot) Searchers() []docset.Searcher { return s.searchers }

// Writer is the ingestion-side collaborator an IndexHandle hands
// refreshed segments off to. Its own implementation is out of scope
// here; IndexHandle only needs to serialize against it.
type Writer interface {
	// Segments returns the writer's current set of committed segments.
	Segments() []RawSegment
}

// IndexHandle bundles everything a single partition-key index needs to
// answer queries: the schema, an optional default field for Complex
// query parsing, the live reader snapshot, the writer it refreshes
// from, and the doc-set and column caches. It owns its own caches —
// there is no process-global cache or handle registry; see package
// bridge for the opaque-handle lifecycle built on top of this type.
type IndexHandle struct {
	Schema       schema.Finder
	DefaultField string
	Parser       query.Parser
	Logger       clog.Logger

	writerMu sync.RWMutex
	writer   Writer

	changesPending atomic.Bool
	snapshot       atomic.Pointer[readerSnapshot]

	DocSetCache *docset.Cache
	ColumnCache *colcache.Cache
}

// New builds an IndexHandle wired against writer and schema. The
// doc-set cache is sized by cfg.DocSetCacheBytes; the column cache
// always holds colcache.ItemCount entries, and cfg.ColumnCacheItems
// and cfg.MaxTermsToIterate are not read here. The handle starts with
// an empty snapshot; call
// RefreshReaders once the writer has something to read.
func New(cfg Config, sch schema.Finder, defaultField string, parser query.Parser, writer Writer, reg metrics.Registry, logger clog.Logger) *IndexHandle {
	if logger == nil {
		logger = clog.Discard
	}
	h := &IndexHandle{
		Schema:       sch,
		DefaultField: defaultField,
		Parser:       parser,
		Logger:       logger,
		writer:       writer,
		DocSetCache:  docset.NewCache(cfg.DocSetCacheBytes, metrics.NewCacheMetrics(reg, metrics.DocSetCache)),
		ColumnCache:  colcache.New(metrics.NewCacheMetrics(reg, metrics.ColumnCache)),
	}
	h.snapshot.Store(&readerSnapshot{})
	return h
}

// MarkChangesPending records that the writer has committed new
// segments the next refresh hasn't picked up yet. It's a single
// sequentially-consistent flag, not a counter: concurrent writers all
// collapse to "yes, something changed."
func (h *IndexHandle) MarkChangesPending() {
	h.changesPending.Store(true)
}

// ChangesPending reports whether a refresh is due.
func (h *IndexHandle) ChangesPending() bool {
	return h.changesPending.Load()
}

// RefreshReaders takes a fresh snapshot from the writer and swaps it
// in atomically. Queries already holding the previous snapshot keep
// running against it to completion; RefreshReaders never blocks a
// query in flight and a query never blocks a refresh.
func (h *IndexHandle) RefreshReaders() {
	h.writerMu.RLock()
	raws := h.writer.Segments()
	h.writerMu.RUnlock()

	searchers := make([]docset.Searcher, len(raws))
	for i, raw := range raws {
		searchers[i] = cachedSearcher{CachedReader: h.ColumnCache.Wrap(raw), raw: raw}
	}
	h.snapshot.Store(&readerSnapshot{searchers: searchers})
	h.changesPending.Store(false)
}

// Snapshot returns the handle's current reader snapshot.
func (h *IndexHandle) Snapshot() docset.Snapshot { return h.snapshot.Load() }

// Query resolves q against the current snapshot and merges collector
// results across every segment it contains.
func Query[F any](h *IndexHandle, q query.CachableQuery, collector collect.Collector[F]) (F, error) {
	snap := h.snapshot.Load()
	return docset.Execute(h.DocSetCache, snap, q, h.Schema, h.Parser, collector)
}
