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

package pindex

import (
	"testing"

	"github.com/vectorbase/partdex/bitset"
	"github.com/vectorbase/partdex/colcache"
	"github.com/vectorbase/partdex/collect"
	"github.com/vectorbase/partdex/query"
	"github.com/vectorbase/partdex/schema"
	"github.com/vectorbase/partdex/segment"
)

type fakeRawSegment struct {
	id      segment.ID
	maxDoc  uint32
	partIDs []int64
}

func (s *fakeRawSegment) ID() segment.ID { return s.id }
func (s *fakeRawSegment) MaxDoc() uint32 { return s.maxDoc }
func (s *fakeRawSegment) Column(field string) (colcache.Column, bool, error) {
	if field == schema.PartIDDV {
		return colcache.Column{Kind: colcache.I64Column, I64: s.partIDs}, true, nil
	}
	return colcache.Column{}, false, nil
}
func (s *fakeRawSegment) Search(q query.Compiled) (*bitset.Set, error) {
	bs := bitset.WithMaxValue(s.maxDoc - 1)
	for i := uint32(0); i < s.maxDoc; i++ {
		bs.Insert(i)
	}
	return bs, nil
}

type fakeWriter struct{ segs []RawSegment }

func (w *fakeWriter) Segments() []RawSegment { return w.segs }

type allFields struct{}

func (allFields) HasField(string) bool { return true }

func TestChangesPendingLifecycle(t *testing.T) {
	h := New(DefaultConfig(), allFields{}, "", nil, &fakeWriter{}, nil, nil)
	if h.ChangesPending() {
		t.Fatal("a fresh handle has nothing pending")
	}
	h.MarkChangesPending()
	if !h.ChangesPending() {
		t.Fatal("expected ChangesPending to report true after MarkChangesPending")
	}
	h.RefreshReaders()
	if h.ChangesPending() {
		t.Fatal("RefreshReaders must clear the pending flag")
	}
}

func TestRefreshReadersSwapsSnapshot(t *testing.T) {
	writer := &fakeWriter{}
	h := New(DefaultConfig(), allFields{}, "", nil, writer, nil, nil)

	before := h.Snapshot()
	if len(before.Searchers()) != 0 {
		t.Fatalf("expected an empty initial snapshot, got %d searchers", len(before.Searchers()))
	}

	seg := &fakeRawSegment{id: segment.NewID(), maxDoc: 3, partIDs: []int64{1, 2, 3}}
	writer.segs = []RawSegment{seg}
	h.RefreshReaders()

	after := h.Snapshot()
	if len(after.Searchers()) != 1 {
		t.Fatalf("expected 1 searcher after refresh, got %d", len(after.Searchers()))
	}
	if len(before.Searchers()) != 0 {
		t.Fatal("a snapshot taken before refresh must not observe the new segment")
	}
}

func TestQueryEndToEnd(t *testing.T) {
	writer := &fakeWriter{}
	h := New(DefaultConfig(), allFields{}, "", nil, writer, nil, nil)

	seg := &fakeRawSegment{id: segment.NewID(), maxDoc: 3, partIDs: []int64{1, 2, 3}}
	writer.segs = []RawSegment{seg}
	h.RefreshReaders()

	got, err := Query[[]int32](h, query.NewAll(), &collect.PartIdCollector{Limit: 10})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("got %v, want 3 part ids", got)
	}
}

func TestQueryGoesThroughColumnCache(t *testing.T) {
	writer := &fakeWriter{}
	h := New(DefaultConfig(), allFields{}, "", nil, writer, nil, nil)

	seg := &fakeRawSegment{id: segment.NewID(), maxDoc: 2, partIDs: []int64{5, 6}}
	writer.segs = []RawSegment{seg}
	h.RefreshReaders()

	if _, err := Query[[]int32](h, query.NewAll(), &collect.PartIdCollector{Limit: 10}); err != nil {
		t.Fatal(err)
	}
	if _, err := Query[[]int32](h, query.NewAll(), &collect.PartIdCollector{Limit: 10}); err != nil {
		t.Fatal(err)
	}
	if h.ColumnCache.Hits() == 0 {
		t.Fatal("expected the second query to hit the column cache for the part id column")
	}
}
