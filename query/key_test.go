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

package query

import (
	"testing"

	"github.com/vectorbase/partdex/segment"
)

func TestKeyEntryHashCoherence(t *testing.T) {
	seg := segment.NewID()
	q := NewByPartIds([]int32{3, 1, 4})
	k := Key{Segment: seg, Query: &q}
	e := k.Owned()

	if k.Hash() != e.Hash() {
		t.Fatalf("borrowed key hash %d != owned entry hash %d", k.Hash(), e.Hash())
	}
	if !k.EqualTo(e) {
		t.Fatal("borrowed key must compare equal to its own Owned() entry")
	}
}

func TestKeyHashDistinguishesQueries(t *testing.T) {
	seg := segment.NewID()
	a := NewByPartId(1)
	b := NewByPartId(2)
	ka := Key{Segment: seg, Query: &a}
	kb := Key{Segment: seg, Query: &b}
	if ka.Hash() == kb.Hash() {
		t.Fatal("distinct queries hashed to the same digest (not required to never collide, but these must differ)")
	}
	if ka.EqualTo(kb.Owned()) {
		t.Fatal("distinct part ids must not compare equal")
	}
}

func TestKeyHashDistinguishesSegments(t *testing.T) {
	q := NewAll()
	ka := Key{Segment: segment.NewID(), Query: &q}
	kb := Key{Segment: segment.NewID(), Query: &q}
	if ka.Hash() == kb.Hash() {
		t.Fatal("distinct segments hashed to the same digest for the same query")
	}
	if ka.EqualTo(kb.Owned()) {
		t.Fatal("distinct segments must not compare equal even for the same query")
	}
}

func TestEntryEqualIndependentOfPointerIdentity(t *testing.T) {
	seg := segment.NewID()
	q1 := NewByEndTime(42)
	q2 := NewByEndTime(42)
	e1 := Entry{Segment: seg, Query: q1}
	e2 := Entry{Segment: seg, Query: q2}
	if !e1.Equal(e2) {
		t.Fatal("entries with structurally equal queries must compare equal regardless of origin")
	}
	if e1.Hash() != e2.Hash() {
		t.Fatal("structurally equal entries must hash identically")
	}
}
