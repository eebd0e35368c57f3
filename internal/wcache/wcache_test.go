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

package wcache

import "testing"

// intKey/intKey are deliberately the same concrete type: tests probe
// and insert with plain ints, exercising the generic machinery without
// needing a real borrowed/owned key split.
type intKey int

func (k intKey) Hash() uint64        { return uint64(k) }
func (k intKey) EqualTo(o intKey) bool { return k == o }
func (k intKey) Owned() intKey        { return k }

func unitWeight(intKey, string) int64 { return 1 }

func TestGetMissThenInsertThenHit(t *testing.T) {
	c := New[intKey, intKey, string](10, unitWeight, nil)
	if _, ok := c.Get(intKey(1)); ok {
		t.Fatal("expected miss on empty cache")
	}
	if !c.Insert(intKey(1), "one") {
		t.Fatal("expected first insert to succeed")
	}
	v, ok := c.Get(intKey(1))
	if !ok || v != "one" {
		t.Fatalf("Get(1) = %q, %v; want \"one\", true", v, ok)
	}
	if c.Hits() != 1 || c.Misses() != 1 {
		t.Fatalf("hits=%d misses=%d, want 1,1", c.Hits(), c.Misses())
	}
}

func TestInsertDoesNotOverwrite(t *testing.T) {
	c := New[intKey, intKey, string](10, unitWeight, nil)
	c.Insert(intKey(1), "first")
	if c.Insert(intKey(1), "second") {
		t.Fatal("Insert of an already-present key must return false")
	}
	v, _ := c.Get(intKey(1))
	if v != "first" {
		t.Fatalf("value was overwritten: got %q, want \"first\"", v)
	}
}

func TestEvictionRespectsLRUOrder(t *testing.T) {
	c := New[intKey, intKey, string](3, unitWeight, nil)
	c.Insert(intKey(1), "one")
	c.Insert(intKey(2), "two")
	c.Insert(intKey(3), "three")
	// touch 1 so 2 becomes the least-recently-used entry
	c.Get(intKey(1))
	c.Insert(intKey(4), "four")

	if _, ok := c.Get(intKey(2)); ok {
		t.Fatal("entry 2 should have been evicted as least-recently-used")
	}
	for _, k := range []intKey{1, 3, 4} {
		if _, ok := c.Get(k); !ok {
			t.Fatalf("entry %d should still be cached", k)
		}
	}
	if c.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", c.Len())
	}
}

func TestWeightTracksBudget(t *testing.T) {
	heavy := func(intKey, string) int64 { return 5 }
	c := New[intKey, intKey, string](12, heavy, nil)
	c.Insert(intKey(1), "a")
	c.Insert(intKey(2), "b")
	if c.Weight() != 10 {
		t.Fatalf("Weight() = %d, want 10", c.Weight())
	}
	c.Insert(intKey(3), "c")
	// budget 12 can't hold three weight-5 entries (15 > 12): the oldest
	// (1) must have been evicted.
	if c.Weight() > 12 {
		t.Fatalf("Weight() = %d exceeds budget 12", c.Weight())
	}
	if _, ok := c.Get(intKey(1)); ok {
		t.Fatal("entry 1 should have been evicted to respect the budget")
	}
}
