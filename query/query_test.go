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

	"github.com/vectorbase/partdex/schema"
)

func TestShouldCache(t *testing.T) {
	cases := []struct {
		q    CachableQuery
		want bool
	}{
		{NewComplex([]byte("x")), true},
		{NewByPartIds([]int32{1, 2}), true},
		{NewByEndTime(10), true},
		{NewAll(), false},
		{NewByPartId(1), false},
		{NewByPartKey([]byte("k")), false},
	}
	for _, c := range cases {
		if got := c.q.ShouldCache(); got != c.want {
			t.Errorf("%s.ShouldCache() = %v, want %v", c.q.Kind(), got, c.want)
		}
	}
}

func TestWeightComplexAndPartKey(t *testing.T) {
	// max_value=1 -> bitset.WeightBytes(1) == 8, keyStructSize=32,
	// boxOverhead=16, 2-byte payload: 2+16+32+8 = 58.
	q := NewComplex([]byte{0x01, 0x02})
	if w := q.Weight(1); w != 58 {
		t.Errorf("Complex weight = %d, want 58", w)
	}
	pk := NewByPartKey([]byte{0x01, 0x02})
	if w := pk.Weight(1); w != 58 {
		t.Errorf("ByPartKey weight = %d, want 58", w)
	}
}

func TestWeightFixedVariants(t *testing.T) {
	for _, q := range []CachableQuery{NewAll(), NewByPartId(7), NewByEndTime(123)} {
		if w := q.Weight(1); w != 40 {
			t.Errorf("%s weight = %d, want 40", q.Kind(), w)
		}
	}
}

func TestWeightByPartIds(t *testing.T) {
	q := NewByPartIds([]int32{1, 2})
	if w := q.Weight(1); w != 64 {
		t.Errorf("ByPartIds weight = %d, want 64", w)
	}
}

func TestEqualOrderingSensitive(t *testing.T) {
	a := NewByPartIds([]int32{1, 2})
	b := NewByPartIds([]int32{2, 1})
	if a.Equal(b) {
		t.Fatal("ByPartIds equality must be ordering-sensitive")
	}
	c := NewByPartIds([]int32{1, 2})
	if !a.Equal(c) {
		t.Fatal("identical ByPartIds queries must compare equal")
	}
}

type fieldSet map[string]bool

func (f fieldSet) HasField(name string) bool { return f[name] }

type stubParser struct {
	compiled Compiled
	err      error
}

func (s stubParser) Parse(payload []byte) (Compiled, error) { return s.compiled, s.err }

func TestToQueryMissingField(t *testing.T) {
	_, err := NewByPartId(1).ToQuery(fieldSet{}, nil)
	if err == nil {
		t.Fatal("expected error for missing reserved field")
	}
}

func TestToQueryAll(t *testing.T) {
	compiled, err := NewAll().ToQuery(fieldSet{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := compiled.(UniversalQuery); !ok {
		t.Fatalf("All must compile to UniversalQuery, got %T", compiled)
	}
}

func TestToQueryByPartIds(t *testing.T) {
	fs := fieldSet{schema.PartIDDV: true}
	compiled, err := NewByPartIds([]int32{1, 2}).ToQuery(fs, nil)
	if err != nil {
		t.Fatal(err)
	}
	set, ok := compiled.(SetQuery)
	if !ok {
		t.Fatalf("ByPartIds must compile to SetQuery, got %T", compiled)
	}
	if len(set.Values) != 2 {
		t.Fatalf("expected 2 values, got %d", len(set.Values))
	}
}

func TestToQueryByEndTimeIsInclusiveFromZero(t *testing.T) {
	fs := fieldSet{schema.EndTime: true}
	compiled, err := NewByEndTime(500).ToQuery(fs, nil)
	if err != nil {
		t.Fatal(err)
	}
	rng, ok := compiled.(RangeQuery)
	if !ok {
		t.Fatalf("ByEndTime must compile to RangeQuery, got %T", compiled)
	}
	if rng.Lo != 0 || rng.Hi != 500 {
		t.Fatalf("RangeQuery = [%d, %d], want [0, 500]", rng.Lo, rng.Hi)
	}
}

func TestToQueryComplexRequiresParser(t *testing.T) {
	_, err := NewComplex([]byte("x")).ToQuery(fieldSet{}, nil)
	if err == nil {
		t.Fatal("expected error when Complex has no parser")
	}
}

func TestToQueryComplexParseError(t *testing.T) {
	boom := stubParser{err: errParserRequired}
	_, err := NewComplex([]byte("x")).ToQuery(fieldSet{}, boom)
	if err == nil {
		t.Fatal("expected parse error to propagate")
	}
}

func TestInt64Bytes(t *testing.T) {
	b := Int64Bytes(1)
	want := []byte{0, 0, 0, 0, 0, 0, 0, 1}
	for i := range want {
		if b[i] != want[i] {
			t.Fatalf("Int64Bytes(1) = %v, want %v", b, want)
		}
	}
}
