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

package bitset

import "testing"

func TestInsertContains(t *testing.T) {
	s := WithMaxValue(200)
	s.Insert(0)
	s.Insert(63)
	s.Insert(64)
	s.Insert(200)
	for _, v := range []uint32{0, 63, 64, 200} {
		if !s.Contains(v) {
			t.Errorf("expected bit %d set", v)
		}
	}
	for _, v := range []uint32{1, 62, 65, 199} {
		if s.Contains(v) {
			t.Errorf("expected bit %d clear", v)
		}
	}
	if s.Contains(1000) {
		t.Error("out-of-range Contains must be false, not panic")
	}
}

func TestLenAndEach(t *testing.T) {
	s := WithMaxValue(130)
	want := []uint32{1, 10, 64, 65, 129}
	for _, v := range want {
		s.Insert(v)
	}
	if s.Len() != len(want) {
		t.Fatalf("Len() = %d, want %d", s.Len(), len(want))
	}
	var got []uint32
	s.Each(func(v uint32) bool {
		got = append(got, v)
		return true
	})
	if len(got) != len(want) {
		t.Fatalf("Each visited %d bits, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Each order[%d] = %d, want %d (must be ascending)", i, got[i], want[i])
		}
	}
}

func TestEachEarlyStop(t *testing.T) {
	s := WithMaxValue(130)
	s.Insert(1)
	s.Insert(2)
	s.Insert(3)
	n := 0
	s.Each(func(v uint32) bool {
		n++
		return false
	})
	if n != 1 {
		t.Fatalf("Each should stop after first false, visited %d", n)
	}
}

func TestWeightBytesFixtures(t *testing.T) {
	// Matches the original cache-weight test fixtures at max_value=1.
	if got := WeightBytes(1); got != 8 {
		t.Errorf("WeightBytes(1) = %d, want 8", got)
	}
	if got := WeightBytes(0); got != 0 {
		t.Errorf("WeightBytes(0) = %d, want 0 (the formula is applied to max_value itself)", got)
	}
	if got := WeightBytes(64); got != 8 {
		t.Errorf("WeightBytes(64) = %d, want 8", got)
	}
	if got := WeightBytes(65); got != 16 {
		t.Errorf("WeightBytes(65) = %d, want 16", got)
	}
}
