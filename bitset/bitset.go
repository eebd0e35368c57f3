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

// Package bitset implements the dense per-segment doc-id bitset
// produced by a cachable query execution and held, shared and
// immutable, inside the doc-set cache.
package bitset

import "math/bits"

// Set is a dense, fixed-capacity bitset over doc ids in [0, maxValue].
// Once built it is never mutated, so the same *Set can be shared by
// every cache lookup that hits it without copying.
type Set struct {
	words    []uint64
	maxValue uint32
}

// WithMaxValue allocates a Set able to hold doc ids up to and
// including maxValue.
func WithMaxValue(maxValue uint32) *Set {
	return &Set{
		words:    make([]uint64, wordsFor(maxValue)),
		maxValue: maxValue,
	}
}

// wordsFor returns the number of 64-bit words needed to address bit
// index maxValue, i.e. bits [0, maxValue].
func wordsFor(maxValue uint32) int {
	return int(maxValue/64) + 1
}

// Insert sets bit v. v must be <= the Set's maxValue.
func (s *Set) Insert(v uint32) {
	s.words[v/64] |= 1 << (v % 64)
}

// Contains reports whether bit v is set.
func (s *Set) Contains(v uint32) bool {
	if v > s.maxValue {
		return false
	}
	return s.words[v/64]&(1<<(v%64)) != 0
}

// MaxValue returns the largest doc id the Set can represent.
func (s *Set) MaxValue() uint32 { return s.maxValue }

// Len returns the number of set bits.
func (s *Set) Len() int {
	n := 0
	for _, w := range s.words {
		n += bits.OnesCount64(w)
	}
	return n
}

// Each calls f once per set bit in ascending order, stopping early if
// f returns false.
func (s *Set) Each(f func(v uint32) bool) {
	for i, w := range s.words {
		if w == 0 {
			continue
		}
		base := uint32(i) * 64
		for w != 0 {
			b := uint32(bits.TrailingZeros64(w))
			if !f(base + b) {
				return
			}
			w &= w - 1
		}
	}
}

// WeightBytes reproduces the original implementation's (slightly
// off-by-one relative to real storage) estimate of a bitset's byte
// footprint for cache-weight accounting: ((maxValue+63)/64)*8. It is
// deliberately kept separate from wordsFor/WithMaxValue, which compute
// the real word count needed to store bit index maxValue
// (maxValue/64 + 1 words): the two formulas agree everywhere except
// at maxValue == 0 and at word boundaries, and the weight formula is a
// pinned wire-contract matching published cache-weight figures, not a
// storage-sizing bug to silently fix here.
func WeightBytes(maxValue uint32) int {
	return (int(maxValue+63) / 64) * 8
}
