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

package collect

import (
	"sort"

	"golang.org/x/exp/maps"

	"github.com/vectorbase/partdex/colcache"
	"github.com/vectorbase/partdex/heap"
	"github.com/vectorbase/partdex/internal/errs"
	"github.com/vectorbase/partdex/rxauto"
)

// FieldCount is one distinct value of a string field and the number of
// matching documents that carried it.
type FieldCount struct {
	Value string
	Count int64
}

// StringFieldCollector tallies the distinct values of a string field
// across every matching document. Limit caps the number of distinct
// (value, count) pairs returned, by descending frequency; TermLimit
// caps the number of distinct values the scan will ever start tracking
// in the first place, independent of how many of those survive into
// the top-Limit result. Either bound, zero or negative, means
// unbounded (the MAX_TERMS_TO_ITERATE tuning constant is the caller's
// job to pass here, not this package's to know about).
type StringFieldCollector struct {
	Field     string
	Limit     int
	TermLimit int

	// Match, if set, restricts tallied values to those the automaton
	// accepts — the narrowing a range-aware regex query applies before
	// values ever reach the frequency table.
	Match *rxauto.RangeAwareRegex
}

func (c *StringFieldCollector) RequiresScoring() bool { return false }

func (c *StringFieldCollector) ForSegment(r Reader) (SegmentCollector[map[string]int64], error) {
	col, ok, err := r.Column(c.Field)
	if err != nil {
		return nil, err
	}
	if !ok || col.Kind != colcache.StrColumn {
		return nil, errs.Fieldf("StringFieldCollector.ForSegment", c.Field)
	}
	return &stringFieldSeg{col: col.Str, counts: map[string]int64{}, match: c.Match, termLimit: c.TermLimit}, nil
}

func countLess(a, b FieldCount) bool {
	if a.Count != b.Count {
		return a.Count < b.Count
	}
	return a.Value > b.Value
}

func (c *StringFieldCollector) MergeFruits(fruits []map[string]int64) (map[string]int64, error) {
	total := map[string]int64{}
	for _, f := range fruits {
		for v, n := range f {
			total[v] += n
		}
	}
	if c.Limit <= 0 || len(total) <= c.Limit {
		return total, nil
	}

	// Bounded top-K: keep a size-Limit min-heap of the strongest
	// candidates seen so far, replacing the weakest whenever a
	// stronger one turns up.
	var h []FieldCount
	for v, n := range total {
		cand := FieldCount{Value: v, Count: n}
		if len(h) < c.Limit {
			heap.PushSlice(&h, cand, countLess)
			continue
		}
		if countLess(h[0], cand) {
			h[0] = cand
			heap.FixSlice(h, 0, countLess)
		}
	}
	kept := make(map[string]int64, len(h))
	for _, fc := range h {
		kept[fc.Value] = fc.Count
	}
	return kept, nil
}

// Ranked returns counts as a slice sorted by descending count, then
// ascending value for ties — the order bridge.LabelValues/IndexValues
// report results in.
func Ranked(counts map[string]int64) []FieldCount {
	values := maps.Keys(counts)
	out := make([]FieldCount, len(values))
	for i, v := range values {
		out[i] = FieldCount{Value: v, Count: counts[v]}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Value < out[j].Value
	})
	return out
}

type stringFieldSeg struct {
	col       []string
	counts    map[string]int64
	match     *rxauto.RangeAwareRegex
	termLimit int
}

func (s *stringFieldSeg) Collect(doc uint32) {
	if int(doc) >= len(s.col) {
		return
	}
	v := s.col[doc]
	if v == "" {
		return // no value for this doc: skip, not an error
	}
	if s.match != nil && !s.match.MatchesBytes([]byte(v)) {
		return
	}
	if _, seen := s.counts[v]; !seen && s.termLimit > 0 && len(s.counts) >= s.termLimit {
		return // already visited termLimit distinct values: stop widening
	}
	s.counts[v]++
}

func (s *stringFieldSeg) Harvest() map[string]int64 { return s.counts }
