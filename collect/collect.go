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

// Package collect implements the segment-local collector framework:
// given the matching doc-id bitset for a segment, a Collector builds a
// per-segment "fruit" and the executor merges fruits across segments
// in visitation order. No collector in this package ever requests
// scoring — a matched doc id is a matched doc id, nothing is ranked.
package collect

import (
	"github.com/vectorbase/partdex/colcache"
	"github.com/vectorbase/partdex/segment"
)

// Reader is the segment surface a collector needs: identity, doc bound,
// and read-through access to decoded fast-field columns.
type Reader interface {
	segment.Reader
	colcache.Reader
}

// SegmentCollector accumulates matches within a single segment. Collect
// is called once per matching doc id in ascending order; Harvest is
// called exactly once after the last Collect call for that segment.
type SegmentCollector[F any] interface {
	Collect(docID uint32)
	Harvest() F
}

// Collector builds a SegmentCollector per segment and combines the
// resulting fruits into a single result. RequiresScoring always
// returns false in this package; it exists so the executor's call
// site reads the same as the design it mirrors.
type Collector[F any] interface {
	ForSegment(r Reader) (SegmentCollector[F], error)
	RequiresScoring() bool
	MergeFruits(fruits []F) (F, error)
}
