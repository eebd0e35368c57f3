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

import "github.com/vectorbase/partdex/bitset"

// keyStructSize is the pinned size, in bytes, of a (SegmentId,
// CachableQuery) cache key for weighting purposes. It is a
// wire-contract constant carried over unchanged rather than derived
// from unsafe.Sizeof, since Go's struct layout for the equivalent type
// has no reason to match the original's and the published cache-weight
// figures must still come out identical.
const keyStructSize = 32

// boxOverhead is the pinned per-payload indirection cost (a boxed
// slice's pointer+length header) added on top of a variant's own byte
// payload for Complex, ByPartKey and ByPartIds.
const boxOverhead = 16

// Weight returns the cache weight of this query once resolved against
// a segment whose largest live doc id is maxValue. It is the exact sum
// the doc-set cache charges against its byte budget: a fixed key cost,
// a payload cost that depends on the variant, and the weight-basis
// byte count of the resulting bitset (see bitset.WeightBytes).
func (q CachableQuery) Weight(maxValue uint32) uint64 {
	var payload uint64
	switch q.kind {
	case Complex, ByPartKey:
		payload = uint64(len(q.bytes)) + boxOverhead
	case ByPartIds:
		payload = uint64(len(q.partIds))*4 + boxOverhead
	default:
		payload = 0
	}
	return payload + keyStructSize + uint64(bitset.WeightBytes(maxValue))
}
