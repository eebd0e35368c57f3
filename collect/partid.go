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
	"github.com/vectorbase/partdex/colcache"
	"github.com/vectorbase/partdex/internal/errs"
	"github.com/vectorbase/partdex/schema"
)

// PartIdCollector gathers the part ids of every matching document, up
// to Limit total across all segments. Segments are merged in
// visitation order, each contributing as many of its own matches as
// fit under the remaining budget, so the merged result never exceeds
// Limit even though no single segment knows the global count.
type PartIdCollector struct {
	Limit int
}

func (c *PartIdCollector) RequiresScoring() bool { return false }

func (c *PartIdCollector) ForSegment(r Reader) (SegmentCollector[[]int32], error) {
	col, ok, err := r.Column(schema.PartIDDV)
	if err != nil {
		return nil, err
	}
	if !ok || col.Kind != colcache.I64Column {
		return nil, errs.Fieldf("PartIdCollector.ForSegment", schema.PartIDDV)
	}
	return &partIDSeg{col: col.I64}, nil
}

func (c *PartIdCollector) MergeFruits(fruits [][]int32) ([]int32, error) {
	if c.Limit <= 0 {
		return nil, nil
	}
	result := make([]int32, 0, c.Limit)
	for _, f := range fruits {
		if len(result) >= c.Limit {
			break
		}
		remaining := c.Limit - len(result)
		if remaining < len(f) {
			f = f[:remaining]
		}
		result = append(result, f...)
	}
	return result, nil
}

type partIDSeg struct {
	col []int64
	ids []int32
}

func (s *partIDSeg) Collect(doc uint32) {
	if int(doc) >= len(s.col) {
		return // missing value for this doc: skip, not an error
	}
	s.ids = append(s.ids, int32(s.col[doc]))
}

func (s *partIDSeg) Harvest() []int32 { return s.ids }
