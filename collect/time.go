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

// TimeRecord pairs a matched document's part id with the value of the
// time field a TimeCollector was configured to read.
type TimeRecord struct {
	PartID int32
	Time   int64
}

// TimeCollector reads a single i64 time field (schema.StartTime or
// schema.EndTime) alongside the part id field for every matching
// document, up to Limit total across all segments. Segments are merged
// in visitation order with the same remaining-budget threading as
// PartIdCollector. bridge.StartTimeFromPartIds/EndTimeFromPartId
// flatten the result into the interleaved (partId, time) wire array
// the host expects.
type TimeCollector struct {
	TimeField string
	Limit     int
}

func (c *TimeCollector) RequiresScoring() bool { return false }

func (c *TimeCollector) ForSegment(r Reader) (SegmentCollector[[]TimeRecord], error) {
	ids, ok, err := r.Column(schema.PartIDDV)
	if err != nil {
		return nil, err
	}
	if !ok || ids.Kind != colcache.I64Column {
		return nil, errs.Fieldf("TimeCollector.ForSegment", schema.PartIDDV)
	}
	times, ok, err := r.Column(c.TimeField)
	if err != nil {
		return nil, err
	}
	if !ok || times.Kind != colcache.I64Column {
		return nil, errs.Fieldf("TimeCollector.ForSegment", c.TimeField)
	}
	return &timeSeg{ids: ids.I64, times: times.I64}, nil
}

func (c *TimeCollector) MergeFruits(fruits [][]TimeRecord) ([]TimeRecord, error) {
	if c.Limit <= 0 {
		return nil, nil
	}
	result := make([]TimeRecord, 0, c.Limit)
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

type timeSeg struct {
	ids, times []int64
	records    []TimeRecord
}

func (s *timeSeg) Collect(doc uint32) {
	if int(doc) >= len(s.ids) || int(doc) >= len(s.times) {
		return
	}
	s.records = append(s.records, TimeRecord{PartID: int32(s.ids[doc]), Time: s.times[doc]})
}

func (s *timeSeg) Harvest() []TimeRecord { return s.records }
