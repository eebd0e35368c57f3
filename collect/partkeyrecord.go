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

// PartKeyRecord pairs a matched document's part key with the start and
// end times of the partition it identifies.
type PartKeyRecord struct {
	PartKey   []byte `json:"partKey"`
	StartTime int64  `json:"startTime"`
	EndTime   int64  `json:"endTime"`
}

// PartKeyRecordCollector gathers (part key, start time, end time)
// records for every matching document, up to Limit total across all
// segments, with the same per-segment budget threading as
// PartIdCollector.
type PartKeyRecordCollector struct {
	Limit int
}

func (c *PartKeyRecordCollector) RequiresScoring() bool { return false }

func (c *PartKeyRecordCollector) ForSegment(r Reader) (SegmentCollector[[]PartKeyRecord], error) {
	keys, ok, err := r.Column(schema.PartKey)
	if err != nil {
		return nil, err
	}
	if !ok || keys.Kind != colcache.BytesColumn {
		return nil, errs.Fieldf("PartKeyRecordCollector.ForSegment", schema.PartKey)
	}
	starts, ok, err := r.Column(schema.StartTime)
	if err != nil {
		return nil, err
	}
	if !ok || starts.Kind != colcache.I64Column {
		return nil, errs.Fieldf("PartKeyRecordCollector.ForSegment", schema.StartTime)
	}
	ends, ok, err := r.Column(schema.EndTime)
	if err != nil {
		return nil, err
	}
	if !ok || ends.Kind != colcache.I64Column {
		return nil, errs.Fieldf("PartKeyRecordCollector.ForSegment", schema.EndTime)
	}
	return &partKeyRecordSeg{keys: keys.Bytes, starts: starts.I64, ends: ends.I64}, nil
}

func (c *PartKeyRecordCollector) MergeFruits(fruits [][]PartKeyRecord) ([]PartKeyRecord, error) {
	if c.Limit <= 0 {
		return nil, nil
	}
	result := make([]PartKeyRecord, 0, c.Limit)
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

type partKeyRecordSeg struct {
	keys         [][]byte
	starts, ends []int64
	records      []PartKeyRecord
}

func (s *partKeyRecordSeg) Collect(doc uint32) {
	if int(doc) >= len(s.keys) || int(doc) >= len(s.starts) || int(doc) >= len(s.ends) {
		return // missing value for this doc: skip, not an error
	}
	s.records = append(s.records, PartKeyRecord{
		PartKey:   s.keys[doc],
		StartTime: s.starts[doc],
		EndTime:   s.ends[doc],
	})
}

func (s *partKeyRecordSeg) Harvest() []PartKeyRecord { return s.records }
