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

// PartKeyCollector resolves the part key of a single matching
// document — the result of a term-equality lookup that should match
// at most one live doc. A nil fruit means no document matched in that
// scope.
type PartKeyCollector struct{}

func (PartKeyCollector) RequiresScoring() bool { return false }

func (PartKeyCollector) ForSegment(r Reader) (SegmentCollector[[]byte], error) {
	col, ok, err := r.Column(schema.PartKey)
	if err != nil {
		return nil, err
	}
	if !ok || col.Kind != colcache.BytesColumn {
		return nil, errs.Fieldf("PartKeyCollector.ForSegment", schema.PartKey)
	}
	return &partKeySeg{col: col.Bytes}, nil
}

func (PartKeyCollector) MergeFruits(fruits [][]byte) ([]byte, error) {
	for _, f := range fruits {
		if f != nil {
			return f, nil
		}
	}
	return nil, nil
}

type partKeySeg struct {
	col   [][]byte
	found []byte
}

func (s *partKeySeg) Collect(doc uint32) {
	if s.found != nil || int(doc) >= len(s.col) {
		return
	}
	s.found = s.col[doc]
}

func (s *partKeySeg) Harvest() []byte { return s.found }
