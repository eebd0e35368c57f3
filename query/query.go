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

// Package query defines the cachable-query taxonomy: the small, closed
// set of query shapes that can be resolved to a doc-set bitset and
// held in the doc-set cache. Anything not expressible as one of these
// variants never enters the cache.
package query

import (
	"golang.org/x/exp/slices"

	"github.com/vectorbase/partdex/internal/errs"
	"github.com/vectorbase/partdex/schema"
)

// Kind discriminates the CachableQuery variants.
type Kind int

const (
	Complex Kind = iota
	ByPartKey
	ByPartIds
	ByEndTime
	ByPartId
	All
)

func (k Kind) String() string {
	switch k {
	case Complex:
		return "Complex"
	case ByPartKey:
		return "ByPartKey"
	case ByPartIds:
		return "ByPartIds"
	case ByEndTime:
		return "ByEndTime"
	case ByPartId:
		return "ByPartId"
	case All:
		return "All"
	default:
		return "Unknown"
	}
}

// CachableQuery is the tagged-variant sum type executed and cached by
// package docset. Construct one with the New* functions; the zero
// value is not a valid query.
type CachableQuery struct {
	kind    Kind
	bytes   []byte  // Complex, ByPartKey
	partIds []int32 // ByPartIds, ordering-sensitive
	endTime int64   // ByEndTime
	partID  int32   // ByPartId
}

func NewComplex(payload []byte) CachableQuery {
	return CachableQuery{kind: Complex, bytes: payload}
}

func NewByPartKey(key []byte) CachableQuery {
	return CachableQuery{kind: ByPartKey, bytes: key}
}

func NewByPartIds(ids []int32) CachableQuery {
	return CachableQuery{kind: ByPartIds, partIds: ids}
}

func NewByEndTime(t int64) CachableQuery {
	return CachableQuery{kind: ByEndTime, endTime: t}
}

func NewByPartId(id int32) CachableQuery {
	return CachableQuery{kind: ByPartId, partID: id}
}

func NewAll() CachableQuery {
	return CachableQuery{kind: All}
}

// Kind reports the variant.
func (q CachableQuery) Kind() Kind { return q.kind }

// ShouldCache reports whether a successfully executed instance of this
// query is worth inserting into the doc-set cache. Complex, ByPartIds
// and ByEndTime are cacheable; All, ByPartId and ByPartKey are not —
// each is either match-everything or a single-term lookup, cheap
// enough that a cached bitset would cost more memory than it saves.
func (q CachableQuery) ShouldCache() bool {
	switch q.kind {
	case Complex, ByPartIds, ByEndTime:
		return true
	default:
		return false
	}
}

// Equal reports structural equality. ByPartIds equality is
// ordering-sensitive: [1,2] != [2,1].
func (q CachableQuery) Equal(o CachableQuery) bool {
	if q.kind != o.kind {
		return false
	}
	switch q.kind {
	case Complex, ByPartKey:
		return slices.Equal(q.bytes, o.bytes)
	case ByPartIds:
		return slices.Equal(q.partIds, o.partIds)
	case ByEndTime:
		return q.endTime == o.endTime
	case ByPartId:
		return q.partID == o.partID
	case All:
		return true
	default:
		return false
	}
}

// Compiled is the result of compiling a CachableQuery against a
// schema: a term lookup, a range scan, a set membership test, or the
// universal (match-everything) query. Package docset hands these to
// each segment's docset.Searcher, whose Search interprets them.
type Compiled interface{ compiled() }

// TermQuery matches documents where Field equals Value exactly.
type TermQuery struct {
	Field string
	Value []byte
}

func (TermQuery) compiled() {}

// SetQuery matches documents where Field's value is a member of
// Values. Used for ByPartIds, where Values holds the int64-encoded
// part ids.
type SetQuery struct {
	Field  string
	Values [][]byte
}

func (SetQuery) compiled() {}

// RangeQuery matches documents where Lo <= Field <= Hi (either bound
// may be unset via math.MinInt64/MaxInt64).
type RangeQuery struct {
	Field  string
	Lo, Hi int64
}

func (RangeQuery) compiled() {}

// UniversalQuery matches every live document in the segment.
type UniversalQuery struct{}

func (UniversalQuery) compiled() {}

// Parser compiles a Complex query's opaque payload bytes into a
// Compiled query. The payload's expression language is a collaborator
// concern outside this package; Parser is the seam a caller plugs
// in. A parse failure must be surfaced as errs.ParseError.
type Parser interface {
	Parse(payload []byte) (Compiled, error)
}

// Int64Bytes returns the big-endian 8-byte encoding of v, the
// TermQuery/SetQuery wire form used for int64-valued fields such as
// the part id fast field.
func Int64Bytes(v int64) []byte {
	b := make([]byte, 8)
	for i := 7; i >= 0; i-- {
		b[i] = byte(v)
		v >>= 8
	}
	return b
}

// ToQuery compiles q against a schema. parser is used only for
// Complex. fields reports whether a reserved field is present so a
// missing-field condition can be surfaced as errs.FieldNotFound rather
// than silently matching nothing.
func (q CachableQuery) ToQuery(fields FieldSet, parser Parser) (Compiled, error) {
	switch q.kind {
	case All:
		return UniversalQuery{}, nil
	case ByPartId:
		if !fields.HasField(schema.PartIDDV) {
			return nil, errs.Fieldf("ToQuery", schema.PartIDDV)
		}
		return TermQuery{Field: schema.PartIDDV, Value: Int64Bytes(int64(q.partID))}, nil
	case ByPartIds:
		if !fields.HasField(schema.PartIDDV) {
			return nil, errs.Fieldf("ToQuery", schema.PartIDDV)
		}
		vals := make([][]byte, len(q.partIds))
		for i, id := range q.partIds {
			vals[i] = Int64Bytes(int64(id))
		}
		return SetQuery{Field: schema.PartIDDV, Values: vals}, nil
	case ByPartKey:
		if !fields.HasField(schema.PartKey) {
			return nil, errs.Fieldf("ToQuery", schema.PartKey)
		}
		return TermQuery{Field: schema.PartKey, Value: q.bytes}, nil
	case ByEndTime:
		if !fields.HasField(schema.EndTime) {
			return nil, errs.Fieldf("ToQuery", schema.EndTime)
		}
		return RangeQuery{Field: schema.EndTime, Lo: 0, Hi: q.endTime}, nil
	case Complex:
		if parser == nil {
			return nil, errs.New(errs.ParseError, "ToQuery", errParserRequired)
		}
		compiled, err := parser.Parse(q.bytes)
		if err != nil {
			return nil, errs.New(errs.ParseError, "ToQuery", err)
		}
		return compiled, nil
	default:
		return nil, errs.New(errs.RuntimeError, "ToQuery", errUnknownKind)
	}
}

// FieldSet reports whether a named schema field exists. schema.Finder
// satisfies it directly.
type FieldSet interface {
	HasField(name string) bool
}
