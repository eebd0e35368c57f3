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

package bridge

import (
	"math"
	"sort"

	"github.com/vectorbase/partdex/collect"
	"github.com/vectorbase/partdex/internal/errs"
	"github.com/vectorbase/partdex/pindex"
	"github.com/vectorbase/partdex/query"
	"github.com/vectorbase/partdex/schema"
)

// unboundedLimit stands in for the host's usize::MAX sentinel: large
// enough that no real result set ever gets truncated by it.
const unboundedLimit = math.MaxInt32

// IndexRamBytes returns an approximation of the handle's in-memory
// footprint: the doc-set cache's accounted weight plus one weight unit
// per cached column. It is an estimate for capacity planning, not an
// exact allocator accounting.
func (r *Registry) IndexRamBytes(handle int64) (int64, error) {
	h, err := r.Lookup(handle)
	if err != nil {
		return 0, err
	}
	return h.DocSetCache.Weight() + int64(h.ColumnCache.Len()), nil
}

// RefreshReaders picks up the writer's latest committed segments.
func (r *Registry) RefreshReaders(handle int64) error {
	h, err := r.Lookup(handle)
	if err != nil {
		return err
	}
	h.RefreshReaders()
	return nil
}

// IndexNumEntries returns the number of live documents visible in the
// handle's current snapshot.
func (r *Registry) IndexNumEntries(handle int64) (int64, error) {
	h, err := r.Lookup(handle)
	if err != nil {
		return 0, err
	}
	var total int64
	for _, s := range h.Snapshot().Searchers() {
		total += int64(s.MaxDoc())
	}
	return total, nil
}

// PartIdsEndedBefore returns up to limit part ids of partitions whose
// end time is at or before endedBefore.
func (r *Registry) PartIdsEndedBefore(handle int64, endedBefore int64, limit int) ([]int32, error) {
	h, err := r.Lookup(handle)
	if err != nil {
		return nil, err
	}
	q := query.NewByEndTime(endedBefore)
	return pindex.Query(h, q, &collect.PartIdCollector{Limit: limit})
}

// PartIdFromPartKey resolves a single part id from its part key, if
// one is currently indexed.
func (r *Registry) PartIdFromPartKey(handle int64, partKey []byte) (int32, bool, error) {
	h, err := r.Lookup(handle)
	if err != nil {
		return 0, false, err
	}
	q := query.NewByPartKey(partKey)
	ids, err := pindex.Query(h, q, &collect.PartIdCollector{Limit: 1})
	if err != nil {
		return 0, false, err
	}
	if len(ids) == 0 {
		return 0, false, nil
	}
	return ids[0], true, nil
}

// LabelNames returns the distinct label names the index currently
// carries.
func (r *Registry) LabelNames(handle int64) ([]string, error) {
	h, err := r.Lookup(handle)
	if err != nil {
		return nil, err
	}
	counts, err := pindex.Query(h, query.NewAll(), &collect.StringFieldCollector{
		Field: schema.LabelList,
		Limit: pindex.MaxTermsToIterate,
	})
	if err != nil {
		return nil, err
	}
	return valuesOf(collect.Ranked(counts)), nil
}

// IndexNames returns the sorted list of facet-backed field names
// registered in the schema. Unlike LabelNames, this reads schema
// metadata, not document values — a facet field can exist with zero
// matching documents.
func (r *Registry) IndexNames(handle int64) ([]string, error) {
	h, err := r.Lookup(handle)
	if err != nil {
		return nil, err
	}
	lister, ok := h.Schema.(schema.Lister)
	if !ok {
		return nil, nil
	}
	var names []string
	for _, f := range lister.FieldNames() {
		if schema.IsFacetField(f) {
			names = append(names, f[len(schema.FacetPrefix):])
		}
	}
	sort.Strings(names)
	return names, nil
}

// LabelValues returns the topK distinct values (and per-value match
// counts) of the label/JSON sub-field addressed by ref, by descending
// frequency. The scan itself visits an unbounded number of distinct
// terms before ranking.
func (r *Registry) LabelValues(handle int64, ref string, topK int) ([]string, []int64, error) {
	h, err := r.Lookup(handle)
	if err != nil {
		return nil, nil, err
	}
	addr, ok := schema.Resolve(ref, h.DefaultField, h.Schema)
	if !ok {
		return nil, nil, errs.New(errs.FieldNotFound, "LabelValues", errFieldUnresolved)
	}
	return r.valuesForAddress(h, addr, topK, unboundedLimit, 0)
}

// IndexValues is LabelValues against the facet-indexed counterpart of
// ref's field, except the underlying scan is itself capped at
// pindex.MaxTermsToIterate distinct terms (matching the host's facet
// scan budget) before the topK ranking is applied.
func (r *Registry) IndexValues(handle int64, ref string, topK int) ([]string, []int64, error) {
	h, err := r.Lookup(handle)
	if err != nil {
		return nil, nil, err
	}
	addr, ok := schema.Resolve(ref, h.DefaultField, h.Schema)
	if !ok {
		return nil, nil, errs.New(errs.FieldNotFound, "IndexValues", errFieldUnresolved)
	}
	addr.Field = schema.FacetFieldName(addr.Field)
	return r.valuesForAddress(h, addr, pindex.MaxTermsToIterate, pindex.MaxTermsToIterate, topK)
}

// valuesForAddress ranks the string field's values by descending
// frequency under the given output limit and term-visitation cap, then
// truncates further to topK if topK is positive and smaller still
// (used by IndexValues, whose collector-level limit is a fixed scan
// budget rather than the caller's requested count; 0 means "no further
// truncation", as from LabelValues, which already sized limit to topK).
func (r *Registry) valuesForAddress(h *pindex.IndexHandle, addr schema.Address, limit, termLimit, topK int) ([]string, []int64, error) {
	if limit <= 0 {
		limit = pindex.MaxTermsToIterate
	}
	counts, err := pindex.Query(h, query.NewAll(), &collect.StringFieldCollector{
		Field:     addr.EffectiveName(),
		Limit:     limit,
		TermLimit: termLimit,
	})
	if err != nil {
		return nil, nil, err
	}
	ranked := collect.Ranked(counts)
	if topK > 0 && topK < len(ranked) {
		ranked = ranked[:topK]
	}
	values := make([]string, len(ranked))
	freqs := make([]int64, len(ranked))
	for i, fc := range ranked {
		values[i] = fc.Value
		freqs[i] = fc.Count
	}
	return values, freqs, nil
}

func valuesOf(ranked []collect.FieldCount) []string {
	out := make([]string, len(ranked))
	for i, fc := range ranked {
		out[i] = fc.Value
	}
	return out
}

// QueryPartIds returns up to limit part ids matching q.
func (r *Registry) QueryPartIds(handle int64, q query.CachableQuery, limit int) ([]int32, error) {
	h, err := r.Lookup(handle)
	if err != nil {
		return nil, err
	}
	return pindex.Query(h, q, &collect.PartIdCollector{Limit: limit})
}

// QueryPartKeyRecords returns up to limit (part key, start time, end
// time) records matching q.
func (r *Registry) QueryPartKeyRecords(handle int64, q query.CachableQuery, limit int) ([]collect.PartKeyRecord, error) {
	h, err := r.Lookup(handle)
	if err != nil {
		return nil, err
	}
	return pindex.Query(h, q, &collect.PartKeyRecordCollector{Limit: limit})
}

// QueryPartKey returns the single part key matching q. limit must be
// exactly 1 — this operation resolves one document, never a list, and
// a caller passing any other limit has a bug worth surfacing loudly
// rather than silently truncating.
func (r *Registry) QueryPartKey(handle int64, q query.CachableQuery, limit int) ([]byte, error) {
	if limit != 1 {
		return nil, errs.New(errs.InvalidArgument, "QueryPartKey", errLimitMustBeOne)
	}
	h, err := r.Lookup(handle)
	if err != nil {
		return nil, err
	}
	return pindex.Query(h, q, collect.PartKeyCollector{})
}

// StartTimeFromPartIds returns, for each indexed partition whose part
// id is in partIds, an interleaved (partId, startTime) pair flattened
// into a single slice in segment, then doc id, visitation order.
func (r *Registry) StartTimeFromPartIds(handle int64, partIds []int32) ([]int64, error) {
	h, err := r.Lookup(handle)
	if err != nil {
		return nil, err
	}
	q := query.NewByPartIds(partIds)
	records, err := pindex.Query(h, q, &collect.TimeCollector{TimeField: schema.StartTime, Limit: unboundedLimit})
	if err != nil {
		return nil, err
	}
	return interleave(records), nil
}

// EndTimeFromPartId returns the end time recorded for the partition
// with part id partId, if any.
func (r *Registry) EndTimeFromPartId(handle int64, partId int32) (int64, bool, error) {
	h, err := r.Lookup(handle)
	if err != nil {
		return 0, false, err
	}
	q := query.NewByPartId(partId)
	records, err := pindex.Query(h, q, &collect.TimeCollector{TimeField: schema.EndTime, Limit: 1})
	if err != nil {
		return 0, false, err
	}
	if len(records) == 0 {
		return 0, false, nil
	}
	return records[0].Time, true, nil
}

func interleave(records []collect.TimeRecord) []int64 {
	out := make([]int64, 0, len(records)*2)
	for _, rec := range records {
		out = append(out, int64(rec.PartID), rec.Time)
	}
	return out
}
