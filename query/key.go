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

import (
	"encoding/binary"

	"github.com/dchest/siphash"

	"github.com/vectorbase/partdex/segment"
)

// hashKey is a fixed, process-local siphash key. Cache hashes never
// leave the process, so there is no need to randomize or persist it.
var hashKey = make([]byte, 16)

// Key is a borrowed, allocation-free composite cache lookup key: a
// segment id plus a pointer to a caller-owned CachableQuery. Probing a
// cache with a Key never copies the query's payload bytes, which
// matters on the read path where most probes miss nothing and a
// cloning lookup key would cost an allocation per call.
type Key struct {
	Segment segment.ID
	Query   *CachableQuery
}

// Entry is the owned form of a Key, stored once per cache insertion so
// the entry's lifetime never depends on the lookup caller's query
// argument staying alive.
type Entry struct {
	Segment segment.ID
	Query   CachableQuery
}

// Owned copies k into a standalone Entry suitable for insertion.
func (k Key) Owned() Entry { return Entry{Segment: k.Segment, Query: *k.Query} }

// Hash returns a siphash-64 digest of the key's contents, writing each
// field directly into the hash state instead of allocating a
// concatenated buffer.
func (k Key) Hash() uint64 { return hashParts(k.Segment, k.Query) }

// Hash returns the same digest Key.Hash would for the equivalent
// borrowed key, so an Entry and a Key referring to the same logical
// (segment, query) pair always land in the same bucket.
func (e Entry) Hash() uint64 { return hashParts(e.Segment, &e.Query) }

func hashParts(seg segment.ID, q *CachableQuery) uint64 {
	h := siphash.New(hashKey)
	h.Write(seg[:])

	var buf [8]byte
	buf[0] = byte(q.kind)
	h.Write(buf[:1])

	switch q.kind {
	case Complex, ByPartKey:
		h.Write(q.bytes)
	case ByPartIds:
		for _, id := range q.partIds {
			binary.BigEndian.PutUint32(buf[:4], uint32(id))
			h.Write(buf[:4])
		}
	case ByEndTime:
		binary.BigEndian.PutUint64(buf[:8], uint64(q.endTime))
		h.Write(buf[:8])
	case ByPartId:
		binary.BigEndian.PutUint32(buf[:4], uint32(q.partID))
		h.Write(buf[:4])
	case All:
		// no payload to mix in
	}
	return h.Sum64()
}

// EqualTo reports whether the borrowed key k refers to the same
// logical (segment, query) pair as the owned entry e, without
// requiring k.Query and e.Query to share an allocation. It satisfies
// wcache.Borrower.
func (k Key) EqualTo(e Entry) bool {
	return k.Segment == e.Segment && k.Query.Equal(e.Query)
}

// Equal reports whether two Entry values refer to the same logical
// pair.
func (e Entry) Equal(o Entry) bool {
	return e.Segment == o.Segment && e.Query.Equal(o.Query)
}
