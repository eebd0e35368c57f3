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

// Package segment defines the segment-reader collaborator interfaces
// the query-execution core depends on. The on-disk segment format and
// its writer are out of scope here; this package only names the
// contract a reader snapshot must satisfy to be queried and cached
// against.
package segment

import "github.com/google/uuid"

// ID identifies a segment. It is hashable and comparable so it can be
// used directly as (part of) a map key without a custom Equivalent
// shim.
type ID = uuid.UUID

// NewID allocates a fresh random segment id.
func NewID() ID { return uuid.New() }

// Reader is a single immutable segment's queryable surface. A real
// implementation wraps an on-disk or in-memory postings/column store;
// this package only needs enough to compile and execute a query and to
// answer time/field-reading operations from package bridge.
type Reader interface {
	// MaxDoc returns one past the largest live doc id in the segment;
	// MaxDoc()-1 is the value passed to bitset.WithMaxValue.
	MaxDoc() uint32
	// ID returns this reader's segment id.
	ID() ID
}

// Snapshot is a refcount-clonable, point-in-time view over the live
// segments of an index. A refresh swaps in a new snapshot; queries
// already in flight keep using the snapshot they started with.
type Snapshot interface {
	// Readers returns the segment readers visible in this snapshot, in
	// a stable visitation order.
	Readers() []Reader
	// Release drops this snapshot's reference. Snapshot implementations
	// are expected to be cheaply cloned (e.g. a slice header or an
	// atomic refcount over shared segment readers) rather than deep
	// copied on every refresh.
	Release()
}

// StaticSnapshot is a Snapshot over a fixed slice of readers, useful
// for tests and for any deployment that doesn't need true refcounted
// segment lifetime management.
type StaticSnapshot []Reader

func (s StaticSnapshot) Readers() []Reader { return s }
func (s StaticSnapshot) Release()          {}
