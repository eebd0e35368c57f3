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

// Package bridge is the external interface layer: an opaque-handle
// lifecycle over pindex.IndexHandle plus the query/lookup operations a
// host embedding this library calls across its own FFI boundary.
// Marshaling host-side argument and result wire formats is that
// boundary's job, not this package's — bridge deals in Go values.
package bridge

import (
	"sync"

	"github.com/vectorbase/partdex/internal/errs"
	"github.com/vectorbase/partdex/pindex"
)

// Registry is an explicitly-owned table of opaque int64 handles to
// live IndexHandle values. There is no process-wide default registry:
// a caller that wants one creates it and threads it through, the same
// way IndexHandle itself carries no global state.
type Registry struct {
	mu      sync.Mutex
	next    int64
	handles map[int64]*pindex.IndexHandle
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{handles: make(map[int64]*pindex.IndexHandle)}
}

// Create registers h and returns the opaque handle a caller uses to
// refer to it across the boundary.
func (r *Registry) Create(h *pindex.IndexHandle) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next++
	id := r.next
	r.handles[id] = h
	return id
}

// Lookup resolves an opaque handle to its IndexHandle, or an
// InvalidArgument error if it names nothing live.
func (r *Registry) Lookup(handle int64) (*pindex.IndexHandle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.handles[handle]
	if !ok {
		return nil, errs.New(errs.InvalidArgument, "bridge.Lookup", errUnknownHandle)
	}
	return h, nil
}

// Destroy releases handle. Destroying an already-destroyed or
// never-issued handle is a silent no-op: callers must not destroy a
// handle twice and rely on any particular outcome, but this package
// won't panic if they do.
func (r *Registry) Destroy(handle int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.handles, handle)
}
