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

// Package rxauto implements a byte-at-a-time automaton for walking a
// term dictionary against a regular expression, the way a range-limited
// regex query narrows its term scan to a JSON sub-field's byte range
// instead of visiting the whole dictionary.
package rxauto

// Automaton is a byte-driven state machine a term-dictionary walk can
// drive one byte at a time without backtracking. It mirrors the shape
// tantivy_fst's Automaton trait gives Rust: State is an opaque value
// the walker threads through Accept calls.
type Automaton[S any] interface {
	Start() S
	IsMatch(s S) bool
	Accept(s S, b byte) S
	CanMatch(s S) bool
	WillAlwaysMatch(s S) bool
}

// SkipPrefixState is the state of a SkipPrefix automaton: a count of
// prefix bytes consumed so far, plus the wrapped automaton's own state
// once the prefix has been fully skipped.
type SkipPrefixState[S any] struct {
	Count int
	Inner S
}

// SkipPrefix wraps an inner Automaton so the first PrefixSize bytes
// fed to it are silently skipped before the inner automaton starts
// seeing any input. It is how a regex written against a JSON
// sub-field's value gets applied to a term whose bytes are actually
// "<prefix><separator><value>" — the prefix is walked but never
// tested against the pattern.
type SkipPrefix[S any] struct {
	Inner      Automaton[S]
	PrefixSize int
}

func (a SkipPrefix[S]) Start() SkipPrefixState[S] {
	return SkipPrefixState[S]{Count: 0, Inner: a.Inner.Start()}
}

func (a SkipPrefix[S]) IsMatch(s SkipPrefixState[S]) bool {
	if s.Count < a.PrefixSize {
		return false
	}
	return a.Inner.IsMatch(s.Inner)
}

func (a SkipPrefix[S]) Accept(s SkipPrefixState[S], b byte) SkipPrefixState[S] {
	if s.Count < a.PrefixSize {
		return SkipPrefixState[S]{Count: s.Count + 1, Inner: s.Inner}
	}
	return SkipPrefixState[S]{Count: s.Count, Inner: a.Inner.Accept(s.Inner, b)}
}

func (a SkipPrefix[S]) CanMatch(s SkipPrefixState[S]) bool {
	if s.Count < a.PrefixSize {
		return true
	}
	return a.Inner.CanMatch(s.Inner)
}

func (a SkipPrefix[S]) WillAlwaysMatch(s SkipPrefixState[S]) bool {
	if s.Count < a.PrefixSize {
		return false
	}
	return a.Inner.WillAlwaysMatch(s.Inner)
}

// JSONPrefixSeparator is the two-byte marker inserted between a JSON
// sub-field's prefix and its value in the term dictionary encoding
// this automaton walks.
const JSONPrefixSeparator = "\x00s"

// PrefixSize returns the number of leading bytes a regex over the
// field rooted at prefix must skip before the pattern itself begins:
// zero for a bare field with no JSON prefix, otherwise the prefix's
// byte length plus the separator.
func PrefixSize(prefix string) int {
	if prefix == "" {
		return 0
	}
	return len(prefix) + len(JSONPrefixSeparator)
}
