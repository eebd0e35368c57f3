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

package rxauto

// RangeAwareRegex is a regex automaton that, when applied to a JSON
// sub-field's encoded term bytes, skips the field's own prefix and
// separator before testing the pattern, so a dictionary walk over a
// wide JSON field only spends work on the byte range that could
// possibly belong to the requested sub-field.
type RangeAwareRegex struct {
	SkipPrefix[RegexState]
}

// FromPattern compiles regexPattern and wraps it to skip prefix's byte
// span. An empty prefix skips nothing — the pattern is matched against
// the whole term.
func FromPattern(regexPattern, prefix string) (*RangeAwareRegex, error) {
	inner, err := Compile(regexPattern)
	if err != nil {
		return nil, err
	}
	return &RangeAwareRegex{SkipPrefix: SkipPrefix[RegexState]{
		Inner:      inner,
		PrefixSize: PrefixSize(prefix),
	}}, nil
}

// MatchesBytes drives the automaton over b one byte at a time and
// reports whether the final state matches — the same walk a
// term-dictionary scan performs, collapsed into a single call for
// callers that already have the whole candidate value in hand.
func (a *RangeAwareRegex) MatchesBytes(b []byte) bool {
	s := a.Start()
	for _, by := range b {
		if !a.CanMatch(s) {
			return false
		}
		s = a.Accept(s, by)
	}
	return a.IsMatch(s)
}
