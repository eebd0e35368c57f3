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

import (
	"regexp/syntax"
	"sort"

	"github.com/vectorbase/partdex/internal/errs"
)

// RegexState is a sorted, de-duplicated set of live program counters:
// every thread of the NFA simulation currently alive, compressed into
// a single comparable-by-content value the way a lazily-built DFA
// state would be.
type RegexState struct {
	pcs []uint32
}

// Regex is a byte-driven Automaton built by compiling a pattern to a
// regexp/syntax.Prog and simulating it one byte at a time with a
// Thompson-style NFA thread set, instead of a backtracking engine — a
// term-dictionary walk needs to advance the automaton one byte of a
// candidate term at a time and ask "can this still match," which a
// backtracking regexp.Regexp has no API for.
type Regex struct {
	prog *syntax.Prog
}

// Compile parses pattern and builds a Regex automaton over it.
func Compile(pattern string) (*Regex, error) {
	re, err := syntax.Parse(pattern, syntax.Perl)
	if err != nil {
		return nil, errs.New(errs.ParseError, "rxauto.Compile", err)
	}
	prog, err := syntax.Compile(re)
	if err != nil {
		return nil, errs.New(errs.ParseError, "rxauto.Compile", err)
	}
	return &Regex{prog: prog}, nil
}

func (r *Regex) Start() RegexState {
	return r.closure([]uint32{uint32(r.prog.Start)})
}

func (r *Regex) IsMatch(s RegexState) bool {
	for _, pc := range s.pcs {
		if r.prog.Inst[pc].Op == syntax.InstMatch {
			return true
		}
	}
	return false
}

func (r *Regex) CanMatch(s RegexState) bool {
	return len(s.pcs) > 0
}

// WillAlwaysMatch reports whether s is already a match and stays a
// match no matter what byte comes next — the NFA equivalent of a sink
// accept state, which is what a trailing ".*" in the pattern produces
// when "." also matches newline (the s flag, as in "(?s)foo.*"); a
// plain "." excludes '\n', so its trailing ".*" is not such a state.
// It is a one-step check: true if every one of the 256 possible next
// bytes leads to another matching state. That is sufficient for this
// automaton's NFA construction, where such a state's thread set is
// always a fixed point of Accept.
func (r *Regex) WillAlwaysMatch(s RegexState) bool {
	if !r.IsMatch(s) {
		return false
	}
	for b := 0; b < 256; b++ {
		if !r.IsMatch(r.Accept(s, byte(b))) {
			return false
		}
	}
	return true
}

func (r *Regex) Accept(s RegexState, b byte) RegexState {
	var next []uint32
	for _, pc := range s.pcs {
		inst := r.prog.Inst[pc]
		if inst.Op != syntax.InstRune && inst.Op != syntax.InstRune1 && inst.Op != syntax.InstRuneAny && inst.Op != syntax.InstRuneAnyNotNL {
			continue
		}
		if matchesByte(inst, b) {
			next = append(next, inst.Out)
		}
	}
	return r.closure(next)
}

// matchesByte reports whether inst's rune class matches the
// single-byte rune b. Patterns with multi-byte runes only match
// correctly against a single-byte-per-Accept walk when every rune in
// play is ASCII, which holds for the term alphabets this automaton is
// built against (field names, labels, part keys).
func matchesByte(inst syntax.Inst, b byte) bool {
	r := rune(b)
	switch inst.Op {
	case syntax.InstRuneAny:
		return true
	case syntax.InstRuneAnyNotNL:
		return r != '\n'
	case syntax.InstRune, syntax.InstRune1:
		return inst.MatchRune(r)
	}
	return false
}

// closure computes the epsilon-closure of a program-counter frontier:
// following InstAlt/InstNop/InstCapture/InstEmptyWidth edges until
// only byte-consuming or matching instructions remain, deduplicating
// as it goes so the resulting state is a canonical set.
func (r *Regex) closure(frontier []uint32) RegexState {
	seen := make(map[uint32]bool)
	var out []uint32
	var visit func(pc uint32)
	visit = func(pc uint32) {
		if seen[pc] {
			return
		}
		seen[pc] = true
		inst := r.prog.Inst[pc]
		switch inst.Op {
		case syntax.InstAlt, syntax.InstAltMatch:
			visit(inst.Out)
			visit(inst.Arg)
		case syntax.InstNop, syntax.InstCapture, syntax.InstEmptyWidth:
			visit(inst.Out)
		case syntax.InstFail:
			// dead end, contributes nothing
		default: // InstRune, InstRune1, InstRuneAny, InstRuneAnyNotNL, InstMatch
			out = append(out, pc)
		}
	}
	for _, pc := range frontier {
		visit(pc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return RegexState{pcs: out}
}
