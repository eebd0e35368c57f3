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

package lru

import "testing"

func TestPushFrontAndBack(t *testing.T) {
	l := New[string, int]()
	l.PushFront("a", 1, 1)
	l.PushFront("b", 2, 1)
	l.PushFront("c", 3, 1)

	if l.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", l.Len())
	}
	if l.Weight() != 3 {
		t.Fatalf("Weight() = %d, want 3", l.Weight())
	}
	if back := l.Back(); back == nil || back.Key != "a" {
		t.Fatalf("Back() = %v, want key \"a\" (least recently used)", back)
	}
}

func TestTouchMovesToFront(t *testing.T) {
	l := New[string, int]()
	ea := l.PushFront("a", 1, 1)
	l.PushFront("b", 2, 1)
	l.PushFront("c", 3, 1)

	l.Touch(ea)
	if back := l.Back(); back == nil || back.Key != "b" {
		t.Fatalf("Back() after touching \"a\" = %v, want key \"b\"", back)
	}
}

func TestRemove(t *testing.T) {
	l := New[string, int]()
	ea := l.PushFront("a", 1, 2)
	eb := l.PushFront("b", 2, 3)
	l.Remove(ea)
	if l.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", l.Len())
	}
	if l.Weight() != 3 {
		t.Fatalf("Weight() = %d, want 3", l.Weight())
	}
	if back := l.Back(); back != eb {
		t.Fatal("only remaining element must be both front and back")
	}
}

func TestBackOnEmptyList(t *testing.T) {
	l := New[string, int]()
	if l.Back() != nil {
		t.Fatal("Back() on an empty list must return nil")
	}
}
