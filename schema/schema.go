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

// Package schema holds the reserved field names every segment schema
// carries and the JSON sub-field addressing convention ("F.foo") used
// by labelValues/indexValues.
package schema

import "strings"

// Reserved field names. These are wire constants shared with the host
// side; do not rename without updating every caller of the bridge
// operation table.
const (
	PartIDField = "__partIdField__"
	PartIDDV    = "__partIdDv__"
	PartKey     = "__partKey__"
	LabelList   = "__labelList__"
	StartTime   = "__startTime__"
	EndTime     = "__endTime__"
	Type        = "_type_"

	// FacetPrefix marks a field as a facet counterpart of a stored
	// string field, e.g. "$facet_status" facets "status".
	FacetPrefix = "$facet_"
)

// FacetFieldName returns the facet-indexed counterpart of a stored
// field name.
func FacetFieldName(field string) string {
	return FacetPrefix + field
}

// IsFacetField reports whether name is a facet-prefixed field.
func IsFacetField(name string) bool {
	return strings.HasPrefix(name, FacetPrefix)
}

// Address is a resolved field reference: the underlying schema field
// plus an optional JSON path prefix within that field's document
// value.
type Address struct {
	Field  string
	Prefix string
}

// EffectiveName is the name under which the resolved address should be
// looked up in readers/collectors that key on a single flattened
// field name, e.g. "tags.env" for field "tags" and prefix "env".
func (a Address) EffectiveName() string {
	if a.Prefix == "" {
		return a.Field
	}
	return a.Field + "." + a.Prefix
}

// ParseAddress splits a caller-supplied field reference of the form
// "F.foo" into field F with JSON prefix "foo". A reference with no dot
// addresses the field directly, with no prefix. Only the first dot is
// significant: "F.foo.bar" yields field F, prefix "foo.bar".
func ParseAddress(ref string) Address {
	if i := strings.IndexByte(ref, '.'); i >= 0 {
		return Address{Field: ref[:i], Prefix: ref[i+1:]}
	}
	return Address{Field: ref}
}

// Finder is the schema surface Resolve checks field names against,
// both for ref's own field component and for defaultField when ref
// names no known field (a bare prefix with no dot still needs a field
// to search within).
type Finder interface {
	// HasField reports whether name is a known schema field.
	HasField(name string) bool
}

// Lister is implemented by schemas that can enumerate their own field
// names, e.g. for IndexNames. Not every Finder needs to support this —
// a schema backed by something that can only answer membership
// queries still satisfies Finder.
type Lister interface {
	FieldNames() []string
}

// Resolve applies ParseAddress and falls back to defaultField when the
// parsed field isn't present in the schema, treating the whole ref as
// a prefix under the default field. It mirrors find_field_with_default
// semantics: "status" with no default field and a known "status"
// field resolves to {Field: "status"}; "tags.env" resolves to
// {Field: "tags", Prefix: "env"} when "tags" exists; otherwise, if
// defaultField is set, the whole string becomes the prefix under
// defaultField.
func Resolve(ref string, defaultField string, f Finder) (Address, bool) {
	addr := ParseAddress(ref)
	if f.HasField(addr.Field) {
		return addr, true
	}
	if defaultField != "" && f.HasField(defaultField) {
		return Address{Field: defaultField, Prefix: ref}, true
	}
	return Address{}, false
}
