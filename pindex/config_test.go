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

package pindex

import (
	"testing"

	"github.com/vectorbase/partdex/colcache"
	"github.com/vectorbase/partdex/docset"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.ColumnCacheItems != colcache.ItemCount {
		t.Fatalf("ColumnCacheItems = %d, want %d", cfg.ColumnCacheItems, colcache.ItemCount)
	}
	if cfg.DocSetCacheBytes != docset.ByteBudgetDefault {
		t.Fatalf("DocSetCacheBytes = %d, want %d", cfg.DocSetCacheBytes, docset.ByteBudgetDefault)
	}
	if cfg.MaxTermsToIterate != MaxTermsToIterate {
		t.Fatalf("MaxTermsToIterate = %d, want %d", cfg.MaxTermsToIterate, MaxTermsToIterate)
	}
}

func TestLoadConfigOverridesOnlyGivenFields(t *testing.T) {
	cfg, err := LoadConfig([]byte(`{"maxTermsToIterate": 42}`))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.MaxTermsToIterate != 42 {
		t.Fatalf("MaxTermsToIterate = %d, want 42", cfg.MaxTermsToIterate)
	}
	if cfg.ColumnCacheItems != colcache.ItemCount {
		t.Fatalf("unset field ColumnCacheItems should keep its default, got %d", cfg.ColumnCacheItems)
	}
	if cfg.DocSetCacheBytes != docset.ByteBudgetDefault {
		t.Fatalf("unset field DocSetCacheBytes should keep its default, got %d", cfg.DocSetCacheBytes)
	}
}

func TestLoadConfigYAML(t *testing.T) {
	cfg, err := LoadConfig([]byte("columnCacheItems: 5\ndocSetCacheBytes: 1000\n"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ColumnCacheItems != 5 || cfg.DocSetCacheBytes != 1000 {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestLoadConfigInvalidDocument(t *testing.T) {
	_, err := LoadConfig([]byte("not: valid: yaml: at: all: ::::"))
	if err == nil {
		t.Fatal("expected an error for malformed input")
	}
}
