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
	"sigs.k8s.io/yaml"

	"github.com/vectorbase/partdex/colcache"
	"github.com/vectorbase/partdex/docset"
)

// MaxTermsToIterate bounds how many distinct terms a string-field scan
// will visit before giving up and returning what it has, unless a
// caller explicitly asks for an unbounded scan.
const MaxTermsToIterate = 10_000

// Config holds the tuning constants an IndexHandle is built with. The
// zero value is not valid; use DefaultConfig or LoadConfig.
type Config struct {
	ColumnCacheItems  int   `json:"columnCacheItems"`
	DocSetCacheBytes  int64 `json:"docSetCacheBytes"`
	MaxTermsToIterate int   `json:"maxTermsToIterate"`
}

// DefaultConfig returns the published tuning defaults: a 1,000-item
// column cache, a 50,000,000-byte doc-set cache, and a 10,000-term
// iteration cap.
func DefaultConfig() Config {
	return Config{
		ColumnCacheItems:  colcache.ItemCount,
		DocSetCacheBytes:  docset.ByteBudgetDefault,
		MaxTermsToIterate: MaxTermsToIterate,
	}
}

// LoadConfig parses YAML (or JSON, which is valid YAML) into a Config
// seeded with DefaultConfig, so a deployment only needs to override
// the constants it actually wants to change.
func LoadConfig(doc []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(doc, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
