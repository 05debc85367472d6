// Package gazetteer holds the static place-name table used for extraction
// and authoritative geocoding. Entries are hand-curated and trusted: a
// gazetteer hit bypasses external geocoding and bias validation entirely.
package gazetteer

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/levonter/corridor/internal/domain"
)

// Entry is one place-name record. Ambiguous marks entries whose name
// coincides with an ordinary word; the extractor requires a locative
// preposition before accepting an ambiguous match.
type Entry struct {
	Name      string  `json:"name"`
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
	Ambiguous bool    `json:"ambiguous,omitempty"`
}

// Table is an immutable case-insensitive lookup over gazetteer entries.
type Table struct {
	byKey map[string]Entry
	names []string // lowercased keys, longest first
}

// New builds a table from entries. Later duplicates of the same
// case-insensitive name replace earlier ones.
func New(entries []Entry) *Table {
	t := &Table{byKey: make(map[string]Entry, len(entries))}
	for _, e := range entries {
		key := Normalize(e.Name)
		if key == "" {
			continue
		}
		if _, seen := t.byKey[key]; !seen {
			t.names = append(t.names, key)
		}
		t.byKey[key] = e
	}
	// Longest first so multi-word names win over their prefixes during
	// extraction ("duk county" before "duk").
	sort.Slice(t.names, func(i, j int) bool {
		if len(t.names[i]) != len(t.names[j]) {
			return len(t.names[i]) > len(t.names[j])
		}
		return t.names[i] < t.names[j]
	})
	return t
}

// Load reads a JSON array of entries from path.
func Load(path string) (*Table, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading gazetteer: %w", err)
	}
	var entries []Entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("parsing gazetteer %s: %w", path, err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("gazetteer %s has no entries", path)
	}
	return New(entries), nil
}

// Normalize canonicalizes a place name for lookup: trimmed and lowercased.
func Normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Lookup returns the coordinate for a place name, case-insensitively.
func (t *Table) Lookup(name string) (domain.Coordinate, bool) {
	e, ok := t.byKey[Normalize(name)]
	if !ok {
		return domain.Coordinate{}, false
	}
	return domain.Coordinate{Lat: e.Lat, Lon: e.Lon}, true
}

// IsAmbiguous reports whether the entry exists and is marked ambiguous.
func (t *Table) IsAmbiguous(name string) bool {
	e, ok := t.byKey[Normalize(name)]
	return ok && e.Ambiguous
}

// Names returns the lowercased entry keys, longest first. The slice is
// shared; callers must not modify it.
func (t *Table) Names() []string {
	return t.names
}

// Len returns the number of entries.
func (t *Table) Len() int {
	return len(t.byKey)
}
