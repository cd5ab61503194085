package labeler

import (
	"encoding/json"
	"fmt"
	"os"
)

// OracleEntry is one precomputed, trusted label triple.
type OracleEntry struct {
	Material   string  `json:"material"`
	Type       string  `json:"type"`
	Confidence float64 `json:"confidence"`
}

// OracleTable maps holder ids to precomputed label triples with O(1)
// lookup. It is read-only after loading.
type OracleTable struct {
	entries map[string]OracleEntry
}

// NewOracleTable builds a table from an in-memory map.
func NewOracleTable(entries map[string]OracleEntry) *OracleTable {
	if entries == nil {
		entries = map[string]OracleEntry{}
	}
	return &OracleTable{entries: entries}
}

// Lookup returns the entry for a holder id.
func (t *OracleTable) Lookup(holderID string) (OracleEntry, bool) {
	e, ok := t.entries[holderID]
	return e, ok
}

// Len returns the number of entries.
func (t *OracleTable) Len() int { return len(t.entries) }

// Range calls fn for every entry. Iteration order is unspecified; callers
// needing determinism must aggregate order-independently.
func (t *OracleTable) Range(fn func(holderID string, e OracleEntry)) {
	for id, e := range t.entries {
		fn(id, e)
	}
}

// oracleRecord is the list-of-records export form produced by earlier
// analysis sessions.
type oracleRecord struct {
	HolderID   string  `json:"holder_id"`
	Material   string  `json:"material"`
	Type       string  `json:"type"`
	Confidence float64 `json:"confidence"`
}

// ParseOracle decodes an oracle table from JSON. Two forms are accepted:
// a flat map of holder id to entry, or a list of records each carrying its
// holder id. In the list form, a duplicated id keeps the later record.
func ParseOracle(data []byte) (*OracleTable, error) {
	var asMap map[string]OracleEntry
	if err := json.Unmarshal(data, &asMap); err == nil {
		return NewOracleTable(asMap), nil
	}

	var asList []oracleRecord
	if err := json.Unmarshal(data, &asList); err != nil {
		return nil, fmt.Errorf("parse oracle table: %w", err)
	}
	entries := make(map[string]OracleEntry, len(asList))
	for _, rec := range asList {
		if rec.HolderID == "" {
			continue
		}
		entries[rec.HolderID] = OracleEntry{
			Material:   rec.Material,
			Type:       rec.Type,
			Confidence: rec.Confidence,
		}
	}
	return NewOracleTable(entries), nil
}

// LoadOracle reads and parses an oracle table file.
func LoadOracle(path string) (*OracleTable, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: oracle path comes from configuration
	if err != nil {
		return nil, fmt.Errorf("read oracle table: %w", err)
	}
	return ParseOracle(data)
}
