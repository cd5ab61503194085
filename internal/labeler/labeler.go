// Package labeler assigns material and holder-type labels to holder
// records. A precomputed oracle table is consulted first; holders absent
// from it fall back to the globally most frequent label pair at a fixed,
// reduced confidence.
package labeler

import (
	"fmt"
	"log/slog"
)

// Closed vocabulary of holder materials.
var Materials = []string{"kov", "betón", "drevo", "plast"}

// Closed vocabulary of holder stand types.
var HolderTypes = []string{
	"stĺp značky samostatný",
	"stĺp značky dvojitý",
	"stĺp verejného osvetlenia",
	"stĺp svetelného signalizačného zariadenia",
}

// Result sources.
const (
	SourceOracle  = "oracle-lookup"
	SourcePattern = "pattern-fallback"
)

// FallbackConfidence is the fixed confidence attached to pattern-fallback
// results. It is deliberately lower than oracle-backed confidences: a
// population-level guess, not an instance-specific inference.
const FallbackConfidence = 0.55

// Defaults used when the oracle table is empty and no majority exists.
const (
	defaultMaterial = "kov"
	defaultType     = "stĺp značky samostatný"
)

// LabeledResult is the labeler's output triple plus its provenance.
type LabeledResult struct {
	HolderID   string  `json:"holder_id"`
	Material   string  `json:"material"`
	Type       string  `json:"type"`
	Confidence float64 `json:"confidence"`
	Source     string  `json:"source"`
}

// Labeler resolves holder ids against an oracle table with a deterministic
// majority-pair fallback. It is immutable after construction and safe for
// concurrent use.
type Labeler struct {
	oracle           *OracleTable
	fallbackMaterial string
	fallbackType     string
}

// New builds a Labeler over the given oracle table. The fallback pair is
// computed once: the most frequent (material, type) pair in the table, ties
// broken lexicographically so the result is deterministic.
func New(oracle *OracleTable) *Labeler {
	material, holderType := majorityPair(oracle)
	slog.Debug("labeler initialized",
		"oracle_entries", oracle.Len(),
		"fallback_material", material,
		"fallback_type", holderType)
	return &Labeler{
		oracle:           oracle,
		fallbackMaterial: material,
		fallbackType:     holderType,
	}
}

// Assign returns the labeled result for a holder id: the oracle entry when
// one exists, otherwise the majority-pair fallback. A lookup miss is not an
// error.
func (l *Labeler) Assign(holderID string) LabeledResult {
	if entry, ok := l.oracle.Lookup(holderID); ok {
		return LabeledResult{
			HolderID:   holderID,
			Material:   entry.Material,
			Type:       entry.Type,
			Confidence: entry.Confidence,
			Source:     SourceOracle,
		}
	}
	return LabeledResult{
		HolderID:   holderID,
		Material:   l.fallbackMaterial,
		Type:       l.fallbackType,
		Confidence: FallbackConfidence,
		Source:     SourcePattern,
	}
}

// TrackingNote renders the annotation the downstream form-filling actuator
// appends to a holder's note field.
func (r LabeledResult) TrackingNote() string {
	if r.Source == SourceOracle {
		return fmt.Sprintf("DMNB (AI: %.2f)", r.Confidence)
	}
	return fmt.Sprintf("DMNB (Pattern: %.2f)", r.Confidence)
}

// majorityPair finds the most frequent (material, type) pair in the oracle
// table. Ties resolve to the lexicographically smallest pair; an empty
// table yields the documented defaults.
func majorityPair(oracle *OracleTable) (string, string) {
	type pair struct{ material, holderType string }
	counts := make(map[pair]int)
	oracle.Range(func(_ string, e OracleEntry) {
		counts[pair{e.Material, e.Type}]++
	})
	if len(counts) == 0 {
		return defaultMaterial, defaultType
	}
	var best pair
	bestCount := -1
	for p, n := range counts {
		if n > bestCount {
			best, bestCount = p, n
			continue
		}
		if n == bestCount {
			if p.material < best.material ||
				(p.material == best.material && p.holderType < best.holderType) {
				best = p
			}
		}
	}
	return best.material, best.holderType
}
