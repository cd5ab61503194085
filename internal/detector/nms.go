package detector

import (
	"sort"

	"github.com/smartmap-tools/holderscan/internal/utils"
)

// NonMaxSuppression performs greedy Non-Maximum Suppression over candidates
// of a single class. Candidates are visited in descending confidence order;
// each is accepted only when its IoU against every already-accepted
// candidate stays at or below the threshold, otherwise it is discarded for
// good. The confidence sort is stable, so equal-confidence ties resolve to
// the earlier detection and identical input always yields identical output.
func NonMaxSuppression(candidates []Candidate, iouThreshold float64) []Candidate {
	if len(candidates) <= 1 {
		return append([]Candidate(nil), candidates...)
	}

	order := make([]int, len(candidates))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return candidates[order[a]].Confidence > candidates[order[b]].Confidence
	})

	kept := make([]Candidate, 0, len(candidates))
	for _, i := range order {
		c := candidates[i]
		accept := true
		for _, k := range kept {
			if utils.IoU(c.Box, k.Box) > iouThreshold {
				accept = false
				break
			}
		}
		if accept {
			kept = append(kept, c)
		}
	}
	return kept
}

// CapByConfidence truncates candidates to at most limit members, keeping
// the highest-confidence ones. The selection sort is stable for the same
// determinism reasons as NMS.
func CapByConfidence(candidates []Candidate, limit int) []Candidate {
	if limit < 0 || len(candidates) <= limit {
		return append([]Candidate(nil), candidates...)
	}
	order := make([]int, len(candidates))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return candidates[order[a]].Confidence > candidates[order[b]].Confidence
	})
	kept := make([]Candidate, 0, limit)
	for _, i := range order[:limit] {
		kept = append(kept, candidates[i])
	}
	return kept
}
