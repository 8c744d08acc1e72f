package cards

import (
	"sort"

	"github.com/hazyhaar/mapsieve/snapshot"
)

// dupOverlap is the fraction of the smaller box two candidates must
// share to count as the same card.
const dupOverlap = 0.70

// Dedup merges the two strategies' outputs: candidates overlapping by
// more than 70% of the smaller bounding box are duplicates, and the
// higher-confidence one wins, container candidates winning ties.
// Running Dedup on an already-deduplicated slice changes nothing.
func Dedup(cands []Candidate) []Candidate {
	if len(cands) <= 1 {
		return cands
	}

	ranked := make([]Candidate, len(cands))
	copy(ranked, cands)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Confidence != ranked[j].Confidence {
			return ranked[i].Confidence > ranked[j].Confidence
		}
		if (ranked[i].Strategy == FromContainer) != (ranked[j].Strategy == FromContainer) {
			return ranked[i].Strategy == FromContainer
		}
		return ranked[i].Bounds.Y1 < ranked[j].Bounds.Y1
	})

	var kept []Candidate
	for _, c := range ranked {
		dup := false
		for _, k := range kept {
			if overlapRatio(c.Bounds, k.Bounds) > dupOverlap {
				dup = true
				break
			}
		}
		if !dup {
			kept = append(kept, c)
		}
	}
	return kept
}

// overlapRatio is the intersection area relative to the smaller box.
// Zero-area boxes never count as duplicates.
func overlapRatio(a, b snapshot.Rect) float64 {
	smaller := a.Area()
	if ba := b.Area(); ba < smaller {
		smaller = ba
	}
	if smaller <= 0 {
		return 0
	}
	return float64(a.Intersect(b).Area()) / float64(smaller)
}
