package detector

import "sort"

// resolve turns raw candidates into the final non-overlapping span set.
//
// Candidates below minConfidence (after scoring) are dropped. Survivors are
// put into a total deterministic order (start ascending, then priority
// descending, then longer match first, then category name) and swept left
// to right with greedy interval scheduling: a candidate starting before the
// end of the last accepted span loses to it. A second pass assigns 1-based
// per-category indexes in start order. The total order makes the result
// independent of input ordering.
func resolve(candidates []Candidate, minConfidence float64) []ResolvedItem {
	scored := make([]struct {
		Candidate
		confidence float64
	}, 0, len(candidates))
	for _, c := range candidates {
		confidence := scoreCandidate(c)
		if confidence < minConfidence {
			continue
		}
		scored = append(scored, struct {
			Candidate
			confidence float64
		}{c, confidence})
	}

	sort.Slice(scored, func(i, j int) bool {
		a, b := scored[i], scored[j]
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		if a.Priority != b.Priority {
			return a.Priority > b.Priority
		}
		if la, lb := a.End-a.Start, b.End-b.Start; la != lb {
			return la > lb
		}
		return a.Category < b.Category
	})

	items := make([]ResolvedItem, 0, len(scored))
	lastEnd := 0
	for _, s := range scored {
		if len(items) > 0 && s.Start < lastEnd {
			continue
		}
		items = append(items, ResolvedItem{
			Category:   s.Category,
			Value:      s.Value,
			Start:      s.Start,
			End:        s.End,
			Confidence: s.confidence,
		})
		lastEnd = s.End
	}

	indexes := make(map[string]int, len(items))
	for i := range items {
		indexes[items[i].Category]++
		items[i].Index = indexes[items[i].Category]
	}
	return items
}
