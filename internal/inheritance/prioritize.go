package inheritance

import "sort"

// priorityRank is the fixed total order spec §4.9 mandates:
// de_novo > compound_het > autosomal_recessive > x_linked_* >
// autosomal_dominant > homozygous > incomplete_* > non_mendelian >
// reference > unknown_*. Lower rank sorts first (higher priority).
var priorityRank = map[string]int{
	PatternDeNovo:                       0,
	PatternCompoundHeterozygous:         1,
	PatternCompoundHeterozygousPossible: 2,
	PatternAutosomalRecessive:           3,
	PatternAutosomalRecessivePossible:   4,
	PatternXLinkedRecessive:             5,
	PatternXLinkedRecessivePossible:     6,
	PatternXLinkedDominant:              7,
	PatternPotentialXLinked:             8,
	PatternAutosomalDominant:            9,
	PatternAutosomalDominantPossible:    10,
	PatternHomozygous:                   11,
	PatternDominant:                     12,
	PatternDeNovoCandidate:              13,
	PatternNonMendelian:                 14,
	PatternReference:                    15,
	PatternUnknownWithMissingData:       16,
	PatternUnknown:                      17,
	PatternAnalysisFailed:               18,
}

func rankOf(pattern string) int {
	if r, ok := priorityRank[pattern]; ok {
		return r
	}
	return len(priorityRank) + 1
}

// Prioritize picks the single prioritized pattern from a set of candidates:
// it first prefers patterns whose segregation status is "segregates", then
// "unknown", then falls back to the full candidate set, and within the
// chosen tier picks the pattern with the lowest (best) priorityRank. Ties
// break alphabetically for determinism.
func Prioritize(patterns []string, segregation map[string]string) string {
	if len(patterns) == 0 {
		return PatternUnknown
	}

	for _, tier := range []string{SegregationSegregates, SegregationUnknown, ""} {
		var candidates []string
		for _, p := range patterns {
			status := segregation[p]
			if status == "" {
				status = SegregationUnknown
			}
			if tier == "" || status == tier {
				candidates = append(candidates, p)
			}
		}
		if len(candidates) > 0 {
			return bestByPriority(candidates)
		}
	}

	return bestByPriority(patterns)
}

func bestByPriority(patterns []string) string {
	sorted := append([]string(nil), patterns...)
	sort.Slice(sorted, func(i, j int) bool {
		ri, rj := rankOf(sorted[i]), rankOf(sorted[j])
		if ri != rj {
			return ri < rj
		}
		return sorted[i] < sorted[j]
	})
	return sorted[0]
}
