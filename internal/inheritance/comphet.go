package inheritance

import (
	"sort"

	"github.com/vibe-annotate/vibe-annotate/internal/model"
)

// CompHetCandidate is one variant under consideration for compound-het
// membership within a single gene group.
type CompHetCandidate struct {
	VariantKey model.VariantKey
	Gene       string
	IndexGT    string
	MotherGT   string
	FatherGT   string
}

// compHetClass is one candidate's parent-of-origin classification.
type compHetClass int

const (
	classAmbiguous compHetClass = iota
	classPaternal
	classMaternal
)

// DetectCompoundHet groups het-in-index candidates by gene and, within each
// gene with ≥2 such variants, looks for true trans compound heterozygosity:
// at least one variant inherited only from the father and at least one
// inherited only from the mother. Spec §4.9 step 3: when both parents are
// not fully genotyped for every candidate in the group, the whole group is
// marked "possible" instead. Returns a map from variant key to the detail
// that should be attached to it; variants outside any qualifying group are
// absent from the map.
func DetectCompoundHet(candidates []CompHetCandidate) map[model.VariantKey]*model.CompHetDetail {
	result := map[model.VariantKey]*model.CompHetDetail{}

	byGene := map[string][]CompHetCandidate{}
	for _, c := range candidates {
		if c.Gene == "" || !isHet(c.IndexGT) {
			continue
		}
		byGene[c.Gene] = append(byGene[c.Gene], c)
	}

	for gene, group := range byGene {
		if len(group) < 2 {
			continue
		}

		bothParentsKnownForAll := true
		classes := make([]compHetClass, len(group))
		for i, c := range group {
			if isMissing(c.MotherGT) || isMissing(c.FatherGT) {
				bothParentsKnownForAll = false
				classes[i] = classAmbiguous
				continue
			}
			fatherHas := isVariant(c.FatherGT)
			motherHas := isVariant(c.MotherGT)
			switch {
			case fatherHas && !motherHas:
				classes[i] = classPaternal
			case motherHas && !fatherHas:
				classes[i] = classMaternal
			default:
				classes[i] = classAmbiguous
			}
		}

		possible := !bothParentsKnownForAll
		if bothParentsKnownForAll {
			hasPaternal, hasMaternal := false, false
			for _, cl := range classes {
				if cl == classPaternal {
					hasPaternal = true
				}
				if cl == classMaternal {
					hasMaternal = true
				}
			}
			if !hasPaternal || !hasMaternal {
				possible = true
			}
		}

		keys := make([]model.VariantKey, len(group))
		for i, c := range group {
			keys[i] = c.VariantKey
		}
		sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

		for _, c := range group {
			partners := make([]model.VariantKey, 0, len(keys)-1)
			for _, k := range keys {
				if k != c.VariantKey {
					partners = append(partners, k)
				}
			}
			result[c.VariantKey] = &model.CompHetDetail{
				PartnerVariantKeys: partners,
				Gene:               gene,
				Possible:           possible,
			}
		}
	}

	return result
}

// CompHetPattern returns the prioritized-pattern name a comp-het detail
// implies, honouring the possible/confirmed distinction.
func CompHetPattern(detail *model.CompHetDetail) string {
	if detail == nil {
		return ""
	}
	if detail.Possible {
		return PatternCompoundHeterozygousPossible
	}
	return PatternCompoundHeterozygous
}
