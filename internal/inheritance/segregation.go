package inheritance

import "github.com/vibe-annotate/vibe-annotate/internal/model"

// Segregation status values.
const (
	SegregationSegregates        = "segregates"
	SegregationDoesNotSegregate  = "does_not_segregate"
	SegregationUnknown           = "unknown"
)

// dominantPatterns is the set of patterns for which an unaffected carrier
// is reported as incomplete penetrance upstream (spec §4.9), i.e. the
// segregation check itself reports does_not_segregate.
var dominantPatterns = map[string]bool{
	PatternAutosomalDominant: true,
	PatternXLinkedDominant:   true,
	PatternDeNovo:            true,
}

// CheckSegregation reports whether pattern is consistent with every
// genotyped pedigree member's affected status for the current variant.
// Missing genotype data on a critical role (any affected individual, or —
// for de_novo — the index's parents) yields "unknown". A dominant pattern
// with any genotyped-variant unaffected member yields "does_not_segregate".
func CheckSegregation(pattern string, entries []model.PedigreeEntry, genotypes map[string]string) string {
	if len(entries) == 0 {
		return SegregationUnknown
	}

	sawAffected := false
	affectedMissingVariant := false
	unaffectedWithVariant := false
	missingCritical := false

	parentsOfAffected := map[string]bool{}
	for _, e := range entries {
		if e.AffectedStatus == 2 {
			if e.FatherID != "" && e.FatherID != "0" {
				parentsOfAffected[e.FatherID] = true
			}
			if e.MotherID != "" && e.MotherID != "0" {
				parentsOfAffected[e.MotherID] = true
			}
		}
	}

	for _, e := range entries {
		gt := genotypes[e.SampleID]

		switch e.AffectedStatus {
		case 2:
			sawAffected = true
			if isMissing(gt) {
				missingCritical = true
				continue
			}
			if !isVariant(gt) {
				affectedMissingVariant = true
			}
		case 1:
			if isMissing(gt) {
				if pattern == PatternDeNovo && parentsOfAffected[e.SampleID] {
					missingCritical = true
				}
				continue
			}
			if isVariant(gt) {
				unaffectedWithVariant = true
			}
		}
	}

	if !sawAffected || missingCritical {
		return SegregationUnknown
	}
	if affectedMissingVariant {
		return SegregationDoesNotSegregate
	}
	if dominantPatterns[pattern] && unaffectedWithVariant {
		return SegregationDoesNotSegregate
	}
	return SegregationSegregates
}

// syntheticPedigree builds a minimal three-person pedigree for trio/role-map/
// single-sample modes, so CheckSegregation has a uniform cohort shape to
// operate over regardless of which mode selected the roles. The index is
// treated as affected and parents as unaffected, mirroring how a clinical
// trio is conventionally coded in a PED file.
func syntheticPedigree(index, mother, father string) []model.PedigreeEntry {
	var entries []model.PedigreeEntry
	if index != "" {
		entries = append(entries, model.PedigreeEntry{
			SampleID: index, FatherID: father, MotherID: mother, AffectedStatus: 2,
		})
	}
	if mother != "" {
		entries = append(entries, model.PedigreeEntry{SampleID: mother, AffectedStatus: 1})
	}
	if father != "" {
		entries = append(entries, model.PedigreeEntry{SampleID: father, AffectedStatus: 1})
	}
	return entries
}
