// Package inheritance deduces Mendelian inheritance patterns per variant
// (spec §4.9): mode selection across pedigree/role-map/default-trio/
// single-sample, genotype classification, trio rule matching, whole-cohort
// PED-mode segregation, pattern prioritisation, and gene-scoped
// compound-heterozygous detection across variants.
//
// No direct precedent exists in the example corpus for pedigree/Mendelian
// analysis; this package follows the teacher's general style instead (small
// pure functions over explicit structs, table-driven tests), grounded on
// internal/vcf/variant.go's genotype-string normalization idiom.
package inheritance

import (
	"fmt"

	"github.com/vibe-annotate/vibe-annotate/internal/model"
)

// SafeAnalyzeVariant runs AnalyzeVariant behind a recover guard, so a panic
// analyzing one variant (a malformed genotype string, an unexpected pedigree
// shape) can never take down the whole batch (spec §7.7): it produces an
// error_analysis_failed result for the offending variant instead, leaving
// every other variant unaffected.
func SafeAnalyzeVariant(chrom string, genotypes map[string]string, cfg Config) (result model.InheritanceResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("inheritance analysis panicked: %v", r)
			result = model.InheritanceResult{
				PrioritizedPattern: PatternAnalysisFailed,
				PossiblePatterns:   []string{PatternAnalysisFailed},
			}
		}
	}()
	return AnalyzeVariant(chrom, genotypes, cfg), nil
}

// AnalyzeVariant deduces the inheritance result for one variant's genotype
// row. genotypes maps sample ID to that variant's genotype string (from
// model.GenotypeMap[key]). chrom is the variant's chromosome, used to gate
// the X-linked rules.
func AnalyzeVariant(chrom string, genotypes map[string]string, cfg Config) model.InheritanceResult {
	mode := SelectMode(cfg)
	index, mother, father := resolveTrio(mode, cfg)

	indexGT := sampleGenotype(genotypes, index)
	motherGT := sampleGenotype(genotypes, mother)
	fatherGT := sampleGenotype(genotypes, father)

	patterns := DeduceTrio(chrom, indexGT, motherGT, fatherGT)

	pedigree := cfg.Pedigree
	if mode != ModePedigree {
		pedigree = syntheticPedigree(index, mother, father)
	} else {
		patterns = append(patterns, cohortPatterns(chrom, cfg.Pedigree, genotypes)...)
		patterns = dedupePatterns(patterns)
	}

	segStatus := make(map[string]string, len(patterns))
	for _, p := range patterns {
		segStatus[p] = CheckSegregation(p, pedigree, genotypes)
	}

	return model.InheritanceResult{
		PrioritizedPattern: Prioritize(patterns, segStatus),
		PossiblePatterns:   patterns,
		SegregationStatus:  segStatus,
	}
}

// cohortPatterns implements spec §4.9's PED-mode extension: it tallies
// affected-with-variant, affected-without-variant, and unaffected-with-variant
// counts across the whole pedigree for the current variant, and returns the
// additional patterns consistent with every affected individual carrying the
// variant. De novo only fires here when both of the index's parents are
// genotyped and reference, matching the stricter whole-cohort rule text.
func cohortPatterns(chrom string, entries []model.PedigreeEntry, genotypes map[string]string) []string {
	affectedWithVariant, affectedWithoutVariant, unaffectedWithVariant := 0, 0, 0
	anyAffected := false

	for _, e := range entries {
		gt := genotypes[e.SampleID]
		switch e.AffectedStatus {
		case 2:
			anyAffected = true
			if isVariant(gt) {
				affectedWithVariant++
			} else {
				affectedWithoutVariant++
			}
		case 1:
			if isVariant(gt) {
				unaffectedWithVariant++
			}
		}
	}

	if !anyAffected || affectedWithoutVariant > 0 {
		return nil
	}

	var patterns []string
	onX := isXChromosome(chrom)

	if !onX {
		patterns = append(patterns, PatternAutosomalDominant)
	} else {
		patterns = append(patterns, PatternXLinkedDominant)
	}

	if unaffectedWithVariant == 0 {
		if entry := firstAffected(entries); entry != nil {
			motherGT, fatherGT := genotypes[entry.MotherID], genotypes[entry.FatherID]
			if entry.MotherID != "" && entry.MotherID != "0" && entry.FatherID != "" && entry.FatherID != "0" &&
				!isMissing(motherGT) && !isMissing(fatherGT) && isRef(motherGT) && isRef(fatherGT) {
				patterns = append(patterns, PatternDeNovo)
			}
		}
	}

	return patterns
}

func dedupePatterns(patterns []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, p := range patterns {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}
