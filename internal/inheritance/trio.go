package inheritance

// Pattern name constants, drawn verbatim from spec §4.9's enumerated set.
const (
	PatternDeNovo                       = "de_novo"
	PatternDeNovoCandidate               = "de_novo_candidate"
	PatternAutosomalDominant             = "autosomal_dominant"
	PatternAutosomalDominantPossible     = "autosomal_dominant_possible"
	PatternAutosomalRecessive            = "autosomal_recessive"
	PatternAutosomalRecessivePossible    = "autosomal_recessive_possible"
	PatternXLinkedDominant               = "x_linked_dominant"
	PatternXLinkedRecessive              = "x_linked_recessive"
	PatternXLinkedRecessivePossible      = "x_linked_recessive_possible"
	PatternHomozygous                    = "homozygous"
	PatternPotentialXLinked              = "potential_x_linked"
	PatternDominant                      = "dominant"
	PatternReference                     = "reference"
	PatternNonMendelian                  = "non_mendelian"
	PatternUnknown                       = "unknown"
	PatternUnknownWithMissingData        = "unknown_with_missing_data"
	PatternCompoundHeterozygous          = "compound_heterozygous"
	PatternCompoundHeterozygousPossible  = "compound_heterozygous_possible"
	PatternAnalysisFailed                = "error_analysis_failed"
)

// DeduceTrio applies spec §4.9's trio rules to a single variant's index,
// mother, and father genotypes, returning every pattern the genotypes are
// consistent with. Each rule fires only when both parents are genotyped;
// when exactly one parent is missing, the corresponding "_possible" pattern
// fires instead; when both are missing, only genotype-shape patterns
// (homozygous/dominant/potential_x_linked) or unknown fire.
//
// The abbreviated rules spec.md §4.9 states (de novo, AR, AD, XLR) are
// implemented as given; x_linked_dominant, homozygous, potential_x_linked,
// dominant, non_mendelian, unknown, and unknown_with_missing_data are not
// individually specified there, so this function's handling of them is this
// package's own deterministic extension of the stated rules (see DESIGN.md).
func DeduceTrio(chrom, index, mother, father string) []string {
	if index == "" || isMissing(index) {
		return []string{PatternUnknown}
	}
	if isRef(index) {
		return []string{PatternReference}
	}

	onX := isXChromosome(chrom)
	motherKnown := mother != "" && !isMissing(mother)
	fatherKnown := father != "" && !isMissing(father)

	var patterns []string

	switch {
	case motherKnown && fatherKnown:
		patterns = append(patterns, trioBothParentsKnown(onX, index, mother, father)...)
	case motherKnown || fatherKnown:
		patterns = append(patterns, trioOneParentKnown(onX, index, motherKnown, mother, fatherKnown, father)...)
	default:
		patterns = append(patterns, trioNoParentsKnown(onX, index)...)
	}

	if isHomAlt(index) {
		patterns = appendUnique(patterns, PatternHomozygous)
	}

	if len(patterns) == 0 {
		if motherKnown || fatherKnown {
			patterns = append(patterns, PatternUnknownWithMissingData)
		} else {
			patterns = append(patterns, PatternUnknown)
		}
	}

	return patterns
}

func trioBothParentsKnown(onX bool, index, mother, father string) []string {
	var patterns []string

	if isVariant(index) && isRef(mother) && isRef(father) {
		patterns = append(patterns, PatternDeNovo)
	}
	if !onX && isHomAlt(index) && isHet(mother) && isHet(father) {
		patterns = append(patterns, PatternAutosomalRecessive)
	}
	if !onX && isHet(index) && (isHet(mother) || isHet(father)) {
		patterns = append(patterns, PatternAutosomalDominant)
	}
	if onX && isVariant(index) && (isHet(mother) || isHomAlt(mother)) && isRef(father) {
		patterns = append(patterns, PatternXLinkedRecessive)
	}
	if onX && isHet(index) && (isHet(mother) || isHomAlt(mother) || isVariant(father)) {
		patterns = appendUnique(patterns, PatternXLinkedDominant)
	}

	if len(patterns) == 0 {
		patterns = append(patterns, PatternNonMendelian)
	}

	return patterns
}

func trioOneParentKnown(onX bool, index string, motherKnown bool, mother string, fatherKnown bool, father string) []string {
	var patterns []string
	knownParent := mother
	if fatherKnown {
		knownParent = father
	}

	if isVariant(index) && isRef(knownParent) {
		patterns = append(patterns, PatternDeNovoCandidate)
	}
	if !onX && isHomAlt(index) && isHet(knownParent) {
		patterns = append(patterns, PatternAutosomalRecessivePossible)
	}
	if !onX && isHet(index) && isHet(knownParent) {
		patterns = append(patterns, PatternAutosomalDominantPossible)
	}
	if onX && isVariant(index) {
		switch {
		case motherKnown && (isHet(mother) || isHomAlt(mother)):
			patterns = append(patterns, PatternXLinkedRecessivePossible)
		case fatherKnown && isRef(father):
			patterns = append(patterns, PatternXLinkedRecessivePossible)
		}
	}

	return patterns
}

func trioNoParentsKnown(onX bool, index string) []string {
	switch {
	case onX && isVariant(index):
		return []string{PatternPotentialXLinked}
	case isHomAlt(index):
		return []string{PatternHomozygous}
	case isHet(index):
		return []string{PatternDominant}
	default:
		return []string{PatternUnknown}
	}
}

func appendUnique(patterns []string, p string) []string {
	for _, existing := range patterns {
		if existing == p {
			return patterns
		}
	}
	return append(patterns, p)
}
