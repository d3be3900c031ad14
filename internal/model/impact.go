package model

import "strings"

// Impact ordinals, MODIFIER < LOW < MODERATE < HIGH, per the transcript
// consequence data model.
const (
	ImpactModifier = "MODIFIER"
	ImpactLow      = "LOW"
	ImpactModerate = "MODERATE"
	ImpactHigh     = "HIGH"
)

// Sequence Ontology consequence terms, carried over from the teacher's
// consequence vocabulary (internal/annotate/annotation.go) since the term set
// itself is a fixed external vocabulary, not something this pipeline computes.
const (
	ConsequenceStopGained        = "stop_gained"
	ConsequenceFrameshiftVariant = "frameshift_variant"
	ConsequenceStopLost          = "stop_lost"
	ConsequenceStartLost         = "start_lost"
	ConsequenceSpliceAcceptor    = "splice_acceptor_variant"
	ConsequenceSpliceDonor       = "splice_donor_variant"

	ConsequenceMissenseVariant  = "missense_variant"
	ConsequenceInframeInsertion = "inframe_insertion"
	ConsequenceInframeDeletion  = "inframe_deletion"

	ConsequenceSynonymousVariant    = "synonymous_variant"
	ConsequenceSpliceRegion         = "splice_region_variant"
	ConsequenceStopRetained         = "stop_retained_variant"
	ConsequenceStartRetained        = "start_retained_variant"
	ConsequenceCodingSequenceVariant = "coding_sequence_variant"

	ConsequenceIntronVariant     = "intron_variant"
	Consequence5PrimeUTR         = "5_prime_UTR_variant"
	Consequence3PrimeUTR         = "3_prime_UTR_variant"
	ConsequenceUpstreamGene      = "upstream_gene_variant"
	ConsequenceDownstreamGene    = "downstream_gene_variant"
	ConsequenceIntergenicVariant = "intergenic_variant"
	ConsequenceNonCodingExon     = "non_coding_transcript_exon_variant"
	ConsequenceMatureMiRNA       = "mature_miRNA_variant"
)

// ImpactRank gives a numeric rank for impact comparison; higher is more
// severe. Used to pick the "most severe" impact across a comma-joined
// consequence term list, and to order transcript consequences.
func ImpactRank(impact string) int {
	switch impact {
	case ImpactHigh:
		return 3
	case ImpactModerate:
		return 2
	case ImpactLow:
		return 1
	default:
		return 0
	}
}

// ImpactForTerm returns the impact ordinal for a single SO consequence term.
// Unrecognised terms default to MODIFIER.
func ImpactForTerm(term string) string {
	switch term {
	case ConsequenceStopGained, ConsequenceFrameshiftVariant,
		ConsequenceStopLost, ConsequenceStartLost,
		ConsequenceSpliceAcceptor, ConsequenceSpliceDonor:
		return ImpactHigh
	case ConsequenceMissenseVariant, ConsequenceInframeInsertion,
		ConsequenceInframeDeletion, "inframe_variant":
		return ImpactModerate
	case ConsequenceSynonymousVariant, ConsequenceSpliceRegion,
		ConsequenceStopRetained, ConsequenceStartRetained,
		ConsequenceCodingSequenceVariant:
		return ImpactLow
	default:
		return ImpactModifier
	}
}

// ImpactForTerms returns the highest-ranked impact across a slice of
// consequence terms (e.g. {"splice_region_variant", "intron_variant"}).
// Each element is trimmed but not split, so it must hold a single term.
func ImpactForTerms(terms []string) string {
	best := ImpactModifier
	for _, term := range terms {
		impact := ImpactForTerm(strings.TrimSpace(term))
		if ImpactRank(impact) > ImpactRank(best) {
			best = impact
		}
	}
	return best
}
