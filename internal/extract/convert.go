package extract

import "github.com/vibe-annotate/vibe-annotate/internal/model"

// annotationToMap renders an AnnotationRecord into the generic
// map[string]interface{}/[]interface{} shape resolvePath walks. Keys mirror
// the wire field names a VEP/recoder response would use, so extract configs
// written against those field names work unchanged against locally-built
// annotation records.
// AnnotationToMap is exported for reuse by internal/scoring, which needs the
// same wire-shaped map to resolve variable paths against.
func AnnotationToMap(ann model.AnnotationRecord) map[string]interface{} {
	return annotationToMap(ann)
}

func annotationToMap(ann model.AnnotationRecord) map[string]interface{} {
	m := map[string]interface{}{
		"original_input":          ann.OriginalInput,
		"input_format":            string(ann.InputFormat),
		"input":                   ann.Input,
		"variant_key":             string(ann.VariantKey),
		"allele":                  ann.Allele,
		"vcf_string":              ann.VCFString,
		"seq_region_name":         ann.SeqRegionName,
		"start":                   ann.Start,
		"end":                     ann.End,
		"allele_string":           ann.AlleleString,
		"most_severe_consequence": ann.MostSevereConsequence,
		"bp_overlap":              ann.BPOverlap,
		"percentage_overlap":      ann.PercentageOverlap,
		"dosage_sensitivity":      ann.DosageSensitivity,
		"cadd_phred":              ann.CADDPhred,
	}

	phenotypes := make([]interface{}, len(ann.Phenotypes))
	for i, p := range ann.Phenotypes {
		phenotypes[i] = p
	}
	m["phenotypes"] = phenotypes

	tcs := make([]interface{}, len(ann.TranscriptConsequences))
	for i, tc := range ann.TranscriptConsequences {
		tcs[i] = consequenceToMap(tc)
	}
	m["transcript_consequences"] = tcs

	overlaps := make([]interface{}, len(ann.FeatureOverlaps))
	for i, fo := range ann.FeatureOverlaps {
		overlaps[i] = map[string]interface{}{"source": fo.Source, "name": fo.Name}
	}
	m["feature_overlaps"] = overlaps

	if ann.Inheritance != nil {
		m["prioritized_pattern"] = ann.Inheritance.PrioritizedPattern
	}
	if ann.Scores != nil {
		scores := make(map[string]interface{}, len(ann.Scores))
		for k, v := range ann.Scores {
			scores[k] = v
		}
		m["scores"] = scores
	}

	return m
}

// ConsequenceToMap is exported for reuse by internal/scoring.
func ConsequenceToMap(tc model.TranscriptConsequence) map[string]interface{} {
	return consequenceToMap(tc)
}

func consequenceToMap(tc model.TranscriptConsequence) map[string]interface{} {
	terms := make([]interface{}, len(tc.ConsequenceTerms))
	for i, t := range tc.ConsequenceTerms {
		terms[i] = t
	}

	return map[string]interface{}{
		"transcript_id":       tc.TranscriptID,
		"gene_id":             tc.GeneID,
		"gene_symbol":         tc.GeneSymbol,
		"feature_type":        tc.FeatureType,
		"consequence_terms":   terms,
		"impact":              tc.Impact,
		"biotype":             tc.Biotype,
		"hgvsc":               tc.HGVSc,
		"hgvsp":               tc.HGVSp,
		"protein_start":       tc.ProteinStart,
		"protein_end":         tc.ProteinEnd,
		"amino_acids":         tc.AminoAcids,
		"codons":              tc.Codons,
		"sift_prediction":     tc.SIFTPrediction,
		"polyphen_prediction": tc.PolyPhenPrediction,
		"pick":                tc.Pick,
		"mane":                tc.MANE,
		"canonical":           tc.Canonical,
		"cdna_position":       tc.CDNAPosition,
		"cds_position":        tc.CDSPosition,
		"exon_number":         tc.ExonNumber,
		"intron_number":       tc.IntronNumber,
	}
}
