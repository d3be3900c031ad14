package vcfout

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vibe-annotate/vibe-annotate/internal/model"
)

// vlCsqFormat is the fixed CSQ sub-field order spec §4.10 names; every
// field is URL-encoded, and every field except Allele and
// Existing_variation (taken from the annotation record itself) goes through
// the current→most-severe→first-non-empty fallback cascade.
var vlCsqFormat = []string{
	"Allele",
	"Consequence",
	"IMPACT",
	"SYMBOL",
	"Gene",
	"Feature_type",
	"Feature",
	"BIOTYPE",
	"HGVSc",
	"HGVSp",
	"Protein_position",
	"Amino_acids",
	"Codons",
	"Existing_variation",
	"SIFT",
	"PolyPhen",
}

// buildCSQEntries renders one CSQ entry per transcript consequence of ann;
// an annotation with zero consequences still emits a single entry carrying
// whatever annotation-level fields (Allele, Existing_variation) apply.
func buildCSQEntries(ann model.AnnotationRecord) []string {
	tcs := ann.TranscriptConsequences
	if len(tcs) == 0 {
		return []string{csqEntry(ann, model.TranscriptConsequence{}, nil)}
	}
	entries := make([]string, len(tcs))
	for i, tc := range tcs {
		entries[i] = csqEntry(ann, tc, tcs)
	}
	return entries
}

func csqEntry(ann model.AnnotationRecord, current model.TranscriptConsequence, all []model.TranscriptConsequence) string {
	fields := make([]string, len(vlCsqFormat))
	for i, name := range vlCsqFormat {
		fields[i] = urlEncodeCSQField(csqFieldValue(name, ann, current, all))
	}
	return strings.Join(fields, "|")
}

func csqFieldValue(name string, ann model.AnnotationRecord, current model.TranscriptConsequence, all []model.TranscriptConsequence) string {
	switch name {
	case "Allele":
		return ann.Allele
	case "Existing_variation":
		if ann.InputFormat == model.FormatHGVS {
			return ann.OriginalInput
		}
		return ""
	}

	extract := transcriptExtractor(name)
	if extract == nil {
		return ""
	}
	return cascadeField(extract, current, all, ann.MostSevereConsequence)
}

func transcriptExtractor(name string) func(model.TranscriptConsequence) string {
	switch name {
	case "Consequence":
		return func(tc model.TranscriptConsequence) string { return strings.Join(tc.ConsequenceTerms, "&") }
	case "IMPACT":
		return func(tc model.TranscriptConsequence) string { return tc.Impact }
	case "SYMBOL":
		return func(tc model.TranscriptConsequence) string { return tc.GeneSymbol }
	case "Gene":
		return func(tc model.TranscriptConsequence) string { return tc.GeneID }
	case "Feature_type":
		return func(tc model.TranscriptConsequence) string { return tc.FeatureType }
	case "Feature":
		return func(tc model.TranscriptConsequence) string { return tc.TranscriptID }
	case "BIOTYPE":
		return func(tc model.TranscriptConsequence) string { return tc.Biotype }
	case "HGVSc":
		return func(tc model.TranscriptConsequence) string { return tc.HGVSc }
	case "HGVSp":
		return func(tc model.TranscriptConsequence) string { return tc.HGVSp }
	case "Protein_position":
		return func(tc model.TranscriptConsequence) string { return formatProteinPosition(tc) }
	case "Amino_acids":
		return func(tc model.TranscriptConsequence) string { return tc.AminoAcids }
	case "Codons":
		return func(tc model.TranscriptConsequence) string { return tc.Codons }
	case "SIFT":
		return func(tc model.TranscriptConsequence) string { return tc.SIFTPrediction }
	case "PolyPhen":
		return func(tc model.TranscriptConsequence) string { return tc.PolyPhenPrediction }
	default:
		return nil
	}
}

func formatProteinPosition(tc model.TranscriptConsequence) string {
	if tc.ProteinStart == 0 && tc.ProteinEnd == 0 {
		return ""
	}
	if tc.ProteinStart == tc.ProteinEnd || tc.ProteinEnd == 0 {
		return strconv.FormatInt(tc.ProteinStart, 10)
	}
	return fmt.Sprintf("%d-%d", tc.ProteinStart, tc.ProteinEnd)
}

// cascadeField implements spec §4.10's fallback order: prefer the current
// consequence; if empty, fall back to whichever consequence in all carries
// the annotation's most_severe_consequence term; if still empty, fall back
// to the first non-empty value across every consequence.
func cascadeField(extract func(model.TranscriptConsequence) string, current model.TranscriptConsequence, all []model.TranscriptConsequence, mostSevere string) string {
	if v := extract(current); v != "" {
		return v
	}

	if mostSevere != "" {
		for _, tc := range all {
			if containsTerm(tc.ConsequenceTerms, mostSevere) {
				if v := extract(tc); v != "" {
					return v
				}
				break
			}
		}
	}

	for _, tc := range all {
		if v := extract(tc); v != "" {
			return v
		}
	}
	return ""
}

func containsTerm(terms []string, term string) bool {
	for _, t := range terms {
		if t == term {
			return true
		}
	}
	return false
}

// urlEncodeCSQField percent-encodes every character outside a small safe set
// (ASCII letters and digits plus - _ . ~ / : > < ( ) ' &), which covers the
// VCF INFO/CSQ delimiters (whitespace, ';', '=', ',', '|'). An encoded
// character is written as '%' followed by its code point in upper-case hex.
func urlEncodeCSQField(s string) string {
	var b strings.Builder
	for _, r := range s {
		if isSafeCSQRune(r) {
			b.WriteRune(r)
		} else {
			fmt.Fprintf(&b, "%%%02X", r)
		}
	}
	return b.String()
}

func isSafeCSQRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	}
	switch r {
	case '-', '_', '.', '~', '/', ':', '>', '<', '(', ')', '\'', '&':
		return true
	}
	return false
}
