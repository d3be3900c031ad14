package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/vibe-annotate/vibe-annotate/internal/extract"
	"github.com/vibe-annotate/vibe-annotate/internal/model"
	"github.com/vibe-annotate/vibe-annotate/internal/vcf"
	"github.com/vibe-annotate/vibe-annotate/internal/vcfout"
)

// outputMeta mirrors spec §6's JSON meta block exactly.
type outputMeta struct {
	Input           string   `json:"input"`
	BatchSize       int      `json:"batchSize"`
	BatchProcessing bool     `json:"batchProcessing"`
	StepsPerformed  []string `json:"stepsPerformed"`
	StartTime       string   `json:"startTime"`
	EndTime         string   `json:"endTime"`
	DurationMs      int64    `json:"durationMs"`
}

func newMeta(input string, batchSize int, steps []string, start, end time.Time) outputMeta {
	return outputMeta{
		Input:           input,
		BatchSize:       batchSize,
		BatchProcessing: batchSize > 1,
		StepsPerformed:  steps,
		StartTime:       start.UTC().Format(time.RFC3339Nano),
		EndTime:         end.UTC().Format(time.RFC3339Nano),
		DurationMs:      end.Sub(start).Milliseconds(),
	}
}

// jsonEnvelope is the top-level JSON output document spec §6 defines.
type jsonEnvelope struct {
	Meta            outputMeta                          `json:"meta"`
	AnnotationData  []map[string]interface{}             `json:"annotationData"`
	VCFRecordMap    map[model.VariantKey]vcfout.OriginalRecord `json:"vcfRecordMap,omitempty"`
	VCFHeaderLines  []string                             `json:"vcfHeaderLines,omitempty"`
	PedigreeData    []model.PedigreeEntry                `json:"pedigreeData,omitempty"`
}

// renderJSON builds the full JSON output envelope.
func renderJSON(meta outputMeta, annotations []model.AnnotationRecord, vcfRecordMap map[model.VariantKey]vcfout.OriginalRecord, vcfHeaderLines []string, pedigree []model.PedigreeEntry) (string, error) {
	data := make([]map[string]interface{}, len(annotations))
	for i, ann := range annotations {
		data[i] = extract.AnnotationToMap(ann)
	}
	env := jsonEnvelope{
		Meta:           meta,
		AnnotationData: data,
		VCFRecordMap:   vcfRecordMap,
		VCFHeaderLines: vcfHeaderLines,
		PedigreeData:   pedigree,
	}
	out, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal json output: %w", err)
	}
	return string(out), nil
}

// defaultColumns is the built-in tabular column set used when the driver
// isn't configured with an extract-config file of its own; it mirrors
// spec §4.7's annotation/consequence-scope split.
func defaultColumns() []extract.ColumnConfig {
	return []extract.ColumnConfig{
		{Name: "original_input", Target: "original_input", Default: ""},
		{Name: "variant_key", Target: "variant_key", Default: ""},
		{Name: "most_severe_consequence", Target: "most_severe_consequence", Default: ""},
		{Name: "gene_symbol", Target: "consequence.gene_symbol", Default: ""},
		{Name: "impact", Target: "consequence.impact", Default: ""},
		{Name: "hgvsc", Target: "consequence.hgvsc", Default: ""},
		{Name: "hgvsp", Target: "consequence.hgvsp", Default: ""},
		{Name: "dosage_sensitivity", Target: "dosage_sensitivity", Default: ""},
		{Name: "cadd_phred", Target: "cadd_phred", Default: 0},
		{Name: "prioritized_pattern", Target: "prioritized_pattern", Default: ""},
	}
}

// renderTabular renders annotations as CSV/TSV per spec §4.7.
func renderTabular(annotations []model.AnnotationRecord, columns []extract.ColumnConfig, delimiter rune) string {
	rows := extract.FlattenAnnotationData(annotations, columns)
	return extract.FormatToTabular(rows, columns, delimiter)
}

// renderVCF renders annotations as a VCF v4.2 document per spec §4.10, using
// the original records keyed by variant key (when available) to recover
// per-line POS/REF/ALT/QUAL/FILTER/INFO.
func renderVCF(headerLines []string, annotations []model.AnnotationRecord, vcfRecordMap map[model.VariantKey]*vcf.Variant) string {
	originals := vcfout.FromVCFRecordMap(vcfRecordMap)
	groups := vcfout.Group(annotations, originals)
	return vcfout.Format(headerLines, groups)
}

// renderSchema renders the column schema of the tabular/JSON output shape
// (the wire-shaped keys internal/extract.AnnotationToMap/ConsequenceToMap
// expose), so external tooling can introspect available extract targets
// without parsing source.
func renderSchema() (string, error) {
	schema := struct {
		AnnotationFields  []string `json:"annotationFields"`
		ConsequenceFields []string `json:"consequenceFields"`
	}{
		AnnotationFields:  sortedKeys(extract.AnnotationToMap(model.AnnotationRecord{})),
		ConsequenceFields: sortedKeys(extract.ConsequenceToMap(model.TranscriptConsequence{})),
	}
	out, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal schema output: %w", err)
	}
	return string(out), nil
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j-1] > keys[j]; j-- {
			keys[j-1], keys[j] = keys[j], keys[j-1]
		}
	}
	return keys
}

// applyPickOutput filters every annotation's transcript consequences down to
// only the VEP-style "pick" transcript when --pick-output is set, leaving
// annotations with no picked transcript untouched.
func applyPickOutput(annotations []model.AnnotationRecord) {
	for i := range annotations {
		tcs := annotations[i].TranscriptConsequences
		for _, tc := range tcs {
			if tc.Pick {
				annotations[i].TranscriptConsequences = []model.TranscriptConsequence{tc}
				break
			}
		}
	}
}
