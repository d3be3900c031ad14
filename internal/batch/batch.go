// Package batch implements the central coordinator of the annotation
// pipeline (spec §4.6): given N original inputs, it produces annotation
// records such that every record carries its originalInput back and forth
// faithfully, while minimising remote calls by classifying, de-duplicating,
// and batching per format.
//
// Grounded on the teacher's internal/annotate/parallel.go WorkItem/WorkResult
// sequencing discipline (Seq-indexed results re-associated in input order),
// adapted from a parallel worker pool to the sequential, chunked remote-call
// discipline spec §5 requires (recoder/VEP calls are issued in order, not
// fanned out, since the remote services rate-limit aggressively).
package batch

import (
	"context"
	"fmt"
	"sort"

	"github.com/vibe-annotate/vibe-annotate/internal/detect"
	"github.com/vibe-annotate/vibe-annotate/internal/model"
	"github.com/vibe-annotate/vibe-annotate/internal/pipeerr"
	"github.com/vibe-annotate/vibe-annotate/internal/recoder"
	"github.com/vibe-annotate/vibe-annotate/internal/vep"
)

// Processor is the batch coordinator. FailFast controls Open Question 3's
// resolution: when false (the default), a canonicalisation failure on one
// input is attributed to that input and the rest of the batch proceeds; when
// true, the first such failure aborts the whole batch.
type Processor struct {
	Recoder  *recoder.Client
	VEP      *vep.Client
	FailFast bool
}

// New builds a Processor from already-constructed recoder/VEP clients.
func New(r *recoder.Client, v *vep.Client) *Processor {
	return &Processor{Recoder: r, VEP: v}
}

// inputError pairs a failed original input with its error, for partial-
// failure mode.
type inputError struct {
	OriginalInput string
	Err           error
}

// Result is the outcome of processing one batch of original inputs.
type Result struct {
	Annotations []model.AnnotationRecord
	Errors      []inputError
}

// hgvsEntry is one (originalInput, alleleKey, vcfString) tuple that
// canonicalised to a shared formatted VEP region (spec §4.6 step 4).
type hgvsEntry struct {
	originalInput string
	alleleKey     string
	vcfString     string
	recoderData   model.Node
}

// Process runs the full algorithm of spec §4.6 over a slice of original
// input strings, preserving input order in the final output (annotations
// for a given input are grouped together, in the order their input
// appeared).
func (p *Processor) Process(ctx context.Context, inputs []string, options map[string]string, cacheEnabled bool) (Result, error) {
	perInput := make([][]model.AnnotationRecord, len(inputs))
	var errs []inputError

	fail := func(idx int, err error) error {
		errs = append(errs, inputError{OriginalInput: inputs[idx], Err: err})
		if p.FailFast {
			return err
		}
		return nil
	}

	// Step 1: classify.
	formats := make([]model.InputFormat, len(inputs))
	for i, in := range inputs {
		f, err := detect.Classify(in)
		if err != nil {
			if ferr := fail(i, err); ferr != nil {
				return Result{}, ferr
			}
			continue
		}
		formats[i] = f
	}

	// Step 2: VCF path.
	var vcfIdx []int
	var vcfRegions []string
	for i, f := range formats {
		if f != model.FormatVCF {
			continue
		}
		chrom, pos, ref, alt, ok := model.ParseCanonicalVCF(inputs[i])
		if !ok {
			if ferr := fail(i, pipeerr.Wrap(pipeerr.ErrValidation, fmt.Errorf("malformed VCF input %q", inputs[i]))); ferr != nil {
				return Result{}, ferr
			}
			continue
		}
		vcfIdx = append(vcfIdx, i)
		vcfRegions = append(vcfRegions, vep.FormatSNVRegion(chrom, pos, ref, alt))
	}
	if len(vcfRegions) > 0 {
		nodes, err := p.VEP.AnnotateRegions(ctx, vcfRegions, options, cacheEnabled)
		if err != nil {
			return Result{}, err
		}
		for j, idx := range vcfIdx {
			rec := recordFromNode(nodes[j])
			rec.OriginalInput = inputs[idx]
			rec.InputFormat = model.FormatVCF
			rec.Input = vcfRegions[j]
			chrom, pos, ref, alt, _ := model.ParseCanonicalVCF(inputs[idx])
			rec.VariantKey = model.NewVariantKey(chrom, pos, ref, alt)
			rec.VCFString = inputs[idx]
			perInput[idx] = append(perInput[idx], rec)
		}
	}

	// Step 3: CNV path.
	var cnvIdx []int
	var cnvRegions []string
	for i, f := range formats {
		if f != model.FormatCNV {
			continue
		}
		chrom, start, end, kind, ok := model.ParseCNV(inputs[i])
		if !ok {
			if ferr := fail(i, pipeerr.Wrap(pipeerr.ErrValidation, fmt.Errorf("malformed CNV input %q", inputs[i]))); ferr != nil {
				return Result{}, ferr
			}
			continue
		}
		cnvIdx = append(cnvIdx, i)
		cnvRegions = append(cnvRegions, vep.FormatCNVRegion(chrom, start, end, kind))
	}
	if len(cnvRegions) > 0 {
		nodes, err := p.VEP.AnnotateRegions(ctx, cnvRegions, options, cacheEnabled)
		if err != nil {
			return Result{}, err
		}
		for j, idx := range cnvIdx {
			rec := recordFromNode(nodes[j])
			rec.OriginalInput = inputs[idx]
			rec.InputFormat = model.FormatCNV
			rec.Input = cnvRegions[j]
			chrom, start, end, kind, _ := model.ParseCNV(inputs[idx])
			rec.VariantKey = model.NewVariantKey(chrom, start, kind, fmt.Sprintf("%d", end))
			perInput[idx] = append(perInput[idx], rec)
		}
	}

	// Step 4: HGVS/rsID path.
	var hgvsIdx []int
	var hgvsInputs []string
	for i, f := range formats {
		if f != model.FormatHGVS {
			continue
		}
		hgvsIdx = append(hgvsIdx, i)
		hgvsInputs = append(hgvsInputs, inputs[i])
	}
	if len(hgvsInputs) > 0 {
		recoded, err := p.Recoder.RecodeMany(ctx, hgvsInputs, options, cacheEnabled)
		if err != nil {
			return Result{}, err
		}

		regionToEntries := map[string][]hgvsEntry{}
		var orderedRegions []string
		seenRegion := map[string]bool{}

		for j, result := range recoded {
			idx := hgvsIdx[j]
			var anyCanonical bool
			// result.Alleles is a map; iterate allele labels in sorted order
			// so VEP submission order (and per-input annotation order) is
			// deterministic across runs rather than following map iteration.
			alleleKeys := make([]string, 0, len(result.Alleles))
			for k := range result.Alleles {
				alleleKeys = append(alleleKeys, k)
			}
			sort.Strings(alleleKeys)
			for _, alleleKey := range alleleKeys {
				allele := result.Alleles[alleleKey]
				for _, vcfStr := range allele.VCFString {
					chrom, pos, ref, alt, ok := model.ParseCanonicalVCF(vcfStr)
					if !ok {
						continue
					}
					anyCanonical = true
					region := vep.FormatSNVRegion(chrom, pos, ref, alt)
					regionToEntries[region] = append(regionToEntries[region], hgvsEntry{
						originalInput: inputs[idx],
						alleleKey:     allele.AlleleKey,
						vcfString:     vcfStr,
						recoderData:   allele.Raw,
					})
					if !seenRegion[region] {
						seenRegion[region] = true
						orderedRegions = append(orderedRegions, region)
					}
				}
			}
			if !anyCanonical {
				if ferr := fail(idx, pipeerr.Wrap(pipeerr.ErrCanonicalisation, fmt.Errorf("no canonical VCF string for %q", inputs[idx]))); ferr != nil {
					return Result{}, ferr
				}
			}
		}

		if len(orderedRegions) > 0 {
			nodes, err := p.VEP.AnnotateRegions(ctx, orderedRegions, options, cacheEnabled)
			if err != nil {
				return Result{}, err
			}
			for j, region := range orderedRegions {
				node := nodes[j]
				for _, e := range regionToEntries[region] {
					rec := recordFromNode(node)
					rec.OriginalInput = e.originalInput
					rec.InputFormat = model.FormatHGVS
					rec.Input = region
					rec.Allele = e.alleleKey
					rec.VCFString = e.vcfString
					rec.RecoderData = e.recoderData
					chrom, pos, ref, alt, _ := model.ParseCanonicalVCF(e.vcfString)
					rec.VariantKey = model.NewVariantKey(chrom, pos, ref, alt)

					// Find the originating index to group output correctly;
					// inputs may repeat, so match by value from hgvsIdx/hgvsInputs.
					for _, idx := range hgvsIdx {
						if inputs[idx] == e.originalInput {
							perInput[idx] = append(perInput[idx], rec)
							break
						}
					}
				}
			}
		}
	}

	var out []model.AnnotationRecord
	for _, recs := range perInput {
		out = append(out, recs...)
	}
	return Result{Annotations: out, Errors: errs}, nil
}

func recordFromNode(node model.Node) model.AnnotationRecord {
	rec := model.AnnotationRecord{}
	rec.SeqRegionName = node.Get("seq_region_name").AsString()
	rec.Start = int64(node.Get("start").Number())
	rec.End = int64(node.Get("end").Number())
	rec.AlleleString = node.Get("allele_string").AsString()
	rec.MostSevereConsequence = node.Get("most_severe_consequence").AsString()

	for _, tcNode := range node.Get("transcript_consequences").Array() {
		rec.TranscriptConsequences = append(rec.TranscriptConsequences, transcriptConsequenceFromNode(tcNode))
	}

	rec.BPOverlap = int64(node.Get("bp_overlap").Number())
	rec.PercentageOverlap = node.Get("percentage_overlap").Number()
	for _, p := range node.Get("phenotypes").Array() {
		rec.Phenotypes = append(rec.Phenotypes, p.AsString())
	}
	rec.DosageSensitivity = node.Get("dosage_sensitivity").AsString()
	rec.CADDPhred = node.Get("cadd_phred").Number()

	return rec
}

func transcriptConsequenceFromNode(n model.Node) model.TranscriptConsequence {
	tc := model.TranscriptConsequence{
		TranscriptID: n.Get("transcript_id").AsString(),
		GeneID:       n.Get("gene_id").AsString(),
		GeneSymbol:   n.Get("gene_symbol").AsString(),
		FeatureType:  n.Get("feature_type").AsString(),
		Biotype:      n.Get("biotype").AsString(),
		HGVSc:        n.Get("hgvsc").AsString(),
		HGVSp:        n.Get("hgvsp").AsString(),
		ProteinStart: int64(n.Get("protein_start").Number()),
		ProteinEnd:   int64(n.Get("protein_end").Number()),
		AminoAcids:   n.Get("amino_acids").AsString(),
		Codons:       n.Get("codons").AsString(),
		SIFTPrediction:     n.Get("sift_prediction").AsString(),
		PolyPhenPrediction: n.Get("polyphen_prediction").AsString(),
		Pick:         n.Get("pick").Number() == 1 || n.Get("pick").Bool(),
		MANE:         n.Get("mane_select").AsString() != "" || n.Get("mane").Bool(),
		Canonical:    n.Get("canonical").Number() == 1 || n.Get("canonical").Bool(),
		CDNAPosition: int64(n.Get("cdna_start").Number()),
		CDSPosition:  int64(n.Get("cds_start").Number()),
		ExonNumber:   n.Get("exon").AsString(),
		IntronNumber: n.Get("intron").AsString(),
	}
	for _, term := range n.Get("consequence_terms").Array() {
		tc.ConsequenceTerms = append(tc.ConsequenceTerms, term.AsString())
	}
	if impact := n.Get("impact").AsString(); impact != "" {
		tc.Impact = impact
	} else {
		tc.Impact = model.ImpactForTerms(tc.ConsequenceTerms)
	}
	return tc
}
