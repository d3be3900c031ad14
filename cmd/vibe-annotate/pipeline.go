package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/vibe-annotate/vibe-annotate/internal/batch"
	"github.com/vibe-annotate/vibe-annotate/internal/cache"
	"github.com/vibe-annotate/vibe-annotate/internal/extract"
	"github.com/vibe-annotate/vibe-annotate/internal/features"
	"github.com/vibe-annotate/vibe-annotate/internal/httpclient"
	"github.com/vibe-annotate/vibe-annotate/internal/inheritance"
	"github.com/vibe-annotate/vibe-annotate/internal/model"
	"github.com/vibe-annotate/vibe-annotate/internal/recoder"
	"github.com/vibe-annotate/vibe-annotate/internal/scores"
	"github.com/vibe-annotate/vibe-annotate/internal/scoring"
	"github.com/vibe-annotate/vibe-annotate/internal/stream"
	"github.com/vibe-annotate/vibe-annotate/internal/vcf"
	"github.com/vibe-annotate/vibe-annotate/internal/vcfout"
	"github.com/vibe-annotate/vibe-annotate/internal/vep"
)

// options bundles every flag runAnnotate needs; built from cobra flags in
// main.go and kept separate from cobra/viper so the pipeline itself stays
// framework-agnostic and testable.
type options struct {
	variants        []string
	variantsFile    string
	outputFormat    string
	save            bool
	outputFile      string
	cacheEnabled    bool
	pickOutput      bool
	scoringConfig   string
	pedFile         string
	calcInheritance bool
	sampleMap       string
	chunkSize       int
	bedFiles        []string
	geneLists       []string
	jsonGenesFiles  []string
	jsonGeneMapping string
	scoresDB        string
	stream          bool
	delimiter       rune
	ensemblBaseURL  string
}

// loadedInputs is what collectInputs produces: the tokenised strings fed to
// batch.Process, plus (when the source was a real VCF file) the extra
// context spec §6 says the core expects alongside them.
type loadedInputs struct {
	tokens       []string
	vcfRecordMap map[model.VariantKey]*vcf.Variant
	headerLines  []string
	sampleNames  []string
	genotypes    model.GenotypeMap
}

// collectInputs gathers variant tokens from --variants and --variants-file,
// --variants tokens first. A --variants-file ending in .vcf/.vcf.gz is
// parsed as a real VCF and converted into canonical CHROM-POS-REF-ALT
// tokens, one per (possibly split) allele, carrying along the record map,
// header, and per-sample genotypes the formatter and inheritance engine
// need; any other file is treated as one variant per line. Only the file
// name decides this; the file's content is not inspected.
func collectInputs(opts options) (loadedInputs, error) {
	var li loadedInputs
	li.tokens = append(li.tokens, opts.variants...)

	if opts.variantsFile == "" {
		return li, nil
	}

	if looksLikeVCF(opts.variantsFile) {
		vcfInputs, err := collectFromVCF(opts.variantsFile)
		vcfInputs.tokens = append(li.tokens, vcfInputs.tokens...)
		return vcfInputs, err
	}

	f, err := os.Open(opts.variantsFile)
	if err != nil {
		return li, fmt.Errorf("open variants file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		li.tokens = append(li.tokens, line)
	}
	if err := scanner.Err(); err != nil {
		return li, fmt.Errorf("read variants file: %w", err)
	}
	return li, nil
}

func looksLikeVCF(path string) bool {
	lower := strings.ToLower(path)
	lower = strings.TrimSuffix(lower, ".gz")
	return strings.HasSuffix(lower, ".vcf")
}

func collectFromVCF(path string) (loadedInputs, error) {
	var li loadedInputs

	parser, err := vcf.NewParser(path)
	if err != nil {
		return li, fmt.Errorf("open vcf file: %w", err)
	}
	defer parser.Close()

	li.headerLines = parser.Header()
	li.sampleNames = parser.SampleNames()
	li.vcfRecordMap = map[model.VariantKey]*vcf.Variant{}
	li.genotypes = model.GenotypeMap{}

	for {
		v, err := parser.Next()
		if err != nil {
			return li, fmt.Errorf("read vcf record: %w", err)
		}
		if v == nil {
			break
		}

		for _, split := range vcf.SplitMultiAllelic(v) {
			key := model.NewVariantKey(split.Chrom, split.Pos, split.Ref, split.Alt)
			li.tokens = append(li.tokens, string(key))
			li.vcfRecordMap[key] = split
			if gt := genotypesForVariant(split.SampleColumns, li.sampleNames); gt != nil {
				li.genotypes[key] = gt
			}
		}
	}

	return li, nil
}

// pipelineClients bundles the constructed remote clients and cache so
// runAnnotate and the streaming path share identical wiring.
type pipelineClients struct {
	processor *batch.Processor
	cache     *cache.Manager
}

// buildLogger constructs the driver's diagnostic logger, used to report
// per-formula/per-variant isolation failures (spec §7) without aborting the
// run. Falls back to a no-op logger if zap's console encoder can't be built.
func buildLogger() *zap.SugaredLogger {
	cfg := zap.NewDevelopmentConfig()
	cfg.OutputPaths = []string{"stderr"}
	l, err := cfg.Build()
	if err != nil {
		return zap.NewNop().Sugar()
	}
	return l.Sugar()
}

func buildClients(opts options) *pipelineClients {
	var cacher httpclient.Cacher
	var mgr *cache.Manager
	if opts.cacheEnabled {
		home, _ := os.UserHomeDir()
		l2Dir := ""
		if home != "" {
			l2Dir = home + "/.cache/vibe-annotate"
		}
		mgr = cache.NewManager(1024, 5*time.Minute, l2Dir, "256MB")
		cacher = mgr
	}

	h := httpclient.New(opts.ensemblBaseURL, cacher, nil)
	r := recoder.New(h)
	v := vep.New(h)
	return &pipelineClients{processor: batch.New(r, v), cache: mgr}
}

// buildFeatureAnnotator wires --bed-file/--gene-list/--json-genes/
// --json-gene-mapping into one internal/features.Annotator, or returns nil
// when none were requested.
func buildFeatureAnnotator(opts options) (*features.Annotator, error) {
	if len(opts.bedFiles) == 0 && len(opts.geneLists) == 0 && len(opts.jsonGenesFiles) == 0 && opts.jsonGeneMapping == "" {
		return nil, nil
	}

	idx := features.NewIndex()
	for _, path := range opts.bedFiles {
		if err := loadBEDFile(idx, path); err != nil {
			return nil, err
		}
	}

	geneSets := map[string]*features.GeneSet{}
	for _, path := range opts.geneLists {
		set, err := loadGeneListFile(path)
		if err != nil {
			return nil, err
		}
		geneSets[set.Name] = set
	}
	for _, path := range opts.jsonGenesFiles {
		set, err := loadJSONGenesFile(path)
		if err != nil {
			return nil, err
		}
		geneSets[set.Name] = set
	}
	if opts.jsonGeneMapping != "" {
		set, err := parseJSONGeneMapping(opts.jsonGeneMapping)
		if err != nil {
			return nil, err
		}
		geneSets[set.Name] = set
	}

	return features.NewAnnotator(idx, geneSets), nil
}

// applyInheritance runs spec §4.9 over every annotation whose variant key
// has a genotype row, including gene-scoped compound-het detection across
// the whole batch. Per spec §7.7, a single variant's analysis failing (a
// panic inside inheritance.AnalyzeVariant) never aborts the others: that
// variant gets an error_analysis_failed result and the loop continues.
func applyInheritance(annotations []model.AnnotationRecord, li loadedInputs, opts options, logger *zap.SugaredLogger) error {
	if li.genotypes == nil {
		return nil
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	var pedigree []model.PedigreeEntry
	if opts.pedFile != "" {
		var err error
		pedigree, err = loadPedigree(opts.pedFile)
		if err != nil {
			return err
		}
	}

	roleMap, err := parseSampleMap(opts.sampleMap)
	if err != nil {
		return err
	}

	cfg := inheritance.Config{
		Pedigree:    pedigree,
		RoleMap:     roleMap,
		SampleOrder: li.sampleNames,
	}

	var candidates []inheritance.CompHetCandidate

	for i := range annotations {
		gt, ok := li.genotypes[annotations[i].VariantKey]
		if !ok {
			continue
		}
		result, analyzeErr := inheritance.SafeAnalyzeVariant(annotations[i].SeqRegionName, gt, cfg)
		annotations[i].Inheritance = &result
		if analyzeErr != nil {
			logger.Warnw("inheritance analysis failed for variant; isolating",
				"variant", annotations[i].VariantKey, "error", analyzeErr)
			continue
		}

		index, mother, father := sampleTrio(cfg)
		if indexGT := gt[index]; indexGT != "" {
			gene := ""
			if len(annotations[i].TranscriptConsequences) > 0 {
				gene = annotations[i].TranscriptConsequences[0].GeneSymbol
			}
			candidates = append(candidates, inheritance.CompHetCandidate{
				VariantKey: annotations[i].VariantKey,
				Gene:       gene,
				IndexGT:    indexGT,
				MotherGT:   gt[mother],
				FatherGT:   gt[father],
			})
		}
	}

	details := inheritance.DetectCompoundHet(candidates)
	for i := range annotations {
		detail, ok := details[annotations[i].VariantKey]
		if !ok || annotations[i].Inheritance == nil || annotations[i].Inheritance.PrioritizedPattern == inheritance.PatternAnalysisFailed {
			continue
		}
		annotations[i].Inheritance.CompHetDetails = detail
		// A stronger pattern already assigned (e.g. de_novo) is kept.
		annotations[i].Inheritance.PrioritizedPattern = inheritance.Prioritize(
			[]string{annotations[i].Inheritance.PrioritizedPattern, inheritance.CompHetPattern(detail)}, nil)
	}

	return nil
}

// sampleTrio resolves the (index, mother, father) sample IDs the active
// inheritance mode implies, mirroring internal/inheritance/mode.go's
// unexported resolveTrio (not exported, so the driver re-derives it from
// the same public SelectMode/Config contract).
func sampleTrio(cfg inheritance.Config) (index, mother, father string) {
	switch inheritance.SelectMode(cfg) {
	case inheritance.ModePedigree:
		for _, e := range cfg.Pedigree {
			if e.AffectedStatus == 2 {
				return e.SampleID, e.MotherID, e.FatherID
			}
		}
		if len(cfg.Pedigree) > 0 {
			return cfg.Pedigree[0].SampleID, cfg.Pedigree[0].MotherID, cfg.Pedigree[0].FatherID
		}
		return "", "", ""
	case inheritance.ModeRoleMap:
		return cfg.RoleMap.Index, cfg.RoleMap.Mother, cfg.RoleMap.Father
	case inheritance.ModeDefaultTrio:
		return cfg.SampleOrder[0], cfg.SampleOrder[1], cfg.SampleOrder[2]
	default:
		if len(cfg.SampleOrder) > 0 {
			return cfg.SampleOrder[0], "", ""
		}
		return "", "", ""
	}
}

// applyScoring evaluates a configured scoring engine over every annotation,
// storing annotation-level scores on ann.Scores. Transcript-level formulas
// are not evaluated here (scoring.TranscriptScores is not called), so the
// output carries no per-transcript scores. Only a bad config
// directory fails the run; per-formula failures are isolated inside
// scoring.AnnotationScores itself and never reach here (spec §7: "Inheritance
// and scoring stages never fail the batch").
func applyScoring(annotations []model.AnnotationRecord, configDir string, logger *zap.SugaredLogger) error {
	if configDir == "" {
		return nil
	}
	cfg, err := loadScoringConfig(configDir)
	if err != nil {
		return err
	}
	for i := range annotations {
		root := extract.AnnotationToMap(annotations[i])
		annotations[i].Scores = scoring.AnnotationScores(annotations[i], root, cfg, logger)
	}
	return nil
}

// runAnnotate executes the full non-streaming pipeline: collect inputs,
// batch-process them chunkSize at a time (spec §5 forbids fanning the
// remote calls out), then layer the ambient annotation stages (features,
// local scores, scoring formulas, inheritance) before formatting output.
func runAnnotate(opts options) (string, error) {
	start := time.Now()
	logger := buildLogger()
	defer logger.Sync()

	li, err := collectInputs(opts)
	if err != nil {
		return "", err
	}
	if len(li.tokens) == 0 {
		return "", fmt.Errorf("no variants given: use --variants or --variants-file")
	}

	clients := buildClients(opts)
	if clients.cache != nil {
		defer clients.cache.Clear()
	}

	chunkSize := opts.chunkSize
	if chunkSize <= 0 {
		chunkSize = stream.DefaultChunkSize
	}

	var annotations []model.AnnotationRecord
	var warnings []string
	ctx := context.Background()
	for i := 0; i < len(li.tokens); i += chunkSize {
		end := i + chunkSize
		if end > len(li.tokens) {
			end = len(li.tokens)
		}
		result, err := clients.processor.Process(ctx, li.tokens[i:end], nil, opts.cacheEnabled)
		if err != nil {
			return "", fmt.Errorf("process batch: %w", err)
		}
		annotations = append(annotations, result.Annotations...)
		for _, e := range result.Errors {
			warnings = append(warnings, fmt.Sprintf("%s: %v", e.OriginalInput, e.Err))
		}
	}

	steps := []string{"classify", "canonicalise", "annotate"}

	featureAnnotator, err := buildFeatureAnnotator(opts)
	if err != nil {
		return "", err
	}
	if featureAnnotator != nil {
		for i := range annotations {
			featureAnnotator.Annotate(&annotations[i])
		}
		steps = append(steps, "feature_overlap")
	}

	if opts.scoresDB != "" {
		store, err := scores.Open(opts.scoresDB)
		if err != nil {
			return "", fmt.Errorf("open scores db: %w", err)
		}
		defer store.Close()
		if err := scores.AnnotateBatch(store, annotations); err != nil {
			return "", fmt.Errorf("local score lookup: %w", err)
		}
		steps = append(steps, "local_scores")
	}

	if opts.scoringConfig != "" {
		if err := applyScoring(annotations, opts.scoringConfig, logger); err != nil {
			return "", err
		}
		steps = append(steps, "scoring")
	}

	if opts.calcInheritance || opts.pedFile != "" || opts.sampleMap != "" {
		if err := applyInheritance(annotations, li, opts, logger); err != nil {
			return "", err
		}
		steps = append(steps, "inheritance")
	}

	if opts.pickOutput {
		applyPickOutput(annotations)
	}

	end := time.Now()
	meta := newMeta(strings.Join(li.tokens, ","), len(li.tokens), steps, start, end)

	output, err := renderOutput(opts, meta, annotations, li)
	if err != nil {
		return "", err
	}

	if len(warnings) > 0 {
		fmt.Fprintf(os.Stderr, "Warning: %d input(s) failed:\n", len(warnings))
		for _, w := range warnings {
			fmt.Fprintf(os.Stderr, "  %s\n", w)
		}
	}

	return output, nil
}

// runStreaming executes spec §4.12's streaming driver over --variants-file
// (or stdin, when it is "-"), writing each chunk's rendered fragment to
// stdout as soon as it is ready instead of buffering the whole run in
// memory. --variants is ignored in this mode: streaming exists precisely for
// inputs too large to pass as repeated flags.
func runStreaming(opts options) error {
	if opts.variantsFile == "" {
		return fmt.Errorf("--stream requires --variants-file")
	}

	var r io.Reader
	if opts.variantsFile == "-" {
		r = os.Stdin
	} else {
		f, err := os.Open(opts.variantsFile)
		if err != nil {
			return fmt.Errorf("open variants file: %w", err)
		}
		defer f.Close()
		r = f
	}

	clients := buildClients(opts)
	if clients.cache != nil {
		defer clients.cache.Clear()
	}

	format := stream.OutputTabular
	columns := defaultColumns()
	delimiter := opts.delimiter
	if strings.EqualFold(opts.outputFormat, "JSON") {
		format = stream.OutputJSON
	}

	streamOpts := stream.Options{
		ChunkSize: opts.chunkSize,
		Format:    format,
		Delimiter: delimiter,
		Columns:   columns,
		SaveFile:  opts.save,
	}

	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	logger := buildLogger()
	defer logger.Sync()

	err := stream.Run(context.Background(), r, clients.processor, streamOpts, logger.Desugar(), func(chunk stream.ChunkResult) error {
		if _, err := out.WriteString(chunk.Rendered); err != nil {
			return err
		}
		for _, e := range chunk.Errors {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", e)
		}
		return nil
	})
	if err != nil {
		return err
	}
	return out.Flush()
}

func renderOutput(opts options, meta outputMeta, annotations []model.AnnotationRecord, li loadedInputs) (string, error) {
	switch strings.ToUpper(opts.outputFormat) {
	case "", "JSON":
		return renderJSON(meta, annotations, vcfout.FromVCFRecordMap(li.vcfRecordMap), li.headerLines, nil)
	case "CSV":
		return renderTabular(annotations, defaultColumns(), ','), nil
	case "TSV":
		return renderTabular(annotations, defaultColumns(), '\t'), nil
	case "VCF":
		return renderVCF(li.headerLines, annotations, li.vcfRecordMap), nil
	case "SCHEMA":
		return renderSchema()
	default:
		return "", fmt.Errorf("unknown output format %q (expected JSON, CSV, TSV, VCF, or SCHEMA)", opts.outputFormat)
	}
}
