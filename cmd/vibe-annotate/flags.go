package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// cliFlags holds the raw cobra flag destinations; toOptions validates and
// normalizes them into the options struct the pipeline actually consumes.
type cliFlags struct {
	configFile string

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
}

// bindFlags registers every flag spec §6's CLI surface lists (plus the
// scores-db domain-stack addition) onto cmd.
func bindFlags(cmd *cobra.Command, f *cliFlags) {
	cmd.PersistentFlags().StringVar(&f.configFile, "config", "", "Path to config file (default: ~/.vibe-annotate.yaml)")

	cmd.Flags().StringSliceVar(&f.variants, "variants", nil, "One or more variant identifiers (VCF-short, HGVS, rsID, or CNV notation)")
	cmd.Flags().StringVar(&f.variantsFile, "variants-file", "", "File of variants, one per line, or a VCF file ('-' for stdin)")
	cmd.Flags().StringVar(&f.outputFormat, "output", "JSON", "Output format: JSON, CSV, TSV, VCF, or SCHEMA")
	cmd.Flags().BoolVar(&f.save, "save", false, "Save output to --output-file instead of stdout")
	cmd.Flags().StringVar(&f.outputFile, "output-file", "", "Destination path when --save is set")
	cmd.Flags().BoolVar(&f.cacheEnabled, "cache", false, "Enable the two-tier recoder/VEP response cache")
	cmd.Flags().BoolVar(&f.pickOutput, "pick-output", false, "Only report the VEP-picked transcript per variant")
	cmd.Flags().StringVar(&f.scoringConfig, "scoring-config-path", "", "Directory containing variable_assignment_config.json and formula_config.json")
	cmd.Flags().StringVar(&f.pedFile, "ped", "", "PED-format pedigree file")
	cmd.Flags().BoolVar(&f.calcInheritance, "calculate-inheritance", false, "Run the inheritance engine over VCF genotypes")
	cmd.Flags().StringVar(&f.sampleMap, "sample-map", "", "Explicit trio role map: index=...,mother=...,father=...")
	cmd.Flags().IntVar(&f.chunkSize, "chunk-size", 0, "Variants per remote batch call (default 200)")
	cmd.Flags().StringArrayVar(&f.bedFiles, "bed-file", nil, "BED file of regions to annotate against (repeatable)")
	cmd.Flags().StringArrayVar(&f.geneLists, "gene-list", nil, "Newline-delimited gene list file (repeatable)")
	cmd.Flags().StringArrayVar(&f.jsonGenesFiles, "json-genes", nil, "JSON gene-list or gene->metadata file (repeatable)")
	cmd.Flags().StringVar(&f.jsonGeneMapping, "json-gene-mapping", "", "Inline JSON object mapping gene symbol to metadata")
	cmd.Flags().StringVar(&f.scoresDB, "scores-db", "", "Path to a local DuckDB variant-score database (domain-stack addition)")
	cmd.Flags().BoolVar(&f.stream, "stream", false, "Process --variants-file incrementally via the streaming driver")
}

// toOptions validates the cobra-bound flags and layers in viper's
// config-file/environment resolution for the Ensembl base URL.
func (f *cliFlags) toOptions() (options, error) {
	if len(f.variants) == 0 && f.variantsFile == "" {
		return options{}, fmt.Errorf("one of --variants or --variants-file is required")
	}
	if f.save && f.stream {
		return options{}, fmt.Errorf("--save is not supported together with --stream; streaming mode always writes incrementally to stdout")
	}

	delimiter := ','
	switch f.outputFormat {
	case "TSV", "tsv":
		delimiter = '\t'
	}

	return options{
		variants:        f.variants,
		variantsFile:    f.variantsFile,
		outputFormat:    f.outputFormat,
		save:            f.save,
		outputFile:      f.outputFile,
		cacheEnabled:    f.cacheEnabled,
		pickOutput:      f.pickOutput,
		scoringConfig:   f.scoringConfig,
		pedFile:         f.pedFile,
		calcInheritance: f.calcInheritance,
		sampleMap:       f.sampleMap,
		chunkSize:       f.chunkSize,
		bedFiles:        f.bedFiles,
		geneLists:       f.geneLists,
		jsonGenesFiles:  f.jsonGenesFiles,
		jsonGeneMapping: f.jsonGeneMapping,
		scoresDB:        f.scoresDB,
		stream:          f.stream,
		delimiter:       delimiter,
		ensemblBaseURL:  viper.GetString("ensemblBaseUrl"),
	}, nil
}
