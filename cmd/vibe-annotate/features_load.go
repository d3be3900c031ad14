package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/vibe-annotate/vibe-annotate/internal/features"
)

// loadBEDFile reads a BED file (chrom, start, end[, name, ...], 0-based
// half-open) into one named source of regions in idx, using the file's base
// name (without extension) as the source name. Grounded on
// internal/vcf/parser.go's line-at-a-time bufio.Scanner discipline; BED has
// no precedent in the example corpus.
func loadBEDFile(idx *features.Index, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open bed file %s: %w", path, err)
	}
	defer f.Close()

	sourceName := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	var regions []*features.Region

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "track") || strings.HasPrefix(line, "browser") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 3 {
			return fmt.Errorf("bed file %s line %d: expected at least 3 columns, found %d", path, lineNo, len(fields))
		}
		start, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			return fmt.Errorf("bed file %s line %d: invalid start %q", path, lineNo, fields[1])
		}
		end, err := strconv.ParseInt(fields[2], 10, 64)
		if err != nil {
			return fmt.Errorf("bed file %s line %d: invalid end %q", path, lineNo, fields[2])
		}
		name := ""
		if len(fields) > 3 {
			name = fields[3]
		}
		// BED is 0-based half-open; the interval tree and the rest of the
		// pipeline work in 1-based inclusive coordinates (spec §3).
		regions = append(regions, &features.Region{
			Chrom: fields[0],
			Start: start + 1,
			End:   end,
			Name:  name,
		})
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read bed file %s: %w", path, err)
	}

	idx.AddSource(sourceName, regions)
	return nil
}

// loadGeneListFile reads a newline-delimited gene symbol/ID list into a
// GeneSet named after the file's base name.
func loadGeneListFile(path string) (*features.GeneSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gene list %s: %w", path, err)
	}
	defer f.Close()

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	set := features.NewGeneSet(name)

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		gene := strings.TrimSpace(scanner.Text())
		if gene == "" || strings.HasPrefix(gene, "#") {
			continue
		}
		set.Add(gene, nil)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read gene list %s: %w", path, err)
	}
	return set, nil
}

// loadJSONGenesFile reads a JSON document shaped either as a bare array of
// gene symbols, or an object mapping gene symbol to an arbitrary metadata
// object (flattened to string values), into a GeneSet named after the
// file's base name.
func loadJSONGenesFile(path string) (*features.GeneSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open json genes file %s: %w", path, err)
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	set := features.NewGeneSet(name)

	var asArray []string
	if err := json.Unmarshal(data, &asArray); err == nil {
		for _, gene := range asArray {
			set.Add(gene, nil)
		}
		return set, nil
	}

	var asObject map[string]map[string]interface{}
	if err := json.Unmarshal(data, &asObject); err != nil {
		return nil, fmt.Errorf("parse json genes file %s: %w", path, err)
	}
	for gene, meta := range asObject {
		extra := make(map[string]string, len(meta))
		for k, v := range meta {
			extra[k] = fmt.Sprintf("%v", v)
		}
		set.Add(gene, extra)
	}
	return set, nil
}

// parseJSONGeneMapping parses the CLI's `--json-gene-mapping` flag, a JSON
// object literal mapping gene symbol to an arbitrary metadata object,
// directly into an unnamed GeneSet (source name "json-gene-mapping").
func parseJSONGeneMapping(raw string) (*features.GeneSet, error) {
	set := features.NewGeneSet("json-gene-mapping")
	var asObject map[string]map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &asObject); err != nil {
		return nil, fmt.Errorf("parse json-gene-mapping: %w", err)
	}
	for gene, meta := range asObject {
		extra := make(map[string]string, len(meta))
		for k, v := range meta {
			extra[k] = fmt.Sprintf("%v", v)
		}
		set.Add(gene, extra)
	}
	return set, nil
}
