package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/vibe-annotate/vibe-annotate/internal/inheritance"
	"github.com/vibe-annotate/vibe-annotate/internal/model"
)

// loadPedigree reads a PED-format file (FamilyID SampleID FatherID MotherID
// Sex AffectedStatus, whitespace-separated, '#'-prefixed comments skipped)
// into spec §6's pedigree map shape. Grounded on internal/vcf/parser.go's
// bufio.Scanner line-at-a-time discipline; PED has no analogue in the
// example corpus, so the field layout follows spec §4.9/§6 directly.
func loadPedigree(path string) ([]model.PedigreeEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pedigree file: %w", err)
	}
	defer f.Close()

	var entries []model.PedigreeEntry
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 6 {
			return nil, fmt.Errorf("pedigree file %s line %d: expected at least 6 columns, found %d", path, lineNo, len(fields))
		}
		sex, _ := strconv.Atoi(fields[4])
		affected, _ := strconv.Atoi(fields[5])
		entries = append(entries, model.PedigreeEntry{
			FamilyID:       fields[0],
			SampleID:       fields[1],
			FatherID:       fields[2],
			MotherID:       fields[3],
			Sex:            sex,
			AffectedStatus: affected,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read pedigree file: %w", err)
	}
	return entries, nil
}

// parseSampleMap parses the CLI's "index=...,mother=...,father=..." role-map
// flag into an inheritance.RoleMap. Unknown keys are rejected so typos fail
// fast rather than silently producing a single-sample analysis.
func parseSampleMap(raw string) (*inheritance.RoleMap, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	roles := &inheritance.RoleMap{}
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		kv := strings.SplitN(pair, "=", 2)
		if len(kv) != 2 {
			return nil, fmt.Errorf("malformed sample-map entry %q: expected key=value", pair)
		}
		key, value := strings.TrimSpace(kv[0]), strings.TrimSpace(kv[1])
		switch key {
		case "index":
			roles.Index = value
		case "mother":
			roles.Mother = value
		case "father":
			roles.Father = value
		default:
			return nil, fmt.Errorf("unknown sample-map key %q (expected index, mother, or father)", key)
		}
	}
	if roles.Index == "" {
		return nil, fmt.Errorf("sample-map requires an index sample")
	}
	return roles, nil
}

// genotypesForVariant extracts one variant's per-sample genotype row (the
// "GT" field of each FORMAT+sample column) out of a VCF record's raw
// FORMAT/sample tab-separated tail and the parser's sample name order.
func genotypesForVariant(sampleColumns string, sampleNames []string) map[string]string {
	if sampleColumns == "" || len(sampleNames) == 0 {
		return nil
	}
	fields := strings.Split(sampleColumns, "\t")
	if len(fields) < 2 {
		return nil
	}
	formatKeys := strings.Split(fields[0], ":")
	gtIdx := -1
	for i, k := range formatKeys {
		if k == "GT" {
			gtIdx = i
			break
		}
	}
	if gtIdx < 0 {
		return nil
	}

	genotypes := make(map[string]string, len(sampleNames))
	for i, name := range sampleNames {
		col := i + 1
		if col >= len(fields) {
			break
		}
		parts := strings.Split(fields[col], ":")
		if gtIdx < len(parts) {
			genotypes[name] = parts[gtIdx]
		}
	}
	return genotypes
}
