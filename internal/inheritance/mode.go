package inheritance

import "github.com/vibe-annotate/vibe-annotate/internal/model"

// Mode names the trio-role resolution strategy spec §4.9 selects between.
type Mode string

const (
	ModePedigree     Mode = "pedigree"
	ModeRoleMap      Mode = "role_map"
	ModeDefaultTrio  Mode = "default_trio"
	ModeSingleSample Mode = "single_sample"
)

// RoleMap is the CLI's explicit `--sample-map index=...,mother=...,father=...`.
type RoleMap struct {
	Index  string
	Mother string
	Father string
}

// Config bundles everything the inheritance engine needs beyond the
// per-variant genotype map: an optional full pedigree, an optional explicit
// role map, and the sample-column order VCF/genotype-map construction saw
// (used by the default-trio fallback).
type Config struct {
	Pedigree    []model.PedigreeEntry
	RoleMap     *RoleMap
	SampleOrder []string
}

// SelectMode applies the priority order spec §4.9 defines: pedigree →
// explicit trio role map → first-three-samples default trio → single-sample.
func SelectMode(cfg Config) Mode {
	switch {
	case len(cfg.Pedigree) > 0:
		return ModePedigree
	case cfg.RoleMap != nil:
		return ModeRoleMap
	case len(cfg.SampleOrder) >= 3:
		return ModeDefaultTrio
	default:
		return ModeSingleSample
	}
}

// resolveTrio extracts the (index, mother, father) sample-ID triple the
// active mode implies. Pedigree mode picks the first affected sample as
// index, falling back to the first pedigree row if none is marked affected.
func resolveTrio(mode Mode, cfg Config) (index, mother, father string) {
	switch mode {
	case ModePedigree:
		entry := firstAffected(cfg.Pedigree)
		if entry == nil && len(cfg.Pedigree) > 0 {
			entry = &cfg.Pedigree[0]
		}
		if entry == nil {
			return "", "", ""
		}
		return entry.SampleID, entry.MotherID, entry.FatherID
	case ModeRoleMap:
		return cfg.RoleMap.Index, cfg.RoleMap.Mother, cfg.RoleMap.Father
	case ModeDefaultTrio:
		return cfg.SampleOrder[0], cfg.SampleOrder[1], cfg.SampleOrder[2]
	default:
		if len(cfg.SampleOrder) > 0 {
			return cfg.SampleOrder[0], "", ""
		}
		return "", "", ""
	}
}

func firstAffected(entries []model.PedigreeEntry) *model.PedigreeEntry {
	for i := range entries {
		if entries[i].AffectedStatus == 2 {
			return &entries[i]
		}
	}
	return nil
}

// sampleGenotype looks up sample's genotype in genotypes, treating "0"
// (PED's absent-parent sentinel) as no sample at all.
func sampleGenotype(genotypes map[string]string, sample string) string {
	if sample == "" || sample == "0" {
		return ""
	}
	return genotypes[sample]
}
