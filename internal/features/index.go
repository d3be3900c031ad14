package features

import "strings"

// Index is the per-chromosome interval tree a BED-backed feature source
// builds once and queries repeatedly, generalizing the teacher's single
// genome-wide transcript tree (internal/cache/intervaltree.go) into one
// tree per chromosome so lookups don't scan regions on other contigs.
type Index struct {
	bySource map[string]map[string]*IntervalTree // source name -> chrom -> tree
}

// NewIndex builds an empty, ready-to-populate region index.
func NewIndex() *Index {
	return &Index{bySource: map[string]map[string]*IntervalTree{}}
}

// AddSource indexes regions under sourceName, grouped per-chromosome.
// Calling AddSource again for the same sourceName replaces its regions.
func (idx *Index) AddSource(sourceName string, regions []*Region) {
	byChrom := map[string][]*Region{}
	for _, r := range regions {
		chrom := normalizeChrom(r.Chrom)
		byChrom[chrom] = append(byChrom[chrom], r)
	}

	trees := make(map[string]*IntervalTree, len(byChrom))
	for chrom, rs := range byChrom {
		trees[chrom] = BuildIntervalTree(rs)
	}
	idx.bySource[sourceName] = trees
}

// Overlaps returns, per source, the regions overlapping chrom:pos.
func (idx *Index) Overlaps(chrom string, pos int64) map[string][]*Region {
	chrom = normalizeChrom(chrom)
	out := map[string][]*Region{}
	for source, trees := range idx.bySource {
		tree, ok := trees[chrom]
		if !ok {
			continue
		}
		if regions := tree.FindOverlaps(pos); len(regions) > 0 {
			out[source] = regions
		}
	}
	return out
}

func normalizeChrom(chrom string) string {
	if len(chrom) > 3 && strings.EqualFold(chrom[:3], "chr") {
		chrom = chrom[3:]
	}
	return strings.ToUpper(chrom)
}
