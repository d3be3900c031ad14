// Package features attaches user-supplied region (BED) and gene-set
// (gene-list / JSON-gene-mapping) overlaps to annotation records (spec
// §4.11). The core only consumes already-built indexes — loading BED/
// gene-list/JSON-gene files from disk is the driver's job (spec's
// Non-goals), so this package exposes plain in-memory construction
// functions the driver calls after it has read the files itself.
//
// Adapted from the teacher's internal/cache/intervaltree.go: a
// sorted-slice-plus-prefix-max-array overlap query, generalized from
// *Transcript to a generic named Region so it can back both BED-file
// regions and (indirectly) gene boundaries.
package features

import "sort"

// Region is one named genomic interval: a BED row, or a gene's span.
type Region struct {
	Chrom string
	Start int64 // 1-based, inclusive
	End   int64 // 1-based, inclusive
	Name  string
	Extra map[string]string
}

type interval struct {
	start  int64
	end    int64
	region *Region
}

// IntervalTree answers "which regions contain position P" in O(log n + k)
// over a fixed, never-mutated-after-build set of regions.
type IntervalTree struct {
	intervals []interval
	maxEnd    []int64 // maxEnd[i] = max(end) for intervals[:i+1]
}

// BuildIntervalTree indexes regions, all assumed to share one chromosome;
// callers index per-chromosome (see Index below).
func BuildIntervalTree(regions []*Region) *IntervalTree {
	if len(regions) == 0 {
		return &IntervalTree{}
	}

	intervals := make([]interval, len(regions))
	for i, r := range regions {
		intervals[i] = interval{start: r.Start, end: r.End, region: r}
	}

	sort.Slice(intervals, func(i, j int) bool {
		return intervals[i].start < intervals[j].start
	})

	maxEnd := make([]int64, len(intervals))
	maxEnd[0] = intervals[0].end
	for i := 1; i < len(intervals); i++ {
		maxEnd[i] = intervals[i].end
		if maxEnd[i-1] > maxEnd[i] {
			maxEnd[i] = maxEnd[i-1]
		}
	}

	return &IntervalTree{intervals: intervals, maxEnd: maxEnd}
}

// FindOverlaps returns every region whose [Start, End] span contains pos.
func (t *IntervalTree) FindOverlaps(pos int64) []*Region {
	if len(t.intervals) == 0 {
		return nil
	}

	var result []*Region

	hi := sort.Search(len(t.intervals), func(i int) bool {
		return t.intervals[i].start > pos
	})

	for i := hi - 1; i >= 0; i-- {
		if t.maxEnd[i] < pos {
			break
		}
		if t.intervals[i].end >= pos {
			result = append(result, t.intervals[i].region)
		}
	}

	return result
}
