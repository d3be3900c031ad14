package features

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vibe-annotate/vibe-annotate/internal/model"
)

func TestIntervalTree_FindOverlaps(t *testing.T) {
	regions := []*Region{
		{Chrom: "1", Start: 100, End: 200, Name: "exon1"},
		{Chrom: "1", Start: 150, End: 160, Name: "exon2"},
		{Chrom: "1", Start: 500, End: 600, Name: "exon3"},
	}
	tree := BuildIntervalTree(regions)

	overlaps := tree.FindOverlaps(155)
	require.Len(t, overlaps, 2)
	names := []string{overlaps[0].Name, overlaps[1].Name}
	assert.ElementsMatch(t, []string{"exon1", "exon2"}, names)

	assert.Empty(t, tree.FindOverlaps(50))
	assert.Empty(t, tree.FindOverlaps(999))
	assert.Len(t, tree.FindOverlaps(550), 1)
}

func TestIntervalTree_EmptyRegionsReturnsNil(t *testing.T) {
	tree := BuildIntervalTree(nil)
	assert.Nil(t, tree.FindOverlaps(10))
}

func TestIndex_OverlapsScopedPerChromosomeAndSource(t *testing.T) {
	idx := NewIndex()
	idx.AddSource("custom_regions", []*Region{
		{Chrom: "chr1", Start: 100, End: 200, Name: "regionA"},
		{Chrom: "2", Start: 100, End: 200, Name: "regionB"},
	})

	overlaps := idx.Overlaps("1", 150)
	require.Contains(t, overlaps, "custom_regions")
	require.Len(t, overlaps["custom_regions"], 1)
	assert.Equal(t, "regionA", overlaps["custom_regions"][0].Name)

	assert.Empty(t, idx.Overlaps("3", 150))
}

func TestGeneSet_ContainsAndLookup(t *testing.T) {
	set := NewGeneSet("cancer_genes")
	set.Add("BRCA2", map[string]string{"GeneType": "TSG"})

	assert.True(t, set.Contains("BRCA2"))
	assert.False(t, set.Contains("TP53"))

	extra, ok := set.Lookup("BRCA2")
	require.True(t, ok)
	assert.Equal(t, "TSG", extra["GeneType"])
}

func TestAnnotator_AttachesRegionOverlap(t *testing.T) {
	idx := NewIndex()
	idx.AddSource("custom_regions", []*Region{{Chrom: "1", Start: 100, End: 200, Name: "myregion"}})
	a := NewAnnotator(idx, nil)

	ann := &model.AnnotationRecord{SeqRegionName: "1", Start: 150}
	a.Annotate(ann)

	require.Len(t, ann.FeatureOverlaps, 1)
	assert.Equal(t, "custom_regions", ann.FeatureOverlaps[0].Source)
	assert.Equal(t, "myregion", ann.FeatureOverlaps[0].Name)
}

func TestAnnotator_AttachesGeneSetOverlapAndDeduplicatesAcrossTranscripts(t *testing.T) {
	set := NewGeneSet("cancer_genes")
	set.Add("BRCA2", map[string]string{"GeneType": "TSG"})
	a := NewAnnotator(nil, map[string]*GeneSet{"cancer_genes": set})

	ann := &model.AnnotationRecord{
		TranscriptConsequences: []model.TranscriptConsequence{
			{GeneSymbol: "BRCA2", GeneID: "ENSG001"},
			{GeneSymbol: "BRCA2", GeneID: "ENSG001"},
		},
	}
	a.Annotate(ann)

	require.Len(t, ann.FeatureOverlaps, 1)
	assert.Equal(t, "cancer_genes", ann.FeatureOverlaps[0].Source)
	assert.Equal(t, "BRCA2", ann.FeatureOverlaps[0].Name)
}

func TestAnnotator_NoMatchLeavesOverlapsEmpty(t *testing.T) {
	a := NewAnnotator(nil, nil)
	ann := &model.AnnotationRecord{SeqRegionName: "1", Start: 100}
	a.Annotate(ann)
	assert.Empty(t, ann.FeatureOverlaps)
}
