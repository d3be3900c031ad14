package vcfout

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vibe-annotate/vibe-annotate/internal/model"
	"github.com/vibe-annotate/vibe-annotate/internal/vcf"
)

func TestPrepareHeader_InjectsVLInfoLinesBeforeChrom(t *testing.T) {
	original := []string{
		"##fileformat=VCFv4.2",
		"##contig=<ID=1>",
		"#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO",
	}
	out := PrepareHeader(original)

	chromIdx := indexOf(out, "#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO")
	require.GreaterOrEqual(t, chromIdx, 0)
	assert.Contains(t, out[chromIdx-3], "VL_CSQ")
	assert.Contains(t, out[chromIdx-2], "VL_DED_INH")
	assert.Contains(t, out[chromIdx-1], "VL_COMPHET")
}

func TestPrepareHeader_IdempotentWhenAlreadyPresent(t *testing.T) {
	once := PrepareHeader([]string{
		"##fileformat=VCFv4.2",
		"#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO",
	})
	twice := PrepareHeader(once)
	assert.Equal(t, once, twice)
}

func TestPrepareHeader_SynthesizesChromWhenAbsent(t *testing.T) {
	out := PrepareHeader(nil)
	assert.True(t, strings.HasPrefix(out[0], "##fileformat"))
	assert.Equal(t, "#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO", out[len(out)-1])
}

func indexOf(lines []string, target string) int {
	for i, l := range lines {
		if l == target {
			return i
		}
	}
	return -1
}

func TestGroup_MultiAllelicSharesPositionKey(t *testing.T) {
	annotations := []model.AnnotationRecord{
		{VariantKey: "1-100-A-T", Allele: "T"},
		{VariantKey: "1-100-A-G", Allele: "G"},
	}
	groups := Group(annotations, nil)
	require.Len(t, groups, 1)
	assert.Equal(t, []string{"T", "G"}, groups[0].AltOrder)
	assert.Equal(t, "1", groups[0].Chrom)
	assert.Equal(t, int64(100), groups[0].Pos)
	assert.Equal(t, "A", groups[0].Ref)
}

func TestGroup_SortsByChromThenPosition(t *testing.T) {
	annotations := []model.AnnotationRecord{
		{VariantKey: "2-50-A-T", Allele: "T"},
		{VariantKey: "1-200-C-G", Allele: "G"},
		{VariantKey: "1-100-A-T", Allele: "T"},
	}
	groups := Group(annotations, nil)
	require.Len(t, groups, 3)
	assert.Equal(t, "1", groups[0].Chrom)
	assert.Equal(t, int64(100), groups[0].Pos)
	assert.Equal(t, "1", groups[1].Chrom)
	assert.Equal(t, int64(200), groups[1].Pos)
	assert.Equal(t, "2", groups[2].Chrom)
}

func TestBuildCSQEntries_OneEntryPerConsequence(t *testing.T) {
	ann := model.AnnotationRecord{
		Allele: "T",
		TranscriptConsequences: []model.TranscriptConsequence{
			{TranscriptID: "ENST1", GeneSymbol: "BRCA2", ConsequenceTerms: []string{"missense_variant"}, Impact: "MODERATE"},
			{TranscriptID: "ENST2", GeneSymbol: "BRCA2", ConsequenceTerms: []string{"synonymous_variant"}, Impact: "LOW"},
		},
	}
	entries := buildCSQEntries(ann)
	require.Len(t, entries, 2)
	assert.Contains(t, entries[0], "ENST1")
	assert.Contains(t, entries[0], "missense_variant")
	assert.Contains(t, entries[1], "ENST2")
	assert.Contains(t, entries[1], "synonymous_variant")
}

func TestBuildCSQEntries_NoConsequencesStillEmitsOneEntry(t *testing.T) {
	ann := model.AnnotationRecord{Allele: "T"}
	entries := buildCSQEntries(ann)
	require.Len(t, entries, 1)
	assert.Equal(t, strings.Count(entries[0], "|"), len(vlCsqFormat)-1)
}

func TestCascadeField_FallsBackToMostSevereConsequence(t *testing.T) {
	all := []model.TranscriptConsequence{
		{GeneSymbol: "", ConsequenceTerms: []string{"synonymous_variant"}},
		{GeneSymbol: "BRCA2", ConsequenceTerms: []string{"stop_gained"}},
	}
	extract := transcriptExtractor("SYMBOL")
	got := cascadeField(extract, all[0], all, "stop_gained")
	assert.Equal(t, "BRCA2", got)
}

func TestCascadeField_FallsBackToFirstNonEmpty(t *testing.T) {
	all := []model.TranscriptConsequence{
		{GeneSymbol: ""},
		{GeneSymbol: "TP53"},
	}
	extract := transcriptExtractor("SYMBOL")
	got := cascadeField(extract, all[0], all, "")
	assert.Equal(t, "TP53", got)
}

func TestUrlEncodeCSQField_EncodesUnsafeCharacters(t *testing.T) {
	got := urlEncodeCSQField("a;b=c,d e|f")
	assert.NotContains(t, got, ";")
	assert.NotContains(t, got, "=")
	assert.NotContains(t, got, ",")
	assert.NotContains(t, got, " ")
	assert.NotContains(t, got, "|")
	assert.Contains(t, got, "%3B")
}

func TestComposeInfo_OmitsEmptyCSQ(t *testing.T) {
	info := ComposeInfo("DP=10", "", "", nil)
	assert.Equal(t, "DP=10", info)
}

func TestComposeInfo_OmitsUnknownAndReferencePatterns(t *testing.T) {
	assert.Equal(t, ".", ComposeInfo("", "", "unknown", nil))
	assert.Equal(t, ".", ComposeInfo("", "", "reference", nil))
}

func TestComposeInfo_IncludesNonTrivialPattern(t *testing.T) {
	info := ComposeInfo("DP=10", "", "de_novo", nil)
	assert.Equal(t, "DP=10;VL_DED_INH=de_novo", info)
}

func TestComposeInfo_StripsExistingVLTags(t *testing.T) {
	info := ComposeInfo("DP=10;VL_CSQ=stale;VL_DED_INH=stale_pattern", "T|missense", "de_novo", nil)
	assert.Equal(t, "DP=10;VL_CSQ=T|missense;VL_DED_INH=de_novo", info)
}

func TestComposeInfo_IncludesCompHetOnlyWithPartners(t *testing.T) {
	none := ComposeInfo("", "", "compound_heterozygous", &model.CompHetDetail{Gene: "FOO"})
	assert.NotContains(t, none, "VL_COMPHET")

	withPartners := ComposeInfo("", "", "compound_heterozygous", &model.CompHetDetail{
		Gene:               "FOO",
		PartnerVariantKeys: []model.VariantKey{"1-200-C-G"},
	})
	assert.Contains(t, withPartners, "VL_COMPHET=1-200-C-G|FOO")
}

func TestComposeInfo_SanitizesUnsafeCharactersInPatternAndGene(t *testing.T) {
	info := ComposeInfo("", "", "weird;pattern=x", nil)
	assert.Equal(t, "VL_DED_INH=weird_pattern_x", info)
}

func TestFormatFilter_DefaultsToPass(t *testing.T) {
	assert.Equal(t, "PASS", formatFilter(""))
	assert.Equal(t, "PASS", formatFilter("PASS"))
	assert.Equal(t, "PASS", formatFilter("."))
}

func TestFormatFilter_KeepsNonPassFilters(t *testing.T) {
	assert.Equal(t, "q10", formatFilter("q10"))
	assert.Equal(t, "q10;s50", formatFilter("q10;s50"))
}

func TestFormatQual_ZeroIsDot(t *testing.T) {
	assert.Equal(t, ".", formatQual(0))
	assert.Equal(t, "30", formatQual(30))
}

func TestFormat_EmptyAnnotationListReturnsOnlyPreparedHeader(t *testing.T) {
	out := Format([]string{"##fileformat=VCFv4.2"}, nil)
	expected := strings.Join(PrepareHeader([]string{"##fileformat=VCFv4.2"}), "\n") + "\n"
	assert.Equal(t, expected, out)
}

func TestFormatLine_ComposesFullDataLine(t *testing.T) {
	groups := Group([]model.AnnotationRecord{
		{
			VariantKey: "1-100-A-T",
			Allele:     "T",
			TranscriptConsequences: []model.TranscriptConsequence{
				{TranscriptID: "ENST1", GeneSymbol: "BRCA2", ConsequenceTerms: []string{"missense_variant"}, Impact: "MODERATE"},
			},
			Inheritance: &model.InheritanceResult{PrioritizedPattern: "de_novo"},
		},
	}, nil)
	require.Len(t, groups, 1)

	line := FormatLine(groups[0])
	fields := strings.Split(line, "\t")
	require.GreaterOrEqual(t, len(fields), 8)
	assert.Equal(t, "1", fields[0])
	assert.Equal(t, "100", fields[1])
	assert.Equal(t, "A", fields[3])
	assert.Equal(t, "T", fields[4])
	assert.Equal(t, ".", fields[5])
	assert.Equal(t, "PASS", fields[6])
	assert.Contains(t, fields[7], "VL_CSQ=")
	assert.Contains(t, fields[7], "VL_DED_INH=de_novo")
}

func TestFromVCFRecordMap_CopiesFieldsByVariantKey(t *testing.T) {
	records := map[model.VariantKey]*vcf.Variant{
		"1-100-A-T": {Chrom: "1", Pos: 100, Ref: "A", Alt: "T", Qual: 30, Filter: "PASS", RawInfo: "DP=10"},
	}
	out := FromVCFRecordMap(records)
	rec := out["1-100-A-T"]
	assert.Equal(t, 30.0, rec.Qual)
	assert.Equal(t, "PASS", rec.Filter)
	assert.Equal(t, "DP=10", rec.RawInfo)
}
