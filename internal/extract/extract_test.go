package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vibe-annotate/vibe-annotate/internal/model"
)

func sampleAnnotation() model.AnnotationRecord {
	return model.AnnotationRecord{
		OriginalInput:         "1-12345-A-G",
		InputFormat:           model.FormatVCF,
		MostSevereConsequence: "missense_variant",
		TranscriptConsequences: []model.TranscriptConsequence{
			{GeneSymbol: "FOO", ConsequenceTerms: []string{"missense_variant"}, Impact: "MODERATE"},
			{GeneSymbol: "FOO", ConsequenceTerms: []string{"synonymous_variant"}, Impact: "LOW"},
		},
	}
}

func TestFlattenAnnotationData_OneRowPerConsequence(t *testing.T) {
	columns := []ColumnConfig{
		{Name: "input", Target: "original_input", Default: "-"},
		{Name: "gene", Target: "consequence.gene_symbol", Default: "-"},
	}
	rows := FlattenAnnotationData([]model.AnnotationRecord{sampleAnnotation()}, columns)
	require.Len(t, rows, 2)
	assert.Equal(t, "1-12345-A-G", rows[0]["input"])
	assert.Equal(t, "FOO", rows[0]["gene"])
}

func TestFlattenAnnotationData_NoConsequencesStillEmitsRow(t *testing.T) {
	ann := model.AnnotationRecord{OriginalInput: "rs1"}
	columns := []ColumnConfig{
		{Name: "gene", Target: "consequence.gene_symbol", Default: "-"},
	}
	rows := FlattenAnnotationData([]model.AnnotationRecord{ann}, columns)
	require.Len(t, rows, 1)
	assert.Equal(t, "-", rows[0]["gene"])
}

func TestExtractColumn_MissingPathUsesDefault(t *testing.T) {
	root := map[string]interface{}{}
	col := ColumnConfig{Target: "does.not.exist", Default: "N/A"}
	assert.Equal(t, "N/A", extractColumn(root, col))
}

func TestExtractColumn_ScalarWrappedBeforeAggregation(t *testing.T) {
	root := map[string]interface{}{"cadd_phred": 23.5}
	col := ColumnConfig{Target: "cadd_phred", Aggregator: "max", Default: 0.0}
	assert.Equal(t, 23.5, extractColumn(root, col))
}

func TestAggregate_UniqueSortedDedup(t *testing.T) {
	values := []interface{}{"b", "a", "b", "c"}
	result, ok := Aggregate(values, "unique")
	require.True(t, ok)
	assert.Equal(t, []interface{}{"a", "b", "c"}, result)
}

func TestAggregate_Avg(t *testing.T) {
	result, ok := Aggregate([]interface{}{1.0, 2.0, 3.0}, "avg")
	require.True(t, ok)
	assert.Equal(t, 2.0, result)
}

func TestExtractColumn_ConditionGatesDefault(t *testing.T) {
	root := map[string]interface{}{"cadd_phred": 10.0}
	col := ColumnConfig{Target: "cadd_phred", Condition: "value > 20", Default: "low"}
	assert.Equal(t, "low", extractColumn(root, col))

	col2 := ColumnConfig{Target: "cadd_phred", Condition: "value > 5", Default: "low"}
	assert.Equal(t, 10.0, extractColumn(root, col2))
}

func TestExtractColumn_ConditionEvalFailureUsesDefault(t *testing.T) {
	root := map[string]interface{}{"cadd_phred": 10.0}
	col := ColumnConfig{Target: "cadd_phred", Condition: "value.nonexistentMethod()", Default: "fallback"}
	assert.Equal(t, "fallback", extractColumn(root, col))
}

func TestResolvePath_WildcardTraversal(t *testing.T) {
	root := map[string]interface{}{
		"transcript_consequences": []interface{}{
			map[string]interface{}{"gene_symbol": "A"},
			map[string]interface{}{"gene_symbol": "B"},
		},
	}
	v, ok := ResolvePath(root, "transcript_consequences.*.gene_symbol")
	require.True(t, ok)
	assert.Equal(t, []interface{}{"A", "B"}, v)
}

func TestFormatToTabular_CSVQuoting(t *testing.T) {
	columns := []ColumnConfig{{Name: "note"}}
	rows := []map[string]interface{}{
		{"note": `has, comma`},
		{"note": `has "quote"`},
		{"note": "plain"},
	}
	out := FormatToTabular(rows, columns, ',')
	lines := []string{
		"note",
		`"has, comma"`,
		`"has ""quote"""`,
		"plain",
	}
	expected := ""
	for _, l := range lines {
		expected += l + "\n"
	}
	assert.Equal(t, expected, out)
}

func TestFormatToTabular_TabsNotQuoted(t *testing.T) {
	columns := []ColumnConfig{{Name: "note"}}
	rows := []map[string]interface{}{{"note": "a,b"}}
	out := FormatToTabular(rows, columns, '\t')
	assert.Equal(t, "note\na,b\n", out)
}

func TestFormatToTabular_ArrayJoinedWithSemicolon(t *testing.T) {
	columns := []ColumnConfig{{Name: "genes"}}
	rows := []map[string]interface{}{
		{"genes": []interface{}{"A", "B", "C"}},
	}
	out := FormatToTabular(rows, columns, ',')
	assert.Equal(t, "genes\nA;B;C\n", out)
}
