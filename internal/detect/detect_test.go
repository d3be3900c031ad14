package detect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vibe-annotate/vibe-annotate/internal/model"
)

func TestClassify_VCF(t *testing.T) {
	f, err := Classify("1-12345-A-G")
	require.NoError(t, err)
	assert.Equal(t, model.FormatVCF, f)
}

func TestClassify_CNV(t *testing.T) {
	f, err := Classify("7:117559600-117559609:DEL")
	require.NoError(t, err)
	assert.Equal(t, model.FormatCNV, f)
}

func TestClassify_CNVCaseInsensitive(t *testing.T) {
	f, err := Classify("chr7:117559600-117559609:del")
	require.NoError(t, err)
	assert.Equal(t, model.FormatCNV, f)
}

func TestClassify_HGVSForRsID(t *testing.T) {
	f, err := Classify("rs6025")
	require.NoError(t, err)
	assert.Equal(t, model.FormatHGVS, f)
}

func TestClassify_UnknownCNVTypeFallsThroughToHGVS(t *testing.T) {
	f, err := Classify("7:100-200:INV")
	require.NoError(t, err)
	assert.Equal(t, model.FormatHGVS, f)
}

func TestClassify_EmptyInputFails(t *testing.T) {
	_, err := Classify("")
	require.Error(t, err)
}

func TestClassify_TotalAndIdempotent(t *testing.T) {
	inputs := []string{"1-12345-A-G", "7:1-2:DUP", "rs123", "ENST00000311936.1:c.34G>T"}
	for _, in := range inputs {
		f1, err1 := Classify(in)
		require.NoError(t, err1)
		f2, err2 := Classify(in)
		require.NoError(t, err2)
		assert.Equal(t, f1, f2)
	}
}
