package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vibe-annotate/vibe-annotate/internal/features"
)

func TestLoadBEDFile_ConvertsToOneBasedInclusive(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "exons.bed")
	require.NoError(t, os.WriteFile(path, []byte("track name=demo\n1\t999\t1010\tEXON1\n"), 0644))

	idx := features.NewIndex()
	require.NoError(t, loadBEDFile(idx, path))

	hits := idx.Overlaps("1", 1000)
	require.Contains(t, hits, "exons")
	require.Len(t, hits["exons"], 1)
	assert.Equal(t, "EXON1", hits["exons"][0].Name)
}

func TestLoadBEDFile_RejectsTooFewColumns(t *testing.T) {
	path := writeTempFile(t, "1\t100\n")
	idx := features.NewIndex()
	err := loadBEDFile(idx, path)
	assert.Error(t, err)
}

func TestLoadGeneListFile_SkipsBlankAndComments(t *testing.T) {
	path := writeTempFile(t, "BRCA1\n\n# comment\nBRCA2\n")
	set, err := loadGeneListFile(path)
	require.NoError(t, err)
	assert.True(t, set.Contains("BRCA1"))
	assert.True(t, set.Contains("BRCA2"))
}

func TestLoadJSONGenesFile_Array(t *testing.T) {
	path := writeTempFile(t, `["BRCA1", "BRCA2"]`)
	set, err := loadJSONGenesFile(path)
	require.NoError(t, err)
	assert.True(t, set.Contains("BRCA1"))
}

func TestLoadJSONGenesFile_ObjectWithMetadata(t *testing.T) {
	path := writeTempFile(t, `{"BRCA1": {"panel": "breast_cancer"}}`)
	set, err := loadJSONGenesFile(path)
	require.NoError(t, err)
	assert.True(t, set.Contains("BRCA1"))
}

func TestParseJSONGeneMapping_Valid(t *testing.T) {
	set, err := parseJSONGeneMapping(`{"TP53": {"tier": "1"}}`)
	require.NoError(t, err)
	assert.True(t, set.Contains("TP53"))
}

func TestParseJSONGeneMapping_Malformed(t *testing.T) {
	_, err := parseJSONGeneMapping(`not json`)
	assert.Error(t, err)
}
