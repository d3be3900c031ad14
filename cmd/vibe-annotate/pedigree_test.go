package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "input.txt")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
	return path
}

func TestLoadPedigree_ParsesTrio(t *testing.T) {
	path := writeTempFile(t, "# comment\nFAM1\tchild\tdad\tmom\t1\t2\nFAM1\tdad\t0\t0\t1\t1\nFAM1\tmom\t0\t0\t2\t1\n")

	entries, err := loadPedigree(path)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "child", entries[0].SampleID)
	assert.Equal(t, "dad", entries[0].FatherID)
	assert.Equal(t, "mom", entries[0].MotherID)
	assert.Equal(t, 2, entries[0].AffectedStatus)
}

func TestLoadPedigree_RejectsShortLines(t *testing.T) {
	path := writeTempFile(t, "FAM1\tchild\tdad\tmom\n")
	_, err := loadPedigree(path)
	assert.Error(t, err)
}

func TestParseSampleMap_Valid(t *testing.T) {
	roles, err := parseSampleMap("index=child, mother=mom,father=dad")
	require.NoError(t, err)
	require.NotNil(t, roles)
	assert.Equal(t, "child", roles.Index)
	assert.Equal(t, "mom", roles.Mother)
	assert.Equal(t, "dad", roles.Father)
}

func TestParseSampleMap_Empty(t *testing.T) {
	roles, err := parseSampleMap("")
	require.NoError(t, err)
	assert.Nil(t, roles)
}

func TestParseSampleMap_RejectsUnknownKey(t *testing.T) {
	_, err := parseSampleMap("index=child,sibling=kid2")
	assert.Error(t, err)
}

func TestParseSampleMap_RequiresIndex(t *testing.T) {
	_, err := parseSampleMap("mother=mom,father=dad")
	assert.Error(t, err)
}

func TestGenotypesForVariant_LocatesGTField(t *testing.T) {
	sampleColumns := "GT:DP\t0/1:30\t0/0:25"
	got := genotypesForVariant(sampleColumns, []string{"child", "dad"})
	assert.Equal(t, "0/1", got["child"])
	assert.Equal(t, "0/0", got["dad"])
}

func TestGenotypesForVariant_NoGTField(t *testing.T) {
	sampleColumns := "DP:AD\t30:15,15"
	got := genotypesForVariant(sampleColumns, []string{"child"})
	assert.Nil(t, got)
}

func TestGenotypesForVariant_Empty(t *testing.T) {
	assert.Nil(t, genotypesForVariant("", []string{"child"}))
	assert.Nil(t, genotypesForVariant("GT\t0/1", nil))
}
