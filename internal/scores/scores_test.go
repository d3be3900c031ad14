package scores

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vibe-annotate/vibe-annotate/internal/model"
)

const testTSV = "variant_key\tcadd_phred\tdosage_sensitivity\n" +
	"1-100-A-T\t23.4\thaploinsufficient\n" +
	"12-25245350-C-A\t31.0\ttriplosensitive\n"

func writeTSV(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scores.tsv")
	require.NoError(t, os.WriteFile(path, []byte(testTSV), 0644))
	return path
}

func TestLoadAndLookup(t *testing.T) {
	store, err := Open("")
	require.NoError(t, err)
	defer store.Close()

	assert.False(t, store.Loaded())

	require.NoError(t, store.Load(writeTSV(t)))
	assert.True(t, store.Loaded())

	r, ok := store.Lookup("1-100-A-T")
	require.True(t, ok)
	assert.InDelta(t, 23.4, r.CADDPhred, 0.01)
	assert.Equal(t, "haploinsufficient", r.DosageSensitivity)

	_, ok = store.Lookup("9-1-G-C")
	assert.False(t, ok)
}

func TestBatchLookup_ReturnsOnlyHits(t *testing.T) {
	store, err := Open("")
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Load(writeTSV(t)))

	results, err := store.BatchLookup([]model.VariantKey{"1-100-A-T", "9-1-G-C", "12-25245350-C-A"})
	require.NoError(t, err)
	assert.Len(t, results, 2)
	assert.InDelta(t, 31.0, results["12-25245350-C-A"].CADDPhred, 0.01)
}

func TestBatchLookup_EmptyKeysReturnsNil(t *testing.T) {
	store, err := Open("")
	require.NoError(t, err)
	defer store.Close()

	results, err := store.BatchLookup(nil)
	require.NoError(t, err)
	assert.Nil(t, results)
}

func TestAnnotate_SetsFieldsOnHit(t *testing.T) {
	store, err := Open("")
	require.NoError(t, err)
	defer store.Close()
	require.NoError(t, store.Load(writeTSV(t)))

	ann := &model.AnnotationRecord{VariantKey: "1-100-A-T"}
	Annotate(store, ann)
	assert.InDelta(t, 23.4, ann.CADDPhred, 0.01)
	assert.Equal(t, "haploinsufficient", ann.DosageSensitivity)
}

func TestAnnotate_LeavesFieldsUntouchedOnMiss(t *testing.T) {
	store, err := Open("")
	require.NoError(t, err)
	defer store.Close()
	require.NoError(t, store.Load(writeTSV(t)))

	ann := &model.AnnotationRecord{VariantKey: "9-1-G-C", CADDPhred: 5}
	Annotate(store, ann)
	assert.Equal(t, 5.0, ann.CADDPhred)
}

func TestAnnotateBatch_SetsFieldsAcrossRecords(t *testing.T) {
	store, err := Open("")
	require.NoError(t, err)
	defer store.Close()
	require.NoError(t, store.Load(writeTSV(t)))

	anns := []model.AnnotationRecord{
		{VariantKey: "1-100-A-T"},
		{VariantKey: "9-1-G-C"},
	}
	require.NoError(t, AnnotateBatch(store, anns))
	assert.InDelta(t, 23.4, anns[0].CADDPhred, 0.01)
	assert.Equal(t, 0.0, anns[1].CADDPhred)
}

func TestLookup_EmptyStoreMisses(t *testing.T) {
	store, err := Open("")
	require.NoError(t, err)
	defer store.Close()

	_, ok := store.Lookup("1-1-A-T")
	assert.False(t, ok)
}
