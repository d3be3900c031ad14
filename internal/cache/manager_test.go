package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_ReadThrough(t *testing.T) {
	m := NewManager(10, time.Minute, "", "")
	m.Set("k", []byte("v"), 0)

	got, ok := m.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v", string(got))
}

func TestManager_L2Promotion(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(10, time.Minute, dir, "")

	// Pre-seed L2 directly (bypassing L1), as in spec scenario 5.
	m.L2.Set("k", []byte("v"), time.Minute)

	got, ok := m.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v", string(got))

	// Promoted: now served from L1 directly.
	got2, ok2 := m.L1.Get("k")
	require.True(t, ok2)
	assert.Equal(t, "v", string(got2))
}

func TestL1_EvictsLeastRecentlyUsed(t *testing.T) {
	l1 := NewL1(2, time.Minute)
	l1.Set("a", []byte("1"), 0)
	l1.Set("b", []byte("2"), 0)
	l1.Get("a") // promote a
	l1.Set("c", []byte("3"), 0)

	_, ok := l1.Get("b")
	assert.False(t, ok, "b should have been evicted as least-recently-used")

	_, ok = l1.Get("a")
	assert.True(t, ok)
	_, ok = l1.Get("c")
	assert.True(t, ok)
}

func TestL1_ExpiredEntryTreatedAsAbsent(t *testing.T) {
	l1 := NewL1(10, time.Minute)
	fixed := time.Now()
	l1.now = func() time.Time { return fixed }
	l1.Set("k", []byte("v"), time.Second)

	l1.now = func() time.Time { return fixed.Add(2 * time.Second) }
	_, ok := l1.Get("k")
	assert.False(t, ok)
}

func TestL1_HasDoesNotAffectRecency(t *testing.T) {
	l1 := NewL1(2, time.Minute)
	l1.Set("a", []byte("1"), 0)
	l1.Set("b", []byte("2"), 0)
	l1.Has("a") // should not promote
	l1.Set("c", []byte("3"), 0)

	_, ok := l1.Get("a")
	assert.False(t, ok, "a should have been evicted; Has must not affect recency")
}

func TestL2_AtomicWriteAndReadBack(t *testing.T) {
	l2 := NewL2(t.TempDir(), "")
	l2.Set("key", []byte("payload"), time.Minute)

	got, ok := l2.Get("key")
	require.True(t, ok)
	assert.Equal(t, "payload", string(got))
}

func TestL2_DisabledGracefullyWithoutDir(t *testing.T) {
	l2 := NewL2("", "")
	l2.Set("key", []byte("payload"), time.Minute)
	_, ok := l2.Get("key")
	assert.False(t, ok)
}

func TestL2_SizeCapEvictsOldest(t *testing.T) {
	l2 := NewL2(t.TempDir(), "120b")
	fixed := time.Now()
	l2.now = func() time.Time { return fixed }
	l2.Set("old", []byte("aaaaaaaaaa"), time.Hour)

	l2.now = func() time.Time { return fixed.Add(time.Second) }
	l2.Set("new", []byte("bbbbbbbbbb"), time.Hour)

	_, oldOK := l2.Get("old")
	_, newOK := l2.Get("new")
	assert.False(t, oldOK)
	assert.True(t, newOK)
}

func TestParseSize(t *testing.T) {
	assert.Equal(t, int64(100*1<<20), parseSize("100MB"))
	assert.Equal(t, int64(0), parseSize(""))
	assert.Equal(t, int64(512*1<<10), parseSize("512KB"))
}
