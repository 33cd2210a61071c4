package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRun(id string, finished time.Time, accuracy float64) Run {
	return Run{
		ID:         id,
		StartedAt:  finished.Add(-3 * time.Second),
		FinishedAt: finished,
		DataPath:   "diabetes.csv",
		Rows:       100,
		Positives:  14,
		Classes:    map[int]int{0: 80, 1: 6, 2: 14},
		Trees:      50,
		MaxDepth:   10,
		TestSize:   0.2,
		Seed:       42,
		Accuracy:   accuracy,
	}
}

func TestNew(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")

	store, err := New(dir)
	require.NoError(t, err)
	defer store.Close()

	_, err = os.Stat(filepath.Join(dir, FileName))
	assert.NoError(t, err, "database file should exist")
}

func TestStore_CloseTwice(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	assert.NoError(t, store.Close())
	assert.NoError(t, store.Close())
	assert.NoError(t, (&Store{}).Close())
}

func TestStore_LatestRun(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	_, err = store.LatestRun()
	assert.ErrorIs(t, err, ErrNoRuns)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.SaveRun(newRun("b", base.Add(time.Hour), 0.81)))
	require.NoError(t, store.SaveRun(newRun("a", base, 0.79)))

	latest, err := store.LatestRun()
	require.NoError(t, err)
	assert.Equal(t, "b", latest.ID)
	assert.Equal(t, 0.81, latest.Accuracy)
	assert.Equal(t, 3*time.Second, latest.Duration())
	assert.Equal(t, map[int]int{0: 80, 1: 6, 2: 14}, latest.Classes)
	assert.True(t, latest.FinishedAt.Equal(base.Add(time.Hour)))
}

func TestStore_SaveRunRequiresID(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	assert.Error(t, store.SaveRun(Run{FinishedAt: time.Now()}))
}

func TestStore_ListRuns(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"r0", "r1", "r2", "r3"} {
		require.NoError(t, store.SaveRun(newRun(id, base.Add(time.Duration(i)*24*time.Hour), 0.8)))
	}

	runs, err := store.ListRuns(base.Add(24*time.Hour), base.Add(48*time.Hour))
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "r1", runs[0].ID)
	assert.Equal(t, "r2", runs[1].ID)

	all, err := store.ListRuns(base.Add(-time.Hour), base.Add(100*time.Hour))
	require.NoError(t, err)
	assert.Len(t, all, 4)

	none, err := store.ListRuns(base.Add(200*time.Hour), base.Add(300*time.Hour))
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestStore_RecentRuns(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"old", "a", "b", "c"} {
		finished := now.Add(-time.Duration(3-i) * time.Hour)
		if id == "old" {
			finished = now.Add(-40 * 24 * time.Hour)
		}
		require.NoError(t, store.SaveRun(newRun(id, finished, 0.8)))
	}

	runs, err := store.RecentRuns(now, 30*24*time.Hour, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "c", runs[0].ID, "newest first")
	assert.Equal(t, "b", runs[1].ID)

	runs, err = store.RecentRuns(now, 30*24*time.Hour, 0)
	require.NoError(t, err)
	require.Len(t, runs, 3, "runs outside the window are left out")
	assert.Equal(t, "a", runs[2].ID)
}

func TestOpenReadOnly(t *testing.T) {
	dir := t.TempDir()

	_, err := OpenReadOnly(dir)
	assert.Error(t, err, "missing file")

	store, err := New(dir)
	require.NoError(t, err)
	require.NoError(t, store.SaveRun(newRun("only", time.Now(), 0.9)))
	require.NoError(t, store.Close())

	ro, err := OpenReadOnly(dir)
	require.NoError(t, err)
	defer ro.Close()

	run, err := ro.LatestRun()
	require.NoError(t, err)
	assert.Equal(t, "only", run.ID)
	assert.Error(t, ro.SaveRun(newRun("nope", time.Now(), 0.5)))
}
