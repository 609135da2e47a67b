package attrdb

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpen_Migrates(t *testing.T) {
	db := openTestDB(t)

	version, dirty, err := db.MigrateVersion()
	require.NoError(t, err)
	assert.False(t, dirty)
	assert.Equal(t, uint(1), version)
}

func TestRecordAndListRuns(t *testing.T) {
	db := openTestDB(t)

	first := Run{
		RunID:        NewRunID(),
		Output:       "eigen",
		NX:           3,
		NY:           3,
		NZ:           3,
		WeightFactor: 0.2,
		Gamma:        0.78125,
		SurveyNX:     101,
		SurveyNY:     201,
		SurveyNZ:     501,
		Workers:      8,
		StartedAt:    time.Unix(0, 1700000000000000000).UTC(),
		DurationMs:   1234,
	}
	second := first
	second.RunID = NewRunID()
	second.Output = "coef"
	second.StartedAt = first.StartedAt.Add(time.Hour)

	require.NoError(t, db.RecordRun(first))
	require.NoError(t, db.RecordRun(second))

	runs, err := db.ListRuns(10)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	// Newest first.
	assert.Equal(t, second.RunID, runs[0].RunID)
	assert.Equal(t, first.RunID, runs[1].RunID)
	assert.Equal(t, first, runs[1])

	// Duplicate run IDs are rejected by the schema.
	assert.Error(t, db.RecordRun(first))
}

func TestRecordOutputStats(t *testing.T) {
	db := openTestDB(t)

	run := Run{
		RunID:     NewRunID(),
		Output:    "eigen",
		NX:        3,
		NY:        3,
		NZ:        3,
		StartedAt: time.Now().UTC(),
	}
	require.NoError(t, db.RecordRun(run))

	stats := []OutputStat{
		{RunID: run.RunID, Name: "e1", Samples: 1000, Min: 0, Max: 9.5, Mean: 1.2},
		{RunID: run.RunID, Name: "e2", Samples: 1000, Min: 0, Max: 4.5, Mean: 0.6},
		{RunID: run.RunID, Name: "e3", Samples: 1000, Min: 0, Max: 1.5, Mean: 0.1},
	}
	require.NoError(t, db.RecordOutputStats(stats))

	got, err := db.OutputStats(run.RunID)
	require.NoError(t, err)
	assert.Equal(t, stats, got)

	// A second batch with a clashing (run_id, name) must fail and
	// leave the original rows intact.
	assert.Error(t, db.RecordOutputStats(stats[:1]))
	got, err = db.OutputStats(run.RunID)
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestNewRunID_Unique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := NewRunID()
		require.NotEmpty(t, id)
		require.False(t, seen[id], "duplicate run id %s", id)
		seen[id] = true
	}
}
