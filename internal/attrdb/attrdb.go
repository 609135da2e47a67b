// Package attrdb records attribute runs and per-output summary
// statistics in a local sqlite database.
//
// Only run bookkeeping lives here: parameters, timings and min/max/mean
// per named output. The attribute volumes themselves are the driver's
// to write wherever it wants; they are never persisted by this package.
package attrdb

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// DB wraps the sqlite connection for the attribute run store.
type DB struct {
	*sql.DB
}

// Open opens (or creates) the run store at path and applies pending
// migrations.
func Open(path string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open run store: %w", err)
	}
	db := &DB{sqlDB}
	if err := db.MigrateUp(); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return db, nil
}

// NewRunID returns a fresh run identifier.
func NewRunID() string { return uuid.NewString() }

// Run is one attribute computation over a survey volume.
type Run struct {
	RunID        string
	Output       string // "coef" or "eigen"
	NX, NY, NZ   int    // window extents
	WeightFactor float64
	Gamma        float64
	SurveyNX     int
	SurveyNY     int
	SurveyNZ     int
	Workers      int
	StartedAt    time.Time
	DurationMs   int64
}

// OutputStat is the summary of one named output stream (r0..r9 or
// e1..e3) over the defined region of a run.
type OutputStat struct {
	RunID   string
	Name    string
	Samples int
	Min     float64
	Max     float64
	Mean    float64
}

// RecordRun inserts one run row.
func (db *DB) RecordRun(run Run) error {
	_, err := db.Exec(`
		INSERT INTO attribute_runs (
			run_id, output, window_nx, window_ny, window_nz,
			weight_factor, gamma, survey_nx, survey_ny, survey_nz,
			workers, started_unix_nanos, duration_ms
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunID, run.Output, run.NX, run.NY, run.NZ,
		run.WeightFactor, run.Gamma, run.SurveyNX, run.SurveyNY, run.SurveyNZ,
		run.Workers, run.StartedAt.UnixNano(), run.DurationMs,
	)
	if err != nil {
		return fmt.Errorf("failed to record run %s: %w", run.RunID, err)
	}
	return nil
}

// RecordOutputStats inserts the summary rows for a run in one
// transaction.
func (db *DB) RecordOutputStats(stats []OutputStat) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin stats transaction: %w", err)
	}
	stmt, err := tx.Prepare(`
		INSERT INTO output_stats (run_id, name, samples, min, max, mean)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to prepare stats insert: %w", err)
	}
	defer stmt.Close()

	for _, s := range stats {
		if _, err := stmt.Exec(s.RunID, s.Name, s.Samples, s.Min, s.Max, s.Mean); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record stats for %s/%s: %w", s.RunID, s.Name, err)
		}
	}
	return tx.Commit()
}

// ListRuns returns the most recent runs, newest first.
func (db *DB) ListRuns(limit int) ([]Run, error) {
	rows, err := db.Query(`
		SELECT run_id, output, window_nx, window_ny, window_nz,
		       weight_factor, gamma, survey_nx, survey_ny, survey_nz,
		       workers, started_unix_nanos, duration_ms
		FROM attribute_runs
		ORDER BY started_unix_nanos DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var startedNanos int64
		if err := rows.Scan(
			&r.RunID, &r.Output, &r.NX, &r.NY, &r.NZ,
			&r.WeightFactor, &r.Gamma, &r.SurveyNX, &r.SurveyNY, &r.SurveyNZ,
			&r.Workers, &startedNanos, &r.DurationMs,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run row: %w", err)
		}
		r.StartedAt = time.Unix(0, startedNanos).UTC()
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// OutputStats returns the summary rows for one run.
func (db *DB) OutputStats(runID string) ([]OutputStat, error) {
	rows, err := db.Query(`
		SELECT run_id, name, samples, min, max, mean
		FROM output_stats
		WHERE run_id = ?
		ORDER BY name`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query stats for %s: %w", runID, err)
	}
	defer rows.Close()

	var stats []OutputStat
	for rows.Next() {
		var s OutputStat
		if err := rows.Scan(&s.RunID, &s.Name, &s.Samples, &s.Min, &s.Max, &s.Mean); err != nil {
			return nil, fmt.Errorf("failed to scan stats row: %w", err)
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}
