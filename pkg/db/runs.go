package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dtnitsch/gsc-inspect/models"
)

const (
	RunStatusRunning     = "running"
	RunStatusCompleted   = "completed"
	RunStatusInterrupted = "interrupted"
	RunStatusFailed      = "failed"
)

// Run represents one inspect invocation
type Run struct {
	RunID      int64
	StartedAt  time.Time
	FinishedAt sql.NullTime
	SiteURL    string
	SitemapURL string
	OutputPath string
	Stats      RunStats
	Status     string
}

// RunStats are the counters stored when a run finishes
type RunStats struct {
	Discovered int
	Considered int
	Skipped    int
	Inspected  int
	Failed     int
}

// RunResult is one row written during a run
type RunResult struct {
	URL           string
	Verdict       string
	CoverageState string
	Failed        bool
	RecordedAt    time.Time
}

// CreateRun inserts a run in the running state and returns its ID
func (db *DB) CreateRun(siteURL, sitemapURL, outputPath string) (int64, error) {
	result, err := db.Exec(`
		INSERT INTO runs (site_url, sitemap_url, output_path, status)
		VALUES (?, ?, ?, ?)
	`, siteURL, sitemapURL, outputPath, RunStatusRunning)
	if err != nil {
		return 0, fmt.Errorf("failed to create run: %w", err)
	}

	runID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get run ID: %w", err)
	}
	return runID, nil
}

// FinishRun stores the final counters and status of a run
func (db *DB) FinishRun(runID int64, stats RunStats, status string) error {
	_, err := db.Exec(`
		UPDATE runs
		SET finished_at = CURRENT_TIMESTAMP,
		    discovered_count = ?, considered_count = ?, skipped_count = ?,
		    inspected_count = ?, failed_count = ?, status = ?
		WHERE run_id = ?
	`, stats.Discovered, stats.Considered, stats.Skipped, stats.Inspected, stats.Failed, status, runID)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	return nil
}

// InsertRunResult records a row written during a run
func (db *DB) InsertRunResult(runID int64, row models.Row) error {
	_, err := db.Exec(`
		INSERT INTO run_results (run_id, url, verdict, coverage_state, failed)
		VALUES (?, ?, ?, ?, ?)
	`, runID, row.URL, row.Verdict, row.CoverageState, row.Failed())
	if err != nil {
		return fmt.Errorf("failed to insert run result: %w", err)
	}
	return nil
}

const runColumns = `
	run_id, started_at, finished_at, site_url, sitemap_url, output_path,
	discovered_count, considered_count, skipped_count, inspected_count, failed_count, status`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (Run, error) {
	var r Run
	err := s.Scan(&r.RunID, &r.StartedAt, &r.FinishedAt, &r.SiteURL, &r.SitemapURL, &r.OutputPath,
		&r.Stats.Discovered, &r.Stats.Considered, &r.Stats.Skipped, &r.Stats.Inspected, &r.Stats.Failed,
		&r.Status)
	return r, err
}

// GetRunByID retrieves a run by its ID
func (db *DB) GetRunByID(runID int64) (*Run, error) {
	r, err := scanRun(db.QueryRow("SELECT "+runColumns+" FROM runs WHERE run_id = ?", runID))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run %d not found", runID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return &r, nil
}

// ListRuns returns the most recent runs first
func (db *DB) ListRuns(limit int) ([]Run, error) {
	query := "SELECT " + runColumns + " FROM runs ORDER BY run_id DESC"
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetRunResults returns the rows written during a run, in write order
func (db *DB) GetRunResults(runID int64) ([]RunResult, error) {
	rows, err := db.Query(`
		SELECT url, COALESCE(verdict, ''), COALESCE(coverage_state, ''), failed, recorded_at
		FROM run_results
		WHERE run_id = ?
		ORDER BY id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get run results: %w", err)
	}
	defer rows.Close()

	var results []RunResult
	for rows.Next() {
		var r RunResult
		if err := rows.Scan(&r.URL, &r.Verdict, &r.CoverageState, &r.Failed, &r.RecordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run result: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// RunRecorder records rows for one run. It satisfies exporter.Recorder.
type RunRecorder struct {
	db    *DB
	runID int64
}

func (db *DB) Recorder(runID int64) *RunRecorder {
	return &RunRecorder{db: db, runID: runID}
}

func (r *RunRecorder) RecordResult(row models.Row) error {
	return r.db.InsertRunResult(r.runID, row)
}
