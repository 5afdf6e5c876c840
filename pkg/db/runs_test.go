package db

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/dtnitsch/gsc-inspect/models"
)

// setupTestDB creates an in-memory SQLite database for testing
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	database := &DB{path: ":memory:"}
	var err error
	database.DB, err = openDB(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	// Each connection to :memory: is a separate database.
	database.SetMaxOpenConns(1)

	if err := database.InitSchema(); err != nil {
		t.Fatalf("failed to initialize schema: %v", err)
	}

	return database
}

func TestCreateRun(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	runID, err := db.CreateRun("sc-domain:example.com", "https://example.com/sitemap.xml", "out.csv")
	if err != nil {
		t.Fatalf("CreateRun() error = %v", err)
	}
	if runID == 0 {
		t.Fatal("CreateRun() returned 0 ID")
	}

	run, err := db.GetRunByID(runID)
	if err != nil {
		t.Fatalf("GetRunByID() error = %v", err)
	}
	if run.Status != RunStatusRunning {
		t.Errorf("run.Status = %q, want %q", run.Status, RunStatusRunning)
	}
	if run.FinishedAt.Valid {
		t.Error("run.FinishedAt should be NULL for a running run")
	}
	if run.SiteURL != "sc-domain:example.com" || run.OutputPath != "out.csv" {
		t.Errorf("run = %+v", run)
	}
	if run.StartedAt.IsZero() {
		t.Error("run.StartedAt is zero")
	}
}

func TestFinishRun(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	runID, err := db.CreateRun("https://example.com/", "https://example.com/sitemap.xml", "out.csv")
	if err != nil {
		t.Fatal(err)
	}

	stats := RunStats{Discovered: 10, Considered: 5, Skipped: 2, Inspected: 3, Failed: 1}
	if err := db.FinishRun(runID, stats, RunStatusCompleted); err != nil {
		t.Fatalf("FinishRun() error = %v", err)
	}

	run, err := db.GetRunByID(runID)
	if err != nil {
		t.Fatal(err)
	}
	if run.Stats != stats {
		t.Errorf("run.Stats = %+v, want %+v", run.Stats, stats)
	}
	if run.Status != RunStatusCompleted || !run.FinishedAt.Valid {
		t.Errorf("run = %+v", run)
	}
}

func TestGetRunByID_NotFound(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	if _, err := db.GetRunByID(42); err == nil {
		t.Fatal("expected error for missing run")
	}
}

func TestListRuns(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	var ids []int64
	for i := 0; i < 3; i++ {
		id, err := db.CreateRun("https://example.com/", "https://example.com/sitemap.xml", "out.csv")
		if err != nil {
			t.Fatal(err)
		}
		ids = append(ids, id)
	}

	runs, err := db.ListRuns(2)
	if err != nil {
		t.Fatalf("ListRuns() error = %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("ListRuns(2) returned %d runs", len(runs))
	}
	if runs[0].RunID != ids[2] || runs[1].RunID != ids[1] {
		t.Errorf("ListRuns() order = %d,%d, want newest first", runs[0].RunID, runs[1].RunID)
	}

	all, err := db.ListRuns(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Errorf("ListRuns(0) returned %d runs, want 3", len(all))
	}
}

func TestRunRecorder(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	runID, err := db.CreateRun("https://example.com/", "https://example.com/sitemap.xml", "out.csv")
	if err != nil {
		t.Fatal(err)
	}

	rec := db.Recorder(runID)
	if err := rec.RecordResult(models.Row{URL: "https://example.com/a", Verdict: "PASS", CoverageState: "Submitted and indexed"}); err != nil {
		t.Fatalf("RecordResult() error = %v", err)
	}
	if err := rec.RecordResult(models.ErrorRow("https://example.com/b", errors.New("boom"))); err != nil {
		t.Fatalf("RecordResult() error = %v", err)
	}

	results, err := db.GetRunResults(runID)
	if err != nil {
		t.Fatalf("GetRunResults() error = %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("GetRunResults() returned %d results, want 2", len(results))
	}
	if results[0].URL != "https://example.com/a" || results[0].Failed {
		t.Errorf("results[0] = %+v", results[0])
	}
	if !results[1].Failed || results[1].Verdict != "ERROR: boom" {
		t.Errorf("results[1] = %+v", results[1])
	}
}

func TestRecordResult_UnknownRun(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	if err := db.Recorder(999).RecordResult(models.Row{URL: "https://example.com/"}); err == nil {
		t.Fatal("expected foreign key error for unknown run")
	}
}

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultDBName)

	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if _, err := db.CreateRun("s", "m", "o"); err != nil {
		t.Fatalf("CreateRun() error = %v", err)
	}
	db.Close()

	// Reopening keeps existing data.
	db, err = Open(path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer db.Close()
	if db.Path() != path {
		t.Errorf("Path() = %q", db.Path())
	}
	runs, err := db.ListRuns(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 {
		t.Errorf("ListRuns() after reopen = %d runs, want 1", len(runs))
	}

	if _, err := Open(""); err == nil {
		t.Error("Open(\"\") expected error")
	}
}
