package models

import (
	"errors"
	"strings"
	"testing"
)

func TestRowRecord_ColumnOrder(t *testing.T) {
	row := RowFromStatus("https://example.com/a", IndexStatusResult{
		Verdict:         "PASS",
		CoverageState:   "Submitted and indexed",
		IndexingState:   "INDEXING_ALLOWED",
		PageFetchState:  "SUCCESSFUL",
		RobotsTxtState:  "ALLOWED",
		LastCrawlTime:   "2026-01-02T03:04:05Z",
		GoogleCanonical: "https://example.com/a",
		UserCanonical:   "https://example.com/a",
		ReferringURLs:   []string{"https://example.com/", "https://example.com/b"},
	})

	rec := row.Record()
	if len(rec) != len(Columns) {
		t.Fatalf("len(Record()) = %d, want %d", len(rec), len(Columns))
	}

	want := []string{
		"https://example.com/a",
		"PASS",
		"Submitted and indexed",
		"INDEXING_ALLOWED",
		"SUCCESSFUL",
		"ALLOWED",
		"2026-01-02T03:04:05Z",
		"https://example.com/a",
		"https://example.com/a",
		"https://example.com/,https://example.com/b",
	}
	for i := range want {
		if rec[i] != want[i] {
			t.Errorf("Record()[%d] (%s) = %q, want %q", i, Columns[i], rec[i], want[i])
		}
	}
}

func TestErrorRow(t *testing.T) {
	row := ErrorRow("https://example.com/x", errors.New("quota exceeded"))

	if !strings.HasPrefix(row.Verdict, ErrorMarker) {
		t.Errorf("Verdict = %q, want prefix %q", row.Verdict, ErrorMarker)
	}
	if !strings.Contains(row.Verdict, "quota exceeded") {
		t.Errorf("Verdict = %q, want it to contain the error text", row.Verdict)
	}
	if !row.Failed() {
		t.Error("Failed() = false, want true")
	}

	rec := row.Record()
	for i := 2; i < len(rec); i++ {
		if rec[i] != "" {
			t.Errorf("Record()[%d] = %q, want empty", i, rec[i])
		}
	}
}

func TestRowFailed_SuccessRow(t *testing.T) {
	row := RowFromStatus("https://example.com", IndexStatusResult{Verdict: "NEUTRAL"})
	if row.Failed() {
		t.Error("Failed() = true for a success row")
	}
}
