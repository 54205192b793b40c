package history

import (
	"path/filepath"
	"testing"
	"time"
)

func TestStoreSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")

	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	id, err := store.SaveRun(Run{
		Timestamp:       base,
		FileCount:       10,
		DefinitionCount: 120,
		ImportsResolved: 8,
		CallsResolved:   40,
		UnresolvedCount: 3,
	})
	if err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	if id == "" {
		t.Fatal("SaveRun returned empty id")
	}

	if _, err := store.SaveRun(Run{
		Timestamp:       base.Add(time.Hour),
		FileCount:       11,
		ImportsResolved: 9,
		CallsResolved:   44,
		UnresolvedCount: 1,
	}); err != nil {
		t.Fatalf("SaveRun second: %v", err)
	}

	runs, err := store.LoadRuns(time.Time{})
	if err != nil {
		t.Fatalf("LoadRuns: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("runs = %d, want 2", len(runs))
	}
	if runs[0].ID != id {
		t.Errorf("first run id = %s, want %s", runs[0].ID, id)
	}
	if runs[0].FileCount != 10 || runs[0].Resolved() != 48 {
		t.Errorf("first run round-trip mismatch: %+v", runs[0])
	}
	if !runs[1].Timestamp.After(runs[0].Timestamp) {
		t.Error("runs not ordered by timestamp")
	}

	// Since-filter drops the first run.
	recent, err := store.LoadRuns(base.Add(30 * time.Minute))
	if err != nil {
		t.Fatalf("LoadRuns since: %v", err)
	}
	if len(recent) != 1 {
		t.Errorf("recent runs = %d, want 1", len(recent))
	}
}

func TestBuildTrendReport(t *testing.T) {
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	runs := []Run{
		{Timestamp: base, FileCount: 10, CallsResolved: 40, UnresolvedCount: 6},
		{Timestamp: base.Add(time.Hour), FileCount: 12, CallsResolved: 50, UnresolvedCount: 2},
	}

	report, err := BuildTrendReport(runs, 24*time.Hour)
	if err != nil {
		t.Fatalf("BuildTrendReport: %v", err)
	}
	if report.RunCount != 2 {
		t.Fatalf("RunCount = %d, want 2", report.RunCount)
	}

	second := report.Points[1]
	if second.DeltaFiles != 2 {
		t.Errorf("DeltaFiles = %d, want 2", second.DeltaFiles)
	}
	if second.DeltaUnresolved != -4 {
		t.Errorf("DeltaUnresolved = %d, want -4", second.DeltaUnresolved)
	}
	if second.AvgUnresolved != 4 {
		t.Errorf("AvgUnresolved = %v, want 4", second.AvgUnresolved)
	}

	if _, err := BuildTrendReport(nil, time.Hour); err == nil {
		t.Error("expected error for empty runs")
	}
}
