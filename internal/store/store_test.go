package store

import (
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreOpenAndMigrate(t *testing.T) {
	store := openTestStore(t)

	version, err := store.getSchemaVersion()
	if err != nil {
		t.Fatalf("failed to get schema version: %v", err)
	}
	if version != currentSchemaVersion {
		t.Errorf("expected schema version %d, got %d", currentSchemaVersion, version)
	}

	for _, table := range []string{"runs", "placements", "schema_version"} {
		var count int
		err := store.db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&count)
		if err != nil {
			t.Fatalf("failed to query table %s: %v", table, err)
		}
		if count != 1 {
			t.Errorf("expected table %s to exist", table)
		}
	}

	for _, index := range []string{"idx_runs_started_at", "idx_placements_run_id", "idx_placements_dest_path"} {
		var count int
		err := store.db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='index' AND name=?", index).Scan(&count)
		if err != nil {
			t.Fatalf("failed to query index %s: %v", index, err)
		}
		if count != 1 {
			t.Errorf("expected index %s to exist (schema v2)", index)
		}
	}

	if err := store.CheckIntegrity(); err != nil {
		t.Errorf("integrity check failed: %v", err)
	}
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")

	store, err := Open(path)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	if err := store.StartRun(&Run{ID: "run-1", InputDir: "/in", OutputDir: "/out", Mode: "copy", Strategy: "filename"}); err != nil {
		t.Fatalf("failed to start run: %v", err)
	}
	store.Close()

	store, err = OpenWithOptions(path, &OpenOptions{NetworkOptimized: true})
	if err != nil {
		t.Fatalf("failed to reopen store: %v", err)
	}
	defer store.Close()

	run, err := store.GetRun("run-1")
	if err != nil || run == nil {
		t.Fatalf("expected run after reopen, got %v, %v", run, err)
	}
}

func TestRunLifecycle(t *testing.T) {
	store := openTestStore(t)

	run := &Run{
		ID:        "run-1",
		StartedAt: time.Unix(1700000000, 0),
		InputDir:  "/in",
		OutputDir: "/out",
		Mode:      "move",
		Strategy:  "metadata",
	}
	if err := store.StartRun(run); err != nil {
		t.Fatalf("failed to start run: %v", err)
	}
	if run.Status != RunRunning {
		t.Errorf("expected status %q, got %q", RunRunning, run.Status)
	}

	if err := store.FinishRun("run-1", RunCompleted, 3, 1, 2); err != nil {
		t.Fatalf("failed to finish run: %v", err)
	}

	got, err := store.GetRun("run-1")
	if err != nil {
		t.Fatalf("failed to get run: %v", err)
	}
	if got.Status != RunCompleted || got.Placed != 3 || got.Failed != 1 || got.Skipped != 2 {
		t.Errorf("unexpected run: %+v", got)
	}
	if !got.StartedAt.Equal(run.StartedAt) {
		t.Errorf("expected started_at %v, got %v", run.StartedAt, got.StartedAt)
	}
	if got.FinishedAt.IsZero() {
		t.Error("expected finished_at to be set")
	}

	missing, err := store.GetRun("nope")
	if err != nil || missing != nil {
		t.Errorf("expected nil run for unknown id, got %v, %v", missing, err)
	}
}

func TestListRunsNewestFirst(t *testing.T) {
	store := openTestStore(t)

	for i, id := range []string{"old", "mid", "new"} {
		run := &Run{ID: id, StartedAt: time.Unix(int64(1700000000+i*60), 0), InputDir: "/in", OutputDir: "/out", Mode: "copy", Strategy: "filename"}
		if err := store.StartRun(run); err != nil {
			t.Fatalf("failed to start run %s: %v", id, err)
		}
	}

	runs, err := store.ListRuns(0)
	if err != nil {
		t.Fatalf("failed to list runs: %v", err)
	}
	if len(runs) != 3 || runs[0].ID != "new" || runs[2].ID != "old" {
		t.Errorf("unexpected run order: %v", runIDs(runs))
	}

	runs, err = store.ListRuns(2)
	if err != nil {
		t.Fatalf("failed to list runs: %v", err)
	}
	if len(runs) != 2 {
		t.Errorf("expected limit to apply, got %d runs", len(runs))
	}
}

func TestPlacements(t *testing.T) {
	store := openTestStore(t)

	if err := store.StartRun(&Run{ID: "run-1", InputDir: "/in", OutputDir: "/out", Mode: "copy", Strategy: "filename"}); err != nil {
		t.Fatalf("failed to start run: %v", err)
	}

	placements := []*Placement{
		{RunID: "run-1", SrcPath: "/in/A-B-1 C.mp3", DestPath: "/out/A/B/1 C.mp3", Action: "copy", Status: PlacementPlaced, BytesWritten: 1024},
		{RunID: "run-1", SrcPath: "/in/A-B-2 D.mp3", DestPath: "/out/A/B/2 D.mp3", Action: "copy", Status: PlacementFailed, Error: "permission denied"},
	}
	for _, p := range placements {
		if err := store.RecordPlacement(p); err != nil {
			t.Fatalf("failed to record placement: %v", err)
		}
		if p.ID == 0 {
			t.Error("expected placement ID to be set after insert")
		}
	}

	got, err := store.ListPlacements("run-1")
	if err != nil {
		t.Fatalf("failed to list placements: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 placements, got %d", len(got))
	}
	if got[0].SrcPath != "/in/A-B-1 C.mp3" || got[0].BytesWritten != 1024 {
		t.Errorf("unexpected first placement: %+v", got[0])
	}
	if got[1].Error != "permission denied" {
		t.Errorf("expected error to round-trip, got %q", got[1].Error)
	}

	failed, err := store.CountPlacementsByStatus("run-1", PlacementFailed)
	if err != nil || failed != 1 {
		t.Errorf("expected 1 failed placement, got %d, %v", failed, err)
	}

	found, err := store.FindByDest("/out/A/B/1 C.mp3")
	if err != nil || found == nil || found.SrcPath != "/in/A-B-1 C.mp3" {
		t.Errorf("FindByDest returned %+v, %v", found, err)
	}
	none, err := store.FindByDest("/out/missing.mp3")
	if err != nil || none != nil {
		t.Errorf("expected no placement, got %+v, %v", none, err)
	}
}

func runIDs(runs []*Run) []string {
	ids := make([]string, len(runs))
	for i, r := range runs {
		ids[i] = r.ID
	}
	return ids
}
