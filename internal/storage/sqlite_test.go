package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/goccy/go-json"
)

func testRun(id string, created time.Time) RunRecord {
	return RunRecord{
		ID:        id,
		CreatedAt: created,
		Dataset:   "toy",
		Model:     "hole",
		Config:    json.RawMessage(`{"dim":64}`),
		Metrics:   json.RawMessage(`{"mrr":0.42}`),
		Losses:    []float64{0.9, 0.5, 0.3},
	}
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewSQLiteStore(filepath.Join(t.TempDir(), "runs.db"))
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	run := testRun("r1", created)
	if err := store.SaveRun(ctx, run); err != nil {
		t.Fatalf("save run: %v", err)
	}

	loaded, ok, err := store.GetRun(ctx, "r1")
	if err != nil {
		t.Fatalf("get run: %v", err)
	}
	if !ok {
		t.Fatalf("expected run r1")
	}
	if loaded.ID != "r1" || loaded.Dataset != "toy" || loaded.Model != "hole" {
		t.Fatalf("unexpected run loaded: %+v", loaded)
	}
	if !loaded.CreatedAt.Equal(created) {
		t.Fatalf("created at %v, want %v", loaded.CreatedAt, created)
	}
	if len(loaded.Losses) != 3 || loaded.Losses[2] != 0.3 {
		t.Fatalf("unexpected losses: %v", loaded.Losses)
	}
	if loaded.SchemaVersion != CurrentSchemaVersion {
		t.Fatalf("schema version %d, want %d", loaded.SchemaVersion, CurrentSchemaVersion)
	}

	// Saving the same id again replaces the record.
	run.Metrics = json.RawMessage(`{"mrr":0.9}`)
	if err := store.SaveRun(ctx, run); err != nil {
		t.Fatalf("resave run: %v", err)
	}
	loaded, _, err = store.GetRun(ctx, "r1")
	if err != nil {
		t.Fatalf("get run after resave: %v", err)
	}
	if string(loaded.Metrics) != `{"mrr":0.9}` {
		t.Fatalf("metrics not replaced: %s", loaded.Metrics)
	}

	if _, ok, err := store.GetRun(ctx, "missing"); err != nil || ok {
		t.Fatalf("missing run: ok=%v err=%v", ok, err)
	}
}

func TestSQLiteStoreListOrdering(t *testing.T) {
	ctx := context.Background()
	store := NewSQLiteStore(filepath.Join(t.TempDir(), "runs.db"))
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"old", "mid", "new"} {
		if err := store.SaveRun(ctx, testRun(id, base.Add(time.Duration(i)*time.Hour))); err != nil {
			t.Fatalf("save %s: %v", id, err)
		}
	}

	runs, err := store.ListRuns(ctx)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("got %d runs, want 3", len(runs))
	}
	for i, want := range []string{"new", "mid", "old"} {
		if runs[i].ID != want {
			t.Fatalf("runs[%d] = %s, want %s", i, runs[i].ID, want)
		}
	}
}

func TestSQLiteStoreErrors(t *testing.T) {
	ctx := context.Background()

	if err := NewSQLiteStore("").Init(ctx); err == nil {
		t.Fatalf("empty path accepted")
	}

	store := NewSQLiteStore(filepath.Join(t.TempDir(), "runs.db"))
	if err := store.SaveRun(ctx, testRun("r1", time.Now())); err == nil {
		t.Fatalf("save before init accepted")
	}
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	if err := store.SaveRun(ctx, RunRecord{}); err == nil {
		t.Fatalf("empty run id accepted")
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, _, err := store.GetRun(ctx, "r1"); err == nil {
		t.Fatalf("get after close accepted")
	}
}
