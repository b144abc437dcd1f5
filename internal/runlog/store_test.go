package runlog_test

import (
	"context"
	"testing"

	"taxonsort/internal/runlog"
	"taxonsort/internal/testsupport"
)

func openStore(t *testing.T) *runlog.Store {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store, err := runlog.Open(cfg)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("close store: %v", err)
		}
	})
	return store
}

func TestBeginRecordFinishRoundTrip(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	run, err := store.BeginRun(ctx, "/photos/inbox", "/photos/inbox/checkpoint.json")
	if err != nil {
		t.Fatalf("BeginRun failed: %v", err)
	}
	if run.ID == "" {
		t.Fatal("expected generated run id")
	}
	if run.StartedAt.IsZero() {
		t.Fatal("expected start timestamp")
	}

	records := []runlog.ImageRecord{
		{RunID: run.ID, ImagePath: "/photos/inbox/a.jpg", Status: runlog.StatusClassified, TaxonID: 47158, TaxonName: "Spilosoma", Score: 91.2},
		{RunID: run.ID, ImagePath: "/photos/inbox/b.jpg", Status: runlog.StatusSkipped, Reason: "missing taxonomic data"},
	}
	for _, rec := range records {
		if err := store.RecordImage(ctx, rec); err != nil {
			t.Fatalf("RecordImage failed: %v", err)
		}
	}

	if err := store.FinishRun(ctx, run.ID, 2, 1, 1); err != nil {
		t.Fatalf("FinishRun failed: %v", err)
	}

	runs, err := store.LastRuns(ctx, 5)
	if err != nil {
		t.Fatalf("LastRuns failed: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected one run, got %d", len(runs))
	}
	got := runs[0]
	if got.ID != run.ID || got.SourceDir != "/photos/inbox" {
		t.Fatalf("unexpected run: %+v", got)
	}
	if got.Attempted != 2 || got.Succeeded != 1 || got.Failed != 1 {
		t.Fatalf("unexpected counters: %+v", got)
	}
	if got.FinishedAt == nil || got.FinishedAt.IsZero() {
		t.Fatal("expected finish timestamp")
	}

	images, err := store.RunImages(ctx, run.ID)
	if err != nil {
		t.Fatalf("RunImages failed: %v", err)
	}
	if len(images) != 2 {
		t.Fatalf("expected two image rows, got %d", len(images))
	}
	if images[0].ImagePath != "/photos/inbox/a.jpg" || images[0].Status != runlog.StatusClassified {
		t.Fatalf("unexpected first row: %+v", images[0])
	}
	if images[1].Reason != "missing taxonomic data" {
		t.Fatalf("unexpected skip reason: %q", images[1].Reason)
	}
	if images[0].RecordedAt.IsZero() {
		t.Fatal("expected recorded timestamp")
	}
}

func TestUnfinishedRunHasNilFinishTime(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	run, err := store.BeginRun(ctx, "/photos/inbox", "/photos/inbox/checkpoint.json")
	if err != nil {
		t.Fatalf("BeginRun failed: %v", err)
	}

	runs, err := store.LastRuns(ctx, 1)
	if err != nil {
		t.Fatalf("LastRuns failed: %v", err)
	}
	if len(runs) != 1 || runs[0].ID != run.ID {
		t.Fatalf("unexpected runs: %+v", runs)
	}
	if runs[0].FinishedAt != nil {
		t.Fatalf("expected nil finish time, got %v", runs[0].FinishedAt)
	}
}

func TestLastRunsLimitsAndOrders(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := store.BeginRun(ctx, "/photos/inbox", "/photos/inbox/checkpoint.json"); err != nil {
			t.Fatalf("BeginRun failed: %v", err)
		}
	}

	runs, err := store.LastRuns(ctx, 2)
	if err != nil {
		t.Fatalf("LastRuns failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected two runs, got %d", len(runs))
	}
	if runs[0].StartedAt.Before(runs[1].StartedAt) {
		t.Fatal("expected most recent run first")
	}
}
