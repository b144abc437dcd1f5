package batch_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"taxonsort/internal/batch"
	"taxonsort/internal/classify"
	"taxonsort/internal/config"
	"taxonsort/internal/inat"
	"taxonsort/internal/runlog"
	"taxonsort/internal/taxonomy"
	"taxonsort/internal/testsupport"
)

func openJournal(t *testing.T, cfg *config.Config) *runlog.Store {
	t.Helper()
	store, err := runlog.Open(cfg)
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func writeImage(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("img"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func mothRecords() map[int64]*taxonomy.TaxonRecord {
	return map[int64]*taxonomy.TaxonRecord{
		47158: {
			ID:   47158,
			Name: "Spilosoma",
			Rank: "genus",
			Ancestors: []taxonomy.TaxonRecord{
				{Rank: "family", Name: "Erebidae"},
				{Rank: "subfamily", Name: "Arctiinae"},
				{Rank: "tribe", Name: "Arctiini"},
			},
		},
	}
}

func TestScanImagesFiltersAndRecurses(t *testing.T) {
	root := t.TempDir()
	writeImage(t, filepath.Join(root, "a.jpg"))
	writeImage(t, filepath.Join(root, "B.JPEG"))
	writeImage(t, filepath.Join(root, "nested", "c.png"))
	writeImage(t, filepath.Join(root, "nested", "d.TIFF"))
	writeImage(t, filepath.Join(root, "notes.txt"))
	writeImage(t, filepath.Join(root, "raw.nef"))

	images, err := batch.ScanImages(root)
	if err != nil {
		t.Fatalf("ScanImages failed: %v", err)
	}
	want := []string{
		filepath.Join(root, "B.JPEG"),
		filepath.Join(root, "a.jpg"),
		filepath.Join(root, "nested", "c.png"),
		filepath.Join(root, "nested", "d.TIFF"),
	}
	if len(images) != len(want) {
		t.Fatalf("unexpected image list: %v", images)
	}
	for i := range want {
		if images[i] != want[i] {
			t.Fatalf("image %d = %q, want %q", i, images[i], want[i])
		}
	}
}

func TestSaveCheckpointOverwritesAtomically(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "checkpoint.json")

	first := []*classify.Result{{ImagePath: "/a.jpg", TaxonID: 1, TaxonName: "One"}}
	if err := batch.SaveCheckpoint(path, first); err != nil {
		t.Fatalf("SaveCheckpoint failed: %v", err)
	}
	second := []*classify.Result{
		{ImagePath: "/a.jpg", TaxonID: 1, TaxonName: "One"},
		{ImagePath: "/b.jpg", TaxonID: 2, TaxonName: "Two"},
	}
	if err := batch.SaveCheckpoint(path, second); err != nil {
		t.Fatalf("SaveCheckpoint overwrite failed: %v", err)
	}

	loaded, ok, err := batch.LoadCheckpoint(path)
	if err != nil || !ok {
		t.Fatalf("LoadCheckpoint = ok=%v err=%v", ok, err)
	}
	if len(loaded) != 2 || loaded[1].TaxonName != "Two" {
		t.Fatalf("unexpected checkpoint contents: %+v", loaded)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected no leftover temp files, got %d entries", len(entries))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !json.Valid(data) {
		t.Fatal("checkpoint is not valid JSON")
	}
}

func TestLoadCheckpointMissingAndCorrupt(t *testing.T) {
	dir := t.TempDir()

	if _, ok, err := batch.LoadCheckpoint(filepath.Join(dir, "absent.json")); ok || err != nil {
		t.Fatalf("expected absent checkpoint, got ok=%v err=%v", ok, err)
	}

	corrupt := filepath.Join(dir, "corrupt.json")
	if err := os.WriteFile(corrupt, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, ok, err := batch.LoadCheckpoint(corrupt); ok || err == nil {
		t.Fatalf("expected decode error, got ok=%v err=%v", ok, err)
	}
}

func TestRunClassifiesAndCheckpoints(t *testing.T) {
	root := t.TempDir()
	good := filepath.Join(root, "a.jpg")
	bad := filepath.Join(root, "b.jpg")
	writeImage(t, good)
	writeImage(t, bad)
	checkpoint := filepath.Join(root, "checkpoint.json")

	scorer := &testsupport.ScriptedScorer{
		Responses: map[string]*inat.ScoreResponse{
			good: testsupport.SingleCandidate(47158, "Spilosoma", 91.2),
		},
		Errs: map[string]error{
			bad: errors.New("service unavailable"),
		},
	}
	pipeline := classify.NewPipeline(scorer, &testsupport.StaticResolver{Records: mothRecords()}, nil)
	runner := batch.NewRunner(pipeline, nil, nil, batch.Options{Delay: -1, CheckpointEvery: 1})

	results, stats, err := runner.Run(context.Background(), root, checkpoint)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if stats.Attempted != 2 || stats.Succeeded != 1 || stats.Failed != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if len(results) != 1 || results[0].ImagePath != good {
		t.Fatalf("unexpected results: %+v", results)
	}
	if results[0].Hierarchy.Genus != "Spilosoma" {
		t.Fatalf("unexpected hierarchy: %+v", results[0].Hierarchy)
	}

	loaded, ok, err := batch.LoadCheckpoint(checkpoint)
	if err != nil || !ok {
		t.Fatalf("final checkpoint missing: ok=%v err=%v", ok, err)
	}
	if len(loaded) != 1 {
		t.Fatalf("unexpected checkpoint size: %d", len(loaded))
	}
}

func TestRunPartialFailureIsolation(t *testing.T) {
	root := t.TempDir()
	scorer := &testsupport.ScriptedScorer{
		Responses: map[string]*inat.ScoreResponse{},
		Errs:      map[string]error{},
	}
	var order []string
	for _, name := range []string{"a.jpg", "b.jpg", "c.jpg", "d.jpg", "e.jpg"} {
		path := filepath.Join(root, name)
		writeImage(t, path)
		order = append(order, path)
		scorer.Responses[path] = testsupport.SingleCandidate(47158, "Spilosoma", 70)
	}
	delete(scorer.Responses, order[2])
	scorer.Errs[order[2]] = errors.New("scoring blew up")

	pipeline := classify.NewPipeline(scorer, &testsupport.StaticResolver{Records: mothRecords()}, nil)
	runner := batch.NewRunner(pipeline, nil, nil, batch.Options{Delay: -1})

	results, stats, err := runner.Run(context.Background(), root, filepath.Join(t.TempDir(), "checkpoint.json"))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if stats.Attempted != 5 || stats.Succeeded != 4 || stats.Failed != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if len(results) != 4 {
		t.Fatalf("expected four results, got %d", len(results))
	}
	want := []string{order[0], order[1], order[3], order[4]}
	for i, path := range want {
		if results[i].ImagePath != path {
			t.Fatalf("result %d = %q, want %q (order must be preserved)", i, results[i].ImagePath, path)
		}
	}
}

func TestRunResumeNeverRescores(t *testing.T) {
	root := t.TempDir()
	writeImage(t, filepath.Join(root, "a.jpg"))
	checkpoint := filepath.Join(root, "checkpoint.json")

	stored := []*classify.Result{{ImagePath: "/old/a.jpg", TaxonID: 47158, TaxonName: "Spilosoma"}}
	if err := batch.SaveCheckpoint(checkpoint, stored); err != nil {
		t.Fatal(err)
	}

	scorer := &testsupport.ScriptedScorer{}
	pipeline := classify.NewPipeline(scorer, &testsupport.StaticResolver{}, nil)
	runner := batch.NewRunner(pipeline, nil, nil, batch.Options{Delay: -1})

	results, stats, err := runner.Run(context.Background(), root, checkpoint)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if scorer.Calls() != 0 {
		t.Fatalf("resume must not re-score, got %d calls", scorer.Calls())
	}
	if stats.Attempted != 0 {
		t.Fatalf("resume should not attempt images, got %+v", stats)
	}
	if len(results) != 1 || results[0].ImagePath != "/old/a.jpg" {
		t.Fatalf("expected stored results, got %+v", results)
	}
}

func TestRunCancellationWritesFinalCheckpoint(t *testing.T) {
	root := t.TempDir()
	writeImage(t, filepath.Join(root, "a.jpg"))
	writeImage(t, filepath.Join(root, "b.jpg"))
	checkpoint := filepath.Join(root, "checkpoint.json")

	ctx, cancel := context.WithCancel(context.Background())
	scorer := &testsupport.ScriptedScorer{
		Responses: map[string]*inat.ScoreResponse{
			filepath.Join(root, "a.jpg"): testsupport.SingleCandidate(47158, "Spilosoma", 80),
			filepath.Join(root, "b.jpg"): testsupport.SingleCandidate(47158, "Spilosoma", 80),
		},
	}
	pipeline := classify.NewPipeline(scorer, &testsupport.StaticResolver{Records: mothRecords()}, nil)

	cancelBar := progressFunc(func(int) error {
		cancel()
		return nil
	})
	runner := batch.NewRunner(pipeline, nil, nil, batch.Options{Delay: -1, Bar: cancelBar})

	results, stats, err := runner.Run(ctx, root, checkpoint)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if stats.Attempted != 1 {
		t.Fatalf("expected cancellation after first image, got %+v", stats)
	}

	loaded, ok, loadErr := batch.LoadCheckpoint(checkpoint)
	if loadErr != nil || !ok {
		t.Fatalf("final checkpoint missing after cancel: ok=%v err=%v", ok, loadErr)
	}
	if len(loaded) != len(results) {
		t.Fatalf("checkpoint/result mismatch: %d vs %d", len(loaded), len(results))
	}
}

func TestRunJournalsOutcomes(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := openJournal(t, cfg)

	root := t.TempDir()
	good := filepath.Join(root, "a.jpg")
	bad := filepath.Join(root, "b.jpg")
	writeImage(t, good)
	writeImage(t, bad)
	checkpoint := filepath.Join(root, "checkpoint.json")

	scorer := &testsupport.ScriptedScorer{
		Responses: map[string]*inat.ScoreResponse{
			good: testsupport.SingleCandidate(47158, "Spilosoma", 91.2),
		},
		Errs: map[string]error{bad: errors.New("boom")},
	}
	pipeline := classify.NewPipeline(scorer, &testsupport.StaticResolver{Records: mothRecords()}, nil)
	runner := batch.NewRunner(pipeline, store, nil, batch.Options{Delay: -1})

	if _, _, err := runner.Run(context.Background(), root, checkpoint); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	runs, err := store.LastRuns(context.Background(), 1)
	if err != nil || len(runs) != 1 {
		t.Fatalf("expected one journaled run: %v %v", runs, err)
	}
	if runs[0].Attempted != 2 || runs[0].Succeeded != 1 || runs[0].Failed != 1 {
		t.Fatalf("unexpected journal counters: %+v", runs[0])
	}
	images, err := store.RunImages(context.Background(), runs[0].ID)
	if err != nil || len(images) != 2 {
		t.Fatalf("expected two journaled images: %v %v", images, err)
	}
}

type progressFunc func(int) error

func (f progressFunc) Add(n int) error { return f(n) }
