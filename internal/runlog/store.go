package runlog

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"taxonsort/internal/config"
)

// Image statuses recorded in the journal.
const (
	StatusClassified = "classified"
	StatusSkipped    = "skipped"
)

// Run is one batch invocation recorded in the journal.
type Run struct {
	ID             string
	SourceDir      string
	CheckpointPath string
	StartedAt      time.Time
	FinishedAt     *time.Time
	Attempted      int
	Succeeded      int
	Failed         int
}

// ImageRecord is the per-image outcome row attached to a run.
type ImageRecord struct {
	RunID      string
	ImagePath  string
	Status     string
	Reason     string
	TaxonID    int64
	TaxonName  string
	Score      float64
	RecordedAt time.Time
}

// Store manages run journal persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the journal database and verifies the schema.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := filepath.Join(cfg.Paths.JournalDir, "runlog.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the journal database location.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// BeginRun inserts a new run row and returns it.
func (s *Store) BeginRun(ctx context.Context, sourceDir, checkpointPath string) (*Run, error) {
	run := &Run{
		ID:             uuid.NewString(),
		SourceDir:      sourceDir,
		CheckpointPath: checkpointPath,
		StartedAt:      time.Now().UTC(),
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO runs (id, source_dir, checkpoint_path, started_at) VALUES (?, ?, ?, ?)`,
		run.ID,
		run.SourceDir,
		run.CheckpointPath,
		run.StartedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}
	return run, nil
}

// RecordImage appends one per-image outcome row.
func (s *Store) RecordImage(ctx context.Context, rec ImageRecord) error {
	recordedAt := rec.RecordedAt
	if recordedAt.IsZero() {
		recordedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO run_images (run_id, image_path, status, reason, taxon_id, taxon_name, score, recorded_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID,
		rec.ImagePath,
		rec.Status,
		nullableString(rec.Reason),
		rec.TaxonID,
		rec.TaxonName,
		rec.Score,
		recordedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert image record: %w", err)
	}
	return nil
}

// FinishRun stamps the run with its final counters and finish time.
func (s *Store) FinishRun(ctx context.Context, runID string, attempted, succeeded, failed int) error {
	_, err := s.db.ExecContext(
		ctx,
		`UPDATE runs SET finished_at = ?, attempted = ?, succeeded = ?, failed = ? WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339Nano),
		attempted,
		succeeded,
		failed,
		runID,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

// LastRuns returns up to n runs, most recent first.
func (s *Store) LastRuns(ctx context.Context, n int) ([]Run, error) {
	if n <= 0 {
		n = 10
	}
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, source_dir, checkpoint_path, started_at, finished_at, attempted, succeeded, failed
         FROM runs ORDER BY started_at DESC LIMIT ?`,
		n,
	)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// RunImages returns the per-image rows for a run in insertion order.
func (s *Store) RunImages(ctx context.Context, runID string) ([]ImageRecord, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT run_id, image_path, status, reason, taxon_id, taxon_name, score, recorded_at
         FROM run_images WHERE run_id = ? ORDER BY id`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("query run images: %w", err)
	}
	defer rows.Close()

	var records []ImageRecord
	for rows.Next() {
		var (
			rec        ImageRecord
			reason     sql.NullString
			recordedAt string
		)
		if err := rows.Scan(&rec.RunID, &rec.ImagePath, &rec.Status, &reason, &rec.TaxonID, &rec.TaxonName, &rec.Score, &recordedAt); err != nil {
			return nil, fmt.Errorf("scan image record: %w", err)
		}
		rec.Reason = reason.String
		rec.RecordedAt = parseTimestamp(recordedAt)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate image records: %w", err)
	}
	return records, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var (
		run        Run
		startedAt  string
		finishedAt sql.NullString
	)
	if err := row.Scan(&run.ID, &run.SourceDir, &run.CheckpointPath, &startedAt, &finishedAt, &run.Attempted, &run.Succeeded, &run.Failed); err != nil {
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	run.StartedAt = parseTimestamp(startedAt)
	if finishedAt.Valid {
		finished := parseTimestamp(finishedAt.String)
		run.FinishedAt = &finished
	}
	return run, nil
}

func parseTimestamp(value string) time.Time {
	parsed, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return parsed
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
