package batch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofrs/flock"

	"taxonsort/internal/classify"
	"taxonsort/internal/logging"
	"taxonsort/internal/runlog"
	"taxonsort/internal/services"
)

// ProgressSink receives one tick per processed image. *progressbar.ProgressBar
// satisfies it; a nil sink disables progress reporting.
type ProgressSink interface {
	Add(num int) error
}

// Options tunes batch pacing and checkpoint cadence.
type Options struct {
	// Delay is the pause after each processed image.
	Delay time.Duration
	// CheckpointEvery persists the checkpoint after this many processed
	// images. Processed counts attempts, not just successes.
	CheckpointEvery int
	// Bar, when set, is ticked once per processed image.
	Bar ProgressSink
}

// Stats summarizes one batch run.
type Stats struct {
	Attempted int
	Succeeded int
	Failed    int
}

// Runner drives classification over a folder of images with checkpointing.
type Runner struct {
	pipeline *classify.Pipeline
	journal  *runlog.Store
	logger   *slog.Logger
	opts     Options
}

// NewRunner wires a batch runner. journal may be nil; journaling is then
// disabled. Zero option fields fall back to the standard pacing (2s delay,
// checkpoint every 10 images).
func NewRunner(pipeline *classify.Pipeline, journal *runlog.Store, logger *slog.Logger, opts Options) *Runner {
	if logger == nil {
		logger = logging.NewNop()
	}
	if opts.Delay < 0 {
		opts.Delay = 0
	} else if opts.Delay == 0 {
		opts.Delay = 2 * time.Second
	}
	if opts.CheckpointEvery < 1 {
		opts.CheckpointEvery = 10
	}
	return &Runner{
		pipeline: pipeline,
		journal:  journal,
		logger:   logging.NewComponentLogger(logger, "batch"),
		opts:     opts,
	}
}

// Run classifies every image under imageFolder, checkpointing to
// checkpointPath. Resume is whole-batch: when a readable checkpoint already
// exists its contents are returned as-is and nothing is re-scored. Per-image
// failures are counted and skipped, never fatal; context cancellation stops
// between images and the accumulated results are still checkpointed.
func (r *Runner) Run(ctx context.Context, imageFolder, checkpointPath string) ([]*classify.Result, Stats, error) {
	if results, ok, err := LoadCheckpoint(checkpointPath); ok {
		r.logger.Info("checkpoint found, resuming with stored results",
			logging.String("checkpoint", checkpointPath),
			logging.Int("results", len(results)))
		return results, Stats{}, nil
	} else if err != nil {
		r.logger.Warn("checkpoint unreadable, reprocessing batch",
			logging.String("checkpoint", checkpointPath),
			logging.Error(err))
	}

	lock := flock.New(checkpointPath + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return nil, Stats{}, fmt.Errorf("acquire batch lock: %w", err)
	}
	if !locked {
		return nil, Stats{}, fmt.Errorf("another batch run is already processing %s", checkpointPath)
	}
	defer func() {
		_ = lock.Unlock()
	}()

	images, err := ScanImages(imageFolder)
	if err != nil {
		return nil, Stats{}, err
	}
	r.logger.Info("batch started",
		logging.String("folder", imageFolder),
		logging.Int("images", len(images)))

	var run *runlog.Run
	if r.journal != nil {
		run, err = r.journal.BeginRun(ctx, imageFolder, checkpointPath)
		if err != nil {
			r.logger.Warn("run journal unavailable", logging.Error(err))
			run = nil
		}
	}
	logger := r.logger
	if run != nil {
		ctx = services.WithRunID(ctx, run.ID)
		logger = logging.WithContext(ctx, r.logger)
	}

	var (
		results []*classify.Result
		stats   Stats
	)
	for i, imagePath := range images {
		if ctx.Err() != nil {
			logger.Info("batch cancelled", logging.Int("processed", stats.Attempted))
			break
		}

		stats.Attempted++
		result, err := r.pipeline.ClassifyImage(ctx, imagePath)
		if err != nil {
			stats.Failed++
			reason := services.SkipReason(err)
			logger.Warn("image skipped",
				logging.String("image", imagePath),
				logging.String("reason", reason),
				logging.Error(err))
			r.recordImage(ctx, run, runlog.ImageRecord{
				ImagePath: imagePath,
				Status:    runlog.StatusSkipped,
				Reason:    reason,
			})
		} else {
			stats.Succeeded++
			results = append(results, result)
			r.recordImage(ctx, run, runlog.ImageRecord{
				ImagePath: imagePath,
				Status:    runlog.StatusClassified,
				TaxonID:   result.TaxonID,
				TaxonName: result.TaxonName,
				Score:     result.Score,
			})
		}

		if r.opts.Bar != nil {
			_ = r.opts.Bar.Add(1)
		}
		if stats.Attempted%r.opts.CheckpointEvery == 0 {
			r.saveCheckpoint(checkpointPath, results)
		}
		if i < len(images)-1 && !r.sleep(ctx) {
			logger.Info("batch cancelled", logging.Int("processed", stats.Attempted))
			break
		}
	}

	r.saveCheckpoint(checkpointPath, results)
	if r.journal != nil && run != nil {
		if err := r.journal.FinishRun(context.WithoutCancel(ctx), run.ID, stats.Attempted, stats.Succeeded, stats.Failed); err != nil {
			logger.Warn("finish run journal entry", logging.Error(err))
		}
	}
	logger.Info("batch finished",
		logging.Int("attempted", stats.Attempted),
		logging.Int("succeeded", stats.Succeeded),
		logging.Int("failed", stats.Failed))
	return results, stats, ctx.Err()
}

// sleep pauses for the configured delay and reports false when the context is
// cancelled first.
func (r *Runner) sleep(ctx context.Context) bool {
	if r.opts.Delay <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(r.opts.Delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// saveCheckpoint persists progress; write failures are logged, never fatal.
func (r *Runner) saveCheckpoint(path string, results []*classify.Result) {
	if err := SaveCheckpoint(path, results); err != nil {
		r.logger.Warn("checkpoint write failed",
			logging.String("checkpoint", path),
			logging.Error(err))
	}
}

func (r *Runner) recordImage(ctx context.Context, run *runlog.Run, rec runlog.ImageRecord) {
	if r.journal == nil || run == nil {
		return
	}
	rec.RunID = run.ID
	if err := r.journal.RecordImage(context.WithoutCancel(ctx), rec); err != nil {
		r.logger.Warn("journal image record failed",
			logging.String("image", rec.ImagePath),
			logging.Error(err))
	}
}
