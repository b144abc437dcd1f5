package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"taxonsort/internal/batch"
	"taxonsort/internal/config"
	"taxonsort/internal/organizer"
)

func newBatchCommand(ctx *commandContext) *cobra.Command {
	var checkpointFlag string
	var organizeInto string

	cmd := &cobra.Command{
		Use:   "batch <folder>",
		Short: "Classify every image in a folder with checkpointed progress",
		Long: `Classify every image in a folder, writing progress to a JSON checkpoint.
A folder whose checkpoint already exists resumes with the stored results and
is never re-scored. Pass --organize-into to move the classified images into a
subfamily/tribe/genus tree afterwards.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			folder, err := config.ExpandPath(args[0])
			if err != nil {
				return fmt.Errorf("resolve folder: %w", err)
			}
			info, err := os.Stat(folder)
			if err != nil {
				return fmt.Errorf("inspect folder %q: %w", folder, err)
			}
			if !info.IsDir() {
				return fmt.Errorf("%q is not a directory", folder)
			}

			checkpointPath := checkpointFlag
			if checkpointPath == "" {
				checkpointPath = filepath.Join(folder, "checkpoint.json")
			} else if checkpointPath, err = config.ExpandPath(checkpointPath); err != nil {
				return fmt.Errorf("resolve checkpoint path: %w", err)
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			pipeline, err := ctx.pipeline()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			journal, warn := ctx.journal()
			if warn != "" {
				fmt.Fprintln(cmd.ErrOrStderr(), warn)
			}
			defer journal.Close()

			opts := batch.Options{
				Delay:           time.Duration(cfg.Batch.DelaySeconds) * time.Second,
				CheckpointEvery: cfg.Batch.CheckpointEvery,
			}
			if isatty.IsTerminal(os.Stderr.Fd()) {
				images, err := batch.ScanImages(folder)
				if err != nil {
					return err
				}
				opts.Bar = progressbar.NewOptions(len(images),
					progressbar.OptionSetWriter(cmd.ErrOrStderr()),
					progressbar.OptionSetDescription("classifying"),
					progressbar.OptionShowCount(),
					progressbar.OptionClearOnFinish(),
				)
			}

			runner := batch.NewRunner(pipeline, journal, logger, opts)
			results, stats, runErr := runner.Run(cmd.Context(), folder, checkpointPath)

			out := cmd.OutOrStdout()
			rows := [][]string{
				{"Attempted", strconv.Itoa(stats.Attempted)},
				{"Classified", strconv.Itoa(stats.Succeeded)},
				{"Skipped", strconv.Itoa(stats.Failed)},
				{"Results", strconv.Itoa(len(results))},
				{"Checkpoint", checkpointPath},
			}
			fmt.Fprintln(out, renderTable([]string{"Batch", "Value"}, rows, []columnAlignment{alignLeft, alignRight}))
			printSummary(out, results)

			if runErr != nil {
				return runErr
			}

			if organizeInto != "" {
				target, err := config.ExpandPath(organizeInto)
				if err != nil {
					return fmt.Errorf("resolve target directory: %w", err)
				}
				org := organizer.New(target, organizer.PlaceholdersFromConfig(cfg), cfg.Organize.OverwriteExisting, logger)
				tally := org.Organize(cmd.Context(), results)
				if err := batch.SaveCheckpoint(checkpointPath, results); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "update checkpoint after organize: %v\n", err)
				}
				fmt.Fprintf(out, "Organized %d image(s) into %s (%d skipped)\n", tally.Moved, target, tally.Skipped)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&checkpointFlag, "checkpoint", "", "Checkpoint file path (default <folder>/checkpoint.json)")
	cmd.Flags().StringVar(&organizeInto, "organize-into", "", "Move classified images into this directory tree afterwards")
	return cmd
}
