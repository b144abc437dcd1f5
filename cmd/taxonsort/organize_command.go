package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"taxonsort/internal/batch"
	"taxonsort/internal/config"
	"taxonsort/internal/organizer"
)

func newOrganizeCommand(ctx *commandContext) *cobra.Command {
	var intoFlag string

	cmd := &cobra.Command{
		Use:   "organize <checkpoint>",
		Short: "Move classified images from a checkpoint into a taxonomy tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			checkpointPath, err := config.ExpandPath(args[0])
			if err != nil {
				return fmt.Errorf("resolve checkpoint path: %w", err)
			}
			target, err := config.ExpandPath(intoFlag)
			if err != nil {
				return fmt.Errorf("resolve target directory: %w", err)
			}

			results, ok, err := batch.LoadCheckpoint(checkpointPath)
			if err != nil {
				return fmt.Errorf("load checkpoint: %w", err)
			}
			if !ok {
				return fmt.Errorf("checkpoint %s does not exist; run a batch first", checkpointPath)
			}
			if len(results) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Checkpoint holds no classified images; nothing to organize")
				return nil
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			org := organizer.New(target, organizer.PlaceholdersFromConfig(cfg), cfg.Organize.OverwriteExisting, logger)
			tally := org.Organize(cmd.Context(), results)

			// Persist the rewritten image paths so a second organize run
			// does not look for files at their old locations.
			if err := batch.SaveCheckpoint(checkpointPath, results); err != nil {
				return fmt.Errorf("update checkpoint: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Organized %d image(s) into %s (%d skipped)\n", tally.Moved, target, tally.Skipped)
			return nil
		},
	}

	cmd.Flags().StringVar(&intoFlag, "into", "", "Root directory of the taxonomy tree (required)")
	_ = cmd.MarkFlagRequired("into")
	return cmd
}
