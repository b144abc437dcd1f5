package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"taxonsort/internal/batch"
	"taxonsort/internal/config"
)

func newResultsCommand(ctx *commandContext) *cobra.Command {
	resultsCmd := &cobra.Command{
		Use:   "results <checkpoint>",
		Short: "Summarize the classifications stored in a checkpoint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			checkpointPath, err := config.ExpandPath(args[0])
			if err != nil {
				return fmt.Errorf("resolve checkpoint path: %w", err)
			}
			results, ok, err := batch.LoadCheckpoint(checkpointPath)
			if err != nil {
				return fmt.Errorf("load checkpoint: %w", err)
			}
			if !ok {
				return fmt.Errorf("checkpoint %s does not exist", checkpointPath)
			}
			printSummary(cmd.OutOrStdout(), results)
			return nil
		},
	}

	resultsCmd.AddCommand(newResultsRunsCommand(ctx))
	return resultsCmd
}

func newResultsRunsCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recent batch runs from the run journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			journal, warn := ctx.journal()
			if journal == nil {
				if warn != "" {
					return fmt.Errorf("%s", warn)
				}
				return fmt.Errorf("run journal unavailable")
			}
			defer journal.Close()

			runs, err := journal.LastRuns(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("list runs: %w", err)
			}
			if len(runs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No batch runs recorded yet")
				return nil
			}

			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				finished := "-"
				if run.FinishedAt != nil {
					finished = run.FinishedAt.Local().Format(time.DateTime)
				}
				rows = append(rows, []string{
					run.ID[:8],
					run.SourceDir,
					run.StartedAt.Local().Format(time.DateTime),
					finished,
					strconv.Itoa(run.Attempted),
					strconv.Itoa(run.Succeeded),
					strconv.Itoa(run.Failed),
				})
			}
			headers := []string{"Run", "Folder", "Started", "Finished", "Attempted", "Classified", "Skipped"}
			aligns := []columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(headers, rows, aligns))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Maximum number of runs to list")
	return cmd
}
