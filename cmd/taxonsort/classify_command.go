package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"taxonsort/internal/config"
)

func newClassifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "classify <image>",
		Short: "Classify a single image and print its taxonomic hierarchy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			imagePath, err := config.ExpandPath(args[0])
			if err != nil {
				return fmt.Errorf("resolve image path: %w", err)
			}
			if _, err := os.Stat(imagePath); err != nil {
				return fmt.Errorf("inspect image %q: %w", imagePath, err)
			}

			pipeline, err := ctx.pipeline()
			if err != nil {
				return err
			}

			result, err := pipeline.ClassifyImage(cmd.Context(), imagePath)
			if err != nil {
				return fmt.Errorf("classify %s: %w", imagePath, err)
			}

			rows := [][]string{
				{"Taxon", result.TaxonName},
				{"Common name", orDash(result.CommonName)},
				{"Taxon ID", strconv.FormatInt(result.TaxonID, 10)},
				{"Score", formatScore(result.Score)},
				{"Subfamily", orDash(result.Hierarchy.Subfamily)},
				{"Tribe", orDash(result.Hierarchy.Tribe)},
				{"Genus", orDash(result.Hierarchy.Genus)},
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Field", "Value"}, rows, nil))
			return nil
		},
	}
}
