package main

import (
	"fmt"
	"io"
	"strconv"

	"taxonsort/internal/classify"
	"taxonsort/internal/stats"
)

func orDash(value string) string {
	if value == "" {
		return "-"
	}
	return value
}

func formatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', 1, 64)
}

// printSummary renders the per-level hierarchy breakdown for a result set.
func printSummary(out io.Writer, results []*classify.Result) {
	summary := stats.Summarize(results)
	if summary.Total == 0 {
		fmt.Fprintln(out, "No classified images")
		return
	}

	fmt.Fprintf(out, "%d classified image(s)\n", summary.Total)
	sections := []struct {
		title  string
		counts []stats.NameCount
	}{
		{"Subfamily", summary.Subfamilies},
		{"Tribe", summary.Tribes},
		{"Genus", summary.Genera},
	}
	for _, section := range sections {
		if len(section.counts) == 0 {
			continue
		}
		rows := make([][]string, 0, len(section.counts))
		for _, nc := range section.counts {
			rows = append(rows, []string{nc.Name, strconv.Itoa(nc.Count)})
		}
		fmt.Fprintln(out, renderTable([]string{section.title, "Images"}, rows, []columnAlignment{alignLeft, alignRight}))
	}
}
