package stats_test

import (
	"testing"

	"taxonsort/internal/classify"
	"taxonsort/internal/stats"
	"taxonsort/internal/taxonomy"
)

func result(subfamily, tribe, genus string) *classify.Result {
	return &classify.Result{
		Hierarchy: taxonomy.Hierarchy{Subfamily: subfamily, Tribe: tribe, Genus: genus},
	}
}

func TestSummarizeCountsPerLevel(t *testing.T) {
	results := []*classify.Result{
		result("Arctiinae", "Arctiini", "Spilosoma"),
		result("Arctiinae", "Arctiini", "Spilosoma"),
		result("Arctiinae", "Callimorphini", "Tyria"),
		result("Lymantriinae", "", "Lymantria"),
		result("", "", ""),
		nil,
	}

	summary := stats.Summarize(results)
	if summary.Total != 5 {
		t.Fatalf("unexpected total: %d", summary.Total)
	}

	if len(summary.Subfamilies) != 2 {
		t.Fatalf("unexpected subfamilies: %+v", summary.Subfamilies)
	}
	if summary.Subfamilies[0] != (stats.NameCount{Name: "Arctiinae", Count: 3}) {
		t.Fatalf("unexpected top subfamily: %+v", summary.Subfamilies[0])
	}

	if len(summary.Tribes) != 2 || summary.Tribes[0].Name != "Arctiini" {
		t.Fatalf("unexpected tribes: %+v", summary.Tribes)
	}

	if len(summary.Genera) != 3 {
		t.Fatalf("unexpected genera: %+v", summary.Genera)
	}
	if summary.Genera[0] != (stats.NameCount{Name: "Spilosoma", Count: 2}) {
		t.Fatalf("unexpected top genus: %+v", summary.Genera[0])
	}
}

func TestSummarizeTiesSortByName(t *testing.T) {
	results := []*classify.Result{
		result("", "", "Zeuzera"),
		result("", "", "Abraxas"),
	}

	summary := stats.Summarize(results)
	if len(summary.Genera) != 2 {
		t.Fatalf("unexpected genera: %+v", summary.Genera)
	}
	if summary.Genera[0].Name != "Abraxas" || summary.Genera[1].Name != "Zeuzera" {
		t.Fatalf("expected name order on tie, got %+v", summary.Genera)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	summary := stats.Summarize(nil)
	if summary.Total != 0 || summary.Subfamilies != nil || summary.Tribes != nil || summary.Genera != nil {
		t.Fatalf("unexpected summary for empty input: %+v", summary)
	}
}
