package stats

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"taxonsort/internal/classify"
)

// NameCount pairs a taxon name with how many images resolved to it.
type NameCount struct {
	Name  string
	Count int
}

// Summary aggregates a result set by hierarchy level.
type Summary struct {
	Total       int
	Subfamilies []NameCount
	Tribes      []NameCount
	Genera      []NameCount
}

// Summarize counts distinct subfamilies, tribes, and genera across the
// results. Unresolved slots are left out of the per-level lists; Total still
// counts every result. Each list is ordered by descending count, ties broken
// by collated name so accented taxon names sort naturally.
func Summarize(results []*classify.Result) Summary {
	subfamilies := make(map[string]int)
	tribes := make(map[string]int)
	genera := make(map[string]int)

	summary := Summary{}
	for _, result := range results {
		if result == nil {
			continue
		}
		summary.Total++
		if name := result.Hierarchy.Subfamily; name != "" {
			subfamilies[name]++
		}
		if name := result.Hierarchy.Tribe; name != "" {
			tribes[name]++
		}
		if name := result.Hierarchy.Genus; name != "" {
			genera[name]++
		}
	}

	collator := collate.New(language.Und)
	summary.Subfamilies = sortedCounts(subfamilies, collator)
	summary.Tribes = sortedCounts(tribes, collator)
	summary.Genera = sortedCounts(genera, collator)
	return summary
}

func sortedCounts(counts map[string]int, collator *collate.Collator) []NameCount {
	if len(counts) == 0 {
		return nil
	}
	out := make([]NameCount, 0, len(counts))
	for name, count := range counts {
		out = append(out, NameCount{Name: name, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return collator.CompareString(out[i].Name, out[j].Name) < 0
	})
	return out
}
