package taxonomy

import "strings"

// TaxonRecord is one node in the taxonomic tree as returned by the lineage
// lookup. Ancestors are ordered root to parent.
type TaxonRecord struct {
	ID         int64         `json:"id"`
	Name       string        `json:"name"`
	Rank       string        `json:"rank"`
	CommonName string        `json:"preferred_common_name,omitempty"`
	Ancestors  []TaxonRecord `json:"ancestors,omitempty"`
}

// Hierarchy is the three-slot subfamily/tribe/genus projection derived from a
// lineage. An empty string means the rank was not present in the lineage;
// placeholder substitution happens in the organizer, never here.
type Hierarchy struct {
	Subfamily string `json:"subfamily"`
	Tribe     string `json:"tribe"`
	Genus     string `json:"genus"`
}

// Complete reports whether every slot was resolved.
func (h Hierarchy) Complete() bool {
	return h.Subfamily != "" && h.Tribe != "" && h.Genus != ""
}

type slot int

const (
	slotSubfamily slot = iota
	slotTribe
	slotGenus
)

// rankSlots is the rank dispatch table: add a row to route further ranks onto
// slots. Monotypic lineages often lack a labeled subfamily, so family also
// routes to the subfamily slot; ExtractHierarchy treats it as a fallback that
// never displaces an exact subfamily rank.
var rankSlots = map[string]slot{
	"family":    slotSubfamily,
	"subfamily": slotSubfamily,
	"tribe":     slotTribe,
	"genus":     slotGenus,
}

// ExtractHierarchy walks the node's ancestors (root to parent) followed by the
// node itself and fills the subfamily/tribe/genus slots. Rank matching is
// case-insensitive, unknown ranks are ignored, and a duplicate rank overwrites
// the earlier value (last-write-wins). The function is pure and never fails;
// absent data yields unset slots.
func ExtractHierarchy(node TaxonRecord) Hierarchy {
	var h Hierarchy
	subfamilyExact := false
	apply := func(rec TaxonRecord) {
		rank := strings.ToLower(strings.TrimSpace(rec.Rank))
		target, ok := rankSlots[rank]
		if !ok {
			return
		}
		switch target {
		case slotSubfamily:
			if rank == "family" && subfamilyExact {
				return
			}
			h.Subfamily = rec.Name
			subfamilyExact = subfamilyExact || rank == "subfamily"
		case slotTribe:
			h.Tribe = rec.Name
		case slotGenus:
			h.Genus = rec.Name
		}
	}
	for _, ancestor := range node.Ancestors {
		apply(ancestor)
	}
	apply(node)
	return h
}
