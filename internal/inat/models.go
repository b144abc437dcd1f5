package inat

import "taxonsort/internal/taxonomy"

// Taxon is the compact taxon shape embedded in scoring responses. Ancestors
// come back as bare IDs here; the full chain requires a taxa lookup.
type Taxon struct {
	ID                  int64   `json:"id"`
	Name                string  `json:"name"`
	Rank                string  `json:"rank"`
	PreferredCommonName string  `json:"preferred_common_name,omitempty"`
	AncestorIDs         []int64 `json:"ancestor_ids,omitempty"`
}

// ScoreCandidate is one vision-model suggestion for an uploaded photo.
type ScoreCandidate struct {
	Score float64 `json:"combined_score"`
	Taxon *Taxon  `json:"taxon"`
}

// ScoreResponse models the computer-vision scoring payload. CommonAncestor is
// only populated when the model cannot commit to individual candidates.
type ScoreResponse struct {
	Results        []ScoreCandidate `json:"results"`
	CommonAncestor *ScoreCandidate  `json:"common_ancestor,omitempty"`
}

// taxaResponse models the taxa lookup envelope.
type taxaResponse struct {
	Results []taxonomy.TaxonRecord `json:"results"`
}
