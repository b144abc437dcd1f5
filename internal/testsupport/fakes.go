package testsupport

import (
	"context"
	"sync"

	"taxonsort/internal/inat"
	"taxonsort/internal/taxonomy"
)

// ScriptedScorer returns canned scoring responses keyed by image path and
// counts invocations, letting tests assert that resumed batches never
// re-score.
type ScriptedScorer struct {
	mu        sync.Mutex
	Responses map[string]*inat.ScoreResponse
	Errs      map[string]error
	CallCount int
}

func (s *ScriptedScorer) ScoreImage(ctx context.Context, imagePath string) (*inat.ScoreResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.CallCount++
	if err, ok := s.Errs[imagePath]; ok {
		return nil, err
	}
	if resp, ok := s.Responses[imagePath]; ok {
		return resp, nil
	}
	return &inat.ScoreResponse{}, nil
}

// Calls reports how many times ScoreImage ran.
func (s *ScriptedScorer) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.CallCount
}

// StaticResolver serves taxon records from a fixed map.
type StaticResolver struct {
	Records map[int64]*taxonomy.TaxonRecord
	Err     error
}

func (r *StaticResolver) TaxonByID(ctx context.Context, taxonID int64) (*taxonomy.TaxonRecord, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	return r.Records[taxonID], nil
}

// SingleCandidate builds a one-candidate scoring response.
func SingleCandidate(taxonID int64, name string, score float64) *inat.ScoreResponse {
	return &inat.ScoreResponse{
		Results: []inat.ScoreCandidate{
			{Score: score, Taxon: &inat.Taxon{ID: taxonID, Name: name}},
		},
	}
}
