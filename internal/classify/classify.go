package classify

import (
	"context"
	"log/slog"

	"taxonsort/internal/inat"
	"taxonsort/internal/logging"
	"taxonsort/internal/services"
	"taxonsort/internal/taxonomy"
)

// Scorer produces vision-model candidates for an image file.
type Scorer interface {
	ScoreImage(ctx context.Context, imagePath string) (*inat.ScoreResponse, error)
}

// LineageResolver fetches the full ancestor chain for a taxon.
type LineageResolver interface {
	TaxonByID(ctx context.Context, taxonID int64) (*taxonomy.TaxonRecord, error)
}

// Result is the per-image classification record persisted in checkpoints.
// PhotoID stays zero: photo upload is disabled, the field remains so older
// checkpoint files keep round-tripping.
type Result struct {
	ImagePath  string             `json:"image_path"`
	PhotoID    int64              `json:"photo_id"`
	TaxonID    int64              `json:"taxon_id"`
	TaxonName  string             `json:"taxon_name"`
	CommonName string             `json:"common_name"`
	Score      float64            `json:"score"`
	Hierarchy  taxonomy.Hierarchy `json:"hierarchy"`
}

// Pipeline classifies a single image end to end: score, pick the best
// candidate, resolve its lineage, derive the hierarchy.
type Pipeline struct {
	scorer   Scorer
	resolver LineageResolver
	logger   *slog.Logger
}

// NewPipeline wires a classification pipeline.
func NewPipeline(scorer Scorer, resolver LineageResolver, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Pipeline{
		scorer:   scorer,
		resolver: resolver,
		logger:   logging.NewComponentLogger(logger, "classify"),
	}
}

// ClassifyImage runs every stage for one image. Each early exit returns a nil
// result and an error carrying a services marker so callers can map failures
// to skip reasons; a failed image never carries partial data forward.
func (p *Pipeline) ClassifyImage(ctx context.Context, imagePath string) (*Result, error) {
	ctx = services.WithImagePath(ctx, imagePath)

	scoreCtx := services.WithStage(ctx, "score")
	response, err := p.scorer.ScoreImage(scoreCtx, imagePath)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalService, "classify", "score_image", "scoring failed", err)
	}

	candidate := bestCandidate(response)
	if candidate == nil {
		return nil, services.Wrap(services.ErrNotFound, "classify", "select_candidate", "no candidates returned", nil)
	}
	if candidate.Taxon == nil || candidate.Taxon.ID <= 0 {
		return nil, services.Wrap(services.ErrValidation, "classify", "select_candidate", "candidate missing taxon id", nil)
	}

	lineageCtx := services.WithStage(ctx, "lineage")
	record, err := p.resolver.TaxonByID(lineageCtx, candidate.Taxon.ID)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalService, "classify", "taxon_lookup", "lineage resolution failed", err)
	}
	if record == nil {
		return nil, services.Wrap(services.ErrNotFound, "classify", "taxon_lookup", "taxon record missing", nil)
	}

	hierarchy := taxonomy.ExtractHierarchy(*record)
	commonName := record.CommonName
	if commonName == "" {
		commonName = candidate.Taxon.PreferredCommonName
	}

	result := &Result{
		ImagePath:  imagePath,
		TaxonID:    record.ID,
		TaxonName:  record.Name,
		CommonName: commonName,
		Score:      candidate.Score,
		Hierarchy:  hierarchy,
	}
	p.logger.Info("image classified",
		logging.String("image", imagePath),
		logging.Int64("taxon_id", result.TaxonID),
		logging.String("taxon", result.TaxonName),
		logging.Float64("score", result.Score))
	return result, nil
}

// bestCandidate picks the highest-scoring entry; ties keep the first seen.
// The common ancestor only stands in when the candidate list is empty.
func bestCandidate(response *inat.ScoreResponse) *inat.ScoreCandidate {
	if response == nil {
		return nil
	}
	if len(response.Results) == 0 {
		return response.CommonAncestor
	}
	best := &response.Results[0]
	for i := 1; i < len(response.Results); i++ {
		if response.Results[i].Score > best.Score {
			best = &response.Results[i]
		}
	}
	return best
}
