package organizer

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"taxonsort/internal/classify"
	"taxonsort/internal/config"
	"taxonsort/internal/fileutil"
	"taxonsort/internal/logging"
	"taxonsort/internal/taxonomy"
)

// Placeholders name the directories used when a hierarchy slot is unresolved.
type Placeholders struct {
	Subfamily string
	Tribe     string
	Genus     string
}

// PlaceholdersFromConfig pulls the organizer placeholders out of the config.
func PlaceholdersFromConfig(cfg *config.Config) Placeholders {
	return Placeholders{
		Subfamily: cfg.Organize.UnknownSubfamily,
		Tribe:     cfg.Organize.UnknownTribe,
		Genus:     cfg.Organize.UnknownGenus,
	}
}

// Tally reports organizer outcomes to the caller. No ambient counters: moved
// and skipped travel as an explicit value.
type Tally struct {
	Moved   int
	Skipped int
}

// Organizer moves classified images into the subfamily/tribe/genus tree.
type Organizer struct {
	targetBase   string
	placeholders Placeholders
	overwrite    bool
	logger       *slog.Logger
}

// New constructs an organizer rooted at targetBase. When overwrite is false a
// move whose destination already exists is skipped instead of replacing it.
func New(targetBase string, placeholders Placeholders, overwrite bool, logger *slog.Logger) *Organizer {
	if logger == nil {
		logger = logging.NewNop()
	}
	if placeholders.Subfamily == "" {
		placeholders.Subfamily = "unknown-subfamily"
	}
	if placeholders.Tribe == "" {
		placeholders.Tribe = "unknown-tribe"
	}
	if placeholders.Genus == "" {
		placeholders.Genus = "unknown-genus"
	}
	return &Organizer{
		targetBase:   targetBase,
		placeholders: placeholders,
		overwrite:    overwrite,
		logger:       logging.NewComponentLogger(logger, "organizer"),
	}
}

// Organize moves each result's image into
// targetBase/<subfamily>/<tribe>/<genus>/ and rewrites the result's ImagePath
// in place on success. A failed move leaves the result untouched and is
// counted as skipped; failures never abort the remaining results. Sidecar
// files sharing the image's stem travel with it, each on its own best effort.
// The caller persists the updated checkpoint afterwards.
func (o *Organizer) Organize(ctx context.Context, results []*classify.Result) Tally {
	logger := logging.WithContext(ctx, o.logger)
	var tally Tally
	for _, result := range results {
		if result == nil {
			continue
		}
		if ctx.Err() != nil {
			logger.Info("organization cancelled",
				logging.Int("moved", tally.Moved),
				logging.Int("skipped", tally.Skipped))
			break
		}

		targetDir := o.TargetDir(result.Hierarchy)
		destination := filepath.Join(targetDir, filepath.Base(result.ImagePath))

		if !o.overwrite {
			if _, err := os.Stat(destination); err == nil {
				tally.Skipped++
				logger.Warn("destination already exists",
					logging.String("image", result.ImagePath),
					logging.String("destination", destination))
				continue
			}
		}

		siblings, err := fileutil.SameStemSiblings(result.ImagePath)
		if err != nil {
			logger.Warn("sidecar discovery failed",
				logging.String("image", result.ImagePath),
				logging.Error(err))
		}

		if err := fileutil.MoveFile(result.ImagePath, destination); err != nil {
			tally.Skipped++
			logger.Warn("image move failed",
				logging.String("image", result.ImagePath),
				logging.String("destination", destination),
				logging.Error(err))
			continue
		}
		tally.Moved++
		logger.Info("image organized",
			logging.String("image", result.ImagePath),
			logging.String("destination", destination))

		for _, sidecar := range siblings {
			sidecarDst := filepath.Join(targetDir, filepath.Base(sidecar))
			if err := fileutil.MoveFile(sidecar, sidecarDst); err != nil {
				logger.Warn("sidecar move failed",
					logging.String("sidecar", sidecar),
					logging.Error(err))
			}
		}

		result.ImagePath = destination
	}
	return tally
}

// TargetDir resolves the directory a hierarchy maps to, substituting
// placeholders for unresolved slots and sanitizing each path segment.
func (o *Organizer) TargetDir(h taxonomy.Hierarchy) string {
	subfamily := orPlaceholder(h.Subfamily, o.placeholders.Subfamily)
	tribe := orPlaceholder(h.Tribe, o.placeholders.Tribe)
	genus := orPlaceholder(h.Genus, o.placeholders.Genus)
	return filepath.Join(o.targetBase, sanitizeSegment(subfamily), sanitizeSegment(tribe), sanitizeSegment(genus))
}

func orPlaceholder(value, placeholder string) string {
	if strings.TrimSpace(value) == "" {
		return placeholder
	}
	return value
}

// sanitizeSegment keeps taxon names intact (unicode included) while stripping
// characters that would split or escape the path segment.
func sanitizeSegment(segment string) string {
	segment = strings.TrimSpace(segment)
	replacer := strings.NewReplacer(
		"/", "-",
		"\\", "-",
		string([]byte{0}), "",
		"..", "-",
	)
	segment = replacer.Replace(segment)
	if segment == "" || segment == "." {
		return "unknown"
	}
	return segment
}
