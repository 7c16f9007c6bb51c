package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/pricelens/skumatch/internal/domain"
	"github.com/pricelens/skumatch/internal/normalize"
)

// RunRequest describes one batch: a catalog and the listings scraped for a
// country on a given day.
type RunRequest struct {
	// Country restricts catalog and listings; empty keeps everything.
	Country  string
	Date     time.Time
	Catalog  []domain.CatalogEntry
	Listings []domain.ListingEntry
	// Reprocess matches competitors even if records exist for Country and Date.
	Reprocess bool
	// DryRun neither consults nor writes the match repository.
	DryRun bool
}

// RunResult summarizes a batch.
type RunResult struct {
	RunID       string
	Country     string
	Catalog     int
	Listings    int
	Keys        int
	Evaluations int
	Skipped     []string
	Records     []domain.MatchRecord
	Duration    time.Duration
}

// PipelineService runs a full batch: filter, normalize, match and persist.
type PipelineService struct {
	normalizer normalize.TextNormalizer
	matcher    *MatchingService
	repo       domain.MatchRepository
	logger     zerolog.Logger
	now        func() time.Time
}

// NewPipelineService creates a new pipeline service with dependencies. repo may
// be nil, in which case results are returned but not stored.
func NewPipelineService(
	normalizer normalize.TextNormalizer,
	matcher *MatchingService,
	repo domain.MatchRepository,
	logger zerolog.Logger,
) *PipelineService {
	return &PipelineService{
		normalizer: normalizer,
		matcher:    matcher,
		repo:       repo,
		logger:     logger.With().Str("component", "pipeline").Logger(),
		now:        time.Now,
	}
}

// Run executes one batch.
func (p *PipelineService) Run(ctx context.Context, req RunRequest) (*RunResult, error) {
	start := p.now()
	result := &RunResult{
		RunID:   uuid.NewString(),
		Country: req.Country,
		Records: []domain.MatchRecord{},
	}
	log := p.logger.With().Str("run_id", result.RunID).Str("country", req.Country).Logger()

	catalog := filterCatalog(req.Catalog, req.Country)
	listings := filterListings(req.Listings, req.Country)

	store := p.repo != nil && !req.DryRun
	if store && !req.Reprocess && !req.Date.IsZero() {
		done, err := p.repo.ProcessedCompetitors(ctx, req.Country, req.Date)
		if err != nil {
			return nil, fmt.Errorf("checking processed competitors: %w", err)
		}
		listings, result.Skipped = dropCompetitors(listings, done)
		for _, c := range result.Skipped {
			log.Info().Str("competitor", c).Msg("competitor already processed, skipping")
		}
	}

	result.Catalog = len(catalog)
	result.Listings = len(listings)
	if len(catalog) == 0 || len(listings) == 0 {
		log.Warn().Int("catalog", len(catalog)).Int("listings", len(listings)).Msg("nothing to match")
		result.Duration = p.now().Sub(start)
		return result, nil
	}

	catalog = NormalizeCatalog(p.normalizer, catalog)
	listings = NormalizeListings(p.normalizer, listings)
	result.Keys = len(distinctKeys(listings))
	result.Evaluations = result.Catalog * result.Keys

	log.Info().
		Int("catalog", result.Catalog).
		Int("listings", result.Listings).
		Int("evaluations", result.Evaluations).
		Msg("matching batch")

	records, err := p.matcher.Match(ctx, catalog, listings)
	if err != nil {
		return nil, fmt.Errorf("matching batch: %w", err)
	}
	for i := range records {
		if records[i].Country == "" {
			records[i].Country = req.Country
		}
		if records[i].Date.IsZero() {
			records[i].Date = req.Date
		}
	}
	result.Records = records

	if store && len(records) > 0 {
		if err := p.repo.SaveMatches(ctx, result.RunID, records); err != nil {
			return nil, fmt.Errorf("saving matches: %w", err)
		}
	}

	result.Duration = p.now().Sub(start)
	log.Info().Int("records", len(records)).Dur("duration", result.Duration).Msg("batch finished")
	return result, nil
}

func filterCatalog(catalog []domain.CatalogEntry, country string) []domain.CatalogEntry {
	if country == "" {
		return catalog
	}
	out := make([]domain.CatalogEntry, 0, len(catalog))
	for _, e := range catalog {
		if strings.EqualFold(e.Country, country) {
			out = append(out, e)
		}
	}
	return out
}

// filterListings keeps listings of country. Listings without a country are
// assumed to belong to the batch country.
func filterListings(listings []domain.ListingEntry, country string) []domain.ListingEntry {
	if country == "" {
		return listings
	}
	out := make([]domain.ListingEntry, 0, len(listings))
	for _, l := range listings {
		if l.Country == "" || strings.EqualFold(l.Country, country) {
			out = append(out, l)
		}
	}
	return out
}

// dropCompetitors removes listings of the given competitors and returns the
// competitors that were actually present, in first-seen order.
func dropCompetitors(listings []domain.ListingEntry, competitors []string) ([]domain.ListingEntry, []string) {
	if len(competitors) == 0 {
		return listings, nil
	}
	done := make(map[string]bool, len(competitors))
	for _, c := range competitors {
		done[strings.ToLower(c)] = true
	}

	kept := make([]domain.ListingEntry, 0, len(listings))
	var skipped []string
	reported := make(map[string]bool)
	for _, l := range listings {
		name := strings.ToLower(l.CompetitorName)
		if !done[name] {
			kept = append(kept, l)
			continue
		}
		if !reported[name] {
			reported[name] = true
			skipped = append(skipped, l.CompetitorName)
		}
	}
	return kept, skipped
}
