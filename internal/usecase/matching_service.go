package usecase

import (
	"context"
	"runtime"
	"sort"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/pricelens/skumatch/internal/domain"
	"github.com/pricelens/skumatch/internal/normalize"
	"github.com/pricelens/skumatch/internal/similarity"
)

// DefaultConfidenceThreshold is the minimum confidence for a match record.
const DefaultConfidenceThreshold = 0.4

// MatchConfig holds configuration for the matching service
type MatchConfig struct {
	// MinConfidenceThreshold in (0, 1]. Zero or negative means the default.
	MinConfidenceThreshold float64
	// Workers bounds the listing keys evaluated concurrently. Zero means GOMAXPROCS.
	Workers            int
	Scorer             *similarity.Scorer
	EnableDebugLogging bool
	Logger             zerolog.Logger
}

// MatchingService links competitor listings to catalog SKUs. Every listing key
// is compared with every catalog entry and only the best candidate is kept.
type MatchingService struct {
	scorer             *similarity.Scorer
	threshold          float64
	workers            int
	enableDebugLogging bool
	logger             zerolog.Logger
}

// NewMatchingService creates a new matching service with the given configuration
func NewMatchingService(config MatchConfig) *MatchingService {
	threshold := config.MinConfidenceThreshold
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultConfidenceThreshold
	}

	workers := config.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	scorer := config.Scorer
	if scorer == nil {
		scorer = similarity.NewScorer(similarity.DefaultParams())
	}

	return &MatchingService{
		scorer:             scorer,
		threshold:          threshold,
		workers:            workers,
		enableDebugLogging: config.EnableDebugLogging,
		logger:             config.Logger.With().Str("component", "matcher").Logger(),
	}
}

// Threshold returns the effective confidence threshold.
func (s *MatchingService) Threshold() float64 {
	return s.threshold
}

// Scorer returns the scorer used to compare names.
func (s *MatchingService) Scorer() *similarity.Scorer {
	return s.scorer
}

// BestMatches returns, for each listing key in order, the catalog entry with
// the highest confidence. Ties go to the lowest SKU. Catalog entries must
// already carry their normalized names.
func (s *MatchingService) BestMatches(
	ctx context.Context,
	catalog []domain.CatalogEntry,
	keys []string,
) ([]domain.MatchCandidate, error) {
	if len(catalog) == 0 || len(keys) == 0 {
		return []domain.MatchCandidate{}, nil
	}

	results := make([]domain.MatchCandidate, len(keys))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for i, key := range keys {
		i, key := i, key
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = s.bestFor(catalog, key)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (s *MatchingService) bestFor(catalog []domain.CatalogEntry, key string) domain.MatchCandidate {
	best := domain.MatchCandidate{ListingKey: key, Confidence: -1}
	for _, entry := range catalog {
		conf := s.scorer.Confidence(entry.NormalizedName, key)
		if conf > best.Confidence || (conf == best.Confidence && skuLess(entry.SKU, best.SKU)) {
			best.SKU = entry.SKU
			best.Confidence = conf
		}
	}

	if s.enableDebugLogging {
		s.logger.Debug().
			Str("listing_key", key).
			Str("sku", best.SKU).
			Float64("confidence", best.Confidence).
			Msg("best candidate")
	}
	return best
}

// Match deduplicates listings by normalized name, finds the best SKU for each
// distinct name and joins the result back onto every listing. Only listings
// whose candidate reaches the threshold produce a record. Records are ordered
// by descending confidence.
func (s *MatchingService) Match(
	ctx context.Context,
	catalog []domain.CatalogEntry,
	listings []domain.ListingEntry,
) ([]domain.MatchRecord, error) {
	if len(catalog) == 0 || len(listings) == 0 {
		return []domain.MatchRecord{}, nil
	}

	keys := distinctKeys(listings)
	candidates, err := s.BestMatches(ctx, catalog, keys)
	if err != nil {
		return nil, err
	}

	byKey := make(map[string]domain.MatchCandidate, len(candidates))
	for _, c := range candidates {
		byKey[c.ListingKey] = c
	}

	records := make([]domain.MatchRecord, 0, len(listings))
	for _, l := range listings {
		c, ok := byKey[l.NormalizedName]
		if !ok || c.Confidence < s.threshold {
			continue
		}
		records = append(records, domain.MatchRecord{
			ListingEntry: l,
			MatchedSKU:   c.SKU,
			Confidence:   c.Confidence,
		})
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Confidence > records[j].Confidence
	})

	s.logger.Info().
		Int("catalog", len(catalog)).
		Int("listings", len(listings)).
		Int("keys", len(keys)).
		Int("records", len(records)).
		Msg("matching finished")

	return records, nil
}

func distinctKeys(listings []domain.ListingEntry) []string {
	seen := make(map[string]struct{}, len(listings))
	keys := make([]string, 0, len(listings))
	for _, l := range listings {
		if _, ok := seen[l.NormalizedName]; ok {
			continue
		}
		seen[l.NormalizedName] = struct{}{}
		keys = append(keys, l.NormalizedName)
	}
	return keys
}

// skuLess orders SKUs by class: digit strings first (shorter first, then
// lexically, which is numeric order without leading zeros), then every other
// SKU lexically, then the empty SKU.
func skuLess(a, b string) bool {
	ra, rb := skuClass(a), skuClass(b)
	if ra != rb {
		return ra < rb
	}
	if ra == 0 && len(a) != len(b) {
		return len(a) < len(b)
	}
	return a < b
}

func skuClass(s string) int {
	switch {
	case s == "":
		return 2
	case isDigits(s):
		return 0
	default:
		return 1
	}
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}

// NormalizeCatalog returns a copy of catalog with normalized names filled in.
func NormalizeCatalog(n normalize.TextNormalizer, catalog []domain.CatalogEntry) []domain.CatalogEntry {
	out := make([]domain.CatalogEntry, len(catalog))
	for i, entry := range catalog {
		entry.NormalizedName = n.Normalize(entry.Name)
		out[i] = entry
	}
	return out
}

// NormalizeListings returns a copy of listings with normalized names filled in.
func NormalizeListings(n normalize.TextNormalizer, listings []domain.ListingEntry) []domain.ListingEntry {
	out := make([]domain.ListingEntry, len(listings))
	for i, l := range listings {
		l.NormalizedName = n.Normalize(l.Name)
		out[i] = l
	}
	return out
}
