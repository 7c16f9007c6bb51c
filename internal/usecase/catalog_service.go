package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/pricelens/skumatch/internal/domain"
	"github.com/pricelens/skumatch/internal/normalize"
)

// DefaultSnapshotTTL is how long a catalog snapshot stays retrievable.
const DefaultSnapshotTTL = 24 * time.Hour

// CatalogServiceConfig holds configuration for the catalog service
type CatalogServiceConfig struct {
	SnapshotTTL time.Duration
	Logger      zerolog.Logger
}

// CatalogService normalizes catalogs once and keeps them in the cache so that
// later match requests can refer to them by id.
type CatalogService struct {
	cache      domain.CacheRepository
	normalizer normalize.TextNormalizer
	ttl        time.Duration
	logger     zerolog.Logger
}

// NewCatalogService creates a new catalog service with dependencies
func NewCatalogService(
	cache domain.CacheRepository,
	normalizer normalize.TextNormalizer,
	config CatalogServiceConfig,
) *CatalogService {
	ttl := config.SnapshotTTL
	if ttl <= 0 {
		ttl = DefaultSnapshotTTL
	}

	return &CatalogService{
		cache:      cache,
		normalizer: normalizer,
		ttl:        ttl,
		logger:     config.Logger.With().Str("component", "catalog").Logger(),
	}
}

// Snapshot validates and normalizes entries, stores them and returns the
// snapshot id with the normalized catalog. Entries without a SKU or name are
// rejected; duplicate (country, SKU) pairs keep their first occurrence.
func (s *CatalogService) Snapshot(
	ctx context.Context,
	entries []domain.CatalogEntry,
) (string, []domain.CatalogEntry, error) {
	catalog, err := s.Prepare(entries)
	if err != nil {
		return "", nil, err
	}

	payload, err := json.Marshal(catalog)
	if err != nil {
		return "", nil, fmt.Errorf("encoding catalog snapshot: %w", err)
	}

	id := uuid.NewString()
	if err := s.cache.Set(ctx, generateCatalogKey(id), payload, s.ttl); err != nil {
		return "", nil, fmt.Errorf("storing catalog snapshot: %w", err)
	}

	s.logger.Info().Str("catalog_id", id).Int("entries", len(catalog)).Msg("catalog snapshot stored")
	return id, catalog, nil
}

// Prepare validates, deduplicates and normalizes entries without storing them.
func (s *CatalogService) Prepare(entries []domain.CatalogEntry) ([]domain.CatalogEntry, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: catalog is empty", domain.ErrInvalidRequest)
	}

	type key struct{ country, sku string }
	seen := make(map[key]struct{}, len(entries))
	cleaned := make([]domain.CatalogEntry, 0, len(entries))
	for i, e := range entries {
		e = domain.NewCatalogEntry(e.Country, e.SKU, e.Name)
		if e.SKU == "" || e.Name == "" {
			return nil, fmt.Errorf("%w: catalog entry %d needs sku and sku_name", domain.ErrInvalidRequest, i)
		}
		k := key{e.Country, e.SKU}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		cleaned = append(cleaned, e)
	}

	return NormalizeCatalog(s.normalizer, cleaned), nil
}

// Get returns a stored snapshot.
func (s *CatalogService) Get(ctx context.Context, id string) ([]domain.CatalogEntry, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: malformed catalog id %q", domain.ErrInvalidRequest, id)
	}

	payload, err := s.cache.Get(ctx, generateCatalogKey(id))
	if errors.Is(err, domain.ErrCacheMiss) {
		return nil, domain.ErrCatalogNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading catalog snapshot: %w", err)
	}

	var catalog []domain.CatalogEntry
	if err := json.Unmarshal(payload, &catalog); err != nil {
		return nil, fmt.Errorf("decoding catalog snapshot: %w", err)
	}
	return catalog, nil
}

// Delete drops a stored snapshot. Unknown ids give ErrCatalogNotFound.
func (s *CatalogService) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: malformed catalog id %q", domain.ErrInvalidRequest, id)
	}

	key := generateCatalogKey(id)
	ok, err := s.cache.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("checking catalog snapshot: %w", err)
	}
	if !ok {
		return domain.ErrCatalogNotFound
	}
	if err := s.cache.Delete(ctx, key); err != nil {
		return fmt.Errorf("deleting catalog snapshot: %w", err)
	}
	return nil
}

// generateCatalogKey creates the cache key of a snapshot.
// Format: "catalog:{id}"
func generateCatalogKey(id string) string {
	return "catalog:" + id
}
