// Package bootstrap builds the services described by config.Config. It is
// shared by the HTTP server and the batch CLI.
package bootstrap

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/pricelens/skumatch/config"
	"github.com/pricelens/skumatch/internal/domain"
	"github.com/pricelens/skumatch/internal/infrastructure/cache"
	"github.com/pricelens/skumatch/internal/infrastructure/storage"
	"github.com/pricelens/skumatch/internal/normalize"
	"github.com/pricelens/skumatch/internal/similarity"
	"github.com/pricelens/skumatch/internal/usecase"
)

// Normalizers returns the plain normalizer (used for tracing) and its cached
// wrapper (used everywhere else).
func Normalizers(cfg config.NormalizerConfig) (*normalize.Normalizer, *normalize.CachedNormalizer, error) {
	opts := normalize.Options{
		Locale:             cfg.Locale,
		ExtraStopwords:     cfg.ExtraStopwords,
		CanonicalizeColors: cfg.CanonicalizeColors,
	}
	if cfg.RulesFile != "" {
		ext, err := normalize.LoadExtensions(cfg.RulesFile)
		if err != nil {
			return nil, nil, err
		}
		opts.Extensions = ext
	}

	n := normalize.New(opts)
	cached, err := normalize.NewCached(n, cfg.CacheSize)
	if err != nil {
		return nil, nil, fmt.Errorf("creating normalization cache: %w", err)
	}
	return n, cached, nil
}

// Scorer builds the confidence scorer.
func Scorer(cfg config.MatchingConfig) *similarity.Scorer {
	tokenizer := similarity.Words
	if cfg.Tokenizer == string(similarity.Chars) {
		tokenizer = similarity.Chars
	}
	return similarity.NewScorer(similarity.Params{
		DiceWeight:   cfg.DiceWeight,
		UnitPenalty:  cfg.UnitPenalty,
		ReshapeDecay: cfg.ReshapeDecay,
		Tokenizer:    tokenizer,
	})
}

// Matcher builds the matching service.
func Matcher(cfg config.MatchingConfig, logger zerolog.Logger) *usecase.MatchingService {
	return usecase.NewMatchingService(usecase.MatchConfig{
		MinConfidenceThreshold: cfg.ConfidenceThreshold,
		Workers:                cfg.Workers,
		Scorer:                 Scorer(cfg),
		EnableDebugLogging:     cfg.Debug,
		Logger:                 logger,
	})
}

// Cache opens the snapshot cache selected by cfg. The returned closer releases
// background resources.
func Cache(ctx context.Context, cfg config.CacheConfig) (domain.CacheRepository, io.Closer, error) {
	switch cfg.Driver {
	case "redis":
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:      cfg.RedisAddr,
			Password:  cfg.RedisPassword,
			DB:        cfg.RedisDB,
			KeyPrefix: cfg.KeyPrefix,
		})
		if err != nil {
			return nil, nil, err
		}
		return rc, rc, nil
	case "", "memory":
		mc := cache.NewMemoryCache(cache.DefaultCleanupInterval)
		return mc, mc, nil
	default:
		return nil, nil, fmt.Errorf("unknown cache driver %q", cfg.Driver)
	}
}

// Store opens the match store.
func Store(ctx context.Context, cfg config.StorageConfig) (*storage.Store, error) {
	return storage.Open(ctx, storage.Config{Driver: cfg.Driver, DSN: cfg.DSN})
}
