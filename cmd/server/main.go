package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/pricelens/skumatch/config"
	"github.com/pricelens/skumatch/internal/bootstrap"
	httpDelivery "github.com/pricelens/skumatch/internal/delivery/http"
	"github.com/pricelens/skumatch/internal/infrastructure/logging"
	"github.com/pricelens/skumatch/internal/usecase"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "skumatch server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := logging.New(cfg.Log, os.Stdout)
	if err != nil {
		return err
	}
	logger.Info().
		Str("environment", cfg.Server.Environment).
		Str("port", cfg.Server.Port).
		Str("cache", cfg.Cache.Driver).
		Str("storage", cfg.Storage.Driver).
		Msg("starting skumatch server")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize infrastructure dependencies
	snapshotCache, closeCache, err := bootstrap.Cache(ctx, cfg.Cache)
	if err != nil {
		return fmt.Errorf("opening cache: %w", err)
	}
	defer closeCache.Close()

	store, err := bootstrap.Store(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("opening match store: %w", err)
	}
	defer store.Close()

	normalizer, cached, err := bootstrap.Normalizers(cfg.Normalizer)
	if err != nil {
		return fmt.Errorf("building normalizer: %w", err)
	}

	// Initialize usecase layer
	matcher := bootstrap.Matcher(cfg.Matching, logger)
	catalogs := usecase.NewCatalogService(snapshotCache, cached, usecase.CatalogServiceConfig{
		SnapshotTTL: cfg.Cache.TTL,
		Logger:      logger,
	})
	pipeline := usecase.NewPipelineService(cached, matcher, store, logger)

	logMatching(logger, cfg.Matching, matcher)

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(httpDelivery.Dependencies{
		Normalizer: normalizer,
		Text:       cached,
		Scorer:     matcher.Scorer(),
		Catalogs:   catalogs,
		Pipeline:   pipeline,
		Matches:    store,
		Logger:     logger,
	})

	router := httpDelivery.SetupRouter(cfg, handler, logger)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func logMatching(logger zerolog.Logger, cfg config.MatchingConfig, matcher *usecase.MatchingService) {
	p := matcher.Scorer().Params()
	logger.Info().
		Float64("threshold", matcher.Threshold()).
		Float64("dice_weight", p.DiceWeight).
		Float64("unit_penalty", p.UnitPenalty).
		Float64("reshape_decay", p.ReshapeDecay).
		Str("tokenizer", string(p.Tokenizer)).
		Int("workers", cfg.Workers).
		Bool("debug", cfg.Debug).
		Msg("matching configured")
}
