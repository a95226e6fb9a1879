package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/farm-map-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/farm-map-service/internal/adapter/kafka"
	"github.com/couchcryptid/farm-map-service/internal/adapter/mapbox"
	"github.com/couchcryptid/farm-map-service/internal/catalog"
	"github.com/couchcryptid/farm-map-service/internal/config"
	"github.com/couchcryptid/farm-map-service/internal/domain"
	"github.com/couchcryptid/farm-map-service/internal/observability"
	"github.com/couchcryptid/farm-map-service/internal/pipeline"
	"github.com/couchcryptid/farm-map-service/internal/survey"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	if err := run(cfg, logger, metrics); err != nil {
		logger.Error("farm map service failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cat := catalog.New(newSource(cfg), logger, metrics, catalog.WithStrict(cfg.FarmDataStrict))
	if err := cat.Load(ctx); err != nil {
		return err
	}

	// Initialize geocoder (feature-flagged via MAPBOX_ENABLED / MAPBOX_TOKEN).
	var geocoder domain.Geocoder
	if cfg.MapboxEnabled {
		client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, metrics, logger)
		geocoder = mapbox.NewCachedGeocoder(client, cfg.MapboxCacheSize, metrics)
		metrics.GeocodeEnabled.Set(1)
		logger.Info("mapbox geocoding enabled", "cache_size", cfg.MapboxCacheSize, "timeout", cfg.MapboxTimeout)
	} else {
		logger.Info("mapbox geocoding disabled")
	}

	api := httpadapter.NewAPI(httpadapter.APIConfig{
		Catalog:      cat,
		RadiusMeters: cfg.ProximityRadiusMeters,
		SummaryRunes: cfg.SummaryMaxRunes,
		Geocoder:     geocoder,
		Transcriber:  survey.MockTranscriber{},
		Extractor:    survey.MockExtractor{},
		Metrics:      metrics,
		Logger:       logger,
	})
	srv := httpadapter.NewServer(cfg.HTTPAddr, cat, api, logger)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if cfg.KafkaEnabled {
		reader := kafkaadapter.NewReader(cfg, logger)
		writer := kafkaadapter.NewWriter(cfg, logger)
		transformer := pipeline.NewTransformer(cat, cfg.ProximityRadiusMeters, metrics)
		p := pipeline.New(reader, transformer, writer, logger, metrics, cfg.BatchSize)

		g.Go(func() error {
			defer func() {
				if err := reader.Close(); err != nil {
					logger.Error("kafka reader close error", "error", err)
				}
				if err := writer.Close(); err != nil {
					logger.Error("kafka writer close error", "error", err)
				}
			}()
			return p.Run(gctx)
		})
	} else {
		logger.Info("kafka selection pipeline disabled")
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("shutdown complete")
	return nil
}

// newSource picks the farm collection source. A URL wins over a path; with
// neither set the catalog serves the fallback farms.
func newSource(cfg *config.Config) catalog.Source {
	switch {
	case cfg.FarmDataURL != "":
		return catalog.NewHTTPSource(cfg.FarmDataURL, cfg.FarmDataTimeout)
	case cfg.FarmDataPath != "":
		return catalog.NewFileSource(cfg.FarmDataPath)
	default:
		return nil
	}
}
