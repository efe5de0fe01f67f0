package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/civicsignal/incident-feed/internal/adapter/gmaps"
	httpadapter "github.com/civicsignal/incident-feed/internal/adapter/http"
	kafkaadapter "github.com/civicsignal/incident-feed/internal/adapter/kafka"
	"github.com/civicsignal/incident-feed/internal/adapter/police"
	"github.com/civicsignal/incident-feed/internal/aggregator"
	"github.com/civicsignal/incident-feed/internal/cache"
	"github.com/civicsignal/incident-feed/internal/config"
	"github.com/civicsignal/incident-feed/internal/domain"
	"github.com/civicsignal/incident-feed/internal/observability"
	"github.com/civicsignal/incident-feed/internal/pipeline"
)

func main() {
	// A missing .env is fine; the environment wins either way.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	region := domain.GreaterLondon()
	source := police.NewClient(cfg.SourceBaseURL, cfg.SourceTimeout, metrics, logger)
	agg := aggregator.New(source, cache.New(), region, cfg.TileParallelism, metrics, logger)

	// Place resolution is feature-flagged via GEOCODE_ENABLED / GOOGLE_MAPS_API_KEY.
	var resolver domain.PlaceResolver
	if cfg.GeocodeEnabled {
		r, err := gmaps.NewResolver(cfg.GoogleMapsAPIKey, cfg.GeocodeTimeout, metrics, logger)
		if err != nil {
			logger.Error("failed to create geocoding client", "error", err)
			os.Exit(1)
		}
		resolver = r
		logger.Info("place resolution enabled", "timeout", cfg.GeocodeTimeout)
	} else {
		logger.Info("place resolution disabled, using region fallback name")
	}

	// Archive publishing is feature-flagged via ARCHIVE_ENABLED.
	var archive pipeline.ArchiveSink
	var archiveWriter *kafkaadapter.ArchiveWriter
	if cfg.ArchiveEnabled {
		archiveWriter = kafkaadapter.NewArchiveWriter(cfg, logger)
		archive = archiveWriter
		logger.Info("archive publishing enabled", "topic", cfg.KafkaArchiveTopic, "brokers", cfg.KafkaBrokers)
	} else {
		logger.Info("archive publishing disabled")
	}

	p := pipeline.New(region, agg, resolver, archive, nil, metrics, logger)

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, p, cfg.DefaultMonthsBack, cfg.RequestTimeout, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if archiveWriter != nil {
		if err := archiveWriter.Close(); err != nil {
			logger.Error("archive writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
