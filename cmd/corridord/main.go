package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	kafkaadapter "github.com/levonter/corridor/internal/adapter/kafka"
	"github.com/levonter/corridor/internal/adapter/nominatim"
	"github.com/levonter/corridor/internal/api"
	"github.com/levonter/corridor/internal/config"
	"github.com/levonter/corridor/internal/extract"
	"github.com/levonter/corridor/internal/gazetteer"
	"github.com/levonter/corridor/internal/geocode"
	"github.com/levonter/corridor/internal/observability"
	"github.com/levonter/corridor/internal/pipeline"
	"github.com/levonter/corridor/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	gaz, err := gazetteer.Load(cfg.GazetteerPath)
	if err != nil {
		logger.Error("failed to load gazetteer", "path", cfg.GazetteerPath, "error", err)
		os.Exit(1)
	}
	logger.Info("gazetteer loaded", "path", cfg.GazetteerPath, "entries", gaz.Len())

	geocoder := nominatim.NewClient(cfg.GeocoderURL, cfg.GeocoderTimeout, logger)
	resolver := geocode.New(gaz, geocoder, cfg.GeocodeCacheSize, cfg.GeocodeDelay, logger)

	st := store.New()
	p := pipeline.New(extract.New(gaz), resolver, st, metrics, logger)

	var publisher api.IncidentPublisher
	var writer *kafkaadapter.Writer
	var consumer *kafkaadapter.Consumer
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		publisher = writer
		consumer = kafkaadapter.NewConsumer(cfg, st, p, logger)
		logger.Info("kafka enabled",
			"brokers", cfg.KafkaBrokers,
			"brief_topic", cfg.KafkaBriefTopic,
			"incident_topic", cfg.KafkaIncidentTopic,
		)
	} else {
		logger.Info("kafka disabled")
	}

	handler := api.NewHandler(st, p, metrics, logger, publisher, cfg.BufferRadiusKm)
	srv := api.NewServer(cfg.HTTPAddr, api.NewRouter(handler, cfg.APIRateLimit), logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	if consumer != nil {
		go func() {
			if err := consumer.Run(ctx); err != nil {
				logger.Error("kafka consumer error", "error", err)
			}
		}()
	}

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if consumer != nil {
		if err := consumer.Close(); err != nil {
			logger.Error("kafka consumer close error", "error", err)
		}
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
