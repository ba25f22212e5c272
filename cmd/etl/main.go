package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/tolgakurt/footlake/external/fbref"
	"github.com/tolgakurt/footlake/external/understat"
	"github.com/tolgakurt/footlake/internal/config"
	"github.com/tolgakurt/footlake/internal/observability"
	"github.com/tolgakurt/footlake/internal/platform/logging"
	"github.com/tolgakurt/footlake/internal/platform/resilience"
	"github.com/tolgakurt/footlake/internal/storage/csvsnap"
	"github.com/tolgakurt/footlake/internal/storage/postgres"
	"github.com/tolgakurt/footlake/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := logging.NewJSON(cfg.LogLevel)
	logging.SetDefault(logger)
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.InitUptrace(cfg, logger)
	if err != nil {
		logger.Error("init uptrace", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Error("shutdown tracing", "error", err)
		}
	}()

	stopProfiler, err := observability.InitPyroscope(cfg, logger)
	if err != nil {
		logger.Error("init pyroscope", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := stopProfiler(); err != nil {
			logger.Error("stop profiler", "error", err)
		}
	}()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("pipeline failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *logging.Logger) error {
	entries, err := config.LoadLeagues(cfg.LeaguesConfigPath)
	if err != nil {
		return err
	}
	leagues := config.ActiveTopLevel(entries)

	providers := buildProviders(cfg, logger)

	var loader usecase.WarehouseLoader
	if cfg.WarehouseEnabled {
		db, err := postgres.Connect(ctx, cfg.WarehouseDBURL)
		if err != nil {
			return err
		}
		defer db.Close()
		loader = postgres.NewLoader(db, cfg.WarehouseLoadWorkers, logger)
	}

	pipeline := usecase.NewPipelineService(
		usecase.PipelineConfig{
			Leagues:          leagues,
			SeasonStartYears: cfg.SeasonStartYears,
			StandingsSource:  fbref.SourceName,
		},
		usecase.NewExtractService(providers, logger),
		usecase.NewCatalogService(logger),
		usecase.NewMergeService(logger),
		csvsnap.NewWriter(cfg.OutputDir, logger),
		loader,
		logger,
	)

	_, err = pipeline.Run(ctx)
	return err
}

func buildProviders(cfg config.Config, logger *logging.Logger) []usecase.StatsProvider {
	providers := make([]usecase.StatsProvider, 0, 2)

	if cfg.FBrefEnabled {
		providers = append(providers, fbref.NewClient(fbref.ClientConfig{
			BaseURL: cfg.FBrefBaseURL,
			Timeout: cfg.FBrefTimeout,
			Logger:  logger,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.FBrefCircuitEnabled,
				FailureThreshold: cfg.FBrefCircuitFailureCount,
				OpenTimeout:      cfg.FBrefCircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.FBrefCircuitHalfOpenReq,
			},
		}))
	}
	if cfg.UnderstatEnabled {
		providers = append(providers, understat.NewClient(understat.ClientConfig{
			BaseURL: cfg.UnderstatBaseURL,
			Timeout: cfg.UnderstatTimeout,
			Logger:  logger,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.UnderstatCircuitEnabled,
				FailureThreshold: cfg.UnderstatCircuitFailureCount,
				OpenTimeout:      cfg.UnderstatCircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.UnderstatCircuitHalfOpenReq,
			},
		}))
	}
	return providers
}
