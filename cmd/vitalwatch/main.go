package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/OldStager01/vitalwatch/api"
	"github.com/OldStager01/vitalwatch/api/handlers"
	"github.com/OldStager01/vitalwatch/internal/cache"
	"github.com/OldStager01/vitalwatch/internal/logger"
	"github.com/OldStager01/vitalwatch/internal/metrics"
	"github.com/OldStager01/vitalwatch/internal/monitor"
	"github.com/OldStager01/vitalwatch/internal/orchestrator"
	"github.com/OldStager01/vitalwatch/internal/resilience"
	"github.com/OldStager01/vitalwatch/pkg/config"
	"github.com/OldStager01/vitalwatch/pkg/database"
	"github.com/OldStager01/vitalwatch/pkg/database/queries"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to config file")
	migrate := flag.Bool("migrate", false, "run database migrations")
	demo := flag.Bool("demo", false, "score and forecast the simulated patients, then exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger.Setup(cfg.App.LogLevel, cfg.App.Mode)
	logger.Infof("Starting %s in %s mode", cfg.App.Name, cfg.App.Mode)

	db, err := database.New(cfg.Database.ToDBConfig())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	logger.Info("Database connection established")

	if *migrate {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Database.MigrationTimeout)
		defer cancel()

		logger.Info("Running database migrations")
		if err := database.NewMigrator(db).Run(ctx); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		logger.Info("Migrations completed successfully")
		return nil
	}

	m := metrics.New()

	var riskCache *cache.RiskCache
	if cfg.Redis.Enabled {
		riskCache = newRiskCache(cfg.Redis, m)
		defer riskCache.Close()
		logger.Infof("Risk cache enabled at %s", cfg.Redis.Addr)
	}

	stores := orchestrator.Stores{
		Vitals:      queries.NewVitalsRepository(db.DB),
		Predictions: queries.NewPredictionRepository(db.DB),
		Forecasts:   queries.NewForecastRepository(db.DB),
		Alerts:      queries.NewAlertRepository(db.DB),
	}

	// a typed nil pointer would not compare equal to a nil interface
	var latestCache monitor.RiskCache
	var cacheCheck handlers.Checker
	if riskCache != nil {
		latestCache = riskCache
		cacheCheck = handlers.CheckerFunc(riskCache.Ping)
	}

	orch, err := orchestrator.New(cfg, stores, latestCache, m)
	if err != nil {
		return fmt.Errorf("failed to build orchestrator: %w", err)
	}
	orch.Start()

	if *demo {
		defer orch.Stop()
		return runDemo(cfg, orch)
	}

	var metricsServer *metrics.Server
	if cfg.Prometheus.Enabled {
		metricsServer = metrics.NewServer(m, cfg.Prometheus.Port, cfg.Prometheus.Path)
		metricsServer.Start()
	}

	server := api.NewServer(cfg.API, &cfg.WebSocket, cfg.App.Mode, api.Dependencies{
		Service: orch.Service(),
		DB:      db,
		Cache:   cacheCheck,
		Metrics: m,
		Events:  orch.SubscribeAllEvents(),
	})

	if len(cfg.Simulator.Patients) > 0 {
		if err := orch.StartSimulation(orch.NewSimulator(), cfg.Simulator.Interval); err != nil {
			return fmt.Errorf("failed to start simulation: %w", err)
		}
		logger.Infof("Simulating %d patients every %s", len(cfg.Simulator.Patients), cfg.Simulator.Interval)
	}

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		logger.Infof("API server listening on port %d", cfg.API.Port)
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	var serveErr error
	select {
	case err := <-errChan:
		serveErr = fmt.Errorf("server error: %w", err)
	case sig := <-shutdownChan:
		logger.Infof("Received signal %v, shutting down", sig)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("API shutdown error: %v", err)
	}
	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.Errorf("Metrics shutdown error: %v", err)
		}
	}
	orch.Stop()

	if serveErr != nil {
		return serveErr
	}
	logger.Info("Server stopped gracefully")
	return nil
}

func newRiskCache(cfg config.RedisConfig, m *metrics.Metrics) *cache.RiskCache {
	cacheCfg := cfg.ToCacheConfig()
	breaker := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
		Name:        "risk-cache",
		MaxFailures: cfg.CircuitBreaker.MaxFailures,
		Cooldown:    cfg.CircuitBreaker.Cooldown,
		OnStateChange: func(name string, from, to resilience.State) {
			m.SetCircuitBreakerState(name, int(to))
			logger.Warnf("Circuit breaker %s: %s -> %s", name, from, to)
		},
	})
	return cache.New(cache.NewClient(cacheCfg), breaker, cacheCfg)
}

func runDemo(cfg *config.Config, orch *orchestrator.Orchestrator) error {
	if len(cfg.Simulator.Patients) == 0 {
		return fmt.Errorf("no simulator patients configured")
	}

	logger.Infof("Running %d demo cycles over %d patients", cfg.Simulator.Steps, len(cfg.Simulator.Patients))

	pipeline := orchestrator.NewPipeline(orchestrator.PipelineConfig{
		Simulator: orch.NewSimulator(),
		Service:   orch.Service(),
		Horizon:   cfg.Forecast.HorizonMinutes,
	})

	ctx := context.Background()
	for step := 1; step <= cfg.Simulator.Steps; step++ {
		results := pipeline.RunCycle(ctx)

		ids := make([]string, 0, len(results))
		for id := range results {
			ids = append(ids, id)
		}
		sort.Strings(ids)

		for _, id := range ids {
			r := results[id]
			entry := logger.WithPatient(id).WithField("step", step)
			if r.Risk != nil {
				entry = entry.WithField("risk_level", r.Risk.RiskLevel).WithField("probability", r.Risk.Probability)
			}
			if r.Forecast != nil {
				entry = entry.WithField("projection", r.Forecast.RiskProjection)
			}
			entry.Info("Demo cycle")
		}
	}

	// give the event logger a moment to persist the last alerts
	time.Sleep(500 * time.Millisecond)
	logger.Info("Demo completed")
	return nil
}
