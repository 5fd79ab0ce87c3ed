package orchestrator

import (
	"fmt"
	"sync"
	"time"

	"github.com/OldStager01/vitalwatch/internal/events"
	"github.com/OldStager01/vitalwatch/internal/forecast"
	"github.com/OldStager01/vitalwatch/internal/jitter"
	"github.com/OldStager01/vitalwatch/internal/logger"
	"github.com/OldStager01/vitalwatch/internal/metrics"
	"github.com/OldStager01/vitalwatch/internal/monitor"
	"github.com/OldStager01/vitalwatch/internal/risk"
	"github.com/OldStager01/vitalwatch/internal/simulator"
	"github.com/OldStager01/vitalwatch/pkg/config"
	"github.com/OldStager01/vitalwatch/pkg/models"
)

type Stores struct {
	Vitals      monitor.VitalsStore
	Predictions monitor.PredictionStore
	Forecasts   monitor.ForecastStore
	Alerts      monitor.AlertStore
}

// Orchestrator owns the event bus, the event logger and the monitor service,
// and runs simulated patient pipelines on top of them.
type Orchestrator struct {
	config      *config.Config
	eventBus    *events.EventBus
	eventLogger *events.EventLogger
	service     *monitor.Service
	pipeline    *Pipeline
	mu          sync.Mutex
}

// New builds the scoring stack from cfg. cache may be nil.
func New(cfg *config.Config, stores Stores, cache monitor.RiskCache, m *metrics.Metrics) (*Orchestrator, error) {
	model := risk.LoadModelOrDefault(cfg.Scoring.ModelPath)

	var scoringJitter jitter.Source = jitter.Zero
	if cfg.Scoring.JitterSeed != 0 {
		scoringJitter = jitter.NewSeeded(cfg.Scoring.JitterSeed)
	}

	var noise jitter.Source = jitter.Zero
	if cfg.Forecast.NoiseAmplitude > 0 {
		noise = jitter.NewSeeded(cfg.Forecast.NoiseSeed)
	}

	forecaster, err := forecast.New(forecast.Config{
		DefaultHorizon: cfg.Forecast.HorizonMinutes,
		Projection:     cfg.Forecast.Projection,
		Noise:          noise,
		NoiseAmplitude: cfg.Forecast.NoiseAmplitude,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build forecaster: %w", err)
	}

	eventBus := events.NewEventBus(cfg.Events.BufferSize)

	// Subscribe event logger to all events
	eventLogger := events.NewEventLogger(eventBus.SubscribeAll())

	service, err := monitor.New(monitor.Config{
		Vitals:      stores.Vitals,
		Predictions: stores.Predictions,
		Forecasts:   stores.Forecasts,
		Alerts:      stores.Alerts,
		Cache:       cache,
		Model:       model,
		PolicyName:  cfg.Scoring.Policy,
		Jitter:      scoringJitter,
		Forecaster:  forecaster,
		Publisher:   events.NewPublisher(eventBus),
		Metrics:     m,
		HistorySize: cfg.Forecast.HistorySize,
	})
	if err != nil {
		eventBus.Close()
		return nil, fmt.Errorf("failed to build monitor service: %w", err)
	}

	logger.Infof("Scoring with %s policy (model %s), forecasting with %s projection",
		service.DefaultPolicy(), model.Metadata.ModelVersion, forecaster.Projection().Name())

	return &Orchestrator{
		config:      cfg,
		eventBus:    eventBus,
		eventLogger: eventLogger,
		service:     service,
	}, nil
}

func (o *Orchestrator) Start() {
	logger.Info("Orchestrator starting")
	o.eventLogger.Start()
}

func (o *Orchestrator) Stop() {
	logger.Info("Orchestrator stopping")

	o.mu.Lock()
	if o.pipeline != nil {
		o.pipeline.Stop()
		o.pipeline = nil
	}
	o.mu.Unlock()

	o.eventLogger.Stop()
	o.eventBus.Close()

	logger.Info("Orchestrator stopped")
}

func (o *Orchestrator) Service() *monitor.Service {
	return o.service
}

// NewSimulator builds a simulator for the configured patients.
func (o *Orchestrator) NewSimulator() *simulator.Simulator {
	sim := simulator.New(simulator.Config{
		Interval: o.config.Simulator.Interval,
		Variance: 2,
		Seed:     o.config.Simulator.Seed,
	})
	for _, p := range o.config.Simulator.Patients {
		sim.AddPatient(p.ID, simulator.ParsePattern(p.Pattern))
	}
	return sim
}

// StartSimulation feeds simulated patients into the service every period.
func (o *Orchestrator) StartSimulation(sim *simulator.Simulator, period time.Duration) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.pipeline != nil {
		return fmt.Errorf("simulation already running")
	}

	o.pipeline = NewPipeline(PipelineConfig{
		Simulator: sim,
		Service:   o.service,
		Interval:  period,
		Horizon:   o.config.Forecast.HorizonMinutes,
	})
	return o.pipeline.Start()
}

func (o *Orchestrator) SubscribeEvents(eventType models.EventType) <-chan *models.Event {
	return o.eventBus.Subscribe(eventType)
}

func (o *Orchestrator) SubscribeAllEvents() <-chan *models.Event {
	return o.eventBus.SubscribeAll()
}
