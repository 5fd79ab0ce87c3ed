package orchestrator

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/OldStager01/vitalwatch/internal/forecast"
	"github.com/OldStager01/vitalwatch/internal/logger"
	"github.com/OldStager01/vitalwatch/internal/monitor"
	"github.com/OldStager01/vitalwatch/internal/simulator"
	"github.com/OldStager01/vitalwatch/pkg/models"
)

type PipelineConfig struct {
	Simulator *simulator.Simulator
	Service   *monitor.Service
	Interval  time.Duration
	Horizon   int
}

// CycleResult is what one pass produced for a patient.
type CycleResult struct {
	Risk     *models.RiskResult
	Forecast *models.ForecastResult
}

// Pipeline records a simulated snapshot per patient, then forecasts each one.
type Pipeline struct {
	config  PipelineConfig
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
	mu      sync.Mutex
}

func NewPipeline(cfg PipelineConfig) *Pipeline {
	if cfg.Interval == 0 {
		cfg.Interval = 10 * time.Second
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Pipeline{
		config: cfg,
		ctx:    ctx,
		cancel: cancel,
	}
}

func (p *Pipeline) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return nil
	}

	p.running = true
	p.wg.Add(1)
	go p.run()

	logger.Infof("Pipeline started for %d patients", len(p.config.Simulator.Patients()))
	return nil
}

func (p *Pipeline) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	p.mu.Unlock()

	p.cancel()
	p.wg.Wait()

	logger.Info("Pipeline stopped")
}

func (p *Pipeline) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *Pipeline) run() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.config.Interval)
	defer ticker.Stop()

	// Run immediately on start
	p.RunCycle(p.ctx)

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
			p.RunCycle(p.ctx)
		}
	}
}

// RunCycle performs one pass and returns the results by patient.
func (p *Pipeline) RunCycle(ctx context.Context) map[string]CycleResult {
	out := make(map[string]CycleResult)

	// Step 1: record and score
	risks, err := p.config.Simulator.Tick(ctx, p.config.Service)
	if err != nil {
		logger.Errorf("Simulated recording failed: %v", err)
	}

	// Step 2: forecast every patient that was recorded
	for patientID, result := range risks {
		cycle := CycleResult{Risk: result}

		fc, err := p.config.Service.Forecast(ctx, patientID, p.config.Horizon)
		switch {
		case err == nil:
			cycle.Forecast = fc
		case errors.Is(err, forecast.ErrInsufficientData):
			logger.WithPatient(patientID).Debug("Waiting for more history before forecasting")
		default:
			logger.WithPatient(patientID).Errorf("Forecast failed: %v", err)
		}

		out[patientID] = cycle
	}

	return out
}
