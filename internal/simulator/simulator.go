package simulator

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/OldStager01/vitalwatch/internal/jitter"
	"github.com/OldStager01/vitalwatch/internal/logger"
	"github.com/OldStager01/vitalwatch/pkg/models"
)

// Recorder accepts simulated snapshots; the monitor service satisfies it.
type Recorder interface {
	RecordVitals(ctx context.Context, snapshot *models.VitalsSnapshot) (*models.RiskResult, error)
}

type Config struct {
	Interval time.Duration
	Variance float64
	Seed     int64
	Start    time.Time
}

type Simulator struct {
	config   Config
	noise    jitter.Source
	patients map[string]*PatientSim
	mu       sync.RWMutex
}

func New(cfg Config) *Simulator {
	if cfg.Interval == 0 {
		cfg.Interval = 5 * time.Minute
	}
	if cfg.Start.IsZero() {
		cfg.Start = time.Now().UTC()
	}

	var noise jitter.Source = jitter.Zero
	if cfg.Variance > 0 {
		noise = jitter.NewSeeded(cfg.Seed)
	}

	return &Simulator{
		config:   cfg,
		noise:    noise,
		patients: make(map[string]*PatientSim),
	}
}

// AddPatient returns the existing simulation when the id is already known.
func (s *Simulator) AddPatient(id string, pattern Pattern) *PatientSim {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p, exists := s.patients[id]; exists {
		return p
	}

	p := NewPatientSim(id, PatientSimConfig{
		Pattern:  pattern,
		Variance: s.config.Variance,
		Interval: s.config.Interval,
		Start:    s.config.Start,
	}, s.noise)
	s.patients[id] = p

	logger.WithPatient(id).Infof("Simulating patient with %s pattern", p.Pattern())
	return p
}

func (s *Simulator) Patient(id string) (*PatientSim, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, exists := s.patients[id]
	return p, exists
}

// Patients returns the simulated patient ids in sorted order.
func (s *Simulator) Patients() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.patients))
	for id := range s.patients {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Tick records one snapshot for every patient and returns the results by id.
func (s *Simulator) Tick(ctx context.Context, rec Recorder) (map[string]*models.RiskResult, error) {
	results := make(map[string]*models.RiskResult)
	for _, id := range s.Patients() {
		p, _ := s.Patient(id)
		snapshot := p.Next()

		result, err := rec.RecordVitals(ctx, &snapshot)
		if err != nil {
			return results, fmt.Errorf("failed to record vitals for %s: %w", id, err)
		}
		results[id] = result
	}
	return results, nil
}

// Run ticks every period until ctx is done. A failed tick is logged and the
// loop continues.
func (s *Simulator) Run(ctx context.Context, rec Recorder, period time.Duration) {
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		if _, err := s.Tick(ctx, rec); err != nil {
			logger.Errorf("Simulator tick failed: %v", err)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
