package simulator

import (
	"math"
	"sync"
	"time"

	"github.com/OldStager01/vitalwatch/internal/jitter"
	"github.com/OldStager01/vitalwatch/pkg/models"
)

type PatientSimConfig struct {
	Pattern  Pattern
	Baseline Vitals
	// Variance is the maximum absolute noise added to heart rate; other
	// vitals scale it down.
	Variance float64
	Interval time.Duration
	Start    time.Time
}

// PatientSim emits one snapshot per step along its pattern.
type PatientSim struct {
	id     string
	config PatientSimConfig
	noise  jitter.Source
	step   int
	mu     sync.Mutex
}

func NewPatientSim(id string, cfg PatientSimConfig, noise jitter.Source) *PatientSim {
	if cfg.Pattern == nil {
		cfg.Pattern = PatternSteady
	}
	if cfg.Baseline == (Vitals{}) {
		cfg.Baseline = Baseline
	}
	if cfg.Interval == 0 {
		cfg.Interval = 5 * time.Minute
	}
	if cfg.Start.IsZero() {
		cfg.Start = time.Now().UTC()
	}
	if noise == nil {
		noise = jitter.Zero
	}

	return &PatientSim{
		id:     id,
		config: cfg,
		noise:  noise,
	}
}

func (p *PatientSim) ID() string {
	return p.id
}

func (p *PatientSim) Pattern() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.config.Pattern.Name()
}

func (p *PatientSim) SetPattern(pattern Pattern) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.config.Pattern = pattern
	p.step = 0
}

// Next returns the snapshot for the current step and advances the clock.
func (p *PatientSim) Next() models.VitalsSnapshot {
	p.mu.Lock()
	defer p.mu.Unlock()

	v := p.config.Pattern.Apply(p.step, p.config.Baseline)
	noise := func(scale float64) float64 {
		return jitter.Symmetric(p.noise, p.config.Variance*scale)
	}

	snapshot := models.VitalsSnapshot{
		PatientID:   p.id,
		HeartRate:   int(math.Round(v.HeartRate + noise(1))),
		SpO2:        models.Round(math.Min(v.SpO2+noise(0.2), 100), 1),
		RespRate:    int(math.Round(v.RespRate + noise(0.3))),
		SystolicBP:  int(math.Round(v.SystolicBP + noise(1))),
		DiastolicBP: int(math.Round(v.DiastolicBP + noise(0.6))),
		Temperature: models.Round(v.Temperature+noise(0.05), 1),
		Timestamp:   p.config.Start.Add(time.Duration(p.step) * p.config.Interval),
	}
	p.step++
	return snapshot
}
