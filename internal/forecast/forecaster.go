package forecast

import (
	"errors"
	"fmt"
	"time"

	"github.com/OldStager01/vitalwatch/internal/jitter"
	"github.com/OldStager01/vitalwatch/pkg/models"
)

const (
	DefaultHorizon = 30

	// history is assumed to be sampled every five minutes
	stepMinutes = 5
	minHistory  = 2
)

var (
	ErrInsufficientData = errors.New("insufficient data: at least 2 vitals snapshots are required")
	ErrInvalidHorizon   = errors.New("invalid forecast horizon")
)

var horizonSteps = []int{5, 10, 15, 20, 25, 30}

type physiologicalRange struct {
	min, max float64
	decimals int
}

func (r physiologicalRange) apply(v float64) float64 {
	return models.Round(clamp(v, r.min, r.max), r.decimals)
}

var physiologicalRanges = map[string]physiologicalRange{
	models.VitalHeartRate:   {30, 200, 0},
	models.VitalSpO2:        {70, 100, 1},
	models.VitalRespRate:    {5, 40, 0},
	models.VitalSystolicBP:  {60, 220, 0},
	models.VitalDiastolicBP: {30, 140, 0},
	models.VitalTemperature: {34, 42, 1},
}

type Config struct {
	DefaultHorizon int
	Projection     string

	// Noise perturbs each projected value by up to ±NoiseAmplitude.
	// A nil source or zero amplitude keeps forecasts deterministic.
	Noise          jitter.Source
	NoiseAmplitude float64
	Now            func() time.Time
}

// Forecaster projects each vital forward along its least-squares trend.
type Forecaster struct {
	config     Config
	projection ProjectionPolicy
}

func New(cfg Config) (*Forecaster, error) {
	if cfg.DefaultHorizon == 0 {
		cfg.DefaultHorizon = DefaultHorizon
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Noise == nil {
		cfg.Noise = jitter.Zero
	}

	projection, err := NewProjection(cfg.Projection)
	if err != nil {
		return nil, err
	}

	return &Forecaster{
		config:     cfg,
		projection: projection,
	}, nil
}

func (f *Forecaster) Projection() ProjectionPolicy {
	return f.projection
}

// Forecast projects the chronological history forward. A zero horizon uses
// the configured default. Points are emitted at the fixed steps up to the
// horizon, so anything past 30 minutes yields all six.
func (f *Forecaster) Forecast(patientID string, history []models.VitalsSnapshot, horizon int) (*models.ForecastResult, error) {
	if len(history) < minHistory {
		return nil, fmt.Errorf("%w: got %d", ErrInsufficientData, len(history))
	}
	if horizon == 0 {
		horizon = f.config.DefaultHorizon
	}
	if horizon < 0 {
		return nil, fmt.Errorf("%w: %d minutes (must be positive)", ErrInvalidHorizon, horizon)
	}

	n := len(history)
	trends := make(map[string]trend, len(models.VitalNames))
	var confidenceSum float64
	for _, vital := range models.VitalNames {
		values := make([]float64, n)
		for i, snapshot := range history {
			values[i], _ = snapshot.Value(vital)
		}
		t := fitTrend(values)
		trends[vital] = t
		confidenceSum += t.confidence()
	}
	pointConfidence := models.Round(confidenceSum/float64(len(models.VitalNames)), 3)

	now := f.config.Now()
	points := make([]models.ForecastPoint, 0, len(horizonSteps))
	for _, m := range horizonSteps {
		if m > horizon {
			break
		}
		futureIndex := float64(n + m/stepMinutes)

		project := func(vital string) float64 {
			v := trends[vital].at(futureIndex) + jitter.Symmetric(f.config.Noise, f.config.NoiseAmplitude)
			return physiologicalRanges[vital].apply(v)
		}

		points = append(points, models.ForecastPoint{
			MinutesAhead: m,
			Timestamp:    now.Add(time.Duration(m) * time.Minute),
			HeartRate:    int(project(models.VitalHeartRate)),
			SpO2:         project(models.VitalSpO2),
			RespRate:     int(project(models.VitalRespRate)),
			SystolicBP:   int(project(models.VitalSystolicBP)),
			DiastolicBP:  int(project(models.VitalDiastolicBP)),
			Temperature:  project(models.VitalTemperature),
			Confidence:   pointConfidence,
		})
	}

	projection := f.projection.Assess(points)

	return &models.ForecastResult{
		PatientID:      patientID,
		HorizonMinutes: horizon,
		Forecasts:      points,
		Confidence:     meanConfidence(points),
		RiskProjection: projection,
		Summary:        f.projection.Summary(projection, horizon),
		Policy:         f.projection.Name(),
		GeneratedAt:    now,
	}, nil
}

func meanConfidence(points []models.ForecastPoint) float64 {
	if len(points) == 0 {
		return 0
	}
	var sum float64
	for _, p := range points {
		sum += p.Confidence
	}
	return models.Round(sum/float64(len(points)), 3)
}
