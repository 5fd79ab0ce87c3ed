package forecast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OldStager01/vitalwatch/pkg/models"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fixedSource float64

func (f fixedSource) Float64() float64 { return float64(f) }

func newTestForecaster(t *testing.T, projection string) *Forecaster {
	t.Helper()
	f, err := New(Config{
		Projection: projection,
		Now:        func() time.Time { return fixedNow },
	})
	require.NoError(t, err)
	return f
}

// history builds flat-normal snapshots and lets modify vary one vital per index.
func history(n int, modify func(i int, s *models.VitalsSnapshot)) []models.VitalsSnapshot {
	out := make([]models.VitalsSnapshot, n)
	for i := range out {
		s := models.VitalsSnapshot{
			PatientID:   "p-1",
			HeartRate:   80,
			SpO2:        98,
			RespRate:    16,
			SystolicBP:  120,
			DiastolicBP: 80,
			Temperature: 36.8,
			Timestamp:   fixedNow.Add(time.Duration(i-n) * 5 * time.Minute),
		}
		if modify != nil {
			modify(i, &s)
		}
		out[i] = s
	}
	return out
}

func TestFitTrend(t *testing.T) {
	tr := fitTrend([]float64{98, 96, 94, 92, 90, 88})
	assert.InDelta(t, -2, tr.slope, 1e-9)
	assert.InDelta(t, 98, tr.intercept, 1e-9)
	assert.InDelta(t, 70.0/6, tr.variance, 1e-9)
	assert.InDelta(t, 74, tr.at(12), 1e-9)

	flat := fitTrend([]float64{5})
	assert.Zero(t, flat.slope)
	assert.Equal(t, 5.0, flat.intercept)
	assert.Equal(t, 0.95, flat.confidence())

	noisy := fitTrend([]float64{0, 100, 0, 100})
	assert.Equal(t, 0.3, noisy.confidence())
}

func TestForecast_InsufficientData(t *testing.T) {
	f := newTestForecaster(t, "")

	_, err := f.Forecast("p-1", history(1, nil), 30)
	assert.ErrorIs(t, err, ErrInsufficientData)

	_, err = f.Forecast("p-1", nil, 30)
	assert.ErrorIs(t, err, ErrInsufficientData)

	result, err := f.Forecast("p-1", history(2, nil), 30)
	require.NoError(t, err)
	assert.Len(t, result.Forecasts, 6)
}

func TestForecast_Horizon(t *testing.T) {
	f := newTestForecaster(t, "")

	tests := []struct {
		horizon int
		steps   []int
		wantErr bool
	}{
		{0, []int{5, 10, 15, 20, 25, 30}, false},
		{30, []int{5, 10, 15, 20, 25, 30}, false},
		{15, []int{5, 10, 15}, false},
		{12, []int{5, 10}, false},
		{5, []int{5}, false},
		{4, nil, false},
		{45, []int{5, 10, 15, 20, 25, 30}, false},
		{60, []int{5, 10, 15, 20, 25, 30}, false},
		{-10, nil, true},
	}

	for _, tt := range tests {
		result, err := f.Forecast("p-1", history(3, nil), tt.horizon)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrInvalidHorizon, "horizon %d", tt.horizon)
			continue
		}
		require.NoError(t, err, "horizon %d", tt.horizon)

		var steps []int
		for _, p := range result.Forecasts {
			steps = append(steps, p.MinutesAhead)
		}
		assert.Equal(t, tt.steps, steps, "horizon %d", tt.horizon)
	}
}

func TestForecast_LongHorizonKeepsRequestedMinutes(t *testing.T) {
	f := newTestForecaster(t, "")

	result, err := f.Forecast("p-1", history(6, nil), 60)
	require.NoError(t, err)

	assert.Len(t, result.Forecasts, 6)
	assert.Equal(t, 60, result.HorizonMinutes)
	assert.Equal(t, models.ProjectionStable, result.RiskProjection)
	assert.Equal(t, "Patient vitals are expected to remain stable over the next 60 minutes.", result.Summary)
}

func TestForecast_OrderingAndTimestamps(t *testing.T) {
	f := newTestForecaster(t, "")

	result, err := f.Forecast("p-1", history(6, nil), 30)
	require.NoError(t, err)

	require.Len(t, result.Forecasts, 6)
	for i, p := range result.Forecasts {
		assert.Equal(t, (i+1)*5, p.MinutesAhead)
		assert.Equal(t, fixedNow.Add(time.Duration(p.MinutesAhead)*time.Minute), p.Timestamp)
		if i > 0 {
			assert.True(t, p.Timestamp.After(result.Forecasts[i-1].Timestamp))
		}
	}
	assert.Equal(t, "p-1", result.PatientID)
	assert.Equal(t, 30, result.HorizonMinutes)
	assert.Equal(t, fixedNow, result.GeneratedAt)
}

func TestForecast_ClampsToPhysiologicalRanges(t *testing.T) {
	f := newTestForecaster(t, "")

	rising := history(6, func(i int, s *models.VitalsSnapshot) {
		s.HeartRate = 100 + i*80
		s.SpO2 = 100 + float64(i)*10
		s.RespRate = 10 + i*20
		s.SystolicBP = 120 + i*100
		s.DiastolicBP = 80 + i*60
		s.Temperature = 37 + float64(i)*3
	})
	falling := history(6, func(i int, s *models.VitalsSnapshot) {
		s.HeartRate = 100 - i*40
		s.SpO2 = 98 - float64(i)*10
		s.RespRate = 20 - i*5
		s.SystolicBP = 120 - i*30
		s.DiastolicBP = 80 - i*20
		s.Temperature = 37 - float64(i)*2
	})

	for name, h := range map[string][]models.VitalsSnapshot{"rising": rising, "falling": falling} {
		result, err := f.Forecast("p-1", h, 30)
		require.NoError(t, err, name)

		for _, p := range result.Forecasts {
			assert.GreaterOrEqual(t, p.HeartRate, 30, name)
			assert.LessOrEqual(t, p.HeartRate, 200, name)
			assert.GreaterOrEqual(t, p.SpO2, 70.0, name)
			assert.LessOrEqual(t, p.SpO2, 100.0, name)
			assert.GreaterOrEqual(t, p.RespRate, 5, name)
			assert.LessOrEqual(t, p.RespRate, 40, name)
			assert.GreaterOrEqual(t, p.SystolicBP, 60, name)
			assert.LessOrEqual(t, p.SystolicBP, 220, name)
			assert.GreaterOrEqual(t, p.DiastolicBP, 30, name)
			assert.LessOrEqual(t, p.DiastolicBP, 140, name)
			assert.GreaterOrEqual(t, p.Temperature, 34.0, name)
			assert.LessOrEqual(t, p.Temperature, 42.0, name)
		}
	}

	result, err := f.Forecast("p-1", rising, 30)
	require.NoError(t, err)
	last := result.Forecasts[len(result.Forecasts)-1]
	assert.Equal(t, 200, last.HeartRate)
	assert.Equal(t, 100.0, last.SpO2)
	assert.Equal(t, 42.0, last.Temperature)
}

func TestForecast_DecreasingSpO2IsNeverImproving(t *testing.T) {
	spo2 := []float64{98, 96, 94, 92, 90, 88}
	h := history(6, func(i int, s *models.VitalsSnapshot) { s.SpO2 = spo2[i] })

	for _, projection := range []string{ProjectionDetailed, ProjectionSimplified} {
		result, err := newTestForecaster(t, projection).Forecast("p-1", h, 30)
		require.NoError(t, err)

		assert.Contains(t,
			[]models.RiskProjection{models.ProjectionDeclining, models.ProjectionCritical},
			result.RiskProjection, projection)
		assert.True(t, result.RequiresAlert())
	}

	result, err := newTestForecaster(t, ProjectionDetailed).Forecast("p-1", h, 30)
	require.NoError(t, err)
	assert.Equal(t, models.ProjectionDeclining, result.RiskProjection)
	assert.Equal(t, summaryDeclining, result.Summary)
	assert.Equal(t, 84.0, result.Forecasts[0].SpO2)
	assert.Equal(t, 74.0, result.Forecasts[5].SpO2)
	assert.InDelta(t, 0.939, result.Confidence, 1e-9)
}

func TestForecast_HeartRateTrendContinues(t *testing.T) {
	h := history(6, func(i int, s *models.VitalsSnapshot) { s.HeartRate = 70 + i*10 })

	result, err := newTestForecaster(t, "").Forecast("p-1", h, 15)
	require.NoError(t, err)

	require.Len(t, result.Forecasts, 3)
	lastObserved := h[len(h)-1].HeartRate
	expected := []int{140, 150, 160}
	for i, p := range result.Forecasts {
		assert.Greater(t, p.HeartRate, lastObserved)
		assert.LessOrEqual(t, p.HeartRate, 200)
		assert.Equal(t, expected[i], p.HeartRate)
		assert.Equal(t, 98.0, p.SpO2)
	}
	assert.Equal(t, models.ProjectionDeclining, result.RiskProjection)
}

func TestForecast_FlatHistoryIsStable(t *testing.T) {
	result, err := newTestForecaster(t, "").Forecast("p-1", history(4, nil), 30)
	require.NoError(t, err)

	assert.Equal(t, models.ProjectionStable, result.RiskProjection)
	assert.Equal(t, "Patient vitals are expected to remain stable over the next 30 minutes.", result.Summary)
	assert.Equal(t, 0.95, result.Confidence)
	assert.Equal(t, ProjectionDetailed, result.Policy)
	assert.False(t, result.RequiresAlert())

	for _, p := range result.Forecasts {
		assert.Equal(t, 80, p.HeartRate)
		assert.Equal(t, 36.8, p.Temperature)
	}
}

func TestForecast_Noise(t *testing.T) {
	f, err := New(Config{
		Noise:          fixedSource(0.75),
		NoiseAmplitude: 1,
		Now:            func() time.Time { return fixedNow },
	})
	require.NoError(t, err)

	result, err := f.Forecast("p-1", history(3, nil), 5)
	require.NoError(t, err)

	require.Len(t, result.Forecasts, 1)
	assert.Equal(t, 81, result.Forecasts[0].HeartRate)
	assert.Equal(t, 98.5, result.Forecasts[0].SpO2)
}

func TestNew_UnknownProjection(t *testing.T) {
	_, err := New(Config{Projection: "oracle"})
	assert.ErrorIs(t, err, ErrUnknownProjection)
}
