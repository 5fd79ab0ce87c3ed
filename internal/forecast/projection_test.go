package forecast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OldStager01/vitalwatch/pkg/models"
)

func point(modify func(p *models.ForecastPoint)) models.ForecastPoint {
	p := models.ForecastPoint{
		HeartRate:   80,
		SpO2:        97,
		RespRate:    16,
		SystolicBP:  120,
		DiastolicBP: 80,
		Temperature: 36.8,
	}
	if modify != nil {
		modify(&p)
	}
	return p
}

func TestDetailedProjection_Assess(t *testing.T) {
	tests := []struct {
		name     string
		points   []models.ForecastPoint
		expected models.RiskProjection
	}{
		{
			name:     "single point is stable",
			points:   []models.ForecastPoint{point(func(p *models.ForecastPoint) { p.SpO2 = 70 })},
			expected: models.ProjectionStable,
		},
		{
			name: "two critical vitals",
			points: []models.ForecastPoint{point(nil), point(func(p *models.ForecastPoint) {
				p.SpO2 = 85
				p.HeartRate = 160
			})},
			expected: models.ProjectionCritical,
		},
		{
			name:     "one critical vital",
			points:   []models.ForecastPoint{point(nil), point(func(p *models.ForecastPoint) { p.SystolicBP = 190 })},
			expected: models.ProjectionDeclining,
		},
		{
			name: "boundary values are not critical",
			points: []models.ForecastPoint{point(nil), point(func(p *models.ForecastPoint) {
				p.HeartRate = 150
				p.RespRate = 30
			})},
			expected: models.ProjectionStable,
		},
		{
			name: "diastolic and temperature are not inspected",
			points: []models.ForecastPoint{point(nil), point(func(p *models.ForecastPoint) {
				p.DiastolicBP = 135
				p.Temperature = 41
			})},
			expected: models.ProjectionStable,
		},
		{
			name: "spo2 rising more than two points",
			points: []models.ForecastPoint{
				point(func(p *models.ForecastPoint) { p.SpO2 = 95 }),
				point(func(p *models.ForecastPoint) { p.SpO2 = 97.5 }),
			},
			expected: models.ProjectionImproving,
		},
		{
			name: "spo2 falling more than three points into warning",
			points: []models.ForecastPoint{
				point(func(p *models.ForecastPoint) { p.SpO2 = 99 }),
				point(func(p *models.ForecastPoint) { p.SpO2 = 94 }),
			},
			expected: models.ProjectionDeclining,
		},
		{
			name: "spo2 falling three points is stable",
			points: []models.ForecastPoint{
				point(func(p *models.ForecastPoint) { p.SpO2 = 100 }),
				point(func(p *models.ForecastPoint) { p.SpO2 = 97 }),
			},
			expected: models.ProjectionStable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DetailedProjection{}.Assess(tt.points))
		})
	}
}

func TestSimplifiedProjection_Assess(t *testing.T) {
	tests := []struct {
		name     string
		points   []models.ForecastPoint
		expected models.RiskProjection
	}{
		{"empty", nil, models.ProjectionStable},
		{"low spo2", []models.ForecastPoint{point(func(p *models.ForecastPoint) { p.SpO2 = 89 })}, models.ProjectionCritical},
		{"bradycardia", []models.ForecastPoint{point(func(p *models.ForecastPoint) { p.HeartRate = 38 })}, models.ProjectionCritical},
		{"tachycardia", []models.ForecastPoint{point(func(p *models.ForecastPoint) { p.HeartRate = 125 })}, models.ProjectionDeclining},
		{"tachypnoea", []models.ForecastPoint{point(func(p *models.ForecastPoint) { p.RespRate = 26 })}, models.ProjectionDeclining},
		{"spo2 below 94", []models.ForecastPoint{point(func(p *models.ForecastPoint) { p.SpO2 = 93 })}, models.ProjectionDeclining},
		{
			"spo2 improved",
			[]models.ForecastPoint{
				point(func(p *models.ForecastPoint) { p.SpO2 = 95 }),
				point(func(p *models.ForecastPoint) { p.SpO2 = 96.5 }),
			},
			models.ProjectionImproving,
		},
		{"steady", []models.ForecastPoint{point(nil), point(nil)}, models.ProjectionStable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SimplifiedProjection{}.Assess(tt.points))
		})
	}
}

func TestProjectionSummaries(t *testing.T) {
	detailed, err := NewProjection("")
	require.NoError(t, err)
	simplified, err := NewProjection(ProjectionSimplified)
	require.NoError(t, err)

	for _, p := range []ProjectionPolicy{detailed, simplified} {
		assert.Equal(t, summaryCritical, p.Summary(models.ProjectionCritical, 30))
		assert.Equal(t, summaryDeclining, p.Summary(models.ProjectionDeclining, 30))
		assert.Equal(t, summaryImproving, p.Summary(models.ProjectionImproving, 30))
	}

	assert.Equal(t, "Patient vitals are expected to remain stable over the next 15 minutes.",
		detailed.Summary(models.ProjectionStable, 15))
	assert.Equal(t, "Patient vitals are expected to remain stable.",
		simplified.Summary(models.ProjectionStable, 15))
}
