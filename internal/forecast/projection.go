package forecast

import (
	"errors"
	"fmt"

	"github.com/OldStager01/vitalwatch/internal/risk"
	"github.com/OldStager01/vitalwatch/pkg/models"
)

const (
	ProjectionDetailed   = "detailed"
	ProjectionSimplified = "simplified"
)

var ErrUnknownProjection = errors.New("unknown risk projection policy")

const (
	summaryCritical  = "ALERT: Critical deterioration predicted. Immediate attention required."
	summaryDeclining = "Warning: Vital signs may decline. Close monitoring recommended."
	summaryImproving = "Patient vitals show improving trends."
)

// ProjectionPolicy turns a forecast trajectory into a qualitative verdict.
type ProjectionPolicy interface {
	Name() string
	Assess(points []models.ForecastPoint) models.RiskProjection
	Summary(projection models.RiskProjection, horizonMinutes int) string
}

// NewProjection returns the named policy. An empty name selects the detailed policy.
func NewProjection(name string) (ProjectionPolicy, error) {
	switch name {
	case "", ProjectionDetailed:
		return DetailedProjection{}, nil
	case ProjectionSimplified:
		return SimplifiedProjection{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProjection, name)
	}
}

// DetailedProjection counts critical vitals at the final point and compares
// oxygen saturation across the whole trajectory.
type DetailedProjection struct{}

func (DetailedProjection) Name() string { return ProjectionDetailed }

func (DetailedProjection) Assess(points []models.ForecastPoint) models.RiskProjection {
	if len(points) < 2 {
		return models.ProjectionStable
	}

	first, last := points[0], points[len(points)-1]
	criticalCount, warningCount := 0, 0

	spo2 := risk.VitalRanges[models.VitalSpO2]
	switch {
	case spo2.IsCritical(last.SpO2):
		criticalCount++
	case last.SpO2 < spo2.Min:
		warningCount++
	}

	snapshot := last.Snapshot("")
	for _, vital := range []string{models.VitalHeartRate, models.VitalRespRate, models.VitalSystolicBP} {
		value, _ := snapshot.Value(vital)
		if risk.VitalRanges[vital].IsCritical(value) {
			criticalCount++
		}
	}

	switch {
	case criticalCount >= 2:
		return models.ProjectionCritical
	case criticalCount >= 1 || warningCount >= 3:
		return models.ProjectionDeclining
	}

	delta := last.SpO2 - first.SpO2
	switch {
	case delta > 2:
		return models.ProjectionImproving
	case delta < -3:
		return models.ProjectionDeclining
	default:
		return models.ProjectionStable
	}
}

func (DetailedProjection) Summary(projection models.RiskProjection, horizonMinutes int) string {
	if s, ok := fixedSummary(projection); ok {
		return s
	}
	return fmt.Sprintf("Patient vitals are expected to remain stable over the next %d minutes.", horizonMinutes)
}

// SimplifiedProjection applies coarse thresholds to the final point only.
// It backs quick offline checks where a full trajectory review is not needed.
type SimplifiedProjection struct{}

func (SimplifiedProjection) Name() string { return ProjectionSimplified }

func (SimplifiedProjection) Assess(points []models.ForecastPoint) models.RiskProjection {
	if len(points) == 0 {
		return models.ProjectionStable
	}

	first, last := points[0], points[len(points)-1]
	switch {
	case last.SpO2 < 90 || last.HeartRate > 150 || last.HeartRate < 40:
		return models.ProjectionCritical
	case last.SpO2 < 94 || last.HeartRate > 120 || last.RespRate > 25:
		return models.ProjectionDeclining
	case last.SpO2-first.SpO2 > 1:
		return models.ProjectionImproving
	default:
		return models.ProjectionStable
	}
}

func (SimplifiedProjection) Summary(projection models.RiskProjection, _ int) string {
	if s, ok := fixedSummary(projection); ok {
		return s
	}
	return "Patient vitals are expected to remain stable."
}

func fixedSummary(projection models.RiskProjection) (string, bool) {
	switch projection {
	case models.ProjectionCritical:
		return summaryCritical, true
	case models.ProjectionDeclining:
		return summaryDeclining, true
	case models.ProjectionImproving:
		return summaryImproving, true
	default:
		return "", false
	}
}
