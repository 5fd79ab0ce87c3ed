package risk

import (
	"math"
	"time"

	"github.com/OldStager01/vitalwatch/internal/jitter"
	"github.com/OldStager01/vitalwatch/pkg/models"
)

const ruleBasedVersion = "rule-based-v1"

// Range is a plain clinical range without a warning band.
type Range struct {
	Min         float64
	Max         float64
	CriticalMin float64
	CriticalMax float64
	LowerOnly   bool
}

// VitalRanges are the fixed clinical ranges used by the rule-based policy
// and the forecast projection policies.
var VitalRanges = map[string]Range{
	models.VitalHeartRate:   {Min: 60, Max: 100, CriticalMin: 40, CriticalMax: 150},
	models.VitalSpO2:        {Min: 95, CriticalMin: 90, LowerOnly: true},
	models.VitalRespRate:    {Min: 12, Max: 20, CriticalMin: 8, CriticalMax: 30},
	models.VitalSystolicBP:  {Min: 90, Max: 140, CriticalMin: 70, CriticalMax: 180},
	models.VitalDiastolicBP: {Min: 60, Max: 90, CriticalMin: 40, CriticalMax: 120},
	models.VitalTemperature: {Min: 36.1, Max: 37.2, CriticalMin: 35.0, CriticalMax: 39.5},
}

// IsCritical reports whether value lies strictly outside the critical limits.
func (r Range) IsCritical(value float64) bool {
	if value < r.CriticalMin {
		return true
	}
	return !r.LowerOnly && value > r.CriticalMax
}

// IsAbnormal reports whether value lies strictly outside the normal range.
func (r Range) IsAbnormal(value float64) bool {
	if value < r.Min {
		return true
	}
	return !r.LowerOnly && value > r.Max
}

func (r Range) Classify(value float64) models.VitalStatus {
	switch {
	case r.IsCritical(value):
		return models.VitalCritical
	case r.IsAbnormal(value):
		return models.VitalWarning
	default:
		return models.VitalNormal
	}
}

// RuleBasedScorer counts critical and warning vitals against VitalRanges.
// It needs no model configuration and serves as the offline fallback.
type RuleBasedScorer struct {
	jitter jitter.Source
}

func NewRuleBasedScorer(src jitter.Source) *RuleBasedScorer {
	if src == nil {
		src = jitter.Zero
	}
	return &RuleBasedScorer{jitter: src}
}

func (s *RuleBasedScorer) Name() string {
	return PolicyRuleBased
}

func (s *RuleBasedScorer) Score(readings models.Readings) *models.RiskResult {
	var criticalCount, warningCount, evaluated int
	factors := make([]models.ContributingFactor, 0, len(models.VitalNames))

	for _, r := range resolve(readings) {
		rng, ok := VitalRanges[r.vital]
		if !ok {
			continue
		}
		evaluated++

		status := rng.Classify(r.value)
		switch status {
		case models.VitalCritical:
			criticalCount++
			factors = append(factors, newFactor(r, status, 1.0))
		case models.VitalWarning:
			warningCount++
			factors = append(factors, newFactor(r, status, 0.5))
		}
	}

	level, probability := s.classify(criticalCount, warningCount)
	rankFactors(factors)

	result := &models.RiskResult{
		RiskLevel:           level,
		Probability:         models.Round(probability, 3),
		Confidence:          models.Round(float64(evaluated)/float64(len(models.VitalNames)), 3),
		Explanation:         explain(level, factors),
		ContributingFactors: factors,
		ModelVersion:        ruleBasedVersion,
		Policy:              PolicyRuleBased,
		VitalsEvaluated:     evaluated,
		AssessedAt:          time.Now(),
	}

	if evaluated == 0 {
		result.InsufficientVitals = true
		result.Explanation = explanationInsufficient
	}

	return result
}

func (s *RuleBasedScorer) classify(critical, warning int) (models.RiskLevel, float64) {
	c, w := float64(critical), float64(warning)

	switch {
	case critical >= 2 || (critical >= 1 && warning >= 2):
		return models.RiskHigh, math.Min(0.7+0.1*c+0.03*w, 0.95)
	case critical >= 1 || warning >= 3:
		return models.RiskHigh, math.Min(0.6+0.15*c+0.05*w, 0.9)
	case warning >= 2:
		return models.RiskModerate, 0.4 + 0.1*w
	case warning == 1:
		return models.RiskModerate, 0.25 + s.jitter.Float64()*0.1
	default:
		return models.RiskLow, 0.05 + s.jitter.Float64()*0.1
	}
}
