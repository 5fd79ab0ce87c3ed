package risk

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OldStager01/vitalwatch/pkg/models"
)

func scenarioA() models.Readings {
	return models.Readings{
		"heart_rate":   75,
		"spo2":         98,
		"resp_rate":    16,
		"systolic_bp":  118,
		"diastolic_bp": 76,
		"temperature":  36.8,
	}
}

func scenarioB() models.Readings {
	return models.Readings{
		"heart_rate":   140,
		"spo2":         85,
		"resp_rate":    30,
		"systolic_bp":  160,
		"diastolic_bp": 100,
		"temperature":  38.5,
	}
}

func normalReadings() models.Readings {
	return models.Readings{
		"heart_rate":   90,
		"spo2":         97,
		"resp_rate":    20,
		"systolic_bp":  110,
		"diastolic_bp": 70,
		"temperature":  37.0,
	}
}

func factorFor(t *testing.T, result *models.RiskResult, vital string) models.ContributingFactor {
	t.Helper()
	for _, f := range result.ContributingFactors {
		if f.Vital == vital {
			return f
		}
	}
	require.Failf(t, "factor not found", "no contributing factor for %s", vital)
	return models.ContributingFactor{}
}

func TestWeightedScorer_AllNormal(t *testing.T) {
	s := NewWeightedScorer(DefaultModel())

	result := s.Score(normalReadings())

	assert.Equal(t, models.RiskLow, result.RiskLevel)
	assert.Equal(t, 0.0, result.Probability)
	assert.Empty(t, result.ContributingFactors)
	assert.Equal(t, explanationStable, result.Explanation)
	assert.Equal(t, 6, result.VitalsEvaluated)
	assert.InDelta(t, 0.75, result.Confidence, 1e-9)
	assert.False(t, result.InsufficientVitals)
	assert.Equal(t, PolicyWeighted, result.Policy)
}

func TestWeightedScorer_ScenarioA(t *testing.T) {
	s := NewWeightedScorer(DefaultModel())

	result := s.Score(scenarioA())

	// 75 bpm sits below the default heart-rate warningMin of 77, so the
	// default table reports one warning instead of an empty factor list.
	assert.Equal(t, models.RiskLow, result.RiskLevel)
	assert.InDelta(t, 0.063, result.Probability, 1e-9)
	require.Len(t, result.ContributingFactors, 1)
	hr := result.ContributingFactors[0]
	assert.Equal(t, models.VitalHeartRate, hr.Vital)
	assert.Equal(t, models.VitalWarning, hr.Status)
	assert.Equal(t, "Heart rate is abnormal at 75", hr.Message)
	assert.Equal(t, "Monitoring needed: Heart rate is abnormal at 75.", result.Explanation)
	assert.Zero(t, result.CountByStatus(models.VitalCritical))
}

func TestWeightedScorer_ScenarioB(t *testing.T) {
	s := NewWeightedScorer(DefaultModel())

	result := s.Score(scenarioB())

	assert.Equal(t, models.VitalCritical, factorFor(t, result, models.VitalSpO2).Status)
	assert.Equal(t, models.VitalCritical, factorFor(t, result, models.VitalHeartRate).Status)
	assert.Equal(t, models.VitalWarning, factorFor(t, result, models.VitalRespRate).Status)
	assert.Equal(t, 5, result.CountByStatus(models.VitalCritical))

	// Five criticals still average below the 0.8 high cutoff under the
	// default weights, so this lands in Moderate rather than High Risk.
	// rule_based reports High Risk for the same readings.
	assert.InDelta(t, 0.765, result.Probability, 1e-9)
	assert.Equal(t, models.RiskModerate, result.RiskLevel)

	require.Len(t, result.ContributingFactors, 6)
	assert.Equal(t, models.VitalSpO2, result.ContributingFactors[0].Vital)
	for i := 1; i < len(result.ContributingFactors); i++ {
		assert.GreaterOrEqual(t,
			result.ContributingFactors[i-1].Contribution,
			result.ContributingFactors[i].Contribution,
		)
	}

	assert.Contains(t, result.Explanation, "Critical concerns: Oxygen saturation is critically abnormal at 85; ")
	assert.Contains(t, result.Explanation, "Monitoring needed: Respiratory rate is abnormal at 30. ")
	assert.True(t, strings.HasSuffix(result.Explanation, "Close monitoring advised."))
}

func TestWeightedScorer_HighRiskExplanation(t *testing.T) {
	s := NewWeightedScorer(DefaultModel())
	readings := scenarioB()
	readings["resp_rate"] = 40

	result := s.Score(readings)

	assert.Equal(t, models.RiskHigh, result.RiskLevel)
	assert.GreaterOrEqual(t, result.Probability, 0.8)
	assert.Contains(t, result.Explanation, "Immediate medical attention recommended.")
	assert.NotContains(t, result.Explanation, "Monitoring needed")
}

func TestWeightedScorer_MissingVitalIsExcluded(t *testing.T) {
	model := DefaultModel()
	s := NewWeightedScorer(model)

	full := scenarioB()
	missing := scenarioB()
	delete(missing, "spo2")

	var totalScore, totalWeight float64
	for vital, value := range missing {
		status, dev := model.Thresholds.Classify(vital, value)
		totalScore += Contribution(status, dev, model.Weights[vital])
		totalWeight += model.Weights[vital]
	}
	expected := models.Round(totalScore/totalWeight, 3)

	result := s.Score(missing)

	assert.Equal(t, 5, result.VitalsEvaluated)
	assert.InDelta(t, expected, result.Probability, 1e-9)
	assert.InDelta(t, 0.625, result.Confidence, 1e-9)

	normalSpO2 := scenarioB()
	normalSpO2["spo2"] = 98
	asNormal := s.Score(normalSpO2)
	assert.NotEqual(t, asNormal.Probability, result.Probability,
		"an excluded vital must not count as a normal contribution")

	assert.NotEqual(t, s.Score(full).Probability, result.Probability)
}

func TestWeightedScorer_NaNIsMissing(t *testing.T) {
	s := NewWeightedScorer(DefaultModel())
	readings := normalReadings()
	readings["spo2"] = math.NaN()

	result := s.Score(readings)

	assert.Equal(t, 5, result.VitalsEvaluated)
	assert.Equal(t, models.RiskLow, result.RiskLevel)
}

func TestWeightedScorer_NoVitals(t *testing.T) {
	s := NewWeightedScorer(DefaultModel())

	result := s.Score(models.Readings{"blood_glucose": 5.4})

	assert.True(t, result.InsufficientVitals)
	assert.Equal(t, models.RiskLow, result.RiskLevel)
	assert.Equal(t, 0.0, result.Probability)
	assert.Equal(t, 0.0, result.Confidence)
	assert.Equal(t, explanationInsufficient, result.Explanation)
	assert.False(t, result.RequiresAlert())
}

func TestWeightedScorer_Aliases(t *testing.T) {
	s := NewWeightedScorer(DefaultModel())

	canonical := s.Score(scenarioB())
	aliased := s.Score(models.Readings{
		"heart_rate":       140,
		"spo2_pct":         85,
		"respiratory_rate": 30,
		"systolic_bp":      160,
		"diastolic_bp":     100,
		"temperature_c":    38.5,
	})

	assert.Equal(t, canonical.Probability, aliased.Probability)
	assert.Equal(t, canonical.RiskLevel, aliased.RiskLevel)
	assert.Equal(t, 6, aliased.VitalsEvaluated)
}

func TestWeightedScorer_CanonicalKeyWinsOverAlias(t *testing.T) {
	s := NewWeightedScorer(DefaultModel())
	readings := normalReadings()
	readings["spo2_pct"] = 80

	result := s.Score(readings)

	assert.Equal(t, 6, result.VitalsEvaluated)
	assert.Empty(t, result.ContributingFactors)
}

func TestMetadata_Level(t *testing.T) {
	md := DefaultMetadata()

	tests := []struct {
		score    float64
		expected models.RiskLevel
	}{
		{0, models.RiskLow},
		{0.3, models.RiskLow},
		{0.5999, models.RiskLow},
		{0.6, models.RiskModerate},
		{0.7999, models.RiskModerate},
		{0.8, models.RiskHigh},
		{1, models.RiskHigh},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, md.Level(tt.score), "score %v", tt.score)
	}
}

func TestNewPolicy(t *testing.T) {
	p, err := NewPolicy("", DefaultModel(), nil)
	require.NoError(t, err)
	assert.Equal(t, PolicyWeighted, p.Name())

	p, err = NewPolicy(PolicyRuleBased, DefaultModel(), nil)
	require.NoError(t, err)
	assert.Equal(t, PolicyRuleBased, p.Name())

	_, err = NewPolicy("neural_net", DefaultModel(), nil)
	assert.ErrorIs(t, err, ErrUnknownPolicy)
}
