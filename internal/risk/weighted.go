package risk

import (
	"math"
	"time"

	"github.com/OldStager01/vitalwatch/pkg/models"
)

// WeightedScorer is the primary, configuration-driven scoring policy.
type WeightedScorer struct {
	model Model
}

func NewWeightedScorer(model Model) *WeightedScorer {
	return &WeightedScorer{model: model}
}

func (s *WeightedScorer) Name() string {
	return PolicyWeighted
}

func (s *WeightedScorer) Model() Model {
	return s.model
}

func (s *WeightedScorer) Score(readings models.Readings) *models.RiskResult {
	var totalScore, totalWeight float64
	evaluated := 0
	factors := make([]models.ContributingFactor, 0, len(models.VitalNames))

	for _, r := range resolve(readings) {
		weight, ok := s.model.Weights[r.vital]
		if !ok {
			continue
		}

		status, deviation := s.model.Thresholds.Classify(r.vital, r.value)
		contribution := Contribution(status, deviation, weight)

		totalScore += contribution
		totalWeight += weight
		evaluated++

		if status != models.VitalNormal {
			factors = append(factors, newFactor(r, status, contribution))
		}
	}

	score := 0.0
	if totalWeight > 0 {
		score = math.Min(totalScore/totalWeight, 1)
	}

	level := s.model.Metadata.Level(score)
	rankFactors(factors)
	for i := range factors {
		factors[i].Contribution = models.Round(factors[i].Contribution, 4)
	}

	completeness := float64(evaluated) / float64(len(models.VitalNames))

	result := &models.RiskResult{
		RiskLevel:           level,
		Probability:         models.Round(score, 3),
		Confidence:          models.Round(completeness*s.model.Metadata.ROCAUC, 3),
		Explanation:         explain(level, factors),
		ContributingFactors: factors,
		ModelVersion:        s.model.Metadata.ModelVersion,
		Policy:              PolicyWeighted,
		VitalsEvaluated:     evaluated,
		AssessedAt:          time.Now(),
	}

	if evaluated == 0 {
		result.InsufficientVitals = true
		result.Explanation = explanationInsufficient
	}

	return result
}
