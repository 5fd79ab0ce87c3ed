package risk

import (
	"errors"
	"fmt"

	"github.com/OldStager01/vitalwatch/internal/jitter"
	"github.com/OldStager01/vitalwatch/pkg/models"
)

const (
	PolicyWeighted  = "weighted"
	PolicyRuleBased = "rule_based"
)

var ErrUnknownPolicy = errors.New("unknown risk scoring policy")

// Policy scores a single set of readings. Implementations are immutable and
// safe for concurrent use.
type Policy interface {
	Name() string
	Score(readings models.Readings) *models.RiskResult
}

// NewPolicy builds the named policy. An empty name selects the weighted policy.
func NewPolicy(name string, model Model, src jitter.Source) (Policy, error) {
	switch name {
	case "", PolicyWeighted:
		return NewWeightedScorer(model), nil
	case PolicyRuleBased:
		return NewRuleBasedScorer(src), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPolicy, name)
	}
}

// Policies returns every supported policy name.
func Policies() []string {
	return []string{PolicyWeighted, PolicyRuleBased}
}
