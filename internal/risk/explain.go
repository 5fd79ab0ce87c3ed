package risk

import (
	"sort"
	"strconv"
	"strings"

	"github.com/OldStager01/vitalwatch/pkg/models"
)

const (
	explanationStable       = "All vital signs are within normal ranges. Patient condition appears stable."
	explanationInsufficient = "No vital signs were available for assessment."
)

func newFactor(r reading, status models.VitalStatus, contribution float64) models.ContributingFactor {
	label := Label(r.vital)
	return models.ContributingFactor{
		Vital:        r.vital,
		Label:        label,
		Value:        r.value,
		Status:       status,
		Contribution: contribution,
		Message:      factorMessage(label, status, r.value),
	}
}

func factorMessage(label string, status models.VitalStatus, value float64) string {
	v := strconv.FormatFloat(value, 'f', -1, 64)
	switch status {
	case models.VitalCritical:
		return label + " is critically abnormal at " + v
	case models.VitalWarning:
		return label + " is abnormal at " + v
	default:
		return label + " is normal at " + v
	}
}

// rankFactors sorts by contribution, highest first. Equal contributions keep
// canonical vital order.
func rankFactors(factors []models.ContributingFactor) {
	sort.SliceStable(factors, func(i, j int) bool {
		return factors[i].Contribution > factors[j].Contribution
	})
}

func explain(level models.RiskLevel, factors []models.ContributingFactor) string {
	var critical, warning []string
	for _, f := range factors {
		switch f.Status {
		case models.VitalCritical:
			critical = append(critical, f.Message)
		case models.VitalWarning:
			warning = append(warning, f.Message)
		}
	}

	if len(critical) == 0 && len(warning) == 0 {
		return explanationStable
	}

	var b strings.Builder
	if len(critical) > 0 {
		b.WriteString("Critical concerns: " + strings.Join(critical, "; ") + ". ")
	}
	if len(warning) > 0 {
		b.WriteString("Monitoring needed: " + strings.Join(warning, "; ") + ". ")
	}

	switch level {
	case models.RiskHigh:
		b.WriteString("Immediate medical attention recommended.")
	case models.RiskModerate:
		b.WriteString("Close monitoring advised.")
	}

	return strings.TrimSpace(b.String())
}
