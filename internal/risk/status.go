package risk

import (
	"math"

	"github.com/OldStager01/vitalwatch/pkg/models"
)

// Classify returns the status of a reading and how far it sits past the
// boundary that triggered that status. Vitals without bounds are normal.
func (t Thresholds) Classify(vital string, value float64) (models.VitalStatus, float64) {
	b, ok := t[vital]
	if !ok {
		return models.VitalNormal, 0
	}
	if b.LowerOnly {
		return classifyLower(b, value)
	}
	return classifyBounded(b, value)
}

func classifyLower(b Bounds, value float64) (models.VitalStatus, float64) {
	switch {
	case value < b.CriticalMin:
		return models.VitalCritical, (b.CriticalMin - value) / 10
	case value < b.WarningMin:
		return models.VitalWarning, (b.WarningMin - value) / 10
	case value < b.NormalMin:
		return models.VitalWarning, (b.NormalMin - value) / 20
	default:
		return models.VitalNormal, 0
	}
}

func classifyBounded(b Bounds, value float64) (models.VitalStatus, float64) {
	switch {
	case value <= b.CriticalMin:
		return models.VitalCritical, relative(b.CriticalMin-value, b.CriticalMin)
	case value >= b.CriticalMax:
		return models.VitalCritical, relative(value-b.CriticalMax, b.CriticalMax)
	case value < b.WarningMin:
		return models.VitalWarning, relative(b.WarningMin-value, b.WarningMin)
	case value > b.WarningMax:
		return models.VitalWarning, relative(value-b.WarningMax, b.WarningMax)
	case value < b.NormalMin || value > b.NormalMax:
		return models.VitalWarning, 0.1
	default:
		return models.VitalNormal, 0
	}
}

// relative is |distance| / |boundary|, falling back to |distance| for a zero boundary.
func relative(distance, boundary float64) float64 {
	if boundary == 0 {
		return math.Abs(distance)
	}
	return math.Abs(distance) / math.Abs(boundary)
}

// Contribution weights a classified reading.
func Contribution(status models.VitalStatus, deviation, weight float64) float64 {
	switch status {
	case models.VitalCritical:
		return weight * (0.8 + deviation*0.2)
	case models.VitalWarning:
		return weight * (0.4 + deviation*0.2)
	default:
		return 0
	}
}
