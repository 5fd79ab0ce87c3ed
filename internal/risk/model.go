package risk

import "github.com/OldStager01/vitalwatch/pkg/models"

// Bounds describes the normal, warning and critical boundaries for one vital.
// LowerOnly vitals (spo2) ignore every upper bound.
type Bounds struct {
	NormalMin   float64 `json:"normal_min"`
	NormalMax   float64 `json:"normal_max,omitempty"`
	CriticalMin float64 `json:"critical_min"`
	CriticalMax float64 `json:"critical_max,omitempty"`
	WarningMin  float64 `json:"warning_min"`
	WarningMax  float64 `json:"warning_max,omitempty"`
	LowerOnly   bool    `json:"lower_only,omitempty"`
}

// Ordered reports whether criticalMin <= warningMin <= min <= max <= warningMax <= criticalMax
// (or criticalMin < warningMin < min for lower-only vitals).
func (b Bounds) Ordered() bool {
	if b.LowerOnly {
		return b.CriticalMin < b.WarningMin && b.WarningMin < b.NormalMin
	}
	return b.CriticalMin <= b.WarningMin &&
		b.WarningMin <= b.NormalMin &&
		b.NormalMin <= b.NormalMax &&
		b.NormalMax <= b.WarningMax &&
		b.WarningMax <= b.CriticalMax
}

type Thresholds map[string]Bounds

type Weights map[string]float64

// Metadata carries model quality and the risk-level cutoffs.
type Metadata struct {
	ModelVersion string  `json:"model_version"`
	ROCAUC       float64 `json:"roc_auc"`
	LowRisk      float64 `json:"low_risk"`
	ModerateRisk float64 `json:"moderate_risk"`
	HighRisk     float64 `json:"high_risk"`
}

// Level maps a score onto a risk level.
func (m Metadata) Level(score float64) models.RiskLevel {
	switch {
	case score >= m.HighRisk:
		return models.RiskHigh
	case score >= m.ModerateRisk:
		return models.RiskModerate
	default:
		return models.RiskLow
	}
}

// Model is the immutable configuration shared by every scoring call.
// Build it once at startup with DefaultModel or LoadModel.
type Model struct {
	Thresholds Thresholds
	Weights    Weights
	Metadata   Metadata
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		models.VitalHeartRate: {
			NormalMin: 62, NormalMax: 129,
			CriticalMin: 66, CriticalMax: 120,
			WarningMin: 77, WarningMax: 111,
		},
		models.VitalSpO2: {
			NormalMin:   94,
			CriticalMin: 87,
			WarningMin:  92,
			LowerOnly:   true,
		},
		models.VitalRespRate: {
			NormalMin: 11, NormalMax: 34,
			CriticalMin: 13, CriticalMax: 31,
			WarningMin: 16, WarningMax: 27,
		},
		models.VitalSystolicBP: {
			NormalMin: 77, NormalMax: 139,
			CriticalMin: 82, CriticalMax: 136,
			WarningMin: 91, WarningMax: 125,
		},
		models.VitalDiastolicBP: {
			NormalMin: 49, NormalMax: 86,
			CriticalMin: 50, CriticalMax: 86,
			WarningMin: 57, WarningMax: 79,
		},
		models.VitalTemperature: {
			NormalMin: 36.4, NormalMax: 37.7,
			CriticalMin: 36.3, CriticalMax: 37.7,
			WarningMin: 36.6, WarningMax: 37.4,
		},
	}
}

func DefaultWeights() Weights {
	return Weights{
		models.VitalHeartRate:   0.156,
		models.VitalSpO2:        0.321,
		models.VitalRespRate:    0.167,
		models.VitalSystolicBP:  0.198,
		models.VitalDiastolicBP: 0.095,
		models.VitalTemperature: 0.062,
	}
}

func DefaultMetadata() Metadata {
	return Metadata{
		ModelVersion: "weighted-rules-v1",
		ROCAUC:       0.75,
		LowRisk:      0.3,
		ModerateRisk: 0.6,
		HighRisk:     0.8,
	}
}

func DefaultModel() Model {
	return Model{
		Thresholds: DefaultThresholds(),
		Weights:    DefaultWeights(),
		Metadata:   DefaultMetadata(),
	}
}

// CanonicalVital resolves an alias to its canonical vital name.
func CanonicalVital(key string) (string, bool) {
	return models.CanonicalVital(key)
}

var vitalLabels = map[string]string{
	models.VitalHeartRate:   "Heart rate",
	models.VitalSpO2:        "Oxygen saturation",
	models.VitalRespRate:    "Respiratory rate",
	models.VitalSystolicBP:  "Systolic blood pressure",
	models.VitalDiastolicBP: "Diastolic blood pressure",
	models.VitalTemperature: "Temperature",
}

func Label(vital string) string {
	if l, ok := vitalLabels[vital]; ok {
		return l
	}
	return vital
}

type reading struct {
	vital string
	key   string
	value float64
}

// resolve returns the usable readings in canonical order. A canonical key wins
// over its aliases, otherwise the lexically smallest alias wins; unknown keys are dropped.
func resolve(readings models.Readings) []reading {
	byVital := make(map[string]reading, len(models.VitalNames))
	for key := range readings {
		if !readings.Present(key) {
			continue
		}
		vital, ok := CanonicalVital(key)
		if !ok {
			continue
		}
		if prev, taken := byVital[vital]; taken && !preferKey(key, prev.key, vital) {
			continue
		}
		byVital[vital] = reading{vital: vital, key: key, value: readings[key]}
	}

	out := make([]reading, 0, len(byVital))
	for _, vital := range models.VitalNames {
		if r, ok := byVital[vital]; ok {
			out = append(out, r)
		}
	}
	return out
}

func preferKey(candidate, current, vital string) bool {
	if current == vital {
		return false
	}
	if candidate == vital {
		return true
	}
	return candidate < current
}
