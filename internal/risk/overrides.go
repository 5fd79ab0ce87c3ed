package risk

import "github.com/OldStager01/vitalwatch/pkg/models"

// VitalOverride replaces individual threshold fields; nil fields keep the default.
type VitalOverride struct {
	CriticalMin *float64 `mapstructure:"critical_min" json:"critical_min,omitempty"`
	CriticalMax *float64 `mapstructure:"critical_max" json:"critical_max,omitempty"`
	WarningMin  *float64 `mapstructure:"warning_min" json:"warning_min,omitempty"`
	WarningMax  *float64 `mapstructure:"warning_max" json:"warning_max,omitempty"`
	NormalMin   *float64 `mapstructure:"normal_min" json:"normal_min,omitempty"`
	NormalMax   *float64 `mapstructure:"normal_max" json:"normal_max,omitempty"`
}

type LevelOverride struct {
	LowRisk      *float64 `mapstructure:"low_risk" json:"low_risk,omitempty"`
	ModerateRisk *float64 `mapstructure:"moderate_risk" json:"moderate_risk,omitempty"`
	HighRisk     *float64 `mapstructure:"high_risk" json:"high_risk,omitempty"`
}

type MetadataOverride struct {
	ModelVersion string        `mapstructure:"model_version" json:"model_version,omitempty"`
	ROCAUC       *float64      `mapstructure:"roc_auc" json:"roc_auc,omitempty"`
	Thresholds   LevelOverride `mapstructure:"thresholds" json:"thresholds"`
}

// Overrides is the shape of the external model configuration source.
type Overrides struct {
	Thresholds     map[string]VitalOverride `mapstructure:"thresholds" json:"thresholds,omitempty"`
	FeatureWeights map[string]float64       `mapstructure:"feature_weights" json:"feature_weights,omitempty"`
	Metadata       MetadataOverride         `mapstructure:"metadata" json:"metadata"`
}

// WithOverrides returns a new Model with o merged field by field onto m.
// Keys may be aliases; unknown vitals are ignored. It reports which vitals
// were overridden so callers can sanity-check them.
func (m Model) WithOverrides(o Overrides) (Model, []string) {
	out := Model{
		Thresholds: make(Thresholds, len(m.Thresholds)),
		Weights:    make(Weights, len(m.Weights)),
		Metadata:   m.Metadata,
	}
	for k, v := range m.Thresholds {
		out.Thresholds[k] = v
	}
	for k, v := range m.Weights {
		out.Weights[k] = v
	}

	var touched []string
	for key, ov := range o.Thresholds {
		vital, ok := CanonicalVital(key)
		if !ok {
			continue
		}
		b, exists := out.Thresholds[vital]
		if !exists {
			b = Bounds{LowerOnly: vital == models.VitalSpO2}
		}
		b = ov.apply(b, !exists)
		out.Thresholds[vital] = b
		touched = append(touched, vital)
	}

	for key, w := range o.FeatureWeights {
		vital, ok := CanonicalVital(key)
		if !ok || w < 0 {
			continue
		}
		out.Weights[vital] = w
	}

	md := o.Metadata
	if md.ModelVersion != "" {
		out.Metadata.ModelVersion = md.ModelVersion
	}
	setIf(&out.Metadata.ROCAUC, md.ROCAUC)
	setIf(&out.Metadata.LowRisk, md.Thresholds.LowRisk)
	setIf(&out.Metadata.ModerateRisk, md.Thresholds.ModerateRisk)
	setIf(&out.Metadata.HighRisk, md.Thresholds.HighRisk)

	return out, touched
}

func (ov VitalOverride) apply(b Bounds, fresh bool) Bounds {
	setIf(&b.CriticalMin, ov.CriticalMin)
	setIf(&b.CriticalMax, ov.CriticalMax)
	setIf(&b.NormalMin, ov.NormalMin)
	setIf(&b.NormalMax, ov.NormalMax)
	setIf(&b.WarningMin, ov.WarningMin)
	setIf(&b.WarningMax, ov.WarningMax)

	// Without a default to fall back on, the warning band collapses onto the normal range.
	if fresh && ov.WarningMin == nil {
		b.WarningMin = b.NormalMin
	}
	if fresh && ov.WarningMax == nil {
		b.WarningMax = b.NormalMax
	}
	return b
}

func setIf(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}
