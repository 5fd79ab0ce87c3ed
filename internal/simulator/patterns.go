package simulator

import "math"

// Vitals is the continuous state a pattern shapes before rounding.
type Vitals struct {
	HeartRate   float64
	SpO2        float64
	RespRate    float64
	SystolicBP  float64
	DiastolicBP float64
	Temperature float64
}

// Baseline is a healthy adult at rest.
var Baseline = Vitals{
	HeartRate:   80,
	SpO2:        98,
	RespRate:    16,
	SystolicBP:  120,
	DiastolicBP: 72,
	Temperature: 36.8,
}

// Pattern moves the baseline for a given step of the trajectory.
type Pattern interface {
	Apply(step int, base Vitals) Vitals
	Name() string
}

var (
	PatternSteady        Pattern = &SteadyPattern{}
	PatternDeteriorating Pattern = &DeterioratingPattern{Steps: 12}
	PatternRecovering    Pattern = &RecoveringPattern{Steps: 12}
	PatternHypoxic       Pattern = &HypoxicPattern{Floor: 80}
)

// ParsePattern falls back to steady for unknown names.
func ParsePattern(name string) Pattern {
	switch name {
	case "deteriorating":
		return PatternDeteriorating
	case "recovering":
		return PatternRecovering
	case "hypoxic":
		return PatternHypoxic
	default:
		return PatternSteady
	}
}

// SteadyPattern - vitals hold at baseline
type SteadyPattern struct{}

func (p *SteadyPattern) Apply(_ int, base Vitals) Vitals {
	return base
}

func (p *SteadyPattern) Name() string {
	return "steady"
}

// DeterioratingPattern - sepsis-like drift over Steps, then holds
type DeterioratingPattern struct {
	Steps int
}

func (p *DeterioratingPattern) Apply(step int, base Vitals) Vitals {
	return deteriorate(base, progress(step, p.Steps))
}

func (p *DeterioratingPattern) Name() string {
	return "deteriorating"
}

// RecoveringPattern - starts fully deteriorated and returns to baseline over Steps
type RecoveringPattern struct {
	Steps int
}

func (p *RecoveringPattern) Apply(step int, base Vitals) Vitals {
	return deteriorate(base, 1-progress(step, p.Steps))
}

func (p *RecoveringPattern) Name() string {
	return "recovering"
}

// HypoxicPattern - oxygen saturation falls 1.5 points per step down to Floor
// with compensating tachycardia and tachypnoea
type HypoxicPattern struct {
	Floor float64
}

func (p *HypoxicPattern) Apply(step int, base Vitals) Vitals {
	v := base
	v.SpO2 = math.Max(base.SpO2-1.5*float64(step), p.Floor)
	drop := base.SpO2 - v.SpO2
	v.HeartRate = base.HeartRate + 2*drop
	v.RespRate = base.RespRate + drop
	return v
}

func (p *HypoxicPattern) Name() string {
	return "hypoxic"
}

func progress(step, steps int) float64 {
	if steps <= 0 {
		return 1
	}
	return math.Min(float64(step)/float64(steps), 1)
}

// deteriorate shifts every vital towards its critical band by fraction f.
func deteriorate(base Vitals, f float64) Vitals {
	return Vitals{
		HeartRate:   base.HeartRate + 50*f,
		SpO2:        base.SpO2 - 12*f,
		RespRate:    base.RespRate + 14*f,
		SystolicBP:  base.SystolicBP - 35*f,
		DiastolicBP: base.DiastolicBP - 20*f,
		Temperature: base.Temperature + 2*f,
	}
}
