package models

import (
	"math"
	"strings"
	"time"
)

// Canonical vital names, in the order they are evaluated and reported.
const (
	VitalHeartRate   = "heart_rate"
	VitalSpO2        = "spo2"
	VitalRespRate    = "resp_rate"
	VitalSystolicBP  = "systolic_bp"
	VitalDiastolicBP = "diastolic_bp"
	VitalTemperature = "temperature"
)

// VitalNames lists the six canonical vitals.
var VitalNames = []string{
	VitalHeartRate,
	VitalSpO2,
	VitalRespRate,
	VitalSystolicBP,
	VitalDiastolicBP,
	VitalTemperature,
}

var vitalAliases = map[string]string{
	"heart_rate":       VitalHeartRate,
	"hr":               VitalHeartRate,
	"pulse":            VitalHeartRate,
	"spo2":             VitalSpO2,
	"spo2_pct":         VitalSpO2,
	"oxygen_sat":       VitalSpO2,
	"resp_rate":        VitalRespRate,
	"respiratory_rate": VitalRespRate,
	"rr":               VitalRespRate,
	"systolic_bp":      VitalSystolicBP,
	"sbp":              VitalSystolicBP,
	"diastolic_bp":     VitalDiastolicBP,
	"dbp":              VitalDiastolicBP,
	"temperature":      VitalTemperature,
	"temperature_c":    VitalTemperature,
	"temp":             VitalTemperature,
}

// CanonicalVital resolves a reading key or alias to its canonical vital name.
func CanonicalVital(key string) (string, bool) {
	vital, ok := vitalAliases[strings.ToLower(strings.TrimSpace(key))]
	return vital, ok
}

// VitalsSnapshot is one timestamped set of six readings for a patient
type VitalsSnapshot struct {
	ID          int64     `json:"id,omitempty"`
	PatientID   string    `json:"patient_id"`
	HeartRate   int       `json:"heart_rate"`
	SpO2        float64   `json:"spo2"`
	RespRate    int       `json:"resp_rate"`
	SystolicBP  int       `json:"systolic_bp"`
	DiastolicBP int       `json:"diastolic_bp"`
	Temperature float64   `json:"temperature"`
	Timestamp   time.Time `json:"timestamp"`
}

// Readings maps a vital name (canonical or alias) to its value.
// An absent key or a NaN value means the vital was not measured.
type Readings map[string]float64

// Readings returns the snapshot as a complete set of canonical readings.
func (v VitalsSnapshot) Readings() Readings {
	return Readings{
		VitalHeartRate:   float64(v.HeartRate),
		VitalSpO2:        v.SpO2,
		VitalRespRate:    float64(v.RespRate),
		VitalSystolicBP:  float64(v.SystolicBP),
		VitalDiastolicBP: float64(v.DiastolicBP),
		VitalTemperature: v.Temperature,
	}
}

// Value returns the reading for a canonical vital name.
func (v VitalsSnapshot) Value(vital string) (float64, bool) {
	switch vital {
	case VitalHeartRate:
		return float64(v.HeartRate), true
	case VitalSpO2:
		return v.SpO2, true
	case VitalRespRate:
		return float64(v.RespRate), true
	case VitalSystolicBP:
		return float64(v.SystolicBP), true
	case VitalDiastolicBP:
		return float64(v.DiastolicBP), true
	case VitalTemperature:
		return v.Temperature, true
	default:
		return 0, false
	}
}

// Present reports whether the reading for key holds a usable number.
func (r Readings) Present(key string) bool {
	v, ok := r[key]
	return ok && !math.IsNaN(v) && !math.IsInf(v, 0)
}
