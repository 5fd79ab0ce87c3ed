package models

import "time"

type RiskProjection string

const (
	ProjectionStable    RiskProjection = "stable"
	ProjectionImproving RiskProjection = "improving"
	ProjectionDeclining RiskProjection = "declining"
	ProjectionCritical  RiskProjection = "critical"
)

// ForecastPoint is a projected vitals reading at a fixed offset from now
type ForecastPoint struct {
	MinutesAhead int       `json:"minutes_ahead"`
	Timestamp    time.Time `json:"timestamp"`
	HeartRate    int       `json:"heart_rate"`
	SpO2         float64   `json:"spo2"`
	RespRate     int       `json:"resp_rate"`
	SystolicBP   int       `json:"systolic_bp"`
	DiastolicBP  int       `json:"diastolic_bp"`
	Temperature  float64   `json:"temperature"`
	Confidence   float64   `json:"confidence"`
}

// Snapshot returns the point in snapshot form.
func (p ForecastPoint) Snapshot(patientID string) VitalsSnapshot {
	return VitalsSnapshot{
		PatientID:   patientID,
		HeartRate:   p.HeartRate,
		SpO2:        p.SpO2,
		RespRate:    p.RespRate,
		SystolicBP:  p.SystolicBP,
		DiastolicBP: p.DiastolicBP,
		Temperature: p.Temperature,
		Timestamp:   p.Timestamp,
	}
}

// ForecastResult holds a short-horizon vitals projection for one patient
type ForecastResult struct {
	ID             int64           `json:"id,omitempty"`
	PatientID      string          `json:"patient_id,omitempty"`
	HorizonMinutes int             `json:"horizon_minutes"`
	Forecasts      []ForecastPoint `json:"forecasts"`
	Confidence     float64         `json:"confidence"`
	RiskProjection RiskProjection  `json:"risk_projection"`
	Summary        string          `json:"summary"`
	Policy         string          `json:"policy"`
	GeneratedAt    time.Time       `json:"generated_at"`
}

func (f *ForecastResult) RequiresAlert() bool {
	return f.RiskProjection == ProjectionCritical || f.RiskProjection == ProjectionDeclining
}

func (f *ForecastResult) AlertPriority() AlertPriority {
	if f.RiskProjection == ProjectionCritical {
		return PriorityUrgent
	}
	return PriorityHigh
}
