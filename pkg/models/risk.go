package models

import "time"

type RiskLevel string

const (
	RiskLow      RiskLevel = "Low Risk"
	RiskModerate RiskLevel = "Moderate Risk"
	RiskHigh     RiskLevel = "High Risk"
)

type VitalStatus string

const (
	VitalNormal   VitalStatus = "normal"
	VitalWarning  VitalStatus = "warning"
	VitalCritical VitalStatus = "critical"
)

// Rank orders statuses by severity.
func (s VitalStatus) Rank() int {
	switch s {
	case VitalCritical:
		return 2
	case VitalWarning:
		return 1
	default:
		return 0
	}
}

// ContributingFactor is one vital's classified status inside a risk result
type ContributingFactor struct {
	Vital        string      `json:"vital"`
	Label        string      `json:"label"`
	Value        float64     `json:"value"`
	Status       VitalStatus `json:"status"`
	Contribution float64     `json:"contribution"`
	Message      string      `json:"message"`
}

// RiskResult is the outcome of scoring one vitals snapshot
type RiskResult struct {
	ID                  int64                `json:"id,omitempty"`
	PatientID           string               `json:"patient_id,omitempty"`
	RiskLevel           RiskLevel            `json:"risk_level"`
	Probability         float64              `json:"probability"`
	Confidence          float64              `json:"confidence"`
	Explanation         string               `json:"explanation"`
	ContributingFactors []ContributingFactor `json:"contributing_factors"`
	ModelVersion        string               `json:"model_version"`
	Policy              string               `json:"policy"`
	VitalsEvaluated     int                  `json:"vitals_evaluated"`
	InsufficientVitals  bool                 `json:"insufficient_vitals,omitempty"`
	AssessedAt          time.Time            `json:"assessed_at"`
}

// RequiresAlert reports whether staff should be notified about this result.
func (r *RiskResult) RequiresAlert() bool {
	return !r.InsufficientVitals && r.RiskLevel != RiskLow
}

// AlertPriority maps the risk level to a notification priority.
func (r *RiskResult) AlertPriority() AlertPriority {
	if r.RiskLevel == RiskHigh {
		return PriorityUrgent
	}
	return PriorityHigh
}

// CountByStatus returns how many factors carry the given status.
func (r *RiskResult) CountByStatus(status VitalStatus) int {
	n := 0
	for _, f := range r.ContributingFactors {
		if f.Status == status {
			n++
		}
	}
	return n
}
