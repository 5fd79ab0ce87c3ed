package models

import "time"

type AlertPriority string

const (
	PriorityUrgent AlertPriority = "urgent"
	PriorityHigh   AlertPriority = "high"
)

type AlertSource string

const (
	AlertSourceRisk     AlertSource = "risk"
	AlertSourceForecast AlertSource = "forecast"
)

// Alert is a notification raised for the staff assigned to a patient
type Alert struct {
	ID           string        `json:"id"`
	PatientID    string        `json:"patient_id"`
	Source       AlertSource   `json:"source"`
	Priority     AlertPriority `json:"priority"`
	Title        string        `json:"title"`
	Message      string        `json:"message"`
	CreatedAt    time.Time     `json:"created_at"`
	Acknowledged bool          `json:"acknowledged"`
}

func NewAlert(patientID string, source AlertSource, priority AlertPriority, title, message string) *Alert {
	return &Alert{
		ID:        NewUUID(),
		PatientID: patientID,
		Source:    source,
		Priority:  priority,
		Title:     title,
		Message:   message,
		CreatedAt: time.Now(),
	}
}

// Severity maps the alert priority onto an event severity.
func (a *Alert) Severity() EventSeverity {
	if a.Priority == PriorityUrgent {
		return SeverityCritical
	}
	return SeverityWarning
}
