package events

import (
	"github.com/OldStager01/vitalwatch/pkg/models"
)

type Publisher struct {
	bus     *EventBus
	traceID string
}

func NewPublisher(bus *EventBus) *Publisher {
	return &Publisher{bus: bus}
}

func (p *Publisher) WithTraceID(traceID string) *Publisher {
	if p == nil {
		return nil
	}
	return &Publisher{
		bus:     p.bus,
		traceID: traceID,
	}
}

func (p *Publisher) publish(event *models.Event) {
	if p == nil || p.bus == nil {
		return
	}
	if p.traceID != "" {
		event.TraceID = p.traceID
	}
	p.bus.Publish(event)
}

func (p *Publisher) VitalsRecorded(snapshot *models.VitalsSnapshot) {
	event := models.NewEvent(models.EventTypeVitalsRecorded, snapshot.PatientID, "Vitals recorded").
		WithData(snapshot)
	p.publish(event)
}

func (p *Publisher) RiskAssessed(result *models.RiskResult) {
	msg := "Risk assessed: " + string(result.RiskLevel)
	event := models.NewEvent(models.EventTypeRiskAssessed, result.PatientID, msg).
		WithData(result)

	switch result.RiskLevel {
	case models.RiskHigh:
		event.WithSeverity(models.SeverityCritical)
	case models.RiskModerate:
		event.WithSeverity(models.SeverityWarning)
	}

	p.publish(event)
}

func (p *Publisher) ForecastGenerated(result *models.ForecastResult) {
	msg := "Forecast generated: " + string(result.RiskProjection)
	event := models.NewEvent(models.EventTypeForecastGenerated, result.PatientID, msg).
		WithData(result)

	switch result.RiskProjection {
	case models.ProjectionCritical:
		event.WithSeverity(models.SeverityCritical)
	case models.ProjectionDeclining:
		event.WithSeverity(models.SeverityWarning)
	}

	p.publish(event)
}

func (p *Publisher) Alert(alert *models.Alert) {
	event := models.NewEvent(models.EventTypeAlert, alert.PatientID, alert.Title).
		WithSeverity(alert.Severity()).
		WithData(alert)
	p.publish(event)
}

func (p *Publisher) Error(patientID string, message string, err error) {
	event := models.NewEvent(models.EventTypeError, patientID, message).
		WithSeverity(models.SeverityCritical).
		WithData(map[string]interface{}{
			"error": err.Error(),
		})
	p.publish(event)
}
