package websocket

import (
	"encoding/json"
	"time"

	"github.com/OldStager01/vitalwatch/pkg/models"
)

type MessageType string

const (
	MessageTypeVitals       MessageType = "vitals"
	MessageTypeRisk         MessageType = "risk"
	MessageTypeForecast     MessageType = "forecast"
	MessageTypeAlert        MessageType = "alert"
	MessageTypeError        MessageType = "error"
	MessageTypeSubscription MessageType = "subscription_update"
)

type OutgoingMessage struct {
	Type      MessageType `json:"type"`
	PatientID string      `json:"patient_id"`
	Timestamp time.Time   `json:"timestamp"`
	Severity  string      `json:"severity,omitempty"`
	Message   string      `json:"message,omitempty"`
	Data      interface{} `json:"data,omitempty"`
}

func NewMessage(msgType MessageType, patientID string, data interface{}) *OutgoingMessage {
	return &OutgoingMessage{
		Type:      msgType,
		PatientID: patientID,
		Timestamp: time.Now(),
		Data:      data,
	}
}

func (m *OutgoingMessage) JSON() []byte {
	data, _ := json.Marshal(m)
	return data
}

// messageFromEvent returns nil for events clients never see.
func messageFromEvent(event *models.Event) *OutgoingMessage {
	msgType := mapEventType(event.Type)
	if msgType == "" {
		return nil
	}

	return &OutgoingMessage{
		Type:      msgType,
		PatientID: event.PatientID,
		Timestamp: event.Timestamp,
		Severity:  string(event.Severity),
		Message:   event.Message,
		Data:      event.Data,
	}
}

func mapEventType(eventType models.EventType) MessageType {
	switch eventType {
	case models.EventTypeVitalsRecorded:
		return MessageTypeVitals
	case models.EventTypeRiskAssessed:
		return MessageTypeRisk
	case models.EventTypeForecastGenerated:
		return MessageTypeForecast
	case models.EventTypeAlert:
		return MessageTypeAlert
	case models.EventTypeError:
		return MessageTypeError
	default:
		return ""
	}
}
