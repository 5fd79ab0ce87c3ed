package events

import (
	"bytes"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OldStager01/vitalwatch/internal/logger"
	"github.com/OldStager01/vitalwatch/pkg/models"
)

func receive(t *testing.T, ch <-chan *models.Event) *models.Event {
	t.Helper()
	select {
	case e := <-ch:
		return e
	case <-time.After(time.Second):
		require.FailNow(t, "timed out waiting for event")
		return nil
	}
}

func TestEventBus_SubscribeByType(t *testing.T) {
	bus := NewEventBus(10)
	defer bus.Close()

	risk := bus.Subscribe(models.EventTypeRiskAssessed)
	all := bus.SubscribeAll()

	bus.Publish(models.NewEvent(models.EventTypeRiskAssessed, "p-1", "assessed"))
	bus.Publish(models.NewEvent(models.EventTypeVitalsRecorded, "p-1", "recorded"))

	assert.Equal(t, models.EventTypeRiskAssessed, receive(t, risk).Type)
	assert.Empty(t, risk)

	assert.Equal(t, models.EventTypeRiskAssessed, receive(t, all).Type)
	assert.Equal(t, models.EventTypeVitalsRecorded, receive(t, all).Type)
}

func TestEventBus_DropsWhenFull(t *testing.T) {
	bus := NewEventBus(1)
	defer bus.Close()

	ch := bus.Subscribe(models.EventTypeAlert)
	bus.Publish(models.NewEvent(models.EventTypeAlert, "p-1", "first"))
	bus.Publish(models.NewEvent(models.EventTypeAlert, "p-1", "second"))

	assert.Equal(t, "first", receive(t, ch).Message)
	assert.Empty(t, ch)
}

func TestEventBus_CloseIsIdempotent(t *testing.T) {
	bus := NewEventBus(0)
	ch := bus.SubscribeAll()
	single := bus.Subscribe(models.EventTypeError)

	bus.Close()
	bus.Close()

	_, ok := <-ch
	assert.False(t, ok)
	_, ok = <-single
	assert.False(t, ok)

	// publishing after close is a no-op
	bus.Publish(models.NewEvent(models.EventTypeError, "p-1", "late"))
}

func TestPublisher_Severities(t *testing.T) {
	bus := NewEventBus(10)
	defer bus.Close()
	all := bus.SubscribeAll()
	pub := NewPublisher(bus).WithTraceID("trace-1")

	pub.RiskAssessed(&models.RiskResult{PatientID: "p-1", RiskLevel: models.RiskHigh})
	pub.RiskAssessed(&models.RiskResult{PatientID: "p-1", RiskLevel: models.RiskLow})
	pub.ForecastGenerated(&models.ForecastResult{PatientID: "p-1", RiskProjection: models.ProjectionDeclining})
	pub.Alert(models.NewAlert("p-1", models.AlertSourceRisk, models.PriorityUrgent, "High risk", "msg"))
	pub.Error("p-1", "persist failed", errors.New("boom"))

	tests := []struct {
		eventType models.EventType
		severity  models.EventSeverity
	}{
		{models.EventTypeRiskAssessed, models.SeverityCritical},
		{models.EventTypeRiskAssessed, models.SeverityInfo},
		{models.EventTypeForecastGenerated, models.SeverityWarning},
		{models.EventTypeAlert, models.SeverityCritical},
		{models.EventTypeError, models.SeverityCritical},
	}

	for _, tt := range tests {
		e := receive(t, all)
		assert.Equal(t, tt.eventType, e.Type)
		assert.Equal(t, tt.severity, e.Severity)
		assert.Equal(t, "trace-1", e.TraceID)
		assert.Equal(t, "p-1", e.PatientID)
	}
}

func TestPublisher_NilIsSafe(t *testing.T) {
	var pub *Publisher
	assert.NotPanics(t, func() {
		pub.VitalsRecorded(&models.VitalsSnapshot{PatientID: "p-1"})
	})
}

func TestEventLogger_DrainsOnStop(t *testing.T) {
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	t.Cleanup(func() { logger.SetOutput(os.Stdout) })

	bus := NewEventBus(10)
	defer bus.Close()
	ch := bus.SubscribeAll()

	pub := NewPublisher(bus)
	pub.VitalsRecorded(&models.VitalsSnapshot{PatientID: "p-1"})
	pub.Alert(models.NewAlert("p-1", models.AlertSourceForecast, models.PriorityHigh, "Declining", "msg"))

	l := NewEventLogger(ch)
	l.cancel()
	l.Start()
	l.Stop()

	assert.Empty(t, ch)
	assert.Contains(t, buf.String(), "p-1")
}

func TestEventLogger_StopsOnClosedChannel(t *testing.T) {
	bus := NewEventBus(1)
	l := NewEventLogger(bus.SubscribeAll())
	l.Start()

	bus.Close()
	assert.NotPanics(t, l.Stop)
}
