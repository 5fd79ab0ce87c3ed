package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.IncVitalsRecorded()
	m.IncVitalsRecorded()
	m.IncRiskAssessment("weighted", "High Risk")
	m.IncForecast("declining")
	m.IncAlert("risk", "urgent")
	m.IncInsufficientData("forecast")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.vitalsRecorded))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.riskAssessments.WithLabelValues("weighted", "High Risk")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.forecasts.WithLabelValues("declining")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.alerts.WithLabelValues("risk", "urgent")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.insufficientData.WithLabelValues("forecast")))
}

func TestMetrics_Gauges(t *testing.T) {
	m := New()

	m.SetCircuitBreakerState("risk-cache", 1)
	m.SetWebSocketClients(3)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.circuitBreakerState.WithLabelValues("risk-cache")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.wsClients))
}

func TestMetrics_IndependentRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		New()
		New()
		NewWithRegistry(prometheus.NewRegistry())
	})
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.IncRiskAssessment("rule_based", "Low Risk")
	m.ObserveOperation("assess_risk", 2*time.Millisecond)
	m.RecordHTTPRequest(http.MethodGet, "/health", http.StatusOK, time.Millisecond)

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), `vitalwatch_risk_assessments_total{level="Low Risk",policy="rule_based"} 1`)
	assert.Contains(t, string(body), "vitalwatch_operation_duration_seconds_count")
	assert.Contains(t, string(body), `vitalwatch_http_requests_total{method="GET",path="/health",status="200"} 1`)
}
