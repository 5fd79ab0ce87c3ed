package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OldStager01/vitalwatch/internal/forecast"
	"github.com/OldStager01/vitalwatch/internal/monitor"
	"github.com/OldStager01/vitalwatch/internal/risk"
	"github.com/OldStager01/vitalwatch/pkg/database/queries"
	"github.com/OldStager01/vitalwatch/pkg/models"
	"github.com/OldStager01/vitalwatch/pkg/validation"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeService struct {
	snapshot *models.VitalsSnapshot
	readings models.Readings
	policy   string
	horizon  int
	limit    int
	acked    string
	err      error
	risk     *models.RiskResult
	forecast *models.ForecastResult
	alerts   []models.Alert
}

func (f *fakeService) RecordVitals(_ context.Context, s *models.VitalsSnapshot) (*models.RiskResult, error) {
	f.snapshot = s
	return f.risk, f.err
}

func (f *fakeService) AssessRisk(_ context.Context, _ string, r models.Readings, policy string) (*models.RiskResult, error) {
	f.readings = r
	f.policy = policy
	return f.risk, f.err
}

func (f *fakeService) LatestRisk(context.Context, string) (*models.RiskResult, error) {
	return f.risk, f.err
}

func (f *fakeService) Forecast(_ context.Context, _ string, horizon int) (*models.ForecastResult, error) {
	f.horizon = horizon
	return f.forecast, f.err
}

func (f *fakeService) ListAlerts(_ context.Context, _ string, limit int) ([]models.Alert, error) {
	f.limit = limit
	return f.alerts, f.err
}

func (f *fakeService) AcknowledgeAlert(_ context.Context, _ string, alertID string) error {
	f.acked = alertID
	return f.err
}

func newRouter(svc PatientService) *gin.Engine {
	h := NewPatientHandler(svc, 20, 100)
	r := gin.New()
	r.POST("/patients/:id/vitals", h.RecordVitals)
	r.POST("/patients/:id/risk", h.AssessRisk)
	r.GET("/patients/:id/risk/latest", h.LatestRisk)
	r.GET("/patients/:id/forecast", h.Forecast)
	r.GET("/patients/:id/alerts", h.ListAlerts)
	r.PUT("/patients/:id/alerts/:alertID/ack", h.AcknowledgeAlert)
	return r
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestRecordVitals(t *testing.T) {
	svc := &fakeService{risk: &models.RiskResult{PatientID: "p-1", RiskLevel: models.RiskLow}}
	r := newRouter(svc)

	w := do(r, http.MethodPost, "/patients/p-1/vitals",
		`{"heart_rate":88,"spo2":96.5,"resp_rate":18,"systolic_bp":122,"diastolic_bp":78,"temperature":37.1}`)
	require.Equal(t, http.StatusCreated, w.Code)

	assert.Equal(t, "p-1", svc.snapshot.PatientID)
	assert.Equal(t, 96.5, svc.snapshot.SpO2)

	var resp RecordVitalsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, models.RiskLow, resp.Risk.RiskLevel)
	assert.Equal(t, 88, resp.Vitals.HeartRate)
}

func TestRecordVitals_MissingField(t *testing.T) {
	r := newRouter(&fakeService{})
	w := do(r, http.MethodPost, "/patients/p-1/vitals", `{"heart_rate":88}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAssessRisk(t *testing.T) {
	svc := &fakeService{risk: &models.RiskResult{RiskLevel: models.RiskHigh, Policy: "rule_based"}}
	r := newRouter(svc)

	w := do(r, http.MethodPost, "/patients/p-1/risk?policy=rule_based", `{"spo2":85,"HR":140,"temperature":null}`)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, "rule_based", svc.policy)
	assert.Equal(t, 85.0, svc.readings["spo2"])
	assert.Equal(t, 140.0, svc.readings["HR"])
	assert.True(t, math.IsNaN(svc.readings["temperature"]))
	assert.Contains(t, w.Body.String(), `"risk_level":"High Risk"`)
}

func TestAssessRisk_BadBody(t *testing.T) {
	r := newRouter(&fakeService{})
	w := do(r, http.MethodPost, "/patients/p-1/risk", `{"spo2":"low"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestForecast(t *testing.T) {
	svc := &fakeService{forecast: &models.ForecastResult{HorizonMinutes: 15, RiskProjection: models.ProjectionStable}}
	r := newRouter(svc)

	w := do(r, http.MethodGet, "/patients/p-1/forecast?horizon=15", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 15, svc.horizon)

	w = do(r, http.MethodGet, "/patients/p-1/forecast", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, svc.horizon)

	w = do(r, http.MethodGet, "/patients/p-1/forecast?horizon=soon", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{fmt.Errorf("%w: got 1", forecast.ErrInsufficientData), http.StatusUnprocessableEntity},
		{fmt.Errorf("%w: -5", forecast.ErrInvalidHorizon), http.StatusBadRequest},
		{fmt.Errorf("%w: bad id", validation.ErrInvalidInput), http.StatusBadRequest},
		{fmt.Errorf("%w: \"ml\"", risk.ErrUnknownPolicy), http.StatusBadRequest},
		{monitor.ErrNoAssessment, http.StatusNotFound},
		{errors.New("connection refused"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		r := newRouter(&fakeService{err: tt.err})
		w := do(r, http.MethodGet, "/patients/p-1/forecast", "")
		assert.Equal(t, tt.code, w.Code, tt.err.Error())
	}

	r := newRouter(&fakeService{err: fmt.Errorf("%w: got 0", forecast.ErrInsufficientData)})
	w := do(r, http.MethodGet, "/patients/p-1/forecast", "")
	assert.Contains(t, w.Body.String(), "not enough data yet")

	r = newRouter(&fakeService{err: errors.New("pq: password authentication failed")})
	w = do(r, http.MethodGet, "/patients/p-1/risk/latest", "")
	assert.NotContains(t, w.Body.String(), "password")
}

func TestListAlerts_Limit(t *testing.T) {
	svc := &fakeService{alerts: []models.Alert{{ID: "a-1", PatientID: "p-1"}}}
	r := newRouter(svc)

	w := do(r, http.MethodGet, "/patients/p-1/alerts", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 20, svc.limit)
	assert.Contains(t, w.Body.String(), `"count":1`)

	do(r, http.MethodGet, "/patients/p-1/alerts?limit=500", "")
	assert.Equal(t, 100, svc.limit)
}

func TestAcknowledgeAlert(t *testing.T) {
	svc := &fakeService{}
	r := newRouter(svc)

	w := do(r, http.MethodPut, "/patients/p-1/alerts/a-1/ack", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "a-1", svc.acked)

	svc.err = queries.ErrAlertNotFound
	w = do(r, http.MethodPut, "/patients/p-1/alerts/a-2/ack", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealth(t *testing.T) {
	ok := CheckerFunc(func(context.Context) error { return nil })
	down := CheckerFunc(func(context.Context) error { return errors.New("down") })

	tests := []struct {
		name   string
		db     Checker
		cache  Checker
		code   int
		status string
	}{
		{"all healthy", ok, ok, http.StatusOK, "healthy"},
		{"cache disabled", ok, nil, http.StatusOK, "healthy"},
		{"cache down", ok, down, http.StatusOK, "degraded"},
		{"db down", down, ok, http.StatusServiceUnavailable, "unhealthy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler(tt.db, tt.cache)
			r := gin.New()
			r.GET("/health", h.Health)
			r.GET("/health/ready", h.Ready)
			r.GET("/health/live", h.Live)

			w := do(r, http.MethodGet, "/health", "")
			assert.Equal(t, tt.code, w.Code)

			var resp HealthResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.status, resp.Status)

			assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/health/live", "").Code)
			ready := do(r, http.MethodGet, "/health/ready", "")
			if tt.status == "unhealthy" {
				assert.Equal(t, http.StatusServiceUnavailable, ready.Code)
			} else {
				assert.Equal(t, http.StatusOK, ready.Code)
			}
		})
	}
}

type versionedDB struct {
	version string
	err     error
}

func (d versionedDB) HealthCheck(context.Context) error { return nil }

func (d versionedDB) GetVersion(context.Context) (string, error) {
	return d.version, d.err
}

func TestHealth_ReportsDatabaseVersion(t *testing.T) {
	tests := []struct {
		name string
		db   versionedDB
		want string
	}{
		{"version known", versionedDB{version: "PostgreSQL 16.2"}, "PostgreSQL 16.2"},
		{"version query fails", versionedDB{err: errors.New("denied")}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/health", NewHealthHandler(tt.db, nil).Health)

			w := do(r, http.MethodGet, "/health", "")
			require.Equal(t, http.StatusOK, w.Code)

			var resp HealthResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, "healthy", resp.Status)
			assert.Equal(t, tt.want, resp.Checks["database_version"])
		})
	}
}
