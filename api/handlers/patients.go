package handlers

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/OldStager01/vitalwatch/pkg/models"
	"github.com/OldStager01/vitalwatch/pkg/validation"
)

// PatientService is the monitor service as seen by the HTTP layer
type PatientService interface {
	RecordVitals(ctx context.Context, snapshot *models.VitalsSnapshot) (*models.RiskResult, error)
	AssessRisk(ctx context.Context, patientID string, readings models.Readings, policy string) (*models.RiskResult, error)
	LatestRisk(ctx context.Context, patientID string) (*models.RiskResult, error)
	Forecast(ctx context.Context, patientID string, horizon int) (*models.ForecastResult, error)
	ListAlerts(ctx context.Context, patientID string, limit int) ([]models.Alert, error)
	AcknowledgeAlert(ctx context.Context, patientID, alertID string) error
}

type PatientHandler struct {
	service      PatientService
	defaultLimit int
	maxLimit     int
	timeout      time.Duration
}

func NewPatientHandler(service PatientService, defaultLimit, maxLimit int) *PatientHandler {
	if defaultLimit <= 0 {
		defaultLimit = 20
	}
	if maxLimit < defaultLimit {
		maxLimit = defaultLimit
	}
	return &PatientHandler{
		service:      service,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
		timeout:      10 * time.Second,
	}
}

type RecordVitalsRequest struct {
	HeartRate   int        `json:"heart_rate" binding:"required" example:"88"`
	SpO2        float64    `json:"spo2" binding:"required" example:"96.5"`
	RespRate    int        `json:"resp_rate" binding:"required" example:"18"`
	SystolicBP  int        `json:"systolic_bp" binding:"required" example:"122"`
	DiastolicBP int        `json:"diastolic_bp" binding:"required" example:"78"`
	Temperature float64    `json:"temperature" binding:"required" example:"37.1"`
	Timestamp   *time.Time `json:"timestamp,omitempty"`
}

type RecordVitalsResponse struct {
	Vitals models.VitalsSnapshot `json:"vitals"`
	Risk   *models.RiskResult    `json:"risk"`
}

// RecordVitals godoc
// @Summary Record a vitals snapshot
// @Description Stores the snapshot and returns its risk assessment
// @Tags Patients
// @Accept json
// @Produce json
// @Param id path string true "Patient ID"
// @Success 201 {object} RecordVitalsResponse
// @Failure 400 {object} map[string]string "Invalid readings"
// @Router /patients/{id}/vitals [post]
func (h *PatientHandler) RecordVitals(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	var req RecordVitalsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	snapshot := &models.VitalsSnapshot{
		PatientID:   c.Param("id"),
		HeartRate:   req.HeartRate,
		SpO2:        req.SpO2,
		RespRate:    req.RespRate,
		SystolicBP:  req.SystolicBP,
		DiastolicBP: req.DiastolicBP,
		Temperature: req.Temperature,
	}
	if req.Timestamp != nil {
		snapshot.Timestamp = req.Timestamp.UTC()
	}

	result, err := h.service.RecordVitals(ctx, snapshot)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, RecordVitalsResponse{Vitals: *snapshot, Risk: result})
}

// AssessRisk godoc
// @Summary Score ad-hoc readings
// @Description Body is a map of vital name to value; null or absent vitals are treated as missing
// @Tags Patients
// @Accept json
// @Produce json
// @Param id path string true "Patient ID"
// @Param policy query string false "weighted or rule_based"
// @Success 200 {object} models.RiskResult
// @Router /patients/{id}/risk [post]
func (h *PatientHandler) AssessRisk(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	var body map[string]*float64
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	readings := make(models.Readings, len(body))
	for key, v := range body {
		if v == nil {
			readings[key] = math.NaN()
			continue
		}
		readings[key] = *v
	}

	result, err := h.service.AssessRisk(ctx, c.Param("id"), readings, c.Query("policy"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// LatestRisk godoc
// @Summary Latest risk assessment
// @Tags Patients
// @Produce json
// @Param id path string true "Patient ID"
// @Success 200 {object} models.RiskResult
// @Failure 404 {object} map[string]string "Never assessed"
// @Router /patients/{id}/risk/latest [get]
func (h *PatientHandler) LatestRisk(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	result, err := h.service.LatestRisk(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Forecast godoc
// @Summary Short-horizon vitals forecast
// @Tags Patients
// @Produce json
// @Param id path string true "Patient ID"
// @Param horizon query int false "Minutes ahead; points stop at 30" default(30)
// @Success 200 {object} models.ForecastResult
// @Failure 400 {object} map[string]string "Invalid horizon"
// @Failure 422 {object} map[string]string "Not enough data yet"
// @Router /patients/{id}/forecast [get]
func (h *PatientHandler) Forecast(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	horizon := 0
	if raw := c.Query("horizon"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "horizon must be an integer number of minutes"})
			return
		}
		horizon = v
	}

	result, err := h.service.Forecast(ctx, c.Param("id"), horizon)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ListAlerts godoc
// @Summary Recent alerts, newest first
// @Tags Alerts
// @Produce json
// @Param id path string true "Patient ID"
// @Param limit query int false "Maximum alerts" default(20)
// @Router /patients/{id}/alerts [get]
func (h *PatientHandler) ListAlerts(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	limit, _ := strconv.Atoi(c.Query("limit"))
	limit = validation.ClampLimit(limit, h.defaultLimit, h.maxLimit)

	alerts, err := h.service.ListAlerts(ctx, c.Param("id"), limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"alerts": alerts,
		"count":  len(alerts),
	})
}

// AcknowledgeAlert godoc
// @Summary Acknowledge an alert
// @Tags Alerts
// @Param id path string true "Patient ID"
// @Param alertID path string true "Alert ID"
// @Success 204
// @Failure 404 {object} map[string]string "Alert not found"
// @Router /patients/{id}/alerts/{alertID}/ack [put]
func (h *PatientHandler) AcknowledgeAlert(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	if err := h.service.AcknowledgeAlert(ctx, c.Param("id"), c.Param("alertID")); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
