package monitor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/OldStager01/vitalwatch/internal/events"
	"github.com/OldStager01/vitalwatch/internal/forecast"
	"github.com/OldStager01/vitalwatch/internal/jitter"
	"github.com/OldStager01/vitalwatch/internal/logger"
	"github.com/OldStager01/vitalwatch/internal/metrics"
	"github.com/OldStager01/vitalwatch/internal/risk"
	"github.com/OldStager01/vitalwatch/pkg/models"
	"github.com/OldStager01/vitalwatch/pkg/validation"
)

// ErrNoAssessment is returned when a patient has never been scored.
var ErrNoAssessment = errors.New("no risk assessment recorded for patient")

type VitalsStore interface {
	Insert(ctx context.Context, v *models.VitalsSnapshot) error
	Recent(ctx context.Context, patientID string, limit int) ([]models.VitalsSnapshot, error)
}

type PredictionStore interface {
	Insert(ctx context.Context, p *models.RiskResult) error
	Latest(ctx context.Context, patientID string) (*models.RiskResult, error)
}

type ForecastStore interface {
	Insert(ctx context.Context, f *models.ForecastResult) error
}

type AlertStore interface {
	Create(ctx context.Context, alert *models.Alert) error
	ListByPatient(ctx context.Context, patientID string, limit int) ([]models.Alert, error)
	Acknowledge(ctx context.Context, patientID, alertID string) error
}

// RiskCache holds the latest result per patient. Failures never fail a request.
type RiskCache interface {
	SetLatest(ctx context.Context, result *models.RiskResult) error
	Latest(ctx context.Context, patientID string) (*models.RiskResult, error)
}

type Config struct {
	Vitals      VitalsStore
	Predictions PredictionStore
	Forecasts   ForecastStore
	Alerts      AlertStore
	Cache       RiskCache

	Model      risk.Model
	PolicyName string
	Jitter     jitter.Source
	Forecaster *forecast.Forecaster

	Publisher   *events.Publisher
	Metrics     *metrics.Metrics
	HistorySize int
}

// Service ties scoring and forecasting to storage, the event bus and the cache.
type Service struct {
	config        Config
	policies      map[string]risk.Policy
	defaultPolicy risk.Policy
}

func New(cfg Config) (*Service, error) {
	if cfg.Vitals == nil || cfg.Predictions == nil || cfg.Forecasts == nil || cfg.Alerts == nil {
		return nil, errors.New("monitor: all stores are required")
	}
	if cfg.Forecaster == nil {
		return nil, errors.New("monitor: forecaster is required")
	}
	if cfg.HistorySize < 2 {
		cfg.HistorySize = 12
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.New()
	}
	if cfg.Jitter == nil {
		cfg.Jitter = jitter.Zero
	}

	policies := make(map[string]risk.Policy)
	for _, name := range risk.Policies() {
		p, err := risk.NewPolicy(name, cfg.Model, cfg.Jitter)
		if err != nil {
			return nil, err
		}
		policies[name] = p
	}

	defaultPolicy, err := risk.NewPolicy(cfg.PolicyName, cfg.Model, cfg.Jitter)
	if err != nil {
		return nil, err
	}

	return &Service{
		config:        cfg,
		policies:      policies,
		defaultPolicy: defaultPolicy,
	}, nil
}

func (s *Service) publisher(ctx context.Context) *events.Publisher {
	return s.config.Publisher.WithTraceID(logger.TraceIDFromContext(ctx))
}

// RecordVitals stores the snapshot and scores it with the default policy.
func (s *Service) RecordVitals(ctx context.Context, snapshot *models.VitalsSnapshot) (*models.RiskResult, error) {
	if err := validation.ValidateSnapshot(snapshot); err != nil {
		return nil, err
	}
	if snapshot.Timestamp.IsZero() {
		snapshot.Timestamp = time.Now().UTC()
	}

	if err := s.config.Vitals.Insert(ctx, snapshot); err != nil {
		return nil, fmt.Errorf("failed to store vitals: %w", err)
	}
	s.config.Metrics.IncVitalsRecorded()
	s.publisher(ctx).VitalsRecorded(snapshot)

	return s.AssessRisk(ctx, snapshot.PatientID, snapshot.Readings(), "")
}

// AssessRisk scores readings, persists one prediction and raises an alert
// when the level calls for it. An empty policy name uses the default policy.
func (s *Service) AssessRisk(ctx context.Context, patientID string, readings models.Readings, policyName string) (*models.RiskResult, error) {
	if err := validation.ValidatePatientID(patientID); err != nil {
		return nil, err
	}
	if err := validation.ValidateReadings(readings); err != nil {
		return nil, err
	}

	policy := s.defaultPolicy
	if policyName != "" {
		p, ok := s.policies[policyName]
		if !ok {
			return nil, fmt.Errorf("%w: %q", risk.ErrUnknownPolicy, policyName)
		}
		policy = p
	}

	start := time.Now()
	result := policy.Score(readings)
	result.PatientID = patientID
	s.config.Metrics.ObserveOperation("assess_risk", time.Since(start))

	if err := s.config.Predictions.Insert(ctx, result); err != nil {
		return nil, fmt.Errorf("failed to store prediction: %w", err)
	}

	if s.config.Cache != nil {
		if err := s.config.Cache.SetLatest(ctx, result); err != nil {
			logger.WithPatient(patientID).Warnf("Failed to cache risk result: %v", err)
		}
	}

	s.config.Metrics.IncRiskAssessment(result.Policy, string(result.RiskLevel))
	if result.InsufficientVitals {
		s.config.Metrics.IncInsufficientData("risk")
	}

	pub := s.publisher(ctx)
	pub.RiskAssessed(result)

	if result.RequiresAlert() {
		alert := models.NewAlert(patientID, models.AlertSourceRisk, result.AlertPriority(),
			string(result.RiskLevel), result.Explanation)
		s.raise(ctx, pub, alert)
	}

	logger.WithPatient(patientID).Debugf("Risk assessed: %s (%.3f) via %s",
		result.RiskLevel, result.Probability, result.Policy)

	return result, nil
}

// Forecast projects the patient's recent vitals over horizon minutes.
func (s *Service) Forecast(ctx context.Context, patientID string, horizon int) (*models.ForecastResult, error) {
	if err := validation.ValidatePatientID(patientID); err != nil {
		return nil, err
	}

	history, err := s.config.Vitals.Recent(ctx, patientID, s.config.HistorySize)
	if err != nil {
		return nil, fmt.Errorf("failed to load vitals history: %w", err)
	}

	start := time.Now()
	result, err := s.config.Forecaster.Forecast(patientID, history, horizon)
	if err != nil {
		if errors.Is(err, forecast.ErrInsufficientData) {
			s.config.Metrics.IncInsufficientData("forecast")
		}
		return nil, err
	}
	s.config.Metrics.ObserveOperation("forecast", time.Since(start))

	if err := s.config.Forecasts.Insert(ctx, result); err != nil {
		return nil, fmt.Errorf("failed to store forecast: %w", err)
	}

	s.config.Metrics.IncForecast(string(result.RiskProjection))

	pub := s.publisher(ctx)
	pub.ForecastGenerated(result)

	if result.RequiresAlert() {
		title := "Projected decline"
		if result.RiskProjection == models.ProjectionCritical {
			title = "Projected critical deterioration"
		}
		alert := models.NewAlert(patientID, models.AlertSourceForecast, result.AlertPriority(), title, result.Summary)
		s.raise(ctx, pub, alert)
	}

	return result, nil
}

// raise stores the alert before publishing it for live subscribers. A failed
// insert is logged and does not fail the scoring call.
func (s *Service) raise(ctx context.Context, pub *events.Publisher, alert *models.Alert) {
	s.config.Metrics.IncAlert(string(alert.Source), string(alert.Priority))
	if err := s.config.Alerts.Create(ctx, alert); err != nil {
		logger.WithPatient(alert.PatientID).Errorf("Failed to persist alert: %v", err)
	}
	pub.Alert(alert)
	logger.WithPatient(alert.PatientID).Warnf("Alert raised [%s]: %s", alert.Priority, alert.Title)
}

// LatestRisk returns the cached result, falling back to the stored prediction.
func (s *Service) LatestRisk(ctx context.Context, patientID string) (*models.RiskResult, error) {
	if err := validation.ValidatePatientID(patientID); err != nil {
		return nil, err
	}

	if s.config.Cache != nil {
		result, err := s.config.Cache.Latest(ctx, patientID)
		if err == nil {
			return result, nil
		}
		logger.WithPatient(patientID).Debugf("Risk cache unavailable: %v", err)
	}

	result, err := s.config.Predictions.Latest(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to load latest prediction: %w", err)
	}
	if result == nil {
		return nil, ErrNoAssessment
	}

	if s.config.Cache != nil {
		if err := s.config.Cache.SetLatest(ctx, result); err != nil {
			logger.WithPatient(patientID).Warnf("Failed to refill risk cache: %v", err)
		}
	}
	return result, nil
}

func (s *Service) ListAlerts(ctx context.Context, patientID string, limit int) ([]models.Alert, error) {
	if err := validation.ValidatePatientID(patientID); err != nil {
		return nil, err
	}
	return s.config.Alerts.ListByPatient(ctx, patientID, limit)
}

func (s *Service) AcknowledgeAlert(ctx context.Context, patientID, alertID string) error {
	if err := validation.ValidatePatientID(patientID); err != nil {
		return err
	}
	return s.config.Alerts.Acknowledge(ctx, patientID, alertID)
}

// DefaultPolicy reports the policy used when a request names none.
func (s *Service) DefaultPolicy() string {
	return s.defaultPolicy.Name()
}
