package queries

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/OldStager01/vitalwatch/pkg/models"
)

type ForecastRepository struct {
	db *sql.DB
}

func NewForecastRepository(db *sql.DB) *ForecastRepository {
	return &ForecastRepository{db: db}
}

func (r *ForecastRepository) Insert(ctx context.Context, f *models.ForecastResult) error {
	points, err := json.Marshal(f.Forecasts)
	if err != nil {
		return fmt.Errorf("failed to encode forecast points: %w", err)
	}

	query := `
		INSERT INTO forecasts
			(patient_id, horizon_minutes, points, confidence, risk_projection, summary, policy, generated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`

	return r.db.QueryRowContext(ctx, query,
		f.PatientID, f.HorizonMinutes, points, f.Confidence, f.RiskProjection, f.Summary, f.Policy, f.GeneratedAt,
	).Scan(&f.ID)
}

// Latest returns nil, nil when the patient has no forecasts.
func (r *ForecastRepository) Latest(ctx context.Context, patientID string) (*models.ForecastResult, error) {
	query := `
		SELECT id, patient_id, horizon_minutes, points, confidence, risk_projection, summary, policy, generated_at
		FROM forecasts
		WHERE patient_id = $1
		ORDER BY generated_at DESC
		LIMIT 1`

	var f models.ForecastResult
	var points []byte
	err := r.db.QueryRowContext(ctx, query, patientID).Scan(
		&f.ID, &f.PatientID, &f.HorizonMinutes, &points, &f.Confidence, &f.RiskProjection, &f.Summary, &f.Policy, &f.GeneratedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(points, &f.Forecasts); err != nil {
		return nil, fmt.Errorf("failed to decode forecast points: %w", err)
	}

	return &f, nil
}
