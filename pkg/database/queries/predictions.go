package queries

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/OldStager01/vitalwatch/pkg/models"
)

type PredictionRepository struct {
	db *sql.DB
}

func NewPredictionRepository(db *sql.DB) *PredictionRepository {
	return &PredictionRepository{db: db}
}

func (r *PredictionRepository) Insert(ctx context.Context, p *models.RiskResult) error {
	factors, err := json.Marshal(p.ContributingFactors)
	if err != nil {
		return fmt.Errorf("failed to encode contributing factors: %w", err)
	}

	query := `
		INSERT INTO predictions
			(patient_id, risk_level, probability, confidence, explanation, contributing_factors,
			 model_version, policy, vitals_evaluated, insufficient_vitals, assessed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`

	return r.db.QueryRowContext(ctx, query,
		p.PatientID, p.RiskLevel, p.Probability, p.Confidence, p.Explanation, factors,
		p.ModelVersion, p.Policy, p.VitalsEvaluated, p.InsufficientVitals, p.AssessedAt,
	).Scan(&p.ID)
}

// Latest returns nil, nil when the patient has no predictions.
func (r *PredictionRepository) Latest(ctx context.Context, patientID string) (*models.RiskResult, error) {
	query := `
		SELECT id, patient_id, risk_level, probability, confidence, explanation, contributing_factors,
		       model_version, policy, vitals_evaluated, insufficient_vitals, assessed_at
		FROM predictions
		WHERE patient_id = $1
		ORDER BY assessed_at DESC
		LIMIT 1`

	var p models.RiskResult
	var factors []byte
	err := r.db.QueryRowContext(ctx, query, patientID).Scan(
		&p.ID, &p.PatientID, &p.RiskLevel, &p.Probability, &p.Confidence, &p.Explanation, &factors,
		&p.ModelVersion, &p.Policy, &p.VitalsEvaluated, &p.InsufficientVitals, &p.AssessedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(factors, &p.ContributingFactors); err != nil {
		return nil, fmt.Errorf("failed to decode contributing factors: %w", err)
	}

	return &p, nil
}
