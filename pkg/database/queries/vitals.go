package queries

import (
	"context"
	"database/sql"

	"github.com/OldStager01/vitalwatch/pkg/models"
)

type VitalsRepository struct {
	db *sql.DB
}

func NewVitalsRepository(db *sql.DB) *VitalsRepository {
	return &VitalsRepository{db: db}
}

// Insert stores the snapshot and fills in its ID.
func (r *VitalsRepository) Insert(ctx context.Context, v *models.VitalsSnapshot) error {
	query := `
		INSERT INTO vitals (patient_id, heart_rate, spo2, resp_rate, systolic_bp, diastolic_bp, temperature, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`

	return r.db.QueryRowContext(ctx, query,
		v.PatientID, v.HeartRate, v.SpO2, v.RespRate, v.SystolicBP, v.DiastolicBP, v.Temperature, v.Timestamp,
	).Scan(&v.ID)
}

// Recent returns up to limit snapshots for the patient, oldest first.
func (r *VitalsRepository) Recent(ctx context.Context, patientID string, limit int) ([]models.VitalsSnapshot, error) {
	if limit <= 0 {
		limit = 12
	}

	query := `
		SELECT id, patient_id, heart_rate, spo2, resp_rate, systolic_bp, diastolic_bp, temperature, recorded_at
		FROM (
			SELECT * FROM vitals
			WHERE patient_id = $1
			ORDER BY recorded_at DESC
			LIMIT $2
		) latest
		ORDER BY recorded_at ASC`

	rows, err := r.db.QueryContext(ctx, query, patientID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var history []models.VitalsSnapshot
	for rows.Next() {
		var v models.VitalsSnapshot
		err := rows.Scan(&v.ID, &v.PatientID, &v.HeartRate, &v.SpO2, &v.RespRate,
			&v.SystolicBP, &v.DiastolicBP, &v.Temperature, &v.Timestamp)
		if err != nil {
			return nil, err
		}
		history = append(history, v)
	}

	return history, rows.Err()
}
