package queries

import (
	"context"
	"database/sql"
	"errors"

	"github.com/OldStager01/vitalwatch/pkg/models"
)

var ErrAlertNotFound = errors.New("alert not found")

type AlertRepository struct {
	db *sql.DB
}

func NewAlertRepository(db *sql.DB) *AlertRepository {
	return &AlertRepository{db: db}
}

func (r *AlertRepository) Create(ctx context.Context, a *models.Alert) error {
	query := `
		INSERT INTO alerts (id, patient_id, source, priority, title, message, acknowledged, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO NOTHING`

	_, err := r.db.ExecContext(ctx, query,
		a.ID, a.PatientID, a.Source, a.Priority, a.Title, a.Message, a.Acknowledged, a.CreatedAt,
	)
	return err
}

// ListByPatient returns the newest alerts first.
func (r *AlertRepository) ListByPatient(ctx context.Context, patientID string, limit int) ([]models.Alert, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, patient_id, source, priority, title, message, acknowledged, created_at
		FROM alerts
		WHERE patient_id = $1
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, patientID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	alerts := make([]models.Alert, 0)
	for rows.Next() {
		var a models.Alert
		err := rows.Scan(&a.ID, &a.PatientID, &a.Source, &a.Priority, &a.Title, &a.Message, &a.Acknowledged, &a.CreatedAt)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, a)
	}

	return alerts, rows.Err()
}

func (r *AlertRepository) Acknowledge(ctx context.Context, patientID, alertID string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE alerts SET acknowledged = TRUE WHERE id = $1 AND patient_id = $2`, alertID, patientID)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrAlertNotFound
	}
	return nil
}
