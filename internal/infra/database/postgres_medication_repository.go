package database

import (
	"context"
	"database/sql"
	"fmt"

	"medication_notifier/internal/domain/medication"
)

var ErrMedicationNotFound = fmt.Errorf("medication not found")

type PostgresMedicationRepository struct {
	db *sql.DB
}

func NewPostgresMedicationRepository(db *sql.DB) *PostgresMedicationRepository {
	return &PostgresMedicationRepository{db: db}
}

func (r *PostgresMedicationRepository) GetByIDForUser(ctx context.Context, id int64, userID int64) (*medication.Medication, error) {
	query := `SELECT id, user_id, name, dose_unit, created_at, updated_at
               FROM medications WHERE id = $1 AND user_id = $2`
	m := medication.Medication{}
	err := r.db.QueryRowContext(ctx, query, id, userID).Scan(
		&m.ID, &m.UserID, &m.Name, &m.DoseUnit, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrMedicationNotFound
		}
		return nil, fmt.Errorf("error getting medication by ID: %w", err)
	}
	return &m, nil
}
