// internal/infra/database/postgres_cabinet_repository.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"medication_notifier/internal/domain/cabinet"
	"medication_notifier/internal/domain/page"
)

var ErrCabinetEntryNotFound = fmt.Errorf("cabinet entry not found")

// querier is the subset of *sql.DB / *sql.Tx the repository needs, so
// the same methods serve both transactional and plain access.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type PostgresCabinetRepository struct {
	db *sql.DB
	tx *sql.Tx
}

func NewPostgresCabinetRepository(db *sql.DB) *PostgresCabinetRepository {
	return &PostgresCabinetRepository{db: db}
}

func (r *PostgresCabinetRepository) q() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// WithinTx runs fn against a transactional view of the repository.
// Inside a transaction ListByMedication locks the selected rows, so the
// ledger's read-modify-write cannot lose updates against a concurrent
// completion of the same medication. Nested calls reuse the open
// transaction.
func (r *PostgresCabinetRepository) WithinTx(ctx context.Context, fn func(cabinet.EntryRepository) error) error {
	if r.tx != nil {
		return fn(r)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin cabinet transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&PostgresCabinetRepository{db: r.db, tx: tx}); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *PostgresCabinetRepository) ListByMedication(ctx context.Context, medicationID int64) ([]*cabinet.Entry, error) {
	query := `SELECT id, medication_id, user_id, remaining, expires_at, created_at, updated_at
               FROM cabinet_entries
               WHERE medication_id = $1
               ORDER BY expires_at, id`
	if r.tx != nil {
		query += ` FOR UPDATE`
	}
	rows, err := r.q().QueryContext(ctx, query, medicationID)
	if err != nil {
		return nil, fmt.Errorf("error querying cabinet entries by medication: %w", err)
	}
	defer rows.Close()
	return scanCabinetEntries(rows)
}

func (r *PostgresCabinetRepository) SumRemaining(ctx context.Context, medicationID int64) (decimal.Decimal, error) {
	query := `SELECT COALESCE(SUM(remaining), 0) FROM cabinet_entries WHERE medication_id = $1`
	var total decimal.Decimal
	if err := r.q().QueryRowContext(ctx, query, medicationID).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("error summing remaining doses: %w", err)
	}
	return total, nil
}

func (r *PostgresCabinetRepository) Update(ctx context.Context, e *cabinet.Entry) error {
	query := `UPDATE cabinet_entries
               SET remaining = $1, expires_at = $2, updated_at = NOW()
               WHERE id = $3
               RETURNING updated_at`
	err := r.q().QueryRowContext(ctx, query, e.Remaining, e.ExpiresAt, e.ID).Scan(&e.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrCabinetEntryNotFound
		}
		return fmt.Errorf("error updating cabinet entry: %w", err)
	}
	return nil
}

func (r *PostgresCabinetRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.q().ExecContext(ctx, `DELETE FROM cabinet_entries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting cabinet entry: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error checking deleted cabinet entry rows: %w", err)
	}
	if affected == 0 {
		return ErrCabinetEntryNotFound
	}
	return nil
}

func (r *PostgresCabinetRepository) ListExpiringUntil(ctx context.Context, until time.Time, req page.Request) ([]*cabinet.Entry, error) {
	query := `SELECT id, medication_id, user_id, remaining, expires_at, created_at, updated_at
               FROM cabinet_entries
               WHERE remaining > 0 AND expires_at <= $1
               ORDER BY expires_at, id
               LIMIT $2 OFFSET $3`
	rows, err := r.q().QueryContext(ctx, query, until, req.Size, req.Offset())
	if err != nil {
		return nil, fmt.Errorf("error querying expiring cabinet entries: %w", err)
	}
	defer rows.Close()
	return scanCabinetEntries(rows)
}

func scanCabinetEntries(rows *sql.Rows) ([]*cabinet.Entry, error) {
	entries := make([]*cabinet.Entry, 0)
	for rows.Next() {
		e := cabinet.Entry{}
		if err := rows.Scan(&e.ID, &e.MedicationID, &e.UserID, &e.Remaining, &e.ExpiresAt, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("error scanning cabinet entry row: %w", err)
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cabinet entry rows: %w", err)
	}
	return entries, nil
}
