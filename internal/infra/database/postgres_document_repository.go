// internal/infra/database/postgres_document_repository.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"medication_notifier/internal/domain/document"
	"medication_notifier/internal/domain/page"
)

var ErrDocumentNotFound = fmt.Errorf("document not found")

type PostgresDocumentRepository struct {
	db *sql.DB
}

func NewPostgresDocumentRepository(db *sql.DB) *PostgresDocumentRepository {
	return &PostgresDocumentRepository{db: db}
}

func (r *PostgresDocumentRepository) ListExpiringUntil(ctx context.Context, until time.Time, req page.Request) ([]*document.Document, error) {
	query := `SELECT id, user_id, name, expires_at, created_at, updated_at
               FROM documents
               WHERE expires_at IS NOT NULL AND expires_at <= $1
               ORDER BY expires_at, id
               LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, query, until, req.Size, req.Offset())
	if err != nil {
		return nil, fmt.Errorf("error querying expiring documents: %w", err)
	}
	defer rows.Close()

	documents := make([]*document.Document, 0)
	for rows.Next() {
		d := document.Document{}
		if err := rows.Scan(&d.ID, &d.UserID, &d.Name, &d.ExpiresAt, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("error scanning document row: %w", err)
		}
		documents = append(documents, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating document rows: %w", err)
	}
	return documents, nil
}
