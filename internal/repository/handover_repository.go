package repository

import (
	"context"
	"database/sql"
	"fmt"

	"FCCMonitorAPI/internal/models"
)

type IHandoverRepository interface {
	Create(ctx context.Context, log *models.HandoverLog) error
	ListRecent(ctx context.Context, limit int) ([]models.HandoverLog, error)
}

type HandoverRepository struct {
	db *sql.DB
}

func NewHandoverRepository(db *sql.DB) *HandoverRepository {
	return &HandoverRepository{db: db}
}

func (r *HandoverRepository) Create(ctx context.Context, log *models.HandoverLog) error {
	query := `
		INSERT INTO handover_logs (id, shift, author, notes, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.ExecContext(ctx, query, log.ID, log.Shift, log.Author, log.Notes, log.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create handover log: %w", err)
	}
	return nil
}

// ListRecent returns handover logs newest first.
func (r *HandoverRepository) ListRecent(ctx context.Context, limit int) ([]models.HandoverLog, error) {
	query := `
		SELECT id, shift, author, notes, created_at
		FROM handover_logs
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query handover logs: %w", err)
	}
	defer rows.Close()

	logs := []models.HandoverLog{}
	for rows.Next() {
		var l models.HandoverLog
		if err := rows.Scan(&l.ID, &l.Shift, &l.Author, &l.Notes, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan handover log: %w", err)
		}
		logs = append(logs, l)
	}

	return logs, rows.Err()
}
