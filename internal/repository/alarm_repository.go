package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"FCCMonitorAPI/internal/models"

	"github.com/lib/pq"
)

// IAlarmRepository defines persistence for prioritized alarms.
type IAlarmRepository interface {
	Create(ctx context.Context, alarm *models.Alarm) error
	GetByID(ctx context.Context, id string) (*models.Alarm, error)
	List(ctx context.Context, limit int) ([]models.Alarm, error)
	ListUnacknowledged(ctx context.Context) ([]models.Alarm, error)
	Acknowledge(ctx context.Context, id, user string, at time.Time) (*models.Alarm, error)
	UpdateRiskState(ctx context.Context, alarm *models.Alarm) (bool, error)
	DeleteOld(ctx context.Context, olderThan time.Duration) (int64, error)
}

type AlarmRepository struct {
	db *sql.DB
}

func NewAlarmRepository(db *sql.DB) *AlarmRepository {
	return &AlarmRepository{db: db}
}

const alarmColumns = `id, tag_id, tag_name, message, kind, created_at,
	acknowledged, acknowledged_by, acknowledged_at, priority, category,
	risk_score, response_deadline, escalated, upstream_causes`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAlarm(row rowScanner) (*models.Alarm, error) {
	var (
		a      models.Alarm
		ackBy  sql.NullString
		ackAt  sql.NullTime
		causes []string
	)

	err := row.Scan(
		&a.ID, &a.TagID, &a.TagName, &a.Message, &a.Kind, &a.Timestamp,
		&a.Acknowledged, &ackBy, &ackAt, &a.Priority, &a.Category,
		&a.RiskScore, &a.ResponseDeadline, &a.Escalated, pq.Array(&causes),
	)
	if err != nil {
		return nil, err
	}

	if ackBy.Valid {
		a.AcknowledgedBy = &ackBy.String
	}
	if ackAt.Valid {
		a.AcknowledgedAt = &ackAt.Time
	}
	a.UpstreamCauses = causes

	return &a, nil
}

func scanAlarms(rows *sql.Rows) ([]models.Alarm, error) {
	defer rows.Close()

	alarms := []models.Alarm{}
	for rows.Next() {
		a, err := scanAlarm(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan alarm: %w", err)
		}
		alarms = append(alarms, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate alarms: %w", err)
	}

	return alarms, nil
}

// Create inserts a new alarm. The alarm id is assigned by the caller.
func (r *AlarmRepository) Create(ctx context.Context, alarm *models.Alarm) error {
	query := `
		INSERT INTO alarms (` + alarmColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	causes := alarm.UpstreamCauses
	if causes == nil {
		causes = []string{}
	}

	_, err := r.db.ExecContext(
		ctx, query,
		alarm.ID,
		alarm.TagID,
		alarm.TagName,
		alarm.Message,
		alarm.Kind,
		alarm.Timestamp,
		alarm.Acknowledged,
		alarm.AcknowledgedBy,
		alarm.AcknowledgedAt,
		alarm.Priority,
		alarm.Category,
		alarm.RiskScore,
		alarm.ResponseDeadline,
		alarm.Escalated,
		pq.Array(causes),
	)
	if err != nil {
		return fmt.Errorf("failed to create alarm: %w", err)
	}

	return nil
}

func (r *AlarmRepository) GetByID(ctx context.Context, id string) (*models.Alarm, error) {
	query := `SELECT ` + alarmColumns + ` FROM alarms WHERE id = $1`

	alarm, err := scanAlarm(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAlarmNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get alarm by id: %w", err)
	}

	return alarm, nil
}

// List returns the most recent alarms, newest first.
func (r *AlarmRepository) List(ctx context.Context, limit int) ([]models.Alarm, error) {
	query := `
		SELECT ` + alarmColumns + `
		FROM alarms
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query alarms: %w", err)
	}
	return scanAlarms(rows)
}

func (r *AlarmRepository) ListUnacknowledged(ctx context.Context) ([]models.Alarm, error) {
	query := `
		SELECT ` + alarmColumns + `
		FROM alarms
		WHERE acknowledged = FALSE
		ORDER BY created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query unacknowledged alarms: %w", err)
	}
	return scanAlarms(rows)
}

// Acknowledge flips an alarm to acknowledged exactly once. A second call
// returns ErrAlreadyAcknowledged and leaves the first acknowledgement intact.
func (r *AlarmRepository) Acknowledge(ctx context.Context, id, user string, at time.Time) (*models.Alarm, error) {
	query := `
		UPDATE alarms
		SET acknowledged = TRUE, acknowledged_by = $2, acknowledged_at = $3
		WHERE id = $1 AND acknowledged = FALSE
		RETURNING ` + alarmColumns

	alarm, err := scanAlarm(r.db.QueryRowContext(ctx, query, id, user, at))
	if err == nil {
		return alarm, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to acknowledge alarm: %w", err)
	}

	var exists bool
	if err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM alarms WHERE id = $1)`, id).Scan(&exists); err != nil {
		return nil, fmt.Errorf("failed to check alarm: %w", err)
	}
	if exists {
		return nil, ErrAlreadyAcknowledged
	}
	return nil, ErrAlarmNotFound
}

// UpdateRiskState writes the recomputed priority, risk and deadline. It only
// touches unacknowledged rows and reports whether the row was updated.
func (r *AlarmRepository) UpdateRiskState(ctx context.Context, alarm *models.Alarm) (bool, error) {
	query := `
		UPDATE alarms
		SET priority = $2, risk_score = $3, response_deadline = $4, escalated = $5
		WHERE id = $1 AND acknowledged = FALSE
	`

	result, err := r.db.ExecContext(
		ctx, query,
		alarm.ID,
		alarm.Priority,
		alarm.RiskScore,
		alarm.ResponseDeadline,
		alarm.Escalated,
	)
	if err != nil {
		return false, fmt.Errorf("failed to update alarm risk state: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return affected > 0, nil
}

// DeleteOld removes acknowledged alarms raised before the retention window.
func (r *AlarmRepository) DeleteOld(ctx context.Context, olderThan time.Duration) (int64, error) {
	query := `DELETE FROM alarms WHERE acknowledged = TRUE AND created_at < $1`

	cutoff := time.Now().Add(-olderThan)
	result, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old alarms: %w", err)
	}

	return result.RowsAffected()
}
