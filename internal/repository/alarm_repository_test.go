package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"FCCMonitorAPI/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var alarmRowColumns = []string{
	"id", "tag_id", "tag_name", "message", "kind", "created_at",
	"acknowledged", "acknowledged_by", "acknowledged_at", "priority", "category",
	"risk_score", "response_deadline", "escalated", "upstream_causes",
}

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func alarmRow(rows *sqlmock.Rows, id string, created time.Time, acked bool) *sqlmock.Rows {
	var ackBy, ackAt any
	if acked {
		ackBy = "op1"
		ackAt = created.Add(time.Minute)
	}
	return rows.AddRow(
		id, "TI-101", "Reactor Temperature", "Reactor Temperature high", "alarm", created,
		acked, ackBy, ackAt, int64(2), "safety",
		int64(64), created.Add(5*time.Minute), false, "{FI-101,TI-201}",
	)
}

func TestAlarmRepository_Create(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAlarmRepository(db)

	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	alarm := &models.Alarm{
		ID: "a1", TagID: "TI-101", TagName: "Reactor Temperature", Message: "high",
		Kind: models.KindAlarm, Timestamp: now, Priority: models.PriorityHigh,
		Category: models.CategorySafety, RiskScore: 46, ResponseDeadline: now.Add(5 * time.Minute),
		UpstreamCauses: []string{"FI-101"},
	}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO alarms")).
		WithArgs("a1", "TI-101", "Reactor Temperature", "high", "alarm", now,
			false, nil, nil, int64(2), "safety", int64(46), now.Add(5*time.Minute), false, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), alarm))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAlarmRepository_CreateWrapsError(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAlarmRepository(db)

	mock.ExpectExec("INSERT INTO alarms").WillReturnError(errors.New("duplicate key"))

	err := repo.Create(context.Background(), &models.Alarm{ID: "a1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create alarm")
}

func TestAlarmRepository_GetByID(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAlarmRepository(db)
	created := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT (.+) FROM alarms WHERE id = \\$1").
		WithArgs("a1").
		WillReturnRows(alarmRow(sqlmock.NewRows(alarmRowColumns), "a1", created, true))

	alarm, err := repo.GetByID(context.Background(), "a1")
	require.NoError(t, err)
	assert.Equal(t, models.PriorityHigh, alarm.Priority)
	assert.Equal(t, models.KindAlarm, alarm.Kind)
	assert.Equal(t, models.CategorySafety, alarm.Category)
	assert.Equal(t, []string{"FI-101", "TI-201"}, alarm.UpstreamCauses)
	require.NotNil(t, alarm.AcknowledgedBy)
	assert.Equal(t, "op1", *alarm.AcknowledgedBy)
	require.NotNil(t, alarm.AcknowledgedAt)
}

func TestAlarmRepository_GetByIDNotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAlarmRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM alarms").WithArgs("missing").WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrAlarmNotFound)
}

func TestAlarmRepository_ListAndUnacknowledged(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAlarmRepository(db)
	created := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows(alarmRowColumns)
	alarmRow(rows, "a2", created.Add(time.Minute), false)
	alarmRow(rows, "a1", created, true)
	mock.ExpectQuery("ORDER BY created_at DESC").WithArgs(50).WillReturnRows(rows)

	alarms, err := repo.List(context.Background(), 50)
	require.NoError(t, err)
	require.Len(t, alarms, 2)
	assert.Equal(t, "a2", alarms[0].ID)
	assert.Nil(t, alarms[0].AcknowledgedBy)

	mock.ExpectQuery("WHERE acknowledged = FALSE").WillReturnRows(sqlmock.NewRows(alarmRowColumns))
	pending, err := repo.ListUnacknowledged(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, pending)
	assert.Empty(t, pending)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAlarmRepository_Acknowledge(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAlarmRepository(db)
	at := time.Date(2026, 3, 1, 8, 1, 0, 0, time.UTC)

	mock.ExpectQuery("UPDATE alarms SET acknowledged = TRUE").
		WithArgs("a1", "op1", at).
		WillReturnRows(alarmRow(sqlmock.NewRows(alarmRowColumns), "a1", at.Add(-time.Minute), true))

	alarm, err := repo.Acknowledge(context.Background(), "a1", "op1", at)
	require.NoError(t, err)
	assert.True(t, alarm.Acknowledged)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAlarmRepository_AcknowledgeTwice(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAlarmRepository(db)
	at := time.Now()

	mock.ExpectQuery("UPDATE alarms").WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).WithArgs("a1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	_, err := repo.Acknowledge(context.Background(), "a1", "op2", at)
	assert.ErrorIs(t, err, ErrAlreadyAcknowledged)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAlarmRepository_AcknowledgeMissing(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAlarmRepository(db)

	mock.ExpectQuery("UPDATE alarms").WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).WithArgs("nope").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	_, err := repo.Acknowledge(context.Background(), "nope", "op1", time.Now())
	assert.ErrorIs(t, err, ErrAlarmNotFound)
}

func TestAlarmRepository_UpdateRiskStateGuardedByAcknowledged(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAlarmRepository(db)
	deadline := time.Date(2026, 3, 1, 8, 1, 0, 0, time.UTC)
	alarm := &models.Alarm{ID: "a1", Priority: models.PriorityCritical, RiskScore: 90, ResponseDeadline: deadline, Escalated: true}

	mock.ExpectExec("UPDATE alarms (.+) WHERE id = \\$1 AND acknowledged = FALSE").
		WithArgs("a1", int64(1), int64(90), deadline, true).
		WillReturnResult(sqlmock.NewResult(0, 1))
	updated, err := repo.UpdateRiskState(context.Background(), alarm)
	require.NoError(t, err)
	assert.True(t, updated)

	mock.ExpectExec("UPDATE alarms").WillReturnResult(sqlmock.NewResult(0, 0))
	updated, err = repo.UpdateRiskState(context.Background(), alarm)
	require.NoError(t, err)
	assert.False(t, updated)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAlarmRepository_DeleteOld(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAlarmRepository(db)

	mock.ExpectExec("DELETE FROM alarms WHERE acknowledged = TRUE").
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := repo.DeleteOld(context.Background(), 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}
