// internal/database/database.go

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"FCCMonitorAPI/internal/config"

	_ "github.com/lib/pq"
)

type Database struct {
	DB  *sql.DB
	cfg *config.DatabaseConfig
}

func New(cfg *config.DatabaseConfig) (*Database, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.Database,
		cfg.SSLMode,
	)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Database{
		DB:  db,
		cfg: cfg,
	}, nil
}

// schema is applied in order on every start; each statement must be idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS alarms (
		id                TEXT PRIMARY KEY,
		tag_id            TEXT NOT NULL,
		tag_name          TEXT NOT NULL,
		message           TEXT NOT NULL,
		kind              TEXT NOT NULL,
		created_at        TIMESTAMPTZ NOT NULL,
		acknowledged      BOOLEAN NOT NULL DEFAULT FALSE,
		acknowledged_by   TEXT,
		acknowledged_at   TIMESTAMPTZ,
		priority          SMALLINT NOT NULL,
		category          TEXT NOT NULL,
		risk_score        SMALLINT NOT NULL DEFAULT 0,
		response_deadline TIMESTAMPTZ NOT NULL,
		escalated         BOOLEAN NOT NULL DEFAULT FALSE,
		upstream_causes   TEXT[] NOT NULL DEFAULT '{}'
	)`,
	`CREATE INDEX IF NOT EXISTS idx_alarms_unacknowledged ON alarms (priority, risk_score DESC) WHERE acknowledged = FALSE`,
	`CREATE INDEX IF NOT EXISTS idx_alarms_created_at ON alarms (created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS settings (
		key        TEXT PRIMARY KEY,
		value      JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS handover_logs (
		id         TEXT PRIMARY KEY,
		shift      TEXT NOT NULL,
		author     TEXT NOT NULL,
		notes      TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`,
}

// Migrate creates the tables the service needs if they do not exist yet.
func (d *Database) Migrate(ctx context.Context) error {
	return migrate(ctx, d.DB)
}

func migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement %d: %w", i+1, err)
		}
	}
	return nil
}

func (d *Database) Close() error {
	return d.DB.Close()
}

func (d *Database) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := d.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}

	var result int
	if err := d.DB.QueryRowContext(ctx, "SELECT 1").Scan(&result); err != nil {
		return fmt.Errorf("database query check failed: %w", err)
	}

	return nil
}

func (d *Database) Stats() sql.DBStats {
	return d.DB.Stats()
}
