package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/airwatch/aqcore/internal/domain"
)

// PostgresSink persists snapshots and dispatch history to PostgreSQL,
// adapted from the teacher's PostgresRepository pattern onto this
// system's audit tables rather than weather/traffic ones.
type PostgresSink struct {
	pool *pgxpool.Pool
}

// NewPostgresSink wraps an existing pool. The caller owns pool's
// lifecycle (Close on shutdown).
func NewPostgresSink(pool *pgxpool.Pool) *PostgresSink {
	return &PostgresSink{pool: pool}
}

// RecordSnapshot persists a canonicalized Snapshot's top-line fields
// for later audit; it does not attempt to reconstruct the full
// pollutant map from storage (the core never reads it back).
func (s *PostgresSink) RecordSnapshot(ctx context.Context, snap domain.Snapshot) error {
	query := `
		INSERT INTO snapshots (lat, lng, observed_at, aqi, level, confidence, coverage)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.pool.Exec(ctx, query,
		snap.Location.Lat, snap.Location.Lng, snap.ObservedAt,
		snap.AQI, string(snap.Level), string(snap.DataQuality.Confidence), string(snap.DataQuality.Coverage),
	)
	if err != nil {
		return fmt.Errorf("postgres: failed to record snapshot: %w", err)
	}
	return nil
}

// RecordDispatch persists one AlertDispatcher send for audit.
func (s *PostgresSink) RecordDispatch(ctx context.Context, subscriberID string, alerts []domain.Alert, at time.Time) error {
	query := `
		INSERT INTO dispatch_history (subscriber_id, alert_count, at)
		VALUES ($1, $2, $3)
	`
	_, err := s.pool.Exec(ctx, query, subscriberID, len(alerts), at)
	if err != nil {
		return fmt.Errorf("postgres: failed to record dispatch: %w", err)
	}
	return nil
}

// Migrate creates the audit tables if they do not already exist.
func (s *PostgresSink) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS snapshots (
			id SERIAL PRIMARY KEY,
			lat DOUBLE PRECISION NOT NULL,
			lng DOUBLE PRECISION NOT NULL,
			observed_at TIMESTAMPTZ NOT NULL,
			aqi INTEGER NOT NULL,
			level TEXT NOT NULL,
			confidence TEXT NOT NULL,
			coverage TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS dispatch_history (
			id SERIAL PRIMARY KEY,
			subscriber_id TEXT NOT NULL,
			alert_count INTEGER NOT NULL,
			at TIMESTAMPTZ NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("postgres: failed to migrate: %w", err)
	}
	return nil
}
