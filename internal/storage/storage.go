// Package storage provides the optional durable audit sink for
// dispatched alerts and generated snapshots. The core system is
// in-memory (spec.md §1 Non-goals: "no historical data archive"); this
// package exists purely as an optional write-behind audit trail, never
// a read path the forecast/alert pipeline depends on.
package storage

import (
	"context"
	"time"

	"github.com/airwatch/aqcore/internal/domain"
)

// Sink is the capability interface both the in-memory no-op and the
// Postgres-backed implementation satisfy.
type Sink interface {
	RecordSnapshot(ctx context.Context, snap domain.Snapshot) error
	RecordDispatch(ctx context.Context, subscriberID string, alerts []domain.Alert, at time.Time) error
}

// NoopSink discards everything. It is the default Sink: the core
// pipeline never requires persistence to function correctly.
type NoopSink struct{}

// NewNoopSink builds a Sink that does nothing.
func NewNoopSink() *NoopSink { return &NoopSink{} }

func (NoopSink) RecordSnapshot(ctx context.Context, snap domain.Snapshot) error { return nil }

func (NoopSink) RecordDispatch(ctx context.Context, subscriberID string, alerts []domain.Alert, at time.Time) error {
	return nil
}
