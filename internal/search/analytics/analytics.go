// internal/search/analytics/analytics.go

// Package analytics records one row per search. Recording is strictly
// best-effort: a failed write is logged and swallowed, never surfaced to the
// search caller.
package analytics

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	stderrors "bamaai-connect/internal/common/errors"
	"bamaai-connect/internal/common/logger"
	"bamaai-connect/internal/models"

	"github.com/google/uuid"
)

// Recorder is the analytics-sink capability. Record never fails the caller.
type Recorder interface {
	Record(ctx context.Context, event models.AnalyticsEvent)
}

// PostgresRecorder writes search analytics rows.
type PostgresRecorder struct {
	db     *sql.DB
	logger logger.Logger
}

func NewPostgresRecorder(db *sql.DB, log logger.Logger) *PostgresRecorder {
	return &PostgresRecorder{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "analytics"}),
	}
}

func (r *PostgresRecorder) Record(ctx context.Context, event models.AnalyticsEvent) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	filters, err := json.Marshal(event.Filters)
	if err != nil {
		filters = []byte("{}")
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO search_analytics (id, session_id, query, filters, result_count, duration_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		event.ID, event.SessionID, event.Query, filters,
		event.ResultCount, event.DurationMs, event.CreatedAt,
	)
	if err != nil {
		stdErr := stderrors.NewAnalyticsWriteFailedError(err)
		r.logger.Warn(stdErr.Message, map[string]interface{}{
			"code":  string(stdErr.Code),
			"query": event.Query,
			"error": err.Error(),
		})
	}
}

// NoopRecorder drops events; used in tests and when analytics is disabled.
type NoopRecorder struct{}

func (NoopRecorder) Record(context.Context, models.AnalyticsEvent) {}
