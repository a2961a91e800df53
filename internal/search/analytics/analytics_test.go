// internal/search/analytics/analytics_test.go
package analytics

import (
	"context"
	"testing"
	"time"

	"bamaai-connect/internal/common/logger"
	"bamaai-connect/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecord_InsertsRow(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	created := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectExec(`INSERT INTO search_analytics`).
		WithArgs("evt-1", "sess-1", "ai consulting", []byte(`{"category":"Technology"}`), 12, int64(34), created).
		WillReturnResult(sqlmock.NewResult(0, 1))

	r := NewPostgresRecorder(db, logger.NewTestLogger(t))
	r.Record(context.Background(), models.AnalyticsEvent{
		ID:          "evt-1",
		SessionID:   "sess-1",
		Query:       "ai consulting",
		Filters:     map[string]interface{}{"category": "Technology"},
		ResultCount: 12,
		DurationMs:  34,
		CreatedAt:   created,
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecord_FillsIDAndTimestamp(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO search_analytics`).
		WithArgs(sqlmock.AnyArg(), "", "q", []byte(`null`), 0, int64(0), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	r := NewPostgresRecorder(db, logger.NewTestLogger(t))
	r.Record(context.Background(), models.AnalyticsEvent{Query: "q"})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecord_SwallowsWriteFailure(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO search_analytics`).WillReturnError(assert.AnError)

	r := NewPostgresRecorder(db, logger.NewTestLogger(t))

	// Must not panic or surface the error.
	r.Record(context.Background(), models.AnalyticsEvent{Query: "q"})
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNoopRecorder(t *testing.T) {
	NoopRecorder{}.Record(context.Background(), models.AnalyticsEvent{})
}
