package services

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/inforens/chat-backend/internal/models"
)

func newMockLedger(t *testing.T) (*QueryLedger, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return NewQueryLedger(db, 5*time.Second), mock
}

func TestQueryLedger_Insert(t *testing.T) {
	ledger, mock := newMockLedger(t)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "queries"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(42)))

	answer := "X is Y"
	query := &models.Query{
		Question:  "What is X?",
		Answer:    &answer,
		Model:     "perplexity-sonar",
		LatencyMs: 120,
		Success:   true,
	}

	id, err := ledger.Insert(context.Background(), query)

	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	assert.False(t, query.AskedAt.IsZero(), "insert must stamp asked_at")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueryLedger_Insert_FailedAttemptRow(t *testing.T) {
	ledger, mock := newMockLedger(t)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "queries"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))

	errText := "chat request returned status 502"
	query := &models.Query{
		Question:  "What is X?",
		Model:     "perplexity-sonar",
		LatencyMs: 30,
		Success:   false,
		Error:     &errText,
	}

	id, err := ledger.Insert(context.Background(), query)

	require.NoError(t, err)
	assert.Equal(t, int64(7), id)
	assert.Nil(t, query.Answer)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueryLedger_Insert_StoreError(t *testing.T) {
	ledger, mock := newMockLedger(t)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "queries"`)).
		WillReturnError(errors.New("connection refused"))

	id, err := ledger.Insert(context.Background(), &models.Query{Question: "What is X?"})

	require.Error(t, err)
	assert.Zero(t, id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueryLedger_UpdateFeedback(t *testing.T) {
	tests := []struct {
		name       string
		thumbsUp   bool
		thumbsDown bool
		matched    int64
	}{
		{name: "thumbs up on existing record", thumbsUp: true, thumbsDown: false, matched: 1},
		{name: "thumbs down on existing record", thumbsUp: false, thumbsDown: true, matched: 1},
		{name: "both thumbs set is accepted", thumbsUp: true, thumbsDown: true, matched: 1},
		{name: "unknown id is a silent no-op", thumbsUp: true, thumbsDown: false, matched: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ledger, mock := newMockLedger(t)

			mock.ExpectExec(regexp.QuoteMeta(`UPDATE "queries" SET`)).
				WithArgs(tt.thumbsDown, tt.thumbsUp, int64(42)).
				WillReturnResult(sqlmock.NewResult(0, tt.matched))

			rows, err := ledger.UpdateFeedback(context.Background(), 42, tt.thumbsUp, tt.thumbsDown)

			require.NoError(t, err)
			assert.Equal(t, tt.matched, rows)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestQueryLedger_UpdateFeedback_StoreError(t *testing.T) {
	ledger, mock := newMockLedger(t)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "queries" SET`)).
		WillReturnError(errors.New("connection refused"))

	rows, err := ledger.UpdateFeedback(context.Background(), 42, true, false)

	require.Error(t, err)
	assert.Zero(t, rows)
}

func TestQueryLedger_DegradedMode(t *testing.T) {
	ledger := NewQueryLedger(nil, time.Second)

	assert.ErrorIs(t, ledger.EnsureSchema(), ErrLedgerUnavailable)

	_, err := ledger.Insert(context.Background(), &models.Query{Question: "What is X?"})
	assert.ErrorIs(t, err, ErrLedgerUnavailable)

	_, err = ledger.UpdateFeedback(context.Background(), 1, true, false)
	assert.ErrorIs(t, err, ErrLedgerUnavailable)
}
