package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/inforens/chat-backend/internal/models"
	"gorm.io/gorm"
)

// ErrLedgerUnavailable is returned when the server came up without a
// database connection (degraded mode).
var ErrLedgerUnavailable = errors.New("query ledger database is not available")

// QueryLedger owns the queries table: it assigns record identity at insert
// and is the only writer of the two feedback columns. Every operation is a
// single autocommitted statement bounded by its own timeout.
type QueryLedger struct {
	db      *gorm.DB
	timeout time.Duration
}

// NewQueryLedger wraps the given DB handle. A nil handle is allowed and makes
// every operation fail with ErrLedgerUnavailable.
func NewQueryLedger(db *gorm.DB, timeout time.Duration) *QueryLedger {
	return &QueryLedger{db: db, timeout: timeout}
}

// EnsureSchema creates the queries table if absent.
func (l *QueryLedger) EnsureSchema() error {
	if l.db == nil {
		return ErrLedgerUnavailable
	}
	return l.db.AutoMigrate(&models.Query{})
}

// Insert stamps asked_at, writes one row, and returns the assigned id.
func (l *QueryLedger) Insert(ctx context.Context, query *models.Query) (int64, error) {
	if l.db == nil {
		return 0, ErrLedgerUnavailable
	}

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	query.AskedAt = time.Now().UTC()
	if err := l.db.WithContext(ctx).Create(query).Error; err != nil {
		return 0, fmt.Errorf("failed to insert query: %w", err)
	}
	return query.ID, nil
}

// UpdateFeedback sets the two thumbs columns on the matching row and returns
// how many rows matched. Zero rows is not an error: an unmatched messageId is
// a silent no-op, the caller decides how to report it.
func (l *QueryLedger) UpdateFeedback(ctx context.Context, id int64, thumbsUp, thumbsDown bool) (int64, error) {
	if l.db == nil {
		return 0, ErrLedgerUnavailable
	}

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	result := l.db.WithContext(ctx).Model(&models.Query{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"thumbs_up":   thumbsUp,
			"thumbs_down": thumbsDown,
		})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to update feedback: %w", result.Error)
	}
	return result.RowsAffected, nil
}
