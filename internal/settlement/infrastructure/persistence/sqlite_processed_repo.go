package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mirelabalan/fanvault/internal/settlement/domain"
	sharedPersistence "github.com/mirelabalan/fanvault/internal/shared/infrastructure/persistence"
)

// SQLiteProcessedPaymentRepository handles the settlement dedupe ledger
// using SQLite.
type SQLiteProcessedPaymentRepository struct {
	db *sql.DB
}

// NewSQLiteProcessedPaymentRepository creates a new SQLiteProcessedPaymentRepository.
func NewSQLiteProcessedPaymentRepository(db *sql.DB) *SQLiteProcessedPaymentRepository {
	return &SQLiteProcessedPaymentRepository{db: db}
}

var _ domain.ProcessedPaymentRepository = (*SQLiteProcessedPaymentRepository)(nil)

// MarkProcessed records the payment. The primary key on payment_id turns
// a replayed confirmation into a silent no-op reported as false.
func (r *SQLiteProcessedPaymentRepository) MarkProcessed(ctx context.Context, p domain.ProcessedPayment) (bool, error) {
	exec := sharedPersistence.SQLiteExec(ctx, r.db)

	result, err := exec.ExecContext(ctx, `
		INSERT INTO processed_payments (payment_id, user_id, kind, processed_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(payment_id) DO NOTHING
	`,
		p.PaymentID,
		p.UserID,
		string(p.Kind),
		p.ProcessedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return false, fmt.Errorf("mark payment processed: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mark payment processed: %w", err)
	}
	return affected > 0, nil
}
