package persistence

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mirelabalan/fanvault/internal/settlement/domain"
	sharedPersistence "github.com/mirelabalan/fanvault/internal/shared/infrastructure/persistence"
)

// PostgresProcessedPaymentRepository handles the settlement dedupe
// ledger using PostgreSQL.
type PostgresProcessedPaymentRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresProcessedPaymentRepository creates a new PostgresProcessedPaymentRepository.
func NewPostgresProcessedPaymentRepository(pool *pgxpool.Pool) *PostgresProcessedPaymentRepository {
	return &PostgresProcessedPaymentRepository{pool: pool}
}

var _ domain.ProcessedPaymentRepository = (*PostgresProcessedPaymentRepository)(nil)

// MarkProcessed records the payment. The primary key on payment_id turns
// a replayed confirmation into a silent no-op reported as false.
func (r *PostgresProcessedPaymentRepository) MarkProcessed(ctx context.Context, p domain.ProcessedPayment) (bool, error) {
	exec := sharedPersistence.Executor(ctx, r.pool)

	tag, err := exec.Exec(ctx, `
		INSERT INTO processed_payments (payment_id, user_id, kind, processed_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (payment_id) DO NOTHING
	`,
		p.PaymentID,
		p.UserID,
		string(p.Kind),
		p.ProcessedAt,
	)
	if err != nil {
		return false, fmt.Errorf("mark payment processed: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
