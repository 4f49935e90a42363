package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mirelabalan/fanvault/internal/entitlement/domain"
	sharedPersistence "github.com/mirelabalan/fanvault/internal/shared/infrastructure/persistence"
)

// PostgresPurchaseRepository handles persistence for purchases using
// PostgreSQL.
type PostgresPurchaseRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresPurchaseRepository creates a new PostgresPurchaseRepository.
func NewPostgresPurchaseRepository(pool *pgxpool.Pool) *PostgresPurchaseRepository {
	return &PostgresPurchaseRepository{pool: pool}
}

var _ domain.PurchaseRepository = (*PostgresPurchaseRepository)(nil)

// Insert records a purchase. The unique (user_id, item_name) index turns
// a repeat purchase into a silent no-op reported as created=false.
func (r *PostgresPurchaseRepository) Insert(ctx context.Context, p *domain.Purchase) (bool, error) {
	exec := sharedPersistence.Executor(ctx, r.pool)

	tag, err := exec.Exec(ctx, `
		INSERT INTO purchases (id, user_id, item_name, price_paid, purchased_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, item_name) DO NOTHING
	`,
		p.ID(),
		p.UserID(),
		p.ItemName(),
		p.PricePaid(),
		p.PurchasedAt(),
	)
	if err != nil {
		return false, fmt.Errorf("insert purchase: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Exists reports whether the user owns the item.
func (r *PostgresPurchaseRepository) Exists(ctx context.Context, userID int64, itemName string) (bool, error) {
	exec := sharedPersistence.Executor(ctx, r.pool)

	var exists bool
	err := exec.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM purchases WHERE user_id = $1 AND item_name = $2)
	`, userID, itemName).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check purchase: %w", err)
	}
	return exists, nil
}

// ExistsForItem reports whether any user has purchased the item.
func (r *PostgresPurchaseRepository) ExistsForItem(ctx context.Context, itemName string) (bool, error) {
	exec := sharedPersistence.Executor(ctx, r.pool)

	var exists bool
	err := exec.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM purchases WHERE item_name = $1)
	`, itemName).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check item purchases: %w", err)
	}
	return exists, nil
}

// FindByUser returns the user's purchases, newest first.
func (r *PostgresPurchaseRepository) FindByUser(ctx context.Context, userID int64) ([]*domain.Purchase, error) {
	exec := sharedPersistence.Executor(ctx, r.pool)

	rows, err := exec.Query(ctx, `
		SELECT id, user_id, item_name, price_paid, purchased_at
		FROM purchases
		WHERE user_id = $1
		ORDER BY purchased_at DESC, item_name
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("query purchases: %w", err)
	}
	defer rows.Close()

	var purchases []*domain.Purchase
	for rows.Next() {
		var (
			id          uuid.UUID
			uid, price  int64
			itemName    string
			purchasedAt time.Time
		)
		if err := rows.Scan(&id, &uid, &itemName, &price, &purchasedAt); err != nil {
			return nil, err
		}
		purchases = append(purchases, domain.RehydratePurchase(id, uid, itemName, price, purchasedAt))
	}
	return purchases, rows.Err()
}
