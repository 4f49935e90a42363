package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mirelabalan/fanvault/internal/entitlement/domain"
	sharedPersistence "github.com/mirelabalan/fanvault/internal/shared/infrastructure/persistence"
)

// SQLitePurchaseRepository handles persistence for purchases using SQLite.
type SQLitePurchaseRepository struct {
	db *sql.DB
}

// NewSQLitePurchaseRepository creates a new SQLitePurchaseRepository.
func NewSQLitePurchaseRepository(db *sql.DB) *SQLitePurchaseRepository {
	return &SQLitePurchaseRepository{db: db}
}

var _ domain.PurchaseRepository = (*SQLitePurchaseRepository)(nil)

// Insert records a purchase. The unique (user_id, item_name) index turns
// a repeat purchase into a silent no-op reported as created=false.
func (r *SQLitePurchaseRepository) Insert(ctx context.Context, p *domain.Purchase) (bool, error) {
	exec := sharedPersistence.SQLiteExec(ctx, r.db)

	result, err := exec.ExecContext(ctx, `
		INSERT INTO purchases (id, user_id, item_name, price_paid, purchased_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id, item_name) DO NOTHING
	`,
		p.ID().String(),
		p.UserID(),
		p.ItemName(),
		p.PricePaid(),
		p.PurchasedAt().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return false, fmt.Errorf("insert purchase: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert purchase: %w", err)
	}
	return affected > 0, nil
}

// Exists reports whether the user owns the item.
func (r *SQLitePurchaseRepository) Exists(ctx context.Context, userID int64, itemName string) (bool, error) {
	exec := sharedPersistence.SQLiteExec(ctx, r.db)

	var count int64
	err := exec.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM purchases WHERE user_id = ? AND item_name = ?
	`, userID, itemName).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check purchase: %w", err)
	}
	return count > 0, nil
}

// ExistsForItem reports whether any user has purchased the item.
func (r *SQLitePurchaseRepository) ExistsForItem(ctx context.Context, itemName string) (bool, error) {
	exec := sharedPersistence.SQLiteExec(ctx, r.db)

	var count int64
	err := exec.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM purchases WHERE item_name = ?
	`, itemName).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check item purchases: %w", err)
	}
	return count > 0, nil
}

// FindByUser returns the user's purchases, newest first.
func (r *SQLitePurchaseRepository) FindByUser(ctx context.Context, userID int64) ([]*domain.Purchase, error) {
	exec := sharedPersistence.SQLiteExec(ctx, r.db)

	rows, err := exec.QueryContext(ctx, `
		SELECT id, user_id, item_name, price_paid, purchased_at
		FROM purchases
		WHERE user_id = ?
		ORDER BY purchased_at DESC, item_name
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("query purchases: %w", err)
	}
	defer rows.Close()

	var purchases []*domain.Purchase
	for rows.Next() {
		p, err := scanPurchase(rows)
		if err != nil {
			return nil, err
		}
		purchases = append(purchases, p)
	}
	return purchases, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPurchase(row rowScanner) (*domain.Purchase, error) {
	var (
		id, itemName, purchasedAt string
		userID, pricePaid         int64
	)
	if err := row.Scan(&id, &userID, &itemName, &pricePaid, &purchasedAt); err != nil {
		return nil, err
	}

	purchaseID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("parse purchase id: %w", err)
	}
	at, err := time.Parse(time.RFC3339, purchasedAt)
	if err != nil {
		return nil, fmt.Errorf("parse purchased_at: %w", err)
	}

	return domain.RehydratePurchase(purchaseID, userID, itemName, pricePaid, at), nil
}
