package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mirelabalan/fanvault/internal/entitlement/domain"
	sharedPersistence "github.com/mirelabalan/fanvault/internal/shared/infrastructure/persistence"
)

// SQLiteSubscriptionRepository handles persistence for subscriptions
// using SQLite.
type SQLiteSubscriptionRepository struct {
	db *sql.DB
}

// NewSQLiteSubscriptionRepository creates a new SQLiteSubscriptionRepository.
func NewSQLiteSubscriptionRepository(db *sql.DB) *SQLiteSubscriptionRepository {
	return &SQLiteSubscriptionRepository{db: db}
}

var _ domain.SubscriptionRepository = (*SQLiteSubscriptionRepository)(nil)

// FindByUserID retrieves a user's subscription row. Returns nil if absent.
func (r *SQLiteSubscriptionRepository) FindByUserID(ctx context.Context, userID int64) (*domain.Subscription, error) {
	exec := sharedPersistence.SQLiteExec(ctx, r.db)

	row := exec.QueryRowContext(ctx, `
		SELECT user_id, started_at, expires_at, active, renewals, updated_at
		FROM subscriptions
		WHERE user_id = ?
	`, userID)

	sub, err := scanSubscription(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query subscription: %w", err)
	}
	return sub, nil
}

// FindByUserIDForUpdate retrieves the subscription row. SQLite serializes
// writers at the connection level, so no row lock is taken.
func (r *SQLiteSubscriptionRepository) FindByUserIDForUpdate(ctx context.Context, userID int64) (*domain.Subscription, error) {
	return r.FindByUserID(ctx, userID)
}

// Upsert writes the subscription row.
func (r *SQLiteSubscriptionRepository) Upsert(ctx context.Context, sub *domain.Subscription) error {
	exec := sharedPersistence.SQLiteExec(ctx, r.db)

	_, err := exec.ExecContext(ctx, `
		INSERT INTO subscriptions (user_id, started_at, expires_at, active, renewals, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			expires_at = excluded.expires_at,
			active = excluded.active,
			renewals = excluded.renewals,
			updated_at = excluded.updated_at
	`,
		sub.UserID(),
		sub.StartedAt().UTC().Format(time.RFC3339),
		sub.ExpiresAt().UTC().Format(time.RFC3339),
		boolToInt(sub.Active()),
		sub.Renewals(),
		sub.UpdatedAt().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("upsert subscription: %w", err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func scanSubscription(row rowScanner) (*domain.Subscription, error) {
	var (
		userID, renewals               int64
		active                         int
		startedAt, expiresAt, updatedAt string
	)
	if err := row.Scan(&userID, &startedAt, &expiresAt, &active, &renewals, &updatedAt); err != nil {
		return nil, err
	}

	started, err := time.Parse(time.RFC3339, startedAt)
	if err != nil {
		return nil, fmt.Errorf("parse started_at: %w", err)
	}
	expires, err := time.Parse(time.RFC3339, expiresAt)
	if err != nil {
		return nil, fmt.Errorf("parse expires_at: %w", err)
	}
	updated, err := time.Parse(time.RFC3339, updatedAt)
	if err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}

	return domain.RehydrateSubscription(userID, started, expires, active != 0, renewals, updated), nil
}
