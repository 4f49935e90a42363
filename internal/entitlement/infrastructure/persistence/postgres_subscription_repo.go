package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mirelabalan/fanvault/internal/entitlement/domain"
	sharedPersistence "github.com/mirelabalan/fanvault/internal/shared/infrastructure/persistence"
)

// PostgresSubscriptionRepository handles persistence for subscriptions
// using PostgreSQL.
type PostgresSubscriptionRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresSubscriptionRepository creates a new PostgresSubscriptionRepository.
func NewPostgresSubscriptionRepository(pool *pgxpool.Pool) *PostgresSubscriptionRepository {
	return &PostgresSubscriptionRepository{pool: pool}
}

var _ domain.SubscriptionRepository = (*PostgresSubscriptionRepository)(nil)

const pgSelectSubscription = `
	SELECT user_id, started_at, expires_at, active, renewals, updated_at
	FROM subscriptions
	WHERE user_id = $1
`

// FindByUserID retrieves a user's subscription row. Returns nil if absent.
func (r *PostgresSubscriptionRepository) FindByUserID(ctx context.Context, userID int64) (*domain.Subscription, error) {
	return r.find(ctx, userID, pgSelectSubscription)
}

// FindByUserIDForUpdate retrieves the subscription row under FOR UPDATE,
// serializing concurrent renewals of the same user.
func (r *PostgresSubscriptionRepository) FindByUserIDForUpdate(ctx context.Context, userID int64) (*domain.Subscription, error) {
	return r.find(ctx, userID, pgSelectSubscription+` FOR UPDATE`)
}

func (r *PostgresSubscriptionRepository) find(ctx context.Context, userID int64, query string) (*domain.Subscription, error) {
	exec := sharedPersistence.Executor(ctx, r.pool)

	var s subscriptionRow
	err := exec.QueryRow(ctx, query, userID).
		Scan(&s.userID, &s.startedAt, &s.expiresAt, &s.active, &s.renewals, &s.updatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query subscription: %w", err)
	}
	return s.toDomain(), nil
}

// Upsert writes the subscription row.
func (r *PostgresSubscriptionRepository) Upsert(ctx context.Context, sub *domain.Subscription) error {
	exec := sharedPersistence.Executor(ctx, r.pool)

	_, err := exec.Exec(ctx, `
		INSERT INTO subscriptions (user_id, started_at, expires_at, active, renewals, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id) DO UPDATE SET
			expires_at = EXCLUDED.expires_at,
			active = EXCLUDED.active,
			renewals = EXCLUDED.renewals,
			updated_at = EXCLUDED.updated_at
	`,
		sub.UserID(),
		sub.StartedAt(),
		sub.ExpiresAt(),
		sub.Active(),
		sub.Renewals(),
		sub.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("upsert subscription: %w", err)
	}
	return nil
}

type subscriptionRow struct {
	userID    int64
	startedAt time.Time
	expiresAt time.Time
	active    bool
	renewals  int64
	updatedAt time.Time
}

func (s subscriptionRow) toDomain() *domain.Subscription {
	return domain.RehydrateSubscription(s.userID, s.startedAt, s.expiresAt, s.active, s.renewals, s.updatedAt)
}
