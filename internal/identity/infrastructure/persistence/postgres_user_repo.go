package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mirelabalan/fanvault/internal/identity/domain"
	sharedPersistence "github.com/mirelabalan/fanvault/internal/shared/infrastructure/persistence"
)

// PostgresUserRepository handles persistence for users using PostgreSQL.
type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresUserRepository creates a new PostgresUserRepository.
func NewPostgresUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

var _ domain.Repository = (*PostgresUserRepository)(nil)

// FindByID retrieves a user by their chat-platform ID. Returns nil if absent.
func (r *PostgresUserRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	exec := sharedPersistence.Executor(ctx, r.pool)

	row := exec.QueryRow(ctx, `
		SELECT id, username, display_name, joined_at, total_spent, interaction_count, last_seen_at
		FROM users
		WHERE id = $1
	`, id)

	var u userRow
	err := row.Scan(&u.id, &u.username, &u.displayName, &u.joinedAt, &u.totalSpent, &u.interactions, &u.lastSeenAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}
	return u.toDomain(), nil
}

// Save upserts a user.
func (r *PostgresUserRepository) Save(ctx context.Context, user *domain.User) error {
	exec := sharedPersistence.Executor(ctx, r.pool)

	_, err := exec.Exec(ctx, `
		INSERT INTO users (id, username, display_name, joined_at, total_spent, interaction_count, last_seen_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			username = EXCLUDED.username,
			display_name = EXCLUDED.display_name,
			total_spent = EXCLUDED.total_spent,
			interaction_count = EXCLUDED.interaction_count,
			last_seen_at = EXCLUDED.last_seen_at
	`,
		user.ID(),
		user.Username(),
		user.DisplayName(),
		user.JoinedAt(),
		user.TotalSpent(),
		user.InteractionCount(),
		user.LastSeenAt(),
	)
	if err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

// Stats returns storefront-wide totals.
func (r *PostgresUserRepository) Stats(ctx context.Context) (domain.Stats, error) {
	exec := sharedPersistence.Executor(ctx, r.pool)

	var stats domain.Stats
	err := exec.QueryRow(ctx, `
		SELECT COUNT(*), COALESCE(SUM(total_spent), 0), COALESCE(SUM(interaction_count), 0)
		FROM users
	`).Scan(&stats.TotalUsers, &stats.TotalSpent, &stats.TotalInteractions)
	if err != nil {
		return domain.Stats{}, fmt.Errorf("query user stats: %w", err)
	}
	return stats, nil
}

// TopSpenders returns the users with the highest lifetime spend.
func (r *PostgresUserRepository) TopSpenders(ctx context.Context, limit int) ([]domain.Spender, error) {
	exec := sharedPersistence.Executor(ctx, r.pool)

	rows, err := exec.Query(ctx, `
		SELECT id, username, total_spent
		FROM users
		WHERE total_spent > 0
		ORDER BY total_spent DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query top spenders: %w", err)
	}
	defer rows.Close()

	var spenders []domain.Spender
	for rows.Next() {
		var s domain.Spender
		if err := rows.Scan(&s.UserID, &s.Username, &s.TotalSpent); err != nil {
			return nil, err
		}
		spenders = append(spenders, s)
	}
	return spenders, rows.Err()
}

type userRow struct {
	id           int64
	username     string
	displayName  string
	joinedAt     time.Time
	totalSpent   int64
	interactions int64
	lastSeenAt   time.Time
}

func (u userRow) toDomain() *domain.User {
	return domain.RehydrateUser(u.id, u.username, u.displayName, u.joinedAt, u.totalSpent, u.interactions, u.lastSeenAt)
}
