package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mirelabalan/fanvault/internal/identity/domain"
	sharedPersistence "github.com/mirelabalan/fanvault/internal/shared/infrastructure/persistence"
)

// SQLiteUserRepository handles persistence for users using SQLite.
type SQLiteUserRepository struct {
	db *sql.DB
}

// NewSQLiteUserRepository creates a new SQLiteUserRepository.
func NewSQLiteUserRepository(db *sql.DB) *SQLiteUserRepository {
	return &SQLiteUserRepository{db: db}
}

var _ domain.Repository = (*SQLiteUserRepository)(nil)

// FindByID retrieves a user by their chat-platform ID. Returns nil if absent.
func (r *SQLiteUserRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	exec := sharedPersistence.SQLiteExec(ctx, r.db)

	row := exec.QueryRowContext(ctx, `
		SELECT id, username, display_name, joined_at, total_spent, interaction_count, last_seen_at
		FROM users
		WHERE id = ?
	`, id)

	user, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}
	return user, nil
}

// Save upserts a user.
func (r *SQLiteUserRepository) Save(ctx context.Context, user *domain.User) error {
	exec := sharedPersistence.SQLiteExec(ctx, r.db)

	_, err := exec.ExecContext(ctx, `
		INSERT INTO users (id, username, display_name, joined_at, total_spent, interaction_count, last_seen_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			username = excluded.username,
			display_name = excluded.display_name,
			total_spent = excluded.total_spent,
			interaction_count = excluded.interaction_count,
			last_seen_at = excluded.last_seen_at
	`,
		user.ID(),
		user.Username(),
		user.DisplayName(),
		user.JoinedAt().UTC().Format(time.RFC3339),
		user.TotalSpent(),
		user.InteractionCount(),
		user.LastSeenAt().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

// Stats returns storefront-wide totals.
func (r *SQLiteUserRepository) Stats(ctx context.Context) (domain.Stats, error) {
	exec := sharedPersistence.SQLiteExec(ctx, r.db)

	var stats domain.Stats
	err := exec.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(total_spent), 0), COALESCE(SUM(interaction_count), 0)
		FROM users
	`).Scan(&stats.TotalUsers, &stats.TotalSpent, &stats.TotalInteractions)
	if err != nil {
		return domain.Stats{}, fmt.Errorf("query user stats: %w", err)
	}
	return stats, nil
}

// TopSpenders returns the users with the highest lifetime spend.
func (r *SQLiteUserRepository) TopSpenders(ctx context.Context, limit int) ([]domain.Spender, error) {
	exec := sharedPersistence.SQLiteExec(ctx, r.db)

	rows, err := exec.QueryContext(ctx, `
		SELECT id, username, total_spent
		FROM users
		WHERE total_spent > 0
		ORDER BY total_spent DESC
		LIMIT ?
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

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	var (
		id, totalSpent, interactions int64
		username, displayName        string
		joinedAt, lastSeenAt         string
	)
	if err := row.Scan(&id, &username, &displayName, &joinedAt, &totalSpent, &interactions, &lastSeenAt); err != nil {
		return nil, err
	}

	joined, err := time.Parse(time.RFC3339, joinedAt)
	if err != nil {
		return nil, fmt.Errorf("parse joined_at: %w", err)
	}
	seen, err := time.Parse(time.RFC3339, lastSeenAt)
	if err != nil {
		return nil, fmt.Errorf("parse last_seen_at: %w", err)
	}

	return domain.RehydrateUser(id, username, displayName, joined, totalSpent, interactions, seen), nil
}
