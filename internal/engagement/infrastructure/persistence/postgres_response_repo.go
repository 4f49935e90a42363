package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mirelabalan/fanvault/internal/engagement/domain"
	sharedPersistence "github.com/mirelabalan/fanvault/internal/shared/infrastructure/persistence"
)

// PostgresResponseRepository handles persistence for configured replies
// using PostgreSQL.
type PostgresResponseRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresResponseRepository creates a new PostgresResponseRepository.
func NewPostgresResponseRepository(pool *pgxpool.Pool) *PostgresResponseRepository {
	return &PostgresResponseRepository{pool: pool}
}

var _ domain.Repository = (*PostgresResponseRepository)(nil)

// Get retrieves the reply for a key. Returns "" if unset.
func (r *PostgresResponseRepository) Get(ctx context.Context, key domain.ResponseKey) (string, error) {
	exec := sharedPersistence.Executor(ctx, r.pool)

	var text string
	err := exec.QueryRow(ctx, `SELECT text FROM responses WHERE key = $1`, string(key)).Scan(&text)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("query response: %w", err)
	}
	return text, nil
}

// Set writes the reply for a key.
func (r *PostgresResponseRepository) Set(ctx context.Context, key domain.ResponseKey, text string) error {
	exec := sharedPersistence.Executor(ctx, r.pool)

	_, err := exec.Exec(ctx, `
		INSERT INTO responses (key, text)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET text = EXCLUDED.text
	`, string(key), text)
	if err != nil {
		return fmt.Errorf("set response: %w", err)
	}
	return nil
}

// All returns every configured reply.
func (r *PostgresResponseRepository) All(ctx context.Context) (map[domain.ResponseKey]string, error) {
	exec := sharedPersistence.Executor(ctx, r.pool)

	rows, err := exec.Query(ctx, `SELECT key, text FROM responses`)
	if err != nil {
		return nil, fmt.Errorf("query responses: %w", err)
	}
	defer rows.Close()

	responses := make(map[domain.ResponseKey]string)
	for rows.Next() {
		var key, text string
		if err := rows.Scan(&key, &text); err != nil {
			return nil, err
		}
		responses[domain.ResponseKey(key)] = text
	}
	return responses, rows.Err()
}
