package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mirelabalan/fanvault/internal/engagement/domain"
	sharedPersistence "github.com/mirelabalan/fanvault/internal/shared/infrastructure/persistence"
)

// SQLiteResponseRepository handles persistence for configured replies
// using SQLite.
type SQLiteResponseRepository struct {
	db *sql.DB
}

// NewSQLiteResponseRepository creates a new SQLiteResponseRepository.
func NewSQLiteResponseRepository(db *sql.DB) *SQLiteResponseRepository {
	return &SQLiteResponseRepository{db: db}
}

var _ domain.Repository = (*SQLiteResponseRepository)(nil)

// Get retrieves the reply for a key. Returns "" if unset.
func (r *SQLiteResponseRepository) Get(ctx context.Context, key domain.ResponseKey) (string, error) {
	exec := sharedPersistence.SQLiteExec(ctx, r.db)

	var text string
	err := exec.QueryRowContext(ctx, `SELECT text FROM responses WHERE key = ?`, string(key)).Scan(&text)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("query response: %w", err)
	}
	return text, nil
}

// Set writes the reply for a key.
func (r *SQLiteResponseRepository) Set(ctx context.Context, key domain.ResponseKey, text string) error {
	exec := sharedPersistence.SQLiteExec(ctx, r.db)

	_, err := exec.ExecContext(ctx, `
		INSERT INTO responses (key, text)
		VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET text = excluded.text
	`, string(key), text)
	if err != nil {
		return fmt.Errorf("set response: %w", err)
	}
	return nil
}

// All returns every configured reply.
func (r *SQLiteResponseRepository) All(ctx context.Context) (map[domain.ResponseKey]string, error) {
	exec := sharedPersistence.SQLiteExec(ctx, r.db)

	rows, err := exec.QueryContext(ctx, `SELECT key, text FROM responses`)
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
