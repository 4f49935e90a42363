package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mirelabalan/fanvault/internal/catalog/domain"
	sharedPersistence "github.com/mirelabalan/fanvault/internal/shared/infrastructure/persistence"
)

// SQLiteItemRepository handles persistence for catalog items using SQLite.
type SQLiteItemRepository struct {
	db *sql.DB
}

// NewSQLiteItemRepository creates a new SQLiteItemRepository.
func NewSQLiteItemRepository(db *sql.DB) *SQLiteItemRepository {
	return &SQLiteItemRepository{db: db}
}

var _ domain.Repository = (*SQLiteItemRepository)(nil)

const sqliteSelectItem = `
	SELECT name, price, asset_ref, asset_kind, description, pool, created_at
	FROM content_items
`

// FindByName retrieves an item by its unique name. Returns nil if absent.
func (r *SQLiteItemRepository) FindByName(ctx context.Context, name string) (*domain.ContentItem, error) {
	exec := sharedPersistence.SQLiteExec(ctx, r.db)

	row := exec.QueryRowContext(ctx, sqliteSelectItem+` WHERE name = ?`, name)

	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query item: %w", err)
	}
	return item, nil
}

// Save upserts an item.
func (r *SQLiteItemRepository) Save(ctx context.Context, item *domain.ContentItem) error {
	exec := sharedPersistence.SQLiteExec(ctx, r.db)

	_, err := exec.ExecContext(ctx, `
		INSERT INTO content_items (name, price, asset_ref, asset_kind, description, pool, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			price = excluded.price,
			asset_ref = excluded.asset_ref,
			asset_kind = excluded.asset_kind,
			description = excluded.description,
			pool = excluded.pool
	`,
		item.Name(),
		item.Price(),
		item.AssetRef(),
		string(item.AssetKind()),
		item.Description(),
		string(item.Pool()),
		item.CreatedAt().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("save item: %w", err)
	}
	return nil
}

// Delete removes an item from the catalog.
func (r *SQLiteItemRepository) Delete(ctx context.Context, name string) error {
	exec := sharedPersistence.SQLiteExec(ctx, r.db)

	if _, err := exec.ExecContext(ctx, `DELETE FROM content_items WHERE name = ?`, name); err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	return nil
}

// ListByPool returns all items in the given pool, newest first.
func (r *SQLiteItemRepository) ListByPool(ctx context.Context, pool domain.Pool) ([]*domain.ContentItem, error) {
	exec := sharedPersistence.SQLiteExec(ctx, r.db)

	rows, err := exec.QueryContext(ctx, sqliteSelectItem+` WHERE pool = ? ORDER BY created_at DESC, name`, string(pool))
	if err != nil {
		return nil, fmt.Errorf("list items by pool: %w", err)
	}
	defer rows.Close()

	return collectItems(rows)
}

// ListAll returns the whole catalog, newest first.
func (r *SQLiteItemRepository) ListAll(ctx context.Context) ([]*domain.ContentItem, error) {
	exec := sharedPersistence.SQLiteExec(ctx, r.db)

	rows, err := exec.QueryContext(ctx, sqliteSelectItem+` ORDER BY created_at DESC, name`)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	return collectItems(rows)
}

func collectItems(rows *sql.Rows) ([]*domain.ContentItem, error) {
	var items []*domain.ContentItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*domain.ContentItem, error) {
	var (
		name, assetRef, assetKind, description, pool, createdAt string
		price                                                   int64
	)
	if err := row.Scan(&name, &price, &assetRef, &assetKind, &description, &pool, &createdAt); err != nil {
		return nil, err
	}

	created, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}

	return domain.RehydrateContentItem(name, price, assetRef, domain.AssetKind(assetKind), description, domain.Pool(pool), created), nil
}
