package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mirelabalan/fanvault/internal/catalog/domain"
	sharedPersistence "github.com/mirelabalan/fanvault/internal/shared/infrastructure/persistence"
)

// PostgresItemRepository handles persistence for catalog items using PostgreSQL.
type PostgresItemRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresItemRepository creates a new PostgresItemRepository.
func NewPostgresItemRepository(pool *pgxpool.Pool) *PostgresItemRepository {
	return &PostgresItemRepository{pool: pool}
}

var _ domain.Repository = (*PostgresItemRepository)(nil)

const pgSelectItem = `
	SELECT name, price, asset_ref, asset_kind, description, pool, created_at
	FROM content_items
`

// FindByName retrieves an item by its unique name. Returns nil if absent.
func (r *PostgresItemRepository) FindByName(ctx context.Context, name string) (*domain.ContentItem, error) {
	exec := sharedPersistence.Executor(ctx, r.pool)

	row := exec.QueryRow(ctx, pgSelectItem+` WHERE name = $1`, name)

	var i itemRow
	err := row.Scan(&i.name, &i.price, &i.assetRef, &i.assetKind, &i.description, &i.pool, &i.createdAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query item: %w", err)
	}
	return i.toDomain(), nil
}

// Save upserts an item.
func (r *PostgresItemRepository) Save(ctx context.Context, item *domain.ContentItem) error {
	exec := sharedPersistence.Executor(ctx, r.pool)

	_, err := exec.Exec(ctx, `
		INSERT INTO content_items (name, price, asset_ref, asset_kind, description, pool, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (name) DO UPDATE SET
			price = EXCLUDED.price,
			asset_ref = EXCLUDED.asset_ref,
			asset_kind = EXCLUDED.asset_kind,
			description = EXCLUDED.description,
			pool = EXCLUDED.pool
	`,
		item.Name(),
		item.Price(),
		item.AssetRef(),
		string(item.AssetKind()),
		item.Description(),
		string(item.Pool()),
		item.CreatedAt(),
	)
	if err != nil {
		return fmt.Errorf("save item: %w", err)
	}
	return nil
}

// Delete removes an item from the catalog.
func (r *PostgresItemRepository) Delete(ctx context.Context, name string) error {
	exec := sharedPersistence.Executor(ctx, r.pool)

	if _, err := exec.Exec(ctx, `DELETE FROM content_items WHERE name = $1`, name); err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	return nil
}

// ListByPool returns all items in the given pool, newest first.
func (r *PostgresItemRepository) ListByPool(ctx context.Context, pool domain.Pool) ([]*domain.ContentItem, error) {
	exec := sharedPersistence.Executor(ctx, r.pool)

	rows, err := exec.Query(ctx, pgSelectItem+` WHERE pool = $1 ORDER BY created_at DESC, name`, string(pool))
	if err != nil {
		return nil, fmt.Errorf("list items by pool: %w", err)
	}
	defer rows.Close()

	return collectPgItems(rows)
}

// ListAll returns the whole catalog, newest first.
func (r *PostgresItemRepository) ListAll(ctx context.Context) ([]*domain.ContentItem, error) {
	exec := sharedPersistence.Executor(ctx, r.pool)

	rows, err := exec.Query(ctx, pgSelectItem+` ORDER BY created_at DESC, name`)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	return collectPgItems(rows)
}

func collectPgItems(rows pgx.Rows) ([]*domain.ContentItem, error) {
	var items []*domain.ContentItem
	for rows.Next() {
		var i itemRow
		if err := rows.Scan(&i.name, &i.price, &i.assetRef, &i.assetKind, &i.description, &i.pool, &i.createdAt); err != nil {
			return nil, err
		}
		items = append(items, i.toDomain())
	}
	return items, rows.Err()
}

type itemRow struct {
	name        string
	price       int64
	assetRef    string
	assetKind   string
	description string
	pool        string
	createdAt   time.Time
}

func (i itemRow) toDomain() *domain.ContentItem {
	return domain.RehydrateContentItem(i.name, i.price, i.assetRef, domain.AssetKind(i.assetKind), i.description, domain.Pool(i.pool), i.createdAt)
}
