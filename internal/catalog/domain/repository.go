package domain

import "context"

// Repository handles persistence for catalog items.
type Repository interface {
	// FindByName retrieves an item by its unique name.
	// Returns nil if the item does not exist.
	FindByName(ctx context.Context, name string) (*ContentItem, error)

	// Save upserts an item.
	Save(ctx context.Context, item *ContentItem) error

	// Delete removes an item from the catalog.
	Delete(ctx context.Context, name string) error

	// ListByPool returns all items in the given pool, newest first.
	ListByPool(ctx context.Context, pool Pool) ([]*ContentItem, error)

	// ListAll returns the whole catalog, newest first.
	ListAll(ctx context.Context) ([]*ContentItem, error)
}
