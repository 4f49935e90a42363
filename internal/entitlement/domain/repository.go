package domain

import "context"

// SubscriptionRepository handles persistence for subscriptions.
type SubscriptionRepository interface {
	// FindByUserID retrieves a user's subscription row.
	// Returns nil if the user never subscribed.
	FindByUserID(ctx context.Context, userID int64) (*Subscription, error)

	// FindByUserIDForUpdate retrieves the subscription row with a write
	// lock where the backend supports one, so concurrent renewals
	// serialize instead of clobbering each other.
	FindByUserIDForUpdate(ctx context.Context, userID int64) (*Subscription, error)

	// Upsert writes the subscription row.
	Upsert(ctx context.Context, sub *Subscription) error
}

// PurchaseRepository handles persistence for purchases.
type PurchaseRepository interface {
	// Insert records a purchase. Returns false without error when the
	// user already owns the item.
	Insert(ctx context.Context, purchase *Purchase) (bool, error)

	// Exists reports whether the user owns the item.
	Exists(ctx context.Context, userID int64, itemName string) (bool, error)

	// ExistsForItem reports whether any user has purchased the item.
	ExistsForItem(ctx context.Context, itemName string) (bool, error)

	// FindByUser returns the user's purchases, newest first.
	FindByUser(ctx context.Context, userID int64) ([]*Purchase, error)
}
