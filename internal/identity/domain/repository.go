package domain

import "context"

// Stats aggregates storefront-wide customer figures.
type Stats struct {
	TotalUsers        int64
	TotalSpent        int64
	TotalInteractions int64
}

// Spender is a row in the top-spenders report.
type Spender struct {
	UserID     int64
	Username   string
	TotalSpent int64
}

// Repository handles persistence for users.
type Repository interface {
	// FindByID retrieves a user by their chat-platform ID.
	// Returns nil if the user does not exist.
	FindByID(ctx context.Context, id int64) (*User, error)

	// Save upserts a user.
	Save(ctx context.Context, user *User) error

	// Stats returns storefront-wide totals.
	Stats(ctx context.Context) (Stats, error)

	// TopSpenders returns the users with the highest lifetime spend.
	TopSpenders(ctx context.Context, limit int) ([]Spender, error)
}
