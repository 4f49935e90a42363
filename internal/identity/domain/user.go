package domain

import (
	"time"

	sharedDomain "github.com/mirelabalan/fanvault/internal/shared/domain"
)

// User is a storefront customer keyed by their chat-platform identifier.
// Users are created on first contact and never deleted; leaving the chat
// does not remove their purchase history.
type User struct {
	sharedDomain.BaseAggregateRoot
	id               int64
	username         string
	displayName      string
	joinedAt         time.Time
	totalSpent       int64
	interactionCount int64
	lastSeenAt       time.Time
}

// NewUser registers a user on first contact.
func NewUser(id int64, username, displayName string, now time.Time) *User {
	u := &User{
		BaseAggregateRoot: sharedDomain.NewBaseAggregateRoot(),
		id:                id,
		username:          username,
		displayName:       displayName,
		joinedAt:          now,
		interactionCount:  1,
		lastSeenAt:        now,
	}

	u.AddDomainEvent(NewUserRegistered(id, username))

	return u
}

// RehydrateUser recreates a user from persisted state.
func RehydrateUser(id int64, username, displayName string, joinedAt time.Time, totalSpent, interactionCount int64, lastSeenAt time.Time) *User {
	return &User{
		BaseAggregateRoot: sharedDomain.NewBaseAggregateRoot(),
		id:                id,
		username:          username,
		displayName:       displayName,
		joinedAt:          joinedAt,
		totalSpent:        totalSpent,
		interactionCount:  interactionCount,
		lastSeenAt:        lastSeenAt,
	}
}

func (u *User) ID() int64               { return u.id }
func (u *User) Username() string        { return u.username }
func (u *User) DisplayName() string     { return u.displayName }
func (u *User) JoinedAt() time.Time     { return u.joinedAt }
func (u *User) TotalSpent() int64       { return u.totalSpent }
func (u *User) InteractionCount() int64 { return u.interactionCount }
func (u *User) LastSeenAt() time.Time   { return u.lastSeenAt }

// Touch records an inbound interaction, refreshing the profile fields the
// chat platform sends with every update.
func (u *User) Touch(username, displayName string, now time.Time) {
	if username != "" {
		u.username = username
	}
	if displayName != "" {
		u.displayName = displayName
	}
	u.interactionCount++
	u.lastSeenAt = now
}

// AddSpend adds to the user's lifetime credit spend.
func (u *User) AddSpend(amount int64) {
	u.totalSpent += amount
}
