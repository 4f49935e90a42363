// Package domain holds the entitlement ledger: subscriptions and
// per-item purchases.
package domain

import (
	"time"

	sharedDomain "github.com/mirelabalan/fanvault/internal/shared/domain"
)

// Subscription is a user's rolling all-access pass. One row per user;
// lapsing deactivates the row, it is never deleted.
type Subscription struct {
	sharedDomain.BaseAggregateRoot
	userID    int64
	startedAt time.Time
	expiresAt time.Time
	active    bool
	renewals  int64
	updatedAt time.Time
}

// NewSubscription starts a subscription for a user's first payment.
func NewSubscription(userID int64, now time.Time, period time.Duration) *Subscription {
	s := &Subscription{
		BaseAggregateRoot: sharedDomain.NewBaseAggregateRoot(),
		userID:            userID,
		startedAt:         now,
		expiresAt:         now.Add(period),
		active:            true,
		renewals:          1,
		updatedAt:         now,
	}

	s.AddDomainEvent(NewSubscriptionStarted(userID, s.expiresAt))

	return s
}

// RehydrateSubscription recreates a subscription from persisted state.
func RehydrateSubscription(userID int64, startedAt, expiresAt time.Time, active bool, renewals int64, updatedAt time.Time) *Subscription {
	return &Subscription{
		BaseAggregateRoot: sharedDomain.NewBaseAggregateRoot(),
		userID:            userID,
		startedAt:         startedAt,
		expiresAt:         expiresAt,
		active:            active,
		renewals:          renewals,
		updatedAt:         updatedAt,
	}
}

func (s *Subscription) UserID() int64        { return s.userID }
func (s *Subscription) StartedAt() time.Time { return s.startedAt }
func (s *Subscription) ExpiresAt() time.Time { return s.expiresAt }
func (s *Subscription) Active() bool         { return s.active }
func (s *Subscription) Renewals() int64      { return s.renewals }
func (s *Subscription) UpdatedAt() time.Time { return s.updatedAt }

// IsCurrent reports whether the subscription grants access at the given
// instant.
func (s *Subscription) IsCurrent(now time.Time) bool {
	return s.active && s.expiresAt.After(now)
}

// Renew extends the subscription by one period. A current subscription
// extends from its expiry, so renewing early never shortens the pass.
// A lapsed subscription restarts from now.
func (s *Subscription) Renew(now time.Time, period time.Duration) {
	if s.IsCurrent(now) {
		s.expiresAt = s.expiresAt.Add(period)
	} else {
		s.expiresAt = now.Add(period)
	}
	s.active = true
	s.renewals++
	s.updatedAt = now

	s.AddDomainEvent(NewSubscriptionRenewed(s.userID, s.expiresAt, s.renewals))
}

// Deactivate marks an expired subscription inactive. Returns false when
// the subscription was already inactive, so repeated status checks do
// not raise duplicate events.
func (s *Subscription) Deactivate(now time.Time) bool {
	if !s.active {
		return false
	}
	s.active = false
	s.updatedAt = now

	s.AddDomainEvent(NewSubscriptionLapsed(s.userID, s.expiresAt))

	return true
}

// DaysRemaining returns the whole days of access left, rounding partial
// days up so a pass expiring tomorrow morning still reads as one day.
func (s *Subscription) DaysRemaining(now time.Time) int {
	if !s.IsCurrent(now) {
		return 0
	}
	remaining := s.expiresAt.Sub(now)
	days := int(remaining / (24 * time.Hour))
	if remaining%(24*time.Hour) > 0 {
		days++
	}
	return days
}
