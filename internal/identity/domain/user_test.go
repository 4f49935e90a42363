package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	u := NewUser(42, "fan_one", "Fan One", now)

	assert.Equal(t, int64(42), u.ID())
	assert.Equal(t, "fan_one", u.Username())
	assert.Equal(t, "Fan One", u.DisplayName())
	assert.Equal(t, now, u.JoinedAt())
	assert.Equal(t, now, u.LastSeenAt())
	assert.Equal(t, int64(1), u.InteractionCount())
	assert.Equal(t, int64(0), u.TotalSpent())

	events := u.DomainEvents()
	require.Len(t, events, 1)
	assert.Equal(t, UserRegisteredRoutingKey, events[0].RoutingKey())
	assert.Equal(t, "42", events[0].AggregateID())
}

func TestUser_Touch(t *testing.T) {
	joined := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	u := NewUser(42, "fan_one", "Fan One", joined)

	later := joined.Add(48 * time.Hour)
	u.Touch("fan_one_renamed", "", later)

	assert.Equal(t, "fan_one_renamed", u.Username())
	assert.Equal(t, "Fan One", u.DisplayName(), "empty display name keeps previous value")
	assert.Equal(t, int64(2), u.InteractionCount())
	assert.Equal(t, later, u.LastSeenAt())
	assert.Equal(t, joined, u.JoinedAt())
}

func TestUser_AddSpend(t *testing.T) {
	u := NewUser(42, "fan_one", "Fan One", time.Now())

	u.AddSpend(100)
	u.AddSpend(50)

	assert.Equal(t, int64(150), u.TotalSpent())
}

func TestRehydrateUser(t *testing.T) {
	joined := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	seen := joined.AddDate(0, 6, 0)

	u := RehydrateUser(7, "old_fan", "Old Fan", joined, 900, 33, seen)

	assert.Equal(t, int64(7), u.ID())
	assert.Equal(t, int64(900), u.TotalSpent())
	assert.Equal(t, int64(33), u.InteractionCount())
	assert.Empty(t, u.DomainEvents(), "rehydration must not raise events")
}
