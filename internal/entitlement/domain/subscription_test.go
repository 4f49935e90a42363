package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const month = 30 * 24 * time.Hour

func TestNewSubscription(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	sub := NewSubscription(42, now, month)

	assert.True(t, sub.Active())
	assert.Equal(t, int64(1), sub.Renewals())
	assert.True(t, sub.ExpiresAt().Equal(now.Add(month)))
	assert.True(t, sub.IsCurrent(now))

	events := sub.DomainEvents()
	require.Len(t, events, 1)
	assert.Equal(t, SubscriptionStartedRoutingKey, events[0].RoutingKey())
}

func TestSubscription_Renew(t *testing.T) {
	start := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("early renewal extends from expiry", func(t *testing.T) {
		sub := NewSubscription(42, start, month)
		sub.ClearDomainEvents()

		day25 := start.Add(25 * 24 * time.Hour)
		sub.Renew(day25, month)

		assert.True(t, sub.ExpiresAt().Equal(start.Add(2*month)), "paying on day 25 still buys access through day 60")
		assert.Equal(t, int64(2), sub.Renewals())

		events := sub.DomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, SubscriptionRenewedRoutingKey, events[0].RoutingKey())
	})

	t.Run("lapsed renewal restarts from now", func(t *testing.T) {
		sub := NewSubscription(42, start, month)
		sub.ClearDomainEvents()

		day45 := start.Add(45 * 24 * time.Hour)
		sub.Deactivate(day45)
		sub.Renew(day45, month)

		assert.True(t, sub.Active())
		assert.True(t, sub.ExpiresAt().Equal(day45.Add(month)))
	})

	t.Run("expired but not yet deactivated restarts from now", func(t *testing.T) {
		sub := NewSubscription(42, start, month)

		day45 := start.Add(45 * 24 * time.Hour)
		sub.Renew(day45, month)

		assert.True(t, sub.ExpiresAt().Equal(day45.Add(month)))
	})
}

func TestSubscription_Deactivate(t *testing.T) {
	start := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	sub := NewSubscription(42, start, month)
	sub.ClearDomainEvents()

	day45 := start.Add(45 * 24 * time.Hour)

	assert.True(t, sub.Deactivate(day45))
	assert.False(t, sub.Active())
	require.Len(t, sub.DomainEvents(), 1)
	assert.Equal(t, SubscriptionLapsedRoutingKey, sub.DomainEvents()[0].RoutingKey())

	sub.ClearDomainEvents()
	assert.False(t, sub.Deactivate(day45), "second deactivation is a no-op")
	assert.Empty(t, sub.DomainEvents())
}

func TestSubscription_DaysRemaining(t *testing.T) {
	start := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	sub := NewSubscription(42, start, month)

	tests := []struct {
		name string
		at   time.Time
		want int
	}{
		{"just started", start, 30},
		{"exact day boundary", start.Add(10 * 24 * time.Hour), 20},
		{"partial day rounds up", start.Add(29*24*time.Hour + 12*time.Hour), 1},
		{"expired", start.Add(31 * 24 * time.Hour), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sub.DaysRemaining(tt.at))
		})
	}
}

func TestNewPurchase(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	p := NewPurchase(42, "sunset_pack", 50, now)

	assert.Equal(t, int64(42), p.UserID())
	assert.Equal(t, "sunset_pack", p.ItemName())
	assert.Equal(t, int64(50), p.PricePaid())

	events := p.DomainEvents()
	require.Len(t, events, 1)
	assert.Equal(t, PurchaseRecordedRoutingKey, events[0].RoutingKey())
	assert.Equal(t, p.ID().String(), events[0].AggregateID())
}
