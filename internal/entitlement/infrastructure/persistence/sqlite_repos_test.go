package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/mirelabalan/fanvault/internal/entitlement/domain"
	"github.com/mirelabalan/fanvault/internal/shared/infrastructure/migrations"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, migrations.RunSQLiteMigrations(context.Background(), db))
	return db
}

func TestSQLiteSubscriptionRepository(t *testing.T) {
	repo := NewSQLiteSubscriptionRepository(setupTestDB(t))
	ctx := context.Background()
	start := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	period := 30 * 24 * time.Hour

	t.Run("absent row yields nil", func(t *testing.T) {
		sub, err := repo.FindByUserID(ctx, 42)
		require.NoError(t, err)
		assert.Nil(t, sub)
	})

	t.Run("upsert and find", func(t *testing.T) {
		sub := domain.NewSubscription(42, start, period)
		require.NoError(t, repo.Upsert(ctx, sub))

		found, err := repo.FindByUserID(ctx, 42)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, int64(42), found.UserID())
		assert.True(t, found.Active())
		assert.Equal(t, int64(1), found.Renewals())
		assert.True(t, found.ExpiresAt().Equal(start.Add(period)))
	})

	t.Run("upsert updates in place", func(t *testing.T) {
		sub, err := repo.FindByUserID(ctx, 42)
		require.NoError(t, err)
		require.NotNil(t, sub)

		day25 := start.Add(25 * 24 * time.Hour)
		sub.Renew(day25, period)
		require.NoError(t, repo.Upsert(ctx, sub))

		found, err := repo.FindByUserID(ctx, 42)
		require.NoError(t, err)
		assert.Equal(t, int64(2), found.Renewals())
		assert.True(t, found.ExpiresAt().Equal(start.Add(2*period)))
		assert.True(t, found.StartedAt().Equal(start), "started_at survives renewal")
	})

	t.Run("deactivation round-trips", func(t *testing.T) {
		sub, err := repo.FindByUserID(ctx, 42)
		require.NoError(t, err)

		sub.Deactivate(start.Add(90 * 24 * time.Hour))
		require.NoError(t, repo.Upsert(ctx, sub))

		found, err := repo.FindByUserID(ctx, 42)
		require.NoError(t, err)
		assert.False(t, found.Active())
	})
}

func TestSQLitePurchaseRepository(t *testing.T) {
	repo := NewSQLitePurchaseRepository(setupTestDB(t))
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("first insert creates", func(t *testing.T) {
		created, err := repo.Insert(ctx, domain.NewPurchase(42, "sunset_pack", 50, now))
		require.NoError(t, err)
		assert.True(t, created)
	})

	t.Run("duplicate insert is a no-op", func(t *testing.T) {
		created, err := repo.Insert(ctx, domain.NewPurchase(42, "sunset_pack", 50, now.Add(time.Hour)))
		require.NoError(t, err)
		assert.False(t, created)
	})

	t.Run("exists", func(t *testing.T) {
		owns, err := repo.Exists(ctx, 42, "sunset_pack")
		require.NoError(t, err)
		assert.True(t, owns)

		owns, err = repo.Exists(ctx, 7, "sunset_pack")
		require.NoError(t, err)
		assert.False(t, owns)
	})

	t.Run("exists for item", func(t *testing.T) {
		has, err := repo.ExistsForItem(ctx, "sunset_pack")
		require.NoError(t, err)
		assert.True(t, has)

		has, err = repo.ExistsForItem(ctx, "ghost")
		require.NoError(t, err)
		assert.False(t, has)
	})

	t.Run("find by user newest first", func(t *testing.T) {
		_, err := repo.Insert(ctx, domain.NewPurchase(42, "beach_set", 30, now.Add(2*time.Hour)))
		require.NoError(t, err)

		purchases, err := repo.FindByUser(ctx, 42)
		require.NoError(t, err)
		require.Len(t, purchases, 2)
		assert.Equal(t, "beach_set", purchases[0].ItemName())
		assert.Equal(t, "sunset_pack", purchases[1].ItemName())
		assert.Equal(t, int64(50), purchases[1].PricePaid())
	})
}
