package application

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalogDomain "github.com/mirelabalan/fanvault/internal/catalog/domain"
	"github.com/mirelabalan/fanvault/internal/entitlement/domain"
	identityDomain "github.com/mirelabalan/fanvault/internal/identity/domain"
	sharedDomain "github.com/mirelabalan/fanvault/internal/shared/domain"
	"github.com/mirelabalan/fanvault/internal/shared/infrastructure/outbox"
)

type fakeSubRepo struct {
	subs map[int64]*domain.Subscription
}

func newFakeSubRepo() *fakeSubRepo {
	return &fakeSubRepo{subs: make(map[int64]*domain.Subscription)}
}

func (r *fakeSubRepo) FindByUserID(ctx context.Context, userID int64) (*domain.Subscription, error) {
	return r.subs[userID], nil
}

func (r *fakeSubRepo) FindByUserIDForUpdate(ctx context.Context, userID int64) (*domain.Subscription, error) {
	return r.subs[userID], nil
}

func (r *fakeSubRepo) Upsert(ctx context.Context, sub *domain.Subscription) error {
	r.subs[sub.UserID()] = sub
	return nil
}

type purchaseKey struct {
	userID   int64
	itemName string
}

type fakePurchaseRepo struct {
	purchases map[purchaseKey]*domain.Purchase
}

func newFakePurchaseRepo() *fakePurchaseRepo {
	return &fakePurchaseRepo{purchases: make(map[purchaseKey]*domain.Purchase)}
}

func (r *fakePurchaseRepo) Insert(ctx context.Context, p *domain.Purchase) (bool, error) {
	key := purchaseKey{p.UserID(), p.ItemName()}
	if _, ok := r.purchases[key]; ok {
		return false, nil
	}
	r.purchases[key] = p
	return true, nil
}

func (r *fakePurchaseRepo) Exists(ctx context.Context, userID int64, itemName string) (bool, error) {
	_, ok := r.purchases[purchaseKey{userID, itemName}]
	return ok, nil
}

func (r *fakePurchaseRepo) ExistsForItem(ctx context.Context, itemName string) (bool, error) {
	for key := range r.purchases {
		if key.itemName == itemName {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakePurchaseRepo) FindByUser(ctx context.Context, userID int64) ([]*domain.Purchase, error) {
	var result []*domain.Purchase
	for key, p := range r.purchases {
		if key.userID == userID {
			result = append(result, p)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].PurchasedAt().After(result[j].PurchasedAt())
	})
	return result, nil
}

type fakeUserRepo struct {
	users map[int64]*identityDomain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int64]*identityDomain.User)}
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id int64) (*identityDomain.User, error) {
	return r.users[id], nil
}

func (r *fakeUserRepo) Save(ctx context.Context, user *identityDomain.User) error {
	r.users[user.ID()] = user
	return nil
}

func (r *fakeUserRepo) Stats(ctx context.Context) (identityDomain.Stats, error) {
	return identityDomain.Stats{}, nil
}

func (r *fakeUserRepo) TopSpenders(ctx context.Context, limit int) ([]identityDomain.Spender, error) {
	return nil, nil
}

type noopUoW struct{}

func (noopUoW) Begin(ctx context.Context) (context.Context, error) { return ctx, nil }
func (noopUoW) Commit(ctx context.Context) error                   { return nil }
func (noopUoW) Rollback(ctx context.Context) error                 { return nil }

type engineFixture struct {
	engine    *Engine
	subs      *fakeSubRepo
	purchases *fakePurchaseRepo
	users     *fakeUserRepo
	outbox    *outbox.InMemoryRepository
	clock     *time.Time
}

func newEngineFixture(t *testing.T) *engineFixture {
	t.Helper()

	start := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := &start

	subs := newFakeSubRepo()
	purchases := newFakePurchaseRepo()
	users := newFakeUserRepo()
	outboxRepo := outbox.NewInMemoryRepository()

	engine := NewEngine(subs, purchases, users, outboxRepo, noopUoW{}, 30*24*time.Hour, nil).
		WithClock(func() time.Time { return *clock })

	return &engineFixture{
		engine:    engine,
		subs:      subs,
		purchases: purchases,
		users:     users,
		outbox:    outboxRepo,
		clock:     clock,
	}
}

func (f *engineFixture) advance(d time.Duration) {
	*f.clock = f.clock.Add(d)
}

func (f *engineFixture) routingKeys(t *testing.T) []string {
	t.Helper()
	msgs, err := f.outbox.GetUnpublished(context.Background(), 100)
	require.NoError(t, err)
	keys := make([]string, len(msgs))
	for i, m := range msgs {
		keys[i] = m.RoutingKey
	}
	return keys
}

func testItem(t *testing.T, name string, price int64, pool catalogDomain.Pool) *catalogDomain.ContentItem {
	t.Helper()
	item, err := catalogDomain.NewContentItem(name, price, name+".jpg", "", "", pool, time.Now())
	require.NoError(t, err)
	return item
}

func TestEngine_SubscriptionStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("never subscribed", func(t *testing.T) {
		f := newEngineFixture(t)

		status, err := f.engine.SubscriptionStatus(ctx, 42)
		require.NoError(t, err)
		assert.False(t, status.Active)
		assert.Zero(t, status.DaysRemaining)
	})

	t.Run("active subscription", func(t *testing.T) {
		f := newEngineFixture(t)
		_, err := f.engine.Renew(ctx, 42)
		require.NoError(t, err)

		f.advance(10 * 24 * time.Hour)

		status, err := f.engine.SubscriptionStatus(ctx, 42)
		require.NoError(t, err)
		assert.True(t, status.Active)
		assert.Equal(t, 20, status.DaysRemaining)
		assert.Equal(t, int64(1), status.Renewals)
	})

	t.Run("expired row is deactivated on first check", func(t *testing.T) {
		f := newEngineFixture(t)
		_, err := f.engine.Renew(ctx, 42)
		require.NoError(t, err)

		f.advance(45 * 24 * time.Hour)

		status, err := f.engine.SubscriptionStatus(ctx, 42)
		require.NoError(t, err)
		assert.False(t, status.Active)
		assert.False(t, f.subs.subs[42].Active(), "the row itself is deactivated")

		keys := f.routingKeys(t)
		assert.Equal(t, []string{
			domain.SubscriptionStartedRoutingKey,
			domain.SubscriptionLapsedRoutingKey,
		}, keys)

		// Checking again raises no second lapse event.
		_, err = f.engine.SubscriptionStatus(ctx, 42)
		require.NoError(t, err)
		assert.Len(t, f.routingKeys(t), 2)
	})
}

func TestEngine_Renew(t *testing.T) {
	ctx := context.Background()

	t.Run("first payment starts the subscription", func(t *testing.T) {
		f := newEngineFixture(t)

		sub, err := f.engine.Renew(ctx, 42)
		require.NoError(t, err)
		assert.True(t, sub.Active())
		assert.Equal(t, int64(1), sub.Renewals())
		assert.Equal(t, []string{domain.SubscriptionStartedRoutingKey}, f.routingKeys(t))
	})

	t.Run("early renewal extends from expiry", func(t *testing.T) {
		f := newEngineFixture(t)
		first, err := f.engine.Renew(ctx, 42)
		require.NoError(t, err)
		firstExpiry := first.ExpiresAt()

		f.advance(25 * 24 * time.Hour)

		sub, err := f.engine.Renew(ctx, 42)
		require.NoError(t, err)
		assert.True(t, sub.ExpiresAt().Equal(firstExpiry.Add(30*24*time.Hour)),
			"renewing on day 25 keeps access through day 60")
		assert.Equal(t, int64(2), sub.Renewals())
	})

	t.Run("renewal after lapse restarts from now", func(t *testing.T) {
		f := newEngineFixture(t)
		_, err := f.engine.Renew(ctx, 42)
		require.NoError(t, err)

		f.advance(45 * 24 * time.Hour)

		sub, err := f.engine.Renew(ctx, 42)
		require.NoError(t, err)
		assert.True(t, sub.ExpiresAt().Equal(f.clock.Add(30*24*time.Hour)))
		assert.True(t, sub.Active())
	})
}

func TestEngine_RecordPurchase(t *testing.T) {
	ctx := context.Background()
	item := testItem(t, "sunset_pack", 50, catalogDomain.PoolIndividual)

	t.Run("first purchase is created", func(t *testing.T) {
		f := newEngineFixture(t)
		f.users.users[42] = identityDomain.RehydrateUser(42, "ana", "Ana", time.Now(), 0, 1, time.Now())

		outcome, err := f.engine.RecordPurchase(ctx, 42, item)
		require.NoError(t, err)
		assert.Equal(t, PurchaseCreated, outcome)

		owns, err := f.engine.Owns(ctx, 42, "sunset_pack")
		require.NoError(t, err)
		assert.True(t, owns)

		assert.Equal(t, int64(50), f.users.users[42].TotalSpent(), "purchase bumps lifetime spend")
		assert.Equal(t, []string{domain.PurchaseRecordedRoutingKey}, f.routingKeys(t))
	})

	t.Run("second purchase is a no-op", func(t *testing.T) {
		f := newEngineFixture(t)
		f.users.users[42] = identityDomain.RehydrateUser(42, "ana", "Ana", time.Now(), 0, 1, time.Now())

		_, err := f.engine.RecordPurchase(ctx, 42, item)
		require.NoError(t, err)

		outcome, err := f.engine.RecordPurchase(ctx, 42, item)
		require.NoError(t, err)
		assert.Equal(t, PurchaseAlreadyOwned, outcome)

		assert.Equal(t, int64(50), f.users.users[42].TotalSpent(), "spend counted once")
		assert.Len(t, f.routingKeys(t), 1, "no duplicate event")
	})

	t.Run("unknown user still gets the entitlement", func(t *testing.T) {
		f := newEngineFixture(t)

		outcome, err := f.engine.RecordPurchase(ctx, 7, item)
		require.NoError(t, err)
		assert.Equal(t, PurchaseCreated, outcome)
	})
}

func TestEngine_CanAccessFree(t *testing.T) {
	ctx := context.Background()
	individual := testItem(t, "sunset_pack", 50, catalogDomain.PoolIndividual)
	exclusive := testItem(t, "members_clip", 0, catalogDomain.PoolSubscription)

	f := newEngineFixture(t)

	t.Run("individual item requires ownership", func(t *testing.T) {
		ok, reason, err := f.engine.CanAccessFree(ctx, 42, individual)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Equal(t, sharedDomain.DenialNotOwned, reason)

		_, err = f.engine.RecordPurchase(ctx, 42, individual)
		require.NoError(t, err)

		ok, reason, err = f.engine.CanAccessFree(ctx, 42, individual)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Empty(t, reason)
	})

	t.Run("exclusive item requires an active subscription", func(t *testing.T) {
		ok, reason, err := f.engine.CanAccessFree(ctx, 42, exclusive)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Equal(t, sharedDomain.DenialSubscriptionRequired, reason)

		_, err = f.engine.Renew(ctx, 42)
		require.NoError(t, err)

		ok, _, err = f.engine.CanAccessFree(ctx, 42, exclusive)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("ownership does not open the exclusive pool", func(t *testing.T) {
		ok, reason, err := f.engine.CanAccessFree(ctx, 7, exclusive)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Equal(t, sharedDomain.DenialSubscriptionRequired, reason)
	})
}

func TestEngine_ItemHasPurchases(t *testing.T) {
	ctx := context.Background()
	f := newEngineFixture(t)
	item := testItem(t, "sunset_pack", 50, catalogDomain.PoolIndividual)

	has, err := f.engine.ItemHasPurchases(ctx, "sunset_pack")
	require.NoError(t, err)
	assert.False(t, has)

	_, err = f.engine.RecordPurchase(ctx, 42, item)
	require.NoError(t, err)

	has, err = f.engine.ItemHasPurchases(ctx, "sunset_pack")
	require.NoError(t, err)
	assert.True(t, has)
}
