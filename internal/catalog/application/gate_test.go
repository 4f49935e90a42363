package application

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mirelabalan/fanvault/internal/catalog/domain"
	sharedDomain "github.com/mirelabalan/fanvault/internal/shared/domain"
	"github.com/mirelabalan/fanvault/internal/shared/infrastructure/outbox"
)

type fakeItemRepo struct {
	items map[string]*domain.ContentItem
}

func newFakeItemRepo() *fakeItemRepo {
	return &fakeItemRepo{items: make(map[string]*domain.ContentItem)}
}

func (r *fakeItemRepo) FindByName(ctx context.Context, name string) (*domain.ContentItem, error) {
	return r.items[name], nil
}

func (r *fakeItemRepo) Save(ctx context.Context, item *domain.ContentItem) error {
	r.items[item.Name()] = item
	return nil
}

func (r *fakeItemRepo) Delete(ctx context.Context, name string) error {
	delete(r.items, name)
	return nil
}

func (r *fakeItemRepo) ListByPool(ctx context.Context, pool domain.Pool) ([]*domain.ContentItem, error) {
	var result []*domain.ContentItem
	for _, item := range r.items {
		if item.Pool() == pool {
			result = append(result, item)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name() < result[j].Name() })
	return result, nil
}

func (r *fakeItemRepo) ListAll(ctx context.Context) ([]*domain.ContentItem, error) {
	var result []*domain.ContentItem
	for _, item := range r.items {
		result = append(result, item)
	}
	return result, nil
}

type fakeEntitlements struct {
	active        map[int64]bool
	owned         map[int64]map[string]bool
	itemPurchased map[string]bool
}

func newFakeEntitlements() *fakeEntitlements {
	return &fakeEntitlements{
		active:        make(map[int64]bool),
		owned:         make(map[int64]map[string]bool),
		itemPurchased: make(map[string]bool),
	}
}

func (f *fakeEntitlements) SubscriptionActive(ctx context.Context, userID int64) (bool, error) {
	return f.active[userID], nil
}

func (f *fakeEntitlements) Owns(ctx context.Context, userID int64, itemName string) (bool, error) {
	return f.owned[userID][itemName], nil
}

func (f *fakeEntitlements) ItemHasPurchases(ctx context.Context, itemName string) (bool, error) {
	return f.itemPurchased[itemName], nil
}

func (f *fakeEntitlements) setOwned(userID int64, itemName string) {
	if f.owned[userID] == nil {
		f.owned[userID] = make(map[string]bool)
	}
	f.owned[userID][itemName] = true
}

type noopUoW struct{}

func (noopUoW) Begin(ctx context.Context) (context.Context, error) { return ctx, nil }
func (noopUoW) Commit(ctx context.Context) error                   { return nil }
func (noopUoW) Rollback(ctx context.Context) error                 { return nil }

func newTestGate(t *testing.T) (*Gate, *fakeItemRepo, *fakeEntitlements, *outbox.InMemoryRepository) {
	t.Helper()
	repo := newFakeItemRepo()
	ents := newFakeEntitlements()
	outboxRepo := outbox.NewInMemoryRepository()
	gate := NewGate(repo, ents, outboxRepo, noopUoW{}, nil).
		WithClock(func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) })
	return gate, repo, ents, outboxRepo
}

func mustAdd(t *testing.T, gate *Gate, name string, price int64, pool domain.Pool) *domain.ContentItem {
	t.Helper()
	item, err := gate.AddItem(context.Background(), AddItemParams{
		Name:     name,
		Price:    price,
		AssetRef: name + ".jpg",
		Pool:     pool,
	})
	require.NoError(t, err)
	return item
}

func TestGate_ListPurchasable(t *testing.T) {
	gate, _, ents, _ := newTestGate(t)
	ctx := context.Background()

	mustAdd(t, gate, "pack_a", 10, domain.PoolIndividual)
	mustAdd(t, gate, "pack_b", 20, domain.PoolIndividual)
	mustAdd(t, gate, "members_only", 0, domain.PoolSubscription)
	ents.setOwned(42, "pack_a")

	items, err := gate.ListPurchasable(ctx, 42)

	require.NoError(t, err)
	require.Len(t, items, 2, "subscription-pool items are not purchasable")
	assert.Equal(t, "pack_a", items[0].Item.Name())
	assert.True(t, items[0].Owned, "owned items stay listed, flagged as owned")
	assert.False(t, items[1].Owned)
}

func TestGate_ListSubscriptionLibrary(t *testing.T) {
	gate, _, ents, _ := newTestGate(t)
	ctx := context.Background()

	mustAdd(t, gate, "members_only", 0, domain.PoolSubscription)
	mustAdd(t, gate, "pack_a", 10, domain.PoolIndividual)

	t.Run("denied without subscription", func(t *testing.T) {
		result, err := gate.ListSubscriptionLibrary(ctx, 42)
		require.NoError(t, err)
		assert.Equal(t, sharedDomain.DenialSubscriptionRequired, result.Denied)
		assert.Empty(t, result.Items)
	})

	t.Run("granted for active subscriber", func(t *testing.T) {
		ents.active[42] = true
		result, err := gate.ListSubscriptionLibrary(ctx, 42)
		require.NoError(t, err)
		assert.Empty(t, result.Denied)
		require.Len(t, result.Items, 1)
		assert.Equal(t, "members_only", result.Items[0].Name())
	})
}

func TestGate_ResolvePurchaseRequest(t *testing.T) {
	gate, _, ents, _ := newTestGate(t)
	ctx := context.Background()

	mustAdd(t, gate, "pack_a", 10, domain.PoolIndividual)
	mustAdd(t, gate, "members_only", 0, domain.PoolSubscription)
	ents.setOwned(42, "pack_a")

	tests := []struct {
		name   string
		userID int64
		item   string
		want   DecisionKind
	}{
		{"unknown item", 42, "ghost", DecisionNotFound},
		{"subscription-pool item", 42, "members_only", DecisionNotIndividual},
		{"already owned", 42, "pack_a", DecisionAlreadyOwned},
		{"fresh purchase", 7, "pack_a", DecisionProceed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision, err := gate.ResolvePurchaseRequest(ctx, tt.userID, tt.item)
			require.NoError(t, err)
			assert.Equal(t, tt.want, decision.Kind)
			if tt.want == DecisionProceed {
				require.NotNil(t, decision.Item)
				assert.Equal(t, tt.item, decision.Item.Name())
			} else {
				assert.Nil(t, decision.Item)
			}
		})
	}
}

func TestGate_AddItem(t *testing.T) {
	gate, _, _, outboxRepo := newTestGate(t)
	ctx := context.Background()

	item := mustAdd(t, gate, "pack_a", 10, domain.PoolIndividual)
	assert.Equal(t, "pack_a", item.Name())

	t.Run("emits published event", func(t *testing.T) {
		msgs, err := outboxRepo.GetUnpublished(ctx, 10)
		require.NoError(t, err)
		require.Len(t, msgs, 1)
		assert.Equal(t, domain.ItemPublishedRoutingKey, msgs[0].RoutingKey)
	})

	t.Run("rejects duplicate name", func(t *testing.T) {
		_, err := gate.AddItem(ctx, AddItemParams{Name: "pack_a", Price: 5, AssetRef: "x.jpg"})
		assert.ErrorIs(t, err, domain.ErrNameTaken)
	})
}

func TestGate_UpdateItem(t *testing.T) {
	gate, _, ents, _ := newTestGate(t)
	ctx := context.Background()

	mustAdd(t, gate, "pack_a", 10, domain.PoolIndividual)

	t.Run("updates price and description", func(t *testing.T) {
		price := int64(25)
		desc := "now cheaper"
		item, err := gate.UpdateItem(ctx, "pack_a", UpdateItemParams{Price: &price, Description: &desc})
		require.NoError(t, err)
		assert.Equal(t, int64(25), item.Price())
		assert.Equal(t, "now cheaper", item.Description())
	})

	t.Run("pool change allowed before any purchase", func(t *testing.T) {
		pool := domain.PoolSubscription
		item, err := gate.UpdateItem(ctx, "pack_a", UpdateItemParams{Pool: &pool})
		require.NoError(t, err)
		assert.Equal(t, domain.PoolSubscription, item.Pool())

		back := domain.PoolIndividual
		_, err = gate.UpdateItem(ctx, "pack_a", UpdateItemParams{Pool: &back})
		require.NoError(t, err)
	})

	t.Run("pool locked after first purchase", func(t *testing.T) {
		ents.itemPurchased["pack_a"] = true
		pool := domain.PoolSubscription
		_, err := gate.UpdateItem(ctx, "pack_a", UpdateItemParams{Pool: &pool})
		assert.ErrorIs(t, err, domain.ErrPoolLocked)
	})

	t.Run("missing item", func(t *testing.T) {
		price := int64(1)
		_, err := gate.UpdateItem(ctx, "ghost", UpdateItemParams{Price: &price})
		assert.ErrorIs(t, err, domain.ErrItemNotFound)
	})
}

func TestGate_RemoveItem(t *testing.T) {
	gate, repo, _, outboxRepo := newTestGate(t)
	ctx := context.Background()

	mustAdd(t, gate, "pack_a", 10, domain.PoolIndividual)

	require.NoError(t, gate.RemoveItem(ctx, "pack_a"))
	assert.Nil(t, repo.items["pack_a"])

	msgs, err := outboxRepo.GetUnpublished(ctx, 10)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, domain.ItemRemovedRoutingKey, msgs[1].RoutingKey)

	assert.ErrorIs(t, gate.RemoveItem(ctx, "pack_a"), domain.ErrItemNotFound)
}
