package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mirelabalan/fanvault/internal/identity/domain"
	"github.com/mirelabalan/fanvault/internal/shared/infrastructure/outbox"
)

type fakeUserRepo struct {
	users map[int64]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int64]*domain.User)}
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.users[id], nil
}

func (r *fakeUserRepo) Save(ctx context.Context, user *domain.User) error {
	r.users[user.ID()] = user
	return nil
}

func (r *fakeUserRepo) Stats(ctx context.Context) (domain.Stats, error) {
	return domain.Stats{TotalUsers: int64(len(r.users))}, nil
}

func (r *fakeUserRepo) TopSpenders(ctx context.Context, limit int) ([]domain.Spender, error) {
	return nil, nil
}

type noopUoW struct{}

func (noopUoW) Begin(ctx context.Context) (context.Context, error) { return ctx, nil }
func (noopUoW) Commit(ctx context.Context) error                   { return nil }
func (noopUoW) Rollback(ctx context.Context) error                 { return nil }

func TestService_Touch_RegistersNewUser(t *testing.T) {
	repo := newFakeUserRepo()
	outboxRepo := outbox.NewInMemoryRepository()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := NewService(repo, outboxRepo, noopUoW{}, nil).WithClock(func() time.Time { return now })

	user, err := svc.Touch(context.Background(), 42, "fan_one", "Fan One")

	require.NoError(t, err)
	assert.Equal(t, int64(1), user.InteractionCount())
	assert.Equal(t, now, user.JoinedAt())

	msgs, err := outboxRepo.GetUnpublished(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, domain.UserRegisteredRoutingKey, msgs[0].RoutingKey)
}

func TestService_Touch_ExistingUserBumpsCounters(t *testing.T) {
	repo := newFakeUserRepo()
	outboxRepo := outbox.NewInMemoryRepository()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := NewService(repo, outboxRepo, noopUoW{}, nil).WithClock(func() time.Time { return now })

	_, err := svc.Touch(context.Background(), 42, "fan_one", "Fan One")
	require.NoError(t, err)

	now = now.Add(time.Hour)
	user, err := svc.Touch(context.Background(), 42, "fan_one", "Fan One")

	require.NoError(t, err)
	assert.Equal(t, int64(2), user.InteractionCount())

	// Only the first contact emits a registration event.
	msgs, err := outboxRepo.GetUnpublished(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, msgs, 1)
}
