package application

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalogApp "github.com/mirelabalan/fanvault/internal/catalog/application"
	catalogDomain "github.com/mirelabalan/fanvault/internal/catalog/domain"
	"github.com/mirelabalan/fanvault/internal/ingestion/domain"
)

type fakeStore struct {
	mu       sync.Mutex
	sessions map[int64]*domain.Session
}

func newFakeStore() *fakeStore {
	return &fakeStore{sessions: make(map[int64]*domain.Session)}
}

func (s *fakeStore) Get(ctx context.Context, operatorID int64) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions[operatorID], nil
}

func (s *fakeStore) Put(ctx context.Context, session *domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.OperatorID] = session
	return nil
}

func (s *fakeStore) Delete(ctx context.Context, operatorID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, operatorID)
	return nil
}

type fakeCatalog struct {
	items      map[string]*catalogDomain.ContentItem
	addErr     error
	lastParams catalogApp.AddItemParams
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{items: make(map[string]*catalogDomain.ContentItem)}
}

func (c *fakeCatalog) FindItem(ctx context.Context, name string) (*catalogDomain.ContentItem, error) {
	return c.items[name], nil
}

func (c *fakeCatalog) AddItem(ctx context.Context, params catalogApp.AddItemParams) (*catalogDomain.ContentItem, error) {
	if c.addErr != nil {
		return nil, c.addErr
	}
	c.lastParams = params
	item, err := catalogDomain.NewContentItem(params.Name, params.Price, params.AssetRef, params.AssetKind, params.Description, params.Pool, time.Now())
	if err != nil {
		return nil, err
	}
	c.items[params.Name] = item
	return item, nil
}

func newTestService(t *testing.T) (*Service, *fakeStore, *fakeCatalog) {
	t.Helper()
	store := newFakeStore()
	catalog := newFakeCatalog()
	svc := NewService(store, catalog, nil).
		WithClock(func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) })
	return svc, store, catalog
}

func TestService_FullIndividualFlow(t *testing.T) {
	svc, store, catalog := newTestService(t)
	ctx := context.Background()

	_, err := svc.Start(ctx, 1, catalogDomain.PoolIndividual)
	require.NoError(t, err)

	_, err = svc.SubmitAsset(ctx, 1, "sunset.jpg")
	require.NoError(t, err)

	progress, err := svc.SubmitText(ctx, 1, "sunset_pack")
	require.NoError(t, err)
	assert.Nil(t, progress.Published)
	assert.Equal(t, domain.StepAwaitingPrice, progress.Session.Step)

	progress, err = svc.SubmitText(ctx, 1, "50")
	require.NoError(t, err)
	assert.Equal(t, domain.StepAwaitingDescription, progress.Session.Step)

	progress, err = svc.SubmitText(ctx, 1, "beach photos")
	require.NoError(t, err)
	require.NotNil(t, progress.Published)
	assert.Equal(t, "sunset_pack", progress.Published.Name())
	assert.Equal(t, int64(50), catalog.lastParams.Price)
	assert.Equal(t, catalogDomain.AssetPhoto, catalog.lastParams.AssetKind)

	assert.Nil(t, store.sessions[1], "publish ends the session")
}

func TestService_SubscriptionFlowSkipsPrice(t *testing.T) {
	svc, _, catalog := newTestService(t)
	ctx := context.Background()

	_, err := svc.Start(ctx, 1, catalogDomain.PoolSubscription)
	require.NoError(t, err)
	_, err = svc.SubmitAsset(ctx, 1, "clip.mp4")
	require.NoError(t, err)

	progress, err := svc.SubmitText(ctx, 1, "members_clip")
	require.NoError(t, err)
	assert.Equal(t, domain.StepAwaitingDescription, progress.Session.Step)

	progress, err = svc.SubmitText(ctx, 1, "subscribers only")
	require.NoError(t, err)
	require.NotNil(t, progress.Published)
	assert.Equal(t, catalogDomain.PoolSubscription, catalog.lastParams.Pool)
	assert.Zero(t, catalog.lastParams.Price)
}

func TestService_NameCollision(t *testing.T) {
	svc, store, catalog := newTestService(t)
	ctx := context.Background()

	taken, err := catalogDomain.NewContentItem("sunset_pack", 10, "x.jpg", "", "", catalogDomain.PoolIndividual, time.Now())
	require.NoError(t, err)
	catalog.items["sunset_pack"] = taken

	_, err = svc.Start(ctx, 1, catalogDomain.PoolIndividual)
	require.NoError(t, err)
	_, err = svc.SubmitAsset(ctx, 1, "a.jpg")
	require.NoError(t, err)

	_, err = svc.SubmitText(ctx, 1, "sunset_pack")
	assert.ErrorIs(t, err, catalogDomain.ErrNameTaken)

	assert.Equal(t, domain.StepAwaitingName, store.sessions[1].Step, "operator can pick another name")

	progress, err := svc.SubmitText(ctx, 1, "sunrise_pack")
	require.NoError(t, err)
	assert.Equal(t, domain.StepAwaitingPrice, progress.Session.Step)
}

func TestService_BadInputKeepsSession(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Start(ctx, 1, catalogDomain.PoolIndividual)
	require.NoError(t, err)

	_, err = svc.SubmitText(ctx, 1, "hello")
	assert.ErrorIs(t, err, domain.ErrUnexpectedInput, "text before the asset is rejected")

	_, err = svc.SubmitAsset(ctx, 1, "a.jpg")
	require.NoError(t, err)
	_, err = svc.SubmitText(ctx, 1, "pack")
	require.NoError(t, err)

	_, err = svc.SubmitText(ctx, 1, "not_a_number")
	assert.ErrorIs(t, err, catalogDomain.ErrItemPriceInvalid)
	assert.Equal(t, domain.StepAwaitingPrice, store.sessions[1].Step)
}

func TestService_StartReplacesSession(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Start(ctx, 1, catalogDomain.PoolIndividual)
	require.NoError(t, err)
	_, err = svc.SubmitAsset(ctx, 1, "a.jpg")
	require.NoError(t, err)

	_, err = svc.Start(ctx, 1, catalogDomain.PoolSubscription)
	require.NoError(t, err)

	assert.Equal(t, domain.StepAwaitingAsset, store.sessions[1].Step)
	assert.Equal(t, catalogDomain.PoolSubscription, store.sessions[1].Pool)
}

func TestService_Cancel(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	cancelled, err := svc.Cancel(ctx, 1)
	require.NoError(t, err)
	assert.False(t, cancelled)

	_, err = svc.Start(ctx, 1, catalogDomain.PoolIndividual)
	require.NoError(t, err)

	cancelled, err = svc.Cancel(ctx, 1)
	require.NoError(t, err)
	assert.True(t, cancelled)

	_, err = svc.Current(ctx, 1)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestService_PublishFailureDiscardsSession(t *testing.T) {
	svc, store, catalog := newTestService(t)
	ctx := context.Background()
	catalog.addErr = errors.New("catalog down")

	_, err := svc.Start(ctx, 1, catalogDomain.PoolIndividual)
	require.NoError(t, err)
	_, err = svc.SubmitAsset(ctx, 1, "a.jpg")
	require.NoError(t, err)
	_, err = svc.SubmitText(ctx, 1, "pack")
	require.NoError(t, err)
	_, err = svc.SubmitText(ctx, 1, "10")
	require.NoError(t, err)

	_, err = svc.SubmitText(ctx, 1, "description")
	require.Error(t, err)

	assert.Nil(t, store.sessions[1], "failed publish does not trap the operator in a dead session")
}

func TestService_NoSession(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.SubmitAsset(ctx, 1, "a.jpg")
	assert.ErrorIs(t, err, ErrNoSession)

	_, err = svc.SubmitText(ctx, 1, "anything")
	assert.ErrorIs(t, err, ErrNoSession)
}
