package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalogDomain "github.com/mirelabalan/fanvault/internal/catalog/domain"
)

func TestSession_IndividualFlow(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	s := NewSession(1, catalogDomain.PoolIndividual, now)

	assert.Equal(t, StepAwaitingAsset, s.Step)
	assert.False(t, s.Complete())

	require.NoError(t, s.ApplyAsset("sunset.jpg"))
	assert.Equal(t, StepAwaitingName, s.Step)
	assert.Equal(t, catalogDomain.AssetPhoto, s.AssetKind)

	require.NoError(t, s.ApplyName("sunset_pack"))
	assert.Equal(t, StepAwaitingPrice, s.Step)

	require.NoError(t, s.ApplyPrice(50))
	assert.Equal(t, StepAwaitingDescription, s.Step)

	require.NoError(t, s.ApplyDescription("beach photos"))
	assert.True(t, s.Complete())
}

func TestSession_SubscriptionFlowSkipsPrice(t *testing.T) {
	s := NewSession(1, catalogDomain.PoolSubscription, time.Now())

	require.NoError(t, s.ApplyAsset("clip.mp4"))
	require.NoError(t, s.ApplyName("members_clip"))

	assert.Equal(t, StepAwaitingDescription, s.Step, "exclusive uploads have no price step")

	require.NoError(t, s.ApplyDescription("for subscribers"))
	assert.True(t, s.Complete())
	assert.Zero(t, s.Price)
}

func TestSession_RejectsOutOfOrderInput(t *testing.T) {
	s := NewSession(1, catalogDomain.PoolIndividual, time.Now())

	assert.ErrorIs(t, s.ApplyName("early"), ErrUnexpectedInput)
	assert.ErrorIs(t, s.ApplyPrice(10), ErrUnexpectedInput)
	assert.ErrorIs(t, s.ApplyDescription("early"), ErrUnexpectedInput)

	assert.Equal(t, StepAwaitingAsset, s.Step, "rejected input does not move the session")

	require.NoError(t, s.ApplyAsset("a.jpg"))
	assert.ErrorIs(t, s.ApplyAsset("b.jpg"), ErrUnexpectedInput)
}

func TestSession_ValidationKeepsState(t *testing.T) {
	s := NewSession(1, catalogDomain.PoolIndividual, time.Now())
	require.NoError(t, s.ApplyAsset("a.jpg"))

	assert.ErrorIs(t, s.ApplyName("two words"), catalogDomain.ErrItemNameInvalid)
	assert.Equal(t, StepAwaitingName, s.Step, "a bad name leaves the session waiting for a name")

	require.NoError(t, s.ApplyName("pack"))
	assert.ErrorIs(t, s.ApplyPrice(-1), catalogDomain.ErrItemPriceInvalid)
	assert.Equal(t, StepAwaitingPrice, s.Step)
}

func TestNewSession_UnknownPoolDefaultsToIndividual(t *testing.T) {
	s := NewSession(1, "mystery", time.Now())
	assert.Equal(t, catalogDomain.PoolIndividual, s.Pool)
}
