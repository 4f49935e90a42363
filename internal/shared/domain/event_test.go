package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type itemPublished struct {
	BaseEvent
	name string
}

func TestBaseEvent(t *testing.T) {
	ev := itemPublished{
		BaseEvent: NewBaseEvent("sunset_pack", "ContentItem", "catalog.item.published"),
		name:      "sunset_pack",
	}

	assert.NotEqual(t, uuid.Nil, ev.EventID())
	assert.Equal(t, "sunset_pack", ev.AggregateID())
	assert.Equal(t, "ContentItem", ev.AggregateType())
	assert.Equal(t, "catalog.item.published", ev.RoutingKey())
	assert.False(t, ev.OccurredAt().IsZero())
}

func TestBaseEvent_SetMetadata(t *testing.T) {
	ev := itemPublished{BaseEvent: NewBaseEvent("sunset_pack", "ContentItem", "catalog.item.published")}

	meta := EventMetadata{
		CorrelationID: uuid.New(),
		CausationID:   uuid.New(),
		UserID:        42,
	}
	ev.SetMetadata(meta)

	assert.Equal(t, meta, ev.Metadata())
}

func TestBaseAggregateRoot_DomainEvents(t *testing.T) {
	root := NewBaseAggregateRoot()
	assert.Empty(t, root.DomainEvents())

	root.AddDomainEvent(itemPublished{BaseEvent: NewBaseEvent("a", "ContentItem", "catalog.item.published")})
	root.AddDomainEvent(itemPublished{BaseEvent: NewBaseEvent("b", "ContentItem", "catalog.item.published")})
	assert.Len(t, root.DomainEvents(), 2)

	root.ClearDomainEvents()
	assert.Empty(t, root.DomainEvents())
}
