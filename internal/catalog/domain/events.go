package domain

import (
	sharedDomain "github.com/mirelabalan/fanvault/internal/shared/domain"
)

// Event routing keys for the catalog context.
const (
	ItemPublishedRoutingKey = "catalog.item.published"
	ItemRemovedRoutingKey   = "catalog.item.removed"
)

// ItemPublished is raised when a new item enters the catalog.
type ItemPublished struct {
	sharedDomain.BaseEvent
	Name  string `json:"name"`
	Price int64  `json:"price"`
	Pool  string `json:"pool"`
}

// NewItemPublished creates a new ItemPublished event.
func NewItemPublished(name string, price int64, pool string) *ItemPublished {
	return &ItemPublished{
		BaseEvent: sharedDomain.NewBaseEvent(name, "ContentItem", ItemPublishedRoutingKey),
		Name:      name,
		Price:     price,
		Pool:      pool,
	}
}

// ItemRemoved is raised when an item leaves the catalog. Purchase records
// for the item are kept.
type ItemRemoved struct {
	sharedDomain.BaseEvent
	Name string `json:"name"`
}

// NewItemRemoved creates a new ItemRemoved event.
func NewItemRemoved(name string) *ItemRemoved {
	return &ItemRemoved{
		BaseEvent: sharedDomain.NewBaseEvent(name, "ContentItem", ItemRemovedRoutingKey),
		Name:      name,
	}
}
