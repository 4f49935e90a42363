// Package application provides catalog gating and operator catalog
// management.
package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mirelabalan/fanvault/internal/catalog/domain"
	sharedApp "github.com/mirelabalan/fanvault/internal/shared/application"
	sharedDomain "github.com/mirelabalan/fanvault/internal/shared/domain"
	"github.com/mirelabalan/fanvault/internal/shared/infrastructure/outbox"
)

// Entitlements is the slice of the entitlement engine the gate needs to
// decide visibility and purchasability.
type Entitlements interface {
	// SubscriptionActive reports whether the user holds an active subscription.
	SubscriptionActive(ctx context.Context, userID int64) (bool, error)

	// Owns reports whether the user has purchased the item.
	Owns(ctx context.Context, userID int64, itemName string) (bool, error)

	// ItemHasPurchases reports whether anyone has ever purchased the item.
	ItemHasPurchases(ctx context.Context, itemName string) (bool, error)
}

// StorefrontItem is a purchasable item together with the requesting
// user's ownership flag.
type StorefrontItem struct {
	Item  *domain.ContentItem
	Owned bool
}

// LibraryResult is the outcome of a subscription-library request.
// Denied is empty when access was granted.
type LibraryResult struct {
	Items  []*domain.ContentItem
	Denied sharedDomain.DenialReason
}

// DecisionKind classifies a purchase-request resolution.
type DecisionKind string

const (
	DecisionProceed       DecisionKind = "proceed"
	DecisionAlreadyOwned  DecisionKind = "already_owned"
	DecisionNotIndividual DecisionKind = "not_individual"
	DecisionNotFound      DecisionKind = "not_found"
)

// PurchaseDecision is the outcome of resolving a purchase request.
// Item is set only when the decision is DecisionProceed.
type PurchaseDecision struct {
	Kind DecisionKind
	Item *domain.ContentItem
}

// Gate serves storefront views and operator catalog management.
type Gate struct {
	items        domain.Repository
	entitlements Entitlements
	outbox       outbox.Repository
	uow          sharedApp.UnitOfWork
	logger       *slog.Logger
	now          func() time.Time
}

// NewGate creates a new catalog gate.
func NewGate(items domain.Repository, entitlements Entitlements, outboxRepo outbox.Repository, uow sharedApp.UnitOfWork, logger *slog.Logger) *Gate {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gate{
		items:        items,
		entitlements: entitlements,
		outbox:       outboxRepo,
		uow:          uow,
		logger:       logger,
		now:          time.Now,
	}
}

// WithClock overrides the time source, for tests.
func (g *Gate) WithClock(now func() time.Time) *Gate {
	g.now = now
	return g
}

// ListPurchasable returns the individually sold items with the user's
// ownership flags. Owned items stay listed so the storefront can mark
// them instead of hiding them.
func (g *Gate) ListPurchasable(ctx context.Context, userID int64) ([]StorefrontItem, error) {
	items, err := g.items.ListByPool(ctx, domain.PoolIndividual)
	if err != nil {
		return nil, fmt.Errorf("list purchasable items: %w", err)
	}

	result := make([]StorefrontItem, 0, len(items))
	for _, item := range items {
		owned, err := g.entitlements.Owns(ctx, userID, item.Name())
		if err != nil {
			return nil, fmt.Errorf("check ownership of %s: %w", item.Name(), err)
		}
		result = append(result, StorefrontItem{Item: item, Owned: owned})
	}
	return result, nil
}

// ListSubscriptionLibrary returns the subscription-exclusive items for
// active subscribers, or a denial for everyone else.
func (g *Gate) ListSubscriptionLibrary(ctx context.Context, userID int64) (LibraryResult, error) {
	active, err := g.entitlements.SubscriptionActive(ctx, userID)
	if err != nil {
		return LibraryResult{}, fmt.Errorf("check subscription: %w", err)
	}
	if !active {
		return LibraryResult{Denied: sharedDomain.DenialSubscriptionRequired}, nil
	}

	items, err := g.items.ListByPool(ctx, domain.PoolSubscription)
	if err != nil {
		return LibraryResult{}, fmt.Errorf("list subscription library: %w", err)
	}
	return LibraryResult{Items: items}, nil
}

// FindItem retrieves a catalog item by name. Returns nil if absent.
func (g *Gate) FindItem(ctx context.Context, name string) (*domain.ContentItem, error) {
	return g.items.FindByName(ctx, name)
}

// ListCatalog returns the whole catalog, newest first.
func (g *Gate) ListCatalog(ctx context.Context) ([]*domain.ContentItem, error) {
	return g.items.ListAll(ctx)
}

// ResolvePurchaseRequest decides whether a purchase of the named item may
// proceed for the user.
func (g *Gate) ResolvePurchaseRequest(ctx context.Context, userID int64, name string) (PurchaseDecision, error) {
	item, err := g.items.FindByName(ctx, name)
	if err != nil {
		return PurchaseDecision{}, fmt.Errorf("find item: %w", err)
	}
	if item == nil {
		return PurchaseDecision{Kind: DecisionNotFound}, nil
	}
	if !item.IsIndividual() {
		return PurchaseDecision{Kind: DecisionNotIndividual}, nil
	}

	owned, err := g.entitlements.Owns(ctx, userID, name)
	if err != nil {
		return PurchaseDecision{}, fmt.Errorf("check ownership: %w", err)
	}
	if owned {
		return PurchaseDecision{Kind: DecisionAlreadyOwned}, nil
	}

	return PurchaseDecision{Kind: DecisionProceed, Item: item}, nil
}

// AddItemParams describes a direct catalog addition.
type AddItemParams struct {
	Name        string
	Price       int64
	AssetRef    string
	AssetKind   domain.AssetKind
	Description string
	Pool        domain.Pool
}

// AddItem publishes a new item directly, without an ingestion session.
func (g *Gate) AddItem(ctx context.Context, params AddItemParams) (*domain.ContentItem, error) {
	var item *domain.ContentItem

	err := sharedApp.WithUnitOfWork(ctx, g.uow, func(txCtx context.Context) error {
		existing, err := g.items.FindByName(txCtx, params.Name)
		if err != nil {
			return fmt.Errorf("check name collision: %w", err)
		}
		if existing != nil {
			return domain.ErrNameTaken
		}

		item, err = domain.NewContentItem(params.Name, params.Price, params.AssetRef, params.AssetKind, params.Description, params.Pool, g.now().UTC())
		if err != nil {
			return err
		}

		if err := g.items.Save(txCtx, item); err != nil {
			return fmt.Errorf("save item: %w", err)
		}

		return g.drainEvents(txCtx, item)
	})
	if err != nil {
		return nil, err
	}

	g.logger.Info("catalog item published",
		"item", item.Name(),
		"pool", item.Pool(),
		"price", item.Price(),
	)
	return item, nil
}

// UpdateItemParams describes an operator edit. Nil fields are untouched.
type UpdateItemParams struct {
	Price       *int64
	Description *string
	AssetRef    *string
	AssetKind   domain.AssetKind
	Pool        *domain.Pool
}

// UpdateItem applies operator edits to an existing item. Pool changes are
// refused once the item has been purchased.
func (g *Gate) UpdateItem(ctx context.Context, name string, params UpdateItemParams) (*domain.ContentItem, error) {
	var item *domain.ContentItem

	err := sharedApp.WithUnitOfWork(ctx, g.uow, func(txCtx context.Context) error {
		var err error
		item, err = g.items.FindByName(txCtx, name)
		if err != nil {
			return fmt.Errorf("find item: %w", err)
		}
		if item == nil {
			return domain.ErrItemNotFound
		}

		if params.Pool != nil && *params.Pool != item.Pool() {
			purchased, err := g.entitlements.ItemHasPurchases(txCtx, name)
			if err != nil {
				return fmt.Errorf("check purchases: %w", err)
			}
			if purchased {
				return domain.ErrPoolLocked
			}
			if err := item.ChangePool(*params.Pool); err != nil {
				return err
			}
		}
		if params.Price != nil {
			if err := item.UpdatePrice(*params.Price); err != nil {
				return err
			}
		}
		if params.Description != nil {
			item.UpdateDescription(*params.Description)
		}
		if params.AssetRef != nil {
			if err := item.UpdateAsset(*params.AssetRef, params.AssetKind); err != nil {
				return err
			}
		}

		return g.items.Save(txCtx, item)
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// RemoveItem withdraws an item from the catalog. Existing purchase
// records are preserved.
func (g *Gate) RemoveItem(ctx context.Context, name string) error {
	err := sharedApp.WithUnitOfWork(ctx, g.uow, func(txCtx context.Context) error {
		item, err := g.items.FindByName(txCtx, name)
		if err != nil {
			return fmt.Errorf("find item: %w", err)
		}
		if item == nil {
			return domain.ErrItemNotFound
		}

		if err := g.items.Delete(txCtx, name); err != nil {
			return fmt.Errorf("delete item: %w", err)
		}

		item.AddDomainEvent(domain.NewItemRemoved(name))
		return g.drainEvents(txCtx, item)
	})
	if err != nil {
		return err
	}

	g.logger.Info("catalog item removed", "item", name)
	return nil
}

func (g *Gate) drainEvents(ctx context.Context, item *domain.ContentItem) error {
	events := item.DomainEvents()
	if len(events) == 0 {
		return nil
	}
	sharedApp.ApplyEventMetadata(events, sharedApp.NewEventMetadata(0))
	for _, event := range events {
		msg, err := outbox.NewMessage(event)
		if err != nil {
			return fmt.Errorf("build outbox message: %w", err)
		}
		if err := g.outbox.Save(ctx, msg); err != nil {
			return fmt.Errorf("save outbox message: %w", err)
		}
	}
	item.ClearDomainEvents()
	return nil
}
