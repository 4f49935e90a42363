package domain

import (
	"time"

	"github.com/google/uuid"

	sharedDomain "github.com/mirelabalan/fanvault/internal/shared/domain"
)

// Purchase is one user's permanent entitlement to one item. Purchases
// survive catalog removal of the item they reference.
type Purchase struct {
	sharedDomain.BaseAggregateRoot
	id          uuid.UUID
	userID      int64
	itemName    string
	pricePaid   int64
	purchasedAt time.Time
}

// NewPurchase records a fresh purchase.
func NewPurchase(userID int64, itemName string, pricePaid int64, now time.Time) *Purchase {
	p := &Purchase{
		BaseAggregateRoot: sharedDomain.NewBaseAggregateRoot(),
		id:                uuid.New(),
		userID:            userID,
		itemName:          itemName,
		pricePaid:         pricePaid,
		purchasedAt:       now,
	}

	p.AddDomainEvent(NewPurchaseRecorded(p.id, userID, itemName, pricePaid))

	return p
}

// RehydratePurchase recreates a purchase from persisted state.
func RehydratePurchase(id uuid.UUID, userID int64, itemName string, pricePaid int64, purchasedAt time.Time) *Purchase {
	return &Purchase{
		BaseAggregateRoot: sharedDomain.NewBaseAggregateRoot(),
		id:                id,
		userID:            userID,
		itemName:          itemName,
		pricePaid:         pricePaid,
		purchasedAt:       purchasedAt,
	}
}

func (p *Purchase) ID() uuid.UUID          { return p.id }
func (p *Purchase) UserID() int64          { return p.userID }
func (p *Purchase) ItemName() string       { return p.itemName }
func (p *Purchase) PricePaid() int64       { return p.pricePaid }
func (p *Purchase) PurchasedAt() time.Time { return p.purchasedAt }
