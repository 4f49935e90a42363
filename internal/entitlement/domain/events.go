package domain

import (
	"strconv"
	"time"

	"github.com/google/uuid"

	sharedDomain "github.com/mirelabalan/fanvault/internal/shared/domain"
)

// Event routing keys for the entitlement context.
const (
	PurchaseRecordedRoutingKey    = "entitlement.purchase.recorded"
	SubscriptionStartedRoutingKey = "entitlement.subscription.started"
	SubscriptionRenewedRoutingKey = "entitlement.subscription.renewed"
	SubscriptionLapsedRoutingKey  = "entitlement.subscription.lapsed"
)

// PurchaseRecorded is raised when a user buys an item for the first time.
type PurchaseRecorded struct {
	sharedDomain.BaseEvent
	PurchaseID uuid.UUID `json:"purchase_id"`
	UserID     int64     `json:"user_id"`
	ItemName   string    `json:"item_name"`
	PricePaid  int64     `json:"price_paid"`
}

// NewPurchaseRecorded creates a new PurchaseRecorded event.
func NewPurchaseRecorded(purchaseID uuid.UUID, userID int64, itemName string, pricePaid int64) *PurchaseRecorded {
	return &PurchaseRecorded{
		BaseEvent:  sharedDomain.NewBaseEvent(purchaseID.String(), "Purchase", PurchaseRecordedRoutingKey),
		PurchaseID: purchaseID,
		UserID:     userID,
		ItemName:   itemName,
		PricePaid:  pricePaid,
	}
}

// SubscriptionStarted is raised on a user's first subscription payment.
type SubscriptionStarted struct {
	sharedDomain.BaseEvent
	UserID    int64     `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// NewSubscriptionStarted creates a new SubscriptionStarted event.
func NewSubscriptionStarted(userID int64, expiresAt time.Time) *SubscriptionStarted {
	return &SubscriptionStarted{
		BaseEvent: sharedDomain.NewBaseEvent(strconv.FormatInt(userID, 10), "Subscription", SubscriptionStartedRoutingKey),
		UserID:    userID,
		ExpiresAt: expiresAt,
	}
}

// SubscriptionRenewed is raised on every subsequent subscription payment.
type SubscriptionRenewed struct {
	sharedDomain.BaseEvent
	UserID    int64     `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
	Renewals  int64     `json:"renewals"`
}

// NewSubscriptionRenewed creates a new SubscriptionRenewed event.
func NewSubscriptionRenewed(userID int64, expiresAt time.Time, renewals int64) *SubscriptionRenewed {
	return &SubscriptionRenewed{
		BaseEvent: sharedDomain.NewBaseEvent(strconv.FormatInt(userID, 10), "Subscription", SubscriptionRenewedRoutingKey),
		UserID:    userID,
		ExpiresAt: expiresAt,
		Renewals:  renewals,
	}
}

// SubscriptionLapsed is raised when an expired subscription is noticed
// and deactivated.
type SubscriptionLapsed struct {
	sharedDomain.BaseEvent
	UserID    int64     `json:"user_id"`
	ExpiredAt time.Time `json:"expired_at"`
}

// NewSubscriptionLapsed creates a new SubscriptionLapsed event.
func NewSubscriptionLapsed(userID int64, expiredAt time.Time) *SubscriptionLapsed {
	return &SubscriptionLapsed{
		BaseEvent: sharedDomain.NewBaseEvent(strconv.FormatInt(userID, 10), "Subscription", SubscriptionLapsedRoutingKey),
		UserID:    userID,
		ExpiredAt: expiredAt,
	}
}
